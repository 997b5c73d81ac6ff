// Package paging simulates a pool of physical memory frames shared by
// logical processes that reach it through demand paging. The package holds
// the frame allocator, the per-process page tables, the FIFO and LRU
// replacement policies, and the engine that resolves page accesses into
// hits, faults, and evictions.
package paging

import (
	"errors"
	"fmt"
)

// Errors reported by pool and engine operations. All of them are
// recoverable. A failed operation leaves the pool unchanged.
var (
	// ErrCapacityExceeded is returned when an allocation asks for more
	// frames than the pool has free.
	ErrCapacityExceeded = errors.New("not enough free frames")

	// ErrUnknownProcess is returned when an operation targets a process
	// that owns no frames and has no page table.
	ErrUnknownProcess = errors.New("PID not found")

	// ErrInvalidConfig is returned when a pool geometry cannot produce at
	// least one frame without clamping.
	ErrInvalidConfig = errors.New("invalid pool configuration")
)

// ValidateConfig checks a pool geometry before it is applied. The pool
// itself clamps degenerate values to a single frame, but callers that take
// operator input should reject them instead of masking the mistake.
func ValidateConfig(totalKB, frameKB int) error {
	if totalKB <= 0 || frameKB <= 0 {
		return fmt.Errorf("%w: total %d KB, frame %d KB",
			ErrInvalidConfig, totalKB, frameKB)
	}

	return nil
}

// A Frame is a fixed-size slot of simulated physical memory, identified by
// its index in the pool. The index never changes for the lifetime of the
// pool. PID is empty while the frame is free. Label names the virtual page
// the frame currently holds, in the "p<N>" form the dashboard displays.
type Frame struct {
	Index int
	PID   string
	Label string
}

// IsFree returns true if no process owns the frame.
func (f Frame) IsFree() bool {
	return f.PID == ""
}

// Counters accumulates the pool-level event counts. All three only ever
// grow between resets. PageFaults counts every translation lookup the
// engine performs, hits included, keeping the counter semantics the
// dashboard has always shown. The per-access hit/miss split lives in the
// recording tables instead.
type Counters struct {
	PageFaults    uint64
	Allocations   uint64
	Deallocations uint64
}

// A Pool owns a fixed array of frames and tracks which of them are free and
// which belong to a process. Frames are handed out lowest index first so
// runs replay deterministically.
//
// A Pool is not safe for concurrent use. The owning service serializes all
// calls.
type Pool struct {
	totalKB int
	frameKB int

	frames      []Frame
	free        map[int]struct{}
	pidToFrames map[string]map[int]struct{}

	counters Counters
}

// NewPool creates a pool with frameCount = max(1, totalKB/frameKB) frames,
// all free. Degenerate geometry is clamped to a single frame; use
// ValidateConfig to reject it at the configuration surface.
func NewPool(totalKB, frameKB int) *Pool {
	p := &Pool{}
	p.Reset(totalKB, frameKB)

	return p
}

// Reset rebuilds the pool for a new geometry. Every frame becomes free and
// unowned, every counter returns to zero. Reset can be called at any time;
// it is a full reset, not an incremental resize.
func (p *Pool) Reset(totalKB, frameKB int) {
	p.totalKB = totalKB
	p.frameKB = frameKB

	n := 0
	if frameKB > 0 {
		n = totalKB / frameKB
	}
	if n < 1 {
		n = 1
	}

	p.frames = make([]Frame, n)
	p.free = make(map[int]struct{}, n)
	for i := range p.frames {
		p.frames[i].Index = i
		p.free[i] = struct{}{}
	}

	p.pidToFrames = make(map[string]map[int]struct{})
	p.counters = Counters{}
}

// TotalKB returns the configured capacity.
func (p *Pool) TotalKB() int {
	return p.totalKB
}

// FrameKB returns the configured frame size.
func (p *Pool) FrameKB() int {
	return p.frameKB
}

// FrameCount returns the number of frames in the pool.
func (p *Pool) FrameCount() int {
	return len(p.frames)
}

// Frames returns a copy of the frame array for read-only inspection.
func (p *Pool) Frames() []Frame {
	frames := make([]Frame, len(p.frames))
	copy(frames, p.frames)

	return frames
}

// UsedAndTotal returns the number of owned frames and the pool size. It is
// a point-in-time read and never mutates the pool.
func (p *Pool) UsedAndTotal() (used, total int) {
	return len(p.frames) - len(p.free), len(p.frames)
}

// Counters returns the current counter values.
func (p *Pool) Counters() Counters {
	return p.counters
}

// OwnedBy returns the frame indices owned by a process, in ascending order.
func (p *Pool) OwnedBy(pid string) []int {
	owned := make([]int, 0, len(p.pidToFrames[pid]))
	for _, f := range p.frames {
		if f.PID == pid {
			owned = append(owned, f.Index)
		}
	}

	return owned
}

// AllocBlock assigns n free frames to a process as one logical block. Only
// the request is contiguous; the frames themselves are whatever indices are
// free. On success it returns a human-readable confirmation and counts one
// allocation event. If fewer than n frames are free it returns
// ErrCapacityExceeded without touching the pool.
func (p *Pool) AllocBlock(pid string, n int) (string, error) {
	if n > len(p.free) {
		return "", ErrCapacityExceeded
	}

	for i := 0; i < n; i++ {
		fidx, ok := p.takeFree()
		if !ok {
			panic("free set drained during allocation")
		}

		p.assign(fidx, pid, "")
	}

	p.counters.Allocations++

	return fmt.Sprintf("Allocated %d frames to %s", n, pid), nil
}

// ReleaseProcess returns every frame a process owns to the free set and
// removes the process record, counting one deallocation event. A process
// that owns nothing yields ErrUnknownProcess.
func (p *Pool) ReleaseProcess(pid string) (string, error) {
	owned, ok := p.pidToFrames[pid]
	if !ok {
		return "", ErrUnknownProcess
	}

	for fidx := range owned {
		p.frames[fidx].PID = ""
		p.frames[fidx].Label = ""
		p.free[fidx] = struct{}{}
	}

	delete(p.pidToFrames, pid)
	p.counters.Deallocations++

	return fmt.Sprintf("Deallocated %s", pid), nil
}

// takeFree removes and returns the lowest free frame index.
func (p *Pool) takeFree() (int, bool) {
	if len(p.free) == 0 {
		return 0, false
	}

	for i := range p.frames {
		if _, ok := p.free[i]; ok {
			delete(p.free, i)
			return i, true
		}
	}

	panic("free set references no frame")
}

// assign records ownership of a frame. The frame must not be in the free
// set when assign is called.
func (p *Pool) assign(fidx int, pid, label string) {
	p.frames[fidx].PID = pid
	p.frames[fidx].Label = label

	owned, ok := p.pidToFrames[pid]
	if !ok {
		owned = make(map[int]struct{})
		p.pidToFrames[pid] = owned
	}
	owned[fidx] = struct{}{}
}

// clearFrame removes ownership of a single frame without putting it back in
// the free set, so an eviction can hand the frame straight to its next
// owner without a free/alloc round trip.
func (p *Pool) clearFrame(fidx int) {
	pid := p.frames[fidx].PID
	if pid == "" {
		return
	}

	p.frames[fidx].PID = ""
	p.frames[fidx].Label = ""

	owned := p.pidToFrames[pid]
	delete(owned, fidx)
	if len(owned) == 0 {
		delete(p.pidToFrames, pid)
	}
}

// owners returns the set of process IDs that currently own frames.
func (p *Pool) owners() []string {
	pids := make([]string, 0, len(p.pidToFrames))
	for pid := range p.pidToFrames {
		pids = append(pids, pid)
	}

	return pids
}

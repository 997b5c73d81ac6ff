package paging

import (
	"fmt"
	"log"
	"math/rand"
)

// An AccessResult reports how one page access resolved. Message carries the
// human-readable outcome the dashboard displays. Evicted is non-nil when
// resolving the fault displaced another mapping.
type AccessResult struct {
	PID     string
	Page    int
	Hit     bool
	Frame   int
	Evicted *Victim
	Message string
}

// An AdmitEvent describes a process admission for hooks.
type AdmitEvent struct {
	PID   string
	Pages int
}

// A DeallocEvent describes a process teardown for hooks.
type DeallocEvent struct {
	PID    string
	Frames int
}

// A ConfigEvent describes an engine reconfiguration for hooks.
type ConfigEvent struct {
	TotalKB   int
	FrameKB   int
	Algorithm Algorithm
}

// An Engine resolves page accesses for a set of processes against one frame
// pool, evicting through the active replacement policy when the pool is
// exhausted. Hooks fire after every state change, which is how the
// broadcaster and the recorder observe the simulation.
//
// The engine performs no locking of its own. Every call is a single atomic
// step against its state, and the owning service must serialize them.
type Engine struct {
	HookableBase

	pool      *Pool
	tables    map[string]*PageTable
	algorithm Algorithm
	policy    Policy
}

// Pool returns the engine's frame pool.
func (e *Engine) Pool() *Pool {
	return e.pool
}

// Algorithm returns the active replacement algorithm.
func (e *Engine) Algorithm() Algorithm {
	return e.algorithm
}

// AdmitProcess creates a page table with pageCount absent entries for a
// process and counts one allocation event. Admitting a process that
// already has a table forces a full teardown of the old incarnation first,
// so no frame stays owned by a table that can no longer reach it.
func (e *Engine) AdmitProcess(pid string, pageCount int) {
	if _, exists := e.tables[pid]; exists {
		e.DeallocateProcess(pid)
	}

	e.tables[pid] = NewPageTable(pageCount)
	e.pool.counters.Allocations++

	e.InvokeHook(HookCtx{
		Domain: e,
		Pos:    HookPosAdmit,
		Item:   AdmitEvent{PID: pid, Pages: pageCount},
	})
}

// AccessPage resolves one access by a process to one of its virtual pages.
// Every call charges the PageFaults counter, hits included. A miss obtains
// a frame, from the free set when possible and through eviction otherwise,
// and loads the page into it.
func (e *Engine) AccessPage(pid string, page int) AccessResult {
	e.pool.counters.PageFaults++

	table, ok := e.tables[pid]
	if !ok {
		table = NewPageTable(0)
		e.tables[pid] = table
	}

	res := AccessResult{PID: pid, Page: page}

	if frame, resident := table.Resident(page); resident {
		e.policy.RecordHit(pid, page)
		res.Hit = true
		res.Frame = frame
		res.Message = "hit"
	} else {
		res = e.resolveFault(table, pid, page)
	}

	e.InvokeHook(HookCtx{Domain: e, Pos: HookPosAccess, Item: res})

	return res
}

func (e *Engine) resolveFault(table *PageTable, pid string, page int) AccessResult {
	res := AccessResult{PID: pid, Page: page}

	frame, evicted, ok := e.obtainFrame()
	if !ok {
		res.Frame = frameAbsent
		res.Message = "no frame available"

		return res
	}

	e.pool.assign(frame, pid, fmt.Sprintf("p%d", page))
	table.SetResident(page, frame)
	e.policy.RecordLoad(pid, page, frame)

	res.Frame = frame
	res.Evicted = evicted
	res.Message = fmt.Sprintf("loaded in frame %d", frame)

	return res
}

// obtainFrame produces a frame for a fault resolution. It prefers a free
// frame and falls back to eviction. The evicted frame is cleared and handed
// straight to the caller without a free/alloc round trip.
func (e *Engine) obtainFrame() (frame int, evicted *Victim, ok bool) {
	if frame, ok := e.pool.takeFree(); ok {
		return frame, nil, true
	}

	victim, ok := e.policy.SelectVictim()
	if !ok {
		victim, ok = e.randomVictim()
		if !ok {
			return frameAbsent, nil, false
		}

		log.Printf(
			"paging: %s bookkeeping empty while the pool is full, evicting frame %d at random",
			e.algorithm, victim.Frame)
	}

	if table, exists := e.tables[victim.PID]; exists {
		table.SetAbsent(victim.Page)
	}
	e.pool.clearFrame(victim.Frame)

	return victim.Frame, &victim, true
}

// randomVictim picks a uniformly random owned frame. It is the escape hatch
// for a policy whose bookkeeping drifted empty; reaching it means an
// invariant was already violated, so the caller logs the inconsistency.
func (e *Engine) randomVictim() (Victim, bool) {
	inUse := make([]int, 0, len(e.pool.frames))
	for _, f := range e.pool.frames {
		if !f.IsFree() {
			inUse = append(inUse, f.Index)
		}
	}

	if len(inUse) == 0 {
		return Victim{}, false
	}

	frame := e.pool.frames[inUse[rand.Intn(len(inUse))]]
	victim := Victim{PID: frame.PID, Page: frameAbsent, Frame: frame.Index}
	if table, ok := e.tables[frame.PID]; ok {
		if page, mapped := table.PageOf(frame.Index); mapped {
			victim.Page = page
		}
	}

	return victim, true
}

// DeallocateProcess releases every frame a process holds, purges its
// replacement bookkeeping, and drops its page table. The page table entries
// are trusted; no per-frame ownership check is repeated here. Unknown
// processes report ErrUnknownProcess and nothing changes.
func (e *Engine) DeallocateProcess(pid string) (string, error) {
	_, hasTable := e.tables[pid]
	_, ownsFrames := e.pool.pidToFrames[pid]
	if !hasTable && !ownsFrames {
		return "", ErrUnknownProcess
	}

	released := 0
	if ownsFrames {
		released = len(e.pool.pidToFrames[pid])
		if _, err := e.pool.ReleaseProcess(pid); err != nil {
			panic("owned frames disappeared during teardown")
		}
	}

	e.policy.PurgeProcess(pid)
	delete(e.tables, pid)

	e.InvokeHook(HookCtx{
		Domain: e,
		Pos:    HookPosDealloc,
		Item:   DeallocEvent{PID: pid, Frames: released},
	})

	return fmt.Sprintf("Deallocated %s", pid), nil
}

// Reconfigure resets the whole engine for a new geometry and algorithm:
// new pool, fresh policy, no page tables, zeroed counters. It is a hard
// reset, not a live migration of resident pages. Degenerate geometry is
// rejected before anything mutates.
func (e *Engine) Reconfigure(totalKB, frameKB int, algorithm Algorithm) error {
	if err := ValidateConfig(totalKB, frameKB); err != nil {
		return err
	}

	e.pool.Reset(totalKB, frameKB)
	e.tables = make(map[string]*PageTable)
	e.algorithm = algorithm
	e.policy = NewPolicy(algorithm)

	e.InvokeHook(HookCtx{
		Domain: e,
		Pos:    HookPosConfig,
		Item: ConfigEvent{
			TotalKB:   totalKB,
			FrameKB:   frameKB,
			Algorithm: algorithm,
		},
	})

	return nil
}

// Processes returns the IDs of the processes that have a page table, in
// ascending order. The workload driver picks its targets from this list.
func (e *Engine) Processes() []string {
	return sortedKeys(e.tables)
}

// PagesOf returns the declared pages of a process, ascending. The result is
// empty for unknown processes.
func (e *Engine) PagesOf(pid string) []int {
	table, ok := e.tables[pid]
	if !ok {
		return nil
	}

	return table.Pages()
}

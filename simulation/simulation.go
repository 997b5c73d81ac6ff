// Package simulation wires the paging engine, the workload driver, the
// recorder, and the monitor into one runnable service.
package simulation

import (
	"sync"
	"time"

	"github.com/GPCSantosh/RealTime-Mem-Allocator/driver"
	"github.com/GPCSantosh/RealTime-Mem-Allocator/monitoring"
	"github.com/GPCSantosh/RealTime-Mem-Allocator/paging"
	"github.com/GPCSantosh/RealTime-Mem-Allocator/recording"
)

// A Simulation owns one paging engine and everything attached to it. It
// serializes all control operations, so handlers and the workload loop
// never interleave inside the engine.
type Simulation struct {
	id string

	mu     sync.Mutex
	engine *paging.Engine
	driver *driver.Driver

	dataRecorder recording.DataRecorder
	observer     *recording.EngineObserver
	monitor      *monitoring.Monitor

	running  bool
	interval time.Duration

	stop          chan struct{}
	terminateOnce sync.Once
}

// ID returns the unique name of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Engine returns the paging engine of the simulation.
func (s *Simulation) Engine() *paging.Engine {
	return s.engine
}

// Monitor returns the monitor of the simulation. It is nil when the
// simulation was built without monitoring.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// DataRecorder returns the recorder that keeps the event history. It is nil
// when the simulation was built without recording.
func (s *Simulation) DataRecorder() recording.DataRecorder {
	return s.dataRecorder
}

// ApplyConfig rebuilds the pool with a new geometry and replacement
// algorithm. All processes and counters are discarded and PID numbering
// starts over.
func (s *Simulation) ApplyConfig(
	totalKB, frameKB int,
	algorithm string,
) (paging.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	algo, err := paging.ParseAlgorithm(algorithm)
	if err != nil {
		return paging.Snapshot{}, err
	}

	if err := s.engine.Reconfigure(totalKB, frameKB, algo); err != nil {
		return paging.Snapshot{}, err
	}

	s.driver.Reset()

	return s.engine.Snapshot(), nil
}

// CreateProcess admits a process sized in KB and touches its first page.
func (s *Simulation) CreateProcess(sizeKB int) (pid string, pages int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.driver.CreateProcess(sizeKB)
}

// Access references one page of one process.
func (s *Simulation) Access(pid string, page int) paging.AccessResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.AccessPage(pid, page)
}

// Deallocate tears a process down and frees its frames.
func (s *Simulation) Deallocate(pid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.DeallocateProcess(pid)
}

// Step advances the random workload by one action.
func (s *Simulation) Step() driver.StepReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.driver.Step()
}

// Burst advances the random workload by n actions.
func (s *Simulation) Burst(n int) []driver.StepReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.driver.Burst(n)
}

// SetRunning starts or stops the background workload loop. A positive
// interval replaces the current stepping pace.
func (s *Simulation) SetRunning(start bool, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = start
	if interval > 0 {
		s.interval = interval
	}
}

// Running reports whether the background workload loop is stepping.
func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// Snapshot returns a consistent copy of the engine state.
func (s *Simulation) Snapshot() paging.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.Snapshot()
}

// workloadLoop steps the driver while the simulation is running. The pace
// is re-read every round, so an interval change takes effect on the next
// step.
func (s *Simulation) workloadLoop() {
	for {
		s.mu.Lock()
		interval := s.interval
		s.mu.Unlock()

		select {
		case <-s.stop:
			return
		case <-time.After(interval):
		}

		s.mu.Lock()
		if s.running {
			s.driver.Step()
		}
		s.mu.Unlock()
	}
}

// Terminate stops the workload loop and flushes the recorded history.
// Terminating twice is a no-op, so an atexit handler and an explicit
// shutdown path can both call it.
func (s *Simulation) Terminate() {
	s.terminateOnce.Do(s.terminate)
}

func (s *Simulation) terminate() {
	close(s.stop)

	if s.monitor != nil {
		s.monitor.StopServer()
	}

	if s.dataRecorder != nil {
		err := s.dataRecorder.Close()
		if err != nil {
			panic(err)
		}
	}
}

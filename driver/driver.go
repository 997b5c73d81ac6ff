// Package driver generates the randomized paging workload that keeps a
// simulation moving without operator input. The driver owns the process ID
// sequence and the admit-or-access dice roll, while the engine stays the
// single authority on frames and page tables.
//
// A Driver never locks. The owning simulation serializes every call
// together with the rest of the engine traffic.
package driver

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/GPCSantosh/RealTime-Mem-Allocator/paging"
)

// A StepReport describes what one workload step did. AdmittedPID is empty
// when the step only touched existing processes.
type StepReport struct {
	AdmittedPID string
	Pages       int
	Accesses    []paging.AccessResult
}

// A Driver issues randomized work against one paging engine.
type Driver struct {
	engine  *paging.Engine
	rng     *rand.Rand
	nextPID int
}

// A Builder can build workload drivers.
type Builder struct {
	engine *paging.Engine
	seed   int64
}

// MakeBuilder returns a builder with a time-based seed.
func MakeBuilder() Builder {
	return Builder{
		seed: time.Now().UnixNano(),
	}
}

// WithEngine sets the engine the driver works against.
func (b Builder) WithEngine(engine *paging.Engine) Builder {
	b.engine = engine
	return b
}

// WithSeed fixes the random seed, which makes a workload replayable.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// Build creates the driver.
func (b Builder) Build() *Driver {
	if b.engine == nil {
		panic("driver requires an engine")
	}

	return &Driver{
		engine:  b.engine,
		rng:     rand.New(rand.NewSource(b.seed)),
		nextPID: 1,
	}
}

// Step advances the workload by one move. With no live process it admits a
// fresh one and faults in its whole page range. Otherwise it picks a random
// process and accesses one random declared page.
func (d *Driver) Step() StepReport {
	pids := d.engine.Processes()
	if len(pids) == 0 {
		return d.admitFresh()
	}

	pid := pids[d.rng.Intn(len(pids))]
	pages := d.engine.PagesOf(pid)
	if len(pages) == 0 {
		return StepReport{}
	}

	page := pages[d.rng.Intn(len(pages))]

	return StepReport{
		Accesses: []paging.AccessResult{d.engine.AccessPage(pid, page)},
	}
}

func (d *Driver) admitFresh() StepReport {
	pid := d.allocPID()
	pages := d.rng.Intn(7) + 2

	d.engine.AdmitProcess(pid, pages)

	report := StepReport{AdmittedPID: pid, Pages: pages}
	for page := 0; page < pages; page++ {
		report.Accesses = append(
			report.Accesses, d.engine.AccessPage(pid, page))
	}

	return report
}

// Burst performs n steps back to back and returns all of their reports.
func (d *Driver) Burst(n int) []StepReport {
	reports := make([]StepReport, 0, n)
	for i := 0; i < n; i++ {
		reports = append(reports, d.Step())
	}

	return reports
}

// CreateProcess admits a process sized in kilobytes, rounding the size up
// to whole frames with a minimum of one page, and faults in its first page.
func (d *Driver) CreateProcess(sizeKB int) (pid string, pages int) {
	frameKB := d.engine.Pool().FrameKB()
	pages = (sizeKB + frameKB - 1) / frameKB
	if pages < 1 {
		pages = 1
	}

	pid = d.allocPID()
	d.engine.AdmitProcess(pid, pages)
	d.engine.AccessPage(pid, 0)

	return pid, pages
}

// Reset rewinds the process ID sequence, which happens whenever the engine
// is reconfigured from scratch.
func (d *Driver) Reset() {
	d.nextPID = 1
}

func (d *Driver) allocPID() string {
	pid := fmt.Sprintf("P%d", d.nextPID)
	d.nextPID++

	return pid
}

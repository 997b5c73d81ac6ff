package recording

import (
	"time"

	"github.com/GPCSantosh/RealTime-Mem-Allocator/paging"
)

// Table names used by the engine observer.
const (
	TableAccesses      = "page_accesses"
	TableAdmissions    = "admissions"
	TableDeallocations = "deallocations"
	TableConfigs       = "config_changes"
	TableSystemSamples = "system_samples"
)

// AccessRow is one resolved page access. Hit distinguishes lookups that
// found the page resident from true faults; the live page_faults counter
// deliberately charges both, so this table is where the real fault rate
// can be computed. The Evicted columns are -1 and empty when the access
// displaced nothing.
type AccessRow struct {
	Time         float64
	PID          string
	Page         int
	Hit          bool
	Frame        int
	EvictedPID   string
	EvictedPage  int
	EvictedFrame int
	Message      string
}

// AdmitRow is one process admission.
type AdmitRow struct {
	Time  float64
	PID   string
	Pages int
}

// DeallocRow is one process teardown.
type DeallocRow struct {
	Time   float64
	PID    string
	Frames int
}

// ConfigRow is one engine reconfiguration.
type ConfigRow struct {
	Time      float64
	TotalKB   int
	FrameKB   int
	Algorithm string
}

// SystemSampleRow is one host memory telemetry reading.
type SystemSampleRow struct {
	Time        float64
	TotalKB     uint64
	UsedKB      uint64
	AvailableKB uint64
	Percent     float64
}

// An EngineObserver turns engine hook events into recorded rows. Register
// it on the engine with AcceptHook. Hooks run under the simulation lock,
// so the observer only buffers; the backend writes in batches on its own
// schedule.
type EngineObserver struct {
	backend DataRecorder
	now     func() time.Time
}

// NewEngineObserver creates the observer and its tables on the backend.
func NewEngineObserver(backend DataRecorder) *EngineObserver {
	backend.CreateTable(TableAccesses, AccessRow{})
	backend.CreateTable(TableAdmissions, AdmitRow{})
	backend.CreateTable(TableDeallocations, DeallocRow{})
	backend.CreateTable(TableConfigs, ConfigRow{})
	backend.CreateTable(TableSystemSamples, SystemSampleRow{})

	return &EngineObserver{
		backend: backend,
		now:     time.Now,
	}
}

// Func dispatches one hook event into its table.
func (o *EngineObserver) Func(ctx paging.HookCtx) {
	switch ctx.Pos {
	case paging.HookPosAccess:
		o.recordAccess(ctx.Item.(paging.AccessResult))
	case paging.HookPosAdmit:
		item := ctx.Item.(paging.AdmitEvent)
		o.backend.InsertData(TableAdmissions, AdmitRow{
			Time:  o.seconds(),
			PID:   item.PID,
			Pages: item.Pages,
		})
	case paging.HookPosDealloc:
		item := ctx.Item.(paging.DeallocEvent)
		o.backend.InsertData(TableDeallocations, DeallocRow{
			Time:   o.seconds(),
			PID:    item.PID,
			Frames: item.Frames,
		})
	case paging.HookPosConfig:
		item := ctx.Item.(paging.ConfigEvent)
		o.backend.InsertData(TableConfigs, ConfigRow{
			Time:      o.seconds(),
			TotalKB:   item.TotalKB,
			FrameKB:   item.FrameKB,
			Algorithm: item.Algorithm.String(),
		})
	}
}

func (o *EngineObserver) recordAccess(res paging.AccessResult) {
	row := AccessRow{
		Time:         o.seconds(),
		PID:          res.PID,
		Page:         res.Page,
		Hit:          res.Hit,
		Frame:        res.Frame,
		EvictedPage:  -1,
		EvictedFrame: -1,
		Message:      res.Message,
	}

	if res.Evicted != nil {
		row.EvictedPID = res.Evicted.PID
		row.EvictedPage = res.Evicted.Page
		row.EvictedFrame = res.Evicted.Frame
	}

	o.backend.InsertData(TableAccesses, row)
}

// RecordSystemSample stores one host memory reading alongside the
// simulation history, so recorded runs can be correlated with real
// memory pressure.
func (o *EngineObserver) RecordSystemSample(
	totalKB, usedKB, availableKB uint64,
	percent float64,
) {
	o.backend.InsertData(TableSystemSamples, SystemSampleRow{
		Time:        o.seconds(),
		TotalKB:     totalKB,
		UsedKB:      usedKB,
		AvailableKB: availableKB,
		Percent:     percent,
	})
}

func (o *EngineObserver) seconds() float64 {
	return float64(o.now().UnixNano()) / 1e9
}

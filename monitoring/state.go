package monitoring

import (
	"github.com/GPCSantosh/RealTime-Mem-Allocator/paging"
)

// A FrameDTO mirrors one frame on the wire. PID and Label are null while
// the frame is free or unlabeled, and the dashboard greys those cells out.
type FrameDTO struct {
	Idx   int     `json:"idx"`
	PID   *string `json:"pid"`
	Label *string `json:"label"`
}

// A StateDTO is the state_update payload every dashboard client receives,
// over the event stream and from the state endpoint alike.
type StateDTO struct {
	Frames        []FrameDTO    `json:"frames"`
	Used          int           `json:"used"`
	Total         int           `json:"total"`
	PageFaults    uint64        `json:"page_faults"`
	Allocations   uint64        `json:"allocations"`
	Deallocations uint64        `json:"deallocations"`
	PIDs          []string      `json:"pids"`
	SystemMem     *SystemMemDTO `json:"system_mem"`
	Algorithm     string        `json:"algorithm"`
	TotalKB       int           `json:"total_kb"`
	FrameKB       int           `json:"frame_kb"`
	Running       bool          `json:"running"`
}

func stateFromSnapshot(
	s paging.Snapshot,
	sysMem *SystemMemDTO,
	running bool,
) StateDTO {
	frames := make([]FrameDTO, len(s.Frames))
	for i, f := range s.Frames {
		frames[i] = FrameDTO{Idx: f.Index}

		if f.PID != "" {
			pid := f.PID
			frames[i].PID = &pid
		}
		if f.Label != "" {
			label := f.Label
			frames[i].Label = &label
		}
	}

	return StateDTO{
		Frames:        frames,
		Used:          s.Used,
		Total:         s.Total,
		PageFaults:    s.Counters.PageFaults,
		Allocations:   s.Counters.Allocations,
		Deallocations: s.Counters.Deallocations,
		PIDs:          s.PIDs,
		SystemMem:     sysMem,
		Algorithm:     s.Algorithm.String(),
		TotalKB:       s.TotalKB,
		FrameKB:       s.FrameKB,
		Running:       running,
	}
}

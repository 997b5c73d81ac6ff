package monitoring

import "github.com/shirou/gopsutil/mem"

// A SystemMemDTO reports the host's physical memory next to the simulated
// pool, so the dashboard can show real pressure beside the model.
type SystemMemDTO struct {
	TotalKB     uint64  `json:"total_kb"`
	UsedKB      uint64  `json:"used_kb"`
	AvailableKB uint64  `json:"available_kb"`
	Percent     float64 `json:"percent"`
}

// systemMemorySnapshot reads the host memory counters. It returns nil when
// the platform reports nothing, and the payload carries null instead.
func systemMemorySnapshot() *SystemMemDTO {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil
	}

	return &SystemMemDTO{
		TotalKB:     vm.Total / 1024,
		UsedKB:      (vm.Total - vm.Available) / 1024,
		AvailableKB: vm.Available / 1024,
		Percent:     vm.UsedPercent,
	}
}

package paging

import "sort"

// A Snapshot is a self-consistent copy of the observable engine state,
// detached from the live structures. Callers can hold it across lock
// boundaries and serialize it at leisure.
type Snapshot struct {
	Frames    []Frame
	Used      int
	Total     int
	Counters  Counters
	PIDs      []string
	TotalKB   int
	FrameKB   int
	Algorithm Algorithm
}

// Snapshot captures the current engine state. PIDs is the sorted union of
// processes that hold frames and processes that merely have a page table,
// so a process admitted but never touched still shows up.
func (e *Engine) Snapshot() Snapshot {
	used, total := e.pool.UsedAndTotal()

	seen := make(map[string]struct{})
	for _, pid := range e.pool.owners() {
		seen[pid] = struct{}{}
	}
	for pid := range e.tables {
		seen[pid] = struct{}{}
	}

	return Snapshot{
		Frames:    e.pool.Frames(),
		Used:      used,
		Total:     total,
		Counters:  e.pool.Counters(),
		PIDs:      sortedKeys(seen),
		TotalKB:   e.pool.TotalKB(),
		FrameKB:   e.pool.FrameKB(),
		Algorithm: e.algorithm,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

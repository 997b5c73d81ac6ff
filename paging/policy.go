package paging

import (
	"fmt"
	"strings"
)

// Algorithm selects which replacement policy an engine runs. The set is
// closed; an engine never mixes policies within one configuration.
type Algorithm int

// The supported replacement algorithms.
const (
	FIFO Algorithm = iota
	LRU
)

// String returns the configuration name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case FIFO:
		return "FIFO"
	case LRU:
		return "LRU"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm maps a configuration string to an Algorithm. Matching is
// case-insensitive.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "FIFO":
		return FIFO, nil
	case "LRU":
		return LRU, nil
	default:
		return FIFO, fmt.Errorf("unknown replacement algorithm %q", name)
	}
}

// A Victim names the resident mapping a policy chose to evict. Frame is the
// index the eviction frees for reuse.
type Victim struct {
	PID   string
	Page  int
	Frame int
}

// A Policy orders the resident mappings of the pool and names a victim when
// every frame is owned. Every entry a policy holds must correspond to a
// currently resident mapping; the engine purges entries eagerly on process
// teardown, never lazily.
type Policy interface {
	// RecordLoad notes that a fault resolution placed (pid, page) into a
	// frame.
	RecordLoad(pid string, page, frame int)

	// RecordHit notes that a resident (pid, page) was accessed again.
	RecordHit(pid string, page int)

	// SelectVictim removes and returns the mapping the policy evicts
	// next. It reports false when the policy holds no entries, which with
	// a full pool means the bookkeeping has drifted.
	SelectVictim() (Victim, bool)

	// PurgeProcess drops every entry that references the process.
	PurgeProcess(pid string)
}

// NewPolicy returns a fresh, empty policy for the algorithm.
func NewPolicy(a Algorithm) Policy {
	switch a {
	case FIFO:
		return newFIFOPolicy()
	case LRU:
		return newLRUPolicy()
	default:
		panic("unknown replacement algorithm " + a.String())
	}
}

package paging

// A Builder can build paging engines.
type Builder struct {
	totalKB   int
	frameKB   int
	algorithm Algorithm
}

// MakeBuilder returns a builder with the default geometry, 1024 KB of
// physical memory carved into 64 KB frames, replaced with FIFO.
func MakeBuilder() Builder {
	return Builder{
		totalKB:   1024,
		frameKB:   64,
		algorithm: FIFO,
	}
}

// WithCapacityKB sets the physical memory size in kilobytes.
func (b Builder) WithCapacityKB(kb int) Builder {
	b.totalKB = kb
	return b
}

// WithFrameKB sets the frame size in kilobytes.
func (b Builder) WithFrameKB(kb int) Builder {
	b.frameKB = kb
	return b
}

// WithAlgorithm sets the replacement algorithm.
func (b Builder) WithAlgorithm(a Algorithm) Builder {
	b.algorithm = a
	return b
}

// Build creates the engine. It panics on degenerate geometry, as the
// builder is wiring code that runs at startup with program constants.
func (b Builder) Build() *Engine {
	if err := ValidateConfig(b.totalKB, b.frameKB); err != nil {
		panic(err)
	}

	return &Engine{
		pool:      NewPool(b.totalKB, b.frameKB),
		tables:    make(map[string]*PageTable),
		algorithm: b.algorithm,
		policy:    NewPolicy(b.algorithm),
	}
}

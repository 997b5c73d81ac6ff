package simulation

import (
	"time"

	"github.com/rs/xid"

	"github.com/GPCSantosh/RealTime-Mem-Allocator/driver"
	"github.com/GPCSantosh/RealTime-Mem-Allocator/monitoring"
	"github.com/GPCSantosh/RealTime-Mem-Allocator/paging"
	"github.com/GPCSantosh/RealTime-Mem-Allocator/recording"
)

// Builder can be used to build a simulation.
type Builder struct {
	capacityKB int
	frameKB    int
	algorithm  paging.Algorithm
	seed       int64

	monitorOn   bool
	monitorPort int

	recordingOn    bool
	outputFileName string
	clickHouse     *recording.ClickHouseOptions
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		capacityKB:  1024,
		frameKB:     64,
		algorithm:   paging.FIFO,
		monitorOn:   true,
		recordingOn: true,
	}
}

// WithCapacityKB sets the size of the simulated physical memory.
func (b Builder) WithCapacityKB(capacityKB int) Builder {
	b.capacityKB = capacityKB
	return b
}

// WithFrameKB sets the size of one frame.
func (b Builder) WithFrameKB(frameKB int) Builder {
	b.frameKB = frameKB
	return b
}

// WithAlgorithm sets the replacement algorithm.
func (b Builder) WithAlgorithm(algorithm paging.Algorithm) Builder {
	b.algorithm = algorithm
	return b
}

// WithSeed fixes the workload randomness for reproducible runs.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithoutRecording sets the simulation to not record its event history.
func (b Builder) WithoutRecording() Builder {
	b.recordingOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithClickHouse records the event history to a ClickHouse server instead
// of a local SQLite file.
func (b Builder) WithClickHouse(opts recording.ClickHouseOptions) Builder {
	b.clickHouse = &opts
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordingOn && b.outputFileName != "" {
		panic("output file cannot be set when recording is disabled")
	}

	if !b.recordingOn && b.clickHouse != nil {
		panic("clickhouse cannot be set when recording is disabled")
	}

	if b.outputFileName != "" && b.clickHouse != nil {
		panic("cannot record to both sqlite and clickhouse")
	}

	if err := paging.ValidateConfig(b.capacityKB, b.frameKB); err != nil {
		panic(err)
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:       xid.New().String(),
		interval: 100 * time.Millisecond,
		stop:     make(chan struct{}),
	}

	s.engine = paging.MakeBuilder().
		WithCapacityKB(b.capacityKB).
		WithFrameKB(b.frameKB).
		WithAlgorithm(b.algorithm).
		Build()

	driverBuilder := driver.MakeBuilder().WithEngine(s.engine)
	if b.seed != 0 {
		driverBuilder = driverBuilder.WithSeed(b.seed)
	}
	s.driver = driverBuilder.Build()

	if b.recordingOn {
		s.buildRecording(b)
	}

	if b.monitorOn {
		s.buildMonitoring(b)
	}

	go s.workloadLoop()

	return s
}

func (s *Simulation) buildRecording(b Builder) {
	if b.clickHouse != nil {
		s.dataRecorder = recording.NewClickHouseRecorder(*b.clickHouse)
	} else {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "memtrack_" + s.id
		}

		s.dataRecorder = recording.NewSQLiteRecorder(outputPath)
	}

	s.observer = recording.NewEngineObserver(s.dataRecorder)
	s.engine.AcceptHook(s.observer)
}

func (s *Simulation) buildMonitoring(b Builder) {
	s.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		s.monitor = s.monitor.WithPortNumber(b.monitorPort)
	}

	s.monitor.RegisterController(s)
	if s.observer != nil {
		s.monitor.RegisterObserver(s.observer)
	}

	s.engine.AcceptHook(s.monitor.StateHook())
	s.monitor.StartServer()
}

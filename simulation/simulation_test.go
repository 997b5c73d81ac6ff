package simulation

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GPCSantosh/RealTime-Mem-Allocator/monitoring"
	"github.com/GPCSantosh/RealTime-Mem-Allocator/paging"
)

var _ monitoring.Controller = (*Simulation)(nil)

var _ = Describe("Simulation", func() {
	var simulation *Simulation

	BeforeEach(func() {
		simulation = MakeBuilder().
			WithoutMonitoring().
			WithCapacityKB(256).
			WithFrameKB(64).
			WithSeed(1).
			Build()
	})

	AfterEach(func() {
		simulation.Terminate()

		os.Remove("memtrack_" + simulation.ID() + ".sqlite3")
	})

	It("should create a process sized in frames", func() {
		pid, pages := simulation.CreateProcess(200)

		Expect(pid).To(Equal("P1"))
		Expect(pages).To(Equal(4))
		Expect(simulation.Snapshot().Used).To(Equal(1))
	})

	It("should access pages and report the outcome", func() {
		simulation.CreateProcess(200)

		Expect(simulation.Access("P1", 0).Hit).To(BeTrue())
		Expect(simulation.Access("P1", 1).Hit).To(BeFalse())
	})

	It("should deallocate a process", func() {
		simulation.CreateProcess(200)

		msg, err := simulation.Deallocate("P1")

		Expect(err).ToNot(HaveOccurred())
		Expect(msg).To(Equal("Deallocated P1"))
		Expect(simulation.Snapshot().Used).To(Equal(0))
	})

	It("should refuse to deallocate an unknown process", func() {
		_, err := simulation.Deallocate("P9")

		Expect(err).To(MatchError(paging.ErrUnknownProcess))
	})

	It("should apply a new configuration and restart pid numbering", func() {
		simulation.CreateProcess(200)

		snapshot, err := simulation.ApplyConfig(512, 64, "LRU")

		Expect(err).ToNot(HaveOccurred())
		Expect(snapshot.Total).To(Equal(8))
		Expect(snapshot.Algorithm).To(Equal(paging.LRU))
		Expect(snapshot.Used).To(Equal(0))

		pid, _ := simulation.CreateProcess(100)
		Expect(pid).To(Equal("P1"))
	})

	It("should reject an unknown algorithm", func() {
		_, err := simulation.ApplyConfig(512, 64, "OPT")

		Expect(err).To(HaveOccurred())
	})

	It("should reject degenerate geometry and keep the old state", func() {
		simulation.CreateProcess(200)

		_, err := simulation.ApplyConfig(0, 64, "FIFO")

		Expect(err).To(MatchError(paging.ErrInvalidConfig))
		Expect(simulation.Snapshot().Used).To(Equal(1))
	})

	It("should step the workload on demand", func() {
		report := simulation.Step()

		Expect(report.AdmittedPID).To(Equal("P1"))
		Expect(simulation.Snapshot().PIDs).To(Equal([]string{"P1"}))
	})

	It("should run a burst of steps", func() {
		reports := simulation.Burst(5)

		Expect(reports).To(HaveLen(5))
		Expect(
			simulation.Snapshot().Counters.PageFaults,
		).To(BeNumerically(">=", 5))
	})

	It("should step in the background while running", func() {
		simulation.SetRunning(true, 2*time.Millisecond)
		defer simulation.SetRunning(false, 0)

		Eventually(func() uint64 {
			return simulation.Snapshot().Counters.PageFaults
		}).Should(BeNumerically(">", 0))
	})

	It("should not step while stopped", func() {
		before := simulation.Snapshot().Counters.PageFaults

		Consistently(func() uint64 {
			return simulation.Snapshot().Counters.PageFaults
		}, 300*time.Millisecond).Should(Equal(before))
	})

	It("should tolerate a repeated terminate", func() {
		simulation.Terminate()

		Expect(simulation.Terminate).ToNot(Panic())
	})

	It("should write the event history next to the process", func() {
		simulation.CreateProcess(200)

		_, err := os.Stat("memtrack_" + simulation.ID() + ".sqlite3")

		Expect(err).ToNot(HaveOccurred())
	})

	Context("builder with custom output file", func() {
		var customSim *Simulation

		AfterEach(func() {
			if customSim != nil {
				customSim.Terminate()
				os.Remove("test_custom_output.sqlite3")
				customSim = nil
			}
		})

		It("should allow custom output file to be set", func() {
			customSim = MakeBuilder().
				WithoutMonitoring().
				WithOutputFileName("test_custom_output").
				Build()

			Expect(customSim).ToNot(BeNil())
			Expect(customSim.DataRecorder()).ToNot(BeNil())
		})
	})

	Context("builder without recording", func() {
		It("should leave the recorder out", func() {
			bare := MakeBuilder().
				WithoutMonitoring().
				WithoutRecording().
				Build()
			defer bare.Terminate()

			Expect(bare.DataRecorder()).To(BeNil())
		})
	})

	Context("builder parameter validation", func() {
		It("should refuse a monitor port without monitoring", func() {
			Expect(func() {
				MakeBuilder().WithoutMonitoring().WithMonitorPort(8080).Build()
			}).To(Panic())
		})

		It("should refuse an output file without recording", func() {
			Expect(func() {
				MakeBuilder().
					WithoutMonitoring().
					WithoutRecording().
					WithOutputFileName("x").
					Build()
			}).To(Panic())
		})

		It("should refuse degenerate pool geometry", func() {
			Expect(func() {
				MakeBuilder().WithoutMonitoring().WithCapacityKB(0).Build()
			}).To(Panic())
		})
	})
})

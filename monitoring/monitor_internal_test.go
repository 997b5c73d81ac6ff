package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GPCSantosh/RealTime-Mem-Allocator/driver"
	"github.com/GPCSantosh/RealTime-Mem-Allocator/paging"
)

// fakeController serves the handlers the way a live simulation would, but
// without the background goroutines.
type fakeController struct {
	engine *paging.Engine
	driver *driver.Driver

	running  bool
	interval time.Duration
}

func newFakeController() *fakeController {
	engine := paging.MakeBuilder().
		WithCapacityKB(256).
		WithFrameKB(64).
		Build()

	return &fakeController{
		engine: engine,
		driver: driver.MakeBuilder().
			WithEngine(engine).
			WithSeed(1).
			Build(),
	}
}

func (c *fakeController) ApplyConfig(
	totalKB, frameKB int,
	algorithm string,
) (paging.Snapshot, error) {
	algo, err := paging.ParseAlgorithm(algorithm)
	if err != nil {
		return paging.Snapshot{}, err
	}

	if err := c.engine.Reconfigure(totalKB, frameKB, algo); err != nil {
		return paging.Snapshot{}, err
	}

	c.driver.Reset()

	return c.engine.Snapshot(), nil
}

func (c *fakeController) CreateProcess(sizeKB int) (string, int) {
	return c.driver.CreateProcess(sizeKB)
}

func (c *fakeController) Access(pid string, page int) paging.AccessResult {
	return c.engine.AccessPage(pid, page)
}

func (c *fakeController) Deallocate(pid string) (string, error) {
	return c.engine.DeallocateProcess(pid)
}

func (c *fakeController) Step() driver.StepReport {
	return c.driver.Step()
}

func (c *fakeController) Burst(n int) []driver.StepReport {
	return c.driver.Burst(n)
}

func (c *fakeController) SetRunning(start bool, interval time.Duration) {
	c.running = start
	c.interval = interval
}

func (c *fakeController) Running() bool {
	return c.running
}

func (c *fakeController) Snapshot() paging.Snapshot {
	return c.engine.Snapshot()
}

func (c *fakeController) Engine() *paging.Engine {
	return c.engine
}

// lockedController serializes every call with one mutex, the way a live
// simulation does.
type lockedController struct {
	mu    sync.Mutex
	inner *fakeController
}

func (c *lockedController) ApplyConfig(
	totalKB, frameKB int,
	algorithm string,
) (paging.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inner.ApplyConfig(totalKB, frameKB, algorithm)
}

func (c *lockedController) CreateProcess(sizeKB int) (string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inner.CreateProcess(sizeKB)
}

func (c *lockedController) Access(pid string, page int) paging.AccessResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inner.Access(pid, page)
}

func (c *lockedController) Deallocate(pid string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inner.Deallocate(pid)
}

func (c *lockedController) Step() driver.StepReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inner.Step()
}

func (c *lockedController) Burst(n int) []driver.StepReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inner.Burst(n)
}

func (c *lockedController) SetRunning(start bool, interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inner.SetRunning(start, interval)
}

func (c *lockedController) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inner.Running()
}

func (c *lockedController) Snapshot() paging.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inner.Snapshot()
}

func (c *lockedController) Engine() *paging.Engine {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inner.Engine()
}

func postJSON(
	handler func(http.ResponseWriter, *http.Request),
	path, body string,
) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()

	handler(w, req)

	return w
}

func decodeState(w *httptest.ResponseRecorder) StateDTO {
	state := StateDTO{}
	err := json.Unmarshal(w.Body.Bytes(), &state)
	Expect(err).ToNot(HaveOccurred())

	return state
}

func decodeAction(w *httptest.ResponseRecorder) actionRsp {
	rsp := actionRsp{}
	err := json.Unmarshal(w.Body.Bytes(), &rsp)
	Expect(err).ToNot(HaveOccurred())

	return rsp
}

var _ = Describe("Monitor", func() {
	var (
		controller *fakeController
		m          *Monitor
	)

	BeforeEach(func() {
		controller = newFakeController()
		m = NewMonitor()
		m.RegisterController(controller)
	})

	Context("state endpoint", func() {
		It("should report the frame grid and counters", func() {
			w := httptest.NewRecorder()
			m.state(w, httptest.NewRequest(http.MethodGet, "/api/state", nil))

			state := decodeState(w)

			Expect(state.Total).To(Equal(4))
			Expect(state.Used).To(Equal(0))
			Expect(state.Frames).To(HaveLen(4))
			Expect(state.Frames[0].PID).To(BeNil())
			Expect(state.Algorithm).To(Equal("FIFO"))
			Expect(state.Running).To(BeFalse())
		})

		It("should show occupied frames with pid and label", func() {
			controller.engine.AdmitProcess("P1", 2)
			controller.engine.AccessPage("P1", 1)

			w := httptest.NewRecorder()
			m.state(w, httptest.NewRequest(http.MethodGet, "/api/state", nil))

			state := decodeState(w)

			Expect(state.Used).To(Equal(1))
			Expect(*state.Frames[0].PID).To(Equal("P1"))
			Expect(*state.Frames[0].Label).To(Equal("p1"))
			Expect(state.PIDs).To(Equal([]string{"P1"}))
		})
	})

	Context("config endpoint", func() {
		It("should report the current geometry on GET", func() {
			w := httptest.NewRecorder()
			m.applyConfig(w,
				httptest.NewRequest(http.MethodGet, "/api/config", nil))

			cfg := configReq{}
			Expect(json.Unmarshal(w.Body.Bytes(), &cfg)).To(Succeed())
			Expect(cfg.TotalKB).To(Equal(256))
			Expect(cfg.FrameKB).To(Equal(64))
			Expect(cfg.Algorithm).To(Equal("FIFO"))
		})

		It("should apply a new geometry and respond with fresh state", func() {
			w := postJSON(m.applyConfig, "/api/config",
				`{"total_kb":512,"frame_kb":64,"algorithm":"LRU"}`)

			Expect(w.Code).To(Equal(http.StatusOK))

			state := decodeState(w)
			Expect(state.Total).To(Equal(8))
			Expect(state.Algorithm).To(Equal("LRU"))
		})

		It("should reject an unknown algorithm", func() {
			w := postJSON(m.applyConfig, "/api/config",
				`{"total_kb":512,"frame_kb":64,"algorithm":"OPT"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeAction(w).OK).To(BeFalse())
		})

		It("should reject degenerate geometry", func() {
			w := postJSON(m.applyConfig, "/api/config",
				`{"total_kb":0,"frame_kb":64,"algorithm":"FIFO"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("process endpoint", func() {
		It("should create a process sized in frames", func() {
			w := postJSON(m.createProcess, "/api/process", `{"size":200}`)

			rsp := decodeAction(w)
			Expect(rsp.OK).To(BeTrue())
			Expect(rsp.Msg).To(Equal("Created P1 with 4 pages"))
		})

		It("should default to 200 KB on an empty body", func() {
			w := postJSON(m.createProcess, "/api/process", "")

			Expect(decodeAction(w).Msg).To(Equal("Created P1 with 4 pages"))
		})
	})

	Context("access endpoint", func() {
		It("should require a pid", func() {
			w := postJSON(m.accessPage, "/api/access", `{"page":0}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeAction(w).Msg).To(Equal("No PID"))
		})

		It("should report where the page landed", func() {
			w := postJSON(m.accessPage, "/api/access", `{"pid":"P1","page":3}`)

			rsp := decodeAction(w)
			Expect(rsp.OK).To(BeTrue())
			Expect(rsp.Msg).To(Equal("loaded in frame 0"))
		})

		It("should report hits", func() {
			controller.engine.AccessPage("P1", 3)

			w := postJSON(m.accessPage, "/api/access", `{"pid":"P1","page":3}`)

			Expect(decodeAction(w).Msg).To(Equal("hit"))
		})
	})

	Context("deallocate endpoint", func() {
		It("should require a pid", func() {
			w := postJSON(m.deallocate, "/api/deallocate", `{}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeAction(w).Msg).To(Equal("No PID"))
		})

		It("should 404 on an unknown pid", func() {
			w := postJSON(m.deallocate, "/api/deallocate", `{"pid":"P9"}`)

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decodeAction(w).Msg).To(Equal("PID not found"))
		})

		It("should tear a process down", func() {
			controller.engine.AdmitProcess("P1", 2)
			controller.engine.AccessPage("P1", 0)

			w := postJSON(m.deallocate, "/api/deallocate", `{"pid":"P1"}`)

			Expect(decodeAction(w).Msg).To(Equal("Deallocated P1"))
			Expect(controller.engine.Snapshot().Used).To(Equal(0))
		})
	})

	Context("workload endpoints", func() {
		It("should step once and respond with state", func() {
			w := postJSON(m.step, "/api/step", "")

			state := decodeState(w)
			Expect(state.PIDs).To(HaveLen(1))
			Expect(state.PageFaults).To(BeNumerically(">", 0))
		})

		It("should run a burst of five steps", func() {
			w := postJSON(m.randomAccess, "/api/random", "")

			state := decodeState(w)
			Expect(state.PageFaults).To(BeNumerically(">=", 5))
		})
	})

	Context("run endpoint", func() {
		It("should start the workload loop", func() {
			w := postJSON(m.toggleRun, "/api/run",
				`{"start":true,"interval":0.5}`)

			Expect(decodeAction(w).Msg).To(Equal("Running=true"))
			Expect(controller.running).To(BeTrue())
			Expect(controller.interval).To(Equal(500 * time.Millisecond))
		})

		It("should stop the workload loop", func() {
			controller.running = true

			w := postJSON(m.toggleRun, "/api/run", `{"start":false}`)

			Expect(decodeAction(w).Msg).To(Equal("Running=false"))
			Expect(controller.running).To(BeFalse())
		})

		It("should default to starting on an empty body", func() {
			w := postJSON(m.toggleRun, "/api/run", "")

			Expect(decodeAction(w).Msg).To(Equal("Running=true"))
		})
	})

	Context("engine endpoint", func() {
		It("should serialize the engine", func() {
			w := httptest.NewRecorder()
			m.engineDetails(w,
				httptest.NewRequest(http.MethodGet, "/api/engine", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.Len()).To(BeNumerically(">", 0))
		})

		It("should reject a malformed depth", func() {
			w := httptest.NewRecorder()
			m.engineDetails(w,
				httptest.NewRequest(http.MethodGet, "/api/engine?depth=x", nil))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("state heartbeat", func() {
		It("should answer config requests while the heartbeat samples", func() {
			m.RegisterController(&lockedController{inner: controller})

			go m.serveState()
			defer m.StopServer()

			for i := 0; i < 20; i++ {
				w := postJSON(m.applyConfig, "/api/config",
					`{"total_kb":512,"frame_kb":64,"algorithm":"LRU"}`)
				Expect(w.Code).To(Equal(http.StatusOK))
			}
		})

		It("should tolerate a repeated stop", func() {
			go m.serveState()

			m.StopServer()
			Expect(m.StopServer).ToNot(Panic())
		})
	})

	Context("event stream", func() {
		It("should frame states as state_update events", func() {
			w := httptest.NewRecorder()
			m.writeEvent(w, m.freshState())

			body := w.Body.String()
			Expect(body).To(HavePrefix("event: state_update\ndata: "))
			Expect(body).To(HaveSuffix("\n\n"))
		})
	})
})

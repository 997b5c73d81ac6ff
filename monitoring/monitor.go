// Package monitoring turns a paging simulation into a web server. It
// serves the dashboard, answers state and control requests, streams
// state_update events to connected clients, and reports host-level
// telemetry next to the simulated pool.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/GPCSantosh/RealTime-Mem-Allocator/driver"
	"github.com/GPCSantosh/RealTime-Mem-Allocator/monitoring/web"
	"github.com/GPCSantosh/RealTime-Mem-Allocator/paging"
	"github.com/GPCSantosh/RealTime-Mem-Allocator/recording"
)

// A Controller is the serialized control surface of a running simulation.
// Each method is one atomic operation; the implementation owns the lock
// that keeps concurrent requests from interleaving inside the engine.
type Controller interface {
	ApplyConfig(totalKB, frameKB int, algorithm string) (paging.Snapshot, error)
	CreateProcess(sizeKB int) (pid string, pages int)
	Access(pid string, page int) paging.AccessResult
	Deallocate(pid string) (string, error)
	Step() driver.StepReport
	Burst(n int) []driver.StepReport
	SetRunning(start bool, interval time.Duration)
	Running() bool
	Snapshot() paging.Snapshot
	Engine() *paging.Engine
}

// Monitor can turn a simulation into a server and allows external monitoring
// and controlling of the simulation.
type Monitor struct {
	controller Controller
	observer   *recording.EngineObserver
	portNumber int
	actualPort int

	broadcaster *Broadcaster

	sysMemMu   sync.Mutex
	lastSysMem *SystemMemDTO

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		broadcaster: NewBroadcaster(),
		stop:        make(chan struct{}),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterController registers the simulation that the monitor controls.
func (m *Monitor) RegisterController(c Controller) {
	m.controller = c
}

// RegisterObserver ties the telemetry heartbeat to the recorded history,
// so host memory samples land in the same store as engine events.
func (m *Monitor) RegisterObserver(o *recording.EngineObserver) {
	m.observer = o
}

// StateHook returns the hook that marks the state dirty after every engine
// mutation. Register it on the engine with AcceptHook.
func (m *Monitor) StateHook() paging.Hook {
	return m.broadcaster
}

// Port returns the port the server actually listens on. It differs from the
// configured port when the monitor fell back to a random one.
func (m *Monitor) Port() int {
	return m.actualPort
}

// StartServer starts the monitor as a web server with a custom port if wanted.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	fs := web.GetAssets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/state", m.state)
	r.HandleFunc("/api/config", m.applyConfig)
	r.HandleFunc("/api/process", m.createProcess)
	r.HandleFunc("/api/access", m.accessPage)
	r.HandleFunc("/api/deallocate", m.deallocate)
	r.HandleFunc("/api/step", m.step)
	r.HandleFunc("/api/random", m.randomAccess)
	r.HandleFunc("/api/run", m.toggleRun)
	r.HandleFunc("/api/events", m.streamEvents)
	r.HandleFunc("/api/engine", m.engineDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(fServer)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.actualPort = listener.Addr().(*net.TCPAddr).Port

	fmt.Fprintf(
		os.Stderr,
		"Tracking memory with http://localhost:%d\n",
		m.actualPort)

	go m.serveState()

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

// StopServer ends the state heartbeat. The HTTP listener itself lives for
// the rest of the process, like any debug server. Stopping twice is a no-op.
func (m *Monitor) StopServer() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}

// serveState drives the broadcaster. Host memory is sampled once per
// heartbeat and reused for kick-triggered pushes in between.
func (m *Monitor) serveState() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	m.sampleHostMemory()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sampleHostMemory()
		case <-m.broadcaster.kick:
		}

		m.broadcaster.publish(stateFromSnapshot(
			m.controller.Snapshot(), m.lastSystemMem(), m.controller.Running()))
	}
}

func (m *Monitor) sampleHostMemory() {
	sysMem := systemMemorySnapshot()

	m.sysMemMu.Lock()
	m.lastSysMem = sysMem
	m.sysMemMu.Unlock()

	if m.observer != nil && sysMem != nil {
		m.observer.RecordSystemSample(
			sysMem.TotalKB, sysMem.UsedKB, sysMem.AvailableKB, sysMem.Percent)
	}
}

// lastSystemMem returns the most recent host memory sample. The heartbeat
// goroutine writes it while request handlers read it.
func (m *Monitor) lastSystemMem() *SystemMemDTO {
	m.sysMemMu.Lock()
	defer m.sysMemMu.Unlock()

	return m.lastSysMem
}

func (m *Monitor) freshState() StateDTO {
	return stateFromSnapshot(
		m.controller.Snapshot(),
		systemMemorySnapshot(),
		m.controller.Running(),
	)
}

type actionRsp struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg"`
}

func (m *Monitor) state(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.freshState())
}

type configReq struct {
	TotalKB   int    `json:"total_kb"`
	FrameKB   int    `json:"frame_kb"`
	Mode      string `json:"mode"`
	Algorithm string `json:"algorithm"`
}

func (m *Monitor) applyConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s := m.controller.Snapshot()
		m.writeJSON(w, configReq{
			TotalKB:   s.TotalKB,
			FrameKB:   s.FrameKB,
			Mode:      "Paging",
			Algorithm: s.Algorithm.String(),
		})

		return
	}

	req := configReq{TotalKB: 1024, FrameKB: 64, Algorithm: "FIFO"}
	if err := m.decode(w, r, &req); err != nil {
		return
	}

	snapshot, err := m.controller.ApplyConfig(
		req.TotalKB, req.FrameKB, req.Algorithm)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		m.writeJSON(w, actionRsp{OK: false, Msg: err.Error()})

		return
	}

	m.writeJSON(w, stateFromSnapshot(
		snapshot, m.lastSystemMem(), m.controller.Running()))
}

type createProcessReq struct {
	Size int `json:"size"`
}

func (m *Monitor) createProcess(w http.ResponseWriter, r *http.Request) {
	req := createProcessReq{Size: 200}
	if err := m.decode(w, r, &req); err != nil {
		return
	}

	pid, pages := m.controller.CreateProcess(req.Size)

	m.writeJSON(w, actionRsp{
		OK:  true,
		Msg: fmt.Sprintf("Created %s with %d pages", pid, pages),
	})
}

type accessReq struct {
	PID  string `json:"pid"`
	Page int    `json:"page"`
}

func (m *Monitor) accessPage(w http.ResponseWriter, r *http.Request) {
	req := accessReq{}
	if err := m.decode(w, r, &req); err != nil {
		return
	}

	if req.PID == "" {
		w.WriteHeader(http.StatusBadRequest)
		m.writeJSON(w, actionRsp{OK: false, Msg: "No PID"})

		return
	}

	res := m.controller.Access(req.PID, req.Page)

	m.writeJSON(w, actionRsp{OK: true, Msg: res.Message})
}

type deallocateReq struct {
	PID string `json:"pid"`
}

func (m *Monitor) deallocate(w http.ResponseWriter, r *http.Request) {
	req := deallocateReq{}
	if err := m.decode(w, r, &req); err != nil {
		return
	}

	if req.PID == "" {
		w.WriteHeader(http.StatusBadRequest)
		m.writeJSON(w, actionRsp{OK: false, Msg: "No PID"})

		return
	}

	msg, err := m.controller.Deallocate(req.PID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		m.writeJSON(w, actionRsp{OK: false, Msg: err.Error()})

		return
	}

	m.writeJSON(w, actionRsp{OK: true, Msg: msg})
}

func (m *Monitor) step(w http.ResponseWriter, _ *http.Request) {
	m.controller.Step()

	m.writeJSON(w, m.freshState())
}

func (m *Monitor) randomAccess(w http.ResponseWriter, _ *http.Request) {
	m.controller.Burst(5)

	m.writeJSON(w, m.freshState())
}

type toggleRunReq struct {
	Start    bool    `json:"start"`
	Interval float64 `json:"interval"`
}

func (m *Monitor) toggleRun(w http.ResponseWriter, r *http.Request) {
	req := toggleRunReq{Start: true}
	if err := m.decode(w, r, &req); err != nil {
		return
	}

	interval := time.Duration(req.Interval * float64(time.Second))
	m.controller.SetRunning(req.Start, interval)
	m.broadcaster.Notify()

	m.writeJSON(w, actionRsp{
		OK:  true,
		Msg: fmt.Sprintf("Running=%t", req.Start),
	})
}

func (m *Monitor) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := m.broadcaster.Subscribe()
	defer m.broadcaster.Unsubscribe(ch)

	// New clients get the current state right away, like a handshake.
	m.writeEvent(w, m.freshState())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case state, open := <-ch:
			if !open {
				return
			}

			m.writeEvent(w, state)
			flusher.Flush()
		}
	}
}

func (*Monitor) writeEvent(w http.ResponseWriter, state StateDTO) {
	payload, err := json.Marshal(state)
	dieOnErr(err)

	fmt.Fprintf(w, "event: state_update\ndata: %s\n\n", payload)
}

func (m *Monitor) engineDetails(w http.ResponseWriter, r *http.Request) {
	depth := 1

	if d := r.URL.Query().Get("depth"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 1 {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Error: invalid depth %q", d)

			return
		}

		depth = parsed
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.controller.Engine())
	serializer.SetMaxDepth(depth)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64       `json:"cpu_percent"`
	MemorySize uint64        `json:"memory_size"`
	SystemMem  *SystemMemDTO `json:"system_mem"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
		SystemMem:  systemMemorySnapshot(),
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	m.writeJSON(w, prof)
}

// decode fills v from the request body. An empty body keeps the defaults
// already present in v.
func (m *Monitor) decode(
	w http.ResponseWriter,
	r *http.Request,
	v any,
) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}

	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
	}

	return err
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	payload, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(payload)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}

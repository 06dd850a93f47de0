package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/miretskiy/mm1ksim/simulator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "server")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development
		return true
	},
}

// Client message types
type ClientMessage struct {
	Type   string               `json:"type"` // start | pause | reset | config_update
	Config *simulator.SimConfig `json:"config,omitempty"`
	Speed  float64              `json:"speed,omitempty"` // Virtual time advanced per tick
}

// Server message types
type ServerMessage struct {
	Type     string               `json:"type"` // status | progress | result | error
	Running  *bool                `json:"running,omitempty"`
	Config   *simulator.SimConfig `json:"config,omitempty"`
	Snapshot *simulator.Snapshot  `json:"snapshot,omitempty"`
	Result   *simulator.RunResult `json:"result,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// simState manages the simulation state and UI pacing
type simState struct {
	sim     *simulator.Simulator
	running bool
	paused  bool
	speed   float64
	mu      sync.Mutex
	stopCh  chan struct{}
}

func newSimState(config simulator.SimConfig) (*simState, error) {
	sim, err := newLiveSimulator(config)
	if err != nil {
		return nil, err
	}

	return &simState{
		sim:    sim,
		speed:  defaultSpeed(config),
		stopCh: make(chan struct{}),
	}, nil
}

func newLiveSimulator(config simulator.SimConfig) (*simulator.Simulator, error) {
	sim, err := simulator.NewSimulator(config)
	if err != nil {
		return nil, err
	}
	sim.AcceptHook(metricsHook{})
	sim.SetLogger(log.WithField("seed", sim.Seed()))
	return sim, nil
}

// defaultSpeed finishes a run in about 200 ticks
func defaultSpeed(config simulator.SimConfig) float64 {
	return config.Window() / 200
}

// start begins the simulation (sets running flag). A positive speed replaces
// the virtual time advanced per tick. A finished run stays stopped until reset.
func (s *simState) start(speed float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if speed > 0 {
		s.speed = speed
	}
	if s.sim.IsFinished() {
		return false
	}
	s.running = true
	s.paused = false
	return true
}

// pause pauses the simulation
func (s *simState) pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// reset replays the simulation from the beginning with the same seed
func (s *simState) reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.paused = false
	return s.sim.Reset()
}

// updateConfig replaces the run with a fresh one for config
func (s *simState) updateConfig(config simulator.SimConfig, speed float64) error {
	sim, err := newLiveSimulator(config)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim = sim
	s.running = false
	s.paused = false
	s.speed = defaultSpeed(config)
	if speed > 0 {
		s.speed = speed
	}
	return nil
}

// isRunning returns true if simulation is running and not paused
func (s *simState) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && !s.paused
}

// getConfig returns the current simulator configuration
func (s *simState) getConfig() simulator.SimConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Config()
}

// step advances the simulation by one tick. It returns the snapshot and, once
// the horizon is reached, the final result.
func (s *simState) step() (simulator.Snapshot, *simulator.RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sim.StepByDelta(s.speed)
	snap := s.sim.Snapshot()
	if !s.sim.IsFinished() {
		return snap, nil, nil
	}

	s.running = false
	result, err := s.sim.Result()
	if err != nil {
		return snap, nil, err
	}
	return snap, &result, nil
}

// stop signals the UI loop to stop
func (s *simState) stop() {
	close(s.stopCh)
}

// uiUpdateLoop periodically advances the run and sends updates to the client
// This runs in its own goroutine and controls UI pacing
func uiUpdateLoop(conn *safeConn, state *simState, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-state.stopCh:
			log.Debug("UI update loop stopping")
			return

		case <-ticker.C:
			if !state.isRunning() {
				continue
			}

			snap, result, err := state.step()
			updatePrometheusMetrics(snap)
			if err := conn.WriteJSON(ServerMessage{Type: "progress", Snapshot: &snap}); err != nil {
				log.WithError(err).Warn("error sending progress")
				return
			}

			if err != nil {
				conn.WriteJSON(ServerMessage{Type: "error", Error: err.Error()})
				continue
			}
			if result != nil {
				updatePrometheusResult(result)
				running := false
				msg := ServerMessage{Type: "result", Running: &running, Result: result}
				if err := conn.WriteJSON(msg); err != nil {
					log.WithError(err).Warn("error sending result")
					return
				}
			}
		}
	}
}

// safeConn wraps a WebSocket connection with a mutex to prevent concurrent writes
type safeConn struct {
	*websocket.Conn
	writeMu sync.Mutex
}

func (sc *safeConn) WriteJSON(v interface{}) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	return sc.Conn.WriteJSON(v)
}

func (sc *safeConn) sendStatus(state *simState) error {
	running := state.isRunning()
	cfg := state.getConfig()
	return sc.WriteJSON(ServerMessage{Type: "status", Running: &running, Config: &cfg})
}

type server struct {
	index    *template.Template
	gatherer prometheus.Gatherer
	tick     time.Duration
}

func (srv *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("error upgrading connection")
		return
	}
	defer conn.Close()

	// Wrap connection with mutex for safe concurrent writes
	safeConn := &safeConn{Conn: conn}
	clientLog := log.WithField("remote", r.RemoteAddr)
	clientLog.Info("client connected")

	state, err := newSimState(simulator.DefaultConfig())
	if err != nil {
		clientLog.WithError(err).Error("error creating simulator")
		return
	}

	if err := safeConn.sendStatus(state); err != nil {
		clientLog.WithError(err).Warn("error sending status")
		return
	}

	go uiUpdateLoop(safeConn, state, srv.tick)

	// Handle messages from client
	for {
		var msg ClientMessage
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				clientLog.WithError(err).Warn("error reading message")
			}
			break
		}

		clientLog.WithField("type", msg.Type).Debug("received command")

		switch msg.Type {
		case "start":
			if !state.start(msg.Speed) {
				clientLog.Debug("run already finished, reset to replay")
			}
			safeConn.sendStatus(state)

		case "pause":
			state.pause()
			safeConn.sendStatus(state)

		case "reset":
			if err := state.reset(); err != nil {
				safeConn.WriteJSON(ServerMessage{Type: "error", Error: err.Error()})
				continue
			}
			safeConn.sendStatus(state)

		case "config_update":
			if msg.Config == nil {
				safeConn.WriteJSON(ServerMessage{Type: "error", Error: "config_update without config"})
				continue
			}
			if err := state.updateConfig(*msg.Config, msg.Speed); err != nil {
				clientLog.WithError(err).Warn("error updating config")
				safeConn.WriteJSON(ServerMessage{Type: "error", Error: err.Error()})
				continue
			}
			clientLog.WithField("config", fmt.Sprintf("%+v", *msg.Config)).Info("config updated")
			safeConn.sendStatus(state)

		default:
			safeConn.WriteJSON(ServerMessage{Type: "error", Error: "unknown command " + msg.Type})
		}
	}

	// Clean up
	state.stop()
	clientLog.Info("client disconnected")
}

// handleSimulate runs one simulation to completion and returns its result
func (srv *server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	config := simulator.DefaultConfig()
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := simulator.Simulate(config, metricsHook{})
	if err != nil {
		status := http.StatusInternalServerError
		if simulator.IsConfigError(err) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	updatePrometheusResult(&result)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.WithError(err).Warn("error encoding result")
	}
}

func (srv *server) serveHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := srv.index.Execute(w, simulator.DefaultConfig()); err != nil {
		log.WithError(err).Error("error executing template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func quitHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("shutdown requested via /quitquitquit")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Server shutting down...")

	go func() {
		time.Sleep(100 * time.Millisecond)
		log.Info("server stopped")
		os.Exit(0)
	}()
}

func (srv *server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", srv.serveHome).Methods(http.MethodGet)
	r.HandleFunc("/ws", srv.handleWebSocket)
	r.HandleFunc("/api/simulate", srv.handleSimulate).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.HandlerFor(srv.gatherer, promhttp.HandlerOpts{}))
	r.HandleFunc("/quitquitquit", quitHandler)
	return r
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	templateDir := flag.String("templates", "templates", "directory holding index.html")
	tick := flag.Duration("tick", 500*time.Millisecond, "UI update interval")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.WithError(err).Fatal("invalid log level")
	}
	logrus.SetLevel(level)

	// Load templates
	templatePath := filepath.Join(*templateDir, "index.html")
	index, err := template.ParseFiles(templatePath)
	if err != nil {
		log.WithError(err).Fatal("error loading template")
	}
	log.WithField("path", templatePath).Info("loaded template")

	registry := prometheus.NewRegistry()
	initPrometheusMetrics(registry)

	srv := &server{index: index, gatherer: registry, tick: *tick}

	log.WithFields(logrus.Fields{
		"http":    "http://localhost" + *addr,
		"ws":      "ws://localhost" + *addr + "/ws",
		"metrics": "http://localhost" + *addr + "/metrics",
	}).Info("server starting")
	log.Fatal(http.ListenAndServe(*addr, srv.router()))
}

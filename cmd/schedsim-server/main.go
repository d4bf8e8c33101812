// Command schedsim-server exposes a single running Scheduler over HTTP: one
// endpoint per event kind, a stats endpoint, and a WebSocket stream of
// handler decisions. It is a collaborator in the spec.md §1 sense (it owns
// no scheduling logic, only (de)serialization and dispatch into the core).
package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-foundations/schedsim"
	"github.com/go-foundations/schedsim/policy"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("schedsim-server")
	}
}

func newRootCmd() *cobra.Command {
	var addr string
	var cores int
	var scheme string

	cmd := &cobra.Command{
		Use:   "schedsim-server",
		Short: "Serve a running Scheduler over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(addr, cores, scheme)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&cores, "cores", 2, "number of simulated cores")
	cmd.Flags().StringVar(&scheme, "scheme", "FCFS", "scheduling scheme")

	return cmd
}

func runServer(addr string, cores int, scheme string) error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	s, err := schemeFromName(scheme)
	if err != nil {
		return err
	}

	srv := newServer(cores, s)
	log.Info().Str("addr", addr).Str("scheme", s.String()).Int("cores", cores).Msg("schedsim-server listening")
	return http.ListenAndServe(addr, srv.router())
}

func schemeFromName(name string) (policy.Scheme, error) {
	switch name {
	case "FCFS":
		return policy.FCFS, nil
	case "SJF":
		return policy.SJF, nil
	case "PSJF":
		return policy.PSJF, nil
	case "PRI":
		return policy.PRI, nil
	case "PPRI":
		return policy.PPRI, nil
	case "RR":
		return policy.RR, nil
	default:
		return 0, &unknownSchemeError{name: name}
	}
}

type unknownSchemeError struct{ name string }

func (e *unknownSchemeError) Error() string { return "unknown scheme: " + e.name }

// broadcastFrame is one JSON message pushed to every connected WebSocket
// client after a handler invocation.
type broadcastFrame struct {
	RunID      string `json:"run_id"`
	Kind       string `json:"kind"`
	Result     int    `json:"result"`
	DebugQueue string `json:"debug_queue"`
}

type server struct {
	sched  *schedsim.Scheduler
	runID  uuid.UUID
	upgrad websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newServer(cores int, scheme policy.Scheme) *server {
	return &server{
		sched:   schedsim.NewScheduler(cores, scheme),
		runID:   uuid.New(),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/events/arrival", s.handleArrival).Methods(http.MethodPost)
	r.HandleFunc("/events/completion", s.handleCompletion).Methods(http.MethodPost)
	r.HandleFunc("/events/quantum_expired", s.handleQuantumExpired).Methods(http.MethodPost)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/stream", s.handleStream)
	return r
}

type arrivalBody struct {
	JobID       int `json:"job_id"`
	Time        int `json:"time"`
	RunningTime int `json:"running_time"`
	Priority    int `json:"priority"`
}

func (s *server) handleArrival(w http.ResponseWriter, r *http.Request) {
	var body arrivalBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result := s.sched.NewJob(body.JobID, body.Time, body.RunningTime, body.Priority)
	s.broadcast("arrival", result)
	writeJSON(w, map[string]int{"core_id": result})
}

type coreTimeBody struct {
	CoreID int `json:"core_id"`
	JobID  int `json:"job_id"`
	Time   int `json:"time"`
}

func (s *server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	var body coreTimeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result := s.sched.JobFinished(body.CoreID, body.JobID, body.Time)
	s.broadcast("completion", result)
	writeJSON(w, map[string]int{"next_job_id": result})
}

func (s *server) handleQuantumExpired(w http.ResponseWriter, r *http.Request) {
	var body coreTimeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result := s.sched.QuantumExpired(body.CoreID, body.Time)
	s.broadcast("quantum_expired", result)
	writeJSON(w, map[string]int{"next_job_id": result})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"average_waiting_time":    s.sched.AverageWaitingTime(),
		"average_turnaround_time": s.sched.AverageTurnaroundTime(),
		"average_response_time":   s.sched.AverageResponseTime(),
		"debug_queue":             s.sched.DebugQueue(),
	})
}

func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrad.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// Drain and discard inbound messages; this stream is server->client
	// only. Exit the goroutine once the client disconnects.
	go func() {
		defer s.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *server) removeClient(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *server) broadcast(kind string, result int) {
	frame := broadcastFrame{
		RunID:      s.runID.String(),
		Kind:       kind,
		Result:     result,
		DebugQueue: s.sched.DebugQueue(),
	}

	log.Info().
		Str("run_id", frame.RunID).
		Str("kind", kind).
		Int("result", result).
		Msg("decision")
	log.Debug().
		Str("run_id", frame.RunID).
		Str("kind", kind).
		Int("result", result).
		Str("debug_queue", frame.DebugQueue).
		Msg("handled event")

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(frame); err != nil {
			log.Warn().Err(err).Msg("dropping websocket client after write error")
			go s.removeClient(conn)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

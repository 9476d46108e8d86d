// Package httpapi serves the inspector's HTTP surface: the live status
// SSE stream, a recording-status snapshot, a manual pass trigger for
// simulation mode, a health check and an optional live preview
// websocket, following the teacher's mux.Router + middleware
// composition. It has no inspection-history, start, stop, per-sensor
// toggle or AI-threshold endpoints.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/oin/wood-inspector/internal/capture"
	"github.com/oin/wood-inspector/internal/frame"
	"github.com/oin/wood-inspector/internal/sensor"
	"github.com/oin/wood-inspector/internal/status"
)

// Server bundles the dependencies HTTP handlers need.
type Server struct {
	Bus         *status.Bus
	Tracker     *capture.Tracker
	Simulator   *sensor.SimulatedSource
	Buffer      *frame.Buffer
	CORSOrigins []string
	log         *log.Logger
}

func NewServer(bus *status.Bus, tracker *capture.Tracker, sim *sensor.SimulatedSource, buf *frame.Buffer, corsOrigins []string) *Server {
	return &Server{
		Bus:         bus,
		Tracker:     tracker,
		Simulator:   sim,
		Buffer:      buf,
		CORSOrigins: corsOrigins,
		log:         log.New(log.Writer(), "[httpapi] ", log.LstdFlags),
	}
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)
	r.Use(s.corsMiddleware)

	r.HandleFunc("/sensor-inspection/events", status.HandleSSEStream(s.Bus)).Methods(http.MethodGet)
	r.HandleFunc("/sensor-inspection/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/sensor-inspection/simulate/pass", s.handleSimulatePass).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.Buffer != nil {
		r.HandleFunc("/ws/preview", s.handlePreview(s.Buffer))
	}

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Tracker.Get()
	writeJSON(w, map[string]any{
		"recording_state": st.State.String(),
		"pending_count":   st.PendingCount,
		"subscribers":     s.Bus.SubscriberCount(),
	})
}

func (s *Server) handleSimulatePass(w http.ResponseWriter, r *http.Request) {
	if s.Simulator == nil {
		http.Error(w, "simulation mode is disabled", http.StatusConflict)
		return
	}
	go s.Simulator.TriggerLeftToRightPass(500 * time.Millisecond)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// loggingMiddleware and corsMiddleware follow
// internal/handlers/infra.go's LoggingMiddleware / MakeCORSMiddleware
// shape, adapted to this service's single-tenant, wildcard-friendly CORS
// policy.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, o := range s.CORSOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// Package api exposes the engine's command API (C7) and test-time
// controls over HTTP (C11), following the ledger service's
// gorilla/mux router plus JSON writeJSON/writeError helper convention,
// wrapped in gorilla/handlers' logging and recovery middleware.
package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"nrgchamp/hotelac/internal/engine"
	"nrgchamp/hotelac/internal/metrics"
)

// Server holds the engine and metrics the HTTP handlers dispatch to.
type Server struct {
	eng *engine.Engine
	met *metrics.Metrics
	log *slog.Logger
}

// New builds a Server.
func New(eng *engine.Engine, met *metrics.Metrics, log *slog.Logger) *Server {
	return &Server{eng: eng, met: met, log: log}
}

// Router builds the mux.Router for every endpoint this server exposes,
// wrapped in request logging and panic recovery.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/ac/power", s.powerOn).Methods(http.MethodPost)
	r.HandleFunc("/ac/power/off", s.powerOff).Methods(http.MethodPost)
	r.HandleFunc("/ac/temp", s.changeTemp).Methods(http.MethodPost)
	r.HandleFunc("/ac/speed", s.changeSpeed).Methods(http.MethodPost)
	r.HandleFunc("/ac/mode", s.changeMode).Methods(http.MethodPost)
	r.HandleFunc("/ac/state", s.state).Methods(http.MethodGet)

	r.HandleFunc("/monitor/status", s.monitorStatus).Methods(http.MethodGet)

	r.HandleFunc("/test/time/set_speed", s.testSetSpeed).Methods(http.MethodPost)
	r.HandleFunc("/test/time/jump", s.testJump).Methods(http.MethodPost)
	r.HandleFunc("/test/time/pause", s.testPause).Methods(http.MethodPost)
	r.HandleFunc("/test/time/resume", s.testResume).Methods(http.MethodPost)
	r.HandleFunc("/test/time/status", s.testTimeStatus).Methods(http.MethodGet)
	r.HandleFunc("/test/initRoom", s.testInitRoom).Methods(http.MethodPost)

	if s.met != nil {
		r.Handle("/metrics", s.met.Handler()).Methods(http.MethodGet)
	}

	return handlers.RecoveryHandler()(handlers.CombinedLoggingHandler(logWriter{s.log}, r))
}

// logWriter adapts slog.Logger to the io.Writer gorilla/handlers wants
// for its Apache-combined access log.
type logWriter struct{ log *slog.Logger }

func (w logWriter) Write(p []byte) (int, error) {
	w.log.Info("http access", "line", string(p))
	return len(p), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeResult(w http.ResponseWriter, result engine.Result) {
	switch result.Code {
	case engine.CodeOK:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": result.Message})
	case engine.CodeNotFound:
		writeError(w, http.StatusNotFound, result.Message)
	case engine.CodePrecondition:
		writeError(w, http.StatusConflict, result.Message)
	case engine.CodeOutOfRange, engine.CodeInvalidArgument:
		writeError(w, http.StatusBadRequest, result.Message)
	default:
		writeError(w, http.StatusInternalServerError, result.Message)
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	b, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func parseRoomID(r *http.Request) (int, bool) {
	v := r.URL.Query().Get("roomId")
	if v == "" {
		return 0, false
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return id, true
}

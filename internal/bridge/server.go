package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/texforge/texforge/internal/pipeline"
)

// Server exposes the bridge over HTTP so the host application (or an export
// script) can POST its export-finished notification.
type Server struct {
	addr   string
	http   *http.Server
	bridge *Bridge
	logger *slog.Logger
}

// NewServer builds the HTTP front for a bridge.
func NewServer(addr string, b *Bridge, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{addr: addr, bridge: b, logger: logger}
	mux := http.NewServeMux()
	mux.HandleFunc("/export-finished", s.handleExportFinished)
	mux.HandleFunc("/healthz", s.handleHealthz)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.withLogging(mux),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      300 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return s
}

// Start blocks serving requests until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("listening for export notifications", "addr", s.addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type outcomeJSON struct {
	Path    string `json:"path,omitempty"`
	Format  string `json:"format,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleExportFinished(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST only"})
		return
	}

	var res ExportResult
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		sendJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid body: %v", err)})
		return
	}

	outcomes, err := s.bridge.HandleExport(r.Context(), &res)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrInvalidEncoderPath) {
			status = http.StatusUnprocessableEntity
		}
		sendJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	out := make([]outcomeJSON, len(outcomes))
	for i, o := range outcomes {
		out[i] = outcomeJSON{
			Path:    o.Path,
			Format:  o.Format.String(),
			Status:  string(o.Status),
			Message: o.Message,
		}
	}
	sendJSON(w, http.StatusOK, map[string]any{"outcomes": out})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method, "path", r.URL.Path,
			"status", rec.status, "bytes", rec.size,
			"duration", time.Since(start))
	})
}

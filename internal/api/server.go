package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"meikan/internal/jobs"
	"meikan/internal/logging"
)

// Server serves the job polling API over HTTP.
type Server struct {
	bind    string
	service *JobService
	logger  *slog.Logger

	httpServer *http.Server
	listener   net.Listener
}

// NewServer builds an API server bound to the configured address.
func NewServer(bind string, service *JobService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{
		bind:    bind,
		service: service,
		logger:  logging.NewComponentLogger(logger, "api"),
	}
}

// Start begins listening. It returns once the listener is bound; serving
// continues in the background until Stop or context cancellation.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("POST /api/jobs", s.handleSubmitJob)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("DELETE /api/jobs/{id}", s.handleDeleteJob)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("bind api listener on %s: %w", s.bind, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server terminated", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("bind", s.Addr()))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	if s.httpServer == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api server shutdown", logging.Error(err))
	}
}

// Addr reports the bound address, useful when the configured port is 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	views, err := s.service.Jobs(r.Context(), status)
	if err != nil {
		if errors.Is(err, ErrBadFilter) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("list jobs", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"jobs": views})
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req jobs.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	view, err := s.service.Submit(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrBadRequest) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("submit job", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}
	s.logger.Info("job submitted",
		logging.String(logging.FieldJobID, view.ID),
		logging.String(logging.FieldInstitution, view.Institution))
	s.writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	view, err := s.service.Job(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			s.writeError(w, http.StatusNotFound, "job not found")
		case errors.Is(err, jobs.ErrMalformed):
			s.logger.Error("malformed job record", logging.String(logging.FieldJobID, id), logging.Error(err))
			s.writeError(w, http.StatusInternalServerError, "job record is malformed")
		default:
			s.logger.Error("load job", logging.String(logging.FieldJobID, id), logging.Error(err))
			s.writeError(w, http.StatusInternalServerError, "failed to load job")
		}
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.Remove(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Error("delete job", logging.String(logging.FieldJobID, id), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to delete job")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

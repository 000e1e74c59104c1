package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	witnessconsensus "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus"
	domainerrors "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/errors"
	electionhttp "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/transport/http"
	"github.com/Philip38-hub/OYA-sub000/internal/platform/push"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/Philip38-hub/OYA-sub000/internal/platform/httpserver/docs"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	consensus witnessconsensus.Module
	hub       *push.Hub
}

func New(
	consensus witnessconsensus.Module,
	hub *push.Hub,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		consensus: consensus,
		hub:       hub,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /voting-process", s.handleCreateProcess)
	s.mux.HandleFunc("GET /voting-process", s.handleListProcesses)
	s.mux.HandleFunc("GET /voting-process/{id}", s.handleGetProcess)
	s.mux.HandleFunc("PUT /voting-process/{id}/start", s.handleStartProcess)
	s.mux.HandleFunc("PUT /voting-process/{id}/close", s.handleCloseProcess)
	s.mux.HandleFunc("POST /submitResult", s.handleSubmitResult)
	s.mux.HandleFunc("GET /getTally/{votingProcessId}", s.handleGetTally)
	s.mux.HandleFunc("GET /tally-stream/{votingProcessId}", s.handleTallyStream)
	s.mux.HandleFunc("GET /stats", s.handleStats)
}

func (s *Server) handleCreateProcess(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.CreateProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	resp, err := s.consensus.Handler.CreateProcessHandler(r.Context(), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListProcesses(w http.ResponseWriter, r *http.Request) {
	resp, err := s.consensus.Handler.ListProcessesHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProcess(w http.ResponseWriter, r *http.Request) {
	resp, err := s.consensus.Handler.GetProcessHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartProcess(w http.ResponseWriter, r *http.Request) {
	resp, err := s.consensus.Handler.StartProcessHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseProcess(w http.ResponseWriter, r *http.Request) {
	resp, err := s.consensus.Handler.CloseProcessHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.SubmitResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	resp, err := s.consensus.Handler.SubmitResultHandler(r.Context(), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTally(w http.ResponseWriter, r *http.Request) {
	resp, err := s.consensus.Handler.GetTallyHandler(r.Context(), r.PathValue("votingProcessId"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleTallyStream is the persistent push channel: a Server-Sent Events
// stream delivering a tally_update frame whenever a station's verified state
// changes. A snapshot is sent on connect so late subscribers start current.
func (s *Server) handleTallyStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeElectionError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "streaming unsupported")
		return
	}
	processID := r.PathValue("votingProcessId")

	snapshot, err := s.consensus.Handler.TallySnapshotHandler(r.Context(), processID)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "data: %s\n\n", snapshot)
	flusher.Flush()

	sub := s.hub.Subscribe(processID)
	defer s.hub.Unsubscribe(sub)

	for {
		select {
		case <-r.Context().Done():
			return
		case payload, open := <-sub.Messages:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats := s.hub.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"push":   stats,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeElectionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, electionhttp.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func writeElectionDomainError(w http.ResponseWriter, err error) {
	if validation, ok := domainerrors.AsValidationError(err); ok {
		details := make([]electionhttp.FieldDetail, 0, len(validation.Fields))
		for _, field := range validation.Fields {
			details = append(details, electionhttp.FieldDetail{
				Field:   field.Field,
				Message: field.Message,
			})
		}
		writeJSON(w, http.StatusBadRequest, electionhttp.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: details,
		})
		return
	}

	switch {
	case errors.Is(err, domainerrors.ErrProcessNotFound):
		writeElectionError(w, http.StatusNotFound, "PROCESS_NOT_FOUND", "voting process not found")
	case errors.Is(err, domainerrors.ErrStationNotFound):
		writeElectionError(w, http.StatusNotFound, "STATION_NOT_FOUND", "polling station not found")
	case errors.Is(err, domainerrors.ErrInvalidStatus):
		writeElectionError(w, http.StatusBadRequest, "INVALID_STATUS", "operation not allowed in the process's current status")
	default:
		writeElectionError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}

// Package server exposes the review service over HTTP: meeting review,
// direct transcript analysis, meeting CRUD, health, and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/otherjamesbrown/diviz/pkg/analysis"
	"github.com/otherjamesbrown/diviz/pkg/buildinfo"
	dverrors "github.com/otherjamesbrown/diviz/pkg/errors"
	"github.com/otherjamesbrown/diviz/pkg/logging"
	"github.com/otherjamesbrown/diviz/pkg/meeting"
	"github.com/otherjamesbrown/diviz/services/review"
)

// userIDHeader carries the caller's identity. Requests without it are
// rejected with 401.
const userIDHeader = "X-User-ID"

// Server is the HTTP front end for the review service.
type Server struct {
	service *review.Service
	logger  logging.Logger

	httpServer *http.Server
}

// New creates a server listening on addr. A nil logger falls back to a no-op
// logger.
func New(addr string, service *review.Service, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	s := &Server{
		service: service,
		logger:  logger,
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/review/{meetCode}", s.requireUser(s.handleReview))
	mux.HandleFunc("POST /api/analyze/transcript", s.requireUser(s.handleAnalyzeTranscript))

	mux.HandleFunc("GET /api/meetings", s.requireUser(s.handleListMeetings))
	mux.HandleFunc("POST /api/meetings", s.requireUser(s.handleCreateMeeting))
	mux.HandleFunc("GET /api/meetings/{meetCode}", s.requireUser(s.handleGetMeeting))
	mux.HandleFunc("DELETE /api/meetings/{meetCode}", s.requireUser(s.handleDeleteMeeting))

	return mux
}

// ListenAndServe runs the server until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", logging.F("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// userHandler is a handler that has already passed identity extraction.
type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

// requireUser extracts the caller identity header, rejecting requests
// without one.
func (s *Server) requireUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(userIDHeader)
		if userID == "" {
			s.writeError(w, http.StatusUnauthorized, "Missing "+userIDHeader+" header")
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service": "diviz",
		"version": buildinfo.Get("diviz").Version,
		"status":  "ok",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// reviewResponse is the payload for review and direct analysis requests.
type reviewResponse struct {
	Status        string         `json:"status"`
	MeetingCode   string         `json:"meeting_code,omitempty"`
	Stats         analysis.Stats `json:"stats"`
	Feedback      string         `json:"feedback"`
	FeedbackError string         `json:"feedback_error,omitempty"`
	Cached        bool           `json:"cached"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request, userID string) {
	meetCode := r.PathValue("meetCode")
	agenda := meeting.Agenda{
		Title:       r.URL.Query().Get("title"),
		Description: r.URL.Query().Get("description"),
	}

	result, err := s.service.Review(r.Context(), userID, meetCode, agenda)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, reviewResponse{
		Status:        "success",
		MeetingCode:   meetCode,
		Stats:         result.Analysis.Stats,
		Feedback:      result.Analysis.Feedback,
		FeedbackError: result.Analysis.FeedbackError,
		Cached:        result.Cached,
	})
}

// analyzeTranscriptRequest is the body of POST /api/analyze/transcript.
// MeetingCode is optional; when empty the transcript ID (or a generated
// code) keys the stored analysis.
type analyzeTranscriptRequest struct {
	Agenda      meeting.Agenda      `json:"agenda"`
	Transcript  *meeting.Transcript `json:"transcript"`
	MeetingCode string              `json:"meeting_code,omitempty"`
}

func (s *Server) handleAnalyzeTranscript(w http.ResponseWriter, r *http.Request, userID string) {
	var req analyzeTranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Transcript == nil {
		s.writeError(w, http.StatusBadRequest, "Transcript is required")
		return
	}

	result, meetingCode, err := s.service.AnalyzeTranscript(r.Context(), userID, req.Agenda, req.Transcript, req.MeetingCode)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, reviewResponse{
		Status:        "success",
		MeetingCode:   meetingCode,
		Stats:         result.Stats,
		Feedback:      result.Feedback,
		FeedbackError: result.FeedbackError,
	})
}

// createMeetingRequest is the body of POST /api/meetings.
type createMeetingRequest struct {
	MeetingCode string     `json:"meeting_code"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request, userID string) {
	var req createMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := s.service.CreateMeeting(r.Context(), userID, review.CreateMeetingParams{
		MeetingCode: req.MeetingCode,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Agenda:      meeting.Agenda{Title: req.Title, Description: req.Description},
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request, userID string) {
	records, err := s.service.ListMeetings(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"meetings": records})
}

func (s *Server) handleGetMeeting(w http.ResponseWriter, r *http.Request, userID string) {
	record, err := s.service.GetMeeting(r.Context(), userID, r.PathValue("meetCode"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteMeeting(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.service.DeleteMeeting(r.Context(), userID, r.PathValue("meetCode")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps service errors to HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case dverrors.IsNotFound(err):
		s.writeError(w, http.StatusNotFound, "Meeting not found")
	case dverrors.IsValidation(err):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case dverrors.IsUnauthorized(err):
		s.writeError(w, http.StatusUnauthorized, "Unauthorized")
	case dverrors.IsUnavailable(err):
		s.writeError(w, http.StatusBadGateway, "Failed to retrieve transcript")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
	default:
		s.logger.Error("request failed",
			logging.F("path", r.URL.Path),
			logging.Err(err))
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"detail": message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response", logging.Err(err))
	}
}

package weekly

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ItIsYeBananaduck/git-fit/internal/buffer"
	"github.com/ItIsYeBananaduck/git-fit/internal/intensity"
	"github.com/ItIsYeBananaduck/git-fit/internal/telemetry/tracing"
	"github.com/ItIsYeBananaduck/git-fit/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=weekly_test

type handlerBuffer interface {
	Add(session intensity.WorkoutSession) (intensity.WorkoutSession, error)
	AttachFeedback(userID, sessionID string, feedback intensity.Feedback) error
	PendingCount(userID string) (int, error)
}

type handlerSummaries interface {
	Get(ctx context.Context, userID, weekOfYear string) (DisplaySummary, error)
	GetLatest(ctx context.Context, userID string) (DisplaySummary, error)
}

type processRunner interface {
	Run(ctx context.Context, userID string) (RunReport, error)
}

type SyncStatusResponse struct {
	UserID          string `json:"userId"`
	PendingSessions int    `json:"pendingSessions"`
	Connected       bool   `json:"connected"`
}

type AttachFeedbackRequest struct {
	Feedback string `json:"feedback"`
}

type AttachFeedbackResponse struct {
	SessionID string `json:"sessionId"`
	Feedback  string `json:"feedback"`
}

type Handler struct {
	buf       handlerBuffer
	summaries handlerSummaries
	runner    processRunner
	connected func(ctx context.Context) bool
}

func NewHandler(
	buf handlerBuffer,
	summaries handlerSummaries,
	runner processRunner,
	connected func(ctx context.Context) bool,
) *Handler {
	return &Handler{
		buf:       buf,
		summaries: summaries,
		runner:    runner,
		connected: connected,
	}
}

func (handler *Handler) HandleAddSession(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.weekly.addsession")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var session intensity.WorkoutSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		log.Tracef("add session, unmarshal json params: %s", err)
		http.Error(w, "add session failed", http.StatusBadRequest)
		return
	}

	if session.UserID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}

	added, err := handler.buf.Add(session)
	if err != nil {
		if errors.Is(err, intensity.ErrInvalidSession) || errors.Is(err, intensity.ErrInvalidFeedback) {
			http.Error(w, "error, invalid session", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to buffer session for %s: %s", session.UserID, err)
		http.Error(w, "error, failed to add session", http.StatusInternalServerError)
		return
	}

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("failed to marshal added session: %s", err)
		http.Error(w, "error, failed to add session", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

// HandleAttachFeedback rejects malformed feedback outright, nothing invalid
// gets near a buffered session.
func (handler *Handler) HandleAttachFeedback(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.weekly.attachfeedback")
	defer span.End()

	vars := mux.Vars(r)
	userID := vars["userId"]
	sessionID := vars["sessionId"]
	if userID == "" || sessionID == "" {
		http.Error(w, "error, user or session id empty", http.StatusBadRequest)
		return
	}

	var req AttachFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("attach feedback, unmarshal json params: %s", err)
		http.Error(w, "attach feedback failed", http.StatusBadRequest)
		return
	}

	feedback, err := intensity.ParseFeedback(req.Feedback)
	if err != nil {
		http.Error(w, "error, unknown feedback value", http.StatusBadRequest)
		return
	}

	if err := handler.buf.AttachFeedback(userID, sessionID, feedback); err != nil {
		switch {
		case errors.Is(err, buffer.ErrSessionNotFound):
			http.Error(w, "session not found", http.StatusNotFound)
		case errors.Is(err, buffer.ErrFeedbackAlreadySet):
			http.Error(w, "error, feedback already set", http.StatusConflict)
		default:
			log.Errorf("failed to attach feedback to %s/%s: %s", userID, sessionID, err)
			http.Error(w, "error, failed to attach feedback", http.StatusInternalServerError)
		}
		return
	}

	respJson, err := json.Marshal(AttachFeedbackResponse{
		SessionID: sessionID,
		Feedback:  feedback.String(),
	})
	if err != nil {
		log.Errorf("failed to marshal feedback response: %s", err)
		http.Error(w, "error, failed to attach feedback", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weekly.getsummary")
	defer span.End()

	vars := mux.Vars(r)
	userID := vars["userId"]
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}

	var (
		summary DisplaySummary
		err     error
	)
	if week := r.URL.Query().Get("week"); week != "" {
		summary, err = handler.summaries.Get(ctx, userID, week)
	} else {
		summary, err = handler.summaries.GetLatest(ctx, userID)
	}
	if err != nil {
		if errors.Is(err, ErrSummaryNotFound) {
			http.Error(w, "summary not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get summary for %s: %s", userID, err)
		http.Error(w, "error, failed to get summary", http.StatusInternalServerError)
		return
	}

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("failed to marshal summary: %s", err)
		http.Error(w, "error, failed to get summary", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, summaryJson, http.StatusOK)
}

func (handler *Handler) HandleSyncStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weekly.syncstatus")
	defer span.End()

	vars := mux.Vars(r)
	userID := vars["userId"]
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}

	pending, err := handler.buf.PendingCount(userID)
	if err != nil {
		log.Errorf("failed to count pending sessions for %s: %s", userID, err)
		http.Error(w, "error, failed to get sync status", http.StatusInternalServerError)
		return
	}

	statusJson, err := json.Marshal(SyncStatusResponse{
		UserID:          userID,
		PendingSessions: pending,
		Connected:       handler.connected(ctx),
	})
	if err != nil {
		log.Errorf("failed to marshal sync status: %s", err)
		http.Error(w, "error, failed to get sync status", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statusJson, http.StatusOK)
}

// HandleProcessNow runs the weekly pipeline outside the schedule. Behind the
// app secret middleware.
func (handler *Handler) HandleProcessNow(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weekly.processnow")
	defer span.End()

	vars := mux.Vars(r)
	userID := vars["userId"]
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}

	report, err := handler.runner.Run(ctx, userID)
	if err != nil {
		log.Errorf("on demand weekly run for %s: %s", userID, err)
		http.Error(w, "error, weekly run failed", http.StatusInternalServerError)
		return
	}

	reportJson, err := json.Marshal(report)
	if err != nil {
		log.Errorf("failed to marshal run report: %s", err)
		http.Error(w, "error, weekly run failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, reportJson, http.StatusOK)
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/jobs"
	"github.com/sevigo/review-relay/internal/storage"
)

// ReviewsHandler queues relay jobs and serves the review archive.
type ReviewsHandler struct {
	dispatcher core.JobDispatcher
	store      storage.Store
	logger     *slog.Logger
}

// NewReviewsHandler creates the handler. store may be nil when no database is
// configured; archive lookups then answer 503.
func NewReviewsHandler(dispatcher core.JobDispatcher, store storage.Store, logger *slog.Logger) *ReviewsHandler {
	return &ReviewsHandler{dispatcher: dispatcher, store: store, logger: logger}
}

type createReviewRequest struct {
	RepoOwner string `json:"repo_owner"`
	RepoName  string `json:"repo_name"`
	PRNumber  int    `json:"pr_number"`
	HeadSHA   string `json:"head_sha"`
	Markdown  string `json:"markdown"`
	DryRun    bool   `json:"dry_run"`
}

type createReviewResponse struct {
	ID string `json:"id"`
}

// Create validates the payload and queues a relay job.
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload createReviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 2*jobs.MaxMarkdownBytes)).Decode(&payload); err != nil {
		writeError(w, h.logger, statusForReadError(err), "invalid JSON body")
		return
	}

	req := &core.RelayRequest{
		Target: core.PullRequestTarget{
			RepoOwner: payload.RepoOwner,
			RepoName:  payload.RepoName,
			PRNumber:  payload.PRNumber,
			HeadSHA:   payload.HeadSHA,
		},
		Markdown: payload.Markdown,
		DryRun:   payload.DryRun,
	}
	if err := jobs.ValidateRequest(r.Context(), req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), req); err != nil {
		h.logger.Error("failed to dispatch relay job", "error", err, "repo", req.Target.FullName())
		if errors.Is(err, jobs.ErrQueueFull) || errors.Is(err, jobs.ErrDispatcherStopped) {
			writeError(w, h.logger, http.StatusServiceUnavailable, "relay queue is not accepting jobs")
			return
		}
		writeError(w, h.logger, http.StatusInternalServerError, "failed to start relay job")
		return
	}

	h.logger.Info("relay job dispatched successfully", "job_id", req.ID, "repo", req.Target.FullName(), "pr", req.Target.PRNumber)
	writeJSON(w, h.logger, http.StatusAccepted, createReviewResponse{ID: req.ID})
}

// Latest returns the most recent archived review of a pull request.
func (h *ReviewsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, h.logger, http.StatusServiceUnavailable, "review archive is not configured")
		return
	}

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		writeError(w, h.logger, http.StatusBadRequest, "pull request number must be a positive integer")
		return
	}
	repoFullName := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "repo")

	review, err := h.store.GetLatestReviewForPR(r.Context(), repoFullName, number)
	if errors.Is(err, storage.ErrReviewNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "no review archived for this pull request")
		return
	}
	if err != nil {
		h.logger.Error("failed to load review", "repo", repoFullName, "pr", number, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "failed to load review")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, review)
}

// List returns the most recent archived reviews, newest first.
func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, h.logger, http.StatusServiceUnavailable, "review archive is not configured")
		return
	}

	limit := storage.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, h.logger, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	reviews, err := h.store.ListReviews(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list reviews", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	if reviews == nil {
		reviews = []core.Review{}
	}
	writeJSON(w, h.logger, http.StatusOK, reviews)
}

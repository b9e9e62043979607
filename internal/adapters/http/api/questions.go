package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/horary/internal/adapters/mq/queue"
	"github.com/okian/horary/internal/adapters/repository"
	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/internal/domain/types"
)

// QuestionsHandler handles asynchronous question intake and lookups.
type QuestionsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewQuestionsHandler creates a new questions handler. List requests are
// clamped to maxLimit.
func NewQuestionsHandler(deps Dependencies, maxLimit int) *QuestionsHandler {
	if maxLimit < 1 {
		maxLimit = defaultListLimit
	}
	return &QuestionsHandler{deps: deps, maxLimit: maxLimit}
}

// HandlePostQuestion handles POST /questions requests.
func (h *QuestionsHandler) HandlePostQuestion(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_question"

	q, err := decodeQuestion(r, h.deps)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if err := h.deps.Submit(r.Context(), q); err != nil {
		switch {
		case errors.Is(err, queue.ErrFull):
			writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
		case errors.Is(err, queue.ErrClosed):
			writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		}
		return
	}
	writeJSON(w, http.StatusAccepted, types.AcceptedResponse{ID: q.ID, Status: model.StatusPending})
}

// HandleGetQuestion handles GET /questions/{id} requests.
func (h *QuestionsHandler) HandleGetQuestion(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_question"

	rec, err := h.deps.Question(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, rec)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, repository.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}

// HandleListQuestions handles GET /questions?limit=N requests.
func (h *QuestionsHandler) HandleListQuestions(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_questions"

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrInvalidLimit))
			return
		}
		limit = n
	}
	limit = min(limit, h.maxLimit)

	recs, err := h.deps.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	if recs == nil {
		recs = []model.Record{}
	}
	writeJSON(w, http.StatusOK, types.ListResponse{Questions: recs, Count: len(recs)})
}

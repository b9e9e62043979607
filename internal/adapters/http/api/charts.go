package api

import (
	"errors"
	"net/http"

	"github.com/okian/horary/internal/domain/ephemeris"
	"github.com/okian/horary/internal/domain/types"
)

// ChartsHandler casts and judges charts synchronously.
type ChartsHandler struct {
	deps Dependencies
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(deps Dependencies) *ChartsHandler {
	return &ChartsHandler{deps: deps}
}

// HandlePostChart handles POST /charts requests.
func (h *ChartsHandler) HandlePostChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_chart"

	q, err := decodeQuestion(r, h.deps)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	rec, err := h.deps.Judge(r.Context(), q)
	switch {
	case err == nil:
	case errors.Is(err, ephemeris.ErrOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, "out_of_range", WrapKind(op, ErrUncomputable, err))
		return
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}

	writeJSON(w, http.StatusOK, types.ChartResponse{Question: rec.Question, Reading: *rec.Reading})
}

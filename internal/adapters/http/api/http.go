// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/internal/domain/types"
)

const (
	defaultListLimit = 20
	maxBodyBytes     = 1 << 16
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// NewQuestion assigns an id and resolves the location.
	NewQuestion(text string, askedAt time.Time, candidates ...model.Location) (model.Question, error)

	// Judge casts and judges synchronously and stores the record.
	Judge(ctx context.Context, q model.Question) (model.Record, error)

	// Submit stores the question as pending and queues it.
	Submit(ctx context.Context, q model.Question) error

	Question(ctx context.Context, id string) (model.Record, error)
	Recent(ctx context.Context, limit int) ([]model.Record, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	chartsHandler    *ChartsHandler
	questionsHandler *QuestionsHandler
}

// NewServer creates a new API server with all handlers. maxListLimit caps
// GET /questions.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxListLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		chartsHandler:    NewChartsHandler(deps),
		questionsHandler: NewQuestionsHandler(deps, maxListLimit),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Post("/charts", MetricsMiddleware(s.chartsHandler.HandlePostChart, "charts"))
	r.Post("/questions", MetricsMiddleware(s.questionsHandler.HandlePostQuestion, "questions"))
	r.Get("/questions", MetricsMiddleware(s.questionsHandler.HandleListQuestions, "questions"))
	r.Get("/questions/{id}", MetricsMiddleware(s.questionsHandler.HandleGetQuestion, "question"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeQuestion reads and validates a cast request and turns it into a
// question with an id and a resolved location.
func decodeQuestion(r *http.Request, deps Dependencies) (model.Question, error) {
	var req types.CastRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return model.Question{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := validateStruct(req); err != nil {
		return model.Question{}, err
	}
	askedAt, err := req.AskedAt()
	if err != nil {
		return model.Question{}, err
	}
	candidates, err := req.Candidates()
	if err != nil {
		return model.Question{}, err
	}
	return deps.NewQuestion(req.Question, askedAt, candidates...)
}

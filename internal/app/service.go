// Package service wires the horary engine to the question queue, worker pool
// and store, and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/horary/internal/adapters/mq/queue"
	"github.com/okian/horary/internal/adapters/mq/worker"
	"github.com/okian/horary/internal/adapters/repository"
	"github.com/okian/horary/internal/domain/aspect"
	"github.com/okian/horary/internal/domain/chart"
	"github.com/okian/horary/internal/domain/chartcache"
	"github.com/okian/horary/internal/domain/ephemeris"
	"github.com/okian/horary/internal/domain/horary"
	"github.com/okian/horary/internal/domain/houses"
	"github.com/okian/horary/internal/domain/location"
	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/pkg/logger"
	"github.com/okian/horary/pkg/metrics"
)

// Engine casts and judges questions.
type Engine interface {
	Ask(ctx context.Context, q model.Question) (model.Reading, error)
}

// RecastSummary reports a batch re-judgment.
type RecastSummary struct {
	Total  int `json:"total"`
	Judged int `json:"judged"`
	Failed int `json:"failed"`
}

// Service implements the API dependencies for the horary service.
type Service struct {
	mu sync.RWMutex

	engine  Engine
	store   repository.Store
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	cache   *chartcache.Cache
	locator *location.Resolver

	workerCount       int
	queueSize         int
	cacheSize         int
	recastConcurrency int
	houseSystem       houses.System
	includePoints     bool
	quincunx          bool
	minYear, maxYear  int

	now   func() time.Time
	newID func() string

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:       runtime.NumCPU() * 2,
		queueSize:         10_000,
		cacheSize:         10_000,
		recastConcurrency: runtime.NumCPU(),
		houseSystem:       houses.Regiomontanus,
		minYear:           ephemeris.DefaultMinYear,
		maxYear:           ephemeris.DefaultMaxYear,
		locator:           location.New(),
		now:               time.Now,
		newID:             func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting horary service...")

	if s.store == nil {
		s.store = repository.NewTreapStore(ctx)
		s.logger.Info(ctx, "using in-memory treap store")
	}
	if s.engine == nil {
		s.engine = s.buildEngine()
	}

	s.queue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
		queue.WithBufferSize(s.queueSize),
	)
	s.pool = worker.NewPool(s.workerCount, s.queue, s.engine, s.store, worker.WithClock(s.now))
	// Workers outlive a canceled start context; Stop drains them.
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "horary service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("cacheSize", s.cacheSize),
		logger.String("houseSystem", string(s.houseSystem)),
	)
	return nil
}

func (s *Service) buildEngine() *horary.Engine {
	casterOpts := []chart.Option{
		chart.WithProvider(ephemeris.New(ephemeris.WithYearRange(s.minYear, s.maxYear))),
		chart.WithResolver(houses.New(houses.WithSystem(s.houseSystem))),
		chart.WithLogger(s.logger.Named("chart")),
	}
	if s.cacheSize > 0 {
		s.cache = chartcache.New(chartcache.WithMaxSize(s.cacheSize))
		casterOpts = append(casterOpts, chart.WithCache(s.cache))
	}
	return horary.New(
		horary.WithCaster(chart.NewCaster(casterOpts...)),
		horary.WithAspectOptions(aspect.WithPoints(s.includePoints), aspect.WithQuincunx(s.quincunx)),
		horary.WithLogger(s.logger.Named("engine")),
	)
}

// Stop drains the queue, stops the workers and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping horary service...")

	var errs []error
	if s.pool != nil {
		errs = append(errs, s.pool.Shutdown(ctx))
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}

	s.started = false
	s.logger.Info(ctx, "horary service stopped")
	return errors.Join(errs...)
}

// NewQuestion builds a question with a fresh id. A zero askedAt means now.
// The location is the highest-priority valid candidate, or the fallback.
func (s *Service) NewQuestion(text string, askedAt time.Time, candidates ...model.Location) (model.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Question{}, ErrEmptyText
	}
	if askedAt.IsZero() {
		askedAt = s.now()
	}
	return model.Question{
		ID:       s.newID(),
		Text:     text,
		AskedAt:  askedAt.UTC().Round(0),
		Location: s.locator.Resolve(candidates...),
	}, nil
}

// Judge casts and judges q synchronously and stores the result.
func (s *Service) Judge(ctx context.Context, q model.Question) (model.Record, error) {
	store, err := s.ready()
	if err != nil {
		return model.Record{}, err
	}

	metrics.RecordQuestionSubmitted()
	reading, err := s.engine.Ask(ctx, q)
	if err != nil {
		metrics.RecordQuestionFailed()
		return model.Record{}, err
	}

	rec := model.Record{Question: q, Status: model.StatusDone, Reading: &reading, UpdatedAt: s.now().UTC()}
	if err := store.Save(ctx, rec); err != nil {
		return model.Record{}, fmt.Errorf("store question: %w", err)
	}
	metrics.RecordQuestionJudged()
	return rec, nil
}

// Submit stores q as pending and queues it for the workers.
func (s *Service) Submit(ctx context.Context, q model.Question) error {
	store, err := s.ready()
	if err != nil {
		return err
	}

	pending := model.Record{Question: q, Status: model.StatusPending, UpdatedAt: s.now().UTC()}
	if err := store.Save(ctx, pending); err != nil {
		return fmt.Errorf("store question: %w", err)
	}

	if err := s.queue.Enqueue(ctx, q); err != nil {
		_ = store.Delete(ctx, q.ID)
		if errors.Is(err, queue.ErrFull) {
			return fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return err
	}
	metrics.RecordQuestionSubmitted()
	s.logger.Debug(ctx, "question queued", logger.String("id", q.ID))
	return nil
}

// Question returns the stored record for id.
func (s *Service) Question(ctx context.Context, id string) (model.Record, error) {
	store, err := s.ready()
	if err != nil {
		return model.Record{}, err
	}
	return store.Get(ctx, id)
}

// Recent returns up to limit records, most recently asked first.
func (s *Service) Recent(ctx context.Context, limit int) ([]model.Record, error) {
	store, err := s.ready()
	if err != nil {
		return nil, err
	}
	return store.Recent(ctx, limit)
}

// Recast judges stored questions again, all of them when ids is empty.
// Judgment failures are stored on the record; store failures abort.
func (s *Service) Recast(ctx context.Context, ids ...string) (RecastSummary, error) {
	store, err := s.ready()
	if err != nil {
		return RecastSummary{}, err
	}

	if len(ids) == 0 {
		n := store.Count(ctx)
		if n == 0 {
			return RecastSummary{}, nil
		}
		recs, err := store.Recent(ctx, n)
		if err != nil {
			return RecastSummary{}, err
		}
		for _, r := range recs {
			ids = append(ids, r.Question.ID)
		}
	}

	var judged, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.recastConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			rec, err := store.Get(gctx, id)
			if err != nil {
				return fmt.Errorf("recast %s: %w", id, err)
			}
			reading, err := s.engine.Ask(gctx, rec.Question)
			if err != nil {
				failed.Add(1)
				rec.Status, rec.Reading, rec.Error = model.StatusFailed, nil, err.Error()
			} else {
				judged.Add(1)
				rec.Status, rec.Reading, rec.Error = model.StatusDone, &reading, ""
			}
			rec.UpdatedAt = s.now().UTC()
			metrics.RecordQuestionRecast()
			return store.Save(gctx, rec)
		})
	}
	err = g.Wait()

	sum := RecastSummary{Total: len(ids), Judged: int(judged.Load()), Failed: int(failed.Load())}
	s.logger.Info(ctx, "recast finished",
		logger.Int("total", sum.Total), logger.Int("judged", sum.Judged), logger.Int("failed", sum.Failed))
	return sum, err
}

func (s *Service) ready() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"cacheSize":   s.cacheSize,
		"houseSystem": string(s.houseSystem),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stored := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["storedQuestions"] = stored
		stats["busyWorkers"] = s.pool.Busy()
		if s.cache != nil {
			hits, misses := s.cache.Stats()
			stats["cachedCharts"] = s.cache.Size()
			stats["cacheHits"] = hits
			stats["cacheMisses"] = misses
		}

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoredQuestions(stored)
		metrics.UpdateWorkerCount(s.workerCount)
	}
	return stats
}

// Package worker judges queued questions and stores the results.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/pkg/logger"
	"github.com/okian/horary/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
	poolStopTimeout         = 5 * time.Second
)

// ErrStopped is stored on questions that reached a worker after it was told
// to stop.
var ErrStopped = errors.New("worker stopped before judgment")

// Job is what workers read off the queue.
type Job = model.Question

// Reader casts and judges a question.
type Reader interface {
	Ask(ctx context.Context, q model.Question) (model.Reading, error)
}

// Saver persists the outcome of a question.
type Saver interface {
	Save(ctx context.Context, rec model.Record) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops judging after the job in hand. Jobs still delivered
	// until the queue closes are stored as failed.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue  Queue
	reader Reader
	saver  Saver
	name   string
	busy   *atomic.Int64
	now    func() time.Time

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, reader Reader, saver Saver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		reader:   reader,
		saver:    saver,
		name:     "worker",
		busy:     new(atomic.Int64),
		now:      time.Now,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-w.shutdown:
			w.abandon(ctx, jobs)
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			w.abandon(ctx, jobs)
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "error processing question", logger.String("id", j.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// abandon stores every job still coming off the queue as failed so none is
// left pending. It returns when the queue is closed and empty or ctx ends.
func (w *InMemoryWorker) abandon(ctx context.Context, jobs <-chan Job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			metrics.RecordQuestionFailed()
			metrics.RecordErrorByComponent("worker", "stopped")
			rec := model.Record{Question: j, Status: model.StatusFailed, Error: ErrStopped.Error(), UpdatedAt: w.now().UTC()}
			if err := w.saver.Save(ctx, rec); err != nil {
				w.logger.Error(ctx, "error storing abandoned question", logger.String("id", j.ID), logger.Error(err))
				continue
			}
			w.logger.Warn(ctx, "question abandoned on shutdown", logger.String("id", j.ID))
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// process judges one question and saves either the reading or the failure.
// A judgment failure is stored, not returned; only a failed save is.
func (w *InMemoryWorker) process(ctx context.Context, q Job) error {
	w.busy.Add(1)
	defer w.busy.Add(-1)

	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	rec := model.Record{Question: q}
	reading, err := w.reader.Ask(ctx, q)
	if err != nil {
		metrics.RecordQuestionFailed()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "judgment_error")
		w.logger.Warn(ctx, "judgment failed", logger.String("id", q.ID), logger.Error(err))
		rec.Status = model.StatusFailed
		rec.Error = err.Error()
	} else {
		rec.Status = model.StatusDone
		rec.Reading = &reading
	}
	rec.UpdatedAt = w.now().UTC()

	if err := w.saver.Save(ctx, rec); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("save question %s: %w", q.ID, err)
	}
	if rec.Status == model.StatusDone {
		metrics.RecordQuestionJudged()
	}
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	busy    *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once

	logger logger.Logger
}

// NewPool creates a new worker pool. Options apply to every worker.
func NewPool(workerCount int, queue Queue, reader Reader, saver Saver, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		busy:     new(atomic.Int64),
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(queue, reader, saver, wopts...)
		w.busy = pool.busy
		pool.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(workerCount)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Busy returns the number of workers currently judging a question.
func (p *Pool) Busy() int { return int(p.busy.Load()) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

func (p *Pool) updateMetrics() {
	busy := p.Busy()
	metrics.UpdateWorkerActiveCount(busy)
	metrics.UpdateWorkerIdleCount(len(p.workers) - busy)
}

// Stop closes the queue and signals every worker to stop after its current
// job. Questions left in the queue are stored as failed, not judged.
func (p *Pool) Stop(ctx context.Context) error {
	p.closeQueue(ctx)
	p.shutdownOnce.Do(func() { close(p.shutdown) })
	var firstErr error
	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Shutdown closes the queue and waits for the workers to drain it. Workers
// still running after the timeout are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.closeQueue(ctx)

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-drainCtx.Done():
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			// The caller's deadline may be gone already; give the workers a
			// short window of their own to fail what is left.
			stopCtx, stopCancel := context.WithTimeout(context.WithoutCancel(ctx), poolStopTimeout)
			defer stopCancel()
			return p.Stop(stopCtx)
		}
	}
	p.shutdownOnce.Do(func() { close(p.shutdown) })
	return nil
}

func (p *Pool) closeQueue(ctx context.Context) {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
}

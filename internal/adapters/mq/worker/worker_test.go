package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/horary/internal/adapters/mq/queue"
	"github.com/okian/horary/internal/adapters/mq/worker"
	"github.com/okian/horary/internal/domain/model"
	logging "github.com/okian/horary/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

type mockReader struct {
	mu     sync.Mutex
	errors map[string]error
	calls  int
}

func (m *mockReader) Ask(_ context.Context, q model.Question) (model.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err, ok := m.errors[q.ID]; ok {
		return model.Reading{}, err
	}
	return model.Reading{Verdict: model.Verdict{Answer: model.Yes, Score: 2}}, nil
}

type mockSaver struct {
	mu      sync.Mutex
	records map[string]model.Record
	err     error
}

func newMockSaver() *mockSaver { return &mockSaver{records: map[string]model.Record{}} }

func (m *mockSaver) Save(_ context.Context, rec model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records[rec.Question.ID] = rec
	return nil
}

func (m *mockSaver) get(id string) (model.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	return rec, ok
}

func (m *mockSaver) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func question(id string) model.Question {
	return model.Question{ID: id, Text: "Will I get the job?", AskedAt: time.Date(2024, 4, 8, 18, 18, 0, 0, time.UTC)}
}

func TestInMemoryWorker(t *testing.T) {
	defer goleak.VerifyNone(t)

	convey.Convey("Given a worker reading from a queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		reader := &mockReader{errors: map[string]error{"bad": errors.New("ephemeris out of range")}}
		saver := newMockSaver()
		fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		w := worker.NewInMemoryWorker(q, reader, saver, worker.WithName("test"), worker.WithClock(func() time.Time { return fixed }))

		ctx := context.Background()
		convey.So(q.Enqueue(ctx, question("good")), convey.ShouldBeNil)
		convey.So(q.Enqueue(ctx, question("bad")), convey.ShouldBeNil)
		_ = q.Close()

		w.Run(ctx)

		convey.Convey("Then a judged question is stored as done", func() {
			rec, ok := saver.get("good")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(rec.Status, convey.ShouldEqual, model.StatusDone)
			convey.So(rec.Reading, convey.ShouldNotBeNil)
			convey.So(rec.Reading.Verdict.Answer, convey.ShouldEqual, model.Yes)
			convey.So(rec.UpdatedAt, convey.ShouldEqual, fixed)
		})

		convey.Convey("Then a failed judgment is stored with its error", func() {
			rec, ok := saver.get("bad")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(rec.Status, convey.ShouldEqual, model.StatusFailed)
			convey.So(rec.Reading, convey.ShouldBeNil)
			convey.So(rec.Error, convey.ShouldContainSubstring, "out of range")
		})

		convey.Convey("Then Done is closed after Run returns", func() {
			select {
			case <-w.Done():
			default:
				convey.So("worker still running", convey.ShouldBeEmpty)
			}
			convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a worker whose store fails", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1))
		saver := newMockSaver()
		saver.err = errors.New("disk full")
		w := worker.NewInMemoryWorker(q, &mockReader{}, saver)

		ctx := context.Background()
		_ = q.Enqueue(ctx, question("q1"))
		_ = q.Close()
		w.Run(ctx)

		convey.Convey("Then nothing is stored and the worker keeps going", func() {
			convey.So(saver.count(), convey.ShouldEqual, 0)
		})
	})

	convey.Convey("Given a worker shut down while idle", t, func() {
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, &mockReader{}, newMockSaver())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go w.Run(ctx)
		_ = q.Close()
		err := w.Shutdown(context.Background())

		convey.Convey("Then it stops without error", func() {
			convey.So(err, convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a worker told to stop before it reads its queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		reader := &mockReader{}
		saver := newMockSaver()
		w := worker.NewInMemoryWorker(q, reader, saver)

		ctx := context.Background()
		for _, id := range []string{"a", "b", "c"} {
			convey.So(q.Enqueue(ctx, question(id)), convey.ShouldBeNil)
		}
		_ = q.Close()

		expired, cancel := context.WithCancel(ctx)
		cancel()
		convey.So(w.Shutdown(expired), convey.ShouldNotBeNil)
		w.Run(ctx)

		convey.Convey("Then every delivered question is stored as failed, not judged", func() {
			convey.So(reader.calls, convey.ShouldEqual, 0)
			convey.So(saver.count(), convey.ShouldEqual, 3)
			for _, id := range []string{"a", "b", "c"} {
				rec, ok := saver.get(id)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(rec.Status, convey.ShouldEqual, model.StatusFailed)
				convey.So(rec.Error, convey.ShouldEqual, worker.ErrStopped.Error())
			}
			convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
		})
	})
}

// gatedReader blocks every Ask until release is closed.
type gatedReader struct {
	mockReader
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedReader) Ask(ctx context.Context, q model.Question) (model.Reading, error) {
	g.once.Do(func() { close(g.started) })
	<-g.release
	return g.mockReader.Ask(ctx, q)
}

func TestPool(t *testing.T) {
	defer goleak.VerifyNone(t)

	convey.Convey("Given a pool of workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(200))
		reader := &mockReader{}
		saver := newMockSaver()
		pool := worker.NewPool(4, q, reader, saver)
		convey.So(pool.Size(), convey.ShouldEqual, 4)

		ctx := context.Background()
		pool.Start(ctx)

		for i := 0; i < 100; i++ {
			convey.So(q.Enqueue(ctx, question(fmt.Sprintf("q%d", i))), convey.ShouldBeNil)
		}

		convey.Convey("When the pool shuts down", func() {
			err := pool.Shutdown(ctx)

			convey.Convey("Then every queued question was judged and saved", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(saver.count(), convey.ShouldEqual, 100)
				convey.So(pool.Busy(), convey.ShouldEqual, 0)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool stopped while its worker is busy", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		reader := &gatedReader{started: make(chan struct{}), release: make(chan struct{})}
		saver := newMockSaver()
		pool := worker.NewPool(1, q, reader, saver)

		ctx := context.Background()
		pool.Start(ctx)
		for i := 0; i < 5; i++ {
			convey.So(q.Enqueue(ctx, question(fmt.Sprintf("q%d", i))), convey.ShouldBeNil)
		}
		<-reader.started

		stopped := make(chan error, 1)
		go func() { stopped <- pool.Stop(ctx) }()
		for !q.IsClosed() {
			time.Sleep(time.Millisecond)
		}
		close(reader.release)
		err := <-stopped

		convey.Convey("Then no question is left pending", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(saver.count(), convey.ShouldEqual, 5)
			for i := 0; i < 5; i++ {
				rec, ok := saver.get(fmt.Sprintf("q%d", i))
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(rec.Status, convey.ShouldBeIn, model.StatusDone, model.StatusFailed)
			}
			first, _ := saver.get("q0")
			convey.So(first.Status, convey.ShouldEqual, model.StatusDone)
		})
	})

	convey.Convey("Given a pool with a default size", t, func() {
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(0, q, &mockReader{}, newMockSaver())
		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		_ = q.Close()
	})
}

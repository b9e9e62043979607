package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/horary/internal/app"
	"github.com/okian/horary/internal/adapters/repository"
	"github.com/okian/horary/internal/domain/ephemeris"
	"github.com/okian/horary/internal/domain/location"
	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var j2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// stubEngine answers Yes unless the question text is "fail".
type stubEngine struct {
	mu    sync.Mutex
	calls int
	block chan struct{}
}

func (e *stubEngine) Ask(ctx context.Context, q model.Question) (model.Reading, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.block != nil {
		select {
		case <-e.block:
		case <-ctx.Done():
			return model.Reading{}, ctx.Err()
		}
	}
	if q.Text == "fail" {
		return model.Reading{}, errors.New("boom")
	}
	return model.Reading{Verdict: model.Verdict{Answer: model.Yes, Score: 2}}, nil
}

func (e *stubEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("q-%03d", n)
	}
}

func newStubService(engine *stubEngine, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithEngine(engine),
		service.WithWorkerCount(2),
		service.WithQueueSize(16),
		service.WithIDGenerator(sequentialIDs()),
		service.WithClock(func() time.Time { return j2000 }),
	}
	return service.New(append(base, opts...)...)
}

func waitFor(ctx context.Context, svc *service.Service, id string, want model.Status) model.Record {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec, err := svc.Question(ctx, id)
		if err == nil && rec.Status == want {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
	rec, _ := svc.Question(ctx, id)
	return rec
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := newStubService(&stubEngine{})

		Convey("Operations before Start fail with ErrNotStarted", func() {
			_, err := svc.Question(ctx, "x")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(errors.Is(svc.Submit(ctx, model.Question{ID: "x"}), service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("When started and stopped", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
			So(svc.GetStats()["workerCount"], ShouldEqual, 2)

			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.Stop(ctx), ShouldBeNil)
		})
	})
}

func TestService_NewQuestion(t *testing.T) {
	Convey("Given a service with a fixed clock and ids", t, func() {
		svc := newStubService(&stubEngine{})

		Convey("A zero time defaults to now and no candidates fall back to Greenwich", func() {
			q, err := svc.NewQuestion("  Will I get the job?  ", time.Time{})
			So(err, ShouldBeNil)
			So(q.ID, ShouldEqual, "q-001")
			So(q.Text, ShouldEqual, "Will I get the job?")
			So(q.AskedAt.Equal(j2000), ShouldBeTrue)
			So(q.Location, ShouldResemble, location.Greenwich)
		})

		Convey("The asked time is normalized to UTC", func() {
			ny := time.FixedZone("EST", -5*3600)
			q, err := svc.NewQuestion("q", time.Date(2024, 3, 1, 7, 0, 0, 0, ny))
			So(err, ShouldBeNil)
			So(q.AskedAt.Location(), ShouldEqual, time.UTC)
			So(q.AskedAt.Hour(), ShouldEqual, 12)
		})

		Convey("The highest priority valid candidate wins", func() {
			q, err := svc.NewQuestion("q", j2000,
				model.Location{Latitude: 48.85, Longitude: 2.35, Source: model.SourceGeolocation},
				model.Location{Latitude: 91, Longitude: 0, Source: model.SourceQuestion},
				model.Location{Latitude: 40.7, Longitude: -74, Source: model.SourceSaved},
			)
			So(err, ShouldBeNil)
			So(q.Location.Source, ShouldEqual, model.SourceSaved)
			So(q.Location.Latitude, ShouldEqual, 40.7)
		})

		Convey("Empty text is rejected", func() {
			_, err := svc.NewQuestion("   ", j2000)
			So(errors.Is(err, service.ErrEmptyText), ShouldBeTrue)
		})
	})
}

func TestService_JudgeAndSubmit(t *testing.T) {
	Convey("Given a started service with a stub engine", t, func() {
		ctx := context.Background()
		engine := &stubEngine{}
		svc := newStubService(engine)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		Convey("Judge stores a done record synchronously", func() {
			q, _ := svc.NewQuestion("Will it rain?", j2000)
			rec, err := svc.Judge(ctx, q)
			So(err, ShouldBeNil)
			So(rec.Status, ShouldEqual, model.StatusDone)
			So(rec.Reading.Verdict.Answer, ShouldEqual, model.Yes)

			got, err := svc.Question(ctx, q.ID)
			So(err, ShouldBeNil)
			So(got.Status, ShouldEqual, model.StatusDone)
		})

		Convey("Judge returns engine errors without storing", func() {
			q, _ := svc.NewQuestion("fail", j2000)
			_, err := svc.Judge(ctx, q)
			So(err, ShouldNotBeNil)
			_, err = svc.Question(ctx, q.ID)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Submitted questions are judged by the workers", func() {
			ok, _ := svc.NewQuestion("Will it rain?", j2000)
			bad, _ := svc.NewQuestion("fail", j2000)
			So(svc.Submit(ctx, ok), ShouldBeNil)
			So(svc.Submit(ctx, bad), ShouldBeNil)

			So(waitFor(ctx, svc, ok.ID, model.StatusDone).Status, ShouldEqual, model.StatusDone)
			failed := waitFor(ctx, svc, bad.ID, model.StatusFailed)
			So(failed.Status, ShouldEqual, model.StatusFailed)
			So(failed.Error, ShouldContainSubstring, "boom")

			recent, err := svc.Recent(ctx, 10)
			So(err, ShouldBeNil)
			So(len(recent), ShouldEqual, 2)
		})
	})
}

func TestService_Backpressure(t *testing.T) {
	Convey("Given a service whose single worker is blocked", t, func() {
		ctx := context.Background()
		engine := &stubEngine{block: make(chan struct{})}
		svc := newStubService(engine, service.WithWorkerCount(1), service.WithQueueSize(1))
		So(svc.Start(ctx), ShouldBeNil)

		first, _ := svc.NewQuestion("first", j2000)
		So(svc.Submit(ctx, first), ShouldBeNil)
		for engine.Calls() == 0 {
			time.Sleep(time.Millisecond)
		}

		Convey("Submissions beyond capacity are rejected and not stored", func() {
			var rejected model.Question
			var err error
			accepted := 0
			for i := 0; i < 5 && err == nil; i++ {
				q, _ := svc.NewQuestion(fmt.Sprintf("extra %d", i), j2000)
				if err = svc.Submit(ctx, q); err == nil {
					accepted++
				} else {
					rejected = q
				}
			}
			So(errors.Is(err, service.ErrBackpressure), ShouldBeTrue)
			So(accepted, ShouldBeLessThanOrEqualTo, 2)

			_, err = svc.Question(ctx, rejected.ID)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			rec, err := svc.Question(ctx, first.ID)
			So(err, ShouldBeNil)
			So(rec.Status, ShouldEqual, model.StatusPending)
		})

		Reset(func() {
			close(engine.block)
			So(svc.Stop(ctx), ShouldBeNil)
		})
	})
}

func TestService_Recast(t *testing.T) {
	Convey("Given stored questions", t, func() {
		ctx := context.Background()
		engine := &stubEngine{}
		svc := newStubService(engine, service.WithRecastConcurrency(2))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		for _, text := range []string{"a", "b", "c"} {
			q, _ := svc.NewQuestion(text, j2000)
			_, err := svc.Judge(ctx, q)
			So(err, ShouldBeNil)
		}
		before := engine.Calls()

		Convey("Recasting everything judges each question again", func() {
			sum, err := svc.Recast(ctx)
			So(err, ShouldBeNil)
			So(sum, ShouldResemble, service.RecastSummary{Total: 3, Judged: 3})
			So(engine.Calls()-before, ShouldEqual, 3)
		})

		Convey("Recasting selected ids only touches those", func() {
			sum, err := svc.Recast(ctx, "q-002")
			So(err, ShouldBeNil)
			So(sum.Total, ShouldEqual, 1)
			So(engine.Calls()-before, ShouldEqual, 1)
		})

		Convey("An unknown id aborts with ErrNotFound", func() {
			_, err := svc.Recast(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_RealEngine(t *testing.T) {
	Convey("Given a service with the default engine", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithCacheSize(8),
			service.WithEphemerisRange(1900, 2100),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		Convey("A question in range is judged and the chart is cached", func() {
			q, err := svc.NewQuestion("Will I find my keys?", j2000,
				model.Location{Latitude: 51.5, Longitude: 0, Name: "London", Source: model.SourceQuestion})
			So(err, ShouldBeNil)

			rec, err := svc.Judge(ctx, q)
			So(err, ShouldBeNil)
			So(rec.Reading.Chart.Cusps[0].Number, ShouldEqual, 1)
			So(rec.Reading.Significators.QuerentRuler, ShouldNotBeEmpty)

			_, err = svc.Judge(ctx, q)
			So(err, ShouldBeNil)
			stats := svc.GetStats()
			So(stats["cachedCharts"], ShouldEqual, int64(1))
			So(stats["cacheHits"], ShouldEqual, int64(1))
		})

		Convey("A question outside the configured range fails", func() {
			q, _ := svc.NewQuestion("Too old", time.Date(1850, 6, 1, 0, 0, 0, 0, time.UTC))
			_, err := svc.Judge(ctx, q)
			So(errors.Is(err, ephemeris.ErrOutOfRange), ShouldBeTrue)
		})
	})
}

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/horary/internal/adapters/http/api"
	"github.com/okian/horary/internal/adapters/mq/queue"
	"github.com/okian/horary/internal/adapters/repository"
	"github.com/okian/horary/internal/domain/ephemeris"
	"github.com/okian/horary/internal/domain/location"
	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/internal/domain/types"
)

type mockDeps struct {
	judgeErr  error
	submitErr error
	records   map[string]model.Record
	submitted []model.Question
	lastLimit int
	seq       int
}

func (m *mockDeps) NewQuestion(text string, askedAt time.Time, candidates ...model.Location) (model.Question, error) {
	if strings.TrimSpace(text) == "" {
		return model.Question{}, errors.New("question text must not be empty")
	}
	m.seq++
	if askedAt.IsZero() {
		askedAt = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	return model.Question{
		ID:       fmt.Sprintf("id-%d", m.seq),
		Text:     text,
		AskedAt:  askedAt,
		Location: location.New().Resolve(candidates...),
	}, nil
}

func (m *mockDeps) Judge(_ context.Context, q model.Question) (model.Record, error) {
	if m.judgeErr != nil {
		return model.Record{}, m.judgeErr
	}
	reading := model.Reading{Verdict: model.Verdict{Answer: model.Yes, Score: 3}}
	return model.Record{Question: q, Status: model.StatusDone, Reading: &reading}, nil
}

func (m *mockDeps) Submit(_ context.Context, q model.Question) error {
	if m.submitErr != nil {
		return m.submitErr
	}
	m.submitted = append(m.submitted, q)
	return nil
}

func (m *mockDeps) Question(_ context.Context, id string) (model.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return model.Record{}, repository.ErrNotFound
	}
	return rec, nil
}

func (m *mockDeps) Recent(_ context.Context, limit int) ([]model.Record, error) {
	m.lastLimit = limit
	out := make([]model.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any { return m.stats }

func newRouter(deps *mockDeps) http.Handler {
	r := chi.NewRouter()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]any{"started": true}}, 50).Register(context.Background(), r)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		h := newRouter(&mockDeps{})

		Convey("The health endpoint serves metrics", func() {
			So(do(h, http.MethodGet, "/healthz", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("The stats endpoint serves JSON", func() {
			w := do(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Unknown routes are not found", func() {
			So(do(h, http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Wrong methods are rejected", func() {
			So(do(h, http.MethodGet, "/charts", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestCharts(t *testing.T) {
	Convey("Given the charts endpoint", t, func() {
		deps := &mockDeps{}
		h := newRouter(deps)

		Convey("A valid request is judged", func() {
			w := do(h, http.MethodPost, "/charts",
				`{"question":"Will I move?","timestamp_utc":"2024-03-01T12:00:00Z","latitude":40.7,"longitude":-74}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var resp types.ChartResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Question.Text, ShouldEqual, "Will I move?")
			So(resp.Question.Location.Source, ShouldEqual, model.SourceQuestion)
			So(resp.Verdict.Answer, ShouldEqual, model.Yes)
		})

		Convey("Missing coordinates fall back to Greenwich", func() {
			w := do(h, http.MethodPost, "/charts", `{"question":"Will I move?"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var resp types.ChartResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Question.Location.Source, ShouldEqual, model.SourceFallback)
		})

		Convey("Invalid requests are bad requests", func() {
			for _, body := range []string{
				`not json`,
				`{}`,
				`{"question":"q","latitude":91,"longitude":0}`,
				`{"question":"q","latitude":0,"longitude":-181}`,
				`{"question":"q","latitude":10}`,
				`{"question":"q","timestamp_utc":"2024-03-01 12:00"}`,
				`{"question":"q","unknown":1}`,
				`{"question":"   "}`,
			} {
				w := do(h, http.MethodPost, "/charts", body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			}
		})

		Convey("Dates outside the ephemeris are unprocessable", func() {
			deps.judgeErr = fmt.Errorf("cast: %w", ephemeris.ErrOutOfRange)
			w := do(h, http.MethodPost, "/charts", `{"question":"q","timestamp_utc":"1500-01-01T00:00:00Z"}`)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(w.Body.String(), ShouldContainSubstring, "unable to compute chart for this date")
		})

		Convey("Other engine failures are internal errors", func() {
			deps.judgeErr = errors.New("invariant violated")
			w := do(h, http.MethodPost, "/charts", `{"question":"q"}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestQuestions(t *testing.T) {
	Convey("Given the questions endpoints", t, func() {
		deps := &mockDeps{records: map[string]model.Record{
			"known": {Question: model.Question{ID: "known", Text: "Is it lost?"}, Status: model.StatusDone},
		}}
		h := newRouter(deps)

		Convey("A submission is accepted with its id", func() {
			w := do(h, http.MethodPost, "/questions", `{"question":"Will they call?"}`)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			var resp types.AcceptedResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.ID, ShouldEqual, "id-1")
			So(resp.Status, ShouldEqual, model.StatusPending)
			So(deps.submitted, ShouldHaveLength, 1)
		})

		Convey("A full queue is reported as backpressure", func() {
			deps.submitErr = fmt.Errorf("submit: %w", queue.ErrFull)
			w := do(h, http.MethodPost, "/questions", `{"question":"Will they call?"}`)
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(errorCode(w), ShouldEqual, "backpressure")
		})

		Convey("A closed queue is unavailable", func() {
			deps.submitErr = queue.ErrClosed
			w := do(h, http.MethodPost, "/questions", `{"question":"Will they call?"}`)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("A stored question is returned by id", func() {
			w := do(h, http.MethodGet, "/questions/known", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var rec model.Record
			So(json.Unmarshal(w.Body.Bytes(), &rec), ShouldBeNil)
			So(rec.Question.Text, ShouldEqual, "Is it lost?")
		})

		Convey("An unknown id is not found", func() {
			w := do(h, http.MethodGet, "/questions/missing", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})

		Convey("Listing uses a default limit and clamps large ones", func() {
			w := do(h, http.MethodGet, "/questions", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastLimit, ShouldEqual, 20)

			var resp types.ListResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Count, ShouldEqual, 1)

			do(h, http.MethodGet, "/questions?limit=5000", "")
			So(deps.lastLimit, ShouldEqual, 50)
		})

		Convey("A malformed limit is a bad request", func() {
			So(do(h, http.MethodGet, "/questions?limit=abc", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodGet, "/questions?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestKindError(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("op", api.ErrBadRequest, cause)

		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "op: bad request: boom")
		So(api.NewKind("op", api.ErrNotFound).Error(), ShouldEqual, "op: not found")
	})
}

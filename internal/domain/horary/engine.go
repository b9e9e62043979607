// Package horary runs the full judgment pipeline for a question.
package horary

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/horary/internal/domain/accidental"
	"github.com/okian/horary/internal/domain/aspect"
	"github.com/okian/horary/internal/domain/chart"
	"github.com/okian/horary/internal/domain/dignity"
	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/internal/domain/significator"
	"github.com/okian/horary/internal/domain/tables"
	"github.com/okian/horary/internal/domain/validity"
	"github.com/okian/horary/internal/domain/verdict"
	"github.com/okian/horary/pkg/logger"
	"github.com/okian/horary/pkg/metrics"
)

// Caster produces a chart snapshot for an instant.
type Caster interface {
	Cast(ctx context.Context, inst model.Instant) (model.ChartSnapshot, error)
}

// Engine casts and judges questions. It holds only immutable collaborators
// and is safe for concurrent use.
type Engine struct {
	tables          *tables.Tables
	caster          Caster
	aspectOpts      []aspect.Option
	validityOpts    []validity.Option
	verdictOpts     []verdict.Option
	houseClassifier significator.HouseClassifier
	themeClassifier accidental.ThemeClassifier
	log             logger.Logger

	aspects       *aspect.Detector
	essential     *dignity.Evaluator
	accidental    *accidental.Evaluator
	significators *significator.Resolver
	validity      *validity.Checker
	verdict       *verdict.Synthesizer
}

// New builds an Engine over the embedded tables.
func New(opts ...Option) *Engine {
	e := &Engine{
		tables: tables.MustDefault(),
		log:    logger.Get().Named("horary"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.caster == nil {
		e.caster = chart.NewCaster()
	}

	var accOpts []accidental.Option
	if e.themeClassifier != nil {
		accOpts = append(accOpts, accidental.WithThemeClassifier(e.themeClassifier))
	}
	var sigOpts []significator.Option
	if e.houseClassifier != nil {
		sigOpts = append(sigOpts, significator.WithHouseClassifier(e.houseClassifier))
	}

	e.aspects = aspect.New(e.aspectOpts...)
	e.essential = dignity.New(e.tables)
	e.accidental = accidental.New(e.tables, accOpts...)
	e.significators = significator.New(e.tables, sigOpts...)
	e.validity = validity.New(e.validityOpts...)
	e.verdict = verdict.New(e.verdictOpts...)
	return e
}

// Tables returns the rule tables in use.
func (e *Engine) Tables() *tables.Tables { return e.tables }

// Ask casts the chart for q and judges it.
func (e *Engine) Ask(ctx context.Context, q model.Question) (model.Reading, error) {
	return e.Read(ctx, q.Instant(), q.Text)
}

// Read casts the chart for inst and judges question against it.
func (e *Engine) Read(ctx context.Context, inst model.Instant, question string) (model.Reading, error) {
	snap, err := e.caster.Cast(ctx, inst)
	if err != nil {
		return model.Reading{}, err
	}
	return e.Judge(ctx, snap, question)
}

// Judge evaluates an already cast chart. The evaluators run concurrently;
// none of them writes shared state.
func (e *Engine) Judge(ctx context.Context, snap model.ChartSnapshot, question string) (model.Reading, error) {
	start := time.Now()
	r := model.Reading{Chart: snap}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.Aspects = e.aspects.Detect(snap)
		return gctx.Err()
	})
	g.Go(func() error {
		r.Essential = e.essential.EvaluateChart(snap)
		for _, b := range model.Planets {
			if d, ok := r.Essential[b]; ok {
				r.Contradictions = append(r.Contradictions, e.essential.AnalyzeContradictions(d)...)
			}
		}
		return gctx.Err()
	})
	g.Go(func() error {
		r.Accidental = e.accidental.EvaluateChart(snap, question)
		return gctx.Err()
	})
	g.Go(func() error {
		sig, err := e.significators.Resolve(snap, question)
		if err != nil {
			return fmt.Errorf("resolve significators: %w", err)
		}
		r.Significators = sig
		return nil
	})
	g.Go(func() error {
		r.Validity = e.validity.Check(snap)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		e.log.Error(ctx, "judgment failed", logger.Error(err), logger.String("instant", snap.Instant.String()))
		return model.Reading{}, err
	}

	r.Verdict = e.verdict.Synthesize(verdict.Input{
		Chart:         snap,
		Aspects:       r.Aspects,
		Essential:     r.Essential,
		Significators: r.Significators,
		Validity:      r.Validity,
		Question:      question,
	})
	for _, msg := range r.Verdict.InterpretationErrors {
		e.log.Warn(ctx, "interpretation failed", logger.String("error", msg))
	}

	metrics.RecordVerdict(string(r.Verdict.Answer), r.Verdict.IsRadical)
	elapsed := time.Since(start)
	metrics.RecordReadingLatency(float64(elapsed.Microseconds()) / 1000)
	e.log.Debug(ctx, "question judged",
		logger.String("answer", string(r.Verdict.Answer)),
		logger.Int("score", r.Verdict.Score),
		logger.Bool("radical", r.Verdict.IsRadical),
		logger.String("quesited", string(r.Significators.QuesitedRuler)),
		logger.Duration("elapsed", elapsed))
	return r, nil
}

package horary

import (
	"github.com/okian/horary/internal/domain/accidental"
	"github.com/okian/horary/internal/domain/aspect"
	"github.com/okian/horary/internal/domain/significator"
	"github.com/okian/horary/internal/domain/tables"
	"github.com/okian/horary/internal/domain/validity"
	"github.com/okian/horary/internal/domain/verdict"
	"github.com/okian/horary/pkg/logger"
)

// Option configures an Engine.
type Option func(*Engine)

// WithTables replaces the embedded rule tables.
func WithTables(t *tables.Tables) Option {
	return func(e *Engine) {
		if t != nil {
			e.tables = t
		}
	}
}

// WithCaster replaces the chart caster.
func WithCaster(c Caster) Option {
	return func(e *Engine) {
		if c != nil {
			e.caster = c
		}
	}
}

// WithAspectOptions configures the aspect detector.
func WithAspectOptions(opts ...aspect.Option) Option {
	return func(e *Engine) { e.aspectOpts = append(e.aspectOpts, opts...) }
}

// WithHouseClassifier replaces the question to house classifier.
func WithHouseClassifier(c significator.HouseClassifier) Option {
	return func(e *Engine) { e.houseClassifier = c }
}

// WithThemeClassifier replaces the question theme classifier.
func WithThemeClassifier(c accidental.ThemeClassifier) Option {
	return func(e *Engine) { e.themeClassifier = c }
}

// WithValidityOptions configures the validity checker.
func WithValidityOptions(opts ...validity.Option) Option {
	return func(e *Engine) { e.validityOpts = append(e.validityOpts, opts...) }
}

// WithVerdictOptions configures the verdict synthesizer.
func WithVerdictOptions(opts ...verdict.Option) Option {
	return func(e *Engine) { e.verdictOpts = append(e.verdictOpts, opts...) }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

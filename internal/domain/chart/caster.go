package chart

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/horary/internal/domain/ephemeris"
	"github.com/okian/horary/internal/domain/houses"
	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/pkg/logger"
	"github.com/okian/horary/pkg/metrics"
)

// Cache stores snapshots by CacheKey. Snapshots are time-invariant for a
// fixed instant so entries never expire.
type Cache interface {
	Get(ctx context.Context, key string) (model.ChartSnapshot, bool)
	Put(ctx context.Context, key string, snap model.ChartSnapshot)
}

// HouseResolver resolves a house frame for an instant.
type HouseResolver interface {
	Resolve(inst model.Instant) (houses.Result, error)
	System() houses.System
}

// Caster runs ephemeris, houses and assembly for an instant.
type Caster struct {
	provider ephemeris.Provider
	resolver HouseResolver
	cache    Cache
	log      logger.Logger
}

// Option configures a Caster.
type Option func(*Caster)

// WithProvider overrides the ephemeris provider.
func WithProvider(p ephemeris.Provider) Option {
	return func(c *Caster) {
		if p != nil {
			c.provider = p
		}
	}
}

// WithResolver overrides the house resolver.
func WithResolver(r HouseResolver) Option {
	return func(c *Caster) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithCache enables snapshot caching.
func WithCache(cache Cache) Option {
	return func(c *Caster) { c.cache = cache }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Caster) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCaster creates a Caster with a Keplerian provider and Regiomontanus houses.
func NewCaster(opts ...Option) *Caster {
	c := &Caster{
		provider: ephemeris.New(),
		resolver: houses.New(),
		log:      logger.Get().Named("chart"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheKey identifies a chart by the full instant and coordinate tuple and
// the house system that produced it.
func CacheKey(inst model.Instant, system houses.System) string {
	return fmt.Sprintf("%d|%.9f|%.9f|%s", inst.At.UTC().UnixNano(), inst.Latitude, inst.Longitude, system)
}

// Cast computes the snapshot for inst.
func (c *Caster) Cast(ctx context.Context, inst model.Instant) (model.ChartSnapshot, error) {
	start := time.Now()
	inst = model.NewInstant(inst.At, inst.Latitude, inst.Longitude)

	var key string
	if c.cache != nil {
		key = CacheKey(inst, c.resolver.System())
		if snap, ok := c.cache.Get(ctx, key); ok {
			metrics.RecordChartCacheHit()
			c.log.Debug(ctx, "chart cast",
				logger.String("instant", inst.String()),
				logger.Bool("cached", true),
				logger.Duration("elapsed", time.Since(start)))
			return snap, nil
		}
		metrics.RecordChartCacheMiss()
	}

	motions, err := c.provider.Positions(ctx, inst.At)
	if err != nil {
		metrics.RecordChartError(errorKind(err))
		return model.ChartSnapshot{}, fmt.Errorf("cast %s: %w", inst, err)
	}
	frame, err := c.resolver.Resolve(inst)
	if err != nil {
		metrics.RecordChartError("houses")
		return model.ChartSnapshot{}, fmt.Errorf("cast %s: %w", inst, err)
	}

	snap := Assemble(inst, motions, frame)
	if snap.HouseSystemDegenerate {
		metrics.IncrementDegenerateHouses()
		c.log.Warn(ctx, "house system degenerate; using equal houses",
			logger.Float64("latitude", inst.Latitude),
			logger.String("requested", string(c.resolver.System())))
	}
	if c.cache != nil {
		c.cache.Put(ctx, key, snap)
	}
	elapsed := time.Since(start)
	metrics.RecordChartCast(float64(elapsed.Microseconds()) / 1000)
	c.log.Debug(ctx, "chart cast",
		logger.String("instant", inst.String()),
		logger.Bool("cached", false),
		logger.Duration("elapsed", elapsed))
	return snap, nil
}

func errorKind(err error) string {
	if isRange(err) {
		return "out_of_range"
	}
	return "ephemeris"
}

package service

import (
	"time"

	"github.com/okian/horary/internal/adapters/repository"
	"github.com/okian/horary/internal/domain/houses"
	"github.com/okian/horary/internal/domain/location"
	"github.com/okian/horary/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of judgment workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued questions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithCacheSize bounds the chart cache. Zero disables it.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.cacheSize = size
		}
	}
}

// WithRecastConcurrency caps concurrent re-judgments.
func WithRecastConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recastConcurrency = n
		}
	}
}

// WithStore sets the question store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithEngine replaces the judgment engine.
func WithEngine(e Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithHouseSystem selects the house system for the default engine.
func WithHouseSystem(sys houses.System) Option {
	return func(s *Service) {
		if sys != "" {
			s.houseSystem = sys
		}
	}
}

// WithPoints includes the nodes and Part of Fortune in aspect detection.
func WithPoints(enabled bool) Option {
	return func(s *Service) { s.includePoints = enabled }
}

// WithQuincunx enables the 150 degree aspect.
func WithQuincunx(enabled bool) Option {
	return func(s *Service) { s.quincunx = enabled }
}

// WithEphemerisRange sets the supported years for the default engine.
func WithEphemerisRange(minYear, maxYear int) Option {
	return func(s *Service) {
		if minYear < maxYear {
			s.minYear, s.maxYear = minYear, maxYear
		}
	}
}

// WithLocationResolver replaces the location resolver.
func WithLocationResolver(r *location.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.locator = r
		}
	}
}

// WithClock sets the clock used for question and record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the question id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

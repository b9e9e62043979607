// Package location picks the observer coordinate for a question.
package location

import (
	"fmt"
	"math"

	"github.com/okian/horary/internal/domain/model"
)

// Greenwich is the default fallback observer.
var Greenwich = model.Location{Latitude: 51.4769, Longitude: -0.0005, Name: "Greenwich", Source: model.SourceFallback}

var priority = map[model.LocationSource]int{
	model.SourceQuestion:    0,
	model.SourceSaved:       1,
	model.SourceGeolocation: 2,
	model.SourceFallback:    3,
}

// Resolver chooses among candidate locations by source priority.
type Resolver struct {
	fallback model.Location
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFallback replaces the Greenwich fallback. Invalid coordinates are ignored.
func WithFallback(loc model.Location) Option {
	return func(r *Resolver) {
		if Validate(loc.Latitude, loc.Longitude) == nil {
			loc.Source = model.SourceFallback
			r.fallback = loc
		}
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{fallback: Greenwich}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fallback returns the location used when no candidate is usable.
func (r *Resolver) Fallback() model.Location { return r.fallback }

// Resolve returns the valid candidate with the highest-priority source:
// the question's own coordinate, then a saved location, then geolocation.
// Candidates with unknown sources or invalid coordinates are skipped.
func (r *Resolver) Resolve(candidates ...model.Location) model.Location {
	best, bestRank := r.fallback, priority[model.SourceFallback]
	for _, c := range candidates {
		rank, ok := priority[c.Source]
		if !ok || Validate(c.Latitude, c.Longitude) != nil {
			continue
		}
		if rank < bestRank {
			best, bestRank = c, rank
		}
	}
	return best
}

// Validate checks a coordinate pair.
func Validate(lat, lon float64) error {
	switch {
	case math.IsNaN(lat) || lat < -90 || lat > 90:
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, lat)
	case math.IsNaN(lon) || lon < -180 || lon > 180:
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, lon)
	}
	return nil
}

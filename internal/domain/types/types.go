// Package types contains the request and response shapes shared by the
// HTTP API and the command line tool.
package types

import (
	"errors"
	"strings"
	"time"

	"github.com/okian/horary/internal/domain/model"
)

// ErrIncompleteCoordinate is returned when only one of latitude and
// longitude is given.
var ErrIncompleteCoordinate = errors.New("latitude and longitude must be given together")

// Coordinate is an optional saved or device location.
type Coordinate struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Name      string   `json:"name,omitempty" validate:"max=120"`
}

// CastRequest is the body of POST /charts and POST /questions.
type CastRequest struct {
	Question      string      `json:"question" validate:"required,max=500"`
	TimestampUTC  string      `json:"timestamp_utc" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Latitude      *float64    `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64    `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	LocationName  string      `json:"location_name,omitempty" validate:"max=120"`
	SavedLocation *Coordinate `json:"saved_location,omitempty"`
	Geolocation   *Coordinate `json:"geolocation,omitempty"`
}

// AskedAt parses the timestamp. An empty timestamp yields the zero time.
func (r CastRequest) AskedAt() (time.Time, error) {
	if strings.TrimSpace(r.TimestampUTC) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, r.TimestampUTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Candidates returns the request's locations tagged by source, highest
// priority first.
func (r CastRequest) Candidates() ([]model.Location, error) {
	var out []model.Location
	switch {
	case r.Latitude != nil && r.Longitude != nil:
		out = append(out, model.Location{
			Latitude:  *r.Latitude,
			Longitude: *r.Longitude,
			Name:      r.LocationName,
			Source:    model.SourceQuestion,
		})
	case r.Latitude != nil || r.Longitude != nil:
		return nil, ErrIncompleteCoordinate
	}
	if c := r.SavedLocation; c != nil && c.Latitude != nil && c.Longitude != nil {
		out = append(out, model.Location{Latitude: *c.Latitude, Longitude: *c.Longitude, Name: c.Name, Source: model.SourceSaved})
	}
	if c := r.Geolocation; c != nil && c.Latitude != nil && c.Longitude != nil {
		out = append(out, model.Location{Latitude: *c.Latitude, Longitude: *c.Longitude, Name: c.Name, Source: model.SourceGeolocation})
	}
	return out, nil
}

// ChartResponse is the reply to POST /charts.
type ChartResponse struct {
	Question model.Question `json:"question"`
	model.Reading
}

// AcceptedResponse is the reply to POST /questions.
type AcceptedResponse struct {
	ID     string       `json:"id"`
	Status model.Status `json:"status"`
}

// ListResponse is the reply to GET /questions.
type ListResponse struct {
	Questions []model.Record `json:"questions"`
	Count     int            `json:"count"`
}

package model

import "time"

// LocationSource records where a question's coordinate came from.
type LocationSource string

// Location sources, highest priority first.
const (
	SourceQuestion    LocationSource = "question"
	SourceSaved       LocationSource = "saved"
	SourceGeolocation LocationSource = "geolocation"
	SourceFallback    LocationSource = "fallback"
)

// Location is a resolved observer coordinate.
type Location struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Name      string         `json:"name,omitempty"`
	Source    LocationSource `json:"source"`
}

// Question is a horary question as asked.
type Question struct {
	ID       string    `json:"id"`
	Text     string    `json:"question"`
	AskedAt  time.Time `json:"timestamp_utc"`
	Location Location  `json:"location"`
}

// Instant returns the chart instant for the question.
func (q Question) Instant() Instant {
	return NewInstant(q.AskedAt, q.Location.Latitude, q.Location.Longitude)
}

// Reading is everything the engine derives from one question.
type Reading struct {
	Chart          ChartSnapshot              `json:"chart"`
	Aspects        []Aspect                   `json:"aspects"`
	Essential      map[Body]EssentialDignity  `json:"essential_dignities"`
	Accidental     map[Body]AccidentalDignity `json:"accidental_dignities"`
	Contradictions []Contradiction            `json:"contradictions,omitempty"`
	Significators  SignificatorAssignment     `json:"significators"`
	Validity       Validity                   `json:"validity"`
	Verdict        Verdict                    `json:"verdict"`
}

// Status is the processing state of a stored question.
type Status string

// Statuses.
const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Record is a persisted question with its reading once judged.
type Record struct {
	Question  Question  `json:"question"`
	Status    Status    `json:"status"`
	Reading   *Reading  `json:"reading,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

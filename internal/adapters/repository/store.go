// Package repository persists questions and their readings.
package repository

import (
	"context"

	"github.com/okian/horary/internal/domain/model"
)

// Store provides read/write access to question records. The engine never
// reads it; it only receives what the service saves.
type Store interface {
	// Save inserts or replaces the record with rec.Question.ID.
	Save(ctx context.Context, rec model.Record) error

	// Get returns the record for id, or ErrNotFound.
	Get(ctx context.Context, id string) (model.Record, error)

	// Delete removes the record for id. Missing ids are not an error.
	Delete(ctx context.Context, id string) error

	// Recent returns up to n records, most recently asked first.
	Recent(ctx context.Context, n int) ([]model.Record, error)

	// Count returns the number of stored questions.
	Count(ctx context.Context) int

	// Close releases background resources.
	Close() error
}

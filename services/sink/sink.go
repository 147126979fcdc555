package sink

import (
	"context"
	"errors"

	"sjsage522/brochureworker/internal/brochure"
)

// Sink persists the brochures collected by a run
type Sink interface {
	// Write stores the whole collection of a run at once
	Write(ctx context.Context, records []brochure.Record) error

	// Close releases the sink's resources
	Close() error
}

// Multi writes the collection to every sink in order
type Multi []Sink

// Write writes to every sink and joins their errors
func (m Multi) Write(ctx context.Context, records []brochure.Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink and joins their errors
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrUnavailable reports that the record snapshot could not be obtained.
var ErrUnavailable = errors.New("analytics data unavailable")

// Identity names the user whose records are aggregated.
type Identity struct {
	ID    uuid.UUID
	Email string
}

// Source supplies the record snapshot for one user.
type Source interface {
	ListRecords(ctx context.Context, user Identity) ([]Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, user Identity) ([]Record, error)

// ListRecords calls f.
func (f SourceFunc) ListRecords(ctx context.Context, user Identity) ([]Record, error) {
	return f(ctx, user)
}

// Fetch loads user's records from src and computes the aggregates. A source
// failure is returned wrapped in ErrUnavailable and no partial result is
// produced.
func Fetch(ctx context.Context, src Source, user Identity, now time.Time) (*Result, error) {
	records, err := load(ctx, src, user)
	if err != nil {
		return nil, err
	}
	return Compute(records, now), nil
}

// FetchDashboard is Fetch for the home screen summary.
func FetchDashboard(ctx context.Context, src Source, user Identity, now time.Time) (*Dashboard, error) {
	records, err := load(ctx, src, user)
	if err != nil {
		return nil, err
	}
	return BuildDashboard(records, now), nil
}

func load(ctx context.Context, src Source, user Identity) ([]Record, error) {
	records, err := src.ListRecords(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return records, nil
}

package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_PassesIdentity(t *testing.T) {
	user := Identity{ID: uuid.New(), Email: "asha@example.com"}
	now := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)

	var got Identity
	src := SourceFunc(func(_ context.Context, u Identity) ([]Record, error) {
		got = u
		return []Record{
			{CompanyName: "Acme", Status: StatusApplied, DateApplied: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), CTC: NewCTC(12)},
		}, nil
	})

	res, err := Fetch(context.Background(), src, user, now)
	require.NoError(t, err)
	assert.Equal(t, user, got)
	assert.Equal(t, 1, res.StatusCounts[StatusApplied])
	assert.Equal(t, res, Compute([]Record{
		{CompanyName: "Acme", Status: StatusApplied, DateApplied: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), CTC: NewCTC(12)},
	}, now))
}

func TestFetch_SourceFailure(t *testing.T) {
	cause := errors.New("connection refused")
	src := SourceFunc(func(context.Context, Identity) ([]Record, error) {
		return nil, cause
	})

	res, err := Fetch(context.Background(), src, Identity{}, time.Now())
	assert.Nil(t, res, "no partial aggregation on failure")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)

	dash, err := FetchDashboard(context.Background(), src, Identity{}, time.Now())
	assert.Nil(t, dash)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchDashboard_EmptySource(t *testing.T) {
	src := SourceFunc(func(context.Context, Identity) ([]Record, error) {
		return nil, nil
	})

	dash, err := FetchDashboard(context.Background(), src, Identity{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, dash.Total)
	assert.Empty(t, dash.Recent)
	assert.Empty(t, dash.Upcoming)
}

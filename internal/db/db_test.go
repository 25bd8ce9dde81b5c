package db

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/job-tracker/internal/analytics"
	"github.com/jonathan/job-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStringArray(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty column", raw: "", want: nil},
		{name: "array", raw: `["Go","SQL"]`, want: []string{"Go", "SQL"}},
		{name: "drops blanks", raw: `["Go",""]`, want: []string{"Go"}},
		{name: "keeps strings beside other elements", raw: `["Go",5,null,{"x":1},"SQL"]`, want: []string{"Go", "SQL"}},
		{name: "object is ignored", raw: `{"lang":"Go"}`, want: nil},
		{name: "string is ignored", raw: `"Go, SQL"`, want: nil},
		{name: "malformed", raw: `[Go`, want: nil},
		{name: "json null", raw: `null`, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeStringArray([]byte(tt.raw)))
		})
	}
}

func TestEncodeStringArray(t *testing.T) {
	assert.Equal(t, "[]", string(encodeStringArray(nil)))
	assert.Equal(t, `["Go","SQL"]`, string(encodeStringArray([]string{"Go", "SQL"})))
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	require.NotNil(t, nullString("x"))
	assert.Equal(t, "x", *nullString("x"))
	assert.Equal(t, "", deref(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, isUniqueViolation(dup))
	assert.False(t, isUniqueViolation(fk))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}

func TestJobArgs_NullsEmptyOptionalFields(t *testing.T) {
	req := &types.JobRequest{
		CompanyName: "Acme",
		Role:        "SDE",
		Status:      analytics.StatusApplied,
		DateApplied: "2024-03-01",
		Location:    "Pune",
		Techstacks:  types.StringList{"Go"},
	}

	args := jobArgs(req)

	require.Len(t, args, 16)
	assert.Equal(t, "Acme", args[0])
	dateApplied, ok := args[3].(*time.Time)
	require.True(t, ok)
	assert.Equal(t, 2024, dateApplied.Year())
	assert.Nil(t, args[4], "notes")
	assert.Nil(t, args[5], "ctc")
	assert.Equal(t, []byte(`["Go"]`), args[7])
	assert.Nil(t, args[13], "application_deadline")
	assert.Nil(t, args[15], "tag")
}

func TestPendingSignup_Expired(t *testing.T) {
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	p := &PendingSignup{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, p.Expired(now))
	assert.True(t, p.Expired(now.Add(time.Minute)))
}

func TestSchema_DeclaresTables(t *testing.T) {
	schema := Schema()
	for _, table := range []string{"users", "pending_signups", "jobs", "contacts"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, schema, "UNIQUE (user_id, email)")
}

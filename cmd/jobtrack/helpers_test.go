package main

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-tracker/internal/analytics"
	"github.com/jonathan/job-tracker/internal/types"
)

func TestWriteOutput(t *testing.T) {
	job := types.Job{CompanyName: "Acme", Status: analytics.StatusOffered, CTC: analytics.NewCTC(12.5), Techstacks: types.StringList{"Go"}}

	tests := []struct {
		format string
		want   []string
	}{
		{"json", []string{`"company_name": "Acme"`, `"ctc": 12.5`}},
		{"yaml", []string{"company_name: Acme", "ctc: 12.5", "status: Offered", "- Go"}},
		{"table", []string{"rendered"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeOutput(&buf, tt.format, job, func() string { return "rendered" }))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestBatchJobs(t *testing.T) {
	rows := make([]types.JobRequest, 7)

	batches := batchJobs(rows, 3)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[1], 3)
	assert.Len(t, batches[2], 1)

	assert.Len(t, batchJobs(rows, 500), 1)
	assert.Empty(t, batchJobs(nil, 10))
}

func TestMatchPrefix(t *testing.T) {
	a := uuid.MustParse("1a2b3c4d-0000-0000-0000-000000000001")
	b := uuid.MustParse("1a2b9999-0000-0000-0000-000000000002")
	ids := []uuid.UUID{a, b}

	got, err := matchPrefix("job", "1A2B3C", ids)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	_, err = matchPrefix("job", "1a2b", ids)
	assert.ErrorContains(t, err, "matches 2 jobs")

	_, err = matchPrefix("job", "ffff", ids)
	assert.ErrorContains(t, err, "no job matches")

	_, err = matchPrefix("job", " ", ids)
	assert.Error(t, err)
}

func TestJobFlagsApply(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var jf jobFlags
	jf.bind(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--company", "Globex",
		"--ctc", "",
		"--bond-duration", "0",
		"--tech", "Go,,Rust",
	}))

	months := 12
	req := jobRequest(&types.Job{
		CompanyName:  "Acme",
		Role:         "SDE",
		CTC:          analytics.NewCTC(10),
		BondDuration: &months,
		Tag:          "Referral",
	})
	require.NoError(t, jf.apply(cmd, &req))

	assert.Equal(t, "Globex", req.CompanyName)
	assert.Equal(t, "SDE", req.Role, "unset flags keep their value")
	assert.Equal(t, "Referral", req.Tag)
	assert.False(t, req.CTC.Valid, "empty --ctc clears the value")
	require.NotNil(t, req.BondDuration)
	assert.Equal(t, 0, *req.BondDuration)
	assert.Equal(t, types.StringList{"Go", "Rust"}, req.Techstacks)
}

package submission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallysentry/internal/backend"
)

func completeDraft() Draft {
	return Draft{
		RegisteredVoters:      "500",
		PresidentialVotes:     "120",
		ParliamentaryVotes:    "118",
		LocalGovVotes:         "115",
		PresidentialEvidence:  "pres.jpg",
		ParliamentaryEvidence: "parl.jpg",
		LocalGovEvidence:      "local.jpg",
	}
}

func TestDraft_Complete(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Draft)
		expected bool
	}{
		{"all required fields present", func(d *Draft) {}, true},
		{"registered voters absent", func(d *Draft) { d.RegisteredVoters = "" }, true},
		{"missing presidential votes", func(d *Draft) { d.PresidentialVotes = "" }, false},
		{"missing parliamentary votes", func(d *Draft) { d.ParliamentaryVotes = "" }, false},
		{"missing local gov votes", func(d *Draft) { d.LocalGovVotes = "" }, false},
		{"missing presidential evidence", func(d *Draft) { d.PresidentialEvidence = "" }, false},
		{"missing parliamentary evidence", func(d *Draft) { d.ParliamentaryEvidence = "" }, false},
		{"missing local gov evidence", func(d *Draft) { d.LocalGovEvidence = "" }, false},
		{"two of three evidence files", func(d *Draft) { d.LocalGovEvidence = "" }, false},
		{"all optional fields absent", func(d *Draft) { d.RegisteredVoters = ""; d.NullifiedVotes = ""; d.InvalidVotes = "" }, true},
		{"optional fields present", func(d *Draft) { d.NullifiedVotes = "3"; d.InvalidVotes = "7" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := completeDraft()
			tt.mutate(&d)
			assert.Equal(t, tt.expected, d.Complete())
		})
	}
}

func TestDraft_SetUnknownField(t *testing.T) {
	var d Draft
	assert.Error(t, d.Set(Field("turnout"), "12"))
	assert.Error(t, d.Attach(Race("senate"), "x.jpg"))
}

func TestDraft_PrefillFrom(t *testing.T) {
	d := completeDraft()
	d.NullifiedVotes = "3"

	d.PrefillFrom(backend.SubmissionRecord{
		SubmissionID:       "s1",
		RegisteredVoters:   "600",
		InvalidVotes:       "2",
		PresidentialVotes:  "200",
		ParliamentaryVotes: "190",
		LocalGovVotes:      "180",
	})

	assert.Equal(t, "600", d.RegisteredVoters)
	assert.Equal(t, "", d.NullifiedVotes)
	assert.Equal(t, "2", d.InvalidVotes)
	assert.Equal(t, "200", d.PresidentialVotes)
	assert.Equal(t, "190", d.ParliamentaryVotes)
	assert.Equal(t, "180", d.LocalGovVotes)

	// Evidence is never pre-filled from server data.
	assert.Empty(t, d.PresidentialEvidence)
	assert.Empty(t, d.ParliamentaryEvidence)
	assert.Empty(t, d.LocalGovEvidence)

	// Pre-fill leaves an otherwise-complete draft incomplete.
	assert.False(t, d.Complete())
}

func TestDraft_Reset(t *testing.T) {
	d := completeDraft()
	d.Reset()
	require.Equal(t, Draft{}, d)
}

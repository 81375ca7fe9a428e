package submission

import (
	"fmt"

	"tallysentry/internal/backend"
)

// Race identifies one of the three contested races. Each race has a
// vote tally and a mandatory tally-sheet photograph.
type Race string

const (
	RacePresidential  Race = "presidential"
	RaceParliamentary Race = "parliamentary"
	RaceLocalGov      Race = "local-gov"
)

// Field names a numeric draft field
type Field string

const (
	FieldRegisteredVoters   Field = "registered-voters"
	FieldNullifiedVotes     Field = "nullified-votes"
	FieldInvalidVotes       Field = "invalid-votes"
	FieldPresidentialVotes  Field = "presidential-votes"
	FieldParliamentaryVotes Field = "parliamentary-votes"
	FieldLocalGovVotes      Field = "local-gov-votes"
)

// Draft is the in-memory working copy of a submission. It is owned
// exclusively by the Manager and never persisted.
type Draft struct {
	RegisteredVoters   string
	NullifiedVotes     string
	InvalidVotes       string
	PresidentialVotes  string
	ParliamentaryVotes string
	LocalGovVotes      string

	// Evidence file paths per race. Cleared on every edit entry;
	// edits always require fresh uploads.
	PresidentialEvidence  string
	ParliamentaryEvidence string
	LocalGovEvidence      string
}

// Complete reports whether the draft can be submitted: the three
// race tallies and the three evidence files must all be present.
// Registered voters, nullified and invalid counts are optional and
// never affect the result.
func (d *Draft) Complete() bool {
	return d.PresidentialVotes != "" &&
		d.ParliamentaryVotes != "" &&
		d.LocalGovVotes != "" &&
		d.PresidentialEvidence != "" &&
		d.ParliamentaryEvidence != "" &&
		d.LocalGovEvidence != ""
}

// Set assigns a numeric field by name
func (d *Draft) Set(field Field, value string) error {
	switch field {
	case FieldRegisteredVoters:
		d.RegisteredVoters = value
	case FieldNullifiedVotes:
		d.NullifiedVotes = value
	case FieldInvalidVotes:
		d.InvalidVotes = value
	case FieldPresidentialVotes:
		d.PresidentialVotes = value
	case FieldParliamentaryVotes:
		d.ParliamentaryVotes = value
	case FieldLocalGovVotes:
		d.LocalGovVotes = value
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

// Attach assigns an evidence file path for a race
func (d *Draft) Attach(race Race, path string) error {
	switch race {
	case RacePresidential:
		d.PresidentialEvidence = path
	case RaceParliamentary:
		d.ParliamentaryEvidence = path
	case RaceLocalGov:
		d.LocalGovEvidence = path
	default:
		return fmt.Errorf("unknown race: %s", race)
	}
	return nil
}

// PrefillFrom copies the six vote fields from a server record and
// clears all evidence slots. The history endpoint never returns raw
// images, so evidence must always be re-supplied when editing.
func (d *Draft) PrefillFrom(record backend.SubmissionRecord) {
	d.RegisteredVoters = record.RegisteredVoters
	d.NullifiedVotes = record.NullifiedVotes
	d.InvalidVotes = record.InvalidVotes
	d.PresidentialVotes = record.PresidentialVotes
	d.ParliamentaryVotes = record.ParliamentaryVotes
	d.LocalGovVotes = record.LocalGovVotes

	d.PresidentialEvidence = ""
	d.ParliamentaryEvidence = ""
	d.LocalGovEvidence = ""
}

// Reset clears every field and evidence slot
func (d *Draft) Reset() {
	*d = Draft{}
}

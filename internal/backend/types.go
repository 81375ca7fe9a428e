package backend

import "time"

// Status is the server-side verification status of a submission
type Status string

const (
	StatusPending  Status = "Pending"
	StatusVerified Status = "Verified"
)

// Verified reports whether the submission has been finalized by
// backend staff. Verified submissions are immutable from the client.
func (s Status) Verified() bool {
	return s == StatusVerified
}

// SubmissionRecord is a server-owned view of a prior submission.
// The client never mutates it; it is a rendering input and the seed
// for edit-mode pre-fill.
type SubmissionRecord struct {
	SubmissionID        string    `json:"submission_id"`
	MonitorID           string    `json:"monitor_id"`
	SubmissionTimestamp time.Time `json:"submission_timestamp"`
	Status              Status    `json:"status"`
	RegisteredVoters    string    `json:"registered_voters"`
	NullifiedVotes      string    `json:"nullified_votes"`
	InvalidVotes        string    `json:"invalid_votes"`
	PresidentialVotes   string    `json:"presidential_votes"`
	ParliamentaryVotes  string    `json:"parliamentary_votes"`
	LocalGovVotes       string    `json:"local_gov_votes"`
}

// SubmitRequest is the payload for POST /submit-results.
// SubmissionID is nil for a new submission and set to the pending
// submission's id for an update. Image fields carry base64 payloads.
type SubmitRequest struct {
	SubmissionID       *string `json:"submissionId"`
	MonitorID          string  `json:"monitorId"`
	RegisteredVoters   string  `json:"registeredVoters"`
	NullifiedVotes     string  `json:"nullifiedVotes"`
	InvalidVotes       string  `json:"invalidVotes"`
	PresidentialVotes  string  `json:"presidentialVotes"`
	PresidentialImage  *string `json:"presidentialImage"`
	ParliamentaryVotes string  `json:"parliamentaryVotes"`
	ParliamentaryImage *string `json:"parliamentaryImage"`
	LocalGovVotes      string  `json:"localGovVotes"`
	LocalGovImage      *string `json:"localGovImage"`
}

// messageResponse is the generic {message} body the backend returns
// for logins, check-ins and submissions.
type messageResponse struct {
	Message string `json:"message"`
}

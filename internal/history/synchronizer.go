// Package history keeps the monitor's view of prior submissions in
// sync with the backend. Every refresh replaces the rendered list
// wholesale; the client never patches a partial view and never
// re-sorts what the backend returned.
package history

import (
	"context"

	"go.uber.org/zap"

	"tallysentry/internal/backend"
)

// Messages for the two non-list render states.
const (
	EmptyText = "No submissions found."
	ErrorText = "Failed to load history."
)

// Entry is one rendered history row. Editable is true only for
// records the backend has not yet verified.
type Entry struct {
	Record   backend.SubmissionRecord
	Editable bool
}

// View is the presentation surface for the history list
type View interface {
	// ShowLoading indicates a refresh is in progress
	ShowLoading()

	// ShowEntries replaces the list with the given rows, in order
	ShowEntries(entries []Entry)

	// ShowEmpty indicates the monitor has no submissions. Distinct
	// from ShowError.
	ShowEmpty()

	// ShowError replaces the list with an error indicator
	ShowError(message string)
}

// Lister fetches a monitor's submission records
type Lister interface {
	Submissions(ctx context.Context, monitorID string) ([]backend.SubmissionRecord, error)
}

// Synchronizer fetches and renders the submission history
type Synchronizer struct {
	lister Lister
	view   View
	logger *zap.Logger

	entries []Entry
}

// NewSynchronizer creates a history synchronizer
func NewSynchronizer(lister Lister, view View, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		lister: lister,
		view:   view,
		logger: logger,
	}
}

// Refresh fetches the monitor's submissions and re-renders the list.
// Failures render an error indicator and are otherwise swallowed; the
// rest of the application stays usable.
func (s *Synchronizer) Refresh(ctx context.Context, monitorID string) {
	s.view.ShowLoading()

	records, err := s.lister.Submissions(ctx, monitorID)
	if err != nil {
		s.logger.Warn("Failed to fetch submission history",
			zap.String("monitor_id", monitorID),
			zap.Error(err))
		s.entries = nil
		s.view.ShowError(ErrorText)
		return
	}

	if len(records) == 0 {
		s.entries = nil
		s.view.ShowEmpty()
		return
	}

	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, Entry{
			Record:   record,
			Editable: !record.Status.Verified(),
		})
	}
	s.entries = entries
	s.view.ShowEntries(entries)
}

// Entries returns the rows from the most recent successful refresh
func (s *Synchronizer) Entries() []Entry {
	return s.entries
}

// EditableRecord resolves a submission id to its record, provided the
// entry was rendered with an edit affordance.
func (s *Synchronizer) EditableRecord(submissionID string) (backend.SubmissionRecord, bool) {
	for _, entry := range s.entries {
		if entry.Record.SubmissionID == submissionID && entry.Editable {
			return entry.Record, true
		}
	}
	return backend.SubmissionRecord{}, false
}

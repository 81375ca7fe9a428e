// Package submission holds the draft a monitor is working on and the
// lifecycle around it: creating a fresh submission, editing a pending
// one, and the submit round trip. All submit gating flows through the
// draft completeness predicate; no other component enables submit.
package submission

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tallysentry/internal/backend"
	"tallysentry/internal/domain/lifecycle"
	"tallysentry/internal/evidence"
)

var (
	// ErrVerifiedRecord is returned when edit is requested for a
	// submission the backend has already verified
	ErrVerifiedRecord = errors.New("verified submissions cannot be edited")

	// ErrSubmitInFlight is returned when a submit is requested while
	// another submit is still running
	ErrSubmitInFlight = errors.New("a submission is already in flight")

	// ErrDraftIncomplete is returned when submit is requested before
	// the draft passes the completeness gate
	ErrDraftIncomplete = errors.New("draft is incomplete")
)

// Submitter sends an assembled submission to the backend
type Submitter interface {
	SubmitResults(ctx context.Context, req backend.SubmitRequest) (string, error)
}

// Manager owns the draft and the edit target and orchestrates the
// transitions between creating and editing. It is not safe for
// concurrent use; like the rest of the client it runs on a single
// logical thread of control.
type Manager struct {
	monitorID func() string
	encoder   *evidence.Encoder
	submitter Submitter
	view      FormView
	logger    *zap.Logger

	machine    lifecycle.Machine
	draft      Draft
	editTarget string

	// onSubmitSuccess runs exactly once per successful submit; the
	// application wires it to the history refresh.
	onSubmitSuccess func(ctx context.Context)
}

// NewManager creates a lifecycle manager. monitorID supplies the
// authenticated identity at submit time.
func NewManager(monitorID func() string, encoder *evidence.Encoder, submitter Submitter, view FormView, logger *zap.Logger) *Manager {
	m := &Manager{
		monitorID: monitorID,
		encoder:   encoder,
		submitter: submitter,
		view:      view,
		logger:    logger,
	}

	editing := func(ctx context.Context) bool { return m.editTarget != "" }
	creating := func(ctx context.Context) bool { return m.editTarget == "" }
	complete := func(ctx context.Context) bool { return m.draft.Complete() }

	b := lifecycle.NewBuilder()
	b.Configure(lifecycle.StateCreating).
		Permit(lifecycle.TriggerBeginEdit, lifecycle.StateEditing).
		PermitIf(lifecycle.TriggerStartSubmit, lifecycle.StateSubmitting, complete)
	b.Configure(lifecycle.StateEditing).
		Permit(lifecycle.TriggerBeginEdit, lifecycle.StateEditing).
		Permit(lifecycle.TriggerCancelEdit, lifecycle.StateCreating).
		PermitIf(lifecycle.TriggerStartSubmit, lifecycle.StateSubmitting, complete)
	b.Configure(lifecycle.StateSubmitting).
		Permit(lifecycle.TriggerSubmitOK, lifecycle.StateCreating).
		PermitIf(lifecycle.TriggerSubmitFail, lifecycle.StateEditing, editing).
		PermitIf(lifecycle.TriggerSubmitFail, lifecycle.StateCreating, creating)
	m.machine = b.Build(lifecycle.StateCreating)

	m.view.SetSubmitLabel(SubmitLabelCreate)
	m.view.SetCancelVisible(false)
	m.refreshGate()

	return m
}

// OnSubmitSuccess registers the hook run after every successful submit
func (m *Manager) OnSubmitSuccess(fn func(ctx context.Context)) {
	m.onSubmitSuccess = fn
}

// State returns the current lifecycle state
func (m *Manager) State() lifecycle.State {
	return m.machine.State()
}

// EditTarget returns the id of the submission being edited, or the
// empty string while creating.
func (m *Manager) EditTarget() string {
	return m.editTarget
}

// Draft returns a copy of the current draft
func (m *Manager) Draft() Draft {
	return m.draft
}

// SetField updates a numeric draft field and re-evaluates the gate
func (m *Manager) SetField(field Field, value string) error {
	if err := m.draft.Set(field, value); err != nil {
		return err
	}
	m.refreshGate()
	return nil
}

// AttachEvidence records an evidence file path for a race and
// re-evaluates the gate. The file is not read until submit.
func (m *Manager) AttachEvidence(race Race, path string) error {
	if err := m.draft.Attach(race, path); err != nil {
		return err
	}
	m.refreshGate()
	return nil
}

// BeginEdit enters edit mode for a pending submission: the six vote
// fields are pre-filled from the record, evidence is cleared, and the
// submit affordance becomes an update.
func (m *Manager) BeginEdit(ctx context.Context, record backend.SubmissionRecord) error {
	if record.Status.Verified() {
		return fmt.Errorf("%w: %s", ErrVerifiedRecord, record.SubmissionID)
	}

	if err := m.machine.Fire(ctx, lifecycle.TriggerBeginEdit); err != nil {
		return err
	}

	m.draft.PrefillFrom(record)
	m.editTarget = record.SubmissionID

	m.view.SetSubmitLabel(SubmitLabelUpdate)
	m.view.SetCancelVisible(true)
	m.refreshGate()
	m.view.Notify(NoticeEditPending)

	m.logger.Info("Editing pending submission",
		zap.String("submission_id", record.SubmissionID))

	return nil
}

// CancelEdit abandons edit mode, clearing the draft entirely
func (m *Manager) CancelEdit(ctx context.Context) error {
	if err := m.machine.Fire(ctx, lifecycle.TriggerCancelEdit); err != nil {
		return err
	}

	m.draft.Reset()
	m.editTarget = ""

	m.view.SetSubmitLabel(SubmitLabelCreate)
	m.view.SetCancelVisible(false)
	m.refreshGate()

	return nil
}

// Submit encodes the three evidence files, sends the assembled
// payload, and on success resets the draft and returns to creating.
// On any failure the draft and edit target are left untouched so the
// user can retry; evidence is re-read from disk on the next attempt.
func (m *Manager) Submit(ctx context.Context) (string, error) {
	if err := m.machine.Fire(ctx, lifecycle.TriggerStartSubmit); err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrGuardFailed):
			return "", ErrDraftIncomplete
		case errors.Is(err, lifecycle.ErrInvalidTransition):
			return "", ErrSubmitInFlight
		default:
			return "", err
		}
	}

	m.view.SetSubmitEnabled(false)
	m.view.SetSubmitLabel(SubmitLabelBusy)

	msg, err := m.submit(ctx)
	if err != nil {
		m.fail(ctx)
		return "", err
	}

	m.draft.Reset()
	m.editTarget = ""
	if err := m.machine.Fire(ctx, lifecycle.TriggerSubmitOK); err != nil {
		return "", err
	}

	m.view.SetSubmitLabel(SubmitLabelCreate)
	m.view.SetCancelVisible(false)
	m.refreshGate()

	if m.onSubmitSuccess != nil {
		m.onSubmitSuccess(ctx)
	}

	return msg, nil
}

func (m *Manager) submit(ctx context.Context) (string, error) {
	encoded, err := m.encoder.EncodeAll(ctx,
		m.draft.PresidentialEvidence,
		m.draft.ParliamentaryEvidence,
		m.draft.LocalGovEvidence,
	)
	if err != nil {
		return "", err
	}

	req := backend.SubmitRequest{
		MonitorID:          m.monitorID(),
		RegisteredVoters:   m.draft.RegisteredVoters,
		NullifiedVotes:     m.draft.NullifiedVotes,
		InvalidVotes:       m.draft.InvalidVotes,
		PresidentialVotes:  m.draft.PresidentialVotes,
		PresidentialImage:  encoded[0],
		ParliamentaryVotes: m.draft.ParliamentaryVotes,
		ParliamentaryImage: encoded[1],
		LocalGovVotes:      m.draft.LocalGovVotes,
		LocalGovImage:      encoded[2],
	}
	if m.editTarget != "" {
		id := m.editTarget
		req.SubmissionID = &id
	}

	return m.submitter.SubmitResults(ctx, req)
}

// fail returns the machine to its pre-submit state, preserving the
// draft and edit target for retry.
func (m *Manager) fail(ctx context.Context) {
	if err := m.machine.Fire(ctx, lifecycle.TriggerSubmitFail); err != nil {
		m.logger.Error("Failed to leave submitting state", zap.Error(err))
	}

	if m.editTarget != "" {
		m.view.SetSubmitLabel(SubmitLabelUpdate)
		m.view.SetCancelVisible(true)
	} else {
		m.view.SetSubmitLabel(SubmitLabelCreate)
	}
	m.refreshGate()
}

// refreshGate pushes the completeness gate's verdict to the view.
// This is the single place the submit affordance is enabled.
func (m *Manager) refreshGate() {
	enabled := m.draft.Complete() && m.machine.State() != lifecycle.StateSubmitting
	m.view.SetSubmitEnabled(enabled)
}

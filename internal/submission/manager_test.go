package submission

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tallysentry/internal/backend"
	"tallysentry/internal/domain/lifecycle"
	"tallysentry/internal/evidence"
)

// fakeView records everything the manager pushes at the presentation
type fakeView struct {
	submitEnabled bool
	submitLabel   string
	cancelVisible bool
	notices       []string
	errorNotices  []string
}

func (v *fakeView) SetSubmitEnabled(enabled bool) { v.submitEnabled = enabled }
func (v *fakeView) SetSubmitLabel(label string) { v.submitLabel = label }
func (v *fakeView) SetCancelVisible(show bool) { v.cancelVisible = show }
func (v *fakeView) Notify(msg string) { v.notices = append(v.notices, msg) }
func (v *fakeView) NotifyError(msg string) { v.errorNotices = append(v.errorNotices, msg) }

type fakeSubmitter struct {
	submitFunc func(ctx context.Context, req backend.SubmitRequest) (string, error)
	requests   []backend.SubmitRequest
}

func (s *fakeSubmitter) SubmitResults(ctx context.Context, req backend.SubmitRequest) (string, error) {
	s.requests = append(s.requests, req)
	if s.submitFunc != nil {
		return s.submitFunc(ctx, req)
	}
	return "Results submitted", nil
}

func newTestManager(t *testing.T) (*Manager, *fakeView, *fakeSubmitter) {
	t.Helper()
	view := &fakeView{}
	submitter := &fakeSubmitter{}
	m := NewManager(
		func() string { return "M1" },
		evidence.NewEncoder(zap.NewNop()),
		submitter,
		view,
		zap.NewNop(),
	)
	return m, view, submitter
}

func evidenceFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(name), 0644))
	return path
}

func fillDraft(t *testing.T, m *Manager) {
	t.Helper()
	require.NoError(t, m.SetField(FieldRegisteredVoters, "500"))
	require.NoError(t, m.SetField(FieldPresidentialVotes, "120"))
	require.NoError(t, m.SetField(FieldParliamentaryVotes, "118"))
	require.NoError(t, m.SetField(FieldLocalGovVotes, "115"))
	require.NoError(t, m.AttachEvidence(RacePresidential, evidenceFile(t, "pres.jpg")))
	require.NoError(t, m.AttachEvidence(RaceParliamentary, evidenceFile(t, "parl.jpg")))
	require.NoError(t, m.AttachEvidence(RaceLocalGov, evidenceFile(t, "local.jpg")))
}

func pendingRecord() backend.SubmissionRecord {
	return backend.SubmissionRecord{
		SubmissionID:       "s1",
		MonitorID:          "M1",
		Status:             backend.StatusPending,
		RegisteredVoters:   "600",
		PresidentialVotes:  "200",
		ParliamentaryVotes: "190",
		LocalGovVotes:      "180",
	}
}

func TestManager_InitialState(t *testing.T) {
	m, view, _ := newTestManager(t)

	assert.Equal(t, lifecycle.StateCreating, m.State())
	assert.Empty(t, m.EditTarget())
	assert.False(t, view.submitEnabled)
	assert.Equal(t, SubmitLabelCreate, view.submitLabel)
	assert.False(t, view.cancelVisible)
}

func TestManager_GateFollowsDraftCompleteness(t *testing.T) {
	m, view, _ := newTestManager(t)

	require.NoError(t, m.SetField(FieldRegisteredVoters, "500"))
	require.NoError(t, m.SetField(FieldPresidentialVotes, "120"))
	require.NoError(t, m.SetField(FieldParliamentaryVotes, "118"))
	require.NoError(t, m.SetField(FieldLocalGovVotes, "115"))
	require.NoError(t, m.AttachEvidence(RacePresidential, "pres.jpg"))
	require.NoError(t, m.AttachEvidence(RaceParliamentary, "parl.jpg"))

	// Two of three evidence files: still disabled.
	assert.False(t, view.submitEnabled)

	require.NoError(t, m.AttachEvidence(RaceLocalGov, "local.jpg"))
	assert.True(t, view.submitEnabled)

	// Clearing a field disables again.
	require.NoError(t, m.SetField(FieldPresidentialVotes, ""))
	assert.False(t, view.submitEnabled)
	require.NoError(t, m.SetField(FieldPresidentialVotes, "120"))

	// The optional counts never gate submit.
	require.NoError(t, m.SetField(FieldRegisteredVoters, ""))
	require.NoError(t, m.SetField(FieldNullifiedVotes, ""))
	require.NoError(t, m.SetField(FieldInvalidVotes, ""))
	assert.True(t, view.submitEnabled)
}

func TestManager_BeginEdit(t *testing.T) {
	t.Run("pending record enters edit mode", func(t *testing.T) {
		m, view, _ := newTestManager(t)

		require.NoError(t, m.BeginEdit(context.Background(), pendingRecord()))

		assert.Equal(t, lifecycle.StateEditing, m.State())
		assert.Equal(t, "s1", m.EditTarget())

		draft := m.Draft()
		assert.Equal(t, "600", draft.RegisteredVoters)
		assert.Equal(t, "200", draft.PresidentialVotes)
		assert.Empty(t, draft.PresidentialEvidence)
		assert.Empty(t, draft.ParliamentaryEvidence)
		assert.Empty(t, draft.LocalGovEvidence)

		assert.Equal(t, SubmitLabelUpdate, view.submitLabel)
		assert.True(t, view.cancelVisible)
		assert.False(t, view.submitEnabled)
		assert.Contains(t, view.notices, NoticeEditPending)
	})

	t.Run("verified record is rejected", func(t *testing.T) {
		m, _, _ := newTestManager(t)

		record := pendingRecord()
		record.Status = backend.StatusVerified
		err := m.BeginEdit(context.Background(), record)

		require.ErrorIs(t, err, ErrVerifiedRecord)
		assert.Equal(t, lifecycle.StateCreating, m.State())
		assert.Empty(t, m.EditTarget())
	})

	t.Run("switching to another pending record replaces the target", func(t *testing.T) {
		m, _, _ := newTestManager(t)

		require.NoError(t, m.BeginEdit(context.Background(), pendingRecord()))
		other := pendingRecord()
		other.SubmissionID = "s2"
		other.PresidentialVotes = "999"
		require.NoError(t, m.BeginEdit(context.Background(), other))

		assert.Equal(t, "s2", m.EditTarget())
		assert.Equal(t, "999", m.Draft().PresidentialVotes)
	})
}

func TestManager_CancelEdit(t *testing.T) {
	m, view, _ := newTestManager(t)

	require.NoError(t, m.BeginEdit(context.Background(), pendingRecord()))
	require.NoError(t, m.AttachEvidence(RacePresidential, "pres.jpg"))

	require.NoError(t, m.CancelEdit(context.Background()))

	assert.Equal(t, lifecycle.StateCreating, m.State())
	assert.Empty(t, m.EditTarget())
	assert.Equal(t, Draft{}, m.Draft())
	assert.Equal(t, SubmitLabelCreate, view.submitLabel)
	assert.False(t, view.cancelVisible)
	assert.False(t, view.submitEnabled)
}

func TestManager_CancelEditWhileCreating(t *testing.T) {
	m, _, _ := newTestManager(t)
	err := m.CancelEdit(context.Background())
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
}

func TestManager_Submit(t *testing.T) {
	t.Run("create sends no submission id and resets on success", func(t *testing.T) {
		m, view, submitter := newTestManager(t)
		refreshes := 0
		m.OnSubmitSuccess(func(ctx context.Context) { refreshes++ })

		fillDraft(t, m)
		msg, err := m.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Results submitted", msg)

		require.Len(t, submitter.requests, 1)
		req := submitter.requests[0]
		assert.Nil(t, req.SubmissionID)
		assert.Equal(t, "M1", req.MonitorID)
		assert.Equal(t, "120", req.PresidentialVotes)
		require.NotNil(t, req.PresidentialImage)
		require.NotNil(t, req.ParliamentaryImage)
		require.NotNil(t, req.LocalGovImage)

		assert.Equal(t, 1, refreshes)
		assert.Equal(t, lifecycle.StateCreating, m.State())
		assert.Equal(t, Draft{}, m.Draft())
		assert.Equal(t, SubmitLabelCreate, view.submitLabel)
		assert.False(t, view.cancelVisible)
		assert.False(t, view.submitEnabled)
	})

	t.Run("update carries the edit target and resets on success", func(t *testing.T) {
		m, _, submitter := newTestManager(t)
		require.NoError(t, m.BeginEdit(context.Background(), pendingRecord()))
		fillDraft(t, m)

		_, err := m.Submit(context.Background())
		require.NoError(t, err)

		require.Len(t, submitter.requests, 1)
		require.NotNil(t, submitter.requests[0].SubmissionID)
		assert.Equal(t, "s1", *submitter.requests[0].SubmissionID)

		assert.Equal(t, lifecycle.StateCreating, m.State())
		assert.Empty(t, m.EditTarget())
	})

	t.Run("backend failure preserves draft and edit target", func(t *testing.T) {
		m, view, submitter := newTestManager(t)
		refreshes := 0
		m.OnSubmitSuccess(func(ctx context.Context) { refreshes++ })
		submitter.submitFunc = func(ctx context.Context, req backend.SubmitRequest) (string, error) {
			return "", &backend.APIError{Status: 400, Message: "Invalid data"}
		}

		require.NoError(t, m.BeginEdit(context.Background(), pendingRecord()))
		fillDraft(t, m)
		before := m.Draft()

		_, err := m.Submit(context.Background())
		require.Error(t, err)
		assert.Equal(t, "Invalid data", backend.UserMessage(err, "retry"))

		assert.Equal(t, lifecycle.StateEditing, m.State())
		assert.Equal(t, "s1", m.EditTarget())
		assert.Equal(t, before, m.Draft())
		assert.Equal(t, SubmitLabelUpdate, view.submitLabel)
		assert.True(t, view.cancelVisible)
		assert.True(t, view.submitEnabled) // draft still complete, retry allowed
		assert.Zero(t, refreshes)
	})

	t.Run("unreadable evidence aborts before the network call", func(t *testing.T) {
		m, _, submitter := newTestManager(t)
		fillDraft(t, m)
		require.NoError(t, m.AttachEvidence(RaceParliamentary, filepath.Join(t.TempDir(), "gone.jpg")))

		_, err := m.Submit(context.Background())
		require.ErrorIs(t, err, evidence.ErrRead)
		assert.Empty(t, submitter.requests)
		assert.Equal(t, lifecycle.StateCreating, m.State())
		// Draft untouched: re-selecting the file is enough to retry.
		assert.Equal(t, "500", m.Draft().RegisteredVoters)
	})

	t.Run("incomplete draft cannot submit", func(t *testing.T) {
		m, _, submitter := newTestManager(t)
		require.NoError(t, m.SetField(FieldPresidentialVotes, "120"))

		_, err := m.Submit(context.Background())
		require.ErrorIs(t, err, ErrDraftIncomplete)
		assert.Empty(t, submitter.requests)
	})

	t.Run("a second submit while one is in flight is rejected", func(t *testing.T) {
		m, _, submitter := newTestManager(t)
		var nested error
		submitter.submitFunc = func(ctx context.Context, req backend.SubmitRequest) (string, error) {
			_, nested = m.Submit(ctx)
			return "ok", nil
		}

		fillDraft(t, m)
		_, err := m.Submit(context.Background())
		require.NoError(t, err)
		assert.ErrorIs(t, nested, ErrSubmitInFlight)
		assert.Len(t, submitter.requests, 1)
	})

	t.Run("evidence is re-read on every attempt", func(t *testing.T) {
		m, _, submitter := newTestManager(t)
		submitter.submitFunc = func(ctx context.Context, req backend.SubmitRequest) (string, error) {
			return "", errors.New("boom")
		}

		fillDraft(t, m)
		path := evidenceFile(t, "fresh.jpg")
		require.NoError(t, m.AttachEvidence(RacePresidential, path))

		_, err := m.Submit(context.Background())
		require.Error(t, err)

		// The file changes between attempts; the retry must pick up
		// the new bytes rather than stale encoded ones.
		require.NoError(t, os.WriteFile(path, []byte("retaken photo"), 0644))
		submitter.submitFunc = nil

		_, err = m.Submit(context.Background())
		require.NoError(t, err)

		first := submitter.requests[0].PresidentialImage
		second := submitter.requests[1].PresidentialImage
		require.NotNil(t, first)
		require.NotNil(t, second)
		assert.NotEqual(t, *first, *second)
	})
}

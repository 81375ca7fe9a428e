package lifecycle

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"creating", StateCreating, true},
		{"editing", StateEditing, true},
		{"submitting", StateSubmitting, true},
		{"unknown state", State("VERIFIED"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	if got := StateCreating.String(); got != "CREATING" {
		t.Errorf("State.String() = %v, want CREATING", got)
	}
}

func TestTrigger_String(t *testing.T) {
	if got := TriggerBeginEdit.String(); got != "BEGIN_EDIT" {
		t.Errorf("Trigger.String() = %v, want BEGIN_EDIT", got)
	}
}

func TestBuilder_ConfigureReturnsSameConfig(t *testing.T) {
	b := NewBuilder()
	if b.Configure(StateCreating) != b.Configure(StateCreating) {
		t.Error("Configure() should return the same config for the same state")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()
	NewBuilder().Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()
	NewBuilder().Build(State("INVALID"))
}

func newSubmissionMachine(editing func() bool) Machine {
	b := NewBuilder()
	editingGuard := func(ctx context.Context) bool { return editing() }
	creatingGuard := func(ctx context.Context) bool { return !editing() }

	b.Configure(StateCreating).
		Permit(TriggerBeginEdit, StateEditing).
		Permit(TriggerStartSubmit, StateSubmitting)
	b.Configure(StateEditing).
		Permit(TriggerBeginEdit, StateEditing).
		Permit(TriggerCancelEdit, StateCreating).
		Permit(TriggerStartSubmit, StateSubmitting)
	b.Configure(StateSubmitting).
		Permit(TriggerSubmitOK, StateCreating).
		PermitIf(TriggerSubmitFail, StateEditing, editingGuard).
		PermitIf(TriggerSubmitFail, StateCreating, creatingGuard)

	return b.Build(StateCreating)
}

func TestMachine_SubmissionCycle(t *testing.T) {
	editing := false
	m := newSubmissionMachine(func() bool { return editing })
	ctx := context.Background()

	if m.State() != StateCreating {
		t.Fatalf("initial state = %v, want CREATING", m.State())
	}

	// Fresh submission round trip.
	if err := m.Fire(ctx, TriggerStartSubmit); err != nil {
		t.Fatalf("Fire(START_SUBMIT) error: %v", err)
	}
	if err := m.Fire(ctx, TriggerSubmitOK); err != nil {
		t.Fatalf("Fire(SUBMIT_OK) error: %v", err)
	}
	if m.State() != StateCreating {
		t.Errorf("state after successful submit = %v, want CREATING", m.State())
	}

	// Edit round trip with a failed submit: back to editing.
	if err := m.Fire(ctx, TriggerBeginEdit); err != nil {
		t.Fatalf("Fire(BEGIN_EDIT) error: %v", err)
	}
	editing = true
	if err := m.Fire(ctx, TriggerStartSubmit); err != nil {
		t.Fatalf("Fire(START_SUBMIT) error: %v", err)
	}
	if err := m.Fire(ctx, TriggerSubmitFail); err != nil {
		t.Fatalf("Fire(SUBMIT_FAIL) error: %v", err)
	}
	if m.State() != StateEditing {
		t.Errorf("state after failed edit submit = %v, want EDITING", m.State())
	}
}

func TestMachine_SubmitIsNotReentrant(t *testing.T) {
	m := newSubmissionMachine(func() bool { return false })
	ctx := context.Background()

	if err := m.Fire(ctx, TriggerStartSubmit); err != nil {
		t.Fatalf("Fire(START_SUBMIT) error: %v", err)
	}
	if m.CanFire(TriggerStartSubmit) {
		t.Error("CanFire(START_SUBMIT) while submitting = true, want false")
	}
	err := m.Fire(ctx, TriggerStartSubmit)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire(START_SUBMIT) while submitting = %v, want ErrInvalidTransition", err)
	}
	if m.State() != StateSubmitting {
		t.Errorf("state after rejected trigger = %v, want SUBMITTING", m.State())
	}
}

func TestMachine_CancelOnlyWhileEditing(t *testing.T) {
	m := newSubmissionMachine(func() bool { return false })
	ctx := context.Background()

	err := m.Fire(ctx, TriggerCancelEdit)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire(CANCEL_EDIT) from CREATING = %v, want ErrInvalidTransition", err)
	}

	if err := m.Fire(ctx, TriggerBeginEdit); err != nil {
		t.Fatalf("Fire(BEGIN_EDIT) error: %v", err)
	}
	if err := m.Fire(ctx, TriggerCancelEdit); err != nil {
		t.Errorf("Fire(CANCEL_EDIT) from EDITING error: %v", err)
	}
	if m.State() != StateCreating {
		t.Errorf("state after cancel = %v, want CREATING", m.State())
	}
}

func TestMachine_GuardFailureKeepsState(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateCreating).
		PermitIf(TriggerStartSubmit, StateSubmitting, func(ctx context.Context) bool { return false })
	m := b.Build(StateCreating)

	err := m.Fire(context.Background(), TriggerStartSubmit)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() with failing guard = %v, want ErrGuardFailed", err)
	}
	if m.State() != StateCreating {
		t.Errorf("state after guard failure = %v, want CREATING", m.State())
	}
}

func TestBuilder_BuildCopiesConfiguration(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateCreating).Permit(TriggerStartSubmit, StateSubmitting)
	m := b.Build(StateCreating)

	// Further configuration must not leak into the built machine.
	b.Configure(StateCreating).Permit(TriggerBeginEdit, StateEditing)

	if m.CanFire(TriggerBeginEdit) {
		t.Error("built machine picked up configuration added after Build()")
	}
}

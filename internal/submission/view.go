package submission

// Submit affordance labels and the edit-mode notice.
const (
	SubmitLabelCreate = "Submit All Results"
	SubmitLabelUpdate = "Update Results"
	SubmitLabelBusy   = "Submitting..."

	NoticeEditPending = "You are now editing a pending submission. You must re-upload images."
)

// FormView is the presentation surface the Manager drives. The
// terminal client implements it over stdout; tests implement it with
// a recording fake. The Manager is the only component that may enable
// the submit affordance.
type FormView interface {
	// SetSubmitEnabled toggles the submit affordance between its
	// actionable and disabled presentation
	SetSubmitEnabled(enabled bool)

	// SetSubmitLabel relabels the submit affordance
	SetSubmitLabel(label string)

	// SetCancelVisible shows or hides the cancel-edit affordance
	SetCancelVisible(visible bool)

	// Notify shows a user-visible message
	Notify(message string)

	// NotifyError shows a user-visible message in error styling
	NotifyError(message string)
}

package main

import (
	"fmt"
	"io"

	"tallysentry/internal/history"
	"tallysentry/internal/submission"
)

// consoleFormView renders the results-form surface on the terminal.
// The enabled/label/cancel state is held here so the status command
// can show the form exactly as the manager last left it.
type consoleFormView struct {
	out io.Writer

	submitEnabled bool
	submitLabel   string
	cancelVisible bool
}

func newConsoleFormView(out io.Writer) *consoleFormView {
	return &consoleFormView{out: out, submitLabel: submission.SubmitLabelCreate}
}

func (v *consoleFormView) SetSubmitEnabled(enabled bool) { v.submitEnabled = enabled }
func (v *consoleFormView) SetSubmitLabel(label string)   { v.submitLabel = label }
func (v *consoleFormView) SetCancelVisible(show bool)    { v.cancelVisible = show }

func (v *consoleFormView) Notify(message string) {
	fmt.Fprintf(v.out, "  %s\n", message)
}

func (v *consoleFormView) NotifyError(message string) {
	fmt.Fprintf(v.out, "  ERROR: %s\n", message)
}

func (v *consoleFormView) renderStatus(draft submission.Draft) {
	fmt.Fprintln(v.out, "  Results form:")
	fmt.Fprintf(v.out, "    registered-voters:   %s (optional)\n", orBlank(draft.RegisteredVoters))
	fmt.Fprintf(v.out, "    nullified-votes:     %s (optional)\n", orBlank(draft.NullifiedVotes))
	fmt.Fprintf(v.out, "    invalid-votes:       %s (optional)\n", orBlank(draft.InvalidVotes))
	fmt.Fprintf(v.out, "    presidential-votes:  %s\n", orBlank(draft.PresidentialVotes))
	fmt.Fprintf(v.out, "    parliamentary-votes: %s\n", orBlank(draft.ParliamentaryVotes))
	fmt.Fprintf(v.out, "    local-gov-votes:     %s\n", orBlank(draft.LocalGovVotes))
	fmt.Fprintf(v.out, "    evidence presidential:  %s\n", orBlank(draft.PresidentialEvidence))
	fmt.Fprintf(v.out, "    evidence parliamentary: %s\n", orBlank(draft.ParliamentaryEvidence))
	fmt.Fprintf(v.out, "    evidence local-gov:     %s\n", orBlank(draft.LocalGovEvidence))

	state := "disabled"
	if v.submitEnabled {
		state = "ready"
	}
	fmt.Fprintf(v.out, "  [%s] (%s)\n", v.submitLabel, state)
	if v.cancelVisible {
		fmt.Fprintln(v.out, "  [Cancel Edit]")
	}
}

func orBlank(s string) string {
	if s == "" {
		return "<empty>"
	}
	return s
}

// consoleHistoryView renders the submission history list
type consoleHistoryView struct {
	out io.Writer
}

func newConsoleHistoryView(out io.Writer) *consoleHistoryView {
	return &consoleHistoryView{out: out}
}

func (v *consoleHistoryView) ShowLoading() {
	fmt.Fprintln(v.out, "  Loading submissions...")
}

func (v *consoleHistoryView) ShowEntries(entries []history.Entry) {
	fmt.Fprintln(v.out, "  Submission history:")
	for i, entry := range entries {
		status := "Pending Verification"
		if !entry.Editable {
			status = "Verified"
		}
		fmt.Fprintf(v.out, "    [%d] %s  %s  P:%s L:%s G:%s",
			i+1,
			entry.Record.SubmissionTimestamp.Local().Format("2006-01-02 15:04"),
			status,
			entry.Record.PresidentialVotes,
			entry.Record.ParliamentaryVotes,
			entry.Record.LocalGovVotes,
		)
		if entry.Editable {
			fmt.Fprintf(v.out, "  (edit %d to modify)", i+1)
		}
		fmt.Fprintln(v.out)
	}
}

func (v *consoleHistoryView) ShowEmpty() {
	fmt.Fprintf(v.out, "  %s\n", history.EmptyText)
}

func (v *consoleHistoryView) ShowError(message string) {
	fmt.Fprintf(v.out, "  %s\n", message)
}

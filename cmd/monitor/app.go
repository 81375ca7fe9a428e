package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tallysentry/internal/backend"
	"tallysentry/internal/history"
	"tallysentry/internal/session"
	"tallysentry/internal/submission"
)

// handler runs one command. args excludes the command word itself.
type handler struct {
	usage        string
	description  string
	requireLogin bool
	run          func(ctx context.Context, args []string) error
}

// app routes commands through an explicit dispatch table instead of
// closures over shared state.
type app struct {
	session      *session.Controller
	manager      *submission.Manager
	synchronizer *history.Synchronizer
	exporter     exporter
	formView     *consoleFormView
	logger       *zap.Logger

	commands map[string]handler
	order    []string
	quit     bool
}

type exporter interface {
	Write(monitorID string, records []backend.SubmissionRecord) (string, error)
}

func newApp(
	sess *session.Controller,
	manager *submission.Manager,
	synchronizer *history.Synchronizer,
	exp exporter,
	formView *consoleFormView,
	logger *zap.Logger,
) *app {
	a := &app{
		session:      sess,
		manager:      manager,
		synchronizer: synchronizer,
		exporter:     exp,
		formView:     formView,
		logger:       logger,
	}

	// Every successful submit triggers exactly one history refresh.
	manager.OnSubmitSuccess(func(ctx context.Context) {
		synchronizer.Refresh(ctx, sess.MonitorID())
	})

	a.commands = map[string]handler{
		"login": {
			usage:       "login <monitor-id> <password>",
			description: "authenticate with the election backend",
			run:         a.handleLogin,
		},
		"checkin": {
			usage:        "checkin",
			description:  "report presence at your station",
			requireLogin: true,
			run:          a.handleCheckIn,
		},
		"history": {
			usage:        "history",
			description:  "refresh and show your submission history",
			requireLogin: true,
			run:          a.handleHistory,
		},
		"edit": {
			usage:        "edit <n>",
			description:  "edit the n-th pending submission from the history list",
			requireLogin: true,
			run:          a.handleEdit,
		},
		"cancel": {
			usage:        "cancel",
			description:  "abandon the current edit",
			requireLogin: true,
			run:          a.handleCancel,
		},
		"set": {
			usage:        "set <field> <value>",
			description:  "set a vote field (registered-voters, nullified-votes, invalid-votes, presidential-votes, parliamentary-votes, local-gov-votes)",
			requireLogin: true,
			run:          a.handleSet,
		},
		"attach": {
			usage:        "attach <race> <path>",
			description:  "attach a tally-sheet photo (presidential, parliamentary, local-gov)",
			requireLogin: true,
			run:          a.handleAttach,
		},
		"status": {
			usage:        "status",
			description:  "show the current draft and submit state",
			requireLogin: true,
			run:          a.handleStatus,
		},
		"submit": {
			usage:        "submit",
			description:  "submit or update the results",
			requireLogin: true,
			run:          a.handleSubmit,
		},
		"export": {
			usage:        "export",
			description:  "export your submission history to an Excel workbook",
			requireLogin: true,
			run:          a.handleExport,
		},
		"help": {
			usage:       "help",
			description: "show available commands",
			run:         a.handleHelp,
		},
		"quit": {
			usage:       "quit",
			description: "exit",
			run: func(ctx context.Context, args []string) error {
				a.quit = true
				return nil
			},
		},
	}
	a.order = []string{
		"login", "checkin", "history", "edit", "cancel",
		"set", "attach", "status", "submit", "export", "help", "quit",
	}

	return a
}

// run is the interactive loop. Every failure is converted to a
// user-visible message here; nothing propagates out of a command.
func (a *app) run(in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "TallySentry election monitor client. Type 'help' for commands.")

	scanner := bufio.NewScanner(in)
	ctx := context.Background()

	for !a.quit {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, ok := a.commands[fields[0]]
		if !ok {
			a.formView.NotifyError(fmt.Sprintf("Unknown command %q. Type 'help'.", fields[0]))
			continue
		}
		if cmd.requireLogin && !a.session.Authenticated() {
			a.formView.NotifyError("Please log in first.")
			continue
		}

		if err := cmd.run(ctx, fields[1:]); err != nil {
			a.logger.Debug("Command failed", zap.String("command", fields[0]), zap.Error(err))
			a.formView.NotifyError(err.Error())
		}
	}

	return scanner.Err()
}

func (a *app) handleLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s", a.commands["login"].usage)
	}

	msg, err := a.session.Login(ctx, args[0], args[1])
	if err != nil {
		a.formView.NotifyError(backend.UserMessage(err, "An error occurred during login. Please try again."))
		return nil
	}
	a.formView.Notify(msg)
	return nil
}

func (a *app) handleCheckIn(ctx context.Context, args []string) error {
	msg, err := a.session.CheckIn(ctx)
	if err != nil {
		a.formView.NotifyError(backend.UserMessage(err, "An error occurred during check-in. Please try again."))
		return nil
	}
	a.formView.Notify(msg)
	return nil
}

func (a *app) handleHistory(ctx context.Context, args []string) error {
	a.synchronizer.Refresh(ctx, a.session.MonitorID())
	return nil
}

func (a *app) handleEdit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", a.commands["edit"].usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("usage: %s", a.commands["edit"].usage)
	}

	entries := a.synchronizer.Entries()
	if n < 1 || n > len(entries) {
		return fmt.Errorf("no history entry %d; run 'history' first", n)
	}
	entry := entries[n-1]
	if !entry.Editable {
		return errors.New("that submission has been verified and can no longer be edited")
	}

	return a.manager.BeginEdit(ctx, entry.Record)
}

func (a *app) handleCancel(ctx context.Context, args []string) error {
	if err := a.manager.CancelEdit(ctx); err != nil {
		return errors.New("not currently editing a submission")
	}
	a.formView.Notify("Edit cancelled.")
	return nil
}

func (a *app) handleSet(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: %s", a.commands["set"].usage)
	}
	return a.manager.SetField(submission.Field(args[0]), strings.Join(args[1:], " "))
}

func (a *app) handleAttach(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s", a.commands["attach"].usage)
	}
	return a.manager.AttachEvidence(submission.Race(args[0]), args[1])
}

func (a *app) handleStatus(ctx context.Context, args []string) error {
	a.formView.renderStatus(a.manager.Draft())
	return nil
}

func (a *app) handleSubmit(ctx context.Context, args []string) error {
	msg, err := a.manager.Submit(ctx)
	if err != nil {
		switch {
		case errors.Is(err, submission.ErrDraftIncomplete):
			return errors.New("the form is incomplete; all three vote tallies and all three photos are required")
		case errors.Is(err, submission.ErrSubmitInFlight):
			return errors.New("a submission is already in progress")
		default:
			a.formView.NotifyError(backend.UserMessage(err, "An error occurred during submission. Please try again."))
			return nil
		}
	}
	a.formView.Notify(msg)
	return nil
}

func (a *app) handleExport(ctx context.Context, args []string) error {
	entries := a.synchronizer.Entries()
	records := make([]backend.SubmissionRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, entry.Record)
	}

	path, err := a.exporter.Write(a.session.MonitorID(), records)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	a.formView.Notify(fmt.Sprintf("History exported to %s", path))
	return nil
}

func (a *app) handleHelp(ctx context.Context, args []string) error {
	for _, name := range a.order {
		cmd := a.commands[name]
		a.formView.Notify(fmt.Sprintf("%-28s %s", cmd.usage, cmd.description))
	}
	return nil
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oshokin/game-launcher/internal/prefs"
	"github.com/oshokin/game-launcher/internal/state"
)

var errStoreRequired = errors.New("tui requires a snapshot store")

// Options configure the terminal UI.
type Options struct {
	// Store is the snapshot source.
	Store *state.Store
	// Trigger issues a manual advance.
	Trigger func()
	// Prefs selects the theme and layout.
	Prefs prefs.Prefs
	// Input and Output override the terminal; nil uses stdin and stdout.
	Input  io.Reader
	Output io.Writer
}

// Run shows the UI until the user quits or ctx is canceled.
// A canceled context and an interrupt are normal exits.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil {
		return errStoreRequired
	}

	model := NewModel(opts.Store.Snapshot(), opts.Trigger, ThemeByName(opts.Prefs.Theme), opts.Prefs.ShowQueue)

	programOptions := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		programOptions = append(programOptions, tea.WithInput(opts.Input))
	}

	if opts.Output != nil {
		programOptions = append(programOptions, tea.WithOutput(opts.Output))
	} else {
		programOptions = append(programOptions, tea.WithAltScreen())
	}

	program := tea.NewProgram(model, programOptions...)

	pumpCtx, stopPump := context.WithCancel(ctx)
	pumpDone := make(chan struct{})

	go func() {
		defer close(pumpDone)

		pump(pumpCtx, opts.Store, program)
	}()

	_, err := program.Run()

	stopPump()
	<-pumpDone

	switch {
	case err == nil:
		return nil
	case errors.Is(err, tea.ErrProgramPanic):
		return fmt.Errorf("run terminal ui: %w", err)
	case errors.Is(err, tea.ErrProgramKilled), errors.Is(err, tea.ErrInterrupted):
		return nil
	default:
		return fmt.Errorf("run terminal ui: %w", err)
	}
}

// pump forwards store changes to the program until ctx is done.
func pump(ctx context.Context, store *state.Store, program *tea.Program) {
	changes, unsubscribe := store.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			program.Send(SnapshotMsg(store.Snapshot()))
		}
	}
}

// Package headless drives the setup sequence without a terminal UI. Snapshot
// changes are written to the log and every line read from the input issues a
// manual trigger.
package headless

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/oshokin/game-launcher/internal/domain/setup"
	"github.com/oshokin/game-launcher/internal/logger"
	"github.com/oshokin/game-launcher/internal/metrics"
	"github.com/oshokin/game-launcher/internal/state"
)

var errStoreRequired = errors.New("headless mode requires a snapshot store")

// Options configure the headless adapter.
type Options struct {
	// Store is the snapshot source.
	Store *state.Store
	// Trigger issues a manual advance.
	Trigger func()
	// Input provides newline separated triggers; nil disables manual triggers.
	Input io.Reader
}

// Run logs snapshot changes until ctx is canceled.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil {
		return errStoreRequired
	}

	ctx = logger.WithName(ctx, "headless")

	if opts.Input != nil && opts.Trigger != nil {
		// The reader goroutine ends with the input; stdin cannot be interrupted.
		go readTriggers(ctx, opts.Input, opts.Trigger)
	}

	changes, unsubscribe := opts.Store.Subscribe()
	defer unsubscribe()

	var last setup.Snapshot

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			snapshot := opts.Store.Snapshot()
			report(ctx, last, snapshot)
			last = snapshot
		}
	}
}

// readTriggers issues one trigger per input line.
func readTriggers(ctx context.Context, input io.Reader, trigger func()) {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		metrics.IncManualTrigger("stdin")
		trigger()
	}

	if err := scanner.Err(); err != nil {
		logger.WarnKV(ctx, "Unable to read triggers", "error", err)
	}
}

// report logs what changed between two snapshots.
func report(ctx context.Context, previous, current setup.Snapshot) {
	switch {
	case current.Phase == setup.PhaseFailed && previous.Phase != setup.PhaseFailed:
		logger.ErrorKV(ctx, current.Status,
			"action", current.FailedAction.String(),
			"reason", current.FailureReason,
			"next", current.NextLabel)
	case current.Hidden && !previous.Hidden:
		logger.InfoKV(ctx, "Game launched, waiting for it to close", "title", current.Title)
	case current.Status != previous.Status || current.Phase != previous.Phase:
		logger.InfoKV(ctx, current.Status,
			"phase", string(current.Phase),
			"action", current.Current.String(),
			"next", current.NextLabel)
	case current.Progress != previous.Progress:
		logger.DebugKV(ctx, "Progress",
			"current", current.Progress.Current,
			"total", current.Progress.Total)
	}
}

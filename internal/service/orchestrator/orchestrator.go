package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/game-launcher/internal/config"
	"github.com/oshokin/game-launcher/internal/domain/setup"
	"github.com/oshokin/game-launcher/internal/logger"
	"github.com/oshokin/game-launcher/internal/metrics"
)

// Downloader fetches packages asynchronously and reports through the event sink.
type Downloader interface {
	Fetch(ctx context.Context, req setup.FetchRequest)
}

// Launcher resolves the engine release and starts the game asynchronously.
type Launcher interface {
	ResolveEngineVersion(ctx context.Context) (string, error)
	EnsureHandoffConfig(ctx context.Context) error
	Start(ctx context.Context, engineVersion string)
}

// Observer receives a snapshot after every visible state change.
// Implementations must return quickly; they run on the control goroutine.
type Observer interface {
	Observe(snapshot setup.Snapshot)
}

// Status lines shown by the presentation adapters.
const (
	statusReady          = "Ready."
	statusDownloadDone   = "Download finished."
	statusLaunched       = "The game is running."
	statusDownloadingFmt = "Downloading: %s"
	statusFailedFmt      = "Failed to download %s: %s"
	statusLaunchFailFmt  = "Failed to launch: %s"
)

var (
	// ErrSessionClosed is returned by OnEvent when the launched game exits.
	// It ends the session normally.
	ErrSessionClosed = errors.New("game session closed")

	errGameConfigRequired = errors.New("game configuration is required")
	errDownloaderRequired = errors.New("downloader is required")
	errLauncherRequired   = errors.New("launcher is required")
)

// LaunchError reports that the game could not be started. It ends the session.
type LaunchError struct {
	Reason string
}

// Error implements error.
func (e *LaunchError) Error() string {
	return "launch game: " + e.Reason
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithObserver registers a presentation observer.
func WithObserver(observer Observer) Option {
	return func(o *Orchestrator) error {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}

		return nil
	}
}

// WithQueue replaces the default action sequence.
func WithQueue(kinds ...setup.ActionKind) Option {
	return func(o *Orchestrator) error {
		queue, err := setup.NewQueue(kinds...)
		if err != nil {
			return fmt.Errorf("build action queue: %w", err)
		}

		o.queue = queue

		return nil
	}
}

// Orchestrator owns the action queue and its state machine.
// It is not safe for concurrent use; drive it through Run.
type Orchestrator struct {
	// game is the bundled configuration with the policy flags and package ids.
	game *config.Game
	// downloader performs package transfers.
	downloader Downloader
	// launcher resolves the engine and starts the game.
	launcher Launcher
	// observers receive snapshots after visible changes.
	observers []Observer

	// queue holds the pending actions.
	queue *setup.Queue
	// current is the action in flight; zero when nothing runs.
	current setup.ActionKind
	// target is the package id of the action in flight.
	target string
	// phase is the externally visible state.
	phase setup.Phase
	// status is the one-line status text.
	status string
	// progress is the latest progress of the action in flight.
	progress setup.Progress
	// failedAction and failureReason describe the last failure.
	failedAction  setup.ActionKind
	failureReason string
	// hidden is set once the game has been launched.
	hidden bool
}

// New builds an orchestrator with the fixed setup sequence.
func New(game *config.Game, downloader Downloader, launcher Launcher, opts ...Option) (*Orchestrator, error) {
	switch {
	case game == nil:
		return nil, errGameConfigRequired
	case downloader == nil:
		return nil, errDownloaderRequired
	case launcher == nil:
		return nil, errLauncherRequired
	}

	queue, err := setup.NewQueue(setup.DefaultSequence()...)
	if err != nil {
		return nil, fmt.Errorf("build action queue: %w", err)
	}

	o := &Orchestrator{
		game:       game,
		downloader: downloader,
		launcher:   launcher,
		queue:      queue,
		phase:      setup.PhaseReady,
		status:     statusReady,
	}

	for _, opt := range opts {
		if err = opt(o); err != nil {
			return nil, err
		}
	}

	if o.queue.Len() == 0 {
		o.phase = setup.PhaseIdle
	}

	return o, nil
}

// Initialize publishes the initial state and starts the sequence when
// auto-download is enabled.
func (o *Orchestrator) Initialize(ctx context.Context) {
	logger.InfoKV(ctx, "Setup sequence initialized",
		"actions", o.queue.Len(),
		"auto_download", o.game.AutoDownload,
		"auto_start", o.game.AutoStart)

	if o.game.AutoDownload {
		o.Advance(ctx)
		return
	}

	o.publish()
}

// PeekNext returns the action the next manual trigger would run.
func (o *Orchestrator) PeekNext() (setup.ActionKind, bool) {
	return o.queue.Peek()
}

// Running reports whether an action is in flight.
func (o *Orchestrator) Running() bool {
	return o.current != 0
}

// Current returns the action in flight.
func (o *Orchestrator) Current() (setup.ActionKind, bool) {
	return o.current, o.current != 0
}

// Pending returns a copy of the queued actions.
func (o *Orchestrator) Pending() []setup.ActionKind {
	return o.queue.Items()
}

// Snapshot returns the current view of the orchestrator.
func (o *Orchestrator) Snapshot() setup.Snapshot {
	snapshot := setup.Snapshot{
		Title:         o.game.Title,
		Phase:         o.phase,
		Current:       o.current,
		Pending:       o.queue.Items(),
		Status:        o.status,
		Progress:      o.progress,
		FailedAction:  o.failedAction,
		FailureReason: o.failureReason,
		Hidden:        o.hidden,
	}

	if next, ok := o.queue.Peek(); ok {
		snapshot.NextLabel = next.Label()
	}

	return snapshot
}

// Advance runs the next actions. It does nothing while an action is in flight.
// Synchronous actions are consumed in a loop until an asynchronous action is
// dispatched, the sequence halts for a manual trigger, or the queue is empty.
func (o *Orchestrator) Advance(ctx context.Context) {
	if o.Running() {
		logger.Debug(ctx, "Advance ignored, an action is in flight")
		return
	}

	for {
		kind, ok := o.queue.Pop()
		if !ok {
			o.becomeIdle(ctx)
			return
		}

		o.begin(ctx, kind)

		if !o.dispatch(ctx, kind) {
			return
		}
	}
}

// OnEvent applies an event reported by a service. It returns ErrSessionClosed
// when the game exits and a *LaunchError when it could not be started.
func (o *Orchestrator) OnEvent(ctx context.Context, ev setup.Event) error {
	switch e := ev.(type) {
	case setup.Started:
		if !o.acceptsTransferEvent(ctx, ev) {
			return nil
		}

		o.status = fmt.Sprintf(statusDownloadingFmt, e.Name)
		o.publish()
	case setup.Progress:
		if !o.acceptsTransferEvent(ctx, ev) {
			return nil
		}

		o.progress = e
		o.publish()
	case setup.Finished:
		if !o.acceptsTransferEvent(ctx, ev) {
			return nil
		}

		logger.InfoKV(ctx, "Action finished", "action", o.current.String(), "package", e.Name)

		o.complete(statusDownloadDone)
		o.Advance(ctx)
	case setup.Failed:
		if !o.acceptsTransferEvent(ctx, ev) {
			return nil
		}

		name := e.Name
		if name == "" {
			name = o.target
		}

		o.fail(ctx, o.current, name, e.Reason)
	case setup.Closed:
		logger.InfoKV(ctx, "Game closed", "exit_code", e.ExitCode)

		return fmt.Errorf("%w: exit code %d", ErrSessionClosed, e.ExitCode)
	case setup.LaunchFailed:
		logger.ErrorKV(ctx, "Game launch failed", "reason", e.Reason)

		o.status = fmt.Sprintf(statusLaunchFailFmt, e.Reason)
		o.hidden = false
		o.publish()

		return &LaunchError{Reason: e.Reason}
	default:
		logger.WarnKV(ctx, "Unknown event ignored", "event", setup.Describe(ev))
	}

	return nil
}

// begin marks kind as the action in flight.
func (o *Orchestrator) begin(ctx context.Context, kind setup.ActionKind) {
	logger.InfoKV(ctx, "Action", "action", kind.String(), "pending", o.queue.Len())

	metrics.IncActionDispatched(kind.String())
	metrics.SetPendingActions(o.queue.Len())

	o.current = kind
	o.target = ""
	o.phase = setup.PhaseRunning
	o.progress = setup.Progress{}
	o.failedAction = 0
	o.failureReason = ""
}

// dispatch runs one action and reports whether Advance should keep consuming the queue.
func (o *Orchestrator) dispatch(ctx context.Context, kind setup.ActionKind) bool {
	switch kind {
	case setup.ActionSelfUpdate:
		logger.Debug(ctx, "Self-update is performed by the self-update command, skipping")
		o.complete(statusReady)

		return true
	case setup.ActionDownloadGame:
		o.fetch(ctx, o.game.GamePackage, setup.PackageKindGame)
		return false
	case setup.ActionDownloadLobby:
		o.fetch(ctx, o.game.LobbyPackage, setup.PackageKindGame)
		return false
	case setup.ActionDownloadEngine:
		version, err := o.launcher.ResolveEngineVersion(ctx)
		if err != nil {
			o.fail(ctx, kind, setup.PackageKindEngine, err.Error())
			return false
		}

		o.fetch(ctx, version, setup.PackageKindEngine)

		return false
	case setup.ActionDownloadExtra:
		logger.Debug(ctx, "No extra content is configured, skipping")
		o.complete(statusReady)

		next, ok := o.queue.Peek()
		if ok && next == setup.ActionStart && !o.game.AutoStart {
			logger.Info(ctx, "Waiting for a manual trigger to launch the game")
			o.publish()

			return false
		}

		return true
	case setup.ActionStart:
		return o.start(ctx)
	default:
		logger.WarnKV(ctx, "Unknown action skipped", "action", kind.String())
		o.complete(statusReady)

		return true
	}
}

// fetch hands a package transfer to the downloader and publishes the running state.
func (o *Orchestrator) fetch(ctx context.Context, id, kind string) {
	o.target = id
	o.status = fmt.Sprintf(statusDownloadingFmt, id)

	o.downloader.Fetch(ctx, setup.FetchRequest{ID: id, Kind: kind})
	o.publish()
}

// start prepares the handoff config and launches the game.
func (o *Orchestrator) start(ctx context.Context) bool {
	if err := o.launcher.EnsureHandoffConfig(ctx); err != nil {
		o.fail(ctx, setup.ActionStart, "", err.Error())
		return false
	}

	version, err := o.launcher.ResolveEngineVersion(ctx)
	if err != nil {
		o.fail(ctx, setup.ActionStart, "", err.Error())
		return false
	}

	o.launcher.Start(ctx, version)

	logger.InfoKV(ctx, "Game launched, hiding the launcher", "engine_version", version)

	o.complete(statusLaunched)
	o.hidden = true

	return true
}

// complete clears the action in flight after it ended successfully.
func (o *Orchestrator) complete(status string) {
	o.current = 0
	o.target = ""
	o.phase = setup.PhaseReady
	o.status = status
}

// fail clears the action in flight, puts it back at the head of the queue and
// waits for a manual retry.
func (o *Orchestrator) fail(ctx context.Context, kind setup.ActionKind, name, reason string) {
	logger.ErrorKV(ctx, "Action failed", "action", kind.String(), "package", name, "reason", reason)

	metrics.IncActionFailure(kind.String())

	if err := o.queue.PushFront(kind); err != nil {
		logger.ErrorKV(ctx, "Unable to requeue failed action", "action", kind.String(), "error", err)
	}

	metrics.SetPendingActions(o.queue.Len())

	o.current = 0
	o.target = ""
	o.phase = setup.PhaseFailed
	o.failedAction = kind
	o.failureReason = reason

	if kind == setup.ActionStart {
		o.status = fmt.Sprintf(statusLaunchFailFmt, reason)
	} else {
		o.status = fmt.Sprintf(statusFailedFmt, name, reason)
	}

	o.publish()
}

// becomeIdle publishes the empty-queue state in which the trigger is enabled.
func (o *Orchestrator) becomeIdle(ctx context.Context) {
	logger.Debug(ctx, "Action queue is empty")

	metrics.SetPendingActions(0)

	o.current = 0
	o.target = ""
	o.phase = setup.PhaseIdle
	o.publish()
}

// acceptsTransferEvent filters out transfer events that arrive while nothing is in flight.
func (o *Orchestrator) acceptsTransferEvent(ctx context.Context, ev setup.Event) bool {
	if o.Running() {
		return true
	}

	logger.WarnKV(ctx, "Stale event ignored", "event", setup.Describe(ev))

	return false
}

// publish sends the current snapshot to every observer.
func (o *Orchestrator) publish() {
	if len(o.observers) == 0 {
		return
	}

	snapshot := o.Snapshot()
	for _, observer := range o.observers {
		observer.Observe(snapshot.Clone())
	}
}

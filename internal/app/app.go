package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/oshokin/game-launcher/internal/api/control"
	"github.com/oshokin/game-launcher/internal/config"
	"github.com/oshokin/game-launcher/internal/exitcode"
	"github.com/oshokin/game-launcher/internal/logger"
	"github.com/oshokin/game-launcher/internal/prefs"
	"github.com/oshokin/game-launcher/internal/service/download"
	"github.com/oshokin/game-launcher/internal/service/launch"
	"github.com/oshokin/game-launcher/internal/service/orchestrator"
	"github.com/oshokin/game-launcher/internal/state"
	"github.com/oshokin/game-launcher/internal/ui/headless"
	"github.com/oshokin/game-launcher/internal/ui/tui"
)

// logFileMode is used for the session log file.
const logFileMode os.FileMode = 0o600

var errUnknownLogLevel = errors.New("unknown log level")

// Options are inputs accepted by the launcher entry point.
type Options struct {
	// ConfigPath is the settings YAML file.
	ConfigPath string
	// GameConfigPath is the bundled game JSON file.
	GameConfigPath string
	// PrefsPath is the terminal UI preferences file; empty uses the default.
	PrefsPath string
	// Headless replaces the terminal UI with log output and stdin triggers.
	Headless bool
	// ControlAddress overrides the control API address from settings.
	ControlAddress string
	// LogLevel overrides the log level from settings.
	LogLevel string
	// Input is read for triggers; nil uses stdin.
	Input io.Reader
	// Output receives the terminal UI; nil uses stdout.
	Output io.Writer
}

// session is everything built for one run.
type session struct {
	settings     *config.Settings
	game         *config.Game
	store        *state.Store
	bridge       *orchestrator.Bridge
	downloader   *download.Service
	launcher     *launch.Service
	orchestrator *orchestrator.Orchestrator
}

// Run executes one setup session. Errors carry an exit code for the CLI.
func Run(ctx context.Context, opts *Options) error {
	settings, err := config.LoadSettings(opts.ConfigPath)
	if err != nil {
		return exitcode.Wrap(exitcode.InvalidConfig, fmt.Errorf("load settings: %w", err))
	}

	game, err := config.LoadGame(opts.GameConfigPath)
	if err != nil {
		return exitcode.Wrap(exitcode.InvalidConfig, err)
	}

	level, err := resolveLevel(opts.LogLevel, settings.LogLevel)
	if err != nil {
		return exitcode.Wrap(exitcode.InvalidUsage, err)
	}

	logger.SetLevel(level)

	if !opts.Headless {
		restore, redirectErr := redirectLogs(settings.LogFile, level)
		if redirectErr != nil {
			return exitcode.Wrap(exitcode.RuntimeFailure, redirectErr)
		}

		defer restore()
	}

	ctx = logger.WithKV(logger.WithName(ctx, "launcher"), "session", uuid.NewString())

	logger.InfoKV(ctx, "Starting setup session",
		"title", game.Title,
		"download_folder", settings.DownloadFolder,
		"package_server", settings.PackageServer)

	s, err := newSession(ctx, settings, game)
	if err != nil {
		return exitcode.Wrap(exitcode.RuntimeFailure, err)
	}

	err = s.run(ctx, opts)

	s.downloader.Wait()
	s.launcher.Wait()

	var launchErr *orchestrator.LaunchError

	switch {
	case errors.As(err, &launchErr):
		return exitcode.Wrap(exitcode.LaunchFailure, err)
	case err != nil:
		return exitcode.Wrap(exitcode.RuntimeFailure, err)
	case ctx.Err() != nil:
		logger.Info(ctx, "Setup session interrupted")
		return exitcode.Wrap(exitcode.Interrupted, ctx.Err())
	}

	logger.Info(ctx, "Setup session finished")

	return nil
}

// newSession builds the services of one run. The engine process is bound to
// ctx, so it survives the presentation adapter but not a shutdown signal.
func newSession(ctx context.Context, settings *config.Settings, game *config.Game) (*session, error) {
	s := &session{
		settings: settings,
		game:     game,
		store:    &state.Store{},
		bridge:   orchestrator.NewBridge(orchestrator.DefaultEventBuffer),
	}

	var err error

	s.downloader, err = download.New(settings, s.bridge)
	if err != nil {
		return nil, fmt.Errorf("create download service: %w", err)
	}

	s.launcher, err = launch.New(settings, game, s.bridge, launch.WithLifetime(ctx))
	if err != nil {
		return nil, fmt.Errorf("create launch service: %w", err)
	}

	s.orchestrator, err = orchestrator.New(game, s.downloader, s.launcher, orchestrator.WithObserver(s.store))
	if err != nil {
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}

	return s, nil
}

// run starts the control loop and the adapters. The session ends when the
// control loop returns, or when the adapter is closed before the game runs.
func (s *session) run(ctx context.Context, opts *Options) error {
	controlAddress := s.settings.ControlAddress
	if opts.ControlAddress != "" {
		controlAddress = opts.ControlAddress
	}

	var router http.Handler

	if controlAddress != "" {
		var err error

		router, err = control.NewRouter(control.Options{Store: s.store, Trigger: s.bridge.Trigger})
		if err != nil {
			return fmt.Errorf("create control router: %w", err)
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	sessionCtx, endSession := context.WithCancel(groupCtx)

	defer endSession()

	group.Go(func() error {
		defer endSession()

		return s.orchestrator.Run(sessionCtx, s.bridge)
	})

	if router != nil {
		group.Go(func() error {
			return control.Serve(sessionCtx, controlAddress, router)
		})
	}

	group.Go(func() error {
		err := s.present(sessionCtx, opts)

		// After the launch the adapter is only a dormant window; closing it
		// leaves the session waiting for the game to exit.
		if err == nil && sessionCtx.Err() == nil && s.store.Snapshot().Hidden {
			logger.Info(ctx, "Launcher window closed, waiting for the game to exit")
			return nil
		}

		endSession()

		return err
	})

	return group.Wait()
}

// present runs the selected presentation adapter.
func (s *session) present(ctx context.Context, opts *Options) error {
	input := opts.Input
	if input == nil {
		input = os.Stdin
	}

	if opts.Headless {
		return headless.Run(ctx, headless.Options{
			Store:   s.store,
			Trigger: s.bridge.Trigger,
			Input:   input,
		})
	}

	return tui.Run(ctx, tui.Options{
		Store:   s.store,
		Trigger: s.bridge.Trigger,
		Prefs:   prefs.Load(opts.PrefsPath),
		Input:   opts.Input,
		Output:  opts.Output,
	})
}

// resolveLevel picks the flag level over the settings level.
func resolveLevel(flagLevel, settingsLevel string) (zapcore.Level, error) {
	name := flagLevel
	if name == "" {
		name = settingsLevel
	}

	level, ok := logger.ParseLogLevel(name)
	if !ok {
		return level, fmt.Errorf("%w: %q", errUnknownLogLevel, name)
	}

	return level, nil
}

// redirectLogs sends the global logger to path while the terminal UI owns stdout.
// The session log keeps info records even when a quieter level is configured.
func redirectLogs(path string, level zapcore.Level) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd // Regular folder permissions.
		return nil, fmt.Errorf("create log folder: %w", err)
	}

	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFileMode)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	previous := logger.Logger()
	logger.SetLogger(logger.NewWithOutput(nil, zapcore.AddSync(file), logger.WithLevel(min(level, zapcore.InfoLevel))))

	return func() {
		_ = logger.Logger().Sync()
		logger.SetLogger(previous)
		_ = file.Close()
	}, nil
}

package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2/maybe"
	"github.com/mitchellh/go-ps"

	"github.com/oshokin/game-launcher/internal/config"
	"github.com/oshokin/game-launcher/internal/domain/setup"
	"github.com/oshokin/game-launcher/internal/logger"
)

// WriteDirFlag tells the engine where its content lives.
const WriteDirFlag = "--write-dir"

const (
	// handoffFileMode is used for the copied lobby config.
	handoffFileMode os.FileMode = 0o644

	// processWaitDelay bounds the wait for engine output pipes after the engine is killed.
	processWaitDelay = 5 * time.Second
)

var (
	// ErrEngineVersionNotSet is returned when settings carry no engine release.
	ErrEngineVersionNotSet = errors.New("engine version is not configured")
	// ErrAlreadyRunning is reported when the engine executable is already running.
	ErrAlreadyRunning = errors.New("the game is already running")

	errSettingsMissing = errors.New("settings are not set")
	errGameMissing     = errors.New("game configuration is not set")
	errSinkIsNotSet    = errors.New("event sink is not set")
)

// ProcessLister returns the processes running on this machine.
type ProcessLister func() ([]ps.Process, error)

// Option configures a Service.
type Option func(*Service)

// WithProcessLister replaces the process table used by the already-running guard.
func WithProcessLister(lister ProcessLister) Option {
	return func(s *Service) {
		if lister != nil {
			s.processes = lister
		}
	}
}

// WithLifetime sets the context that bounds the engine process. The engine
// outlives the context passed to Start and is killed only when lifetime ends.
func WithLifetime(lifetime context.Context) Option {
	return func(s *Service) {
		if lifetime != nil {
			s.lifetime = lifetime
		}
	}
}

// Service starts the engine and reports its lifetime as setup events.
type Service struct {
	settings  *config.Settings
	layout    config.Layout
	game      *config.Game
	sink      setup.Sink
	processes ProcessLister
	lifetime  context.Context //nolint:containedctx // Process lifetime, not a request scope.
	wg        sync.WaitGroup
}

// New creates a launch service. game.Path is the handoff source file.
func New(settings *config.Settings, game *config.Game, sink setup.Sink, opts ...Option) (*Service, error) {
	switch {
	case settings == nil:
		return nil, errSettingsMissing
	case game == nil:
		return nil, errGameMissing
	case sink == nil:
		return nil, errSinkIsNotSet
	}

	s := &Service{
		settings:  settings,
		layout:    config.NewLayout(settings),
		game:      game,
		sink:      sink,
		processes: ps.Processes,
		lifetime:  context.Background(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// ResolveEngineVersion returns the engine release the game requires.
func (s *Service) ResolveEngineVersion(context.Context) (string, error) {
	engineVersion := strings.TrimSpace(s.settings.EngineVersion)
	if engineVersion == "" {
		return "", ErrEngineVersionNotSet
	}

	return engineVersion, nil
}

// EnsureHandoffConfig copies the bundled game config into the download folder
// unless a copy is already there. An existing copy is never overwritten.
func (s *Service) EnsureHandoffConfig(ctx context.Context) error {
	destination := s.layout.HandoffPath()

	_, err := os.Stat(destination)
	if err == nil {
		logger.DebugKV(ctx, "Handoff config already present", "path", destination)
		return nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat handoff config: %w", err)
	}

	contents, err := os.ReadFile(filepath.Clean(s.game.Path))
	if err != nil {
		return fmt.Errorf("read game config: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(destination), 0o755); err != nil { //nolint:mnd // Regular folder permissions.
		return fmt.Errorf("create download folder: %w", err)
	}

	if err = maybe.WriteFile(destination, contents, handoffFileMode); err != nil {
		return fmt.Errorf("write handoff config: %w", err)
	}

	logger.InfoKV(ctx, "Handoff config copied", "path", destination)

	return nil
}

// Start runs the engine in the background. It reports Closed with the exit code
// once the engine exits, or LaunchFailed when it cannot be started.
// Canceling ctx does not stop the engine; only the lifetime context does.
func (s *Service) Start(ctx context.Context, engineVersion string) {
	runCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	stopWithLifetime := context.AfterFunc(s.lifetime, stop)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer stopWithLifetime()
		defer stop()

		s.run(runCtx, engineVersion)
	}()
}

// Wait blocks until the started engine has exited.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Command returns the executable and arguments used to start the engine.
func (s *Service) Command(engineVersion string) (string, []string) {
	args := append([]string{WriteDirFlag, s.layout.Root()}, s.settings.EngineArgs...)

	return s.layout.EnginePath(engineVersion), args
}

func (s *Service) run(ctx context.Context, engineVersion string) {
	ctx = logger.WithKV(logger.WithName(ctx, "launch"), "engine_version", engineVersion)

	executable, args := s.Command(engineVersion)

	if err := s.ensureNotRunning(); err != nil {
		s.fail(ctx, err)
		return
	}

	cmd := exec.CommandContext(ctx, executable, args...)
	cmd.Dir = s.layout.Root()
	cmd.WaitDelay = processWaitDelay

	stderrTail := newTailBuffer(defaultTailSize)
	cmd.Stderr = stderrTail

	logger.InfoKV(ctx, "Starting the game", "executable", executable, "args", args)

	if err := cmd.Start(); err != nil {
		s.fail(ctx, fmt.Errorf("start %s: %w", executable, err))
		return
	}

	exitCode := 0

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 1
		}

		logger.WarnKV(ctx, "The game exited with an error",
			"exit_code", exitCode,
			"error", err,
			"stderr", strings.TrimSpace(stderrTail.String()))
	} else {
		logger.Info(ctx, "The game exited")
	}

	s.publish(ctx, setup.Closed{ExitCode: exitCode})
}

// ensureNotRunning refuses to start a second engine instance.
func (s *Service) ensureNotRunning() error {
	processList, err := s.processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	name := s.layout.EngineExecutable()
	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == name {
			return fmt.Errorf("%w: %s (pid %d)", ErrAlreadyRunning, name, process.Pid())
		}
	}

	return nil
}

func (s *Service) fail(ctx context.Context, err error) {
	logger.ErrorKV(ctx, "Unable to launch the game", "error", err)
	s.publish(ctx, setup.LaunchFailed{Reason: err.Error()})
}

func (s *Service) publish(ctx context.Context, ev setup.Event) {
	if err := s.sink.Publish(ctx, ev); err != nil {
		logger.WarnKV(ctx, "Unable to publish launch event", "event", setup.Describe(ev), "error", err)
	}
}

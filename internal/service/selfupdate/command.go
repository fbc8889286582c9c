package selfupdate

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	goupdate "github.com/doitdistributed/go-update"
	"github.com/mitchellh/go-ps"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/game-launcher/internal/config"
	"github.com/oshokin/game-launcher/internal/exitcode"
	"github.com/oshokin/game-launcher/internal/logger"
	"github.com/oshokin/game-launcher/internal/version"
)

// markerLifetime is the period after which a stale update marker is ignored.
const markerLifetime = 30 * time.Second

var (
	// ErrUpdateRunning is returned when another update holds the marker.
	ErrUpdateRunning = errors.New("the self-update is already running")

	errUpdateFolderNotSet = errors.New("update folder is not configured")
	errBadHTTPStatus      = errors.New("unexpected http status")
	errNoArtifact         = errors.New("no artifact for platform")
	errEmptyVersion       = errors.New("manifest has no version")
)

// Options are inputs accepted by the self-update entry point.
type Options struct {
	// ConfigPath is the settings YAML file.
	ConfigPath string
	// TargetPath is the binary to replace; empty means the running executable.
	TargetPath string
	// Force applies the release even when the versions match.
	Force bool
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// runner holds the state of a single update.
type runner struct {
	settings   *config.Settings
	client     *http.Client
	target     string
	markerPath string
	force      bool
	manifest   *Manifest
}

// Run checks the update folder and replaces the launcher binary when a newer
// release is published. Errors carry the process exit code: InvalidConfig for
// unusable settings, Interrupted once ctx is done, RuntimeFailure otherwise.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "self-update")

	u, err := newRunner(ctx, opts)
	if err != nil {
		return withExitCode(ctx, err)
	}

	defer u.cleanup(ctx)

	if err = u.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Self-update failed", "error", err)
		return withExitCode(ctx, err)
	}

	return nil
}

// withExitCode attaches the exit code the command line should end with.
func withExitCode(ctx context.Context, err error) error {
	var coded *exitcode.Error

	switch {
	case ctx.Err() != nil:
		return exitcode.Wrap(exitcode.Interrupted, err)
	case errors.As(err, &coded):
		return err
	default:
		return exitcode.Wrap(exitcode.RuntimeFailure, err)
	}
}

// newRunner loads settings and writes the marker to avoid concurrent runs.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	settings, err := config.LoadSettings(opts.ConfigPath)
	if err != nil {
		return nil, exitcode.Wrap(exitcode.InvalidConfig, fmt.Errorf("load settings: %w", err))
	}

	if settings.UpdateFolder == "" {
		return nil, exitcode.Wrap(exitcode.InvalidConfig, errUpdateFolderNotSet)
	}

	target := opts.TargetPath
	if target == "" {
		if target, err = os.Executable(); err != nil {
			return nil, fmt.Errorf("locate launcher executable: %w", err)
		}
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: settings.DownloadTimeout}
	}

	u := &runner{
		settings:   settings,
		client:     client,
		target:     target,
		markerPath: filepath.Join(settings.DownloadFolder, MarkerFilename),
		force:      opts.Force,
	}

	if IsRunningNow(ctx, u.markerPath, filepath.Base(target)) {
		return nil, ErrUpdateRunning
	}

	if err = os.MkdirAll(settings.DownloadFolder, 0o755); err != nil { //nolint:mnd // Regular folder permissions.
		return nil, fmt.Errorf("create download folder: %w", err)
	}

	if err = os.WriteFile(u.markerPath, nil, 0o600); err != nil { //nolint:mnd // Owner-only marker.
		return nil, fmt.Errorf("create update marker: %w", err)
	}

	return u, nil
}

// Run fetches the manifest and applies the platform artifact when needed.
func (u *runner) Run(ctx context.Context) error {
	logger.Info(ctx, "Downloading the release manifest")

	if err := u.fetchManifest(ctx); err != nil {
		return fmt.Errorf("download release manifest: %w", err)
	}

	if !u.updateNeeded(ctx) {
		return nil
	}

	artifact, ok := u.manifest.Artifacts[Platform()]
	if !ok {
		return fmt.Errorf("%w: %s", errNoArtifact, Platform())
	}

	checksum, err := base64.StdEncoding.DecodeString(artifact.Checksum)
	if err != nil {
		return fmt.Errorf("decode checksum of %s: %w", artifact.File, err)
	}

	logger.InfoKV(ctx, "Downloading the release", "file", artifact.File, "version", u.manifest.Version)

	contents, err := u.download(ctx, artifact.File)
	if err != nil {
		return fmt.Errorf("download %s: %w", artifact.File, err)
	}

	logger.Info(ctx, "Stopping other launcher instances")

	if err = terminateProcessByName(filepath.Base(u.target)); err != nil {
		return fmt.Errorf("stop launcher instances: %w", err)
	}

	if err = u.apply(ctx, contents, checksum); err != nil {
		return fmt.Errorf("apply release: %w", err)
	}

	logger.InfoKV(ctx, "Launcher updated", "from", version.Short(), "to", u.manifest.Version)

	return nil
}

// updateNeeded compares the running version with the manifest.
func (u *runner) updateNeeded(ctx context.Context) bool {
	if u.force {
		logger.InfoKV(ctx, "Forced update", "remote", u.manifest.Version)
		return true
	}

	if u.manifest.Version == version.Short() {
		logger.InfoKV(ctx, "The launcher is up to date", "version", u.manifest.Version)
		return false
	}

	logger.InfoKV(ctx, "Version mismatch detected", "local", version.Short(), "remote", u.manifest.Version)

	return true
}

// fetchManifest downloads and parses the release manifest.
func (u *runner) fetchManifest(ctx context.Context) error {
	contents, err := u.download(ctx, ManifestFilename)
	if err != nil {
		return err
	}

	var manifest Manifest
	if err = yaml.Unmarshal(contents, &manifest); err != nil {
		return fmt.Errorf("unmarshal manifest: %w", err)
	}

	if manifest.Version == "" {
		return errEmptyVersion
	}

	u.manifest = &manifest

	return nil
}

// download fetches a file from the update folder.
func (u *runner) download(ctx context.Context, fileName string) ([]byte, error) {
	updateURL, err := url.Parse(u.settings.UpdateFolder)
	if err != nil {
		return nil, err
	}

	// Use path.Join to normalize duplicate slashes when composing the URL path.
	updateURL.Path = path.Join(updateURL.Path, fileName)
	finalURL := updateURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", version.UserAgent())

	response, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", finalURL, response.Status, errBadHTTPStatus)
	}

	return io.ReadAll(response.Body)
}

// apply replaces the target binary; go-update verifies the checksum first.
func (u *runner) apply(ctx context.Context, contents, checksum []byte) error {
	if _, err := os.Stat(u.target); errors.Is(err, os.ErrNotExist) {
		if err = os.WriteFile(u.target, nil, DefaultFileMode); err != nil {
			return err
		}
	}

	logger.DebugKV(ctx, "Applying update", "target", u.target)

	err := goupdate.Apply(bytes.NewReader(contents), goupdate.Options{
		TargetPath: u.target,
		TargetMode: DefaultFileMode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	})
	if err != nil {
		if rollbackErr := goupdate.RollbackError(err); rollbackErr != nil {
			logger.ErrorKV(ctx, "Unable to roll back a failed update", "error", rollbackErr)
		}

		return err
	}

	return nil
}

// cleanup removes the running marker.
func (u *runner) cleanup(ctx context.Context) {
	if _, err := os.Stat(u.markerPath); err == nil {
		_ = os.Remove(u.markerPath)
	}

	logger.Info(ctx, "The self-update has finished")
}

// IsRunningNow checks the marker and recovers from a stale one by stopping
// leftover processes named processName.
func IsRunningNow(ctx context.Context, markerPath, processName string) bool {
	fileInfo, err := os.Stat(markerPath)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	if err != nil {
		logger.WarnKV(ctx, "Unable to read update marker", "error", err)
		return false
	}

	if time.Since(fileInfo.ModTime()) <= markerLifetime {
		return true
	}

	logger.Info(ctx, "The update marker is too old, attempting cleanup")

	if err = terminateProcessByName(processName); err != nil {
		return true
	}

	return os.Remove(markerPath) != nil
}

// terminateProcessByName kills processes with the provided executable name, except this one.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID || process.Executable() != processName {
			continue
		}

		runningProcess, findErr := os.FindProcess(process.Pid())
		if findErr != nil {
			return findErr
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

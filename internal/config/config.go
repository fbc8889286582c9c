package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds the machine-local launcher settings.
type Settings struct {
	// DownloadFolder is the root directory for packages, engines and the handoff config.
	DownloadFolder string `yaml:"download_folder"`
	// PackageServer is the base URL packages are fetched from.
	PackageServer string `yaml:"package_server"`
	// UpdateFolder is the URL where self-update artifacts are hosted.
	UpdateFolder string `yaml:"update_folder,omitempty"`
	// EngineVersion is the engine release the game requires.
	EngineVersion string `yaml:"engine_version"`
	// EngineExecutable is the engine binary name inside an engine folder.
	EngineExecutable string `yaml:"engine_executable,omitempty"`
	// EngineArgs are extra arguments passed to the engine on launch.
	EngineArgs []string `yaml:"engine_args,omitempty"`
	// HandoffFilename is the config file name the lobby reads from the download folder.
	HandoffFilename string `yaml:"handoff_filename,omitempty"`
	// Timeout is the duration for short network operations.
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// DownloadTimeout bounds a single package transfer.
	DownloadTimeout time.Duration `yaml:"download_timeout,omitempty"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level,omitempty"`
	// LogFile receives logs while the terminal UI owns stdout.
	LogFile string `yaml:"log_file,omitempty"`
	// ControlAddress enables the HTTP control API when set.
	ControlAddress string `yaml:"control_address,omitempty"`
}

const (
	// DefaultSettingsFilename is the default filename for launcher settings.
	DefaultSettingsFilename = "launcher-settings.yaml"

	// DefaultEngineExecutable is the engine binary name without platform extension.
	DefaultEngineExecutable = "spring"

	// DefaultHandoffFilename is the file the lobby expects next to the downloaded content.
	DefaultHandoffFilename = "lobby-config.json"

	// DefaultLogFilename is the log file used while the terminal UI is running.
	DefaultLogFilename = "game-launcher.log"

	// DefaultTimeout is the default duration for short network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultDownloadTimeout is the default upper bound for one package transfer.
	DefaultDownloadTimeout = 30 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errSettingsIsNotSet is returned when nil settings are provided.
	errSettingsIsNotSet = errors.New("settings are not set")
	// errDownloadFolderRequired is returned when the download folder is missing.
	errDownloadFolderRequired = errors.New("download folder must be provided")
	// errPackageServerRequired is returned when the package server URL is missing.
	errPackageServerRequired = errors.New("package server must be provided")
)

// LoadSettings reads settings from the provided path and validates essential fields.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		path = DefaultSettingsFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(contents, &settings); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := ValidateSettings(&settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// SaveSettings writes settings to the provided path.
func SaveSettings(path string, settings *Settings) error {
	if settings == nil {
		return errSettingsIsNotSet
	}

	if path == "" {
		path = DefaultSettingsFilename
	}

	if err := ValidateSettings(settings); err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// ValidateSettings checks required fields and fills in defaults.
func ValidateSettings(settings *Settings) error {
	if settings == nil {
		return errSettingsIsNotSet
	}

	settings.DownloadFolder = strings.TrimSpace(settings.DownloadFolder)
	if settings.DownloadFolder == "" {
		return errDownloadFolderRequired
	}

	if settings.PackageServer == "" {
		return errPackageServerRequired
	}

	if _, err := url.ParseRequestURI(settings.PackageServer); err != nil {
		return fmt.Errorf("invalid package server URI: %w", err)
	}

	if settings.EngineExecutable == "" {
		settings.EngineExecutable = DefaultEngineExecutable
	}

	if settings.HandoffFilename == "" {
		settings.HandoffFilename = DefaultHandoffFilename
	}

	if filepath.Base(settings.HandoffFilename) != settings.HandoffFilename {
		return fmt.Errorf("handoff filename %q must not contain directories", settings.HandoffFilename)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.DownloadTimeout <= 0 {
		settings.DownloadTimeout = DefaultDownloadTimeout
	}

	if settings.LogFile == "" {
		settings.LogFile = filepath.Join(settings.DownloadFolder, DefaultLogFilename)
	}

	if settings.UpdateFolder == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(settings.UpdateFolder); err != nil {
		return fmt.Errorf("invalid update folder URI: %w", err)
	}

	return nil
}

// Package prefs handles launcher user preferences.
// Preferences are stored in ~/.config/game-launcher/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds terminal UI preferences.
type Prefs struct {
	// Theme selects the colour palette.
	Theme string `toml:"theme"`
	// ShowQueue lists pending actions under the status line.
	ShowQueue bool `toml:"show_queue"`
}

const (
	defaultPrefsPath = "~/.config/game-launcher/prefs.toml"
	// DefaultTheme is used when no theme is configured.
	DefaultTheme = "Default"
)

var errEmptyPath = errors.New("path is empty")

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns the preferences used when nothing is stored.
func Defaults() Prefs {
	return Prefs{Theme: DefaultTheme, ShowQueue: true}
}

// Load reads preferences from path, falling back to defaults when the file is
// missing or unreadable.
func Load(path string) Prefs {
	prefs := Defaults()

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}

	contents, err := os.ReadFile(filepath.Clean(resolved))
	if err != nil {
		return prefs
	}

	if err = toml.Unmarshal(contents, &prefs); err != nil {
		return Defaults()
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = DefaultTheme
	}

	return prefs
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil { //nolint:mnd // Regular folder permissions.
		return fmt.Errorf("create prefs dir: %w", err)
	}

	contents, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err = os.WriteFile(resolved, contents, 0o600); err != nil { //nolint:mnd // Owner-only file.
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}

	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errEmptyPath
	}

	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}

		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}

	return filepath.Abs(trimmed)
}

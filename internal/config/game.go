package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultGameFilename is the bundled game configuration shipped next to the launcher.
const DefaultGameFilename = "config.json"

// ErrConfigLoad marks a game configuration that cannot be used; startup must stop.
var ErrConfigLoad = errors.New("game configuration cannot be loaded")

var (
	errBlankGamePackage  = errors.New("game_rapid is blank")
	errBlankLobbyPackage = errors.New("lobby_rapid is blank")
)

// Game is the bundled, read-only game configuration.
type Game struct {
	// AutoDownload starts the setup sequence without waiting for a manual trigger.
	AutoDownload bool `json:"auto_download"`
	// AutoStart launches the game after the downloads without waiting for a manual trigger.
	AutoStart bool `json:"auto_start"`
	// Title is shown by the presentation adapters.
	Title string `json:"game_title"`
	// GamePackage is the package identifier of the game content.
	GamePackage string `json:"game_rapid"`
	// LobbyPackage is the package identifier of the lobby client.
	LobbyPackage string `json:"lobby_rapid"`

	// Path is the file the configuration was loaded from.
	Path string `json:"-"`
}

// gameKeys lists the keys every game configuration must define.
//
//nolint:gochecknoglobals // Read-only lookup table.
var gameKeys = []string{"auto_download", "auto_start", "game_title", "game_rapid", "lobby_rapid"}

// LoadGame reads the bundled game configuration. Every key is mandatory;
// any problem is reported as ErrConfigLoad.
func LoadGame(path string) (*Game, error) {
	if path == "" {
		path = DefaultGameFilename
	}

	path = filepath.Clean(path)

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfigLoad, path, err)
	}

	var raw map[string]json.RawMessage
	if err = json.Unmarshal(contents, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrConfigLoad, path, err)
	}

	if missing := missingKeys(raw); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: missing keys %s", ErrConfigLoad, path, strings.Join(missing, ", "))
	}

	var game Game
	if err = json.Unmarshal(contents, &game); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrConfigLoad, path, err)
	}

	if err = game.validatePackages(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigLoad, path, err)
	}

	game.Path = path

	return &game, nil
}

// validatePackages rejects package identifiers that would only fail later,
// at download time.
func (g *Game) validatePackages() error {
	if strings.TrimSpace(g.GamePackage) == "" {
		return errBlankGamePackage
	}

	if strings.TrimSpace(g.LobbyPackage) == "" {
		return errBlankLobbyPackage
	}

	return nil
}

// missingKeys returns the sorted list of mandatory keys absent from raw or set to null.
func missingKeys(raw map[string]json.RawMessage) []string {
	var missing []string

	for _, key := range gameKeys {
		// An explicit null decodes to the zero value, so it counts as absent.
		if value, ok := raw[key]; !ok || string(value) == "null" {
			missing = append(missing, key)
		}
	}

	sort.Strings(missing)

	return missing
}

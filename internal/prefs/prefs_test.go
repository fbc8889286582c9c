package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.Equal(t, Defaults(), Load(""))
}

func TestLoad_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "game-launcher")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte("theme = \"Mono\"\nshow_queue = false\n"), 0o600))

	require.Equal(t, Prefs{Theme: "Mono", ShowQueue: false}, Load(""))
}

func TestLoad_MalformedFileUsesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = [unterminated"), 0o600))

	require.Equal(t, Defaults(), Load(path))
}

func TestSaveThenLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	want := Prefs{Theme: "Mono", ShowQueue: true}

	require.NoError(t, Save(path, want))
	require.Equal(t, want, Load(path))
}

func TestLoad_EmptyThemeFallsBack(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = \"  \"\n"), 0o600))

	require.Equal(t, DefaultTheme, Load(path).Theme)
}

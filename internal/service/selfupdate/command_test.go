package selfupdate

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/game-launcher/internal/config"
	"github.com/oshokin/game-launcher/internal/exitcode"
	"github.com/oshokin/game-launcher/internal/version"
)

type updateFixture struct {
	settingsPath string
	target       string
	marker       string
	artifactHits *atomic.Int32
}

func newUpdateFixture(t *testing.T, manifestVersion string, artifact []byte, checksumOf []byte) updateFixture {
	t.Helper()

	checksum, err := Checksum(checksumOf)
	require.NoError(t, err)

	manifest := Manifest{
		Version: manifestVersion,
		Artifacts: map[string]Artifact{
			Platform(): {File: "game-launcher-next", Checksum: base64.StdEncoding.EncodeToString(checksum)},
		},
	}

	manifestBytes, err := yaml.Marshal(manifest)
	require.NoError(t, err)

	hits := &atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("/updates/"+ManifestFilename, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(manifestBytes)
	})
	mux.HandleFunc("/updates/game-launcher-next", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write(artifact)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	root := t.TempDir()
	downloadFolder := filepath.Join(root, "content")

	settingsPath := filepath.Join(root, config.DefaultSettingsFilename)
	require.NoError(t, config.SaveSettings(settingsPath, &config.Settings{
		DownloadFolder: downloadFolder,
		PackageServer:  server.URL + "/packages",
		UpdateFolder:   server.URL + "/updates",
	}))

	target := filepath.Join(root, "game-launcher-under-test")
	require.NoError(t, os.WriteFile(target, []byte("old build"), 0o755)) //nolint:gosec // Test binary.

	return updateFixture{
		settingsPath: settingsPath,
		target:       target,
		marker:       filepath.Join(downloadFolder, MarkerFilename),
		artifactHits: hits,
	}
}

func TestRun_AppliesNewerRelease(t *testing.T) {
	t.Parallel()

	fixture := newUpdateFixture(t, version.Short()+"-next", []byte("new build"), []byte("new build"))

	err := Run(context.Background(), &Options{ConfigPath: fixture.settingsPath, TargetPath: fixture.target})
	require.NoError(t, err)

	contents, err := os.ReadFile(fixture.target)
	require.NoError(t, err)
	require.Equal(t, "new build", string(contents))

	_, err = os.Stat(fixture.marker)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_SkipsCurrentVersion(t *testing.T) {
	t.Parallel()

	fixture := newUpdateFixture(t, version.Short(), []byte("new build"), []byte("new build"))

	require.NoError(t, Run(context.Background(), &Options{ConfigPath: fixture.settingsPath, TargetPath: fixture.target}))
	require.Zero(t, fixture.artifactHits.Load())

	contents, err := os.ReadFile(fixture.target)
	require.NoError(t, err)
	require.Equal(t, "old build", string(contents))
}

func TestRun_ForceAppliesSameVersion(t *testing.T) {
	t.Parallel()

	fixture := newUpdateFixture(t, version.Short(), []byte("rebuilt"), []byte("rebuilt"))

	err := Run(context.Background(), &Options{ConfigPath: fixture.settingsPath, TargetPath: fixture.target, Force: true})
	require.NoError(t, err)
	require.Equal(t, int32(1), fixture.artifactHits.Load())
}

func TestRun_ChecksumMismatchKeepsBinary(t *testing.T) {
	t.Parallel()

	fixture := newUpdateFixture(t, version.Short()+"-next", []byte("tampered"), []byte("new build"))

	err := Run(context.Background(), &Options{ConfigPath: fixture.settingsPath, TargetPath: fixture.target})
	require.Error(t, err)

	contents, readErr := os.ReadFile(fixture.target)
	require.NoError(t, readErr)
	require.Equal(t, "old build", string(contents))
}

func TestRun_RefusesWhileMarkerIsFresh(t *testing.T) {
	t.Parallel()

	fixture := newUpdateFixture(t, version.Short()+"-next", []byte("new build"), []byte("new build"))

	require.NoError(t, os.MkdirAll(filepath.Dir(fixture.marker), 0o755))
	require.NoError(t, os.WriteFile(fixture.marker, nil, 0o600))

	err := Run(context.Background(), &Options{ConfigPath: fixture.settingsPath, TargetPath: fixture.target})
	require.ErrorIs(t, err, ErrUpdateRunning)
}

func TestIsRunningNow_RemovesStaleMarker(t *testing.T) {
	t.Parallel()

	marker := filepath.Join(t.TempDir(), MarkerFilename)
	require.NoError(t, os.WriteFile(marker, nil, 0o600))

	stale := time.Now().Add(-2 * markerLifetime)
	require.NoError(t, os.Chtimes(marker, stale, stale))

	require.False(t, IsRunningNow(context.Background(), marker, "no-such-launcher-process"))

	_, err := os.Stat(marker)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_RequiresUpdateFolder(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), config.DefaultSettingsFilename)
	require.NoError(t, config.SaveSettings(settingsPath, &config.Settings{
		DownloadFolder: t.TempDir(),
		PackageServer:  "https://packages.example.com",
	}))

	err := Run(context.Background(), &Options{ConfigPath: settingsPath, TargetPath: filepath.Join(t.TempDir(), "bin")})
	require.ErrorIs(t, err, errUpdateFolderNotSet)
	require.Equal(t, exitcode.InvalidConfig, exitcode.Of(err))
}

func TestRun_ExitCodes(t *testing.T) {
	t.Parallel()

	t.Run("unreadable settings", func(t *testing.T) {
		t.Parallel()

		settingsPath := filepath.Join(t.TempDir(), config.DefaultSettingsFilename)
		require.NoError(t, os.WriteFile(settingsPath, []byte("download_folder: [broken"), 0o600))

		err := Run(context.Background(), &Options{ConfigPath: settingsPath, TargetPath: filepath.Join(t.TempDir(), "bin")})
		require.Equal(t, exitcode.InvalidConfig, exitcode.Of(err))
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		t.Parallel()

		fixture := newUpdateFixture(t, version.Short()+"-next", []byte("tampered"), []byte("new build"))

		err := Run(context.Background(), &Options{ConfigPath: fixture.settingsPath, TargetPath: fixture.target})
		require.Equal(t, exitcode.RuntimeFailure, exitcode.Of(err))
	})

	t.Run("interrupted", func(t *testing.T) {
		t.Parallel()

		fixture := newUpdateFixture(t, version.Short()+"-next", []byte("new build"), []byte("new build"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Run(ctx, &Options{ConfigPath: fixture.settingsPath, TargetPath: fixture.target})
		require.Equal(t, exitcode.Interrupted, exitcode.Of(err))

		contents, readErr := os.ReadFile(fixture.target)
		require.NoError(t, readErr)
		require.Equal(t, "old build", string(contents))
	})
}

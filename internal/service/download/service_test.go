package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/game-launcher/internal/config"
	"github.com/oshokin/game-launcher/internal/domain/setup"
	"github.com/oshokin/game-launcher/internal/version"
)

type recordingSink struct {
	mu     sync.Mutex
	events []setup.Event
}

func (s *recordingSink) Publish(_ context.Context, ev setup.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, ev)

	return nil
}

func (s *recordingSink) Events() []setup.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]setup.Event(nil), s.events...)
}

func newTestService(t *testing.T, handler http.Handler) (*Service, *recordingSink, *config.Settings) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	settings := &config.Settings{
		DownloadFolder: t.TempDir(),
		PackageServer:  server.URL + "/repo",
	}
	require.NoError(t, config.ValidateSettings(settings))

	sink := &recordingSink{}

	service, err := New(settings, sink, WithHTTPClient(server.Client()), WithProgressInterval(time.Millisecond))
	require.NoError(t, err)

	return service, sink, settings
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(nil, &recordingSink{})
	require.ErrorIs(t, err, errSettingsMissing)

	_, err = New(&config.Settings{}, nil)
	require.ErrorIs(t, err, errSinkIsNotSet)
}

func TestFetch_WritesPackage(t *testing.T) {
	t.Parallel()

	var requestedPath, userAgent atomic.Value

	service, sink, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath.Store(r.URL.Path)
		userAgent.Store(r.UserAgent())
		_, _ = w.Write([]byte("package-bytes"))
	}))

	req := setup.FetchRequest{ID: "zk:stable", Kind: setup.PackageKindGame}
	service.Fetch(context.Background(), req)
	service.Wait()

	require.Equal(t, "/repo/game/zk:stable", requestedPath.Load())
	require.Equal(t, version.UserAgent(), userAgent.Load())

	contents, err := os.ReadFile(service.Destination(req))
	require.NoError(t, err)
	require.Equal(t, "package-bytes", string(contents))

	events := sink.Events()
	require.NotEmpty(t, events)
	require.Equal(t, setup.Started{Name: "zk:stable", Type: setup.PackageKindGame}, events[0])
	require.Equal(t, setup.Progress{Current: 13, Total: 13}, events[len(events)-2])
	require.Equal(t, setup.Finished{Name: "zk:stable"}, events[len(events)-1])
}

func TestFetch_ReportsHTTPFailure(t *testing.T) {
	t.Parallel()

	service, sink, _ := newTestService(t, http.NotFoundHandler())

	req := setup.FetchRequest{ID: "zk:stable", Kind: setup.PackageKindGame}
	service.Fetch(context.Background(), req)
	service.Wait()

	events := sink.Events()
	require.Len(t, events, 2)

	failed, ok := events[1].(setup.Failed)
	require.True(t, ok)
	require.Equal(t, "zk:stable", failed.Name)
	require.Contains(t, failed.Reason, "404")

	_, err := os.Stat(service.Destination(req))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetch_SkipsExistingPackage(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	service, sink, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := setup.FetchRequest{ID: "zk-lobby:stable", Kind: setup.PackageKindGame}
	destination := service.Destination(req)
	require.NoError(t, os.MkdirAll(filepath.Dir(destination), 0o755))
	require.NoError(t, os.WriteFile(destination, []byte("cached"), 0o600))

	service.Fetch(context.Background(), req)
	service.Wait()

	require.Zero(t, hits.Load())
	require.Equal(t, []setup.Event{
		setup.Started{Name: "zk-lobby:stable", Type: setup.PackageKindGame},
		setup.Finished{Name: "zk-lobby:stable"},
	}, sink.Events())
}

func TestFetch_EngineIsExecutable(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	service, sink, settings := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("#!/bin/sh\n"))
	}))

	req := setup.FetchRequest{ID: "105.1.1", Kind: setup.PackageKindEngine}
	service.Fetch(context.Background(), req)
	service.Wait()

	destination := config.NewLayout(settings).EnginePath("105.1.1")
	require.Equal(t, destination, service.Destination(req))

	info, err := os.Stat(destination)
	require.NoError(t, err)
	require.NotZero(t, info.Mode().Perm()&0o100)

	events := sink.Events()
	require.Equal(t, setup.Finished{Name: "105.1.1"}, events[len(events)-1])
}

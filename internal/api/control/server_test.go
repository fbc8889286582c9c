package control

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/game-launcher/internal/domain/setup"
	"github.com/oshokin/game-launcher/internal/state"
)

func newTestRouter(t *testing.T, store *state.Store, calls *atomic.Int32, limit int) http.Handler {
	t.Helper()

	router, err := NewRouter(Options{
		Store:         store,
		Trigger:       func() { calls.Add(1) },
		AdvanceLimit:  limit,
		AdvanceWindow: time.Minute,
	})
	require.NoError(t, err)

	return router
}

func TestNewRouter_RequiresStore(t *testing.T) {
	t.Parallel()

	_, err := NewRouter(Options{})
	require.ErrorIs(t, err, errStoreRequired)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	var (
		store state.Store
		calls atomic.Int32
	)

	store.Observe(setup.Snapshot{
		Title:    "Zero-K",
		Phase:    setup.PhaseRunning,
		Current:  setup.ActionDownloadGame,
		Pending:  []setup.ActionKind{setup.ActionDownloadEngine, setup.ActionStart},
		Status:   "Downloading: zk:stable",
		Progress: setup.Progress{Current: 1, Total: 4},
	})

	recorder := httptest.NewRecorder()
	newTestRouter(t, &store, &calls, 10).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var response StatusResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Equal(t, "running", response.Phase)
	require.Equal(t, "download_game", response.Current)
	require.Equal(t, []string{"download_engine", "start"}, response.Pending)
	require.InDelta(t, 0.25, response.ProgressRatio, 1e-9)
	require.False(t, response.TriggerEnabled)
	require.Equal(t, uint64(1), response.Revision)
}

func TestAdvance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		snapshot  setup.Snapshot
		wantCode  int
		wantCalls int32
	}{
		{
			name:      "ready",
			snapshot:  setup.Snapshot{Phase: setup.PhaseReady, NextLabel: setup.LabelDownload},
			wantCode:  http.StatusAccepted,
			wantCalls: 1,
		},
		{
			name:      "failed",
			snapshot:  setup.Snapshot{Phase: setup.PhaseFailed, NextLabel: setup.LabelDownload},
			wantCode:  http.StatusAccepted,
			wantCalls: 1,
		},
		{
			name:     "running",
			snapshot: setup.Snapshot{Phase: setup.PhaseRunning, Current: setup.ActionDownloadGame},
			wantCode: http.StatusConflict,
		},
		{
			name:     "game running",
			snapshot: setup.Snapshot{Phase: setup.PhaseIdle, Hidden: true},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				store state.Store
				calls atomic.Int32
			)

			store.Observe(tt.snapshot)

			recorder := httptest.NewRecorder()
			newTestRouter(t, &store, &calls, 10).ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/advance", nil))

			require.Equal(t, tt.wantCode, recorder.Code)
			require.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestAdvance_RateLimited(t *testing.T) {
	t.Parallel()

	var (
		store state.Store
		calls atomic.Int32
	)

	store.Observe(setup.Snapshot{Phase: setup.PhaseReady})
	router := newTestRouter(t, &store, &calls, 2)

	codes := make([]int, 0, 3)

	for range 3 {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/advance", nil))
		codes = append(codes, recorder.Code)
	}

	require.Equal(t, []int{http.StatusAccepted, http.StatusAccepted, http.StatusTooManyRequests}, codes)
	require.Equal(t, int32(2), calls.Load())
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	var (
		store state.Store
		calls atomic.Int32
	)

	recorder := httptest.NewRecorder()
	newTestRouter(t, &store, &calls, 10).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, strings.Contains(recorder.Body.String(), "game_launcher_pending_actions"))
}

func TestServe_StopsOnCancel(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	address := listener.Addr().String()
	require.NoError(t, listener.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- Serve(ctx, address, http.NotFoundHandler())
	}()

	require.Eventually(t, func() bool {
		conn, dialErr := net.Dial("tcp", address)
		if dialErr != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

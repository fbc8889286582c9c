package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/game-launcher/internal/logger"
	"github.com/oshokin/game-launcher/internal/metrics"
	"github.com/oshokin/game-launcher/internal/state"
)

const (
	// DefaultAdvanceLimit is the number of manual triggers accepted per window.
	DefaultAdvanceLimit = 10
	// DefaultAdvanceWindow is the rate limit window for manual triggers.
	DefaultAdvanceWindow = time.Minute

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

var errStoreRequired = errors.New("control api requires a snapshot store")

// Options configure the control API.
type Options struct {
	// Store is the snapshot source.
	Store *state.Store
	// Trigger issues a manual advance.
	Trigger func()
	// AdvanceLimit and AdvanceWindow bound POST /advance per client address.
	AdvanceLimit  int
	AdvanceWindow time.Duration
}

// errorResponse is the JSON body of a rejected request.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// NewRouter builds the control API routes.
func NewRouter(opts Options) (http.Handler, error) {
	if opts.Store == nil {
		return nil, errStoreRequired
	}

	if opts.AdvanceLimit <= 0 {
		opts.AdvanceLimit = DefaultAdvanceLimit
	}

	if opts.AdvanceWindow <= 0 {
		opts.AdvanceWindow = DefaultAdvanceWindow
	}

	h := &handlers{store: opts.Store, trigger: opts.Trigger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/status", h.status)
	r.Handle("/metrics", promhttp.Handler())

	r.With(advanceRateLimit(opts.AdvanceLimit, opts.AdvanceWindow)).Post("/advance", h.advance)

	return r, nil
}

// advanceRateLimit rejects bursts of manual triggers with 429.
func advanceRateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Error:  "rate_limit_exceeded",
				Detail: "Too many triggers. Please try again later.",
			})
		}),
	)
}

type handlers struct {
	store   *state.Store
	trigger func()
}

func (h *handlers) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newStatusResponse(h.store.Snapshot(), h.store.Revision()))
}

func (h *handlers) advance(w http.ResponseWriter, r *http.Request) {
	snapshot := h.store.Snapshot()

	switch {
	case h.trigger == nil:
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "trigger_unavailable"})
	case snapshot.Hidden:
		writeJSON(w, http.StatusConflict, errorResponse{Error: "game_running"})
	case !snapshot.TriggerEnabled():
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:  "action_in_flight",
			Detail: snapshot.Status,
		})
	default:
		logger.InfoKV(r.Context(), "Manual trigger received over HTTP",
			"remote", r.RemoteAddr,
			"next", snapshot.NextLabel)
		metrics.IncManualTrigger("http")
		h.trigger()
		writeJSON(w, http.StatusAccepted, newStatusResponse(snapshot, h.store.Revision()))
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

// Serve runs the control API on address until ctx is canceled.
func Serve(ctx context.Context, address string, handler http.Handler) error {
	ctx = logger.WithName(ctx, "control")

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- server.Serve(listener)
	}()

	logger.InfoKV(ctx, "Control API listening", "address", listener.Addr().String())

	select {
	case err = <-serveErr:
		return fmt.Errorf("serve control api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown control api: %w", err)
	}

	<-serveErr

	return nil
}

package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/oshokin/game-launcher/internal/config"
	"github.com/oshokin/game-launcher/internal/domain/setup"
	"github.com/oshokin/game-launcher/internal/logger"
	"github.com/oshokin/game-launcher/internal/metrics"
	"github.com/oshokin/game-launcher/internal/version"
)

const (
	// DefaultProgressInterval is the minimum time between two Progress events.
	DefaultProgressInterval = 200 * time.Millisecond

	// packageFileMode is used for content packages.
	packageFileMode os.FileMode = 0o644
	// engineFileMode is used for engine executables.
	engineFileMode os.FileMode = 0o755
	// directoryMode is used for folders created under the download folder.
	directoryMode os.FileMode = 0o755

	resultOK     = "ok"
	resultCached = "cached"
	resultError  = "error"
)

var (
	errBadHTTPStatus   = errors.New("unexpected http status")
	errSinkIsNotSet    = errors.New("event sink is not set")
	errSettingsMissing = errors.New("settings are not set")
)

// Option configures a Service.
type Option func(*Service)

// WithHTTPClient replaces the HTTP client used for transfers.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

// WithProgressInterval sets the minimum time between two Progress events.
func WithProgressInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.progressInterval = interval
		}
	}
}

// Service downloads packages asynchronously, one goroutine per fetch.
type Service struct {
	layout           config.Layout
	sink             setup.Sink
	client           *http.Client
	timeout          time.Duration
	progressInterval time.Duration
	wg               sync.WaitGroup
}

// New creates a download service that reports to sink.
func New(settings *config.Settings, sink setup.Sink, opts ...Option) (*Service, error) {
	if settings == nil {
		return nil, errSettingsMissing
	}

	if sink == nil {
		return nil, errSinkIsNotSet
	}

	s := &Service{
		layout:           config.NewLayout(settings),
		sink:             sink,
		client:           http.DefaultClient,
		timeout:          settings.DownloadTimeout,
		progressInterval: DefaultProgressInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Fetch starts a transfer and returns immediately. The outcome is reported as
// Started, Progress, then exactly one of Finished or Failed.
func (s *Service) Fetch(ctx context.Context, req setup.FetchRequest) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		s.run(ctx, req)
	}()
}

// Wait blocks until every started transfer has reported its outcome.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Destination returns the local file a package is stored in.
func (s *Service) Destination(req setup.FetchRequest) string {
	if req.Kind == setup.PackageKindEngine {
		return s.layout.EnginePath(req.ID)
	}

	return s.layout.PackagePath(req.Kind, req.ID)
}

func (s *Service) run(ctx context.Context, req setup.FetchRequest) {
	ctx = logger.WithKV(logger.WithName(ctx, "download"), "package", req.ID, "kind", req.Kind)
	startedAt := time.Now()

	s.publish(ctx, setup.Started{Name: req.ID, Type: req.Kind})

	result, err := s.transfer(ctx, req)
	if err != nil {
		metrics.ObserveDownload(req.Kind, resultError, time.Since(startedAt))
		logger.ErrorKV(ctx, "Package download failed", "error", err)
		s.publish(ctx, setup.Failed{Name: req.ID, Reason: err.Error()})

		return
	}

	metrics.ObserveDownload(req.Kind, result, time.Since(startedAt))
	logger.InfoKV(ctx, "Package is available", "result", result, "elapsed", time.Since(startedAt))
	s.publish(ctx, setup.Finished{Name: req.ID})
}

func (s *Service) transfer(ctx context.Context, req setup.FetchRequest) (string, error) {
	destination := s.Destination(req)

	if info, err := os.Stat(destination); err == nil && info.Mode().IsRegular() {
		logger.DebugKV(ctx, "Package already downloaded", "path", destination)
		return resultCached, nil
	}

	remoteURL, err := s.layout.PackageURL(req.Kind, req.ID)
	if err != nil {
		return "", fmt.Errorf("build package url: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(destination), directoryMode); err != nil {
		return "", fmt.Errorf("create package folder: %w", err)
	}

	transferCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	httpRequest, err := http.NewRequestWithContext(transferCtx, http.MethodGet, remoteURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpRequest.Header.Set("User-Agent", version.UserAgent())

	response, err := s.client.Do(httpRequest)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", remoteURL, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s, %s: %w", remoteURL, response.Status, errBadHTTPStatus)
	}

	mode := packageFileMode
	if req.Kind == setup.PackageKindEngine {
		mode = engineFileMode
	}

	pending, err := createPackageFile(destination, mode)
	if err != nil {
		return "", fmt.Errorf("create pending file: %w", err)
	}

	defer func() {
		_ = pending.Cleanup()
	}()

	total := max(response.ContentLength, 0)
	reader := &progressReader{
		ctx:     ctx,
		reader:  response.Body,
		total:   total,
		limiter: rate.NewLimiter(rate.Every(s.progressInterval), 1),
		report:  s.publish,
	}

	written, err := io.Copy(pending, reader)

	metrics.AddDownloadBytes(req.Kind, written)

	if err != nil {
		return "", fmt.Errorf("write %s: %w", destination, err)
	}

	if err = pending.Commit(); err != nil {
		return "", fmt.Errorf("replace %s: %w", destination, err)
	}

	if total == 0 {
		total = written
	}

	s.publish(ctx, setup.Progress{Current: written, Total: total})

	return resultOK, nil
}

func (s *Service) publish(ctx context.Context, ev setup.Event) {
	if err := s.sink.Publish(ctx, ev); err != nil {
		logger.WarnKV(ctx, "Unable to publish download event", "event", setup.Describe(ev), "error", err)
	}
}

// progressReader reports throttled progress while the body is copied.
type progressReader struct {
	ctx     context.Context //nolint:containedctx // Scoped to a single transfer.
	reader  io.Reader
	current int64
	total   int64
	limiter *rate.Limiter
	report  func(context.Context, setup.Event)
}

// Read implements io.Reader.
func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.current += int64(n)

	if n > 0 && r.limiter.Allow() {
		r.report(r.ctx, setup.Progress{Current: r.current, Total: r.total})
	}

	return n, err
}

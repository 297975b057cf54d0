package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ppiankov/factcheck/internal/archive"
	"github.com/ppiankov/factcheck/internal/extract"
	"github.com/ppiankov/factcheck/internal/metrics"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/worker"
)

// Checker runs the fact-check pipeline
type Checker interface {
	Run(ctx context.Context, text string) (*model.Run, error)
}

// RunStore finds archived runs by ID
type RunStore interface {
	Get(runID string) (*archive.Entry, error)
}

// Probe reports whether a dependency is reachable
type Probe func(ctx context.Context) bool

// Options configures the HTTP server
type Options struct {
	Addr         string
	MaxBodyBytes int64
	RunTimeout   time.Duration
	RateLimit    float64 // requests/second per client, 0 disables
	RateBurst    int
	Version      string

	Store     RunStore // nil disables run lookup
	Extractor *extract.TextExtractor
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer // nil disables /metrics
	Probes    map[string]Probe    // readiness checks for /readyz
	Logger    *zap.Logger
}

// Server exposes the pipeline over HTTP
type Server struct {
	opts    Options
	checker Checker
	limiter *worker.Limiter
	logger  *zap.Logger
	router  *chi.Mux
	http    *http.Server
}

// New creates a server and registers its routes
func New(checker Checker, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.Extractor == nil {
		opts.Extractor = extract.NewTextExtractor(0)
	}

	s := &Server{
		opts:    opts,
		checker: checker,
		logger:  logger.Named("server"),
	}
	if opts.RateLimit > 0 {
		s.limiter = worker.NewLimiter(opts.RateLimit, opts.RateBurst)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.With(s.rateLimit).Post("/api/fact-check", s.handleFactCheck)
	r.Get("/api/fact-check/{id}", s.handleGetRun)

	s.router = r
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.limiter != nil {
		go s.pruneLimiter(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.opts.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Prune(10 * time.Minute); n > 0 {
				s.logger.Debug("pruned idle rate limiters", zap.Int("removed", n))
			}
		}
	}
}

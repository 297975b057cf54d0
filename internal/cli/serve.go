package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/factcheck/internal/extract"
	"github.com/ppiankov/factcheck/internal/metrics"
	"github.com/ppiankov/factcheck/internal/pipeline"
	"github.com/ppiankov/factcheck/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the fact-check API over HTTP",
	Long: `Serve exposes the pipeline as a JSON API:

  GET  /                     service status
  POST /api/fact-check       {"text": "..."} or {"html": "..."}
  GET  /api/fact-check/{id}  archived results of a previous run
  GET  /healthz, /readyz     liveness and readiness
  GET  /metrics              Prometheus metrics

Example:
  factcheck serve
  factcheck serve --addr :8080 --rate-limit 1`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :5000)")
	serveCmd.Flags().Float64("rate-limit", 0, "requests per second per client, 0 disables (default from config)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.rate_limit", serveCmd.Flags().Lookup("rate-limit"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	p, store, err := pipeline.NewFromConfig(cfg, logger, m)
	if err != nil {
		return err
	}

	probes := make(map[string]server.Probe)
	for name, probe := range p.Probes() {
		probes[name] = probe
	}

	opts := server.Options{
		Addr:         cfg.Server.Addr,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		RunTimeout:   cfg.Server.RunTimeout,
		RateLimit:    cfg.Server.RateLimit,
		RateBurst:    cfg.Server.RateBurst,
		Version:      Version,
		Extractor:    extract.NewTextExtractor(0),
		Metrics:      m,
		Gatherer:     reg,
		Probes:       probes,
		Logger:       logger,
	}
	if store != nil {
		opts.Store = store
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "✓ factcheck v%s serving on %s (LLM %s/%s, archive %s)\n",
		Version, cfg.Server.Addr, cfg.LLM.Provider, cfg.LLM.Model, archiveLabel(cfg.Archive.Enabled, cfg.Archive.Dir))
	logger.Info("server starting",
		zap.String("addr", cfg.Server.Addr),
		zap.Int("concurrency", cfg.Pipeline.Concurrency),
		zap.Float64("rate_limit", cfg.Server.RateLimit))

	return server.New(p, opts).Run(ctx)
}

func archiveLabel(enabled bool, dir string) string {
	if !enabled {
		return "disabled"
	}
	return dir
}

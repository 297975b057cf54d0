package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/factcheck/internal/archive"
	"github.com/ppiankov/factcheck/internal/knowledge"
	"github.com/ppiankov/factcheck/internal/llm"
	"github.com/ppiankov/factcheck/internal/metrics"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/worker"
)

// ErrEmptyInput is returned for blank input text
var ErrEmptyInput = errors.New("input text is empty")

// Stage names used in errors, logs and metrics
const (
	StageExtract    = "extract"
	StageNormalize  = "normalize"
	StageLookup     = "lookup"
	StageSynthesize = "synthesize"
)

// Reasoner is the completion-backed half of the pipeline
type Reasoner interface {
	ExtractClaims(ctx context.Context, text string) ([]model.Claim, error)
	NormalizeForLookup(ctx context.Context, claim model.Claim) (model.Query, error)
	SynthesizeVerdict(ctx context.Context, claim model.Claim, query model.Query, evidence model.Evidence, sourceText string) (*llm.Synthesis, error)
}

// Verifier looks queries up in the knowledge engine.
// Lookup never fails; failures come back as unusable evidence.
type Verifier interface {
	Lookup(ctx context.Context, query model.Query) model.Evidence
}

// Archiver persists completed runs
type Archiver interface {
	Save(run *model.Run) (string, error)
}

// Options tune a Pipeline. The zero value runs sequentially without an archive.
type Options struct {
	Concurrency int // claims processed at once; <= 1 is sequential
	Archive     Archiver
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// Pipeline runs extraction, lookup and verdict synthesis over a text
type Pipeline struct {
	reasoner    Reasoner
	verifier    Verifier
	archive     Archiver
	concurrency int
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// New creates a pipeline from its collaborators
func New(reasoner Reasoner, verifier Verifier, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Pipeline{
		reasoner:    reasoner,
		verifier:    verifier,
		archive:     opts.Archive,
		concurrency: concurrency,
		logger:      logger.Named("pipeline"),
		metrics:     opts.Metrics,
	}
}

// NewFromConfig wires the provider, reasoner, verifier and archive from cfg.
// The returned archive is nil when archiving is disabled.
func NewFromConfig(cfg *model.Config, logger *zap.Logger, m *metrics.Metrics) (*Pipeline, *archive.LayeredArchive, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("create LLM provider: %w", err)
	}

	verifier, err := knowledge.NewVerifier(knowledge.ConfigFromModel(cfg), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create verifier: %w", err)
	}

	opts := Options{
		Concurrency: cfg.Pipeline.Concurrency,
		Logger:      logger,
		Metrics:     m,
	}

	var store *archive.LayeredArchive
	if cfg.Archive.Enabled {
		store = archive.NewLayeredArchive(cfg.Archive.Dir, cfg.Archive.MemoryTTL)
		opts.Archive = store
	}

	reasoner := llm.NewReasoner(provider, logger)
	logger.Debug("pipeline configured",
		zap.Stringer("reasoner", reasoner),
		zap.Int("concurrency", opts.Concurrency),
		zap.Bool("archive", store != nil))

	return New(reasoner, verifier, opts), store, nil
}

type availability interface {
	IsAvailable(ctx context.Context) bool
}

// Probes returns readiness checks for the collaborators that can report
// their availability, keyed by component
func (p *Pipeline) Probes() map[string]func(context.Context) bool {
	probes := make(map[string]func(context.Context) bool, 2)
	if a, ok := p.reasoner.(availability); ok {
		probes["llm"] = a.IsAvailable
	}
	if a, ok := p.verifier.(availability); ok {
		probes["wolframalpha"] = a.IsAvailable
	}
	return probes
}

// ProcessText fact-checks text and returns one result per extracted claim,
// in extraction order
func (p *Pipeline) ProcessText(ctx context.Context, text string) ([]model.FactCheckResult, error) {
	run, err := p.Run(ctx, text)
	if err != nil {
		return nil, err
	}
	return run.Results, nil
}

// Run fact-checks text and returns the run record. On failure the returned
// run carries the error and no results.
func (p *Pipeline) Run(ctx context.Context, text string) (*model.Run, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	run := &model.Run{
		ID:        uuid.NewString(),
		Text:      text,
		StartedAt: time.Now(),
	}
	logger := p.logger.With(zap.String("run_id", run.ID))
	logger.Info("run started", zap.Int("chars", len(text)))

	results, err := p.check(ctx, logger, text)
	run.FinishedAt = time.Now()
	if err != nil {
		run.Status = model.RunFailed
		run.Error = err.Error()
		p.metrics.ObserveRun(run)
		logger.Error("run failed", zap.Error(err), zap.Duration("took", run.FinishedAt.Sub(run.StartedAt)))
		return run, err
	}

	run.Status = model.RunCompleted
	run.Results = results

	if p.archive != nil {
		path, err := p.archive.Save(run)
		if err != nil {
			run.Error = fmt.Sprintf("archive results: %v", err)
			p.metrics.ArchiveFailed()
			logger.Warn("archive failed", zap.Error(err))
		} else {
			run.ArchivePath = path
		}
	}

	p.metrics.ObserveRun(run)
	logger.Info("run completed",
		zap.Int("claims", len(results)),
		zap.String("archive", run.ArchivePath),
		zap.Duration("took", run.FinishedAt.Sub(run.StartedAt)))
	return run, nil
}

func (p *Pipeline) check(ctx context.Context, logger *zap.Logger, text string) ([]model.FactCheckResult, error) {
	start := time.Now()
	claims, err := p.reasoner.ExtractClaims(ctx, text)
	p.metrics.ObserveStage(StageExtract, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}
	logger.Debug("claims extracted", zap.Int("claims", len(claims)))

	if len(claims) == 0 {
		return []model.FactCheckResult{}, nil
	}

	if p.concurrency <= 1 {
		results := make([]model.FactCheckResult, 0, len(claims))
		for i, claim := range claims {
			result, err := p.checkClaim(ctx, logger, i, claim, text)
			if err != nil {
				return nil, err
			}
			results = append(results, result)
		}
		return results, nil
	}

	return worker.Ordered(ctx, p.concurrency, len(claims), func(ctx context.Context, i int) (model.FactCheckResult, error) {
		return p.checkClaim(ctx, logger, i, claims[i], text)
	})
}

// checkClaim normalizes, looks up and judges one claim. Claim numbers in
// errors are 1-based.
func (p *Pipeline) checkClaim(ctx context.Context, logger *zap.Logger, i int, claim model.Claim, text string) (model.FactCheckResult, error) {
	n := i + 1
	logger = logger.With(zap.Int("claim", n))

	start := time.Now()
	query, err := p.reasoner.NormalizeForLookup(ctx, claim)
	p.metrics.ObserveStage(StageNormalize, time.Since(start))
	if err != nil {
		return model.FactCheckResult{}, fmt.Errorf("normalize claim %d: %w", n, err)
	}

	start = time.Now()
	evidence := p.verifier.Lookup(ctx, query)
	p.metrics.ObserveStage(StageLookup, time.Since(start))
	p.metrics.ObserveEvidence(evidence)
	logger.Debug("evidence",
		zap.String("stage", StageLookup),
		zap.String("query", query.String()),
		zap.String("kind", string(evidence.Kind)))

	start = time.Now()
	synthesis, err := p.reasoner.SynthesizeVerdict(ctx, claim, query, evidence, text)
	p.metrics.ObserveStage(StageSynthesize, time.Since(start))
	if err != nil {
		return model.FactCheckResult{}, fmt.Errorf("synthesize verdict for claim %d: %w", n, err)
	}
	logger.Debug("verdict",
		zap.String("stage", StageSynthesize),
		zap.String("verdict", string(synthesis.Verdict)),
		zap.String("path", string(synthesis.Path)))

	return model.FactCheckResult{
		Claim:       claim,
		Query:       query,
		Evidence:    evidence,
		Verdict:     synthesis.Verdict,
		Explanation: synthesis.Explanation,
	}, nil
}

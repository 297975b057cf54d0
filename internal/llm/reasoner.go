package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/factcheck/internal/model"
)

// SynthesisPath records which prompt template produced a verdict
type SynthesisPath string

const (
	PathEvidence    SynthesisPath = "evidence"     // grounded in a usable knowledge result
	PathContextOnly SynthesisPath = "context_only" // evidence unusable, claim + context only
)

// Synthesis is the typed outcome of verdict synthesis
type Synthesis struct {
	Verdict     model.Verdict
	Explanation model.Explanation
	Path        SynthesisPath
	Raw         string // untrimmed provider output, kept for diagnostics
	Recovered   bool   // true when the output could not be decoded
}

// Reasoner turns pipeline intents into prompts and parses the answers
type Reasoner struct {
	provider Provider
	logger   *zap.Logger
}

// NewReasoner wraps a completion provider
func NewReasoner(provider Provider, logger *zap.Logger) *Reasoner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reasoner{
		provider: provider,
		logger:   logger.Named("reasoner"),
	}
}

// IsAvailable reports whether the completion service answers
func (r *Reasoner) IsAvailable(ctx context.Context) bool {
	return r.provider.IsAvailable(ctx)
}

// ExtractClaims asks for the verifiable claims in text. Malformed output is
// recovered; only provider errors are returned.
func (r *Reasoner) ExtractClaims(ctx context.Context, text string) ([]model.Claim, error) {
	resp, err := r.provider.Complete(ctx, CompletionRequest{
		System:   systemPrompt,
		Prompt:   BuildExtractionPrompt(text),
		JSONMode: true,
	})
	if err != nil {
		return nil, err
	}

	claims := parseClaims(resp.Text)
	r.logger.Debug("claims extracted",
		zap.Int("count", len(claims)),
		zap.Int("tokens", resp.TokensUsed))

	return claims, nil
}

// NormalizeForLookup rephrases a claim as a knowledge-engine query
func (r *Reasoner) NormalizeForLookup(ctx context.Context, claim model.Claim) (model.Query, error) {
	resp, err := r.provider.Complete(ctx, CompletionRequest{
		System: systemPrompt,
		Prompt: BuildNormalizationPrompt(claim),
	})
	if err != nil {
		return "", err
	}

	query := cleanQuery(resp.Text)
	if query == "" {
		// An empty query would make the engine answer about nothing
		query = claim.String()
	}

	return model.Query(query), nil
}

// SynthesizeVerdict produces the verdict for one claim. Usable evidence
// selects the grounded prompt, anything else the context-only prompt.
func (r *Reasoner) SynthesizeVerdict(ctx context.Context, claim model.Claim, query model.Query, evidence model.Evidence, sourceText string) (*Synthesis, error) {
	path := PathContextOnly
	prompt := BuildContextOnlyPrompt(claim, query, evidence, sourceText)
	if evidence.Usable() {
		path = PathEvidence
		prompt = BuildEvidencePrompt(claim, query, evidence, sourceText)
	}

	resp, err := r.provider.Complete(ctx, CompletionRequest{
		System:   systemPrompt,
		Prompt:   prompt,
		JSONMode: true,
	})
	if err != nil {
		return nil, err
	}

	verdict, explanation, parseErr := parseVerdict(resp.Text)
	if parseErr != nil {
		r.logger.Warn("verdict response not decodable, defaulting to Inconclusive",
			zap.String("claim", claim.String()),
			zap.Error(parseErr))
	}

	return &Synthesis{
		Verdict:     verdict,
		Explanation: explanation,
		Path:        path,
		Raw:         resp.Text,
		Recovered:   parseErr != nil,
	}, nil
}

// String describes the reasoner for logs
func (r *Reasoner) String() string {
	return fmt.Sprintf("reasoner(%s)", r.provider.Name())
}

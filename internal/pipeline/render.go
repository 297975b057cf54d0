package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/score"
)

// Renderer writes run results for people and machines
type Renderer struct {
	scorer *score.Scorer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{scorer: score.NewScorer()}
}

// RenderJSON writes the results as a 2-space indented JSON array
func (r *Renderer) RenderJSON(w io.Writer, results []model.FactCheckResult) error {
	if results == nil {
		results = []model.FactCheckResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

// RenderJSONFile writes the JSON array to path
func (r *Renderer) RenderJSONFile(results []model.FactCheckResult, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return r.RenderJSON(f, results)
}

// RenderText writes a numbered, human-readable report with a summary footer
func (r *Renderer) RenderText(w io.Writer, run *model.Run) error {
	var b strings.Builder

	if len(run.Results) == 0 {
		b.WriteString("No verifiable claims found.\n")
	}

	for i, res := range run.Results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, res.Claim)
		fmt.Fprintf(&b, "   Verdict:      %s\n", res.Verdict)
		fmt.Fprintf(&b, "   Query:        %s\n", res.Query)
		fmt.Fprintf(&b, "   WolframAlpha: %s\n", oneLine(res.Evidence.String()))
		fmt.Fprintf(&b, "   Explanation:  %s\n\n", res.Explanation)
	}

	summary := r.scorer.Summarize(run.Results)
	if summary.Total > 0 {
		b.WriteString("Summary:")
		for _, v := range model.Verdicts {
			if n := summary.ByVerdict[v]; n > 0 {
				fmt.Fprintf(&b, " %s=%d", v, n)
			}
		}
		fmt.Fprintf(&b, " (evidence %d/%d, confidence %s)\n", summary.UsableEvidence, summary.Total, summary.Confidence)
	}
	if run.ArchivePath != "" {
		fmt.Fprintf(&b, "Archived: %s\n", run.ArchivePath)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Summarize exposes the scorer for callers that render their own output
func (r *Renderer) Summarize(results []model.FactCheckResult) model.Summary {
	return r.scorer.Summarize(results)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package score

import (
	"fmt"

	"github.com/ppiankov/factcheck/internal/model"
)

// Scorer summarizes a run's results and emits diagnostic signals
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Summarize tallies verdicts and evidence quality for a result set
func (s *Scorer) Summarize(results []model.FactCheckResult) model.Summary {
	summary := model.Summary{
		Total:     len(results),
		ByVerdict: make(map[model.Verdict]int, len(model.Verdicts)),
	}
	for _, v := range model.Verdicts {
		summary.ByVerdict[v] = 0
	}

	for _, r := range results {
		summary.ByVerdict[model.ParseVerdict(string(r.Verdict))]++
		switch {
		case r.Evidence.Usable():
			summary.UsableEvidence++
		case r.Evidence.Kind == model.EvidenceServiceError:
			summary.ServiceErrors++
		}
	}

	if summary.Total == 0 {
		summary.Confidence = "none"
		summary.Signals = []model.Signal{{
			Type:        model.SignalNoClaims,
			Severity:    model.SeverityInfo,
			Description: "No verifiable claims extracted",
		}}
		return summary
	}

	summary.EvidenceRatio = float64(summary.UsableEvidence) / float64(summary.Total)
	summary.Signals = append(summary.Signals, s.coverageSignal(summary))

	if summary.ServiceErrors > 0 {
		summary.Signals = append(summary.Signals, model.Signal{
			Type:        model.SignalServiceErrors,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("Knowledge lookup failed for %d of %d claims", summary.ServiceErrors, summary.Total),
			Data: map[string]any{
				"service_errors": summary.ServiceErrors,
			},
		})
	}

	if n := summary.ByVerdict[model.VerdictInconclusive]; n > 0 {
		severity := model.SeverityInfo
		if n*2 > summary.Total {
			severity = model.SeverityWarning
		}
		summary.Signals = append(summary.Signals, model.Signal{
			Type:        model.SignalInconclusive,
			Severity:    severity,
			Description: fmt.Sprintf("%d of %d claims inconclusive", n, summary.Total),
			Data: map[string]any{
				"inconclusive": n,
			},
		})
	}

	summary.Confidence = s.determineConfidence(summary)
	return summary
}

// coverageSignal reports how many verdicts were grounded in usable evidence
func (s *Scorer) coverageSignal(summary model.Summary) model.Signal {
	ratio := summary.EvidenceRatio

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 1.0 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalEvidenceCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("Usable evidence for %d of %d claims (%.2f)", summary.UsableEvidence, summary.Total, ratio),
		Data: map[string]any{
			"claims":          summary.Total,
			"usable_evidence": summary.UsableEvidence,
			"ratio":           ratio,
		},
	}
}

func (s *Scorer) determineConfidence(summary model.Summary) string {
	if summary.ServiceErrors*2 > summary.Total {
		return "low"
	}

	if summary.EvidenceRatio >= 0.8 {
		return "high"
	} else if summary.EvidenceRatio >= 0.5 {
		return "medium"
	} else {
		return "low"
	}
}

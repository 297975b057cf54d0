package score

import (
	"testing"

	"github.com/ppiankov/factcheck/internal/model"
)

func result(verdict model.Verdict, ev model.Evidence) model.FactCheckResult {
	return model.FactCheckResult{
		Claim:       "claim",
		Query:       "query",
		Evidence:    ev,
		Verdict:     verdict,
		Explanation: "because",
	}
}

func TestScorer_Summarize_AllGrounded(t *testing.T) {
	results := []model.FactCheckResult{
		result(model.VerdictTrue, model.UsableEvidence("299792458 m/s")),
		result(model.VerdictFalse, model.UsableEvidence("3.14159")),
		result(model.VerdictApproximatelyTrue, model.UsableEvidence("8849 m")),
	}

	summary := NewScorer().Summarize(results)

	if summary.Total != 3 {
		t.Errorf("Expected total 3, got %d", summary.Total)
	}
	if summary.UsableEvidence != 3 || summary.EvidenceRatio != 1.0 {
		t.Errorf("Expected full evidence coverage, got %d (%.2f)", summary.UsableEvidence, summary.EvidenceRatio)
	}
	if summary.ByVerdict[model.VerdictTrue] != 1 || summary.ByVerdict[model.VerdictFalse] != 1 {
		t.Errorf("Unexpected verdict tally: %v", summary.ByVerdict)
	}
	if summary.ByVerdict[model.VerdictInconclusive] != 0 {
		t.Errorf("Expected zero inconclusive entry to be present, got %v", summary.ByVerdict)
	}
	if summary.Confidence != "high" {
		t.Errorf("Expected high confidence, got %s", summary.Confidence)
	}
	if len(summary.Signals) != 1 || summary.Signals[0].Severity != model.SeverityInfo {
		t.Errorf("Expected a single info coverage signal, got %+v", summary.Signals)
	}
}

func TestScorer_Summarize_ServiceErrors(t *testing.T) {
	results := []model.FactCheckResult{
		result(model.VerdictInconclusive, model.StatusErrorEvidence(500)),
		result(model.VerdictTrue, model.NoPodEvidence()),
		result(model.VerdictInconclusive, model.StatusErrorEvidence(503)),
	}

	summary := NewScorer().Summarize(results)

	if summary.ServiceErrors != 2 {
		t.Errorf("Expected 2 service errors, got %d", summary.ServiceErrors)
	}
	if summary.UsableEvidence != 0 {
		t.Errorf("Expected no usable evidence, got %d", summary.UsableEvidence)
	}
	if summary.Confidence != "low" {
		t.Errorf("Expected low confidence, got %s", summary.Confidence)
	}

	found := map[model.SignalType]model.Severity{}
	for _, sig := range summary.Signals {
		found[sig.Type] = sig.Severity
	}
	if found[model.SignalEvidenceCoverage] != model.SeverityCritical {
		t.Errorf("Expected critical coverage signal, got %v", found)
	}
	if _, ok := found[model.SignalServiceErrors]; !ok {
		t.Error("Expected service error signal")
	}
	if found[model.SignalInconclusive] != model.SeverityWarning {
		t.Errorf("Expected inconclusive warning, got %v", found)
	}
}

func TestScorer_Summarize_NonCanonicalVerdictCounted(t *testing.T) {
	results := []model.FactCheckResult{
		result("unclear", model.UsableEvidence("x")),
	}

	summary := NewScorer().Summarize(results)
	if summary.ByVerdict[model.VerdictInconclusive] != 1 {
		t.Errorf("Expected non-canonical verdict to count as inconclusive, got %v", summary.ByVerdict)
	}
}

func TestScorer_Summarize_Empty(t *testing.T) {
	summary := NewScorer().Summarize(nil)

	if summary.Total != 0 || summary.EvidenceRatio != 0 {
		t.Errorf("Expected empty summary, got %+v", summary)
	}
	if summary.Confidence != "none" {
		t.Errorf("Expected confidence none, got %s", summary.Confidence)
	}
	if len(summary.Signals) != 1 || summary.Signals[0].Type != model.SignalNoClaims {
		t.Errorf("Expected no-claims signal, got %+v", summary.Signals)
	}
}

package model

import (
	"encoding/json"
	"time"
)

// Explanation is the free-text justification of a verdict
type Explanation = string

// FactCheckResult is the unit persisted and returned for each claim
type FactCheckResult struct {
	Claim       Claim       `json:"claim"`
	Query       Query       `json:"wolfram_query"`
	Evidence    Evidence    `json:"wolfram_response"`
	Verdict     Verdict     `json:"verdict"`
	Explanation Explanation `json:"final_answer"`
}

// MarshalJSON writes evidence in its canonical string form
func (e Evidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON classifies a persisted evidence string back into a variant
func (e *Evidence) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*e = ClassifyEvidence(s)
	return nil
}

// RunStatus is the terminal state of a pipeline run
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run describes one pass of the pipeline over an input text
type Run struct {
	ID          string            `json:"id"`
	Text        string            `json:"-"`
	Status      RunStatus         `json:"status"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
	Results     []FactCheckResult `json:"results"`
	ArchivePath string            `json:"archive_path,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// Summary tallies the verdicts of a run
type Summary struct {
	Total          int             `json:"total"`
	ByVerdict      map[Verdict]int `json:"by_verdict"`
	UsableEvidence int             `json:"usable_evidence"`
	ServiceErrors  int             `json:"service_errors"`
	EvidenceRatio  float64         `json:"evidence_ratio"` // usable evidence / total
	Confidence     string          `json:"confidence"`
	Signals        []Signal        `json:"signals,omitempty"`
}

// SignalType names a diagnostic about a run
type SignalType string

const (
	SignalEvidenceCoverage SignalType = "evidence_coverage"
	SignalServiceErrors    SignalType = "service_errors"
	SignalInconclusive     SignalType = "inconclusive"
	SignalNoClaims         SignalType = "no_claims"
)

// Severity grades a signal
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Signal is a diagnostic observation about a run's results
type Signal struct {
	Type        SignalType     `json:"type"`
	Severity    Severity       `json:"severity"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data,omitempty"`
}

package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyEvidence_Sentinels(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind EvidenceKind
	}{
		{"no plaintext", "No plaintext result found.", EvidenceNoPlaintext},
		{"no pod", "No 'Result' pod found in WolframAlpha response.", EvidenceNoPod},
		{"no pod short", "No 'Result' pod found...", EvidenceNoPod},
		{"status error", "Error: WolframAlpha API returned status code 500", EvidenceServiceError},
		{"query error", "Error during WolframAlpha query: context deadline exceeded", EvidenceServiceError},
		{"blank", "   ", EvidenceNoPlaintext},
		{"usable", "299792458 m/s (meters per second)", EvidenceUsable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := ClassifyEvidence(tt.in)
			assert.Equal(t, tt.kind, ev.Kind)
			assert.Equal(t, tt.kind == EvidenceUsable, ev.Usable())
			assert.Equal(t, tt.kind == EvidenceUsable, IsUsableEvidence(tt.in))
		})
	}
}

func TestEvidence_StringForms(t *testing.T) {
	assert.Equal(t, NoPodSentinel, NoPodEvidence().String())
	assert.Equal(t, NoPlaintextSentinel, NoPlaintextEvidence().String())
	assert.Equal(t, "Error: WolframAlpha API returned status code 503", StatusErrorEvidence(503).String())
	assert.Equal(t, "Error during WolframAlpha query: boom", QueryErrorEvidence(errors.New("boom")).String())
	assert.Equal(t, "100 °C", UsableEvidence("  100 °C \n").String())
}

func TestEvidence_StringFormsAreUnusable(t *testing.T) {
	for _, ev := range []Evidence{
		NoPodEvidence(),
		NoPlaintextEvidence(),
		StatusErrorEvidence(500),
		QueryErrorEvidence(errors.New("dial tcp: timeout")),
	} {
		assert.False(t, IsUsableEvidence(ev.String()), ev.String())
	}
}

func TestUsableEvidence_SentinelTextIsUnusable(t *testing.T) {
	ev := UsableEvidence("Mean Error: 0.5 units")
	assert.Equal(t, EvidenceServiceError, ev.Kind)
	assert.False(t, ev.Usable())
	assert.Equal(t, "Mean Error: 0.5 units", ev.String())

	assert.Equal(t, EvidenceNoPlaintext, UsableEvidence("  ").Kind)
}

func TestFactCheckResult_EvidenceRoundTrip(t *testing.T) {
	for _, ev := range []Evidence{
		UsableEvidence("299792458 m/s"),
		UsableEvidence("Mean Error: 0.5 units"),
		UsableEvidence("No plaintext result found. (cached)"),
		NoPodEvidence(),
		NoPlaintextEvidence(),
		StatusErrorEvidence(500),
		QueryErrorEvidence(errors.New("context deadline exceeded")),
	} {
		in := FactCheckResult{Claim: "c", Query: "q", Evidence: ev, Verdict: VerdictTrue, Explanation: "e"}
		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out FactCheckResult
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, in, out, ev.String())
		assert.Equal(t, ev.Usable(), out.Evidence.Usable(), ev.String())
	}
}

func TestFactCheckResult_JSONKeys(t *testing.T) {
	r := FactCheckResult{
		Claim:       "Water boils at 100 degrees Celsius at sea level.",
		Query:       "boiling point of water at 1 atm",
		Evidence:    UsableEvidence("100 °C"),
		Verdict:     VerdictTrue,
		Explanation: "Matches.",
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]string{
		"claim":            "Water boils at 100 degrees Celsius at sea level.",
		"wolfram_query":    "boiling point of water at 1 atm",
		"wolfram_response": "100 °C",
		"verdict":          "True",
		"final_answer":     "Matches.",
	}, raw)
}

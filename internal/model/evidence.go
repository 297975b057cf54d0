package model

import (
	"fmt"
	"strings"
)

// EvidenceKind classifies the outcome of a knowledge lookup
type EvidenceKind string

const (
	EvidenceUsable       EvidenceKind = "usable"        // Plaintext result usable for grounding
	EvidenceNoPod        EvidenceKind = "no_pod"        // Response parsed but carried no Result pod
	EvidenceNoPlaintext  EvidenceKind = "no_plaintext"  // Result pod present without plaintext
	EvidenceServiceError EvidenceKind = "service_error" // Transport, status or decode failure
)

// Sentinel texts used in the string form of unusable evidence.
// These are what gets persisted as wolfram_response.
const (
	NoPodSentinel       = "No 'Result' pod found in WolframAlpha response."
	NoPlaintextSentinel = "No plaintext result found."
	errorPrefix         = "Error:"
	errorDuringPrefix   = "Error during"
	noPodMarker         = "No 'Result' pod found"
)

// Evidence is the knowledge engine result for one query.
// Exactly one of the kinds applies; Text is set for usable evidence and
// Detail carries the failure description for service errors.
type Evidence struct {
	Kind   EvidenceKind
	Text   string
	Detail string
}

// UsableEvidence wraps a plaintext result. Text that is blank or carries a
// failure sentinel is classified as unusable, the same way persisted evidence
// is read back.
func UsableEvidence(text string) Evidence {
	return ClassifyEvidence(text)
}

// NoPodEvidence reports a response without a Result pod
func NoPodEvidence() Evidence {
	return Evidence{Kind: EvidenceNoPod}
}

// NoPlaintextEvidence reports a Result pod without plaintext
func NoPlaintextEvidence() Evidence {
	return Evidence{Kind: EvidenceNoPlaintext}
}

// StatusErrorEvidence reports a non-200 response from the engine
func StatusErrorEvidence(statusCode int) Evidence {
	return Evidence{
		Kind:   EvidenceServiceError,
		Detail: fmt.Sprintf("%s WolframAlpha API returned status code %d", errorPrefix, statusCode),
	}
}

// QueryErrorEvidence reports a transport or decode failure
func QueryErrorEvidence(err error) Evidence {
	return Evidence{
		Kind:   EvidenceServiceError,
		Detail: fmt.Sprintf("%s WolframAlpha query: %v", errorDuringPrefix, err),
	}
}

// Usable reports whether the evidence can ground a verdict
func (e Evidence) Usable() bool {
	return e.Kind == EvidenceUsable && e.Text != ""
}

// String returns the canonical string form: the plaintext for usable
// evidence, a sentinel otherwise.
func (e Evidence) String() string {
	switch e.Kind {
	case EvidenceUsable:
		return e.Text
	case EvidenceNoPod:
		return NoPodSentinel
	case EvidenceNoPlaintext:
		return NoPlaintextSentinel
	case EvidenceServiceError:
		if e.Detail == "" {
			return errorPrefix + " unknown WolframAlpha failure"
		}
		return e.Detail
	default:
		return e.Text
	}
}

// ClassifyEvidence rebuilds the evidence variant from its string form.
// Text containing any failure sentinel is unusable; everything else that
// is non-blank is usable.
func ClassifyEvidence(s string) Evidence {
	trimmed := strings.TrimSpace(s)
	switch {
	case trimmed == "":
		return NoPlaintextEvidence()
	case strings.Contains(trimmed, noPodMarker):
		return NoPodEvidence()
	case strings.Contains(trimmed, NoPlaintextSentinel):
		return NoPlaintextEvidence()
	case strings.HasPrefix(trimmed, errorDuringPrefix), strings.Contains(trimmed, errorPrefix):
		return Evidence{Kind: EvidenceServiceError, Detail: trimmed}
	default:
		return Evidence{Kind: EvidenceUsable, Text: trimmed}
	}
}

// IsUsableEvidence applies the substring rule to a raw evidence string
func IsUsableEvidence(s string) bool {
	return ClassifyEvidence(s).Usable()
}

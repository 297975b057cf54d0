package model

import "strings"

// Verdict is the closed set of fact-check outcomes
type Verdict string

const (
	VerdictTrue               Verdict = "True"
	VerdictFalse              Verdict = "False"
	VerdictApproximatelyTrue  Verdict = "Approximately True"
	VerdictApproximatelyFalse Verdict = "Approximately False"
	VerdictInconclusive       Verdict = "Inconclusive"
)

// Verdicts lists every canonical verdict. The "Approximately" forms come
// first so substring matching never mistakes them for plain True/False.
var Verdicts = []Verdict{
	VerdictApproximatelyTrue,
	VerdictApproximatelyFalse,
	VerdictTrue,
	VerdictFalse,
	VerdictInconclusive,
}

// Valid reports whether v is one of the canonical verdicts
func (v Verdict) Valid() bool {
	for _, known := range Verdicts {
		if v == known {
			return true
		}
	}
	return false
}

// negatedVerdicts maps negated phrasings to the verdict they assert.
// Longer phrases come first so "is not true" is consumed before "not true".
var negatedVerdicts = []struct {
	phrase  string
	verdict Verdict
}{
	{"is not true", VerdictFalse},
	{"isn't true", VerdictFalse},
	{"not true", VerdictFalse},
	{"untrue", VerdictFalse},
	{"is not false", VerdictTrue},
	{"isn't false", VerdictTrue},
	{"not false", VerdictTrue},
}

// ParseVerdict coerces free text into a canonical verdict.
// Negated phrasings count as the opposite verdict; text that is
// unrecognised or asserts conflicting verdicts becomes Inconclusive.
func ParseVerdict(s string) Verdict {
	cleaned := strings.Trim(strings.TrimSpace(s), "\"'`.* ")
	if cleaned == "" {
		return VerdictInconclusive
	}

	for _, v := range Verdicts {
		if strings.EqualFold(cleaned, string(v)) {
			return v
		}
	}

	lower := strings.ToLower(cleaned)
	var found []Verdict
	for _, n := range negatedVerdicts {
		if strings.Contains(lower, n.phrase) {
			found = append(found, n.verdict)
			lower = strings.ReplaceAll(lower, n.phrase, " ")
		}
	}
	for _, v := range Verdicts {
		if strings.Contains(lower, strings.ToLower(string(v))) {
			found = append(found, v)
			break
		}
	}

	if len(found) == 0 {
		return VerdictInconclusive
	}
	for _, v := range found[1:] {
		if v != found[0] {
			return VerdictInconclusive
		}
	}
	return found[0]
}

package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
)

// MissingExplanation is used when the verdict JSON has no explanation
const MissingExplanation = "No explanation provided."

var (
	wholeFence    = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*\\s*(.*?)\\s*```$")
	embeddedFence = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*\\s*(.*?)\\s*```")
)

// stripCodeFence removes markdown code-fence decoration if present
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := wholeFence.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := embeddedFence.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// decodeJSON unmarshals raw as-is first and only strips fence decoration
// when that fails, so fenced snippets inside a valid object survive
func decodeJSON(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}
	return json.Unmarshal([]byte(stripCodeFence(trimmed)), v)
}

// parseClaims decodes an extraction response. A JSON list or an object with
// a "claims" list is used as-is; null, an empty object or a null "claims"
// field mean no claims; anything else becomes a single claim holding the raw
// response.
func parseClaims(raw string) []model.Claim {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []model.Claim{}
	}

	var decoded any
	if err := decodeJSON(trimmed, &decoded); err != nil {
		return []model.Claim{model.Claim(trimmed)}
	}

	switch v := decoded.(type) {
	case nil:
		return []model.Claim{}
	case []any:
		return claimsFromList(v)
	case map[string]any:
		if len(v) == 0 {
			return []model.Claim{}
		}
		claims, present := v["claims"]
		if list, ok := claims.([]any); ok {
			return claimsFromList(list)
		}
		if present && claims == nil {
			return []model.Claim{}
		}
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []model.Claim{model.Claim(s)}
		}
		return []model.Claim{}
	}

	return []model.Claim{model.Claim(trimmed)}
}

func claimsFromList(items []any) []model.Claim {
	claims := make([]model.Claim, 0, len(items))
	for _, item := range items {
		if text := claimText(item); text != "" {
			claims = append(claims, model.Claim(text))
		}
	}
	return claims
}

func claimText(item any) string {
	switch v := item.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		for _, key := range []string{"claim", "text"} {
			if s, ok := v[key].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Sprint(item)
	}
	return string(data)
}

var errNotObject = errors.New("expected a JSON object")

// parseVerdict decodes a synthesis response. It never fails: undecodable
// output becomes Inconclusive with a diagnostic explanation.
func parseVerdict(raw string) (model.Verdict, string, error) {
	var decoded any
	err := decodeJSON(raw, &decoded)
	if err == nil {
		obj, ok := decoded.(map[string]any)
		if !ok {
			err = errNotObject
		} else {
			return verdictFromObject(obj), explanationFromObject(obj), nil
		}
	}

	diagnostic := fmt.Sprintf("Failed to parse verdict response (%v). Raw output: %s", err, strings.TrimSpace(raw))
	return model.VerdictInconclusive, diagnostic, err
}

func verdictFromObject(obj map[string]any) model.Verdict {
	switch v := obj["verdict"].(type) {
	case nil:
		return model.VerdictInconclusive
	case string:
		return model.ParseVerdict(v)
	default:
		return model.ParseVerdict(fmt.Sprint(v))
	}
}

func explanationFromObject(obj map[string]any) string {
	switch v := obj["explanation"].(type) {
	case nil:
		return MissingExplanation
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
		return MissingExplanation
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return MissingExplanation
		}
		return string(data)
	}
}

// cleanQuery trims a normalization response down to the bare query
func cleanQuery(raw string) string {
	q := strings.TrimSpace(stripCodeFence(raw))
	if len(q) >= 2 {
		first, last := q[0], q[len(q)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			q = strings.TrimSpace(q[1 : len(q)-1])
		}
	}
	return q
}

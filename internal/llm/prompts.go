package llm

import (
	"fmt"

	"github.com/ppiankov/factcheck/internal/model"
)

const systemPrompt = "You are a meticulous fact-checking assistant. You work only with computationally verifiable facts and follow output format instructions exactly."

// BuildExtractionPrompt asks for verifiable claims as {"claims": [...]}
func BuildExtractionPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following text and identify specific factual claims that can be
computationally verified using WolframAlpha. Focus on claims involving:
- Mathematical calculations
- Scientific and physical constants
- Physical measurements and unit conversions
- Geographic information
- Historical dates
- Population statistics
- Nutrition facts and health metrics
- Other factual, quantitative information

Extract ONLY claims that can be verified through computation or factual lookup.
Ignore opinions, predictions and subjective statements. Each claim must be a
self-contained sentence that keeps the numbers and units from the text.
If there are no such claims, return an empty list.

Return only a JSON object of the form {"claims": ["claim one", "claim two"]}.

Text to analyze:
%s`, text)
}

// BuildNormalizationPrompt asks for a concise WolframAlpha query
func BuildNormalizationPrompt(claim model.Claim) string {
	return fmt.Sprintf(`Convert the following factual claim into a concise, clear query optimized for WolframAlpha.
The query should ask for the quantity or fact being claimed, not restate the claim,
and be directly solvable by WolframAlpha's computational engine. WolframAlpha is
strongest at arithmetic, physical and scientific constants, unit conversions,
nutrition data, health metrics, dates and geographic or demographic data.
Return only the optimized query as plain text, without any explanations, quotes or formatting.

Claim: %s`, claim)
}

// BuildEvidencePrompt grounds the verdict in a usable WolframAlpha result
func BuildEvidencePrompt(claim model.Claim, query model.Query, evidence model.Evidence, sourceText string) string {
	return fmt.Sprintf(`You are verifying a factual claim using data retrieved from WolframAlpha.

Original text (for context):
%s

Claim: %s
Query sent to WolframAlpha: %s
WolframAlpha result: %s

Base your verdict on the WolframAlpha result. Use the original text only to resolve
what the claim means (units, qualifiers such as "about" or "exactly"). Allow reasonable
rounding: a value within a few percent of the result is "Approximately True", a value
that is close but misses a stated precision is "Approximately False".

Respond with a JSON object with exactly two keys:
{"verdict": "True" | "False" | "Approximately True" | "Approximately False" | "Inconclusive",
 "explanation": "a short explanation that cites the WolframAlpha result"}`,
		sourceText, claim, query, evidence.String())
}

// BuildContextOnlyPrompt is used when the knowledge engine gave nothing usable
func BuildContextOnlyPrompt(claim model.Claim, query model.Query, evidence model.Evidence, sourceText string) string {
	return fmt.Sprintf(`You are verifying a factual claim. WolframAlpha could not provide a usable result
for it (lookup outcome: %s), so reason from the claim, the original text and
well-established knowledge only.

Original text (for context):
%s

Claim: %s
Query that was attempted: %s

Be conservative: if the claim cannot be judged confidently without external data,
answer "Inconclusive". State in the explanation that no WolframAlpha data was available.

Respond with a JSON object with exactly two keys:
{"verdict": "True" | "False" | "Approximately True" | "Approximately False" | "Inconclusive",
 "explanation": "a short explanation of your reasoning"}`,
		evidence.String(), sourceText, claim, query)
}

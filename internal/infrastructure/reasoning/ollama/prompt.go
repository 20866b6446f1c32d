package ollama

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

func buildRelevancePrompt(query string, profile domain.UserProfile, schemeIDs []string) string {
	profileJSON, _ := json.Marshal(profile)
	return fmt.Sprintf(`You score how relevant each government scheme is to a citizen's query.
Return strict JSON: {"scores":[{"scheme_id":"...","score":0-100,"reason":"..."}]}.
Score every scheme id exactly once. Scores are integers from 0 to 100.
No markdown, no extra keys.

Query:
%s

Citizen profile:
%s

Scheme ids:
%s
`, query, profileJSON, strings.Join(schemeIDs, "\n"))
}

func buildIntentPrompt(text, lang string) string {
	const maxSnippet = 2000
	snippet := text
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}

	return fmt.Sprintf(`You extract what a citizen wants from a welfare-scheme assistant.
Return strict JSON with keys:
intent (string, one of find_schemes, check_eligibility, application_status, general_question),
demographics (object of string to string, only facts stated in the message),
language (BCP 47 code of the message language).
No markdown, no extra keys.

Message language hint: %s
Message:
%s
`, lang, snippet)
}

func buildExplanationPrompt(decision domain.EligibilityDecision, lang string) string {
	decisionJSON, _ := json.Marshal(decision)
	return fmt.Sprintf(`Explain this eligibility decision to a citizen in simple words, in language %q.
Mention each criterion that failed or needs more information. Do not invent criteria.
Decision:
%s
`, lang, decisionJSON)
}

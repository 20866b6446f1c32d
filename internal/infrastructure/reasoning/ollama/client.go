package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
	"github.com/yojanasetu/eligibility-engine/internal/infrastructure/resilience"
)

// Client talks to the reasoning collaborator over Ollama's generate API.
// Every call is guarded by the resilience executor: up to three attempts
// with exponential backoff, then the error surfaces as ErrUpstreamUnavailable
// and the caller degrades to its fallback strategy.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model string, executor *resilience.Executor) *Client {
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

// ScoreRelevance asks the model to score each scheme 0-100 for the query.
// Responses are validated strictly; anything malformed or out of range is
// rejected here so the ranker only ever sees trusted scores.
func (c *Client) ScoreRelevance(ctx context.Context, query string, profile domain.UserProfile, schemeIDs []string) ([]domain.RelevanceScore, error) {
	if len(schemeIDs) == 0 {
		return nil, nil
	}

	raw, err := c.generateJSON(ctx, "score_relevance", buildRelevancePrompt(query, profile, schemeIDs))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Scores []domain.RelevanceScore `json:"scores"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse relevance json: %w", err)
	}
	if len(parsed.Scores) == 0 {
		return nil, fmt.Errorf("relevance response carries no scores")
	}

	known := make(map[string]struct{}, len(schemeIDs))
	for _, id := range schemeIDs {
		known[id] = struct{}{}
	}
	for _, score := range parsed.Scores {
		if err := score.Validate(); err != nil {
			return nil, err
		}
		if _, ok := known[score.SchemeID]; !ok {
			return nil, fmt.Errorf("relevance response names unknown scheme %s", score.SchemeID)
		}
	}
	return parsed.Scores, nil
}

// ExtractIntent turns a free-text user query into a structured intent.
func (c *Client) ExtractIntent(ctx context.Context, text, lang string) (*domain.ExtractedIntent, error) {
	raw, err := c.generateJSON(ctx, "extract_intent", buildIntentPrompt(text, lang))
	if err != nil {
		return nil, err
	}

	var intent domain.ExtractedIntent
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &intent); err != nil {
		return nil, fmt.Errorf("parse intent json: %w", err)
	}
	if strings.TrimSpace(intent.Intent) == "" {
		return nil, fmt.Errorf("intent response carries no intent")
	}
	if intent.Language == "" {
		intent.Language = lang
	}
	return &intent, nil
}

// ExplainEligibility renders the structured decision as user-facing prose
// in the requested language.
func (c *Client) ExplainEligibility(ctx context.Context, decision domain.EligibilityDecision, lang string) (string, error) {
	prose, err := c.generateText(ctx, "explain_eligibility", buildExplanationPrompt(decision, lang))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(prose) == "" {
		return "", fmt.Errorf("explanation response is empty")
	}
	return prose, nil
}

func (c *Client) generateJSON(ctx context.Context, operation, prompt string) (string, error) {
	return c.generate(ctx, operation, map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	})
}

func (c *Client) generateText(ctx context.Context, operation, prompt string) (string, error) {
	return c.generate(ctx, operation, map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	})
}

func (c *Client) generate(ctx context.Context, operation string, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", reqBody, &response, operation)
	}
	err := c.executor.Execute(ctx, "reasoning."+operation, call, classifyReasoningError)
	if err != nil {
		return "", wrapUnavailableIfNeeded(operation, err)
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
	"github.com/yojanasetu/eligibility-engine/internal/core/ports"
	"github.com/yojanasetu/eligibility-engine/internal/observability/metrics"
)

// IntentSetter attaches an extracted intent to a conversation context. It is
// an adapter concern rather than a core contract, so it is declared here.
type IntentSetter interface {
	SetIntent(ctx context.Context, contextID string, intent domain.ExtractedIntent) (*domain.ConversationContext, error)
}

type Router struct {
	checker       ports.EligibilityChecker
	discovery     ports.SchemeDiscovery
	ranker        ports.SchemeRanker
	conversations ports.ConversationManager
	intentSetter  IntentSetter
	applications  ports.ApplicationService
	profiles      ports.ProfileStore
	intents       ports.IntentExtractor
	explainer     ports.EligibilityExplainer
	metrics       *metrics.APIMetrics
	logger        *slog.Logger

	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int
}

type RouterOptions struct {
	Checker        ports.EligibilityChecker
	Discovery      ports.SchemeDiscovery
	Ranker         ports.SchemeRanker
	Conversations  ports.ConversationManager
	IntentSetter   IntentSetter
	Applications   ports.ApplicationService
	Profiles       ports.ProfileStore
	Intents        ports.IntentExtractor
	Explainer      ports.EligibilityExplainer
	Metrics        *metrics.APIMetrics
	Logger         *slog.Logger
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
}

func NewRouter(options RouterOptions) *Router {
	return &Router{
		checker:        options.Checker,
		discovery:      options.Discovery,
		ranker:         options.Ranker,
		conversations:  options.Conversations,
		intentSetter:   options.IntentSetter,
		applications:   options.Applications,
		profiles:       options.Profiles,
		intents:        options.Intents,
		explainer:      options.Explainer,
		metrics:        options.Metrics,
		logger:         options.Logger,
		rateLimitRPS:   options.RateLimitRPS,
		rateLimitBurst: options.RateLimitBurst,
		maxInFlight:    options.MaxInFlight,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/eligibility/check", rt.checkEligibility)
	mux.HandleFunc("/v1/schemes/discover", rt.discoverSchemes)
	mux.HandleFunc("/v1/schemes/rank", rt.rankSchemes)
	mux.HandleFunc("/v1/applications", rt.applicationsCollection)
	mux.HandleFunc("/v1/applications/", rt.applicationByID)
	mux.HandleFunc("/v1/conversations", rt.createConversation)
	mux.HandleFunc("/v1/conversations/", rt.conversationByID)
	mux.HandleFunc("/v1/profiles/", rt.profileByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.maxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.maxInFlight, time.Second)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	if rt.metrics != nil {
		handler = metricsMiddleware(handler, rt.metrics)
	}
	return requestIDMiddleware(accessLogMiddleware(handler, rt.logger))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) checkEligibility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		SchemeID string             `json:"scheme_id"`
		Profile  domain.UserProfile `json:"profile"`
		Language string             `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	if strings.TrimSpace(req.SchemeID) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("scheme_id is required"))
		return
	}

	decision, err := rt.checker.CheckEligibility(r.Context(), req.SchemeID, req.Profile)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.ObserveEvaluation("api", string(decision.Outcome))
	}

	response := struct {
		*domain.EligibilityDecision
		Prose string `json:"prose,omitempty"`
	}{EligibilityDecision: decision}

	// Prose rendering is best effort: the deterministic explanation stands
	// on its own when the reasoning service is down.
	if req.Language != "" && rt.explainer != nil {
		if prose, err := rt.explainer.ExplainEligibility(r.Context(), *decision, req.Language); err == nil {
			response.Prose = prose
		}
	}
	writeJSON(w, http.StatusOK, response)
}

func (rt *Router) discoverSchemes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		Query   string             `json:"query"`
		Profile domain.UserProfile `json:"profile"`
		Filter  struct {
			State           string `json:"state"`
			Category        string `json:"category"`
			Entity          string `json:"entity"`
			IncludeInactive bool   `json:"include_inactive"`
		} `json:"filter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}

	ranked, err := rt.discovery.Discover(r.Context(), req.Query, req.Profile, domain.CandidateFilter{
		State:           req.Filter.State,
		Category:        domain.Category(req.Filter.Category),
		Entity:          req.Filter.Entity,
		IncludeInactive: req.Filter.IncludeInactive,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.ObserveDiscovery("api", len(ranked))
	}
	writeJSON(w, http.StatusOK, map[string]any{"schemes": ranked})
}

func (rt *Router) rankSchemes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		Candidates []domain.SchemeCandidate `json:"candidates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schemes": rt.ranker.RankSchemes(req.Candidates)})
}

func (rt *Router) applicationsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req domain.SubmitApplicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
			return
		}
		record, err := rt.applications.Submit(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		if rt.metrics != nil {
			rt.metrics.ObserveTransition("api", string(record.Status), "ok")
		}
		writeJSON(w, http.StatusCreated, record)

	case http.MethodGet:
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("user_id query parameter is required"))
			return
		}
		records, err := rt.applications.ListByUser(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"applications": records})

	default:
		writeMethodNotAllowed(w)
	}
}

func (rt *Router) applicationByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/applications/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("application id is required"))
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		record, err := rt.applications.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)

	case action == "status" && r.Method == http.MethodPost:
		var req struct {
			Status      string `json:"status"`
			Notes       string `json:"notes"`
			Explanation string `json:"explanation"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
			return
		}
		record, err := rt.applications.Advance(r.Context(), id, domain.ApplicationStatus(req.Status), req.Notes, req.Explanation)
		if err != nil {
			if rt.metrics != nil {
				rt.metrics.ObserveTransition("api", req.Status, "rejected")
			}
			writeError(w, err)
			return
		}
		if rt.metrics != nil {
			rt.metrics.ObserveTransition("api", string(record.Status), "ok")
		}
		writeJSON(w, http.StatusOK, record)

	default:
		writeMethodNotAllowed(w)
	}
}

func (rt *Router) createConversation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("user_id is required"))
		return
	}

	conv, err := rt.conversations.CreateContext(r.Context(), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (rt *Router) conversationByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/conversations/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("conversation id is required"))
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		conv, err := rt.conversations.ReadContext(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)

	case action == "messages" && r.Method == http.MethodPost:
		var req struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
			return
		}
		conv, err := rt.conversations.AppendMessage(r.Context(), id, domain.ContextMessage{
			Role:    req.Role,
			Content: req.Content,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)

	case action == "intent" && r.Method == http.MethodPost:
		rt.extractIntent(w, r, id)

	default:
		writeMethodNotAllowed(w)
	}
}

// extractIntent runs the reasoning service over free text and attaches the
// result to the conversation, so later discovery calls can reuse it.
func (rt *Router) extractIntent(w http.ResponseWriter, r *http.Request, contextID string) {
	if rt.intents == nil || rt.intentSetter == nil {
		writeJSON(w, http.StatusNotFound, errorBody("intent extraction is not configured"))
		return
	}

	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}

	intent, err := rt.intents.ExtractIntent(r.Context(), req.Text, req.Language)
	if err != nil {
		writeError(w, err)
		return
	}
	conv, err := rt.intentSetter.SetIntent(r.Context(), contextID, *intent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (rt *Router) profileByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/profiles/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, errorBody("profile id is required"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		profile, err := rt.profiles.GetProfile(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)

	case http.MethodPut:
		var profile domain.UserProfile
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
			return
		}
		profile.ID = id
		if err := profile.Validate(); err != nil {
			writeError(w, err)
			return
		}

		current, err := rt.profiles.GetProfile(r.Context(), id)
		if domain.IsKind(err, domain.ErrNotFound) {
			profile.Version = 1
			if err := rt.profiles.CreateProfile(r.Context(), &profile); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, profile)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}

		expected := current.Version
		profile.Version = expected + 1
		if err := rt.profiles.UpdateProfile(r.Context(), &profile, expected); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)

	default:
		writeMethodNotAllowed(w)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

type fakeConversationStore struct {
	mu       sync.Mutex
	contexts map[string]domain.ConversationContext
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{contexts: make(map[string]domain.ConversationContext)}
}

func (s *fakeConversationStore) CreateContext(_ context.Context, conv *domain.ConversationContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[conv.ID] = *conv
	return nil
}

func (s *fakeConversationStore) GetContext(_ context.Context, contextID string) (*domain.ConversationContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.contexts[contextID]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get context", fmt.Errorf("context %s", contextID))
	}
	out := conv
	return &out, nil
}

func (s *fakeConversationStore) UpdateContext(_ context.Context, conv *domain.ConversationContext, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.contexts[conv.ID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update context", fmt.Errorf("context %s", conv.ID))
	}
	if stored.Version != expectedVersion {
		return domain.WrapError(domain.ErrConcurrentModification, "update context",
			fmt.Errorf("expected version %d, have %d", expectedVersion, stored.Version))
	}
	s.contexts[conv.ID] = *conv
	return nil
}

type fakeApplicationStore struct {
	mu      sync.Mutex
	records map[string]domain.ApplicationRecord
}

func newFakeApplicationStore() *fakeApplicationStore {
	return &fakeApplicationStore{records: make(map[string]domain.ApplicationRecord)}
}

func (s *fakeApplicationStore) CreateApplication(_ context.Context, record *domain.ApplicationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = *record
	return nil
}

func (s *fakeApplicationStore) GetApplication(_ context.Context, applicationID string) (*domain.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[applicationID]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get application", fmt.Errorf("application %s", applicationID))
	}
	out := record
	return &out, nil
}

func (s *fakeApplicationStore) UpdateApplication(_ context.Context, record *domain.ApplicationRecord, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.records[record.ID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update application", fmt.Errorf("application %s", record.ID))
	}
	if stored.Version != expectedVersion {
		return domain.WrapError(domain.ErrConcurrentModification, "update application",
			fmt.Errorf("expected version %d, have %d", expectedVersion, stored.Version))
	}
	s.records[record.ID] = *record
	return nil
}

func (s *fakeApplicationStore) ListApplicationsByUser(_ context.Context, userID string) ([]domain.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ApplicationRecord, 0)
	for _, record := range s.records {
		if record.UserID == userID {
			out = append(out, record)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	schemes map[string]domain.Scheme
}

func newFakeCatalog(schemes ...domain.Scheme) *fakeCatalog {
	byID := make(map[string]domain.Scheme, len(schemes))
	for _, scheme := range schemes {
		byID[scheme.ID] = scheme
	}
	return &fakeCatalog{schemes: byID}
}

func (c *fakeCatalog) GetScheme(_ context.Context, schemeID string) (*domain.Scheme, error) {
	scheme, ok := c.schemes[schemeID]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get scheme", fmt.Errorf("scheme %s", schemeID))
	}
	out := scheme
	return &out, nil
}

func (c *fakeCatalog) ListCandidates(_ context.Context, filter domain.CandidateFilter) ([]domain.Scheme, error) {
	out := make([]domain.Scheme, 0, len(c.schemes))
	for _, scheme := range c.schemes {
		if !scheme.Active && !filter.IncludeInactive {
			continue
		}
		out = append(out, scheme)
	}
	return out, nil
}

func (c *fakeCatalog) UpsertScheme(_ context.Context, scheme domain.Scheme) error {
	c.schemes[scheme.ID] = scheme
	return nil
}

type fakeScorer struct {
	scores []domain.RelevanceScore
	err    error
	calls  int
}

func (s *fakeScorer) ScoreRelevance(_ context.Context, _ string, _ domain.UserProfile, _ []string) ([]domain.RelevanceScore, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.scores, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.ApplicationEvent
	err    error
}

func (p *fakePublisher) PublishApplicationEvent(_ context.Context, event domain.ApplicationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

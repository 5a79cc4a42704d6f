package subscription

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscription
}

// NewMemoryStore returns an in-memory Store for tests and local development.
func NewMemoryStore() Store {
	return &memoryStore{subs: make(map[uuid.UUID]*Subscription)}
}

func (s *memoryStore) Get(ctx context.Context, tenantID uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[tenantID]
	if !ok {
		return nil, ErrNotFound
	}
	return sub.Clone(), nil
}

func (s *memoryStore) GetByProviderSubID(ctx context.Context, providerSubID string) (*Subscription, error) {
	if providerSubID == "" {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		if sub.ProviderSubID == providerSubID {
			return sub.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryStore) Upsert(ctx context.Context, sub *Subscription) error {
	if sub == nil {
		return ErrInvalidRecord
	}
	if sub.TenantID == uuid.Nil {
		return ErrInvalidRecord
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.TenantID] = sub.Clone()
	return nil
}

func (s *memoryStore) ListTrials(ctx context.Context) ([]*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Subscription
	for _, sub := range s.subs {
		if sub.Status == StatusTrial && sub.TrialEndsAt != nil {
			out = append(out, sub.Clone())
		}
	}
	return out, nil
}

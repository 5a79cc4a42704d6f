package usage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type periodKey struct {
	tenantID uuid.UUID
	period   string
}

type memoryStore struct {
	mu   sync.RWMutex
	rows map[periodKey]*Metrics
}

// NewMemoryStore returns an in-memory Store for tests and local development.
func NewMemoryStore() Store {
	return &memoryStore{rows: make(map[periodKey]*Metrics)}
}

func (s *memoryStore) Increment(ctx context.Context, tenantID uuid.UUID, period string, metric Metric, delta int64) error {
	if !metric.Valid() {
		return ErrUnknownMetric
	}
	if delta < 0 {
		return ErrNegativeDelta
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := periodKey{tenantID: tenantID, period: period}
	row, ok := s.rows[key]
	if !ok {
		row = &Metrics{TenantID: tenantID, Period: period}
		s.rows[key] = row
	}

	switch metric {
	case MetricContacts:
		row.ContactsCount += delta
	case MetricMessages:
		row.MessagesCount += delta
	case MetricGroups:
		row.GroupsCount += delta
	case MetricImages:
		row.ImagesCount += delta
	case MetricUsers:
		row.UsersCount += delta
	case MetricAPIRequests:
		row.APIRequests += delta
	}
	return nil
}

func (s *memoryStore) Get(ctx context.Context, tenantID uuid.UUID, period string) (*Metrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[periodKey{tenantID: tenantID, period: period}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *row
	return &cp, nil
}

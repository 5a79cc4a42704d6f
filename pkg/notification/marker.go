package notification

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MarkerStore records which reminder thresholds a tenant has already been
// notified at. The marker makes the sweep idempotent: running it twice in
// the same day cannot double-send, regardless of the trigger's cadence.
type MarkerStore interface {
	// AlreadyNotified reports whether the tenant was notified at the
	// threshold (days remaining) during its current trial.
	AlreadyNotified(ctx context.Context, tenantID uuid.UUID, threshold int) (bool, error)

	// MarkNotified records that the tenant was notified at the threshold.
	MarkNotified(ctx context.Context, tenantID uuid.UUID, threshold int) error

	// ClearTenant removes every marker for the tenant, so reminders fire
	// again when its trial window is reset.
	ClearTenant(ctx context.Context, tenantID uuid.UUID) error
}

type markerKey struct {
	tenantID  uuid.UUID
	threshold int
}

type memoryMarkerStore struct {
	mu      sync.RWMutex
	markers map[markerKey]struct{}
}

// NewMemoryMarkerStore returns an in-memory MarkerStore for tests and
// local development.
func NewMemoryMarkerStore() MarkerStore {
	return &memoryMarkerStore{markers: make(map[markerKey]struct{})}
}

func (s *memoryMarkerStore) AlreadyNotified(ctx context.Context, tenantID uuid.UUID, threshold int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.markers[markerKey{tenantID: tenantID, threshold: threshold}]
	return ok, nil
}

func (s *memoryMarkerStore) MarkNotified(ctx context.Context, tenantID uuid.UUID, threshold int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[markerKey{tenantID: tenantID, threshold: threshold}] = struct{}{}
	return nil
}

func (s *memoryMarkerStore) ClearTenant(ctx context.Context, tenantID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.markers {
		if key.tenantID == tenantID {
			delete(s.markers, key)
		}
	}
	return nil
}

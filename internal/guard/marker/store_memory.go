package marker

import (
	"context"
	"sync"
	"time"

	id "canvass/pkg/domain"
)

// MemoryStore is an in-process marker store for tests and single-instance
// deployments. Expired markers are evicted lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	markers map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		markers: make(map[string]time.Time),
		now:     time.Now,
	}
}

// WithClock replaces the time source. Test hook.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Mark(_ context.Context, questionnaireID id.QuestionnaireID, sessionID string, ttl time.Duration) error {
	if sessionID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[markerKey(questionnaireID, sessionID)] = s.now().Add(ttl)
	return nil
}

func (s *MemoryStore) IsMarked(_ context.Context, questionnaireID id.QuestionnaireID, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	key := markerKey(questionnaireID, sessionID)

	s.mu.RLock()
	expiresAt, ok := s.markers[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if s.now().After(expiresAt) {
		s.mu.Lock()
		delete(s.markers, key)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

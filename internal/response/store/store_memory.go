package store

import (
	"context"
	"sort"
	"sync"

	"canvass/internal/response/models"
	id "canvass/pkg/domain"
	"canvass/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu        sync.RWMutex
	responses map[id.ResponseID]*models.Response
	scopes    map[string]id.ResponseID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		responses: make(map[id.ResponseID]*models.Response),
		scopes:    make(map[string]id.ResponseID),
	}
}

func cloneResponse(r *models.Response) *models.Response {
	return models.RestoreResponse(
		r.ID(), r.QuestionnaireID(), r.Respondent(), r.IpAddress(), r.UserAgent(),
		r.Answers(), r.Metadata(), r.SubmittedAt(),
	)
}

func scopeIndexKey(questionnaireID id.QuestionnaireID, scope string) string {
	return questionnaireID.String() + "|" + scope
}

func (s *MemoryStore) Save(_ context.Context, response *models.Response, dedupScope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.responses[response.ID()]; exists {
		return sentinel.ErrConflict
	}
	if dedupScope != "" {
		key := scopeIndexKey(response.QuestionnaireID(), dedupScope)
		if _, taken := s.scopes[key]; taken {
			return sentinel.ErrConflict
		}
		s.scopes[key] = response.ID()
	}
	s.responses[response.ID()] = cloneResponse(response)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, response *models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.responses[response.ID()]; !exists {
		return sentinel.ErrNotFound
	}
	s.responses[response.ID()] = cloneResponse(response)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, responseID id.ResponseID) (*models.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	response, exists := s.responses[responseID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return cloneResponse(response), nil
}

func (s *MemoryStore) ListByQuestionnaire(_ context.Context, questionnaireID id.QuestionnaireID) ([]*models.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Response, 0)
	for _, response := range s.responses {
		if response.QuestionnaireID() == questionnaireID {
			out = append(out, cloneResponse(response))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt().Equal(out[j].SubmittedAt()) {
			return out[i].ID().String() < out[j].ID().String()
		}
		return out[i].SubmittedAt().Before(out[j].SubmittedAt())
	})
	return out, nil
}

func (s *MemoryStore) CountByQuestionnaire(_ context.Context, questionnaireID id.QuestionnaireID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, response := range s.responses {
		if response.QuestionnaireID() == questionnaireID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) ExistsByIP(_ context.Context, questionnaireID id.QuestionnaireID, ip models.IpAddress) (bool, error) {
	if ip.IsZero() {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, response := range s.responses {
		if response.QuestionnaireID() == questionnaireID && response.IpAddress().Equal(ip) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ExistsByRespondent(_ context.Context, questionnaireID id.QuestionnaireID, respondent models.Respondent) (bool, error) {
	if respondent.IsAnonymous() {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, response := range s.responses {
		if response.QuestionnaireID() == questionnaireID && response.Respondent().Equal(respondent) {
			return true, nil
		}
	}
	return false, nil
}

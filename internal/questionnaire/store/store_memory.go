package store

import (
	"context"
	"sort"
	"sync"

	"canvass/internal/questionnaire/models"
	id "canvass/pkg/domain"
	"canvass/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu             sync.RWMutex
	questionnaires map[id.QuestionnaireID]*models.Questionnaire
	slugs          map[string]id.QuestionnaireID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		questionnaires: make(map[id.QuestionnaireID]*models.Questionnaire),
		slugs:          make(map[string]id.QuestionnaireID),
	}
}

// clone rebuilds the aggregate from its own state so callers never share
// memory with the store.
func clone(q *models.Questionnaire) *models.Questionnaire {
	return models.Restore(
		q.ID(), q.OwnerID(), q.Title(), q.Slug(), q.Description(),
		q.Status(), q.DateRange(), q.Settings(), q.Questions(),
		q.CreatedAt(), q.UpdatedAt(), q.PublishedAt(), q.ClosedAt(),
	)
}

func (s *MemoryStore) Create(_ context.Context, questionnaire *models.Questionnaire) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.questionnaires[questionnaire.ID()]; exists {
		return sentinel.ErrConflict
	}
	if _, taken := s.slugs[questionnaire.Slug().String()]; taken {
		return sentinel.ErrConflict
	}
	s.questionnaires[questionnaire.ID()] = clone(questionnaire)
	s.slugs[questionnaire.Slug().String()] = questionnaire.ID()
	return nil
}

func (s *MemoryStore) Update(_ context.Context, questionnaire *models.Questionnaire) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.questionnaires[questionnaire.ID()]
	if !exists {
		return sentinel.ErrNotFound
	}
	slug := questionnaire.Slug().String()
	if holder, taken := s.slugs[slug]; taken && holder != questionnaire.ID() {
		return sentinel.ErrConflict
	}
	delete(s.slugs, current.Slug().String())
	s.questionnaires[questionnaire.ID()] = clone(questionnaire)
	s.slugs[slug] = questionnaire.ID()
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, questionnaireID id.QuestionnaireID) (*models.Questionnaire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questionnaire, exists := s.questionnaires[questionnaireID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return clone(questionnaire), nil
}

func (s *MemoryStore) FindBySlug(_ context.Context, slug models.Slug) (*models.Questionnaire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questionnaireID, exists := s.slugs[slug.String()]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.questionnaires[questionnaireID]), nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID id.OwnerID, filter ListFilter) ([]*models.Questionnaire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Questionnaire, 0)
	for _, questionnaire := range s.questionnaires {
		if questionnaire.OwnerID() != ownerID {
			continue
		}
		if filter.Status != nil && questionnaire.Status() != *filter.Status {
			continue
		}
		out = append(out, clone(questionnaire))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID().String() < out[j].ID().String()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out, nil
}

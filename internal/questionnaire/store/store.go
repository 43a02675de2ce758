// Package store persists questionnaires. Two implementations: an in-memory
// store for tests and single-process use, and a PostgreSQL store for
// production. Both enforce slug uniqueness and report it as
// sentinel.ErrConflict.
package store

import (
	"context"

	"canvass/internal/questionnaire/models"
	id "canvass/pkg/domain"
)

// ListFilter narrows ListByOwner. Zero value means no filtering.
type ListFilter struct {
	Status *models.Status
}

type Store interface {
	// Create inserts a new questionnaire. Returns sentinel.ErrConflict when
	// the id or slug is already taken.
	Create(ctx context.Context, questionnaire *models.Questionnaire) error

	// Update replaces the stored state. Returns sentinel.ErrNotFound for an
	// unknown id and sentinel.ErrConflict when the new slug collides.
	Update(ctx context.Context, questionnaire *models.Questionnaire) error

	FindByID(ctx context.Context, questionnaireID id.QuestionnaireID) (*models.Questionnaire, error)
	FindBySlug(ctx context.Context, slug models.Slug) (*models.Questionnaire, error)
	ListByOwner(ctx context.Context, ownerID id.OwnerID, filter ListFilter) ([]*models.Questionnaire, error)
}

// Package store persists responses. The dedup scope passed to Save is the
// duplicate-submission backstop: stores enforce uniqueness of
// (questionnaire, scope) for non-empty scopes and report collisions as
// sentinel.ErrConflict.
package store

import (
	"context"

	"canvass/internal/response/models"
	id "canvass/pkg/domain"
)

type Store interface {
	// Save inserts a new response. An empty dedupScope imposes no uniqueness.
	Save(ctx context.Context, response *models.Response, dedupScope string) error

	// Update replaces the stored answers after a correction. Returns
	// sentinel.ErrNotFound for an unknown id.
	Update(ctx context.Context, response *models.Response) error

	FindByID(ctx context.Context, responseID id.ResponseID) (*models.Response, error)
	ListByQuestionnaire(ctx context.Context, questionnaireID id.QuestionnaireID) ([]*models.Response, error)
	CountByQuestionnaire(ctx context.Context, questionnaireID id.QuestionnaireID) (int, error)

	// ExistsByIP and ExistsByRespondent serve the duplicate-submission guards.
	ExistsByIP(ctx context.Context, questionnaireID id.QuestionnaireID, ip models.IpAddress) (bool, error)
	ExistsByRespondent(ctx context.Context, questionnaireID id.QuestionnaireID, respondent models.Respondent) (bool, error)
}

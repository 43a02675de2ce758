package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"canvass/internal/questionnaire/models"
	id "canvass/pkg/domain"
	"canvass/pkg/platform/sentinel"
)

// PostgresStore persists questionnaires in PostgreSQL. Questions and settings
// travel as JSONB; the slug carries a unique index so concurrent creates with
// the same slug fail cleanly instead of racing.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// questionRow is the JSONB shape of one question.
type questionRow struct {
	ID          string         `json:"id"`
	Text        string         `json:"text"`
	Type        string         `json:"type"`
	Options     []string       `json:"options,omitempty"`
	Required    bool           `json:"required"`
	Order       int            `json:"order"`
	Description string         `json:"description,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

func encodeQuestions(questions []models.Question) ([]byte, error) {
	rows := make([]questionRow, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, questionRow{
			ID:          q.ID.String(),
			Text:        q.Text.String(),
			Type:        q.Type.String(),
			Options:     q.Options.Values(),
			Required:    q.Required,
			Order:       q.Order,
			Description: q.Description,
			Settings:    q.Settings.Values(),
		})
	}
	return json.Marshal(rows)
}

func decodeQuestions(raw []byte) ([]models.Question, error) {
	var rows []questionRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	questions := make([]models.Question, 0, len(rows))
	for _, row := range rows {
		questionID, err := id.ParseQuestionID(row.ID)
		if err != nil {
			return nil, fmt.Errorf("decode question id: %w", err)
		}
		text, err := models.NewQuestionText(row.Text)
		if err != nil {
			return nil, fmt.Errorf("decode question text: %w", err)
		}
		options := models.QuestionOptions{}
		if len(row.Options) > 0 {
			if options, err = models.NewQuestionOptions(row.Options); err != nil {
				return nil, fmt.Errorf("decode question options: %w", err)
			}
		}
		question, err := models.NewQuestion(
			questionID, text, models.QuestionType(row.Type), options,
			row.Required, row.Order, row.Description,
			models.NewQuestionSettings(row.Settings),
		)
		if err != nil {
			return nil, fmt.Errorf("decode question: %w", err)
		}
		questions = append(questions, question)
	}
	return questions, nil
}

const questionnaireColumns = `id, owner_id, title, slug, description, status,
	starts_at, ends_at, settings, questions,
	created_at, updated_at, published_at, closed_at`

func (s *PostgresStore) Create(ctx context.Context, questionnaire *models.Questionnaire) error {
	settings, err := json.Marshal(questionnaire.Settings().Values())
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	questions, err := encodeQuestions(questionnaire.Questions())
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO questionnaires (`+questionnaireColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		questionnaire.ID().String(), questionnaire.OwnerID().String(),
		questionnaire.Title().String(), questionnaire.Slug().String(),
		questionnaire.Description(), questionnaire.Status().String(),
		questionnaire.DateRange().StartsAt(), questionnaire.DateRange().EndsAt(),
		settings, questions,
		questionnaire.CreatedAt(), questionnaire.UpdatedAt(),
		questionnaire.PublishedAt(), questionnaire.ClosedAt(),
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create questionnaire: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, questionnaire *models.Questionnaire) error {
	settings, err := json.Marshal(questionnaire.Settings().Values())
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	questions, err := encodeQuestions(questionnaire.Questions())
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE questionnaires SET
			title = $2, slug = $3, description = $4, status = $5,
			starts_at = $6, ends_at = $7, settings = $8, questions = $9,
			updated_at = $10, published_at = $11, closed_at = $12
		WHERE id = $1`,
		questionnaire.ID().String(),
		questionnaire.Title().String(), questionnaire.Slug().String(),
		questionnaire.Description(), questionnaire.Status().String(),
		questionnaire.DateRange().StartsAt(), questionnaire.DateRange().EndsAt(),
		settings, questions,
		questionnaire.UpdatedAt(), questionnaire.PublishedAt(), questionnaire.ClosedAt(),
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("update questionnaire: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, questionnaireID id.QuestionnaireID) (*models.Questionnaire, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+questionnaireColumns+` FROM questionnaires WHERE id = $1`,
		questionnaireID.String())
	questionnaire, err := scanQuestionnaire(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find questionnaire by id: %w", err)
	}
	return questionnaire, nil
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug models.Slug) (*models.Questionnaire, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+questionnaireColumns+` FROM questionnaires WHERE slug = $1`,
		slug.String())
	questionnaire, err := scanQuestionnaire(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find questionnaire by slug: %w", err)
	}
	return questionnaire, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.OwnerID, filter ListFilter) ([]*models.Questionnaire, error) {
	query := `SELECT ` + questionnaireColumns + ` FROM questionnaires WHERE owner_id = $1`
	args := []any{ownerID.String()}
	if filter.Status != nil {
		query += ` AND status = $2`
		args = append(args, filter.Status.String())
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questionnaires: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Questionnaire, 0)
	for rows.Next() {
		questionnaire, err := scanQuestionnaire(rows)
		if err != nil {
			return nil, fmt.Errorf("list questionnaires: %w", err)
		}
		out = append(out, questionnaire)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questionnaires: %w", err)
	}
	return out, nil
}

func scanQuestionnaire(row pgx.Row) (*models.Questionnaire, error) {
	var (
		rawID, rawOwner, rawTitle, rawSlug, description, rawStatus string
		startsAt, endsAt, publishedAt, closedAt                    *time.Time
		rawSettings, rawQuestions                                  []byte
		createdAt, updatedAt                                       time.Time
	)
	err := row.Scan(&rawID, &rawOwner, &rawTitle, &rawSlug, &description, &rawStatus,
		&startsAt, &endsAt, &rawSettings, &rawQuestions,
		&createdAt, &updatedAt, &publishedAt, &closedAt)
	if err != nil {
		return nil, err
	}

	questionnaireID, err := id.ParseQuestionnaireID(rawID)
	if err != nil {
		return nil, fmt.Errorf("decode questionnaire id: %w", err)
	}
	ownerID, err := id.ParseOwnerID(rawOwner)
	if err != nil {
		return nil, fmt.Errorf("decode owner id: %w", err)
	}
	title, err := models.NewTitle(rawTitle)
	if err != nil {
		return nil, fmt.Errorf("decode title: %w", err)
	}
	slug, err := models.NewSlug(rawSlug)
	if err != nil {
		return nil, fmt.Errorf("decode slug: %w", err)
	}
	status, err := models.ParseStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	dateRange, err := models.NewDateRange(startsAt, endsAt)
	if err != nil {
		return nil, fmt.Errorf("decode date range: %w", err)
	}
	var settingsValues map[string]any
	if err := json.Unmarshal(rawSettings, &settingsValues); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	settings, err := models.NewSettings(settingsValues)
	if err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	questions, err := decodeQuestions(rawQuestions)
	if err != nil {
		return nil, err
	}

	return models.Restore(
		questionnaireID, ownerID, title, slug, description,
		status, dateRange, settings, questions,
		createdAt, updatedAt, publishedAt, closedAt,
	), nil
}

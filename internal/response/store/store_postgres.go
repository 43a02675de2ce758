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

	"canvass/internal/response/models"
	id "canvass/pkg/domain"
	"canvass/pkg/platform/sentinel"
)

// PostgresStore persists responses in PostgreSQL. Answers travel as JSONB;
// a partial unique index over (questionnaire_id, dedup_scope) turns racing
// duplicate submissions into sentinel.ErrConflict.
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

// answerRow is the JSONB shape of one answer. AnswerValue carries its own
// JSON codec, so the value round-trips through its canonical encoding.
type answerRow struct {
	ID         string             `json:"id"`
	QuestionID string             `json:"question_id"`
	Value      models.AnswerValue `json:"value"`
}

func encodeAnswers(answers []models.Answer) ([]byte, error) {
	rows := make([]answerRow, 0, len(answers))
	for _, answer := range answers {
		rows = append(rows, answerRow{
			ID:         answer.ID.String(),
			QuestionID: answer.QuestionID.String(),
			Value:      answer.Value,
		})
	}
	return json.Marshal(rows)
}

func decodeAnswers(raw []byte) ([]models.Answer, error) {
	var rows []answerRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	answers := make([]models.Answer, 0, len(rows))
	for _, row := range rows {
		answerID, err := id.ParseAnswerID(row.ID)
		if err != nil {
			return nil, fmt.Errorf("decode answer id: %w", err)
		}
		questionID, err := id.ParseQuestionID(row.QuestionID)
		if err != nil {
			return nil, fmt.Errorf("decode answer question id: %w", err)
		}
		answers = append(answers, models.Answer{
			ID:         answerID,
			QuestionID: questionID,
			Value:      row.Value,
		})
	}
	return answers, nil
}

const responseColumns = `id, questionnaire_id, respondent_type, respondent_id,
	ip_address, user_agent, metadata, answers, submitted_at`

func (s *PostgresStore) Save(ctx context.Context, response *models.Response, dedupScope string) error {
	metadata, err := json.Marshal(response.Metadata())
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	answers, err := encodeAnswers(response.Answers())
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	var scope *string
	if dedupScope != "" {
		scope = &dedupScope
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO responses (`+responseColumns+`, dedup_scope)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		response.ID().String(), response.QuestionnaireID().String(),
		response.Respondent().Type(), response.Respondent().ID(),
		response.IpAddress().String(), response.UserAgent().Raw(),
		metadata, answers, response.SubmittedAt(), scope,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("save response: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, response *models.Response) error {
	answers, err := encodeAnswers(response.Answers())
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE responses SET answers = $2 WHERE id = $1`,
		response.ID().String(), answers)
	if err != nil {
		return fmt.Errorf("update response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, responseID id.ResponseID) (*models.Response, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+responseColumns+` FROM responses WHERE id = $1`,
		responseID.String())
	response, err := scanResponse(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find response by id: %w", err)
	}
	return response, nil
}

func (s *PostgresStore) ListByQuestionnaire(ctx context.Context, questionnaireID id.QuestionnaireID) ([]*models.Response, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+responseColumns+` FROM responses
		 WHERE questionnaire_id = $1 ORDER BY submitted_at, id`,
		questionnaireID.String())
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Response, 0)
	for rows.Next() {
		response, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("list responses: %w", err)
		}
		out = append(out, response)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountByQuestionnaire(ctx context.Context, questionnaireID id.QuestionnaireID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM responses WHERE questionnaire_id = $1`,
		questionnaireID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ExistsByIP(ctx context.Context, questionnaireID id.QuestionnaireID, ip models.IpAddress) (bool, error) {
	if ip.IsZero() {
		return false, nil
	}
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM responses WHERE questionnaire_id = $1 AND ip_address = $2)`,
		questionnaireID.String(), ip.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check response by ip: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ExistsByRespondent(ctx context.Context, questionnaireID id.QuestionnaireID, respondent models.Respondent) (bool, error) {
	if respondent.IsAnonymous() {
		return false, nil
	}
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM responses
			WHERE questionnaire_id = $1 AND respondent_type = $2 AND respondent_id = $3)`,
		questionnaireID.String(), respondent.Type(), respondent.ID()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check response by respondent: %w", err)
	}
	return exists, nil
}

func scanResponse(row pgx.Row) (*models.Response, error) {
	var (
		rawID, rawQuestionnaire, respondentType, respondentID string
		rawIP, rawUserAgent                                   string
		rawMetadata, rawAnswers                               []byte
		submittedAt                                           time.Time
	)
	err := row.Scan(&rawID, &rawQuestionnaire, &respondentType, &respondentID,
		&rawIP, &rawUserAgent, &rawMetadata, &rawAnswers, &submittedAt)
	if err != nil {
		return nil, err
	}

	responseID, err := id.ParseResponseID(rawID)
	if err != nil {
		return nil, fmt.Errorf("decode response id: %w", err)
	}
	questionnaireID, err := id.ParseQuestionnaireID(rawQuestionnaire)
	if err != nil {
		return nil, fmt.Errorf("decode questionnaire id: %w", err)
	}
	respondent := models.AnonymousRespondent()
	if respondentType != "" {
		if respondent, err = models.NewRespondent(respondentType, respondentID); err != nil {
			return nil, fmt.Errorf("decode respondent: %w", err)
		}
	}
	ip := models.NoIpAddress()
	if rawIP != "" {
		if ip, err = models.NewIpAddress(rawIP); err != nil {
			return nil, fmt.Errorf("decode ip address: %w", err)
		}
	}
	var metadata map[string]any
	if err := json.Unmarshal(rawMetadata, &metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	answers, err := decodeAnswers(rawAnswers)
	if err != nil {
		return nil, err
	}

	return models.RestoreResponse(
		responseID, questionnaireID, respondent, ip,
		models.NewUserAgent(rawUserAgent), answers, metadata, submittedAt,
	), nil
}

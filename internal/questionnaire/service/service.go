// Package service orchestrates the questionnaire lifecycle: construction of
// value objects from raw input, aggregate mutations, persistence, and fact
// emission. Handlers stay thin and domain logic stays in models.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"canvass/internal/events"
	"canvass/internal/questionnaire/metrics"
	"canvass/internal/questionnaire/models"
	"canvass/internal/questionnaire/store"
	"canvass/internal/questiontype"
	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
	"canvass/pkg/platform/sentinel"
)

var tracer = otel.Tracer("canvass/questionnaire")

// Service orchestrates questionnaire management.
type Service struct {
	store     store.Store
	registry  *questiontype.Registry
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock replaces the time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(st store.Store, registry *questiontype.Registry, opts ...Option) *Service {
	s := &Service{
		store:    st,
		registry: registry,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries raw creation input. Slug is optional; when empty it is
// derived from the title.
type CreateInput struct {
	OwnerID     id.OwnerID
	Title       string
	Slug        string
	Description string
	Settings    map[string]any
	StartsAt    *time.Time
	EndsAt      *time.Time
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Questionnaire, error) {
	ctx, span := tracer.Start(ctx, "questionnaire.Create")
	defer span.End()

	title, err := models.NewTitle(input.Title)
	if err != nil {
		return nil, err
	}
	slug, err := slugFor(title, input.Slug)
	if err != nil {
		return nil, err
	}
	settings, err := models.NewSettings(input.Settings)
	if err != nil {
		return nil, err
	}
	dateRange, err := models.NewDateRange(input.StartsAt, input.EndsAt)
	if err != nil {
		return nil, err
	}

	questionnaire, err := models.New(
		id.NewQuestionnaireID(), input.OwnerID,
		title, slug, input.Description, settings, dateRange, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, questionnaire); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "slug is already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create questionnaire")
	}

	s.logger.InfoContext(ctx, "questionnaire created",
		"questionnaire_id", questionnaire.ID().String(),
		"slug", slug.String())
	s.metrics.IncrementCreated()
	s.emit(ctx, questionnaire)
	return questionnaire, nil
}

// UpdateInput carries raw update input for a draft questionnaire.
type UpdateInput struct {
	Title       string
	Slug        string
	Description string
	Settings    map[string]any
	StartsAt    *time.Time
	EndsAt      *time.Time
}

func (s *Service) Update(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID, input UpdateInput) (*models.Questionnaire, error) {
	questionnaire, err := s.loadOwned(ctx, ownerID, questionnaireID)
	if err != nil {
		return nil, err
	}

	title, err := models.NewTitle(input.Title)
	if err != nil {
		return nil, err
	}
	slug, err := slugFor(title, input.Slug)
	if err != nil {
		return nil, err
	}
	settings, err := models.NewSettings(input.Settings)
	if err != nil {
		return nil, err
	}
	dateRange, err := models.NewDateRange(input.StartsAt, input.EndsAt)
	if err != nil {
		return nil, err
	}

	if err := questionnaire.Update(title, slug, input.Description, settings, dateRange, s.now()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, questionnaire); err != nil {
		return nil, err
	}
	return questionnaire, nil
}

// Get loads an owner's questionnaire. Foreign questionnaires surface as
// forbidden, not hidden, because ids are not secrets.
func (s *Service) Get(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID) (*models.Questionnaire, error) {
	return s.loadOwned(ctx, ownerID, questionnaireID)
}

// GetBySlug is the public lookup used by the submission path. No owner check.
func (s *Service) GetBySlug(ctx context.Context, rawSlug string) (*models.Questionnaire, error) {
	start := s.now()
	defer func() { s.metrics.ObserveLookup(start) }()

	slug, err := models.NewSlug(rawSlug)
	if err != nil {
		return nil, err
	}
	questionnaire, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "questionnaire not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load questionnaire")
	}
	return questionnaire, nil
}

// List returns an owner's questionnaires, optionally narrowed by status.
func (s *Service) List(ctx context.Context, ownerID id.OwnerID, rawStatus string) ([]*models.Questionnaire, error) {
	filter := store.ListFilter{}
	if rawStatus != "" {
		status, err := models.ParseStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	out, err := s.store.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list questionnaires")
	}
	return out, nil
}

// Publish transitions a draft to published, optionally attaching a response
// window.
func (s *Service) Publish(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID, startsAt, endsAt *time.Time) (*models.Questionnaire, error) {
	ctx, span := tracer.Start(ctx, "questionnaire.Publish")
	defer span.End()
	start := s.now()
	defer func() { s.metrics.ObservePublish(start) }()

	questionnaire, err := s.loadOwned(ctx, ownerID, questionnaireID)
	if err != nil {
		return nil, err
	}

	var window *models.DateRange
	if startsAt != nil || endsAt != nil {
		dateRange, err := models.NewDateRange(startsAt, endsAt)
		if err != nil {
			return nil, err
		}
		window = &dateRange
	}

	if err := questionnaire.Publish(window, s.now()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, questionnaire); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "questionnaire published",
		"questionnaire_id", questionnaire.ID().String())
	s.metrics.IncrementPublished()
	return questionnaire, nil
}

func (s *Service) Close(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID) (*models.Questionnaire, error) {
	questionnaire, err := s.loadOwned(ctx, ownerID, questionnaireID)
	if err != nil {
		return nil, err
	}
	if err := questionnaire.Close(s.now()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, questionnaire); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "questionnaire closed",
		"questionnaire_id", questionnaire.ID().String())
	return questionnaire, nil
}

func (s *Service) Archive(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID) (*models.Questionnaire, error) {
	questionnaire, err := s.loadOwned(ctx, ownerID, questionnaireID)
	if err != nil {
		return nil, err
	}
	if err := questionnaire.Archive(s.now()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, questionnaire); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "questionnaire archived",
		"questionnaire_id", questionnaire.ID().String())
	return questionnaire, nil
}

// QuestionInput carries raw question input.
type QuestionInput struct {
	Text        string
	Type        string
	Options     []string
	Required    bool
	Order       int
	Description string
	Settings    map[string]any
}

func (s *Service) buildQuestion(questionID id.QuestionID, input QuestionInput) (models.Question, error) {
	qType := models.QuestionType(input.Type)
	// Unknown types are rejected here, at write time, so stored questionnaires
	// only ever reference registered types.
	if _, err := s.registry.GetOrFail(qType); err != nil {
		return models.Question{}, err
	}
	text, err := models.NewQuestionText(input.Text)
	if err != nil {
		return models.Question{}, err
	}
	options := models.QuestionOptions{}
	if len(input.Options) > 0 {
		if options, err = models.NewQuestionOptions(input.Options); err != nil {
			return models.Question{}, err
		}
	}
	return models.NewQuestion(questionID, text, qType, options,
		input.Required, input.Order, input.Description,
		models.NewQuestionSettings(input.Settings))
}

func (s *Service) AddQuestion(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID, input QuestionInput) (models.Question, error) {
	questionnaire, err := s.loadOwned(ctx, ownerID, questionnaireID)
	if err != nil {
		return models.Question{}, err
	}
	question, err := s.buildQuestion(id.NewQuestionID(), input)
	if err != nil {
		return models.Question{}, err
	}
	if err := questionnaire.AddQuestion(question, s.now()); err != nil {
		return models.Question{}, err
	}
	if err := s.persist(ctx, questionnaire); err != nil {
		return models.Question{}, err
	}
	return question, nil
}

func (s *Service) UpdateQuestion(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID, questionID id.QuestionID, input QuestionInput) (models.Question, error) {
	questionnaire, err := s.loadOwned(ctx, ownerID, questionnaireID)
	if err != nil {
		return models.Question{}, err
	}
	question, err := s.buildQuestion(questionID, input)
	if err != nil {
		return models.Question{}, err
	}
	if err := questionnaire.UpdateQuestion(question, s.now()); err != nil {
		return models.Question{}, err
	}
	if err := s.persist(ctx, questionnaire); err != nil {
		return models.Question{}, err
	}
	return question, nil
}

func (s *Service) RemoveQuestion(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID, questionID id.QuestionID) error {
	questionnaire, err := s.loadOwned(ctx, ownerID, questionnaireID)
	if err != nil {
		return err
	}
	if err := questionnaire.RemoveQuestion(questionID, s.now()); err != nil {
		return err
	}
	return s.persist(ctx, questionnaire)
}

func (s *Service) loadOwned(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID) (*models.Questionnaire, error) {
	questionnaire, err := s.store.FindByID(ctx, questionnaireID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "questionnaire not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load questionnaire")
	}
	if questionnaire.OwnerID() != ownerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "questionnaire belongs to another owner")
	}
	return questionnaire, nil
}

func (s *Service) persist(ctx context.Context, questionnaire *models.Questionnaire) error {
	if err := s.store.Update(ctx, questionnaire); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "slug is already taken")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "questionnaire not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store questionnaire")
	}
	s.emit(ctx, questionnaire)
	return nil
}

// emit publishes the aggregate's pending facts. Runs only after the state is
// durably stored; delivery is best-effort by contract.
func (s *Service) emit(ctx context.Context, questionnaire *models.Questionnaire) {
	if s.publisher == nil {
		questionnaire.ClearFacts()
		return
	}
	s.publisher.Publish(ctx, questionnaire.ID().String(), questionnaire.Facts()...)
	questionnaire.ClearFacts()
}

func slugFor(title models.Title, raw string) (models.Slug, error) {
	if raw == "" {
		return models.SlugFromTitle(title)
	}
	return models.NewSlug(raw)
}

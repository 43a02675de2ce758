// Package service runs the submission workflow: acceptance checks against
// the questionnaire lifecycle, input normalization through the question type
// registry, rule validation, duplicate guarding, persistence, and fact
// emission.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"canvass/internal/events"
	"canvass/internal/guard"
	qmodels "canvass/internal/questionnaire/models"
	qstore "canvass/internal/questionnaire/store"
	"canvass/internal/questiontype"
	"canvass/internal/response/metrics"
	"canvass/internal/response/models"
	"canvass/internal/response/store"
	"canvass/internal/validation"
	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
	"canvass/pkg/platform/sentinel"
)

var tracer = otel.Tracer("canvass/response")

// Reasons attached to CodeNotAccepting errors.
const (
	ReasonNotPublished    = "not_published"
	ReasonOutsideWindow   = "outside_window"
	ReasonClosed          = "closed"
	ReasonSubmissionLimit = "submission_limit_reached"
)

// FieldErrors carries per-question validation messages, keyed by question id.
// It travels as the cause of a CodeValidation error so handlers can render
// field-level feedback.
type FieldErrors struct {
	Failures map[string][]string
}

func (e *FieldErrors) Error() string { return "submission failed validation" }

// FieldFailures exposes the messages for transport envelopes.
func (e *FieldErrors) FieldFailures() map[string][]string { return e.Failures }

// Service orchestrates response submission and retrieval.
type Service struct {
	responses      store.Store
	questionnaires qstore.Store
	registry       *questiontype.Registry
	guards         *guard.Resolver
	publisher      events.Publisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	now            func() time.Time
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

func New(responses store.Store, questionnaires qstore.Store, registry *questiontype.Registry, guards *guard.Resolver, opts ...Option) *Service {
	s := &Service{
		responses:      responses,
		questionnaires: questionnaires,
		registry:       registry,
		guards:         guards,
		logger:         slog.Default(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitInput carries one raw submission. Values is keyed by question id.
type SubmitInput struct {
	Slug           string
	RespondentType string
	RespondentID   string
	IP             string
	UserAgent      string
	SessionID      string
	Values         map[string]any
	Metadata       map[string]any
}

func (s *Service) Submit(ctx context.Context, input SubmitInput) (*models.Response, error) {
	ctx, span := tracer.Start(ctx, "response.Submit",
		trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	start := s.now()
	defer func() { s.metrics.ObserveSubmit(start) }()

	questionnaire, err := s.loadBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("questionnaire_id", questionnaire.ID().String()))

	now := s.now()
	if err := s.checkAccepting(questionnaire, now); err != nil {
		s.metrics.IncrementRejected(dErrors.ReasonOf(err))
		return nil, err
	}

	respondent, ip, userAgent, err := s.identity(input)
	if err != nil {
		return nil, err
	}

	values, err := s.transform(questionnaire, input.Values)
	if err != nil {
		return nil, err
	}

	if err := s.validate(questionnaire, values); err != nil {
		s.metrics.IncrementRejected("validation")
		return nil, err
	}

	strategy := questionnaire.Settings().DedupStrategy()
	sub := guard.SubmissionContext{
		QuestionnaireID: questionnaire.ID(),
		Respondent:      respondent,
		IP:              ip,
		SessionID:       input.SessionID,
	}
	g := s.guards.Resolve(strategy)
	allowed, err := g.CanSubmit(ctx, sub)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "duplicate check failed")
	}
	if !allowed {
		s.metrics.IncrementRejected(g.RejectionReason())
		return nil, guard.Rejection(g)
	}

	if err := s.checkSubmissionLimit(ctx, questionnaire); err != nil {
		s.metrics.IncrementRejected(dErrors.ReasonOf(err))
		return nil, err
	}

	response, err := models.Submit(
		id.NewResponseID(), questionnaire.ID(), questionnaire.Questions(),
		respondent, ip, userAgent, values, input.Metadata, now)
	if err != nil {
		return nil, err
	}

	if err := s.responses.Save(ctx, response, guard.ScopeKey(strategy, sub)); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost the race against a concurrent duplicate; same outcome as a
			// guard rejection.
			s.metrics.IncrementRejected(g.RejectionReason())
			return nil, guard.Rejection(g)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store response")
	}

	if err := g.MarkSubmitted(ctx, sub); err != nil {
		// The response is stored; a failed marker only weakens future
		// duplicate checks. Log and move on.
		s.logger.WarnContext(ctx, "failed to mark submission",
			"questionnaire_id", questionnaire.ID().String(), "error", err)
	}

	s.logger.InfoContext(ctx, "response submitted",
		"questionnaire_id", questionnaire.ID().String(),
		"response_id", response.ID().String(),
		"anonymous", respondent.IsAnonymous())
	s.metrics.IncrementSubmitted()
	s.emit(ctx, response)
	return response, nil
}

// Get loads a response for the questionnaire owner.
func (s *Service) Get(ctx context.Context, ownerID id.OwnerID, responseID id.ResponseID) (*models.Response, error) {
	response, err := s.loadResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadOwnedQuestionnaire(ctx, ownerID, response.QuestionnaireID()); err != nil {
		return nil, err
	}
	return response, nil
}

// ListByQuestionnaire returns a questionnaire's responses for its owner.
func (s *Service) ListByQuestionnaire(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID) ([]*models.Response, error) {
	if _, err := s.loadOwnedQuestionnaire(ctx, ownerID, questionnaireID); err != nil {
		return nil, err
	}
	out, err := s.responses.ListByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list responses")
	}
	return out, nil
}

// CountByQuestionnaire returns the number of stored responses for the owner's
// questionnaire.
func (s *Service) CountByQuestionnaire(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID) (int, error) {
	if _, err := s.loadOwnedQuestionnaire(ctx, ownerID, questionnaireID); err != nil {
		return 0, err
	}
	count, err := s.responses.CountByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count responses")
	}
	return count, nil
}

// CorrectAnswer replaces one stored answer's value on the owner's behalf. The
// new value passes through the question type's transform and rules like a
// fresh submission would.
func (s *Service) CorrectAnswer(ctx context.Context, ownerID id.OwnerID, responseID id.ResponseID, answerID id.AnswerID, raw any) (*models.Response, error) {
	response, err := s.loadResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	questionnaire, err := s.loadOwnedQuestionnaire(ctx, ownerID, response.QuestionnaireID())
	if err != nil {
		return nil, err
	}

	var question qmodels.Question
	found := false
	for _, answer := range response.Answers() {
		if answer.ID == answerID {
			question, found = questionnaire.Question(answer.QuestionID)
			break
		}
	}
	if !found {
		return nil, dErrors.NewWithReason(dErrors.CodeInvalidAnswer, models.ReasonAnswerNotFound,
			"answer "+answerID.String()+" does not exist on this response")
	}

	descriptor, err := s.registry.GetOrFail(question.Type)
	if err != nil {
		return nil, err
	}
	value, err := descriptor.TransformValue(raw)
	if err != nil {
		return nil, err
	}

	ruleSet, err := validation.Derive(questionnaire, s.registry)
	if err != nil {
		return nil, err
	}
	if msgs := ruleSet.ValidateOne(question.ID, value); len(msgs) > 0 {
		return nil, dErrors.Wrap(
			&FieldErrors{Failures: map[string][]string{question.ID.String(): msgs}},
			dErrors.CodeValidation, "corrected value failed validation")
	}

	if err := response.CorrectAnswer(answerID, value, s.now()); err != nil {
		return nil, err
	}
	if err := s.responses.Update(ctx, response); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store correction")
	}
	s.emit(ctx, response)
	return response, nil
}

func (s *Service) checkAccepting(questionnaire *qmodels.Questionnaire, now time.Time) error {
	switch questionnaire.Status() {
	case qmodels.StatusDraft:
		return dErrors.NewWithReason(dErrors.CodeNotAccepting, ReasonNotPublished,
			"this questionnaire has not been published")
	case qmodels.StatusClosed, qmodels.StatusArchived:
		return dErrors.NewWithReason(dErrors.CodeNotAccepting, ReasonClosed,
			"this questionnaire is no longer accepting responses")
	}
	if !questionnaire.IsActive(now) {
		return dErrors.NewWithReason(dErrors.CodeNotAccepting, ReasonOutsideWindow,
			"this questionnaire is outside its response window")
	}
	return nil
}

func (s *Service) checkSubmissionLimit(ctx context.Context, questionnaire *qmodels.Questionnaire) error {
	limit, ok := questionnaire.Settings().SubmissionLimit()
	if !ok {
		return nil
	}
	count, err := s.responses.CountByQuestionnaire(ctx, questionnaire.ID())
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count responses")
	}
	if count >= limit {
		return dErrors.NewWithReason(dErrors.CodeNotAccepting, ReasonSubmissionLimit,
			"this questionnaire has reached its submission limit")
	}
	return nil
}

func (s *Service) identity(input SubmitInput) (models.Respondent, models.IpAddress, models.UserAgent, error) {
	respondent := models.AnonymousRespondent()
	if input.RespondentType != "" || input.RespondentID != "" {
		var err error
		respondent, err = models.NewRespondent(input.RespondentType, input.RespondentID)
		if err != nil {
			return models.Respondent{}, models.IpAddress{}, models.UserAgent{}, err
		}
	}
	ip := models.NoIpAddress()
	if input.IP != "" {
		var err error
		ip, err = models.NewIpAddress(input.IP)
		if err != nil {
			return models.Respondent{}, models.IpAddress{}, models.UserAgent{}, err
		}
	}
	return respondent, ip, models.NewUserAgent(input.UserAgent), nil
}

// transform normalizes raw values through each question's type descriptor.
// Values for unknown questions pass through untransformed; the aggregate
// rejects them with a precise error.
func (s *Service) transform(questionnaire *qmodels.Questionnaire, raw map[string]any) (map[id.QuestionID]models.AnswerValue, error) {
	values := make(map[id.QuestionID]models.AnswerValue, len(raw))
	for rawKey, rawValue := range raw {
		questionID, err := id.ParseQuestionID(rawKey)
		if err != nil {
			return nil, dErrors.NewWithReason(dErrors.CodeInvalidAnswer, models.ReasonQuestionNotFound,
				"answer references malformed question id "+rawKey)
		}
		question, ok := questionnaire.Question(questionID)
		if !ok {
			value, err := models.NewAnswerValue(rawValue)
			if err != nil {
				return nil, err
			}
			values[questionID] = value
			continue
		}
		descriptor, err := s.registry.GetOrFail(question.Type)
		if err != nil {
			return nil, err
		}
		value, err := descriptor.TransformValue(rawValue)
		if err != nil {
			return nil, err
		}
		values[questionID] = value
	}
	return values, nil
}

func (s *Service) validate(questionnaire *qmodels.Questionnaire, values map[id.QuestionID]models.AnswerValue) error {
	ruleSet, err := validation.Derive(questionnaire, s.registry)
	if err != nil {
		return err
	}
	failures := ruleSet.Validate(values)
	if len(failures) == 0 {
		return nil
	}
	flat := make(map[string][]string, len(failures))
	for questionID, msgs := range failures {
		flat[questionID.String()] = msgs
	}
	return dErrors.Wrap(&FieldErrors{Failures: flat},
		dErrors.CodeValidation, "submission failed validation")
}

func (s *Service) loadBySlug(ctx context.Context, rawSlug string) (*qmodels.Questionnaire, error) {
	slug, err := qmodels.NewSlug(rawSlug)
	if err != nil {
		return nil, err
	}
	questionnaire, err := s.questionnaires.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "questionnaire not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load questionnaire")
	}
	return questionnaire, nil
}

func (s *Service) loadOwnedQuestionnaire(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID) (*qmodels.Questionnaire, error) {
	questionnaire, err := s.questionnaires.FindByID(ctx, questionnaireID)
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

func (s *Service) loadResponse(ctx context.Context, responseID id.ResponseID) (*models.Response, error) {
	response, err := s.responses.FindByID(ctx, responseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "response not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load response")
	}
	return response, nil
}

func (s *Service) emit(ctx context.Context, response *models.Response) {
	if s.publisher == nil {
		response.ClearFacts()
		return
	}
	s.publisher.Publish(ctx, response.QuestionnaireID().String(), response.Facts()...)
	response.ClearFacts()
}

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"canvass/internal/events"
	"canvass/internal/guard"
	"canvass/internal/guard/marker"
	qmodels "canvass/internal/questionnaire/models"
	qstore "canvass/internal/questionnaire/store"
	"canvass/internal/questiontype"
	"canvass/internal/response/models"
	"canvass/internal/response/service"
	"canvass/internal/response/store"
	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	svc            *service.Service
	responses      *store.MemoryStore
	questionnaires *qstore.MemoryStore
	publisher      *events.MemoryPublisher
	owner          id.OwnerID
	now            time.Time
	ratingID       id.QuestionID
	commentID      id.QuestionID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.responses = store.NewMemoryStore()
	s.questionnaires = qstore.NewMemoryStore()
	s.publisher = events.NewMemoryPublisher()
	s.owner = id.NewOwnerID()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	resolver, err := guard.NewResolver(s.responses, marker.NewMemoryStore())
	s.Require().NoError(err)

	s.svc = service.New(
		s.responses, s.questionnaires,
		questiontype.NewDefaultRegistry(), resolver,
		service.WithPublisher(s.publisher),
		service.WithClock(func() time.Time { return s.now }),
	)
}

// publish stores a published questionnaire with a required rating question and
// an optional comment question.
func (s *ServiceSuite) publish(slug string, settings map[string]any) *qmodels.Questionnaire {
	return s.publishWindowed(slug, settings, nil)
}

func (s *ServiceSuite) publishWindowed(slug string, settings map[string]any, window *qmodels.DateRange) *qmodels.Questionnaire {
	questionnaire, err := qmodels.New(
		id.NewQuestionnaireID(), s.owner,
		qmodels.MustTitle("Team Survey"), qmodels.MustSlug(slug),
		"", qmodels.MustSettings(settings), qmodels.UnboundedRange(), s.now)
	s.Require().NoError(err)

	rating, err := qmodels.NewQuestion(
		id.NewQuestionID(), qmodels.MustQuestionText("Rate us 1-10"),
		qmodels.TypeNumber, qmodels.QuestionOptions{}, true, 0, "",
		qmodels.NewQuestionSettings(map[string]any{"min": 1, "max": 10}))
	s.Require().NoError(err)
	comment, err := qmodels.NewQuestion(
		id.NewQuestionID(), qmodels.MustQuestionText("Comments"),
		qmodels.TypeTextarea, qmodels.QuestionOptions{}, false, 1, "",
		qmodels.NewQuestionSettings(nil))
	s.Require().NoError(err)

	s.Require().NoError(questionnaire.AddQuestion(rating, s.now))
	s.Require().NoError(questionnaire.AddQuestion(comment, s.now))
	s.Require().NoError(questionnaire.Publish(window, s.now))
	questionnaire.ClearFacts()
	s.Require().NoError(s.questionnaires.Create(context.Background(), questionnaire))

	s.ratingID = rating.ID
	s.commentID = comment.ID
	return questionnaire
}

func (s *ServiceSuite) input(slug string) service.SubmitInput {
	return service.SubmitInput{
		Slug:   slug,
		IP:     "203.0.113.10",
		Values: map[string]any{s.ratingID.String(): 7},
	}
}

func (s *ServiceSuite) TestSubmit() {
	ctx := context.Background()
	questionnaire := s.publish("team-survey", nil)

	input := s.input("team-survey")
	input.UserAgent = "Mozilla/5.0"
	input.Values[s.commentID.String()] = "great"
	input.Metadata = map[string]any{"referrer": "https://example.com"}

	response, err := s.svc.Submit(ctx, input)
	s.Require().NoError(err)
	s.Equal(questionnaire.ID(), response.QuestionnaireID())
	s.Len(response.Answers(), 2)
	s.True(response.Respondent().IsAnonymous())

	stored, err := s.responses.FindByID(ctx, response.ID())
	s.Require().NoError(err)
	s.Equal(response.ID(), stored.ID())

	envelopes := s.publisher.Envelopes()
	s.Require().Len(envelopes, 1)
	s.Equal(models.FactResponseSubmitted, envelopes[0].Kind)
	s.Equal(questionnaire.ID().String(), envelopes[0].Key)
}

func (s *ServiceSuite) TestNotAccepting() {
	ctx := context.Background()

	s.Run("draft", func() {
		draft, err := qmodels.New(
			id.NewQuestionnaireID(), s.owner,
			qmodels.MustTitle("Draft Survey"), qmodels.MustSlug("draft-survey"),
			"", qmodels.DefaultSettings(), qmodels.UnboundedRange(), s.now)
		s.Require().NoError(err)
		draft.ClearFacts()
		s.Require().NoError(s.questionnaires.Create(ctx, draft))

		_, err = s.svc.Submit(ctx, service.SubmitInput{Slug: "draft-survey"})
		s.True(dErrors.HasReason(err, dErrors.CodeNotAccepting, service.ReasonNotPublished))
	})

	s.Run("closed", func() {
		questionnaire := s.publish("closed-survey", nil)
		s.Require().NoError(questionnaire.Close(s.now))
		s.Require().NoError(s.questionnaires.Update(ctx, questionnaire))

		_, err := s.svc.Submit(ctx, s.input("closed-survey"))
		s.True(dErrors.HasReason(err, dErrors.CodeNotAccepting, service.ReasonClosed))
	})

	s.Run("outside window", func() {
		start := s.now.Add(24 * time.Hour)
		window, err := qmodels.NewDateRange(&start, nil)
		s.Require().NoError(err)
		s.publishWindowed("future-survey", nil, &window)

		_, err = s.svc.Submit(ctx, s.input("future-survey"))
		s.True(dErrors.HasReason(err, dErrors.CodeNotAccepting, service.ReasonOutsideWindow))
	})

	s.Run("unknown slug", func() {
		_, err := s.svc.Submit(ctx, s.input("missing-survey"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestValidationFailure() {
	ctx := context.Background()
	s.publish("team-survey", nil)

	_, err := s.svc.Submit(ctx, service.SubmitInput{
		Slug:   "team-survey",
		Values: map[string]any{s.commentID.String(): "great"},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	var fieldErrs *service.FieldErrors
	s.Require().True(errors.As(err, &fieldErrs))
	s.Contains(fieldErrs.Failures, s.ratingID.String())
	s.Contains(fieldErrs.Failures[s.ratingID.String()][0], "Rate us 1-10")
	s.Empty(s.publisher.Envelopes(), "rejected submissions emit nothing")
}

func (s *ServiceSuite) TestUnknownQuestionRejected() {
	ctx := context.Background()
	s.publish("team-survey", nil)

	input := s.input("team-survey")
	input.Values[id.NewQuestionID().String()] = "stray"
	_, err := s.svc.Submit(ctx, input)
	s.True(dErrors.HasReason(err, dErrors.CodeInvalidAnswer, models.ReasonQuestionNotFound))
}

func (s *ServiceSuite) TestOnePerIP() {
	ctx := context.Background()
	s.publish("team-survey", map[string]any{
		qmodels.SettingDedupStrategy: "one_per_ip",
	})

	_, err := s.svc.Submit(ctx, s.input("team-survey"))
	s.Require().NoError(err)

	_, err = s.svc.Submit(ctx, s.input("team-survey"))
	s.True(dErrors.HasReason(err, dErrors.CodeDuplicateSubmission, guard.ReasonDuplicateByIP))

	other := s.input("team-survey")
	other.IP = "203.0.113.11"
	_, err = s.svc.Submit(ctx, other)
	s.NoError(err, "a different address is not a duplicate")
}

func (s *ServiceSuite) TestOnePerUser() {
	ctx := context.Background()
	s.publish("team-survey", map[string]any{
		qmodels.SettingDedupStrategy: "one_per_user",
	})

	identified := s.input("team-survey")
	identified.RespondentType = "user"
	identified.RespondentID = "42"
	_, err := s.svc.Submit(ctx, identified)
	s.Require().NoError(err)

	identified.Values = map[string]any{s.ratingID.String(): 3}
	_, err = s.svc.Submit(ctx, identified)
	s.True(dErrors.HasReason(err, dErrors.CodeDuplicateSubmission, guard.ReasonDuplicateByUser))

	_, err = s.svc.Submit(ctx, s.input("team-survey"))
	s.NoError(err, "anonymous submissions bypass the per-user guard")
	_, err = s.svc.Submit(ctx, s.input("team-survey"))
	s.NoError(err)
}

func (s *ServiceSuite) TestOnePerSession() {
	ctx := context.Background()
	s.publish("team-survey", map[string]any{
		qmodels.SettingDedupStrategy: "one_per_session",
	})

	withSession := s.input("team-survey")
	withSession.SessionID = "sess-1"
	_, err := s.svc.Submit(ctx, withSession)
	s.Require().NoError(err)

	_, err = s.svc.Submit(ctx, withSession)
	s.True(dErrors.HasReason(err, dErrors.CodeDuplicateSubmission, guard.ReasonDuplicateBySession))

	_, err = s.svc.Submit(ctx, s.input("team-survey"))
	s.NoError(err, "no session cookie, no guard")
}

func (s *ServiceSuite) TestSubmissionLimit() {
	ctx := context.Background()
	s.publish("team-survey", map[string]any{
		qmodels.SettingSubmissionLimit: 1,
	})

	_, err := s.svc.Submit(ctx, s.input("team-survey"))
	s.Require().NoError(err)

	_, err = s.svc.Submit(ctx, s.input("team-survey"))
	s.True(dErrors.HasReason(err, dErrors.CodeNotAccepting, service.ReasonSubmissionLimit))
}

func (s *ServiceSuite) TestGetAndListOwnership() {
	ctx := context.Background()
	questionnaire := s.publish("team-survey", nil)

	response, err := s.svc.Submit(ctx, s.input("team-survey"))
	s.Require().NoError(err)

	loaded, err := s.svc.Get(ctx, s.owner, response.ID())
	s.Require().NoError(err)
	s.Equal(response.ID(), loaded.ID())

	_, err = s.svc.Get(ctx, id.NewOwnerID(), response.ID())
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.svc.Get(ctx, s.owner, id.NewResponseID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	listed, err := s.svc.ListByQuestionnaire(ctx, s.owner, questionnaire.ID())
	s.Require().NoError(err)
	s.Len(listed, 1)

	_, err = s.svc.ListByQuestionnaire(ctx, id.NewOwnerID(), questionnaire.ID())
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestCorrectAnswer() {
	ctx := context.Background()
	s.publish("team-survey", nil)

	response, err := s.svc.Submit(ctx, s.input("team-survey"))
	s.Require().NoError(err)
	answerID := response.Answers()[0].ID

	s.Run("valid correction persists", func() {
		corrected, err := s.svc.CorrectAnswer(ctx, s.owner, response.ID(), answerID, 9)
		s.Require().NoError(err)
		value, ok := corrected.Answers()[0].Value.AsNumber()
		s.Require().True(ok)
		s.InDelta(9, value, 0.01)

		stored, err := s.responses.FindByID(ctx, response.ID())
		s.Require().NoError(err)
		storedValue, _ := stored.Answers()[0].Value.AsNumber()
		s.InDelta(9, storedValue, 0.01)

		envelopes := s.publisher.Envelopes()
		s.Equal(models.FactAnswerCorrected, envelopes[len(envelopes)-1].Kind)
	})

	s.Run("invalid value rejected", func() {
		_, err := s.svc.CorrectAnswer(ctx, s.owner, response.ID(), answerID, 11)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown answer rejected", func() {
		_, err := s.svc.CorrectAnswer(ctx, s.owner, response.ID(), id.NewAnswerID(), 5)
		s.True(dErrors.HasReason(err, dErrors.CodeInvalidAnswer, models.ReasonAnswerNotFound))
	})

	s.Run("foreign owner rejected", func() {
		_, err := s.svc.CorrectAnswer(ctx, id.NewOwnerID(), response.ID(), answerID, 5)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

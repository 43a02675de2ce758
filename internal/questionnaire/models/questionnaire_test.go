package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"canvass/internal/questionnaire/models"
	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
)

type QuestionnaireSuite struct {
	suite.Suite
	now     time.Time
	ownerID id.OwnerID
}

func TestQuestionnaireSuite(t *testing.T) {
	suite.Run(t, new(QuestionnaireSuite))
}

func (s *QuestionnaireSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ownerID = id.NewOwnerID()
}

func (s *QuestionnaireSuite) newDraft() *models.Questionnaire {
	q, err := models.New(
		id.NewQuestionnaireID(),
		s.ownerID,
		models.MustTitle("Customer Survey"),
		models.MustSlug("customer-survey"),
		"How did we do?",
		models.DefaultSettings(),
		models.UnboundedRange(),
		s.now,
	)
	s.Require().NoError(err)
	return q
}

func (s *QuestionnaireSuite) textQuestion(order int) models.Question {
	question, err := models.NewQuestion(
		id.NewQuestionID(),
		models.MustQuestionText("Anything to add?"),
		models.TypeText,
		models.QuestionOptions{},
		false,
		order,
		"",
		models.NewQuestionSettings(nil),
	)
	s.Require().NoError(err)
	return question
}

func (s *QuestionnaireSuite) TestCreation() {
	q := s.newDraft()

	s.Equal(models.StatusDraft, q.Status())
	s.Equal(s.now, q.CreatedAt())
	s.Nil(q.PublishedAt())
	s.True(q.AcceptsModifications())

	facts := q.Facts()
	s.Require().Len(facts, 1)
	s.Equal(models.FactQuestionnaireCreated, facts[0].Kind())
}

func (s *QuestionnaireSuite) TestPublishRequiresQuestions() {
	q := s.newDraft()

	err := q.Publish(nil, s.now)
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, dErrors.CodeInvalidState, models.ReasonPublishWithoutQuestion))
	s.Equal(models.StatusDraft, q.Status(), "failed publish must not mutate state")

	s.Require().NoError(q.AddQuestion(s.textQuestion(0), s.now))
	s.Require().NoError(q.Publish(nil, s.now))

	s.Equal(models.StatusPublished, q.Status())
	s.Require().NotNil(q.PublishedAt())
	s.Equal(s.now, *q.PublishedAt())
}

func (s *QuestionnaireSuite) TestPublishAttachesWindow() {
	q := s.newDraft()
	s.Require().NoError(q.AddQuestion(s.textQuestion(0), s.now))

	start := s.now.AddDate(0, 0, 1)
	end := s.now.AddDate(0, 1, 0)
	window := models.MustDateRange(&start, &end)
	s.Require().NoError(q.Publish(&window, s.now))

	s.True(q.DateRange().Equal(window))
	s.False(q.IsActive(s.now), "before window")
	s.True(q.IsActive(start))
	s.True(q.IsActive(end))
	s.False(q.IsActive(end.Add(time.Second)))
}

func (s *QuestionnaireSuite) TestIsActiveDependsOnStatus() {
	q := s.newDraft()
	s.False(q.IsActive(s.now), "draft is never active")

	s.Require().NoError(q.AddQuestion(s.textQuestion(0), s.now))
	s.Require().NoError(q.Publish(nil, s.now))
	s.True(q.IsActive(s.now))

	s.Require().NoError(q.Close(s.now))
	s.False(q.IsActive(s.now), "closed is never active regardless of dates")
	s.Require().NotNil(q.ClosedAt())
}

func (s *QuestionnaireSuite) TestQuestionMutationLockedAfterPublish() {
	q := s.newDraft()
	question := s.textQuestion(0)
	s.Require().NoError(q.AddQuestion(question, s.now))
	s.Require().NoError(q.Publish(nil, s.now))

	err := q.AddQuestion(s.textQuestion(1), s.now)
	s.True(dErrors.HasReason(err, dErrors.CodeInvalidState, models.ReasonQuestionsLocked))

	err = q.RemoveQuestion(question.ID, s.now)
	s.True(dErrors.HasReason(err, dErrors.CodeInvalidState, models.ReasonQuestionsLocked))

	err = q.Update(models.MustTitle("New Title"), models.MustSlug("new-title"), "", models.DefaultSettings(), models.UnboundedRange(), s.now)
	s.True(dErrors.HasReason(err, dErrors.CodeInvalidState, models.ReasonNotDraft))

	s.Equal(1, q.QuestionCount())
}

func (s *QuestionnaireSuite) TestRemoveUnknownQuestion() {
	q := s.newDraft()
	err := q.RemoveQuestion(id.NewQuestionID(), s.now)
	s.True(dErrors.HasReason(err, dErrors.CodeInvalidState, models.ReasonQuestionNotFound))
}

func (s *QuestionnaireSuite) TestDuplicateQuestionRejected() {
	q := s.newDraft()
	question := s.textQuestion(0)
	s.Require().NoError(q.AddQuestion(question, s.now))
	err := q.AddQuestion(question, s.now)
	s.True(dErrors.HasReason(err, dErrors.CodeInvalidState, models.ReasonDuplicateQuestion))
}

func (s *QuestionnaireSuite) TestQuestionsOrdering() {
	q := s.newDraft()
	third := s.textQuestion(5)
	first := s.textQuestion(0)
	secondA := s.textQuestion(2)
	secondB := s.textQuestion(2)
	for _, question := range []models.Question{third, first, secondA, secondB} {
		s.Require().NoError(q.AddQuestion(question, s.now))
	}

	ordered := q.Questions()
	s.Require().Len(ordered, 4)
	s.Equal(first.ID, ordered[0].ID)
	s.Equal(secondA.ID, ordered[1].ID, "ties broken by insertion order")
	s.Equal(secondB.ID, ordered[2].ID)
	s.Equal(third.ID, ordered[3].ID)
}

func (s *QuestionnaireSuite) TestArchiveTransitions() {
	draft := s.newDraft()
	s.Require().NoError(draft.Archive(s.now))
	s.Equal(models.StatusArchived, draft.Status())

	err := draft.Archive(s.now)
	s.True(dErrors.HasReason(err, dErrors.CodeInvalidState, models.ReasonCannotTransition))

	published := s.newDraft()
	s.Require().NoError(published.AddQuestion(s.textQuestion(0), s.now))
	s.Require().NoError(published.Publish(nil, s.now))
	s.Require().NoError(published.Archive(s.now))
	s.Equal(models.StatusArchived, published.Status())

	closed := s.newDraft()
	s.Require().NoError(closed.AddQuestion(s.textQuestion(0), s.now))
	s.Require().NoError(closed.Publish(nil, s.now))
	s.Require().NoError(closed.Close(s.now))
	err = closed.Publish(nil, s.now)
	s.True(dErrors.HasReason(err, dErrors.CodeInvalidState, models.ReasonCannotTransition))
	s.Require().NoError(closed.Archive(s.now))
}

func (s *QuestionnaireSuite) TestRehydrateReplaysFacts() {
	q := s.newDraft()
	s.Require().NoError(q.AddQuestion(s.textQuestion(0), s.now))
	s.Require().NoError(q.Publish(nil, s.now.Add(time.Hour)))
	s.Require().NoError(q.Close(s.now.Add(2*time.Hour)))

	replayed, err := models.Rehydrate(q.Facts())
	s.Require().NoError(err)
	s.Equal(q.ID(), replayed.ID())
	s.Equal(models.StatusClosed, replayed.Status())
	s.Equal(q.QuestionCount(), replayed.QuestionCount())
	s.Require().NotNil(replayed.PublishedAt())
	s.Equal(s.now.Add(time.Hour), *replayed.PublishedAt())
}

func (s *QuestionnaireSuite) TestRehydrateRejectsBadStreams() {
	_, err := models.Rehydrate(nil)
	s.Require().Error(err)

	_, err = models.Rehydrate([]models.Fact{models.QuestionnaireClosed{At: s.now}})
	s.Require().Error(err)
}

func (s *QuestionnaireSuite) TestSpecificationCombinators() {
	q := s.newDraft()

	s.False(models.CanBePublished()(q))
	s.Require().NoError(q.AddQuestion(s.textQuestion(0), s.now))
	s.True(models.CanBePublished()(q))

	draftWithQuestions := models.And(models.HasStatus(models.StatusDraft), models.CanBePublished())
	s.True(draftWithQuestions(q))
	s.True(models.Not(models.IsActiveAt(s.now))(q))

	s.Require().NoError(q.Publish(nil, s.now))
	s.False(draftWithQuestions(q))
	s.True(models.Or(models.HasStatus(models.StatusDraft), models.IsActiveAt(s.now))(q))
}

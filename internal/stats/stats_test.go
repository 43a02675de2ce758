package stats_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	qmodels "canvass/internal/questionnaire/models"
	qstore "canvass/internal/questionnaire/store"
	"canvass/internal/questiontype"
	rmodels "canvass/internal/response/models"
	rstore "canvass/internal/response/store"
	"canvass/internal/stats"
	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
)

type StatsSuite struct {
	suite.Suite
	svc           *stats.Service
	responses     *rstore.MemoryStore
	questionnaire *qmodels.Questionnaire
	owner         id.OwnerID
	now           time.Time
	rating        qmodels.Question
	color         qmodels.Question
	comment       qmodels.Question
}

func TestStatsSuite(t *testing.T) {
	suite.Run(t, new(StatsSuite))
}

func (s *StatsSuite) SetupTest() {
	s.responses = rstore.NewMemoryStore()
	questionnaires := qstore.NewMemoryStore()
	s.owner = id.NewOwnerID()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	questionnaire, err := qmodels.New(
		id.NewQuestionnaireID(), s.owner,
		qmodels.MustTitle("Team Survey"), qmodels.MustSlug("team-survey"),
		"", qmodels.DefaultSettings(), qmodels.UnboundedRange(), s.now)
	s.Require().NoError(err)

	s.rating, err = qmodels.NewQuestion(
		id.NewQuestionID(), qmodels.MustQuestionText("Rate us 1-10"),
		qmodels.TypeNumber, qmodels.QuestionOptions{}, true, 0, "",
		qmodels.NewQuestionSettings(map[string]any{"min": 1, "max": 10}))
	s.Require().NoError(err)
	s.color, err = qmodels.NewQuestion(
		id.NewQuestionID(), qmodels.MustQuestionText("Favorite color"),
		qmodels.TypeRadio, qmodels.MustQuestionOptions([]string{"red", "green", "blue"}), false, 1, "",
		qmodels.NewQuestionSettings(nil))
	s.Require().NoError(err)
	s.comment, err = qmodels.NewQuestion(
		id.NewQuestionID(), qmodels.MustQuestionText("Comments"),
		qmodels.TypeTextarea, qmodels.QuestionOptions{}, false, 2, "",
		qmodels.NewQuestionSettings(nil))
	s.Require().NoError(err)

	for _, q := range []qmodels.Question{s.rating, s.color, s.comment} {
		s.Require().NoError(questionnaire.AddQuestion(q, s.now))
	}
	s.Require().NoError(questionnaire.Publish(nil, s.now))
	questionnaire.ClearFacts()
	s.Require().NoError(questionnaires.Create(context.Background(), questionnaire))
	s.questionnaire = questionnaire

	s.svc = stats.New(s.responses, questionnaires, questiontype.NewDefaultRegistry())
}

func (s *StatsSuite) submit(values map[id.QuestionID]rmodels.AnswerValue) {
	response, err := rmodels.Submit(
		id.NewResponseID(), s.questionnaire.ID(), s.questionnaire.Questions(),
		rmodels.AnonymousRespondent(), rmodels.NoIpAddress(), rmodels.UserAgent{},
		values, nil, s.now)
	s.Require().NoError(err)
	response.ClearFacts()
	s.Require().NoError(s.responses.Save(context.Background(), response, ""))
}

func (s *StatsSuite) TestSummarize() {
	s.submit(map[id.QuestionID]rmodels.AnswerValue{
		s.rating.ID:  rmodels.NumberValue(4),
		s.color.ID:   rmodels.StringValue("red"),
		s.comment.ID: rmodels.StringValue("fine"),
	})
	s.submit(map[id.QuestionID]rmodels.AnswerValue{
		s.rating.ID: rmodels.NumberValue(8),
		s.color.ID:  rmodels.StringValue("red"),
	})
	s.submit(map[id.QuestionID]rmodels.AnswerValue{
		s.rating.ID: rmodels.NumberValue(6),
		s.color.ID:  rmodels.StringValue("blue"),
	})

	summary, err := s.svc.Summarize(context.Background(), s.owner, s.questionnaire.ID())
	s.Require().NoError(err)

	s.Equal(3, summary.ResponseCount)
	s.InDelta(1.0/3.0, summary.CompletionRate, 0.001, "one of three answered every question")
	s.Require().Len(summary.Questions, 3)

	rating := summary.Questions[0]
	s.Equal(s.rating.ID, rating.QuestionID)
	s.Equal(3, rating.AnswerCount)
	s.Require().NotNil(rating.Numbers)
	s.InDelta(6, rating.Numbers.Mean, 0.001)
	s.InDelta(6, rating.Numbers.Median, 0.001)
	s.InDelta(4, rating.Numbers.Min, 0.001)
	s.InDelta(8, rating.Numbers.Max, 0.001)
	s.Nil(rating.Distribution)

	color := summary.Questions[1]
	s.Equal(3, color.AnswerCount)
	s.Equal(map[string]int{"red": 2, "blue": 1}, color.Distribution)
	s.Equal([]string{"red", "blue"}, color.TopOptions())
	s.Nil(color.Numbers)

	comment := summary.Questions[2]
	s.Equal(1, comment.AnswerCount)
	s.Equal([]string{"fine"}, comment.Samples)
}

func (s *StatsSuite) TestSummarizeEmpty() {
	summary, err := s.svc.Summarize(context.Background(), s.owner, s.questionnaire.ID())
	s.Require().NoError(err)

	s.Equal(0, summary.ResponseCount)
	s.Zero(summary.CompletionRate)
	s.Require().Len(summary.Questions, 3)
	s.Zero(summary.Questions[0].AnswerCount)
	s.Nil(summary.Questions[0].Numbers, "no answers, no descriptives")
}

func (s *StatsSuite) TestSummarizeOwnership() {
	ctx := context.Background()

	_, err := s.svc.Summarize(ctx, id.NewOwnerID(), s.questionnaire.ID())
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.svc.Summarize(ctx, s.owner, id.NewQuestionnaireID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

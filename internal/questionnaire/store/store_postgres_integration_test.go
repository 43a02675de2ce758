//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"canvass/internal/questionnaire/models"
	"canvass/internal/questionnaire/store"
	id "canvass/pkg/domain"
	"canvass/pkg/platform/sentinel"
	"canvass/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "questionnaires")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) build(title, slug string) *models.Questionnaire {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	questionnaire, err := models.New(
		id.NewQuestionnaireID(), id.NewOwnerID(),
		models.MustTitle(title), models.MustSlug(slug),
		"An instrumented survey",
		models.MustSettings(map[string]any{
			models.SettingDedupStrategy: "one_per_user",
		}),
		models.UnboundedRange(), now)
	s.Require().NoError(err)
	questionnaire.ClearFacts()
	return questionnaire
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	questionnaire := s.build("Team Survey", "team-survey")

	question, err := models.NewQuestion(
		id.NewQuestionID(), models.MustQuestionText("Rate us 1-10"),
		models.TypeNumber, models.QuestionOptions{}, true, 0, "Scale of one to ten",
		models.NewQuestionSettings(map[string]any{"min": 1, "max": 10, "integer": true}))
	s.Require().NoError(err)
	s.Require().NoError(questionnaire.AddQuestion(question, now))

	s.Require().NoError(s.store.Create(ctx, questionnaire))

	found, err := s.store.FindByID(ctx, questionnaire.ID())
	s.Require().NoError(err)
	s.Equal(questionnaire.ID(), found.ID())
	s.Equal("Team Survey", found.Title().String())
	s.Equal(models.StatusDraft, found.Status())
	s.Equal(models.DedupOnePerUser, found.Settings().DedupStrategy())

	s.Require().Equal(1, found.QuestionCount())
	got := found.Questions()[0]
	s.Equal(question.ID, got.ID)
	s.Equal(models.TypeNumber, got.Type)
	s.True(got.Required)
	min, ok := got.Settings.Float("min")
	s.True(ok)
	s.InDelta(1, min, 0.001)

	bySlug, err := s.store.FindBySlug(ctx, models.MustSlug("team-survey"))
	s.Require().NoError(err)
	s.Equal(questionnaire.ID(), bySlug.ID())
}

func (s *PostgresStoreSuite) TestSlugConflict() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.build("Team Survey", "team-survey")))
	err := s.store.Create(ctx, s.build("Shadow Survey", "team-survey"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

// TestConcurrentSlugCreate drives racing creates through the unique index:
// exactly one must win.
func (s *PostgresStoreSuite) TestConcurrentSlugCreate() {
	ctx := context.Background()
	const goroutines = 10

	var wg sync.WaitGroup
	var successCount atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.store.Create(ctx, s.build("Race Survey", "race-survey")); err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
}

func (s *PostgresStoreSuite) TestUpdateLifecycle() {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	questionnaire := s.build("Team Survey", "team-survey")
	s.Require().NoError(s.store.Create(ctx, questionnaire))

	question, err := models.NewQuestion(
		id.NewQuestionID(), models.MustQuestionText("Any feedback?"),
		models.TypeTextarea, models.QuestionOptions{}, false, 0, "",
		models.NewQuestionSettings(nil))
	s.Require().NoError(err)
	s.Require().NoError(questionnaire.AddQuestion(question, now))
	s.Require().NoError(questionnaire.Publish(nil, now.Add(time.Hour)))
	s.Require().NoError(s.store.Update(ctx, questionnaire))

	found, err := s.store.FindByID(ctx, questionnaire.ID())
	s.Require().NoError(err)
	s.Equal(models.StatusPublished, found.Status())
	s.Require().NotNil(found.PublishedAt())
	s.True(found.PublishedAt().Equal(now.Add(time.Hour)))
}

func (s *PostgresStoreSuite) TestListByOwner() {
	ctx := context.Background()
	first := s.build("First Survey", "first-survey")
	second := s.build("Second Survey", "second-survey")
	s.Require().NoError(s.store.Create(ctx, first))
	s.Require().NoError(s.store.Create(ctx, second))

	out, err := s.store.ListByOwner(ctx, first.OwnerID(), store.ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal(first.ID(), out[0].ID())

	draft := models.StatusDraft
	out, err = s.store.ListByOwner(ctx, first.OwnerID(), store.ListFilter{Status: &draft})
	s.Require().NoError(err)
	s.Len(out, 1)

	published := models.StatusPublished
	out, err = s.store.ListByOwner(ctx, first.OwnerID(), store.ListFilter{Status: &published})
	s.Require().NoError(err)
	s.Empty(out)
}

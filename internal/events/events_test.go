package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvass/internal/events"
	qmodels "canvass/internal/questionnaire/models"
	rmodels "canvass/internal/response/models"
	id "canvass/pkg/domain"
)

func TestEnvelopes(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	questionnaireID := id.NewQuestionnaireID()

	t.Run("questionnaire created", func(t *testing.T) {
		fact := qmodels.QuestionnaireCreated{
			ID:      questionnaireID,
			OwnerID: id.NewOwnerID(),
			Title:   qmodels.MustTitle("Team Survey"),
			Slug:    qmodels.MustSlug("team-survey"),
			At:      now,
		}
		out := events.Envelopes(questionnaireID.String(), fact)
		require.Len(t, out, 1)
		assert.Equal(t, qmodels.FactQuestionnaireCreated, out[0].Kind)
		assert.Equal(t, questionnaireID.String(), out[0].Key)
		assert.Equal(t, now, out[0].OccurredAt)
		assert.Equal(t, "Team Survey", out[0].Payload["title"])
		assert.Equal(t, "team-survey", out[0].Payload["slug"])
	})

	t.Run("response submitted", func(t *testing.T) {
		respondent := rmodels.MustRespondent("user", "alice")
		fact := rmodels.ResponseSubmitted{
			ID:              id.NewResponseID(),
			QuestionnaireID: questionnaireID,
			Respondent:      respondent,
			IpAddress:       rmodels.MustIpAddress("203.0.113.7"),
			Answers: []rmodels.Answer{
				{ID: id.NewAnswerID(), QuestionID: id.NewQuestionID(), Value: rmodels.NumberValue(8)},
			},
			At: now,
		}
		out := events.Envelopes(questionnaireID.String(), fact)
		require.Len(t, out, 1)
		assert.Equal(t, rmodels.FactResponseSubmitted, out[0].Kind)
		assert.Equal(t, "203.0.113.7", out[0].Payload["ip_address"])
		assert.Equal(t, map[string]any{"type": "user", "id": "alice"}, out[0].Payload["respondent"])

		answers, ok := out[0].Payload["answers"].([]map[string]any)
		require.True(t, ok)
		require.Len(t, answers, 1)
		assert.Equal(t, float64(8), answers[0]["value"])
	})

	t.Run("anonymous submission omits identity fields", func(t *testing.T) {
		fact := rmodels.ResponseSubmitted{
			ID:              id.NewResponseID(),
			QuestionnaireID: questionnaireID,
			Respondent:      rmodels.AnonymousRespondent(),
			At:              now,
		}
		out := events.Envelopes(questionnaireID.String(), fact)
		require.Len(t, out, 1)
		assert.NotContains(t, out[0].Payload, "respondent")
		assert.NotContains(t, out[0].Payload, "ip_address")
	})
}

func TestMemoryPublisher(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	questionnaireID := id.NewQuestionnaireID()
	p := events.NewMemoryPublisher()

	p.Publish(context.Background(), questionnaireID.String(),
		qmodels.QuestionnaireClosed{ID: questionnaireID, At: now},
		qmodels.QuestionnaireArchived{ID: questionnaireID, At: now.Add(time.Hour)},
	)

	out := p.Envelopes()
	require.Len(t, out, 2)
	assert.Equal(t, qmodels.FactQuestionnaireClosed, out[0].Kind)
	assert.Equal(t, qmodels.FactQuestionnaireArchived, out[1].Kind)
}

type collectSink struct {
	got chan events.Envelope
}

func (s *collectSink) Append(_ context.Context, envelope events.Envelope) error {
	s.got <- envelope
	return nil
}

func TestChannelPublisherAndWorker(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	questionnaireID := id.NewQuestionnaireID()

	inbox := make(chan events.Envelope, 8)
	sink := &collectSink{got: make(chan events.Envelope, 8)}
	worker := events.NewWorker(inbox, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	p := events.NewChannelPublisher(inbox, nil)
	p.Publish(ctx, questionnaireID.String(),
		qmodels.QuestionnaireClosed{ID: questionnaireID, At: now})

	select {
	case envelope := <-sink.got:
		assert.Equal(t, qmodels.FactQuestionnaireClosed, envelope.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not deliver the envelope")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

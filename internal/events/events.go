// Package events carries domain facts out of the write path. Facts are
// flattened into transport-agnostic envelopes; publishers decide where the
// envelopes go (Kafka, an in-process channel, a test recorder).
package events

import (
	"context"
	"time"

	qmodels "canvass/internal/questionnaire/models"
	rmodels "canvass/internal/response/models"
)

// Envelope is the wire shape of one domain fact. Key groups envelopes that
// must stay ordered relative to each other; services pass the aggregate id.
type Envelope struct {
	Kind       string         `json:"kind"`
	Key        string         `json:"key"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Publisher delivers domain facts after a state change is durably stored.
// Delivery failures must not fail the write they describe; implementations
// log and drop rather than propagate.
type Publisher interface {
	Publish(ctx context.Context, key string, facts ...qmodels.Fact)
}

// Envelopes flattens facts for transport.
func Envelopes(key string, facts ...qmodels.Fact) []Envelope {
	out := make([]Envelope, 0, len(facts))
	for _, fact := range facts {
		out = append(out, Envelope{
			Kind:       fact.Kind(),
			Key:        key,
			Payload:    payload(fact),
			OccurredAt: fact.OccurredAt(),
		})
	}
	return out
}

// payload flattens each fact of the closed fact set. Unknown facts produce an
// empty payload rather than an error: a consumer losing detail beats a write
// path failing on telemetry.
func payload(fact qmodels.Fact) map[string]any {
	switch f := fact.(type) {
	case qmodels.QuestionnaireCreated:
		return map[string]any{
			"questionnaire_id": f.ID.String(),
			"owner_id":         f.OwnerID.String(),
			"title":            f.Title.String(),
			"slug":             f.Slug.String(),
			"description":      f.Description,
			"settings":         f.Settings.Values(),
			"starts_at":        f.DateRange.StartsAt(),
			"ends_at":          f.DateRange.EndsAt(),
		}
	case qmodels.QuestionnaireUpdated:
		return map[string]any{
			"questionnaire_id": f.ID.String(),
			"title":            f.Title.String(),
			"slug":             f.Slug.String(),
			"description":      f.Description,
			"settings":         f.Settings.Values(),
			"starts_at":        f.DateRange.StartsAt(),
			"ends_at":          f.DateRange.EndsAt(),
		}
	case qmodels.QuestionnairePublished:
		return map[string]any{
			"questionnaire_id": f.ID.String(),
			"starts_at":        f.DateRange.StartsAt(),
			"ends_at":          f.DateRange.EndsAt(),
		}
	case qmodels.QuestionnaireClosed:
		return map[string]any{"questionnaire_id": f.ID.String()}
	case qmodels.QuestionnaireArchived:
		return map[string]any{"questionnaire_id": f.ID.String()}
	case qmodels.QuestionAdded:
		return map[string]any{
			"questionnaire_id": f.QuestionnaireID.String(),
			"question":         questionPayload(f.Question),
		}
	case qmodels.QuestionUpdated:
		return map[string]any{
			"questionnaire_id": f.QuestionnaireID.String(),
			"question":         questionPayload(f.Question),
		}
	case qmodels.QuestionRemoved:
		return map[string]any{
			"questionnaire_id": f.QuestionnaireID.String(),
			"question_id":      f.QuestionID.String(),
		}
	case rmodels.ResponseSubmitted:
		answers := make([]map[string]any, 0, len(f.Answers))
		for _, answer := range f.Answers {
			answers = append(answers, map[string]any{
				"id":          answer.ID.String(),
				"question_id": answer.QuestionID.String(),
				"value":       answer.Value.ToMixed(),
			})
		}
		p := map[string]any{
			"response_id":      f.ID.String(),
			"questionnaire_id": f.QuestionnaireID.String(),
			"answers":          answers,
			"metadata":         f.Metadata,
		}
		if !f.Respondent.IsAnonymous() {
			p["respondent"] = map[string]any{
				"type": f.Respondent.Type(),
				"id":   f.Respondent.ID(),
			}
		}
		if !f.IpAddress.IsZero() {
			p["ip_address"] = f.IpAddress.String()
		}
		if !f.UserAgent.IsZero() {
			p["user_agent"] = f.UserAgent.Raw()
		}
		return p
	case rmodels.AnswerCorrected:
		return map[string]any{
			"response_id": f.ResponseID.String(),
			"answer_id":   f.AnswerID.String(),
			"value":       f.Value.ToMixed(),
		}
	default:
		return map[string]any{}
	}
}

func questionPayload(q qmodels.Question) map[string]any {
	return map[string]any{
		"id":          q.ID.String(),
		"text":        q.Text.String(),
		"type":        q.Type.String(),
		"options":     q.Options.Values(),
		"required":    q.Required,
		"order":       q.Order,
		"description": q.Description,
		"settings":    q.Settings.Values(),
	}
}

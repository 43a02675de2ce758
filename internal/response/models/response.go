// Package models is the response bounded context's domain model: the
// Response aggregate, its Answer entities, and the value objects carrying
// respondent identity and answer payloads.
//
// Domain purity mirrors the questionnaire context: no I/O, no clock reads;
// time arrives as a parameter.
package models

import (
	"time"

	qmodels "canvass/internal/questionnaire/models"
	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
)

// Machine-readable sub-cases for CodeInvalidAnswer errors raised here.
const (
	ReasonMissingRequiredAnswer = "missing_required_answer"
	ReasonQuestionNotFound      = "question_not_found"
	ReasonAnswerNotFound        = "answer_not_found"
)

// Fact kinds produced by the Response aggregate.
const (
	FactResponseSubmitted = "response.submitted"
	FactAnswerCorrected   = "response.answer_corrected"
)

// Answer is a child entity of Response: one question's submitted value.
type Answer struct {
	ID         id.AnswerID
	QuestionID id.QuestionID
	Value      AnswerValue
}

// ResponseSubmitted carries the full submitted state.
type ResponseSubmitted struct {
	ID              id.ResponseID
	QuestionnaireID id.QuestionnaireID
	Respondent      Respondent
	IpAddress       IpAddress
	UserAgent       UserAgent
	Answers         []Answer
	Metadata        map[string]any
	At              time.Time
}

func (f ResponseSubmitted) Kind() string          { return FactResponseSubmitted }
func (f ResponseSubmitted) OccurredAt() time.Time { return f.At }

// AnswerCorrected records a corrective edit of one answer's value.
type AnswerCorrected struct {
	ResponseID id.ResponseID
	AnswerID   id.AnswerID
	Value      AnswerValue
	At         time.Time
}

func (f AnswerCorrected) Kind() string          { return FactAnswerCorrected }
func (f AnswerCorrected) OccurredAt() time.Time { return f.At }

// Response is the aggregate root for one submission. It references its
// questionnaire by id only; whether that questionnaire was accepting
// responses is enforced by the submitting workflow before construction.
// Once submitted it is immutable except for CorrectAnswer.
type Response struct {
	id              id.ResponseID
	questionnaireID id.QuestionnaireID
	respondent      Respondent
	ipAddress       IpAddress
	userAgent       UserAgent
	answers         map[id.QuestionID]Answer
	order           []id.QuestionID
	metadata        map[string]any
	submittedAt     time.Time

	facts []qmodels.Fact
}

// Submit constructs a Response against a snapshot of the target
// questionnaire's questions. It enforces the submission-shape invariants:
// every required question must carry a non-null answer, and every answer must
// reference a question that exists on the questionnaire. Per-question value
// validity (type, range, option membership) is the validation strategy's job
// and happens before this call.
func Submit(responseID id.ResponseID, questionnaireID id.QuestionnaireID, questions []qmodels.Question, respondent Respondent, ipAddress IpAddress, userAgent UserAgent, values map[id.QuestionID]AnswerValue, metadata map[string]any, now time.Time) (*Response, error) {
	if responseID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "response id is required")
	}
	if questionnaireID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "questionnaire id is required")
	}

	known := make(map[id.QuestionID]qmodels.Question, len(questions))
	for _, question := range questions {
		known[question.ID] = question
	}
	for questionID := range values {
		if _, ok := known[questionID]; !ok {
			return nil, dErrors.NewWithReason(dErrors.CodeInvalidAnswer, ReasonQuestionNotFound,
				"answer references unknown question "+questionID.String())
		}
	}
	for _, question := range questions {
		if !question.Required {
			continue
		}
		value, ok := values[question.ID]
		if !ok || value.IsNull() {
			return nil, dErrors.NewWithReason(dErrors.CodeInvalidAnswer, ReasonMissingRequiredAnswer,
				"question \""+question.Text.String()+"\" requires an answer")
		}
	}

	answers := make([]Answer, 0, len(values))
	for _, question := range questions {
		value, ok := values[question.ID]
		if !ok {
			continue
		}
		answers = append(answers, Answer{
			ID:         id.NewAnswerID(),
			QuestionID: question.ID,
			Value:      value,
		})
	}

	r := &Response{}
	r.record(ResponseSubmitted{
		ID:              responseID,
		QuestionnaireID: questionnaireID,
		Respondent:      respondent,
		IpAddress:       ipAddress,
		UserAgent:       userAgent,
		Answers:         answers,
		Metadata:        metadata,
		At:              now,
	})
	return r, nil
}

// RestoreResponse rebuilds an aggregate from persisted state without
// producing facts. Stores are the only intended caller.
func RestoreResponse(responseID id.ResponseID, questionnaireID id.QuestionnaireID, respondent Respondent, ipAddress IpAddress, userAgent UserAgent, answers []Answer, metadata map[string]any, submittedAt time.Time) *Response {
	r := &Response{
		id:              responseID,
		questionnaireID: questionnaireID,
		respondent:      respondent,
		ipAddress:       ipAddress,
		userAgent:       userAgent,
		answers:         make(map[id.QuestionID]Answer, len(answers)),
		metadata:        metadata,
		submittedAt:     submittedAt,
	}
	for _, answer := range answers {
		r.answers[answer.QuestionID] = answer
		r.order = append(r.order, answer.QuestionID)
	}
	return r
}

func (r *Response) ID() id.ResponseID                   { return r.id }
func (r *Response) QuestionnaireID() id.QuestionnaireID { return r.questionnaireID }
func (r *Response) Respondent() Respondent              { return r.respondent }
func (r *Response) IpAddress() IpAddress                { return r.ipAddress }
func (r *Response) UserAgent() UserAgent                { return r.userAgent }
func (r *Response) SubmittedAt() time.Time              { return r.submittedAt }

func (r *Response) Metadata() map[string]any {
	out := make(map[string]any, len(r.metadata))
	for k, v := range r.metadata {
		out[k] = v
	}
	return out
}

// Answers returns the answers in submission order.
func (r *Response) Answers() []Answer {
	out := make([]Answer, 0, len(r.order))
	for _, questionID := range r.order {
		out = append(out, r.answers[questionID])
	}
	return out
}

// HasAnswer reports whether the response answered the question. O(1).
func (r *Response) HasAnswer(questionID id.QuestionID) bool {
	_, ok := r.answers[questionID]
	return ok
}

// GetAnswer looks an answer up by question id. O(1).
func (r *Response) GetAnswer(questionID id.QuestionID) (Answer, bool) {
	answer, ok := r.answers[questionID]
	return answer, ok
}

// CorrectAnswer replaces one answer's value. This is the only mutation a
// submitted response supports, reserved for corrective edits.
func (r *Response) CorrectAnswer(answerID id.AnswerID, value AnswerValue, now time.Time) error {
	for _, answer := range r.answers {
		if answer.ID == answerID {
			r.record(AnswerCorrected{ResponseID: r.id, AnswerID: answerID, Value: value, At: now})
			return nil
		}
	}
	return dErrors.NewWithReason(dErrors.CodeInvalidAnswer, ReasonAnswerNotFound,
		"answer "+answerID.String()+" does not exist on this response")
}

// IsComplete reports whether this response answered every question on the
// given questionnaire, required or not. Distinct from the stricter
// required-answer check applied at submission; used for analytics.
func (r *Response) IsComplete(questionnaire *qmodels.Questionnaire) bool {
	if r.questionnaireID != questionnaire.ID() {
		return false
	}
	for _, question := range questionnaire.Questions() {
		answer, ok := r.answers[question.ID]
		if !ok || answer.Value.IsNull() {
			return false
		}
	}
	return true
}

// Facts returns the facts recorded since construction or the last ClearFacts.
func (r *Response) Facts() []qmodels.Fact { return append([]qmodels.Fact(nil), r.facts...) }

func (r *Response) ClearFacts() { r.facts = nil }

func (r *Response) record(f qmodels.Fact) {
	if err := r.apply(f); err != nil {
		panic(err)
	}
	r.facts = append(r.facts, f)
}

// apply is the exhaustive switch over the response fact set.
func (r *Response) apply(f qmodels.Fact) error {
	switch fact := f.(type) {
	case ResponseSubmitted:
		r.id = fact.ID
		r.questionnaireID = fact.QuestionnaireID
		r.respondent = fact.Respondent
		r.ipAddress = fact.IpAddress
		r.userAgent = fact.UserAgent
		r.metadata = fact.Metadata
		r.submittedAt = fact.At
		r.answers = make(map[id.QuestionID]Answer, len(fact.Answers))
		r.order = r.order[:0]
		for _, answer := range fact.Answers {
			r.answers[answer.QuestionID] = answer
			r.order = append(r.order, answer.QuestionID)
		}
	case AnswerCorrected:
		for questionID, answer := range r.answers {
			if answer.ID == fact.AnswerID {
				answer.Value = fact.Value
				r.answers[questionID] = answer
			}
		}
	default:
		return dErrors.New(dErrors.CodeInternal, "unknown response fact: "+f.Kind())
	}
	return nil
}

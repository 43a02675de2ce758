// Package models is the questionnaire bounded context's domain model: the
// aggregate, its child Question entities, the value objects they are built
// from, and the facts their transitions produce.
//
// Domain purity: no I/O, no context.Context, no time.Now(). Time is always
// received as a parameter from the application layer.
package models

import (
	"fmt"
	"sort"
	"time"

	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
)

// Machine-readable sub-cases for CodeInvalidState errors raised here.
const (
	ReasonCannotTransition       = "cannot_transition"
	ReasonPublishWithoutQuestion = "cannot_publish_without_questions"
	ReasonQuestionsLocked        = "questions_locked"
	ReasonNotDraft               = "not_draft"
	ReasonQuestionNotFound       = "question_not_found"
	ReasonDuplicateQuestion      = "duplicate_question"
)

// Questionnaire is the aggregate root. All invariants — the status state
// machine, publish preconditions, question mutation rules — are enforced by
// its methods only. Every successful transition records a Fact; a failed call
// leaves visible state untouched.
type Questionnaire struct {
	id          id.QuestionnaireID
	ownerID     id.OwnerID
	title       Title
	slug        Slug
	description string
	status      Status
	dateRange   DateRange
	settings    Settings
	questions   []Question
	createdAt   time.Time
	updatedAt   time.Time
	publishedAt *time.Time
	closedAt    *time.Time

	facts []Fact
}

// New creates a Draft questionnaire and records QuestionnaireCreated.
func New(questionnaireID id.QuestionnaireID, ownerID id.OwnerID, title Title, slug Slug, description string, settings Settings, dateRange DateRange, now time.Time) (*Questionnaire, error) {
	if questionnaireID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "questionnaire id is required")
	}
	if ownerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "owner id is required")
	}
	if title.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if slug.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "slug is required")
	}
	q := &Questionnaire{}
	q.record(QuestionnaireCreated{
		ID:          questionnaireID,
		OwnerID:     ownerID,
		Title:       title,
		Slug:        slug,
		Description: description,
		Settings:    settings,
		DateRange:   dateRange,
		At:          now,
	})
	return q, nil
}

// Restore rebuilds an aggregate from persisted state without producing facts.
// Stores are the only intended caller.
func Restore(questionnaireID id.QuestionnaireID, ownerID id.OwnerID, title Title, slug Slug, description string, status Status, dateRange DateRange, settings Settings, questions []Question, createdAt, updatedAt time.Time, publishedAt, closedAt *time.Time) *Questionnaire {
	return &Questionnaire{
		id:          questionnaireID,
		ownerID:     ownerID,
		title:       title,
		slug:        slug,
		description: description,
		status:      status,
		dateRange:   dateRange,
		settings:    settings,
		questions:   append([]Question(nil), questions...),
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		publishedAt: cloneTime(publishedAt),
		closedAt:    cloneTime(closedAt),
	}
}

// Rehydrate replays a fact stream through the apply switch. The stream must
// begin with QuestionnaireCreated.
func Rehydrate(facts []Fact) (*Questionnaire, error) {
	if len(facts) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "cannot rehydrate from an empty fact stream")
	}
	if _, ok := facts[0].(QuestionnaireCreated); !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "fact stream must begin with "+FactQuestionnaireCreated)
	}
	q := &Questionnaire{}
	for _, f := range facts {
		if err := q.apply(f); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func (q *Questionnaire) ID() id.QuestionnaireID   { return q.id }
func (q *Questionnaire) OwnerID() id.OwnerID      { return q.ownerID }
func (q *Questionnaire) Title() Title             { return q.title }
func (q *Questionnaire) Slug() Slug               { return q.slug }
func (q *Questionnaire) Description() string      { return q.description }
func (q *Questionnaire) Status() Status           { return q.status }
func (q *Questionnaire) DateRange() DateRange     { return q.dateRange }
func (q *Questionnaire) Settings() Settings       { return q.settings }
func (q *Questionnaire) CreatedAt() time.Time     { return q.createdAt }
func (q *Questionnaire) UpdatedAt() time.Time     { return q.updatedAt }
func (q *Questionnaire) PublishedAt() *time.Time  { return cloneTime(q.publishedAt) }
func (q *Questionnaire) ClosedAt() *time.Time     { return cloneTime(q.closedAt) }
func (q *Questionnaire) QuestionCount() int       { return len(q.questions) }

// Questions returns the questions ordered by their Order field, ties broken
// by insertion order.
func (q *Questionnaire) Questions() []Question {
	out := append([]Question(nil), q.questions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Question looks a question up by id.
func (q *Questionnaire) Question(questionID id.QuestionID) (Question, bool) {
	for _, question := range q.questions {
		if question.ID == questionID {
			return question, true
		}
	}
	return Question{}, false
}

// HasQuestion reports whether the aggregate carries the given question.
func (q *Questionnaire) HasQuestion(questionID id.QuestionID) bool {
	_, ok := q.Question(questionID)
	return ok
}

// IsActive reports whether the questionnaire accepts responses at the given
// instant: Published and inside the date range, bounds inclusive. Every
// "accepting responses" check funnels through here; the result depends on the
// clock, so it is never cached.
func (q *Questionnaire) IsActive(at time.Time) bool {
	return q.status == StatusPublished && q.dateRange.Contains(at)
}

// AcceptsModifications reports whether title/description/settings/date-range
// edits are allowed. Only Draft accepts them; Closed and Archived reject
// edits just like Published.
func (q *Questionnaire) AcceptsModifications() bool {
	return q.status == StatusDraft
}

// Update replaces the editable fields while in Draft.
func (q *Questionnaire) Update(title Title, slug Slug, description string, settings Settings, dateRange DateRange, now time.Time) error {
	if !q.AcceptsModifications() {
		return dErrors.NewWithReason(dErrors.CodeInvalidState, ReasonNotDraft,
			fmt.Sprintf("cannot modify a %s questionnaire", q.status))
	}
	if title.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if slug.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "slug is required")
	}
	q.record(QuestionnaireUpdated{
		ID:          q.id,
		Title:       title,
		Slug:        slug,
		Description: description,
		Settings:    settings,
		DateRange:   dateRange,
		At:          now,
	})
	return nil
}

// AddQuestion appends a question while in Draft. Question ids are unique
// within the aggregate.
func (q *Questionnaire) AddQuestion(question Question, now time.Time) error {
	if !q.AcceptsModifications() {
		return dErrors.NewWithReason(dErrors.CodeInvalidState, ReasonQuestionsLocked,
			fmt.Sprintf("cannot add questions to a %s questionnaire", q.status))
	}
	if q.HasQuestion(question.ID) {
		return dErrors.NewWithReason(dErrors.CodeInvalidState, ReasonDuplicateQuestion,
			"question "+question.ID.String()+" already exists on this questionnaire")
	}
	q.record(QuestionAdded{QuestionnaireID: q.id, Question: question, At: now})
	return nil
}

// RemoveQuestion deletes a question while in Draft.
func (q *Questionnaire) RemoveQuestion(questionID id.QuestionID, now time.Time) error {
	if !q.AcceptsModifications() {
		return dErrors.NewWithReason(dErrors.CodeInvalidState, ReasonQuestionsLocked,
			fmt.Sprintf("cannot remove questions from a %s questionnaire", q.status))
	}
	if !q.HasQuestion(questionID) {
		return dErrors.NewWithReason(dErrors.CodeInvalidState, ReasonQuestionNotFound,
			"question "+questionID.String()+" does not exist on this questionnaire")
	}
	q.record(QuestionRemoved{QuestionnaireID: q.id, QuestionID: questionID, At: now})
	return nil
}

// UpdateQuestion replaces an existing question in place while in Draft.
func (q *Questionnaire) UpdateQuestion(question Question, now time.Time) error {
	if !q.AcceptsModifications() {
		return dErrors.NewWithReason(dErrors.CodeInvalidState, ReasonQuestionsLocked,
			fmt.Sprintf("cannot update questions on a %s questionnaire", q.status))
	}
	if !q.HasQuestion(question.ID) {
		return dErrors.NewWithReason(dErrors.CodeInvalidState, ReasonQuestionNotFound,
			"question "+question.ID.String()+" does not exist on this questionnaire")
	}
	q.record(QuestionUpdated{QuestionnaireID: q.id, Question: question, At: now})
	return nil
}

// Publish moves Draft to Published. Requires at least one question. A new
// date range may be attached; pass nil to keep the current one. publishedAt
// is set to now.
func (q *Questionnaire) Publish(window *DateRange, now time.Time) error {
	if !q.status.CanTransitionTo(StatusPublished) {
		return dErrors.NewWithReason(dErrors.CodeInvalidState, ReasonCannotTransition,
			fmt.Sprintf("cannot publish a %s questionnaire", q.status))
	}
	if len(q.questions) == 0 {
		return dErrors.NewWithReason(dErrors.CodeInvalidState, ReasonPublishWithoutQuestion,
			"cannot publish a questionnaire without questions")
	}
	dateRange := q.dateRange
	if window != nil {
		dateRange = *window
	}
	q.record(QuestionnairePublished{ID: q.id, DateRange: dateRange, At: now})
	return nil
}

// Close moves Published to Closed and sets closedAt.
func (q *Questionnaire) Close(now time.Time) error {
	if !q.status.CanTransitionTo(StatusClosed) {
		return dErrors.NewWithReason(dErrors.CodeInvalidState, ReasonCannotTransition,
			fmt.Sprintf("cannot close a %s questionnaire", q.status))
	}
	q.record(QuestionnaireClosed{ID: q.id, At: now})
	return nil
}

// Archive moves any non-terminal status to Archived.
func (q *Questionnaire) Archive(now time.Time) error {
	if !q.status.CanTransitionTo(StatusArchived) {
		return dErrors.NewWithReason(dErrors.CodeInvalidState, ReasonCannotTransition,
			fmt.Sprintf("cannot archive a %s questionnaire", q.status))
	}
	q.record(QuestionnaireArchived{ID: q.id, At: now})
	return nil
}

// Facts returns the facts recorded since construction or the last ClearFacts.
func (q *Questionnaire) Facts() []Fact { return append([]Fact(nil), q.facts...) }

// ClearFacts drains the recorded facts; callers do this after handing them to
// the publisher.
func (q *Questionnaire) ClearFacts() { q.facts = nil }

// record applies a fact and appends it to the pending list. Callers validate
// before recording, so apply cannot fail here.
func (q *Questionnaire) record(f Fact) {
	if err := q.apply(f); err != nil {
		panic(err)
	}
	q.facts = append(q.facts, f)
}

// apply is the exhaustive switch over the closed fact set. It performs no
// validation: facts describe transitions that already happened.
func (q *Questionnaire) apply(f Fact) error {
	switch fact := f.(type) {
	case QuestionnaireCreated:
		q.id = fact.ID
		q.ownerID = fact.OwnerID
		q.title = fact.Title
		q.slug = fact.Slug
		q.description = fact.Description
		q.settings = fact.Settings
		q.dateRange = fact.DateRange
		q.status = StatusDraft
		q.createdAt = fact.At
		q.updatedAt = fact.At
	case QuestionnaireUpdated:
		q.title = fact.Title
		q.slug = fact.Slug
		q.description = fact.Description
		q.settings = fact.Settings
		q.dateRange = fact.DateRange
		q.updatedAt = fact.At
	case QuestionnairePublished:
		q.status = StatusPublished
		q.dateRange = fact.DateRange
		at := fact.At
		q.publishedAt = &at
		q.updatedAt = fact.At
	case QuestionnaireClosed:
		q.status = StatusClosed
		at := fact.At
		q.closedAt = &at
		q.updatedAt = fact.At
	case QuestionnaireArchived:
		q.status = StatusArchived
		q.updatedAt = fact.At
	case QuestionAdded:
		q.questions = append(q.questions, fact.Question)
		q.updatedAt = fact.At
	case QuestionRemoved:
		kept := q.questions[:0]
		for _, question := range q.questions {
			if question.ID != fact.QuestionID {
				kept = append(kept, question)
			}
		}
		q.questions = kept
		q.updatedAt = fact.At
	case QuestionUpdated:
		for i, question := range q.questions {
			if question.ID == fact.Question.ID {
				q.questions[i] = fact.Question
			}
		}
		q.updatedAt = fact.At
	default:
		return dErrors.New(dErrors.CodeInternal, "unknown questionnaire fact: "+f.Kind())
	}
	return nil
}

package models

import (
	"time"

	id "canvass/pkg/domain"
)

// Fact kinds produced by the Questionnaire aggregate. The set is closed: the
// aggregate's apply switch enumerates exactly these.
const (
	FactQuestionnaireCreated   = "questionnaire.created"
	FactQuestionnaireUpdated   = "questionnaire.updated"
	FactQuestionnairePublished = "questionnaire.published"
	FactQuestionnaireClosed    = "questionnaire.closed"
	FactQuestionnaireArchived  = "questionnaire.archived"
	FactQuestionAdded          = "questionnaire.question_added"
	FactQuestionRemoved        = "questionnaire.question_removed"
	FactQuestionUpdated        = "questionnaire.question_updated"
)

// Fact is a domain fact produced by an aggregate transition. Facts carry the
// post-transition state a read model needs; persistence of a durable log is a
// collaborator concern, not modeled here.
type Fact interface {
	Kind() string
	OccurredAt() time.Time
}

type QuestionnaireCreated struct {
	ID          id.QuestionnaireID
	OwnerID     id.OwnerID
	Title       Title
	Slug        Slug
	Description string
	Settings    Settings
	DateRange   DateRange
	At          time.Time
}

func (f QuestionnaireCreated) Kind() string          { return FactQuestionnaireCreated }
func (f QuestionnaireCreated) OccurredAt() time.Time { return f.At }

type QuestionnaireUpdated struct {
	ID          id.QuestionnaireID
	Title       Title
	Slug        Slug
	Description string
	Settings    Settings
	DateRange   DateRange
	At          time.Time
}

func (f QuestionnaireUpdated) Kind() string          { return FactQuestionnaireUpdated }
func (f QuestionnaireUpdated) OccurredAt() time.Time { return f.At }

type QuestionnairePublished struct {
	ID        id.QuestionnaireID
	DateRange DateRange
	At        time.Time
}

func (f QuestionnairePublished) Kind() string          { return FactQuestionnairePublished }
func (f QuestionnairePublished) OccurredAt() time.Time { return f.At }

type QuestionnaireClosed struct {
	ID id.QuestionnaireID
	At time.Time
}

func (f QuestionnaireClosed) Kind() string          { return FactQuestionnaireClosed }
func (f QuestionnaireClosed) OccurredAt() time.Time { return f.At }

type QuestionnaireArchived struct {
	ID id.QuestionnaireID
	At time.Time
}

func (f QuestionnaireArchived) Kind() string          { return FactQuestionnaireArchived }
func (f QuestionnaireArchived) OccurredAt() time.Time { return f.At }

type QuestionAdded struct {
	QuestionnaireID id.QuestionnaireID
	Question        Question
	At              time.Time
}

func (f QuestionAdded) Kind() string          { return FactQuestionAdded }
func (f QuestionAdded) OccurredAt() time.Time { return f.At }

type QuestionRemoved struct {
	QuestionnaireID id.QuestionnaireID
	QuestionID      id.QuestionID
	At              time.Time
}

func (f QuestionRemoved) Kind() string          { return FactQuestionRemoved }
func (f QuestionRemoved) OccurredAt() time.Time { return f.At }

type QuestionUpdated struct {
	QuestionnaireID id.QuestionnaireID
	Question        Question
	At              time.Time
}

func (f QuestionUpdated) Kind() string          { return FactQuestionUpdated }
func (f QuestionUpdated) OccurredAt() time.Time { return f.At }

package handler

import (
	"time"

	qmodels "canvass/internal/questionnaire/models"
	"canvass/internal/response/models"
)

type answerView struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Value      any    `json:"value"`
}

type respondentView struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type responseView struct {
	ID              string          `json:"id"`
	QuestionnaireID string          `json:"questionnaire_id"`
	Respondent      *respondentView `json:"respondent,omitempty"`
	Answers         []answerView    `json:"answers"`
	SubmittedAt     time.Time       `json:"submitted_at"`
}

func toResponseView(response *models.Response) responseView {
	answers := make([]answerView, 0, len(response.Answers()))
	for _, answer := range response.Answers() {
		answers = append(answers, answerView{
			ID:         answer.ID.String(),
			QuestionID: answer.QuestionID.String(),
			Value:      answer.Value.ToMixed(),
		})
	}

	view := responseView{
		ID:              response.ID().String(),
		QuestionnaireID: response.QuestionnaireID().String(),
		Answers:         answers,
		SubmittedAt:     response.SubmittedAt(),
	}
	if respondent := response.Respondent(); !respondent.IsAnonymous() {
		view.Respondent = &respondentView{
			Type: respondent.Type(),
			ID:   respondent.ID(),
		}
	}
	return view
}

// publicQuestionView omits owner-only detail like per-question settings.
type publicQuestionView struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Type        string   `json:"type"`
	Options     []string `json:"options,omitempty"`
	Required    bool     `json:"required"`
	Order       int      `json:"order"`
	Description string   `json:"description,omitempty"`
}

type publicQuestionnaireView struct {
	Slug        string               `json:"slug"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Status      string               `json:"status"`
	StartsAt    *time.Time           `json:"starts_at,omitempty"`
	EndsAt      *time.Time           `json:"ends_at,omitempty"`
	Questions   []publicQuestionView `json:"questions"`
}

func toPublicQuestionnaireView(questionnaire *qmodels.Questionnaire) publicQuestionnaireView {
	questions := questionnaire.Questions()
	views := make([]publicQuestionView, 0, len(questions))
	for _, question := range questions {
		view := publicQuestionView{
			ID:          question.ID.String(),
			Text:        question.Text.String(),
			Type:        string(question.Type),
			Required:    question.Required,
			Order:       question.Order,
			Description: question.Description,
		}
		if !question.Options.IsEmpty() {
			view.Options = question.Options.Values()
		}
		views = append(views, view)
	}
	return publicQuestionnaireView{
		Slug:        questionnaire.Slug().String(),
		Title:       questionnaire.Title().String(),
		Description: questionnaire.Description(),
		Status:      questionnaire.Status().String(),
		StartsAt:    questionnaire.DateRange().StartsAt(),
		EndsAt:      questionnaire.DateRange().EndsAt(),
		Questions:   views,
	}
}

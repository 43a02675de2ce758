package handler

import (
	"time"

	"canvass/internal/questionnaire/models"
	"canvass/internal/stats"
)

type questionView struct {
	ID          string         `json:"id"`
	Text        string         `json:"text"`
	Type        string         `json:"type"`
	Options     []string       `json:"options,omitempty"`
	Required    bool           `json:"required"`
	Order       int            `json:"order"`
	Description string         `json:"description,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

type questionnaireView struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      string         `json:"status"`
	Settings    map[string]any `json:"settings,omitempty"`
	StartsAt    *time.Time     `json:"starts_at,omitempty"`
	EndsAt      *time.Time     `json:"ends_at,omitempty"`
	Questions   []questionView `json:"questions"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	ClosedAt    *time.Time     `json:"closed_at,omitempty"`
}

func toQuestionView(question models.Question) questionView {
	view := questionView{
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
	if settings := question.Settings.Values(); len(settings) > 0 {
		view.Settings = settings
	}
	return view
}

func toQuestionnaireView(questionnaire *models.Questionnaire) questionnaireView {
	questions := questionnaire.Questions()
	views := make([]questionView, 0, len(questions))
	for _, question := range questions {
		views = append(views, toQuestionView(question))
	}

	view := questionnaireView{
		ID:          questionnaire.ID().String(),
		Slug:        questionnaire.Slug().String(),
		Title:       questionnaire.Title().String(),
		Description: questionnaire.Description(),
		Status:      questionnaire.Status().String(),
		StartsAt:    questionnaire.DateRange().StartsAt(),
		EndsAt:      questionnaire.DateRange().EndsAt(),
		Questions:   views,
		CreatedAt:   questionnaire.CreatedAt(),
		UpdatedAt:   questionnaire.UpdatedAt(),
		PublishedAt: questionnaire.PublishedAt(),
		ClosedAt:    questionnaire.ClosedAt(),
	}
	if settings := questionnaire.Settings().Values(); len(settings) > 0 {
		view.Settings = settings
	}
	return view
}

type numericView struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

type questionSummaryView struct {
	QuestionID   string         `json:"question_id"`
	Text         string         `json:"text"`
	Type         string         `json:"type"`
	AnswerCount  int            `json:"answer_count"`
	Distribution map[string]int `json:"distribution,omitempty"`
	Numbers      *numericView   `json:"numbers,omitempty"`
	Samples      []string       `json:"samples,omitempty"`
}

type summaryView struct {
	QuestionnaireID string                `json:"questionnaire_id"`
	ResponseCount   int                   `json:"response_count"`
	CompletionRate  float64               `json:"completion_rate"`
	Questions       []questionSummaryView `json:"questions"`
}

func toSummaryView(summary *stats.Summary) summaryView {
	questions := make([]questionSummaryView, 0, len(summary.Questions))
	for _, qs := range summary.Questions {
		view := questionSummaryView{
			QuestionID:   qs.QuestionID.String(),
			Text:         qs.Text,
			Type:         string(qs.Type),
			AnswerCount:  qs.AnswerCount,
			Distribution: qs.Distribution,
			Samples:      qs.Samples,
		}
		if qs.Numbers != nil {
			view.Numbers = &numericView{
				Mean:   qs.Numbers.Mean,
				Median: qs.Numbers.Median,
				Min:    qs.Numbers.Min,
				Max:    qs.Numbers.Max,
			}
		}
		questions = append(questions, view)
	}
	return summaryView{
		QuestionnaireID: summary.QuestionnaireID.String(),
		ResponseCount:   summary.ResponseCount,
		CompletionRate:  summary.CompletionRate,
		Questions:       questions,
	}
}

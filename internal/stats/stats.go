// Package stats aggregates stored responses into per-questionnaire summaries:
// answer counts, option distributions, and numeric descriptives. Summaries are
// computed on demand from the response store, never cached.
package stats

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	qmodels "canvass/internal/questionnaire/models"
	qstore "canvass/internal/questionnaire/store"
	"canvass/internal/questiontype"
	rmodels "canvass/internal/response/models"
	rstore "canvass/internal/response/store"
	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
	"canvass/pkg/platform/sentinel"
)

// sampleLimit caps the formatted answers carried per question.
const sampleLimit = 5

// Summary describes all responses to one questionnaire.
type Summary struct {
	QuestionnaireID id.QuestionnaireID
	ResponseCount   int
	// CompletionRate is the fraction of responses that answered every
	// question, in [0, 1]. Zero when there are no responses.
	CompletionRate float64
	Questions      []QuestionSummary
}

// QuestionSummary describes the answers one question received.
type QuestionSummary struct {
	QuestionID  id.QuestionID
	Text        string
	Type        qmodels.QuestionType
	AnswerCount int
	// Distribution counts selections per option. Only set for choice
	// questions.
	Distribution map[string]int
	// Numbers holds descriptives over numeric answers. Only set for number
	// questions with at least one answer.
	Numbers *NumericSummary
	// Samples holds the first few answers rendered through the question
	// type's display format.
	Samples []string
}

// NumericSummary holds descriptive statistics over numeric answers.
type NumericSummary struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
}

// Service computes summaries for questionnaire owners.
type Service struct {
	responses      rstore.Store
	questionnaires qstore.Store
	registry       *questiontype.Registry
	logger         *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(responses rstore.Store, questionnaires qstore.Store, registry *questiontype.Registry, opts ...Option) *Service {
	s := &Service{
		responses:      responses,
		questionnaires: questionnaires,
		registry:       registry,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize builds the summary for the owner's questionnaire. Question
// summaries are computed concurrently, one goroutine per question.
func (s *Service) Summarize(ctx context.Context, ownerID id.OwnerID, questionnaireID id.QuestionnaireID) (*Summary, error) {
	questionnaire, err := s.questionnaires.FindByID(ctx, questionnaireID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "questionnaire not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load questionnaire")
	}
	if questionnaire.OwnerID() != ownerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "questionnaire belongs to another owner")
	}

	responses, err := s.responses.ListByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list responses")
	}

	summary := &Summary{
		QuestionnaireID: questionnaireID,
		ResponseCount:   len(responses),
		CompletionRate:  completionRate(questionnaire, responses),
	}

	questions := questionnaire.Questions()
	summary.Questions = make([]QuestionSummary, len(questions))
	group, _ := errgroup.WithContext(ctx)
	for i, question := range questions {
		i, question := i, question
		group.Go(func() error {
			qs, err := s.summarizeQuestion(question, responses)
			if err != nil {
				return err
			}
			summary.Questions[i] = qs
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "summary computed",
		"questionnaire_id", questionnaireID.String(),
		"responses", summary.ResponseCount)
	return summary, nil
}

func (s *Service) summarizeQuestion(question qmodels.Question, responses []*rmodels.Response) (QuestionSummary, error) {
	descriptor, err := s.registry.GetOrFail(question.Type)
	if err != nil {
		return QuestionSummary{}, err
	}

	qs := QuestionSummary{
		QuestionID: question.ID,
		Text:       question.Text.String(),
		Type:       question.Type,
	}

	var numbers []float64
	for _, response := range responses {
		answer, ok := answerFor(response, question.ID)
		if !ok || answer.Value.IsNull() {
			continue
		}
		qs.AnswerCount++
		if len(qs.Samples) < sampleLimit {
			qs.Samples = append(qs.Samples, descriptor.FormatValue(answer.Value, question))
		}
		if question.Type.IsChoice() {
			tallyChoice(&qs, answer.Value)
		}
		if question.Type == qmodels.TypeNumber {
			if n, ok := answer.Value.AsNumber(); ok {
				numbers = append(numbers, n)
			}
		}
	}

	if len(numbers) > 0 {
		qs.Numbers, err = describe(numbers)
		if err != nil {
			return QuestionSummary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute numeric summary")
		}
	}
	return qs, nil
}

func answerFor(response *rmodels.Response, questionID id.QuestionID) (rmodels.Answer, bool) {
	for _, answer := range response.Answers() {
		if answer.QuestionID == questionID {
			return answer, true
		}
	}
	return rmodels.Answer{}, false
}

func tallyChoice(qs *QuestionSummary, value rmodels.AnswerValue) {
	if qs.Distribution == nil {
		qs.Distribution = make(map[string]int)
	}
	if items, ok := value.AsArray(); ok {
		for _, item := range items {
			qs.Distribution[item]++
		}
		return
	}
	if s, ok := value.AsString(); ok {
		qs.Distribution[s]++
	}
}

func describe(numbers []float64) (*NumericSummary, error) {
	data := mstats.Float64Data(numbers)
	mean, err := mstats.Mean(data)
	if err != nil {
		return nil, err
	}
	median, err := mstats.Median(data)
	if err != nil {
		return nil, err
	}
	min, err := mstats.Min(data)
	if err != nil {
		return nil, err
	}
	max, err := mstats.Max(data)
	if err != nil {
		return nil, err
	}
	return &NumericSummary{Mean: mean, Median: median, Min: min, Max: max}, nil
}

func completionRate(questionnaire *qmodels.Questionnaire, responses []*rmodels.Response) float64 {
	if len(responses) == 0 {
		return 0
	}
	complete := 0
	for _, response := range responses {
		if response.IsComplete(questionnaire) {
			complete++
		}
	}
	return float64(complete) / float64(len(responses))
}

// TopOptions returns a question's options ordered by selection count, most
// popular first. Ties break alphabetically for stable output.
func (qs QuestionSummary) TopOptions() []string {
	options := make([]string, 0, len(qs.Distribution))
	for option := range qs.Distribution {
		options = append(options, option)
	}
	sort.Slice(options, func(i, j int) bool {
		if qs.Distribution[options[i]] != qs.Distribution[options[j]] {
			return qs.Distribution[options[i]] > qs.Distribution[options[j]]
		}
		return options[i] < options[j]
	})
	return options
}

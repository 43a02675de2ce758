package validation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qmodels "canvass/internal/questionnaire/models"
	"canvass/internal/questiontype"
	rmodels "canvass/internal/response/models"
	"canvass/internal/validation"
	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
)

type fixture struct {
	questionnaire *qmodels.Questionnaire
	rating        qmodels.Question
	color         qmodels.Question
	toppings      qmodels.Question
	comment       qmodels.Question
}

func buildFixture(t *testing.T) fixture {
	t.Helper()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	questionnaire, err := qmodels.New(
		id.NewQuestionnaireID(), id.NewOwnerID(),
		qmodels.MustTitle("Pizza Feedback"), qmodels.MustSlug("pizza-feedback"),
		"", qmodels.DefaultSettings(), qmodels.UnboundedRange(), now)
	require.NoError(t, err)

	rating, err := qmodels.NewQuestion(
		id.NewQuestionID(), qmodels.MustQuestionText("Rate us 1-10"),
		qmodels.TypeNumber, qmodels.QuestionOptions{}, true, 0, "",
		qmodels.NewQuestionSettings(map[string]any{"min": 1, "max": 10, "integer": true}))
	require.NoError(t, err)

	color, err := qmodels.NewQuestion(
		id.NewQuestionID(), qmodels.MustQuestionText("Favorite color"),
		qmodels.TypeRadio, qmodels.MustQuestionOptions([]string{"red", "green", "blue"}), true, 1, "",
		qmodels.NewQuestionSettings(nil))
	require.NoError(t, err)

	toppings, err := qmodels.NewQuestion(
		id.NewQuestionID(), qmodels.MustQuestionText("Toppings"),
		qmodels.TypeCheckbox, qmodels.MustQuestionOptions([]string{"olives", "ham"}), false, 2, "",
		qmodels.NewQuestionSettings(nil))
	require.NoError(t, err)

	comment, err := qmodels.NewQuestion(
		id.NewQuestionID(), qmodels.MustQuestionText("Comments"),
		qmodels.TypeTextarea, qmodels.QuestionOptions{}, false, 3, "",
		qmodels.NewQuestionSettings(nil))
	require.NoError(t, err)

	for _, q := range []qmodels.Question{rating, color, toppings, comment} {
		require.NoError(t, questionnaire.AddQuestion(q, now))
	}
	return fixture{questionnaire: questionnaire, rating: rating, color: color, toppings: toppings, comment: comment}
}

func TestDerive(t *testing.T) {
	f := buildFixture(t)
	set, err := validation.Derive(f.questionnaire, questiontype.NewDefaultRegistry())
	require.NoError(t, err)

	t.Run("required and type rules concatenate", func(t *testing.T) {
		assert.Equal(t,
			[]string{"required", "numeric", "integer", "min:1", "max:10"},
			set.Rules[f.rating.ID])
	})

	t.Run("choice questions get an in rule", func(t *testing.T) {
		assert.Equal(t,
			[]string{"required", "string", "in:red,green,blue"},
			set.Rules[f.color.ID])
		assert.Equal(t,
			[]string{"nullable", "array", "in:olives,ham"},
			set.Rules[f.toppings.ID])
	})

	t.Run("attributes carry question text", func(t *testing.T) {
		assert.Equal(t, "Rate us 1-10", set.Attributes[f.rating.ID])
	})

	t.Run("messages substitute question text", func(t *testing.T) {
		assert.Contains(t, set.Messages[f.rating.ID]["numeric"], "Rate us 1-10")
		assert.Contains(t, set.Messages[f.color.ID]["required"], "Favorite color")
	})

	t.Run("fails on unregistered type", func(t *testing.T) {
		empty := questiontype.NewRegistry()
		_, err := validation.Derive(f.questionnaire, empty)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownQuestionType))
	})
}

func TestValidate(t *testing.T) {
	f := buildFixture(t)
	set, err := validation.Derive(f.questionnaire, questiontype.NewDefaultRegistry())
	require.NoError(t, err)

	valid := map[id.QuestionID]rmodels.AnswerValue{
		f.rating.ID:   rmodels.NumberValue(7),
		f.color.ID:    rmodels.StringValue("red"),
		f.toppings.ID: rmodels.ArrayValue([]string{"olives"}),
	}

	t.Run("valid payload passes", func(t *testing.T) {
		assert.Empty(t, set.Validate(valid))
	})

	t.Run("missing required answer fails", func(t *testing.T) {
		payload := map[id.QuestionID]rmodels.AnswerValue{
			f.color.ID: rmodels.StringValue("red"),
		}
		failures := set.Validate(payload)
		require.Contains(t, failures, f.rating.ID)
		assert.Contains(t, failures[f.rating.ID][0], "Rate us 1-10")
	})

	t.Run("missing optional answers pass", func(t *testing.T) {
		payload := map[id.QuestionID]rmodels.AnswerValue{
			f.rating.ID: rmodels.NumberValue(3),
			f.color.ID:  rmodels.StringValue("blue"),
		}
		assert.Empty(t, set.Validate(payload))
	})

	t.Run("range violations fail", func(t *testing.T) {
		payload := map[id.QuestionID]rmodels.AnswerValue{
			f.rating.ID: rmodels.NumberValue(11),
			f.color.ID:  rmodels.StringValue("red"),
		}
		failures := set.Validate(payload)
		require.Contains(t, failures, f.rating.ID)
	})

	t.Run("non-integer fails the integer rule", func(t *testing.T) {
		payload := map[id.QuestionID]rmodels.AnswerValue{
			f.rating.ID: rmodels.NumberValue(7.5),
			f.color.ID:  rmodels.StringValue("red"),
		}
		require.Contains(t, set.Validate(payload), f.rating.ID)
	})

	t.Run("off-list choice fails", func(t *testing.T) {
		payload := map[id.QuestionID]rmodels.AnswerValue{
			f.rating.ID: rmodels.NumberValue(5),
			f.color.ID:  rmodels.StringValue("magenta"),
		}
		failures := set.Validate(payload)
		require.Contains(t, failures, f.color.ID)
		assert.Contains(t, failures[f.color.ID][0], "not one of the offered options")
	})

	t.Run("checkbox validates each element", func(t *testing.T) {
		payload := map[id.QuestionID]rmodels.AnswerValue{
			f.rating.ID:   rmodels.NumberValue(5),
			f.color.ID:    rmodels.StringValue("red"),
			f.toppings.ID: rmodels.ArrayValue([]string{"olives", "pineapple"}),
		}
		require.Contains(t, set.Validate(payload), f.toppings.ID)
	})

	t.Run("validate one question in isolation", func(t *testing.T) {
		assert.Empty(t, set.ValidateOne(f.rating.ID, rmodels.NumberValue(5)))
		assert.NotEmpty(t, set.ValidateOne(f.rating.ID, rmodels.NumberValue(11)))
		assert.Empty(t, set.ValidateOne(id.NewQuestionID(), rmodels.NumberValue(1)), "unknown question has no rules")
	})

	t.Run("checkbox scalar fails the array rule", func(t *testing.T) {
		payload := map[id.QuestionID]rmodels.AnswerValue{
			f.rating.ID:   rmodels.NumberValue(5),
			f.color.ID:    rmodels.StringValue("red"),
			f.toppings.ID: rmodels.StringValue("olives"),
		}
		require.Contains(t, set.Validate(payload), f.toppings.ID)
	})
}

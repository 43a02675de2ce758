package models

import (
	"fmt"
	"strings"

	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
)

// QuestionType names one question kind. The set here is the built-in
// vocabulary; the questiontype registry owns per-type behavior and may be
// extended with additional identifiers at configuration time.
type QuestionType string

const (
	TypeText     QuestionType = "text"
	TypeTextarea QuestionType = "textarea"
	TypeNumber   QuestionType = "number"
	TypeDate     QuestionType = "date"
	TypeRadio    QuestionType = "radio"
	TypeCheckbox QuestionType = "checkbox"
	TypeSelect   QuestionType = "select"
)

// IsChoice reports whether the type restricts answers to a fixed option list.
func (t QuestionType) IsChoice() bool {
	return t == TypeRadio || t == TypeCheckbox || t == TypeSelect
}

// IsMultiValue reports whether answers are lists rather than scalars.
func (t QuestionType) IsMultiValue() bool { return t == TypeCheckbox }

func (t QuestionType) String() string { return string(t) }

// QuestionText length bounds.
var (
	QuestionTextMinLength = 1
	QuestionTextMaxLength = 1000
)

// QuestionText is a validated question prompt.
type QuestionText struct {
	value string
}

func NewQuestionText(value string) (QuestionText, error) {
	if strings.TrimSpace(value) == "" {
		return QuestionText{}, dErrors.New(dErrors.CodeValidation, "question text cannot be empty")
	}
	if len(value) > QuestionTextMaxLength {
		return QuestionText{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("question text must be at most %d characters", QuestionTextMaxLength))
	}
	return QuestionText{value: value}, nil
}

func MustQuestionText(value string) QuestionText {
	t, err := NewQuestionText(value)
	if err != nil {
		panic(err)
	}
	return t
}

func (t QuestionText) String() string { return t.value }

func (t QuestionText) IsZero() bool { return t.value == "" }

// QuestionOptions is the ordered option list of a choice question.
//
// Invariants (enforced at construction):
//   - Every option is non-empty after trimming
//   - No duplicate options
type QuestionOptions struct {
	values []string
}

func NewQuestionOptions(values []string) (QuestionOptions, error) {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return QuestionOptions{}, dErrors.New(dErrors.CodeValidation, "options cannot contain empty entries")
		}
		if seen[v] {
			return QuestionOptions{}, dErrors.New(dErrors.CodeValidation, "options cannot contain duplicates: "+v)
		}
		seen[v] = true
		out = append(out, v)
	}
	return QuestionOptions{values: out}, nil
}

func MustQuestionOptions(values []string) QuestionOptions {
	o, err := NewQuestionOptions(values)
	if err != nil {
		panic(err)
	}
	return o
}

// Values returns the options in declaration order.
func (o QuestionOptions) Values() []string { return append([]string(nil), o.values...) }

func (o QuestionOptions) Len() int { return len(o.values) }

func (o QuestionOptions) IsEmpty() bool { return len(o.values) == 0 }

// Contains reports whether value is one of the declared options.
func (o QuestionOptions) Contains(value string) bool {
	for _, v := range o.values {
		if v == value {
			return true
		}
	}
	return false
}

// QuestionSettings carries type-specific constraint knobs (min, max, step,
// integer, max_length). Like Settings it is an open bag; accessors expose the
// keys the built-in types read.
type QuestionSettings struct {
	values map[string]any
}

func NewQuestionSettings(values map[string]any) QuestionSettings {
	s := QuestionSettings{values: make(map[string]any, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s QuestionSettings) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Int returns an integer-shaped setting.
func (s QuestionSettings) Int(key string) (int, bool) {
	if raw, ok := s.values[key]; ok {
		return asInt(raw)
	}
	return 0, false
}

// Float returns a numeric setting.
func (s QuestionSettings) Float(key string) (float64, bool) {
	switch v := s.values[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Bool returns a boolean setting, false when absent or mis-shaped.
func (s QuestionSettings) Bool(key string) bool {
	if b, ok := s.values[key].(bool); ok {
		return b
	}
	return false
}

func (s QuestionSettings) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Question is a child entity of the Questionnaire aggregate. Its identity is
// stable across edits; order controls display and export sequence with ties
// broken by insertion order.
type Question struct {
	ID          id.QuestionID
	Text        QuestionText
	Type        QuestionType
	Options     QuestionOptions
	Required    bool
	Order       int
	Description string
	Settings    QuestionSettings
}

// NewQuestion validates the cross-field invariants a question carries on its
// own: choice types need a non-empty option list, non-choice types ignore
// options, and order is non-negative. Whether Type is a registered type is
// checked by the service against the questiontype registry.
func NewQuestion(questionID id.QuestionID, text QuestionText, qType QuestionType, opts QuestionOptions, required bool, order int, description string, settings QuestionSettings) (Question, error) {
	if questionID.IsZero() {
		return Question{}, dErrors.New(dErrors.CodeValidation, "question id is required")
	}
	if text.IsZero() {
		return Question{}, dErrors.New(dErrors.CodeValidation, "question text is required")
	}
	if qType == "" {
		return Question{}, dErrors.New(dErrors.CodeValidation, "question type is required")
	}
	if order < 0 {
		return Question{}, dErrors.New(dErrors.CodeValidation, "question order must be non-negative")
	}
	if qType.IsChoice() && opts.IsEmpty() {
		return Question{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("%s questions require a non-empty option list", qType))
	}
	return Question{
		ID:          questionID,
		Text:        text,
		Type:        qType,
		Options:     opts,
		Required:    required,
		Order:       order,
		Description: description,
		Settings:    settings,
	}, nil
}

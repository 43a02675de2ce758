package questiontype

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	qmodels "canvass/internal/questionnaire/models"
	rmodels "canvass/internal/response/models"
)

// Settings keys read by the built-in types.
const (
	SettingMin       = "min"
	SettingMax       = "max"
	SettingStep      = "step"
	SettingInteger   = "integer"
	SettingMaxLength = "max_length"
)

const (
	defaultTextMaxLength     = 255
	defaultTextareaMaxLength = 5000
	dateDisplayLayout        = "2006-01-02"
)

// builtin implements Descriptor with per-kind behavior plugged in as
// functions, so seven kinds don't need seven types.
type builtin struct {
	identifier  qmodels.QuestionType
	name        string
	description string
	icon        string
	rules       func(question qmodels.Question) []string
	messages    map[string]string
	format      func(value rmodels.AnswerValue, question qmodels.Question) string
	transform   func(raw any) (rmodels.AnswerValue, error)
	config      map[string]any
}

func (b *builtin) Identifier() qmodels.QuestionType { return b.identifier }
func (b *builtin) Name() string                     { return b.name }
func (b *builtin) Description() string              { return b.description }
func (b *builtin) Icon() string                     { return b.icon }

func (b *builtin) ValidationRules(question qmodels.Question) []string {
	return b.rules(question)
}

func (b *builtin) ValidationMessages() map[string]string {
	out := make(map[string]string, len(b.messages))
	for k, v := range b.messages {
		out[k] = v
	}
	return out
}

func (b *builtin) FormatValue(value rmodels.AnswerValue, question qmodels.Question) string {
	if b.format != nil {
		return b.format(value, question)
	}
	return value.String()
}

func (b *builtin) TransformValue(raw any) (rmodels.AnswerValue, error) {
	return b.transform(raw)
}

func (b *builtin) Config() map[string]any {
	out := make(map[string]any, len(b.config))
	for k, v := range b.config {
		out[k] = v
	}
	return out
}

// BuiltinDescriptors returns the seven built-in question kinds.
func BuiltinDescriptors() []Descriptor {
	return []Descriptor{
		textType(), textareaType(), numberType(), dateType(),
		radioType(), checkboxType(), selectType(),
	}
}

// transformScalar is the shared normalization for single-value types: empty
// strings become null, everything else passes through NewAnswerValue.
func transformScalar(raw any) (rmodels.AnswerValue, error) {
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return rmodels.NullValue(), nil
	}
	return rmodels.NewAnswerValue(raw)
}

func textRules(defaultMax int) func(question qmodels.Question) []string {
	return func(question qmodels.Question) []string {
		max := defaultMax
		if v, ok := question.Settings.Int(SettingMaxLength); ok && v > 0 {
			max = v
		}
		return []string{"string", "max:" + strconv.Itoa(max)}
	}
}

func textType() Descriptor {
	return &builtin{
		identifier:  qmodels.TypeText,
		name:        "Short text",
		description: "A single line of free text",
		icon:        "text-cursor",
		rules:       textRules(defaultTextMaxLength),
		messages: map[string]string{
			"string": "The answer to \":question\" must be text.",
			"max":    "The answer to \":question\" is too long.",
		},
		transform: transformScalar,
		config:    map[string]any{SettingMaxLength: defaultTextMaxLength},
	}
}

func textareaType() Descriptor {
	return &builtin{
		identifier:  qmodels.TypeTextarea,
		name:        "Long text",
		description: "Multi-line free text",
		icon:        "align-left",
		rules:       textRules(defaultTextareaMaxLength),
		messages: map[string]string{
			"string": "The answer to \":question\" must be text.",
			"max":    "The answer to \":question\" is too long.",
		},
		transform: transformScalar,
		config:    map[string]any{SettingMaxLength: defaultTextareaMaxLength},
	}
}

func numberType() Descriptor {
	return &builtin{
		identifier:  qmodels.TypeNumber,
		name:        "Number",
		description: "A numeric answer, optionally bounded",
		icon:        "hash",
		rules: func(question qmodels.Question) []string {
			rules := []string{"numeric"}
			if question.Settings.Bool(SettingInteger) {
				rules = append(rules, "integer")
			}
			if min, ok := question.Settings.Float(SettingMin); ok {
				rules = append(rules, "min:"+formatNumber(min))
			}
			if max, ok := question.Settings.Float(SettingMax); ok {
				rules = append(rules, "max:"+formatNumber(max))
			}
			return rules
		},
		messages: map[string]string{
			"numeric": "The answer to \":question\" must be a number.",
			"integer": "The answer to \":question\" must be a whole number.",
			"min":     "The answer to \":question\" is below the minimum.",
			"max":     "The answer to \":question\" is above the maximum.",
		},
		format: func(value rmodels.AnswerValue, _ qmodels.Question) string {
			return value.String()
		},
		// Numeric strings become numbers; non-numeric strings pass through
		// untouched so the numeric validation rule reports them.
		transform: func(raw any) (rmodels.AnswerValue, error) {
			value, err := transformScalar(raw)
			if err != nil || !value.IsString() {
				return value, err
			}
			s, _ := value.AsString()
			if n, parseErr := strconv.ParseFloat(strings.TrimSpace(s), 64); parseErr == nil {
				return rmodels.NumberValue(n), nil
			}
			return value, nil
		},
		config: map[string]any{
			SettingMin: nil, SettingMax: nil, SettingStep: 1, SettingInteger: false,
		},
	}
}

func dateType() Descriptor {
	return &builtin{
		identifier:  qmodels.TypeDate,
		name:        "Date",
		description: "A calendar date",
		icon:        "calendar",
		rules: func(_ qmodels.Question) []string {
			return []string{"date"}
		},
		messages: map[string]string{
			"date": "The answer to \":question\" must be a valid date.",
		},
		// Tries the accepted layouts and renders YYYY-MM-DD; anything
		// unparseable falls back to the raw string rather than failing.
		format: func(value rmodels.AnswerValue, _ qmodels.Question) string {
			s, ok := value.AsString()
			if !ok {
				return value.String()
			}
			if parsed, err := ParseDate(s); err == nil {
				return parsed.Format(dateDisplayLayout)
			}
			return s
		},
		transform: transformScalar,
		config:    map[string]any{"format": dateDisplayLayout},
	}
}

func choiceType(identifier qmodels.QuestionType, name, description, icon string) Descriptor {
	return &builtin{
		identifier:  identifier,
		name:        name,
		description: description,
		icon:        icon,
		rules: func(_ qmodels.Question) []string {
			return []string{"string"}
		},
		messages: map[string]string{
			"string": "The answer to \":question\" must be one of the offered options.",
			"in":     "The answer to \":question\" is not one of the offered options.",
		},
		transform: transformScalar,
		config:    map[string]any{},
	}
}

func radioType() Descriptor {
	return choiceType(qmodels.TypeRadio, "Single choice", "Pick one option", "circle-dot")
}

func selectType() Descriptor {
	return choiceType(qmodels.TypeSelect, "Dropdown", "Pick one option from a list", "chevron-down")
}

func checkboxType() Descriptor {
	return &builtin{
		identifier:  qmodels.TypeCheckbox,
		name:        "Multiple choice",
		description: "Pick any number of options",
		icon:        "check-square",
		rules: func(_ qmodels.Question) []string {
			return []string{"array"}
		},
		messages: map[string]string{
			"array": "The answer to \":question\" must be a list of options.",
			"in":    "An answer to \":question\" is not one of the offered options.",
		},
		format: func(value rmodels.AnswerValue, _ qmodels.Question) string {
			return value.String()
		},
		// A lone scalar selection normalizes to a one-element list.
		transform: func(raw any) (rmodels.AnswerValue, error) {
			value, err := transformScalar(raw)
			if err != nil {
				return value, err
			}
			if s, ok := value.AsString(); ok {
				return rmodels.ArrayValue([]string{s}), nil
			}
			return value, nil
		},
		config: map[string]any{},
	}
}

var dateLayouts = []string{
	time.RFC3339,
	dateDisplayLayout,
	"2006-01-02 15:04:05",
}

// ParseDate parses the accepted date layouts (RFC3339, YYYY-MM-DD, and a
// space-separated datetime).
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

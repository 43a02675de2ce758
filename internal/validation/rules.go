// Package validation derives per-question validation rules from a
// questionnaire and applies them to submitted values. Derivation is pure:
// rules are a function of the current question set, recomputed on demand and
// never cached across edits.
package validation

import (
	"strconv"
	"strings"

	qmodels "canvass/internal/questionnaire/models"
	"canvass/internal/questiontype"
	rmodels "canvass/internal/response/models"
	id "canvass/pkg/domain"
)

// Fallback templates for the rules every type shares. Descriptor messages
// take precedence for type-specific rules.
var baseMessages = map[string]string{
	"required": "The \":question\" field is required.",
	"in":       "The answer to \":question\" is not one of the offered options.",
	"array":    "The answer to \":question\" must be a list.",
}

// RuleSet is the derived validation for one questionnaire: three parallel
// maps keyed by question id.
type RuleSet struct {
	// Rules holds ordered rule tokens per question, e.g.
	// ["required", "numeric", "min:1", "max:10"].
	Rules map[id.QuestionID][]string
	// Messages maps rule names to ready human messages (question text
	// already substituted).
	Messages map[id.QuestionID]map[string]string
	// Attributes maps question ids to question text for generic rendering.
	Attributes map[id.QuestionID]string
}

// Derive builds the rule set for the questionnaire's current questions.
// Fails when a question references an unregistered type.
func Derive(questionnaire *qmodels.Questionnaire, registry *questiontype.Registry) (RuleSet, error) {
	set := RuleSet{
		Rules:      make(map[id.QuestionID][]string),
		Messages:   make(map[id.QuestionID]map[string]string),
		Attributes: make(map[id.QuestionID]string),
	}
	for _, question := range questionnaire.Questions() {
		descriptor, err := registry.GetOrFail(question.Type)
		if err != nil {
			return RuleSet{}, err
		}

		rules := make([]string, 0, 4)
		if question.Required {
			rules = append(rules, "required")
		} else {
			rules = append(rules, "nullable")
		}
		rules = append(rules, descriptor.ValidationRules(question)...)
		if question.Type.IsChoice() && !question.Options.IsEmpty() {
			rules = append(rules, "in:"+strings.Join(question.Options.Values(), ","))
		}
		set.Rules[question.ID] = rules

		messages := make(map[string]string)
		for rule, template := range baseMessages {
			messages[rule] = substitute(template, question)
		}
		for rule, template := range descriptor.ValidationMessages() {
			messages[rule] = substitute(template, question)
		}
		set.Messages[question.ID] = messages
		set.Attributes[question.ID] = question.Text.String()
	}
	return set, nil
}

// Validate applies the derived rules to a submission payload. The result maps
// failing question ids to human messages; an empty map means the payload
// passes. Missing optional answers pass; shape errors (wrong question ids)
// are the aggregate's concern, not handled here.
func (set RuleSet) Validate(values map[id.QuestionID]rmodels.AnswerValue) map[id.QuestionID][]string {
	failures := make(map[id.QuestionID][]string)
	for questionID, rules := range set.Rules {
		value, present := values[questionID]
		msgs := set.check(questionID, rules, value, present)
		if len(msgs) > 0 {
			failures[questionID] = msgs
		}
	}
	return failures
}

// ValidateOne applies a single question's rules to one value. Used when a
// stored answer is corrected in isolation.
func (set RuleSet) ValidateOne(questionID id.QuestionID, value rmodels.AnswerValue) []string {
	rules, ok := set.Rules[questionID]
	if !ok {
		return nil
	}
	return set.check(questionID, rules, value, true)
}

func (set RuleSet) check(questionID id.QuestionID, rules []string, value rmodels.AnswerValue, present bool) []string {
	missing := !present || value.IsNull()
	var msgs []string
	for _, rule := range rules {
		name, arg, _ := strings.Cut(rule, ":")
		switch name {
		case "required":
			if missing {
				return []string{set.message(questionID, "required")}
			}
		case "nullable":
			if missing {
				return nil
			}
		default:
			if missing {
				continue
			}
			if !set.passes(name, arg, value) {
				msgs = append(msgs, set.message(questionID, name))
			}
		}
	}
	return msgs
}

func (set RuleSet) passes(name, arg string, value rmodels.AnswerValue) bool {
	switch name {
	case "string":
		return value.IsString()
	case "numeric":
		return value.IsNumeric()
	case "integer":
		n, ok := value.AsNumber()
		return ok && n == float64(int64(n))
	case "array":
		return value.IsArray()
	case "date":
		s, ok := value.AsString()
		if !ok {
			return false
		}
		_, err := questiontype.ParseDate(s)
		return err == nil
	case "min":
		return compareBound(value, arg, false)
	case "max":
		return compareBound(value, arg, true)
	case "in":
		allowed := strings.Split(arg, ",")
		if items, ok := value.AsArray(); ok {
			for _, item := range items {
				if !contains(allowed, item) {
					return false
				}
			}
			return true
		}
		s, ok := value.AsString()
		return ok && contains(allowed, s)
	default:
		// Unknown tokens are inert: rule generation and rule application
		// evolve together, but an older checker must not reject new tokens.
		return true
	}
}

// compareBound applies min/max to the value's natural magnitude: numbers by
// value, strings by length, arrays by element count.
func compareBound(value rmodels.AnswerValue, arg string, isMax bool) bool {
	bound, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return true
	}
	var magnitude float64
	switch {
	case value.IsNumeric():
		magnitude, _ = value.AsNumber()
	case value.IsString():
		s, _ := value.AsString()
		magnitude = float64(len(s))
	case value.IsArray():
		items, _ := value.AsArray()
		magnitude = float64(len(items))
	default:
		return true
	}
	if isMax {
		return magnitude <= bound
	}
	return magnitude >= bound
}

func (set RuleSet) message(questionID id.QuestionID, rule string) string {
	if messages, ok := set.Messages[questionID]; ok {
		if msg, ok := messages[rule]; ok {
			return msg
		}
	}
	return "The answer to \"" + set.Attributes[questionID] + "\" is invalid."
}

func substitute(template string, question qmodels.Question) string {
	return strings.ReplaceAll(template, ":question", question.Text.String())
}

func contains(haystack []string, needle string) bool {
	for _, item := range haystack {
		if item == needle {
			return true
		}
	}
	return false
}

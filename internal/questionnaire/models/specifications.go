package models

import "time"

// Specification is a named boolean predicate over the aggregate. Compose with
// And/Or/Not; no hierarchy needed.
type Specification func(q *Questionnaire) bool

func And(specs ...Specification) Specification {
	return func(q *Questionnaire) bool {
		for _, spec := range specs {
			if !spec(q) {
				return false
			}
		}
		return true
	}
}

func Or(specs ...Specification) Specification {
	return func(q *Questionnaire) bool {
		for _, spec := range specs {
			if spec(q) {
				return true
			}
		}
		return false
	}
}

func Not(spec Specification) Specification {
	return func(q *Questionnaire) bool { return !spec(q) }
}

// CanBePublished holds for drafts with at least one question.
func CanBePublished() Specification {
	return func(q *Questionnaire) bool {
		return q.Status() == StatusDraft && q.QuestionCount() > 0
	}
}

// IsActiveAt holds while the questionnaire accepts responses at the instant.
func IsActiveAt(at time.Time) Specification {
	return func(q *Questionnaire) bool { return q.IsActive(at) }
}

// AcceptsModifications holds only in Draft.
func AcceptsModifications() Specification {
	return func(q *Questionnaire) bool { return q.AcceptsModifications() }
}

// HasStatus holds when the questionnaire is in the given state.
func HasStatus(status Status) Specification {
	return func(q *Questionnaire) bool { return q.Status() == status }
}

package models

import (
	"time"

	dErrors "canvass/pkg/domain-errors"
)

// DateRange is the optional window during which a published questionnaire
// accepts responses. A nil bound means unbounded on that side.
//
// Invariant: when both bounds are present, startsAt <= endsAt.
type DateRange struct {
	startsAt *time.Time
	endsAt   *time.Time
}

// NewDateRange creates a validated DateRange. Both bounds are optional;
// NewDateRange(nil, nil) is the fully unbounded range.
func NewDateRange(startsAt, endsAt *time.Time) (DateRange, error) {
	if startsAt != nil && endsAt != nil && startsAt.After(*endsAt) {
		return DateRange{}, dErrors.New(dErrors.CodeValidation,
			"date range start must not be after its end")
	}
	return DateRange{startsAt: cloneTime(startsAt), endsAt: cloneTime(endsAt)}, nil
}

// MustDateRange creates a DateRange, panicking if invalid.
func MustDateRange(startsAt, endsAt *time.Time) DateRange {
	r, err := NewDateRange(startsAt, endsAt)
	if err != nil {
		panic(err)
	}
	return r
}

// UnboundedRange is the range accepting responses at any time.
func UnboundedRange() DateRange { return DateRange{} }

// StartsAt returns the lower bound, or nil when unbounded.
func (r DateRange) StartsAt() *time.Time { return cloneTime(r.startsAt) }

// EndsAt returns the upper bound, or nil when unbounded.
func (r DateRange) EndsAt() *time.Time { return cloneTime(r.endsAt) }

// Contains reports whether at falls within the range, bounds inclusive.
func (r DateRange) Contains(at time.Time) bool {
	if r.startsAt != nil && at.Before(*r.startsAt) {
		return false
	}
	if r.endsAt != nil && at.After(*r.endsAt) {
		return false
	}
	return true
}

// IsUnbounded reports whether neither bound is set.
func (r DateRange) IsUnbounded() bool { return r.startsAt == nil && r.endsAt == nil }

// Equal compares both bounds by instant.
func (r DateRange) Equal(other DateRange) bool {
	return equalTimePtr(r.startsAt, other.startsAt) && equalTimePtr(r.endsAt, other.endsAt)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

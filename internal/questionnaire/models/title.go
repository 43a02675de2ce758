package models

import (
	"fmt"
	"strings"

	dErrors "canvass/pkg/domain-errors"
)

// Title length bounds. Package-level so deployments embedding the domain can
// tune them before first use; they are configuration-time values, never
// mutated per request.
var (
	TitleMinLength = 3
	TitleMaxLength = 255
)

// Title is a validated questionnaire title.
//
// Invariants:
//   - Non-empty after trimming
//   - Length between TitleMinLength and TitleMaxLength inclusive
type Title struct {
	value string
}

// NewTitle creates a validated Title. The raw value round-trips exactly;
// only validation trims.
func NewTitle(value string) (Title, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Title{}, dErrors.New(dErrors.CodeValidation, "title cannot be empty")
	}
	if len(trimmed) < TitleMinLength {
		return Title{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("title must be at least %d characters", TitleMinLength))
	}
	if len(value) > TitleMaxLength {
		return Title{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("title must be at most %d characters", TitleMaxLength))
	}
	return Title{value: value}, nil
}

// MustTitle creates a Title, panicking if invalid. Use only in tests or when
// the value is known to be valid.
func MustTitle(value string) Title {
	t, err := NewTitle(value)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Title) String() string { return t.value }

// IsZero returns true if this is the zero value (uninitialized).
func (t Title) IsZero() bool { return t.value == "" }

// Equal compares by value.
func (t Title) Equal(other Title) bool { return t.value == other.value }

package models

import (
	"regexp"
	"strings"

	dErrors "canvass/pkg/domain-errors"
)

// SlugMaxLength bounds explicit and derived slugs alike.
var SlugMaxLength = 255

// Slug is the URL-safe public identifier of a questionnaire.
//
// Invariants:
//   - Lowercase letters, digits, and single hyphens only
//   - No leading or trailing hyphen
//   - Length between 1 and SlugMaxLength
//
// Uniqueness across questionnaires is enforced by the store, not here.
type Slug struct {
	value string
}

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugRunes   = regexp.MustCompile(`[^a-z0-9]+`)
	hyphenCollapse = regexp.MustCompile(`-{2,}`)
)

// NewSlug validates an explicitly supplied slug.
func NewSlug(value string) (Slug, error) {
	if value == "" {
		return Slug{}, dErrors.New(dErrors.CodeValidation, "slug cannot be empty")
	}
	if len(value) > SlugMaxLength {
		return Slug{}, dErrors.New(dErrors.CodeValidation, "slug is too long")
	}
	if !slugPattern.MatchString(value) {
		return Slug{}, dErrors.New(dErrors.CodeValidation,
			"slug may contain only lowercase letters, digits and hyphens")
	}
	return Slug{value: value}, nil
}

// SlugFromTitle derives a slug deterministically from a title: lowercase,
// non-alphanumeric runs collapse to single hyphens, outer hyphens trimmed.
// Deriving twice from the same title yields the same slug.
func SlugFromTitle(title Title) (Slug, error) {
	lowered := strings.ToLower(title.String())
	slugged := nonSlugRunes.ReplaceAllString(lowered, "-")
	slugged = hyphenCollapse.ReplaceAllString(slugged, "-")
	slugged = strings.Trim(slugged, "-")
	if len(slugged) > SlugMaxLength {
		slugged = strings.Trim(slugged[:SlugMaxLength], "-")
	}
	return NewSlug(slugged)
}

// MustSlug creates a Slug, panicking if invalid.
func MustSlug(value string) Slug {
	s, err := NewSlug(value)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Slug) String() string { return s.value }

func (s Slug) IsZero() bool { return s.value == "" }

func (s Slug) Equal(other Slug) bool { return s.value == other.value }

package models_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvass/internal/questionnaire/models"
	dErrors "canvass/pkg/domain-errors"
)

func TestTitleConstruction(t *testing.T) {
	t.Run("rejects empty", func(t *testing.T) {
		_, err := models.NewTitle("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects whitespace only", func(t *testing.T) {
		_, err := models.NewTitle("   ")
		require.Error(t, err)
	})

	t.Run("rejects too short", func(t *testing.T) {
		_, err := models.NewTitle("ab")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects too long", func(t *testing.T) {
		_, err := models.NewTitle(strings.Repeat("x", models.TitleMaxLength+1))
		require.Error(t, err)
	})

	t.Run("round-trips valid values exactly", func(t *testing.T) {
		for _, value := range []string{"abc", "Customer Satisfaction 2026", strings.Repeat("x", models.TitleMaxLength)} {
			title, err := models.NewTitle(value)
			require.NoError(t, err, value)
			assert.Equal(t, value, title.String())
		}
	})

	t.Run("equality is structural", func(t *testing.T) {
		assert.True(t, models.MustTitle("Hello World").Equal(models.MustTitle("Hello World")))
		assert.False(t, models.MustTitle("Hello World").Equal(models.MustTitle("Hello Mars")))
	})
}

func TestSlugConstruction(t *testing.T) {
	t.Run("rejects invalid characters", func(t *testing.T) {
		for _, value := range []string{"", "Hello", "hello world", "hello--world", "-hello", "hello-", "héllo"} {
			_, err := models.NewSlug(value)
			require.Error(t, err, value)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), value)
		}
	})

	t.Run("accepts valid slugs", func(t *testing.T) {
		for _, value := range []string{"hello", "hello-world", "q1", "2026-survey"} {
			slug, err := models.NewSlug(value)
			require.NoError(t, err, value)
			assert.Equal(t, value, slug.String())
		}
	})
}

func TestSlugFromTitle(t *testing.T) {
	t.Run("slugifies punctuation and case", func(t *testing.T) {
		slug, err := models.SlugFromTitle(models.MustTitle("Hello World!"))
		require.NoError(t, err)
		assert.Equal(t, "hello-world", slug.String())
	})

	t.Run("is deterministic", func(t *testing.T) {
		title := models.MustTitle("  Annual Survey -- 2026  ")
		first, err := models.SlugFromTitle(title)
		require.NoError(t, err)
		second, err := models.SlugFromTitle(title)
		require.NoError(t, err)
		assert.True(t, first.Equal(second))
		assert.Equal(t, "annual-survey-2026", first.String())
	})

	t.Run("fails when nothing sluggable remains", func(t *testing.T) {
		_, err := models.SlugFromTitle(models.MustTitle("!!!"))
		require.Error(t, err)
	})
}

func TestDateRange(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("rejects start after end", func(t *testing.T) {
		_, err := models.NewDateRange(&t2, &t1)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("unbounded range accepts any instant", func(t *testing.T) {
		r, err := models.NewDateRange(nil, nil)
		require.NoError(t, err)
		assert.True(t, r.IsUnbounded())
		assert.True(t, r.Contains(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)))
		assert.True(t, r.Contains(time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		r := models.MustDateRange(&t1, &t2)
		assert.True(t, r.Contains(t1))
		assert.True(t, r.Contains(t2))
		assert.True(t, r.Contains(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
		assert.False(t, r.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
		assert.False(t, r.Contains(t1.Add(-time.Second)))
	})

	t.Run("half-open ranges", func(t *testing.T) {
		onlyStart := models.MustDateRange(&t1, nil)
		assert.True(t, onlyStart.Contains(t2.AddDate(10, 0, 0)))
		assert.False(t, onlyStart.Contains(t1.Add(-time.Hour)))

		onlyEnd := models.MustDateRange(nil, &t2)
		assert.True(t, onlyEnd.Contains(t1.AddDate(-10, 0, 0)))
		assert.False(t, onlyEnd.Contains(t2.Add(time.Hour)))
	})
}

func TestSettings(t *testing.T) {
	t.Run("defaults are all-off", func(t *testing.T) {
		s := models.DefaultSettings()
		assert.Equal(t, models.DedupAllowMultiple, s.DedupStrategy())
		_, limited := s.SubmissionLimit()
		assert.False(t, limited)
		assert.False(t, s.NotifyOwner())
		assert.Empty(t, s.NotificationEmails())
	})

	t.Run("rejects unknown dedup strategy", func(t *testing.T) {
		_, err := models.NewSettings(map[string]any{models.SettingDedupStrategy: "one_per_moon_phase"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects non-positive submission limit", func(t *testing.T) {
		_, err := models.NewSettings(map[string]any{models.SettingSubmissionLimit: 0})
		require.Error(t, err)
	})

	t.Run("reads typed values, json-decoded shapes included", func(t *testing.T) {
		s := models.MustSettings(map[string]any{
			models.SettingDedupStrategy:      "one_per_ip",
			models.SettingSubmissionLimit:    float64(100), // as a JSON decoder produces
			models.SettingNotifyOwner:        true,
			models.SettingNotificationEmails: []any{"ops@example.com"},
			"theme":                          "dark",
		})
		assert.Equal(t, models.DedupOnePerIP, s.DedupStrategy())
		limit, limited := s.SubmissionLimit()
		assert.True(t, limited)
		assert.Equal(t, 100, limit)
		assert.True(t, s.NotifyOwner())
		assert.Equal(t, []string{"ops@example.com"}, s.NotificationEmails())
		theme, ok := s.Get("theme")
		assert.True(t, ok)
		assert.Equal(t, "dark", theme)
	})
}

func TestQuestionOptions(t *testing.T) {
	t.Run("rejects empty entries and duplicates", func(t *testing.T) {
		_, err := models.NewQuestionOptions([]string{"a", " "})
		require.Error(t, err)
		_, err = models.NewQuestionOptions([]string{"a", "a"})
		require.Error(t, err)
	})

	t.Run("preserves declaration order", func(t *testing.T) {
		opts := models.MustQuestionOptions([]string{"c", "a", "b"})
		assert.Equal(t, []string{"c", "a", "b"}, opts.Values())
		assert.True(t, opts.Contains("a"))
		assert.False(t, opts.Contains("z"))
	})
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    models.Status
		to      models.Status
		allowed bool
	}{
		{models.StatusDraft, models.StatusPublished, true},
		{models.StatusDraft, models.StatusArchived, true},
		{models.StatusDraft, models.StatusClosed, false},
		{models.StatusPublished, models.StatusClosed, true},
		{models.StatusPublished, models.StatusArchived, true},
		{models.StatusPublished, models.StatusDraft, false},
		{models.StatusClosed, models.StatusArchived, true},
		{models.StatusClosed, models.StatusPublished, false},
		{models.StatusArchived, models.StatusDraft, false},
		{models.StatusArchived, models.StatusPublished, false},
		{models.StatusArchived, models.StatusArchived, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
	assert.True(t, models.StatusArchived.IsTerminal())
	assert.False(t, models.StatusClosed.IsTerminal())
}

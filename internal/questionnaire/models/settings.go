package models

import (
	dErrors "canvass/pkg/domain-errors"
)

// DedupStrategy selects which duplicate-submission guard protects a
// questionnaire. Exactly one strategy is active per questionnaire.
type DedupStrategy string

const (
	DedupAllowMultiple DedupStrategy = "allow_multiple"
	DedupOnePerIP      DedupStrategy = "one_per_ip"
	DedupOnePerUser    DedupStrategy = "one_per_user"
	DedupOnePerSession DedupStrategy = "one_per_session"
)

var validDedupStrategies = map[DedupStrategy]bool{
	DedupAllowMultiple: true,
	DedupOnePerIP:      true,
	DedupOnePerUser:    true,
	DedupOnePerSession: true,
}

// ParseDedupStrategy constructs a DedupStrategy from external input.
func ParseDedupStrategy(s string) (DedupStrategy, error) {
	strategy := DedupStrategy(s)
	if !validDedupStrategies[strategy] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown duplicate-submission strategy: "+s)
	}
	return strategy, nil
}

func (d DedupStrategy) IsValid() bool { return validDedupStrategies[d] }

func (d DedupStrategy) String() string { return string(d) }

// Well-known settings keys. The bag is open; these are the keys the domain
// itself reads.
const (
	SettingDedupStrategy      = "dedup_strategy"
	SettingSubmissionLimit    = "submission_limit"
	SettingNotifyOwner        = "notify_owner"
	SettingNotificationEmails = "notification_emails"
)

// Settings is an open key-value configuration bag attached to a
// questionnaire. The zero value is the documented default: allow multiple
// submissions, no submission limit, notifications off.
type Settings struct {
	values map[string]any
}

// NewSettings copies the given bag. Unknown keys are preserved untouched;
// only the well-known keys above are validated here, and only for shape.
func NewSettings(values map[string]any) (Settings, error) {
	s := Settings{values: make(map[string]any, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	if raw, ok := s.values[SettingDedupStrategy]; ok {
		str, ok := raw.(string)
		if !ok {
			return Settings{}, dErrors.New(dErrors.CodeValidation, "dedup_strategy must be a string")
		}
		if _, err := ParseDedupStrategy(str); err != nil {
			return Settings{}, err
		}
	}
	if raw, ok := s.values[SettingSubmissionLimit]; ok {
		if limit, ok := asInt(raw); !ok || limit < 1 {
			return Settings{}, dErrors.New(dErrors.CodeValidation, "submission_limit must be a positive integer")
		}
	}
	return s, nil
}

// DefaultSettings is the empty, all-off bag.
func DefaultSettings() Settings { return Settings{} }

// MustSettings creates Settings, panicking if invalid.
func MustSettings(values map[string]any) Settings {
	s, err := NewSettings(values)
	if err != nil {
		panic(err)
	}
	return s
}

// Get returns a raw setting value.
func (s Settings) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// DedupStrategy returns the configured strategy, defaulting to allow_multiple.
func (s Settings) DedupStrategy() DedupStrategy {
	if raw, ok := s.values[SettingDedupStrategy]; ok {
		if str, ok := raw.(string); ok && DedupStrategy(str).IsValid() {
			return DedupStrategy(str)
		}
	}
	return DedupAllowMultiple
}

// SubmissionLimit returns the configured maximum accepted responses;
// ok is false when unlimited.
func (s Settings) SubmissionLimit() (int, bool) {
	if raw, ok := s.values[SettingSubmissionLimit]; ok {
		if limit, ok := asInt(raw); ok && limit > 0 {
			return limit, true
		}
	}
	return 0, false
}

// NotifyOwner reports whether the owner wants a notification per response.
func (s Settings) NotifyOwner() bool {
	if raw, ok := s.values[SettingNotifyOwner]; ok {
		if b, ok := raw.(bool); ok {
			return b
		}
	}
	return false
}

// NotificationEmails returns the configured notification recipients.
func (s Settings) NotificationEmails() []string {
	raw, ok := s.values[SettingNotificationEmails]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Values returns a copy of the underlying bag.
func (s Settings) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// asInt accepts the integer shapes a JSON decoder or caller may hand us.
func asInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

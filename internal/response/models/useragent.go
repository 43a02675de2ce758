package models

import (
	ua "github.com/mssola/useragent"
)

// UserAgent carries the raw submitted user-agent string plus the parsed
// classification statistics cares about. Any string is accepted; an
// unparseable value simply classifies as nothing.
type UserAgent struct {
	raw     string
	browser string
	os      string
	mobile  bool
	bot     bool
}

func NewUserAgent(raw string) UserAgent {
	if raw == "" {
		return UserAgent{}
	}
	parsed := ua.New(raw)
	browser, _ := parsed.Browser()
	return UserAgent{
		raw:     raw,
		browser: browser,
		os:      parsed.OS(),
		mobile:  parsed.Mobile(),
		bot:     parsed.Bot(),
	}
}

func (u UserAgent) Raw() string { return u.raw }

func (u UserAgent) Browser() string { return u.browser }

func (u UserAgent) OS() string { return u.os }

func (u UserAgent) IsMobile() bool { return u.mobile }

func (u UserAgent) IsBot() bool { return u.bot }

func (u UserAgent) IsZero() bool { return u.raw == "" }

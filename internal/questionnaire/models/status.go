package models

import (
	dErrors "canvass/pkg/domain-errors"
)

// Status is the questionnaire lifecycle state. The legal transitions form a
// one-way machine: Draft -> Published -> Closed -> Archived, with Draft and
// Published also allowed to archive directly. Archived is terminal.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusClosed    Status = "closed"
	StatusArchived  Status = "archived"
)

// allowedTransitions is the single source of truth for the state machine.
var allowedTransitions = map[Status][]Status{
	StatusDraft:     {StatusPublished, StatusArchived},
	StatusPublished: {StatusClosed, StatusArchived},
	StatusClosed:    {StatusArchived},
	StatusArchived:  {},
}

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := allowedTransitions[status]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown questionnaire status: "+s)
	}
	return status, nil
}

// CanTransitionTo reports whether the state machine permits moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves this status.
func (s Status) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

func (s Status) String() string { return string(s) }

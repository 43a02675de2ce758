// Package domain holds the typed identifiers shared across bounded contexts.
//
// Each identifier is a distinct named type over uuid.UUID so the compiler
// rejects cross-assignment (a ResponseID can never be passed where a
// QuestionnaireID is expected). Construct via New* for fresh ids and Parse*
// at trust boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "canvass/pkg/domain-errors"
)

type (
	// QuestionnaireID identifies a questionnaire aggregate.
	QuestionnaireID uuid.UUID
	// QuestionID identifies a question within a questionnaire.
	QuestionID uuid.UUID
	// ResponseID identifies a response aggregate.
	ResponseID uuid.UUID
	// AnswerID identifies an answer within a response.
	AnswerID uuid.UUID
	// OwnerID references the user owning a questionnaire. Ownership is not a
	// domain concept here; the id is carried for authorization by collaborators.
	OwnerID uuid.UUID
)

func NewQuestionnaireID() QuestionnaireID { return QuestionnaireID(uuid.New()) }
func NewQuestionID() QuestionID           { return QuestionID(uuid.New()) }
func NewResponseID() ResponseID           { return ResponseID(uuid.New()) }
func NewAnswerID() AnswerID               { return AnswerID(uuid.New()) }
func NewOwnerID() OwnerID                 { return OwnerID(uuid.New()) }

func (id QuestionnaireID) String() string { return uuid.UUID(id).String() }
func (id QuestionID) String() string      { return uuid.UUID(id).String() }
func (id ResponseID) String() string      { return uuid.UUID(id).String() }
func (id AnswerID) String() string        { return uuid.UUID(id).String() }
func (id OwnerID) String() string         { return uuid.UUID(id).String() }

func (id QuestionnaireID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id QuestionID) IsZero() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ResponseID) IsZero() bool      { return uuid.UUID(id) == uuid.Nil }
func (id AnswerID) IsZero() bool        { return uuid.UUID(id) == uuid.Nil }
func (id OwnerID) IsZero() bool         { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the shared invariant: ids must be valid, non-empty,
// non-nil UUIDs.
func parseUUID(value, kind string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be empty")
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be the nil uuid")
	}
	return parsed, nil
}

func ParseQuestionnaireID(value string) (QuestionnaireID, error) {
	parsed, err := parseUUID(value, "questionnaire")
	return QuestionnaireID(parsed), err
}

func ParseQuestionID(value string) (QuestionID, error) {
	parsed, err := parseUUID(value, "question")
	return QuestionID(parsed), err
}

func ParseResponseID(value string) (ResponseID, error) {
	parsed, err := parseUUID(value, "response")
	return ResponseID(parsed), err
}

func ParseAnswerID(value string) (AnswerID, error) {
	parsed, err := parseUUID(value, "answer")
	return AnswerID(parsed), err
}

func ParseOwnerID(value string) (OwnerID, error) {
	parsed, err := parseUUID(value, "owner")
	return OwnerID(parsed), err
}

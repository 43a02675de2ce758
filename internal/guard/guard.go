// Package guard decides whether a respondent may submit to a questionnaire
// under its duplicate-submission strategy. Guards answer for one strategy
// each; the Resolver maps a questionnaire's configured strategy to its guard.
package guard

import (
	"context"
	"time"

	rmodels "canvass/internal/response/models"
	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
)

// Rejection reason codes carried on CodeDuplicateSubmission errors.
const (
	ReasonDuplicateByIP      = "duplicate_by_ip"
	ReasonDuplicateByUser    = "duplicate_by_user"
	ReasonDuplicateBySession = "duplicate_by_session"
)

// SubmissionContext carries the identity facts a guard may match on. Fields
// a given strategy does not use are ignored; a zero field the strategy does
// need means the guard cannot match and must allow.
type SubmissionContext struct {
	QuestionnaireID id.QuestionnaireID
	Respondent      rmodels.Respondent
	IP              rmodels.IpAddress
	SessionID       string
}

// Guard is one duplicate-submission strategy. CanSubmit is the read side,
// MarkSubmitted the write side; they are separate calls because marking must
// happen only after the response is durably stored.
type Guard interface {
	// CanSubmit reports whether the submission is allowed. Errors are
	// infrastructure failures, not rejections.
	CanSubmit(ctx context.Context, sub SubmissionContext) (bool, error)

	// RejectionReason is the reason code for a CanSubmit refusal.
	RejectionReason() string

	// MarkSubmitted records the submission for future checks. A no-op for
	// strategies that dedupe against stored responses.
	MarkSubmitted(ctx context.Context, sub SubmissionContext) error
}

// ResponseLookup is the read slice of the response store the IP and user
// guards dedupe against.
type ResponseLookup interface {
	ExistsByIP(ctx context.Context, questionnaireID id.QuestionnaireID, ip rmodels.IpAddress) (bool, error)
	ExistsByRespondent(ctx context.Context, questionnaireID id.QuestionnaireID, respondent rmodels.Respondent) (bool, error)
}

// SessionMarkerStore persists session submission markers for the
// one-per-session guard.
type SessionMarkerStore interface {
	IsMarked(ctx context.Context, questionnaireID id.QuestionnaireID, sessionID string) (bool, error)
	Mark(ctx context.Context, questionnaireID id.QuestionnaireID, sessionID string, ttl time.Duration) error
}

var rejectionMessages = map[string]string{
	ReasonDuplicateByIP:      "a response from this address has already been recorded",
	ReasonDuplicateByUser:    "you have already responded to this questionnaire",
	ReasonDuplicateBySession: "a response from this session has already been recorded",
}

// Rejection builds the duplicate-submission error for a guard refusal.
func Rejection(g Guard) error {
	reason := g.RejectionReason()
	msg, ok := rejectionMessages[reason]
	if !ok {
		msg = "a duplicate submission was rejected"
	}
	return dErrors.NewWithReason(dErrors.CodeDuplicateSubmission, reason, msg)
}

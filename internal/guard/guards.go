package guard

import (
	"context"
	"time"
)

// defaultMarkerTTL bounds how long a session marker outlives the submission.
// Sessions rotate well before this; the TTL only keeps the marker keyspace
// from growing without bound.
const defaultMarkerTTL = 30 * 24 * time.Hour

// allowMultiple permits every submission.
type allowMultiple struct{}

func (allowMultiple) CanSubmit(context.Context, SubmissionContext) (bool, error) { return true, nil }
func (allowMultiple) RejectionReason() string                                    { return "" }
func (allowMultiple) MarkSubmitted(context.Context, SubmissionContext) error     { return nil }

// onePerIP rejects when a stored response already carries the submitter's
// address. Submissions without a resolvable address are allowed: there is
// nothing to match on.
type onePerIP struct {
	responses ResponseLookup
}

func (g onePerIP) CanSubmit(ctx context.Context, sub SubmissionContext) (bool, error) {
	if sub.IP.IsZero() {
		return true, nil
	}
	exists, err := g.responses.ExistsByIP(ctx, sub.QuestionnaireID, sub.IP)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (onePerIP) RejectionReason() string { return ReasonDuplicateByIP }

func (onePerIP) MarkSubmitted(context.Context, SubmissionContext) error { return nil }

// onePerUser rejects when the authenticated respondent already has a stored
// response. Anonymous respondents are allowed through: identity-based
// deduplication has no identity to key on.
type onePerUser struct {
	responses ResponseLookup
}

func (g onePerUser) CanSubmit(ctx context.Context, sub SubmissionContext) (bool, error) {
	if sub.Respondent.IsAnonymous() {
		return true, nil
	}
	exists, err := g.responses.ExistsByRespondent(ctx, sub.QuestionnaireID, sub.Respondent)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (onePerUser) RejectionReason() string { return ReasonDuplicateByUser }

func (onePerUser) MarkSubmitted(context.Context, SubmissionContext) error { return nil }

// onePerSession rejects when the session already carries a submission marker.
// Unlike the IP and user guards it has a write side: the marker store is the
// only record tying a session to a questionnaire.
type onePerSession struct {
	markers SessionMarkerStore
	ttl     time.Duration
}

func (g onePerSession) CanSubmit(ctx context.Context, sub SubmissionContext) (bool, error) {
	if sub.SessionID == "" {
		return true, nil
	}
	marked, err := g.markers.IsMarked(ctx, sub.QuestionnaireID, sub.SessionID)
	if err != nil {
		return false, err
	}
	return !marked, nil
}

func (onePerSession) RejectionReason() string { return ReasonDuplicateBySession }

func (g onePerSession) MarkSubmitted(ctx context.Context, sub SubmissionContext) error {
	if sub.SessionID == "" {
		return nil
	}
	return g.markers.Mark(ctx, sub.QuestionnaireID, sub.SessionID, g.ttl)
}

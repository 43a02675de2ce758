package guard

import (
	qmodels "canvass/internal/questionnaire/models"
)

// ScopeKey derives the uniqueness key stored alongside a response. The store
// holds a unique index over (questionnaire, scope), which backstops the
// guard: CanSubmit and the insert are separate steps, so two concurrent
// submissions can both pass the check — the index lets only one land.
//
// Empty means no uniqueness applies: allow-multiple, or the strategy's
// identity fact is absent (no address, anonymous, no session).
func ScopeKey(strategy qmodels.DedupStrategy, sub SubmissionContext) string {
	switch strategy {
	case qmodels.DedupOnePerIP:
		if sub.IP.IsZero() {
			return ""
		}
		return "ip:" + sub.IP.String()
	case qmodels.DedupOnePerUser:
		if sub.Respondent.IsAnonymous() {
			return ""
		}
		return "user:" + sub.Respondent.Type() + ":" + sub.Respondent.ID()
	case qmodels.DedupOnePerSession:
		if sub.SessionID == "" {
			return ""
		}
		return "session:" + sub.SessionID
	default:
		return ""
	}
}

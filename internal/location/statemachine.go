package location

import "github.com/scenepin/scenepin/internal/domain"

// Thresholds for the confirmation state machine. Both branches require the
// same quorum; the weighted thresholds are symmetric, so at most one branch
// can fire for any summary.
const (
	confirmationQuorum    = 3
	confirmScoreThreshold = 3.0
	rejectScoreThreshold  = -3.0
)

// Transition is the outcome of evaluating an estimate's rating statistics.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionConfirm
	TransitionReject
)

// EvaluateStatus decides whether an estimate moves out of the estimated
// state given its freshly recomputed rating summary. Confirmed and rejected
// are terminal: the thresholds are still evaluated against the summary, but
// a terminal current status always yields TransitionNone, which is what
// makes the author's confirmation reputation bonus a once-per-estimate
// event. Rejection deliberately carries no reputation penalty.
func EvaluateStatus(status domain.EstimateStatus, summary domain.RatingSummary) Transition {
	if status != domain.StatusEstimated {
		return TransitionNone
	}
	if summary.Count < confirmationQuorum {
		return TransitionNone
	}
	if summary.Weighted >= confirmScoreThreshold {
		return TransitionConfirm
	}
	if summary.Weighted <= rejectScoreThreshold {
		return TransitionReject
	}
	return TransitionNone
}

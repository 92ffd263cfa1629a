package location

// Vote weight bounds. The floor keeps brand-new contributors from being
// voiceless; the cap keeps high-reputation contributors from dominating.
const (
	minVoteWeight     = 0.5
	maxVoteWeight     = 3.0
	reputationDivisor = 10.0
)

// VoteWeight converts a contributor's reputation into a bounded vote weight:
// clamp(1 + r/10, 0.5, 3). Pure, total, and non-decreasing in r.
func VoteWeight(reputation float64) float64 {
	w := 1 + reputation/reputationDivisor
	if w < minVoteWeight {
		return minVoteWeight
	}
	if w > maxVoteWeight {
		return maxVoteWeight
	}
	return w
}

package location

import (
	"testing"

	"github.com/scenepin/scenepin/internal/domain"
)

func TestEvaluateStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.EstimateStatus
		count    int64
		weighted float64
		want     Transition
	}{
		{"no votes", domain.StatusEstimated, 0, 0, TransitionNone},
		{"below quorum despite high score", domain.StatusEstimated, 2, 6.0, TransitionNone},
		{"quorum met, score below threshold", domain.StatusEstimated, 3, 2.9, TransitionNone},
		{"confirm at exact thresholds", domain.StatusEstimated, 3, 3.0, TransitionConfirm},
		{"confirm above thresholds", domain.StatusEstimated, 5, 7.3, TransitionConfirm},
		{"reject at exact thresholds", domain.StatusEstimated, 3, -3.0, TransitionReject},
		{"reject below threshold", domain.StatusEstimated, 4, -5.5, TransitionReject},
		{"quorum met, score above reject threshold", domain.StatusEstimated, 3, -2.9, TransitionNone},
		{"confirmed is terminal", domain.StatusConfirmed, 10, 30.0, TransitionNone},
		{"confirmed never flips to rejected", domain.StatusConfirmed, 10, -30.0, TransitionNone},
		{"rejected is terminal", domain.StatusRejected, 10, 30.0, TransitionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := domain.RatingSummary{Weighted: tt.weighted, Count: tt.count}
			if got := EvaluateStatus(tt.status, summary); got != tt.want {
				t.Fatalf("EvaluateStatus(%s, count=%d, weighted=%v) = %v, want %v",
					tt.status, tt.count, tt.weighted, got, tt.want)
			}
		})
	}
}

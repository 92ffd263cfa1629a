package location

import (
	"math"
	"testing"
)

func TestVoteWeight(t *testing.T) {
	tests := []struct {
		name       string
		reputation float64
		want       float64
	}{
		{"fresh contributor", 0, 1.0},
		{"small positive", 1, 1.1},
		{"mid reputation", 10, 2.0},
		{"at cap boundary", 20, 3.0},
		{"beyond cap", 1000, 3.0},
		{"negative within floor", -4, 0.6},
		{"at floor boundary", -5, 0.5},
		{"deep negative", -100, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VoteWeight(tt.reputation)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("VoteWeight(%v) = %v, want %v", tt.reputation, got, tt.want)
			}
		})
	}
}

func TestVoteWeight_BoundedAndMonotonic(t *testing.T) {
	prev := math.Inf(-1)
	for r := -200.0; r <= 200.0; r += 0.5 {
		w := VoteWeight(r)
		if w < minVoteWeight || w > maxVoteWeight {
			t.Fatalf("VoteWeight(%v) = %v outside [%v, %v]", r, w, minVoteWeight, maxVoteWeight)
		}
		if w < prev {
			t.Fatalf("VoteWeight not non-decreasing at r=%v: %v < %v", r, w, prev)
		}
		prev = w
	}
}

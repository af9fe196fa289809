package assessment

import (
	"fmt"
	"math"
)

// DecisionBoundary is the ensemble probability at and above which a UTI is predicted
const DecisionBoundary = 0.5

// Ensemble averages per-model positive-class probabilities
func Ensemble(probs ...float64) (float64, error) {
	if len(probs) == 0 {
		return 0, fmt.Errorf("ensemble needs at least one probability")
	}
	var sum float64
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return 0, fmt.Errorf("probability %d out of range: %v", i, p)
		}
		sum += p
	}
	return sum / float64(len(probs)), nil
}

// Decide maps an ensemble probability to 0/1. A tie at the boundary is positive.
func Decide(p float64) int {
	if p >= DecisionBoundary {
		return 1
	}
	return 0
}

// Confidence is the distance from the boundary expressed as max(p, 1-p), in [0.5, 1].
// It is not a calibrated interval.
func Confidence(p float64) float64 {
	return math.Max(p, 1-p)
}

package assessment

// Recommendation is one of the five fixed advisory messages
type Recommendation string

const (
	RecommendHigh     Recommendation = "High probability of UTI. Immediate clinical evaluation recommended."
	RecommendModerate Recommendation = "Moderate UTI risk. Clinical evaluation within 24 hours recommended."
	RecommendPossible Recommendation = "Possible UTI. Monitor symptoms and consider medical consultation."
	RecommendLow      Recommendation = "Low UTI probability. Continue monitoring symptoms."
	RecommendUnlikely Recommendation = "UTI unlikely, but consult healthcare provider if symptoms persist."
)

// Confidence cut points, inclusive
const (
	HighConfidence     = 0.8
	ModerateConfidence = 0.6
)

// Recommend applies the triage rule table. Positive predictions never receive a
// negative message and vice versa, because both branches key off the same boundary
// as Decide.
func Recommend(probability, confidence float64) Recommendation {
	if probability >= DecisionBoundary {
		switch {
		case confidence >= HighConfidence:
			return RecommendHigh
		case confidence >= ModerateConfidence:
			return RecommendModerate
		default:
			return RecommendPossible
		}
	}
	if confidence >= HighConfidence {
		return RecommendLow
	}
	return RecommendUnlikely
}

// Recommendations lists every message in severity order
func Recommendations() []Recommendation {
	return []Recommendation{RecommendHigh, RecommendModerate, RecommendPossible, RecommendLow, RecommendUnlikely}
}

// Positive reports whether the message belongs to the positive branch
func (r Recommendation) Positive() bool {
	switch r {
	case RecommendHigh, RecommendModerate, RecommendPossible:
		return true
	}
	return false
}

// Risk is the short label shown on the web result panel
func (r Recommendation) Risk() string {
	switch r {
	case RecommendHigh:
		return "High risk"
	case RecommendModerate:
		return "Moderate risk"
	case RecommendPossible:
		return "Possible UTI"
	case RecommendLow:
		return "Low risk"
	case RecommendUnlikely:
		return "Unlikely"
	}
	return "Unknown"
}

// Level is a CSS-friendly severity key
func (r Recommendation) Level() string {
	switch r {
	case RecommendHigh:
		return "high"
	case RecommendModerate:
		return "moderate"
	case RecommendPossible:
		return "possible"
	case RecommendLow:
		return "low"
	}
	return "unlikely"
}

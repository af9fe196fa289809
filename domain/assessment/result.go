package assessment

import (
	"encoding/json"
	"fmt"
	"io"
)

// InvalidInputMessage is the error value returned for records that fail validation
const InvalidInputMessage = "Invalid input data"

// ScoringFailureMessage is shown when preprocessing or a model call fails
const ScoringFailureMessage = "The assessment could not be completed. Please check the input values and try again."

// ModelScore is one classifier's probability for the record
type ModelScore struct {
	Model       string  `json:"model"`
	Probability float64 `json:"probability"`
}

// Result is a single prediction. It is created per call and never stored.
type Result struct {
	Prediction     int            `json:"prediction"`
	Probability    float64        `json:"probability"`
	Confidence     float64        `json:"confidence"`
	Recommendation Recommendation `json:"recommendation"`
	ModelScores    []ModelScore   `json:"model_scores,omitempty"`
}

// NewResult derives the decision, confidence and advice from per-model scores
func NewResult(scores []ModelScore) (*Result, error) {
	probs := make([]float64, len(scores))
	for i, s := range scores {
		probs[i] = s.Probability
	}
	p, err := Ensemble(probs...)
	if err != nil {
		return nil, err
	}
	confidence := Confidence(p)
	return &Result{
		Prediction:     Decide(p),
		Probability:    p,
		Confidence:     confidence,
		Recommendation: Recommend(p, confidence),
		ModelScores:    scores,
	}, nil
}

// Positive reports whether a UTI is predicted
func (r *Result) Positive() bool {
	return r.Prediction == 1
}

// PredictionLabel is "Positive" or "Negative"
func (r *Result) PredictionLabel() string {
	if r.Positive() {
		return "Positive"
	}
	return "Negative"
}

// WriteReport prints the four-line text report used by the CLI
func (r *Result) WriteReport(w io.Writer) error {
	_, err := fmt.Fprintf(w, "\n--- UTI Risk Assessment ---\nPrediction: %s\nProbability: %.2f\nConfidence: %.2f\nRecommendation: %s\n",
		r.PredictionLabel(), r.Probability, r.Confidence, r.Recommendation)
	return err
}

// Outcome is either a Result or an error message, and marshals to exactly one
// of the two shapes: the result fields, or {"error": "..."}.
type Outcome struct {
	Result *Result
	Error  string
}

// Invalid is the outcome for records that fail validation
func Invalid() Outcome {
	return Outcome{Error: InvalidInputMessage}
}

// OK reports whether the outcome carries a result
func (o Outcome) OK() bool {
	return o.Error == "" && o.Result != nil
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.OK() {
		return json.Marshal(o.Result)
	}
	msg := o.Error
	if msg == "" {
		msg = ScoringFailureMessage
	}
	return json.Marshal(map[string]string{"error": msg})
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Error != nil {
		*o = Outcome{Error: *probe.Error}
		return nil
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*o = Outcome{Result: &r}
	return nil
}

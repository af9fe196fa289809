package app

import (
	"context"
	"time"

	"utitriage/domain/artifacts"
	"utitriage/domain/assessment"
	"utitriage/domain/core"
	"utitriage/domain/patient"
	"utitriage/internal"
	"utitriage/internal/errors"
	"utitriage/internal/preprocess"
)

// Predictor runs validate → preprocess → score → ensemble → advise against a
// fixed artifact set. It holds no mutable state and is safe for concurrent use.
type Predictor struct {
	set    *artifacts.Set
	prep   *preprocess.Preprocessor
	logger *internal.Logger
}

// Description is a read-only view of the loaded bundle
type Description struct {
	Version     string             `json:"version"`
	Checksum    string             `json:"checksum"`
	Contract    string             `json:"contract"`
	Classifiers []string           `json:"classifiers"`
	Thresholds  map[string]float64 `json:"thresholds"`
	LoadedAt    time.Time          `json:"loaded_at"`
}

// NewPredictor creates a predictor for an artifact set
func NewPredictor(set *artifacts.Set, logger *internal.Logger) (*Predictor, error) {
	if set == nil {
		return nil, errors.InternalError("predictor needs an artifact set")
	}
	prep, err := preprocess.New(set.Scaler())
	if err != nil {
		return nil, errors.ArtifactLoadFailed(artifacts.NameScaler, err)
	}
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &Predictor{set: set, prep: prep, logger: logger.With("Predictor")}, nil
}

// Predict scores a validated record. Any preprocessing or classifier failure is
// returned as SCORING_FAILED.
func (p *Predictor) Predict(ctx context.Context, rec patient.Record) (*assessment.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := core.NewAssessmentID()
	start := time.Now()

	x, err := p.prep.Vector(rec)
	if err != nil {
		p.logger.Warn("assessment %s: preprocessing failed: %v", id, err)
		return nil, errors.ScoringFailed("preprocessing", err)
	}

	classifiers := p.set.Classifiers()
	scores := make([]assessment.ModelScore, 0, len(classifiers))
	for _, c := range classifiers {
		prob, err := c.PredictProbability(x)
		if err != nil {
			p.logger.Warn("assessment %s: %s failed: %v", id, c.Name(), err)
			return nil, errors.ScoringFailed(c.Name(), err)
		}
		scores = append(scores, assessment.ModelScore{Model: c.Name(), Probability: prob})
	}

	res, err := assessment.NewResult(scores)
	if err != nil {
		p.logger.Warn("assessment %s: ensemble failed: %v", id, err)
		return nil, errors.ScoringFailed("ensemble", err)
	}

	p.logger.Debug("assessment %s: prediction=%d probability=%.4f in %s",
		id, res.Prediction, res.Probability, time.Since(start))
	return res, nil
}

// PredictRaw validates an open mapping before scoring. Invalid input yields the
// "Invalid input data" outcome and a nil error, without calling any classifier.
// Scoring failures yield an error outcome plus the underlying error.
func (p *Predictor) PredictRaw(ctx context.Context, raw map[string]any) (assessment.Outcome, error) {
	rec, err := patient.FromMap(raw)
	if err != nil {
		p.logger.Debug("rejected input: %v", err)
		return assessment.Invalid(), nil
	}

	res, err := p.Predict(ctx, rec)
	if err != nil {
		return assessment.Outcome{Error: assessment.ScoringFailureMessage}, err
	}
	return assessment.Outcome{Result: res}, nil
}

// Decode converts an open mapping into a record, tagging failures INVALID_INPUT
func Decode(raw map[string]any) (patient.Record, error) {
	rec, err := patient.FromMap(raw)
	if err != nil {
		return rec, errors.InvalidInput(assessment.InvalidInputMessage, err)
	}
	return rec, nil
}

// Describe reports what the predictor was loaded with
func (p *Predictor) Describe() Description {
	return Description{
		Version:     p.set.Version(),
		Checksum:    p.set.Checksum().String(),
		Contract:    patient.ContractVersion,
		Classifiers: p.set.ClassifierNames(),
		Thresholds:  p.set.Thresholds(),
		LoadedAt:    p.set.LoadedAt(),
	}
}

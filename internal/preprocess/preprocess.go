// Package preprocess turns a patient record into the model input vector.
package preprocess

import (
	"fmt"

	"utitriage/domain/patient"
	"utitriage/ports"
)

// Preprocessor lays a record out in FeatureOrder and rescales the numeric block
type Preprocessor struct {
	scaler ports.Scaler
}

// New creates a preprocessor around a fitted scaler. The scaler must expect
// exactly the numeric features, in order.
func New(scaler ports.Scaler) (*Preprocessor, error) {
	if scaler == nil {
		return nil, fmt.Errorf("preprocess: nil scaler")
	}
	if err := patient.CheckNumericOrder(scaler.Features()); err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	return &Preprocessor{scaler: scaler}, nil
}

// Raw is the unscaled vector with gender encoded
func Raw(rec patient.Record) []float64 {
	x := make([]float64, patient.FeatureCount)
	for i, name := range patient.FeatureOrder {
		x[i] = rec.Value(name)
	}
	return x
}

// Vector returns the 18-wide model input. Positions 0..3 hold the scaled
// measurements; the remaining 14 pass through unchanged.
func (p *Preprocessor) Vector(rec patient.Record) ([]float64, error) {
	x := Raw(rec)
	n := len(patient.NumericFeatures)

	scaled, err := p.scaler.Transform(x[:n:n])
	if err != nil {
		return nil, fmt.Errorf("scale measurements: %w", err)
	}
	if len(scaled) != n {
		return nil, fmt.Errorf("scaler returned %d values, expected %d", len(scaled), n)
	}
	copy(x[:n], scaled)
	return x, nil
}

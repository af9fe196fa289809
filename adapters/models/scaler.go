package models

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"utitriage/domain/patient"
)

type scalerFile struct {
	Format       string    `json:"format"`
	FeatureNames []string  `json:"feature_names"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// StandardScaler applies (x - mean) / scale column-wise, like sklearn's StandardScaler
type StandardScaler struct {
	features []string
	mean     []float64
	scale    []float64
}

// DecodeStandardScaler parses a scaler artifact fitted on the numeric features
func DecodeStandardScaler(data []byte) (*StandardScaler, error) {
	var f scalerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	return NewStandardScaler(f.FeatureNames, f.Mean, f.Scale)
}

// NewStandardScaler builds a scaler. A zero scale is replaced by 1, matching
// sklearn's handling of constant columns.
func NewStandardScaler(features []string, mean, scale []float64) (*StandardScaler, error) {
	if err := patient.CheckNumericOrder(features); err != nil {
		return nil, err
	}
	if len(mean) != len(features) || len(scale) != len(features) {
		return nil, fmt.Errorf("scaler has %d features, %d means and %d scales", len(features), len(mean), len(scale))
	}

	s := &StandardScaler{
		features: append([]string(nil), features...),
		mean:     append([]float64(nil), mean...),
		scale:    make([]float64, len(scale)),
	}
	for i, v := range scale {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0) || v < 0:
			return nil, fmt.Errorf("scale for %s is %v", features[i], v)
		case v == 0:
			s.scale[i] = 1
		default:
			s.scale[i] = v
		}
	}
	if floats.HasNaN(s.mean) {
		return nil, fmt.Errorf("scaler mean contains NaN")
	}
	return s, nil
}

// Features implements ports.Scaler
func (s *StandardScaler) Features() []string {
	return append([]string(nil), s.features...)
}

// Transform implements ports.Scaler
func (s *StandardScaler) Transform(values []float64) ([]float64, error) {
	if len(values) != len(s.mean) {
		return nil, fmt.Errorf("scaler expects %d values, got %d", len(s.mean), len(values))
	}
	out := make([]float64, len(values))
	floats.SubTo(out, values, s.mean)
	floats.Div(out, s.scale)
	return out, nil
}

package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

type thresholdFile struct {
	Format     string             `json:"format"`
	Thresholds map[string]float64 `json:"thresholds"`
}

// ThresholdTable holds the per-model cut points chosen during training
type ThresholdTable map[string]float64

// DecodeThresholds parses the threshold artifact. Values must lie in [0,1].
func DecodeThresholds(data []byte) (ThresholdTable, error) {
	var f thresholdFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode thresholds: %w", err)
	}
	for name, v := range f.Thresholds {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return nil, fmt.Errorf("threshold for %s is %v", name, v)
		}
	}
	if f.Thresholds == nil {
		return ThresholdTable{}, nil
	}
	return ThresholdTable(f.Thresholds), nil
}

// Models lists the table's model names, sorted
func (t ThresholdTable) Models() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

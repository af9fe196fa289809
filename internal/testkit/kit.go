package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"utitriage/domain/artifacts"
	"utitriage/domain/patient"
)

// DemoVersion is the bundle version of the demo artifacts
const DemoVersion = "demo-1"

// The demo bundle is small enough to reason about by hand:
//
//	scaler     mean [30 6.0 10 2], scale [10 1 4 2]
//	rf_model   tree 1 splits on nitrites <= 0.5 (leaf shares 0.1 / 0.9)
//	           tree 2 splits on scaled wbc <= 0 (leaf shares 0.2 / 0.8)
//	xgb_model  base 0.5, one stump on leukocyte_esterase < 0.5 (leaves -1.5 / 1.5)
//
// A record with nitrites, leukocyte esterase and wbc above 10 scores
// ((0.9+0.8)/2 + sigmoid(1.5)) / 2 ≈ 0.834; the opposite record ≈ 0.166.
var (
	demoScaler = map[string]any{
		"format":        artifacts.Registry[artifacts.NameScaler].Format,
		"feature_names": patient.NumericFeatures[:],
		"mean":          []float64{30, 6.0, 10, 2},
		"scale":         []float64{10, 1.0, 4, 2},
	}

	demoForest = map[string]any{
		"format":        artifacts.Registry[artifacts.NameRandomForest].Format,
		"feature_names": patient.FeatureOrder[:],
		"classes":       []int{0, 1},
		"trees": []map[string]any{
			stump(patient.IndexOf(patient.KeyNitrites), 0.5, []float64{9, 1}, []float64{1, 9}),
			stump(patient.IndexOf(patient.KeyWBC), 0.0, []float64{8, 2}, []float64{2, 8}),
		},
	}

	demoBoosted = map[string]any{
		"format":        artifacts.Registry[artifacts.NameBoosted].Format,
		"feature_names": patient.FeatureOrder[:],
		"objective":     "binary:logistic",
		"base_score":    0.5,
		"trees": []map[string]any{{
			"nodeid":          0,
			"depth":           0,
			"split":           fmt.Sprintf("f%d", patient.IndexOf(patient.KeyLeukocyteEsterase)),
			"split_condition": 0.5,
			"yes":             1,
			"no":              2,
			"missing":         1,
			"children": []map[string]any{
				{"nodeid": 1, "leaf": -1.5},
				{"nodeid": 2, "leaf": 1.5},
			},
		}},
	}

	demoThresholds = map[string]any{
		"format": artifacts.Registry[artifacts.NameThresholds].Format,
		"thresholds": map[string]float64{
			artifacts.NameRandomForest: 0.46,
			artifacts.NameBoosted:      0.52,
		},
	}
)

func stump(feature int, threshold float64, left, right []float64) map[string]any {
	return map[string]any{
		"children_left":  []int{1, -1, -1},
		"children_right": []int{2, -1, -1},
		"feature":        []int{feature, -2, -2},
		"threshold":      []float64{threshold, -2, -2},
		"value":          [][]float64{{10, 10}, left, right},
	}
}

// Bundle returns the demo artifacts keyed by artifact name
func Bundle() map[string][]byte {
	files := map[string][]byte{}
	for name, payload := range map[string]any{
		artifacts.NameRandomForest: demoForest,
		artifacts.NameBoosted:      demoBoosted,
		artifacts.NameScaler:       demoScaler,
		artifacts.NameThresholds:   demoThresholds,
	} {
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			panic(fmt.Sprintf("testkit: marshal %s: %v", name, err))
		}
		files[name] = data
	}
	return files
}

// WriteDir writes the demo bundle as <name>.json files into dir
func WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, data := range Bundle() {
		schema, err := artifacts.GetSchema(name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, schema.FileName()), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", schema.FileName(), err)
		}
	}
	return nil
}

package models_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"utitriage/adapters/models"
	"utitriage/domain/artifacts"
	"utitriage/domain/patient"
	"utitriage/internal/errors"
	"utitriage/internal/testkit"
)

func vector(set map[string]float64) []float64 {
	x := make([]float64, patient.FeatureCount)
	for name, v := range set {
		x[patient.IndexOf(name)] = v
	}
	return x
}

func TestRandomForestAveragesLeafShares(t *testing.T) {
	rf, err := models.DecodeRandomForest("rf_model", testkit.Bundle()[artifacts.NameRandomForest])
	require.NoError(t, err)
	assert.Equal(t, 2, rf.Trees())
	assert.Equal(t, "rf_model", rf.Name())

	p, err := rf.PredictProbability(vector(map[string]float64{patient.KeyNitrites: 1, patient.KeyWBC: 2}))
	require.NoError(t, err)
	assert.InDelta(t, 0.85, p, 1e-12)

	p, err = rf.PredictProbability(vector(map[string]float64{patient.KeyNitrites: 0, patient.KeyWBC: -1}))
	require.NoError(t, err)
	assert.InDelta(t, 0.15, p, 1e-12)

	// threshold is inclusive on the left branch
	p, err = rf.PredictProbability(vector(map[string]float64{patient.KeyNitrites: 0.5, patient.KeyWBC: 0}))
	require.NoError(t, err)
	assert.InDelta(t, 0.15, p, 1e-12)
}

func TestRandomForestRejectsWrongVectorLength(t *testing.T) {
	rf, err := models.DecodeRandomForest("rf_model", testkit.Bundle()[artifacts.NameRandomForest])
	require.NoError(t, err)
	_, err = rf.PredictProbability(make([]float64, 4))
	assert.Error(t, err)
}

func TestRandomForestValidation(t *testing.T) {
	base := func() map[string]any {
		var m map[string]any
		require.NoError(t, json.Unmarshal(testkit.Bundle()[artifacts.NameRandomForest], &m))
		return m
	}
	encode := func(m map[string]any) []byte {
		data, err := json.Marshal(m)
		require.NoError(t, err)
		return data
	}

	t.Run("feature order", func(t *testing.T) {
		m := base()
		names := append([]string(nil), patient.FeatureOrder[:]...)
		names[0], names[1] = names[1], names[0]
		m["feature_names"] = names
		_, err := models.DecodeRandomForest("rf", encode(m))
		assert.Error(t, err)
	})

	t.Run("no trees", func(t *testing.T) {
		m := base()
		m["trees"] = []any{}
		_, err := models.DecodeRandomForest("rf", encode(m))
		assert.Error(t, err)
	})

	t.Run("cycle", func(t *testing.T) {
		m := base()
		m["trees"] = []any{map[string]any{
			"children_left":  []int{0, -1, -1},
			"children_right": []int{2, -1, -1},
			"feature":        []int{0, -2, -2},
			"threshold":      []float64{0, -2, -2},
			"value":          [][]float64{{1, 1}, {1, 0}, {0, 1}},
		}}
		_, err := models.DecodeRandomForest("rf", encode(m))
		assert.Error(t, err)
	})

	t.Run("missing positive class", func(t *testing.T) {
		m := base()
		m["classes"] = []int{0, 2}
		_, err := models.DecodeRandomForest("rf", encode(m))
		assert.Error(t, err)
	})
}

func TestBoostedTreesLogisticLink(t *testing.T) {
	bt, err := models.DecodeBoostedTrees("xgb_model", testkit.Bundle()[artifacts.NameBoosted])
	require.NoError(t, err)
	assert.Equal(t, 1, bt.Trees())

	sig := func(m float64) float64 { return 1 / (1 + math.Exp(-m)) }

	p, err := bt.PredictProbability(vector(map[string]float64{patient.KeyLeukocyteEsterase: 1}))
	require.NoError(t, err)
	assert.InDelta(t, sig(1.5), p, 1e-12)

	p, err = bt.PredictProbability(vector(nil))
	require.NoError(t, err)
	assert.InDelta(t, sig(-1.5), p, 1e-12)

	x := vector(nil)
	x[patient.IndexOf(patient.KeyLeukocyteEsterase)] = math.NaN()
	p, err = bt.PredictProbability(x)
	require.NoError(t, err)
	assert.InDelta(t, sig(-1.5), p, 1e-12, "missing values follow the missing branch")
}

func TestBoostedTreesAcceptsFeatureNameSplits(t *testing.T) {
	doc := `{"format":"xgboost-json-dump/v1","objective":"binary:logistic","base_score":0.25,
		"feature_names":` + mustJSON(t, patient.FeatureOrder[:]) + `,
		"trees":[{"nodeid":0,"split":"fever","split_condition":0.5,"yes":1,"no":2,"missing":1,
			"children":[{"nodeid":1,"leaf":0.0},{"nodeid":2,"leaf":0.0}]}]}`
	bt, err := models.DecodeBoostedTrees("xgb", []byte(doc))
	require.NoError(t, err)

	p, err := bt.PredictProbability(vector(nil))
	require.NoError(t, err)
	assert.InDelta(t, 0.25, p, 1e-12)
}

func TestBoostedTreesValidation(t *testing.T) {
	names := mustJSON(t, patient.FeatureOrder[:])
	cases := map[string]string{
		"objective": `{"objective":"reg:squarederror","feature_names":` + names + `,"trees":[{"nodeid":0,"leaf":1}]}`,
		"base":      `{"base_score":1,"feature_names":` + names + `,"trees":[{"nodeid":0,"leaf":1}]}`,
		"split":     `{"feature_names":` + names + `,"trees":[{"nodeid":0,"split":"f99","yes":1,"no":2,"missing":1,"children":[{"nodeid":1,"leaf":0},{"nodeid":2,"leaf":0}]}]}`,
		"child":     `{"feature_names":` + names + `,"trees":[{"nodeid":0,"split":"f1","yes":1,"no":5,"missing":1,"children":[{"nodeid":1,"leaf":0},{"nodeid":2,"leaf":0}]}]}`,
		"empty":     `{"feature_names":` + names + `,"trees":[]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := models.DecodeBoostedTrees("xgb", []byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestStandardScaler(t *testing.T) {
	s, err := models.DecodeStandardScaler(testkit.Bundle()[artifacts.NameScaler])
	require.NoError(t, err)
	assert.Equal(t, patient.NumericFeatures[:], s.Features())

	out, err := s.Transform([]float64{35, 7.5, 18, 4})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 1.5, 2, 1}, out, 1e-12)

	_, err = s.Transform([]float64{1, 2})
	assert.Error(t, err)
}

func TestStandardScalerZeroScale(t *testing.T) {
	s, err := models.NewStandardScaler(patient.NumericFeatures[:], []float64{1, 1, 1, 1}, []float64{0, 1, 1, 1})
	require.NoError(t, err)
	out, err := s.Transform([]float64{3, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 2.0, out[0])

	_, err = models.NewStandardScaler(patient.NumericFeatures[:], []float64{1, 1, 1, 1}, []float64{-1, 1, 1, 1})
	assert.Error(t, err)
	_, err = models.NewStandardScaler([]string{"wbc", "age", "urine_ph", "rbc"}, []float64{1, 1, 1, 1}, []float64{1, 1, 1, 1})
	assert.Error(t, err)
}

func TestDecodeThresholds(t *testing.T) {
	table, err := models.DecodeThresholds(testkit.Bundle()[artifacts.NameThresholds])
	require.NoError(t, err)
	assert.Equal(t, []string{"rf_model", "xgb_model"}, table.Models())
	assert.Equal(t, 0.46, table["rf_model"])

	_, err = models.DecodeThresholds([]byte(`{"thresholds":{"rf_model":1.5}}`))
	assert.Error(t, err)
}

func TestDecodeBundle(t *testing.T) {
	set, err := models.DecodeBundle("v1", testkit.Bundle())
	require.NoError(t, err)

	assert.Equal(t, "v1", set.Version())
	assert.Equal(t, artifacts.ClassifierOrder, set.ClassifierNames())
	assert.False(t, set.Checksum().IsEmpty())
	assert.Len(t, set.Thresholds(), 2)
}

func TestDecodeBundleFailures(t *testing.T) {
	t.Run("missing artifact", func(t *testing.T) {
		files := testkit.Bundle()
		delete(files, artifacts.NameScaler)
		_, err := models.DecodeBundle("v1", files)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeArtifactLoadFailed))
	})

	t.Run("wrong format", func(t *testing.T) {
		files := testkit.Bundle()
		files[artifacts.NameBoosted] = files[artifacts.NameRandomForest]
		_, err := models.DecodeBundle("v1", files)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeArtifactLoadFailed))
		assert.Contains(t, err.Error(), artifacts.NameBoosted)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		files := testkit.Bundle()
		files[artifacts.NameThresholds] = []byte(`{"format": `)
		_, err := models.DecodeBundle("v1", files)
		require.Error(t, err)
		assert.Contains(t, err.Error(), artifacts.NameThresholds)
	})
}

func TestSniffFormat(t *testing.T) {
	got, err := models.SniffFormat([]byte(`{"format":"threshold-table/v1","thresholds":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "threshold-table/v1", got)

	_, err = models.SniffFormat([]byte(`{"thresholds":{}}`))
	assert.Error(t, err)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

package app

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"utitriage/adapters/models"
	"utitriage/domain/artifacts"
	"utitriage/domain/assessment"
	"utitriage/domain/core"
	"utitriage/domain/patient"
	"utitriage/internal"
	"utitriage/internal/errors"
	"utitriage/internal/testkit"
	"utitriage/ports"
)

// MockClassifier records every scoring call
type MockClassifier struct {
	mock.Mock
	name string
}

func (m *MockClassifier) Name() string { return m.name }

func (m *MockClassifier) PredictProbability(vector []float64) (float64, error) {
	args := m.Called(vector)
	return args.Get(0).(float64), args.Error(1)
}

func quietLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError)
}

func mockPredictor(t *testing.T, classifiers ...*MockClassifier) *Predictor {
	t.Helper()
	scaler, err := models.DecodeStandardScaler(testkit.Bundle()[artifacts.NameScaler])
	require.NoError(t, err)

	list := make([]ports.Classifier, len(classifiers))
	for i, c := range classifiers {
		list[i] = c
	}
	set, err := artifacts.NewSet("test", core.NewHash([]byte("test")), list, scaler, nil)
	require.NoError(t, err)

	p, err := NewPredictor(set, quietLogger())
	require.NoError(t, err)
	return p
}

func demoPredictor(t *testing.T) *Predictor {
	t.Helper()
	p, err := NewPredictor(testkit.Set(), quietLogger())
	require.NoError(t, err)
	return p
}

func TestScenarioPositive(t *testing.T) {
	p := demoPredictor(t)
	res, err := p.Predict(context.Background(), testkit.PositiveRecord())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Prediction)
	assert.GreaterOrEqual(t, res.Probability, 0.5)
	assert.InDelta(t, (0.85+1/(1+math.Exp(-1.5)))/2, res.Probability, 1e-9)
	assert.Equal(t, assessment.RecommendHigh, res.Recommendation)
	require.Len(t, res.ModelScores, 2)
	assert.Equal(t, artifacts.NameRandomForest, res.ModelScores[0].Model)
	assert.Equal(t, artifacts.NameBoosted, res.ModelScores[1].Model)
}

func TestScenarioNegative(t *testing.T) {
	p := demoPredictor(t)
	res, err := p.Predict(context.Background(), testkit.NegativeRecord())
	require.NoError(t, err)

	assert.Equal(t, 0, res.Prediction)
	assert.Less(t, res.Probability, 0.5)
	assert.Equal(t, assessment.RecommendLow, res.Recommendation)
}

func TestScenarioMissingField(t *testing.T) {
	rf := &MockClassifier{name: "rf_model"}
	xgb := &MockClassifier{name: "xgb_model"}
	p := mockPredictor(t, rf, xgb)

	out, err := p.PredictRaw(context.Background(), testkit.Without(testkit.PositiveMap(), patient.KeyWBC))
	require.NoError(t, err)
	assert.False(t, out.OK())
	assert.Equal(t, assessment.InvalidInputMessage, out.Error)

	rf.AssertNotCalled(t, "PredictProbability", mock.Anything)
	xgb.AssertNotCalled(t, "PredictProbability", mock.Anything)
}

func TestMissingAnyFieldNeverScores(t *testing.T) {
	rf := &MockClassifier{name: "rf_model"}
	p := mockPredictor(t, rf)

	for _, name := range patient.FeatureOrder {
		out, err := p.PredictRaw(context.Background(), testkit.Without(testkit.NegativeMap(), name))
		require.NoError(t, err)
		assert.Equal(t, assessment.Invalid(), out, name)
	}
	out, err := p.PredictRaw(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, assessment.Invalid(), out)

	rf.AssertNotCalled(t, "PredictProbability", mock.Anything)
}

func TestInvalidValuesNeverScore(t *testing.T) {
	rf := &MockClassifier{name: "rf_model"}
	p := mockPredictor(t, rf)

	bad := testkit.PositiveMap()
	bad[patient.KeyGender] = "X"
	out, err := p.PredictRaw(context.Background(), bad)
	require.NoError(t, err)
	assert.False(t, out.OK())

	bad = testkit.PositiveMap()
	bad[patient.KeyFever] = 2
	out, err = p.PredictRaw(context.Background(), bad)
	require.NoError(t, err)
	assert.False(t, out.OK())

	rf.AssertNotCalled(t, "PredictProbability", mock.Anything)
}

func TestBoundaryScenario(t *testing.T) {
	rf := &MockClassifier{name: "rf_model"}
	xgb := &MockClassifier{name: "xgb_model"}
	rf.On("PredictProbability", mock.Anything).Return(0.4, nil)
	xgb.On("PredictProbability", mock.Anything).Return(0.6, nil)
	p := mockPredictor(t, rf, xgb)

	out, err := p.PredictRaw(context.Background(), testkit.NegativeMap())
	require.NoError(t, err)
	require.True(t, out.OK())

	assert.Equal(t, 1, out.Result.Prediction)
	assert.InDelta(t, 0.5, out.Result.Confidence, 1e-12)
	assert.Equal(t, assessment.RecommendPossible, out.Result.Recommendation)
	rf.AssertNumberOfCalls(t, "PredictProbability", 1)
	xgb.AssertNumberOfCalls(t, "PredictProbability", 1)
}

func TestClassifiersShareOneVector(t *testing.T) {
	var seen [][]float64
	capture := func(args mock.Arguments) {
		seen = append(seen, args.Get(0).([]float64))
	}
	a := &MockClassifier{name: "a"}
	b := &MockClassifier{name: "b"}
	c := &MockClassifier{name: "c"}
	for _, m := range []*MockClassifier{a, b, c} {
		m.On("PredictProbability", mock.Anything).Run(capture).Return(0.3, nil)
	}
	p := mockPredictor(t, a, b, c)

	res, err := p.Predict(context.Background(), testkit.PositiveRecord())
	require.NoError(t, err)
	assert.InDelta(t, 0.3, res.Probability, 1e-12)

	require.Len(t, seen, 3)
	assert.Len(t, seen[0], patient.FeatureCount)
	assert.Equal(t, seen[0], seen[1])
	assert.Equal(t, seen[1], seen[2])
}

func TestClassifierFailureIsScoringFailure(t *testing.T) {
	rf := &MockClassifier{name: "rf_model"}
	xgb := &MockClassifier{name: "xgb_model"}
	rf.On("PredictProbability", mock.Anything).Return(0.0, fmt.Errorf("corrupt tree"))
	p := mockPredictor(t, rf, xgb)

	_, err := p.Predict(context.Background(), testkit.PositiveRecord())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeScoringFailed))
	xgb.AssertNotCalled(t, "PredictProbability", mock.Anything)

	out, err := p.PredictRaw(context.Background(), testkit.PositiveMap())
	require.Error(t, err)
	assert.False(t, out.OK())
	assert.Equal(t, assessment.ScoringFailureMessage, out.Error)
}

func TestOutOfRangeProbabilityIsScoringFailure(t *testing.T) {
	rf := &MockClassifier{name: "rf_model"}
	rf.On("PredictProbability", mock.Anything).Return(1.7, nil)
	p := mockPredictor(t, rf)

	_, err := p.Predict(context.Background(), testkit.PositiveRecord())
	assert.True(t, errors.HasCode(err, errors.CodeScoringFailed))
}

func TestPredictHonorsCancelledContext(t *testing.T) {
	rf := &MockClassifier{name: "rf_model"}
	p := mockPredictor(t, rf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Predict(ctx, testkit.PositiveRecord())
	assert.ErrorIs(t, err, context.Canceled)
	rf.AssertNotCalled(t, "PredictProbability", mock.Anything)
}

func TestGenderEncodingIsStable(t *testing.T) {
	p := demoPredictor(t)
	rec := testkit.PositiveRecord()

	first, err := p.Predict(context.Background(), rec)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := p.Predict(context.Background(), rec)
		require.NoError(t, err)
		assert.Equal(t, first.Probability, again.Probability)
	}
}

func TestConcurrentPredictions(t *testing.T) {
	p := demoPredictor(t)
	want, err := p.Predict(context.Background(), testkit.PositiveRecord())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Predict(context.Background(), testkit.PositiveRecord())
			assert.NoError(t, err)
			assert.Equal(t, want.Probability, got.Probability)
		}()
	}
	wg.Wait()
}

func TestDecodeTagsInvalidInput(t *testing.T) {
	_, err := Decode(testkit.Without(testkit.PositiveMap(), patient.KeyAge))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	var missing *patient.MissingFeaturesError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{patient.KeyAge}, missing.Missing)
}

func TestDescribe(t *testing.T) {
	d := demoPredictor(t).Describe()
	assert.Equal(t, testkit.DemoVersion, d.Version)
	assert.Equal(t, patient.ContractVersion, d.Contract)
	assert.Equal(t, artifacts.ClassifierOrder, d.Classifiers)
	assert.Equal(t, 0.46, d.Thresholds[artifacts.NameRandomForest])
}

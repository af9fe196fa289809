package preprocess

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"utitriage/adapters/models"
	"utitriage/domain/patient"
	"utitriage/internal/testkit"
)

type fixedScaler struct {
	features []string
	out      []float64
	err      error
}

func (s fixedScaler) Features() []string { return s.features }
func (s fixedScaler) Transform([]float64) ([]float64, error) {
	return s.out, s.err
}

func demoScaler(t *testing.T) *models.StandardScaler {
	t.Helper()
	s, err := models.NewStandardScaler(patient.NumericFeatures[:], []float64{30, 6, 10, 2}, []float64{10, 1, 4, 2})
	require.NoError(t, err)
	return s
}

func TestVectorLayout(t *testing.T) {
	p, err := New(demoScaler(t))
	require.NoError(t, err)

	rec := testkit.PositiveRecord()
	x, err := p.Vector(rec)
	require.NoError(t, err)
	require.Len(t, x, patient.FeatureCount)

	assert.InDeltaSlice(t, []float64{0.5, 1.5, 2, 1}, x[:4], 1e-12)
	for i, name := range patient.FeatureOrder[4:] {
		assert.Equal(t, rec.Value(name), x[i+4], name)
	}
	assert.Equal(t, 1.0, x[patient.IndexOf(patient.KeyGender)])
}

func TestVectorDoesNotDependOnCallOrder(t *testing.T) {
	p, err := New(demoScaler(t))
	require.NoError(t, err)

	first, err := p.Vector(testkit.NegativeRecord())
	require.NoError(t, err)
	_, err = p.Vector(testkit.PositiveRecord())
	require.NoError(t, err)
	again, err := p.Vector(testkit.NegativeRecord())
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.Equal(t, 0.0, first[patient.IndexOf(patient.KeyGender)])
}

func TestVectorScalerFailures(t *testing.T) {
	p, err := New(fixedScaler{features: patient.NumericFeatures[:], err: fmt.Errorf("boom")})
	require.NoError(t, err)
	_, err = p.Vector(testkit.NegativeRecord())
	assert.Error(t, err)

	p, err = New(fixedScaler{features: patient.NumericFeatures[:], out: []float64{1, 2}})
	require.NoError(t, err)
	_, err = p.Vector(testkit.NegativeRecord())
	assert.Error(t, err)
}

func TestNewRejectsMismatchedScaler(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
	_, err = New(fixedScaler{features: []string{"age"}})
	assert.Error(t, err)
}

func TestRawDoesNotScale(t *testing.T) {
	x := Raw(testkit.PositiveRecord())
	assert.Equal(t, []float64{35, 7.5, 18, 4}, x[:4])
}

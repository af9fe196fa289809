package patient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeMap() map[string]any {
	return map[string]any{
		KeyFrequentUrination: 1, KeyPainfulUrination: 1, KeyLowerAbdominalPain: 0,
		KeyCloudyUrine: 1, KeyBloodInUrine: 0, KeyFever: 0, KeyUrgentUrination: 1,
		KeyFoulSmellingUrine: 0, KeyNitrites: 1, KeyLeukocyteEsterase: 1,
		KeyAge: 35, KeyUrinePH: 7.5, KeyWBC: 18.0, KeyRBC: 4.0,
		KeyGender: "F", KeyDiabetes: 0, KeyHypertension: 0, KeyBacteria: 1,
	}
}

func TestFeatureOrderIsPinned(t *testing.T) {
	expected := []string{
		"age", "urine_ph", "wbc", "rbc",
		"frequent_urination", "painful_urination", "lower_abdominal_pain",
		"cloudy_urine", "blood_in_urine", "fever", "urgent_urination",
		"foul_smelling_urine", "nitrites", "leukocyte_esterase",
		"gender", "diabetes", "hypertension", "bacteria",
	}
	assert.Equal(t, expected, FeatureOrder[:])
	assert.Equal(t, 18, FeatureCount)
	assert.Equal(t, FeatureOrder[:4], NumericFeatures[:])
	assert.ElementsMatch(t, FeatureOrder[:], RequiredFeatures)
}

func TestValidateReportsExactlyMissingKeys(t *testing.T) {
	raw := completeMap()
	delete(raw, KeyWBC)
	delete(raw, KeyFever)
	raw["unrelated"] = "ignored"

	err := Validate(raw)
	require.Error(t, err)

	var missing *MissingFeaturesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{KeyFever, KeyWBC}, missing.Missing)
	assert.Equal(t, "missing features: [fever, wbc]", err.Error())
}

func TestValidateIgnoresValues(t *testing.T) {
	raw := completeMap()
	raw[KeyAge] = "not a number"
	raw[KeyGender] = "X"
	assert.NoError(t, Validate(raw))
}

func TestFromMap(t *testing.T) {
	rec, err := FromMap(completeMap())
	require.NoError(t, err)

	assert.Equal(t, 35, rec.Age)
	assert.Equal(t, 7.5, rec.UrinePH)
	assert.Equal(t, GenderFemale, rec.Gender)
	assert.Equal(t, Present, rec.Nitrites)
	assert.Equal(t, Absent, rec.Fever)
	assert.Equal(t, Present, rec.Bacteria)
}

func TestFromMapAcceptsJSONNumbersAndStrings(t *testing.T) {
	raw := completeMap()
	raw[KeyAge] = json.Number("42")
	raw[KeyWBC] = " 12.5 "
	raw[KeyGender] = " m "

	rec, err := FromMap(raw)
	require.NoError(t, err)
	assert.Equal(t, 42, rec.Age)
	assert.Equal(t, 12.5, rec.WBC)
	assert.Equal(t, GenderMale, rec.Gender)
}

func TestFromMapRejectsBadValues(t *testing.T) {
	cases := map[string]struct {
		key   string
		value any
	}{
		"gender outside M/F":  {KeyGender, "X"},
		"gender not a string": {KeyGender, 1},
		"flag out of range":   {KeyNitrites, 2},
		"fractional age":      {KeyAge, 35.5},
		"negative age":        {KeyAge, -1},
		"implausible age":     {KeyAge, MaxAge + 1},
		"overflowing age":     {KeyAge, 1e20},
		"text measurement":    {KeyRBC, "many"},
		"null measurement":    {KeyUrinePH, nil},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			raw := completeMap()
			raw[tc.key] = tc.value

			_, err := FromMap(raw)
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.key, fieldErr.Field)
		})
	}
}

func TestFromMapMissingBeforeTypeErrors(t *testing.T) {
	raw := completeMap()
	raw[KeyGender] = "X"
	delete(raw, KeyBacteria)

	_, err := FromMap(raw)
	var missing *MissingFeaturesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{KeyBacteria}, missing.Missing)
}

func TestGenderEncodingIsStable(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, GenderMale.Code())
		assert.Equal(t, 1.0, GenderFemale.Code())
	}
}

func TestToMapRoundTrip(t *testing.T) {
	rec, err := FromMap(completeMap())
	require.NoError(t, err)

	again, err := FromMap(rec.ToMap())
	require.NoError(t, err)
	assert.Equal(t, rec, again)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Frequent Urination", Label(KeyFrequentUrination))
	assert.Equal(t, "Foul Smelling Urine", Label(KeyFoulSmellingUrine))
	assert.Equal(t, "Urine pH level", Label(KeyUrinePH))
}

func TestCheckOrder(t *testing.T) {
	assert.NoError(t, CheckOrder(FeatureOrder[:]))

	swapped := append([]string(nil), FeatureOrder[:]...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	assert.Error(t, CheckOrder(swapped))
	assert.Error(t, CheckOrder(FeatureOrder[:17]))

	assert.NoError(t, CheckNumericOrder([]string{"age", "urine_ph", "wbc", "rbc"}))
	assert.Error(t, CheckNumericOrder([]string{"age", "wbc", "urine_ph", "rbc"}))
}

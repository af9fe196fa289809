package patient

import (
	"fmt"
	"strings"
)

// ContractVersion pins FeatureOrder. Artifact bundles declare the feature names
// they were trained on and are rejected when those differ from FeatureOrder.
const ContractVersion = "uti-features/v1"

// Feature names
const (
	KeyAge                = "age"
	KeyUrinePH            = "urine_ph"
	KeyWBC                = "wbc"
	KeyRBC                = "rbc"
	KeyFrequentUrination  = "frequent_urination"
	KeyPainfulUrination   = "painful_urination"
	KeyLowerAbdominalPain = "lower_abdominal_pain"
	KeyCloudyUrine        = "cloudy_urine"
	KeyBloodInUrine       = "blood_in_urine"
	KeyFever              = "fever"
	KeyUrgentUrination    = "urgent_urination"
	KeyFoulSmellingUrine  = "foul_smelling_urine"
	KeyNitrites           = "nitrites"
	KeyLeukocyteEsterase  = "leukocyte_esterase"
	KeyGender             = "gender"
	KeyDiabetes           = "diabetes"
	KeyHypertension       = "hypertension"
	KeyBacteria           = "bacteria"
)

// FeatureOrder is the column order the classifiers were trained on.
var FeatureOrder = [...]string{
	KeyAge, KeyUrinePH, KeyWBC, KeyRBC,
	KeyFrequentUrination, KeyPainfulUrination, KeyLowerAbdominalPain,
	KeyCloudyUrine, KeyBloodInUrine, KeyFever, KeyUrgentUrination,
	KeyFoulSmellingUrine, KeyNitrites, KeyLeukocyteEsterase,
	KeyGender, KeyDiabetes, KeyHypertension, KeyBacteria,
}

// FeatureCount is the length of every model input vector
const FeatureCount = len(FeatureOrder)

// NumericFeatures are the scaled measurements; they occupy FeatureOrder[0:4].
var NumericFeatures = [...]string{KeyAge, KeyUrinePH, KeyWBC, KeyRBC}

// BinaryFeatures are the symptom and dipstick indicators
var BinaryFeatures = [...]string{
	KeyFrequentUrination, KeyPainfulUrination, KeyLowerAbdominalPain,
	KeyCloudyUrine, KeyBloodInUrine, KeyFever, KeyUrgentUrination,
	KeyFoulSmellingUrine, KeyNitrites, KeyLeukocyteEsterase,
}

// ComorbidityFeatures are the 0/1 fields grouped with gender
var ComorbidityFeatures = [...]string{KeyDiabetes, KeyHypertension, KeyBacteria}

// RequiredFeatures lists every key in the order missing keys are reported:
// symptoms, then measurements, then categorical data.
var RequiredFeatures = func() []string {
	out := make([]string, 0, FeatureCount)
	out = append(out, BinaryFeatures[:]...)
	out = append(out, NumericFeatures[:]...)
	out = append(out, KeyGender)
	out = append(out, ComorbidityFeatures[:]...)
	return out
}()

// MissingFeaturesError lists the required keys absent from an input mapping
type MissingFeaturesError struct {
	Missing []string
}

func (e *MissingFeaturesError) Error() string {
	return fmt.Sprintf("missing features: [%s]", strings.Join(e.Missing, ", "))
}

// Validate checks that every required feature key is present. Values are not
// inspected and unknown keys are ignored.
func Validate(raw map[string]any) error {
	var missing []string
	for _, name := range RequiredFeatures {
		if _, ok := raw[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingFeaturesError{Missing: missing}
	}
	return nil
}

// IndexOf returns the position of name in FeatureOrder, or -1
func IndexOf(name string) int {
	for i, f := range FeatureOrder {
		if f == name {
			return i
		}
	}
	return -1
}

// CheckOrder compares a declared feature list with FeatureOrder.
func CheckOrder(declared []string) error {
	if len(declared) != FeatureCount {
		return fmt.Errorf("expected %d features, artifact declares %d", FeatureCount, len(declared))
	}
	for i, name := range declared {
		if name != FeatureOrder[i] {
			return fmt.Errorf("feature %d is %q, contract %s expects %q", i, name, ContractVersion, FeatureOrder[i])
		}
	}
	return nil
}

// CheckNumericOrder compares a scaler's declared columns with NumericFeatures.
func CheckNumericOrder(declared []string) error {
	if len(declared) != len(NumericFeatures) {
		return fmt.Errorf("expected %d scaled features, artifact declares %d", len(NumericFeatures), len(declared))
	}
	for i, name := range declared {
		if name != NumericFeatures[i] {
			return fmt.Errorf("scaled feature %d is %q, expected %q", i, name, NumericFeatures[i])
		}
	}
	return nil
}

var labelOverrides = map[string]string{
	KeyUrinePH: "Urine pH level",
	KeyWBC:     "White Blood Cell count",
	KeyRBC:     "Red Blood Cell count",
	KeyGender:  "Gender (M/F)",
	KeyAge:     "Patient's age",
}

// Label is the human readable prompt for a feature, e.g. "Frequent Urination".
func Label(name string) string {
	if l, ok := labelOverrides[name]; ok {
		return l
	}
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

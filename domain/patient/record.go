package patient

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Flag is a 0/1 indicator
type Flag uint8

const (
	Absent  Flag = 0
	Present Flag = 1
)

// ParseFlag accepts exactly 0 or 1
func ParseFlag(v float64) (Flag, error) {
	switch v {
	case 0:
		return Absent, nil
	case 1:
		return Present, nil
	}
	return Absent, fmt.Errorf("must be 0 or 1, got %v", v)
}

// Gender is the patient's recorded sex, "M" or "F"
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// ParseGender trims and upper-cases s; anything other than M or F is rejected.
func ParseGender(s string) (Gender, error) {
	switch Gender(strings.ToUpper(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	}
	return "", fmt.Errorf("must be M or F, got %q", s)
}

// Code is the model encoding: M=0, F=1.
func (g Gender) Code() float64 {
	if g == GenderFemale {
		return 1
	}
	return 0
}

// Record is one patient's complete feature set.
type Record struct {
	Age     int     `json:"age"`
	UrinePH float64 `json:"urine_ph"`
	WBC     float64 `json:"wbc"`
	RBC     float64 `json:"rbc"`

	FrequentUrination  Flag `json:"frequent_urination"`
	PainfulUrination   Flag `json:"painful_urination"`
	LowerAbdominalPain Flag `json:"lower_abdominal_pain"`
	CloudyUrine        Flag `json:"cloudy_urine"`
	BloodInUrine       Flag `json:"blood_in_urine"`
	Fever              Flag `json:"fever"`
	UrgentUrination    Flag `json:"urgent_urination"`
	FoulSmellingUrine  Flag `json:"foul_smelling_urine"`
	Nitrites           Flag `json:"nitrites"`
	LeukocyteEsterase  Flag `json:"leukocyte_esterase"`

	Gender       Gender `json:"gender"`
	Diabetes     Flag   `json:"diabetes"`
	Hypertension Flag   `json:"hypertension"`
	Bacteria     Flag   `json:"bacteria"`
}

// FieldError reports a present value that does not fit its declared type
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FromMap builds a Record from an open mapping. Missing keys are reported all
// at once as *MissingFeaturesError; the first badly typed value as *FieldError.
func FromMap(raw map[string]any) (Record, error) {
	var rec Record
	if err := Validate(raw); err != nil {
		return rec, err
	}

	g, ok := raw[KeyGender].(string)
	if !ok {
		return rec, &FieldError{Field: KeyGender, Reason: fmt.Sprintf("expected a string, got %T", raw[KeyGender])}
	}
	gender, err := ParseGender(g)
	if err != nil {
		return rec, &FieldError{Field: KeyGender, Reason: err.Error()}
	}
	rec.Gender = gender

	for _, name := range FeatureOrder {
		if name == KeyGender {
			continue
		}
		v, err := toFloat(raw[name])
		if err != nil {
			return rec, &FieldError{Field: name, Reason: err.Error()}
		}
		if err := rec.Set(name, v); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// MaxAge is the largest age accepted, in years
const MaxAge = 150

// Set assigns a numeric feature by name. Gender is not settable this way.
func (r *Record) Set(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &FieldError{Field: name, Reason: "must be a finite number"}
	}
	switch name {
	case KeyAge:
		if v < 0 || v != math.Trunc(v) {
			return &FieldError{Field: name, Reason: fmt.Sprintf("must be a whole number of years >= 0, got %v", v)}
		}
		if v > MaxAge {
			return &FieldError{Field: name, Reason: fmt.Sprintf("must be at most %d years, got %v", MaxAge, v)}
		}
		r.Age = int(v)
		return nil
	case KeyUrinePH:
		r.UrinePH = v
		return nil
	case KeyWBC:
		r.WBC = v
		return nil
	case KeyRBC:
		r.RBC = v
		return nil
	}

	f := r.flag(name)
	if f == nil {
		return &FieldError{Field: name, Reason: "not a numeric feature"}
	}
	parsed, err := ParseFlag(v)
	if err != nil {
		return &FieldError{Field: name, Reason: err.Error()}
	}
	*f = parsed
	return nil
}

func (r *Record) flag(name string) *Flag {
	switch name {
	case KeyFrequentUrination:
		return &r.FrequentUrination
	case KeyPainfulUrination:
		return &r.PainfulUrination
	case KeyLowerAbdominalPain:
		return &r.LowerAbdominalPain
	case KeyCloudyUrine:
		return &r.CloudyUrine
	case KeyBloodInUrine:
		return &r.BloodInUrine
	case KeyFever:
		return &r.Fever
	case KeyUrgentUrination:
		return &r.UrgentUrination
	case KeyFoulSmellingUrine:
		return &r.FoulSmellingUrine
	case KeyNitrites:
		return &r.Nitrites
	case KeyLeukocyteEsterase:
		return &r.LeukocyteEsterase
	case KeyDiabetes:
		return &r.Diabetes
	case KeyHypertension:
		return &r.Hypertension
	case KeyBacteria:
		return &r.Bacteria
	}
	return nil
}

// Value returns the unscaled model value of a feature, with gender encoded.
func (r Record) Value(name string) float64 {
	switch name {
	case KeyAge:
		return float64(r.Age)
	case KeyUrinePH:
		return r.UrinePH
	case KeyWBC:
		return r.WBC
	case KeyRBC:
		return r.RBC
	case KeyGender:
		return r.Gender.Code()
	}
	if f := r.flag(name); f != nil {
		return float64(*f)
	}
	return math.NaN()
}

// ToMap is the inverse of FromMap
func (r Record) ToMap() map[string]any {
	out := make(map[string]any, FeatureCount)
	for _, name := range FeatureOrder {
		switch name {
		case KeyGender:
			out[name] = string(r.Gender)
		case KeyAge:
			out[name] = r.Age
		case KeyUrinePH, KeyWBC, KeyRBC:
			out[name] = r.Value(name)
		default:
			out[name] = int(r.Value(name))
		}
	}
	return out
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case uint8:
		return float64(t), nil
	case uint16:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case Flag:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", t)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("value is null")
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

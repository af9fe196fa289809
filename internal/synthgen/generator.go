package synthgen

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"utitriage/domain/patient"
)

// LabelColumn holds the class: 1 for UTI, 0 otherwise
const LabelColumn = "UTI"

// Columns is the file layout: symptoms, demographics, labs, then the label.
// Gender is encoded 0 Male, 1 Female.
var Columns = []string{
	patient.KeyFrequentUrination, patient.KeyPainfulUrination, patient.KeyLowerAbdominalPain,
	patient.KeyCloudyUrine, patient.KeyBloodInUrine, patient.KeyFever,
	patient.KeyUrgentUrination, patient.KeyFoulSmellingUrine,
	patient.KeyNitrites, patient.KeyLeukocyteEsterase, patient.KeyUrinePH,
	patient.KeyAge, patient.KeyGender, patient.KeyDiabetes, patient.KeyHypertension,
	patient.KeyWBC, patient.KeyRBC, patient.KeyBacteria,
	LabelColumn,
}

// symptomRates are the positive-class symptom probabilities. The negative
// class uses a tenth of each.
var symptomRates = []struct {
	key  string
	rate float64
}{
	{patient.KeyFrequentUrination, 0.9},
	{patient.KeyPainfulUrination, 0.85},
	{patient.KeyLowerAbdominalPain, 0.75},
	{patient.KeyCloudyUrine, 0.7},
	{patient.KeyBloodInUrine, 0.4},
	{patient.KeyFever, 0.5},
	{patient.KeyUrgentUrination, 0.85},
	{patient.KeyFoulSmellingUrine, 0.5},
}

const negativeSymptomFactor = 0.1

const (
	MinAge = 18
	MaxAge = 80
)

// classProfile holds the per-class demographic and lab distributions
type classProfile struct {
	ageMu, ageSigma      float64
	female               float64
	diabetes             float64
	hypertension         float64
	wbcMin, wbcMax       float64
	rbcMin, rbcMax       float64
	nitrites, leukocytes float64
	phMin, phMax         float64
	bacteria             float64
	symptomFactor        float64
}

var (
	positiveProfile = classProfile{
		ageMu: 40, ageSigma: 15, female: 0.6, diabetes: 0.25, hypertension: 0.3,
		wbcMin: 12, wbcMax: 20, rbcMin: 0, rbcMax: 6, nitrites: 0.85, leukocytes: 0.9,
		phMin: 6.5, phMax: 8.0, bacteria: 0.9, symptomFactor: 1,
	}
	negativeProfile = classProfile{
		ageMu: 30, ageSigma: 10, female: 0.6, diabetes: 0.05, hypertension: 0.1,
		wbcMin: 5, wbcMax: 10, rbcMin: 0, rbcMax: 2, nitrites: 0.1, leukocytes: 0.1,
		phMin: 4.5, phMax: 6.5, bacteria: 0.1, symptomFactor: negativeSymptomFactor,
	}
)

// Config controls the size, class balance and randomness of a dataset
type Config struct {
	Rows          int
	Seed          uint64
	PositiveShare float64
}

func DefaultConfig() Config {
	return Config{
		Rows:          100000,
		Seed:          42,
		PositiveShare: 0.5,
	}
}

// Dataset is the in-memory table. Rows align with Headers.
type Dataset struct {
	Headers []string
	Rows    [][]float64
}

// Generate draws cfg.Rows records. The first floor(Rows*PositiveShare) rows
// are UTI-positive and the rest negative.
func Generate(cfg Config) (*Dataset, error) {
	if cfg.Rows <= 0 {
		return nil, fmt.Errorf("rows must be > 0")
	}
	if cfg.PositiveShare < 0 || cfg.PositiveShare > 1 || math.IsNaN(cfg.PositiveShare) {
		return nil, fmt.Errorf("positive share must be in [0,1], got %v", cfg.PositiveShare)
	}

	src := rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)
	positives := int(float64(cfg.Rows) * cfg.PositiveShare)

	ds := &Dataset{Headers: append([]string(nil), Columns...), Rows: make([][]float64, 0, cfg.Rows)}
	for i := 0; i < cfg.Rows; i++ {
		if i < positives {
			ds.Rows = append(ds.Rows, draw(src, positiveProfile, 1))
		} else {
			ds.Rows = append(ds.Rows, draw(src, negativeProfile, 0))
		}
	}
	return ds, nil
}

func draw(src rand.Source, p classProfile, label float64) []float64 {
	bern := func(prob float64) float64 {
		return distuv.Bernoulli{P: prob, Src: src}.Rand()
	}
	uniform := func(lo, hi float64) float64 {
		return distuv.Uniform{Min: lo, Max: hi, Src: src}.Rand()
	}

	values := make(map[string]float64, len(Columns))
	for _, s := range symptomRates {
		values[s.key] = bern(s.rate * p.symptomFactor)
	}

	age := distuv.Normal{Mu: p.ageMu, Sigma: p.ageSigma, Src: src}.Rand()
	values[patient.KeyAge] = math.Max(MinAge, math.Min(age, MaxAge))
	values[patient.KeyGender] = bern(p.female)
	values[patient.KeyDiabetes] = bern(p.diabetes)
	values[patient.KeyHypertension] = bern(p.hypertension)

	values[patient.KeyWBC] = uniform(p.wbcMin, p.wbcMax)
	values[patient.KeyRBC] = uniform(p.rbcMin, p.rbcMax)
	values[patient.KeyNitrites] = bern(p.nitrites)
	values[patient.KeyLeukocyteEsterase] = bern(p.leukocytes)
	values[patient.KeyUrinePH] = uniform(p.phMin, p.phMax)
	values[patient.KeyBacteria] = bern(p.bacteria)
	values[LabelColumn] = label

	row := make([]float64, len(Columns))
	for i, c := range Columns {
		row[i] = values[c]
	}
	return row
}

// Column returns a copy of one column, or nil when the header is unknown
func (ds *Dataset) Column(name string) []float64 {
	idx := -1
	for i, h := range ds.Headers {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(ds.Rows))
	for i, row := range ds.Rows {
		out[i] = row[idx]
	}
	return out
}

// Record converts row i into a patient record. Ages are rounded to whole years.
func (ds *Dataset) Record(i int) (patient.Record, error) {
	if i < 0 || i >= len(ds.Rows) {
		return patient.Record{}, fmt.Errorf("row %d out of range", i)
	}
	raw := make(map[string]any, len(ds.Headers))
	for j, h := range ds.Headers {
		if h == LabelColumn {
			continue
		}
		v := ds.Rows[i][j]
		if h == patient.KeyGender {
			if v == 1 {
				raw[h] = "F"
			} else {
				raw[h] = "M"
			}
			continue
		}
		if h == patient.KeyAge {
			v = math.Round(v)
		}
		raw[h] = v
	}
	return patient.FromMap(raw)
}

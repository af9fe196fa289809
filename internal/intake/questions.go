// Package intake collects patient records from people: interactive prompts for
// the CLI and form values for the web front end.
package intake

import (
	"fmt"
	"strconv"
	"strings"

	"utitriage/domain/patient"
)

// Mode is the depth of data collection
type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeDetailed Mode = "detailed"
)

// ParseModeChoice maps the menu answer to a mode. Only "1" selects basic.
func ParseModeChoice(choice string) Mode {
	if strings.TrimSpace(choice) == "1" {
		return ModeBasic
	}
	return ModeDetailed
}

// ParseMode accepts "basic" or "detailed"
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeBasic:
		return ModeBasic, nil
	case ModeDetailed:
		return ModeDetailed, nil
	}
	return "", fmt.Errorf("unknown mode %q, expected basic or detailed", s)
}

// Kind says how an answer is parsed
type Kind int

const (
	KindAge Kind = iota
	KindGender
	KindFlag
	KindMeasure
)

// Question is one prompt of a collection flow
type Question struct {
	Key    string
	Label  string
	Kind   Kind
	Detail bool // asked only in detailed mode
}

// Prompt is the CLI prompt text, e.g. "Fever (0/1): "
func (q Question) Prompt() string {
	if q.Kind == KindFlag {
		return q.Label + " (0/1): "
	}
	return q.Label + ": "
}

var basicSymptoms = []string{
	patient.KeyFrequentUrination, patient.KeyPainfulUrination, patient.KeyFever,
	patient.KeyUrgentUrination, patient.KeyCloudyUrine,
}

var detailedSymptoms = []string{
	patient.KeyLowerAbdominalPain, patient.KeyBloodInUrine,
	patient.KeyFoulSmellingUrine, patient.KeyNitrites, patient.KeyLeukocyteEsterase,
}

var questions = func() []Question {
	qs := []Question{
		{Key: patient.KeyAge, Label: patient.Label(patient.KeyAge), Kind: KindAge},
		{Key: patient.KeyGender, Label: patient.Label(patient.KeyGender), Kind: KindGender},
	}
	for _, k := range basicSymptoms {
		qs = append(qs, Question{Key: k, Label: patient.Label(k), Kind: KindFlag})
	}
	for _, k := range detailedSymptoms {
		qs = append(qs, Question{Key: k, Label: patient.Label(k), Kind: KindFlag, Detail: true})
	}
	for _, k := range patient.NumericFeatures[1:] {
		qs = append(qs, Question{Key: k, Label: patient.Label(k), Kind: KindMeasure, Detail: true})
	}
	for _, k := range patient.ComorbidityFeatures {
		label := patient.Label(k)
		if k == patient.KeyBacteria {
			label = "Bacteria present"
		}
		qs = append(qs, Question{Key: k, Label: label, Kind: KindFlag, Detail: true})
	}
	return qs
}()

// Questions returns the prompts for a mode in the order they are asked
func Questions(mode Mode) []Question {
	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		if q.Detail && mode != ModeDetailed {
			continue
		}
		out = append(out, q)
	}
	return out
}

// BasicDefaults are the neutral values basic mode uses for fields it does not ask
func BasicDefaults() map[string]float64 {
	out := map[string]float64{}
	for _, q := range questions {
		if q.Detail {
			out[q.Key] = 0
		}
	}
	return out
}

// apply parses one answer into rec
func apply(rec *patient.Record, q Question, answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return &patient.FieldError{Field: q.Key, Reason: "a value is required"}
	}
	if q.Kind == KindGender {
		g, err := patient.ParseGender(answer)
		if err != nil {
			return &patient.FieldError{Field: q.Key, Reason: err.Error()}
		}
		rec.Gender = g
		return nil
	}

	v, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return &patient.FieldError{Field: q.Key, Reason: fmt.Sprintf("%q is not a number", answer)}
	}
	return rec.Set(q.Key, v)
}

// newRecord starts a record with the basic-mode defaults applied
func newRecord() patient.Record {
	var rec patient.Record
	for k, v := range BasicDefaults() {
		_ = rec.Set(k, v)
	}
	return rec
}

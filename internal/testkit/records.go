package testkit

import "utitriage/domain/patient"

// PositiveRecord has every symptom and positive dipstick results
func PositiveRecord() patient.Record {
	return patient.Record{
		Age: 35, UrinePH: 7.5, WBC: 18, RBC: 4,
		FrequentUrination: 1, PainfulUrination: 1, LowerAbdominalPain: 1,
		CloudyUrine: 1, BloodInUrine: 1, Fever: 1, UrgentUrination: 1,
		FoulSmellingUrine: 1, Nitrites: 1, LeukocyteEsterase: 1,
		Gender:   patient.GenderFemale,
		Bacteria: 1,
	}
}

// NegativeRecord has every flag cleared and low counts
func NegativeRecord() patient.Record {
	return patient.Record{
		Age: 25, UrinePH: 5.5, WBC: 3, RBC: 0,
		Gender: patient.GenderMale,
	}
}

// PositiveMap is PositiveRecord as an open mapping
func PositiveMap() map[string]any {
	return PositiveRecord().ToMap()
}

// NegativeMap is NegativeRecord as an open mapping
func NegativeMap() map[string]any {
	return NegativeRecord().ToMap()
}

// Without returns a copy of raw with the named keys removed
func Without(raw map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

package artifacts

import (
	"fmt"
	"sort"
)

// Role says what an artifact contributes to the bundle
type Role string

const (
	RoleClassifier Role = "classifier"
	RoleScaler     Role = "scaler"
	RoleThresholds Role = "thresholds"
)

// Artifact names, also the file stems in an artifacts directory
const (
	NameRandomForest = "rf_model"
	NameBoosted      = "xgb_model"
	NameScaler       = "scaler"
	NameThresholds   = "optimal_thresholds"
)

// Schema describes one artifact of a bundle
type Schema struct {
	Name   string
	Role   Role
	Format string // value of the "format" field in the payload
}

// FileName is the on-disk name of the artifact
func (s Schema) FileName() string {
	return s.Name + ".json"
}

// Registry lists every artifact a bundle must contain
var Registry = map[string]Schema{
	NameRandomForest: {Name: NameRandomForest, Role: RoleClassifier, Format: "sklearn-random-forest/v1"},
	NameBoosted:      {Name: NameBoosted, Role: RoleClassifier, Format: "xgboost-json-dump/v1"},
	NameScaler:       {Name: NameScaler, Role: RoleScaler, Format: "sklearn-standard-scaler/v1"},
	NameThresholds:   {Name: NameThresholds, Role: RoleThresholds, Format: "threshold-table/v1"},
}

// ClassifierOrder fixes the order classifiers are scored and reported in
var ClassifierOrder = []string{NameRandomForest, NameBoosted}

// GetSchema returns the schema for an artifact name
func GetSchema(name string) (Schema, error) {
	schema, exists := Registry[name]
	if !exists {
		return Schema{}, fmt.Errorf("unknown artifact: %s", name)
	}
	return schema, nil
}

// Names returns every registered artifact name, sorted
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckComplete reports which registered artifacts are absent from files
func CheckComplete(files map[string][]byte) error {
	var missing []string
	for _, name := range Names() {
		if _, ok := files[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("bundle is missing artifacts %v", missing)
	}
	return nil
}

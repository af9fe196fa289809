package artifacts

import (
	"fmt"
	"time"

	"utitriage/domain/core"
	"utitriage/ports"
)

// Set is the immutable bundle every prediction reads: the classifiers, the
// scaler fitted on the training data, and the per-model threshold table.
//
// The threshold table is carried for inspection only. Decisions use the fixed
// 0.5 boundary until the intended use of the table is confirmed.
type Set struct {
	version     string
	checksum    core.Hash
	classifiers []ports.Classifier
	scaler      ports.Scaler
	thresholds  map[string]float64
	loadedAt    time.Time
}

// NewSet validates and freezes a bundle
func NewSet(version string, checksum core.Hash, classifiers []ports.Classifier, scaler ports.Scaler, thresholds map[string]float64) (*Set, error) {
	if len(classifiers) == 0 {
		return nil, fmt.Errorf("artifact set needs at least one classifier")
	}
	seen := make(map[string]bool, len(classifiers))
	for i, c := range classifiers {
		if c == nil {
			return nil, fmt.Errorf("classifier %d is nil", i)
		}
		if seen[c.Name()] {
			return nil, fmt.Errorf("duplicate classifier name %q", c.Name())
		}
		seen[c.Name()] = true
	}
	if scaler == nil {
		return nil, fmt.Errorf("artifact set needs a scaler")
	}

	th := make(map[string]float64, len(thresholds))
	for k, v := range thresholds {
		th[k] = v
	}

	return &Set{
		version:     version,
		checksum:    checksum,
		classifiers: append([]ports.Classifier(nil), classifiers...),
		scaler:      scaler,
		thresholds:  th,
		loadedAt:    time.Now().UTC(),
	}, nil
}

func (s *Set) Version() string      { return s.version }
func (s *Set) Checksum() core.Hash  { return s.checksum }
func (s *Set) LoadedAt() time.Time  { return s.loadedAt }
func (s *Set) Scaler() ports.Scaler { return s.scaler }

// Classifiers returns a copy of the classifier list
func (s *Set) Classifiers() []ports.Classifier {
	return append([]ports.Classifier(nil), s.classifiers...)
}

// Thresholds returns a copy of the threshold table
func (s *Set) Thresholds() map[string]float64 {
	out := make(map[string]float64, len(s.thresholds))
	for k, v := range s.thresholds {
		out[k] = v
	}
	return out
}

// ClassifierNames lists the classifiers in scoring order
func (s *Set) ClassifierNames() []string {
	names := make([]string, len(s.classifiers))
	for i, c := range s.classifiers {
		names[i] = c.Name()
	}
	return names
}

// BundleInfo summarizes a stored bundle version
type BundleInfo struct {
	Version   string    `json:"version" db:"bundle_version"`
	Checksum  string    `json:"checksum" db:"checksum"`
	Artifacts int       `json:"artifacts" db:"artifacts"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

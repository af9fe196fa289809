package models

import (
	"fmt"

	"github.com/tidwall/gjson"

	"utitriage/domain/artifacts"
	"utitriage/domain/core"
	"utitriage/internal/errors"
	"utitriage/ports"
)

// SniffFormat returns the payload's "format" field without decoding the rest
func SniffFormat(data []byte) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("payload is not valid JSON")
	}
	format := gjson.GetBytes(data, "format")
	if !format.Exists() {
		return "", fmt.Errorf("payload has no format field")
	}
	return format.String(), nil
}

// CheckFormat verifies that an artifact payload declares its registered format
func CheckFormat(name string, data []byte) error {
	schema, err := artifacts.GetSchema(name)
	if err != nil {
		return err
	}
	got, err := SniffFormat(data)
	if err != nil {
		return err
	}
	if got != schema.Format {
		return fmt.Errorf("format is %q, expected %q", got, schema.Format)
	}
	return nil
}

// DecodeBundle turns raw artifact payloads, keyed by artifact name, into an
// immutable Set. Every failure is reported as ARTIFACT_LOAD_FAILED naming the
// artifact; no partial set is ever returned.
func DecodeBundle(version string, files map[string][]byte) (*artifacts.Set, error) {
	if err := artifacts.CheckComplete(files); err != nil {
		return nil, errors.ArtifactLoadFailed(version, err)
	}
	for _, name := range artifacts.Names() {
		if err := CheckFormat(name, files[name]); err != nil {
			return nil, errors.ArtifactLoadFailed(name, err)
		}
	}

	classifiers := make([]ports.Classifier, 0, len(artifacts.ClassifierOrder))
	for _, name := range artifacts.ClassifierOrder {
		c, err := decodeClassifier(name, files[name])
		if err != nil {
			return nil, errors.ArtifactLoadFailed(name, err)
		}
		classifiers = append(classifiers, c)
	}

	scaler, err := DecodeStandardScaler(files[artifacts.NameScaler])
	if err != nil {
		return nil, errors.ArtifactLoadFailed(artifacts.NameScaler, err)
	}
	thresholds, err := DecodeThresholds(files[artifacts.NameThresholds])
	if err != nil {
		return nil, errors.ArtifactLoadFailed(artifacts.NameThresholds, err)
	}

	set, err := artifacts.NewSet(version, core.ComputeBundleHash(files), classifiers, scaler, thresholds)
	if err != nil {
		return nil, errors.ArtifactLoadFailed(version, err)
	}
	return set, nil
}

func decodeClassifier(name string, data []byte) (ports.Classifier, error) {
	schema, err := artifacts.GetSchema(name)
	if err != nil {
		return nil, err
	}
	switch schema.Format {
	case artifacts.Registry[artifacts.NameRandomForest].Format:
		return DecodeRandomForest(name, data)
	case artifacts.Registry[artifacts.NameBoosted].Format:
		return DecodeBoostedTrees(name, data)
	}
	return nil, fmt.Errorf("no decoder for format %q", schema.Format)
}

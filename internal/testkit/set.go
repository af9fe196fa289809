package testkit

import (
	"utitriage/adapters/models"
	"utitriage/domain/artifacts"
)

// Set decodes the demo bundle. It panics on error since the bundle is fixed.
func Set() *artifacts.Set {
	set, err := models.DecodeBundle(DemoVersion, Bundle())
	if err != nil {
		panic("testkit: demo bundle does not decode: " + err.Error())
	}
	return set
}

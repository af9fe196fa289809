package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	AssessmentID  ID
	BundleVersion ID
)

// NewAssessmentID tags a single prediction call in logs
func NewAssessmentID() AssessmentID { return AssessmentID(NewID()) }

func (id AssessmentID) String() string  { return ID(id).String() }
func (id BundleVersion) String() string { return ID(id).String() }

// LatestBundle selects the most recently published artifact bundle
const LatestBundle BundleVersion = "latest"

// ParseBundleVersion parses a string into BundleVersion
func ParseBundleVersion(s string) (BundleVersion, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("bundle version cannot be empty")
	}
	if strings.ContainsAny(s, " \t\n/") {
		return "", fmt.Errorf("bundle version %q contains whitespace or '/'", s)
	}
	return BundleVersion(s), nil
}

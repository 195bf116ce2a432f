package database

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MongoDB naming constraints:
// - Database names: max 64 bytes, no /\. "$*<>:|? or null characters
// - Collection names: max 120 bytes, no $ prefix, no null characters

// InvalidNameError reports a database or collection name the server
// would reject, caught before any network call is made.
type InvalidNameError struct {
	Type   string // "database" or "collection"
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid %s name %q: %s", e.Type, e.Name, e.Reason)
}

// validateDatabaseName checks a database name against MongoDB rules.
func validateDatabaseName(name string) error {
	if name == "" {
		return &InvalidNameError{Type: "database", Name: name, Reason: "name cannot be empty"}
	}
	if len(name) > 64 {
		return &InvalidNameError{Type: "database", Name: name, Reason: "name exceeds 64 bytes"}
	}

	invalidChars := `/\. "$*<>:|?`
	for _, r := range name {
		if r == 0 {
			return &InvalidNameError{Type: "database", Name: name, Reason: "name contains null character"}
		}
		if strings.ContainsRune(invalidChars, r) {
			return &InvalidNameError{Type: "database", Name: name, Reason: fmt.Sprintf("name contains invalid character %q", r)}
		}
	}

	return nil
}

// validateCollectionName checks a collection name against MongoDB rules.
func validateCollectionName(name string) error {
	if name == "" {
		return &InvalidNameError{Type: "collection", Name: name, Reason: "name cannot be empty"}
	}
	if len(name) > 120 {
		return &InvalidNameError{Type: "collection", Name: name, Reason: "name exceeds 120 bytes"}
	}
	if strings.ContainsRune(name, 0) {
		return &InvalidNameError{Type: "collection", Name: name, Reason: "name contains null character"}
	}
	if strings.HasPrefix(name, "$") {
		return &InvalidNameError{Type: "collection", Name: name, Reason: "name cannot start with $"}
	}
	if !utf8.ValidString(name) {
		return &InvalidNameError{Type: "collection", Name: name, Reason: "name is not valid UTF-8"}
	}

	return nil
}

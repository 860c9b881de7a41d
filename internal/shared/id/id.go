// Package id generates entity identifiers.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// Length is the length of every generated identifier.
const Length = 32

// New returns a random identifier of 32 lowercase hex characters.
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsValid reports whether s has the shape of a generated identifier.
func IsValid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

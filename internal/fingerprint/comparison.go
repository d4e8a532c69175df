package fingerprint

import (
	"errors"
	"fmt"
)

// ErrMismatch is returned when the schema changed between two fingerprints
var ErrMismatch = errors.New("schema fingerprint mismatch")

// Compare compares two schema fingerprints and returns an error if they don't match
func Compare(expected, actual *SchemaFingerprint) error {
	if expected.Hash == actual.Hash {
		return nil
	}
	return fmt.Errorf("%w - expected: %s, actual: %s", ErrMismatch, preview(expected.Hash), preview(actual.Hash))
}

func preview(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}

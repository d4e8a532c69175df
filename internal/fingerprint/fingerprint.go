// Package fingerprint detects schema changes between the moment a plan is
// shown and the moment it is applied.
package fingerprint

import (
	"crypto/sha256"
	"fmt"

	"github.com/pgtrunk/pgtrunk/internal/operation"
)

// SchemaFingerprint represents a fingerprint of a database schema state
type SchemaFingerprint struct {
	Hash string `json:"hash"` // SHA256 of the ordered snippets
}

// ComputeFingerprint hashes the snippets of discovered operations in order.
// Catalog oids are not part of the snippets, so recreating an identical
// object keeps the fingerprint.
func ComputeFingerprint(ops []operation.Operation) *SchemaFingerprint {
	h := sha256.New()
	for _, op := range ops {
		h.Write([]byte(op.Snippet()))
	}
	return &SchemaFingerprint{Hash: fmt.Sprintf("%x", h.Sum(nil))}
}

// String returns a human-readable representation of the fingerprint
func (f *SchemaFingerprint) String() string {
	if len(f.Hash) >= 8 {
		return fmt.Sprintf("Schema fingerprint: %s", f.Hash[:8])
	}
	return fmt.Sprintf("Schema fingerprint: %s", f.Hash)
}

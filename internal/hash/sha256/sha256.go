// Package sha256 names archived webhook bodies (audit reports, lead scrape
// responses) by content digest, so a repeated upstream reply lands on the
// same object instead of a new one.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher implements reporter.Hasher.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash returns the lowercase hex digest used as the archive file name.
func (*Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

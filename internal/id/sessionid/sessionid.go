// Package sessionid generates the short scrape session identifiers shown to
// agencies in the dashboard.
package sessionid

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// Length is the number of characters in a session ID.
	Length = 6
)

// Generator creates 6-character uppercase alphanumeric IDs. Collisions are
// not checked; the database primary key rejects them.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a fresh session ID.
func (Generator) NewID() (string, error) {
	buf := make([]byte, Length)
	limit := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate session id: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Package id generates opaque public identifiers for stored entities.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// New returns a prefixed random identifier, e.g. "fix_1a2b...". The prefix
// makes IDs self-describing in logs and support tickets.
func New(prefix string) (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	if prefix == "" {
		return hex.EncodeToString(buf), nil
	}
	return prefix + "_" + hex.EncodeToString(buf), nil
}

package ai

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Fingerprint is the deterministic cache key for (normalized content, style).
type Fingerprint string

// Normalize applies the fixed normalization policy: trim, collapse runs of
// whitespace to a single space, lowercase. The policy determines cache hit
// rate and must not change without invalidating existing entries.
func Normalize(content string) string {
	return strings.ToLower(strings.Join(strings.Fields(content), " "))
}

// NewFingerprint derives the cache key from content and style. Pure; never
// fails, including for empty content.
func NewFingerprint(content string, style Style) Fingerprint {
	h := sha256.Sum256([]byte(string(style) + "\n" + Normalize(content)))
	return Fingerprint(fmt.Sprintf("%x", h))
}

// ContentHash hashes normalized content alone, independent of style. Stored
// alongside cache entries to detect fingerprint collisions across different
// inputs.
func ContentHash(content string) string {
	h := sha256.Sum256([]byte(Normalize(content)))
	return fmt.Sprintf("%x", h)
}

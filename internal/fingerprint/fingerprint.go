// Package fingerprint computes content fingerprints shared by the article
// store and the chain registry.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Size is the length of a fingerprint in hex characters.
const Size = sha256.Size * 2

// Sum returns the lowercase hex SHA-256 digest of text, byte for byte.
func Sum(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Valid reports whether hash has the shape of a fingerprint.
func Valid(hash string) bool {
	if len(hash) != Size {
		return false
	}
	for _, r := range hash {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

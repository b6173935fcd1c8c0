package downloader

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashString shortens s to a 12-character hex digest, used to give
// each repository its own directory in the package cache.
// It should not be used for cryptographic operations.
func HashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])[:12]
}

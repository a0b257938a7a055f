package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// FileHash returns the hex-encoded BLAKE2b-256 digest of content. Two uploads with the
// same hash carry byte-identical exports.
func FileHash(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

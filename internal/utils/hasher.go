package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintLength is the number of hex characters kept by Fingerprint
const FingerprintLength = 16

// Hash generates a SHA-256 hash of the input string
func Hash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns a short, stable digest of input
func Fingerprint(input string) string {
	return Hash(input)[:FingerprintLength]
}

package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateAPIKey generates a random API key with the given prefix.
// Format: prefix_randomhex
// Example: ktp_live_a1b2c3d4e5f6...
func GenerateAPIKey(prefix string) (string, error) {
	b := make([]byte, 32) // 64 char hex
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}

// GenerateLiveKey generates a live API key: ktp_live_xxx
func GenerateLiveKey() (string, error) {
	return GenerateAPIKey("ktp_live")
}

// GenerateSandboxKey generates a sandbox API key: ktp_sandbox_xxx
func GenerateSandboxKey() (string, error) {
	return GenerateAPIKey("ktp_sandbox")
}

// GenerateRandomString returns a random hex string of length n. Used for
// request IDs, so a rare entropy failure degrades to a constant string
// rather than an error.
func GenerateRandomString(n int) string {
	b := make([]byte, (n+1)/2)
	if _, err := rand.Read(b); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b)[:n]
}

// Package machinekey issues and verifies the dispense keys vending
// machines present when polling for completed consumptions.
package machinekey

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/hex"
	"strings"
)

const keyPrefix = "vmk"

// Generate mints a new dispense key in the form vmk_<base32>.
func Generate() (string, error) {
	bytes := make([]byte, 20)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	encoded := base32.StdEncoding.EncodeToString(bytes)
	encoded = strings.ReplaceAll(encoded, "=", "")

	return keyPrefix + "_" + encoded, nil
}

// Hash returns the hex sha256 of a key, the only form stored at rest.
func Hash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Verify compares a presented key against a stored hash in constant time.
func Verify(key, storedHash string) bool {
	computed := Hash(key)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

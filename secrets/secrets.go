// Package secrets provides the credential primitives used across the core:
// slow salted hashing for stored secrets, a deterministic digest for
// equality lookups, and cryptographically secure random string generation.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor for stored client secrets.
const HashCost = bcrypt.DefaultCost

// Hash returns the bcrypt hash of plaintext. Each call salts independently,
// so the output is not comparable by equality; use Verify.
func Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), HashCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plaintext matches the stored bcrypt hash. It returns
// false, never an error, on malformed hash input.
func Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

// Digest returns the SHA-256 hex digest of a token value. Unlike bcrypt it is
// deterministic, so a presented refresh token can be found by recomputing the
// digest; the plaintext is still never stored or compared directly.
func Digest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return fmt.Sprintf("%x", sum)
}

const (
	alphanumeric = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numeric      = "0123456789"
)

// RandString returns a cryptographically secure random alphanumeric string.
func RandString(length int) string {
	return randFrom(alphanumeric, length)
}

// RandNumericString returns a cryptographically secure random digit string.
func RandNumericString(length int) string {
	return randFrom(numeric, length)
}

func randFrom(charset string, length int) string {
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(charset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform RNG is broken;
			// nothing sensible can continue from here.
			panic(fmt.Sprintf("secrets: rand source failed: %v", err))
		}
		b.WriteByte(charset[n.Int64()])
	}
	return b.String()
}

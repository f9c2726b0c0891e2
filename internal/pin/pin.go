// Package pin hashes and verifies the numeric PINs used as the clock-in fallback.
package pin

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinLength = 4
	MaxLength = 8
)

// ErrInvalidFormat is returned for a PIN that is not 4-8 ASCII digits.
var ErrInvalidFormat = errors.New("PIN must be 4-8 digits")

// Validate checks the PIN format.
func Validate(p string) error {
	if len(p) < MinLength || len(p) > MaxLength {
		return ErrInvalidFormat
	}
	for i := 0; i < len(p); i++ {
		if p[i] < '0' || p[i] > '9' {
			return ErrInvalidFormat
		}
	}
	return nil
}

// Hash validates p and returns its bcrypt hash.
func Hash(p string) (string, error) {
	if err := Validate(p); err != nil {
		return "", err
	}
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing PIN: %w", err)
	}
	return string(b), nil
}

// Verify reports whether p matches hash. An empty hash never matches.
func Verify(hash, p string) bool {
	if hash == "" || p == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(p)) == nil
}

// Generate returns a random 6-digit PIN.
func Generate() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := int(buf[0])<<16 | int(buf[1])<<8 | int(buf[2])
	return fmt.Sprintf("%06d", code%1000000), nil
}

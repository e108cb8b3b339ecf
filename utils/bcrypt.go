package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// HashPassword returns the bcrypt hash of s as a string ready for the admins table.
func HashPassword(s string) (string, error) {
	if len(s) < minPasswordLength {
		return "", ValidationError("password must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword reports ErrUnauthorized on mismatch so callers never leak
// whether the username or the password was wrong.
func ComparePassword(hashed string, normal string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(normal))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrUnauthorized
	}
	return err
}

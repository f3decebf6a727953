package auth

import (
	"unicode"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

// ValidatePassword enforces the account password policy: 8-128 characters
// with at least one upper-case letter, one lower-case letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.Validation("Password must be at least 8 characters long")
	}
	if len(password) > maxPasswordLength {
		return apperrors.Validation("Password must be at most 128 characters long")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		return apperrors.Validation("Password must contain at least one uppercase letter")
	}
	if !hasLower {
		return apperrors.Validation("Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return apperrors.Validation("Password must contain at least one digit")
	}

	return nil
}

// bcrypt reads at most 72 bytes of input and newer x/crypto versions reject
// anything longer outright. The policy allows up to 128 characters, so the
// plaintext is truncated to the 72 bytes bcrypt actually uses.
const bcryptMaxInput = 72

func bcryptInput(password string) []byte {
	input := []byte(password)
	if len(input) > bcryptMaxInput {
		input = input[:bcryptMaxInput]
	}
	return input
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password)) == nil
}

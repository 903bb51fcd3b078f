package crypto

import (
	"errors"
	"strings"
)

const (
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	numberChars    = "0123456789"

	MinPasswordLength = 8
	MaxPasswordLength = 128
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 128 characters")
	ErrPasswordNoUpper  = errors.New("password must contain an uppercase letter")
	ErrPasswordNoLower  = errors.New("password must contain a lowercase letter")
	ErrPasswordNoDigit  = errors.New("password must contain a digit")
)

// CheckPasswordPolicy validates a candidate password against the account
// password policy: 8-128 characters with at least one uppercase letter,
// one lowercase letter and one digit. Each violation maps to its own
// sentinel error so callers can surface the exact rule that failed.
func CheckPasswordPolicy(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if !strings.ContainsAny(password, uppercaseChars) {
		return ErrPasswordNoUpper
	}
	if !strings.ContainsAny(password, lowercaseChars) {
		return ErrPasswordNoLower
	}
	if !strings.ContainsAny(password, numberChars) {
		return ErrPasswordNoDigit
	}
	return nil
}

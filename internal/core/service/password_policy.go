package service

import (
	"unicode"

	"github.com/bugtrail/accounts-api/internal/core/domain"
)

// PasswordPolicy rejects weak passwords by minimum length and required
// character classes. The zero value accepts everything non-empty; use
// DefaultPasswordPolicy for the standard strength rules.
type PasswordPolicy struct {
	MinLength  int
	MinLower   int
	MinUpper   int
	MinDigits  int
	MinSymbols int
}

// DefaultPasswordPolicy mirrors the usual "strong password" rule set: at
// least eight characters with one lowercase, one uppercase, one digit and one
// symbol.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:  8,
		MinLower:   1,
		MinUpper:   1,
		MinDigits:  1,
		MinSymbols: 1,
	}
}

// Validate returns domain.ErrWeakPassword when the password fails the policy.
func (p PasswordPolicy) Validate(password string) error {
	runes := []rune(password)
	if len(runes) < p.MinLength {
		return domain.ErrWeakPassword
	}

	var lower, upper, digits, symbols int
	for _, r := range runes {
		switch {
		case unicode.IsLower(r):
			lower++
		case unicode.IsUpper(r):
			upper++
		case unicode.IsDigit(r):
			digits++
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbols++
		}
	}

	if lower < p.MinLower || upper < p.MinUpper || digits < p.MinDigits || symbols < p.MinSymbols {
		return domain.ErrWeakPassword
	}
	return nil
}

package auth

import (
	"fmt"
	"unicode"

	"github.com/nvoropaev/authkeeper/internal/apperrors"
)

const (
	defaultMinPasswordLength = 8
	defaultMinCharClasses    = 2
)

// PasswordPolicy is a configuration, not a hard contract:
// deployments tune the knobs, the checks stay the same
type PasswordPolicy struct {
	// Minimal password length in runes
	MinLength int

	// How many character classes (lower, upper, digit, other)
	// the password must contain
	MinClasses int
}

func (p PasswordPolicy) withDefaults() PasswordPolicy {
	if p.MinLength == 0 {
		p.MinLength = defaultMinPasswordLength
	}
	if p.MinClasses == 0 {
		p.MinClasses = defaultMinCharClasses
	}
	return p
}

// Validate returns apperrors.ErrWeakPassword if password fails the policy
func (p PasswordPolicy) Validate(password string) error {
	runes := []rune(password)
	if len(runes) < p.MinLength {
		return fmt.Errorf("%w: shorter than %d characters", apperrors.ErrWeakPassword, p.MinLength)
	}

	var lower, upper, digit, other bool
	for _, r := range runes {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}

	classes := 0
	for _, present := range []bool{lower, upper, digit, other} {
		if present {
			classes++
		}
	}

	if classes < p.MinClasses {
		return fmt.Errorf("%w: needs at least %d character classes", apperrors.ErrWeakPassword, p.MinClasses)
	}

	return nil
}

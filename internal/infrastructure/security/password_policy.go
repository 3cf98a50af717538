package security

import (
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 100
)

// Violation is a stable code for one failed password rule.
type Violation string

const (
	ViolationMinLength Violation = "min_length"
	ViolationMaxLength Violation = "max_length"
	ViolationUppercase Violation = "uppercase"
	ViolationLowercase Violation = "lowercase"
	ViolationDigit     Violation = "digit"
)

type StrengthResult struct {
	Valid      bool
	Violations []Violation
}

// Codes returns the violations as plain strings for error metadata.
func (r StrengthResult) Codes() []string {
	out := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, string(v))
	}
	return out
}

type PasswordPolicy struct {
	MinLength int
	MaxLength int
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: MinPasswordLength, MaxLength: MaxPasswordLength}
}

// ValidateStrength checks every rule and reports all failures, in rule order.
func (p PasswordPolicy) ValidateStrength(password string) StrengthResult {
	var violations []Violation
	var hasUpper, hasLower, hasNum bool

	n := utf8.RuneCountInString(password)
	if n < p.MinLength {
		violations = append(violations, ViolationMinLength)
	}
	if p.MaxLength > 0 && n > p.MaxLength {
		violations = append(violations, ViolationMaxLength)
	}

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNum = true
		}
	}
	if !hasUpper {
		violations = append(violations, ViolationUppercase)
	}
	if !hasLower {
		violations = append(violations, ViolationLowercase)
	}
	if !hasNum {
		violations = append(violations, ViolationDigit)
	}

	return StrengthResult{Valid: len(violations) == 0, Violations: violations}
}

// Violations adapts ValidateStrength to the application ports.
func (p PasswordPolicy) Violations(password string) []string {
	return p.ValidateStrength(password).Codes()
}

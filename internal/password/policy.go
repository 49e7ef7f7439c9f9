// Package password holds the credential rules: the strength policy applied to
// every new password and the argon2id hasher used to store them.
package password

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordLength   = 8
	maxPasswordLength   = 15
	minPassphraseLength = 20
	maxPassphraseLength = 255
	minPassphraseWords  = 3
	minCharClasses      = 3
)

// specialChars is the fixed symbol set counted as the "special" class.
const specialChars = "\\!@#$%^&*()+_-=}{[]|:;\"/?.><,`~'"

// Reason is the machine-readable cause carried by a PolicyError.
type Reason string

const (
	ReasonInvalidInput           Reason = "INVALID_INPUT"
	ReasonInvalidLength          Reason = "INVALID_LENGTH"
	ReasonCommonPassword         Reason = "COMMON_PASSWORD"
	ReasonInvalidPassphrase      Reason = "INVALID_PASSPHRASE"
	ReasonInvalidCharacter       Reason = "INVALID_CHARACTER"
	ReasonMissingRequirements    Reason = "MISSING_REQUIREMENTS"
	ReasonInsufficientComplexity Reason = "INSUFFICIENT_COMPLEXITY"
)

// PolicyError reports a strength-rule violation.
type PolicyError struct {
	Reason  Reason
	Message string
}

func (e *PolicyError) Error() string { return e.Message }

func policyError(reason Reason, format string, args ...any) *PolicyError {
	return &PolicyError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// IsCommonPassword reports whether the password appears in the static
// denylist. The comparison is case-insensitive and ignores surrounding
// whitespace. Exposed independently so callers can pre-check input.
func IsCommonPassword(password string) bool {
	_, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]
	return ok
}

// ValidateStrength enforces the password policy and returns a *PolicyError on
// the first violated rule.
//
// Standard passwords must be 8-15 characters, contain no whitespace, satisfy
// at least three of the four character classes (upper, lower, digit, special)
// and not appear in the common-password denylist. Passphrases must be 20-255
// characters with at least three whitespace-separated words.
func ValidateStrength(password string, passphrase bool) error {
	if password == "" {
		return policyError(ReasonInvalidInput, "password is required")
	}

	minLen, maxLen, label := minPasswordLength, maxPasswordLength, "password"
	if passphrase {
		minLen, maxLen, label = minPassphraseLength, maxPassphraseLength, "passphrase"
	}
	// Length windows count characters, not bytes; multibyte input must not be
	// penalized for its encoding.
	if n := utf8.RuneCountInString(password); n < minLen {
		return policyError(ReasonInvalidLength, "%s must be at least %d characters", label, minLen)
	} else if n > maxLen {
		return policyError(ReasonInvalidLength, "%s must be at most %d characters", label, maxLen)
	}

	if IsCommonPassword(password) {
		return policyError(ReasonCommonPassword, "password is too common, use a more unique combination")
	}

	if passphrase {
		return validatePassphrase(password)
	}
	return validateStandard(password)
}

func validatePassphrase(passphrase string) error {
	if len(strings.Fields(passphrase)) < minPassphraseWords {
		return policyError(ReasonInvalidPassphrase, "passphrase must contain at least %d words", minPassphraseWords)
	}
	return nil
}

func validateStandard(password string) error {
	if strings.ContainsFunc(password, unicode.IsSpace) {
		return policyError(ReasonInvalidCharacter, "password must not contain whitespace")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}

	classes := 0
	var missing []string
	for _, c := range []struct {
		ok   bool
		name string
	}{
		{upper, "uppercase"},
		{lower, "lowercase"},
		{digit, "number"},
		{special, "special character"},
	} {
		if c.ok {
			classes++
		} else {
			missing = append(missing, c.name)
		}
	}

	if classes == 0 {
		return policyError(ReasonMissingRequirements, "password must contain: %s", strings.Join(missing, ", "))
	}
	if classes < minCharClasses {
		return policyError(ReasonInsufficientComplexity,
			"password must use at least %d different character types, missing: %s",
			minCharClasses, strings.Join(missing, ", "))
	}
	return nil
}

package password

import (
	"errors"
	"strings"
	"testing"
)

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	var pe *PolicyError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PolicyError, got %v", err)
	}
	return pe.Reason
}

func TestValidateStrengthStandard(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     Reason // empty means valid
	}{
		{name: "valid three classes", password: "Abcdef12"},
		{name: "valid with special", password: "abcdef1!"},
		{name: "valid all four classes", password: "Abcde12!"},
		{name: "empty", password: "", want: ReasonInvalidInput},
		{name: "too short", password: "Abc12!", want: ReasonInvalidLength},
		{name: "too long", password: "Abcdefghij12345!", want: ReasonInvalidLength},
		{name: "whitespace inside", password: "Abc def12", want: ReasonInvalidCharacter},
		{name: "common password", password: "Password1", want: ReasonCommonPassword},
		{name: "only lowercase and digits", password: "abcdef12", want: ReasonInsufficientComplexity},
		{name: "only lowercase", password: "abcdefgh", want: ReasonInsufficientComplexity},
		{name: "no recognized classes", password: "ありがとうござい", want: ReasonMissingRequirements},
		// Multibyte runes count once each: 14 characters, 18 bytes.
		{name: "multibyte within length window", password: "Pässwörd123!ää"},
		{name: "multibyte below length window", password: "ありが", want: ReasonInvalidLength},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStrength(tc.password, false)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if got := reasonOf(t, err); got != tc.want {
				t.Fatalf("reason mismatch: got %s want %s", got, tc.want)
			}
		})
	}
}

func TestValidateStrengthPassphrase(t *testing.T) {
	cases := []struct {
		name       string
		passphrase string
		want       Reason
	}{
		{name: "valid", passphrase: "correct horse battery staple"},
		{name: "too short", passphrase: "short phrase", want: ReasonInvalidLength},
		{name: "too few words", passphrase: "supercalifragilisticexpialidocious", want: ReasonInvalidPassphrase},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStrength(tc.passphrase, true)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if got := reasonOf(t, err); got != tc.want {
				t.Fatalf("reason mismatch: got %s want %s", got, tc.want)
			}
		})
	}
}

func TestIsCommonPassword(t *testing.T) {
	if !IsCommonPassword("password") {
		t.Fatal("expected password to be common")
	}
	if !IsCommonPassword("  PaSsWoRd  ") {
		t.Fatal("denylist match must ignore case and surrounding whitespace")
	}
	if IsCommonPassword("xK9#mQ2pL") {
		t.Fatal("unexpected denylist hit")
	}
}

func TestComplexityErrorNamesMissingClasses(t *testing.T) {
	err := ValidateStrength("abcdefgh", false)
	var pe *PolicyError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PolicyError, got %v", err)
	}
	for _, want := range []string{"uppercase", "number", "special character"} {
		if !strings.Contains(pe.Message, want) {
			t.Fatalf("message %q missing %q", pe.Message, want)
		}
	}
}

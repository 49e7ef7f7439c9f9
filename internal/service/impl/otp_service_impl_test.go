package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"iam/internal/domain"
)

func newOtpFixture(t *testing.T) (*OtpServiceImpl, *fakeOtpRepo) {
	t.Helper()
	repo := newFakeOtpRepo()
	svc := NewOtpService(OtpConfig{
		Expiry:      15 * time.Minute,
		DailyLimit:  5,
		MaxAttempts: 3,
	}, repo)
	return svc, repo
}

func TestOtpGenerateAndVerifyRoundTrip(t *testing.T) {
	svc, _ := newOtpFixture(t)
	ctx := context.Background()
	userID := newID()

	otp, err := svc.Generate(ctx, userID, "alice@example.com", domain.PurposeRegistration)
	if err != nil {
		t.Fatalf("generate returned error: %v", err)
	}
	if len(otp.Code) != 6 {
		t.Fatalf("expected 6-character code, got %q", otp.Code)
	}
	if otp.Type != domain.OtpTypeEmail {
		t.Fatalf("expected EMAIL type for email identifier, got %s", otp.Type)
	}
	if otp.DailyCount != 1 {
		t.Fatalf("expected daily count 1, got %d", otp.DailyCount)
	}

	verified, err := svc.Verify(ctx, otp.Code, "alice@example.com", domain.PurposeRegistration)
	if err != nil {
		t.Fatalf("verify returned error: %v", err)
	}
	if verified == nil {
		t.Fatal("expected matching OTP")
	}
	if !verified.Used {
		t.Fatal("verified OTP must be marked used")
	}

	// Single use: a second verification of the same code misses.
	again, err := svc.Verify(ctx, otp.Code, "alice@example.com", domain.PurposeRegistration)
	if err != nil {
		t.Fatalf("verify returned error: %v", err)
	}
	if again != nil {
		t.Fatal("used OTP must not verify again")
	}
}

func TestOtpTypeFollowsIdentifierShape(t *testing.T) {
	svc, _ := newOtpFixture(t)
	ctx := context.Background()

	otp, err := svc.Generate(ctx, newID(), "+6281234567890", domain.PurposeLogin)
	if err != nil {
		t.Fatalf("generate returned error: %v", err)
	}
	if otp.Type != domain.OtpTypeWhatsapp {
		t.Fatalf("expected WHATSAPP type for phone identifier, got %s", otp.Type)
	}
}

func TestOtpGenerateRejectsUnknownPurpose(t *testing.T) {
	svc, _ := newOtpFixture(t)
	if _, err := svc.Generate(context.Background(), newID(), "alice@example.com", "BOGUS"); !errors.Is(err, domain.ErrInvalidOtpPurpose) {
		t.Fatalf("expected ErrInvalidOtpPurpose, got %v", err)
	}
	if _, err := svc.Verify(context.Background(), "abc123", "alice@example.com", "BOGUS"); !errors.Is(err, domain.ErrInvalidOtpPurpose) {
		t.Fatalf("expected ErrInvalidOtpPurpose, got %v", err)
	}
}

func TestOtpDailyLimit(t *testing.T) {
	svc, _ := newOtpFixture(t)
	ctx := context.Background()
	userID := newID()

	for i := 0; i < 5; i++ {
		if _, err := svc.Generate(ctx, userID, "alice@example.com", domain.PurposeRegistration); err != nil {
			t.Fatalf("generate %d returned error: %v", i, err)
		}
	}
	if _, err := svc.Generate(ctx, userID, "alice@example.com", domain.PurposeRegistration); !errors.Is(err, domain.ErrOtpDailyLimit) {
		t.Fatalf("expected ErrOtpDailyLimit, got %v", err)
	}

	// The limit is per delivery type; the phone channel still has budget.
	if _, err := svc.Generate(ctx, userID, "+6281234567890", domain.PurposeRegistration); err != nil {
		t.Fatalf("phone generate returned error: %v", err)
	}
}

func TestOtpWrongCodeBurnsAttempts(t *testing.T) {
	svc, _ := newOtpFixture(t)
	ctx := context.Background()
	userID := newID()

	otp, err := svc.Generate(ctx, userID, "alice@example.com", domain.PurposeRegistration)
	if err != nil {
		t.Fatalf("generate returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		miss, err := svc.Verify(ctx, "zzzzzz", "alice@example.com", domain.PurposeRegistration)
		if err != nil {
			t.Fatalf("verify returned error: %v", err)
		}
		if miss != nil {
			t.Fatal("wrong code must not verify")
		}
	}

	// Three misses exhausted the real code too.
	hit, err := svc.Verify(ctx, otp.Code, "alice@example.com", domain.PurposeRegistration)
	if err != nil {
		t.Fatalf("verify returned error: %v", err)
	}
	if hit != nil {
		t.Fatal("exhausted OTP must not verify even with the correct code")
	}
}

func TestOtpExpiredCodeDoesNotVerify(t *testing.T) {
	repo := newFakeOtpRepo()
	svc := NewOtpService(OtpConfig{Expiry: -time.Minute, DailyLimit: 5, MaxAttempts: 3}, repo)
	ctx := context.Background()

	otp, err := svc.Generate(ctx, newID(), "alice@example.com", domain.PurposeRegistration)
	if err != nil {
		t.Fatalf("generate returned error: %v", err)
	}
	hit, err := svc.Verify(ctx, otp.Code, "alice@example.com", domain.PurposeRegistration)
	if err != nil {
		t.Fatalf("verify returned error: %v", err)
	}
	if hit != nil {
		t.Fatal("expired OTP must not verify")
	}
}

func TestOtpInvalidateExisting(t *testing.T) {
	svc, repo := newOtpFixture(t)
	ctx := context.Background()
	userID := newID()

	otp, err := svc.Generate(ctx, userID, "alice@example.com", domain.PurposePasswordReset)
	if err != nil {
		t.Fatalf("generate returned error: %v", err)
	}
	if err := svc.InvalidateExisting(ctx, userID, domain.PurposePasswordReset); err != nil {
		t.Fatalf("invalidate returned error: %v", err)
	}

	hit, err := svc.Verify(ctx, otp.Code, "alice@example.com", domain.PurposePasswordReset)
	if err != nil {
		t.Fatalf("verify returned error: %v", err)
	}
	if hit != nil {
		t.Fatal("invalidated OTP must not verify")
	}
	if len(repo.rows) != 1 || !repo.rows[0].Used {
		t.Fatal("invalidation must mark the stored row used")
	}
}

func TestGenerateSecureCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		code, err := generateSecureCode()
		if err != nil {
			t.Fatalf("generateSecureCode returned error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 characters, got %q", code)
		}
		for _, r := range code {
			if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
				t.Fatalf("expected lowercase hex, got %q", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("codes should vary across generations")
	}
}

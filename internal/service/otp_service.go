package service

import (
	"context"

	"iam/internal/domain"
)

type OtpService interface {
	// Generate creates a new code for (user, identifier, purpose), enforcing
	// the per-(user, type) daily limit.
	Generate(ctx context.Context, userID domain.UserID, identifier string, purpose domain.OtpPurpose) (*domain.Otp, error)
	// Verify consumes a live matching code. It returns (nil, nil) when the
	// code is wrong, expired, used or exhausted; callers treat nil as
	// invalid-code.
	Verify(ctx context.Context, code, identifier string, purpose domain.OtpPurpose) (*domain.Otp, error)
	InvalidateExisting(ctx context.Context, userID domain.UserID, purpose domain.OtpPurpose) error
}

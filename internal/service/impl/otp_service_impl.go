package impl

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"context"

	"iam/internal/domain"
	"iam/internal/observability/metrics"
	"iam/internal/service"

	"github.com/google/uuid"
)

type OtpConfig struct {
	Expiry      time.Duration // e.g. 900s
	DailyLimit  int           // per (user, type) per day
	MaxAttempts int           // verify attempts within TTL
}

type OtpServiceImpl struct {
	cfg  OtpConfig
	otps service.OtpRepository
}

func NewOtpService(cfg OtpConfig, otps service.OtpRepository) *OtpServiceImpl {
	return &OtpServiceImpl{cfg: cfg, otps: otps}
}

// generateSecureCode derives a 6-character code from a cryptographically
// secure random source: sha256 over 16 random bytes, hex digest truncated.
func generateSecureCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	digest := sha256.Sum256(buf)
	return hex.EncodeToString(digest[:])[:6], nil
}

func (s *OtpServiceImpl) Generate(ctx context.Context, userID domain.UserID, identifier string, purpose domain.OtpPurpose) (*domain.Otp, error) {
	otpType := domain.OtpTypeForIdentifier(identifier)

	result := "success"
	defer func() {
		metrics.OtpGeneratedTotal.WithLabelValues(string(otpType), result).Inc()
	}()

	if !purpose.Valid() {
		result = "failure"
		return nil, domain.ErrInvalidOtpPurpose
	}

	dailyCount, err := s.otps.GetDailyCount(ctx, userID, otpType)
	if err != nil {
		result = "failure"
		return nil, domain.Internal("failed to count OTPs", err)
	}
	if dailyCount >= s.cfg.DailyLimit {
		result = "limited"
		slog.Warn("OTP daily limit reached", "user_id", userID, "type", otpType)
		return nil, domain.ErrOtpDailyLimit
	}

	code, err := generateSecureCode()
	if err != nil {
		result = "failure"
		return nil, domain.Internal("failed to generate OTP code", err)
	}

	now := time.Now().UTC()
	otp := &domain.Otp{
		ID:              uuid.New(),
		Code:            code,
		UserID:          userID,
		Identifier:      identifier,
		Type:            otpType,
		Purpose:         purpose,
		ExpiresAt:       now.Add(s.cfg.Expiry),
		DailyCount:      dailyCount + 1,
		DailyCountReset: now,
		CreatedAt:       now,
	}
	if err := s.otps.Create(ctx, otp); err != nil {
		result = "failure"
		return nil, domain.Internal("failed to create OTP", err)
	}

	slog.Info("OTP generated", "user_id", userID, "type", otpType, "purpose", purpose)
	return otp, nil
}

// Verify returns (nil, nil) on any miss; the repository increments the attempt
// counter on live rows as a side effect so brute force within the TTL burns
// the code out.
func (s *OtpServiceImpl) Verify(ctx context.Context, code, identifier string, purpose domain.OtpPurpose) (*domain.Otp, error) {
	if !purpose.Valid() {
		return nil, domain.ErrInvalidOtpPurpose
	}

	otp, err := s.otps.Verify(ctx, code, identifier, purpose, s.cfg.MaxAttempts)
	if err != nil {
		metrics.OtpVerifiedTotal.WithLabelValues("failure").Inc()
		return nil, domain.Internal("failed to verify OTP", err)
	}
	if otp == nil {
		metrics.OtpVerifiedTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}
	metrics.OtpVerifiedTotal.WithLabelValues("success").Inc()
	return otp, nil
}

func (s *OtpServiceImpl) InvalidateExisting(ctx context.Context, userID domain.UserID, purpose domain.OtpPurpose) error {
	if err := s.otps.InvalidateExisting(ctx, userID, purpose); err != nil {
		return domain.Internal("failed to invalidate OTPs", err)
	}
	return nil
}

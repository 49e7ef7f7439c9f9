package store

import (
	"context"
	"errors"
	"time"

	"iam/internal/domain"
	"iam/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OtpStore struct{ db *gorm.DB }

func (s *Store) Otps() *OtpStore { return &OtpStore{db: s.DB} }

func (o *OtpStore) Create(ctx context.Context, otp *domain.Otp) error {
	if otp.ID == uuid.Nil {
		otp.ID = uuid.New()
	}
	return o.db.WithContext(ctx).Create(otp).Error
}

// GetDailyCount counts codes issued since UTC midnight for (user, type). The
// window resets with the calendar day, not a rolling 24 hours.
func (o *OtpStore) GetDailyCount(ctx context.Context, userID domain.UserID, otpType domain.OtpType) (int, error) {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var count int64
	err := o.db.WithContext(ctx).Model(&domain.Otp{}).
		Where("user_id = ? AND type = ? AND created_at >= ?", userID, otpType, midnight).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Verify resolves a code against the live rows for (identifier, purpose).
// A hit marks the row used; a miss charges an attempt against every live row
// so guessing burns the real code's budget, and returns (nil, nil).
func (o *OtpStore) Verify(ctx context.Context, code, identifier string, purpose domain.OtpPurpose, maxAttempts int) (*domain.Otp, error) {
	var matched *domain.Otp
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		var otp domain.Otp
		err := tx.Where(
			"code = ? AND identifier = ? AND purpose = ? AND used = ? AND expires_at > ? AND attempts < ?",
			code, identifier, purpose, false, now, maxAttempts,
		).Order("created_at DESC").First(&otp).Error
		if err == nil {
			if err := tx.Model(&domain.Otp{}).Where("id = ?", otp.ID).Update("used", true).Error; err != nil {
				return err
			}
			otp.Used = true
			matched = &otp
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Model(&domain.Otp{}).
			Where("identifier = ? AND purpose = ? AND used = ? AND expires_at > ? AND attempts < ?",
				identifier, purpose, false, now, maxAttempts).
			Update("attempts", gorm.Expr("attempts + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}

// InvalidateExisting burns all outstanding codes for (user, purpose) before a
// new one is issued.
func (o *OtpStore) InvalidateExisting(ctx context.Context, userID domain.UserID, purpose domain.OtpPurpose) error {
	return o.db.WithContext(ctx).Model(&domain.Otp{}).
		Where("user_id = ? AND purpose = ? AND used = ?", userID, purpose, false).
		Update("used", true).Error
}

var _ service.OtpRepository = (*OtpStore)(nil)

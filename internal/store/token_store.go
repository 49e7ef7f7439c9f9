package store

import (
	"context"
	"time"

	"iam/internal/domain"
	"iam/internal/service"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlacklistStore struct{ db *gorm.DB }

func (s *Store) Blacklist() *BlacklistStore { return &BlacklistStore{db: s.DB} }

// Add is idempotent: the token string is the primary key, a conflicting
// insert is a no-op.
func (b *BlacklistStore) Add(ctx context.Context, token string, userID domain.UserID, expiresAt time.Time) error {
	entry := domain.BlacklistedToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	return b.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry).Error
}

// IsBlacklisted only honors entries still inside their revocation horizon, so
// correctness does not depend on Cleanup ever running.
func (b *BlacklistStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	var count int64
	err := b.db.WithContext(ctx).Model(&domain.BlacklistedToken{}).
		Where("token = ? AND expires_at > ?", token, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (b *BlacklistStore) Cleanup(ctx context.Context) (int64, error) {
	res := b.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&domain.BlacklistedToken{})
	return res.RowsAffected, res.Error
}

var _ service.BlacklistedTokenRepository = (*BlacklistStore)(nil)

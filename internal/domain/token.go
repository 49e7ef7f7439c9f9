package domain

import "time"

// BlacklistedToken is a revocation entry. ExpiresAt is the revocation horizon
// (fixed at insert time), independent of the token's own expiry; verification
// always checks the token's natural expiry as well.
type BlacklistedToken struct {
	Token     string    `gorm:"type:text;primaryKey" json:"-"`
	UserID    UserID    `gorm:"type:uuid;index;not null" json:"userId"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (BlacklistedToken) TableName() string { return "blacklisted_tokens" }

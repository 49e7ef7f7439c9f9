package service

import (
	"context"
	"time"

	"iam/internal/domain"
	"iam/internal/dto"
)

// TokenClaims is the verified (or, via DecodeToken, merely parsed) content of
// an access or refresh token.
type TokenClaims struct {
	UserID    domain.UserID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenService interface {
	// GenerateTokens issues an access/refresh pair signed with independent
	// secrets.
	GenerateTokens(ctx context.Context, userID domain.UserID) (dto.TokenPair, error)
	VerifyAccessToken(ctx context.Context, token string) (*TokenClaims, error)
	// VerifyRefreshToken checks the blacklist before signature verification.
	VerifyRefreshToken(ctx context.Context, token string) (*TokenClaims, error)
	// RefreshTokens verifies the refresh token and reissues a fresh pair. The
	// consumed refresh token is not revoked.
	RefreshTokens(ctx context.Context, refreshToken string) (dto.TokenPair, error)
	BlacklistToken(ctx context.Context, token string, userID domain.UserID) error
	// DecodeToken parses without verifying the signature. For inspection only,
	// never for authorization decisions.
	DecodeToken(token string) (*TokenClaims, error)
}

package impl

import (
	"context"
	"log/slog"
	"time"

	"iam/internal/domain"
	"iam/internal/dto"
	"iam/internal/observability/metrics"
	"iam/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// blacklistHorizon is how long a revocation entry is kept, independent of the
// token's own expiry. Verification always checks natural expiry too, so an
// entry outliving or underliving the token is harmless.
const blacklistHorizon = 24 * time.Hour

type TokenConfig struct {
	AccessSecret  []byte // HS256, access tokens only
	RefreshSecret []byte // HS256, refresh tokens only
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type tokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type TokenServiceImpl struct {
	cfg       TokenConfig
	blacklist service.BlacklistedTokenRepository
}

func NewTokenServiceHS256(cfg TokenConfig, blacklist service.BlacklistedTokenRepository) *TokenServiceImpl {
	return &TokenServiceImpl{cfg: cfg, blacklist: blacklist}
}

func (t *TokenServiceImpl) GenerateTokens(ctx context.Context, userID domain.UserID) (dto.TokenPair, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("issue", result).Inc()
	}()

	now := time.Now().UTC()
	access, err := t.sign(userID, now, t.cfg.AccessTTL, t.cfg.AccessSecret)
	if err != nil {
		result = "failure"
		return dto.TokenPair{}, domain.Internal("failed to sign access token", err)
	}
	refresh, err := t.sign(userID, now, t.cfg.RefreshTTL, t.cfg.RefreshSecret)
	if err != nil {
		result = "failure"
		return dto.TokenPair{}, domain.Internal("failed to sign refresh token", err)
	}
	return dto.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenServiceImpl) VerifyAccessToken(ctx context.Context, token string) (*service.TokenClaims, error) {
	return t.verify(token, t.cfg.AccessSecret)
}

// VerifyRefreshToken checks the blacklist before signature verification so a
// revoked token fails with ErrTokenRevoked even if cryptographically valid.
func (t *TokenServiceImpl) VerifyRefreshToken(ctx context.Context, token string) (*service.TokenClaims, error) {
	blacklisted, err := t.blacklist.IsBlacklisted(ctx, token)
	if err != nil {
		return nil, domain.Internal("failed to check token blacklist", err)
	}
	if blacklisted {
		return nil, domain.ErrTokenRevoked
	}
	return t.verify(token, t.cfg.RefreshSecret)
}

func (t *TokenServiceImpl) RefreshTokens(ctx context.Context, refreshToken string) (dto.TokenPair, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("refresh", result).Inc()
	}()

	claims, err := t.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		result = "failure"
		return dto.TokenPair{}, err
	}

	// The consumed refresh token stays valid until its natural expiry;
	// rotation does not revoke it. Logout is the explicit revocation path.
	pair, err := t.GenerateTokens(ctx, claims.UserID)
	if err != nil {
		result = "failure"
		return dto.TokenPair{}, err
	}
	return pair, nil
}

func (t *TokenServiceImpl) BlacklistToken(ctx context.Context, token string, userID domain.UserID) error {
	expiresAt := time.Now().UTC().Add(blacklistHorizon)
	if err := t.blacklist.Add(ctx, token, userID, expiresAt); err != nil {
		return domain.Internal("failed to blacklist token", err)
	}
	slog.Info("token blacklisted", "user_id", userID, "expires_at", expiresAt)
	return nil
}

// DecodeToken parses the claims without verifying the signature. Useful for
// logging and inspection; must never feed an authorization decision.
func (t *TokenServiceImpl) DecodeToken(token string) (*service.TokenClaims, error) {
	claims := &tokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, domain.ErrInvalidToken.Wrap(err)
	}
	return toServiceClaims(claims)
}

// ====== Helpers ======

func (t *TokenServiceImpl) sign(userID domain.UserID, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	claims := tokenClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (t *TokenServiceImpl) verify(token string, secret []byte) (*service.TokenClaims, error) {
	claims := &tokenClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken.Wrap(err)
	}
	return toServiceClaims(claims)
}

func toServiceClaims(claims *tokenClaims) (*service.TokenClaims, error) {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, domain.ErrInvalidToken.Wrap(err)
	}
	out := &service.TokenClaims{UserID: userID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

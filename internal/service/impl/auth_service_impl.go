package impl

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"iam/internal/domain"
	"iam/internal/dto"
	"iam/internal/observability/metrics"
	"iam/internal/password"
	"iam/internal/service"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type AuthServiceImpl struct {
	Users  service.UserRepository
	Roles  service.RoleRepository
	Otps   service.OtpService
	Tokens service.TokenService
	Hasher *password.Hasher
}

func NewAuthService(
	users service.UserRepository,
	roles service.RoleRepository,
	otps service.OtpService,
	tokens service.TokenService,
	hasher *password.Hasher,
) *AuthServiceImpl {
	return &AuthServiceImpl{Users: users, Roles: roles, Otps: otps, Tokens: tokens, Hasher: hasher}
}

func (a *AuthServiceImpl) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	result := "success"
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(result).Inc()
	}()
	fail := func(err error) (*dto.AuthResponse, error) {
		result = "failure"
		slog.Error("registration failed", "email", req.Email, "error", err)
		return nil, err
	}

	// Uniqueness is checked sequentially, email first, before any write.
	if _, err := a.Users.FindByEmail(ctx, req.Email); err == nil {
		return fail(domain.ErrDuplicateEmail)
	} else if !errors.Is(err, service.ErrNotFound) {
		return fail(domain.Internal("failed to look up email", err))
	}
	if _, err := a.Users.FindByPhoneNumber(ctx, req.PhoneNumber); err == nil {
		return fail(domain.ErrDuplicatePhone)
	} else if !errors.Is(err, service.ErrNotFound) {
		return fail(domain.Internal("failed to look up phone number", err))
	}

	// The very first account becomes the super admin; everyone after gets the
	// seeded default role. A missing default role is a bootstrap invariant
	// violation, fatal rather than retryable.
	first, err := a.Users.IsFirstUser(ctx)
	if err != nil {
		return fail(domain.Internal("failed to check first user", err))
	}
	var role *domain.Role
	if first {
		role, err = a.Roles.FindSystemRole(ctx, domain.RoleSuperAdmin)
	} else {
		role, err = a.Roles.FindDefaultRole(ctx)
	}
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return fail(domain.ErrNoDefaultRole)
		}
		return fail(domain.Internal("failed to resolve role", err))
	}

	if err := password.ValidateStrength(req.Password, false); err != nil {
		return fail(policyError(err))
	}
	hash, err := a.Hasher.Hash(req.Password)
	if err != nil {
		return fail(domain.Internal("failed to hash password", err))
	}

	user := &domain.User{
		ID:                 uuid.New(),
		FullName:           req.FullName,
		Email:              req.Email,
		PhoneNumber:        req.PhoneNumber,
		Password:           hash,
		DefaultRoleID:      &role.ID,
		VerificationStatus: domain.VerificationInitialRegistered,
		IsActive:           true,
	}
	if err := a.Users.Create(ctx, user); err != nil {
		return fail(domain.Internal("failed to create user", err))
	}
	if err := a.Roles.AssignToUser(ctx, user.ID, role.ID); err != nil {
		return fail(domain.Internal("failed to assign role", err))
	}

	tokens, err := a.Tokens.GenerateTokens(ctx, user.ID)
	if err != nil {
		return fail(err)
	}

	// OTP dispatch for both identifiers is concurrent and best effort: the
	// user can re-request a code, so a failure here must not roll back the
	// registration.
	var g errgroup.Group
	for _, identifier := range []string{user.Email, user.PhoneNumber} {
		identifier := identifier
		g.Go(func() error {
			if _, err := a.Otps.Generate(ctx, user.ID, identifier, domain.PurposeRegistration); err != nil {
				slog.Warn("registration OTP dispatch failed", "user_id", user.ID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("user registered", "user_id", user.ID, "role", role.Name)
	return &dto.AuthResponse{User: dto.NewUserView(user), Tokens: tokens}, nil
}

func (a *AuthServiceImpl) Login(ctx context.Context, identifier, pass string) (*dto.AuthResponse, error) {
	result := "success"
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(result).Inc()
	}()

	user, err := a.Users.FindByIdentifier(ctx, identifier)
	if err != nil {
		result = "failure"
		if errors.Is(err, service.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Internal("failed to look up user", err)
	}

	ok, err := a.Hasher.Verify(pass, user.Password)
	if err != nil || !ok {
		result = "failure"
		slog.Warn("login rejected", "user_id", user.ID)
		return nil, domain.ErrInvalidCredentials
	}

	// Transparent rehash when the stored hash predates the current cost
	// parameters.
	if a.Hasher.NeedsRehash(user.Password) {
		if newHash, err := a.Hasher.Hash(pass); err == nil {
			if err := a.Users.UpdatePassword(ctx, user.ID, newHash); err != nil {
				slog.Warn("password rehash failed", "user_id", user.ID, "error", err)
			}
		}
	}

	tokens, err := a.Tokens.GenerateTokens(ctx, user.ID)
	if err != nil {
		result = "failure"
		return nil, err
	}

	slog.Info("user logged in", "user_id", user.ID)
	return &dto.AuthResponse{User: dto.NewUserView(user), Tokens: tokens}, nil
}

// Logout blacklists both tokens. Blacklisting is idempotent, so on partial
// failure the caller retries the whole operation.
func (a *AuthServiceImpl) Logout(ctx context.Context, accessToken, refreshToken string, userID domain.UserID) error {
	var g errgroup.Group
	for _, token := range []string{accessToken, refreshToken} {
		token := token
		g.Go(func() error {
			return a.Tokens.BlacklistToken(ctx, token, userID)
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("failed to blacklist tokens", "user_id", userID, "error", err)
		return domain.ErrLogoutFailed.Wrap(err)
	}
	slog.Info("user logged out", "user_id", userID)
	return nil
}

func (a *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("refresh", result).Inc()
	}()

	claims, err := a.Tokens.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		result = "failure"
		return nil, err
	}

	user, err := a.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		result = "failure"
		if errors.Is(err, service.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal("failed to load user", err)
	}

	tokens, err := a.Tokens.GenerateTokens(ctx, user.ID)
	if err != nil {
		result = "failure"
		return nil, err
	}

	slog.Info("tokens refreshed", "user_id", user.ID)
	return &dto.AuthResponse{User: dto.NewUserView(user), Tokens: tokens}, nil
}

// VerifyAccount consumes a REGISTRATION OTP for the chosen channel and marks
// the matching identifier verified. Email and phone are tracked
// independently; the account is fully verified once both are set.
func (a *AuthServiceImpl) VerifyAccount(ctx context.Context, userID domain.UserID, code string, channel domain.VerificationChannel) (*domain.User, error) {
	user, err := a.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal("failed to load user", err)
	}

	identifier := user.Email
	if channel == domain.ChannelPhone {
		identifier = user.PhoneNumber
	}

	otp, err := a.Otps.Verify(ctx, code, identifier, domain.PurposeRegistration)
	if err != nil {
		return nil, err
	}
	if otp == nil {
		return nil, domain.ErrInvalidOtp
	}

	if err := a.Users.MarkVerified(ctx, userID, channel); err != nil {
		return nil, domain.Internal("failed to mark verified", err)
	}

	if channel == domain.ChannelEmail {
		user.IsEmailVerified = true
	} else {
		user.IsPhoneVerified = true
	}
	slog.Info("account verified", "user_id", userID, "channel", channel)
	return user, nil
}

// ResetPassword is OTP-gated and fails closed: no step failure leaves a
// partially updated password.
func (a *AuthServiceImpl) ResetPassword(ctx context.Context, userID domain.UserID, code, newPassword string) error {
	user, err := a.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return domain.Internal("failed to load user", err)
	}

	otp, err := a.Otps.Verify(ctx, code, user.Email, domain.PurposePasswordReset)
	if err != nil {
		return err
	}
	if otp == nil {
		return domain.ErrInvalidOtp
	}

	return a.rehashAndStore(ctx, user.ID, newPassword)
}

func (a *AuthServiceImpl) ChangePassword(ctx context.Context, userID domain.UserID, oldPassword, newPassword string) error {
	user, err := a.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return domain.Internal("failed to load user", err)
	}

	ok, err := a.Hasher.Verify(oldPassword, user.Password)
	if err != nil || !ok {
		return domain.ErrInvalidCredentials
	}

	return a.rehashAndStore(ctx, user.ID, newPassword)
}

func (a *AuthServiceImpl) rehashAndStore(ctx context.Context, userID domain.UserID, newPassword string) error {
	if err := password.ValidateStrength(newPassword, false); err != nil {
		return policyError(err)
	}
	hash, err := a.Hasher.Hash(newPassword)
	if err != nil {
		return domain.Internal("failed to hash password", err)
	}
	if err := a.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return domain.Internal("failed to update password", err)
	}
	slog.Info("password updated", "user_id", userID)
	return nil
}

// CheckPrivilege is the single authorization decision point. Actions are
// validated fail-fast before any lookup, then evaluated concurrently.
func (a *AuthServiceImpl) CheckPrivilege(ctx context.Context, roleID domain.RoleID, actions []string) (dto.PrivilegeCheck, error) {
	for _, action := range actions {
		if strings.TrimSpace(action) == "" {
			return dto.PrivilegeCheck{}, domain.ErrInvalidAction
		}
	}

	granted := make([]bool, len(actions))
	g, gctx := errgroup.WithContext(ctx)
	for i, action := range actions {
		i, action := i, action
		g.Go(func() error {
			ok, err := a.Roles.HasPrivilege(gctx, roleID, action)
			if err != nil {
				return err
			}
			granted[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.PrivilegeChecksTotal.WithLabelValues("failure").Inc()
		slog.Error("privilege check failed", "role_id", roleID, "actions", actions, "error", err)
		return dto.PrivilegeCheck{}, domain.Internal("failed to check privileges", err)
	}

	var missing []string
	for i, ok := range granted {
		if !ok {
			missing = append(missing, actions[i])
		}
	}
	if len(missing) > 0 {
		metrics.PrivilegeChecksTotal.WithLabelValues("denied").Inc()
		return dto.PrivilegeCheck{Granted: false, MissingPrivileges: missing}, nil
	}
	metrics.PrivilegeChecksTotal.WithLabelValues("granted").Inc()
	return dto.PrivilegeCheck{Granted: true}, nil
}

// policyError maps a password policy violation into the validation kind,
// keeping the machine-readable reason in the message.
func policyError(err error) error {
	var pe *password.PolicyError
	if errors.As(err, &pe) {
		return domain.NewError(domain.KindValidation, pe.Message)
	}
	return domain.Internal("password validation failed", err)
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/deskforge/helpdesk/internal/auth"
	"github.com/deskforge/helpdesk/internal/domain"
	"github.com/deskforge/helpdesk/internal/repository"
	apperrors "github.com/deskforge/helpdesk/pkg/util"
)

// AuthService handles registration, login and password management. Every
// identity is scoped to a tenant resolved from its slug.
type AuthService struct {
	users      repository.UserRepository
	tenants    repository.TenantRepository
	resets     repository.PasswordResetRepository
	tokens     *auth.TokenManager
	bcryptCost int
	resetTTL   time.Duration
	logger     *zap.Logger
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	TenantRepo repository.TenantRepository
	ResetRepo  repository.PasswordResetRepository
	Tokens     *auth.TokenManager
	BcryptCost int
	ResetTTL   time.Duration
	Logger     *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tenants:    deps.TenantRepo,
		resets:     deps.ResetRepo,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
		resetTTL:   deps.ResetTTL,
		logger:     logger,
	}
}

// AuthResult is a signed session for a user.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a requester account in the tenant identified by slug.
// Staff roles are granted through admin user management, never here.
func (s *AuthService) Register(ctx context.Context, tenantSlug, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	tenant, err := s.getTenantBySlug(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, tenant.ID, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		TenantID:     tenant.ID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("user registered",
		zap.String("tenant_id", tenant.ID),
		zap.String("user_id", user.ID),
	)
	return s.issueSession(user)
}

// Login authenticates an email and password within a tenant.
func (s *AuthService) Login(ctx context.Context, tenantSlug, email, password string) (*AuthResult, error) {
	tenant, err := s.getTenantBySlug(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByEmail(ctx, tenant.ID, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issueSession(user)
}

// RequestPasswordReset issues a single-use reset token. It returns the
// token so the notification layer can deliver it; unknown emails succeed
// silently so the endpoint does not leak account existence.
func (s *AuthService) RequestPasswordReset(ctx context.Context, tenantSlug, email string) (string, error) {
	tenant, err := s.getTenantBySlug(ctx, tenantSlug)
	if err != nil {
		return "", err
	}
	user, err := s.users.GetByEmail(ctx, tenant.ID, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", apperrors.MapError(err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", apperrors.NewInternalError(err)
	}
	token := &repository.PasswordResetToken{
		TenantID:  tenant.ID,
		UserID:    user.ID,
		Token:     hex.EncodeToString(raw),
		ExpiresAt: time.Now().UTC().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return "", apperrors.MapError(err)
	}
	return token.Token, nil
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid or expired reset token")
		}
		return apperrors.MapError(err)
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewUnauthorized("invalid or expired reset token")
	}

	user, err := s.users.GetByID(ctx, token.TenantID, token.UserID)
	if err != nil {
		return apperrors.MapError(err)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return apperrors.MapError(s.resets.MarkUsed(ctx, token.ID))
}

// ChangePassword rotates the password of an authenticated user after
// verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.User, current, next string) error {
	if err := auth.ComparePassword(actor.PasswordHash, current); err != nil {
		return apperrors.NewUnauthorized("current password incorrect")
	}
	if len(next) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	actor.PasswordHash = hash
	return apperrors.MapError(s.users.Update(ctx, actor))
}

func (s *AuthService) issueSession(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) getTenantBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	tenant, err := s.tenants.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("tenant", map[string]any{"tenant_slug": slug})
		}
		return nil, apperrors.MapError(err)
	}
	if !tenant.IsActive {
		return nil, apperrors.NewConflict("tenant inactive", map[string]any{"tenant_slug": slug})
	}
	return tenant, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

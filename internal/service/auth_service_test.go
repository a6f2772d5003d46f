package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskforge/helpdesk/internal/auth"
	"github.com/deskforge/helpdesk/internal/domain"
	"github.com/deskforge/helpdesk/internal/repository"
	apperrors "github.com/deskforge/helpdesk/pkg/util"
)

type stubTenantRepo struct {
	tenants map[string]*domain.Tenant
}

func (r *stubTenantRepo) Create(_ context.Context, tenant *domain.Tenant) error {
	r.tenants[tenant.Slug] = tenant
	return nil
}

func (r *stubTenantRepo) GetByID(_ context.Context, id string) (*domain.Tenant, error) {
	for _, tenant := range r.tenants {
		if tenant.ID == id {
			return tenant, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubTenantRepo) GetBySlug(_ context.Context, slug string) (*domain.Tenant, error) {
	tenant, ok := r.tenants[slug]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return tenant, nil
}

type stubResetRepo struct {
	mu     sync.Mutex
	seq    int
	tokens map[string]*repository.PasswordResetToken
}

func (r *stubResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	token.ID = "reset-1"
	token.CreatedAt = time.Now().UTC()
	copied := *token
	r.tokens[token.Token] = &copied
	return nil
}

func (r *stubResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *token
	return &copied, nil
}

func (r *stubResetRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.ID == id {
			now := time.Now().UTC()
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func newAuthFixture(t *testing.T) (*AuthService, *stubUserRepo, *stubResetRepo) {
	t.Helper()
	users := newStubUserRepo()
	tenants := &stubTenantRepo{tenants: map[string]*domain.Tenant{
		"acme": {ID: "tenant-1", Name: "Acme", Slug: "acme", IsActive: true},
	}}
	resets := &stubResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
	svc := NewAuthService(AuthDependencies{
		UserRepo:   users,
		TenantRepo: tenants,
		ResetRepo:  resets,
		Tokens:     auth.NewTokenManager("test-secret", 60),
		BcryptCost: 4, // min cost keeps the tests fast
		ResetTTL:   30 * time.Minute,
	})
	return svc, users, resets
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	result, err := svc.Register(context.Background(), "acme", "Rita Requester", "Rita@Example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, result.User.Role)
	assert.Equal(t, "rita@example.com", result.User.Email)
	assert.NotEmpty(t, result.Token)

	session, err := svc.Login(context.Background(), "acme", "rita@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, session.User.ID)

	_, err = svc.Login(context.Background(), "acme", "rita@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, err := svc.Register(context.Background(), "acme", "Rita", "rita@example.com", "hunter2secret")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "acme", "Other Rita", "rita@example.com", "hunter2secret")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestRegisterUnknownTenant(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, err := svc.Register(context.Background(), "ghost", "Rita", "rita@example.com", "hunter2secret")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, err := svc.Register(context.Background(), "acme", "Rita", "rita@example.com", "hunter2secret")
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(context.Background(), "acme", "rita@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, svc.ConfirmPasswordReset(context.Background(), token, "betterpassword"))

	_, err = svc.Login(context.Background(), "acme", "rita@example.com", "betterpassword")
	require.NoError(t, err)

	// Single use: a second confirm with the same token fails.
	err = svc.ConfirmPasswordReset(context.Background(), token, "anotherpassword")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	token, err := svc.RequestPasswordReset(context.Background(), "acme", "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}

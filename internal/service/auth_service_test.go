package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/civic-kit/grievance-service/internal/auth"
	"github.com/civic-kit/grievance-service/internal/config"
	"github.com/civic-kit/grievance-service/internal/domain"
)

func newAuthFixture() (*mockUserRepo, *AuthService) {
	users := &mockUserRepo{}
	cfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 15, BcryptCost: 4}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes)
	return users, NewAuthService(users, tokens, cfg, nil)
}

func TestRegisterCitizen(t *testing.T) {
	users, svc := newAuthFixture()
	users.On("GetByEmail", mock.Anything, "jaya@example.com").Return(nil, pgx.ErrNoRows)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleCitizen && u.IsActive && u.Email == "jaya@example.com"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = "user-1"
	}).Return(nil)

	result, err := svc.RegisterCitizen(context.Background(), RegisterInput{
		FullName: "Jaya Rao",
		Email:    " Jaya@Example.com ",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, domain.RoleCitizen, result.User.Role)
	// Stored hash must not be the plaintext.
	assert.NotEqual(t, "correct-horse", result.User.PasswordHash)
}

func TestRegisterCitizenValidation(t *testing.T) {
	_, svc := newAuthFixture()

	_, err := svc.RegisterCitizen(context.Background(), RegisterInput{FullName: "", Email: "a@b.com", Password: "longenough"})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = svc.RegisterCitizen(context.Background(), RegisterInput{FullName: "A B", Email: "not-an-email", Password: "longenough"})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = svc.RegisterCitizen(context.Background(), RegisterInput{FullName: "A B", Email: "a@b.com", Password: "short"})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestRegisterCitizenDuplicateEmail(t *testing.T) {
	users, svc := newAuthFixture()
	users.On("GetByEmail", mock.Anything, "jaya@example.com").Return(&domain.User{ID: "user-1"}, nil)

	_, err := svc.RegisterCitizen(context.Background(), RegisterInput{
		FullName: "Jaya Rao",
		Email:    "jaya@example.com",
		Password: "correct-horse",
	})
	assert.Equal(t, "CONFLICT", domainCode(t, err))
}

func TestLogin(t *testing.T) {
	users, svc := newAuthFixture()
	hash, err := auth.HashPassword("correct-horse", 4)
	require.NoError(t, err)
	account := &domain.User{
		ID:           "user-1",
		Email:        "jaya@example.com",
		PasswordHash: hash,
		Role:         domain.RoleCitizen,
		IsActive:     true,
	}
	users.On("GetByEmail", mock.Anything, "jaya@example.com").Return(account, nil)

	result, err := svc.Login(context.Background(), "jaya@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Login(context.Background(), "jaya@example.com", "wrong")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))
}

func TestLoginUnknownAndInactive(t *testing.T) {
	users, svc := newAuthFixture()
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, pgx.ErrNoRows)

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))

	hash, err := auth.HashPassword("pw12345678", 4)
	require.NoError(t, err)
	inactive := &domain.User{ID: "user-2", Email: "off@example.com", PasswordHash: hash, IsActive: false}
	users.On("GetByEmail", mock.Anything, "off@example.com").Return(inactive, nil)

	_, err = svc.Login(context.Background(), "off@example.com", "pw12345678")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))
}

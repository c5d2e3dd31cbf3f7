package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/colegio-sanjuan/portal-api/internal/models"
	"github.com/colegio-sanjuan/portal-api/pkg/config"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
)

type stubUserRepo struct {
	user      *models.User
	lastLogin time.Time
}

func (s *stubUserRepo) FindByEmail(_ context.Context, _ string) (*models.User, error) {
	if s.user == nil {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, _ string) (*models.User, error) {
	if s.user == nil {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, _ string, ts time.Time) error {
	s.lastLogin = ts
	return nil
}

func newTestAuthService(user *models.User) (*AuthService, *stubUserRepo) {
	repo := &stubUserRepo{user: user}
	svc := NewAuthService(repo, config.JWTConfig{Secret: "test_secret", Expiration: time.Hour}, nil)
	svc.now = func() time.Time { return time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLogin(t *testing.T) {
	svc, repo := newTestAuthService(&models.User{
		ID:           "u1",
		Email:        "auxiliar@colegio.edu.pe",
		PasswordHash: hashPassword(t, "secret123"),
		FullName:     "Carmen Quispe",
		Role:         models.RoleAuxiliar,
		Active:       true,
	})

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "auxiliar@colegio.edu.pe",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleAuxiliar, resp.User.Role)
	assert.False(t, repo.lastLogin.IsZero())

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAuxiliar, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(&models.User{
		ID:           "u1",
		Email:        "auxiliar@colegio.edu.pe",
		PasswordHash: hashPassword(t, "secret123"),
		Active:       true,
	})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "auxiliar@colegio.edu.pe",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService(nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nadie@colegio.edu.pe",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, _ := newTestAuthService(&models.User{
		ID:           "u1",
		Email:        "ex@colegio.edu.pe",
		PasswordHash: hashPassword(t, "secret123"),
		Active:       false,
	})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ex@colegio.edu.pe",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenExpired(t *testing.T) {
	svc, _ := newTestAuthService(&models.User{
		ID:           "u1",
		Email:        "auxiliar@colegio.edu.pe",
		PasswordHash: hashPassword(t, "secret123"),
		Active:       true,
	})

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "auxiliar@colegio.edu.pe",
		Password: "secret123",
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2024, 4, 10, 13, 0, 1, 0, time.UTC) }
	_, err = svc.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc, _ := newTestAuthService(nil)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

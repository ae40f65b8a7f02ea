package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/app/models/dto"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
)

func newTestAuthService() (AuthService, *fakeUserStore, *fakeTokenStore) {
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	return NewAuthService(users, tokens, newTestJWT(), testLogger), users, tokens
}

func TestAuthService_RegisterCreatesStudent(t *testing.T) {
	svc, users, tokens := newTestAuthService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Email:    " New@Example.com ",
		Username: "newbie",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.Equal(t, string(models.RoleStudent), resp.User.Role)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.Equal(t, 1, tokens.active(resp.User.ID))

	_, err = svc.Register(ctx, &dto.RegisterRequest{Email: "new@example.com", Username: "again", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	stored, err := users.GetByID(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.Password)
}

func TestAuthService_Login(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()
	u := seedUser(t, users, "teacher@example.com", models.RoleTeacher)

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "TEACHER@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.ID)

	stored, _ := users.GetByID(ctx, u.ID)
	assert.NotNil(t, stored.LastLoginAt)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "teacher@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_LoginInactiveAccount(t *testing.T) {
	svc, users, _ := newTestAuthService()
	u := seedUser(t, users, "gone@example.com", models.RoleStudent)
	u.IsActive = false
	require.NoError(t, users.Update(context.Background(), u))

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "gone@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()
	seedUser(t, users, "s@example.com", models.RoleStudent)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "s@example.com", Password: "password123"})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(ctx, login.Token.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.Token.RefreshToken, rotated.RefreshToken)

	_, err = svc.RefreshToken(ctx, login.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = svc.RefreshToken(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestAuthService_LogoutIsIdempotent(t *testing.T) {
	svc, users, tokens := newTestAuthService()
	ctx := context.Background()
	u := seedUser(t, users, "s@example.com", models.RoleStudent)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "s@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.Token.RefreshToken))
	require.NoError(t, svc.Logout(ctx, login.Token.RefreshToken))
	assert.Equal(t, 0, tokens.active(u.ID))

	assert.ErrorIs(t, svc.Logout(ctx, "unknown"), apperrors.ErrTokenNotFound)
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()
	u := seedUser(t, users, "imp@example.com", models.RoleImporter)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "imp@example.com", Password: "password123"})
	require.NoError(t, err)

	actor, err := svc.Authenticate(ctx, login.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, actor.UserID)
	assert.Equal(t, models.RoleImporter, actor.Role)

	_, err = svc.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	u.IsActive = false
	require.NoError(t, users.Update(ctx, u))
	_, err = svc.Authenticate(ctx, login.Token.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

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

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestUserService_CreateAndList(t *testing.T) {
	users := newFakeUserStore()
	svc := NewUserService(users, newFakeTokenStore(), testLogger)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, &dto.CreateUserRequest{
		Email: "imp@example.com", Username: "imp", Password: "password123", Role: "IMPORTER",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleImporter), created.Role)

	_, err = svc.CreateUser(ctx, &dto.CreateUserRequest{
		Email: "x@example.com", Username: "x", Password: "password123", Role: "superuser",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	seedUser(t, users, "s@example.com", models.RoleStudent)

	list, page, err := svc.ListUsers(ctx, &dto.UserFilterRequest{Role: "student"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "s@example.com", list[0].Email)
	assert.Equal(t, int64(1), page.TotalItems)
}

func TestUserService_UpdateFullRequiresUsernameAndRole(t *testing.T) {
	users := newFakeUserStore()
	svc := NewUserService(users, newFakeTokenStore(), testLogger)
	admin := seedUser(t, users, "admin@example.com", models.RoleAdmin)
	target := seedUser(t, users, "t@example.com", models.RoleStudent)

	_, err := svc.UpdateUser(context.Background(), actorFor(admin), target.ID, &dto.UpdateUserRequest{FirstName: strPtr("Ada")}, false)
	var ce *apperrors.CustomError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "username", ce.Field)

	updated, err := svc.UpdateUser(context.Background(), actorFor(admin), target.ID, &dto.UpdateUserRequest{FirstName: strPtr("Ada")}, true)
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, string(models.RoleStudent), updated.Role)

	updated, err = svc.UpdateUser(context.Background(), actorFor(admin), target.ID, &dto.UpdateUserRequest{
		Username: strPtr("teach"), Role: strPtr("teacher"),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleTeacher), updated.Role)
}

func TestUserService_DeleteIsSoft(t *testing.T) {
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	svc := NewUserService(users, tokens, testLogger)
	ctx := context.Background()
	admin := seedUser(t, users, "admin@example.com", models.RoleAdmin)
	target := seedUser(t, users, "t@example.com", models.RoleStudent)
	require.NoError(t, tokens.CreateToken(ctx, "tok", target.ID, target.CreatedAt.AddDate(1, 0, 0)))

	require.NoError(t, svc.DeleteUser(ctx, actorFor(admin), target.ID))

	stored, err := users.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, 0, tokens.active(target.ID))

	err = svc.DeleteUser(ctx, actorFor(admin), admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.UpdateUser(ctx, actorFor(admin), admin.ID, &dto.UpdateUserRequest{IsActive: boolPtr(false)}, true)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	assert.ErrorIs(t, svc.DeleteUser(ctx, actorFor(admin), 999), apperrors.ErrResourceNotFound)
}

func TestUserService_Me(t *testing.T) {
	users := newFakeUserStore()
	svc := NewUserService(users, newFakeTokenStore(), testLogger)
	u := seedUser(t, users, "me@example.com", models.RoleTeacher)

	me, err := svc.Me(context.Background(), actorFor(u))
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", me.Email)
}

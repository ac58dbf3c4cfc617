package services

import (
	"context"
	"testing"
	"time"

	"github.com/ArowuTest/luckyticket-backend/internal/logging"
	"github.com/ArowuTest/luckyticket-backend/internal/models"
	"github.com/ArowuTest/luckyticket-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestAuthService(t *testing.T) (AuthService, *jwt.TokenService) {
	t.Helper()
	store := newTestStore(t)
	tokens := jwt.NewTokenService("test-secret", time.Hour)
	return NewAuthService(store.Users(), tokens, logging.Discard()), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens := newTestAuthService(t)

	resp, err := svc.Register(ctx, &models.RegisterRequest{Name: " Ada ", Email: "Ada@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", resp.Name)
	assert.Equal(t, "ada@example.com", resp.Email)
	assert.Equal(t, models.RoleUser, resp.Role)
	assert.Zero(t, resp.Points)
	assert.Empty(t, resp.Password)

	claims, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.ID.Hex(), claims.Subject)

	_, err = svc.Register(ctx, &models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := svc.Login(ctx, &models.LoginRequest{Email: "ADA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, resp.ID, login.ID)
	assert.NotEmpty(t, login.Token)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	me, err := svc.Me(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", me.Email)
	assert.Empty(t, me.Password)

	_, err = svc.Me(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	admin, created, err := svc.SeedAdmin(ctx, "Admin", "admin@example.com", "changeme")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, admin.IsAdmin())

	again, created, err := svc.SeedAdmin(ctx, "Admin", "admin@example.com", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "admin@example.com", Password: "changeme"})
	assert.NoError(t, err)

	_, _, err = svc.SeedAdmin(ctx, "Admin", "second@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	users, err := svc.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

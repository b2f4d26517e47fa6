package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evrim/counselbridge/internal/app/models"
	"github.com/evrim/counselbridge/internal/pkg/apperrors"
	"github.com/evrim/counselbridge/internal/pkg/auth"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()

	users := newFakeUserRepo()

	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &models.User{
		Email:     "alice@example.com",
		Password:  hash,
		FirstName: "Alice",
		LastName:  "Yilmaz",
		Role:      models.RoleStudent,
		IsActive:  true,
	}))

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "counselbridge-test",
	})

	return NewAuthService(users, jwtService, zerolog.Nop()), users
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials return a usable token", func(t *testing.T) {
		service, _ := newAuthFixture(t)

		token, expiresIn, user, err := service.Login(ctx, "alice@example.com", "correct-horse")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, 3600, expiresIn)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("email is normalized before lookup", func(t *testing.T) {
		service, _ := newAuthFixture(t)

		_, _, _, err := service.Login(ctx, " Alice@Example.com ", "correct-horse")

		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		service, _ := newAuthFixture(t)

		_, _, _, err := service.Login(ctx, "alice@example.com", "wrong")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email maps to the same error as wrong password", func(t *testing.T) {
		service, _ := newAuthFixture(t)

		_, _, _, err := service.Login(ctx, "ghost@example.com", "correct-horse")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		service, users := newAuthFixture(t)
		users.users["alice@example.com"].IsActive = false

		_, _, _, err := service.Login(ctx, "alice@example.com", "correct-horse")

		assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
	})
}

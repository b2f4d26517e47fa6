package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/evrim/counselbridge/internal/app/models"
	"github.com/evrim/counselbridge/internal/app/repositories"
	"github.com/evrim/counselbridge/internal/pkg/apperrors"
	"github.com/evrim/counselbridge/internal/pkg/auth"
	"github.com/evrim/counselbridge/internal/pkg/validation"
)

// AuthService handles credential checks and token issuance
type AuthService struct {
	userRepo   repositories.IUserRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new auth service instance
func NewAuthService(userRepo repositories.IUserRepository, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login validates credentials and returns a signed access token alongside the
// user record. Unknown emails and wrong passwords both map to
// ErrInvalidCredentials so the response does not leak which one failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, int, *models.User, error) {
	email = validation.NormalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", 0, nil, apperrors.ErrInvalidCredentials
		}
		return "", 0, nil, fmt.Errorf("error retrieving user: %w", err)
	}

	if !user.IsActive {
		return "", 0, nil, apperrors.ErrAccountDisabled
	}

	if !auth.CheckPassword(user.Password, password) {
		return "", 0, nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return "", 0, nil, fmt.Errorf("error generating token: %w", err)
	}

	s.logger.Info().Int64("userId", user.ID).Str("role", string(user.Role)).Msg("User logged in")

	return token, expiresIn, user, nil
}

package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/evrim/counselbridge/internal/app/models"
	"github.com/evrim/counselbridge/internal/app/repositories"
	"github.com/evrim/counselbridge/internal/config"
	"github.com/evrim/counselbridge/internal/pkg/apperrors"
	"github.com/evrim/counselbridge/internal/pkg/auth"
)

// CreateDefaultData seeds the admin account and a starter counselor directory.
// Every insert tolerates "already exists" so startup stays idempotent.
func CreateDefaultData(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := repositories.NewUserRepository(dbPool)
	counselorRepo := repositories.NewCounselorRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	if cfg.Seed.AdminPassword != "" {
		hash, err := auth.HashPassword(cfg.Seed.AdminPassword)
		if err != nil {
			lgr.Error().Err(err).Msg("Error hashing admin password")
			finalErr = errors.Join(finalErr, err)
		} else {
			admin := &models.User{
				Email:     cfg.Seed.AdminEmail,
				Password:  hash,
				FirstName: "Platform",
				LastName:  "Admin",
				Role:      models.RoleAdmin,
				IsActive:  true,
			}
			if err := userRepo.Create(ctx, admin); err != nil && !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
				lgr.Error().Err(err).Msg("Error creating admin user")
				finalErr = errors.Join(finalErr, err)
			}
		}
	} else {
		lgr.Warn().Msg("No admin seed password configured, skipping admin account creation")
	}

	counselors := []*models.Counselor{
		{
			FullName:        "Dr. Sarah Chen",
			Email:           "sarah.chen@counselbridge.com",
			CounselorType:   "academic",
			Bio:             "Former admissions officer helping students find the right program.",
			YearsExperience: 12,
			Specializations: "university admissions, scholarship applications",
			HourlyRate:      85,
			Currency:        "USD",
			AverageRating:   4.9,
			TotalReviews:    128,
			IsAvailable:     true,
		},
		{
			FullName:        "James Okafor",
			Email:           "james.okafor@counselbridge.com",
			CounselorType:   "career",
			Bio:             "Career coach focused on first-generation students entering tech.",
			YearsExperience: 8,
			Specializations: "career planning, internship search",
			HourlyRate:      60,
			Currency:        "USD",
			AverageRating:   4.7,
			TotalReviews:    86,
			IsAvailable:     true,
		},
		{
			FullName:        "Elif Kaya",
			Email:           "elif.kaya@counselbridge.com",
			CounselorType:   "academic",
			Bio:             "Guidance counselor specializing in study abroad programs.",
			YearsExperience: 6,
			Specializations: "study abroad, visa guidance",
			HourlyRate:      50,
			Currency:        "USD",
			AverageRating:   4.8,
			TotalReviews:    54,
			IsAvailable:     true,
		},
	}

	for _, counselor := range counselors {
		if err := counselorRepo.Create(ctx, counselor); err != nil && !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			lgr.Error().Err(err).Str("email", counselor.Email).Msg("Error creating counselor")
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}

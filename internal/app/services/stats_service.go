package services

import (
	"context"
	"fmt"

	"github.com/evrim/counselbridge/internal/app/models"
	"github.com/evrim/counselbridge/internal/app/models/dto"
	"github.com/evrim/counselbridge/internal/app/repositories"
)

// StatsService aggregates platform-wide counts for the public landing numbers
type StatsService struct {
	userRepo      repositories.IUserRepository
	counselorRepo repositories.ICounselorRepository
	requestRepo   repositories.IConnectionRequestRepository
}

// NewStatsService creates a new stats service instance
func NewStatsService(
	userRepo repositories.IUserRepository,
	counselorRepo repositories.ICounselorRepository,
	requestRepo repositories.IConnectionRequestRepository,
) *StatsService {
	return &StatsService{
		userRepo:      userRepo,
		counselorRepo: counselorRepo,
		requestRepo:   requestRepo,
	}
}

// GetPlatformStats returns the public platform counters
func (s *StatsService) GetPlatformStats(ctx context.Context) (*dto.PlatformStats, error) {
	students, err := s.userRepo.CountByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("error counting students: %w", err)
	}

	counselors, err := s.counselorRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting counselors: %w", err)
	}

	requests, err := s.requestRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting requests: %w", err)
	}

	return &dto.PlatformStats{
		Students:   students,
		Counselors: counselors,
		Requests:   requests,
	}, nil
}

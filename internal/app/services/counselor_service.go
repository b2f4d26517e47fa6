package services

import (
	"context"
	"fmt"

	"github.com/evrim/counselbridge/internal/app/models"
	"github.com/evrim/counselbridge/internal/app/repositories"
)

// CounselorService exposes the read-only counselor directory
type CounselorService struct {
	counselorRepo repositories.ICounselorRepository
}

// NewCounselorService creates a new counselor service instance
func NewCounselorService(counselorRepo repositories.ICounselorRepository) *CounselorService {
	return &CounselorService{
		counselorRepo: counselorRepo,
	}
}

// ListAvailable returns all available counselors, best rated first
func (s *CounselorService) ListAvailable(ctx context.Context) ([]*models.Counselor, error) {
	counselors, err := s.counselorRepo.GetAllAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing counselors: %w", err)
	}

	if counselors == nil {
		counselors = []*models.Counselor{}
	}

	return counselors, nil
}

// GetByID returns a single counselor profile
func (s *CounselorService) GetByID(ctx context.Context, id int64) (*models.Counselor, error) {
	return s.counselorRepo.GetByID(ctx, id)
}

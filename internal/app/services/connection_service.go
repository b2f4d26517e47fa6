package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/evrim/counselbridge/internal/app/models"
	"github.com/evrim/counselbridge/internal/app/repositories"
	"github.com/evrim/counselbridge/internal/pkg/apperrors"
	"github.com/evrim/counselbridge/internal/pkg/validation"
)

// DuplicatePendingError reports a create attempt while the student already has a
// pending request. It carries the conflicting record so callers can offer a
// cancel-and-retry flow.
type DuplicatePendingError struct {
	Existing *models.ConnectionRequest
}

// Error implements the error interface
func (e *DuplicatePendingError) Error() string {
	return fmt.Sprintf("student already has pending connection request %d", e.Existing.ID)
}

// Unwrap lets errors.Is match apperrors.ErrDuplicatePendingRequest
func (e *DuplicatePendingError) Unwrap() error {
	return apperrors.ErrDuplicatePendingRequest
}

// ConnectionService mediates all reads and writes of connection requests. It is
// the only component that creates or mutates them, and it resolves student and
// counselor emails to store-assigned ids once, at this boundary.
type ConnectionService struct {
	userRepo      repositories.IUserRepository
	counselorRepo repositories.ICounselorRepository
	requestRepo   repositories.IConnectionRequestRepository
	activityRepo  repositories.IActivityRepository
	logger        zerolog.Logger
}

// NewConnectionService creates a new connection service instance
func NewConnectionService(
	userRepo repositories.IUserRepository,
	counselorRepo repositories.ICounselorRepository,
	requestRepo repositories.IConnectionRequestRepository,
	activityRepo repositories.IActivityRepository,
	logger zerolog.Logger,
) *ConnectionService {
	return &ConnectionService{
		userRepo:      userRepo,
		counselorRepo: counselorRepo,
		requestRepo:   requestRepo,
		activityRepo:  activityRepo,
		logger:        logger,
	}
}

// resolveStudent maps a student email to its user record
func (s *ConnectionService) resolveStudent(ctx context.Context, studentEmail string) (*models.User, error) {
	email := validation.NormalizeEmail(studentEmail)
	if !validation.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: malformed student email", apperrors.ErrValidationFailed)
	}

	student, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error resolving student: %w", err)
	}

	return student, nil
}

// CreateConnectionRequest creates a new pending request from a student to a
// counselor. A student may hold at most one pending request at a time; a
// violation returns DuplicatePendingError with the conflicting record.
func (s *ConnectionService) CreateConnectionRequest(ctx context.Context, studentEmail, counselorEmail, reason string) (*models.ConnectionRequest, error) {
	student, err := s.resolveStudent(ctx, studentEmail)
	if err != nil {
		return nil, err
	}

	if existing, err := s.requestRepo.GetPendingByStudentID(ctx, student.ID); err != nil {
		return nil, fmt.Errorf("error checking pending requests: %w", err)
	} else if existing != nil {
		return nil, &DuplicatePendingError{Existing: existing}
	}

	counselorAddr := validation.NormalizeEmail(counselorEmail)
	if !validation.IsValidEmail(counselorAddr) {
		return nil, fmt.Errorf("%w: malformed counselor email", apperrors.ErrValidationFailed)
	}

	counselor, err := s.counselorRepo.GetByEmail(ctx, counselorAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrCounselorNotFound) {
			return nil, apperrors.ErrCounselorNotFound
		}
		return nil, fmt.Errorf("error resolving counselor: %w", err)
	}

	if reason == "" {
		reason = fmt.Sprintf("Student %s %s is interested in connecting with %s for guidance",
			student.FirstName, student.LastName, counselor.FullName)
	}

	request := &models.ConnectionRequest{
		StudentID:            student.ID,
		RequestedCounselorID: counselor.ID,
		Status:               models.StatusPending,
		RequestReason:        reason,
	}

	if err := s.requestRepo.Insert(ctx, request); err != nil {
		if errors.Is(err, apperrors.ErrDuplicatePendingRequest) {
			// Lost the race against a concurrent create from the same student;
			// the partial unique index rejected the second insert.
			existing, lookupErr := s.requestRepo.GetPendingByStudentID(ctx, student.ID)
			if lookupErr == nil && existing != nil {
				return nil, &DuplicatePendingError{Existing: existing}
			}
			return nil, apperrors.ErrDuplicatePendingRequest
		}
		return nil, err
	}

	s.logActivity(ctx, student.Email, models.ActivityConnectionRequested,
		fmt.Sprintf("Sent connection request to %s", counselor.FullName))

	return request, nil
}

// GetStudentConnections returns all of the student's requests, most recent
// first. A student with no requests gets an empty slice, not an error.
func (s *ConnectionService) GetStudentConnections(ctx context.Context, studentEmail string) ([]*models.ConnectionRequest, error) {
	student, err := s.resolveStudent(ctx, studentEmail)
	if err != nil {
		return nil, err
	}

	requests, err := s.requestRepo.GetByStudentID(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing connections: %w", err)
	}

	if requests == nil {
		requests = []*models.ConnectionRequest{}
	}

	return requests, nil
}

// CancelConnectionRequest transitions a pending request to cancelled. Only the
// owning student may cancel, and only while the request is still pending;
// everything else is an invalid transition.
func (s *ConnectionService) CancelConnectionRequest(ctx context.Context, requestID int64, studentEmail string) (*models.ConnectionRequest, error) {
	student, err := s.resolveStudent(ctx, studentEmail)
	if err != nil {
		return nil, err
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	// Ownership is a transition precondition, not just authorization: a
	// request belonging to another student cannot be cancelled by this one.
	if request.StudentID != student.ID {
		return nil, apperrors.ErrInvalidTransition
	}

	if !request.Status.CanTransitionTo(models.StatusCancelled) {
		return nil, apperrors.ErrInvalidTransition
	}

	updated, err := s.requestRepo.UpdateStatusIfPending(ctx, requestID, models.StatusCancelled, "")
	if err != nil {
		if errors.Is(err, repositories.ErrNoPendingRequest) {
			return nil, apperrors.ErrInvalidTransition
		}
		return nil, err
	}

	s.logActivity(ctx, student.Email, models.ActivityConnectionCancelled, "Cancelled connection request")

	return updated, nil
}

// ApproveConnectionRequest transitions a pending request to approved and stamps
// approved_at. Admin-only; routing enforces the role.
func (s *ConnectionService) ApproveConnectionRequest(ctx context.Context, requestID int64, adminNotes string) (*models.ConnectionRequest, error) {
	updated, err := s.transition(ctx, requestID, models.StatusApproved, adminNotes)
	if err != nil {
		return nil, err
	}

	s.notifyParticipants(ctx, updated, models.ActivityConnectionApproved, models.ActivityStudentAssigned)

	return updated, nil
}

// RejectConnectionRequest transitions a pending request to rejected, stamps
// rejected_at, and records the reason in admin_notes. Admin-only.
func (s *ConnectionService) RejectConnectionRequest(ctx context.Context, requestID int64, reason string) (*models.ConnectionRequest, error) {
	updated, err := s.transition(ctx, requestID, models.StatusRejected, reason)
	if err != nil {
		return nil, err
	}

	if student, lookupErr := s.userRepo.GetByID(ctx, updated.StudentID); lookupErr == nil {
		s.logActivity(ctx, student.Email, models.ActivityConnectionRejected,
			fmt.Sprintf("Connection request rejected: %s", reason))
	}

	return updated, nil
}

// transition performs the shared conditional pending->terminal update and maps
// a missed update to the right error.
func (s *ConnectionService) transition(ctx context.Context, requestID int64, target models.RequestStatus, adminNotes string) (*models.ConnectionRequest, error) {
	updated, err := s.requestRepo.UpdateStatusIfPending(ctx, requestID, target, adminNotes)
	if err == nil {
		return updated, nil
	}

	if errors.Is(err, repositories.ErrNoPendingRequest) {
		// Distinguish "no such request" from "request exists but is terminal".
		if _, lookupErr := s.requestRepo.GetByID(ctx, requestID); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, apperrors.ErrInvalidTransition
	}

	return nil, err
}

// ListPending returns all pending requests for administrative review
func (s *ConnectionService) ListPending(ctx context.Context) ([]*models.ConnectionRequest, error) {
	requests, err := s.requestRepo.GetByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("error listing pending requests: %w", err)
	}

	if requests == nil {
		requests = []*models.ConnectionRequest{}
	}

	return requests, nil
}

// ListAll returns a page of requests plus the total count
func (s *ConnectionService) ListAll(ctx context.Context, offset uint64, limit int) ([]*models.ConnectionRequest, int64, error) {
	requests, err := s.requestRepo.GetAll(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing requests: %w", err)
	}

	total, err := s.requestRepo.CountAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting requests: %w", err)
	}

	if requests == nil {
		requests = []*models.ConnectionRequest{}
	}

	return requests, total, nil
}

// GetConnectionStats returns aggregate request counts by status
func (s *ConnectionService) GetConnectionStats(ctx context.Context) (*models.ConnectionStats, error) {
	stats, err := s.requestRepo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("error aggregating connection stats: %w", err)
	}
	return stats, nil
}

// notifyParticipants writes activity entries for both sides of an approval
func (s *ConnectionService) notifyParticipants(ctx context.Context, request *models.ConnectionRequest, studentActivity, counselorActivity string) {
	if student, err := s.userRepo.GetByID(ctx, request.StudentID); err == nil {
		s.logActivity(ctx, student.Email, studentActivity, "Connection request approved")

		if counselor, err := s.counselorRepo.GetByID(ctx, request.RequestedCounselorID); err == nil {
			s.logActivity(ctx, counselor.Email, counselorActivity,
				fmt.Sprintf("New student assigned: %s %s", student.FirstName, student.LastName))
		}
	}
}

// logActivity appends an activity entry. Failures are logged and swallowed;
// the activity feed must never fail a connection operation.
func (s *ConnectionService) logActivity(ctx context.Context, userEmail, activityType, description string) {
	entry := &models.ActivityEntry{
		UserEmail:    userEmail,
		ActivityType: activityType,
		Description:  description,
	}

	if err := s.activityRepo.Insert(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("userEmail", userEmail).Str("activityType", activityType).Msg("Failed to record activity")
	}
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evrim/counselbridge/internal/app/models"
	"github.com/evrim/counselbridge/internal/pkg/apperrors"
	"github.com/evrim/counselbridge/internal/pkg/dberrors"
)

// PendingUniqueConstraint is the partial unique index that guarantees at most one
// pending request per student. Insert races surface as violations of this
// constraint instead of silently creating duplicates.
const PendingUniqueConstraint = "uq_connection_requests_student_pending"

// ErrNoPendingRequest is returned by conditional status updates when the target
// row either does not exist or is no longer pending.
var ErrNoPendingRequest = errors.New("no pending connection request with that id")

// IConnectionRequestRepository defines the interface for connection request persistence
type IConnectionRequestRepository interface {
	Insert(ctx context.Context, request *models.ConnectionRequest) error
	GetByID(ctx context.Context, id int64) (*models.ConnectionRequest, error)
	GetByStudentID(ctx context.Context, studentID int64) ([]*models.ConnectionRequest, error)
	GetPendingByStudentID(ctx context.Context, studentID int64) (*models.ConnectionRequest, error)
	GetByStatus(ctx context.Context, status models.RequestStatus) ([]*models.ConnectionRequest, error)
	GetAll(ctx context.Context, offset uint64, limit int) ([]*models.ConnectionRequest, error)
	CountAll(ctx context.Context) (int64, error)
	GetStats(ctx context.Context) (*models.ConnectionStats, error)
	UpdateStatusIfPending(ctx context.Context, id int64, newStatus models.RequestStatus, adminNotes string) (*models.ConnectionRequest, error)
}

// ConnectionRequestRepository handles database operations for connection requests
type ConnectionRequestRepository struct {
	db *pgxpool.Pool
}

// NewConnectionRequestRepository creates a new connection request repository
func NewConnectionRequestRepository(db *pgxpool.Pool) *ConnectionRequestRepository {
	return &ConnectionRequestRepository{
		db: db,
	}
}

const requestColumns = `id, student_id, requested_counselor_id, status, request_reason,
	requested_at, approved_at, rejected_at, admin_notes, created_at, updated_at`

func scanRequest(row interface{ Scan(dest ...any) error }) (*models.ConnectionRequest, error) {
	var req models.ConnectionRequest
	err := row.Scan(
		&req.ID, &req.StudentID, &req.RequestedCounselorID, &req.Status, &req.RequestReason,
		&req.RequestedAt, &req.ApprovedAt, &req.RejectedAt, &req.AdminNotes,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Insert persists a new request. The partial unique index turns a lost
// check-then-act race into ErrDuplicatePendingRequest instead of a second
// pending row.
func (r *ConnectionRequestRepository) Insert(ctx context.Context, request *models.ConnectionRequest) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO connection_requests (student_id, requested_counselor_id, status, request_reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, requested_at, created_at, updated_at`,
		request.StudentID, request.RequestedCounselorID, request.Status, request.RequestReason).
		Scan(&request.ID, &request.RequestedAt, &request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, PendingUniqueConstraint) {
			return apperrors.ErrDuplicatePendingRequest
		}
		return fmt.Errorf("error creating connection request: %w", err)
	}

	return nil
}

// GetByID retrieves a connection request by ID
func (r *ConnectionRequestRepository) GetByID(ctx context.Context, id int64) (*models.ConnectionRequest, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM connection_requests
		WHERE id = $1`, id)

	request, err := scanRequest(row)
	if err != nil {
		if dberrors.IsNotFound(err) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("error retrieving connection request: %w", err)
	}

	return request, nil
}

// GetByStudentID retrieves all requests for a student, most recent first
func (r *ConnectionRequestRepository) GetByStudentID(ctx context.Context, studentID int64) ([]*models.ConnectionRequest, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+requestColumns+`
		FROM connection_requests
		WHERE student_id = $1
		ORDER BY requested_at DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("error listing student requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// GetPendingByStudentID retrieves the student's pending request, if any.
// Returns (nil, nil) when the student has no pending request.
func (r *ConnectionRequestRepository) GetPendingByStudentID(ctx context.Context, studentID int64) (*models.ConnectionRequest, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM connection_requests
		WHERE student_id = $1 AND status = $2`, studentID, models.StatusPending)

	request, err := scanRequest(row)
	if err != nil {
		if dberrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving pending request: %w", err)
	}

	return request, nil
}

// GetByStatus retrieves all requests with the given status, most recent first
func (r *ConnectionRequestRepository) GetByStatus(ctx context.Context, status models.RequestStatus) ([]*models.ConnectionRequest, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+requestColumns+`
		FROM connection_requests
		WHERE status = $1
		ORDER BY requested_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("error listing requests by status: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// GetAll retrieves a page of requests, most recent first
func (r *ConnectionRequestRepository) GetAll(ctx context.Context, offset uint64, limit int) ([]*models.ConnectionRequest, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+requestColumns+`
		FROM connection_requests
		ORDER BY requested_at DESC
		OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// CountAll returns the total number of connection requests
func (r *ConnectionRequestRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM connection_requests`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting requests: %w", err)
	}
	return count, nil
}

// GetStats aggregates request counts by status
func (r *ConnectionRequestRepository) GetStats(ctx context.Context) (*models.ConnectionStats, error) {
	rows, err := r.db.Query(ctx, `
		SELECT status, COUNT(*)
		FROM connection_requests
		GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("error aggregating request stats: %w", err)
	}
	defer rows.Close()

	stats := &models.ConnectionStats{}
	for rows.Next() {
		var status models.RequestStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		switch status {
		case models.StatusPending:
			stats.Pending = count
		case models.StatusApproved:
			stats.Approved = count
		case models.StatusRejected:
			stats.Rejected = count
		case models.StatusCancelled:
			stats.Cancelled = count
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// UpdateStatusIfPending transitions a request out of pending in a single
// conditional update, stamping approved_at or rejected_at as appropriate.
// Returns ErrNoPendingRequest when the row is missing or already terminal;
// the caller decides which of the two it was.
func (r *ConnectionRequestRepository) UpdateStatusIfPending(ctx context.Context, id int64, newStatus models.RequestStatus, adminNotes string) (*models.ConnectionRequest, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE connection_requests
		SET status = $2,
			approved_at = CASE WHEN $2::text = 'approved' THEN NOW() ELSE approved_at END,
			rejected_at = CASE WHEN $2::text = 'rejected' THEN NOW() ELSE rejected_at END,
			admin_notes = CASE WHEN $3::text <> '' THEN $3 ELSE admin_notes END,
			updated_at = NOW()
		WHERE id = $1 AND status = $4
		RETURNING `+requestColumns,
		id, newStatus, adminNotes, models.StatusPending)

	request, err := scanRequest(row)
	if err != nil {
		if dberrors.IsNotFound(err) {
			return nil, ErrNoPendingRequest
		}
		return nil, fmt.Errorf("error updating request status: %w", err)
	}

	return request, nil
}

func collectRequests(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*models.ConnectionRequest, error) {
	var requests []*models.ConnectionRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evrim/counselbridge/internal/app/models"
	"github.com/evrim/counselbridge/internal/pkg/apperrors"
	"github.com/evrim/counselbridge/internal/pkg/dberrors"
)

// ICounselorRepository defines the interface for counselor-related database operations.
// The connection workflow only ever reads counselor rows; Create exists for seeding.
type ICounselorRepository interface {
	Create(ctx context.Context, counselor *models.Counselor) error
	GetByID(ctx context.Context, id int64) (*models.Counselor, error)
	GetByEmail(ctx context.Context, email string) (*models.Counselor, error)
	GetAllAvailable(ctx context.Context) ([]*models.Counselor, error)
	Count(ctx context.Context) (int64, error)
}

// CounselorRepository handles database operations for counselor profiles
type CounselorRepository struct {
	db *pgxpool.Pool
}

// NewCounselorRepository creates a new counselor repository
func NewCounselorRepository(db *pgxpool.Pool) *CounselorRepository {
	return &CounselorRepository{
		db: db,
	}
}

const counselorColumns = `id, full_name, email, counselor_type, bio, years_experience,
	specializations, hourly_rate, currency, average_rating, total_reviews, is_available,
	created_at, updated_at`

func scanCounselor(row interface{ Scan(dest ...any) error }) (*models.Counselor, error) {
	var c models.Counselor
	err := row.Scan(
		&c.ID, &c.FullName, &c.Email, &c.CounselorType, &c.Bio, &c.YearsExperience,
		&c.Specializations, &c.HourlyRate, &c.Currency, &c.AverageRating, &c.TotalReviews,
		&c.IsAvailable, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new counselor profile
func (r *CounselorRepository) Create(ctx context.Context, counselor *models.Counselor) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO counselors (full_name, email, counselor_type, bio, years_experience,
			specializations, hourly_rate, currency, average_rating, total_reviews, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		counselor.FullName, counselor.Email, counselor.CounselorType, counselor.Bio,
		counselor.YearsExperience, counselor.Specializations, counselor.HourlyRate,
		counselor.Currency, counselor.AverageRating, counselor.TotalReviews, counselor.IsAvailable).
		Scan(&counselor.ID, &counselor.CreatedAt, &counselor.UpdatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "counselors_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error creating counselor: %w", err)
	}

	return nil
}

// GetByID retrieves a counselor by ID
func (r *CounselorRepository) GetByID(ctx context.Context, id int64) (*models.Counselor, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+counselorColumns+`
		FROM counselors
		WHERE id = $1`, id)

	counselor, err := scanCounselor(row)
	if err != nil {
		if dberrors.IsNotFound(err) {
			return nil, apperrors.ErrCounselorNotFound
		}
		return nil, fmt.Errorf("error retrieving counselor: %w", err)
	}

	return counselor, nil
}

// GetByEmail retrieves a counselor by email
func (r *CounselorRepository) GetByEmail(ctx context.Context, email string) (*models.Counselor, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+counselorColumns+`
		FROM counselors
		WHERE email = $1`, email)

	counselor, err := scanCounselor(row)
	if err != nil {
		if dberrors.IsNotFound(err) {
			return nil, apperrors.ErrCounselorNotFound
		}
		return nil, fmt.Errorf("error retrieving counselor: %w", err)
	}

	return counselor, nil
}

// GetAllAvailable retrieves available counselors ordered by rating, best first
func (r *CounselorRepository) GetAllAvailable(ctx context.Context) ([]*models.Counselor, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+counselorColumns+`
		FROM counselors
		WHERE is_available = true
		ORDER BY average_rating DESC, total_reviews DESC`)
	if err != nil {
		return nil, fmt.Errorf("error listing counselors: %w", err)
	}
	defer rows.Close()

	var counselors []*models.Counselor
	for rows.Next() {
		counselor, err := scanCounselor(rows)
		if err != nil {
			return nil, err
		}
		counselors = append(counselors, counselor)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counselors, nil
}

// Count returns the total number of counselor profiles
func (r *CounselorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM counselors`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting counselors: %w", err)
	}
	return count, nil
}

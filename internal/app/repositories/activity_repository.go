package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evrim/counselbridge/internal/app/models"
)

// IActivityRepository defines the interface for activity log writes
type IActivityRepository interface {
	Insert(ctx context.Context, entry *models.ActivityEntry) error
	GetByUserEmail(ctx context.Context, userEmail string, limit int) ([]*models.ActivityEntry, error)
}

// ActivityRepository handles database operations for the activity log
type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{
		db: db,
	}
}

// Insert appends an activity entry
func (r *ActivityRepository) Insert(ctx context.Context, entry *models.ActivityEntry) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO activity_log (user_email, activity_type, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		entry.UserEmail, entry.ActivityType, entry.Description).
		Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("error inserting activity entry: %w", err)
	}

	return nil
}

// GetByUserEmail retrieves the most recent activity for a user
func (r *ActivityRepository) GetByUserEmail(ctx context.Context, userEmail string, limit int) ([]*models.ActivityEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_email, activity_type, description, created_at
		FROM activity_log
		WHERE user_email = $1
		ORDER BY created_at DESC
		LIMIT $2`, userEmail, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing activity: %w", err)
	}
	defer rows.Close()

	var entries []*models.ActivityEntry
	for rows.Next() {
		var entry models.ActivityEntry
		if err := rows.Scan(&entry.ID, &entry.UserEmail, &entry.ActivityType, &entry.Description, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

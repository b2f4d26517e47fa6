package models

import (
	"time"
)

// Counselor defines the counselor profile model based on the 'counselors' table.
// Counselor profiles live in their own table, separate from users; the connection
// workflow only ever reads them.
type Counselor struct {
	ID              int64     `json:"id" db:"id"`
	FullName        string    `json:"fullName" db:"full_name"`
	Email           string    `json:"email" db:"email"`
	CounselorType   string    `json:"counselorType" db:"counselor_type"`
	Bio             string    `json:"bio,omitempty" db:"bio"`
	YearsExperience int       `json:"yearsExperience" db:"years_experience"`
	Specializations string    `json:"specializations,omitempty" db:"specializations"`
	HourlyRate      float64   `json:"hourlyRate" db:"hourly_rate"`
	Currency        string    `json:"currency" db:"currency"`
	AverageRating   float64   `json:"averageRating" db:"average_rating"`
	TotalReviews    int       `json:"totalReviews" db:"total_reviews"`
	IsAvailable     bool      `json:"isAvailable" db:"is_available"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

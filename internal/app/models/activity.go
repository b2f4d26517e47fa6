package models

import (
	"time"
)

// ActivityEntry defines a row in the 'activity_log' table. Entries are written
// best-effort after connection mutations for dashboard feeds.
type ActivityEntry struct {
	ID           int64     `json:"id" db:"id"`
	UserEmail    string    `json:"userEmail" db:"user_email"`
	ActivityType string    `json:"activityType" db:"activity_type"`
	Description  string    `json:"description" db:"description"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Activity types recorded by the connection workflow
const (
	ActivityConnectionRequested = "connection_request"
	ActivityConnectionCancelled = "connection_cancelled"
	ActivityConnectionApproved  = "connection_approved"
	ActivityConnectionRejected  = "connection_rejected"
	ActivityStudentAssigned     = "student_assigned"
)

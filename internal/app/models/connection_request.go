package models

import (
	"time"
)

// ConnectionRequest defines a student's request to be connected with a counselor,
// based on the 'connection_requests' table. Requests are never deleted; a status
// change models the end of their life.
type ConnectionRequest struct {
	ID                   int64         `json:"id" db:"id"`
	StudentID            int64         `json:"studentId" db:"student_id"`
	RequestedCounselorID int64         `json:"requestedCounselorId" db:"requested_counselor_id"`
	Status               RequestStatus `json:"status" db:"status" example:"pending"`
	RequestReason        string        `json:"requestReason,omitempty" db:"request_reason"`
	RequestedAt          time.Time     `json:"requestedAt" db:"requested_at"`
	ApprovedAt           *time.Time    `json:"approvedAt,omitempty" db:"approved_at"`
	RejectedAt           *time.Time    `json:"rejectedAt,omitempty" db:"rejected_at"`
	AdminNotes           string        `json:"adminNotes,omitempty" db:"admin_notes"`
	CreatedAt            time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time     `json:"updatedAt" db:"updated_at"`
}

// ConnectionStats aggregates request counts by status for admin dashboards
type ConnectionStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	Cancelled int64 `json:"cancelled"`
}

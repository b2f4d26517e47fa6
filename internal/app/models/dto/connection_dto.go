package dto

// CreateConnectionRequest is the payload a student sends to request a counselor.
// The student identity comes from the JWT, not the body.
type CreateConnectionRequest struct {
	CounselorEmail string `json:"counselorEmail" binding:"required,email"`
	Reason         string `json:"reason" binding:"max=2000"`
}

// RejectConnectionRequest carries the admin's rejection reason
type RejectConnectionRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}

// ApproveConnectionRequest carries optional admin notes for an approval
type ApproveConnectionRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// PlatformStats aggregates headline counts for the public dashboard
type PlatformStats struct {
	Students   int64 `json:"students"`
	Counselors int64 `json:"counselors"`
	Requests   int64 `json:"requests"`
}

package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent   RoleType = "student"
	RoleCounselor RoleType = "counselor"
	RoleAdmin     RoleType = "admin"
)

// RequestStatus defines the lifecycle state of a connection request
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

// IsValid reports whether the status is one of the four known values
func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions
func (s RequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// CanTransitionTo reports whether a transition from s to target is allowed.
// The only legal transitions are pending -> approved/rejected/cancelled.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	return s == StatusPending && target.IsValid() && target != StatusPending
}

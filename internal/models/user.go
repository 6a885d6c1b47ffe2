package models

import "time"

// Roles
const (
	RoleStudent  = "student"
	RoleStaff    = "staff"
	RoleSecurity = "security"
	RoleAdmin    = "admin"
)

// Account statuses
const (
	UserPending  = "pending"
	UserActive   = "active"
	UserInactive = "inactive"
)

// User represents a resident or a member of the hall staff
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not serialized
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsActiveStudent reports whether the user takes part in monthly billing
func (u *User) IsActiveStudent() bool {
	return u.Role == RoleStudent && u.Status == UserActive
}

// ValidRole reports whether role is known
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleStaff, RoleSecurity, RoleAdmin:
		return true
	}
	return false
}

// RoleScheduler identifies the external job trigger authenticated by shared secret
const RoleScheduler = "scheduler"

// Identity is the authenticated caller of an operation
type Identity struct {
	UserID string
	Role   string
}

// Is reports whether the caller holds one of roles
func (i Identity) Is(roles ...string) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

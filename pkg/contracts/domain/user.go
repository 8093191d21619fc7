package domain

import (
	"time"
)

// Role is a user's access role within the results system.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleHOD         Role = "hod"
	RoleExamOfficer Role = "exam_officer"
	RoleLecturer    Role = "lecturer"
)

// AllowedRoles is the closed set of roles accepted at registration.
var AllowedRoles = map[Role]bool{
	RoleAdmin:       true,
	RoleHOD:         true,
	RoleExamOfficer: true,
	RoleLecturer:    true,
}

// User is an authenticated operator of the system (lecturer, exam officer,
// head of department or admin). The password hash never leaves the store.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username" validate:"required,min=3"`
	Email        string    `json:"email,omitempty" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role" validate:"required,oneof=admin hod exam_officer lecturer"`
	Department   string    `json:"department,omitempty" db:"department"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// CanManageResults reports whether the role may update or delete score rows
// it did not upload itself.
func (r Role) CanManageResults() bool {
	return r == RoleAdmin || r == RoleHOD || r == RoleExamOfficer
}

// ActionLog records a significant mutation for audit purposes.
type ActionLog struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Action     string    `json:"action" db:"action"`
	Resource   string    `json:"resource" db:"resource"`
	ResourceID int64     `json:"resource_id,omitempty" db:"resource_id"`
	Details    string    `json:"details,omitempty" db:"details"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

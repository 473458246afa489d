package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a portal account. PasswordHash is a bcrypt hash and never
// leaves the service layer.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Role         Role
	PasswordHash string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// IsDeleted returns true if the user has been soft-deleted.
func (u *User) IsDeleted() bool { return u.DeletedAt != nil }

// IsAdmin returns true for admin accounts.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

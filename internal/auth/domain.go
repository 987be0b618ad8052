package auth

import "time"

// Role labels an account's privilege level.
type Role string

const (
	// RoleAdmin grants access to the back-office and full catalog sight.
	RoleAdmin Role = "admin"
	// RoleUser is the default storefront account role.
	RoleUser Role = "user"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

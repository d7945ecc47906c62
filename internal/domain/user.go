// Package domain contains the core entities of the auth service.
package domain

import "time"

// Role is the authorization level of a user.
type Role int

// User roles. RoleUser is the zero value so an omitted role means an ordinary user.
const (
	RoleUser  Role = 0
	RoleAdmin Role = 1
)

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// HasPermission reports whether r grants at least the access of minRole.
func (r Role) HasPermission(minRole Role) bool {
	return r >= minRole
}

// String returns a human readable role name.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

// User is a registered principal.
// PasswordHash and Answer are never serialized.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	PasswordHash string    `json:"-"`
	Answer       string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

package domain

import "time"

// Role enumerates caller roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
	RoleUser  Role = "user"
)

// ValidRole reports whether the value is a known role.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleAgent || r == RoleUser
}

// User is an authenticated account. Email is stored lowercased.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the authenticated caller's view passed into the core:
// everything authorization and filtering decisions key on.
type Identity struct {
	ID       string
	Username string
	Role     Role
}

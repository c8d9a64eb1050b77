package domain

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleAdmin grants access to catalog management and order administration.
	RoleAdmin Role = "admin"
	// RoleCustomer grants standard shopper access.
	RoleCustomer Role = "customer"
)

// User represents an authenticated account in the store.
type User struct {
	Record
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	Name         string `json:"name"`
	Role         Role   `json:"role"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Sanitized returns a copy safe to hand to clients, with the password hash removed.
func (u *User) Sanitized() *User {
	clean := *u
	clean.PasswordHash = ""
	return &clean
}

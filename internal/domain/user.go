package domain

import "time"

// UserRole enumerates account roles.
type UserRole string

const (
	RoleDonor UserRole = "donor"
	RoleAdmin UserRole = "admin"
	RoleAgent UserRole = "agent"
)

// ValidRole reports whether the role is one of the known roles.
func ValidRole(role UserRole) bool {
	return role == RoleDonor || role == RoleAdmin || role == RoleAgent
}

// User is the domain model for donors, admins and collection agents.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        *string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

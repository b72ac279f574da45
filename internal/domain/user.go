package domain

import "time"

// Role enumerates account roles on the platform.
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleOfficer Role = "OFFICER"
	RoleAdmin   Role = "ADMIN"
)

// User models any account: citizens, ward officers and administrators,
// discriminated by Role. Officer accounts carry ward placement columns
// joined in from their profile row.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	WardID       *string
	Designation  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOfficerOf reports whether the user is an active officer placed in wardID.
func (u *User) IsOfficerOf(wardID string) bool {
	return u.Role == RoleOfficer && u.WardID != nil && *u.WardID == wardID
}

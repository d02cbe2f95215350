package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
)

// User represents a registered account of the portfolio site.
type User struct {
	ID              int64
	Name            string
	Email           string
	PasswordHash    string
	Role            Role
	Bio             string
	DateOfBirth     *time.Time
	IsActive        bool
	IsEmailVerified bool
	LoginCount      int
	LastLogin       *time.Time
	ResetTokenHash  string
	ResetExpiresAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProfileUpdate carries the user-editable subset of profile fields.
// Nil pointers mean "leave unchanged".
type ProfileUpdate struct {
	Name        *string
	Bio         *string
	DateOfBirth *time.Time
}

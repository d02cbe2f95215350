package session

import "time"

// User is the client-side view of an account, as kept in the session snapshot.
type User struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Bio             string `json:"bio,omitempty"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	IsActive        bool   `json:"isActive"`
	IsEmailVerified bool   `json:"isEmailVerified"`
	LoginCount      int    `json:"loginCount"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
	IsOwner         bool   `json:"isOwner"`
}

// Activity is one logged user action, kept newest first.
type Activity struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	UserID      string    `json:"userId"`
}

// ProfileUpdate is the user-editable subset of profile fields.
// Nil pointers mean "leave unchanged". Dates travel as YYYY-MM-DD strings.
type ProfileUpdate struct {
	Name        *string
	Bio         *string
	DateOfBirth *string
}

// LocalAccount is a locally registered account held in the fallback registry.
// The password field stores a bcrypt hash, never plaintext.
type LocalAccount struct {
	User
	Password string `json:"password"`
}

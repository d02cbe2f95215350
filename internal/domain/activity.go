package domain

import "time"

type ActivityAction string

const (
	ActionLogin         ActivityAction = "login"
	ActionSignup        ActivityAction = "signup"
	ActionLike          ActivityAction = "like"
	ActionUnlike        ActivityAction = "unlike"
	ActionComment       ActivityAction = "comment"
	ActionViewProject   ActivityAction = "view_project"
	ActionViewProfile   ActivityAction = "view_profile"
	ActionUpdateProfile ActivityAction = "update_profile"
)

type TargetType string

const (
	TargetProject TargetType = "project"
	TargetUser    TargetType = "user"
	TargetComment TargetType = "comment"
)

// Activity is one audited user action on the server side.
type Activity struct {
	ID         int64
	UserID     int64
	Action     ActivityAction
	TargetType TargetType
	TargetID   *int64
	Metadata   map[string]any
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
	UserName   string
	UserEmail  string
}

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	UserID     *int64
	Action     ActivityAction
	TargetType TargetType
	Since      *time.Time
	Until      *time.Time
}

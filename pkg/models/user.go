package models

import "time"

// UserRole is the authorization role of a user.
type UserRole string

const (
	UserRoleOwner  UserRole = "global:owner"
	UserRoleMember UserRole = "global:member"
)

// User is an application identity. Only the fields the provisioner touches
// are modeled here.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email" validate:"required,email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Role      UserRole  `json:"role"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectType distinguishes personal projects from shared ones.
type ProjectType string

const (
	ProjectTypePersonal ProjectType = "personal"
	ProjectTypeTeam     ProjectType = "team"
)

// Project is an ownership container for workflows.
type Project struct {
	ID        string      `json:"id"`
	Name      string      `json:"name" validate:"required,min=1"`
	Type      ProjectType `json:"type"`
	OwnerID   string      `json:"owner_id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

package domain

import (
	"slices"
	"time"
)

// User represents a team member of the business.
type User struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              *string    `json:"phone,omitempty"`
	Role               Role       `json:"role"`
	AssignedProjectIDs []int64    `json:"assigned_project_ids"`
	AssignedCrewIDs    []string   `json:"assigned_crew_ids"`
	Active             bool       `json:"active"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
}

// IsAssignedToProject reports whether the project is in the user's assignment list.
func (u *User) IsAssignedToProject(projectID int64) bool {
	return slices.Contains(u.AssignedProjectIDs, projectID)
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	c := *u
	c.AssignedProjectIDs = slices.Clone(u.AssignedProjectIDs)
	c.AssignedCrewIDs = slices.Clone(u.AssignedCrewIDs)
	if c.AssignedProjectIDs == nil {
		c.AssignedProjectIDs = make([]int64, 0)
	}
	if c.AssignedCrewIDs == nil {
		c.AssignedCrewIDs = make([]string, 0)
	}
	if u.Phone != nil {
		phone := *u.Phone
		c.Phone = &phone
	}
	if u.LastLoginAt != nil {
		at := *u.LastLoginAt
		c.LastLoginAt = &at
	}
	return &c
}

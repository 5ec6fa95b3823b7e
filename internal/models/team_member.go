package models

import (
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

var Roles = []Role{RoleAdmin, RoleEditor, RoleViewer}

const (
	MembershipPending = "pending"
	MembershipActive  = "active"
)

// TeamMember represents a user's membership and role within a project.
// Invitations are memberships in the pending state until accepted.
type TeamMember struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ProjectID uint       `gorm:"uniqueIndex:idx_team_project_user;uniqueIndex:idx_team_project_email;not null" json:"projectId"`
	UserID    *uint      `gorm:"uniqueIndex:idx_team_project_user" json:"userId"`
	Email     *string    `gorm:"size:255;uniqueIndex:idx_team_project_email" json:"email,omitempty"`
	Role      Role       `gorm:"size:20;not null" json:"role"`
	Status    string     `gorm:"size:20;not null" json:"status"` // pending, active
	InvitedBy *uint      `json:"invitedBy,omitempty"`
	InvitedAt *time.Time `json:"invitedAt,omitempty"`
	JoinedAt  *time.Time `json:"joinedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (TeamMember) TableName() string { return "team_members" }

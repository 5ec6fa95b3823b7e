package models

import (
	"time"
)

type ProjectStatus string

const (
	ProjectDevelopment    ProjectStatus = "Development"
	ProjectPreProduction  ProjectStatus = "Pre-production"
	ProjectProduction     ProjectStatus = "Production"
	ProjectPostProduction ProjectStatus = "Post-production"
	ProjectCompleted      ProjectStatus = "Completed"
)

// ProjectStatuses lists the project lifecycle in order.
var ProjectStatuses = []ProjectStatus{
	ProjectDevelopment,
	ProjectPreProduction,
	ProjectProduction,
	ProjectPostProduction,
	ProjectCompleted,
}

// DefaultPhaseNames are the phases every new project starts with.
var DefaultPhaseNames = []string{"Development", "Pre-production", "Production", "Post-production"}

// Project represents a video production
type Project struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"size:200;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ProjectStatus `gorm:"size:30;not null;index" json:"status"`
	DueDate     string        `gorm:"size:10;not null;index" json:"dueDate"` // YYYY-MM-DD
	OwnerID     uint          `gorm:"not null" json:"ownerId"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Computed on read from the phases and team_members tables.
	Phases          []Phase `gorm:"-" json:"phases"`
	TeamMembers     []uint  `gorm:"-" json:"teamMembers"`
	WorkingDaysLeft *int    `gorm:"-" json:"workingDaysLeft,omitempty"`
}

func (Project) TableName() string { return "projects" }

package models

import "time"

// WorkStatus is the lifecycle shared by phases and tasks.
type WorkStatus string

const (
	StatusPending    WorkStatus = "pending"
	StatusInProgress WorkStatus = "in_progress"
	StatusCompleted  WorkStatus = "completed"
)

var WorkStatuses = []WorkStatus{StatusPending, StatusInProgress, StatusCompleted}

// Phase is a named stage of a project with its own status and progress.
type Phase struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ProjectID uint       `gorm:"not null;index" json:"projectId"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	Status    WorkStatus `gorm:"size:20;not null" json:"status"`
	Progress  int        `gorm:"not null" json:"progress"` // 0-100
	Position  int        `gorm:"not null" json:"position"`
	StartDate string     `gorm:"size:10" json:"startDate,omitempty"`
	EndDate   string     `gorm:"size:10" json:"endDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (Phase) TableName() string { return "phases" }

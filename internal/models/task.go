package models

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Task is the smallest unit of work, scoped to one phase.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PhaseID     uint       `gorm:"not null;index" json:"phaseId"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      WorkStatus `gorm:"size:20;not null;index" json:"status"`
	Priority    Priority   `gorm:"size:10;not null" json:"priority"`
	DueDate     string     `gorm:"size:10;not null;index" json:"dueDate"`
	AssignedTo  *uint      `json:"assignedTo"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Task) TableName() string { return "tasks" }

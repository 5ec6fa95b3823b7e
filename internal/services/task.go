package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangang/framewise/backend/internal/config"
	"github.com/huangang/framewise/backend/internal/models"
	"github.com/huangang/framewise/backend/internal/store"
	"gorm.io/gorm"
)

type TaskService struct {
	db       *gorm.DB
	tasks    *store.Collection[models.Task]
	phases   *store.Collection[models.Phase]
	events   *EventHub
	workflow config.WorkflowConfig
}

func NewTaskService(d *Deps) *TaskService {
	return &TaskService{
		db:       d.DB,
		tasks:    store.New[models.Task](d.DB),
		phases:   store.New[models.Phase](d.DB),
		events:   d.Events,
		workflow: d.Workflow,
	}
}

type TaskListRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Priority string `form:"priority" binding:"omitempty,oneof=low medium high"`
}

type CreateTaskRequest struct {
	PhaseID     uint            `json:"phaseId" binding:"required"`
	Title       string          `json:"title" binding:"required,notblank,max=200"`
	Description string          `json:"description"`
	DueDate     string          `json:"dueDate" binding:"required,isodate"`
	Priority    models.Priority `json:"priority" binding:"required,oneof=low medium high"`
	AssignedTo  *uint           `json:"assignedTo"`
}

type UpdateTaskRequest struct {
	Title       *string            `json:"title" binding:"omitempty,notblank,max=200"`
	Description *string            `json:"description"`
	Status      *models.WorkStatus `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Priority    *models.Priority   `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *string            `json:"dueDate" binding:"omitempty,isodate"`
	AssignedTo  NullableID         `json:"assignedTo"`
}

// NullableID is an optional id in an update body. Set reports whether the
// field was sent at all; an explicit null leaves Value nil and clears the id.
type NullableID struct {
	Set   bool
	Value *uint
}

func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v uint
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (s *TaskService) ListByPhase(ctx context.Context, phaseID uint, req *TaskListRequest) ([]models.Task, error) {
	scopes := []store.Scope{store.Eq("phase_id", phaseID)}
	if req != nil {
		if req.Status != "" {
			scopes = append(scopes, store.Eq("status", req.Status))
		}
		if req.Priority != "" {
			scopes = append(scopes, store.Eq("priority", req.Priority))
		}
	}
	return s.tasks.List(ctx, scopes...)
}

func (s *TaskService) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "Task not found")
	}
	return task, nil
}

// Create inserts the task while holding a lock on its phase, so a concurrent
// phase delete either sees the task and removes it or runs first and the
// create fails on the missing phase.
func (s *TaskService) Create(ctx context.Context, req *CreateTaskRequest) (*models.Task, error) {
	dueDate, err := normalizeDate("dueDate", req.DueDate)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		PhaseID:     req.PhaseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      models.StatusPending,
		Priority:    req.Priority,
		DueDate:     dueDate,
		AssignedTo:  req.AssignedTo,
	}
	var phase *models.Phase
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if phase, err = lockParent(ctx, tx, s.phases, req.PhaseID, "phaseId", "phase"); err != nil {
			return err
		}
		return s.tasks.WithTx(tx).Create(ctx, &task)
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.events.emit("task", ActionCreated, task.ID, phase.ProjectID)
	return &task, nil
}

func (s *TaskService) Update(ctx context.Context, id uint, req *UpdateTaskRequest) (*models.Task, error) {
	task, err := s.tasks.Update(ctx, id, func(t *models.Task) error {
		if req.Title != nil {
			t.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Status != nil {
			if err := checkTransition(s.workflow, models.WorkStatuses, t.Status, *req.Status); err != nil {
				return err
			}
			t.Status = *req.Status
		}
		if req.Priority != nil {
			t.Priority = *req.Priority
		}
		if req.DueDate != nil {
			d, err := normalizeDate("dueDate", *req.DueDate)
			if err != nil {
				return err
			}
			t.DueDate = d
		}
		if req.AssignedTo.Set {
			t.AssignedTo = req.AssignedTo.Value
		}
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err, "Task not found")
	}

	s.events.emit("task", ActionUpdated, task.ID, s.projectOf(ctx, task.PhaseID))
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id uint) (*models.Task, error) {
	task, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "Task not found")
	}

	s.events.emit("task", ActionDeleted, task.ID, s.projectOf(ctx, task.PhaseID))
	return task, nil
}

// projectOf resolves the owning project for event payloads; 0 when unknown.
func (s *TaskService) projectOf(ctx context.Context, phaseID uint) uint {
	if s.events == nil {
		return 0
	}
	phase, err := s.phases.Get(ctx, phaseID)
	if err != nil {
		return 0
	}
	return phase.ProjectID
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangang/framewise/backend/internal/config"
	"github.com/huangang/framewise/backend/internal/models"
	"github.com/huangang/framewise/backend/internal/store"
	"gorm.io/gorm"
)

type PhaseService struct {
	db       *gorm.DB
	phases   *store.Collection[models.Phase]
	projects *store.Collection[models.Project]
	events   *EventHub
	workflow config.WorkflowConfig
}

func NewPhaseService(d *Deps) *PhaseService {
	return &PhaseService{
		db:       d.DB,
		phases:   store.New[models.Phase](d.DB),
		projects: store.New[models.Project](d.DB),
		events:   d.Events,
		workflow: d.Workflow,
	}
}

type CreatePhaseRequest struct {
	ProjectID uint              `json:"projectId" binding:"required"`
	Name      string            `json:"name" binding:"required,notblank,max=100"`
	Status    models.WorkStatus `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Progress  int               `json:"progress" binding:"min=0,max=100"`
	StartDate string            `json:"startDate" binding:"omitempty,isodate"`
	EndDate   string            `json:"endDate" binding:"omitempty,isodate"`
}

type UpdatePhaseRequest struct {
	Name      *string            `json:"name" binding:"omitempty,notblank,max=100"`
	Status    *models.WorkStatus `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Progress  *int               `json:"progress" binding:"omitempty,min=0,max=100"`
	StartDate *string            `json:"startDate" binding:"omitempty,isodate"`
	EndDate   *string            `json:"endDate" binding:"omitempty,isodate"`
}

// ListByProject returns the project's phases in lifecycle order. An unknown
// project simply has no phases.
func (s *PhaseService) ListByProject(ctx context.Context, projectID uint) ([]models.Phase, error) {
	return s.phases.List(ctx, store.Eq("project_id", projectID), store.OrderBy("position"))
}

func (s *PhaseService) GetByID(ctx context.Context, id uint) (*models.Phase, error) {
	phase, err := s.phases.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "Phase not found")
	}
	return phase, nil
}

// Create appends a phase after the project's existing ones.
func (s *PhaseService) Create(ctx context.Context, req *CreatePhaseRequest) (*models.Phase, error) {
	var err error
	phase := models.Phase{
		ProjectID: req.ProjectID,
		Name:      strings.TrimSpace(req.Name),
		Status:    req.Status,
		Progress:  req.Progress,
	}
	if phase.Status == "" {
		phase.Status = models.StatusPending
	}
	if req.StartDate != "" {
		if phase.StartDate, err = normalizeDate("startDate", req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != "" {
		if phase.EndDate, err = normalizeDate("endDate", req.EndDate); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockParent(ctx, tx, s.projects, req.ProjectID, "projectId", "project"); err != nil {
			return err
		}
		phases := s.phases.WithTx(tx)
		n, err := phases.Count(ctx, store.Eq("project_id", req.ProjectID))
		if err != nil {
			return err
		}
		phase.Position = int(n)
		return phases.Create(ctx, &phase)
	})
	if err != nil {
		return nil, fmt.Errorf("create phase: %w", err)
	}

	s.events.emit("phase", ActionCreated, phase.ID, phase.ProjectID)
	return &phase, nil
}

func (s *PhaseService) Update(ctx context.Context, id uint, req *UpdatePhaseRequest) (*models.Phase, error) {
	phase, err := s.phases.Update(ctx, id, func(p *models.Phase) error {
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Status != nil {
			if err := checkTransition(s.workflow, models.WorkStatuses, p.Status, *req.Status); err != nil {
				return err
			}
			p.Status = *req.Status
		}
		if req.Progress != nil {
			p.Progress = *req.Progress
		}
		if req.StartDate != nil {
			d, err := normalizeDate("startDate", *req.StartDate)
			if err != nil {
				return err
			}
			p.StartDate = d
		}
		if req.EndDate != nil {
			d, err := normalizeDate("endDate", *req.EndDate)
			if err != nil {
				return err
			}
			p.EndDate = d
		}
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err, "Phase not found")
	}

	s.events.emit("phase", ActionUpdated, phase.ID, phase.ProjectID)
	return phase, nil
}

// Delete removes the phase and its tasks.
func (s *PhaseService) Delete(ctx context.Context, id uint) (*models.Phase, error) {
	var phase *models.Phase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		phases := s.phases.WithTx(tx)
		if _, err := phases.Lock(ctx, id); err != nil {
			return err
		}
		if err := tx.Where("phase_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		var err error
		phase, err = phases.Delete(ctx, id)
		return err
	})
	if err != nil {
		return nil, mapNotFound(err, "Phase not found")
	}

	s.events.emit("phase", ActionDeleted, phase.ID, phase.ProjectID)
	return phase, nil
}

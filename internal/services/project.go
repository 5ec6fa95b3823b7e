package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/huangang/framewise/backend/internal/config"
	"github.com/huangang/framewise/backend/internal/models"
	"github.com/huangang/framewise/backend/internal/storage"
	"github.com/huangang/framewise/backend/internal/store"
	"github.com/huangang/framewise/backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectService struct {
	db       *gorm.DB
	projects *store.Collection[models.Project]
	phases   *store.Collection[models.Phase]
	members  *store.Collection[models.TeamMember]
	blobs    storage.Provider
	events   *EventHub
	holidays *HolidayService
	workflow config.WorkflowConfig
}

func NewProjectService(d *Deps) *ProjectService {
	return &ProjectService{
		db:       d.DB,
		projects: store.New[models.Project](d.DB),
		phases:   store.New[models.Phase](d.DB),
		members:  store.New[models.TeamMember](d.DB),
		blobs:    d.Blobs,
		events:   d.Events,
		holidays: d.Holidays,
		workflow: d.Workflow,
	}
}

type ProjectListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=Development Pre-production Production Post-production Completed"`
}

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200"`
	Description string `json:"description" binding:"required,notblank"`
	DueDate     string `json:"dueDate" binding:"required,isodate"`
}

type UpdateProjectRequest struct {
	Title       *string               `json:"title" binding:"omitempty,notblank,max=200"`
	Description *string               `json:"description" binding:"omitempty,notblank"`
	DueDate     *string               `json:"dueDate" binding:"omitempty,isodate"`
	Status      *models.ProjectStatus `json:"status" binding:"omitempty,oneof=Development Pre-production Production Post-production Completed"`
}

// List returns projects in creation order with their phases and team.
func (s *ProjectService) List(ctx context.Context, req *ProjectListRequest) ([]models.Project, error) {
	var scopes []store.Scope
	if req != nil && req.Status != "" {
		scopes = append(scopes, store.Eq("status", req.Status))
	}

	projects, err := s.projects.List(ctx, scopes...)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetByID returns a project by ID
func (s *ProjectService) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "Project not found")
	}
	if err := s.hydrateOne(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Create stores the project together with its default phases and makes the
// creator an active admin of it.
func (s *ProjectService) Create(ctx context.Context, req *CreateProjectRequest, userID uint) (*models.Project, error) {
	dueDate, err := normalizeDate("dueDate", req.DueDate)
	if err != nil {
		return nil, err
	}

	project := models.Project{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Status:      models.ProjectDevelopment,
		DueDate:     dueDate,
		OwnerID:     userID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.projects.WithTx(tx).Create(ctx, &project); err != nil {
			return err
		}

		phases := store.New[models.Phase](tx)
		for i, name := range models.DefaultPhaseNames {
			status := models.StatusPending
			if i == 0 {
				status = models.StatusInProgress
			}
			phase := models.Phase{
				ProjectID: project.ID,
				Name:      name,
				Status:    status,
				Position:  i,
			}
			if err := phases.Create(ctx, &phase); err != nil {
				return err
			}
		}

		now := time.Now()
		owner := models.TeamMember{
			ProjectID: project.ID,
			UserID:    &userID,
			Role:      models.RoleAdmin,
			Status:    models.MembershipActive,
			JoinedAt:  &now,
		}
		return s.members.WithTx(tx).Create(ctx, &owner)
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.events.emit("project", ActionCreated, project.ID, project.ID)
	logger.Infof("[Project] Created project %d %q by user %d", project.ID, project.Title, userID)

	if err := s.hydrateOne(ctx, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Update applies the fields present in req and leaves the rest untouched.
func (s *ProjectService) Update(ctx context.Context, id uint, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.projects.Update(ctx, id, func(p *models.Project) error {
		if req.Title != nil {
			p.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			p.Description = strings.TrimSpace(*req.Description)
		}
		if req.DueDate != nil {
			d, err := normalizeDate("dueDate", *req.DueDate)
			if err != nil {
				return err
			}
			p.DueDate = d
		}
		if req.Status != nil {
			if err := checkTransition(s.workflow, models.ProjectStatuses, p.Status, *req.Status); err != nil {
				return err
			}
			p.Status = *req.Status
		}
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err, "Project not found")
	}

	s.events.emit("project", ActionUpdated, project.ID, project.ID)

	if err := s.hydrateOne(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project and everything hanging off it in one transaction.
// Stored media blobs are removed after commit; failures there are only logged.
func (s *ProjectService) Delete(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var filenames []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.projects.WithTx(tx).Lock(ctx, id); err != nil {
			return err
		}
		// phase rows are locked too so task inserts under them finish first
		var phaseIDs []uint
		if err := tx.Model(&models.Phase{}).Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("project_id = ?", id).Pluck("id", &phaseIDs).Error; err != nil {
			return err
		}
		if len(phaseIDs) > 0 {
			if err := tx.Where("phase_id IN ?", phaseIDs).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Phase{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.MediaAsset{}).Where("project_id = ?", id).Pluck("filename", &filenames).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.MediaAsset{}).Error; err != nil {
			return err
		}
		_, err := s.projects.WithTx(tx).Delete(ctx, id)
		return err
	})
	if err != nil {
		return nil, mapNotFound(err, "Project not found")
	}

	removeBlobs(ctx, s.blobs, filenames)
	s.events.emit("project", ActionDeleted, id, id)
	logger.Infof("[Project] Deleted project %d with %d phases and %d media files", id, len(project.Phases), len(filenames))

	return project, nil
}

func (s *ProjectService) hydrateOne(ctx context.Context, p *models.Project) error {
	list := []models.Project{*p}
	if err := s.hydrate(ctx, list); err != nil {
		return err
	}
	*p = list[0]
	return nil
}

// hydrate fills the computed read model: phases, active member user ids and
// working days until the due date.
func (s *ProjectService) hydrate(ctx context.Context, projects []models.Project) error {
	if len(projects) == 0 {
		return nil
	}

	ids := make([]uint, len(projects))
	for i := range projects {
		ids[i] = projects[i].ID
	}

	phases, err := s.phases.List(ctx, store.In("project_id", ids), store.OrderBy("position"))
	if err != nil {
		return err
	}
	members, err := s.members.List(ctx, store.In("project_id", ids), store.Eq("status", models.MembershipActive))
	if err != nil {
		return err
	}

	phasesBy := make(map[uint][]models.Phase)
	for _, ph := range phases {
		phasesBy[ph.ProjectID] = append(phasesBy[ph.ProjectID], ph)
	}
	membersBy := make(map[uint][]uint)
	for _, m := range members {
		if m.UserID != nil {
			membersBy[m.ProjectID] = append(membersBy[m.ProjectID], *m.UserID)
		}
	}

	now := today()
	for i := range projects {
		p := &projects[i]
		p.Phases = phasesBy[p.ID]
		if p.Phases == nil {
			p.Phases = []models.Phase{}
		}
		p.TeamMembers = membersBy[p.ID]
		if p.TeamMembers == nil {
			p.TeamMembers = []uint{}
		}
		if s.holidays != nil {
			if due, err := time.Parse("2006-01-02", p.DueDate); err == nil {
				left := s.holidays.WorkingDaysBetween(now, due)
				p.WorkingDaysLeft = &left
			}
		}
	}
	return nil
}

func removeBlobs(ctx context.Context, blobs storage.Provider, filenames []string) {
	if blobs == nil {
		return
	}
	for _, name := range filenames {
		if err := blobs.Delete(ctx, name); err != nil {
			logger.Warnf("[Media] Failed to remove blob %s: %v", name, err)
		}
	}
}

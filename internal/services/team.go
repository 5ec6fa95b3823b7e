package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangang/framewise/backend/internal/models"
	"github.com/huangang/framewise/backend/internal/store"
	"github.com/huangang/framewise/backend/pkg/logger"
	"github.com/huangang/framewise/backend/pkg/response"
	"gorm.io/gorm"
)

// TeamService manages project memberships. An invitation is a membership in
// the pending state; accepting it makes the member active.
type TeamService struct {
	db       *gorm.DB
	members  *store.Collection[models.TeamMember]
	projects *store.Collection[models.Project]
	events   *EventHub
	queue    NotificationQueue
}

func NewTeamService(d *Deps) *TeamService {
	return &TeamService{
		db:       d.DB,
		members:  store.New[models.TeamMember](d.DB),
		projects: store.New[models.Project](d.DB),
		events:   d.Events,
		queue:    d.Queue,
	}
}

type InviteRequest struct {
	ProjectID uint        `json:"projectId" binding:"required"`
	Email     string      `json:"email" binding:"required,email"`
	Role      models.Role `json:"role" binding:"required,oneof=admin editor viewer"`
	UserID    *uint       `json:"userId"`
}

type AcceptInviteRequest struct {
	UserID *uint `json:"userId"`
}

type UpdateRoleRequest struct {
	Role models.Role `json:"role" binding:"required,oneof=admin editor viewer"`
}

func (s *TeamService) ListByProject(ctx context.Context, projectID uint) ([]models.TeamMember, error) {
	return s.members.List(ctx, store.Eq("project_id", projectID))
}

func (s *TeamService) GetByID(ctx context.Context, id uint) (*models.TeamMember, error) {
	member, err := s.members.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "Team member not found")
	}
	return member, nil
}

// Invite records a pending membership and queues the invitation message.
func (s *TeamService) Invite(ctx context.Context, req *InviteRequest, invitedBy uint) (*models.TeamMember, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	now := time.Now()
	member := models.TeamMember{
		ProjectID: req.ProjectID,
		UserID:    req.UserID,
		Email:     &email,
		Role:      req.Role,
		Status:    models.MembershipPending,
		InvitedBy: &invitedBy,
		InvitedAt: &now,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockParent(ctx, tx, s.projects, req.ProjectID, "projectId", "project"); err != nil {
			return err
		}
		members := s.members.WithTx(tx)
		if err := ensureNotMember(ctx, members, req.ProjectID, email, req.UserID); err != nil {
			return err
		}
		return members.Create(ctx, &member)
	})
	if err != nil {
		return nil, mapDuplicate(err)
	}

	s.events.emit("team", ActionCreated, member.ID, member.ProjectID)
	s.notify(ctx, &Notification{
		Kind:      NotificationInvitation,
		ProjectID: member.ProjectID,
		MemberID:  member.ID,
		Recipient: email,
		Subject:   "You have been invited to a project",
		Body:      fmt.Sprintf("You were invited to project %d as %s.", member.ProjectID, member.Role),
	})

	return &member, nil
}

// Accept activates a pending membership.
func (s *TeamService) Accept(ctx context.Context, id uint, req *AcceptInviteRequest) (*models.TeamMember, error) {
	member, err := s.members.Update(ctx, id, func(m *models.TeamMember) error {
		if m.Status != models.MembershipPending {
			return response.NewConflict("Invitation has already been accepted")
		}
		if req != nil && req.UserID != nil {
			m.UserID = req.UserID
		}
		now := time.Now()
		m.Status = models.MembershipActive
		m.JoinedAt = &now
		return nil
	})
	if err != nil {
		return nil, mapDuplicate(mapNotFound(err, "Team member not found"))
	}

	s.events.emit("team", ActionUpdated, member.ID, member.ProjectID)
	return member, nil
}

func (s *TeamService) UpdateRole(ctx context.Context, id uint, req *UpdateRoleRequest) (*models.TeamMember, error) {
	member, err := s.members.Update(ctx, id, func(m *models.TeamMember) error {
		m.Role = req.Role
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err, "Team member not found")
	}

	s.events.emit("team", ActionUpdated, member.ID, member.ProjectID)
	return member, nil
}

func (s *TeamService) Delete(ctx context.Context, id uint) (*models.TeamMember, error) {
	member, err := s.members.Delete(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "Team member not found")
	}

	s.events.emit("team", ActionDeleted, member.ID, member.ProjectID)
	return member, nil
}

func ensureNotMember(ctx context.Context, members *store.Collection[models.TeamMember], projectID uint, email string, userID *uint) error {
	n, err := members.Count(ctx, store.Eq("project_id", projectID), store.Eq("email", email))
	if err != nil {
		return err
	}
	if n == 0 && userID != nil {
		if n, err = members.Count(ctx, store.Eq("project_id", projectID), store.Eq("user_id", *userID)); err != nil {
			return err
		}
	}
	if n > 0 {
		return errMemberExists
	}
	return nil
}

func (s *TeamService) notify(ctx context.Context, n *Notification) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, n); err != nil {
		logger.Warnf("[Team] Failed to enqueue %s notification for member %d: %v", n.Kind, n.MemberID, err)
	}
}

var errMemberExists = response.NewConflict("User is already a member of this project")

func mapDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errMemberExists
	}
	return err
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/internal/middleware"
	"github.com/huangang/framewise/backend/internal/services"
	"github.com/huangang/framewise/backend/internal/validation"
	"github.com/huangang/framewise/backend/pkg/response"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// ListByProject returns the members of a project, pending invitations included
// GET /api/team/project/:projectId
func (h *TeamHandler) ListByProject(c *gin.Context) {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		response.Error(c, err)
		return
	}

	members, err := h.teamService.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, members, len(members))
}

// GET /api/team/:id
func (h *TeamHandler) GetByID(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	member, err := h.teamService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "", member)
}

// Invite creates a pending membership and queues the invitation
// POST /api/team/invite
func (h *TeamHandler) Invite(c *gin.Context) {
	var req services.InviteRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	member, err := h.teamService.Invite(c.Request.Context(), &req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invitation sent successfully", member)
}

// Accept activates a pending membership. The body is optional.
// POST /api/team/:id/accept
func (h *TeamHandler) Accept(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.AcceptInviteRequest
	if c.Request.ContentLength > 0 {
		if err := validation.BindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
	}

	member, err := h.teamService.Accept(c.Request.Context(), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "Invitation accepted successfully", member)
}

// PUT /api/team/:id/role
func (h *TeamHandler) UpdateRole(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.UpdateRoleRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	member, err := h.teamService.UpdateRole(c.Request.Context(), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "Role updated successfully", member)
}

// DELETE /api/team/:id
func (h *TeamHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	member, err := h.teamService.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "Team member removed successfully", member)
}

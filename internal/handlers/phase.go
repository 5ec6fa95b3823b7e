package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/internal/services"
	"github.com/huangang/framewise/backend/internal/validation"
	"github.com/huangang/framewise/backend/pkg/response"
)

type PhaseHandler struct {
	phaseService *services.PhaseService
}

func NewPhaseHandler(phaseService *services.PhaseService) *PhaseHandler {
	return &PhaseHandler{phaseService: phaseService}
}

// ListByProject returns the phases of a project in position order
// GET /api/phases/:projectId
func (h *PhaseHandler) ListByProject(c *gin.Context) {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		response.Error(c, err)
		return
	}

	phases, err := h.phaseService.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, phases, len(phases))
}

// GET /api/phases/detail/:id
func (h *PhaseHandler) GetByID(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	phase, err := h.phaseService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "", phase)
}

// POST /api/phases
func (h *PhaseHandler) Create(c *gin.Context) {
	var req services.CreatePhaseRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	phase, err := h.phaseService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Phase created successfully", phase)
}

// PUT /api/phases/:id
func (h *PhaseHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.UpdatePhaseRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	phase, err := h.phaseService.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "Phase updated successfully", phase)
}

// DELETE /api/phases/:id
func (h *PhaseHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	phase, err := h.phaseService.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "Phase deleted successfully", phase)
}

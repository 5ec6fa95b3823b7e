package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/internal/services"
	"github.com/huangang/framewise/backend/internal/validation"
	"github.com/huangang/framewise/backend/pkg/response"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListByPhase returns the tasks of a phase, optionally filtered by status and priority
// GET /api/tasks/phase/:phaseId
func (h *TaskHandler) ListByPhase(c *gin.Context) {
	phaseID, err := idParam(c, "phaseId")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.TaskListRequest
	if err := validation.BindQuery(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	tasks, err := h.taskService.ListByPhase(c.Request.Context(), phaseID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, tasks, len(tasks))
}

// GET /api/tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	task, err := h.taskService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "", task)
}

// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req services.CreateTaskRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Task created successfully", task)
}

// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.UpdateTaskRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "Task updated successfully", task)
}

// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	task, err := h.taskService.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "Task deleted successfully", task)
}

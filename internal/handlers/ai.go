package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/internal/services"
	"github.com/huangang/framewise/backend/internal/validation"
	"github.com/huangang/framewise/backend/pkg/response"
)

type AIHandler struct {
	aiService *services.AIService
}

func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// Suggest answers a planning question for one category
// POST /api/ai/suggestions
func (h *AIHandler) Suggest(c *gin.Context) {
	var req services.SuggestionRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.aiService.Suggest(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "", result)
}

// AnalyzeScript returns word count, estimated runtime and script notes
// POST /api/ai/analyze-script
func (h *AIHandler) AnalyzeScript(c *gin.Context) {
	var req services.AnalyzeScriptRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	analysis, err := h.aiService.AnalyzeScript(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "", analysis)
}

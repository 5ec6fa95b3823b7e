package main

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/internal/handlers"
	"github.com/huangang/framewise/backend/internal/middleware"
	"github.com/huangang/framewise/backend/pkg/logger"
	"github.com/huangang/framewise/backend/pkg/response"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(middleware.RequestID(), logger.GinLogger(), logger.GinRecovery(), middleware.Metrics())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})

	r.GET("/health", svc.healthHandler.CheckHealth)
	r.GET("/metrics", handlers.Metrics(svc.db, svc.events, svc.queue))
	r.GET("/uploads/:filename", svc.mediaHandler.Serve)

	api := r.Group("/api")
	api.Use(middleware.Actor(svc.cfg.Auth), middleware.AuditLog())
	{
		api.GET("/events", svc.sseHandler.StreamChanges)

		// Projects
		api.GET("/projects", svc.projectHandler.List)
		api.GET("/projects/:id", svc.projectHandler.GetByID)
		api.POST("/projects", svc.projectHandler.Create)
		api.PUT("/projects/:id", svc.projectHandler.Update)
		api.DELETE("/projects/:id", svc.projectHandler.Delete)

		// Phases
		api.GET("/phases/:projectId", svc.phaseHandler.ListByProject)
		api.GET("/phases/detail/:id", svc.phaseHandler.GetByID)
		api.POST("/phases", svc.phaseHandler.Create)
		api.PUT("/phases/:id", svc.phaseHandler.Update)
		api.DELETE("/phases/:id", svc.phaseHandler.Delete)

		// Tasks
		api.GET("/tasks/phase/:phaseId", svc.taskHandler.ListByPhase)
		api.GET("/tasks/:id", svc.taskHandler.GetByID)
		api.POST("/tasks", svc.taskHandler.Create)
		api.PUT("/tasks/:id", svc.taskHandler.Update)
		api.DELETE("/tasks/:id", svc.taskHandler.Delete)

		// Team
		api.GET("/team/project/:projectId", svc.teamHandler.ListByProject)
		api.GET("/team/:id", svc.teamHandler.GetByID)
		api.POST("/team/invite", svc.teamHandler.Invite)
		api.POST("/team/:id/accept", svc.teamHandler.Accept)
		api.PUT("/team/:id/role", svc.teamHandler.UpdateRole)
		api.DELETE("/team/:id", svc.teamHandler.Delete)

		// Media
		api.GET("/media/project/:projectId", svc.mediaHandler.ListByProject)
		api.GET("/media/:id", svc.mediaHandler.GetByID)
		api.POST("/media/upload", svc.mediaHandler.Upload)
		api.DELETE("/media/:id", svc.mediaHandler.Delete)

		// AI
		ai := api.Group("/ai", svc.aiLimiter.Middleware())
		{
			ai.POST("/suggestions", svc.aiHandler.Suggest)
			ai.POST("/analyze-script", svc.aiHandler.AnalyzeScript)
		}

		api.GET("/dashboard/stats", svc.dashboardHandler.GetStats)
		api.GET("/calendar/deadlines", svc.calendarHandler.Deadlines)
		api.GET("/calendar/countries", svc.calendarHandler.Countries)
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/internal/services"
	"gorm.io/gorm"
)

// HealthHandler reports the state of the database, queue and event stream.
type HealthHandler struct {
	db     *gorm.DB
	queue  services.NotificationQueue
	events *services.EventHub
}

func NewHealthHandler(db *gorm.DB, queue services.NotificationQueue, events *services.EventHub) *HealthHandler {
	return &HealthHandler{db: db, queue: queue, events: events}
}

// CheckHealth returns the health status of all subsystems.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"
	status := http.StatusOK

	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
	}
	if dbStatus != "ok" {
		overall = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	queueMode := "sync"
	if h.queue != nil && h.queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	c.JSON(status, gin.H{
		"status":  overall,
		"service": "framewise",
		"components": gin.H{
			"database":    dbStatus,
			"queue_mode":  queueMode,
			"sse_clients": h.events.ClientCount(),
		},
	})
}

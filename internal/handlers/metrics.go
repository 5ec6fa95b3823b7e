package handlers

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/internal/models"
	"github.com/huangang/framewise/backend/internal/services"
	"github.com/huangang/framewise/backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var startTime = time.Now()

// Metrics serves Prometheus metrics: the process-wide counters plus gauges
// read from the database, the event hub and the queue at scrape time.
// GET /metrics
func Metrics(db *gorm.DB, hub *services.EventHub, queue services.NotificationQueue) gin.HandlerFunc {
	reg := prometheus.NewRegistry()

	gauge := func(name, help string, fn func() float64) {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn))
	}
	count := func(model interface{}, where string, args ...interface{}) func() float64 {
		return func() float64 {
			var n int64
			q := db.Model(model)
			if where != "" {
				q = q.Where(where, args...)
			}
			if err := q.Count(&n).Error; err != nil {
				logger.Warnf("[Metrics] count failed: %v", err)
			}
			return float64(n)
		}
	}

	gauge("framewise_uptime_seconds", "Time since server start in seconds", func() float64 {
		return time.Since(startTime).Seconds()
	})
	gauge("framewise_goroutines", "Number of active goroutines", func() float64 {
		return float64(runtime.NumGoroutine())
	})
	gauge("framewise_sse_active_clients", "Number of active SSE connections", func() float64 {
		return float64(hub.ClientCount())
	})
	gauge("framewise_queue_async_enabled", "Whether async queue (Redis) is enabled (1=yes, 0=no)", func() float64 {
		if queue != nil && queue.IsAsync() {
			return 1
		}
		return 0
	})
	gauge("framewise_projects_total", "Number of projects", count(&models.Project{}, ""))
	gauge("framewise_tasks_open", "Tasks not yet completed", count(&models.Task{}, "status <> ?", models.StatusCompleted))
	gauge("framewise_invitations_pending", "Team invitations awaiting acceptance", count(&models.TeamMember{}, "status = ?", models.MembershipPending))
	gauge("framewise_media_total", "Number of media records", count(&models.MediaAsset{}, ""))

	if sqlDB, err := db.DB(); err == nil {
		reg.MustRegister(collectors.NewDBStatsCollector(sqlDB, "framewise"))
	}

	h := promhttp.HandlerFor(prometheus.Gatherers{prometheus.DefaultGatherer, reg}, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

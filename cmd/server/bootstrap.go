package main

import (
	"context"
	"fmt"

	"github.com/huangang/framewise/backend/internal/config"
	"github.com/huangang/framewise/backend/internal/handlers"
	"github.com/huangang/framewise/backend/internal/middleware"
	"github.com/huangang/framewise/backend/internal/models"
	"github.com/huangang/framewise/backend/internal/services"
	"github.com/huangang/framewise/backend/internal/storage"
	"github.com/huangang/framewise/backend/internal/utils"
	"github.com/huangang/framewise/backend/internal/validation"
	"github.com/huangang/framewise/backend/pkg/logger"
	"gorm.io/gorm"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg       *config.Config
	db        *gorm.DB
	events    *services.EventHub
	queue     services.NotificationQueue
	worker    *services.Worker
	reminders *services.DeadlineReminderService
	aiLimiter *middleware.RateLimiter

	projectHandler   *handlers.ProjectHandler
	phaseHandler     *handlers.PhaseHandler
	taskHandler      *handlers.TaskHandler
	teamHandler      *handlers.TeamHandler
	mediaHandler     *handlers.MediaHandler
	aiHandler        *handlers.AIHandler
	dashboardHandler *handlers.DashboardHandler
	calendarHandler  *handlers.CalendarHandler
	healthHandler    *handlers.HealthHandler
	sseHandler       *handlers.SSEHandler
}

// applyJWTSecret installs the configured signing secret. With none configured
// the built-in development secret stays in use and false is returned.
func applyJWTSecret(secret string) bool {
	if secret == "" || secret == utils.DefaultJWTSecret {
		utils.SetJWTSecret(utils.DefaultJWTSecret)
		logger.Warnf("[Auth] auth.jwt_secret is not set, tokens are signed with the public development secret; set JWT_SECRET before exposing this server")
		return false
	}
	utils.SetJWTSecret(secret)
	return true
}

// bootstrap initializes all application dependencies. Nothing is started;
// see startBackground.
func bootstrap(cfg *config.Config) (*appServices, error) {
	ctx := context.Background()

	applyJWTSecret(cfg.Auth.JWTSecret)
	validation.Register()

	if err := models.InitDB(&cfg.Database); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	db := models.GetDB()

	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	if cfg.Database.Seed {
		if err := models.SeedDefaultData(db); err != nil {
			logger.Warn().Err(err).Msg("Failed to seed default data")
		}
	}

	blobs, err := storage.New(ctx, cfg.Storage, cfg.Upload.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	logger.Infof("[Storage] Media blobs stored on %s", blobs.Name())

	mailer := services.NewEmailService(cfg.Email)
	queue := services.NewNotificationQueue(&cfg.Redis, mailer.Deliver)
	worker := services.NewWorker(&cfg.Redis)
	worker.SetProcessor(mailer.Deliver)

	events := services.NewEventHub()
	holidays := services.NewHolidayService(cfg.Calendar.HolidayCountry)

	deps := &services.Deps{
		DB:       db,
		Blobs:    blobs,
		Events:   events,
		Queue:    queue,
		Holidays: holidays,
		Workflow: cfg.Workflow,
		Upload:   cfg.Upload,
	}

	aiService := services.NewAIService(services.NewSuggestionProvider(cfg.AI))

	return &appServices{
		cfg:       cfg,
		db:        db,
		events:    events,
		queue:     queue,
		worker:    worker,
		reminders: services.NewDeadlineReminderService(deps, cfg.Scheduler),
		aiLimiter: middleware.NewRateLimiter(cfg.AI.RateLimit, cfg.AI.RateBurst),

		projectHandler:   handlers.NewProjectHandler(services.NewProjectService(deps)),
		phaseHandler:     handlers.NewPhaseHandler(services.NewPhaseService(deps)),
		taskHandler:      handlers.NewTaskHandler(services.NewTaskService(deps)),
		teamHandler:      handlers.NewTeamHandler(services.NewTeamService(deps)),
		mediaHandler:     handlers.NewMediaHandler(services.NewMediaService(deps)),
		aiHandler:        handlers.NewAIHandler(aiService),
		dashboardHandler: handlers.NewDashboardHandler(services.NewDashboardService(db)),
		calendarHandler:  handlers.NewCalendarHandler(services.NewCalendarService(deps), holidays),
		healthHandler:    handlers.NewHealthHandler(db, queue, events),
		sseHandler:       handlers.NewSSEHandler(events),
	}, nil
}

// startBackground starts the async worker and the deadline scheduler.
func (s *appServices) startBackground() error {
	if s.worker != nil {
		if err := s.worker.Start(); err != nil {
			return fmt.Errorf("start worker: %w", err)
		}
	}
	if s.cfg.Scheduler.Enabled {
		if err := s.reminders.StartScheduler(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}
	return nil
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.reminders.StopScheduler()
	s.worker.Stop()
	if s.queue != nil {
		s.queue.Close()
	}
	s.aiLimiter.Stop()

	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info().Msg("All background services stopped")
}

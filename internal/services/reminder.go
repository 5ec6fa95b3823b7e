package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangang/framewise/backend/internal/config"
	"github.com/huangang/framewise/backend/internal/models"
	"github.com/huangang/framewise/backend/internal/store"
	"github.com/huangang/framewise/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const reminderLockName = "deadline_reminder"

// DeadlineReminderService queues a reminder for every open task that is due
// soon. Each calendar day is claimed through a scheduler lock row so that only
// one instance sends reminders when several share a database.
type DeadlineReminderService struct {
	db            *gorm.DB
	tasks         *store.Collection[models.Task]
	phases        *store.Collection[models.Phase]
	members       *store.Collection[models.TeamMember]
	queue         NotificationQueue
	cfg           config.SchedulerConfig
	instance      string
	cronScheduler *cron.Cron
}

func NewDeadlineReminderService(d *Deps, cfg config.SchedulerConfig) *DeadlineReminderService {
	host, _ := os.Hostname()
	return &DeadlineReminderService{
		db:       d.DB,
		tasks:    store.New[models.Task](d.DB),
		phases:   store.New[models.Phase](d.DB),
		members:  store.New[models.TeamMember](d.DB),
		queue:    d.Queue,
		cfg:      cfg,
		instance: fmt.Sprintf("%s-%d", host, os.Getpid()),
	}
}

func (s *DeadlineReminderService) StartScheduler() error {
	s.cronScheduler = cron.New()

	if _, err := s.cronScheduler.AddFunc(s.cfg.ReminderCron, func() {
		if _, err := s.Run(context.Background(), time.Now()); err != nil {
			logger.Errorf("[Reminder] Run failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule deadline reminders (%q): %w", s.cfg.ReminderCron, err)
	}

	s.cronScheduler.Start()
	logger.Infof("[Reminder] Scheduler started (cron: %s, window: %d days)", s.cfg.ReminderCron, s.cfg.ReminderDays)
	return nil
}

func (s *DeadlineReminderService) StopScheduler() {
	if s == nil || s.cronScheduler == nil {
		return
	}
	<-s.cronScheduler.Stop().Done()
}

// Run sends the reminders for the day of now and returns how many were queued.
// A day that was already claimed is skipped.
func (s *DeadlineReminderService) Run(ctx context.Context, now time.Time) (int, error) {
	day := truncateDay(now)
	claimed, err := s.claim(ctx, day)
	if err != nil {
		reminderRuns.WithLabelValues("error").Inc()
		return 0, err
	}
	if !claimed {
		reminderRuns.WithLabelValues("skipped").Inc()
		logger.Infof("[Reminder] %s already handled, skipping", day.Format("2006-01-02"))
		return 0, nil
	}

	tasks, err := s.DueSoon(ctx, day)
	if err != nil {
		reminderRuns.WithLabelValues("error").Inc()
		return 0, err
	}

	sent := 0
	for _, t := range tasks {
		n := s.reminderFor(ctx, &t)
		if s.queue == nil {
			continue
		}
		if err := s.queue.Enqueue(ctx, n); err != nil {
			logger.Warnf("[Reminder] Failed to enqueue reminder for task %d: %v", t.ID, err)
			continue
		}
		sent++
	}

	reminderRuns.WithLabelValues("ok").Inc()
	logger.Infof("[Reminder] Queued %d reminders for %d tasks due by %s", sent, len(tasks),
		day.AddDate(0, 0, s.window()).Format("2006-01-02"))
	return sent, nil
}

// DueSoon lists tasks that are not completed and due between day and the end
// of the reminder window, overdue ones included.
func (s *DeadlineReminderService) DueSoon(ctx context.Context, day time.Time) ([]models.Task, error) {
	until := day.AddDate(0, 0, s.window()).Format("2006-01-02")
	return s.tasks.List(ctx,
		func(db *gorm.DB) *gorm.DB {
			return db.Where("status <> ? AND due_date <= ?", models.StatusCompleted, until)
		},
		store.OrderBy("due_date"),
	)
}

func (s *DeadlineReminderService) window() int {
	if s.cfg.ReminderDays <= 0 {
		return 2
	}
	return s.cfg.ReminderDays
}

func (s *DeadlineReminderService) reminderFor(ctx context.Context, t *models.Task) *Notification {
	n := &Notification{
		Kind:    NotificationDeadlineReminder,
		TaskID:  t.ID,
		Subject: fmt.Sprintf("Task %q is due %s", t.Title, t.DueDate),
		Body:    fmt.Sprintf("Task %q (%s priority) is %s and due %s.", t.Title, t.Priority, t.Status, t.DueDate),
	}
	if phase, err := s.phases.Get(ctx, t.PhaseID); err == nil {
		n.ProjectID = phase.ProjectID
	}

	switch {
	case t.AssignedTo != nil:
		n.Recipient = fmt.Sprintf("user:%d", *t.AssignedTo)
		members, err := s.members.List(ctx, store.Eq("project_id", n.ProjectID), store.Eq("user_id", *t.AssignedTo))
		if err == nil && len(members) > 0 {
			n.MemberID = members[0].ID
			if members[0].Email != nil {
				n.Recipient = *members[0].Email
			}
		}
	default:
		n.Recipient = fmt.Sprintf("project:%d", n.ProjectID)
	}
	return n
}

// claim inserts the lock row for day. A unique violation means another run
// got there first.
func (s *DeadlineReminderService) claim(ctx context.Context, day time.Time) (bool, error) {
	now := time.Now()
	lock := models.SchedulerLock{
		LockName:  reminderLockName,
		LockKey:   day.Format("2006-01-02"),
		LockedBy:  s.instance,
		LockedAt:  now,
		ExpiresAt: day.AddDate(0, 0, 1),
	}
	err := s.db.WithContext(ctx).Create(&lock).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("claim reminder run: %w", err)
	}

	// old claims are no longer needed
	s.db.WithContext(ctx).Where("lock_name = ? AND expires_at < ?", reminderLockName, day.AddDate(0, 0, -7)).
		Delete(&models.SchedulerLock{})
	return true, nil
}

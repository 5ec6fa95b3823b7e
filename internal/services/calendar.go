package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/huangang/framewise/backend/internal/models"
	"github.com/huangang/framewise/backend/internal/store"
	"github.com/huangang/framewise/backend/pkg/response"
)

const defaultCalendarSpanDays = 30

const (
	EntryDeadline = "deadline"
	EntryTask     = "task"
)

type CalendarRequest struct {
	From string `form:"from" binding:"omitempty,isodate"`
	To   string `form:"to" binding:"omitempty,isodate"`
}

// CalendarEntry is one dated item on the production calendar.
type CalendarEntry struct {
	ID              string          `json:"id"`
	Kind            string          `json:"kind"`
	Title           string          `json:"title"`
	Date            string          `json:"date"`
	ProjectID       uint            `json:"projectId"`
	TaskID          uint            `json:"taskId,omitempty"`
	Priority        models.Priority `json:"priority,omitempty"`
	Status          string          `json:"status"`
	WorkingDaysLeft int             `json:"workingDaysLeft"`
}

type CalendarService struct {
	projects *store.Collection[models.Project]
	phases   *store.Collection[models.Phase]
	tasks    *store.Collection[models.Task]
	holidays *HolidayService
}

func NewCalendarService(d *Deps) *CalendarService {
	holidays := d.Holidays
	if holidays == nil {
		holidays = NewHolidayService(CountryWeekendsOnly)
	}
	return &CalendarService{
		projects: store.New[models.Project](d.DB),
		phases:   store.New[models.Phase](d.DB),
		tasks:    store.New[models.Task](d.DB),
		holidays: holidays,
	}
}

// Deadlines lists project due dates and task due dates between from and to
// inclusive, earliest first. The window defaults to the next 30 days.
func (s *CalendarService) Deadlines(ctx context.Context, req *CalendarRequest) ([]CalendarEntry, error) {
	from, to, err := calendarWindow(req)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.List(ctx, store.Between("due_date", from, to))
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, store.Between("due_date", from, to))
	if err != nil {
		return nil, err
	}

	phaseIDs := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		phaseIDs = append(phaseIDs, t.PhaseID)
	}
	projectOfPhase := make(map[uint]uint)
	if len(phaseIDs) > 0 {
		phases, err := s.phases.List(ctx, store.In("id", phaseIDs))
		if err != nil {
			return nil, err
		}
		for _, ph := range phases {
			projectOfPhase[ph.ID] = ph.ProjectID
		}
	}

	now := today()
	entries := make([]CalendarEntry, 0, len(projects)+len(tasks))
	for _, p := range projects {
		entries = append(entries, CalendarEntry{
			ID:              fmt.Sprintf("project-%d", p.ID),
			Kind:            EntryDeadline,
			Title:           p.Title,
			Date:            p.DueDate,
			ProjectID:       p.ID,
			Status:          string(p.Status),
			WorkingDaysLeft: s.daysLeft(now, p.DueDate),
		})
	}
	for _, t := range tasks {
		kind := EntryTask
		if t.Priority == models.PriorityHigh {
			kind = EntryDeadline
		}
		entries = append(entries, CalendarEntry{
			ID:              fmt.Sprintf("task-%d", t.ID),
			Kind:            kind,
			Title:           t.Title,
			Date:            t.DueDate,
			ProjectID:       projectOfPhase[t.PhaseID],
			TaskID:          t.ID,
			Priority:        t.Priority,
			Status:          string(t.Status),
			WorkingDaysLeft: s.daysLeft(now, t.DueDate),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})
	return entries, nil
}

func (s *CalendarService) daysLeft(from time.Time, date string) int {
	due, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0
	}
	return s.holidays.WorkingDaysBetween(from, due)
}

func calendarWindow(req *CalendarRequest) (string, string, error) {
	from := today()
	to := from.AddDate(0, 0, defaultCalendarSpanDays)

	if req != nil && req.From != "" {
		d, err := normalizeDate("from", req.From)
		if err != nil {
			return "", "", err
		}
		from, _ = time.Parse("2006-01-02", d)
		if req.To == "" {
			to = from.AddDate(0, 0, defaultCalendarSpanDays)
		}
	}
	if req != nil && req.To != "" {
		d, err := normalizeDate("to", req.To)
		if err != nil {
			return "", "", err
		}
		to, _ = time.Parse("2006-01-02", d)
	}
	if to.Before(from) {
		return "", "", response.NewFieldError("to", "to must not be before from")
	}
	return from.Format("2006-01-02"), to.Format("2006-01-02"), nil
}

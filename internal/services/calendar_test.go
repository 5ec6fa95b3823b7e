package services

import (
	"context"
	"testing"

	"github.com/huangang/framewise/backend/pkg/response"
)

func TestCalendarService_Deadlines(t *testing.T) {
	d, _ := newTestDeps(t, true)
	svc := NewCalendarService(d)

	entries, err := svc.Deadlines(context.Background(), &CalendarRequest{From: "2024-08-01", To: "2024-09-30"})
	if err != nil {
		t.Fatalf("Deadlines error = %v", err)
	}

	want := []struct{ id, kind, date string }{
		{"task-1", EntryDeadline, "2024-08-20"},
		{"task-2", EntryTask, "2024-08-22"},
		{"project-2", EntryDeadline, "2024-08-30"},
		{"task-3", EntryDeadline, "2024-09-05"},
		{"project-1", EntryDeadline, "2024-09-15"},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(entries), entries)
	}
	for i, w := range want {
		e := entries[i]
		if e.ID != w.id || e.Kind != w.kind || e.Date != w.date {
			t.Errorf("entry %d = %s/%s/%s, expected %s/%s/%s", i, e.ID, e.Kind, e.Date, w.id, w.kind, w.date)
		}
	}
	if entries[0].ProjectID != 1 {
		t.Errorf("task entries should carry their project, got %d", entries[0].ProjectID)
	}
	if entries[0].WorkingDaysLeft >= 0 {
		t.Errorf("a 2024 deadline should be in the past, got %d", entries[0].WorkingDaysLeft)
	}
}

func TestCalendarService_Window(t *testing.T) {
	d, _ := newTestDeps(t, true)
	svc := NewCalendarService(d)

	entries, err := svc.Deadlines(context.Background(), &CalendarRequest{From: "2024-09-01"})
	if err != nil {
		t.Fatalf("Deadlines error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("30 days from 2024-09-01 should hold 2 entries, got %d", len(entries))
	}

	_, err = svc.Deadlines(context.Background(), &CalendarRequest{From: "2024-09-01", To: "2024-08-01"})
	if !response.IsKind(err, response.KindValidation) {
		t.Errorf("expected ValidationError for an inverted range, got %v", err)
	}
}

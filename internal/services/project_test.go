package services

import (
	"context"
	"testing"

	"github.com/huangang/framewise/backend/internal/config"
	"github.com/huangang/framewise/backend/internal/models"
	"github.com/huangang/framewise/backend/pkg/response"
)

func TestProjectService_CreateAddsDefaultPhasesAndOwner(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDeps(t, false)
	svc := NewProjectService(d)

	events := d.Events.Subscribe("test")

	project, err := svc.Create(ctx, &CreateProjectRequest{Title: " X ", Description: "Y", DueDate: "2024-09-01"}, 7)
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}

	if project.Title != "X" {
		t.Errorf("Title = %q, expected trimmed %q", project.Title, "X")
	}
	if project.Status != models.ProjectDevelopment {
		t.Errorf("Status = %q, expected Development", project.Status)
	}
	if project.OwnerID != 7 {
		t.Errorf("OwnerID = %d, expected 7", project.OwnerID)
	}
	if len(project.Phases) != 4 {
		t.Fatalf("expected 4 phases, got %d", len(project.Phases))
	}
	for i, ph := range project.Phases {
		if ph.Name != models.DefaultPhaseNames[i] {
			t.Errorf("phase %d name = %q, expected %q", i, ph.Name, models.DefaultPhaseNames[i])
		}
		want := models.StatusPending
		if i == 0 {
			want = models.StatusInProgress
		}
		if ph.Status != want || ph.Progress != 0 {
			t.Errorf("phase %d = %s/%d, expected %s/0", i, ph.Status, ph.Progress, want)
		}
	}
	if len(project.TeamMembers) != 1 || project.TeamMembers[0] != 7 {
		t.Errorf("TeamMembers = %v, expected [7]", project.TeamMembers)
	}
	if project.WorkingDaysLeft == nil {
		t.Error("WorkingDaysLeft should be computed")
	}

	select {
	case ev := <-events:
		if ev.Entity != "project" || ev.Action != ActionCreated || ev.ID != project.ID {
			t.Errorf("unexpected event %+v", ev)
		}
	default:
		t.Error("expected a created event")
	}
}

func TestProjectService_CreateNormalizesDate(t *testing.T) {
	d, _ := newTestDeps(t, false)
	svc := NewProjectService(d)

	project, err := svc.Create(context.Background(), &CreateProjectRequest{Title: "X", Description: "Y", DueDate: "2024-09-01T10:00:00Z"}, 1)
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if project.DueDate != "2024-09-01" {
		t.Errorf("DueDate = %q, expected 2024-09-01", project.DueDate)
	}
}

func TestProjectService_ListAndFilter(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDeps(t, true)
	svc := NewProjectService(d)

	all, err := svc.List(ctx, &ProjectListRequest{})
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(all))
	}
	if all[0].ID >= all[1].ID {
		t.Error("projects should be listed in creation order")
	}
	if len(all[0].Phases) != 4 || len(all[0].TeamMembers) != 3 {
		t.Errorf("first project has %d phases and %d members, expected 4 and 3", len(all[0].Phases), len(all[0].TeamMembers))
	}

	production, err := svc.List(ctx, &ProjectListRequest{Status: string(models.ProjectProduction)})
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(production) != 1 || production[0].Title != "Summer Campaign 2024" {
		t.Errorf("unexpected filter result %+v", production)
	}
}

func TestProjectService_GetNotFound(t *testing.T) {
	d, _ := newTestDeps(t, false)
	_, err := NewProjectService(d).GetByID(context.Background(), 99)
	if !response.IsKind(err, response.KindNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestProjectService_UpdateKeepsOmittedFields(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDeps(t, true)
	svc := NewProjectService(d)

	before, _ := svc.GetByID(ctx, 1)

	req := &UpdateProjectRequest{Title: ptr("Renamed")}
	first, err := svc.Update(ctx, 1, req)
	if err != nil {
		t.Fatalf("Update error = %v", err)
	}
	if first.Title != "Renamed" {
		t.Errorf("Title = %q, expected Renamed", first.Title)
	}
	if first.Description != before.Description || first.DueDate != before.DueDate || first.Status != before.Status {
		t.Error("omitted fields must keep their values")
	}

	second, err := svc.Update(ctx, 1, req)
	if err != nil {
		t.Fatalf("second Update error = %v", err)
	}
	if second.Title != first.Title || second.Description != first.Description ||
		second.Status != first.Status || second.DueDate != first.DueDate {
		t.Error("repeating an update should give the same record")
	}
}

func TestProjectService_StrictTransitions(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDeps(t, true)
	d.Workflow = config.WorkflowConfig{StrictTransitions: true}
	svc := NewProjectService(d)

	// project 2 is in Pre-production
	_, err := svc.Update(ctx, 2, &UpdateProjectRequest{Status: ptr(models.ProjectCompleted)})
	if !response.IsKind(err, response.KindValidation) {
		t.Fatalf("expected ValidationError for a skipped stage, got %v", err)
	}
	got, _ := svc.GetByID(ctx, 2)
	if got.Status != models.ProjectPreProduction {
		t.Errorf("status changed to %s after a rejected update", got.Status)
	}

	if _, err := svc.Update(ctx, 2, &UpdateProjectRequest{Status: ptr(models.ProjectProduction)}); err != nil {
		t.Errorf("one step forward should be allowed, got %v", err)
	}

	d.Workflow.StrictTransitions = false
	if _, err := NewProjectService(d).Update(ctx, 2, &UpdateProjectRequest{Status: ptr(models.ProjectDevelopment)}); err != nil {
		t.Errorf("permissive mode should allow any jump, got %v", err)
	}
}

func TestProjectService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDeps(t, true)
	svc := NewProjectService(d)

	removed, err := svc.Delete(ctx, 1)
	if err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if removed.ID != 1 || len(removed.Phases) != 4 {
		t.Errorf("Delete should return the removed project with its phases, got %+v", removed)
	}

	if _, err := svc.GetByID(ctx, 1); !response.IsKind(err, response.KindNotFound) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}

	for _, model := range []interface{}{&models.Phase{}, &models.TeamMember{}, &models.MediaAsset{}} {
		var n int64
		d.DB.Model(model).Where("project_id = ?", 1).Count(&n)
		if n != 0 {
			t.Errorf("%T rows left for deleted project: %d", model, n)
		}
	}
	var tasks int64
	d.DB.Model(&models.Task{}).Count(&tasks)
	if tasks != 0 {
		t.Errorf("tasks of deleted project should be gone, %d left", tasks)
	}

	// the other project is untouched
	other, err := svc.GetByID(ctx, 2)
	if err != nil || len(other.Phases) != 4 {
		t.Errorf("project 2 should survive with its phases, got %v (%v)", other, err)
	}

	if _, err := svc.Delete(ctx, 1); !response.IsKind(err, response.KindNotFound) {
		t.Errorf("second delete should be NotFound, got %v", err)
	}
}

func TestProjectService_IDsNotReused(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDeps(t, true)
	svc := NewProjectService(d)

	if _, err := svc.Delete(ctx, 2); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	created, err := svc.Create(ctx, &CreateProjectRequest{Title: "New", Description: "D", DueDate: "2025-01-01"}, 1)
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if created.ID == 2 {
		t.Error("a deleted id was handed out again")
	}
}

package services

import (
	"context"

	"github.com/huangang/framewise/backend/internal/models"
	"gorm.io/gorm"
)

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type DashboardStats struct {
	TotalProjects      int64            `json:"totalProjects"`
	ProjectsByStatus   map[string]int64 `json:"projectsByStatus"`
	TotalTasks         int64            `json:"totalTasks"`
	TasksByStatus      map[string]int64 `json:"tasksByStatus"`
	TasksByPriority    map[string]int64 `json:"tasksByPriority"`
	OverdueTasks       int64            `json:"overdueTasks"`
	AverageProgress    float64          `json:"averagePhaseProgress"`
	ActiveMembers      int64            `json:"activeMembers"`
	PendingInvitations int64            `json:"pendingInvitations"`
	TotalMedia         int64            `json:"totalMedia"`
	MediaByCategory    map[string]int64 `json:"mediaByCategory"`
	MediaBytes         int64            `json:"mediaBytes"`
}

type groupCount struct {
	GroupKey string
	Total    int64
}

func (s *DashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := DashboardStats{
		ProjectsByStatus: zeroCounts(models.ProjectStatuses),
		TasksByStatus:    zeroCounts(models.WorkStatuses),
		TasksByPriority:  zeroCounts(models.Priorities),
		MediaByCategory:  zeroCounts(models.MediaCategories),
	}

	var err error
	if stats.TotalProjects, err = countBy(db, &models.Project{}, "status", stats.ProjectsByStatus); err != nil {
		return nil, err
	}
	if stats.TotalTasks, err = countBy(db, &models.Task{}, "status", stats.TasksByStatus); err != nil {
		return nil, err
	}
	if _, err = countBy(db, &models.Task{}, "priority", stats.TasksByPriority); err != nil {
		return nil, err
	}
	if stats.TotalMedia, err = countBy(db, &models.MediaAsset{}, "category", stats.MediaByCategory); err != nil {
		return nil, err
	}

	todayStr := today().Format("2006-01-02")
	if err := db.Model(&models.Task{}).
		Where("status <> ? AND due_date < ?", models.StatusCompleted, todayStr).
		Count(&stats.OverdueTasks).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.TeamMember{}).Where("status = ?", models.MembershipActive).Count(&stats.ActiveMembers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.TeamMember{}).Where("status = ?", models.MembershipPending).Count(&stats.PendingInvitations).Error; err != nil {
		return nil, err
	}

	var avg struct{ Avg *float64 }
	if err := db.Model(&models.Phase{}).Select("AVG(progress) AS avg").Scan(&avg).Error; err != nil {
		return nil, err
	}
	if avg.Avg != nil {
		stats.AverageProgress = *avg.Avg
	}

	var total struct{ Total *int64 }
	if err := db.Model(&models.MediaAsset{}).Select("SUM(size) AS total").Scan(&total).Error; err != nil {
		return nil, err
	}
	if total.Total != nil {
		stats.MediaBytes = *total.Total
	}

	return &stats, nil
}

// countBy fills into with per-value counts of column and returns the total.
func countBy(db *gorm.DB, model interface{}, column string, into map[string]int64) (int64, error) {
	var rows []groupCount
	if err := db.Model(model).
		Select(column + " AS group_key, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error; err != nil {
		return 0, err
	}

	var total int64
	for _, r := range rows {
		into[r.GroupKey] = r.Total
		total += r.Total
	}
	return total, nil
}

func zeroCounts[S ~string](values []S) map[string]int64 {
	m := make(map[string]int64, len(values))
	for _, v := range values {
		m[string(v)] = 0
	}
	return m
}

package models

import (
	"fmt"
	"time"

	"github.com/huangang/framewise/backend/internal/config"
	"github.com/huangang/framewise/backend/pkg/logger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}

	DB = db
	return nil
}

// Open connects to the configured database. An sqlite database is pinned to a
// single connection so an in-memory DSN keeps one store and writers are serialized.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logLevel := gormlogger.Warn
	if cfg.Debug {
		logLevel = gormlogger.Info
	}

	gormConfig := &gorm.Config{
		Logger:         newGormLogger(logLevel),
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// gormWriter sends gorm's query log through the application logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	logger.Infof("[DB] "+format, args...)
}

// newGormLogger skips "record not found", which every 404 lookup would print.
func newGormLogger(level gormlogger.LogLevel) gormlogger.Interface {
	return gormlogger.New(gormWriter{}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Project{},
		&Phase{},
		&Task{},
		&TeamMember{},
		&MediaAsset{},
		&SchedulerLock{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData loads the demo productions into an empty database.
func SeedDefaultData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Project{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	day := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02", s)
		return t
	}
	uid := func(v uint) *uint { return &v }

	return db.Transaction(func(tx *gorm.DB) error {
		projects := []Project{
			{
				Title:       "Summer Campaign 2024",
				Description: "A comprehensive summer marketing campaign featuring multiple video assets",
				Status:      ProjectProduction,
				DueDate:     "2024-09-15",
				OwnerID:     1,
				CreatedAt:   day("2024-07-01"),
			},
			{
				Title:       "Corporate Training Video",
				Description: "Internal training video for new employee onboarding",
				Status:      ProjectPreProduction,
				DueDate:     "2024-08-30",
				OwnerID:     1,
				CreatedAt:   day("2024-07-15"),
			},
		}
		if err := tx.Create(&projects).Error; err != nil {
			return err
		}
		summer, training := projects[0].ID, projects[1].ID

		phases := []Phase{
			{ProjectID: summer, Name: "Development", Status: StatusCompleted, Progress: 100, Position: 0, StartDate: "2024-07-01", EndDate: "2024-07-14"},
			{ProjectID: summer, Name: "Pre-production", Status: StatusCompleted, Progress: 100, Position: 1, StartDate: "2024-07-15", EndDate: "2024-07-28"},
			{ProjectID: summer, Name: "Production", Status: StatusInProgress, Progress: 65, Position: 2, StartDate: "2024-07-29", EndDate: "2024-08-25"},
			{ProjectID: summer, Name: "Post-production", Status: StatusPending, Progress: 0, Position: 3, StartDate: "2024-08-26", EndDate: "2024-09-15"},
			{ProjectID: training, Name: "Development", Status: StatusCompleted, Progress: 100, Position: 0},
			{ProjectID: training, Name: "Pre-production", Status: StatusInProgress, Progress: 30, Position: 1},
			{ProjectID: training, Name: "Production", Status: StatusPending, Progress: 0, Position: 2},
			{ProjectID: training, Name: "Post-production", Status: StatusPending, Progress: 0, Position: 3},
		}
		if err := tx.Create(&phases).Error; err != nil {
			return err
		}
		production, post := phases[2].ID, phases[3].ID

		tasks := []Task{
			{PhaseID: production, Title: "Film main scenes", Description: "Capture all primary footage", Status: StatusInProgress, Priority: PriorityHigh, DueDate: "2024-08-20", AssignedTo: uid(2)},
			{PhaseID: production, Title: "Record B-roll footage", Description: "Additional supporting footage", Status: StatusPending, Priority: PriorityMedium, DueDate: "2024-08-22", AssignedTo: uid(3)},
			{PhaseID: post, Title: "Video editing", Description: "Edit and assemble final video", Status: StatusPending, Priority: PriorityHigh, DueDate: "2024-09-05", AssignedTo: uid(4)},
		}
		if err := tx.Create(&tasks).Error; err != nil {
			return err
		}

		joined := []time.Time{day("2024-07-01"), day("2024-07-02"), day("2024-07-03")}
		members := []TeamMember{
			{ProjectID: summer, UserID: uid(1), Role: RoleAdmin, Status: MembershipActive, JoinedAt: &joined[0]},
			{ProjectID: summer, UserID: uid(2), Role: RoleEditor, Status: MembershipActive, JoinedAt: &joined[1]},
			{ProjectID: summer, UserID: uid(3), Role: RoleViewer, Status: MembershipActive, JoinedAt: &joined[2]},
			{ProjectID: training, UserID: uid(1), Role: RoleAdmin, Status: MembershipActive, JoinedAt: &joined[0]},
		}
		if err := tx.Create(&members).Error; err != nil {
			return err
		}

		asset := MediaAsset{
			ProjectID:    summer,
			Filename:     "location-scout-1.jpg",
			OriginalName: "downtown_rooftop.jpg",
			Type:         "image",
			MimeType:     "image/jpeg",
			Category:     CategoryLocation,
			Size:         2048576,
			URL:          "/uploads/location-scout-1.jpg",
			UploadedBy:   1,
			UploadedAt:   day("2024-07-15"),
		}
		return tx.Create(&asset).Error
	})
}

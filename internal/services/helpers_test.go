package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/huangang/framewise/backend/internal/config"
	"github.com/huangang/framewise/backend/internal/models"
	"github.com/huangang/framewise/backend/internal/storage"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := models.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// recordingQueue keeps enqueued notifications in memory.
type recordingQueue struct {
	mu    sync.Mutex
	items []*Notification
}

func (q *recordingQueue) Enqueue(ctx context.Context, n *Notification) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
	return nil
}

func (q *recordingQueue) IsAsync() bool { return false }
func (q *recordingQueue) Close() error  { return nil }

func (q *recordingQueue) sent() []*Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*Notification(nil), q.items...)
}

func newTestDeps(t *testing.T, seed bool) (*Deps, *recordingQueue) {
	t.Helper()
	db := setupTestDB(t)
	if seed {
		if err := models.SeedDefaultData(db); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	blobs, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	q := &recordingQueue{}
	return &Deps{
		DB:       db,
		Blobs:    blobs,
		Events:   NewEventHub(),
		Queue:    q,
		Holidays: NewHolidayService(CountryWeekendsOnly),
		Upload:   config.UploadConfig{MaxBytes: DefaultMaxUploadBytes},
	}, q
}

func ptr[T any](v T) *T { return &v }

// deleteOnFirstRead starts del in the background the first time table is
// queried, i.e. right after a service has looked up the parent row. The
// returned func waits for del and reports its error.
func deleteOnFirstRead(t *testing.T, db *gorm.DB, table string, del func() error) func() error {
	t.Helper()
	var once sync.Once
	done := make(chan error, 1)
	err := db.Callback().Query().After("gorm:query").Register("test:delete_on_first_read", func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		once.Do(func() {
			go func() { done <- del() }()
		})
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	return func() error {
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("concurrent delete did not finish")
			return nil
		}
	}
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/huangang/framewise/backend/internal/config"
)

func TestTaskTypeNotification_Constant(t *testing.T) {
	if TaskTypeNotification != "notification:deliver" {
		t.Errorf("TaskTypeNotification = %q, expected %q", TaskTypeNotification, "notification:deliver")
	}
}

func TestSyncQueue_New(t *testing.T) {
	q := NewSyncQueue()
	if q == nil {
		t.Fatal("NewSyncQueue should not return nil")
	}
	if q.processor != nil {
		t.Error("new SyncQueue should have nil processor")
	}
}

func TestSyncQueue_IsAsync(t *testing.T) {
	q := NewSyncQueue()
	if q.IsAsync() {
		t.Error("SyncQueue.IsAsync() should return false")
	}
}

func TestSyncQueue_Close(t *testing.T) {
	q := NewSyncQueue()
	if err := q.Close(); err != nil {
		t.Errorf("SyncQueue.Close() error = %v", err)
	}
}

func TestSyncQueue_EnqueueWithoutProcessor(t *testing.T) {
	q := NewSyncQueue()
	err := q.Enqueue(context.Background(), &Notification{Kind: NotificationInvitation})
	if err != nil {
		t.Errorf("Enqueue without processor should not error, got %v", err)
	}
}

func TestSyncQueue_SetProcessor(t *testing.T) {
	q := NewSyncQueue()
	done := make(chan *Notification, 1)
	q.SetProcessor(func(ctx context.Context, n *Notification) error {
		done <- n
		return nil
	})

	if err := q.Enqueue(context.Background(), &Notification{Kind: NotificationDeadlineReminder, TaskID: 3}); err != nil {
		t.Fatalf("Enqueue error = %v", err)
	}

	select {
	case n := <-done:
		if n.Kind != NotificationDeadlineReminder || n.TaskID != 3 {
			t.Errorf("unexpected notification %+v", n)
		}
	case <-time.After(time.Second):
		t.Fatal("processor was not called")
	}
}

func TestNewNotificationQueue_RedisDisabled(t *testing.T) {
	q := NewNotificationQueue(&config.RedisConfig{Enabled: false}, DeliverNotification)
	if q.IsAsync() {
		t.Error("expected sync queue when Redis is disabled")
	}
	if sq, ok := q.(*SyncQueue); !ok || sq.processor == nil {
		t.Error("sync queue should carry the delivery processor")
	}
}

func TestAsyncQueue_IsAsync(t *testing.T) {
	q := &AsyncQueue{}
	if !q.IsAsync() {
		t.Error("AsyncQueue.IsAsync() should return true")
	}
}

func TestNewWorker_RedisDisabled(t *testing.T) {
	if w := NewWorker(&config.RedisConfig{Enabled: false}); w != nil {
		t.Error("NewWorker should return nil when Redis is disabled")
	}
	var w *Worker
	w.Stop()
}

func TestDeliverNotification(t *testing.T) {
	err := DeliverNotification(context.Background(), &Notification{
		Kind:      NotificationInvitation,
		ProjectID: 1,
		Recipient: "new@example.com",
		Subject:   "You have been invited",
	})
	if err != nil {
		t.Errorf("DeliverNotification error = %v", err)
	}
}

package services

import (
	"testing"
	"time"
)

func TestEventHub_NewEventHub(t *testing.T) {
	hub := NewEventHub()
	if hub == nil {
		t.Fatal("NewEventHub should not return nil")
	}
	if hub.clients == nil {
		t.Error("clients map should be initialized")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("new hub should have 0 clients, got %d", hub.ClientCount())
	}
}

func TestEventHub_SubscribeUnsubscribe(t *testing.T) {
	hub := NewEventHub()

	hub.Subscribe("client1")
	hub.Subscribe("client2")
	if hub.ClientCount() != 2 {
		t.Fatalf("expected 2 clients, got %d", hub.ClientCount())
	}

	hub.Unsubscribe("client1")
	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client after unsubscribe, got %d", hub.ClientCount())
	}

	hub.Unsubscribe("nonexistent")
	if hub.ClientCount() != 1 {
		t.Errorf("unsubscribing nonexistent should not affect count, got %d", hub.ClientCount())
	}
}

func TestEventHub_PublishMultipleClients(t *testing.T) {
	hub := NewEventHub()

	ch1 := hub.Subscribe("client1")
	ch2 := hub.Subscribe("client2")

	hub.emit("task", ActionUpdated, 7, 1)

	for i, ch := range []<-chan ChangeEvent{ch1, ch2} {
		select {
		case received := <-ch:
			if received.ID != 7 || received.Entity != "task" || received.Action != ActionUpdated {
				t.Errorf("client%d: unexpected event %+v", i+1, received)
			}
			if received.ProjectID != 1 {
				t.Errorf("client%d: ProjectID = %d, expected 1", i+1, received.ProjectID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client%d: timed out waiting for event", i+1)
		}
	}
}

func TestEventHub_NonBlockingPublish(t *testing.T) {
	hub := NewEventHub()

	hub.Subscribe("slow_client")

	for i := 0; i < 200; i++ {
		hub.Publish(ChangeEvent{ID: uint(i)})
	}
}

func TestEventHub_NilIsSafe(t *testing.T) {
	var hub *EventHub
	hub.emit("project", ActionCreated, 1, 1)
	if hub.ClientCount() != 0 {
		t.Error("nil hub should report 0 clients")
	}
}

package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func newTestClient(tenantID string) *Client {
	return &Client{
		ID:     "test-" + tenantID,
		Tenant: tenantID,
		Send:   make(chan []byte, 8),
	}
}

func TestHub_BroadcastToTenant(t *testing.T) {
	hub := NewHub()
	client := newTestClient("acme")
	hub.Register(client)

	hub.Broadcast(Event{
		Type:      "new-record",
		Tenant:    "acme",
		Timestamp: time.Now(),
		Data:      json.RawMessage(`{"id":"r1"}`),
	})

	select {
	case msg := <-client.Send:
		var evt Event
		if err := json.Unmarshal(msg, &evt); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if evt.Type != "new-record" {
			t.Errorf("expected type new-record, got %q", evt.Type)
		}
		if evt.Tenant != "acme" {
			t.Errorf("expected tenant acme, got %q", evt.Tenant)
		}
	default:
		t.Fatal("expected event on client channel")
	}
}

func TestHub_TenantIsolation(t *testing.T) {
	hub := NewHub()
	acme := newTestClient("acme")
	beta := newTestClient("beta")
	hub.Register(acme)
	hub.Register(beta)

	hub.Broadcast(Event{Type: "new-record", Tenant: "acme", Timestamp: time.Now()})

	if len(acme.Send) != 1 {
		t.Errorf("expected 1 event for acme, got %d", len(acme.Send))
	}
	if len(beta.Send) != 0 {
		t.Errorf("expected 0 events for beta, got %d", len(beta.Send))
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	client := newTestClient("acme")
	hub.Register(client)

	if hub.ClientCount("acme") != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount("acme"))
	}

	hub.Unregister(client)

	if hub.ClientCount("acme") != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount("acme"))
	}

	if _, ok := <-client.Send; ok {
		t.Error("expected Send channel to be closed")
	}

	// Unregistering twice must not panic.
	hub.Unregister(client)
}

func TestHub_SkipsFullClientBuffer(t *testing.T) {
	hub := NewHub()
	client := &Client{ID: "slow", Tenant: "acme", Send: make(chan []byte)}
	hub.Register(client)

	done := make(chan struct{})
	go func() {
		hub.Broadcast(Event{Type: "new-record", Tenant: "acme", Timestamp: time.Now()})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client buffer")
	}
}

func TestHub_Publish(t *testing.T) {
	hub := NewHub()
	client := newTestClient("acme")
	hub.Register(client)

	if err := hub.Publish(context.Background(), Event{Type: "new-record", Tenant: "acme", Timestamp: time.Now()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.Send) != 1 {
		t.Errorf("expected 1 event, got %d", len(client.Send))
	}
}

package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/garagebook/internal/archive"
	"github.com/dukerupert/garagebook/internal/backup"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, orgID string) *Client {
	return &Client{
		hub:   hub,
		conn:  nil,
		orgID: orgID,
		send:  make(chan []byte, sendBufferSize),
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return got
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
	return Message{}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, "org-a")
	c2 := mockClient(hub, "org-b")

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}
	if got := hub.OrgClientCount("org-a"); got != 1 {
		t.Fatalf("expected 1 client in org-a, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}
	if got := hub.OrgClientCount("org-a"); got != 0 {
		t.Fatalf("expected 0 clients in org-a, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, "org-a")
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastOrg(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, "org-a")
	c2 := mockClient(hub, "org-a")
	other := mockClient(hub, "org-b")
	hub.Register(c1)
	hub.Register(c2)
	hub.Register(other)

	hub.BroadcastOrg("org-a", NewMessage("vehicle", "created", "veh-1", map[string]any{"customer_id": "cust-1"}))

	for _, c := range []*Client{c1, c2} {
		got := receive(t, c)
		if got.Type != "vehicle_created" {
			t.Errorf("expected type vehicle_created, got %s", got.Type)
		}
		if got.ID != "veh-1" {
			t.Errorf("expected id veh-1, got %s", got.ID)
		}
		if got.Extra["customer_id"] != "cust-1" {
			t.Errorf("expected customer_id cust-1, got %v", got.Extra["customer_id"])
		}
	}

	select {
	case <-other.send:
		t.Error("client of another organization received the message")
	default:
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
	hub.Unregister(other)
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	hub.BroadcastOrg("org-a", NewMessage("quote", "deleted", "q-1", nil))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, "org-a")
	hub.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.BroadcastOrg("org-a", NewMessage("test", "fill", "", nil))
	}

	// This should drop the message, not panic or block
	hub.BroadcastOrg("org-a", NewMessage("test", "dropped", "", nil))

	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("service_record", "updated", "sr-5", nil)
	if msg.Type != "service_record_updated" {
		t.Errorf("expected type service_record_updated, got %s", msg.Type)
	}
	if msg.Entity != "service_record" {
		t.Errorf("expected entity service_record, got %s", msg.Entity)
	}
	if msg.Action != "updated" {
		t.Errorf("expected action updated, got %s", msg.Action)
	}
	if msg.ID != "sr-5" {
		t.Errorf("expected id sr-5, got %s", msg.ID)
	}
}

func TestBackupImportedCallback(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, "org-a")
	hub.Register(c)
	defer hub.Unregister(c)

	notify := BackupImported(hub)
	notify("org-a", backup.Result{
		Version: 2,
		Counts:  backup.Counts{"customers": 3, "vehicles": 2},
		Files:   archive.FileReport{Written: 4, Skipped: 1},
		Archive: true,
	})

	got := receive(t, c)
	if got.Type != "backup_imported" {
		t.Errorf("expected type backup_imported, got %s", got.Type)
	}
	if got.Extra["rows"] != float64(5) {
		t.Errorf("expected rows 5, got %v", got.Extra["rows"])
	}
	if got.Extra["files_written"] != float64(4) {
		t.Errorf("expected files_written 4, got %v", got.Extra["files_written"])
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		orgID := "org-a"
		if i%2 == 1 {
			orgID = "org-b"
		}
		go func() {
			defer wg.Done()
			c := mockClient(hub, orgID)
			hub.Register(c)
			hub.BroadcastOrg(orgID, NewMessage("test", "concurrent", "", nil))
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

package push

import (
	"testing"
	"time"

	"github.com/tododos/tododos/internal/todo"
)

// startTestHub starts a hub on an ephemeral port serving the given
// snapshot.
func startTestHub(t *testing.T, snapshot []todo.List) *Hub {
	t.Helper()
	hub := NewHub(&Config{
		Port:     0,
		Snapshot: func() []todo.List { return snapshot },
	})
	if err := hub.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() { _ = hub.Stop() })
	return hub
}

func testLists(name string) []todo.List {
	now := time.Now()
	return []todo.List{{ID: "l1", Name: name, CreatedAt: now, UpdatedAt: now}}
}

func waitForPayload(t *testing.T, payloads <-chan []todo.List, wantName string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case lists := <-payloads:
			if len(lists) == 1 && lists[0].Name == wantName {
				return
			}
		case <-deadline:
			t.Fatalf("payload with list %q never arrived", wantName)
		}
	}
}

func TestSubscribe_ReceivesSnapshotOnConnect(t *testing.T) {
	hub := startTestHub(t, testLists("Snapshot"))

	payloads := make(chan []todo.List, 10)
	stop, err := Subscribe(hub.Addr(), nil, func(lists []todo.List) {
		payloads <- lists
	})
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	defer stop()

	waitForPayload(t, payloads, "Snapshot")
}

func TestBroadcastLists_ReachesSubscriber(t *testing.T) {
	hub := startTestHub(t, nil)

	payloads := make(chan []todo.List, 10)
	stop, err := Subscribe(hub.Addr(), nil, func(lists []todo.List) {
		payloads <- lists
	})
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	defer stop()

	// The snapshot arrives first; subscriber registration precedes it,
	// so a broadcast after connect always reaches the client.
	hub.BroadcastLists(testLists("Update"))
	waitForPayload(t, payloads, "Update")
}

func TestSubscribe_StopDisconnects(t *testing.T) {
	hub := startTestHub(t, nil)

	stop, err := Subscribe(hub.Addr(), nil, func([]todo.List) {})
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for hub.ClientCount() != 1 {
		select {
		case <-deadline:
			t.Fatal("subscriber never registered")
		case <-time.After(10 * time.Millisecond):
		}
	}

	stop()
	stop() // safe to call twice

	deadline = time.After(3 * time.Second)
	for hub.ClientCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("subscriber never deregistered after stop")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSubscribe_NoHub(t *testing.T) {
	if _, err := Subscribe("127.0.0.1:1", nil, func([]todo.List) {}); err == nil {
		t.Error("Subscribe() succeeded with no hub listening")
	}
}

package realtime

import (
	"encoding/json"
	"testing"
	"time"
)

type testRecord struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
}

func waitEvent(t *testing.T, c *Client, name string) Event {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-c.Send:
			if ev.Name == name {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %q event queued", name)
		}
	}
}

func TestRelay_DeliversToRegisteredReceiver(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(discardLogger())
	relay := NewRelay(discardLogger(), reg)

	bob := newTestClient("conn-bob", "bob")
	reg.Attach(bob)

	rec := testRecord{ID: "m1", SenderID: "alice", ReceiverID: "bob", Text: "hi"}
	if !relay.Deliver("bob", rec) {
		t.Fatalf("expected delivery to registered receiver")
	}

	ev := waitEvent(t, bob, EventNewMessage)
	var got testRecord
	if err := json.Unmarshal(ev.Data, &got); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if got != rec {
		t.Fatalf("expected %+v, got %+v", rec, got)
	}
}

func TestRelay_OfflineReceiverIsSilentlySkipped(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(discardLogger())
	relay := NewRelay(discardLogger(), reg)

	if relay.Deliver("nobody", testRecord{ID: "m1"}) {
		t.Fatalf("expected no delivery for an offline receiver")
	}
}

func TestRelay_DetachedReceiverGetsNothing(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(discardLogger())
	relay := NewRelay(discardLogger(), reg)

	bob := newTestClient("conn-bob", "bob")
	reg.Attach(bob)
	reg.Detach(bob)

	if relay.Deliver("bob", testRecord{ID: "m1"}) {
		t.Fatalf("expected no delivery after detach")
	}
}

func TestRelay_FullQueueDropsWithoutBlocking(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(discardLogger())
	relay := NewRelay(discardLogger(), reg)

	bob := NewClient("conn-bob", "bob", 1)
	reg.Attach(bob)

	// The attach presence snapshot fills the single-slot queue.
	done := make(chan bool, 1)
	go func() { done <- relay.Deliver("bob", testRecord{ID: "m1"}) }()

	select {
	case delivered := <-done:
		if delivered {
			t.Fatalf("expected drop on a full queue")
		}
	case <-time.After(time.Second):
		t.Fatalf("deliver blocked on a full queue")
	}
}

func TestRelay_DeliveryAfterReconnectTargetsNewConnection(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(discardLogger())
	relay := NewRelay(discardLogger(), reg)

	old := newTestClient("conn-1", "bob")
	reg.Attach(old)

	fresh := newTestClient("conn-2", "bob")
	reg.Attach(fresh)

	if !relay.Deliver("bob", testRecord{ID: "m1", Text: "after reconnect"}) {
		t.Fatalf("expected delivery to the reconnected client")
	}
	waitEvent(t, fresh, EventNewMessage)
}

package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func newTestGatewayServer(t *testing.T) (*Registry, *httptest.Server) {
	t.Helper()
	t.Setenv("NEXUS_WS_ORIGIN_REQUIRED", "false")

	reg := NewRegistry(discardLogger())
	g := NewGateway(discardLogger(), reg)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.HandleWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return reg, srv
}

func dialTestWS(t *testing.T, ctx context.Context, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?user_id=" + userID
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", userID, err)
	}
	return conn
}

func readWireEvent(t *testing.T, ctx context.Context, conn *websocket.Conn) Event {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	return ev
}

func waitForAttachedTransports(t *testing.T, reg *Registry, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		reg.mu.RLock()
		n := len(reg.conns)
		reg.mu.RUnlock()
		if n == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("attached transports = %d, want %d", n, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestGateway_DisplacementClosesOldTransport(t *testing.T) {
	reg, srv := newTestGatewayServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	first := dialTestWS(t, ctx, srv, "alice")
	defer first.Close(websocket.StatusNormalClosure, "")

	if ev := readWireEvent(t, ctx, first); ev.Name != EventPresence {
		t.Fatalf("expected a presence snapshot, got %q", ev.Name)
	}

	second := dialTestWS(t, ctx, srv, "alice")
	defer second.Close(websocket.StatusNormalClosure, "")

	// The displaced transport gets a close frame, not silence.
	var closeErr error
	for i := 0; i < 5 && closeErr == nil; i++ {
		if _, _, err := first.Read(ctx); err != nil {
			closeErr = err
		}
	}
	if closeErr == nil {
		t.Fatalf("expected the displaced connection to be closed")
	}
	if got := websocket.CloseStatus(closeErr); got != websocket.StatusPolicyViolation {
		t.Fatalf("close status = %v, want %v", got, websocket.StatusPolicyViolation)
	}

	// The stale transport leaves the registry once its handler unwinds,
	// and the user stays registered on the new connection.
	waitForAttachedTransports(t, reg, 1)
	cur := reg.Lookup("alice")
	if cur == nil {
		t.Fatalf("expected alice to remain registered after displacement")
	}

	if ev := readWireEvent(t, ctx, second); ev.Name != EventPresence {
		t.Fatalf("expected a presence snapshot on the new connection, got %q", ev.Name)
	}
}

func TestGateway_AnonymousDialObservesPresence(t *testing.T) {
	reg, srv := newTestGatewayServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	observer := dialTestWS(t, ctx, srv, "")
	defer observer.Close(websocket.StatusNormalClosure, "")

	ev := readWireEvent(t, ctx, observer)
	if ev.Name != EventPresence {
		t.Fatalf("expected a presence snapshot, got %q", ev.Name)
	}
	var ids []string
	if err := json.Unmarshal(ev.Data, &ids); err != nil {
		t.Fatalf("decode presence: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected an empty presence set, got %v", ids)
	}
	if got := len(reg.OnlineUserIDs()); got != 0 {
		t.Fatalf("anonymous transport must not enter the presence set, got %d users", got)
	}
}

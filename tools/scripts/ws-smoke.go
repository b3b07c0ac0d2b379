// Package main provides a CI-friendly WebSocket smoke test for the
// Nexus realtime gateway.
//
// It validates:
//   - handshake with a browser-like Origin header
//   - immediate presence snapshot on attach
//   - presence fanout to every attached client on register
//   - presence update on disconnect
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/coder/websocket"
)

const maxReadBytes = 1 << 20

type event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

func main() {
	var (
		wsURL   = flag.String("url", "ws://127.0.0.1:8080/ws", "WebSocket URL")
		origin  = flag.String("origin", "http://localhost", "Origin header to send")
		userA   = flag.String("user-a", "smoke-user-a", "first user id")
		userB   = flag.String("user-b", "smoke-user-b", "second user id")
		timeout = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
	)
	flag.Parse()

	root := context.Background()

	connA := mustDial(root, *wsURL, *userA, *origin, *timeout)
	defer closeWS(connA)

	// The attach snapshot must already include A.
	mustPresenceContains(root, connA, *timeout, *userA)

	connB := mustDial(root, *wsURL, *userB, *origin, *timeout)
	defer closeWS(connB)

	// Both clients observe B coming online.
	mustPresenceContains(root, connB, *timeout, *userA, *userB)
	mustPresenceContains(root, connA, *timeout, *userA, *userB)

	closeWS(connB)

	// A observes B going offline.
	mustPresenceWithout(root, connA, *timeout, *userB)

	fmt.Printf("OK: presence round trip for %s and %s\n", *userA, *userB)
}

func mustDial(ctx context.Context, wsURL, userID, origin string, timeout time.Duration) *websocket.Conn {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, wsURL+"?user_id="+userID, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{origin}},
	})
	if err != nil {
		fatalf("dial %s: %v", userID, err)
	}
	conn.SetReadLimit(maxReadBytes)
	return conn
}

func readPresence(ctx context.Context, conn *websocket.Conn, timeout time.Duration) ([]string, error) {
	readCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		_, data, err := conn.Read(readCtx)
		if err != nil {
			return nil, err
		}
		var ev event
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("bad event json: %w", err)
		}
		if ev.Name != "presence" {
			continue
		}
		var ids []string
		if err := json.Unmarshal(ev.Data, &ids); err != nil {
			return nil, fmt.Errorf("bad presence payload: %w", err)
		}
		return ids, nil
	}
}

func mustPresenceContains(ctx context.Context, conn *websocket.Conn, timeout time.Duration, want ...string) {
	deadline := time.Now().Add(timeout)
	for {
		ids, err := readPresence(ctx, conn, time.Until(deadline))
		if err != nil {
			fatalf("read presence: %v", err)
		}
		ok := true
		for _, w := range want {
			if !slices.Contains(ids, w) {
				ok = false
				break
			}
		}
		if ok {
			return
		}
		if time.Now().After(deadline) {
			fatalf("presence %v never contained %v", ids, want)
		}
	}
}

func mustPresenceWithout(ctx context.Context, conn *websocket.Conn, timeout time.Duration, gone string) {
	deadline := time.Now().Add(timeout)
	for {
		ids, err := readPresence(ctx, conn, time.Until(deadline))
		if err != nil {
			fatalf("read presence: %v", err)
		}
		if !slices.Contains(ids, gone) {
			return
		}
		if time.Now().After(deadline) {
			fatalf("presence still contains %q", gone)
		}
	}
}

func closeWS(conn *websocket.Conn) {
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}

package realtime

import (
	"log/slog"
	"sort"
	"sync"
)

// Registry is the authoritative map of online users. It tracks every
// attached transport (registered or anonymous) and, for each user id,
// the single connection that currently represents that user.
//
// Ordering contract: presence announcements are enqueued to every
// attached client inside the registry critical section. Enqueueing is a
// non-blocking channel send, never network I/O; actual writes happen on
// each client's writer goroutine. Any two clients that observe the same
// pair of announcements observe them in the same relative order.
type Registry struct {
	log *slog.Logger

	mu    sync.RWMutex
	conns map[string]*Client // conn id -> every attached transport
	users map[string]*Client // user id -> current registered connection
}

// NewRegistry builds an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:   log,
		conns: make(map[string]*Client),
		users: make(map[string]*Client),
	}
}

// Attach adds a transport and, when it carries a user identity,
// registers it as that user's connection. Registration is last-write-
// wins: an existing connection for the same user is displaced and shut
// down. Every attach triggers a presence announcement.
func (r *Registry) Attach(c *Client) {
	var displaced *Client

	r.mu.Lock()
	r.conns[c.ConnID] = c
	if c.UserID != "" {
		if prev, ok := r.users[c.UserID]; ok && prev != c {
			displaced = prev
		}
		r.users[c.UserID] = c
	}
	// Close the displaced client before announcing so TrySend skips it:
	// the old transport never observes a post-displacement snapshot.
	if displaced != nil {
		displaced.Close()
	}
	metrics.connections.Set(float64(len(r.conns)))
	metrics.onlineUsers.Set(float64(len(r.users)))
	r.announceLocked()
	r.mu.Unlock()

	if displaced != nil {
		r.log.Info("connection displaced",
			slog.String("user_id", c.UserID),
			slog.String("old_conn_id", displaced.ConnID),
			slog.String("new_conn_id", c.ConnID))
	}
}

// Detach removes a transport. The user mapping is cleared only when it
// still points at this exact connection; a stale handle left over from
// a displacement must not evict the newer registration. Idempotent.
// Every detach triggers a presence announcement.
func (r *Registry) Detach(c *Client) {
	r.mu.Lock()
	delete(r.conns, c.ConnID)
	if c.UserID != "" {
		if cur, ok := r.users[c.UserID]; ok && cur.ConnID == c.ConnID {
			delete(r.users, c.UserID)
		}
	}
	metrics.connections.Set(float64(len(r.conns)))
	metrics.onlineUsers.Set(float64(len(r.users)))
	r.announceLocked()
	r.mu.Unlock()
}

// Lookup returns the connection currently registered for userID, or nil.
func (r *Registry) Lookup(userID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users[userID]
}

// OnlineUserIDs returns the sorted set of registered user ids.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.onlineUserIDsLocked()
}

func (r *Registry) onlineUserIDsLocked() []string {
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// announceLocked pushes a full presence snapshot to every attached
// transport, anonymous ones included. Callers must hold r.mu.
func (r *Registry) announceLocked() {
	ev := NewPresenceEvent(r.onlineUserIDsLocked())
	dropped := 0
	for _, c := range r.conns {
		if !c.TrySend(ev) {
			dropped++
		}
	}
	metrics.presenceBroadcasts.Inc()
	if dropped > 0 {
		r.log.Warn("presence announcement dropped for slow clients",
			slog.Int("dropped", dropped),
			slog.Int("attached", len(r.conns)))
	}
}

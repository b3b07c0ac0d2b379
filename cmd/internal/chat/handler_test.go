package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus/cmd/identity"
	"nexus/cmd/internal/media"
)

const testImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg=="

// captureRelay records deliveries and snapshots the store's history at
// delivery time, so tests can assert the message was persisted first.
type captureRelay struct {
	store      Store
	delivered  []Message
	seenInDB   bool
	deliverOK  bool
	shouldFail bool
}

func (r *captureRelay) Deliver(receiverID string, record any) bool {
	msg, ok := record.(Message)
	if !ok {
		return false
	}
	r.delivered = append(r.delivered, msg)
	if r.store != nil {
		hist, err := r.store.HistoryBetween(context.Background(), msg.SenderID, msg.ReceiverID)
		if err == nil {
			for _, m := range hist {
				if m.ID == msg.ID {
					r.seenInDB = true
				}
			}
		}
	}
	if r.shouldFail {
		return false
	}
	r.deliverOK = true
	return true
}

type failingUploader struct{}

func (failingUploader) Upload(context.Context, string) (string, error) {
	return "", media.ErrInvalidImage
}

type fixture struct {
	handler  *Handler
	mux      *http.ServeMux
	users    *identity.InMemoryStore
	messages *InMemoryStore
	relay    *captureRelay

	alice identity.User
	bob   identity.User
}

func newFixture(t *testing.T, opts ...func(*fixture)) *fixture {
	t.Helper()

	f := &fixture{
		users:    identity.NewInMemoryStore(),
		messages: NewInMemoryStore(),
	}
	f.relay = &captureRelay{store: f.messages}

	ctx := context.Background()
	var err error
	f.alice, err = f.users.CreateUser(ctx, identity.CreateUserInput{
		Email: "alice@example.com", FullName: "Alice", Password: "correct-horse",
	})
	require.NoError(t, err)
	f.bob, err = f.users.CreateUser(ctx, identity.CreateUserInput{
		Email: "bob@example.com", FullName: "Bob", Password: "correct-horse",
	})
	require.NoError(t, err)

	current := func(r *http.Request) (string, bool) {
		id := r.Header.Get("X-Test-User")
		return id, id != ""
	}

	f.handler = NewHandler(
		slog.New(slog.DiscardHandler),
		DefaultConfig(),
		f.users, f.messages, media.PassthroughUploader{}, f.relay, current,
	)
	for _, opt := range opts {
		opt(f)
	}

	f.mux = http.NewServeMux()
	f.handler.Register(f.mux)
	return f
}

func (f *fixture) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleSend_PersistsThenRelays(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/messages/send/"+f.bob.ID, f.alice.ID, `{"text":"hello bob"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var msg Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, f.alice.ID, msg.SenderID)
	assert.Equal(t, f.bob.ID, msg.ReceiverID)
	assert.Equal(t, "hello bob", msg.Text)
	assert.Len(t, msg.ID, 26)

	require.Len(t, f.relay.delivered, 1)
	assert.Equal(t, msg.ID, f.relay.delivered[0].ID)
	assert.True(t, f.relay.seenInDB, "message must be persisted before the relay fires")
}

func TestHandleSend_RelayFailureStillSucceeds(t *testing.T) {
	t.Parallel()
	f := newFixture(t, func(f *fixture) { f.relay.shouldFail = true })

	rec := f.do(t, http.MethodPost, "/api/messages/send/"+f.bob.ID, f.alice.ID, `{"text":"offline ok"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	hist, err := f.messages.HistoryBetween(context.Background(), f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "offline ok", hist[0].Text)
}

func TestHandleSend_ImageOnlyMessage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	body := `{"image":"` + testImage + `"}`
	rec := f.do(t, http.MethodPost, "/api/messages/send/"+f.bob.ID, f.alice.ID, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var msg Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Empty(t, msg.Text)
	assert.Equal(t, testImage, msg.ImageURL)
}

func TestHandleSend_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	cases := []struct {
		name   string
		user   string
		target string
		body   string
		status int
	}{
		{"unauthenticated", "", "x", `{"text":"hi"}`, http.StatusUnauthorized},
		{"empty body", f.alice.ID, f.bob.ID, `{}`, http.StatusBadRequest},
		{"blank text", f.alice.ID, f.bob.ID, `{"text":"   "}`, http.StatusBadRequest},
		{"self message", f.alice.ID, f.alice.ID, `{"text":"hi"}`, http.StatusBadRequest},
		{"unknown receiver", f.alice.ID, "01JZZZZZZZZZZZZZZZZZZZZZZZ", `{"text":"hi"}`, http.StatusNotFound},
		{"bad json", f.alice.ID, f.bob.ID, `{"text":`, http.StatusBadRequest},
		{"unknown field", f.alice.ID, f.bob.ID, `{"text":"hi","extra":1}`, http.StatusBadRequest},
		{"non data uri image", f.alice.ID, f.bob.ID, `{"image":"https://x/y.png"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/messages/send/"+tc.target, tc.user, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}

	assert.Empty(t, f.relay.delivered, "failed sends must not reach the relay")
}

func TestHandleSend_UploadFailureIsBadGateway(t *testing.T) {
	t.Parallel()
	f := newFixture(t, func(f *fixture) {
		f.handler.uploader = failingUploader{}
	})

	body := `{"image":"` + testImage + `"}`
	rec := f.do(t, http.MethodPost, "/api/messages/send/"+f.bob.ID, f.alice.ID, body)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	hist, err := f.messages.HistoryBetween(context.Background(), f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, hist, "failed uploads must not persist a message")
}

func TestHandleHistory_OrderedOldestFirst(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for _, text := range []string{"one", "two", "three"} {
		rec := f.do(t, http.MethodPost, "/api/messages/send/"+f.bob.ID, f.alice.ID, `{"text":"`+text+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/api/messages/"+f.alice.ID, f.bob.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var msgs []Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	require.Len(t, msgs, 3)
	assert.Equal(t, "one", msgs[0].Text)
	assert.Equal(t, "three", msgs[2].Text)
}

func TestHandleSidebar_ExcludesCallerSortedByName(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.users.CreateUser(context.Background(), identity.CreateUserInput{
		Email: "zed@example.com", FullName: "Aaron", Password: "correct-horse",
	})
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/messages/users", f.alice.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var users []userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "Aaron", users[0].FullName)
	assert.Equal(t, "Bob", users[1].FullName)
	for _, u := range users {
		assert.NotEqual(t, f.alice.ID, u.ID)
	}

	raw := rec.Body.String()
	assert.NotContains(t, raw, "password", "password material must never serialize")
}

func TestHandleSidebar_Unauthenticated(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/messages/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

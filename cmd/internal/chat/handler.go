package chat

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"nexus/cmd/identity"
	"nexus/cmd/internal/media"
)

// Deliverer pushes a persisted message to its receiver's live
// connection, when one exists. Implemented by the realtime relay.
type Deliverer interface {
	Deliver(receiverID string, record any) bool
}

// CurrentUserFunc resolves the authenticated user id from a request.
type CurrentUserFunc func(r *http.Request) (string, bool)

// Handler wires the messaging HTTP endpoints to the stores, the media
// uploader, and the realtime relay.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	users    identity.Store
	messages Store
	uploader media.Uploader
	relay    Deliverer
	current  CurrentUserFunc
}

// NewHandler constructs a chat Handler.
func NewHandler(log *slog.Logger, cfg Config, users identity.Store, messages Store, uploader media.Uploader, relay Deliverer, current CurrentUserFunc) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if uploader == nil {
		uploader = media.PassthroughUploader{}
	}
	return &Handler{
		log:      log,
		cfg:      cfg,
		users:    users,
		messages: messages,
		uploader: uploader,
		relay:    relay,
		current:  current,
	}
}

// Register wires chat routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("GET /api/messages/users", h.handleSidebar)
	mux.HandleFunc("GET /api/messages/{id}", h.handleHistory)
	mux.HandleFunc("POST /api/messages/send/{id}", h.handleSend)
}

type userResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	ProfilePic string    `json:"profilePic"`
	Bio        string    `json:"bio"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		ProfilePic: u.ProfilePic,
		Bio:        u.Bio,
		CreatedAt:  u.CreatedAt,
	}
}

type sendRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// handleSidebar returns every other user, full name ascending. The
// password hash never leaves the store layer.
func (h *Handler) handleSidebar(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.current(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	users, err := h.users.ListUsersExcept(r.Context(), userID)
	if err != nil {
		h.log.Error("chat.sidebar.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleHistory returns the full two-way conversation with the user in
// the path, oldest first.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.current(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	otherID := strings.TrimSpace(r.PathValue("id"))
	if otherID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing user id")
		return
	}

	msgs, err := h.messages.HistoryBetween(r.Context(), userID, otherID)
	if err != nil {
		h.log.Error("chat.history.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// handleSend validates, uploads the image if present, persists, then
// relays. Persistence happens before any notification, and a relay
// failure never affects the response.
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	senderID, ok := h.current(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	receiverID := strings.TrimSpace(r.PathValue("id"))
	if receiverID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing receiver id")
		return
	}
	if receiverID == senderID {
		writeError(w, http.StatusBadRequest, "invalid_request", "cannot message yourself")
		return
	}

	var req sendRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	text := strings.TrimSpace(req.Text)
	image := strings.TrimSpace(req.Image)
	if text == "" && image == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "text or image is required")
		return
	}
	if len([]rune(text)) > h.cfg.MaxTextChars {
		writeError(w, http.StatusBadRequest, "invalid_request", "message text too long")
		return
	}

	ctx := r.Context()

	if _, err := h.users.GetUserByID(ctx, receiverID); err != nil {
		if identity.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "receiver not found")
			return
		}
		h.log.Error("chat.send.receiver_lookup.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	imageURL := ""
	if image != "" {
		if err := media.ValidateDataURI(image); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_image", "image must be a base64 data uri")
			return
		}
		url, err := h.uploader.Upload(ctx, image)
		if err != nil {
			h.log.Error("chat.send.upload.fail", "err", err)
			writeError(w, http.StatusBadGateway, "upload_failed", "image upload failed")
			return
		}
		imageURL = url
	}

	msg, err := h.messages.SaveMessage(ctx, SaveMessageInput{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		ImageURL:   imageURL,
		Now:        time.Now().UTC(),
	})
	if err != nil {
		h.log.Error("chat.send.save.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	if h.relay != nil {
		if !h.relay.Deliver(msg.ReceiverID, msg) {
			h.log.Debug("chat.send.relay.skip", "message_id", msg.ID, "receiver_id", msg.ReceiverID)
		}
	}

	writeJSON(w, http.StatusCreated, msg)
}

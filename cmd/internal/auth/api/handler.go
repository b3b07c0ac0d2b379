package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"nexus/cmd/identity"
	"nexus/cmd/internal/auth/session"
	"nexus/cmd/internal/media"
)

// Handler wires the account HTTP endpoints to the identity store and
// the session token manager.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	sessCfg  session.Config
	users    identity.Store
	tokens   *session.Manager
	uploader media.Uploader

	dummyHash string
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, sessCfg session.Config, users identity.Store, tokens *session.Manager, uploader media.Uploader) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if users == nil {
		return nil, errors.New("authapi: nil identity store")
	}
	if tokens == nil {
		return nil, errors.New("authapi: nil token manager")
	}
	if uploader == nil {
		uploader = media.PassthroughUploader{}
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		sessCfg:  sessCfg,
		users:    users,
		tokens:   tokens,
		uploader: uploader,
	}

	// Dummy hash for timing-resistant login checks.
	if hash, err := identity.HashPassword("dummy-password-for-timing-only"); err == nil {
		h.dummyHash = hash
	}

	return h, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /api/auth/signup", h.handleSignup)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.HandleFunc("GET /api/auth/check", h.handleCheck)
	mux.HandleFunc("PUT /api/auth/update-profile", h.handleUpdateProfile)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	user, err := h.users.CreateUser(ctx, identity.CreateUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Now:      now,
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			writeError(w, http.StatusConflict, "email_taken", "email already registered")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", "email, full name, and a password of at least 6 characters are required")
		default:
			h.log.Error("auth.signup.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	token, exp, err := h.tokens.Issue(now, user.ID)
	if err != nil {
		h.log.Error("auth.signup.issue_token.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.setSessionCookie(w, token, exp)
	writeJSON(w, http.StatusCreated, authResponse{User: toUserResponse(user), Token: token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	email := identity.NormalizeEmail(req.Email)
	password := req.Password
	if email == "" || password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	ua, err := h.users.GetUserAuthByEmail(ctx, email)
	if err != nil {
		// Timing resistance: perform a dummy verify when user is missing.
		if h.dummyHash != "" {
			_, _ = identity.VerifyPassword(password, h.dummyHash)
		}
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	okPw, err := identity.VerifyPassword(password, ua.PasswordHash)
	if err != nil || !okPw {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	token, exp, err := h.tokens.Issue(now, ua.User.ID)
	if err != nil {
		h.log.Error("auth.login.issue_token.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.setSessionCookie(w, token, exp)
	writeJSON(w, http.StatusOK, authResponse{User: toUserResponse(ua.User), Token: token})
}

// handleLogout clears the session cookie. Tokens are stateless, so a
// copy held elsewhere stays valid until expiry.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if identity.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "account no longer exists")
			return
		}
		h.log.Error("auth.check.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.FullName == nil && req.Bio == nil && req.ProfilePic == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "no fields to update")
		return
	}

	ctx := r.Context()

	// Profile pictures arrive as data URIs and are hosted before the
	// URL is stored.
	if req.ProfilePic != nil {
		pic := strings.TrimSpace(*req.ProfilePic)
		if pic == "" {
			req.ProfilePic = nil
		} else {
			if err := media.ValidateDataURI(pic); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_image", "profilePic must be a base64 data uri")
				return
			}
			url, err := h.uploader.Upload(ctx, pic)
			if err != nil {
				h.log.Error("auth.update_profile.upload.fail", "err", err)
				writeError(w, http.StatusBadGateway, "upload_failed", "image upload failed")
				return
			}
			req.ProfilePic = &url
		}
	}

	user, err := h.users.UpdateProfile(ctx, identity.UpdateProfileInput{
		UserID:     userID,
		FullName:   req.FullName,
		Bio:        req.Bio,
		ProfilePic: req.ProfilePic,
		Now:        time.Now().UTC(),
	})
	if err != nil {
		switch {
		case identity.IsNotFound(err):
			writeError(w, http.StatusUnauthorized, "unauthorized", "account no longer exists")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", "no valid fields to update")
		default:
			h.log.Error("auth.update_profile.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

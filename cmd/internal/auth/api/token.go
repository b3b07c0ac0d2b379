package authapi

import (
	"net/http"
	"strings"
	"time"
)

// tokenFromRequest extracts the bearer token. The Authorization header
// wins over the session cookie when both are present.
func (h *Handler) tokenFromRequest(r *http.Request) (string, bool) {
	if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			token = strings.TrimSpace(token)
			if token != "" {
				return token, true
			}
		}
		// A malformed Authorization header never falls through to the cookie.
		return "", false
	}

	c, err := r.Cookie(h.sessCfg.CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// CurrentUser resolves the authenticated user id from a request.
// Handed to the chat surface so both share one auth path.
func (h *Handler) CurrentUser(r *http.Request) (string, bool) {
	token, ok := h.tokenFromRequest(r)
	if !ok {
		return "", false
	}
	userID, err := h.tokens.Verify(token)
	if err != nil {
		return "", false
	}
	return userID, true
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	sameSite := http.SameSiteLaxMode
	if h.sessCfg.CookieSecure {
		// Cross-site deployments need SameSite=None, which requires Secure.
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessCfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires) / time.Second),
		HttpOnly: true,
		Secure:   h.sessCfg.CookieSecure,
		SameSite: sameSite,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	sameSite := http.SameSiteLaxMode
	if h.sessCfg.CookieSecure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessCfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.sessCfg.CookieSecure,
		SameSite: sameSite,
	})
}

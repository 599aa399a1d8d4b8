package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/skillexchange/modpanel/internal/moderation"
	"github.com/skillexchange/modpanel/internal/session"
)

// SessionHandler exposes login, logout and the current identity. The server
// holds a single admin session; the browser cookie only marks that the
// caller went through login.
type SessionHandler struct {
	manager *session.Manager
	cache   *moderation.Cache
	secure  bool
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(manager *session.Manager, cache *moderation.Cache) *SessionHandler {
	return &SessionHandler{manager: manager, cache: cache}
}

// SetSecureCookies marks the session cookie Secure, for deployments behind TLS.
func (h *SessionHandler) SetSecureCookies(secure bool) {
	h.secure = secure
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Login handles POST /admin/api/session.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if !h.manager.Login(r.Context(), req.Email, req.Password, req.RememberMe) {
		writeError(w, http.StatusUnauthorized, h.manager.Error())
		return
	}

	cookie := &http.Cookie{
		Name:     session.CookieName,
		Value:    uuid.Must(uuid.NewV7()).String(),
		Path:     "/admin",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if req.RememberMe {
		cookie.Expires = time.Now().Add(session.RememberFor)
	}
	http.SetCookie(w, cookie)

	writeData(w, http.StatusOK, h.manager.Snapshot(), "Login successful")
}

// Logout handles DELETE /admin/api/session.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.manager.Logout(r.Context())
	h.cache.Reset()

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeData(w, http.StatusOK, h.manager.Snapshot(), "Logged out")
}

// Current handles GET /admin/api/session.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.manager.Snapshot(), "")
}

// Package session holds the authenticated admin session: login, logout,
// reload from cookie or local storage, and access-token renewal on behalf of
// the API client.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/skillexchange/modpanel/internal/apiclient"
	"github.com/skillexchange/modpanel/internal/model"
)

const (
	errNoUserData   = "Invalid response from server. No user data received."
	errNotAdmin     = "Access denied. Admin privileges required."
	errLoginFailed  = "Login failed"
	fallbackAdminID = "current-admin"
	fallbackEmail   = "admin@skillexchange.com"
)

// Client is the part of the API client the session manager drives.
type Client interface {
	Login(ctx context.Context, email, password string) (*model.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
	SetToken(token string)
	SetRefreshFunc(fn apiclient.RefreshFunc)
}

// State is a point-in-time copy of the session fields.
type State struct {
	IsAuthed   bool        `json:"isAuthed"`
	Email      string      `json:"email,omitempty"`
	User       *model.User `json:"user,omitempty"`
	RememberMe bool        `json:"rememberMe"`
	Loading    bool        `json:"loading"`
	Error      string      `json:"error,omitempty"`
	ExpiresAt  *time.Time  `json:"expiresAt,omitempty"`
}

// Manager owns the admin session. It is safe for concurrent use.
type Manager struct {
	client Client
	store  Persister
	logger *slog.Logger
	now    func() time.Time

	mu           sync.RWMutex
	isAuthed     bool
	email        string
	user         *model.User
	token        string
	refreshToken string
	rememberMe   bool
	loading      bool
	err          string
}

// New creates a Manager and registers it as the client's refresh callback.
func New(client Client, store Persister, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		client: client,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	client.SetRefreshFunc(func(ctx context.Context) string {
		if m.RefreshAccessToken(ctx) {
			return m.Token()
		}
		return ""
	})
	return m
}

// Login authenticates with the backend. Only admin accounts are accepted.
// On failure the reason is available from Error.
func (m *Manager) Login(ctx context.Context, email, password string, rememberMe bool) bool {
	m.mu.Lock()
	m.loading = true
	m.err = ""
	m.mu.Unlock()

	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = errLoginFailed
		}
		m.fail(msg)
		return false
	}
	if resp == nil || resp.User == nil {
		m.fail(errNoUserData)
		return false
	}
	if !resp.User.IsAdmin {
		m.logger.Warn("login rejected: not an admin", "email", resp.User.Email)
		m.fail(errNotAdmin)
		return false
	}

	m.client.SetToken(resp.AccessToken)

	sess := model.Session{
		Email:        resp.User.Email,
		User:         resp.User,
		Token:        resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		RememberMe:   rememberMe,
	}
	m.persist(ctx, sess)

	m.mu.Lock()
	m.apply(sess)
	m.loading = false
	m.err = ""
	m.mu.Unlock()

	m.logger.Info("admin logged in", "email", sess.Email, "remember_me", rememberMe)
	return true
}

// Logout revokes the refresh token (best effort), then clears the client
// token, the persisted session, and every session field.
func (m *Manager) Logout(ctx context.Context) {
	rt := m.RefreshToken()
	if rt != "" {
		if err := m.client.Logout(ctx, rt); err != nil {
			m.logger.Warn("logout request failed", "error", err)
		}
	}

	m.client.SetToken("")

	if err := m.store.RemoveCookie(ctx, CookieName); err != nil {
		m.logger.Warn("remove session cookie", "error", err)
	}
	if err := m.store.RemoveItem(ctx, StorageKey); err != nil {
		m.logger.Warn("remove session storage", "error", err)
	}

	m.mu.Lock()
	m.isAuthed = false
	m.email = ""
	m.user = nil
	m.token = ""
	m.refreshToken = ""
	m.rememberMe = false
	m.err = ""
	m.mu.Unlock()
}

// Hydrate restores a session from the cookie, falling back to local storage.
// A session restored from local storage rewrites the cookie. It performs no
// network calls and reports whether a session was found.
func (m *Manager) Hydrate(ctx context.Context) bool {
	if raw, err := m.store.GetCookie(ctx, CookieName); err == nil && raw != "" {
		var sess model.Session
		err := json.Unmarshal([]byte(raw), &sess)
		if err == nil {
			m.restore(sess)
			m.logger.Debug("session restored from cookie", "email", sess.Email)
			return true
		}
		m.logger.Warn("parse session cookie", "error", err)
	}

	raw, err := m.store.GetItem(ctx, StorageKey)
	if err != nil || raw == "" {
		m.logger.Debug("no stored session")
		return false
	}
	var sess model.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		m.logger.Warn("parse session storage", "error", err)
		return false
	}

	if err := m.store.SetCookie(ctx, CookieName, raw, m.now().Add(RememberFor)); err != nil {
		m.logger.Warn("rewrite session cookie", "error", err)
	}
	m.restore(sess)
	m.logger.Debug("session restored from storage", "email", sess.Email)
	return true
}

// RefreshAccessToken trades the refresh token for a new access token. A
// backend failure logs the admin out. The persisted cookie, when present, is
// rewritten with the new token.
func (m *Manager) RefreshAccessToken(ctx context.Context) bool {
	rt := m.RefreshToken()
	if rt == "" {
		return false
	}

	resp, err := m.client.RefreshToken(ctx, rt)
	if err != nil || resp == nil || resp.AccessToken == "" {
		if err != nil {
			m.logger.Warn("token refresh failed", "error", err)
		} else {
			m.logger.Warn("token refresh returned no access token")
		}
		m.Logout(ctx)
		return false
	}

	m.client.SetToken(resp.AccessToken)

	m.mu.Lock()
	m.token = resp.AccessToken
	remember := m.rememberMe
	m.mu.Unlock()

	if raw, err := m.store.GetCookie(ctx, CookieName); err == nil && raw != "" {
		var sess model.Session
		if err := json.Unmarshal([]byte(raw), &sess); err != nil {
			m.logger.Warn("parse session cookie", "error", err)
		} else {
			sess.Token = resp.AccessToken
			sess.RememberMe = remember
			m.persist(ctx, sess)
		}
	}

	m.logger.Debug("access token refreshed")
	return true
}

// ClearError resets the last error message.
func (m *Manager) ClearError() {
	m.mu.Lock()
	m.err = ""
	m.mu.Unlock()
}

// Identity returns the admin id and email recorded in audit entries.
func (m *Manager) Identity() (id, email string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, email = fallbackAdminID, fallbackEmail
	if m.user != nil && m.user.ID != "" {
		id = m.user.ID
	}
	if m.email != "" {
		email = m.email
	}
	return id, email
}

// TokenExpiry returns the expiry of the current access token, or the zero
// time when there is no token or it carries no exp claim.
func (m *Manager) TokenExpiry() time.Time {
	return tokenExpiry(m.Token())
}

// Snapshot returns a copy of the session fields.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	st := State{
		IsAuthed:   m.isAuthed,
		Email:      m.email,
		User:       cloneUser(m.user),
		RememberMe: m.rememberMe,
		Loading:    m.loading,
		Error:      m.err,
	}
	token := m.token
	m.mu.RUnlock()

	if exp := tokenExpiry(token); !exp.IsZero() {
		st.ExpiresAt = &exp
	}
	return st
}

func (m *Manager) IsAuthed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isAuthed
}

func (m *Manager) Error() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshToken
}

// User returns a copy of the signed-in admin, or nil.
func (m *Manager) User() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneUser(m.user)
}

func cloneUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	out := *u
	out.Description = slices.Clone(u.Description)
	out.Skill = slices.Clone(u.Skill)
	if u.RankElo != nil {
		elo := *u.RankElo
		out.RankElo = &elo
	}
	return &out
}

func (m *Manager) fail(msg string) {
	m.mu.Lock()
	m.err = msg
	m.loading = false
	m.mu.Unlock()
}

// apply copies sess into the manager. Caller holds m.mu.
func (m *Manager) apply(sess model.Session) {
	m.isAuthed = true
	m.email = sess.Email
	m.user = sess.User
	m.token = sess.Token
	m.refreshToken = sess.RefreshToken
	m.rememberMe = sess.RememberMe
}

func (m *Manager) restore(sess model.Session) {
	m.client.SetToken(sess.Token)
	m.mu.Lock()
	m.apply(sess)
	m.mu.Unlock()
}

// persist writes sess to the cookie, and to local storage when remembered.
func (m *Manager) persist(ctx context.Context, sess model.Session) {
	data, err := json.Marshal(sess)
	if err != nil {
		m.logger.Error("encode session", "error", err)
		return
	}

	var expires time.Time
	if sess.RememberMe {
		expires = m.now().Add(RememberFor)
	}
	if err := m.store.SetCookie(ctx, CookieName, string(data), expires); err != nil {
		m.logger.Warn("write session cookie", "error", err)
	}
	if sess.RememberMe {
		if err := m.store.SetItem(ctx, StorageKey, string(data)); err != nil {
			m.logger.Warn("write session storage", "error", err)
		}
	}
}

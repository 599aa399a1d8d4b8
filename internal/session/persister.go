package session

import (
	"context"
	"time"
)

const (
	// CookieName is the cookie holding the serialized session. The dashboard
	// route guard checks for its presence.
	CookieName = "admin_session"
	// StorageKey is the local-storage fallback used when "remember me" is set.
	StorageKey = "admin_session_storage"
	// RememberFor is the lifetime of a remembered session cookie.
	RememberFor = 7 * 24 * time.Hour
)

// Persister is the client-side storage the session survives in: a cookie
// jar and a local-storage map. A zero expiry marks a session cookie.
// Lookups of missing names return an error.
type Persister interface {
	GetCookie(ctx context.Context, name string) (string, error)
	SetCookie(ctx context.Context, name, value string, expires time.Time) error
	RemoveCookie(ctx context.Context, name string) error
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

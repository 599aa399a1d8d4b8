package middleware

import (
	"net/http"
	"strings"
)

// GuardConfig describes the area protected by SessionGuard.
type GuardConfig struct {
	// CookieName is the session cookie whose presence grants access.
	CookieName string
	// Prefix is the protected path prefix, e.g. "/admin".
	Prefix string
	// LoginPath is where browsers without a session are redirected.
	LoginPath string
	// Public lists method+path pairs ("POST /admin/api/session") that are
	// reachable without a session.
	Public []string
}

// SessionGuard returns an HTTP middleware that keeps requests without a
// session cookie out of the protected prefix. Only the cookie's presence is
// checked; the backend validates the token itself. Browsers asking for HTML
// are redirected to the login page, everything else gets a 401 JSON error.
func SessionGuard(cfg GuardConfig) func(http.Handler) http.Handler {
	public := make(map[string]bool, len(cfg.Public))
	for _, p := range cfg.Public {
		public[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if !underPrefix(path, cfg.Prefix) || path == cfg.LoginPath || public[r.Method+" "+path] {
				next.ServeHTTP(w, r)
				return
			}

			if c, err := r.Cookie(cfg.CookieName); err == nil && c.Value != "" {
				next.ServeHTTP(w, r)
				return
			}

			if r.Method == http.MethodGet && wantsHTML(r) {
				http.Redirect(w, r, cfg.LoginPath, http.StatusFound)
				return
			}
			writeAuthError(w, http.StatusUnauthorized, "Authentication required. Log in to continue.")
		})
	}
}

func underPrefix(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, strings.TrimRight(prefix, "/")+"/")
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Manually construct JSON to avoid import cycle with handler package
	w.Write([]byte(`{"error":{"code":` + httpStatusString(status) + `,"message":"` + message + `"}}`))
}

func httpStatusString(code int) string {
	switch code {
	case 401:
		return "401"
	case 403:
		return "403"
	case 429:
		return "429"
	default:
		return "500"
	}
}

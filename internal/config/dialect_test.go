package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestResolveDSN(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name       string
		dsn        string
		wantDriver string
		wantConn   string
		wantErr    bool
	}{
		{"in-memory", "", "sqlite", ":memory:?_journal_mode=WAL", false},
		{"sqlite file", filepath.Join(dir, "state.db"), "sqlite", filepath.Join(dir, "state.db") + "?_journal_mode=WAL&_busy_timeout=5000", false},
		{"postgres", "postgres://u:p@db:5432/modpanel", "pgx", "postgres://u:p@db:5432/modpanel", false},
		{"postgresql", "postgresql://u:p@db/modpanel", "pgx", "postgresql://u:p@db/modpanel", false},
		{"mysql", "mysql://u:p@tcp(db:3306)/modpanel", "mysql", "u:p@tcp(db:3306)/modpanel", false},
		{"empty mysql", "mysql://", "", "", true},
		{"unknown scheme", "redis://cache:6379", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, conn, err := resolveDSN(tt.dsn)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDSN) {
					t.Fatalf("expected ErrInvalidDSN, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.driver != tt.wantDriver {
				t.Errorf("driver = %q, want %q", d.driver, tt.wantDriver)
			}
			if conn != tt.wantConn {
				t.Errorf("conn = %q, want %q", conn, tt.wantConn)
			}
		})
	}
}

func TestUpsertClause(t *testing.T) {
	got := sqliteDialect.upsert("name", "name", "value", "updated_at")
	want := "ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at"
	if got != want {
		t.Errorf("sqlite upsert = %q, want %q", got, want)
	}

	got = mysqlDialect.upsert("item_key", "value", "updated_at")
	want = "ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)"
	if got != want {
		t.Errorf("mysql upsert = %q, want %q", got, want)
	}
}

func TestOpenStoreSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	s, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer s.Close()

	if s.Driver() != "sqlite" {
		t.Errorf("driver = %q", s.Driver())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected database file: %v", err)
	}
}

// TestSharedStores runs the store against real PostgreSQL and MySQL servers.
// Set MODPANEL_TEST_POSTGRES_DSN or MODPANEL_TEST_MYSQL_DSN to enable.
func TestSharedStores(t *testing.T) {
	dsns := map[string]string{
		"postgres": os.Getenv("MODPANEL_TEST_POSTGRES_DSN"),
		"mysql":    os.Getenv("MODPANEL_TEST_MYSQL_DSN"),
	}
	for name, dsn := range dsns {
		t.Run(name, func(t *testing.T) {
			if dsn == "" {
				t.Skipf("set MODPANEL_TEST_%s_DSN to run", strings.ToUpper(name))
			}
			s, err := OpenStore(dsn)
			if err != nil {
				t.Fatalf("OpenStore: %v", err)
			}
			defer s.Close()

			ctx := context.Background()
			cookie := "test_cookie_" + name
			if err := s.SetCookie(ctx, cookie, "v1", time.Now().Add(time.Hour)); err != nil {
				t.Fatalf("SetCookie: %v", err)
			}
			if err := s.SetCookie(ctx, cookie, "v2", time.Time{}); err != nil {
				t.Fatalf("SetCookie overwrite: %v", err)
			}
			if v, err := s.GetCookie(ctx, cookie); err != nil || v != "v2" {
				t.Errorf("cookie = %q, %v", v, err)
			}
			if err := s.RemoveCookie(ctx, cookie); err != nil {
				t.Fatalf("RemoveCookie: %v", err)
			}

			key := "test_item_" + name
			if err := s.SetItem(ctx, key, "a"); err != nil {
				t.Fatalf("SetItem: %v", err)
			}
			if err := s.SetItem(ctx, key, "b"); err != nil {
				t.Fatalf("SetItem overwrite: %v", err)
			}
			if v, err := s.GetItem(ctx, key); err != nil || v != "b" {
				t.Errorf("item = %q, %v", v, err)
			}
			if err := s.RemoveItem(ctx, key); err != nil {
				t.Fatalf("RemoveItem: %v", err)
			}
		})
	}
}

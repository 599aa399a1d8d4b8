package config

import (
	"fmt"
	"os"
	"strings"
)

// dialect captures the SQL differences between the supported state stores.
type dialect struct {
	driver     string
	migrations []string
	// duplicateKey selects MySQL's upsert syntax over ON CONFLICT.
	duplicateKey bool
}

var sqliteDialect = dialect{
	driver: "sqlite",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS cookies (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT '',
			expires_at INTEGER,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS local_storage (
			item_key TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_cookies_expires_at ON cookies(expires_at)`,
	},
}

var postgresDialect = dialect{
	driver: "pgx",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS cookies (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT '',
			expires_at BIGINT,
			updated_at BIGINT NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS local_storage (
			item_key TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT '',
			updated_at BIGINT NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_cookies_expires_at ON cookies(expires_at)`,
	},
}

var mysqlDialect = dialect{
	driver:       "mysql",
	duplicateKey: true,
	migrations: []string{
		// MySQL cannot index unbounded TEXT keys or give TEXT a default.
		`CREATE TABLE IF NOT EXISTS cookies (
			name VARCHAR(255) NOT NULL PRIMARY KEY,
			value MEDIUMTEXT NOT NULL,
			expires_at BIGINT NULL,
			updated_at BIGINT NOT NULL DEFAULT 0,
			INDEX idx_cookies_expires_at (expires_at)
		)`,

		`CREATE TABLE IF NOT EXISTS local_storage (
			item_key VARCHAR(255) NOT NULL PRIMARY KEY,
			value MEDIUMTEXT NOT NULL,
			updated_at BIGINT NOT NULL DEFAULT 0
		)`,
	},
}

// upsert returns the clause that turns an INSERT on key into an update of
// cols.
func (d dialect) upsert(key string, cols ...string) string {
	sets := make([]string, 0, len(cols))
	for _, c := range cols {
		if c == key {
			continue
		}
		if d.duplicateKey {
			sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", c, c))
		} else {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	if d.duplicateKey {
		return "ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	return fmt.Sprintf("ON CONFLICT(%s) DO UPDATE SET %s", key, strings.Join(sets, ", "))
}

func (s *Store) migrate() error {
	for _, m := range s.dialect.migrations {
		if _, err := s.db.Exec(m); err != nil {
			// ALTER TABLE ADD COLUMN fails if column already exists;
			// treat "duplicate column" as a no-op for idempotent migrations.
			if strings.Contains(err.Error(), "duplicate column") {
				continue
			}
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

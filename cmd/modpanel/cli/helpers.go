package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/skillexchange/modpanel/internal/apiclient"
	"github.com/skillexchange/modpanel/internal/config"
	"github.com/skillexchange/modpanel/internal/moderation"
	"github.com/skillexchange/modpanel/internal/session"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// errNotLoggedIn is returned by commands that need a stored session.
var errNotLoggedIn = errors.New("not logged in; run 'modpanel login' first")

// resolveDataDir returns the data directory from --data-dir flag,
// MODPANEL_DATA_DIR env var, or ~/.modpanel as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("MODPANEL_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".modpanel")
}

// loadSettings builds the effective configuration: defaults, then the config
// file, then MODPANEL_* environment variables and flags.
func loadSettings() (*config.YAMLConfig, error) {
	cfg := config.DefaultYAMLConfig()
	if path := configFilePath(); path != "" {
		loaded, err := config.LoadYAMLConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	overrideString(&cfg.API.BaseURL, "api.base_url")
	overrideString(&cfg.API.Version, "api.version")
	overrideString(&cfg.API.Timeout, "api.timeout")
	overrideString(&cfg.Server.Host, "server.host")
	overrideInt(&cfg.Server.Port, "server.port")
	overrideString(&cfg.Server.RefreshInterval, "server.refresh_interval")
	overrideInt(&cfg.Server.LoginRateLimit, "server.login_rate_limit")
	overrideString(&cfg.Server.ShutdownTimeout, "server.shutdown_timeout")
	if viper.IsSet("server.secure_cookies") {
		cfg.Server.SecureCookies = viper.GetBool("server.secure_cookies")
	}
	if viper.IsSet("server.cors_origins") {
		cfg.Server.CORSOrigins = viper.GetStringSlice("server.cors_origins")
	}
	overrideString(&cfg.State.DSN, "state.dsn")
	overrideString(&cfg.MCP.Transport, "mcp.transport")
	overrideInt(&cfg.MCP.Port, "mcp.port")
	overrideString(&cfg.Logging.Level, "log.level")
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func overrideString(dst *string, key string) {
	if !viper.IsSet(key) {
		return
	}
	if v := viper.GetString(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetInt(key)
	}
}

// parseDuration parses a config duration, falling back to def when the value
// is empty or malformed.
func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// openStore opens the shared state database when one is configured and the
// SQLite file in the data directory otherwise.
func openStore(cfg *config.YAMLConfig) (*config.Store, error) {
	if cfg.State.DSN != "" {
		return config.OpenStore(cfg.State.DSN)
	}
	return config.NewStore(resolveDataDir())
}

// app bundles everything a command needs to talk to the backend.
type app struct {
	cfg     *config.YAMLConfig
	store   *config.Store
	client  *apiclient.Client
	manager *session.Manager
	cache   *moderation.Cache
	logger  *slog.Logger
}

// openApp loads settings, opens the session store and wires the API client,
// session manager and moderation cache together. A stored session, if any,
// is restored.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Logging.Level)

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}
	logger.Debug("session store initialized", "driver", store.Driver())

	if n, err := store.PruneExpiredCookies(ctx); err != nil {
		logger.Warn("prune expired cookies", "error", err)
	} else if n > 0 {
		logger.Debug("pruned expired cookies", "count", n)
	}

	client := apiclient.New(
		apiclient.BuildURL(cfg.API.BaseURL, cfg.API.Version),
		apiclient.WithLogger(logger),
		apiclient.WithTimeout(parseDuration(cfg.API.Timeout, 30*time.Second)),
		apiclient.WithUserAgent("modpanel/"+versionString()),
	)
	manager := session.New(client, store, logger)
	manager.Hydrate(ctx)
	cache := moderation.New(client, manager, logger)

	return &app{
		cfg:     cfg,
		store:   store,
		client:  client,
		manager: manager,
		cache:   cache,
		logger:  logger,
	}, nil
}

// Close releases the session store.
func (a *app) Close() {
	a.store.Close()
}

// requireSession fails when no admin session was restored.
func (a *app) requireSession() error {
	if !a.manager.IsAuthed() {
		return errNotLoggedIn
	}
	return nil
}

// loadData requires a session and loads users and reports.
func (a *app) loadData(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if err := a.cache.LoadData(ctx); err != nil {
		return fmt.Errorf("load moderation data: %w", err)
	}
	return nil
}

// --- Output ---

// outputFlags holds the --json and --yaml switches shared by read commands.
type outputFlags struct {
	json bool
	yaml bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&o.yaml, "yaml", false, "Output as YAML")
}

// render writes v as JSON or YAML when requested, and otherwise calls text.
func (o outputFlags) render(w io.Writer, v interface{}, text func()) error {
	switch {
	case o.json:
		return printJSON(w, v)
	case o.yaml:
		return printYAML(w, v)
	default:
		text()
		return nil
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}

// truncate shortens s to n runes for table output.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// confirm asks a yes/no question on in. Anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// localOnlyNotice explains what happens to a change the backend never sees.
func localOnlyNotice(w io.Writer, consistency moderation.Consistency) {
	if consistency == moderation.LocalOnly {
		fmt.Fprintln(w, "  note: the backend has no endpoint for this action; the change is local to this process and is not saved.")
	}
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}

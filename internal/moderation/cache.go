// Package moderation keeps the admin's working set of users, reports and
// messages, derives moderation statistics from it, and carries out
// moderation actions against the backend.
package moderation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skillexchange/modpanel/internal/model"
)

var (
	// ErrMessageNotFound is returned when an action needs a message that has
	// not been loaded into the cache.
	ErrMessageNotFound = errors.New("message not loaded")
)

const errLoadFailed = "Failed to load data"

// Backend is the subset of the API client the cache drives.
type Backend interface {
	GetAllUsers(ctx context.Context) ([]model.User, error)
	GetAllReports(ctx context.Context) ([]model.Report, error)
	ResolveReport(ctx context.Context, reportID string) error
	DeleteReport(ctx context.Context, reportID string) error
	DeleteUser(ctx context.Context, userID string) error
	BanUser(ctx context.Context, userID, reason string) error
	UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) error
	GetMessagesByChatID(ctx context.Context, chatID string) ([]model.Message, error)
	DeleteMessage(ctx context.Context, messageID, senderID string) error
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	AddReport(ctx context.Context, r model.NewReport) (*model.Report, error)
	GetAllChats(ctx context.Context) ([]model.Chat, error)
	GetChatsByUserID(ctx context.Context, userID string) ([]model.Chat, error)
}

// Actor identifies the admin that audit entries are attributed to.
type Actor interface {
	Identity() (id, email string)
}

type rejection struct {
	note string
	at   time.Time
}

// Cache is the single intermediary between the presentation layer and the
// backend's moderation data. Maps are never mutated in place: every write
// swaps in a new copy, so a snapshot taken under the read lock stays valid
// after the lock is released.
type Cache struct {
	backend  Backend
	actor    Actor
	observer Observer
	logger   *slog.Logger
	now      func() time.Time

	mu         sync.RWMutex
	users      map[string]model.User
	reports    map[string]model.Report
	messages   map[string]model.Message
	stats      map[string]model.UserModerationStats
	auditLogs  []model.AuditLog
	loading    bool
	dataLoaded bool
	err        string

	// Local-only state layered over backend data for the rest of the
	// session. None of it survives Reset.
	statusOverrides map[string]model.UserStatus
	rejected        map[string]rejection
	visibility      map[string]model.ModerationStatus
}

// New creates an empty cache. actor may be nil, in which case audit entries
// carry a placeholder identity.
func New(backend Backend, actor Actor, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		backend: backend,
		actor:   actor,
		logger:  logger,
		now:     time.Now,
	}
	c.clear()
	return c
}

// clear empties every collection and flag. Caller holds c.mu or owns c.
func (c *Cache) clear() {
	c.users = map[string]model.User{}
	c.reports = map[string]model.Report{}
	c.messages = map[string]model.Message{}
	c.stats = map[string]model.UserModerationStats{}
	c.auditLogs = nil
	c.loading = false
	c.dataLoaded = false
	c.err = ""
	c.statusOverrides = map[string]model.UserStatus{}
	c.rejected = map[string]rejection{}
	c.visibility = map[string]model.ModerationStatus{}
}

// LoadData fetches all users and reports concurrently and rebuilds the
// working set. Either fetch failing aborts the load; the error is kept in
// Error and the previous data is left untouched.
func (c *Cache) LoadData(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.err = ""
	c.mu.Unlock()

	var (
		users   []model.User
		reports []model.Report
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = c.backend.GetAllUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		reports, err = c.backend.GetAllReports(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		msg := err.Error()
		if msg == "" {
			msg = errLoadFailed
		}
		c.mu.Lock()
		c.err = msg
		c.loading = false
		c.mu.Unlock()
		c.logger.Warn("load moderation data failed", "error", err)
		return err
	}

	usersMap := make(map[string]model.User, len(users))
	for _, u := range users {
		usersMap[u.ID] = u
	}

	c.mu.Lock()
	c.users = usersMap
	c.reports = c.buildReports(reports)
	c.recomputeStats()
	c.loading = false
	c.dataLoaded = true
	c.mu.Unlock()

	c.logger.Info("moderation data loaded", "users", len(usersMap), "reports", len(reports))
	return nil
}

// RefreshReports re-fetches the report list and replaces the report map.
// Failures are logged and do not touch Error.
func (c *Cache) RefreshReports(ctx context.Context) error {
	reports, err := c.backend.GetAllReports(ctx)
	if err != nil {
		c.logger.Warn("refresh reports failed", "error", err)
		return err
	}

	c.mu.Lock()
	c.reports = c.buildReports(reports)
	c.recomputeStats()
	c.mu.Unlock()
	return nil
}

// RefreshUsers re-fetches the user list and replaces the user map.
// Failures are logged and do not touch Error.
func (c *Cache) RefreshUsers(ctx context.Context) error {
	users, err := c.backend.GetAllUsers(ctx)
	if err != nil {
		c.logger.Warn("refresh users failed", "error", err)
		return err
	}

	usersMap := make(map[string]model.User, len(users))
	for _, u := range users {
		usersMap[u.ID] = u
	}

	c.mu.Lock()
	c.users = usersMap
	c.recomputeStats()
	c.mu.Unlock()
	return nil
}

// LoadChatMessages fetches the messages of one chat into the message map,
// replacing any previously loaded messages of that chat.
func (c *Cache) LoadChatMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	msgs, err := c.backend.GetMessagesByChatID(ctx, chatID)
	if err != nil {
		c.setError(err)
		return nil, err
	}

	c.mu.Lock()
	next := make(map[string]model.Message, len(c.messages)+len(msgs))
	for id, m := range c.messages {
		if m.ChatID != chatID {
			next[id] = m
		}
	}
	out := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.ChatID == "" {
			m.ChatID = chatID
		}
		if st, ok := c.visibility[m.ID]; ok {
			m.ModerationStatus = st
		} else if m.ModerationStatus == "" {
			m.ModerationStatus = model.ModerationVisible
		}
		next[m.ID] = m
		out = append(out, m)
	}
	c.messages = next
	c.mu.Unlock()
	return out, nil
}

// Reset drops all cached data, local-only state and the audit log. Called on
// logout so nothing leaks into the next admin session.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.clear()
	c.mu.Unlock()
}

// ClearError resets the last error message.
func (c *Cache) ClearError() {
	c.mu.Lock()
	c.err = ""
	c.mu.Unlock()
}

// Error returns the last surfaced error message, or "".
func (c *Cache) Error() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Cache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Cache) DataLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dataLoaded
}

func (c *Cache) setError(err error) {
	c.mu.Lock()
	c.err = err.Error()
	c.mu.Unlock()
}

// buildReports enhances fetched reports and reapplies local rejections that
// the backend has not overtaken. Caller holds c.mu.
func (c *Cache) buildReports(reports []model.Report) map[string]model.Report {
	out := make(map[string]model.Report, len(reports))
	for _, r := range reports {
		r = enhanceReport(r)
		if rej, ok := c.rejected[r.ID]; ok {
			if r.IsResolved {
				delete(c.rejected, r.ID)
			} else {
				r.Status = model.ReportStatusRejected
				r.ResolutionNote = rej.note
				r.UpdatedAt = rej.at
			}
		}
		out[r.ID] = r
	}
	return out
}

// recomputeStats rebuilds the stats map from the current users and reports
// and reapplies statuses set during this session. Caller holds c.mu.
func (c *Cache) recomputeStats() {
	users := make([]model.User, 0, len(c.users))
	for _, u := range c.users {
		users = append(users, u)
	}
	reports := make([]model.Report, 0, len(c.reports))
	for _, r := range c.reports {
		reports = append(reports, r)
	}

	stats := ComputeStats(users, reports)
	for id, st := range c.statusOverrides {
		if s, ok := stats[id]; ok {
			s.Status = st
			stats[id] = s
		}
	}
	c.stats = stats
}

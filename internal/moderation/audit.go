package moderation

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/skillexchange/modpanel/internal/model"
)

const (
	fallbackAdminID = "current-admin"
	fallbackEmail   = "admin@skillexchange.com"
)

// Observer is notified of every audited action. The dashboard server uses it
// to count actions for Prometheus.
type Observer interface {
	ObserveAction(action string)
}

// SetObserver registers o. Call it before the cache is shared.
func (c *Cache) SetObserver(o Observer) {
	c.observer = o
}

func (c *Cache) identity() (id, email string) {
	if c.actor != nil {
		id, email = c.actor.Identity()
	}
	if id == "" {
		id = fallbackAdminID
	}
	if email == "" {
		email = fallbackEmail
	}
	return id, email
}

// audit prepends an entry to the session audit log and mirrors it to the
// logger.
func (c *Cache) audit(action, targetType, targetID, note string) {
	adminID, adminEmail := c.identity()
	entry := model.AuditLog{
		ID:         uuid.Must(uuid.NewV7()).String(),
		AdminID:    adminID,
		AdminEmail: adminEmail,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Note:       note,
		CreatedAt:  c.now().UTC(),
	}

	c.mu.Lock()
	logs := make([]model.AuditLog, 0, len(c.auditLogs)+1)
	logs = append(logs, entry)
	logs = append(logs, c.auditLogs...)
	c.auditLogs = logs
	c.mu.Unlock()

	c.logger.Info("moderation action",
		slog.Group("audit",
			"id", entry.ID,
			"action", action,
			"target_type", targetType,
			"target_id", targetID,
			"admin", adminEmail,
		),
	)
	if c.observer != nil {
		c.observer.ObserveAction(action)
	}
}

// AuditLogs returns the session's audit entries, newest first.
func (c *Cache) AuditLogs() []model.AuditLog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.AuditLog, len(c.auditLogs))
	copy(out, c.auditLogs)
	return out
}

package moderation

import (
	"context"
	"maps"

	"github.com/skillexchange/modpanel/internal/model"
)

// Consistency states whether an action's effect is confirmed by the backend
// or exists only in this process.
type Consistency string

const (
	// ServerConfirmed actions call the backend first and change local state
	// only on success.
	ServerConfirmed Consistency = "server-confirmed"
	// LocalOnly actions have no backend endpoint. Their effect is lost on
	// Reset and when the process exits.
	LocalOnly Consistency = "local-only"
)

// ActionInfo describes one moderation action.
type ActionInfo struct {
	Name        string      `json:"name"`
	Consistency Consistency `json:"consistency"`
}

var actions = []ActionInfo{
	{Name: "resolve_report", Consistency: ServerConfirmed},
	{Name: "reject_report", Consistency: LocalOnly},
	{Name: "delete_report", Consistency: ServerConfirmed},
	{Name: "set_message_moderation", Consistency: LocalOnly},
	{Name: "delete_message", Consistency: ServerConfirmed},
	{Name: "set_user_status", Consistency: ServerConfirmed},
	{Name: "file_report", Consistency: ServerConfirmed},
}

// Actions lists the moderation actions and their consistency.
func Actions() []ActionInfo {
	out := make([]ActionInfo, len(actions))
	copy(out, actions)
	return out
}

// ConsistencyOf returns the consistency of the named action, or "" when the
// name is unknown.
func ConsistencyOf(name string) Consistency {
	for _, a := range actions {
		if a.Name == name {
			return a.Consistency
		}
	}
	return ""
}

// ResolveReport resolves a report on the backend, then marks the cached copy
// resolved with the note. The report list is not re-fetched.
func (c *Cache) ResolveReport(ctx context.Context, reportID, note string) error {
	if err := c.backend.ResolveReport(ctx, reportID); err != nil {
		c.setError(err)
		return err
	}

	adminID, _ := c.identity()

	c.mu.Lock()
	delete(c.rejected, reportID)
	if r, ok := c.reports[reportID]; ok {
		r.IsResolved = true
		r.Status = model.ReportStatusResolved
		r.ResolutionNote = note
		r.ResolvedByAdminID = adminID
		r.UpdatedAt = c.now().UTC()

		next := maps.Clone(c.reports)
		next[reportID] = r
		c.reports = next
		c.recomputeStats()
	}
	c.mu.Unlock()

	c.audit(model.ActionResolveReport, model.AuditTargetReport, reportID, note)
	return nil
}

// RejectReport marks a report rejected. The backend has no rejection
// endpoint, so this is local-only.
func (c *Cache) RejectReport(ctx context.Context, reportID, note string) error {
	now := c.now().UTC()

	c.mu.Lock()
	if r, ok := c.reports[reportID]; ok {
		r.Status = model.ReportStatusRejected
		r.ResolutionNote = note
		r.UpdatedAt = now

		next := maps.Clone(c.reports)
		next[reportID] = r
		c.reports = next
		c.rejected[reportID] = rejection{note: note, at: now}
		c.recomputeStats()
	}
	c.mu.Unlock()

	c.audit(model.ActionRejectReport, model.AuditTargetReport, reportID, note)
	return nil
}

// DeleteReport deletes a report on the backend and drops it from the cache.
func (c *Cache) DeleteReport(ctx context.Context, reportID string) error {
	if err := c.backend.DeleteReport(ctx, reportID); err != nil {
		c.setError(err)
		return err
	}

	c.mu.Lock()
	next := maps.Clone(c.reports)
	delete(next, reportID)
	c.reports = next
	delete(c.rejected, reportID)
	c.recomputeStats()
	c.mu.Unlock()

	c.audit(model.ActionDeleteReport, model.AuditTargetReport, reportID, "")
	return nil
}

// SetMessageModeration changes a message's visibility. There is no backend
// endpoint for it, so this is local-only.
func (c *Cache) SetMessageModeration(ctx context.Context, messageID string, status model.ModerationStatus) error {
	status, err := model.ParseModerationStatus(string(status))
	if err != nil {
		c.setError(err)
		return err
	}

	c.mu.Lock()
	vis := maps.Clone(c.visibility)
	vis[messageID] = status
	c.visibility = vis
	if m, ok := c.messages[messageID]; ok {
		m.ModerationStatus = status
		next := maps.Clone(c.messages)
		next[messageID] = m
		c.messages = next
	}
	c.mu.Unlock()

	action := model.ActionUnhideMessage
	if status == model.ModerationHiddenAdmin {
		action = model.ActionHideMessage
	}
	c.audit(action, model.AuditTargetMessage, messageID, "")
	return nil
}

// DeleteMessage deletes a loaded message on the backend. The message must be
// cached because the endpoint needs its sender.
func (c *Cache) DeleteMessage(ctx context.Context, messageID string) error {
	c.mu.RLock()
	m, ok := c.messages[messageID]
	c.mu.RUnlock()
	if !ok {
		c.setError(ErrMessageNotFound)
		return ErrMessageNotFound
	}

	if err := c.backend.DeleteMessage(ctx, messageID, m.Sender.ResolveID()); err != nil {
		c.setError(err)
		return err
	}

	c.mu.Lock()
	next := maps.Clone(c.messages)
	delete(next, messageID)
	c.messages = next
	c.mu.Unlock()

	c.audit(model.ActionDeleteMessage, model.AuditTargetMessage, messageID, "")
	return nil
}

// SetUserStatus applies a status to a user through the backend: DELETED
// deletes the account, BANNED bans it with note as the reason, anything else
// sends an empty update. On success the status sticks to the user's stats
// for the rest of the session and the user list is re-fetched.
func (c *Cache) SetUserStatus(ctx context.Context, userID string, status model.UserStatus, note string) error {
	if !status.Valid() {
		err := &model.EnumError{Kind: "user status", Value: string(status)}
		c.setError(err)
		return err
	}

	var err error
	switch status {
	case model.UserStatusDeleted:
		err = c.backend.DeleteUser(ctx, userID)
	case model.UserStatusBanned:
		err = c.backend.BanUser(ctx, userID, note)
	default:
		err = c.backend.UpdateUser(ctx, userID, map[string]interface{}{})
	}
	if err != nil {
		c.setError(err)
		return err
	}

	c.mu.Lock()
	overrides := maps.Clone(c.statusOverrides)
	overrides[userID] = status
	c.statusOverrides = overrides
	if st, ok := c.stats[userID]; ok {
		st.Status = status
		next := maps.Clone(c.stats)
		next[userID] = st
		c.stats = next
	}
	c.mu.Unlock()

	c.audit(model.ActionSetUserStatus(status), model.AuditTargetUser, userID, note)

	_ = c.RefreshUsers(ctx)
	return nil
}

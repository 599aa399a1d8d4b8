package moderation

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/skillexchange/modpanel/internal/model"
)

var (
	// ErrUserNotFound is returned when neither the cache nor the backend
	// knows a user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidReport is returned when a report lacks a target or content.
	ErrInvalidReport = errors.New("report target and content are required")
)

// FetchUser returns a user from the cache, asking the backend for it when it
// is not in the loaded set (accounts created after the last load). A fetched
// user joins the cache and gets moderation stats like any other.
func (c *Cache) FetchUser(ctx context.Context, userID string) (*model.User, error) {
	if u := c.User(userID); u != nil {
		return u, nil
	}

	// A miss is an answer to a lookup, not a dashboard failure, so Error is
	// left alone.
	u, err := c.backend.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.ID == "" {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	c.mu.Lock()
	next := maps.Clone(c.users)
	next[u.ID] = *u
	c.users = next
	c.recomputeStats()
	c.mu.Unlock()

	out := *u
	return &out, nil
}

// Chats lists the chats a user belongs to, or every chat when userID is
// empty. Chat ids feed LoadChatMessages. Chats are not cached.
func (c *Cache) Chats(ctx context.Context, userID string) ([]model.Chat, error) {
	var (
		chats []model.Chat
		err   error
	)
	if userID == "" {
		chats, err = c.backend.GetAllChats(ctx)
	} else {
		chats, err = c.backend.GetChatsByUserID(ctx, userID)
	}
	if err != nil {
		c.setError(err)
		return nil, err
	}
	if chats == nil {
		chats = []model.Chat{}
	}
	return chats, nil
}

// FileReport files a report against a user in the admin's name and adds it
// to the cache. When the backend does not echo the created report, the
// report list is re-fetched instead and the returned report is nil.
func (c *Cache) FileReport(ctx context.Context, targetID, content, evidence string) (*model.Report, error) {
	if targetID == "" || content == "" {
		c.setError(ErrInvalidReport)
		return nil, ErrInvalidReport
	}
	adminID, _ := c.identity()

	created, err := c.backend.AddReport(ctx, model.NewReport{
		SenderID: adminID,
		TargetID: targetID,
		Content:  content,
		Evidence: evidence,
	})
	if err != nil {
		c.setError(err)
		return nil, err
	}
	c.audit(model.ActionFileReport, model.AuditTargetUser, targetID, content)

	if created == nil || created.ID == "" {
		_ = c.RefreshReports(ctx)
		return nil, nil
	}

	r := enhanceReport(*created)
	c.mu.Lock()
	next := maps.Clone(c.reports)
	next[r.ID] = r
	c.reports = next
	c.recomputeStats()
	c.mu.Unlock()
	return &r, nil
}

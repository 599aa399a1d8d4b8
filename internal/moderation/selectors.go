package moderation

import (
	"sort"
	"strings"

	"github.com/skillexchange/modpanel/internal/model"
)

const (
	topReportedLimit = 10
	recentOpenLimit  = 10

	// UnknownUser labels a reference that does not resolve to a cached user.
	UnknownUser = "Unknown"
)

// DashboardSummary returns the open report count, the ten most reported
// users and the ten newest open reports.
func (c *Cache) DashboardSummary() model.DashboardSummary {
	c.mu.RLock()
	reports, stats := c.reports, c.stats
	c.mu.RUnlock()

	open := make([]model.Report, 0, len(reports))
	for _, r := range reports {
		if r.Status.IsOpen() {
			open = append(open, r)
		}
	}
	sortByCreatedDesc(open)

	top := make([]model.UserModerationStats, 0, len(stats))
	for _, st := range stats {
		if st.ReportsReceived > 0 {
			top = append(top, st)
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].ReportsReceived != top[j].ReportsReceived {
			return top[i].ReportsReceived > top[j].ReportsReceived
		}
		return top[i].UserID < top[j].UserID
	})
	if len(top) > topReportedLimit {
		top = top[:topReportedLimit]
	}

	recent := open
	if len(recent) > recentOpenLimit {
		recent = recent[:recentOpenLimit]
	}

	return model.DashboardSummary{
		OpenReportsCount:  len(open),
		TopReportedUsers:  top,
		RecentOpenReports: recent,
	}
}

// FilteredReports applies the status, target type, reason and search filters
// in that order and returns the matches newest first.
func (c *Cache) FilteredReports(f model.ReportFilters) []model.Report {
	c.mu.RLock()
	reports, users := c.reports, c.users
	c.mu.RUnlock()

	status := filterValue(f.Status)
	targetType := filterValue(f.TargetType)
	reason := filterValue(f.ReasonCode)
	query := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]model.Report, 0, len(reports))
	for _, r := range reports {
		if status != "" && string(r.Status) != status {
			continue
		}
		if targetType != "" && string(r.TargetType) != targetType {
			continue
		}
		if reason != "" && string(r.ReasonCode) != reason {
			continue
		}
		if query != "" && !matchesSearch(r, users, query) {
			continue
		}
		out = append(out, r)
	}
	sortByCreatedDesc(out)
	return out
}

// ValidateFilters rejects filter values that name no known status, target
// type or reason. Empty values and FilterAll are accepted.
func ValidateFilters(f model.ReportFilters) error {
	isSet := func(v string) bool { return v != "" && !strings.EqualFold(strings.TrimSpace(v), model.FilterAll) }
	if isSet(f.Status) {
		if _, err := model.ParseReportStatus(f.Status); err != nil {
			return err
		}
	}
	if isSet(f.TargetType) {
		if _, err := model.ParseTargetType(f.TargetType); err != nil {
			return err
		}
	}
	if isSet(f.ReasonCode) {
		if _, err := model.ParseReasonCode(f.ReasonCode); err != nil {
			return err
		}
	}
	return nil
}

func filterValue(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == model.FilterAll {
		return ""
	}
	return v
}

func matchesSearch(r model.Report, users map[string]model.User, query string) bool {
	if strings.Contains(strings.ToLower(r.ID), query) {
		return true
	}
	if u, ok := users[r.Reporter.ResolveID()]; ok && strings.Contains(strings.ToLower(u.Username), query) {
		return true
	}
	if u, ok := users[r.Target.ResolveID()]; ok && strings.Contains(strings.ToLower(u.Username), query) {
		return true
	}
	return strings.Contains(strings.ToLower(r.Content), query)
}

// UserModeration returns the stats of a user, or nil when the user is not
// cached.
func (c *Cache) UserModeration(userID string) *model.UserModerationStats {
	c.mu.RLock()
	st, ok := c.stats[userID]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	return &st
}

// ReportByID returns a cached report, or nil.
func (c *Cache) ReportByID(reportID string) *model.Report {
	c.mu.RLock()
	r, ok := c.reports[reportID]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	return &r
}

// ReportsForUser returns the reports filed against a user, newest first.
func (c *Cache) ReportsForUser(userID string) []model.Report {
	c.mu.RLock()
	reports := c.reports
	c.mu.RUnlock()

	var out []model.Report
	for _, r := range reports {
		if r.Target.ResolveID() == userID {
			out = append(out, r)
		}
	}
	sortByCreatedDesc(out)
	return out
}

// User returns a cached user, or nil.
func (c *Cache) User(userID string) *model.User {
	c.mu.RLock()
	u, ok := c.users[userID]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	return &u
}

// Users returns every cached user ordered by username.
func (c *Cache) Users() []model.User {
	c.mu.RLock()
	users := c.users
	c.mu.RUnlock()

	out := make([]model.User, 0, len(users))
	for _, u := range users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Message returns a cached message, or nil.
func (c *Cache) Message(messageID string) *model.Message {
	c.mu.RLock()
	m, ok := c.messages[messageID]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	return &m
}

// UserLabel renders a reference as the cached username, falling back to an
// embedded username and finally to "Unknown".
func (c *Cache) UserLabel(ref model.Ref) string {
	c.mu.RLock()
	u, ok := c.users[ref.ResolveID()]
	c.mu.RUnlock()
	if ok && u.Username != "" {
		return u.Username
	}
	if ref.User != nil && ref.User.Username != "" {
		return ref.User.Username
	}
	return UnknownUser
}

package moderation

import (
	"sort"

	"github.com/skillexchange/modpanel/internal/model"
)

// ComputeStats derives per-user moderation figures from a user and report
// snapshot. Reports are expected to be enhanced (see enhanceReport). The
// result is a pure function of its inputs.
func ComputeStats(users []model.User, reports []model.Report) map[string]model.UserModerationStats {
	byTarget := make(map[string][]model.Report, len(users))
	for _, r := range reports {
		id := r.Target.ResolveID()
		byTarget[id] = append(byTarget[id], r)
	}

	stats := make(map[string]model.UserModerationStats, len(users))
	for i := range users {
		u := users[i]
		received := byTarget[u.ID]

		st := model.UserModerationStats{
			UserID:          u.ID,
			User:            &u,
			ReportsReceived: len(received),
			Status:          model.StatusOf(u),
		}
		for _, r := range received {
			// A local rejection leaves isResolved false, so it still counts.
			if !r.IsResolved {
				st.OpenReports++
			}
			if st.LastReportedAt == nil || r.CreatedAt.After(*st.LastReportedAt) {
				t := r.CreatedAt
				st.LastReportedAt = &t
			}
		}
		stats[u.ID] = st
	}
	return stats
}

// enhanceReport fills in the fields the backend does not send: the review
// status derived from the resolution flag, and the target type, which is
// always a user on this backend.
func enhanceReport(r model.Report) model.Report {
	if r.IsResolved {
		r.Status = model.ReportStatusResolved
	} else {
		r.Status = model.ReportStatusOpen
	}
	r.TargetType = model.TargetTypeUser
	return r
}

// sortByCreatedDesc orders reports newest first. Ties fall back to the id so
// listings are deterministic.
func sortByCreatedDesc(reports []model.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i], reports[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

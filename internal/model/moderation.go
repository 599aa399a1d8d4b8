package model

import "time"

// UserModerationStats is derived from the current report set and never
// stored remotely. OpenReports is always a subset of ReportsReceived.
type UserModerationStats struct {
	UserID                string     `json:"userId" yaml:"user_id"`
	User                  *User      `json:"user,omitempty" yaml:"user,omitempty"`
	ReportsReceived       int        `json:"reportsReceived" yaml:"reports_received"`
	OpenReports           int        `json:"openReports" yaml:"open_reports"`
	ReportedMessagesCount int        `json:"reportedMessagesCount" yaml:"reported_messages_count"`
	LastReportedAt        *time.Time `json:"lastReportedAt,omitempty" yaml:"last_reported_at,omitempty"`
	ToxicityStrikes       int        `json:"toxicityStrikes" yaml:"toxicity_strikes"`
	Status                UserStatus `json:"status" yaml:"status"`
}

// AuditLog records one moderation action taken during the current session.
type AuditLog struct {
	ID         string    `json:"id" yaml:"id"`
	AdminID    string    `json:"adminId" yaml:"admin_id"`
	AdminEmail string    `json:"adminEmail" yaml:"admin_email"`
	Action     string    `json:"action" yaml:"action"`
	TargetType string    `json:"targetType" yaml:"target_type"`
	TargetID   string    `json:"targetId" yaml:"target_id"`
	Note       string    `json:"note,omitempty" yaml:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt" yaml:"created_at"`
}

// Audit action names.
const (
	ActionResolveReport = "RESOLVE_REPORT"
	ActionRejectReport  = "REJECT_REPORT"
	ActionDeleteReport  = "DELETE_REPORT"
	ActionHideMessage   = "HIDE_MESSAGE"
	ActionUnhideMessage = "UNHIDE_MESSAGE"
	ActionDeleteMessage = "DELETE_MESSAGE"
	ActionFileReport    = "FILE_REPORT"
)

// ActionSetUserStatus returns the audit action for a user status change.
func ActionSetUserStatus(status UserStatus) string {
	return "SET_USER_STATUS_" + string(status)
}

// Audit target types.
const (
	AuditTargetReport  = "REPORT"
	AuditTargetUser    = "USER"
	AuditTargetMessage = "MESSAGE"
)

// DashboardSummary aggregates the figures shown on the dashboard landing page.
type DashboardSummary struct {
	OpenReportsCount  int                   `json:"openReportsCount" yaml:"open_reports_count"`
	TopReportedUsers  []UserModerationStats `json:"topReportedUsers" yaml:"top_reported_users"`
	RecentOpenReports []Report              `json:"recentOpenReports" yaml:"recent_open_reports"`
}

// ReportFilters narrows a report listing. Empty values and FilterAll
// disable the corresponding filter.
type ReportFilters struct {
	Status     string `json:"status,omitempty"`
	TargetType string `json:"targetType,omitempty"`
	ReasonCode string `json:"reasonCode,omitempty"`
	Search     string `json:"search,omitempty"`
}

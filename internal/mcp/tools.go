package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/skillexchange/modpanel/internal/model"
	"github.com/skillexchange/modpanel/internal/moderation"
)

const (
	defaultListLimit = 25
	maxListLimit     = 200
)

// registerTools registers all moderation MCP tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	// ----- Read tools -----

	srv.AddTool(
		mcp.NewTool("modpanel_dashboard",
			mcp.WithDescription(
				"Summarize the moderation queue: number of open reports, the ten most "+
					"reported users and the ten newest open reports. Start here.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleDashboard,
	)

	srv.AddTool(
		mcp.NewTool("modpanel_list_reports",
			mcp.WithDescription(
				"List reports newest first. Filters combine; use ALL or omit a filter "+
					"to disable it. search matches report id, reporter and target "+
					"usernames and report content, case-insensitively.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("status",
				mcp.Description("OPEN, UNDER_REVIEW, RESOLVED, REJECTED or ALL"),
			),
			mcp.WithString("target_type",
				mcp.Description("USER, MESSAGE or ALL"),
			),
			mcp.WithString("reason_code",
				mcp.Description("HARASSMENT, SPAM, HATE, SCAM, VIOLENCE, OTHER or ALL"),
			),
			mcp.WithString("search",
				mcp.Description("Free-text search"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of reports to return (default 25, max 200)"),
			),
		),
		s.handleListReports,
	)

	srv.AddTool(
		mcp.NewTool("modpanel_get_report",
			mcp.WithDescription("Get one report with the reporter's and target's usernames."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("report_id",
				mcp.Required(),
				mcp.Description("ID of the report"),
			),
		),
		s.handleGetReport,
	)

	srv.AddTool(
		mcp.NewTool("modpanel_get_user",
			mcp.WithDescription(
				"Get a user with their moderation stats (reports received, open reports, "+
					"status) and every report filed against them.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("user_id",
				mcp.Required(),
				mcp.Description("ID of the user"),
			),
		),
		s.handleGetUser,
	)

	srv.AddTool(
		mcp.NewTool("modpanel_list_chats",
			mcp.WithDescription(
				"List chats with their member ids. Pass user_id to list only that user's "+
					"chats. Chat ids are what message moderation works on.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("user_id",
				mcp.Description("Only chats this user is a member of"),
			),
		),
		s.handleListChats,
	)

	srv.AddTool(
		mcp.NewTool("modpanel_audit_log",
			mcp.WithDescription("List the moderation actions taken in this session, newest first."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of entries to return (default 25, max 200)"),
			),
		),
		s.handleAuditLog,
	)

	// ----- Action tools -----

	srv.AddTool(
		mcp.NewTool("modpanel_resolve_report",
			mcp.WithDescription("Resolve a report on the backend, recording an optional note."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("report_id",
				mcp.Required(),
				mcp.Description("ID of the report to resolve"),
			),
			mcp.WithString("note",
				mcp.Description("Resolution note"),
			),
		),
		s.handleResolveReport,
	)

	srv.AddTool(
		mcp.NewTool("modpanel_reject_report",
			mcp.WithDescription(
				"Reject a report as unfounded. The backend has no rejection endpoint, so "+
					"this only changes the local view and is lost when the server exits.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("report_id",
				mcp.Required(),
				mcp.Description("ID of the report to reject"),
			),
			mcp.WithString("note",
				mcp.Description("Reason for rejecting"),
			),
		),
		s.handleRejectReport,
	)

	srv.AddTool(
		mcp.NewTool("modpanel_set_user_status",
			mcp.WithDescription(
				"Change a user's moderation status. BANNED bans the account with note as "+
					"the ban reason; DELETED deletes the account. Both are visible to the user.",
			),
			mcp.WithToolAnnotation(destructiveAnnotation()),
			mcp.WithString("user_id",
				mcp.Required(),
				mcp.Description("ID of the user"),
			),
			mcp.WithString("status",
				mcp.Required(),
				mcp.Description("ACTIVE, SUSPENDED, BANNED or DELETED"),
				mcp.Enum("ACTIVE", "SUSPENDED", "BANNED", "DELETED"),
			),
			mcp.WithString("note",
				mcp.Description("Reason, used as the ban reason for BANNED"),
			),
		),
		s.handleSetUserStatus,
	)
}

// ensureLoaded loads the working set on first use.
func (s *MCPServer) ensureLoaded(ctx context.Context) error {
	if s.cache.DataLoaded() {
		return nil
	}
	return s.cache.LoadData(ctx)
}

type actionResult struct {
	Action      string                     `json:"action"`
	TargetID    string                     `json:"target_id"`
	Consistency moderation.Consistency     `json:"consistency"`
	Report      *model.Report              `json:"report,omitempty"`
	Stats       *model.UserModerationStats `json:"stats,omitempty"`
}

func (s *MCPServer) handleDashboard(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	if err := s.ensureLoaded(ctx); err != nil {
		return toolError("Failed to load moderation data: %v", err)
	}
	return successJSON(s.cache.DashboardSummary())
}

func (s *MCPServer) handleListReports(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	f := model.ReportFilters{
		Status:     optionalString(request, "status"),
		TargetType: optionalString(request, "target_type"),
		ReasonCode: optionalString(request, "reason_code"),
		Search:     optionalString(request, "search"),
	}
	if err := moderation.ValidateFilters(f); err != nil {
		return toolError("%v", err)
	}
	limit := limitArg(request)

	if err := s.ensureLoaded(ctx); err != nil {
		return toolError("Failed to load moderation data: %v", err)
	}

	reports := s.cache.FilteredReports(f)
	total := len(reports)
	if len(reports) > limit {
		reports = reports[:limit]
	}

	type reportRow struct {
		ID       string             `json:"id"`
		Status   model.ReportStatus `json:"status"`
		Reporter string             `json:"reporter"`
		Target   string             `json:"target"`
		TargetID string             `json:"target_id"`
		Content  string             `json:"content"`
		Created  string             `json:"created_at"`
	}
	rows := make([]reportRow, len(reports))
	for i, r := range reports {
		rows[i] = reportRow{
			ID:       r.ID,
			Status:   r.Status,
			Reporter: s.cache.UserLabel(r.Reporter),
			Target:   s.cache.UserLabel(r.Target),
			TargetID: r.Target.ResolveID(),
			Content:  r.Content,
			Created:  r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	return successJSON(map[string]interface{}{
		"total":   total,
		"reports": rows,
	})
}

func (s *MCPServer) handleGetReport(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	reportID, err := requireID(request, "report_id")
	if err != nil {
		return toolError("%v", err)
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return toolError("Failed to load moderation data: %v", err)
	}

	report := s.cache.ReportByID(reportID)
	if report == nil {
		return toolError("Report %q not found. Use modpanel_list_reports to find report IDs.", reportID)
	}
	return successJSON(map[string]interface{}{
		"report":         report,
		"reporter_label": s.cache.UserLabel(report.Reporter),
		"target_label":   s.cache.UserLabel(report.Target),
	})
}

func (s *MCPServer) handleGetUser(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	userID, err := requireID(request, "user_id")
	if err != nil {
		return toolError("%v", err)
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return toolError("Failed to load moderation data: %v", err)
	}

	user, err := s.cache.FetchUser(ctx, userID)
	if errors.Is(err, moderation.ErrUserNotFound) {
		return toolError("User %q not found.", userID)
	}
	if err != nil {
		return toolError("Failed to look up user %q: %v", userID, err)
	}
	reports := s.cache.ReportsForUser(userID)
	if reports == nil {
		reports = []model.Report{}
	}
	return successJSON(map[string]interface{}{
		"user":    user,
		"stats":   s.cache.UserModeration(userID),
		"reports": reports,
	})
}

func (s *MCPServer) handleListChats(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	userID := optionalString(request, "user_id")
	chats, err := s.cache.Chats(ctx, userID)
	if err != nil {
		return toolError("Failed to list chats: %v", err)
	}
	return successJSON(chats)
}

func (s *MCPServer) handleAuditLog(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	limit := limitArg(request)
	logs := s.cache.AuditLogs()
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return successJSON(logs)
}

func (s *MCPServer) handleResolveReport(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	reportID, err := requireID(request, "report_id")
	if err != nil {
		return toolError("%v", err)
	}
	if err := s.cache.ResolveReport(ctx, reportID, optionalString(request, "note")); err != nil {
		return toolError("Failed to resolve report %q: %v", reportID, err)
	}
	return successJSON(actionResult{
		Action:      "resolve_report",
		TargetID:    reportID,
		Consistency: moderation.ConsistencyOf("resolve_report"),
		Report:      s.cache.ReportByID(reportID),
	})
}

func (s *MCPServer) handleRejectReport(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	reportID, err := requireID(request, "report_id")
	if err != nil {
		return toolError("%v", err)
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return toolError("Failed to load moderation data: %v", err)
	}
	if s.cache.ReportByID(reportID) == nil {
		return toolError("Report %q not found. Use modpanel_list_reports to find report IDs.", reportID)
	}
	if err := s.cache.RejectReport(ctx, reportID, optionalString(request, "note")); err != nil {
		return toolError("Failed to reject report %q: %v", reportID, err)
	}
	return successJSON(actionResult{
		Action:      "reject_report",
		TargetID:    reportID,
		Consistency: moderation.ConsistencyOf("reject_report"),
		Report:      s.cache.ReportByID(reportID),
	})
}

func (s *MCPServer) handleSetUserStatus(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	userID, err := requireID(request, "user_id")
	if err != nil {
		return toolError("%v", err)
	}
	raw, err := requireID(request, "status")
	if err != nil {
		return toolError("%v", err)
	}
	status, err := model.ParseUserStatus(raw)
	if err != nil {
		return toolError("%v. Valid statuses: ACTIVE, SUSPENDED, BANNED, DELETED", err)
	}

	if err := s.cache.SetUserStatus(ctx, userID, status, optionalString(request, "note")); err != nil {
		return toolError("Failed to set status of user %q: %v", userID, err)
	}
	return successJSON(actionResult{
		Action:      "set_user_status",
		TargetID:    userID,
		Consistency: moderation.ConsistencyOf("set_user_status"),
		Stats:       s.cache.UserModeration(userID),
	})
}

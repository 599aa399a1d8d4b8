package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skillexchange/modpanel/internal/model"
	"github.com/skillexchange/modpanel/internal/moderation"
)

type fakeBackend struct {
	users   []model.User
	reports []model.Report
	banned  map[string]string
	failErr error
}

func (f *fakeBackend) GetAllUsers(context.Context) ([]model.User, error) { return f.users, f.failErr }
func (f *fakeBackend) GetAllReports(context.Context) ([]model.Report, error) {
	return f.reports, f.failErr
}
func (f *fakeBackend) ResolveReport(context.Context, string) error { return f.failErr }
func (f *fakeBackend) DeleteReport(context.Context, string) error  { return f.failErr }
func (f *fakeBackend) DeleteUser(context.Context, string) error    { return f.failErr }
func (f *fakeBackend) BanUser(_ context.Context, id, reason string) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.banned[id] = reason
	return nil
}
func (f *fakeBackend) UpdateUser(context.Context, string, map[string]interface{}) error {
	return f.failErr
}
func (f *fakeBackend) GetMessagesByChatID(context.Context, string) ([]model.Message, error) {
	return nil, f.failErr
}
func (f *fakeBackend) DeleteMessage(context.Context, string, string) error { return f.failErr }

func (f *fakeBackend) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	return &model.User{}, nil
}
func (f *fakeBackend) AddReport(context.Context, model.NewReport) (*model.Report, error) {
	return nil, f.failErr
}
func (f *fakeBackend) GetAllChats(context.Context) ([]model.Chat, error) {
	return []model.Chat{{ID: "c1"}, {ID: "c2"}}, f.failErr
}
func (f *fakeBackend) GetChatsByUserID(_ context.Context, userID string) ([]model.Chat, error) {
	if userID == "u2" {
		return []model.Chat{{ID: "c1", Members: []model.Ref{model.IDRef("u1"), model.IDRef("u2")}}}, f.failErr
	}
	return nil, f.failErr
}

func newTestServer(t *testing.T) (*MCPServer, *fakeBackend) {
	t.Helper()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	backend := &fakeBackend{
		users: []model.User{
			{ID: "u1", Username: "alice"},
			{ID: "u2", Username: "bob"},
		},
		reports: []model.Report{
			{ID: "r1", Reporter: model.IDRef("u1"), Target: model.IDRef("u2"), Content: "spam", CreatedAt: t0},
			{ID: "r2", Reporter: model.IDRef("u1"), Target: model.IDRef("u2"), Content: "rude", IsResolved: true, CreatedAt: t0.Add(-time.Hour)},
		},
		banned: map[string]string{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := moderation.New(backend, nil, logger)
	return NewMCPServer(cache, "test", logger), backend
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return text.Text
}

func TestToolsRegistered(t *testing.T) {
	s, _ := newTestServer(t)

	resp := s.Server().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		Result struct {
			Tools []struct {
				Name        string `json:"name"`
				Annotations struct {
					ReadOnlyHint *bool `json:"readOnlyHint"`
				} `json:"annotations"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	readOnly := map[string]bool{
		"modpanel_dashboard":       true,
		"modpanel_list_reports":    true,
		"modpanel_get_report":      true,
		"modpanel_get_user":        true,
		"modpanel_list_chats":      true,
		"modpanel_audit_log":       true,
		"modpanel_resolve_report":  false,
		"modpanel_reject_report":   false,
		"modpanel_set_user_status": false,
	}
	if len(decoded.Result.Tools) != len(readOnly) {
		t.Fatalf("got %d tools, want %d: %s", len(decoded.Result.Tools), len(readOnly), string(b))
	}
	for _, tool := range decoded.Result.Tools {
		want, ok := readOnly[tool.Name]
		if !ok {
			t.Errorf("unexpected tool %q", tool.Name)
			continue
		}
		if tool.Annotations.ReadOnlyHint == nil || *tool.Annotations.ReadOnlyHint != want {
			t.Errorf("%s readOnlyHint = %v, want %v", tool.Name, tool.Annotations.ReadOnlyHint, want)
		}
	}
}

func TestHandleDashboard(t *testing.T) {
	s, _ := newTestServer(t)
	res, err := s.handleDashboard(context.Background(), callRequest("modpanel_dashboard", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var summary model.DashboardSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &summary); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if summary.OpenReportsCount != 1 {
		t.Errorf("open reports = %d, want 1", summary.OpenReportsCount)
	}
}

func TestHandleListReports(t *testing.T) {
	s, _ := newTestServer(t)

	res, _ := s.handleListReports(context.Background(), callRequest("modpanel_list_reports", map[string]interface{}{
		"status": "open",
	}))
	text := resultText(t, res)
	if res.IsError {
		t.Fatalf("tool error: %s", text)
	}
	var out struct {
		Total   int `json:"total"`
		Reports []struct {
			ID       string `json:"id"`
			Reporter string `json:"reporter"`
			Target   string `json:"target"`
		} `json:"reports"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Total != 1 || out.Reports[0].ID != "r1" || out.Reports[0].Reporter != "alice" || out.Reports[0].Target != "bob" {
		t.Errorf("unexpected listing: %+v", out)
	}

	res, _ = s.handleListReports(context.Background(), callRequest("modpanel_list_reports", map[string]interface{}{
		"status": "pending",
	}))
	if !res.IsError {
		t.Error("expected tool error for unknown status")
	}
}

func TestHandleGetReportNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	res, _ := s.handleGetReport(context.Background(), callRequest("modpanel_get_report", map[string]interface{}{
		"report_id": "nope",
	}))
	if !res.IsError || !strings.Contains(resultText(t, res), "not found") {
		t.Errorf("expected not-found tool error, got %+v", res)
	}

	res, _ = s.handleGetReport(context.Background(), callRequest("modpanel_get_report", nil))
	if !res.IsError {
		t.Error("expected error for missing report_id")
	}
}

func TestHandleGetUser(t *testing.T) {
	s, _ := newTestServer(t)
	res, _ := s.handleGetUser(context.Background(), callRequest("modpanel_get_user", map[string]interface{}{
		"user_id": "u2",
	}))
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, res))
	}
	var out struct {
		Stats   model.UserModerationStats `json:"stats"`
		Reports []model.Report            `json:"reports"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Stats.OpenReports != 1 || len(out.Reports) != 2 {
		t.Errorf("stats = %+v, reports = %d", out.Stats, len(out.Reports))
	}

	// Unknown locally and on the backend.
	res, _ = s.handleGetUser(context.Background(), callRequest("modpanel_get_user", map[string]interface{}{
		"user_id": "u9",
	}))
	if !res.IsError || !strings.Contains(resultText(t, res), "not found") {
		t.Errorf("expected not-found tool error, got %+v", res)
	}
}

func TestHandleListChats(t *testing.T) {
	s, backend := newTestServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
		want int
	}{
		{"all chats", nil, 2},
		{"member filter", map[string]interface{}{"user_id": "u2"}, 1},
		{"no chats", map[string]interface{}{"user_id": "u1"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := s.handleListChats(context.Background(), callRequest("modpanel_list_chats", tt.args))
			if res.IsError {
				t.Fatalf("unexpected error: %s", resultText(t, res))
			}
			var chats []model.Chat
			if err := json.Unmarshal([]byte(resultText(t, res)), &chats); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if chats == nil || len(chats) != tt.want {
				t.Errorf("got %d chats, want %d", len(chats), tt.want)
			}
		})
	}

	backend.failErr = errors.New("backend down")
	res, _ := s.handleListChats(context.Background(), callRequest("modpanel_list_chats", nil))
	if !res.IsError {
		t.Error("expected tool error on backend failure")
	}
}

func TestHandleRejectReportIsLocalOnly(t *testing.T) {
	s, _ := newTestServer(t)
	res, _ := s.handleRejectReport(context.Background(), callRequest("modpanel_reject_report", map[string]interface{}{
		"report_id": "r1",
		"note":      "not abuse",
	}))
	text := resultText(t, res)
	if res.IsError {
		t.Fatalf("tool error: %s", text)
	}
	var out actionResult
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Consistency != moderation.LocalOnly || out.Report == nil || out.Report.Status != model.ReportStatusRejected {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestHandleSetUserStatus(t *testing.T) {
	s, backend := newTestServer(t)
	s.cache.LoadData(context.Background())

	res, _ := s.handleSetUserStatus(context.Background(), callRequest("modpanel_set_user_status", map[string]interface{}{
		"user_id": "u2",
		"status":  "banned",
		"note":    "spam bot",
	}))
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if backend.banned["u2"] != "spam bot" {
		t.Errorf("ban reason = %q", backend.banned["u2"])
	}

	logs := s.cache.AuditLogs()
	if len(logs) != 1 || logs[0].Action != "SET_USER_STATUS_BANNED" {
		t.Errorf("audit logs = %+v", logs)
	}

	res, _ = s.handleSetUserStatus(context.Background(), callRequest("modpanel_set_user_status", map[string]interface{}{
		"user_id": "u2",
		"status":  "frozen",
	}))
	if !res.IsError {
		t.Error("expected tool error for invalid status")
	}
}

func TestHandleResolveReportBackendError(t *testing.T) {
	s, backend := newTestServer(t)
	backend.failErr = errors.New("backend down")

	res, err := s.handleResolveReport(context.Background(), callRequest("modpanel_resolve_report", map[string]interface{}{
		"report_id": "r1",
	}))
	if err != nil {
		t.Fatalf("protocol error: %v", err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "backend down") {
		t.Errorf("expected tool error, got %+v", res)
	}
}

func TestHandleAuditLogLimit(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	s.cache.LoadData(ctx)
	s.cache.RejectReport(ctx, "r1", "")
	s.cache.ResolveReport(ctx, "r1", "")

	res, _ := s.handleAuditLog(ctx, callRequest("modpanel_audit_log", map[string]interface{}{"limit": 1}))
	var logs []model.AuditLog
	if err := json.Unmarshal([]byte(resultText(t, res)), &logs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != model.ActionResolveReport {
		t.Errorf("logs = %+v", logs)
	}
}

func TestUserResource(t *testing.T) {
	s, _ := newTestServer(t)

	var req mcp.ReadResourceRequest
	req.Params.URI = "modpanel://users/u2"
	contents, err := s.handleUserResource(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	if !strings.Contains(text, `"reportsReceived": 2`) {
		t.Errorf("unexpected resource body: %s", text)
	}

	req.Params.URI = "modpanel://users/"
	if _, err := s.handleUserResource(context.Background(), req); err == nil {
		t.Error("expected error for empty user id")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		val      int
		min      int
		max      int
		expected int
	}{
		{"value in range", 5, 1, 10, 5},
		{"value below min", -3, 1, 10, 1},
		{"value above max", 15, 1, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clamp(tt.val, tt.min, tt.max)
			if got != tt.expected {
				t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.val, tt.min, tt.max, got, tt.expected)
			}
		})
	}
}

func TestAnnotations(t *testing.T) {
	if ann := readOnlyAnnotation(); ann.ReadOnlyHint == nil || !*ann.ReadOnlyHint {
		t.Error("readOnlyAnnotation should set ReadOnlyHint")
	}
	if ann := destructiveAnnotation(); ann.DestructiveHint == nil || !*ann.DestructiveHint {
		t.Error("destructiveAnnotation should set DestructiveHint")
	}
	if ann := mutatingAnnotation(); *ann.ReadOnlyHint || *ann.DestructiveHint {
		t.Error("mutatingAnnotation should be neither read-only nor destructive")
	}
}

func TestArgumentHelpers(t *testing.T) {
	req := callRequest("x", map[string]interface{}{
		"report_id": "  r1 \n",
		"blank":     "   ",
		"limit":     5000,
	})

	if id, err := requireID(req, "report_id"); err != nil || id != "r1" {
		t.Errorf("requireID = %q, %v; want r1", id, err)
	}
	if _, err := requireID(req, "blank"); err == nil {
		t.Error("requireID should reject a whitespace-only value")
	}
	if got := limitArg(req); got != maxListLimit {
		t.Errorf("limitArg = %d, want %d", got, maxListLimit)
	}
	if got := limitArg(callRequest("x", nil)); got != defaultListLimit {
		t.Errorf("default limitArg = %d, want %d", got, defaultListLimit)
	}
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillexchange/modpanel/internal/model"
	"github.com/skillexchange/modpanel/internal/moderation"
)

// ModerationHandler serves the dashboard's moderation endpoints on top of
// the moderation cache.
type ModerationHandler struct {
	cache *moderation.Cache
}

// NewModerationHandler creates a new ModerationHandler.
func NewModerationHandler(cache *moderation.Cache) *ModerationHandler {
	return &ModerationHandler{cache: cache}
}

// actionResult is returned by every mutating endpoint so callers can tell
// whether the change reached the backend.
type actionResult struct {
	Action      string                     `json:"action"`
	TargetID    string                     `json:"targetId"`
	Consistency moderation.Consistency     `json:"consistency"`
	Report      *model.Report              `json:"report,omitempty"`
	Message     *model.Message             `json:"message,omitempty"`
	Stats       *model.UserModerationStats `json:"stats,omitempty"`
}

type noteRequest struct {
	Note string `json:"note"`
}

type userStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type fileReportRequest struct {
	TargetID string `json:"targetId"`
	Content  string `json:"content"`
	Evidence string `json:"evidence"`
}

type moderationRequest struct {
	Status string `json:"status"`
}

type reportDetail struct {
	Report        model.Report `json:"report"`
	ReporterLabel string       `json:"reporterLabel"`
	TargetLabel   string       `json:"targetLabel"`
}

type userDetail struct {
	User    model.User                 `json:"user"`
	Stats   *model.UserModerationStats `json:"stats,omitempty"`
	Reports []model.Report             `json:"reports"`
}

// Load handles POST /admin/api/load.
func (h *ModerationHandler) Load(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.LoadData(r.Context()); err != nil {
		writeError(w, classifyError(err), h.cache.Error())
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"users":   len(h.cache.Users()),
		"reports": len(h.cache.FilteredReports(model.ReportFilters{})),
	}, "Data loaded")
}

// ensureLoaded loads the working set on first use. It reports whether the
// request may continue.
func (h *ModerationHandler) ensureLoaded(w http.ResponseWriter, r *http.Request) bool {
	if h.cache.DataLoaded() {
		return true
	}
	if err := h.cache.LoadData(r.Context()); err != nil {
		writeError(w, classifyError(err), h.cache.Error())
		return false
	}
	return true
}

// Dashboard handles GET /admin/api/dashboard.
func (h *ModerationHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if !h.ensureLoaded(w, r) {
		return
	}
	writeData(w, http.StatusOK, h.cache.DashboardSummary(), "")
}

// ListReports handles GET /admin/api/reports.
func (h *ModerationHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	f := model.ReportFilters{
		Status:     queryString(r, "status"),
		TargetType: queryString(r, "targetType"),
		ReasonCode: queryString(r, "reasonCode"),
		Search:     r.URL.Query().Get("search"),
	}
	if err := moderation.ValidateFilters(f); err != nil {
		writeActionError(w, err)
		return
	}
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	if !h.ensureLoaded(w, r) {
		return
	}

	reports := h.cache.FilteredReports(f)
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	writeData(w, http.StatusOK, reports, "")
}

// GetReport handles GET /admin/api/reports/{id}.
func (h *ModerationHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	if !h.ensureLoaded(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	report := h.cache.ReportByID(id)
	if report == nil {
		writeNotFound(w, "Report", id)
		return
	}
	writeData(w, http.StatusOK, reportDetail{
		Report:        *report,
		ReporterLabel: h.cache.UserLabel(report.Reporter),
		TargetLabel:   h.cache.UserLabel(report.Target),
	}, "")
}

// ResolveReport handles POST /admin/api/reports/{id}/resolve.
func (h *ModerationHandler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req noteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.cache.ResolveReport(r.Context(), id, req.Note); err != nil {
		writeActionError(w, err)
		return
	}
	writeData(w, http.StatusOK, actionResult{
		Action:      "resolve_report",
		TargetID:    id,
		Consistency: moderation.ConsistencyOf("resolve_report"),
		Report:      h.cache.ReportByID(id),
	}, "Report resolved")
}

// RejectReport handles POST /admin/api/reports/{id}/reject.
func (h *ModerationHandler) RejectReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req noteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.cache.RejectReport(r.Context(), id, req.Note); err != nil {
		writeActionError(w, err)
		return
	}
	writeData(w, http.StatusOK, actionResult{
		Action:      "reject_report",
		TargetID:    id,
		Consistency: moderation.ConsistencyOf("reject_report"),
		Report:      h.cache.ReportByID(id),
	}, "Report rejected")
}

// DeleteReport handles DELETE /admin/api/reports/{id}.
func (h *ModerationHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.cache.DeleteReport(r.Context(), id); err != nil {
		writeActionError(w, err)
		return
	}
	writeData(w, http.StatusOK, actionResult{
		Action:      "delete_report",
		TargetID:    id,
		Consistency: moderation.ConsistencyOf("delete_report"),
	}, "Report deleted")
}

// FileReport handles POST /admin/api/reports.
func (h *ModerationHandler) FileReport(w http.ResponseWriter, r *http.Request) {
	var req fileReportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.ensureLoaded(w, r) {
		return
	}
	report, err := h.cache.FileReport(r.Context(), req.TargetID, req.Content, req.Evidence)
	if err != nil {
		writeActionError(w, err)
		return
	}
	writeData(w, http.StatusCreated, actionResult{
		Action:      "file_report",
		TargetID:    req.TargetID,
		Consistency: moderation.ConsistencyOf("file_report"),
		Report:      report,
	}, "Report filed")
}

// GetUser handles GET /admin/api/users/{id}.
func (h *ModerationHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	if !h.ensureLoaded(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	user, err := h.cache.FetchUser(r.Context(), id)
	if err != nil {
		if classifyError(err) == http.StatusNotFound {
			writeNotFound(w, "User", id)
			return
		}
		writeActionError(w, err)
		return
	}
	reports := h.cache.ReportsForUser(id)
	if reports == nil {
		reports = []model.Report{}
	}
	writeData(w, http.StatusOK, userDetail{
		User:    *user,
		Stats:   h.cache.UserModeration(id),
		Reports: reports,
	}, "")
}

// SetUserStatus handles POST /admin/api/users/{id}/status.
func (h *ModerationHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req userStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	status, err := model.ParseUserStatus(req.Status)
	if err != nil {
		writeActionError(w, err)
		return
	}
	if err := h.cache.SetUserStatus(r.Context(), id, status, req.Note); err != nil {
		writeActionError(w, err)
		return
	}
	writeData(w, http.StatusOK, actionResult{
		Action:      "set_user_status",
		TargetID:    id,
		Consistency: moderation.ConsistencyOf("set_user_status"),
		Stats:       h.cache.UserModeration(id),
	}, "User status updated")
}

// Chats handles GET /admin/api/chats. The optional userId parameter narrows
// the list to one member's chats.
func (h *ModerationHandler) Chats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.cache.Chats(r.Context(), queryString(r, "userId"))
	if err != nil {
		writeActionError(w, err)
		return
	}
	writeData(w, http.StatusOK, chats, "")
}

// ChatMessages handles GET /admin/api/chats/{id}/messages.
func (h *ModerationHandler) ChatMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.cache.LoadChatMessages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeActionError(w, err)
		return
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	writeData(w, http.StatusOK, msgs, "")
}

// SetMessageModeration handles POST /admin/api/messages/{id}/moderation.
func (h *ModerationHandler) SetMessageModeration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req moderationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.cache.SetMessageModeration(r.Context(), id, model.ModerationStatus(req.Status)); err != nil {
		writeActionError(w, err)
		return
	}
	writeData(w, http.StatusOK, actionResult{
		Action:      "set_message_moderation",
		TargetID:    id,
		Consistency: moderation.ConsistencyOf("set_message_moderation"),
		Message:     h.cache.Message(id),
	}, "Message moderation updated")
}

// DeleteMessage handles DELETE /admin/api/messages/{id}.
func (h *ModerationHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.cache.DeleteMessage(r.Context(), id); err != nil {
		writeActionError(w, err)
		return
	}
	writeData(w, http.StatusOK, actionResult{
		Action:      "delete_message",
		TargetID:    id,
		Consistency: moderation.ConsistencyOf("delete_message"),
	}, "Message deleted")
}

// AuditLogs handles GET /admin/api/audit-logs.
func (h *ModerationHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	logs := h.cache.AuditLogs()
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	writeData(w, http.StatusOK, logs, "")
}

// Actions handles GET /admin/api/actions.
func (h *ModerationHandler) Actions(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, moderation.Actions(), "")
}

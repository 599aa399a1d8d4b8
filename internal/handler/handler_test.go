package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/skillexchange/modpanel/internal/apiclient"
	"github.com/skillexchange/modpanel/internal/config"
	"github.com/skillexchange/modpanel/internal/moderation"
	"github.com/skillexchange/modpanel/internal/session"
)

const (
	usersJSON = `{"data":[
		{"_id":"u1","username":"alice","email":"alice@example.com"},
		{"_id":"u2","username":"bob","email":"bob@example.com"},
		{"_id":"u3","username":"carol","email":"carol@example.com","banned":true}
	]}`
	reportsJSON = `{"data":[
		{"_id":"r1","senderID":"u1","targetID":"u2","content":"spam links","isResolved":false,"createdAt":"2026-01-02T00:00:00Z","updatedAt":"2026-01-02T00:00:00Z"},
		{"_id":"r2","senderID":{"_id":"u3","username":"carol"},"targetID":"u2","content":"rude","isResolved":true,"createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}
	]}`
	messagesJSON = `{"data":[
		{"_id":"m1","chatID":"c1","senderID":"u2","content":"hello","createdAt":"2026-01-01T00:00:00Z"}
	]}`
)

// fakeAPI is a stand-in for the moderation backend.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []string
	failOn string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api/v1")
	f.mu.Lock()
	f.calls = append(f.calls, key)
	failOn := f.failOn
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if key == failOn {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"message":"backend exploded"}`)
		return
	}

	switch key {
	case "POST /user/login":
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"message":"Invalid credentials"}`)
			return
		}
		io.WriteString(w, `{"access_token":"at","refresh_token":"rt","data":{"_id":"a1","email":"admin@example.com","isAdmin":true}}`)
	case "POST /user/logout":
		io.WriteString(w, `{"message":"ok"}`)
	case "GET /user/find":
		io.WriteString(w, usersJSON)
	case "GET /report/all":
		io.WriteString(w, reportsJSON)
	case "GET /message/find/c1":
		io.WriteString(w, messagesJSON)
	case "GET /user/findbyid/u9":
		io.WriteString(w, `{"data":{"_id":"u9","username":"newbie","email":"newbie@example.com"}}`)
	case "GET /chat/find":
		io.WriteString(w, `{"data":[{"_id":"c1","members":["u1","u2"]},{"_id":"c2","members":["u2","u3"]}]}`)
	case "GET /chat/find/u1":
		io.WriteString(w, `{"data":[{"_id":"c1","members":["u1","u2"]}]}`)
	case "POST /report/add":
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		fmt.Fprintf(w, `{"data":{"_id":"r3","senderID":%q,"targetID":%q,"content":%q,"isResolved":false,"createdAt":"2026-01-03T00:00:00Z"}}`,
			body["senderID"], body["targetID"], body["content"])
	case "PUT /report/resolve/r1", "DELETE /report/r1", "PATCH /user/ban/u2",
		"DELETE /user/delete/u2", "PATCH /user/update/u2", "DELETE /message/delete/m1":
		io.WriteString(w, `{"message":"ok"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"not found"}`)
	}
}

func (f *fakeAPI) fail(key string) {
	f.mu.Lock()
	f.failOn = key
	f.mu.Unlock()
}

func (f *fakeAPI) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}

type testEnv struct {
	api     *fakeAPI
	router  http.Handler
	manager *session.Manager
	cache   *moderation.Cache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api := &fakeAPI{}
	backend := httptest.NewServer(api)
	t.Cleanup(backend.Close)

	store, err := config.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := apiclient.New(apiclient.BuildURL(backend.URL, apiclient.DefaultVersion), apiclient.WithLogger(logger))
	manager := session.New(client, store, logger)
	cache := moderation.New(client, manager, logger)

	sh := NewSessionHandler(manager, cache)
	mh := NewModerationHandler(cache)

	r := chi.NewRouter()
	r.Route("/admin/api", func(r chi.Router) {
		r.Post("/session", sh.Login)
		r.Delete("/session", sh.Logout)
		r.Get("/session", sh.Current)
		r.Post("/load", mh.Load)
		r.Get("/dashboard", mh.Dashboard)
		r.Get("/actions", mh.Actions)
		r.Get("/reports", mh.ListReports)
		r.Post("/reports", mh.FileReport)
		r.Get("/reports/{id}", mh.GetReport)
		r.Post("/reports/{id}/resolve", mh.ResolveReport)
		r.Post("/reports/{id}/reject", mh.RejectReport)
		r.Delete("/reports/{id}", mh.DeleteReport)
		r.Get("/users/{id}", mh.GetUser)
		r.Post("/users/{id}/status", mh.SetUserStatus)
		r.Get("/chats", mh.Chats)
		r.Get("/chats/{id}/messages", mh.ChatMessages)
		r.Post("/messages/{id}/moderation", mh.SetMessageModeration)
		r.Delete("/messages/{id}", mh.DeleteMessage)
		r.Get("/audit-logs", mh.AuditLogs)
	})

	return &testEnv{api: api, router: r, manager: manager, cache: cache}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	w := e.do(t, "POST", "/admin/api/session", `{"email":"admin@example.com","password":"secret"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v; body = %s", err, w.Body.String())
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v; data = %s", err, string(env.Data))
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (int, string) {
	t.Helper()
	var env struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v; body = %s", err, w.Body.String())
	}
	return env.Error.Code, env.Error.Message
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

func TestLoginSetsCookie(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/admin/api/session", `{"email":"admin@example.com","password":"secret","rememberMe":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("expected admin_session cookie")
	}
	if cookie.Value == "" || !cookie.HttpOnly || cookie.Path != "/admin" {
		t.Errorf("unexpected cookie: %+v", cookie)
	}
	if cookie.Expires.IsZero() {
		t.Error("remember-me cookie should carry an expiry")
	}

	var state session.State
	decodeData(t, w, &state)
	if !state.IsAuthed || state.Email != "admin@example.com" || !state.RememberMe {
		t.Errorf("unexpected state: %+v", state)
	}
}

func TestLoginValidation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{"missing password", `{"email":"admin@example.com"}`, http.StatusBadRequest, "Email and password are required"},
		{"malformed body", `{"email":`, http.StatusBadRequest, ""},
		{"wrong password", `{"email":"admin@example.com","password":"nope"}`, http.StatusUnauthorized, "Invalid credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.do(t, "POST", "/admin/api/session", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d; body = %s", w.Code, tt.wantCode, w.Body.String())
			}
			code, msg := decodeError(t, w)
			if code != tt.wantCode {
				t.Errorf("error code = %d", code)
			}
			if tt.wantMsg != "" && msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestLogoutResetsCache(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	if w := env.do(t, "POST", "/admin/api/load", ""); w.Code != http.StatusOK {
		t.Fatalf("load status = %d", w.Code)
	}

	w := env.do(t, "DELETE", "/admin/api/session", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if env.manager.IsAuthed() {
		t.Error("manager still authenticated")
	}
	if env.cache.DataLoaded() {
		t.Error("cache should be reset on logout")
	}
	if !env.api.called("POST /user/logout") {
		t.Error("backend logout not called")
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge >= 0 {
			t.Errorf("cookie not cleared: %+v", c)
		}
	}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func TestDashboardLoadsLazily(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	w := env.do(t, "GET", "/admin/api/dashboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var summary struct {
		OpenReportsCount int `json:"openReportsCount"`
		TopReportedUsers []struct {
			UserID          string `json:"userId"`
			ReportsReceived int    `json:"reportsReceived"`
		} `json:"topReportedUsers"`
	}
	decodeData(t, w, &summary)
	if summary.OpenReportsCount != 1 {
		t.Errorf("open reports = %d, want 1", summary.OpenReportsCount)
	}
	if len(summary.TopReportedUsers) != 1 || summary.TopReportedUsers[0].UserID != "u2" || summary.TopReportedUsers[0].ReportsReceived != 2 {
		t.Errorf("top reported = %+v", summary.TopReportedUsers)
	}
}

func TestListReportsFilters(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"r1", "r2"}},
		{"?status=open", []string{"r1"}},
		{"?status=ALL&search=carol", []string{"r2"}},
		{"?search=spam", []string{"r1"}},
		{"?limit=1", []string{"r1"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := env.do(t, "GET", "/admin/api/reports"+tt.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			var reports []struct {
				ID string `json:"_id"`
			}
			decodeData(t, w, &reports)
			var got []string
			for _, r := range reports {
				got = append(got, r.ID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListReportsRejectsUnknownFilter(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/admin/api/reports?status=bogus", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetReportLabels(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	w := env.do(t, "GET", "/admin/api/reports/r1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var detail struct {
		ReporterLabel string `json:"reporterLabel"`
		TargetLabel   string `json:"targetLabel"`
	}
	decodeData(t, w, &detail)
	if detail.ReporterLabel != "alice" || detail.TargetLabel != "bob" {
		t.Errorf("labels = %+v", detail)
	}

	if w := env.do(t, "GET", "/admin/api/reports/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing report status = %d, want 404", w.Code)
	}
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	w := env.do(t, "GET", "/admin/api/users/u2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var detail struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		Stats struct {
			ReportsReceived int `json:"reportsReceived"`
			OpenReports     int `json:"openReports"`
		} `json:"stats"`
		Reports []json.RawMessage `json:"reports"`
	}
	decodeData(t, w, &detail)
	if detail.User.Username != "bob" || detail.Stats.ReportsReceived != 2 || detail.Stats.OpenReports != 1 || len(detail.Reports) != 2 {
		t.Errorf("unexpected detail: %+v", detail)
	}

	if w := env.do(t, "GET", "/admin/api/users/nobody", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", w.Code)
	}
}

// ---------------------------------------------------------------------------
// Actions
// ---------------------------------------------------------------------------

func TestResolveReport(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.do(t, "POST", "/admin/api/load", "")

	w := env.do(t, "POST", "/admin/api/reports/r1/resolve", `{"note":"handled"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res struct {
		Consistency string `json:"consistency"`
		Report      struct {
			Status         string `json:"status"`
			ResolutionNote string `json:"resolutionNote"`
		} `json:"report"`
	}
	decodeData(t, w, &res)
	if res.Consistency != string(moderation.ServerConfirmed) {
		t.Errorf("consistency = %q", res.Consistency)
	}
	if res.Report.Status != "RESOLVED" || res.Report.ResolutionNote != "handled" {
		t.Errorf("report = %+v", res.Report)
	}
	if !env.api.called("PUT /report/resolve/r1") {
		t.Error("backend resolve not called")
	}

	logs := env.cache.AuditLogs()
	if len(logs) != 1 || logs[0].Action != "RESOLVE_REPORT" || logs[0].AdminEmail != "admin@example.com" {
		t.Errorf("audit logs = %+v", logs)
	}
}

func TestResolveReportBackendError(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.do(t, "POST", "/admin/api/load", "")
	env.api.fail("PUT /report/resolve/r1")

	w := env.do(t, "POST", "/admin/api/reports/r1/resolve", `{}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if _, msg := decodeError(t, w); msg != "backend exploded" {
		t.Errorf("message = %q", msg)
	}
	if len(env.cache.AuditLogs()) != 0 {
		t.Error("failed action must not be audited")
	}
}

func TestRejectReportIsLocalOnly(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.do(t, "POST", "/admin/api/load", "")

	w := env.do(t, "POST", "/admin/api/reports/r1/reject", `{"note":"not abuse"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res struct {
		Consistency string `json:"consistency"`
		Report      struct {
			Status string `json:"status"`
		} `json:"report"`
	}
	decodeData(t, w, &res)
	if res.Consistency != string(moderation.LocalOnly) || res.Report.Status != "REJECTED" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestDeleteReport(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.do(t, "POST", "/admin/api/load", "")

	if w := env.do(t, "DELETE", "/admin/api/reports/r1", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if env.cache.ReportByID("r1") != nil {
		t.Error("report still cached")
	}
}

func TestSetUserStatus(t *testing.T) {
	tests := []struct {
		status  string
		backend string
	}{
		{"BANNED", "PATCH /user/ban/u2"},
		{"deleted", "DELETE /user/delete/u2"},
		{"SUSPENDED", "PATCH /user/update/u2"},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			env := newTestEnv(t)
			env.login(t)
			env.do(t, "POST", "/admin/api/load", "")

			w := env.do(t, "POST", "/admin/api/users/u2/status", `{"status":"`+tt.status+`","note":"abuse"}`)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			if !env.api.called(tt.backend) {
				t.Errorf("expected backend call %q", tt.backend)
			}
			var res struct {
				Stats struct {
					Status string `json:"status"`
				} `json:"stats"`
			}
			decodeData(t, w, &res)
			if res.Stats.Status != strings.ToUpper(tt.status) {
				t.Errorf("stats status = %q", res.Stats.Status)
			}
		})
	}
}

func TestSetUserStatusInvalid(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/admin/api/users/u2/status", `{"status":"frozen"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestMessageModeration(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	w := env.do(t, "GET", "/admin/api/chats/c1/messages", "")
	if w.Code != http.StatusOK {
		t.Fatalf("messages status = %d", w.Code)
	}
	var msgs []struct {
		ID               string `json:"_id"`
		ModerationStatus string `json:"moderationStatus"`
	}
	decodeData(t, w, &msgs)
	if len(msgs) != 1 || msgs[0].ModerationStatus != "VISIBLE" {
		t.Fatalf("messages = %+v", msgs)
	}

	w = env.do(t, "POST", "/admin/api/messages/m1/moderation", `{"status":"hidden_admin"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("moderation status = %d, body = %s", w.Code, w.Body.String())
	}
	if m := env.cache.Message("m1"); m == nil || m.ModerationStatus != "HIDDEN_ADMIN" {
		t.Errorf("message = %+v", m)
	}

	if w := env.do(t, "POST", "/admin/api/messages/m1/moderation", `{"status":"gone"}`); w.Code != http.StatusBadRequest {
		t.Errorf("invalid status code = %d, want 400", w.Code)
	}

	if w := env.do(t, "DELETE", "/admin/api/messages/m1", ""); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if !env.api.called("DELETE /message/delete/m1") {
		t.Error("backend delete not called")
	}
	if w := env.do(t, "DELETE", "/admin/api/messages/m1", ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestAuditLogsLimit(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.do(t, "POST", "/admin/api/load", "")
	env.do(t, "POST", "/admin/api/reports/r1/reject", `{}`)
	env.do(t, "POST", "/admin/api/reports/r1/resolve", `{}`)

	w := env.do(t, "GET", "/admin/api/audit-logs?limit=1", "")
	var logs []struct {
		Action string `json:"action"`
	}
	decodeData(t, w, &logs)
	if len(logs) != 1 || logs[0].Action != "RESOLVE_REPORT" {
		t.Errorf("logs = %+v", logs)
	}
}

func TestLoadFailureKeepsError(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.api.fail("GET /report/all")

	w := env.do(t, "POST", "/admin/api/load", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if env.cache.Error() == "" {
		t.Error("cache error should be set")
	}
}

func TestGetUserFetchesUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	w := env.do(t, "GET", "/admin/api/users/u9", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var detail struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeData(t, w, &detail)
	if detail.User.Username != "newbie" || !env.api.called("GET /user/findbyid/u9") {
		t.Errorf("detail = %+v", detail)
	}
	if env.cache.Error() != "" {
		t.Errorf("lookup should not set the cache error, got %q", env.cache.Error())
	}
}

func TestChats(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	var chats []struct {
		ID string `json:"_id"`
	}
	w := env.do(t, "GET", "/admin/api/chats", "")
	decodeData(t, w, &chats)
	if w.Code != http.StatusOK || len(chats) != 2 {
		t.Errorf("all chats: status %d, %+v", w.Code, chats)
	}

	w = env.do(t, "GET", "/admin/api/chats?userId=u1", "")
	decodeData(t, w, &chats)
	if len(chats) != 1 || chats[0].ID != "c1" || !env.api.called("GET /chat/find/u1") {
		t.Errorf("user chats = %+v", chats)
	}
}

func TestFileReport(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	w := env.do(t, "POST", "/admin/api/reports", `{"targetId":"u3","content":"impersonation"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var res struct {
		Consistency string `json:"consistency"`
		Report      struct {
			ID     string `json:"_id"`
			Status string `json:"status"`
		} `json:"report"`
	}
	decodeData(t, w, &res)
	if res.Consistency != "server-confirmed" || res.Report.ID != "r3" || res.Report.Status != "OPEN" {
		t.Errorf("result = %+v", res)
	}
	if st := env.cache.UserModeration("u3"); st == nil || st.OpenReports != 1 {
		t.Errorf("stats for u3 = %+v", st)
	}

	if w := env.do(t, "POST", "/admin/api/reports", `{"targetId":"u3"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing content status = %d, want 400", w.Code)
	}
}

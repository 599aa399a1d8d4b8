package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/skillexchange/modpanel/internal/apiclient"
	"github.com/skillexchange/modpanel/internal/model"
	"github.com/skillexchange/modpanel/internal/moderation"
)

func TestLimitParam(t *testing.T) {
	tests := []struct {
		url    string
		want   int
		ok     bool
		status int
	}{
		{"/reports", 0, true, 0},
		{"/reports?limit=5", 5, true, 0},
		{"/reports?limit=%205%20", 5, true, 0},
		{"/reports?limit=0", 0, true, 0},
		{"/reports?limit=-1", 0, false, http.StatusBadRequest},
		{"/reports?limit=ten", 0, false, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			w := httptest.NewRecorder()
			got, ok := limitParam(w, httptest.NewRequest("GET", tt.url, nil))
			if got != tt.want || ok != tt.ok {
				t.Errorf("limitParam = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.ok)
			}
			if !tt.ok && w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestQueryStringTrims(t *testing.T) {
	r := httptest.NewRequest("GET", "/reports?status=%20OPEN%20", nil)
	if got := queryString(r, "status"); got != "OPEN" {
		t.Errorf("queryString = %q, want OPEN", got)
	}
	if got := queryString(r, "missing"); got != "" {
		t.Errorf("missing param = %q, want empty", got)
	}
}

func TestDecodeBody(t *testing.T) {
	t.Run("note", func(t *testing.T) {
		var req noteRequest
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/resolve", strings.NewReader(`{"note":"dup of r2"}`))
		if !decodeBody(w, r, &req) || req.Note != "dup of r2" {
			t.Errorf("decodeBody note = %q", req.Note)
		}
	})

	t.Run("empty body keeps defaults", func(t *testing.T) {
		req := noteRequest{Note: "unchanged"}
		w := httptest.NewRecorder()
		if !decodeBody(w, httptest.NewRequest("POST", "/resolve", nil), &req) || req.Note != "unchanged" {
			t.Errorf("empty body: note = %q", req.Note)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		var req noteRequest
		w := httptest.NewRecorder()
		if decodeBody(w, httptest.NewRequest("POST", "/resolve", strings.NewReader(`{note}`)), &req) {
			t.Fatal("expected failure")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("oversized", func(t *testing.T) {
		var req noteRequest
		body := `{"note":"` + strings.Repeat("x", maxBodyBytes) + `"}`
		w := httptest.NewRecorder()
		if decodeBody(w, httptest.NewRequest("POST", "/resolve", strings.NewReader(body)), &req) {
			t.Fatal("expected failure")
		}
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", w.Code)
		}
	})
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"backend status passes through", &apiclient.APIError{StatusCode: 404, Message: "Report not found"}, http.StatusNotFound},
		{"session expired", fmt.Errorf("resolve: %w", apiclient.ErrSessionExpired), http.StatusUnauthorized},
		{"network failure", fmt.Errorf("load: %w", apiclient.ErrNetwork), http.StatusBadGateway},
		{"unloaded message", moderation.ErrMessageNotFound, http.StatusNotFound},
		{"unknown user", fmt.Errorf("%w: u9", moderation.ErrUserNotFound), http.StatusNotFound},
		{"incomplete report", moderation.ErrInvalidReport, http.StatusBadRequest},
		{"bad enum", &model.EnumError{Kind: "user status", Value: "x"}, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyError(tt.err); got != tt.want {
				t.Errorf("classifyError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWriteNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	writeNotFound(w, "Report", "r9")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var resp model.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Message != "Report not found: r9" || resp.Error.Context["id"] != "r9" {
		t.Errorf("unexpected error body: %+v", resp.Error)
	}
}

func TestWriteDataEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	writeData(w, http.StatusOK, []string{"r1"}, "Data loaded")

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var resp struct {
		Data    []string `json:"data"`
		Message string   `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0] != "r1" || resp.Message != "Data loaded" {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/skillexchange/modpanel/internal/apiclient"
	"github.com/skillexchange/modpanel/internal/model"
	"github.com/skillexchange/modpanel/internal/moderation"
)

// maxBodyBytes caps request bodies. Every body this API accepts is a note,
// a status or a login form.
const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeData wraps v in the {data, message} success envelope.
func writeData(w http.ResponseWriter, status int, v interface{}, message string) {
	writeJSON(w, status, model.DataResponse{Data: v, Message: message})
}

// writeError writes the {error: {code, message}} envelope.
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, model.ErrorResponse{
		Error: model.ErrorDetail{Code: code, Message: message},
	})
}

// writeNotFound reports a missing report, user or message and echoes its id
// in the error context.
func writeNotFound(w http.ResponseWriter, kind, id string) {
	writeJSON(w, http.StatusNotFound, model.ErrorResponse{
		Error: model.ErrorDetail{
			Code:    http.StatusNotFound,
			Message: kind + " not found: " + id,
			Context: map[string]interface{}{"id": id},
		},
	})
}

// decodeBody reads a JSON body of at most maxBodyBytes into v. An empty body
// leaves v untouched. On failure it writes a 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
	return false
}

// queryString returns a query parameter with surrounding whitespace removed.
func queryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// limitParam parses the optional "limit" query parameter. Zero means no
// limit. A negative or non-numeric value is answered with a 400.
func limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := queryString(r, "limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}

// classifyError maps a moderation or backend failure to an HTTP status.
// Backend statuses pass through; transport failures become 502.
func classifyError(err error) int {
	var enumErr *model.EnumError
	switch {
	case errors.As(err, &enumErr), errors.Is(err, moderation.ErrInvalidReport):
		return http.StatusBadRequest
	case errors.Is(err, moderation.ErrMessageNotFound), errors.Is(err, moderation.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, apiclient.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, apiclient.ErrNetwork):
		return http.StatusBadGateway
	}
	if code := apiclient.StatusCode(err); code >= 400 && code < 600 {
		return code
	}
	return http.StatusInternalServerError
}

func writeActionError(w http.ResponseWriter, err error) {
	writeError(w, classifyError(err), err.Error())
}

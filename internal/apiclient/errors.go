package apiclient

import "errors"

var (
	// ErrSessionExpired is returned when a request was rejected with 401 and
	// the refresh callback could not produce a new access token.
	ErrSessionExpired = errors.New("session expired")
	// ErrNetwork marks transport-level failures (DNS, connection, decoding).
	ErrNetwork = errors.New("network error")
)

const (
	msgSessionExpired = "Session expired"
	msgNetworkError   = "Network error"
	msgGenericError   = "An error occurred"
)

// APIError is the error shape every failed request resolves to. Message is
// the backend's own message when it sent one and is meant to be shown to
// the admin verbatim.
type APIError struct {
	StatusCode int
	Message    string
	err        error
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel (ErrSessionExpired, ErrNetwork) if any.
func (e *APIError) Unwrap() error {
	return e.err
}

// StatusCode returns the HTTP status carried by err, or 0 when err did not
// come from a backend response.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func networkError(err error) *APIError {
	msg := msgNetworkError
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &APIError{Message: msg, err: ErrNetwork}
}

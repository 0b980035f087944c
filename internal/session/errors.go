package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Session-fatal errors. These are handled centrally: the app tears down the
// cache and returns to the login screen.
var (
	// ErrNotAuthenticated means no access token is present at all. No
	// network call is attempted.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired means the token refresh failed or no refresh token
	// was available. The credential store has already been cleared.
	ErrSessionExpired = errors.New("session expired")
)

// RequestError is a server rejection of a single operation. The session
// remains valid; callers surface the detail as inline feedback.
type RequestError struct {
	Status int
	Detail string
	Body   map[string]any
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Detail)
}

const genericDetail = "Unknown server error"

// newRequestError parses the server's error payload, defaulting to a generic
// payload when the body is not JSON.
func newRequestError(status int, body []byte) *RequestError {
	payload := map[string]any{}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload) == 0 {
		payload = map[string]any{"detail": genericDetail}
	}

	detail, _ := payload["detail"].(string)
	if detail == "" {
		detail = genericDetail
	}

	return &RequestError{Status: status, Detail: detail, Body: payload}
}

// ValidationError carries field-keyed messages from signup or create forms,
// verbatim as the server sent them.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msgs []string
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k]...)
	}
	if len(msgs) == 0 {
		return "validation failed"
	}
	return strings.Join(msgs, " ")
}

// IsAuthError reports whether err is session-fatal and should force the
// client into a logged-out state.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrSessionExpired)
}

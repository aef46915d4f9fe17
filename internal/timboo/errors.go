package timboo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpectedResponse marks a 2xx reply whose body did not have the expected shape or message
var ErrUnexpectedResponse = errors.New("unexpected response")

// StatusError is returned for any non-2xx reply
type StatusError struct {
	Endpoint   string
	StatusCode int
	Message    string // "message" field of the error body, if any
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Endpoint, e.StatusCode)
}

// Rejected reports a 4xx reply: the server understood the call and refused it
func (e *StatusError) Rejected() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

func newStatusError(endpoint string, status int, body []byte) *StatusError {
	var m messageResponse
	if err := json.Unmarshal(body, &m); err != nil {
		m.Message = ""
	}
	return &StatusError{Endpoint: endpoint, StatusCode: status, Message: strings.TrimSpace(m.Message)}
}

// IsRejected reports whether err wraps a 4xx StatusError
func IsRejected(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Rejected()
}

// ServerMessage returns the server-provided message carried by err, if any
func ServerMessage(err error) (string, bool) {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message, true
	}
	return "", false
}

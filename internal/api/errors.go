package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is returned for any non-2xx response.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string // server-supplied message, may be empty
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Status)
}

// MessageOf returns the server message carried by err, or fallback when the
// error has none (network failures, timeouts, bare status errors).
func MessageOf(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}

// IsStatus reports whether err is an API error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func newError(method, path string, resp *http.Response) *Error {
	apiErr := &Error{Method: method, Path: path, Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		apiErr.Message = strings.TrimSpace(payload.Message)
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(payload.Error)
		}
	}
	return apiErr
}

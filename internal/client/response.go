package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// statusDocsURL is where the status-error message points callers.
const statusDocsURL = "https://developer.mozilla.org/en-US/docs/Web/HTTP/Status#client_error_responses"

// Response is the normalized outcome of one request. It is either a completed
// exchange (status, optionally parsed body) or a transport failure (cause only).
// The two shapes are built by Completed and Failed and cannot be mixed.
type Response struct {
	completed bool
	status    int
	body      []byte
	data      any
	cause     error
}

// Completed builds the Response for an exchange that produced an HTTP status.
// data is the decoded JSON body, or nil when the body is empty or not JSON.
func Completed(status int, body []byte) Response {
	r := Response{completed: true, status: status, body: body}

	if len(bytes.TrimSpace(body)) > 0 {
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			r.data = v
		}
	}
	return r
}

// Failed builds the Response for a request that never completed.
func Failed(cause error) Response {
	if cause == nil {
		cause = errors.New("unknown transport failure")
	}
	return Response{cause: cause}
}

// Status returns the HTTP status code. ok is false on transport failure.
func (r Response) Status() (status int, ok bool) {
	return r.status, r.completed
}

// Data returns the parsed JSON body, or nil.
func (r Response) Data() any {
	return r.data
}

// Body returns the raw response body.
func (r Response) Body() []byte {
	return r.body
}

// Decode unmarshals the raw body into v.
func (r Response) Decode(v any) error {
	if !r.completed {
		return r.Err()
	}
	if len(bytes.TrimSpace(r.body)) == 0 {
		return fmt.Errorf("decoding response: empty body (HTTP %d)", r.status)
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// OK reports whether the exchange completed with a status below 400.
func (r Response) OK() bool {
	return r.completed && r.status < http.StatusBadRequest
}

// TransportFailed reports whether the request never produced a status.
func (r Response) TransportFailed() bool {
	return !r.completed
}

// Err returns a *TransportError, a *StatusError, or nil.
func (r Response) Err() error {
	if !r.completed {
		return &TransportError{Cause: r.cause}
	}
	if r.status >= http.StatusBadRequest {
		return &StatusError{Code: r.status}
	}
	return nil
}

// ErrorMessage returns the human-readable error, or "" when there is none.
func (r Response) ErrorMessage() string {
	if err := r.Err(); err != nil {
		return err.Error()
	}
	return ""
}

// MarshalJSON renders {status, data, error}. status and data are omitted
// on transport failure; error is null on success.
func (r Response) MarshalJSON() ([]byte, error) {
	var errMsg *string
	if msg := r.ErrorMessage(); msg != "" {
		errMsg = &msg
	}

	if !r.completed {
		return json.Marshal(struct {
			Error *string `json:"error"`
		}{errMsg})
	}

	return json.Marshal(struct {
		Status int     `json:"status"`
		Data   any     `json:"data"`
		Error  *string `json:"error"`
	}{r.status, r.data, errMsg})
}

// TransportError is a request that failed before any status was received:
// connection refused, DNS failure, timeout, cancelled context.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("error: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// StatusError is a completed exchange with status >= 400.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Check status %d (%s) on %s", e.Code, http.StatusText(e.Code), statusDocsURL)
}

package portalapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-success HTTP status from the API. Detail is the server's own reason when
// the body carried one.
type APIError struct {
	Status int
	Detail string
	Err    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// TransportError is a failure below HTTP: DNS, refused connection, timeout, cancelled context.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MessageError carries the human readable message chosen for an error while keeping the
// original available to errors.Is / errors.As.
type MessageError struct {
	Msg string
	Err error
}

func (e *MessageError) Error() string {
	return e.Msg
}

func (e *MessageError) Unwrap() error {
	return e.Err
}

// MessageSource extracts a candidate message from err, or "" when it has none.
type MessageSource func(err error) string

// FirstMessage walks the sources in order and returns the first non-empty message, or fallback.
func FirstMessage(err error, fallback string, sources ...MessageSource) string {
	if err == nil {
		return ""
	}
	for _, source := range sources {
		if msg := strings.TrimSpace(source(err)); msg != "" {
			return msg
		}
	}
	return fallback
}

// WithMessage resolves the message for err and wraps it. nil stays nil.
func WithMessage(err error, fallback string, sources ...MessageSource) error {
	if err == nil {
		return nil
	}
	return &MessageError{Msg: FirstMessage(err, fallback, sources...), Err: err}
}

// ServerDetail is the API's "detail" field.
func ServerDetail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// TransportMessage is the message of the failed exchange itself: the network error, or
// "request failed with status code N" for a status error.
func TransportMessage(err error) string {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Err.Error()
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return ""
}

// UnauthorizedMessage maps a 401 to a fixed credentials message.
func UnauthorizedMessage(err error) string {
	if StatusCode(err) == http.StatusUnauthorized {
		return "Invalid email or password"
	}
	return ""
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

var (
	// SignupMessageSources: server detail, then transport message.
	SignupMessageSources = []MessageSource{ServerDetail, TransportMessage}
	// LoginMessageSources: the server's reason, then a fixed message for a bare 401.
	LoginMessageSources = []MessageSource{ServerDetail, UnauthorizedMessage}
)

const (
	SignupFallbackMessage = "Signup failed"
	LoginFallbackMessage  = "Login failed"
)

// parseDetail reads FastAPI style error bodies: {"detail": "..."} or
// {"detail": [{"msg": "..."}, ...]}. The OAuth error_description is accepted too.
func parseDetail(body []byte) string {
	var payload struct {
		Detail           json.RawMessage `json:"detail"`
		ErrorDescription string          `json:"error_description"`
		Message          string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil {
			var msgs []string
			for _, item := range items {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	if payload.ErrorDescription != "" {
		return payload.ErrorDescription
	}
	return payload.Message
}

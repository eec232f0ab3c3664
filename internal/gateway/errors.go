// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the HTTP client for the chat backend.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind categorizes gateway errors for handling.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindStatus is a non-2xx response from the backend
	KindStatus
	// KindTransport means no response was received
	KindTransport
	// KindTimeout means the request deadline expired
	KindTimeout
	// KindCanceled means the caller canceled the request
	KindCanceled
	// KindInvalidResponse means a 2xx body could not be decoded
	KindInvalidResponse
	// KindRequest means the request could not be built
	KindRequest
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindInvalidResponse:
		return "invalid response"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// maxErrorBody caps how much of an error response is kept on the error.
const maxErrorBody = 4096

// GatewayError is returned by every Client method on failure.
type GatewayError struct {
	Kind   ErrorKind
	Method string
	Path   string

	// Status is the HTTP status code, 0 when no response was received
	Status int

	// Detail is the server-supplied human-readable reason, if any
	Detail string

	// Body is the (truncated) raw response body of a failed request
	Body string

	Cause error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Kind == KindStatus:
		return fmt.Sprintf("request failed with status code %d", e.Status)
	case e.Kind == KindTimeout:
		return "request timed out"
	case e.Kind == KindCanceled:
		return "request canceled"
	case e.Kind == KindInvalidResponse && e.Cause != nil:
		return "invalid response from server: " + e.Cause.Error()
	case e.Cause != nil:
		return "network error: " + e.Cause.Error()
	default:
		return "request failed"
	}
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// transportError classifies a failed http.Client.Do call.
func transportError(method, path string, err error) *GatewayError {
	kind := KindTransport
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	default:
		var timeout interface{ Timeout() bool }
		if errors.As(err, &timeout) && timeout.Timeout() {
			kind = KindTimeout
		}
	}
	return &GatewayError{Kind: kind, Method: method, Path: path, Cause: err}
}

// statusError builds the error for a non-2xx response.
func statusError(method, path string, status int, body []byte) *GatewayError {
	raw := string(body)
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	return &GatewayError{
		Kind:   KindStatus,
		Method: method,
		Path:   path,
		Status: status,
		Detail: extractDetail(body),
		Body:   raw,
	}
}

// extractDetail pulls the human-readable reason out of an error body.
// FastAPI returns {"detail": "..."} for HTTPException and
// {"detail": [{"loc": [...], "msg": "..."}]} for validation failures.
func extractDetail(body []byte) string {
	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}

	if len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil {
			return strings.TrimSpace(s)
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(envelope.Detail, &items); err == nil {
			var msgs []string
			for _, item := range items {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Message
}

// =============================================================================
// HELPERS
// =============================================================================

// UserMessage picks the text to show a user for err: the server-supplied
// detail first, then the error's own text, then fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) && gwErr.Detail != "" {
		return gwErr.Detail
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Status
	}
	return 0
}

// IsNotFound checks if an error is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsTransport checks if the request never got a response.
func IsTransport(err error) bool {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Kind == KindTransport || gwErr.Kind == KindTimeout
	}
	return false
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Kind == KindTimeout
	}
	return false
}

// Copyright 2026 The vibefetch Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"net/http"
	"strings"
)

// BootstrapError represents a failed CSRF session handshake. It is fatal for
// the run: no authenticated client can be built without the token.
type BootstrapError struct {
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *BootstrapError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bootstrap failed for %s: %s (caused by: %v)", e.URL, e.Message, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("bootstrap failed for %s: %s (status %d)", e.URL, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("bootstrap failed for %s: %s", e.URL, e.Message)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// TransportError represents a network or HTTP layer failure for a single
// GraphQL call, including deadline expiry. Retryable by the caller.
type TransportError struct {
	URL        string
	Operation  string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error during %s at %s: %v", e.Operation, e.URL, e.Err)
	}
	return fmt.Sprintf("transport error during %s at %s: status %d", e.Operation, e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError with automatic retryable detection
func NewTransportError(url, operation string, statusCode int, err error) *TransportError {
	return &TransportError{
		URL:        url,
		Operation:  operation,
		StatusCode: statusCode,
		Retryable:  err != nil || isRetryableStatus(statusCode),
		Err:        err,
	}
}

// isRetryableStatus determines if an HTTP status code is retryable
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, // 429
		http.StatusInternalServerError, // 500
		http.StatusBadGateway,          // 502
		http.StatusServiceUnavailable,  // 503
		http.StatusGatewayTimeout:      // 504
		return true
	default:
		return false
	}
}

// ServerError represents a GraphQL-level error list in an otherwise valid
// response. Messages are kept exactly as the server sent them; this usually
// means a malformed query or invalid argument and is not retried.
type ServerError struct {
	Operation string
	Messages  []string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("graphql error during %s: %s", e.Operation, strings.Join(e.Messages, "; "))
}

// SchemaError represents a result body that decoded cleanly but is missing a
// field path the caller expects. Raised at the decode boundary so a shape
// mismatch never propagates deeper into the pipeline as a nil fault.
type SchemaError struct {
	Operation string
	FieldPath string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected schema for %s: missing %s", e.Operation, e.FieldPath)
}

// SampleError represents a malformed or missing vibration sample payload.
// Fatal for the single capture it belongs to, never for the whole batch.
type SampleError struct {
	Timestamp string
	Message   string
}

func (e *SampleError) Error() string {
	if e.Timestamp != "" {
		return fmt.Sprintf("invalid sample at %s: %s", e.Timestamp, e.Message)
	}
	return fmt.Sprintf("invalid sample: %s", e.Message)
}

// ValidationError represents configuration or input validation errors
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation error for %s (value: %v): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

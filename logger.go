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
	"log/slog"
	"os"
)

// Logger wraps slog.Logger for structured logging throughout the application
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new structured logger
func NewLogger(debug bool) *Logger {
	var level slog.Level
	if debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a new JSON structured logger (useful for log aggregation)
func NewJSONLogger(debug bool) *Logger {
	var level slog.Level
	if debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithComponent returns a logger with a component field pre-set
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", component),
	}
}

// WithMacID returns a logger with a mac_id field pre-set
func (l *Logger) WithMacID(macID string) *Logger {
	return &Logger{
		Logger: l.Logger.With("mac_id", macID),
	}
}

// LogAPIRequest logs an API round trip with common fields
func (l *Logger) LogAPIRequest(method, operation string, statusCode int, duration float64) {
	l.Info("API request",
		"method", method,
		"operation", operation,
		"status_code", statusCode,
		"duration_ms", duration*1000,
	)
}

// LogAPIError logs an API error with details
func (l *Logger) LogAPIError(err error, operation string) {
	if tErr, ok := err.(*TransportError); ok {
		l.Error("API request failed",
			"operation", operation,
			"status_code", tErr.StatusCode,
			"retryable", tErr.Retryable,
			"error", tErr.Error(),
		)
	} else {
		l.Error("API request failed",
			"operation", operation,
			"error", err.Error(),
		)
	}
}

// LogSampleSkipped logs a capture dropped from the batch with its reason
func (l *Logger) LogSampleSkipped(timestamp string, err error) {
	l.Warn("Skipping capture",
		"timestamp", timestamp,
		"error", err.Error(),
	)
}

// UserMessage outputs a user-friendly message (bypasses structured logging)
// Use this for primary user-facing output
func (l *Logger) UserMessage(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// UserMessagef outputs a user-friendly message without newline
func (l *Logger) UserMessagef(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

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
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// bufferLogger writes through a text handler into a buffer for inspection
func bufferLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, nil)
	return &Logger{Logger: slog.New(handler)}, &buf
}

func TestWithComponent(t *testing.T) {
	logger, buf := bufferLogger()

	logger.WithComponent("bootstrap").Info("hello")

	if !strings.Contains(buf.String(), "component=bootstrap") {
		t.Errorf("output missing component field: %s", buf.String())
	}
}

func TestWithMacID(t *testing.T) {
	logger, buf := bufferLogger()

	logger.WithMacID("ab:cd:12:34").Info("fetching")

	if !strings.Contains(buf.String(), "mac_id=ab:cd:12:34") {
		t.Errorf("output missing mac_id field: %s", buf.String())
	}
}

func TestLogAPIError(t *testing.T) {
	logger, buf := bufferLogger()

	logger.LogAPIError(NewTransportError("http://sensor:8000", "deviceList", 503, nil), "deviceList")

	out := buf.String()
	for _, want := range []string{"status_code=503", "retryable=true", "operation=deviceList"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}

	buf.Reset()
	logger.LogAPIError(errors.New("plain failure"), "vibrationArray")
	if !strings.Contains(buf.String(), "plain failure") {
		t.Errorf("output missing wrapped error: %s", buf.String())
	}
}

func TestNewJSONLoggerEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	logger.WithComponent("fetcher").Info("done", "count", 3)

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if record["component"] != "fetcher" {
		t.Errorf("component = %v, want fetcher", record["component"])
	}
	if record["count"] != float64(3) {
		t.Errorf("count = %v, want 3", record["count"])
	}
}

func TestNewJSONLogger(t *testing.T) {
	if NewJSONLogger(false) == nil || NewJSONLogger(true) == nil {
		t.Fatal("NewJSONLogger returned nil")
	}
}

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
	"context"
	"errors"
	"strings"
	"testing"
)

func TestTimestampHistoryQueryInterpolation(t *testing.T) {
	query := timestampHistoryQuery("ab:cd:12:34", "X", "2026-08-01T00:00:00Z", "2026-08-02T00:00:00Z", 50)

	for _, want := range []string{
		`macId:"ab:cd:12:34"`,
		`start:"2026-08-01T00:00:00Z"`,
		`end:"2026-08-02T00:00:00Z"`,
		`limit:50`,
		`axis:"X"`,
		"GrapheneVibrationCombo",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}
}

func TestVibrationArrayQueryInterpolation(t *testing.T) {
	query := vibrationArrayQuery("ab:cd:12:34", "2026-08-01T12:34:56Z")

	for _, want := range []string{
		`macId:"ab:cd:12:34"`,
		`isoDate:"2026-08-01T12:34:56Z"`,
		"numSamples rawSamples sampleRate formatRange axis",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}
}

func TestListTimestamps(t *testing.T) {
	server := graphqlStub(t, `{"data":{"deviceManager":{"device":{
		"__typename":"GrapheneVibrationCombo",
		"vibrationTimestampHistory":["2026-08-01T10:00:00Z","2026-08-01T11:00:00Z"]
	}}}}`)

	timestamps, err := ListTimestamps(context.Background(), newTestClient(server.URL),
		"ab:cd:12:34", "X", "2026-08-01T00:00:00Z", "2026-08-02T00:00:00Z", 100)
	if err != nil {
		t.Fatalf("ListTimestamps() error = %v", err)
	}

	want := []string{"2026-08-01T10:00:00Z", "2026-08-01T11:00:00Z"}
	if len(timestamps) != len(want) {
		t.Fatalf("timestamps = %v, want %v", timestamps, want)
	}
	for i := range want {
		if timestamps[i] != want[i] {
			t.Errorf("timestamps[%d] = %q, want %q", i, timestamps[i], want[i])
		}
	}
}

func TestListTimestampsEmptyWindow(t *testing.T) {
	server := graphqlStub(t, `{"data":{"deviceManager":{"device":{
		"__typename":"GrapheneVibrationCombo","vibrationTimestampHistory":[]
	}}}}`)

	timestamps, err := ListTimestamps(context.Background(), newTestClient(server.URL),
		"ab:cd:12:34", "X", "2026-08-01T00:00:00Z", "2026-08-02T00:00:00Z", 100)
	if err != nil {
		t.Fatalf("ListTimestamps() error = %v, empty window is valid", err)
	}
	if len(timestamps) != 0 {
		t.Errorf("timestamps = %v, want empty", timestamps)
	}
}

func TestListTimestampsMissingFields(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		fieldPath string
	}{
		{
			name:      "missing deviceManager",
			body:      `{"data":{}}`,
			fieldPath: "deviceManager",
		},
		{
			name:      "unknown device",
			body:      `{"data":{"deviceManager":{"device":null}}}`,
			fieldPath: "deviceManager.device",
		},
		{
			name:      "device without vibration history",
			body:      `{"data":{"deviceManager":{"device":{"__typename":"GrapheneTemperatureSensor"}}}}`,
			fieldPath: "deviceManager.device.vibrationTimestampHistory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := graphqlStub(t, tt.body)

			_, err := ListTimestamps(context.Background(), newTestClient(server.URL),
				"ab:cd:12:34", "X", "", "", 100)

			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("error = %v, want *SchemaError", err)
			}
			if schemaErr.FieldPath != tt.fieldPath {
				t.Errorf("FieldPath = %q, want %q", schemaErr.FieldPath, tt.fieldPath)
			}
		})
	}
}

func TestFetchSample(t *testing.T) {
	server := graphqlStub(t, `{"data":{"deviceManager":{"device":{
		"__typename":"GrapheneVibrationCombo",
		"vibrationArray":{"numSamples":3,"rawSamples":[1024,-512,0],"sampleRate":3200,"formatRange":2,"axis":"X"}
	}}}}`)

	sample, err := FetchSample(context.Background(), newTestClient(server.URL),
		"ab:cd:12:34", "2026-08-01T10:00:00Z")
	if err != nil {
		t.Fatalf("FetchSample() error = %v", err)
	}

	if sample.NumSamples != 3 {
		t.Errorf("NumSamples = %d, want 3", sample.NumSamples)
	}
	if sample.SampleRate != 3200 {
		t.Errorf("SampleRate = %v, want 3200", sample.SampleRate)
	}
	if sample.FormatRange != 2 {
		t.Errorf("FormatRange = %v, want 2", sample.FormatRange)
	}
	if sample.Axis != "X" {
		t.Errorf("Axis = %q, want X", sample.Axis)
	}
}

func TestFetchSampleMissingRawSamples(t *testing.T) {
	server := graphqlStub(t, `{"data":{"deviceManager":{"device":{
		"__typename":"GrapheneVibrationCombo",
		"vibrationArray":{"numSamples":3,"sampleRate":3200,"formatRange":2,"axis":"X"}
	}}}}`)

	_, err := FetchSample(context.Background(), newTestClient(server.URL),
		"ab:cd:12:34", "2026-08-01T10:00:00Z")

	var sampleErr *SampleError
	if !errors.As(err, &sampleErr) {
		t.Fatalf("error = %v, want *SampleError", err)
	}
	if sampleErr.Timestamp != "2026-08-01T10:00:00Z" {
		t.Errorf("Timestamp = %q, want the requested timestamp", sampleErr.Timestamp)
	}
	if sampleErr.Message != "missing rawSamples" {
		t.Errorf("Message = %q", sampleErr.Message)
	}
}

func TestFetchSampleCountMismatch(t *testing.T) {
	server := graphqlStub(t, `{"data":{"deviceManager":{"device":{
		"__typename":"GrapheneVibrationCombo",
		"vibrationArray":{"numSamples":5,"rawSamples":[1,2,3],"sampleRate":3200,"formatRange":2,"axis":"X"}
	}}}}`)

	_, err := FetchSample(context.Background(), newTestClient(server.URL),
		"ab:cd:12:34", "2026-08-01T10:00:00Z")

	var sampleErr *SampleError
	if !errors.As(err, &sampleErr) {
		t.Fatalf("error = %v, want *SampleError", err)
	}
	if !strings.Contains(sampleErr.Message, "numSamples=5") || !strings.Contains(sampleErr.Message, "3 raw samples") {
		t.Errorf("Message = %q, want count mismatch detail", sampleErr.Message)
	}
}

func TestFetchSampleMissingVibrationArray(t *testing.T) {
	server := graphqlStub(t, `{"data":{"deviceManager":{"device":{"__typename":"GrapheneVibrationCombo"}}}}`)

	_, err := FetchSample(context.Background(), newTestClient(server.URL),
		"ab:cd:12:34", "2026-08-01T10:00:00Z")

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want *SchemaError", err)
	}
	if schemaErr.FieldPath != "deviceManager.device.vibrationArray" {
		t.Errorf("FieldPath = %q", schemaErr.FieldPath)
	}
}

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
	"net/http"
	"net/http/httptest"
	"testing"
)

func graphqlStub(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestListDevices(t *testing.T) {
	server := graphqlStub(t, `{"data":{"deviceManager":{"deviceList":[
		{"parent":null,"macId":"ca:fe:12:34","tag":"base station"},
		{"parent":"ca:fe:12:34","macId":"ab:cd:12:34","tag":"pump 7"}
	]}}}`)

	devices, err := ListDevices(context.Background(), newTestClient(server.URL))
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}

	if len(devices) != 2 {
		t.Fatalf("len(devices) = %d, want 2", len(devices))
	}
	if devices[0].Parent != nil {
		t.Errorf("root device parent = %v, want nil", *devices[0].Parent)
	}
	if devices[1].Parent == nil || *devices[1].Parent != "ca:fe:12:34" {
		t.Errorf("child device parent = %v, want ca:fe:12:34", devices[1].Parent)
	}
	if devices[1].Tag != "pump 7" {
		t.Errorf("Tag = %q, want %q", devices[1].Tag, "pump 7")
	}
}

func TestListDevicesEmptyCatalog(t *testing.T) {
	server := graphqlStub(t, `{"data":{"deviceManager":{"deviceList":[]}}}`)

	devices, err := ListDevices(context.Background(), newTestClient(server.URL))
	if err != nil {
		t.Fatalf("ListDevices() error = %v, empty catalog is valid", err)
	}
	if len(devices) != 0 {
		t.Errorf("len(devices) = %d, want 0", len(devices))
	}
}

func TestListDevicesMissingFields(t *testing.T) {
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
			name:      "missing deviceList",
			body:      `{"data":{"deviceManager":{}}}`,
			fieldPath: "deviceManager.deviceList",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := graphqlStub(t, tt.body)

			_, err := ListDevices(context.Background(), newTestClient(server.URL))

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

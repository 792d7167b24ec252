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
	"errors"
	"testing"
)

func TestToPhysicalUnits(t *testing.T) {
	tests := []struct {
		name        string
		raw         []int
		formatRange float64
		want        []float64
	}{
		{
			name:        "full scale codes",
			raw:         []int{1024, -512, 0},
			formatRange: 2.0,
			want:        []float64{4.0, -2.0, 0.0},
		},
		{
			name:        "sixteen g range",
			raw:         []int{512, 256, -256},
			formatRange: 16.0,
			want:        []float64{16.0, 8.0, -8.0},
		},
		{
			name:        "zero format range yields zeros",
			raw:         []int{100, -100},
			formatRange: 0.0,
			want:        []float64{0.0, 0.0},
		},
		{
			name:        "empty input",
			raw:         []int{},
			formatRange: 4.0,
			want:        []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToPhysicalUnits(tt.raw, tt.formatRange)
			if err != nil {
				t.Fatalf("ToPhysicalUnits() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("out[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestToPhysicalUnitsNilInput(t *testing.T) {
	_, err := ToPhysicalUnits(nil, 2.0)

	var sampleErr *SampleError
	if !errors.As(err, &sampleErr) {
		t.Fatalf("error = %v, want *SampleError", err)
	}
}

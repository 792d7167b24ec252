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
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// WriteSampleCSV exports one converted capture to <dir>/<file>.csv and
// returns the file name. The metadata header and the file naming scheme
// (M0x<MAC>__<date>__<tag>.csv, with ':' and ' ' made filesystem-safe)
// follow the iQunet export convention.
func WriteSampleCSV(dir, macID, tag string, res SampleResult) (string, error) {
	if res.Err != nil {
		return "", res.Err
	}
	if res.Sample == nil {
		return "", &SampleError{Timestamp: res.Timestamp, Message: "no sample to export"}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := csvFileName(macID, tag, res.Timestamp)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := [][]string{
		{"device", macID},
		{"tag", tag},
		{"rate", fmt.Sprintf("%gHz", res.Sample.SampleRate)},
		{"range", fmt.Sprintf("+/-%gg", res.Sample.FormatRange)},
		{"date", res.Timestamp},
		{"sample", "acceleration[g]"},
	}
	if err := w.WriteAll(header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, value := range res.Physical {
		record := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(value, 'f', 5, 64),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV file: %w", err)
	}

	return name, nil
}

func csvFileName(macID, tag, isoTimestamp string) string {
	safe := func(s string) string {
		s = strings.ReplaceAll(s, ":", "-")
		return strings.ReplaceAll(s, " ", "_")
	}
	mac := strings.ToUpper(strings.ReplaceAll(macID, ":", ""))
	return fmt.Sprintf("M0x%s__%s__%s.csv", mac, safe(isoTimestamp), safe(tag))
}

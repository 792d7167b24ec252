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
	"sort"
	"strings"
	"sync"
	"time"
)

// APIMetrics tracks API call performance and rate limiting for one run
type APIMetrics struct {
	mu sync.Mutex

	// API call durations by operation name
	RequestDurations map[string][]float64 // operation -> list of durations in seconds

	// Rate limiting metrics
	TotalRequests     int64   // Total number of API requests
	RateLimitSleeps   int64   // Number of times rate limiting was triggered
	TotalSleepSeconds float64 // Total time spent sleeping due to rate limits
}

// NewAPIMetrics creates a new metrics tracker
func NewAPIMetrics() *APIMetrics {
	return &APIMetrics{
		RequestDurations: make(map[string][]float64),
	}
}

// CountRequest records one API round trip for an operation
func (m *APIMetrics) CountRequest(operation string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalRequests++
	m.RequestDurations[operation] = append(m.RequestDurations[operation], duration)
}

// CountRateLimitSleep records one rate-limit pause
func (m *APIMetrics) CountRateLimitSleep(sleep time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RateLimitSleeps++
	m.TotalSleepSeconds += sleep.Seconds()
}

// Summary renders the collected counters in Prometheus text format. The tool
// is one-shot, so the summary is dumped at the end of a run rather than
// served over HTTP.
func (m *APIMetrics) Summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var metrics strings.Builder

	writeMetricHeader(&metrics, "vibefetch_info", "gauge", "Build information")
	writeMetric(&metrics, "vibefetch_info", map[string]string{
		"version":    GetVersion(),
		"user_agent": GetUserAgent(),
	}, 1)

	writeMetricHeader(&metrics, "vibefetch_requests_total", "counter", "Total number of API requests")
	writeMetric(&metrics, "vibefetch_requests_total", nil, float64(m.TotalRequests))

	writeMetricHeader(&metrics, "vibefetch_rate_limit_sleeps_total", "counter", "Number of times rate limiting was triggered")
	writeMetric(&metrics, "vibefetch_rate_limit_sleeps_total", nil, float64(m.RateLimitSleeps))

	writeMetricHeader(&metrics, "vibefetch_rate_limit_sleep_seconds_total", "counter", "Total time spent sleeping due to rate limits")
	writeMetric(&metrics, "vibefetch_rate_limit_sleep_seconds_total", nil, m.TotalSleepSeconds)

	if len(m.RequestDurations) > 0 {
		operations := make([]string, 0, len(m.RequestDurations))
		for operation := range m.RequestDurations {
			operations = append(operations, operation)
		}
		sort.Strings(operations)

		writeMetricHeader(&metrics, "vibefetch_request_duration_seconds_avg", "gauge", "Average API request duration by operation")
		for _, operation := range operations {
			durations := m.RequestDurations[operation]
			var total float64
			for _, d := range durations {
				total += d
			}
			writeMetric(&metrics, "vibefetch_request_duration_seconds_avg", map[string]string{
				"operation": operation,
			}, total/float64(len(durations)))
		}
	}

	return metrics.String()
}

// writeMetricHeader writes metric description and type
func writeMetricHeader(sb *strings.Builder, name, metricType, description string) {
	sb.WriteString(fmt.Sprintf("# HELP %s %s\n", name, description))
	sb.WriteString(fmt.Sprintf("# TYPE %s %s\n", name, metricType))
}

// writeMetric writes a metric with optional labels
func writeMetric(sb *strings.Builder, name string, labels map[string]string, value float64) {
	if len(labels) > 0 {
		keys := make([]string, 0, len(labels))
		for key := range labels {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		var labelPairs []string
		for _, key := range keys {
			labelPairs = append(labelPairs, fmt.Sprintf(`%s="%s"`, key, labels[key]))
		}
		sb.WriteString(fmt.Sprintf("%s{%s} %g\n", name, strings.Join(labelPairs, ","), value))
	} else {
		sb.WriteString(fmt.Sprintf("%s %g\n", name, value))
	}
}

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
	"sync"
)

// SampleResult is the per-timestamp outcome of a window fetch. Either Sample
// and Physical are set, or Err carries the isolated failure for this capture.
type SampleResult struct {
	Timestamp string
	Sample    *VibrationSample
	Physical  []float64
	Err       error
}

// Fetcher drives the two-stage retrieval protocol: one timestamp-history
// query, then one sample fetch per timestamp, fanned out over a bounded pool.
type Fetcher struct {
	client  *GraphQLClient
	logger  *Logger
	workers int
}

// NewFetcher creates a fetcher over an authenticated client
func NewFetcher(client *GraphQLClient, logger *Logger, workers int) *Fetcher {
	if workers < 1 {
		workers = 1
	}
	return &Fetcher{
		client:  client,
		logger:  logger.WithComponent("fetcher"),
		workers: workers,
	}
}

// FetchWindow retrieves all captures for a device and axis within a date
// window and converts them to physical units. Results come back in timestamp
// order regardless of wire completion order, one entry per timestamp. A
// failed capture occupies its slot with Err set and never aborts the batch;
// only the initial timestamp query can fail the call as a whole.
func (f *Fetcher) FetchWindow(ctx context.Context, macID, axis, startISO, endISO string, limit int) ([]SampleResult, error) {
	timestamps, err := ListTimestamps(ctx, f.client, macID, axis, startISO, endISO, limit)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Timestamp history retrieved",
		"mac_id", macID,
		"axis", axis,
		"count", len(timestamps),
	)

	results := make([]SampleResult, len(timestamps))
	if len(timestamps) == 0 {
		return results, nil
	}

	sem := make(chan struct{}, f.workers)
	var wg sync.WaitGroup
	for i, ts := range timestamps {
		wg.Add(1)
		go func(i int, ts string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = f.fetchOne(ctx, macID, ts)
		}(i, ts)
	}
	wg.Wait()

	return results, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, macID, ts string) SampleResult {
	sample, err := FetchSample(ctx, f.client, macID, ts)
	if err != nil {
		f.logger.LogSampleSkipped(ts, err)
		return SampleResult{Timestamp: ts, Err: err}
	}

	physical, err := ToPhysicalUnits(sample.RawSamples, sample.FormatRange)
	if err != nil {
		f.logger.LogSampleSkipped(ts, err)
		return SampleResult{Timestamp: ts, Err: err}
	}

	return SampleResult{Timestamp: ts, Sample: sample, Physical: physical}
}

// RunDeviceList prints the device catalog over the GraphQL transport
func RunDeviceList(ctx context.Context, cfg *Config, logger *Logger) error {
	client, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}

	devices, err := ListDevices(ctx, client)
	if err != nil {
		logger.LogAPIError(err, "deviceList")
		return err
	}

	printDevices(devices, logger)
	return nil
}

// RunFetch executes the full retrieval pipeline over GraphQL: bootstrap,
// window fetch, conversion, report, optional CSV export. Both window bounds
// are required here; the query document has no way to express an open bound.
func RunFetch(ctx context.Context, cfg *Config, logger *Logger) error {
	if cfg.Start == "" {
		return &ValidationError{Field: "start", Message: "a window start is required (use -start)"}
	}
	if cfg.End == "" {
		return &ValidationError{Field: "end", Message: "a window end is required (use -end)"}
	}

	client, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}

	fetcher := NewFetcher(client, logger.WithMacID(cfg.MacID), cfg.Workers)
	results, err := fetcher.FetchWindow(ctx, cfg.MacID, cfg.Axis, cfg.Start, cfg.End, cfg.Limit)
	if err != nil {
		logger.LogAPIError(err, "vibrationTimestampHistory")
		return err
	}

	tag := cfg.MacID
	if cfg.CSVDir != "" {
		// Best effort tag lookup for the CSV file names
		if devices, err := ListDevices(ctx, client); err == nil {
			for _, d := range devices {
				if d.MacID == cfg.MacID {
					tag = d.Tag
					break
				}
			}
		}
	}

	reportResults(cfg, logger, tag, results)

	if cfg.Debug {
		logger.UserMessagef("%s", client.Metrics().Summary())
	}
	return nil
}

// connect performs the handshake and builds the authenticated client. The
// handshake must fully complete before any query is issued.
func connect(ctx context.Context, cfg *Config, logger *Logger) (*GraphQLClient, error) {
	cred, err := Bootstrap(ctx, cfg.ServerURL, logger.WithComponent("bootstrap"))
	if err != nil {
		return nil, err
	}
	return NewGraphQLClient(cfg.ServerURL, cred, cfg.Debug), nil
}

func printDevices(devices []Device, logger *Logger) {
	logger.UserMessage("%d device(s)", len(devices))
	for _, d := range devices {
		parent := "-"
		if d.Parent != nil {
			parent = *d.Parent
		}
		logger.UserMessage("  %-17s  tag=%-20s  parent=%s", d.MacID, d.Tag, parent)
	}
}

func reportResults(cfg *Config, logger *Logger, tag string, results []SampleResult) {
	var fetched, failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			logger.UserMessage("%s: FAILED: %v", res.Timestamp, res.Err)
			continue
		}
		fetched++
		logger.UserMessage("%s: %d samples, %.0f Hz, +/-%g g, axis %s",
			res.Timestamp, res.Sample.NumSamples, res.Sample.SampleRate,
			res.Sample.FormatRange, res.Sample.Axis)

		if cfg.CSVDir != "" {
			name, err := WriteSampleCSV(cfg.CSVDir, cfg.MacID, tag, res)
			if err != nil {
				logger.Error("CSV export failed", "timestamp", res.Timestamp, "error", err)
				continue
			}
			logger.UserMessage("  -> %s", name)
		}
	}

	logger.UserMessage("%d capture(s) fetched, %d failed", fetched, failed)
}

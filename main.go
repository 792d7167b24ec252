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
	"flag"
	"fmt"
	"log"
	"os"
)

func main() {
	var serverURL, opcuaEndpoint, macID, axis, start, end, csvDir, configPath string
	var debug, jsonLogs, showVersion, listDevices, reboot, startMeasurement bool
	var limit, workers, setSampleRate, setNumSamples int

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.StringVar(&serverURL, "server", os.Getenv("VIBEFETCH_SERVER_URL"), "iQunet server URL (e.g. http://sensor-server:8000)")
	flag.StringVar(&opcuaEndpoint, "opcua", os.Getenv("VIBEFETCH_OPCUA_ENDPOINT"), "OPC UA endpoint (e.g. opc.tcp://sensor-server:4840) instead of GraphQL")
	flag.StringVar(&macID, "mac", os.Getenv("VIBEFETCH_MAC_ID"), "Sensor MAC ID (e.g. ab:cd:12:34)")
	flag.StringVar(&axis, "axis", "", "Measurement axis: X, Y, Z or XYZ (default: X)")
	flag.StringVar(&start, "start", "", "Window start, RFC3339 (e.g. 2026-08-01T00:00:00Z)")
	flag.StringVar(&end, "end", "", "Window end, RFC3339")
	flag.IntVar(&limit, "limit", 0, "Maximum number of captures to retrieve (default: 100)")
	flag.IntVar(&workers, "workers", 0, "Concurrent capture fetches (default: 4)")
	flag.StringVar(&csvDir, "csv-dir", "", "Write one CSV file per capture into this directory")
	flag.BoolVar(&listDevices, "list-devices", false, "Print the device catalog and exit")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON (for log aggregation)")
	flag.BoolVar(&reboot, "reboot", false, "Reboot the sensor and exit")
	flag.IntVar(&setSampleRate, "set-sample-rate", 0, "Set the sensor sample rate in Hz and exit")
	flag.IntVar(&setNumSamples, "set-num-samples", 0, "Set the sensor capture length and exit")
	flag.BoolVar(&startMeasurement, "start-measurement", false, "Trigger a vibration measurement run and exit")
	flag.Parse()

	// Handle version flag
	if showVersion {
		fmt.Printf("vibefetch %s\n", GetVersion())
		fmt.Printf("User-Agent: %s\n", GetUserAgent())
		os.Exit(0)
	}

	// Load configuration file if provided
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Error loading config file: %v", err)
	}

	// Command line arguments and environment variables override config file
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if opcuaEndpoint != "" {
		cfg.OPCUAEndpoint = opcuaEndpoint
	}
	if macID != "" {
		cfg.MacID = macID
	}
	if axis != "" {
		cfg.Axis = axis
	}
	if start != "" {
		cfg.Start = start
	}
	if end != "" {
		cfg.End = end
	}
	if limit > 0 {
		cfg.Limit = limit
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if csvDir != "" {
		cfg.CSVDir = csvDir
	}
	if debug {
		cfg.Debug = true
	}
	if jsonLogs {
		cfg.JSONLogs = true
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	mutation := reboot || startMeasurement || setSampleRate > 0 || setNumSamples > 0
	if cfg.MacID == "" && !listDevices {
		fmt.Fprintf(os.Stderr, "Usage: %s -server=<url> -mac=<mac_id> [-start=... -end=...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Or set environment variables: VIBEFETCH_SERVER_URL and VIBEFETCH_MAC_ID\n")
		fmt.Fprintf(os.Stderr, "Or use a configuration file with -config=<path>\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if mutation && cfg.ServerURL == "" {
		fmt.Fprintln(os.Stderr, "Sensor commands need the GraphQL transport (use -server)")
		os.Exit(1)
	}

	logger := NewLogger(cfg.Debug)
	if cfg.JSONLogs {
		logger = NewJSONLogger(cfg.Debug)
	}
	ctx := context.Background()

	switch {
	case listDevices && cfg.OPCUAEndpoint != "":
		err = RunOPCUADeviceList(ctx, cfg, logger)
	case listDevices:
		err = RunDeviceList(ctx, cfg, logger)
	case mutation:
		err = runSensorCommand(ctx, cfg, logger, reboot, startMeasurement, setSampleRate, setNumSamples)
	case cfg.OPCUAEndpoint != "":
		err = RunOPCUAFetch(ctx, cfg, logger)
	default:
		err = RunFetch(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error("Run failed", "error", err.Error())
		os.Exit(1)
	}
}

func runSensorCommand(ctx context.Context, cfg *Config, logger *Logger, reboot, startMeasurement bool, sampleRate, numSamples int) error {
	client, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if sampleRate > 0 {
		ok, err := SetSampleRate(ctx, client, cfg.MacID, sampleRate)
		if err != nil {
			return err
		}
		logger.UserMessage("Sample rate set to %dHz: ok=%t", sampleRate, ok)
	}
	if numSamples > 0 {
		ok, err := SetNumSamples(ctx, client, cfg.MacID, numSamples)
		if err != nil {
			return err
		}
		logger.UserMessage("Capture length set to %d samples: ok=%t", numSamples, ok)
	}
	if startMeasurement {
		ok, err := StartVibrationMeasurement(ctx, client, cfg.MacID, DefaultMeasurementSetup())
		if err != nil {
			return err
		}
		logger.UserMessage("Measurement run started: ok=%t", ok)
	}
	if reboot {
		ok, err := RebootSensor(ctx, client, cfg.MacID)
		if err != nil {
			return err
		}
		logger.UserMessage("Sensor reboot requested: ok=%t", ok)
	}

	return nil
}

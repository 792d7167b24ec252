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
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerURL     string `yaml:"server_url"`
	OPCUAEndpoint string `yaml:"opcua_endpoint"`
	MacID         string `yaml:"mac_id"`
	Axis          string `yaml:"axis"`
	Start         string `yaml:"start"`
	End           string `yaml:"end"`
	Limit         int    `yaml:"limit"`
	Workers       int    `yaml:"fetch_workers"`
	CSVDir        string `yaml:"csv_dir"`
	ServerVersion string `yaml:"server_version"`
	Debug         bool   `yaml:"debug"`
	JSONLogs      bool   `yaml:"json_logs"`
}

func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Axis:    "X",
		Limit:   DefaultTimestampLimit,
		Workers: DefaultFetchWorkers,
		Debug:   false,
	}

	if configPath == "" {
		return config, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

func (c *Config) ApplyDefaults() {
	if c.Axis == "" {
		c.Axis = "X"
	}
	if c.Limit <= 0 {
		c.Limit = DefaultTimestampLimit
	}
	if c.Workers <= 0 {
		c.Workers = DefaultFetchWorkers
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errors []string

	if c.ServerURL == "" && c.OPCUAEndpoint == "" {
		errors = append(errors, "server URL is required (use -server or -opcua)")
	}

	if c.ServerURL != "" {
		parsed, err := url.Parse(c.ServerURL)
		if err != nil {
			errors = append(errors, fmt.Sprintf("server URL is not parseable: %s", c.ServerURL))
		} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("server URL should use http or https, got: %s", c.ServerURL))
		} else if parsed.Host == "" {
			errors = append(errors, fmt.Sprintf("server URL has no host: %s", c.ServerURL))
		}
	}

	if c.OPCUAEndpoint != "" && !strings.HasPrefix(c.OPCUAEndpoint, "opc.tcp://") {
		errors = append(errors, fmt.Sprintf("OPC UA endpoint should start with 'opc.tcp://', got: %s", c.OPCUAEndpoint))
	}

	if c.MacID != "" && !macIDPattern.MatchString(c.MacID) {
		errors = append(errors, fmt.Sprintf("mac ID should look like 'ab:cd:12:34', got: %s", c.MacID))
	}

	switch c.Axis {
	case "X", "Y", "Z", "XYZ":
	default:
		errors = append(errors, fmt.Sprintf("axis must be one of X, Y, Z or XYZ, got: %s", c.Axis))
	}

	if c.Start != "" {
		if _, err := time.Parse(time.RFC3339, c.Start); err != nil {
			errors = append(errors, fmt.Sprintf("start must be an RFC3339 timestamp, got: %s", c.Start))
		}
	}
	if c.End != "" {
		if _, err := time.Parse(time.RFC3339, c.End); err != nil {
			errors = append(errors, fmt.Sprintf("end must be an RFC3339 timestamp, got: %s", c.End))
		}
	}

	if c.Limit < 1 {
		errors = append(errors, fmt.Sprintf("limit must be at least 1, got: %d", c.Limit))
	}
	if c.Limit > 100000 {
		errors = append(errors, fmt.Sprintf("warning: limit very high (%d), expect a long run", c.Limit))
	}

	if c.Workers < 1 {
		errors = append(errors, fmt.Sprintf("fetch workers must be at least 1, got: %d", c.Workers))
	}
	if c.Workers > 64 {
		errors = append(errors, fmt.Sprintf("warning: %d fetch workers will likely trip server rate limits", c.Workers))
	}

	if c.ServerVersion != "" && !serverVersionSupported(c.ServerVersion) {
		errors = append(errors, fmt.Sprintf("server version %s not supported, requires > 1.2.2", c.ServerVersion))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Window parses the configured start and end into times. An empty bound
// stays the zero time, which the OPC UA history read treats as unbounded.
func (c *Config) Window() (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if c.Start != "" {
		start, err = time.Parse(time.RFC3339, c.Start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse start: %w", err)
		}
	}
	if c.End != "" {
		end, err = time.Parse(time.RFC3339, c.End)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse end: %w", err)
		}
	}

	return start, end, nil
}

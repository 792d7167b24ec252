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

import "time"

// Sample scaling
const (
	// RawSampleFullScaleCode - half the full-scale code range of the sensor ADC.
	// Raw vibration samples are signed codes in this range; dividing by it and
	// multiplying by the format range yields acceleration in g.
	RawSampleFullScaleCode = 512.0
)

// Server compatibility
const (
	// MinServerVersion - the pipeline relies on schema fields introduced after
	// this iQunet server release (exclusive lower bound)
	MinServerVersion = "v1.2.2"
)

// HTTP client settings
const (
	// HTTPClientTimeout - Maximum time for a single GraphQL request
	HTTPClientTimeout = 30 * time.Second

	// HTTPMinInterval - Minimum time between API requests (rate limiting)
	HTTPMinInterval = 1 * time.Second

	// HTTPMaxRetries - Maximum number of retries for failed requests
	HTTPMaxRetries = 3

	// BootstrapTimeout - Maximum time for the CSRF handshake round trip
	BootstrapTimeout = 15 * time.Second
)

// Retrieval settings
const (
	// DefaultTimestampLimit - Default cap on the number of measurement
	// timestamps requested per window
	DefaultTimestampLimit = 100

	// DefaultFetchWorkers - Default number of concurrent sample fetches
	DefaultFetchWorkers = 4
)

// OPC UA settings
const (
	// OPCUAConnectTimeout - Maximum time to establish the OPC UA session
	OPCUAConnectTimeout = 15 * time.Second

	// OPCUAHistoryBatchSize - Number of history values requested per
	// HistoryRead call; larger windows are paged
	OPCUAHistoryBatchSize = 1024

	// OPCUADeviceTagNode - Browse name of the per-device human label variable
	OPCUADeviceTagNode = "deviceTag"

	// OPCUAAccelerationNode - Browse name of the packed vibration capture
	// history variable
	OPCUAAccelerationNode = "accelerationPack"
)

// Acceleration pack layout. Each history value is one packed integer array:
// one header word, then the raw samples, then six trailing metadata words
// with the format range sitting five words from the end.
const (
	accelPackHeaderWords      = 1
	accelPackTrailerWords     = 6
	accelPackFormatRangeIndex = 5 // offset from the end of the array
)

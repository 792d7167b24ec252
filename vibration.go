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
	"fmt"
	"strconv"
)

// VibrationSample is one raw capture as the server stores it. RawSamples are
// signed ADC codes; FormatRange is the full-scale magnitude in g that the
// code range maps onto.
type VibrationSample struct {
	NumSamples  int     `json:"numSamples"`
	RawSamples  []int   `json:"rawSamples"`
	SampleRate  float64 `json:"sampleRate"`
	FormatRange float64 `json:"formatRange"`
	Axis        string  `json:"axis"`
}

// Query documents follow the ones the iQunet examples ship: arguments are
// interpolated into the document rather than passed as GraphQL variables,
// because the server schema is treated as an opaque contract.
func timestampHistoryQuery(macID, axis, startISO, endISO string, limit int) string {
	return fmt.Sprintf(`{ deviceManager { device(macId:%s) {
__typename
... on GrapheneVibrationCombo { vibrationTimestampHistory(start:%s, end:%s, limit:%d, axis:%s) }
}}}`, strconv.Quote(macID), strconv.Quote(startISO), strconv.Quote(endISO), limit, strconv.Quote(axis))
}

func vibrationArrayQuery(macID, isoTimestamp string) string {
	return fmt.Sprintf(`{ deviceManager { device(macId:%s) {
__typename
... on GrapheneVibrationCombo { vibrationArray(isoDate:%s) {
numSamples rawSamples sampleRate formatRange axis }}
}}}`, strconv.Quote(macID), strconv.Quote(isoTimestamp))
}

type timestampHistoryResult struct {
	DeviceManager *struct {
		Device *struct {
			Typename                  string    `json:"__typename"`
			VibrationTimestampHistory *[]string `json:"vibrationTimestampHistory"`
		} `json:"device"`
	} `json:"deviceManager"`
}

type vibrationArrayResult struct {
	DeviceManager *struct {
		Device *struct {
			Typename       string           `json:"__typename"`
			VibrationArray *VibrationSample `json:"vibrationArray"`
		} `json:"device"`
	} `json:"deviceManager"`
}

// ListTimestamps fetches the ordered capture timestamps for a device and axis
// within a date window. The sequence doubles as the pagination cursor: each
// timestamp is later fetched individually. Window bounds and limit are passed
// through to the server unvalidated; filtering is server-side.
func ListTimestamps(ctx context.Context, client *GraphQLClient, macID, axis, startISO, endISO string, limit int) ([]string, error) {
	var result timestampHistoryResult
	query := timestampHistoryQuery(macID, axis, startISO, endISO, limit)
	if err := client.Execute(ctx, "vibrationTimestampHistory", query, nil, &result); err != nil {
		return nil, err
	}

	if result.DeviceManager == nil {
		return nil, &SchemaError{Operation: "vibrationTimestampHistory", FieldPath: "deviceManager"}
	}
	if result.DeviceManager.Device == nil {
		return nil, &SchemaError{Operation: "vibrationTimestampHistory", FieldPath: "deviceManager.device"}
	}
	if result.DeviceManager.Device.VibrationTimestampHistory == nil {
		return nil, &SchemaError{Operation: "vibrationTimestampHistory", FieldPath: "deviceManager.device.vibrationTimestampHistory"}
	}

	return *result.DeviceManager.Device.VibrationTimestampHistory, nil
}

// FetchSample fetches the raw capture recorded at one timestamp returned by
// ListTimestamps. The payload is validated at this boundary: a missing array
// or a count mismatch is a SampleError carrying the offending timestamp.
func FetchSample(ctx context.Context, client *GraphQLClient, macID, isoTimestamp string) (*VibrationSample, error) {
	var result vibrationArrayResult
	query := vibrationArrayQuery(macID, isoTimestamp)
	if err := client.Execute(ctx, "vibrationArray", query, nil, &result); err != nil {
		return nil, err
	}

	if result.DeviceManager == nil {
		return nil, &SchemaError{Operation: "vibrationArray", FieldPath: "deviceManager"}
	}
	if result.DeviceManager.Device == nil {
		return nil, &SchemaError{Operation: "vibrationArray", FieldPath: "deviceManager.device"}
	}
	sample := result.DeviceManager.Device.VibrationArray
	if sample == nil {
		return nil, &SchemaError{Operation: "vibrationArray", FieldPath: "deviceManager.device.vibrationArray"}
	}

	if sample.RawSamples == nil {
		return nil, &SampleError{Timestamp: isoTimestamp, Message: "missing rawSamples"}
	}
	if len(sample.RawSamples) != sample.NumSamples {
		return nil, &SampleError{
			Timestamp: isoTimestamp,
			Message:   fmt.Sprintf("sample count mismatch: numSamples=%d, got %d raw samples", sample.NumSamples, len(sample.RawSamples)),
		}
	}

	return sample, nil
}

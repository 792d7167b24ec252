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

type mutationAck struct {
	OK bool `json:"ok"`
}

// MeasurementSetup carries the vibrationRunSetup parameters. The defaults
// mirror the values the iQunet examples configure a sensor with.
type MeasurementSetup struct {
	HPF         int
	Prefetch    int
	SampleRate  int
	FormatRange int
	Threshold   int
	Axis        string
	NumSamples  int
}

// DefaultMeasurementSetup returns the stock capture configuration
func DefaultMeasurementSetup() MeasurementSetup {
	return MeasurementSetup{
		HPF:         3,
		Prefetch:    64,
		SampleRate:  3200,
		FormatRange: 16,
		Threshold:   0,
		Axis:        "XYZ",
		NumSamples:  1024,
	}
}

// RebootSensor reboots one sensor and returns the server acknowledgement
func RebootSensor(ctx context.Context, client *GraphQLClient, macID string) (bool, error) {
	query := fmt.Sprintf(`mutation { reboot(macId:%s) { ok } }`, strconv.Quote(macID))
	var result struct {
		Reboot *mutationAck `json:"reboot"`
	}
	if err := client.Execute(ctx, "reboot", query, nil, &result); err != nil {
		return false, err
	}
	if result.Reboot == nil {
		return false, &SchemaError{Operation: "reboot", FieldPath: "reboot"}
	}
	return result.Reboot.OK, nil
}

// SetSampleRate sets the capture sample rate of one sensor in Hz
func SetSampleRate(ctx context.Context, client *GraphQLClient, macID string, sampleRate int) (bool, error) {
	query := fmt.Sprintf(`mutation { setSampleRate(macId:%s, sampleRate:%d) { ok } }`, strconv.Quote(macID), sampleRate)
	var result struct {
		SetSampleRate *mutationAck `json:"setSampleRate"`
	}
	if err := client.Execute(ctx, "setSampleRate", query, nil, &result); err != nil {
		return false, err
	}
	if result.SetSampleRate == nil {
		return false, &SchemaError{Operation: "setSampleRate", FieldPath: "setSampleRate"}
	}
	return result.SetSampleRate.OK, nil
}

// SetNumSamples sets the number of samples per capture of one sensor
func SetNumSamples(ctx context.Context, client *GraphQLClient, macID string, numSamples int) (bool, error) {
	query := fmt.Sprintf(`mutation { setNumSamples(numSamples:%d, macId:%s) { ok } }`, numSamples, strconv.Quote(macID))
	var result struct {
		SetNumSamples *mutationAck `json:"setNumSamples"`
	}
	if err := client.Execute(ctx, "setNumSamples", query, nil, &result); err != nil {
		return false, err
	}
	if result.SetNumSamples == nil {
		return false, &SchemaError{Operation: "setNumSamples", FieldPath: "setNumSamples"}
	}
	return result.SetNumSamples.OK, nil
}

// StartVibrationMeasurement arms a measurement run on one sensor
func StartVibrationMeasurement(ctx context.Context, client *GraphQLClient, macID string, setup MeasurementSetup) (bool, error) {
	query := fmt.Sprintf(
		`mutation { vibrationRunSetup(hpf:%d, prefetch:%d, sampleRate:%d, formatRange:%d, threshold:%d, axis:%s, numSamples:%d, macId:%s) { ok } }`,
		setup.HPF, setup.Prefetch, setup.SampleRate, setup.FormatRange, setup.Threshold,
		strconv.Quote(setup.Axis), setup.NumSamples, strconv.Quote(macID),
	)
	var result struct {
		VibrationRunSetup *mutationAck `json:"vibrationRunSetup"`
	}
	if err := client.Execute(ctx, "vibrationRunSetup", query, nil, &result); err != nil {
		return false, err
	}
	if result.VibrationRunSetup == nil {
		return false, &SchemaError{Operation: "vibrationRunSetup", FieldPath: "vibrationRunSetup"}
	}
	return result.VibrationRunSetup.OK, nil
}

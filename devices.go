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

import "context"

// Device is one entry of the sensor catalog. Parent is nil for root devices;
// it references another device's macId otherwise.
type Device struct {
	Parent *string `json:"parent"`
	MacID  string  `json:"macId"`
	Tag    string  `json:"tag"`
}

const deviceListQuery = `{ deviceManager { deviceList { parent macId tag } } }`

type deviceListResult struct {
	DeviceManager *struct {
		DeviceList *[]Device `json:"deviceList"`
	} `json:"deviceManager"`
}

// ListDevices fetches the flat device catalog. The list is returned in
// server-provided order, which is not guaranteed stable across calls; zero
// devices is a valid result, not an error.
func ListDevices(ctx context.Context, client *GraphQLClient) ([]Device, error) {
	var result deviceListResult
	if err := client.Execute(ctx, "deviceList", deviceListQuery, nil, &result); err != nil {
		return nil, err
	}

	if result.DeviceManager == nil {
		return nil, &SchemaError{Operation: "deviceList", FieldPath: "deviceManager"}
	}
	if result.DeviceManager.DeviceList == nil {
		return nil, &SchemaError{Operation: "deviceList", FieldPath: "deviceManager.deviceList"}
	}

	return *result.DeviceManager.DeviceList, nil
}

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

// ToPhysicalUnits converts raw ADC codes to acceleration in g:
// out[i] = raw[i] / 512.0 * formatRange. The map is pure and order
// preserving; a formatRange of zero is valid input and yields zeros, since
// the divisor is the fixed full-scale code, not the range itself. Only a nil
// input sequence is rejected.
func ToPhysicalUnits(rawSamples []int, formatRange float64) ([]float64, error) {
	if rawSamples == nil {
		return nil, &SampleError{Message: "nil raw sample array"}
	}

	physical := make([]float64, len(rawSamples))
	for i, code := range rawSamples {
		physical[i] = float64(code) / RawSampleFullScaleCode * formatRange
	}
	return physical, nil
}

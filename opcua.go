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
	"regexp"
	"slices"
	"time"

	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/id"
	"github.com/gopcua/opcua/ua"
)

// macIDPattern matches sensor browse names (ab:cd:12:34); everything else
// under Objects is server infrastructure.
var macIDPattern = regexp.MustCompile(`^([0-9a-fA-F]{2}:){3}[0-9a-fA-F]{2}$`)

// historyReader is the slice of the OPC UA client the history paging needs
type historyReader interface {
	HistoryReadRawModified(ctx context.Context, nodes []*ua.HistoryReadValueID, details *ua.ReadRawModifiedDetails) (*ua.HistoryReadResponse, error)
}

// OPCUABrowser is the alternative retrieval path over the server's OPC UA
// endpoint. It reads the same capture history the GraphQL transport serves,
// packed as integer arrays under each device's accelerationPack variable.
type OPCUABrowser struct {
	endpoint string
	client   *opcua.Client
	history  historyReader
	logger   *Logger
}

// DialOPCUA opens an anonymous, unsecured OPC UA session, as the iQunet
// server exposes on opc.tcp port 4840.
func DialOPCUA(ctx context.Context, endpoint string, logger *Logger) (*OPCUABrowser, error) {
	client, err := opcua.NewClient(endpoint,
		opcua.SecurityModeString("None"),
		opcua.SecurityPolicy("None"),
		opcua.ApplicationName("vibefetch"),
		opcua.AuthAnonymous(),
	)
	if err != nil {
		return nil, fmt.Errorf("opcua new client: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, OPCUAConnectTimeout)
	defer cancel()
	if err := client.Connect(dialCtx); err != nil {
		return nil, fmt.Errorf("opcua connect to %s: %w", endpoint, err)
	}

	return &OPCUABrowser{
		endpoint: endpoint,
		client:   client,
		history:  client,
		logger:   logger.WithComponent("opcua"),
	}, nil
}

// Close tears down the OPC UA session
func (b *OPCUABrowser) Close(ctx context.Context) error {
	return b.client.Close(ctx)
}

// ListDevices browses Objects for macId-shaped child nodes and reads each
// one's deviceTag label. Devices tagged "delete" were removed in the server
// UI and are skipped.
func (b *OPCUABrowser) ListDevices(ctx context.Context) ([]Device, error) {
	objects := b.client.Node(ua.NewNumericNodeID(0, id.ObjectsFolder))
	children, err := objects.Children(ctx, id.HierarchicalReferences, ua.NodeClassAll)
	if err != nil {
		return nil, fmt.Errorf("browse Objects: %w", err)
	}

	devices := []Device{}
	for _, node := range children {
		browseName, err := node.BrowseName(ctx)
		if err != nil {
			return nil, fmt.Errorf("read browse name: %w", err)
		}
		if !macIDPattern.MatchString(browseName.Name) {
			continue
		}

		tag, err := b.readDeviceTag(ctx, node)
		if err != nil {
			b.logger.Warn("Skipping device without readable tag",
				"mac_id", browseName.Name,
				"error", err.Error(),
			)
			continue
		}
		if tag == "delete" {
			continue
		}

		devices = append(devices, Device{MacID: browseName.Name, Tag: tag})
	}

	return devices, nil
}

// FetchAccelerationHistory history-reads the accelerationPack variable of one
// device over a date window and decodes each packed value into a converted
// capture. A capture that fails to decode occupies its result slot with Err
// set.
func (b *OPCUABrowser) FetchAccelerationHistory(ctx context.Context, macID string, start, end time.Time, limit int) ([]SampleResult, error) {
	node, err := b.deviceChild(ctx, macID, OPCUAAccelerationNode)
	if err != nil {
		return nil, err
	}
	return b.readAccelerationHistory(ctx, node.ID, start, end, limit)
}

// readAccelerationHistory pages the packed capture history over a date
// window. With a start bound the server returns values oldest first and the
// window advances past each batch's last server timestamp. Without one the
// server returns values newest first; the window then retreats below each
// batch's oldest server timestamp and the collected sequence is reversed at
// the end, so callers see ascending timestamps either way. Paging keys on
// ServerTimestamp, not SourceTimestamp.
func (b *OPCUABrowser) readAccelerationHistory(ctx context.Context, nodeID *ua.NodeID, start, end time.Time, limit int) ([]SampleResult, error) {
	backward := start.IsZero()
	results := []SampleResult{}
	remaining := limit
	for remaining > 0 {
		if !start.IsZero() && !end.IsZero() && start.After(end) {
			break
		}

		batch := remaining
		if batch > OPCUAHistoryBatchSize {
			batch = OPCUAHistoryBatchSize
		}
		details := &ua.ReadRawModifiedDetails{
			IsReadModified:   false,
			StartTime:        start,
			EndTime:          end,
			NumValuesPerNode: uint32(batch),
			ReturnBounds:     true,
		}
		nodesToRead := []*ua.HistoryReadValueID{{
			NodeID:       nodeID,
			DataEncoding: &ua.QualifiedName{},
		}}

		resp, err := b.history.HistoryReadRawModified(ctx, nodesToRead, details)
		if err != nil {
			return nil, fmt.Errorf("history read %s: %w", nodeID, err)
		}
		if len(resp.Results) == 0 {
			return nil, fmt.Errorf("history read %s: empty result", nodeID)
		}
		if resp.Results[0].StatusCode != ua.StatusOK {
			return nil, fmt.Errorf("history read %s: %s", nodeID, resp.Results[0].StatusCode)
		}

		if resp.Results[0].HistoryData == nil {
			break
		}
		histData, ok := resp.Results[0].HistoryData.Value.(*ua.HistoryData)
		if !ok || histData == nil || len(histData.DataValues) == 0 {
			break
		}

		var lastServerTime time.Time
		for _, dv := range histData.DataValues {
			timestamp := dv.SourceTimestamp.UTC().Format(time.RFC3339)
			results = append(results, decodeHistoryValue(dv, timestamp))
			lastServerTime = dv.ServerTimestamp
		}
		remaining -= len(histData.DataValues)

		if lastServerTime.IsZero() {
			break
		}
		if backward {
			end = lastServerTime.Add(-time.Microsecond)
		} else {
			start = lastServerTime.Add(time.Microsecond)
		}
	}

	if backward {
		slices.Reverse(results)
	}
	return results, nil
}

func decodeHistoryValue(dv *ua.DataValue, timestamp string) SampleResult {
	if dv.Value == nil {
		return SampleResult{Timestamp: timestamp, Err: &SampleError{Timestamp: timestamp, Message: "history value has no variant"}}
	}

	sample, err := decodeAccelerationPack(dv.Value.Value(), timestamp)
	if err != nil {
		return SampleResult{Timestamp: timestamp, Err: err}
	}

	physical, err := ToPhysicalUnits(sample.RawSamples, sample.FormatRange)
	if err != nil {
		return SampleResult{Timestamp: timestamp, Err: err}
	}

	return SampleResult{Timestamp: timestamp, Sample: sample, Physical: physical}
}

// decodeAccelerationPack unpacks one packed capture: the first word is a
// header, the trailing six words are metadata with the format range five
// words from the end, and everything between is raw samples.
func decodeAccelerationPack(value interface{}, timestamp string) (*VibrationSample, error) {
	words, err := packWords(value)
	if err != nil {
		return nil, &SampleError{Timestamp: timestamp, Message: err.Error()}
	}
	if len(words) < accelPackHeaderWords+accelPackTrailerWords+1 {
		return nil, &SampleError{
			Timestamp: timestamp,
			Message:   fmt.Sprintf("acceleration pack too short: %d words", len(words)),
		}
	}

	raw := words[accelPackHeaderWords : len(words)-accelPackTrailerWords]
	samples := make([]int, len(raw))
	for i, w := range raw {
		samples[i] = int(w)
	}

	return &VibrationSample{
		NumSamples:  len(samples),
		RawSamples:  samples,
		FormatRange: float64(words[len(words)-accelPackFormatRangeIndex]),
	}, nil
}

func packWords(value interface{}) ([]int64, error) {
	switch vals := value.(type) {
	case []int16:
		out := make([]int64, len(vals))
		for i, v := range vals {
			out[i] = int64(v)
		}
		return out, nil
	case []int32:
		out := make([]int64, len(vals))
		for i, v := range vals {
			out[i] = int64(v)
		}
		return out, nil
	case []int64:
		return vals, nil
	default:
		return nil, fmt.Errorf("unsupported acceleration pack type %T", value)
	}
}

// deviceChild walks Objects -> <macId> -> <browseName> by browse name
func (b *OPCUABrowser) deviceChild(ctx context.Context, macID, browseName string) (*opcua.Node, error) {
	objects := b.client.Node(ua.NewNumericNodeID(0, id.ObjectsFolder))
	device, err := b.childByName(ctx, objects, macID)
	if err != nil {
		return nil, err
	}
	return b.childByName(ctx, device, browseName)
}

func (b *OPCUABrowser) childByName(ctx context.Context, parent *opcua.Node, name string) (*opcua.Node, error) {
	children, err := parent.Children(ctx, id.HierarchicalReferences, ua.NodeClassAll)
	if err != nil {
		return nil, fmt.Errorf("browse children: %w", err)
	}
	for _, node := range children {
		bn, err := node.BrowseName(ctx)
		if err != nil {
			return nil, fmt.Errorf("read browse name: %w", err)
		}
		if bn.Name == name {
			return node, nil
		}
	}
	return nil, fmt.Errorf("node %q not found", name)
}

func (b *OPCUABrowser) readDeviceTag(ctx context.Context, device *opcua.Node) (string, error) {
	tagNode, err := b.childByName(ctx, device, OPCUADeviceTagNode)
	if err != nil {
		return "", err
	}

	resp, err := b.client.Read(ctx, &ua.ReadRequest{
		NodesToRead: []*ua.ReadValueID{{
			NodeID:      tagNode.ID,
			AttributeID: ua.AttributeIDValue,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("read deviceTag: %w", err)
	}
	if len(resp.Results) == 0 || resp.Results[0].Value == nil {
		return "", fmt.Errorf("deviceTag has no value")
	}

	tag, ok := resp.Results[0].Value.Value().(string)
	if !ok {
		return "", fmt.Errorf("deviceTag is not a string")
	}
	return tag, nil
}

// RunOPCUADeviceList prints the device catalog over the OPC UA transport
func RunOPCUADeviceList(ctx context.Context, cfg *Config, logger *Logger) error {
	browser, err := DialOPCUA(ctx, cfg.OPCUAEndpoint, logger)
	if err != nil {
		return err
	}
	defer browser.Close(ctx)

	devices, err := browser.ListDevices(ctx)
	if err != nil {
		return err
	}

	printDevices(devices, logger)
	return nil
}

// RunOPCUAFetch executes the retrieval pipeline over the OPC UA transport
func RunOPCUAFetch(ctx context.Context, cfg *Config, logger *Logger) error {
	start, end, err := cfg.Window()
	if err != nil {
		return err
	}

	browser, err := DialOPCUA(ctx, cfg.OPCUAEndpoint, logger)
	if err != nil {
		return err
	}
	defer browser.Close(ctx)

	tag := cfg.MacID
	if cfg.CSVDir != "" {
		if devices, err := browser.ListDevices(ctx); err == nil {
			for _, d := range devices {
				if d.MacID == cfg.MacID {
					tag = d.Tag
					break
				}
			}
		}
	}

	results, err := browser.FetchAccelerationHistory(ctx, cfg.MacID, start, end, cfg.Limit)
	if err != nil {
		return err
	}

	reportResults(cfg, logger, tag, results)
	return nil
}

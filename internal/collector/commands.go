package collector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// CommandType names one collector command.
type CommandType string

const (
	CommandHeartbeatIntervalChange   CommandType = "heartbeatIntervalChange"
	CommandMeasurementIntervalChange CommandType = "measurementIntervalChange"
	CommandProvideThrottlingState    CommandType = "provideThrottlingState"
	CommandThrottlingSpecification   CommandType = "throttlingSpecification"
)

// Command is one entry of the collector commandList response.
// Params: intervals are set only for the matching command type.
// Returns: decoded command.
type Command struct {
	Type                CommandType
	HeartbeatInterval   time.Duration
	MeasurementInterval time.Duration
}

type commandListResponse struct {
	CommandList []struct {
		Command struct {
			CommandType         string `json:"commandType"`
			HeartbeatInterval   int    `json:"heartbeatInterval"`
			MeasurementInterval int    `json:"measurementInterval"`
		} `json:"command"`
	} `json:"commandList"`
}

// DecodeCommands extracts commands from a collector 2xx response body.
// Params: body raw response body, possibly empty.
// Returns: commands in response order; nil for empty bodies.
func DecodeCommands(body []byte) ([]Command, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	var response commandListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode collector response: %w", err)
	}
	if len(response.CommandList) == 0 {
		return nil, nil
	}

	out := make([]Command, 0, len(response.CommandList))
	for idx, item := range response.CommandList {
		raw := item.Command
		if raw.CommandType == "" {
			return nil, fmt.Errorf("commandList[%d]: commandType is empty", idx)
		}
		command := Command{Type: CommandType(raw.CommandType)}
		switch command.Type {
		case CommandHeartbeatIntervalChange:
			if raw.HeartbeatInterval <= 0 {
				return nil, fmt.Errorf("commandList[%d]: heartbeatInterval must be > 0", idx)
			}
			command.HeartbeatInterval = time.Duration(raw.HeartbeatInterval) * time.Second
		case CommandMeasurementIntervalChange:
			if raw.MeasurementInterval <= 0 {
				return nil, fmt.Errorf("commandList[%d]: measurementInterval must be > 0", idx)
			}
			command.MeasurementInterval = time.Duration(raw.MeasurementInterval) * time.Second
		}
		out = append(out, command)
	}
	return out, nil
}

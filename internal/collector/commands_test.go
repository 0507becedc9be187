package collector

import (
	"testing"
	"time"
)

// TestDecodeCommands verifies commandList parsing.
// Params: testing.T for assertions.
// Returns: none.
func TestDecodeCommands(t *testing.T) {
	body := []byte(`{"commandList":[
		{"command":{"commandType":"measurementIntervalChange","measurementInterval":60}},
		{"command":{"commandType":"provideThrottlingState"}}
	]}`)
	commands, err := DecodeCommands(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(commands))
	}
	if commands[0].Type != CommandMeasurementIntervalChange || commands[0].MeasurementInterval != time.Minute {
		t.Fatalf("unexpected first command: %#v", commands[0])
	}
	if commands[1].Type != CommandProvideThrottlingState {
		t.Fatalf("unexpected second command: %#v", commands[1])
	}
}

func TestDecodeCommandsEmptyAndInvalid(t *testing.T) {
	for _, body := range []string{"", "  ", `{}`, `{"commandList":[]}`} {
		commands, err := DecodeCommands([]byte(body))
		if err != nil || commands != nil {
			t.Fatalf("body %q: expected no commands, got %#v err=%v", body, commands, err)
		}
	}
	for _, body := range []string{
		`not json`,
		`{"commandList":[{"command":{}}]}`,
		`{"commandList":[{"command":{"commandType":"heartbeatIntervalChange","heartbeatInterval":0}}]}`,
	} {
		if _, err := DecodeCommands([]byte(body)); err == nil {
			t.Fatalf("body %q: expected error", body)
		}
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestCheckConfig verifies the check summary for a valid file and the error for an invalid one.
// Params: t test context.
// Returns: none.
func TestCheckConfig(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.toml")
	if err := os.WriteFile(valid, []byte(`
[global]
source_name = "vnf-a"
reporting_entity_name = "vnf-a-mgmt"

[collector]
base_url = "http://collector.example:8080"

[heartbeat]
interval = "30s"
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	if err := checkConfig(&out, valid); err != nil {
		t.Fatalf("checkConfig: %v", err)
	}
	want := "config ok: source=vnf-a reporting_entity=vnf-a-mgmt collector=http://collector.example:8080/eventListener/v5 heartbeat=30s measurement=false\n"
	if out.String() != want {
		t.Fatalf("unexpected summary:\n got %q\nwant %q", out.String(), want)
	}

	invalid := filepath.Join(dir, "invalid.toml")
	if err := os.WriteFile(invalid, []byte("[collector]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out.Reset()
	err := checkConfig(&out, invalid)
	if err == nil || !strings.Contains(err.Error(), "base_url") {
		t.Fatalf("expected base_url error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("no summary expected on error, got %q", out.String())
	}
}

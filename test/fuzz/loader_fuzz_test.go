package fuzz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/PASTER-G/CI-guard/internal/loader"
)

// Fuzz the loader with arbitrary content to ensure we never panic. Malformed
// lines must surface as diagnostics or errors, never as crashes.
func FuzzLoadNoPanic(f *testing.F) {
	seeds := [][]byte{
		[]byte(`{"id": "sg", "type": "network_rule", "port": 22, "cidr": "0.0.0.0/0", "protocol": "tcp"}` + "\n"),
		[]byte(`{"id": "disk", "type": "storage", "encrypted": false}` + "\n"),
		[]byte("{\"id\": \"x\"\n"),
		[]byte("garbage-but-should-not-panic\n"),
		[]byte("\x00\xff\xfe\n"),
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "fuzz.ndjson"), data, 0o644); err != nil {
			t.Skipf("write failed: %v", err)
		}
		_, _, _ = loader.Load(dir) // we only assert "no panic"
	})
}

// The plan adapter unpacks JSON strings embedded inside JSON. Broken nesting
// is the common failure mode, so fuzz it separately.
func FuzzPlanNoPanic(f *testing.F) {
	seeds := [][]byte{
		[]byte(`{"planned_values": {"root_module": {"resources": [{"type": "null_resource", "name": "a", "values": {"triggers": {"rule": "{\"port\": 22, \"cidr\": \"0.0.0.0/0\"}"}}}]}}}`),
		[]byte(`{"planned_values": {"root_module": {"resources": [{"type": "null_resource", "name": "b", "values": {"triggers": {"config": "{{{"}}}]}}}`),
		[]byte(`{}`),
		[]byte(`[]`),
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "plan.json"), data, 0o644); err != nil {
			t.Skipf("write failed: %v", err)
		}
		_, _, _ = loader.Load(dir)
	})
}

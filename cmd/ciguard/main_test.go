package main

import (
	"path/filepath"
	"testing"
)

func TestLoadActiveWaivers_BrokenDB(t *testing.T) {
	// A directory is not a usable database file; the schema step fails and
	// the scan must carry on without waivers.
	ws, ok := loadActiveWaivers(t.TempDir())
	if ok || ws != nil {
		t.Fatalf("broken db: got (%v, %v), want (nil, false)", ws, ok)
	}
}

func TestLoadActiveWaivers_FreshDB(t *testing.T) {
	ws, ok := loadActiveWaivers(filepath.Join(t.TempDir(), "ciguard.db"))
	if !ok {
		t.Fatal("fresh db should be usable")
	}
	if len(ws) != 0 {
		t.Fatalf("fresh db has %d waivers, want 0", len(ws))
	}
}

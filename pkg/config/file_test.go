package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsWhenFileMissing(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}
	if got := f.ListenAddress(); got != "127.0.0.1:5000" {
		t.Fatalf("default listen address = %q", got)
	}
	if got := f.HistoryMaxAge(); got != 24*time.Hour {
		t.Fatalf("default history max age = %v", got)
	}
	if got := f.MaxUploadBytes(); got != 32<<20 {
		t.Fatalf("default max upload = %d", got)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"listenAddress": "0.0.0.0:9000"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}
	if got := f.ListenAddress(); got != "0.0.0.0:9000" {
		t.Fatalf("listen address = %q", got)
	}
	// Unset fields fall back to defaults.
	if got := f.HistoryPruneSchedule(); got != "@every 1h" {
		t.Fatalf("prune schedule = %q", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}

	f.SetListenAddress("127.0.0.1:8080")
	if err := f.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	g, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile after save returned error: %v", err)
	}
	if got := g.ListenAddress(); got != "127.0.0.1:8080" {
		t.Fatalf("reloaded listen address = %q", got)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile on empty file returned error: %v", err)
	}
	if got := f.HistoryDir(); got != "tmp_history" {
		t.Fatalf("history dir = %q", got)
	}
}

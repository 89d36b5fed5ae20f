package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	l := New("")
	s, err := l.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", s.ListenAddr)
	}
	if s.WorkerPoolSize != 16 {
		t.Errorf("WorkerPoolSize = %d, want 16", s.WorkerPoolSize)
	}
	if s.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", s.ShutdownTimeout)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "listen_addr: \":9090\"\nworker_pool_size: 32\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	l := New(path)
	s, err := l.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want :9090", s.ListenAddr)
	}
	if s.WorkerPoolSize != 32 {
		t.Errorf("WorkerPoolSize = %d, want 32", s.WorkerPoolSize)
	}
	if s.AlertCPUPercent != 90.0 {
		t.Errorf("AlertCPUPercent = %v, want default 90.0", s.AlertCPUPercent)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := l.Load(); err != nil {
		t.Fatalf("missing config file should not be an error, got: %v", err)
	}
}

func TestCurrentReflectsLastLoad(t *testing.T) {
	l := New("")
	if l.Current() != nil {
		t.Fatal("expected nil before Load")
	}
	s, _ := l.Load()
	if l.Current() != s {
		t.Fatal("Current should return the Settings from the last Load")
	}
}

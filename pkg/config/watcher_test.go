// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDetectsChanges(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	initial := `log:
  level: warn
`
	if err := os.WriteFile(configPath, []byte(initial), 0644); err != nil {
		t.Fatalf("failed to write initial config: %v", err)
	}

	watcher, err := NewWatcher([]string{configPath}, WithWatchInterval(50*time.Millisecond))
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	changes := make(chan *Config, 1)
	watcher.OnChange(func(cfg *Config) {
		changes <- cfg
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher.Start(ctx)
	defer watcher.Stop()

	cfg := watcher.Config()
	if cfg.Log.Level != "warn" {
		t.Errorf("expected level warn, got %q", cfg.Log.Level)
	}

	// mtime granularity on some filesystems is one second
	time.Sleep(1100 * time.Millisecond)
	updated := `log:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(updated), 0644); err != nil {
		t.Fatalf("failed to update config: %v", err)
	}

	select {
	case cfg := <-changes:
		if cfg.Log.Level != "debug" {
			t.Errorf("expected reloaded level debug, got %q", cfg.Log.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestReloadableConfig(t *testing.T) {
	first := &Config{Log: LogConfig{Level: "info"}}
	rc := NewReloadableConfig(first)
	if rc.Get() != first {
		t.Fatal("expected initial config")
	}
	second := &Config{Log: LogConfig{Level: "debug"}}
	rc.Update(second)
	if rc.Log().Level != "debug" {
		t.Fatalf("expected updated level, got %q", rc.Log().Level)
	}
}

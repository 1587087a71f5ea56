package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Server.Addr == "" {
		t.Error("Server.Addr should not be empty")
	}
	if cfg.Database.Path == "" {
		t.Error("Database.Path should not be empty")
	}
	if cfg.Engine.Width == 0 || cfg.Engine.Height == 0 {
		t.Error("Engine dimensions should not be zero")
	}
	if cfg.Engine.FrameRate == 0 {
		t.Error("Engine.FrameRate should not be zero")
	}
}

func TestApplyDefaultsFillsGaps(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Addr: ":9000"}}
	cfg.applyDefaults()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %s, want :9000 (explicit value kept)", cfg.Server.Addr)
	}
	if cfg.Database.Path != "./taxograph.db" {
		t.Errorf("Database.Path = %s, want ./taxograph.db", cfg.Database.Path)
	}
	if cfg.Engine.FrameRate != 30 {
		t.Errorf("Engine.FrameRate = %d, want 30", cfg.Engine.FrameRate)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":7777"
	cfg.Dataset.Path = "/data/taxonomy.yaml"
	cfg.Dataset.Watch = true
	batch := 25
	cfg.Engine.Loader.BatchSize = &batch
	gravity := 0.15
	cfg.Engine.Physics.Gravity = &gravity
	interval := Duration(250 * time.Millisecond)
	cfg.Engine.Viewport.RecomputeInterval = &interval

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}

	if loaded.Server.Addr != ":7777" {
		t.Errorf("Server.Addr = %s, want :7777", loaded.Server.Addr)
	}
	if loaded.Dataset.Path != "/data/taxonomy.yaml" || !loaded.Dataset.Watch {
		t.Errorf("Dataset = %+v, want path with watch enabled", loaded.Dataset)
	}
	if loaded.Engine.Loader.BatchSize == nil || *loaded.Engine.Loader.BatchSize != 25 {
		t.Error("Engine.Loader.BatchSize should round-trip as 25")
	}
	if loaded.Engine.Physics.Gravity == nil || *loaded.Engine.Physics.Gravity != 0.15 {
		t.Error("Engine.Physics.Gravity should round-trip as 0.15")
	}
	if loaded.Engine.Viewport.RecomputeInterval == nil ||
		loaded.Engine.Viewport.RecomputeInterval.Duration() != 250*time.Millisecond {
		t.Error("Engine.Viewport.RecomputeInterval should round-trip as 250ms")
	}
}

func TestLoadPartialConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	partial := "server:\n  addr: \":4000\"\n"
	if err := os.WriteFile(configPath, []byte(partial), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	loaded, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}

	if loaded.Server.Addr != ":4000" {
		t.Errorf("Server.Addr = %s, want :4000", loaded.Server.Addr)
	}
	// Unset fields fall back to defaults
	if loaded.Database.Path != "./taxograph.db" {
		t.Errorf("Database.Path = %s, want default", loaded.Database.Path)
	}
	if loaded.Engine.Width != 1280 || loaded.Engine.Height != 720 {
		t.Errorf("Engine dimensions = %.0fx%.0f, want 1280x720",
			loaded.Engine.Width, loaded.Engine.Height)
	}
	if loaded.Engine.Loader.CoreCap != nil {
		t.Error("unset loader override should stay nil")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("server: [not a mapping"), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	if _, _, err := LoadFromPath(configPath); err == nil {
		t.Error("LoadFromPath() should fail on malformed YAML")
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	// Should find config in working directory
	found := FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should find config in working directory")
	}

	// Explicit env path doesn't exist, should fall back
	os.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	defer os.Unsetenv(EnvConfigPath)

	found = FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}
	if cfg.TsserverPath != "tsserver" {
		t.Errorf("expected default tsserverPath 'tsserver', got %s", cfg.TsserverPath)
	}
	if cfg.NodePath != "node" {
		t.Errorf("expected default nodePath 'node', got %s", cfg.NodePath)
	}
	if cfg.TsserverLogFile != "" {
		t.Errorf("expected empty default tsserverLogFile, got %s", cfg.TsserverLogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	configContent := `
tsserverPath: /usr/local/bin/tsserver
tsserverLogVerbosity: verbose
globalPlugins:
  - typescript-eslint-plugin
pluginProbeLocations:
  - /opt/plugins
`
	if err := os.WriteFile(filepath.Join(tmpDir, "tsbridge.yaml"), []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}
	if cfg.TsserverPath != "/usr/local/bin/tsserver" {
		t.Errorf("expected tsserverPath from file, got %s", cfg.TsserverPath)
	}
	if cfg.TsserverLogVerbosity != "verbose" {
		t.Errorf("expected tsserverLogVerbosity 'verbose', got %s", cfg.TsserverLogVerbosity)
	}
	if len(cfg.GlobalPlugins) != 1 || cfg.GlobalPlugins[0] != "typescript-eslint-plugin" {
		t.Errorf("expected one global plugin, got %v", cfg.GlobalPlugins)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	configContent := "tsserverLogFile: /var/log/from-file.log\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "tsbridge.yaml"), []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("TSSERVER_LOG_FILE", "/var/log/from-env.log")
	defer os.Unsetenv("TSSERVER_LOG_FILE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.TsserverLogFile != "/var/log/from-env.log" {
		t.Errorf("expected env var to override file, got %s", cfg.TsserverLogFile)
	}
}

func TestWatchReloadsOnChange(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	if err := os.WriteFile(filepath.Join(tmpDir, "tsbridge.yaml"), []byte("tsserverLogVerbosity: terse\n"), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader()
	if _, err := loader.Load(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	changed := make(chan *Config, 1)
	loader.Watch(func(cfg *Config, err error) {
		if err == nil {
			changed <- cfg
		}
	})

	if err := os.WriteFile(filepath.Join(tmpDir, "tsbridge.yaml"), []byte("tsserverLogVerbosity: verbose\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changed:
		if cfg.TsserverLogVerbosity != "verbose" {
			t.Errorf("expected reloaded tsserverLogVerbosity 'verbose', got %s", cfg.TsserverLogVerbosity)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/mcdonaldj/tarwrap/internal/tarfmt"
)

// useConfigHome points the XDG config home at a fresh temp dir.
func useConfigHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return dir
}

func writeConfig(t *testing.T, home, content string) string {
	t.Helper()
	dir := filepath.Join(home, "tarwrap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig failed: %v", err)
	}

	if cfg.TarPath != "tar" {
		t.Errorf("TarPath = %q, expected %q", cfg.TarPath, "tar")
	}
	if cfg.Dialect != "auto" {
		t.Errorf("Dialect = %q, expected %q", cfg.Dialect, "auto")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, expected %q", cfg.LogLevel, "warn")
	}
	if cfg.Verify {
		t.Error("Verify should default to false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfigPath(t *testing.T) {
	home := useConfigHome(t)

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath failed: %v", err)
	}
	expected := filepath.Join(home, "tarwrap", "config.yaml")
	if path != expected {
		t.Errorf("ConfigPath = %q, expected %q", path, expected)
	}
}

func TestLoadMissingConfig(t *testing.T) {
	useConfigHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed for missing config: %v", err)
	}
	if cfg.TarPath != "tar" {
		t.Errorf("Expected default tar path, got %q", cfg.TarPath)
	}
}

func TestLoadValidConfig(t *testing.T) {
	home := useConfigHome(t)
	writeConfig(t, home, `
tar_path: /usr/local/bin/gtar
dialect: gnu
log_level: debug
verify: true
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TarPath != "/usr/local/bin/gtar" {
		t.Errorf("TarPath = %q, expected %q", cfg.TarPath, "/usr/local/bin/gtar")
	}
	if cfg.Dialect != "gnu" {
		t.Errorf("Dialect = %q, expected %q", cfg.Dialect, "gnu")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, expected %q", cfg.LogLevel, "debug")
	}
	if !cfg.Verify {
		t.Error("Verify = false, expected true")
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	home := useConfigHome(t)
	writeConfig(t, home, "verify: true\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TarPath != "tar" || cfg.Dialect != "auto" {
		t.Errorf("unset fields should keep defaults, got %+v", cfg)
	}
}

func TestLoadMalformedConfig(t *testing.T) {
	home := useConfigHome(t)
	writeConfig(t, home, "this: is: not: valid: yaml: [[[")

	if _, err := Load(); err == nil {
		t.Error("Load should fail for malformed YAML")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown dialect", "dialect: sun\n", "unknown dialect"},
		{"unknown level", "log_level: loud\n", "invalid log level"},
		{"empty tar path", "tar_path: \"\"\n", "tar_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := useConfigHome(t)
			writeConfig(t, home, tt.content)

			_, err := Load()
			if err == nil {
				t.Fatal("Load should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadReadFileError(t *testing.T) {
	home := useConfigHome(t)

	// A directory where the file should be causes a read error.
	if err := os.MkdirAll(filepath.Join(home, "tarwrap", "config.yaml"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load should fail when config file is a directory")
	}
}

func TestSaveConfig(t *testing.T) {
	home := useConfigHome(t)

	cfg := &Config{
		TarPath:  "bsdtar",
		Dialect:  "bsd",
		LogLevel: "info",
		Verify:   true,
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(home, "tarwrap", "config.yaml")); err != nil {
		t.Fatalf("Config file was not created: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded %+v, saved %+v", loaded, cfg)
	}
}

func TestResolveDialect(t *testing.T) {
	tests := []struct {
		dialect string
		goos    string
		want    tarfmt.Dialect
	}{
		{"auto", "windows", tarfmt.Compact},
		{"auto", "linux", tarfmt.GNU},
		{"auto", "darwin", tarfmt.BSD},
		{"", "freebsd", tarfmt.BSD},
		{"verbose", "windows", tarfmt.Verbose},
		{"compact", "linux", tarfmt.Compact},
	}

	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.goos, func(t *testing.T) {
			cfg := &Config{Dialect: tt.dialect}
			got, err := cfg.ResolveDialect(tt.goos)
			if err != nil {
				t.Fatalf("ResolveDialect failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveDialect = %+v, expected %+v", got, tt.want)
			}
		})
	}
}

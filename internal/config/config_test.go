package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seehooks.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"hooks":{"plugin_dir":"plugins"}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	dir := filepath.Dir(path)
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
	if cfg.Hooks.Document != filepath.Join(dir, "hooks.yaml") {
		t.Fatalf("unexpected document path %s", cfg.Hooks.Document)
	}
	if cfg.Hooks.PluginDir != filepath.Join(dir, "plugins") {
		t.Fatalf("unexpected plugin dir %s", cfg.Hooks.PluginDir)
	}
	if cfg.Session.WorkDir != filepath.Join(dir, "sandbox") {
		t.Fatalf("unexpected workdir %s", cfg.Session.WorkDir)
	}
}

func TestLoadKeepsAbsolutePaths(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "hooks.json")
	path := writeConfig(t, `{"hooks":{"document":"`+filepath.ToSlash(abs)+`"},"session":{"identifier":"s-1"}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Hooks.Document != filepath.ToSlash(abs) {
		t.Fatalf("expected absolute document path to be kept, got %s", cfg.Hooks.Document)
	}
	if cfg.Session.Identifier != "s-1" {
		t.Fatalf("unexpected identifier %s", cfg.Session.Identifier)
	}
}

func TestLoadRejectsAuditWithoutPath(t *testing.T) {
	path := writeConfig(t, `{"logging":{"audit":{"enabled":true}}}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := Load(writeConfig(t, `{`)); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestPathFromEnvironment(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/seehooks.json")
	if Path() != "/etc/seehooks.json" {
		t.Fatalf("unexpected path %s", Path())
	}
	t.Setenv(EnvConfigPath, "")
	if Path() != DefaultPath {
		t.Fatalf("expected default path, got %s", Path())
	}
}

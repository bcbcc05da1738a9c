package mysql

import (
	"strings"
	"testing"

	"sandbox-hooks/pkg/hooks"
)

func TestParseConfigEnablesParseTime(t *testing.T) {
	cfg, err := parseConfig(map[string]any{"dsn": "user:pass@tcp(127.0.0.1:3306)/sandbox", "workdir": "/srv/s-1"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(cfg.DSN, "parseTime=true") {
		t.Fatalf("expected parseTime in dsn, got %s", cfg.DSN)
	}
	if cfg.WorkDir != "/srv/s-1" {
		t.Fatalf("unexpected workdir %s", cfg.WorkDir)
	}
}

func TestParseConfigRejectsBadDSN(t *testing.T) {
	if _, err := parseConfig(map[string]any{}); err == nil {
		t.Fatal("expected error for empty dsn")
	}
	if _, err := parseConfig(map[string]any{"dsn": "user@tcp(127.0.0.1:3306"}); err == nil {
		t.Fatal("expected error for malformed dsn")
	}
}

func TestAuditConstructionFailsWithoutDSN(t *testing.T) {
	registry := hooks.NewRegistry(nil)
	hooks.DefineClass(registry.Namespace(Namespace), "Audit", New)

	class, err := registry.ResolveHook(Namespace + ".Audit")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	_, err = class.New(hooks.Params{Identifier: "s-1"})
	if err == nil || !strings.Contains(err.Error(), "INVALID_ARGUMENT") {
		t.Fatalf("expected invalid argument error, got %v", err)
	}
}

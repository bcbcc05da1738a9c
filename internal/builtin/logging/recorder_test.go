package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"sandbox-hooks/internal/sandbox"
	"sandbox-hooks/pkg/hooks"
)

func TestRecorderWritesAuditRecord(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	env := sandbox.NewEnvironment("s-1", "/srv/s-1")

	r := newRecorder(hooks.Params{
		Identifier:    "s-1",
		Configuration: map[string]any{"b": 1, "a": 2},
		Context:       env,
	}, log)

	out := buf.String()
	for _, want := range []string{`"session":"s-1"`, `"configuration":["a","b"]`, `"workdir":"/srv/s-1"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
	if !errors.Is(r.Cleanup(), hooks.ErrNotImplemented) {
		t.Fatal("recorder cleanup should report not implemented")
	}
}

func TestRecorderRegistered(t *testing.T) {
	if _, err := hooks.ResolveHook(Namespace + ".Recorder"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
}

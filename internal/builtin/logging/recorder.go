// Package logging provides a hook that writes the session start to the audit log.
package logging

import (
	"log/slog"
	"sort"

	"sandbox-hooks/internal/sandbox"
	"sandbox-hooks/pkg/hooks"
	"sandbox-hooks/pkg/logger"
)

// Namespace is the path the hook classes are registered under.
const Namespace = "sandbox.hooks.logging"

func init() {
	hooks.DefineClass(hooks.RegisterNamespace(Namespace), "Recorder", New)
}

// Recorder has nothing to release, so it keeps the Base Cleanup.
type Recorder struct {
	hooks.Base
}

// New writes one audit record describing the session and the hook configuration.
func New(p hooks.Params) (*Recorder, error) {
	return newRecorder(p, logger.Audit()), nil
}

func newRecorder(p hooks.Params, log *slog.Logger) *Recorder {
	r := &Recorder{Base: hooks.NewBase(p)}
	attrs := []any{"session", p.Identifier, "configuration", sortedKeys(p.Configuration)}
	if env, ok := p.Context.(*sandbox.Environment); ok {
		attrs = append(attrs, "workdir", env.WorkDir)
	}
	log.Info("sandbox session started", attrs...)
	return r
}

func sortedKeys(cfg map[string]any) []string {
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

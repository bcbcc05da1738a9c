package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	xerrors "sandbox-hooks/internal/errors"
	"sandbox-hooks/pkg/logger"
)

// Stage names the lifecycle step a Result belongs to.
type Stage string

const (
	StageLoad    Stage = "load"
	StageCleanup Stage = "cleanup"
)

// Result records the outcome of loading or cleaning up one hook.
type Result struct {
	// Hook is the name the hook was configured with.
	Hook string
	// Type is the concrete Go type of the instance, empty when loading failed.
	Type  string
	Stage Stage
	Err   error
}

type liveHook struct {
	name string
	hook Hook
}

// Manager owns the live hooks of one sandbox session. It is driven by a single
// goroutine; concurrent LoadHooks or Cleanup calls are not supported.
type Manager struct {
	identifier string
	document   Document
	registry   *Registry
	log        *slog.Logger
	hooks      []liveHook
	results    []Result
}

// Option modifies the behaviour of a hook manager.
type Option func(*Manager)

// WithRegistry resolves hook names against registry instead of Default.
func WithRegistry(registry *Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// WithLogger overrides the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// Create builds a manager for the session and loads every configured hook.
func Create(identifier string, document Document, context any, opts ...Option) *Manager {
	m := newManager(identifier, document, opts...)
	m.LoadHooks(context)
	return m
}

func newManager(identifier string, document Document, opts ...Option) *Manager {
	m := &Manager{
		identifier: identifier,
		document:   document,
		registry:   Default,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.Named("hooks")
	}
	return m
}

// Identifier returns the session identifier.
func (m *Manager) Identifier() string { return m.identifier }

// Document returns the hook document the manager was created with.
func (m *Manager) Document() Document { return m.document }

// Hooks returns the live hooks in configuration order.
func (m *Manager) Hooks() []Hook {
	out := make([]Hook, 0, len(m.hooks))
	for _, live := range m.hooks {
		out = append(out, live.hook)
	}
	return out
}

// Results returns the failures and successes recorded by the last LoadHooks and Cleanup calls.
func (m *Manager) Results() []Result {
	out := make([]Result, len(m.results))
	copy(out, m.results)
	return out
}

// LoadHooks instantiates the configured hooks in order. A hook that fails to resolve
// or construct is logged and skipped.
func (m *Manager) LoadHooks(context any) {
	m.results = m.results[:0]
	for _, entry := range m.document.Hooks {
		cfg := m.document.Effective(entry)
		hook, err := m.loadHook(entry.Name, cfg, context)
		if err != nil {
			m.results = append(m.results, Result{Hook: entry.Name, Stage: StageLoad, Err: err})
			m.report("hook initialization failure", err, "hook", entry.Name)
			continue
		}
		m.results = append(m.results, Result{Hook: entry.Name, Type: fmt.Sprintf("%T", hook), Stage: StageLoad})
		m.hooks = append(m.hooks, liveHook{name: entry.Name, hook: hook})
	}
}

func (m *Manager) loadHook(name string, cfg map[string]any, context any) (Hook, error) {
	m.log.Debug("loading hook", "hook", name)

	class, err := m.registry.ResolveHook(name)
	if err != nil {
		return nil, err
	}
	value, err := construct(class, Params{Identifier: m.identifier, Configuration: cfg, Context: context})
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeConstructionFailure, err,
			fmt.Sprintf("construct %s", class.QualifiedName()),
			xerrors.WithMetadata("hook", name))
	}
	hook, ok := value.(Hook)
	if !ok || isNil(value) {
		return nil, xerrors.New(xerrors.CodeConstructionFailure,
			fmt.Sprintf("constructor of %s returned %T", class.QualifiedName(), value),
			xerrors.WithMetadata("hook", name))
	}
	return hook, nil
}

func construct(class *Class, params Params) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, panicError{value: r}
		}
	}()
	return class.New(params)
}

// Cleanup tears down every live hook and empties the live set. Failures are logged
// and never stop the remaining hooks.
func (m *Manager) Cleanup() {
	m.results = m.results[:0]
	for _, live := range m.hooks {
		typeName := fmt.Sprintf("%T", live.hook)
		err := cleanupHook(live.hook)
		if notImplemented(err) {
			err = nil
		}
		if err != nil {
			opts := []xerrors.Option{
				xerrors.WithMetadata("hook", live.name),
				xerrors.WithMetadata("type", typeName),
			}
			var p panicError
			if errors.As(err, &p) {
				opts = append(opts, xerrors.WithSeverity(xerrors.SeverityCritical))
			}
			err = xerrors.Wrap(xerrors.CodeCleanupFailure, err, "cleanup "+typeName, opts...)
			m.report("hook cleanup error", err, "hook", live.name, "type", typeName)
		}
		m.results = append(m.results, Result{Hook: live.name, Type: typeName, Stage: StageCleanup, Err: err})
	}
	m.hooks = nil
}

// notImplemented only inspects the outermost error, so a real failure joined
// with ErrNotImplemented is still reported.
func notImplemented(err error) bool {
	e, ok := err.(*xerrors.Error)
	return ok && e.Code() == xerrors.CodeNotImplemented
}

// report logs a failure at the level derived from its severity.
func (m *Manager) report(msg string, err error, attrs ...any) {
	attrs = append(attrs,
		"code", xerrors.CodeOf(err),
		"severity", xerrors.SeverityOf(err),
		"metadata", xerrors.MetadataOf(err),
		"error", err)
	m.log.Log(context.Background(), levelOf(xerrors.SeverityOf(err)), msg, attrs...)
}

func levelOf(sev xerrors.Severity) slog.Level {
	switch sev {
	case xerrors.SeverityCritical:
		return slog.LevelError
	case xerrors.SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

type panicError struct{ value any }

func (p panicError) Error() string { return fmt.Sprintf("panic: %v", p.value) }

func cleanupHook(hook Hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	return hook.Cleanup()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

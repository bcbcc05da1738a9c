// Package hooks resolves, instantiates and tears down the sandbox hooks
// configured for a session.
package hooks

import (
	xerrors "sandbox-hooks/internal/errors"
)

var (
	// ErrResolution is matched by errors.Is when a hook name cannot be resolved to a class.
	ErrResolution = xerrors.New(xerrors.CodeResolutionFailure, "")
	// ErrCapability is matched when a resolved class does not implement Hook.
	ErrCapability = xerrors.New(xerrors.CodeCapabilityFailure, "")
	// ErrConstruction is matched when a hook constructor fails.
	ErrConstruction = xerrors.New(xerrors.CodeConstructionFailure, "")
	// ErrCleanup is matched when a hook teardown fails.
	ErrCleanup = xerrors.New(xerrors.CodeCleanupFailure, "")
	// ErrNotImplemented is returned by Cleanup when a hook has nothing to release.
	ErrNotImplemented = xerrors.New(xerrors.CodeNotImplemented, "cleanup not implemented")
)

// Params is handed to every hook at construction.
type Params struct {
	// Identifier is the session identifier, passed through unchanged.
	Identifier string
	// Configuration is the effective configuration of this hook.
	Configuration map[string]any
	// Context is the shared sandbox handle. It is owned by the caller.
	Context any
}

// Hook is implemented by every hook class.
type Hook interface {
	// Parameters returns the parameters the hook was constructed with.
	Parameters() Params
	// Cleanup releases the hook resources. Returning ErrNotImplemented means
	// there is nothing to release.
	Cleanup() error
}

// Base can be embedded by hook implementations. Its Cleanup reports ErrNotImplemented.
type Base struct {
	params Params
}

// NewBase stores the construction parameters.
func NewBase(params Params) Base {
	params.Configuration = cloneConfig(params.Configuration)
	return Base{params: params}
}

// Parameters implements Hook. The configuration map is a copy.
func (b Base) Parameters() Params {
	p := b.params
	p.Configuration = cloneConfig(b.params.Configuration)
	return p
}

// Identifier returns the session identifier.
func (b Base) Identifier() string { return b.params.Identifier }

// Configuration returns a copy of the effective configuration.
func (b Base) Configuration() map[string]any { return cloneConfig(b.params.Configuration) }

// Context returns the shared sandbox context.
func (b Base) Context() any { return b.params.Context }

// Cleanup implements Hook.
func (Base) Cleanup() error { return ErrNotImplemented }

func cloneConfig(cfg map[string]any) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	cp := make(map[string]any, len(cfg))
	for k, v := range cfg {
		cp[k] = v
	}
	return cp
}

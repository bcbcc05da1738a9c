package hooks

import (
	"errors"
	"fmt"
	"path/filepath"
	goplugin "plugin"
)

// NamespaceLoader provides namespaces that were not registered at process start.
type NamespaceLoader interface {
	Load(path string) (*Namespace, error)
}

// LoaderFunc adapts a function to NamespaceLoader.
type LoaderFunc func(path string) (*Namespace, error)

// Load implements NamespaceLoader.
func (f LoaderFunc) Load(path string) (*Namespace, error) { return f(path) }

// RegisterSymbol is the symbol a hook plugin must export.
const RegisterSymbol = "RegisterHooks"

// GoPluginLoader loads namespaces from Go plugins. The namespace "a.b" is read from
// Dir/a.b.so, whose exported RegisterHooks function defines the namespace symbols.
type GoPluginLoader struct {
	Dir string
}

// Load implements NamespaceLoader.
func (l GoPluginLoader) Load(path string) (*Namespace, error) {
	if path == "" {
		return nil, errors.New("namespace path cannot be empty")
	}
	if l.Dir == "" {
		return nil, errors.New("plugin directory not configured")
	}
	file := filepath.Join(l.Dir, path+".so")
	so, err := goplugin.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open plugin %s: %w", file, err)
	}
	symbol, err := so.Lookup(RegisterSymbol)
	if err != nil {
		return nil, fmt.Errorf("lookup %s in %s: %w", RegisterSymbol, file, err)
	}
	return registerFrom(path, symbol)
}

func registerFrom(path string, symbol any) (ns *Namespace, err error) {
	ns = NewNamespace(path)
	defer func() {
		if r := recover(); r != nil {
			ns, err = nil, fmt.Errorf("register namespace %s: %v", path, r)
		}
	}()
	switch fn := symbol.(type) {
	case func(*Namespace):
		fn(ns)
	case func(*Namespace) error:
		if err := fn(ns); err != nil {
			return nil, fmt.Errorf("register namespace %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s must be func(*hooks.Namespace), got %T", RegisterSymbol, symbol)
	}
	return ns, nil
}

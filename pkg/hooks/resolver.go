package hooks

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	xerrors "sandbox-hooks/internal/errors"
)

var hookType = reflect.TypeOf((*Hook)(nil)).Elem()

// Registry maps namespace paths to namespaces and resolves fully qualified class names.
type Registry struct {
	mu         sync.RWMutex
	namespaces map[string]*Namespace
	loader     NamespaceLoader
}

// NewRegistry creates an empty registry. A nil loader disables on-demand namespace loading.
func NewRegistry(loader NamespaceLoader) *Registry {
	return &Registry{namespaces: make(map[string]*Namespace), loader: loader}
}

// Default is the process wide registry populated by init functions.
var Default = NewRegistry(nil)

// Namespace returns the namespace registered under path, creating it if needed.
func (r *Registry) Namespace(path string) *Namespace {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ns, ok := r.namespaces[path]; ok {
		return ns
	}
	ns := NewNamespace(path)
	r.namespaces[path] = ns
	return ns
}

// SetLoader replaces the loader consulted for unknown namespaces.
func (r *Registry) SetLoader(loader NamespaceLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loader = loader
}

// Namespaces lists the registered namespace paths in sorted order.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	paths := make([]string, 0, len(r.namespaces))
	for path := range r.namespaces {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Resolve finds the class named by a fully qualified identifier. Everything before
// the last "." is the namespace path, the rest is the class name.
func (r *Registry) Resolve(name string) (*Class, error) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return nil, resolutionError(name, nil, fmt.Sprintf("%q is not a fully qualified name", name))
	}
	path, className := name[:idx], name[idx+1:]

	ns, err := r.lookup(path)
	if err != nil {
		return nil, resolutionError(name, err, fmt.Sprintf("namespace %s cannot be loaded", path))
	}
	symbol, ok := ns.Symbol(className)
	if !ok {
		return nil, resolutionError(name, nil, fmt.Sprintf("namespace %s has no symbol %s", path, className))
	}
	class, ok := symbol.(*Class)
	if !ok {
		return nil, resolutionError(name, nil, fmt.Sprintf("%s is not a class: %T", className, symbol))
	}
	return class, nil
}

// ResolveHook resolves name and checks that the class implements Hook.
func (r *Registry) ResolveHook(name string) (*Class, error) {
	class, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	if !class.Type.Implements(hookType) {
		return nil, xerrors.New(xerrors.CodeCapabilityFailure,
			fmt.Sprintf("%s is not a hook implementation", class.Type),
			xerrors.WithMetadata("hook", name))
	}
	return class, nil
}

func (r *Registry) lookup(path string) (*Namespace, error) {
	r.mu.RLock()
	ns, ok := r.namespaces[path]
	loader := r.loader
	r.mu.RUnlock()
	if ok {
		return ns, nil
	}
	if loader == nil {
		return nil, fmt.Errorf("namespace %s not registered", path)
	}
	ns, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		return nil, fmt.Errorf("loader returned no namespace for %s", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.namespaces[path]; ok {
		return existing, nil
	}
	r.namespaces[path] = ns
	return ns, nil
}

func resolutionError(name string, cause error, message string) error {
	if cause == nil {
		return xerrors.New(xerrors.CodeResolutionFailure, message, xerrors.WithMetadata("hook", name))
	}
	return xerrors.Wrap(xerrors.CodeResolutionFailure, cause, message, xerrors.WithMetadata("hook", name))
}

// Resolve resolves name against the Default registry.
func Resolve(name string) (*Class, error) { return Default.Resolve(name) }

// ResolveHook resolves name against the Default registry and checks the Hook capability.
func ResolveHook(name string) (*Class, error) { return Default.ResolveHook(name) }

// RegisterNamespace returns the namespace path of the Default registry, creating it if needed.
func RegisterNamespace(path string) *Namespace { return Default.Namespace(path) }

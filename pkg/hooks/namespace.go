package hooks

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Class describes a hook implementation that can be instantiated by name.
type Class struct {
	// Name is the type name inside its namespace.
	Name string
	// Namespace is the path of the namespace the class was defined in.
	Namespace string
	// Type is the concrete type produced by New.
	Type reflect.Type
	// New builds an instance from the construction parameters.
	New func(Params) (any, error)
}

// QualifiedName returns the fully qualified identifier of the class.
func (c *Class) QualifiedName() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "." + c.Name
}

// NewClass builds a class descriptor for implementations that cannot use DefineClass,
// such as classes built from reflection.
func NewClass(name string, typ reflect.Type, ctor func(Params) (any, error)) *Class {
	return &Class{Name: name, Type: typ, New: ctor}
}

// Namespace is a named table of symbols. Classes are one kind of symbol; any other
// value may be defined too and is reported as "not a class" on resolution.
type Namespace struct {
	path    string
	mu      sync.RWMutex
	symbols map[string]any
}

// NewNamespace creates an empty namespace.
func NewNamespace(path string) *Namespace {
	return &Namespace{path: path, symbols: make(map[string]any)}
}

// Path returns the namespace path.
func (n *Namespace) Path() string { return n.path }

// Define stores a symbol. It panics if name is empty or already defined, like
// database/sql.Register does for drivers. A *Class can be defined in one
// namespace only; it is left untouched when Define panics.
func (n *Namespace) Define(name string, value any) {
	if name == "" {
		panic("hooks: symbol name cannot be empty")
	}
	if value == nil {
		panic(fmt.Sprintf("hooks: symbol %s.%s is nil", n.path, name))
	}
	class, isClass := value.(*Class)
	if isClass && (class.Type == nil || class.New == nil) {
		panic(fmt.Sprintf("hooks: class %s.%s is incomplete", n.path, name))
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.symbols[name]; exists {
		panic(fmt.Sprintf("hooks: symbol %s.%s already defined", n.path, name))
	}
	if isClass {
		if class.Namespace != "" {
			panic(fmt.Sprintf("hooks: class %s already defined as %s", name, class.QualifiedName()))
		}
		class.Name = name
		class.Namespace = n.path
	}
	n.symbols[name] = value
}

// Symbol returns the symbol stored under name.
func (n *Namespace) Symbol(name string) (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	value, ok := n.symbols[name]
	return value, ok
}

// Symbols returns the defined symbol names in sorted order.
func (n *Namespace) Symbols() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := make([]string, 0, len(n.symbols))
	for name := range n.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefineClass defines a class named name whose instances have type T.
func DefineClass[T any](n *Namespace, name string, ctor func(Params) (T, error)) *Class {
	if ctor == nil {
		panic(fmt.Sprintf("hooks: class %s.%s has no constructor", n.Path(), name))
	}
	class := &Class{
		Type: reflect.TypeOf((*T)(nil)).Elem(),
		New: func(p Params) (any, error) {
			v, err := ctor(p)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
	n.Define(name, class)
	return class
}

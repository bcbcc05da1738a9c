package hooks

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

type plainType struct{}

func newTestRegistry() *Registry {
	r := NewRegistry(nil)
	ns := r.Namespace("pkg.mod")
	DefineClass(ns, "ClassName", func(p Params) (*recordingHook, error) {
		return &recordingHook{Base: NewBase(p)}, nil
	})
	DefineClass(ns, "Plain", func(Params) (*plainType, error) { return &plainType{}, nil })
	ns.Define("helper", func() {})
	ns.Define("Version", "1.0.0")
	return r
}

func TestResolveFindsClassInNamespace(t *testing.T) {
	r := newTestRegistry()
	class, err := r.Resolve("pkg.mod.ClassName")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if class.Name != "ClassName" || class.Namespace != "pkg.mod" {
		t.Fatalf("unexpected class %+v", class)
	}
	if class.QualifiedName() != "pkg.mod.ClassName" {
		t.Fatalf("unexpected qualified name %s", class.QualifiedName())
	}
}

func TestResolveFailures(t *testing.T) {
	r := newTestRegistry()
	cases := map[string]string{
		"missing namespace": "pkg.other.ClassName",
		"missing symbol":    "pkg.mod.Missing",
		"function symbol":   "pkg.mod.helper",
		"variable symbol":   "pkg.mod.Version",
		"no separator":      "ClassName",
		"trailing dot":      "pkg.mod.",
		"leading dot":       ".ClassName",
	}
	for label, name := range cases {
		_, err := r.Resolve(name)
		if !errors.Is(err, ErrResolution) {
			t.Errorf("%s: expected resolution error, got %v", label, err)
		}
		if errors.Is(err, ErrCapability) {
			t.Errorf("%s: resolution error must not match capability error", label)
		}
	}
}

func TestResolveHookRejectsNonHookClass(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.ResolveHook("pkg.mod.ClassName"); err != nil {
		t.Fatalf("resolve hook: %v", err)
	}
	_, err := r.ResolveHook("pkg.mod.Plain")
	if !errors.Is(err, ErrCapability) {
		t.Fatalf("expected capability error, got %v", err)
	}
	if errors.Is(err, ErrResolution) {
		t.Fatalf("capability error must not match resolution error")
	}
	if _, err := r.ResolveHook("pkg.mod.helper"); !errors.Is(err, ErrResolution) {
		t.Fatalf("expected resolution error for function symbol, got %v", err)
	}
}

func TestResolveAsksLoaderForUnknownNamespaceOnce(t *testing.T) {
	calls := 0
	r := NewRegistry(LoaderFunc(func(path string) (*Namespace, error) {
		calls++
		if path != "ext.tracing" {
			return nil, errors.New("no such plugin")
		}
		ns := NewNamespace(path)
		DefineClass(ns, "Tracer", func(p Params) (*recordingHook, error) {
			return &recordingHook{Base: NewBase(p)}, nil
		})
		return ns, nil
	}))

	for i := 0; i < 2; i++ {
		if _, err := r.ResolveHook("ext.tracing.Tracer"); err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected loader to run once, ran %d times", calls)
	}
	_, err := r.Resolve("ext.missing.Tracer")
	if !errors.Is(err, ErrResolution) || !strings.Contains(err.Error(), "no such plugin") {
		t.Fatalf("expected wrapped loader error, got %v", err)
	}
}

func TestDefinePanicsOnDuplicate(t *testing.T) {
	ns := NewNamespace("dup")
	ns.Define("A", 1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate symbol")
		}
	}()
	ns.Define("A", 2)
}

func TestDefineDuplicateLeavesClassUntouched(t *testing.T) {
	ns := NewNamespace("dup")
	ns.Define("A", 1)
	class := NewClass("", reflect.TypeOf((**plainType)(nil)).Elem(), func(Params) (any, error) { return &plainType{}, nil })
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic on duplicate symbol")
			}
		}()
		ns.Define("A", class)
	}()
	if class.Name != "" || class.Namespace != "" {
		t.Fatalf("rejected class was mutated: %q in %q", class.Name, class.Namespace)
	}
	if v, _ := ns.Symbol("A"); v != 1 {
		t.Fatalf("existing symbol replaced by %v", v)
	}
}

func TestDefineRejectsClassFromAnotherNamespace(t *testing.T) {
	first, second := NewNamespace("first"), NewNamespace("second")
	class := NewClass("", reflect.TypeOf((**plainType)(nil)).Elem(), func(Params) (any, error) { return &plainType{}, nil })
	first.Define("Shared", class)
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic when a class is defined twice")
			}
		}()
		second.Define("Other", class)
	}()
	if class.QualifiedName() != "first.Shared" {
		t.Fatalf("class identity changed to %s", class.QualifiedName())
	}
	if _, ok := second.Symbol("Other"); ok {
		t.Fatal("rejected class must not be stored")
	}
}

func TestRegisterFromPluginSymbol(t *testing.T) {
	ns, err := registerFrom("ext.ok", func(ns *Namespace) {
		ns.Define("Marker", true)
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if names := ns.Symbols(); len(names) != 1 || names[0] != "Marker" {
		t.Fatalf("unexpected symbols %v", names)
	}
	if _, err := registerFrom("ext.bad", "not a function"); err == nil {
		t.Fatal("expected error for wrong symbol type")
	}
	if _, err := registerFrom("ext.err", func(*Namespace) error { return errors.New("boom") }); err == nil {
		t.Fatal("expected error from register function")
	}
	if _, err := registerFrom("ext.panic", func(*Namespace) { panic("boom") }); err == nil {
		t.Fatal("expected error from panicking register function")
	}
}

func TestGoPluginLoaderRequiresDirectory(t *testing.T) {
	if _, err := (GoPluginLoader{}).Load("ext.tracing"); err == nil {
		t.Fatal("expected error without plugin directory")
	}
}

// Package sandbox holds the session handle shared with every hook.
package sandbox

import "sync"

// Environment is the context passed to hooks at construction. The hook manager
// only carries the reference; hooks read it and may store session resources.
type Environment struct {
	Identifier string
	WorkDir    string

	mu        sync.RWMutex
	resources map[string]any
}

// NewEnvironment creates the handle for one session.
func NewEnvironment(identifier, workDir string) *Environment {
	return &Environment{Identifier: identifier, WorkDir: workDir, resources: make(map[string]any)}
}

// SetResource publishes a value under key for other hooks of the session.
func (e *Environment) SetResource(key string, value any) {
	if key == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resources[key] = value
}

// Resource returns the value published under key.
func (e *Environment) Resource(key string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.resources[key]
	return v, ok
}

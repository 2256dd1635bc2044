package recording

import (
	"fmt"
	"sort"
	"sync"
)

// BackendFactory creates a backend. The backend is sized by Begin.
type BackendFactory func() Backend

var registry = struct {
	sync.RWMutex
	factories map[string]BackendFactory
}{factories: make(map[string]BackendFactory)}

// Register makes a backend available by name. It is meant to be called
// from init() in backend packages, following the database/sql driver
// pattern:
//
//	func init() {
//	    recording.Register("pixmap", func() recording.Backend {
//	        return NewPixmapTarget(0, 0)
//	    })
//	}
//
// Register panics if factory is nil or name is already taken.
func Register(name string, factory BackendFactory) {
	registry.Lock()
	defer registry.Unlock()

	if factory == nil {
		panic("recording: Register factory is nil")
	}
	if _, dup := registry.factories[name]; dup {
		panic("recording: Register called twice for " + name)
	}
	registry.factories[name] = factory
}

// NewBackend creates a backend by registered name.
//
//	import _ "github.com/gogpu/meshshade/render" // registers "pixmap"
//
//	backend, err := recording.NewBackend("pixmap")
func NewBackend(name string) (Backend, error) {
	registry.RLock()
	factory, ok := registry.factories[name]
	registry.RUnlock()

	if !ok {
		return nil, fmt.Errorf("recording: unknown backend %q (forgotten import?)", name)
	}
	return factory(), nil
}

// MustBackend is like NewBackend but panics on an unknown name.
func MustBackend(name string) Backend {
	b, err := NewBackend(name)
	if err != nil {
		panic(err)
	}
	return b
}

// Backends returns the registered names in alphabetical order.
func Backends() []string {
	registry.RLock()
	defer registry.RUnlock()

	names := make([]string, 0, len(registry.factories))
	for name := range registry.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// unregister removes a backend; tests use it to clean up.
func unregister(name string) {
	registry.Lock()
	defer registry.Unlock()
	delete(registry.factories, name)
}

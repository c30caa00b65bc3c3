package backend

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mmartin-sub/pdfrebuilder"
)

// Factory creates a new backend instance.
type Factory func() Renderer

// registry holds registered backends.
var (
	registryMu  sync.RWMutex
	backends    = make(map[string]Factory)
	defaultName = BackendCanvas
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the sorted names of all registered backends.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) Renderer {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := backends[name]
	if !ok {
		return nil
	}
	return factory()
}

// SetDefault configures the backend Dispatch uses when no name is given.
// The registry performs no capability-based auto-selection: the default is
// always an explicit choice.
func SetDefault(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	defaultName = name
}

// DefaultName returns the configured default backend name.
func DefaultName() string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return defaultName
}

// Dispatch resolves the named backend (or the configured default when name
// is empty) and runs the render.
//
// Before invoking the backend, an extension-less output path is amended
// with the default format's extension and target.OutputFormat is derived
// from the extension. After the backend returns, Dispatch verifies that a
// file exists at the output path; absence is a hard failure
// (ErrOutputVerificationFailed) even when the backend itself reported
// success. There is no implicit fallback across backends.
func Dispatch(ctx context.Context, name string, target *RenderTarget) error {
	if name == "" {
		name = DefaultName()
	}
	r := Get(name)
	if r == nil {
		return renderErrorf(ErrUnknownBackend, name, "%q (available: %s)",
			name, strings.Join(Available(), ", "))
	}

	ext := filepath.Ext(target.OutputPath)
	if ext == "" {
		ext = "." + DefaultFormat
		target.OutputPath += ext
	}
	if target.OutputFormat == "" {
		target.OutputFormat = strings.ToLower(strings.TrimPrefix(ext, "."))
	}

	if err := r.Render(ctx, target); err != nil {
		return err
	}

	if _, err := os.Stat(target.OutputPath); err != nil {
		return renderErrorf(ErrOutputVerificationFailed, name,
			"no output at %s: %v", target.OutputPath, err)
	}
	pdfrebuilder.Logger().Info("render complete",
		"backend", name, "output", target.OutputPath, "format", target.OutputFormat)
	return nil
}

package backend

import (
	"errors"
	"sync"

	"github.com/gogpu/rapid"
)

// Well-known backend names.
const (
	// BackendSoftware is the CPU reference rasterizer.
	BackendSoftware = "software"

	// BackendWGPU renders through gogpu/wgpu.
	BackendWGPU = "wgpu"
)

// ErrBackendNotAvailable is returned when a requested backend is not
// registered.
var ErrBackendNotAvailable = errors.New("backend: not available")

// Factory creates a backend instance sized for an offscreen surface.
type Factory func(width, height int) (rapid.Backend, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	// GPU first, software as fallback.
	backendPriority = []string{BackendWGPU, BackendSoftware}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
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

// Available returns a list of registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get creates a backend instance by name, sized for an offscreen surface.
// Returns ErrBackendNotAvailable if the backend is not registered.
func Get(name string, width, height int) (rapid.Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, ErrBackendNotAvailable
	}
	return factory(width, height)
}

// Default creates the best available backend based on priority.
// Priority order: wgpu > software. A backend whose factory fails is
// skipped in favor of the next candidate.
func Default(width, height int) (rapid.Backend, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var lastErr error
	for _, name := range backendPriority {
		factory, ok := backends[name]
		if !ok {
			continue
		}
		b, err := factory(width, height)
		if err != nil {
			lastErr = err
			continue
		}
		return b, nil
	}

	// Fallback: first registered backend that initializes.
	for _, factory := range backends {
		b, err := factory(width, height)
		if err != nil {
			lastErr = err
			continue
		}
		return b, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrBackendNotAvailable
}

// Package backend provides a pluggable rendering backend registry.
//
// The backend package allows rapid to support multiple rasterizer
// implementations behind the [rapid.Backend] interface. The software
// backend is the CPU reference; the wgpu backend renders through
// gogpu/wgpu.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// Importing a backend package registers it:
//
//	import _ "github.com/gogpu/rapid/backend/software"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific one by name:
//
//	// Best available backend for an 800x600 surface.
//	b, err := backend.Default(800, 600)
//
//	// Or request a specific backend.
//	b, err := backend.Get(backend.BackendSoftware, 800, 600)
//
// # Available Backends
//
//   - "software": CPU barycentric triangle rasterizer (always available)
//   - "wgpu": GPU-accelerated via gogpu/wgpu
package backend

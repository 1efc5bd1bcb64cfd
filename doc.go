// Package rapid is a hardware-accelerated immediate-mode 2D rendering engine.
//
// # Overview
//
// An application feeds a Renderer a stream of drawing commands each frame
// (shapes, text, images); rapid tessellates them into triangles and submits
// them to a rendering backend in submission order. The rendered surface can
// be read back into CPU memory at any point in a frame.
//
// # Quick Start
//
//	be, _ := software.New(256, 256)
//	r, _ := rapid.NewRenderer(be)
//
//	r.BeginFrame()
//	r.Clear(rapid.White)
//	r.DrawRect(rapid.NewRect(10, 20, 20, 20), rapid.Magenta)
//	cap, _ := r.CaptureFrame(rapid.FormatRGBA8)
//	r.EndFrame()
//
// # Architecture
//
// The library is organized into:
//   - Public API: Renderer, Image, Capture, Color, Vec2, Rect
//   - Tessellation: pure shape-to-triangle functions (tessellate.go, polygon.go)
//   - Text: layout, font metrics boundary, glyph cache (package text)
//   - Backends: software (reference rasterizer) and wgpu (GPU)
//
// # Threading
//
// A single goroutine, the render thread, owns the Renderer, the backend,
// and all GPU-affecting state. Text layout is pure and may run on worker
// goroutines; a finished text.Layout is an immutable value that can be
// handed to the render thread over a channel. Image creation is allowed
// from any goroutine; GPU uploads are deferred to the render thread.
//
// # Coordinate System
//
// Origin (0,0) at top-left, X increases right, Y increases down.
// All coordinates are in pixels.
package rapid

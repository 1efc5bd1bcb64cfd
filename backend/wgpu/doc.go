// Package wgpu implements the GPU backend on top of gogpu/wgpu/hal.
//
// The backend owns its HAL device by default, or shares one provided by
// the host application through a gpucontext device provider (see
// SetDeviceProvider). Texture lifecycle, vertex upload and shader
// compilation (WGSL via gogpu/naga) are fully wired; the raster pass is
// gated on HAL render pipeline support and currently reports
// ErrRenderPassUnsupported.
//
// Importing the package registers it under the name "wgpu":
//
//	import _ "github.com/gogpu/rapid/backend/wgpu"
//
// Use the nogpu build tag to exclude the package and its GPU
// dependencies from a build.
package wgpu

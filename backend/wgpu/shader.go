//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// batchShaderWGSL is the render shader for triangle batches. Vertices
// carry premultiplied color and texture coordinates; untextured batches
// bind a 1x1 white texture so one pipeline serves both cases.
const batchShaderWGSL = `
struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) color: vec4<f32>,
    @location(2) uv: vec2<f32>,
};

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
    @location(1) uv: vec2<f32>,
};

struct Uniforms {
    // Maps pixel coordinates to clip space: x' = x*sx + tx, y' = y*sy + ty.
    scale: vec2<f32>,
    translate: vec2<f32>,
};

@group(0) @binding(0) var<uniform> uniforms: Uniforms;
@group(1) @binding(0) var batch_texture: texture_2d<f32>;
@group(1) @binding(1) var batch_sampler: sampler;

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    let pos = in.position * uniforms.scale + uniforms.translate;
    out.position = vec4<f32>(pos, 0.0, 1.0);
    out.color = in.color;
    out.uv = in.uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    // Premultiplied modulate; the pipeline blend state is
    // (one, one-minus-src-alpha) source-over.
    return in.color * textureSample(batch_texture, batch_sampler, in.uv);
}
`

// compileShader compiles WGSL to SPIR-V words and wraps them in a HAL
// shader module.
func compileShader(device hal.Device, label, wgslSource string) (hal.ShaderModule, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile %s: %w", label, err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: spirvCode,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create shader module %s: %w", label, err)
	}
	return module, nil
}

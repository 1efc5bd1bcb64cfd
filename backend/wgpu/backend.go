//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/rapid"
	"github.com/gogpu/rapid/backend"
	"github.com/gogpu/wgpu/hal"
	types "github.com/gogpu/gputypes"
)

func init() {
	backend.Register(backend.BackendWGPU, func(width, height int) (rapid.Backend, error) {
		return New(width, height)
	})
}

// ErrRenderPassUnsupported is returned while HAL lacks render pipeline
// creation; texture and buffer traffic works, raster passes do not.
var ErrRenderPassUnsupported = errors.New("wgpu: render pass requires HAL render pipeline support")

// vertexStride is the byte size of one rapid.Vertex on the wire:
// position, premultiplied color and uv, all float32.
const vertexStride = 8 * 4

// gpuTexture pairs a HAL texture with the dimensions HAL does not track
// for us.
type gpuTexture struct {
	tex    hal.Texture
	width  int
	height int
}

// stagedBatch is one DrawTriangles call awaiting pass encoding.
type stagedBatch struct {
	firstVertex int
	vertexCount int
	texture     rapid.TextureID
	clip        rapid.IntRect
}

// Backend renders through gogpu/wgpu/hal. It owns a standalone device by
// default or shares the host's via NewWithProvider.
type Backend struct {
	handles *deviceHandles
	width   int
	height  int

	target hal.Texture // offscreen color attachment
	shader hal.ShaderModule

	// white is the 1x1 texture bound for untextured batches.
	white hal.Texture

	textures map[rapid.TextureID]*gpuTexture
	nextTex  rapid.TextureID

	// vertexBuf grows to hold the largest frame seen so far.
	vertexBuf    hal.Buffer
	vertexBufCap int

	frameData    []byte
	frameBatches []stagedBatch

	clearColor [4]float32
	hasClear   bool
}

// New creates a wgpu backend with its own device and an offscreen
// surface of the given size.
func New(width, height int) (*Backend, error) {
	handles, err := openDevice()
	if err != nil {
		return nil, err
	}
	return newBackend(handles, width, height)
}

// NewWithProvider creates a wgpu backend on a device shared by the host
// application (e.g. a gogpu app). The provider must also expose HAL
// handles via HalDevice() any and HalQueue() any. The shared device is
// not destroyed on Close.
func NewWithProvider(provider gpucontext.DeviceProvider, width, height int) (*Backend, error) {
	handles, err := handlesFromProvider(provider)
	if err != nil {
		return nil, err
	}
	return newBackend(handles, width, height)
}

func newBackend(handles *deviceHandles, width, height int) (*Backend, error) {
	if width <= 0 || height <= 0 {
		handles.destroy()
		return nil, fmt.Errorf("wgpu: invalid surface size %dx%d", width, height)
	}
	b := &Backend{
		handles:  handles,
		width:    width,
		height:   height,
		textures: make(map[rapid.TextureID]*gpuTexture),
		nextTex:  1,
	}

	target, err := b.createColorTexture("rapid-target", width, height,
		types.TextureUsageRenderAttachment|types.TextureUsageCopySrc)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.target = target

	shader, err := compileShader(handles.device, "rapid-batch", batchShaderWGSL)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.shader = shader

	white, err := b.createColorTexture("rapid-white", 1, 1,
		types.TextureUsageCopyDst|types.TextureUsageTextureBinding)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.white = white
	b.writeTexture(white, 0, 0, 1, 1, []byte{255, 255, 255, 255})

	rapid.Logger().Info("wgpu: backend initialized", "width", width, "height", height)
	return b, nil
}

// Name returns "wgpu".
func (b *Backend) Name() string { return backend.BackendWGPU }

// Size returns the surface dimensions in pixels.
func (b *Backend) Size() (int, int) { return b.width, b.height }

func (b *Backend) createColorTexture(label string, width, height int, usage types.TextureUsage) (hal.Texture, error) {
	tex, err := b.handles.device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        types.TextureFormatRGBA8Unorm,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %dx%d texture: %w", width, height, err)
	}
	return tex, nil
}

func (b *Backend) writeTexture(tex hal.Texture, x, y, width, height int, pixels []byte) {
	dst := &hal.ImageCopyTexture{
		Texture:  tex,
		MipLevel: 0,
		Origin:   hal.Origin3D{X: uint32(x), Y: uint32(y), Z: 0},
		Aspect:   types.TextureAspectAll,
	}
	layout := &hal.ImageDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(width * 4),
		RowsPerImage: uint32(height),
	}
	size := &hal.Extent3D{
		Width:              uint32(width),
		Height:             uint32(height),
		DepthOrArrayLayers: 1,
	}
	b.handles.queue.WriteTexture(dst, pixels, layout, size)
}

// CreateTexture uploads a premultiplied RGBA8 buffer into a new sampled
// texture.
func (b *Backend) CreateTexture(width, height int, pixels []byte) (rapid.TextureID, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("wgpu: texture size %dx%d invalid", width, height)
	}
	if len(pixels) != width*height*4 {
		return 0, fmt.Errorf("wgpu: texture data %d bytes, want %d", len(pixels), width*height*4)
	}
	tex, err := b.createColorTexture("rapid-image", width, height,
		types.TextureUsageCopyDst|types.TextureUsageTextureBinding)
	if err != nil {
		return 0, err
	}
	b.writeTexture(tex, 0, 0, width, height, pixels)

	id := b.nextTex
	b.nextTex++
	b.textures[id] = &gpuTexture{tex: tex, width: width, height: height}
	return id, nil
}

// UpdateTexture overwrites a sub-region of an existing texture.
func (b *Backend) UpdateTexture(id rapid.TextureID, x, y, width, height int, pixels []byte) error {
	gt, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("wgpu: update of unknown texture %d", id)
	}
	if x < 0 || y < 0 || x+width > gt.width || y+height > gt.height {
		return fmt.Errorf("wgpu: update region %d,%d %dx%d outside %dx%d texture",
			x, y, width, height, gt.width, gt.height)
	}
	if len(pixels) != width*height*4 {
		return fmt.Errorf("wgpu: update data %d bytes, want %d", len(pixels), width*height*4)
	}
	b.writeTexture(gt.tex, x, y, width, height, pixels)
	return nil
}

// DestroyTexture releases a texture. Unknown ids are ignored.
func (b *Backend) DestroyTexture(id rapid.TextureID) {
	gt, ok := b.textures[id]
	if !ok {
		return
	}
	delete(b.textures, id)
	b.handles.device.DestroyTexture(gt.tex)
}

// TextureCount reports the number of live image textures.
func (b *Backend) TextureCount() int { return len(b.textures) }

// BeginFrame resets the staged frame state.
func (b *Backend) BeginFrame() error {
	b.frameData = b.frameData[:0]
	b.frameBatches = b.frameBatches[:0]
	b.hasClear = false
	return nil
}

// Clear records the frame clear color; it becomes the pass load
// operation when the frame is encoded.
func (b *Backend) Clear(r, g, bl, a float32) {
	b.clearColor = [4]float32{r, g, bl, a}
	b.hasClear = true
	b.frameData = b.frameData[:0]
	b.frameBatches = b.frameBatches[:0]
}

// DrawTriangles stages one batch: vertices are packed into the frame's
// vertex stream, the draw range recorded for pass encoding.
func (b *Backend) DrawTriangles(batch rapid.Batch) error {
	if len(batch.Vertices)%3 != 0 {
		return fmt.Errorf("wgpu: %d vertices is not a whole number of triangles", len(batch.Vertices))
	}
	if len(batch.Vertices) == 0 {
		return nil
	}
	if batch.Texture != 0 {
		if _, ok := b.textures[batch.Texture]; !ok {
			return fmt.Errorf("wgpu: draw with unknown texture %d", batch.Texture)
		}
	}

	first := len(b.frameData) / vertexStride
	b.frameData = appendVertices(b.frameData, batch.Vertices)
	b.frameBatches = append(b.frameBatches, stagedBatch{
		firstVertex: first,
		vertexCount: len(batch.Vertices),
		texture:     batch.Texture,
		clip:        batch.Clip,
	})
	return nil
}

// EndFrame uploads the staged vertex stream and encodes the frame's
// render pass. Pass encoding is gated on HAL render pipeline support.
func (b *Backend) EndFrame() error {
	if len(b.frameBatches) == 0 {
		return nil
	}
	if err := b.uploadVertices(); err != nil {
		return err
	}
	// Vertex data is resident; the pass itself needs
	// hal.Device.CreateRenderPipeline, which this HAL version does not
	// provide yet.
	return ErrRenderPassUnsupported
}

// uploadVertices ensures the vertex buffer holds the frame's stream,
// growing it when a frame outsizes every previous one.
func (b *Backend) uploadVertices() error {
	need := len(b.frameData)
	if need > b.vertexBufCap {
		if b.vertexBuf != nil {
			b.handles.device.DestroyBuffer(b.vertexBuf)
			b.vertexBuf = nil
		}
		buf, err := b.handles.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "rapid-vertices",
			Size:  uint64(need),
			Usage: types.BufferUsageVertex | types.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create vertex buffer: %w", err)
		}
		b.vertexBuf = buf
		b.vertexBufCap = need
	}
	b.handles.queue.WriteBuffer(b.vertexBuf, 0, b.frameData)
	return nil
}

// ReadPixels requires copying the color attachment through a staging
// buffer, which depends on the same missing pass support.
func (b *Backend) ReadPixels(format rapid.PixelFormat) ([]byte, error) {
	return nil, fmt.Errorf("wgpu: read pixels: %w", ErrRenderPassUnsupported)
}

// Close releases every GPU resource and, for owned devices, the device
// itself.
func (b *Backend) Close() {
	dev := b.handles.device
	if dev == nil {
		return
	}
	for id, gt := range b.textures {
		dev.DestroyTexture(gt.tex)
		delete(b.textures, id)
	}
	if b.vertexBuf != nil {
		dev.DestroyBuffer(b.vertexBuf)
		b.vertexBuf = nil
	}
	if b.white != nil {
		dev.DestroyTexture(b.white)
		b.white = nil
	}
	if b.shader != nil {
		dev.DestroyShaderModule(b.shader)
		b.shader = nil
	}
	if b.target != nil {
		dev.DestroyTexture(b.target)
		b.target = nil
	}
	b.handles.destroy()
	b.handles = &deviceHandles{}
}

// appendVertices packs vertices into little-endian float32 words.
func appendVertices(dst []byte, verts []rapid.Vertex) []byte {
	for i := range verts {
		v := &verts[i]
		for _, f := range [8]float32{v.X, v.Y, v.R, v.G, v.B, v.A, v.U, v.V} {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
		}
	}
	return dst
}

package software

import (
	"errors"
	"fmt"

	"github.com/gogpu/rapid"
	"github.com/gogpu/rapid/backend"
)

func init() {
	backend.Register(backend.BackendSoftware, func(width, height int) (rapid.Backend, error) {
		return New(width, height)
	})
}

// ErrInvalidSurfaceSize is returned for non-positive surface dimensions.
var ErrInvalidSurfaceSize = errors.New("software: invalid surface size")

// Backend is the CPU rasterizer. The color buffer holds premultiplied
// RGBA as float32, so repeated captures are exact and blending does not
// accumulate quantization error across batches.
type Backend struct {
	width  int
	height int

	// buf is the premultiplied color buffer, 4 floats per pixel.
	buf []float32

	textures map[rapid.TextureID]*texture
	nextTex  rapid.TextureID
}

// texture is an immutable-size premultiplied RGBA8 pixel store.
type texture struct {
	width  int
	height int
	pixels []byte
}

// New creates a software backend with an offscreen surface of the given
// size.
func New(width, height int) (*Backend, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSurfaceSize, width, height)
	}
	return &Backend{
		width:    width,
		height:   height,
		buf:      make([]float32, width*height*4),
		textures: make(map[rapid.TextureID]*texture),
		nextTex:  1,
	}, nil
}

// Name returns "software".
func (b *Backend) Name() string { return backend.BackendSoftware }

// Size returns the surface dimensions in pixels.
func (b *Backend) Size() (int, int) { return b.width, b.height }

// CreateTexture stores a premultiplied RGBA8 pixel buffer.
func (b *Backend) CreateTexture(width, height int, pixels []byte) (rapid.TextureID, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("software: texture size %dx%d invalid", width, height)
	}
	if len(pixels) != width*height*4 {
		return 0, fmt.Errorf("software: texture data %d bytes, want %d", len(pixels), width*height*4)
	}
	id := b.nextTex
	b.nextTex++
	data := make([]byte, len(pixels))
	copy(data, pixels)
	b.textures[id] = &texture{width: width, height: height, pixels: data}
	return id, nil
}

// UpdateTexture overwrites a sub-region of a texture.
func (b *Backend) UpdateTexture(id rapid.TextureID, x, y, width, height int, pixels []byte) error {
	tex, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("software: update of unknown texture %d", id)
	}
	if x < 0 || y < 0 || x+width > tex.width || y+height > tex.height {
		return fmt.Errorf("software: update region %d,%d %dx%d outside %dx%d texture",
			x, y, width, height, tex.width, tex.height)
	}
	if len(pixels) != width*height*4 {
		return fmt.Errorf("software: update data %d bytes, want %d", len(pixels), width*height*4)
	}
	for row := 0; row < height; row++ {
		dst := ((y+row)*tex.width + x) * 4
		src := row * width * 4
		copy(tex.pixels[dst:dst+width*4], pixels[src:src+width*4])
	}
	return nil
}

// DestroyTexture releases a texture. Unknown ids are ignored.
func (b *Backend) DestroyTexture(id rapid.TextureID) {
	delete(b.textures, id)
}

// TextureCount reports the number of live textures.
func (b *Backend) TextureCount() int { return len(b.textures) }

// BeginFrame is a no-op for the offscreen software surface; the previous
// frame's contents persist until cleared.
func (b *Backend) BeginFrame() error { return nil }

// EndFrame is a no-op; all drawing is synchronous.
func (b *Backend) EndFrame() error { return nil }

// Clear fills the whole surface with a premultiplied color, ignoring any
// clip.
func (b *Backend) Clear(r, g, bl, a float32) {
	for i := 0; i < len(b.buf); i += 4 {
		b.buf[i+0] = r
		b.buf[i+1] = g
		b.buf[i+2] = bl
		b.buf[i+3] = a
	}
}

// DrawTriangles rasterizes one batch with source-over blending, scissored
// to the batch clip.
func (b *Backend) DrawTriangles(batch rapid.Batch) error {
	if len(batch.Vertices)%3 != 0 {
		return fmt.Errorf("software: %d vertices is not a whole number of triangles", len(batch.Vertices))
	}
	var tex *texture
	if batch.Texture != 0 {
		t, ok := b.textures[batch.Texture]
		if !ok {
			return fmt.Errorf("software: draw with unknown texture %d", batch.Texture)
		}
		tex = t
	}

	clip := batch.Clip.Intersect(rapid.IntRect{X: 0, Y: 0, W: b.width, H: b.height})
	if clip.IsEmpty() {
		return nil
	}
	for i := 0; i+2 < len(batch.Vertices); i += 3 {
		b.fillTriangle(batch.Vertices[i], batch.Vertices[i+1], batch.Vertices[i+2], tex, clip)
	}
	return nil
}

// edge evaluates the signed area of (a, b, p) doubled. Positive means p
// lies left of the directed edge a->b in y-down coordinates.
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// topLeft reports whether a directed edge of a positively oriented
// triangle owns the pixels exactly on it. Top edges run right along a
// horizontal; left edges run upward on screen. The rule keeps shared
// edges between adjacent triangles from being shaded twice.
func topLeft(ax, ay, bx, by float32) bool {
	dy := by - ay
	if dy == 0 {
		return bx > ax
	}
	return dy < 0
}

func (b *Backend) fillTriangle(v0, v1, v2 rapid.Vertex, tex *texture, clip rapid.IntRect) {
	// Orient positively so the edge tests agree.
	if edge(v0.X, v0.Y, v1.X, v1.Y, v2.X, v2.Y) < 0 {
		v1, v2 = v2, v1
	}
	area := edge(v0.X, v0.Y, v1.X, v1.Y, v2.X, v2.Y)
	if area == 0 {
		return
	}

	minX := int(min3(v0.X, v1.X, v2.X))
	minY := int(min3(v0.Y, v1.Y, v2.Y))
	maxX := int(max3(v0.X, v1.X, v2.X)) + 1
	maxY := int(max3(v0.Y, v1.Y, v2.Y)) + 1
	if minX < clip.X {
		minX = clip.X
	}
	if minY < clip.Y {
		minY = clip.Y
	}
	if maxX > clip.X+clip.W {
		maxX = clip.X + clip.W
	}
	if maxY > clip.Y+clip.H {
		maxY = clip.Y + clip.H
	}

	bias0 := boundaryBias(v1, v2)
	bias1 := boundaryBias(v2, v0)
	bias2 := boundaryBias(v0, v1)

	for y := minY; y < maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x < maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(v1.X, v1.Y, v2.X, v2.Y, px, py)
			w1 := edge(v2.X, v2.Y, v0.X, v0.Y, px, py)
			w2 := edge(v0.X, v0.Y, v1.X, v1.Y, px, py)
			if w0 < bias0 || w1 < bias1 || w2 < bias2 {
				continue
			}

			l0 := w0 / area
			l1 := w1 / area
			l2 := w2 / area

			sr := l0*v0.R + l1*v1.R + l2*v2.R
			sg := l0*v0.G + l1*v1.G + l2*v2.G
			sb := l0*v0.B + l1*v1.B + l2*v2.B
			sa := l0*v0.A + l1*v1.A + l2*v2.A

			if tex != nil {
				u := l0*v0.U + l1*v1.U + l2*v2.U
				v := l0*v0.V + l1*v1.V + l2*v2.V
				tr, tg, tb, ta := tex.sample(u, v)
				sr *= tr
				sg *= tg
				sb *= tb
				sa *= ta
			}

			b.blendPixel(x, y, sr, sg, sb, sa)
		}
	}
}

// boundaryBias returns the smallest accepted edge value for the edge
// opposite a vertex: zero when the edge owns its boundary pixels
// (top-left rule), an epsilon step above zero otherwise.
func boundaryBias(a, b rapid.Vertex) float32 {
	if topLeft(a.X, a.Y, b.X, b.Y) {
		return 0
	}
	// Smallest positive float32 keeps exact-boundary pixels out without
	// affecting interior coverage.
	return 1e-30
}

// blendPixel composites a premultiplied source over the destination.
func (b *Backend) blendPixel(x, y int, sr, sg, sb, sa float32) {
	i := (y*b.width + x) * 4
	inv := 1 - sa
	b.buf[i+0] = sr + b.buf[i+0]*inv
	b.buf[i+1] = sg + b.buf[i+1]*inv
	b.buf[i+2] = sb + b.buf[i+2]*inv
	b.buf[i+3] = sa + b.buf[i+3]*inv
}

// sample fetches a texel with nearest filtering and clamp-to-edge
// addressing, returning premultiplied floats.
func (t *texture) sample(u, v float32) (r, g, b, a float32) {
	x := int(u * float32(t.width))
	y := int(v * float32(t.height))
	if x < 0 {
		x = 0
	} else if x >= t.width {
		x = t.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.height {
		y = t.height - 1
	}
	i := (y*t.width + x) * 4
	const s = 1.0 / 255.0
	return float32(t.pixels[i+0]) * s,
		float32(t.pixels[i+1]) * s,
		float32(t.pixels[i+2]) * s,
		float32(t.pixels[i+3]) * s
}

// ReadPixels converts the premultiplied float buffer to the requested
// byte format. RGBA8 output is straight (un-premultiplied) alpha.
func (b *Backend) ReadPixels(format rapid.PixelFormat) ([]byte, error) {
	bpp := format.BytesPerPixel()
	out := make([]byte, b.width*b.height*bpp)
	for p := 0; p < b.width*b.height; p++ {
		r := b.buf[p*4+0]
		g := b.buf[p*4+1]
		bl := b.buf[p*4+2]
		a := b.buf[p*4+3]
		if a > 0 {
			r /= a
			g /= a
			bl /= a
		}
		switch format {
		case rapid.FormatRGB8:
			out[p*3+0] = toByte(r)
			out[p*3+1] = toByte(g)
			out[p*3+2] = toByte(bl)
		default:
			out[p*4+0] = toByte(r)
			out[p*4+1] = toByte(g)
			out[p*4+2] = toByte(bl)
			out[p*4+3] = toByte(a)
		}
	}
	return out, nil
}

// Close releases all textures. The backend must not be used afterwards.
func (b *Backend) Close() {
	b.textures = make(map[rapid.TextureID]*texture)
	b.buf = nil
}

func toByte(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

func min3(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

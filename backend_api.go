package rapid

// TextureID identifies a GPU texture owned by a backend.
// The zero value means "no texture".
type TextureID uint64

// Vertex is a single triangle vertex handed to a backend.
// Color components are premultiplied alpha in [0, 1]. U and V address
// the batch texture when one is set; they are ignored otherwise.
type Vertex struct {
	X, Y       float32
	R, G, B, A float32
	U, V       float32
}

// Batch is a run of triangles sharing one texture and one clip rectangle.
// Vertices come in groups of three, in submission order.
type Batch struct {
	Vertices []Vertex

	// Texture samples into the batch; zero means untextured geometry.
	Texture TextureID

	// Clip is the pixel-granular scissor rectangle. Nothing outside it
	// may be written.
	Clip IntRect
}

// Backend is the boundary to the hardware-accelerated rasterizer.
//
// All methods must be called from the goroutine owning the rendering
// context (the render thread). Backends composite batches with standard
// alpha-over blending: a fully transparent source leaves the destination
// unchanged, a fully opaque source replaces it.
type Backend interface {
	// Name returns the backend identifier (e.g. "software", "wgpu").
	Name() string

	// Size returns the surface dimensions in pixels.
	Size() (width, height int)

	// CreateTexture uploads an RGBA8 premultiplied pixel buffer and
	// returns a texture handle. len(pixels) must be width*height*4.
	CreateTexture(width, height int, pixels []byte) (TextureID, error)

	// UpdateTexture overwrites a sub-region of an existing texture.
	UpdateTexture(id TextureID, x, y, width, height int, pixels []byte) error

	// DestroyTexture releases a texture. Destroying an unknown or already
	// destroyed texture is a no-op.
	DestroyTexture(id TextureID)

	// TextureCount reports the number of live textures, for leak checks.
	TextureCount() int

	// BeginFrame prepares the surface for a new frame.
	BeginFrame() error

	// Clear fills the entire surface with a premultiplied color,
	// ignoring any clip.
	Clear(r, g, b, a float32)

	// DrawTriangles rasterizes one batch with alpha-over blending.
	DrawTriangles(batch Batch) error

	// EndFrame completes the current frame.
	EndFrame() error

	// ReadPixels reads back the color buffer in the requested format.
	// It returns exactly width*height*bpp bytes.
	ReadPixels(format PixelFormat) ([]byte, error)

	// Close releases all backend resources, including live textures.
	Close()
}

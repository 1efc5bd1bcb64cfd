package rapid

import (
	"fmt"
	"image"

	"github.com/gogpu/rapid/text"
)

// frameState tracks where the renderer is in its frame cycle.
type frameState uint8

const (
	stateIdle frameState = iota
	stateFrameOpen
)

func (s frameState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateFrameOpen:
		return "frame-open"
	default:
		return "unknown"
	}
}

// RendererOption configures a Renderer during creation.
type RendererOption func(*rendererOptions)

type rendererOptions struct {
	glyphCache text.GlyphCacheConfig
}

func defaultRendererOptions() rendererOptions {
	return rendererOptions{
		glyphCache: text.DefaultGlyphCacheConfig(),
	}
}

// WithGlyphCacheConfig overrides the glyph cache sizing.
//
// Example:
//
//	r, err := rapid.NewRenderer(backend,
//	    rapid.WithGlyphCacheConfig(text.GlyphCacheConfig{MaxEntries: 4096}))
func WithGlyphCacheConfig(cfg text.GlyphCacheConfig) RendererOption {
	return func(o *rendererOptions) {
		o.glyphCache = cfg
	}
}

// Renderer is the immediate-mode drawing front end. Draw calls between
// BeginFrame and EndFrame are recorded into a command stream, tessellated
// into triangle batches, and handed to the backend in submission order.
//
// A Renderer is confined to one goroutine (the render thread). The only
// operations callable from other goroutines are image creation on the
// resource manager and [text.LayoutAsync].
type Renderer struct {
	backend   Backend
	resources *ResourceManager
	clips     *ClipStack
	glyphs    *text.GlyphCache

	width  int
	height int

	state frameState
	cmds  []DrawCommand

	// clearColor is set by Clear and applied at the next flush, before
	// any buffered geometry.
	clearColor     Color
	clearRequested bool

	// frameImages holds one reference per image draw this frame.
	frameImages []*Image

	// verts is the batch assembly scratch buffer, reused across flushes.
	verts []Vertex
}

// NewRenderer creates a renderer drawing through the given backend.
// The surface size is taken from the backend.
func NewRenderer(backend Backend, opts ...RendererOption) (*Renderer, error) {
	if backend == nil {
		return nil, ErrNoBackend
	}
	options := defaultRendererOptions()
	for _, opt := range opts {
		opt(&options)
	}
	w, h := backend.Size()
	r := &Renderer{
		backend: backend,
		width:   w,
		height:  h,
		clips:   NewClipStack(NewRect(0, 0, float64(w), float64(h))),
	}
	r.resources = newResourceManager(backend)
	r.glyphs = text.NewGlyphCache(textureAdapter{backend}, options.glyphCache)
	Logger().Info("rapid: renderer created",
		"backend", backend.Name(), "width", w, "height", h)
	return r, nil
}

// Backend returns the backend the renderer draws through.
func (r *Renderer) Backend() Backend { return r.backend }

// Size returns the surface dimensions in pixels.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// Resources returns the image resource manager. Its CreateImage methods
// are safe to call from any goroutine.
func (r *Renderer) Resources() *ResourceManager { return r.resources }

// GlyphCacheStats returns counters for the glyph atlas cache.
func (r *Renderer) GlyphCacheStats() text.GlyphCacheStats { return r.glyphs.Stats() }

// Close releases the glyph atlas and the backend. The renderer must be
// idle. Close is idempotent.
func (r *Renderer) Close() {
	if r.backend == nil {
		return
	}
	r.glyphs.Clear()
	r.resources.frameCompleted()
	r.backend.Close()
	r.backend = nil
}

// BeginFrame opens a new frame. Pending image uploads are performed
// first, then the backend is prepared. The clip stack is reset to the
// full surface.
//
// Returns ErrInvalidState if a frame is already open.
func (r *Renderer) BeginFrame() error {
	if r.state != stateIdle {
		return fmt.Errorf("rapid: BeginFrame in state %v: %w", r.state, ErrInvalidState)
	}
	if err := r.resources.uploadPending(); err != nil {
		return err
	}
	if err := r.backend.BeginFrame(); err != nil {
		return fmt.Errorf("rapid: backend begin frame: %w", err)
	}
	r.clips.Reset()
	r.cmds = r.cmds[:0]
	r.clearRequested = false
	r.state = stateFrameOpen
	return nil
}

// EndFrame flushes all buffered commands, completes the frame on the
// backend, and destroys textures retired during the frame.
//
// Returns ErrInvalidState if no frame is open. The renderer returns to
// idle even when the backend reports an error.
func (r *Renderer) EndFrame() error {
	if r.state != stateFrameOpen {
		return fmt.Errorf("rapid: EndFrame in state %v: %w", r.state, ErrInvalidState)
	}
	flushErr := r.flush()
	endErr := r.backend.EndFrame()

	// Drop the per-draw references; any image whose last reference goes
	// here is retired and destroyed below.
	for i, img := range r.frameImages {
		img.Release()
		r.frameImages[i] = nil
	}
	r.frameImages = r.frameImages[:0]
	r.resources.frameCompleted()
	r.state = stateIdle

	if flushErr != nil {
		return flushErr
	}
	if endErr != nil {
		return fmt.Errorf("rapid: backend end frame: %w", endErr)
	}
	return nil
}

// Clear fills the entire surface with a color, ignoring the clip.
// Commands buffered before the clear are discarded since the fill would
// overwrite them anyway.
func (r *Renderer) Clear(c Color) error {
	if r.state != stateFrameOpen {
		return fmt.Errorf("rapid: Clear in state %v: %w", r.state, ErrInvalidState)
	}
	r.cmds = r.cmds[:0]
	r.clearColor = c
	r.clearRequested = true
	return nil
}

// SetClip replaces the clip region. Pass nil to restore the full
// surface. The clip applies to every draw call after it; commands
// already submitted keep the clip they were recorded with.
func (r *Renderer) SetClip(rect *Rect) error {
	if r.state != stateFrameOpen {
		return fmt.Errorf("rapid: SetClip in state %v: %w", r.state, ErrInvalidState)
	}
	r.clips.Reset()
	if rect != nil {
		r.clips.Push(*rect)
	}
	return nil
}

// PushClip intersects a rectangle with the current clip. Use PopClip to
// restore the previous region.
func (r *Renderer) PushClip(rect Rect) error {
	if r.state != stateFrameOpen {
		return fmt.Errorf("rapid: PushClip in state %v: %w", r.state, ErrInvalidState)
	}
	r.clips.Push(rect)
	return nil
}

// PopClip restores the clip active before the matching PushClip.
func (r *Renderer) PopClip() error {
	if r.state != stateFrameOpen {
		return fmt.Errorf("rapid: PopClip in state %v: %w", r.state, ErrInvalidState)
	}
	r.clips.Pop()
	return nil
}

// DrawRect fills an axis-aligned rectangle.
func (r *Renderer) DrawRect(rect Rect, c Color) error {
	return r.record(DrawCommand{Tag: TagRect, Rect: rect, Color: c})
}

// DrawRoundedRect fills a rectangle with circular corner arcs of the
// given radius. The radius is clamped to half the shorter side.
func (r *Renderer) DrawRoundedRect(rect Rect, radius float64, c Color) error {
	return r.record(DrawCommand{Tag: TagRoundedRect, Rect: rect, Radius: radius, Color: c})
}

// DrawLine fills a line of the given thickness between two points.
// For crisp single-pixel horizontal or vertical lines, place endpoints
// on half-pixel coordinates (e.g. y=10.5 with thickness 1).
func (r *Renderer) DrawLine(a, b Vec2, thickness float64, c Color) error {
	return r.record(DrawCommand{Tag: TagLine, P0: a, P1: b, Thickness: thickness, Color: c})
}

// DrawCircle fills a circle. Nothing is drawn for a non-positive radius.
func (r *Renderer) DrawCircle(center Vec2, radius float64, c Color) error {
	if radius <= 0 {
		if r.state != stateFrameOpen {
			return fmt.Errorf("rapid: DrawCircle in state %v: %w", r.state, ErrInvalidState)
		}
		return nil
	}
	return r.record(DrawCommand{Tag: TagCircle, P0: center, Radius: radius, Color: c})
}

// DrawSectorTri fills one triangle with per-vertex colors and texture
// coordinates. It is the low-level building block for gradients.
func (r *Renderer) DrawSectorTri(pts [3]Vec2, cols [3]Color, uvs [3]Vec2) error {
	return r.record(DrawCommand{Tag: TagSectorTri, P0: pts[0], P1: pts[1], P2: pts[2], Colors: cols, UVs: uvs})
}

// DrawPolygon fills a simple polygon given by its vertices in order.
// Either winding is accepted; self-intersecting input is not supported.
func (r *Renderer) DrawPolygon(points []Vec2, c Color) error {
	if len(points) < 3 {
		if r.state != stateFrameOpen {
			return fmt.Errorf("rapid: DrawPolygon in state %v: %w", r.state, ErrInvalidState)
		}
		return nil
	}
	return r.record(DrawCommand{Tag: TagPolygon, Points: points, Color: c})
}

// DrawText draws a laid-out text with its first baseline-relative line
// box anchored at origin (the top-left corner of the layout).
func (r *Renderer) DrawText(layout *text.Layout, origin Vec2, c Color) error {
	if layout == nil || len(layout.Lines) == 0 {
		if r.state != stateFrameOpen {
			return fmt.Errorf("rapid: DrawText in state %v: %w", r.state, ErrInvalidState)
		}
		return nil
	}
	return r.record(DrawCommand{Tag: TagText, Text: layout, Origin: origin, Color: c})
}

// DrawCroppedText draws a laid-out text clipped to a rectangle, without
// re-laying-out: glyphs outside the crop are scissored, not reflowed.
func (r *Renderer) DrawCroppedText(layout *text.Layout, origin Vec2, c Color, crop Rect) error {
	if r.state != stateFrameOpen {
		return fmt.Errorf("rapid: DrawCroppedText in state %v: %w", r.state, ErrInvalidState)
	}
	if layout == nil || len(layout.Lines) == 0 {
		return nil
	}
	cmd := DrawCommand{Tag: TagText, Text: layout, Origin: origin, Color: c}
	cmd.Clip = r.clips.Bounds().Intersect(crop).Round()
	if cmd.Clip.IsEmpty() {
		return nil
	}
	r.cmds = append(r.cmds, cmd)
	return nil
}

// DrawImage draws an image scaled into a destination rectangle,
// modulated by a color (use White for the image as-is). The image is
// retained until the frame completes.
func (r *Renderer) DrawImage(img *Image, dst Rect, c Color) error {
	if r.state != stateFrameOpen {
		return fmt.Errorf("rapid: DrawImage in state %v: %w", r.state, ErrInvalidState)
	}
	if img == nil || img.released() {
		return ErrImageReleased
	}
	cmd := DrawCommand{Tag: TagImage, Image: img, Rect: dst, Color: c}
	cmd.Clip = r.clips.Bounds().Round()
	if cmd.Clip.IsEmpty() {
		return nil
	}
	img.Retain()
	r.frameImages = append(r.frameImages, img)
	r.cmds = append(r.cmds, cmd)
	return nil
}

// CreateImage registers an image from raw pixel data. See
// [ResourceManager.CreateImage]. Callable from any goroutine.
func (r *Renderer) CreateImage(pixels []byte, width, height int, format PixelFormat) (*Image, error) {
	return r.resources.CreateImage(pixels, width, height, format)
}

// CreateImageFromImage registers an image from a decoded image.Image,
// flattening it to RGBA8. Callable from any goroutine.
func (r *Renderer) CreateImageFromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("rapid: image bounds %v: %w", b, ErrInvalidImageData)
	}
	return r.resources.CreateImage(imageToRGBA(src), b.Dx(), b.Dy(), FormatRGBA8)
}

// CaptureFrame flushes all buffered commands and reads back the color
// buffer in the requested format. It can be called mid-frame; draw calls
// after the capture composite on top of what was read.
func (r *Renderer) CaptureFrame(format PixelFormat) (*Capture, error) {
	if r.state != stateFrameOpen {
		return nil, fmt.Errorf("rapid: CaptureFrame in state %v: %w", r.state, ErrInvalidState)
	}
	if err := r.flush(); err != nil {
		return nil, err
	}
	pixels, err := r.backend.ReadPixels(format)
	if err != nil {
		return nil, fmt.Errorf("rapid: read pixels: %w", err)
	}
	return &Capture{
		Format: format,
		Width:  r.width,
		Height: r.height,
		Pixels: pixels,
	}, nil
}

// record appends one command with the current clip snapshotted onto it.
// Commands fully outside the clip are dropped.
func (r *Renderer) record(cmd DrawCommand) error {
	if r.state != stateFrameOpen {
		return fmt.Errorf("rapid: %v in state %v: %w", cmd.Tag, r.state, ErrInvalidState)
	}
	cmd.Clip = r.clips.Bounds().Round()
	if cmd.Clip.IsEmpty() {
		return nil
	}
	r.cmds = append(r.cmds, cmd)
	return nil
}

// flush tessellates the buffered command stream into batches and submits
// them in order. Consecutive commands sharing a texture and a clip are
// coalesced into one batch.
func (r *Renderer) flush() error {
	if r.clearRequested {
		p := r.clearColor.Premultiply()
		r.backend.Clear(float32(p.R), float32(p.G), float32(p.B), float32(p.A))
		r.clearRequested = false
	}
	if len(r.cmds) == 0 {
		return nil
	}

	var (
		curTex  TextureID
		curClip IntRect
		started bool
	)
	r.verts = r.verts[:0]

	submit := func() error {
		if len(r.verts) == 0 {
			return nil
		}
		err := r.backend.DrawTriangles(Batch{
			Vertices: r.verts,
			Texture:  curTex,
			Clip:     curClip,
		})
		r.verts = r.verts[:0]
		return err
	}
	ensure := func(tex TextureID, clip IntRect) error {
		if started && tex == curTex && clip == curClip {
			return nil
		}
		if err := submit(); err != nil {
			return err
		}
		curTex, curClip, started = tex, clip, true
		return nil
	}

	for i := range r.cmds {
		cmd := &r.cmds[i]
		switch cmd.Tag {
		case TagRect:
			if err := ensure(0, cmd.Clip); err != nil {
				return err
			}
			r.verts = AppendRect(r.verts, cmd.Rect, cmd.Color)
		case TagRoundedRect:
			if err := ensure(0, cmd.Clip); err != nil {
				return err
			}
			r.verts = AppendRoundedRect(r.verts, cmd.Rect, cmd.Radius, cmd.Color)
		case TagLine:
			if err := ensure(0, cmd.Clip); err != nil {
				return err
			}
			r.verts = AppendLine(r.verts, cmd.P0, cmd.P1, cmd.Thickness, cmd.Color)
		case TagCircle:
			if err := ensure(0, cmd.Clip); err != nil {
				return err
			}
			r.verts = AppendCircle(r.verts, cmd.P0, cmd.Radius, cmd.Color)
		case TagSectorTri:
			if err := ensure(0, cmd.Clip); err != nil {
				return err
			}
			r.verts = AppendSectorTri(r.verts, [3]Vec2{cmd.P0, cmd.P1, cmd.P2}, cmd.Colors, cmd.UVs)
		case TagPolygon:
			if err := ensure(0, cmd.Clip); err != nil {
				return err
			}
			r.verts = AppendPolygon(r.verts, cmd.Points, cmd.Color)
		case TagText:
			if err := r.flushText(cmd, ensure); err != nil {
				return err
			}
		case TagImage:
			if err := r.flushImage(cmd, ensure); err != nil {
				return err
			}
		}
	}
	if err := submit(); err != nil {
		return err
	}
	r.cmds = r.cmds[:0]
	return nil
}

// flushText rasterizes each glyph through the cache and appends one
// textured quad per visible glyph. Pen x positions are quantized to
// subpixel buckets so cached masks are reused across nearby positions.
func (r *Renderer) flushText(cmd *DrawCommand, ensure func(TextureID, IntRect) error) error {
	layout := cmd.Text
	for li := range layout.Lines {
		line := &layout.Lines[li]
		penY := cmd.Origin.Y + line.Baseline
		for gi := range line.Glyphs {
			g := &line.Glyphs[gi]
			intX, bucket := text.Quantize(cmd.Origin.X + g.X)
			region, err := r.glyphs.GetOrRasterize(layout.Face, g.GID, bucket)
			if err != nil {
				return fmt.Errorf("rapid: glyph %d: %w", g.GID, err)
			}
			if region.Width == 0 || region.Height == 0 {
				continue // whitespace or blank glyph
			}
			if err := ensure(TextureID(region.Texture), cmd.Clip); err != nil {
				return err
			}
			r.verts = AppendGlyphQuad(r.verts, region, float64(intX), penY, cmd.Color)
		}
	}
	return nil
}

// flushImage appends one textured quad spanning the destination
// rectangle. Images created mid-frame are uploaded here on demand.
func (r *Renderer) flushImage(cmd *DrawCommand, ensure func(TextureID, IntRect) error) error {
	img := cmd.Image
	if img.tex == 0 {
		if err := r.resources.uploadPending(); err != nil {
			return err
		}
		if img.tex == 0 {
			return ErrImageReleased
		}
	}
	if err := ensure(img.tex, cmd.Clip); err != nil {
		return err
	}
	r.verts = AppendImageQuad(r.verts, cmd.Rect, cmd.Color)
	return nil
}

// textureAdapter exposes a Backend to the text package, which deals in
// bare uint64 texture handles to stay free of a dependency on this
// package.
type textureAdapter struct {
	b Backend
}

func (a textureAdapter) CreateTexture(width, height int, pixels []byte) (uint64, error) {
	id, err := a.b.CreateTexture(width, height, pixels)
	return uint64(id), err
}

func (a textureAdapter) UpdateTexture(id uint64, x, y, width, height int, pixels []byte) error {
	return a.b.UpdateTexture(TextureID(id), x, y, width, height, pixels)
}

func (a textureAdapter) DestroyTexture(id uint64) {
	a.b.DestroyTexture(TextureID(id))
}

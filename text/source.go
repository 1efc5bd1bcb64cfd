package text

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"math"
	"sync/atomic"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/vector"
)

// nextSourceID hands out unique font identities for cache keys.
var nextSourceID atomic.Uint64

// FontSource is a parsed font file. It is immutable, safe for concurrent
// use, and shared by every Face and Layout created from it.
type FontSource struct {
	id   uint64
	font *font.Font
}

// NewFontSource parses TTF or OTF font data.
func NewFontSource(data []byte) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: parsing font: %w", err)
	}
	return &FontSource{
		id:   nextSourceID.Add(1),
		font: face.Font,
	}, nil
}

// ID returns the unique identity of this source.
func (s *FontSource) ID() uint64 { return s.id }

// FaceAt creates a Face at the given size in pixels per em.
//
// The returned Face is lightweight but not safe for concurrent use
// (it caches glyph lookups internally); create one per goroutine.
func (s *FontSource) FaceAt(size float64) (Face, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	f := font.NewFace(s.font)
	return &sourceFace{
		source: s,
		face:   f,
		size:   size,
		scale:  size / float64(f.Upem()),
	}, nil
}

// sourceFace implements Face on top of a go-text/typesetting face.
type sourceFace struct {
	source *FontSource
	face   *font.Face
	size   float64
	scale  float64
}

func (f *sourceFace) ID() uint64    { return f.source.id }
func (f *sourceFace) Size() float64 { return f.size }

func (f *sourceFace) Metrics() Metrics {
	ext, ok := f.face.FontHExtents()
	if !ok {
		// Fall back to the em square split the way most latin fonts do.
		return Metrics{Ascent: f.size * 0.8, Descent: f.size * 0.2}
	}
	descent := float64(ext.Descender) * f.scale
	if descent < 0 {
		descent = -descent
	}
	return Metrics{
		Ascent:  float64(ext.Ascender) * f.scale,
		Descent: descent,
		LineGap: float64(ext.LineGap) * f.scale,
	}
}

func (f *sourceFace) GlyphIndex(r rune) GlyphID {
	gid, ok := f.face.NominalGlyph(r)
	if !ok {
		return 0
	}
	return GlyphID(gid)
}

func (f *sourceFace) GlyphAdvance(gid GlyphID) float64 {
	return float64(f.face.HorizontalAdvance(font.GID(gid))) * f.scale
}

// Rasterize renders the glyph outline to a coverage mask with the
// sub-pixel bucket's fractional x offset applied.
func (f *sourceFace) Rasterize(gid GlyphID, bucket uint8) (*GlyphImage, error) {
	data := f.face.GlyphData(font.GID(gid))
	outline, ok := data.(font.GlyphOutline)
	if !ok {
		return nil, ErrMissingGlyph
	}

	sub := SubpixelOffset(bucket)

	// Pixel-space bounding box of the outline, y-down.
	ext, ok := f.face.GlyphExtents(font.GID(gid))
	if !ok || len(outline.Segments) == 0 {
		// Blank glyph (e.g. space): no mask, nothing to draw.
		return &GlyphImage{Mask: image.NewAlpha(image.Rectangle{})}, nil
	}
	x0 := float64(ext.XBearing)*f.scale + sub
	x1 := x0 + math.Abs(float64(ext.Width))*f.scale
	y0 := -float64(ext.YBearing) * f.scale
	y1 := y0 + math.Abs(float64(ext.Height))*f.scale

	left := math.Floor(x0)
	top := math.Floor(y0)
	w := int(math.Ceil(x1)-left) + 1
	h := int(math.Ceil(y1)-top) + 1

	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	sx := float32(f.scale)
	ox := float32(sub - left)
	oy := float32(-top)
	for _, s := range outline.Segments {
		p0x := s.Args[0].X*sx + ox
		p0y := -s.Args[0].Y*sx + oy
		switch s.Op {
		case opentype.SegmentOpMoveTo:
			z.ClosePath()
			z.MoveTo(p0x, p0y)
		case opentype.SegmentOpLineTo:
			z.LineTo(p0x, p0y)
		case opentype.SegmentOpQuadTo:
			p1x := s.Args[1].X*sx + ox
			p1y := -s.Args[1].Y*sx + oy
			z.QuadTo(p0x, p0y, p1x, p1y)
		case opentype.SegmentOpCubeTo:
			p1x := s.Args[1].X*sx + ox
			p1y := -s.Args[1].Y*sx + oy
			p2x := s.Args[2].X*sx + ox
			p2y := -s.Args[2].Y*sx + oy
			z.CubeTo(p0x, p0y, p1x, p1y, p2x, p2y)
		}
	}
	z.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return &GlyphImage{
		Mask:     mask,
		BearingX: left,
		BearingY: -top,
	}, nil
}

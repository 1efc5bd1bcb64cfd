package text

import "image"

// GlyphID is the glyph index within a font.
type GlyphID uint32

// Metrics holds font-level line metrics at a specific size.
type Metrics struct {
	// Ascent is the distance from the baseline to the top of the font,
	// positive.
	Ascent float64

	// Descent is the distance from the baseline to the bottom of the
	// font, stored positive.
	Descent float64

	// LineGap is the font's recommended extra gap between lines.
	// Layout uses ascent+descent as the line advance; the gap is exposed
	// for callers that want looser leading.
	LineGap float64
}

// LineHeight returns ascent + descent, the layout line advance before the
// line spacing multiplier is applied.
func (m Metrics) LineHeight() float64 {
	return m.Ascent + m.Descent
}

// GlyphImage is a rasterized glyph bitmap with its placement data.
type GlyphImage struct {
	// Mask is the coverage mask. Its bounds start at (0, 0).
	Mask *image.Alpha

	// BearingX is the offset from the pen position to the left edge of
	// the mask, in pixels.
	BearingX float64

	// BearingY is the distance from the baseline up to the top edge of
	// the mask, in pixels (positive above the baseline).
	BearingY float64
}

// Face is the font metrics provider boundary: a typeface at a specific
// size. All methods must be deterministic for identical inputs; layout
// determinism and glyph cache correctness depend on it.
//
// A Face is cheap to create and not safe for concurrent use; mint one per
// goroutine from a shared FontSource.
type Face interface {
	// ID identifies the underlying font across all faces created from
	// it, for glyph cache keys. Faces of the same source at different
	// sizes share an ID.
	ID() uint64

	// Size returns the face size in pixels per em.
	Size() float64

	// Metrics returns ascent, descent and line gap at the face size.
	Metrics() Metrics

	// GlyphIndex returns the glyph id for a rune, or 0 when the font has
	// no glyph for it.
	GlyphIndex(r rune) GlyphID

	// GlyphAdvance returns the horizontal advance of a glyph in pixels.
	GlyphAdvance(gid GlyphID) float64

	// Rasterize renders a glyph at the face size, shifted right by the
	// fractional offset of the given sub-pixel bucket.
	Rasterize(gid GlyphID, bucket uint8) (*GlyphImage, error)
}

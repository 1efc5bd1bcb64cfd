// Package text provides text layout and glyph caching for rapid.
//
// Layout is pure CPU work: LayoutText consumes a string, a Face and
// Options and produces an immutable Layout (line geometry, glyph
// placements and a bounding box) that holds no GPU state. A Layout can
// therefore be computed on any goroutine and handed to the render thread,
// for example through LayoutAsync.
//
// The Face interface is the boundary to the font metrics provider: glyph
// advances, line metrics and rasterized glyph bitmaps. FontSource
// implements it on top of go-text/typesetting.
//
// GlyphCache memoizes rasterized glyphs as GPU atlas regions, keyed by
// font identity, glyph id, pixel size and sub-pixel bucket.
package text

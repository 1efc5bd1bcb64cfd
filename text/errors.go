package text

import "errors"

// Sentinel errors for the text package.
var (
	// ErrInvalidSize is returned when a layout or face size is not
	// strictly positive.
	ErrInvalidSize = errors.New("text: size must be > 0")

	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrMissingGlyph is returned when rasterizing a glyph the font does
	// not contain an outline for.
	ErrMissingGlyph = errors.New("text: font has no outline for glyph")
)

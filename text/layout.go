package text

import "unicode"

// PlacedGlyph is a single glyph positioned within a layout.
type PlacedGlyph struct {
	// GID is the glyph index within the layout's font.
	GID GlyphID

	// Rune is the source code point, kept for debugging and whitespace
	// classification.
	Rune rune

	// X is the pen position relative to the layout origin, after
	// alignment and trimming offsets are applied.
	X float64

	// Advance is the horizontal advance including tracking.
	Advance float64
}

// Line is one laid-out line of text.
type Line struct {
	// Glyphs are the line's glyph placements, in logical order.
	// Edge whitespace glyphs are kept; trimming only excludes them from
	// Width and placement.
	Glyphs []PlacedGlyph

	// Width is the measured line width (trimmed when Options.TrimLines).
	Width float64

	// Ascent and Descent are the font's line metrics at the layout size.
	Ascent  float64
	Descent float64

	// Baseline is the y position of the line's baseline within the
	// layout.
	Baseline float64
}

// Layout is the immutable result of text layout.
//
// It holds only CPU-side geometry and a shared Face reference, so it is
// safe to construct on any goroutine and hand to the render thread.
// A Layout is produced once and may be drawn many times at different
// positions and colors.
type Layout struct {
	// Face is the font metrics provider the layout was computed with.
	// Referenced, not owned.
	Face Face

	// Size is the layout size in pixels per em.
	Size float64

	// Lines are the laid-out lines, top to bottom.
	Lines []Line

	// Width is the maximum measured line width.
	Width float64

	// Height is the total layout height: line advances for all lines
	// but the last, which contributes ascent+descent only.
	Height float64
}

// LayoutText lays out a string with the given face, size and options.
//
// Explicit line break characters produce mandatory line boundaries,
// including empty lines. When opts.WrapWidth is set, lines wrap greedily
// at whitespace-delimited word boundaries; a single word wider than the
// wrap width is placed alone on its own line, never split mid-word.
//
// The empty string yields a layout with zero lines, width and height.
// LayoutText fails with ErrInvalidSize when size <= 0.
func LayoutText(s string, face Face, size float64, opts Options) (*Layout, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	if opts.LineSpacing <= 0 {
		opts.LineSpacing = 1.0
	}

	l := &Layout{Face: face, Size: size}
	if s == "" {
		return l, nil
	}

	m := face.Metrics()
	lineAdvance := m.LineHeight() * opts.LineSpacing

	// Mandatory breaks first, then greedy wrapping within each segment.
	var rows [][]PlacedGlyph
	for _, segment := range splitMandatory(s) {
		glyphs := shapeSegment(segment, face, opts.Tracking)
		if opts.WrapWidth > 0 {
			rows = append(rows, wrapGreedy(glyphs, opts.WrapWidth)...)
		} else {
			rows = append(rows, glyphs)
		}
	}

	// Measure each row, trimming edge whitespace when requested.
	lines := make([]Line, len(rows))
	maxWidth := 0.0
	for i, row := range rows {
		width, lead := measureRow(row, opts.TrimLines)
		lines[i] = Line{
			Glyphs:  row,
			Width:   width,
			Ascent:  m.Ascent,
			Descent: m.Descent,
		}
		// Shift so the measured content starts at x=0.
		for j := range row {
			row[j].X -= lead
		}
		if width > maxWidth {
			maxWidth = width
		}
	}

	// Horizontal placement per alignment.
	box := opts.WrapWidth
	if box <= 0 {
		box = maxWidth
	}
	for i := range lines {
		var offset float64
		switch opts.Alignment {
		case AlignRight:
			offset = box - lines[i].Width
		case AlignCenter:
			offset = (box - lines[i].Width) / 2
		}
		if offset != 0 {
			for j := range lines[i].Glyphs {
				lines[i].Glyphs[j].X += offset
			}
		}
		lines[i].Baseline = float64(i)*lineAdvance + m.Ascent
	}

	l.Lines = lines
	l.Width = maxWidth
	if n := len(lines); n > 0 {
		l.Height = float64(n-1)*lineAdvance + m.LineHeight()
	}
	return l, nil
}

// splitMandatory splits on explicit line break characters.
// "\r\n", "\n" and bare "\r" each end a line; leading and doubled breaks
// yield empty segments, which become zero-glyph lines.
func splitMandatory(s string) []string {
	var segs []string
	start := 0
	runes := []rune(s)
	// Index over bytes would complicate \r\n pairing; work on runes.
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\n':
			segs = append(segs, string(runes[start:i]))
			start = i + 1
		case '\r':
			segs = append(segs, string(runes[start:i]))
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	segs = append(segs, string(runes[start:]))
	return segs
}

// shapeSegment converts a break-free segment to glyphs with running pen
// positions starting at 0.
func shapeSegment(s string, face Face, tracking float64) []PlacedGlyph {
	glyphs := make([]PlacedGlyph, 0, len(s))
	pen := 0.0
	for _, r := range s {
		gid := face.GlyphIndex(r)
		adv := face.GlyphAdvance(gid) + tracking
		glyphs = append(glyphs, PlacedGlyph{
			GID:     gid,
			Rune:    r,
			X:       pen,
			Advance: adv,
		})
		pen += adv
	}
	return glyphs
}

// wrapGreedy splits a shaped segment into rows no wider than wrapWidth,
// breaking before the first whitespace-delimited word that would
// overflow. A word wider than wrapWidth alone is still placed on its own
// row. Whitespace preceding a break stays on the earlier row as trailing
// whitespace.
func wrapGreedy(glyphs []PlacedGlyph, wrapWidth float64) [][]PlacedGlyph {
	if len(glyphs) == 0 {
		return [][]PlacedGlyph{glyphs}
	}

	var rows [][]PlacedGlyph
	rowStart := 0 // index of the first glyph of the current row
	rowHasWord := false

	i := 0
	for i < len(glyphs) {
		if unicode.IsSpace(glyphs[i].Rune) {
			i++
			continue
		}
		// Measure the word starting at i.
		wordEnd := i
		for wordEnd < len(glyphs) && !unicode.IsSpace(glyphs[wordEnd].Rune) {
			wordEnd++
		}
		rowWidth := glyphs[wordEnd-1].X + glyphs[wordEnd-1].Advance - glyphs[rowStart].X
		if rowHasWord && rowWidth > wrapWidth {
			// Break before this word.
			rows = append(rows, rebase(glyphs[rowStart:i]))
			rowStart = i
		}
		rowHasWord = true
		i = wordEnd
	}
	rows = append(rows, rebase(glyphs[rowStart:]))
	return rows
}

// rebase shifts a row's pen positions so the first glyph starts at 0.
func rebase(row []PlacedGlyph) []PlacedGlyph {
	if len(row) == 0 {
		return row
	}
	out := make([]PlacedGlyph, len(row))
	copy(out, row)
	base := out[0].X
	for i := range out {
		out[i].X -= base
	}
	return out
}

// measureRow returns the measured width of a row and the leading offset
// excluded from placement. With trimming, edge whitespace contributes to
// neither.
func measureRow(row []PlacedGlyph, trim bool) (width, lead float64) {
	if len(row) == 0 {
		return 0, 0
	}
	first, last := 0, len(row)-1
	if trim {
		for first <= last && unicode.IsSpace(row[first].Rune) {
			first++
		}
		for last >= first && unicode.IsSpace(row[last].Rune) {
			last--
		}
		if first > last {
			// Whitespace-only row measures as empty.
			return 0, row[0].X
		}
	}
	lead = row[first].X
	width = row[last].X + row[last].Advance - lead
	return width, lead
}

package text

// Alignment specifies horizontal text placement within the layout width.
// It only changes the result when lines differ in width, i.e. when
// wrapping is enabled or the text has explicit line breaks.
type Alignment int

const (
	// AlignLeft aligns text to the left edge (default).
	AlignLeft Alignment = iota
	// AlignCenter centers text horizontally.
	AlignCenter
	// AlignRight aligns text to the right edge.
	AlignRight
)

// String returns the string representation of the alignment.
func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "Left"
	case AlignCenter:
		return "Center"
	case AlignRight:
		return "Right"
	default:
		return "Unknown"
	}
}

// Options configures text layout behavior.
type Options struct {
	// WrapWidth is the maximum line width in layout units.
	// If 0, no wrapping is performed; explicit line breaks still apply.
	WrapWidth float64

	// Alignment specifies horizontal placement per line.
	Alignment Alignment

	// LineSpacing is a multiplier for the baseline-to-baseline distance.
	// Values <= 0 are treated as 1.0.
	LineSpacing float64

	// Tracking is extra spacing added after every glyph, in layout units.
	Tracking float64

	// TrimLines excludes leading and trailing whitespace from each
	// line's measured width and horizontal placement. The glyphs are not
	// removed from the line, only ignored at its edges.
	TrimLines bool
}

// DefaultOptions returns the default layout options: no wrapping, left
// alignment, natural line spacing, no tracking, per-line trimming on.
func DefaultOptions() Options {
	return Options{
		LineSpacing: 1.0,
		TrimLines:   true,
	}
}

package rapid

import "github.com/gogpu/rapid/text"

// CommandTag identifies a draw command variant.
// The enumeration is closed: every tag has exactly one tessellation path,
// so command handling can be exhaustive and each primitive testable in
// isolation.
type CommandTag uint8

const (
	// TagRect fills an axis-aligned rectangle.
	TagRect CommandTag = iota + 1

	// TagRoundedRect fills a rectangle with circular corner arcs.
	TagRoundedRect

	// TagLine fills a line of given thickness between two points.
	TagLine

	// TagCircle fills a circle approximated by radius-scaled segments.
	TagCircle

	// TagSectorTri fills a triangle with per-vertex color and UV,
	// the building block for gradients and masked curved shapes.
	TagSectorTri

	// TagPolygon fills a simple polygon, concave allowed, any winding.
	TagPolygon

	// TagText draws a laid-out text at an origin.
	TagText

	// TagImage draws a textured quad sampling a whole image.
	TagImage

	// TagClear fills the entire surface, ignoring the clip.
	TagClear

	// TagSetClip records a clip change. The effective clip is also
	// snapshotted onto every subsequent command, so this tag carries
	// no work of its own during tessellation.
	TagSetClip
)

// String returns the tag name.
func (t CommandTag) String() string {
	switch t {
	case TagRect:
		return "Rect"
	case TagRoundedRect:
		return "RoundedRect"
	case TagLine:
		return "Line"
	case TagCircle:
		return "Circle"
	case TagSectorTri:
		return "SectorTri"
	case TagPolygon:
		return "Polygon"
	case TagText:
		return "Text"
	case TagImage:
		return "Image"
	case TagClear:
		return "Clear"
	case TagSetClip:
		return "SetClip"
	default:
		return "Unknown"
	}
}

// DrawCommand is one entry of the per-frame command stream.
// Only the fields relevant to Tag are set. Clip is the effective clip
// rectangle at submission time, already intersected down the clip stack.
type DrawCommand struct {
	Tag  CommandTag
	Clip IntRect

	// Color is the primitive color for single-color variants
	// (Rect, RoundedRect, Line, Circle, Polygon, Text, Clear) and the
	// modulation color for Image.
	Color Color

	// Rect is the destination for Rect, RoundedRect and Image.
	Rect Rect

	// Radius is the corner radius for RoundedRect and the radius for
	// Circle.
	Radius float64

	// P0, P1, P2 are the line endpoints (P0, P1), the circle center (P0),
	// or the sector triangle vertices.
	P0, P1, P2 Vec2

	// Thickness is the line width.
	Thickness float64

	// Colors and UVs are the per-vertex attributes of SectorTri.
	Colors [3]Color
	UVs    [3]Vec2

	// Points are the polygon vertices in input order.
	Points []Vec2

	// Text is the laid-out text to draw at Origin.
	Text   *text.Layout
	Origin Vec2

	// Image is the image to draw into Rect.
	Image *Image
}

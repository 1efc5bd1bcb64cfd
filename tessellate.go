package rapid

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/rapid/text"
)

// This file is the geometry builder: pure functions turning shape
// primitives into triangle lists. No GPU state is touched, so all of it
// can run and be tested off the render thread.

// vertex builds an untextured vertex from a premultiplied color.
func vertex(x, y float64, c Color) Vertex {
	return Vertex{
		X: float32(x), Y: float32(y),
		R: float32(c.R), G: float32(c.G), B: float32(c.B), A: float32(c.A),
	}
}

// AppendRect appends two triangles covering an axis-aligned rectangle.
func AppendRect(dst []Vertex, r Rect, c Color) []Vertex {
	if r.IsEmpty() {
		return dst
	}
	p := c.Premultiply()
	v0 := vertex(r.X, r.Y, p)
	v1 := vertex(r.Right(), r.Y, p)
	v2 := vertex(r.Right(), r.Bottom(), p)
	v3 := vertex(r.X, r.Bottom(), p)
	return append(dst, v0, v1, v2, v0, v2, v3)
}

// AppendLine appends a quadrilateral for the line from a to b with the
// given thickness: both endpoints offset perpendicular by thickness/2.
//
// Axis-aligned lines with half-pixel-centered coordinates (y = 10.5 for a
// 1px line) cover pixel centers exactly and rasterize crisply; that is a
// property of the backends' pixel-center sampling rule, not of this
// function.
func AppendLine(dst []Vertex, a, b Vec2, thickness float64, c Color) []Vertex {
	if thickness <= 0 {
		return dst
	}
	n := b.Sub(a).Normalized().Perp().Mul(thickness / 2)
	p := c.Premultiply()
	v0 := vertex(a.X-n.X, a.Y-n.Y, p)
	v1 := vertex(b.X-n.X, b.Y-n.Y, p)
	v2 := vertex(b.X+n.X, b.Y+n.Y, p)
	v3 := vertex(a.X+n.X, a.Y+n.Y, p)
	return append(dst, v0, v1, v2, v0, v2, v3)
}

// CircleSegments returns the number of polygon segments used to
// approximate a circle of the given radius. The count grows with the
// radius so faceting stays below roughly a quarter pixel.
func CircleSegments(radius float64) int {
	if radius <= 0 {
		return 0
	}
	r := float32(radius)
	// Chord flatness: sagitta s = r(1-cos(θ/2)) <= 0.25 px.
	t := 1 - 0.25/r
	if t < -1 {
		t = -1
	}
	step := 2 * math32.Acos(t)
	if step <= 0 {
		return 8
	}
	n := int(math32.Ceil(2 * math32.Pi / step))
	if n < 8 {
		n = 8
	}
	return n
}

// AppendCircle appends a triangle fan approximating a filled circle.
func AppendCircle(dst []Vertex, center Vec2, radius float64, c Color) []Vertex {
	n := CircleSegments(radius)
	if n == 0 {
		return dst
	}
	p := c.Premultiply()
	cv := vertex(center.X, center.Y, p)
	step := 2 * math32.Pi / float32(n)
	prev := vertex(center.X+radius, center.Y, p)
	for i := 1; i <= n; i++ {
		ang := step * float32(i)
		cur := vertex(
			center.X+radius*float64(math32.Cos(ang)),
			center.Y+radius*float64(math32.Sin(ang)),
			p,
		)
		dst = append(dst, cv, prev, cur)
		prev = cur
	}
	return dst
}

// AppendSectorTri appends one triangle with per-vertex color and UV.
// Color and the secondary coordinate space interpolate linearly across
// the triangle, which is how gradients and masked curved shapes are built
// without per-shape shaders.
func AppendSectorTri(dst []Vertex, pts [3]Vec2, cols [3]Color, uvs [3]Vec2) []Vertex {
	for i := 0; i < 3; i++ {
		p := cols[i].Premultiply()
		v := vertex(pts[i].X, pts[i].Y, p)
		v.U = float32(uvs[i].X)
		v.V = float32(uvs[i].Y)
		dst = append(dst, v)
	}
	return dst
}

// AppendRoundedRect appends triangles for a rectangle with circular
// corner arcs of the given radius. The inner cross shape is exactly the
// rectangle inset by the radius on all sides, with four quarter-circle
// fans filling the corners.
func AppendRoundedRect(dst []Vertex, r Rect, radius float64, c Color) []Vertex {
	if r.IsEmpty() {
		return dst
	}
	maxR := r.W / 2
	if r.H/2 < maxR {
		maxR = r.H / 2
	}
	if radius > maxR {
		radius = maxR
	}
	if radius <= 0 {
		return AppendRect(dst, r, c)
	}

	inner := r.Inset(radius)

	// Center plus the four edge strips.
	dst = AppendRect(dst, inner, c)
	dst = AppendRect(dst, Rect{X: inner.X, Y: r.Y, W: inner.W, H: radius}, c)
	dst = AppendRect(dst, Rect{X: inner.X, Y: inner.Bottom(), W: inner.W, H: radius}, c)
	dst = AppendRect(dst, Rect{X: r.X, Y: inner.Y, W: radius, H: inner.H}, c)
	dst = AppendRect(dst, Rect{X: inner.Right(), Y: inner.Y, W: radius, H: inner.H}, c)

	// Corner fans, centered on the inner rectangle's corners.
	quarter := CircleSegments(radius) / 4
	if quarter < 2 {
		quarter = 2
	}
	// Start angles walk top-right, bottom-right, bottom-left, top-left;
	// each quarter arc proceeds clockwise in y-down space.
	corners := [4]struct {
		center Vec2
		start  float32
	}{
		{Vec2{inner.Right(), inner.Y}, -math32.Pi / 2},
		{Vec2{inner.Right(), inner.Bottom()}, 0},
		{Vec2{inner.X, inner.Bottom()}, math32.Pi / 2},
		{Vec2{inner.X, inner.Y}, math32.Pi},
	}
	p := c.Premultiply()
	for _, corner := range corners {
		cv := vertex(corner.center.X, corner.center.Y, p)
		step := math32.Pi / 2 / float32(quarter)
		for i := 0; i < quarter; i++ {
			a0 := corner.start + step*float32(i)
			a1 := corner.start + step*float32(i+1)
			v0 := vertex(
				corner.center.X+radius*float64(math32.Cos(a0)),
				corner.center.Y+radius*float64(math32.Sin(a0)),
				p,
			)
			v1 := vertex(
				corner.center.X+radius*float64(math32.Cos(a1)),
				corner.center.Y+radius*float64(math32.Sin(a1)),
				p,
			)
			dst = append(dst, cv, v0, v1)
		}
	}
	return dst
}

// AppendImageQuad appends a textured quad covering the rectangle,
// sampling the full texture (UV 0..1) modulated by a color.
func AppendImageQuad(dst []Vertex, r Rect, c Color) []Vertex {
	if r.IsEmpty() {
		return dst
	}
	p := c.Premultiply()
	v0 := vertex(r.X, r.Y, p)
	v1 := vertex(r.Right(), r.Y, p)
	v2 := vertex(r.Right(), r.Bottom(), p)
	v3 := vertex(r.X, r.Bottom(), p)
	v1.U = 1
	v2.U, v2.V = 1, 1
	v3.V = 1
	return append(dst, v0, v1, v2, v0, v2, v3)
}

// AppendGlyphQuad appends a textured quad for one cached glyph region.
// penX, penY is the glyph's pen position on the baseline; the region's
// bearings place the mask relative to it.
func AppendGlyphQuad(dst []Vertex, region text.Region, penX, penY float64, c Color) []Vertex {
	if region.Width == 0 || region.Height == 0 {
		return dst
	}
	x := penX + region.BearingX
	y := penY - region.BearingY
	p := c.Premultiply()
	v0 := vertex(x, y, p)
	v1 := vertex(x+float64(region.Width), y, p)
	v2 := vertex(x+float64(region.Width), y+float64(region.Height), p)
	v3 := vertex(x, y+float64(region.Height), p)
	v0.U, v0.V = region.U0, region.V0
	v1.U, v1.V = region.U1, region.V0
	v2.U, v2.V = region.U1, region.V1
	v3.U, v3.V = region.U0, region.V1
	return append(dst, v0, v1, v2, v0, v2, v3)
}

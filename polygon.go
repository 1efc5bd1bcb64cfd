package rapid

// AppendPolygon appends triangles filling a simple polygon, concave
// allowed. Vertex winding is normalized first, so clockwise and
// counter-clockwise input produce identical triangles up to ordering and
// render identically.
func AppendPolygon(dst []Vertex, points []Vec2, c Color) []Vertex {
	tris := Triangulate(points)
	p := c.Premultiply()
	for _, t := range tris {
		dst = append(dst,
			vertex(points[t[0]].X, points[t[0]].Y, p),
			vertex(points[t[1]].X, points[t[1]].Y, p),
			vertex(points[t[2]].X, points[t[2]].Y, p),
		)
	}
	return dst
}

// Triangulate decomposes a simple polygon into triangles by ear clipping.
// It returns index triples into points. Winding is normalized internally;
// fewer than three points produce no triangles.
func Triangulate(points []Vec2) [][3]int {
	n := len(points)
	if n < 3 {
		return nil
	}

	// Working index list in counter-clockwise order (y-down: negative
	// signed area).
	idx := make([]int, n)
	if signedArea(points) > 0 {
		for i := range idx {
			idx[i] = n - 1 - i
		}
	} else {
		for i := range idx {
			idx[i] = i
		}
	}

	tris := make([][3]int, 0, n-2)
	guard := 0
	for len(idx) > 3 {
		clipped := false
		for i := 0; i < len(idx); i++ {
			prev := idx[(i+len(idx)-1)%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			if !isEar(points, idx, prev, cur, next) {
				continue
			}
			tris = append(tris, [3]int{prev, cur, next})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Degenerate input (collinear runs, self-touching). Clip the
			// first corner anyway rather than looping forever.
			tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
			idx = append(idx[:1], idx[2:]...)
		}
		guard++
		if guard > 4*n {
			break
		}
	}
	tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	return tris
}

// signedArea is the shoelace sum; positive for clockwise winding in
// y-down coordinates.
func signedArea(points []Vec2) float64 {
	area := 0.0
	for i := range points {
		j := (i + 1) % len(points)
		area += points[i].Cross(points[j])
	}
	return area / 2
}

// isEar reports whether the corner (prev, cur, next) is convex and
// contains no other polygon vertex, i.e. it may be clipped off.
func isEar(points []Vec2, idx []int, prev, cur, next int) bool {
	a, b, c := points[prev], points[cur], points[next]
	// Convex in counter-clockwise (y-down) order.
	if b.Sub(a).Cross(c.Sub(b)) >= 0 {
		return false
	}
	for _, i := range idx {
		if i == prev || i == cur || i == next {
			continue
		}
		if pointInTriangle(points[i], a, b, c) {
			return false
		}
	}
	return true
}

// pointInTriangle tests containment including edges.
func pointInTriangle(p, a, b, c Vec2) bool {
	d1 := p.Sub(a).Cross(b.Sub(a))
	d2 := p.Sub(b).Cross(c.Sub(b))
	d3 := p.Sub(c).Cross(a.Sub(c))
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

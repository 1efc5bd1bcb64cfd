package rapid

// ClipStack tracks nested rectangular clip regions.
// The effective clip is the intersection of all active entries; an empty
// stack means the whole surface is writable.
type ClipStack struct {
	surface Rect
	entries []clipEntry
	bounds  Rect
}

// clipEntry records the bounds to restore when the entry is popped.
type clipEntry struct {
	prevBounds Rect
}

// NewClipStack creates a clip stack bounded by the surface rectangle.
func NewClipStack(surface Rect) *ClipStack {
	return &ClipStack{
		surface: surface,
		entries: make([]clipEntry, 0, 8),
		bounds:  surface,
	}
}

// Push intersects a rectangle onto the stack.
// The result may be empty, in which case nothing is drawn until the
// entry is popped or the stack is reset.
func (cs *ClipStack) Push(r Rect) {
	cs.entries = append(cs.entries, clipEntry{prevBounds: cs.bounds})
	cs.bounds = cs.bounds.Intersect(r)
}

// Pop removes the most recent clip entry.
// Popping an empty stack is a no-op.
func (cs *ClipStack) Pop() {
	n := len(cs.entries)
	if n == 0 {
		return
	}
	cs.bounds = cs.entries[n-1].prevBounds
	cs.entries = cs.entries[:n-1]
}

// Reset drops all entries, reverting to the unbounded surface clip.
func (cs *ClipStack) Reset() {
	cs.entries = cs.entries[:0]
	cs.bounds = cs.surface
}

// Depth returns the number of active clip entries.
func (cs *ClipStack) Depth() int {
	return len(cs.entries)
}

// Bounds returns the current effective clip rectangle.
// It is always well formed; zero area means nothing may be drawn.
func (cs *ClipStack) Bounds() Rect {
	return cs.bounds
}

package rapid

import "testing"

func TestClipStackIntersects(t *testing.T) {
	cs := NewClipStack(NewRect(0, 0, 100, 100))
	if got := cs.Bounds(); got != NewRect(0, 0, 100, 100) {
		t.Fatalf("initial bounds = %+v", got)
	}

	cs.Push(NewRect(10, 10, 50, 50))
	if got, want := cs.Bounds(), NewRect(10, 10, 50, 50); got != want {
		t.Errorf("after push: %+v, want %+v", got, want)
	}

	// A nested push can only shrink the region.
	cs.Push(NewRect(0, 0, 30, 30))
	if got, want := cs.Bounds(), NewRect(10, 10, 20, 20); got != want {
		t.Errorf("after nested push: %+v, want %+v", got, want)
	}
	if cs.Depth() != 2 {
		t.Errorf("depth = %d, want 2", cs.Depth())
	}

	cs.Pop()
	if got, want := cs.Bounds(), NewRect(10, 10, 50, 50); got != want {
		t.Errorf("after pop: %+v, want %+v", got, want)
	}
}

func TestClipStackEmptyIntersection(t *testing.T) {
	cs := NewClipStack(NewRect(0, 0, 100, 100))
	cs.Push(NewRect(0, 0, 10, 10))
	cs.Push(NewRect(50, 50, 10, 10))
	if !cs.Bounds().IsEmpty() {
		t.Errorf("disjoint clips should intersect to empty, got %+v", cs.Bounds())
	}
	cs.Pop()
	if cs.Bounds().IsEmpty() {
		t.Error("popping should restore the non-empty region")
	}
}

func TestClipStackReset(t *testing.T) {
	cs := NewClipStack(NewRect(0, 0, 100, 100))
	cs.Push(NewRect(10, 10, 5, 5))
	cs.Push(NewRect(12, 12, 2, 2))
	cs.Reset()
	if cs.Depth() != 0 {
		t.Errorf("depth after reset = %d, want 0", cs.Depth())
	}
	if got := cs.Bounds(); got != NewRect(0, 0, 100, 100) {
		t.Errorf("bounds after reset = %+v, want full surface", got)
	}
}

func TestClipStackPopEmpty(t *testing.T) {
	cs := NewClipStack(NewRect(0, 0, 100, 100))
	cs.Pop() // must not panic or change bounds
	if got := cs.Bounds(); got != NewRect(0, 0, 100, 100) {
		t.Errorf("bounds after popping empty stack = %+v", got)
	}
}

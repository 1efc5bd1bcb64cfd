package text

// LayoutResult carries a finished layout or the error that prevented it.
type LayoutResult struct {
	Layout *Layout
	Err    error
}

// LayoutAsync computes a layout on a new goroutine and delivers the
// immutable result over the returned channel.
//
// This is the single-producer/single-consumer handoff for moving layout
// work off the render thread: the worker owns the layout until it sends,
// the render thread owns it afterwards, and nothing mutable is shared.
// The channel is buffered, so the worker never blocks on a slow consumer.
//
// Each face is confined to its goroutine; pass a Face that no other
// goroutine uses (FontSource.FaceAt mints one cheaply).
func LayoutAsync(s string, face Face, size float64, opts Options) <-chan LayoutResult {
	ch := make(chan LayoutResult, 1)
	go func() {
		l, err := LayoutText(s, face, size, opts)
		ch <- LayoutResult{Layout: l, Err: err}
		close(ch)
	}()
	return ch
}

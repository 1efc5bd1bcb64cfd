package text

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"unicode"

	"golang.org/x/image/font/gofont/goregular"
)

// testFace parses the bundled Go Regular font at the given size.
func testFace(t *testing.T, size float64) Face {
	t.Helper()
	src, err := NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource() = %v", err)
	}
	face, err := src.FaceAt(size)
	if err != nil {
		t.Fatalf("FaceAt(%v) = %v", size, err)
	}
	return face
}

func TestLayoutTextInvalidSize(t *testing.T) {
	face := testFace(t, 16)
	for _, size := range []float64{0, -1, -16} {
		_, err := LayoutText("hello", face, size, DefaultOptions())
		if !errors.Is(err, ErrInvalidSize) {
			t.Errorf("LayoutText(size=%v) error = %v, want ErrInvalidSize", size, err)
		}
	}
}

func TestLayoutTextEmpty(t *testing.T) {
	face := testFace(t, 16)
	l, err := LayoutText("", face, 16, DefaultOptions())
	if err != nil {
		t.Fatalf("LayoutText(\"\") = %v", err)
	}
	if len(l.Lines) != 0 || l.Width != 0 || l.Height != 0 {
		t.Errorf("empty layout = %d lines, %vx%v, want 0 lines, 0x0",
			len(l.Lines), l.Width, l.Height)
	}
}

func TestLayoutTextSingleLine(t *testing.T) {
	face := testFace(t, 16)
	l, err := LayoutText("hello", face, 16, DefaultOptions())
	if err != nil {
		t.Fatalf("LayoutText() = %v", err)
	}
	if len(l.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(l.Lines))
	}
	line := l.Lines[0]
	if len(line.Glyphs) != 5 {
		t.Errorf("got %d glyphs, want 5", len(line.Glyphs))
	}
	if line.Width <= 0 {
		t.Errorf("line width = %v, want > 0", line.Width)
	}

	m := face.Metrics()
	if got, want := line.Baseline, m.Ascent; math.Abs(got-want) > 1e-9 {
		t.Errorf("baseline = %v, want ascent %v", got, want)
	}
	if got, want := l.Height, m.Ascent+m.Descent; math.Abs(got-want) > 1e-9 {
		t.Errorf("height = %v, want ascent+descent %v", got, want)
	}

	// Pen positions must be monotonically increasing.
	for i := 1; i < len(line.Glyphs); i++ {
		if line.Glyphs[i].X <= line.Glyphs[i-1].X {
			t.Errorf("glyph %d at x=%v not after glyph %d at x=%v",
				i, line.Glyphs[i].X, i-1, line.Glyphs[i-1].X)
		}
	}
}

func TestLayoutTextExplicitBreaks(t *testing.T) {
	face := testFace(t, 16)
	tests := []struct {
		name  string
		text  string
		lines int
	}{
		{"lf", "a\nb", 2},
		{"crlf", "a\r\nb", 2},
		{"bare cr", "a\rb", 2},
		{"doubled lf", "a\n\nb", 3},
		{"trailing lf", "a\n", 2},
		{"leading lf", "\na", 2},
		{"mixed", "a\r\nb\nc\rd", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := LayoutText(tt.text, face, 16, DefaultOptions())
			if err != nil {
				t.Fatalf("LayoutText(%q) = %v", tt.text, err)
			}
			if len(l.Lines) != tt.lines {
				t.Errorf("LayoutText(%q) = %d lines, want %d", tt.text, len(l.Lines), tt.lines)
			}
		})
	}
}

func TestLayoutTextEmptyLineMetrics(t *testing.T) {
	face := testFace(t, 16)
	l, err := LayoutText("a\n\nb", face, 16, DefaultOptions())
	if err != nil {
		t.Fatalf("LayoutText() = %v", err)
	}
	if len(l.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(l.Lines))
	}
	mid := l.Lines[1]
	if len(mid.Glyphs) != 0 || mid.Width != 0 {
		t.Errorf("empty line has %d glyphs, width %v", len(mid.Glyphs), mid.Width)
	}
	// The empty line still advances the baselines around it.
	m := face.Metrics()
	adv := l.Lines[2].Baseline - l.Lines[1].Baseline
	if math.Abs(adv-m.LineHeight()) > 1e-9 {
		t.Errorf("baseline advance across empty line = %v, want %v", adv, m.LineHeight())
	}
}

func TestLayoutTextWrapBound(t *testing.T) {
	face := testFace(t, 16)
	opts := DefaultOptions()
	opts.WrapWidth = 90

	text := "the quick brown fox jumps over the lazy dog again and again"
	l, err := LayoutText(text, face, 16, opts)
	if err != nil {
		t.Fatalf("LayoutText() = %v", err)
	}
	if len(l.Lines) < 2 {
		t.Fatalf("expected wrapping, got %d lines", len(l.Lines))
	}
	for i, line := range l.Lines {
		if line.Width > opts.WrapWidth+1e-9 {
			t.Errorf("line %d width %v exceeds wrap width %v", i, line.Width, opts.WrapWidth)
		}
	}
}

func TestLayoutTextNeverSplitsWords(t *testing.T) {
	face := testFace(t, 16)
	opts := DefaultOptions()
	opts.WrapWidth = 80

	text := "alpha beta gamma delta epsilon zeta eta theta"
	l, err := LayoutText(text, face, 16, opts)
	if err != nil {
		t.Fatalf("LayoutText() = %v", err)
	}

	// Reassembling the per-line runes must give back whole words.
	words := strings.Fields(text)
	var got []string
	for _, line := range l.Lines {
		var sb strings.Builder
		for _, g := range line.Glyphs {
			sb.WriteRune(g.Rune)
		}
		got = append(got, strings.Fields(sb.String())...)
	}
	if !reflect.DeepEqual(got, words) {
		t.Errorf("wrapped words = %v, want %v", got, words)
	}
}

func TestLayoutTextOverwideWord(t *testing.T) {
	face := testFace(t, 16)
	opts := DefaultOptions()
	opts.WrapWidth = 40

	l, err := LayoutText("hi incomprehensibilities hi", face, 16, opts)
	if err != nil {
		t.Fatalf("LayoutText() = %v", err)
	}
	if len(l.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(l.Lines))
	}
	// The over-wide word sits alone on its own line, unsplit.
	mid := l.Lines[1]
	var sb strings.Builder
	for _, g := range mid.Glyphs {
		if !unicode.IsSpace(g.Rune) {
			sb.WriteRune(g.Rune)
		}
	}
	if sb.String() != "incomprehensibilities" {
		t.Errorf("middle line = %q, want the whole word", sb.String())
	}
	if mid.Width <= opts.WrapWidth {
		t.Errorf("over-wide word width %v should exceed wrap width %v", mid.Width, opts.WrapWidth)
	}
}

func TestLayoutTextTrimLines(t *testing.T) {
	face := testFace(t, 16)

	trimmed := DefaultOptions()
	raw := DefaultOptions()
	raw.TrimLines = false

	lt, err := LayoutText("ab   ", face, 16, trimmed)
	if err != nil {
		t.Fatalf("LayoutText(trim) = %v", err)
	}
	lr, err := LayoutText("ab   ", face, 16, raw)
	if err != nil {
		t.Fatalf("LayoutText(raw) = %v", err)
	}

	if lt.Lines[0].Width >= lr.Lines[0].Width {
		t.Errorf("trimmed width %v should be less than raw width %v",
			lt.Lines[0].Width, lr.Lines[0].Width)
	}
	// Trimming only affects measurement: non-edge glyph positions are
	// identical with and without it.
	for i := range lt.Lines[0].Glyphs {
		if lt.Lines[0].Glyphs[i].X != lr.Lines[0].Glyphs[i].X {
			t.Errorf("glyph %d x: trimmed %v != raw %v",
				i, lt.Lines[0].Glyphs[i].X, lr.Lines[0].Glyphs[i].X)
		}
	}

	// Leading whitespace is excluded from placement: the first visible
	// glyph starts at x=0.
	ll, err := LayoutText("   ab", face, 16, trimmed)
	if err != nil {
		t.Fatalf("LayoutText(leading) = %v", err)
	}
	g := ll.Lines[0].Glyphs
	if g[3].X != 0 {
		t.Errorf("first visible glyph at x=%v, want 0", g[3].X)
	}
}

func TestLayoutTextWhitespaceOnlyLine(t *testing.T) {
	face := testFace(t, 16)
	l, err := LayoutText("a\n   \nb", face, 16, DefaultOptions())
	if err != nil {
		t.Fatalf("LayoutText() = %v", err)
	}
	if len(l.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(l.Lines))
	}
	if l.Lines[1].Width != 0 {
		t.Errorf("whitespace-only line width = %v, want 0", l.Lines[1].Width)
	}
}

func TestLayoutTextAlignment(t *testing.T) {
	face := testFace(t, 16)
	const wrapWidth = 200.0

	base := DefaultOptions()
	base.WrapWidth = wrapWidth

	left, err := LayoutText("hi", face, 16, base)
	if err != nil {
		t.Fatalf("LayoutText(left) = %v", err)
	}

	right := base
	right.Alignment = AlignRight
	lr, err := LayoutText("hi", face, 16, right)
	if err != nil {
		t.Fatalf("LayoutText(right) = %v", err)
	}

	center := base
	center.Alignment = AlignCenter
	lc, err := LayoutText("hi", face, 16, center)
	if err != nil {
		t.Fatalf("LayoutText(center) = %v", err)
	}

	w := left.Lines[0].Width
	if got, want := lr.Lines[0].Glyphs[0].X, wrapWidth-w; math.Abs(got-want) > 1e-9 {
		t.Errorf("right-aligned start = %v, want %v", got, want)
	}
	if got, want := lc.Lines[0].Glyphs[0].X, (wrapWidth-w)/2; math.Abs(got-want) > 1e-9 {
		t.Errorf("centered start = %v, want %v", got, want)
	}
}

func TestLayoutTextLineSpacing(t *testing.T) {
	face := testFace(t, 16)
	m := face.Metrics()

	opts := DefaultOptions()
	opts.LineSpacing = 2

	l, err := LayoutText("a\nb\nc", face, 16, opts)
	if err != nil {
		t.Fatalf("LayoutText() = %v", err)
	}
	adv := l.Lines[1].Baseline - l.Lines[0].Baseline
	if want := 2 * m.LineHeight(); math.Abs(adv-want) > 1e-9 {
		t.Errorf("baseline advance = %v, want %v", adv, want)
	}
	// The last line contributes ascent+descent, not a full spaced advance.
	want := 2*2*m.LineHeight() + m.LineHeight()
	if math.Abs(l.Height-want) > 1e-9 {
		t.Errorf("height = %v, want %v", l.Height, want)
	}
}

func TestLayoutTextTracking(t *testing.T) {
	face := testFace(t, 16)

	plain, err := LayoutText("hello", face, 16, DefaultOptions())
	if err != nil {
		t.Fatalf("LayoutText() = %v", err)
	}
	opts := DefaultOptions()
	opts.Tracking = 2
	tracked, err := LayoutText("hello", face, 16, opts)
	if err != nil {
		t.Fatalf("LayoutText(tracking) = %v", err)
	}
	// Five glyphs, two units each.
	want := plain.Lines[0].Width + 5*2
	if math.Abs(tracked.Lines[0].Width-want) > 1e-9 {
		t.Errorf("tracked width = %v, want %v", tracked.Lines[0].Width, want)
	}
}

func TestLayoutTextDeterministic(t *testing.T) {
	face := testFace(t, 16)
	opts := DefaultOptions()
	opts.WrapWidth = 100

	text := "determinism is a property, not an accident of iteration order"
	a, err := LayoutText(text, face, 16, opts)
	if err != nil {
		t.Fatalf("LayoutText() = %v", err)
	}
	for i := 0; i < 10; i++ {
		b, err := LayoutText(text, face, 16, opts)
		if err != nil {
			t.Fatalf("LayoutText() = %v", err)
		}
		if !reflect.DeepEqual(a.Lines, b.Lines) {
			t.Fatalf("run %d produced a different layout", i)
		}
	}
}

func TestLayoutAsync(t *testing.T) {
	src, err := NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource() = %v", err)
	}
	// Faces are goroutine-confined; mint separate ones for the worker
	// and the comparison.
	workerFace, err := src.FaceAt(16)
	if err != nil {
		t.Fatalf("FaceAt() = %v", err)
	}
	localFace, err := src.FaceAt(16)
	if err != nil {
		t.Fatalf("FaceAt() = %v", err)
	}

	res := <-LayoutAsync("offloaded layout", workerFace, 16, DefaultOptions())
	if res.Err != nil {
		t.Fatalf("LayoutAsync() = %v", res.Err)
	}
	sync, err := LayoutText("offloaded layout", localFace, 16, DefaultOptions())
	if err != nil {
		t.Fatalf("LayoutText() = %v", err)
	}
	if !reflect.DeepEqual(res.Layout.Lines, sync.Lines) {
		t.Error("async layout differs from synchronous layout")
	}
}

func TestLayoutAsyncError(t *testing.T) {
	face := testFace(t, 16)
	res := <-LayoutAsync("x", face, 0, DefaultOptions())
	if !errors.Is(res.Err, ErrInvalidSize) {
		t.Errorf("LayoutAsync(size=0) error = %v, want ErrInvalidSize", res.Err)
	}
}

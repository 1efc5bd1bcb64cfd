package text

import (
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestNewFontSource(t *testing.T) {
	src, err := NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource() = %v", err)
	}
	if src.ID() == 0 {
		t.Error("source ID is zero")
	}
}

func TestNewFontSourceEmpty(t *testing.T) {
	_, err := NewFontSource(nil)
	if !errors.Is(err, ErrEmptyFontData) {
		t.Errorf("NewFontSource(nil) error = %v, want ErrEmptyFontData", err)
	}
}

func TestNewFontSourceGarbage(t *testing.T) {
	_, err := NewFontSource([]byte("this is not a font"))
	if err == nil {
		t.Error("NewFontSource(garbage) succeeded, want error")
	}
}

func TestFontSourceUniqueIDs(t *testing.T) {
	a, err := NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource() = %v", err)
	}
	b, err := NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource() = %v", err)
	}
	if a.ID() == b.ID() {
		t.Error("two sources share an ID; cache keys would collide")
	}
}

func TestFaceAtInvalidSize(t *testing.T) {
	src, err := NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource() = %v", err)
	}
	if _, err := src.FaceAt(0); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("FaceAt(0) error = %v, want ErrInvalidSize", err)
	}
}

func TestFaceMetrics(t *testing.T) {
	face := testFace(t, 16)
	m := face.Metrics()
	if m.Ascent <= 0 {
		t.Errorf("ascent = %v, want > 0", m.Ascent)
	}
	if m.Descent <= 0 {
		t.Errorf("descent = %v, want > 0 (descent is a magnitude)", m.Descent)
	}
	if m.LineHeight() != m.Ascent+m.Descent {
		t.Errorf("LineHeight() = %v, want %v", m.LineHeight(), m.Ascent+m.Descent)
	}
	// Metrics scale with the size.
	big := testFace(t, 32).Metrics()
	if big.Ascent <= m.Ascent {
		t.Errorf("32px ascent %v not larger than 16px ascent %v", big.Ascent, m.Ascent)
	}
}

func TestFaceGlyphAdvance(t *testing.T) {
	face := testFace(t, 16)
	gid := face.GlyphIndex('m')
	if gid == 0 {
		t.Fatal("no glyph for 'm'")
	}
	wide := face.GlyphAdvance(gid)
	narrow := face.GlyphAdvance(face.GlyphIndex('i'))
	if wide <= 0 || narrow <= 0 {
		t.Fatalf("advances = %v, %v, want > 0", wide, narrow)
	}
	if wide <= narrow {
		t.Errorf("advance('m') = %v should exceed advance('i') = %v", wide, narrow)
	}
}

func TestFaceRasterize(t *testing.T) {
	face := testFace(t, 24)
	gid := face.GlyphIndex('A')
	img, err := face.Rasterize(gid, 0)
	if err != nil {
		t.Fatalf("Rasterize() = %v", err)
	}
	b := img.Mask.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		t.Fatal("mask for 'A' is empty")
	}

	// The mask must contain actual coverage.
	var total int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			total += int(img.Mask.AlphaAt(x, y).A)
		}
	}
	if total == 0 {
		t.Error("mask for 'A' has zero coverage")
	}

	// A glyph above the baseline bears upward.
	if img.BearingY <= 0 {
		t.Errorf("BearingY = %v, want > 0 for 'A'", img.BearingY)
	}
}

func TestFaceRasterizeBlank(t *testing.T) {
	face := testFace(t, 24)
	img, err := face.Rasterize(face.GlyphIndex(' '), 0)
	if err != nil {
		t.Fatalf("Rasterize(space) = %v", err)
	}
	if b := img.Mask.Bounds(); b.Dx() != 0 || b.Dy() != 0 {
		t.Errorf("space mask = %v, want empty", b)
	}
}

func TestFaceRasterizeSubpixelDiffers(t *testing.T) {
	face := testFace(t, 17)
	gid := face.GlyphIndex('l')

	a, err := face.Rasterize(gid, 0)
	if err != nil {
		t.Fatalf("Rasterize(bucket 0) = %v", err)
	}
	b, err := face.Rasterize(gid, 2)
	if err != nil {
		t.Fatalf("Rasterize(bucket 2) = %v", err)
	}

	// A half-pixel shift must change the coverage distribution.
	if a.Mask.Bounds().Eq(b.Mask.Bounds()) {
		same := true
		for i := range a.Mask.Pix {
			if a.Mask.Pix[i] != b.Mask.Pix[i] {
				same = false
				break
			}
		}
		if same {
			t.Error("bucket 0 and bucket 2 produced identical masks")
		}
	}
}

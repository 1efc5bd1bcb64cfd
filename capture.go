package rapid

import "fmt"

// PixelFormat identifies a CPU-side raw pixel layout.
type PixelFormat uint8

const (
	// FormatRGBA8 is 8 bits per channel RGBA, 4 bytes per pixel.
	FormatRGBA8 PixelFormat = iota

	// FormatRGB8 is 8 bits per channel RGB, 3 bytes per pixel.
	FormatRGB8
)

// String returns a human-readable name for the format.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGB8:
		return "RGB8"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// BytesPerPixel returns the number of bytes per pixel for the format.
func (f PixelFormat) BytesPerPixel() int {
	if f == FormatRGB8 {
		return 3
	}
	return 4
}

// Capture is a CPU-side snapshot of the rendered surface.
// Its lifetime is independent of the surface it was read from.
type Capture struct {
	// Format is the pixel layout of Pixels.
	Format PixelFormat

	// Width and Height are the surface dimensions in pixels.
	Width  int
	Height int

	// Pixels holds exactly Width*Height*Format.BytesPerPixel() bytes,
	// rows top to bottom with no padding.
	Pixels []byte
}

// At returns the color of the pixel at (x, y).
// Out-of-bounds coordinates return Transparent.
func (c *Capture) At(x, y int) Color {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return Transparent
	}
	bpp := c.Format.BytesPerPixel()
	i := (y*c.Width + x) * bpp
	col := Color{
		R: float64(c.Pixels[i]) / 255,
		G: float64(c.Pixels[i+1]) / 255,
		B: float64(c.Pixels[i+2]) / 255,
		A: 1,
	}
	if bpp == 4 {
		col.A = float64(c.Pixels[i+3]) / 255
	}
	return col
}

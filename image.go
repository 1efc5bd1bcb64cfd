package rapid

import (
	"image"
	"sync/atomic"
)

// Image owns a GPU texture. It is logically immutable after creation:
// there are no partial updates.
//
// Handles are reference counted. The handle returned from CreateImage
// holds one reference; every draw command referencing the image holds
// another for the duration of its frame. Releasing the last reference
// does not free GPU memory immediately: the texture is pushed onto the
// retire queue and destroyed only after the frame using it has completed,
// so the backend is never reading a destroyed texture.
//
// Image creation is allowed from any goroutine; the GPU upload is
// deferred to the render thread at the next frame boundary.
type Image struct {
	rm     *ResourceManager
	width  int
	height int
	format PixelFormat

	// pixels holds premultiplied RGBA8 until the render thread uploads
	// it, then is dropped.
	pixels []byte

	refs atomic.Int32

	// tex is set by the render thread on upload; zero before that.
	tex TextureID
}

// Width returns the image width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *Image) Height() int { return img.height }

// Format returns the pixel format the image was created from.
func (img *Image) Format() PixelFormat { return img.format }

// Retain adds a reference to the image.
func (img *Image) Retain() {
	img.refs.Add(1)
}

// Release drops a reference. When the last reference is gone the image's
// texture is queued for destruction after the current frame completes.
// Safe to call from any goroutine.
func (img *Image) Release() {
	if img.refs.Add(-1) == 0 {
		img.rm.retire(img)
	}
}

// released reports whether all references are gone.
func (img *Image) released() bool {
	return img.refs.Load() <= 0
}

// convertToRGBA returns premultiplied RGBA8 bytes for a raw buffer in the
// given format. RGB8 pixels are opaque; RGBA8 input is straight alpha.
func convertToRGBA(pixels []byte, w, h int, format PixelFormat) []byte {
	out := make([]byte, w*h*4)
	switch format {
	case FormatRGB8:
		for i := 0; i < w*h; i++ {
			out[i*4+0] = pixels[i*3+0]
			out[i*4+1] = pixels[i*3+1]
			out[i*4+2] = pixels[i*3+2]
			out[i*4+3] = 255
		}
	default:
		for i := 0; i < w*h; i++ {
			a := uint16(pixels[i*4+3])
			out[i*4+0] = byte(uint16(pixels[i*4+0]) * a / 255)
			out[i*4+1] = byte(uint16(pixels[i*4+1]) * a / 255)
			out[i*4+2] = byte(uint16(pixels[i*4+2]) * a / 255)
			out[i*4+3] = byte(a)
		}
	}
	return out
}

// imageToRGBA flattens any decoded image.Image to premultiplied RGBA8.
func imageToRGBA(src image.Image) []byte {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*4)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := src.At(x, y).RGBA()
			out[i+0] = byte(r >> 8)
			out[i+1] = byte(g >> 8)
			out[i+2] = byte(bl >> 8)
			out[i+3] = byte(a >> 8)
			i += 4
		}
	}
	return out
}

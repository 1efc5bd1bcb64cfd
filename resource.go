package rapid

import (
	"fmt"
	"sync"
)

// ResourceManager tracks GPU-backed images through their lifecycle:
// creation (any goroutine), upload (render thread, at the next frame
// boundary), and deferred destruction (render thread, after the frame
// that last used the texture has completed).
type ResourceManager struct {
	backend Backend

	mu      sync.Mutex
	pending []*Image    // created, not yet uploaded
	retired []TextureID // last reference dropped, destroy after frame
}

func newResourceManager(backend Backend) *ResourceManager {
	return &ResourceManager{backend: backend}
}

// CreateImage registers a new image from raw pixel data. The data length
// must be exactly width*height*bytes-per-pixel for the format, otherwise
// an *ImageDataError is returned. The returned handle holds one
// reference.
//
// Safe to call from any goroutine. The GPU upload happens on the render
// thread at the next frame boundary.
func (rm *ResourceManager) CreateImage(pixels []byte, width, height int, format PixelFormat) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("rapid: image size %dx%d: %w", width, height, ErrInvalidImageData)
	}
	want := width * height * format.BytesPerPixel()
	if len(pixels) != want {
		return nil, &ImageDataError{
			Width:  width,
			Height: height,
			Format: format,
			Got:    len(pixels),
			Want:   want,
		}
	}
	img := &Image{
		rm:     rm,
		width:  width,
		height: height,
		format: format,
		pixels: convertToRGBA(pixels, width, height, format),
	}
	img.refs.Store(1)

	rm.mu.Lock()
	rm.pending = append(rm.pending, img)
	rm.mu.Unlock()
	return img, nil
}

// uploadPending drains the creation queue, uploading each image's pixels
// to a backend texture. Must run on the render thread. Images whose every
// reference was dropped before upload are skipped entirely.
func (rm *ResourceManager) uploadPending() error {
	rm.mu.Lock()
	pending := rm.pending
	rm.pending = nil
	rm.mu.Unlock()

	for _, img := range pending {
		if img.released() {
			img.pixels = nil
			continue
		}
		tex, err := rm.backend.CreateTexture(img.width, img.height, img.pixels)
		if err != nil {
			return fmt.Errorf("rapid: upload %dx%d image: %w", img.width, img.height, err)
		}
		img.pixels = nil

		// The tex assignment races with retire: another goroutine may drop
		// the last reference while CreateTexture runs, in which case retire
		// saw tex == 0 and left destruction to us. Publish the handle under
		// the lock and re-check, retiring the fresh texture ourselves if
		// the image died mid-upload.
		rm.mu.Lock()
		if img.released() {
			rm.retired = append(rm.retired, tex)
		} else {
			img.tex = tex
		}
		rm.mu.Unlock()
	}
	return nil
}

// retire queues an image's texture for destruction. Called when the last
// reference is dropped; may run on any goroutine. The texture is
// destroyed on the render thread when the current frame completes.
func (rm *ResourceManager) retire(img *Image) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if img.tex == 0 {
		// Never uploaded; uploadPending will skip it.
		return
	}
	rm.retired = append(rm.retired, img.tex)
	img.tex = 0
}

// frameCompleted destroys every retired texture. Must run on the render
// thread, after the backend has finished the frame.
func (rm *ResourceManager) frameCompleted() {
	rm.mu.Lock()
	retired := rm.retired
	rm.retired = nil
	rm.mu.Unlock()

	for _, tex := range retired {
		rm.backend.DestroyTexture(tex)
	}
}

// TextureCount reports the number of live backend textures, including
// glyph atlas pages. Useful for leak checks.
func (rm *ResourceManager) TextureCount() int {
	return rm.backend.TextureCount()
}

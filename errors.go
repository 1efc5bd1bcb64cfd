package rapid

import (
	"errors"
	"fmt"
)

// Sentinel errors for the rapid package.
//
// The taxonomy mirrors how failures are surfaced to callers:
//   - configuration errors are rejected before any GPU work
//   - resource errors leave no partial resource registered
//   - state errors are programming errors, reported immediately
var (
	// ErrInvalidState is returned when a frame-scoped operation is called
	// outside an open frame, or when a frame is opened twice.
	ErrInvalidState = errors.New("rapid: invalid renderer state")

	// ErrInvalidImageData is returned when a pixel buffer's length does not
	// match the declared width, height and format of an image.
	ErrInvalidImageData = errors.New("rapid: image data size mismatch")

	// ErrImageReleased is returned when drawing an image whose last
	// reference has already been released.
	ErrImageReleased = errors.New("rapid: image has been released")

	// ErrNoBackend is returned when a renderer is created without a
	// rendering backend.
	ErrNoBackend = errors.New("rapid: no rendering backend")
)

// ImageDataError describes a pixel buffer size mismatch in detail.
// It unwraps to ErrInvalidImageData.
type ImageDataError struct {
	Width, Height int
	Format        PixelFormat
	Got, Want     int
}

func (e *ImageDataError) Error() string {
	return fmt.Sprintf("rapid: image data size mismatch: %dx%d %s needs %d bytes, got %d",
		e.Width, e.Height, e.Format, e.Want, e.Got)
}

func (e *ImageDataError) Unwrap() error { return ErrInvalidImageData }

package rapid

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"
)

// fakeBackend records texture traffic and batches without rasterizing.
type fakeBackend struct {
	width, height int
	nextID        TextureID
	live          map[TextureID][]byte
	created       int
	destroyed     int
	batches       []Batch
	failCreate    bool
}

func newFakeBackend(w, h int) *fakeBackend {
	return &fakeBackend{width: w, height: h, nextID: 1, live: make(map[TextureID][]byte)}
}

func (f *fakeBackend) Name() string             { return "fake" }
func (f *fakeBackend) Size() (int, int)         { return f.width, f.height }
func (f *fakeBackend) TextureCount() int        { return len(f.live) }
func (f *fakeBackend) BeginFrame() error        { return nil }
func (f *fakeBackend) EndFrame() error          { return nil }
func (f *fakeBackend) Clear(r, g, b, a float32) {}
func (f *fakeBackend) Close()                   { f.live = nil }

func (f *fakeBackend) CreateTexture(width, height int, pixels []byte) (TextureID, error) {
	if f.failCreate {
		return 0, fmt.Errorf("fake: create refused")
	}
	id := f.nextID
	f.nextID++
	data := make([]byte, len(pixels))
	copy(data, pixels)
	f.live[id] = data
	f.created++
	return id, nil
}

func (f *fakeBackend) UpdateTexture(id TextureID, x, y, width, height int, pixels []byte) error {
	if _, ok := f.live[id]; !ok {
		return fmt.Errorf("fake: unknown texture %d", id)
	}
	return nil
}

func (f *fakeBackend) DestroyTexture(id TextureID) {
	if _, ok := f.live[id]; ok {
		delete(f.live, id)
		f.destroyed++
	}
}

func (f *fakeBackend) DrawTriangles(batch Batch) error {
	cp := batch
	cp.Vertices = append([]Vertex(nil), batch.Vertices...)
	f.batches = append(f.batches, cp)
	return nil
}

func (f *fakeBackend) ReadPixels(format PixelFormat) ([]byte, error) {
	return make([]byte, f.width*f.height*format.BytesPerPixel()), nil
}

func TestCreateImageValidation(t *testing.T) {
	rm := newResourceManager(newFakeBackend(8, 8))

	if _, err := rm.CreateImage(nil, 0, 4, FormatRGBA8); !errors.Is(err, ErrInvalidImageData) {
		t.Errorf("zero width = %v, want ErrInvalidImageData", err)
	}
	if _, err := rm.CreateImage(nil, 4, -1, FormatRGBA8); !errors.Is(err, ErrInvalidImageData) {
		t.Errorf("negative height = %v, want ErrInvalidImageData", err)
	}

	_, err := rm.CreateImage(make([]byte, 5), 2, 2, FormatRGB8)
	var dataErr *ImageDataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("short RGB8 buffer = %v, want *ImageDataError", err)
	}
	if dataErr.Want != 12 || dataErr.Got != 5 {
		t.Errorf("ImageDataError want=%d got=%d, expected 12/5", dataErr.Want, dataErr.Got)
	}

	img, err := rm.CreateImage(make([]byte, 12), 2, 2, FormatRGB8)
	if err != nil {
		t.Fatalf("valid RGB8 image = %v", err)
	}
	if img.Width() != 2 || img.Height() != 2 || img.Format() != FormatRGB8 {
		t.Errorf("image metadata = %dx%d %v", img.Width(), img.Height(), img.Format())
	}
}

func TestUploadPendingSkipsReleased(t *testing.T) {
	fb := newFakeBackend(8, 8)
	rm := newResourceManager(fb)

	kept, err := rm.CreateImage(make([]byte, 4), 1, 1, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}
	dropped, err := rm.CreateImage(make([]byte, 4), 1, 1, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}
	dropped.Release()

	if err := rm.uploadPending(); err != nil {
		t.Fatalf("uploadPending() = %v", err)
	}
	if fb.created != 1 {
		t.Errorf("created %d textures, want 1 (released image skipped)", fb.created)
	}
	if kept.tex == 0 {
		t.Error("kept image has no texture after upload")
	}
	if dropped.tex != 0 {
		t.Error("released image was uploaded")
	}
}

func TestRetireDestroysAfterFrame(t *testing.T) {
	fb := newFakeBackend(8, 8)
	rm := newResourceManager(fb)

	img, err := rm.CreateImage(make([]byte, 4), 1, 1, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}
	if err := rm.uploadPending(); err != nil {
		t.Fatal(err)
	}

	img.Release()
	// Destruction is deferred: the texture stays live until the frame
	// completes.
	if fb.destroyed != 0 {
		t.Fatal("texture destroyed before frame completion")
	}
	rm.frameCompleted()
	if fb.destroyed != 1 {
		t.Errorf("destroyed %d textures after frame, want 1", fb.destroyed)
	}
	if rm.TextureCount() != 0 {
		t.Errorf("TextureCount() = %d, want 0", rm.TextureCount())
	}
}

func TestReleaseBeforeUploadNeverTouchesBackend(t *testing.T) {
	fb := newFakeBackend(8, 8)
	rm := newResourceManager(fb)

	img, err := rm.CreateImage(make([]byte, 4), 1, 1, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}
	img.Release()
	if err := rm.uploadPending(); err != nil {
		t.Fatal(err)
	}
	rm.frameCompleted()
	if fb.created != 0 || fb.destroyed != 0 {
		t.Errorf("backend saw created=%d destroyed=%d, want 0/0", fb.created, fb.destroyed)
	}
}

// gatedBackend blocks inside CreateTexture until the test opens the gate,
// so a release can be interleaved with an in-flight upload.
type gatedBackend struct {
	*fakeBackend
	entered chan struct{}
	gate    chan struct{}
}

func (g *gatedBackend) CreateTexture(width, height int, pixels []byte) (TextureID, error) {
	close(g.entered)
	<-g.gate
	return g.fakeBackend.CreateTexture(width, height, pixels)
}

func TestReleaseDuringUploadRetiresTexture(t *testing.T) {
	fb := newFakeBackend(8, 8)
	gb := &gatedBackend{
		fakeBackend: fb,
		entered:     make(chan struct{}),
		gate:        make(chan struct{}),
	}
	rm := newResourceManager(gb)

	img, err := rm.CreateImage(make([]byte, 4), 1, 1, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- rm.uploadPending() }()

	// Drop the sole reference while the upload is blocked inside
	// CreateTexture. The fresh texture must still be retired.
	<-gb.entered
	img.Release()
	close(gb.gate)

	if err := <-done; err != nil {
		t.Fatalf("uploadPending() = %v", err)
	}
	rm.frameCompleted()
	if got := rm.TextureCount(); got != 0 {
		t.Errorf("texture count after release of sole reference = %d, want 0", got)
	}
	if fb.destroyed != 1 {
		t.Errorf("destroyed %d textures, want 1", fb.destroyed)
	}
}

func TestUploadPendingError(t *testing.T) {
	fb := newFakeBackend(8, 8)
	fb.failCreate = true
	rm := newResourceManager(fb)

	if _, err := rm.CreateImage(make([]byte, 4), 1, 1, FormatRGBA8); err != nil {
		t.Fatal(err)
	}
	if err := rm.uploadPending(); err == nil {
		t.Error("uploadPending should surface the backend create error")
	}
}

func TestConvertToRGBA(t *testing.T) {
	// RGB8 becomes opaque RGBA.
	rgb := convertToRGBA([]byte{10, 20, 30}, 1, 1, FormatRGB8)
	if got := [4]byte(rgb); got != [4]byte{10, 20, 30, 255} {
		t.Errorf("RGB8 conversion = %v", got)
	}

	// RGBA8 straight alpha is premultiplied.
	rgba := convertToRGBA([]byte{255, 128, 0, 128}, 1, 1, FormatRGBA8)
	if got := [4]byte(rgba); got != [4]byte{128, 64, 0, 128} {
		t.Errorf("RGBA8 premultiplication = %v", got)
	}
}

func TestCreateImageFromImage(t *testing.T) {
	fb := newFakeBackend(8, 8)
	r, err := NewRenderer(fb)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})

	img, err := r.CreateImageFromImage(src)
	if err != nil {
		t.Fatalf("CreateImageFromImage() = %v", err)
	}
	defer img.Release()
	if img.Width() != 2 || img.Height() != 1 {
		t.Errorf("image size = %dx%d, want 2x1", img.Width(), img.Height())
	}
	if img.Format() != FormatRGBA8 {
		t.Errorf("format = %v, want RGBA8", img.Format())
	}

	if _, err := r.CreateImageFromImage(image.NewNRGBA(image.Rect(0, 0, 0, 0))); !errors.Is(err, ErrInvalidImageData) {
		t.Errorf("empty bounds = %v, want ErrInvalidImageData", err)
	}
}

func TestFlushCoalescesBatches(t *testing.T) {
	fb := newFakeBackend(64, 64)
	r, err := NewRenderer(fb)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	// Three untextured draws under the same clip coalesce into one batch.
	for i := 0; i < 3; i++ {
		if err := r.DrawRect(NewRect(float64(i*10), 0, 8, 8), Red); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.EndFrame(); err != nil {
		t.Fatal(err)
	}

	if len(fb.batches) != 1 {
		t.Fatalf("flushed %d batches, want 1", len(fb.batches))
	}
	if got := len(fb.batches[0].Vertices); got != 3*6 {
		t.Errorf("batch has %d vertices, want %d", got, 3*6)
	}
}

func TestFlushSplitsBatchesOnClipChange(t *testing.T) {
	fb := newFakeBackend(64, 64)
	r, err := NewRenderer(fb)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	if err := r.DrawRect(NewRect(0, 0, 8, 8), Red); err != nil {
		t.Fatal(err)
	}
	if err := r.PushClip(NewRect(0, 0, 32, 32)); err != nil {
		t.Fatal(err)
	}
	if err := r.DrawRect(NewRect(0, 0, 8, 8), Red); err != nil {
		t.Fatal(err)
	}
	if err := r.EndFrame(); err != nil {
		t.Fatal(err)
	}

	if len(fb.batches) != 2 {
		t.Fatalf("flushed %d batches, want 2 (clip changed between draws)", len(fb.batches))
	}
	if fb.batches[0].Clip == fb.batches[1].Clip {
		t.Error("both batches carry the same clip")
	}
}

// Command rapiddemo renders a demonstration frame with the rapid
// immediate-mode renderer and writes it to a PNG file.
package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"math"
	"os"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/rapid"
	"github.com/gogpu/rapid/backend"
	_ "github.com/gogpu/rapid/backend/software"
	"github.com/gogpu/rapid/text"
)

func main() {
	var (
		width       = flag.Int("width", 800, "surface width")
		height      = flag.Int("height", 600, "surface height")
		output      = flag.String("output", "demo.png", "output file")
		backendName = flag.String("backend", "", "backend name (default: best available)")
	)
	flag.Parse()

	var (
		b   rapid.Backend
		err error
	)
	if *backendName != "" {
		b, err = backend.Get(*backendName, *width, *height)
	} else {
		b, err = backend.Default(*width, *height)
	}
	if err != nil {
		log.Fatalf("backend: %v", err)
	}

	r, err := rapid.NewRenderer(b)
	if err != nil {
		log.Fatalf("renderer: %v", err)
	}
	defer r.Close()

	if err := r.BeginFrame(); err != nil {
		log.Fatal(err)
	}
	drawGradientBackground(r, *width, *height)
	drawShapes(r)
	drawClippedShapes(r)
	drawLabel(r)

	cap, err := r.CaptureFrame(rapid.FormatRGBA8)
	if err != nil {
		log.Fatalf("capture: %v", err)
	}
	if err := r.EndFrame(); err != nil {
		log.Fatal(err)
	}

	if err := savePNG(*output, cap); err != nil {
		log.Fatalf("save: %v", err)
	}
	log.Printf("demo saved to %s (%dx%d, %s backend)", *output, *width, *height, b.Name())
}

// drawGradientBackground fills the surface with a vertical gradient using
// per-vertex colors on two triangles.
func drawGradientBackground(r *rapid.Renderer, w, h int) {
	top := rapid.RGB(0.1, 0.2, 0.4)
	bottom := rapid.RGB(0.5, 0.5, 0.6)
	fw, fh := float64(w), float64(h)

	r.DrawSectorTri(
		[3]rapid.Vec2{rapid.V2(0, 0), rapid.V2(fw, 0), rapid.V2(fw, fh)},
		[3]rapid.Color{top, top, bottom},
		[3]rapid.Vec2{},
	)
	r.DrawSectorTri(
		[3]rapid.Vec2{rapid.V2(0, 0), rapid.V2(fw, fh), rapid.V2(0, fh)},
		[3]rapid.Color{top, bottom, bottom},
		[3]rapid.Vec2{},
	)
}

func drawShapes(r *rapid.Renderer) {
	// Overlapping translucent circles.
	r.DrawCircle(rapid.V2(150, 150), 60, rapid.RGBA(1, 0.3, 0.3, 0.8))
	r.DrawCircle(rapid.V2(200, 150), 60, rapid.RGBA(0.3, 1, 0.3, 0.8))
	r.DrawCircle(rapid.V2(175, 195), 60, rapid.RGBA(0.3, 0.3, 1, 0.8))

	r.DrawRoundedRect(rapid.NewRect(320, 90, 180, 120), 20, rapid.RGBA(1, 1, 1, 0.9))

	// A fan of lines.
	center := rapid.V2(620, 150)
	for i := 0; i < 12; i++ {
		angle := float64(i) * math.Pi / 12
		end := center.Add(rapid.V2(math.Cos(angle), math.Sin(angle)).Mul(90))
		r.DrawLine(center, end, 2, rapid.RGBA(1, 1, 0.5, 0.8))
	}
}

func drawClippedShapes(r *rapid.Renderer) {
	// A circle scissored to a rectangular window.
	r.PushClip(rapid.NewRect(100, 320, 200, 140))
	r.DrawRect(rapid.NewRect(100, 320, 200, 140), rapid.RGBA(0, 0, 0, 0.25))
	r.DrawCircle(rapid.V2(200, 390), 110, rapid.RGBA(1, 0.6, 0, 0.9))
	r.PopClip()
}

func drawLabel(r *rapid.Renderer) {
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		log.Fatalf("font: %v", err)
	}
	face, err := src.FaceAt(28)
	if err != nil {
		log.Fatal(err)
	}
	layout, err := text.LayoutText("rapid immediate-mode renderer", face, 28, text.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	r.DrawText(layout, rapid.V2(40, 520), rapid.White)
}

func savePNG(path string, cap *rapid.Capture) error {
	img := image.NewNRGBA(image.Rect(0, 0, cap.Width, cap.Height))
	copy(img.Pix, cap.Pixels)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

package carousel

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSlidesFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"slide222.jpg", "gambar3.jpeg", "notes.txt", "gambar1.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "raw.jpg"), 0755); err != nil {
		t.Fatal(err)
	}

	slides, err := LoadSlides(dir)
	if err != nil {
		t.Fatalf("LoadSlides: %v", err)
	}

	want := []string{"gambar1.png", "gambar3.jpeg", "slide222.jpg"}
	if len(slides) != len(want) {
		t.Fatalf("expected %d slides, got %d", len(want), len(slides))
	}
	for i, name := range want {
		if slides[i].Name != name {
			t.Errorf("slide %d: expected %s, got %s", i, name, slides[i].Name)
		}
	}
}

func TestGenerateScalesAndCaches(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hero.png")
	writePNG(t, src, 800, 400)

	gen := NewThumbnailGenerator(filepath.Join(dir, "cache"))
	slide := Slide{Name: "hero.png", Path: src}

	path, err := gen.Generate(slide, 400)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if filepath.Base(path) != "hero_400.jpg" {
		t.Errorf("unexpected thumbnail name %s", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	img, err := jpeg.Decode(f)
	f.Close()
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Errorf("expected 400x200, got %dx%d", b.Dx(), b.Dy())
	}

	// Cached file is reused even when the source is gone.
	if err := os.Remove(src); err != nil {
		t.Fatal(err)
	}
	again, err := gen.Generate(slide, 400)
	if err != nil || again != path {
		t.Errorf("expected cached thumbnail, got %s, %v", again, err)
	}
}

func TestScaleToWidthDoesNotUpscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	if got := scaleToWidth(src, 400); got != image.Image(src) {
		t.Error("expected source image to be returned unchanged")
	}
}

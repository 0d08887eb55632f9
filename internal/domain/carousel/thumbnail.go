package carousel

import (
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	"image/jpeg"
	_ "image/png" // PNG decoder
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder
)

const (
	// MinWidth and MaxWidth bound the requested slide width.
	MinWidth = 320
	MaxWidth = 2560
)

var slideExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// LoadSlides lists the images in dir, sorted by file name.
func LoadSlides(dir string) ([]Slide, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read slide directory: %w", err)
	}

	var slides []Slide
	for _, e := range entries {
		if e.IsDir() || !slideExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		slides = append(slides, Slide{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].Name < slides[j].Name })
	return slides, nil
}

// ThumbnailGenerator scales slide images to a requested width and caches the
// result as JPEG.
type ThumbnailGenerator struct {
	cacheDir string
}

// NewThumbnailGenerator creates a generator caching under cacheDir.
func NewThumbnailGenerator(cacheDir string) *ThumbnailGenerator {
	return &ThumbnailGenerator{
		cacheDir: cacheDir,
	}
}

// Generate returns the path of slide scaled to width, creating it if needed.
// Images narrower than width are not upscaled.
func (g *ThumbnailGenerator) Generate(slide Slide, width int) (string, error) {
	if width < MinWidth {
		width = MinWidth
	} else if width > MaxWidth {
		width = MaxWidth
	}

	thumbDir := filepath.Join(g.cacheDir, "slides")
	if err := os.MkdirAll(thumbDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	base := strings.TrimSuffix(slide.Name, filepath.Ext(slide.Name))
	thumbPath := filepath.Join(thumbDir, fmt.Sprintf("%s_%d.jpg", base, width))

	if _, err := os.Stat(thumbPath); err == nil {
		return thumbPath, nil
	}

	src, err := os.Open(slide.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open slide: %w", err)
	}
	defer src.Close()

	img, format, err := image.Decode(src)
	if err != nil {
		return "", fmt.Errorf("failed to decode slide: %w", err)
	}

	log.Debug().
		Str("slide", slide.Name).
		Str("format", format).
		Int("width", width).
		Msg("Generating slide thumbnail")

	out, err := os.Create(thumbPath)
	if err != nil {
		return "", fmt.Errorf("failed to create thumbnail file: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, scaleToWidth(img, width), &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return thumbPath, nil
}

// scaleToWidth scales src to width, keeping the aspect ratio.
func scaleToWidth(src image.Image, width int) image.Image {
	bounds := src.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()

	if srcW <= width || srcW == 0 {
		return src
	}

	height := int(float64(srcH) * float64(width) / float64(srcW))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

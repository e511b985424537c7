package common

// Image processor for app icon generation
//
// Responsibilities:
// 1. Decode a source image (format detected from content, not extension)
// 2. Shrink it to fit a square bounding box inset by a fixed margin,
//    keeping aspect ratio and never upscaling
// 3. Centre it on a transparent square canvas
// 4. Write the canvas as PNG (or .ico for favicons, see favicon.go)

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Margin is the transparent border kept on each side of the scaled image
const Margin = 10

// IconTarget is one square output of the generator
type IconTarget struct {
	Size int
	Path string
}

// RenderError is returned for any failure while producing an icon.
// Callers that need the cause can unwrap it.
type RenderError struct {
	Source string
	Output string
	Size   int
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s -> %s (%dx%d): %v", e.Source, e.Output, e.Size, e.Size, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Processor renders icons with a fixed margin
type Processor struct {
	margin int
}

// NewProcessor creates a processor using the given margin in pixels
func NewProcessor(margin int) *Processor {
	return &Processor{margin: margin}
}

// CreateIcon renders sourcePath into a size x size PNG at outputPath
// using the default margin
func CreateIcon(sourcePath string, size int, outputPath string) error {
	return NewProcessor(Margin).CreateIcon(sourcePath, size, outputPath)
}

// CreateIcon renders sourcePath into a size x size PNG at outputPath.
// The output file is only opened once the canvas is ready, so a missing or
// undecodable source leaves any existing output untouched.
func (p *Processor) CreateIcon(sourcePath string, size int, outputPath string) error {
	canvas, err := p.renderCanvas(sourcePath, size)
	if err != nil {
		return &RenderError{Source: sourcePath, Output: outputPath, Size: size, Err: err}
	}

	if err := writeImage(outputPath, canvas, imaging.PNG); err != nil {
		return &RenderError{Source: sourcePath, Output: outputPath, Size: size, Err: err}
	}

	return nil
}

// renderCanvas decodes sourcePath and returns the centred square canvas
func (p *Processor) renderCanvas(sourcePath string, size int) (*image.NRGBA, error) {
	box := size - 2*p.margin
	if box <= 0 {
		return nil, fmt.Errorf("size %d leaves no room inside a %dpx margin", size, p.margin)
	}

	src, err := imaging.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source image: %w", err)
	}

	return Compose(src, size, box), nil
}

// Compose shrinks img to fit a box x box square and centres it on a
// transparent size x size canvas
func Compose(img image.Image, size, box int) *image.NRGBA {
	scaled := Thumbnail(img, box, box)

	canvas := imaging.New(size, size, color.NRGBA{})
	b := scaled.Bounds()
	offset := image.Pt((size-b.Dx())/2, (size-b.Dy())/2)

	return imaging.Overlay(canvas, scaled, offset, 1.0)
}

// Thumbnail scales img down with a Lanczos filter so it fits inside
// maxW x maxH while keeping its aspect ratio. Images that already fit
// are returned unscaled.
func Thumbnail(img image.Image, maxW, maxH int) *image.NRGBA {
	b := img.Bounds()
	w, h := ThumbnailSize(b.Dx(), b.Dy(), maxW, maxH)
	if w == b.Dx() && h == b.Dy() {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// ThumbnailSize returns the dimensions of a w x h image after fitting it
// into maxW x maxH. Each side is rounded to the nearest pixel and is at
// least 1; the limiting side always lands exactly on its bound.
func ThumbnailSize(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	newW := int(math.Round(float64(w) * scale))
	newH := int(math.Round(float64(h) * scale))

	if float64(maxW)/float64(w) <= float64(maxH)/float64(h) {
		newW = maxW
	} else {
		newH = maxH
	}

	return clamp(newW, 1, maxW), clamp(newH, 1, maxH)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Render creates one icon and reports the outcome as a single line on out.
// Failures are reported, never returned, so a caller can keep going.
func Render(out io.Writer, sourcePath string, size int, outputPath string) bool {
	return NewProcessor(Margin).Render(out, sourcePath, size, outputPath)
}

// Render is like the package level Render but uses p's margin
func (p *Processor) Render(out io.Writer, sourcePath string, size int, outputPath string) bool {
	return report(out, outputPath, p.CreateIcon(sourcePath, size, outputPath))
}

// Generate renders every target in order, then the favicon if one is set.
// It returns the number of targets that failed.
func (p *Processor) Generate(out io.Writer, sourcePath string, targets []IconTarget, favicon *IconTarget) int {
	failed := 0
	for _, t := range targets {
		if !p.Render(out, sourcePath, t.Size, t.Path) {
			failed++
		}
	}
	if favicon != nil {
		if !report(out, favicon.Path, p.CreateFavicon(sourcePath, favicon.Size, favicon.Path)) {
			failed++
		}
	}
	return failed
}

func report(out io.Writer, outputPath string, err error) bool {
	if err != nil {
		fmt.Fprintf(out, "Error creating icon: %v\n", err)
		return false
	}
	fmt.Fprintf(out, "Created %s\n", outputPath)
	return true
}

func writeImage(path string, img image.Image, format imaging.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := imaging.Encode(f, img, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %v: %w", format, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	return nil
}

package main

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/cvtcolor"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// I/O errors.
var (
	// errUnsupportedFormat is returned for file extensions nv12conv cannot write.
	errUnsupportedFormat = errors.New("unsupported format")

	// errFrameSize is returned when a raw NV12 file does not match the geometry.
	errFrameSize = errors.New("raw NV12 size does not match frame geometry")
)

// isRawNV12 reports whether path names a raw NV12 frame.
func isRawNV12(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nv12", ".yuv":
		return true
	}
	return false
}

// loadImage decodes an image file, detecting the format from its content.
// PNG, JPEG, BMP and TIFF are registered.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// saveImage encodes img in the format selected by the extension of path.
func saveImage(path string, img image.Image) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	if err := encodeImage(f, strings.ToLower(filepath.Ext(path)), img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func encodeImage(w io.Writer, ext string, img image.Image) error {
	var err error
	switch ext {
	case ".png":
		err = png.Encode(w, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case ".bmp":
		err = bmp.Encode(w, img)
	case ".tif", ".tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", errUnsupportedFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", ext, err)
	}
	return nil
}

// evenGeometry returns the frame geometry for img cropped to even
// dimensions. pitch <= 0 selects a packed pitch of 3*width.
func evenGeometry(img image.Image, pitch int) cvtcolor.Geometry {
	b := img.Bounds()
	w, h := b.Dx()&^1, b.Dy()&^1
	if pitch <= 0 {
		pitch = 3 * w
	}
	return cvtcolor.Geometry{Width: w, Height: h, Pitch: pitch}
}

// packRGB writes the top-left g.Width x g.Height pixels of img into a packed
// RGB plane with row stride g.Pitch. Alpha is dropped.
func packRGB(img image.Image, g cvtcolor.Geometry) []byte {
	rgb := make([]byte, g.Height*g.Pitch)
	b := img.Bounds()

	// Fast paths for RGBA and NRGBA images
	var pix []byte
	var stride int
	switch src := img.(type) {
	case *image.RGBA:
		pix, stride = src.Pix, src.Stride
	case *image.NRGBA:
		pix, stride = src.Pix, src.Stride
	}
	if pix != nil && b.Min == (image.Point{}) {
		for y := range g.Height {
			srow := pix[y*stride : y*stride+g.Width*4]
			drow := rgb[y*g.Pitch : y*g.Pitch+g.Width*3]
			for x := range g.Width {
				copy(drow[x*3:x*3+3], srow[x*4:x*4+3])
			}
		}
		return rgb
	}

	// Generic slow path for any image type
	for y := range g.Height {
		drow := rgb[y*g.Pitch:]
		for x := range g.Width {
			r, gg, bb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			drow[x*3] = byte(r >> 8)
			drow[x*3+1] = byte(gg >> 8)
			drow[x*3+2] = byte(bb >> 8)
		}
	}
	return rgb
}

// unpackRGB builds an opaque image from a packed RGB plane.
func unpackRGB(rgb []byte, g cvtcolor.Geometry) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for y := range g.Height {
		srow := rgb[y*g.Pitch : y*g.Pitch+g.Width*3]
		drow := img.Pix[y*img.Stride : y*img.Stride+g.Width*4]
		for x := range g.Width {
			copy(drow[x*4:x*4+3], srow[x*3:x*3+3])
			drow[x*4+3] = 0xFF
		}
	}
	return img
}

// rawSize returns the size of a tightly packed NV12 frame.
func rawSize(g cvtcolor.Geometry) int {
	return g.Width * g.Height * 3 / 2
}

// readNV12 reads a tightly packed NV12 file into luma and chroma planes with
// row stride g.Pitch.
func readNV12(path string, g cvtcolor.Geometry) (y, uv []byte, err error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, nil, fmt.Errorf("read NV12: %w", err)
	}
	if len(data) != rawSize(g) {
		return nil, nil, fmt.Errorf("%w: %s has %d bytes, %v needs %d",
			errFrameSize, path, len(data), g, rawSize(g))
	}

	y = make([]byte, g.Height*g.Pitch)
	uv = make([]byte, g.ChromaHeight()*g.Pitch)
	off := 0
	for row := range g.Height {
		copy(y[row*g.Pitch:], data[off:off+g.Width])
		off += g.Width
	}
	for row := range g.ChromaHeight() {
		copy(uv[row*g.Pitch:], data[off:off+g.Width])
		off += g.Width
	}
	return y, uv, nil
}

// writeNV12 writes luma and chroma planes with row stride g.Pitch as a
// tightly packed NV12 file.
func writeNV12(path string, y, uv []byte, g cvtcolor.Geometry) error {
	data := make([]byte, 0, rawSize(g))
	for row := range g.Height {
		data = append(data, y[row*g.Pitch:row*g.Pitch+g.Width]...)
	}
	for row := range g.ChromaHeight() {
		data = append(data, uv[row*g.Pitch:row*g.Pitch+g.Width]...)
	}
	if err := os.WriteFile(filepath.Clean(path), data, 0o644); err != nil {
		return fmt.Errorf("write NV12: %w", err)
	}
	return nil
}

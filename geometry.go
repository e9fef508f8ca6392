package cvtcolor

import (
	"fmt"
	"math"
)

// Geometry describes the frame shared by all planes of one conversion.
//
// Every plane uses the same row stride Pitch in bytes. The luma plane has
// Height rows of Width bytes, the NV12 chroma plane Height/2 rows of Width
// bytes (Width/2 interleaved U,V pairs), and the packed RGB plane Height rows
// of 3*Width bytes. Bytes between the logical row and Pitch are padding and
// are never written.
type Geometry struct {
	Width  int
	Height int
	Pitch  int
}

// Validate checks the geometry invariants: positive even dimensions and a
// pitch that holds a packed RGB row.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 || g.Pitch <= 0 {
		return fmt.Errorf("%w: %dx%d pitch %d", ErrInvalidDimensions, g.Width, g.Height, g.Pitch)
	}
	if g.Width%2 != 0 || g.Height%2 != 0 {
		return fmt.Errorf("%w: %dx%d", ErrOddDimensions, g.Width, g.Height)
	}
	if g.Width > math.MaxInt/3 || g.Pitch > math.MaxInt/g.Height {
		return fmt.Errorf("%w: %dx%d pitch %d overflows", ErrInvalidDimensions, g.Width, g.Height, g.Pitch)
	}
	if g.Pitch < 3*g.Width {
		return fmt.Errorf("%w: pitch %d < %d", ErrPitchTooSmall, g.Pitch, 3*g.Width)
	}
	return nil
}

// ChromaHeight returns the number of rows in the chroma plane.
func (g Geometry) ChromaHeight() int {
	return g.Height / 2
}

// LumaSize returns the minimum length of a luma plane slice.
// The last row needs no padding.
func (g Geometry) LumaSize() int {
	return (g.Height-1)*g.Pitch + g.Width
}

// ChromaSize returns the minimum length of an interleaved chroma plane slice.
func (g Geometry) ChromaSize() int {
	return (g.ChromaHeight()-1)*g.Pitch + g.Width
}

// RGBSize returns the minimum length of a packed RGB plane slice.
func (g Geometry) RGBSize() int {
	return (g.Height-1)*g.Pitch + 3*g.Width
}

// String implements fmt.Stringer.
func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d/%d", g.Width, g.Height, g.Pitch)
}

// plane pairs a slice with its name and required length for validation.
type plane struct {
	name string
	buf  []byte
	need int
}

// checkPlanes validates geometry and plane lengths. Nil planes are reported
// first, before any geometry arithmetic.
func checkPlanes(g Geometry, planes func(Geometry) []plane) error {
	for _, p := range planes(Geometry{}) {
		if len(p.buf) == 0 {
			return fmt.Errorf("%w: %s", ErrNilBuffer, p.name)
		}
	}
	if err := g.Validate(); err != nil {
		return err
	}
	for _, p := range planes(g) {
		if len(p.buf) < p.need {
			return fmt.Errorf("%w: %s has %d bytes, need %d", ErrBufferTooSmall, p.name, len(p.buf), p.need)
		}
	}
	return nil
}

func nv12ToRGBPlanes(inY, inUV, outRGB []byte) func(Geometry) []plane {
	return func(g Geometry) []plane {
		return []plane{
			{"luma", inY, g.LumaSize()},
			{"chroma", inUV, g.ChromaSize()},
			{"rgb", outRGB, g.RGBSize()},
		}
	}
}

func rgbToNV12Planes(inRGB, outY, outUV []byte) func(Geometry) []plane {
	return func(g Geometry) []plane {
		return []plane{
			{"rgb", inRGB, g.RGBSize()},
			{"luma", outY, g.LumaSize()},
			{"chroma", outUV, g.ChromaSize()},
		}
	}
}

package cvtcolor

import (
	"errors"
	"math"
	"testing"
)

func TestGeometryValidate(t *testing.T) {
	tests := []struct {
		name    string
		g       Geometry
		wantErr error
	}{
		{"minimal", Geometry{2, 2, 6}, nil},
		{"1080p packed", Geometry{1920, 1080, 5760}, nil},
		{"padded pitch", Geometry{640, 480, 2048}, nil},
		{"zero width", Geometry{0, 2, 6}, ErrInvalidDimensions},
		{"zero height", Geometry{2, 0, 6}, ErrInvalidDimensions},
		{"negative pitch", Geometry{2, 2, -6}, ErrInvalidDimensions},
		{"odd width", Geometry{3, 2, 9}, ErrOddDimensions},
		{"odd height", Geometry{2, 5, 6}, ErrOddDimensions},
		{"pitch below rgb row", Geometry{4, 2, 11}, ErrPitchTooSmall},
		{"pitch equal to luma row", Geometry{4, 2, 4}, ErrPitchTooSmall},
		{"width overflow", Geometry{math.MaxInt - 1, 2, math.MaxInt}, ErrInvalidDimensions},
		{"size overflow", Geometry{2, 4, math.MaxInt / 2}, ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGeometrySizes(t *testing.T) {
	tests := []struct {
		g                     Geometry
		luma, chroma, rgb, ch int
	}{
		{Geometry{2, 2, 6}, 8, 2, 12, 1},
		{Geometry{4, 4, 16}, 52, 20, 60, 2},
		{Geometry{1920, 1080, 5760}, 1079*5760 + 1920, 539*5760 + 1920, 1080 * 5760, 540},
	}
	for _, tt := range tests {
		t.Run(tt.g.String(), func(t *testing.T) {
			if got := tt.g.LumaSize(); got != tt.luma {
				t.Errorf("LumaSize() = %d, want %d", got, tt.luma)
			}
			if got := tt.g.ChromaSize(); got != tt.chroma {
				t.Errorf("ChromaSize() = %d, want %d", got, tt.chroma)
			}
			if got := tt.g.RGBSize(); got != tt.rgb {
				t.Errorf("RGBSize() = %d, want %d", got, tt.rgb)
			}
			if got := tt.g.ChromaHeight(); got != tt.ch {
				t.Errorf("ChromaHeight() = %d, want %d", got, tt.ch)
			}
		})
	}
}

func TestGeometryString(t *testing.T) {
	g := Geometry{Width: 1280, Height: 720, Pitch: 3840}
	if got, want := g.String(), "1280x720/3840"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

// TestCheckPlanesNilFirst checks that a nil plane is reported even when the
// geometry is also invalid.
func TestCheckPlanesNilFirst(t *testing.T) {
	buf := make([]byte, 64)
	err := checkPlanes(Geometry{3, 3, 1}, nv12ToRGBPlanes(buf, nil, buf))
	if !errors.Is(err, ErrNilBuffer) {
		t.Errorf("checkPlanes() = %v, want ErrNilBuffer", err)
	}
}

func TestCheckPlanesExactSizes(t *testing.T) {
	g := Geometry{Width: 4, Height: 4, Pitch: 16}
	y := make([]byte, g.LumaSize())
	uv := make([]byte, g.ChromaSize())
	rgb := make([]byte, g.RGBSize())

	if err := checkPlanes(g, nv12ToRGBPlanes(y, uv, rgb)); err != nil {
		t.Errorf("nv12 planes with exact sizes: %v", err)
	}
	if err := checkPlanes(g, rgbToNV12Planes(rgb, y, uv)); err != nil {
		t.Errorf("rgb planes with exact sizes: %v", err)
	}
	if err := checkPlanes(g, rgbToNV12Planes(rgb[:len(rgb)-1], y, uv)); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("short rgb plane: got %v, want ErrBufferTooSmall", err)
	}
}

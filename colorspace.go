package cvtcolor

import (
	"fmt"
	"strings"

	"github.com/gogpu/cvtcolor/internal/kernel"
)

// Range selects the quantization range of the YUV samples.
type Range uint8

const (
	// RangeLimited is studio range: Y in [16, 235], U and V in [16, 240].
	RangeLimited Range = iota

	// RangeFull uses the whole [0, 255] byte range for every component.
	RangeFull
)

// String returns "limited" or "full".
func (r Range) String() string {
	switch r {
	case RangeLimited:
		return "limited"
	case RangeFull:
		return "full"
	default:
		return fmt.Sprintf("Range(%d)", uint8(r))
	}
}

// RangeOf returns RangeFull when full is true and RangeLimited otherwise.
func RangeOf(full bool) Range {
	if full {
		return RangeFull
	}
	return RangeLimited
}

// Matrix selects the YUV <-> RGB matrix coefficients.
type Matrix uint8

const (
	// MatrixBT601 uses Kr = 0.299, Kb = 0.114 (SD video, JPEG).
	MatrixBT601 Matrix = iota

	// MatrixBT709 uses Kr = 0.2126, Kb = 0.0722 (HD video).
	MatrixBT709
)

// String returns "bt601" or "bt709".
func (m Matrix) String() string {
	switch m {
	case MatrixBT601:
		return "bt601"
	case MatrixBT709:
		return "bt709"
	default:
		return fmt.Sprintf("Matrix(%d)", uint8(m))
	}
}

// Weights returns the luma weights Kr and Kb.
// Unknown matrices return zero weights.
func (m Matrix) Weights() (kr, kb float64) {
	switch m {
	case MatrixBT601:
		return 0.299, 0.114
	case MatrixBT709:
		return 0.2126, 0.0722
	default:
		return 0, 0
	}
}

// ParseMatrix parses a matrix name as printed by Matrix.String.
// "601" and "709" are accepted as shorthands.
func ParseMatrix(s string) (Matrix, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bt601", "bt.601", "601":
		return MatrixBT601, nil
	case "bt709", "bt.709", "709":
		return MatrixBT709, nil
	}
	return 0, fmt.Errorf("%w: matrix %q", ErrUnsupportedColorSpec, s)
}

// ColorSpec bundles the matrix and range of one side of a conversion.
type ColorSpec struct {
	Matrix Matrix
	Range  Range
}

// Canonical is the output color spec of RGBToNV12: limited range BT.601.
var Canonical = ColorSpec{Matrix: MatrixBT601, Range: RangeLimited}

// Validate reports ErrUnsupportedColorSpec for unknown values.
func (c ColorSpec) Validate() error {
	if c.Matrix != MatrixBT601 && c.Matrix != MatrixBT709 {
		return fmt.Errorf("%w: %v", ErrUnsupportedColorSpec, c.Matrix)
	}
	if c.Range != RangeLimited && c.Range != RangeFull {
		return fmt.Errorf("%w: %v", ErrUnsupportedColorSpec, c.Range)
	}
	return nil
}

// String implements fmt.Stringer.
func (c ColorSpec) String() string {
	return c.Matrix.String() + "/" + c.Range.String()
}

// Decode returns the YUV -> RGB coefficients for c.
func (c ColorSpec) Decode() kernel.Decode {
	kr, kb := c.Matrix.Weights()
	return kernel.NewDecode(kr, kb, c.Range == RangeFull)
}

// Encode returns the RGB -> YUV coefficients for c.
func (c ColorSpec) Encode() kernel.Encode {
	kr, kb := c.Matrix.Weights()
	return kernel.NewEncode(kr, kb, c.Range == RangeFull)
}

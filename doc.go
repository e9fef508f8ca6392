// Package cvtcolor converts video frames between NV12 and packed RGB.
//
// # Overview
//
// NV12 is a biplanar 4:2:0 format: a luma plane with one byte per pixel and an
// interleaved chroma plane with one U,V pair per 2x2 pixel block. Packed RGB
// stores three bytes per pixel in R,G,B order. All planes of a frame share one
// row stride (pitch); bytes past the logical row are padding and are never
// written.
//
// # Quick Start
//
//	import "github.com/gogpu/cvtcolor"
//
//	// Decode a limited range NV12 frame.
//	err := cvtcolor.NV12ToRGB(y, uv, rgb, height, width, pitch, false)
//	if cvtcolor.StatusOf(err) != cvtcolor.StatusSuccess {
//	    // handle err
//	}
//
//	// Encode back to limited range BT.601 NV12.
//	err = cvtcolor.RGBToNV12(rgb, y, uv, height, width, pitch)
//
// # Color
//
// Decoding applies nearest-neighbor chroma upsampling, the selected range
// transfer and a BT.601 (default) or BT.709 matrix, then clamps and rounds
// each channel to a byte. Encoding averages the chroma of each 2x2 block and
// writes limited range BT.601 unless configured otherwise with
// [WithEncodeRange] and [WithMatrix].
//
// # Execution
//
// Frames are converted on a CPU grid of goroutines working on row bands.
// Import the gpu package to run conversions as WebGPU compute kernels:
//
//	import _ "github.com/gogpu/cvtcolor/gpu"
//
// If the GPU is unavailable the CPU grid is used transparently. Build with
// the nogpu tag to exclude the GPU packages.
//
// # Errors
//
// Every call returns nil or an [*Error] carrying a [Status]: precondition
// failures (odd or non-positive dimensions, nil or short buffers, pitch
// smaller than a packed RGB row) are reported before any byte is written.
package cvtcolor

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)

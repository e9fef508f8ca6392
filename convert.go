package cvtcolor

import "sync"

var (
	defaultOnce sync.Once
	defaultConv *Converter
)

// Default returns the process-wide Converter used by the package-level
// functions. It uses default options and is never closed.
func Default() *Converter {
	defaultOnce.Do(func() {
		defaultConv = NewConverter()
	})
	return defaultConv
}

// NV12ToRGB converts an NV12 frame to packed RGB using the default converter.
//
// inY holds height rows of width luma bytes, inUV height/2 rows of width
// interleaved U,V bytes and outRGB receives height rows of 3*width bytes; all
// three planes share the row stride pitch. fullColorRange selects full range
// input, otherwise limited (studio) range is assumed.
//
// The returned error is nil on success or an *Error; use StatusOf to
// classify it.
func NV12ToRGB(inY, inUV, outRGB []byte, height, width, pitch int, fullColorRange bool) error {
	g := Geometry{Width: width, Height: height, Pitch: pitch}
	return Default().NV12ToRGB(inY, inUV, outRGB, g, RangeOf(fullColorRange))
}

// RGBToNV12 converts a packed RGB frame to limited range BT.601 NV12 using
// the default converter. Plane layout is as for NV12ToRGB.
//
// Decode the result with NV12ToRGB(..., false) to get back an approximation of
// the input.
func RGBToNV12(inRGB, outY, outUV []byte, height, width, pitch int) error {
	g := Geometry{Width: width, Height: height, Pitch: pitch}
	return Default().RGBToNV12(inRGB, outY, outUV, g)
}

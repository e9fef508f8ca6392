// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package kernel implements the per-pixel color math for NV12 <-> packed RGB
// conversion.
//
// All arithmetic is float32 so that the CPU grid and the WGSL compute kernels
// (internal/gpu/shaders) evaluate the same expressions. Results are clamped to
// [0, 255] first and then rounded half-up, see [ToByte].
//
// Coefficients are derived from the luma weights Kr and Kb:
//
//	Kg = 1 - Kr - Kb
//	R  = y' + 2(1-Kr)·v'
//	G  = y' - (2Kb(1-Kb)/Kg)·u' - (2Kr(1-Kr)/Kg)·v'
//	B  = y' + 2(1-Kb)·u'
//
// where for full range y' = Y, u' = U-128, v' = V-128, and for limited
// (studio) range y' = (Y-16)·255/219, u' = (U-128)·255/224, v' = (V-128)·255/224.
package kernel

// Limited (studio) range constants for 8-bit samples.
const (
	LimitedLumaOffset = 16
	LimitedLumaSpan   = 219 // 235 - 16
	LimitedChromaSpan = 224 // 240 - 16
	ChromaZero        = 128
)

// Decode holds the YUV -> RGB coefficients for one matrix and range.
// The chroma scale is already folded into the Cr*/Cb* terms.
type Decode struct {
	YScale  float32
	YOffset float32
	CrR     float32
	CbG     float32
	CrG     float32
	CbB     float32
}

// Encode holds the RGB -> YUV coefficients for one matrix and range.
type Encode struct {
	YR, YG, YB float32
	YOffset    float32
	UR, UG, UB float32
	VR, VG, VB float32
}

// NewDecode derives decode coefficients from the luma weights.
func NewDecode(kr, kb float64, full bool) Decode {
	kg := 1 - kr - kb
	yScale, yOffset, cScale := 1.0, 0.0, 1.0
	if !full {
		yScale = 255.0 / LimitedLumaSpan
		yOffset = LimitedLumaOffset
		cScale = 255.0 / LimitedChromaSpan
	}
	return Decode{
		YScale:  float32(yScale),
		YOffset: float32(yOffset),
		CrR:     float32(2 * (1 - kr) * cScale),
		CbG:     float32(-2 * kb * (1 - kb) / kg * cScale),
		CrG:     float32(-2 * kr * (1 - kr) / kg * cScale),
		CbB:     float32(2 * (1 - kb) * cScale),
	}
}

// NewEncode derives encode coefficients from the luma weights.
// It is the exact inverse of NewDecode for the same arguments.
func NewEncode(kr, kb float64, full bool) Encode {
	kg := 1 - kr - kb
	sy, sc, yOffset := 1.0, 1.0, 0.0
	if !full {
		sy = LimitedLumaSpan / 255.0
		sc = LimitedChromaSpan / 255.0
		yOffset = LimitedLumaOffset
	}
	cb := sc / (2 * (1 - kb))
	cr := sc / (2 * (1 - kr))
	return Encode{
		YR:      float32(sy * kr),
		YG:      float32(sy * kg),
		YB:      float32(sy * kb),
		YOffset: float32(yOffset),
		UR:      float32(-cb * kr),
		UG:      float32(-cb * kg),
		UB:      float32(cb * (1 - kb)),
		VR:      float32(cr * (1 - kr)),
		VG:      float32(-cr * kg),
		VB:      float32(-cr * kb),
	}
}

// ToByte clamps v to [0, 255] and rounds half-up.
// The WGSL kernels use the identical u32(clamp(v, 0.0, 255.0) + 0.5).
func ToByte(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v + 0.5)
}

// Pixel converts one YUV sample triple to RGB.
func (d *Decode) Pixel(y, u, v byte) (r, g, b byte) {
	l := d.YScale * (float32(y) - d.YOffset)
	cb := float32(u) - ChromaZero
	cr := float32(v) - ChromaZero
	return ToByte(l + d.CrR*cr), ToByte(l + d.CbG*cb + d.CrG*cr), ToByte(l + d.CbB*cb)
}

// Luma returns the encoded luma sample for one RGB pixel.
func (e *Encode) Luma(r, g, b float32) byte {
	return ToByte(e.YR*r + e.YG*g + e.YB*b + e.YOffset)
}

// Chroma returns the encoded (U, V) pair for an RGB value.
// For 4:2:0 output the caller passes the mean RGB of the 2x2 block, which
// equals the mean of the four per-pixel chroma values since the transform is
// linear.
func (e *Encode) Chroma(r, g, b float32) (u, v byte) {
	u = ToByte(e.UR*r + e.UG*g + e.UB*b + ChromaZero)
	v = ToByte(e.VR*r + e.VG*g + e.VB*b + ChromaZero)
	return u, v
}

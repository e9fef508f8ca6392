// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import (
	"testing"
)

const (
	bt601Kr, bt601Kb = 0.299, 0.114
	bt709Kr, bt709Kb = 0.2126, 0.0722
)

func absDiff(a, b byte) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// =============================================================================
// ToByte
// =============================================================================

func TestToByte(t *testing.T) {
	tests := []struct {
		in   float32
		want byte
	}{
		{-300, 0},
		{-0.4, 0},
		{0, 0},
		{0.49, 0},
		{0.5, 1},
		{127.5, 128},
		{254.4, 254},
		{254.5, 255},
		{255, 255},
		{1000, 255},
	}
	for _, tt := range tests {
		if got := ToByte(tt.in); got != tt.want {
			t.Errorf("ToByte(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// =============================================================================
// Decode
// =============================================================================

func TestDecodeBlackWhite(t *testing.T) {
	tests := []struct {
		name         string
		kr, kb       float64
		full         bool
		black, white byte
	}{
		{"bt601 full", bt601Kr, bt601Kb, true, 0, 255},
		{"bt601 limited", bt601Kr, bt601Kb, false, 16, 235},
		{"bt709 full", bt709Kr, bt709Kb, true, 0, 255},
		{"bt709 limited", bt709Kr, bt709Kb, false, 16, 235},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecode(tt.kr, tt.kb, tt.full)

			r, g, b := d.Pixel(tt.black, ChromaZero, ChromaZero)
			if r != 0 || g != 0 || b != 0 {
				t.Errorf("Pixel(%d) = (%d,%d,%d), want black", tt.black, r, g, b)
			}
			r, g, b = d.Pixel(tt.white, ChromaZero, ChromaZero)
			if r != 255 || g != 255 || b != 255 {
				t.Errorf("Pixel(%d) = (%d,%d,%d), want white", tt.white, r, g, b)
			}
		})
	}
}

func TestDecodeLimitedFootroomClamps(t *testing.T) {
	d := NewDecode(bt601Kr, bt601Kb, false)
	r, g, b := d.Pixel(0, ChromaZero, ChromaZero)
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("Pixel(0) = (%d,%d,%d), want clamped black", r, g, b)
	}
	r, g, b = d.Pixel(255, ChromaZero, ChromaZero)
	if r != 255 || g != 255 || b != 255 {
		t.Errorf("Pixel(255) = (%d,%d,%d), want clamped white", r, g, b)
	}
}

func TestDecodeSaturates(t *testing.T) {
	d := NewDecode(bt601Kr, bt601Kb, true)

	// Maximal V with minimal Y drives G and B negative.
	r, g, b := d.Pixel(0, 0, 255)
	if g != 0 || b != 0 {
		t.Errorf("Pixel(0,0,255) = (%d,%d,%d), want G=B=0", r, g, b)
	}
	if r == 0 {
		t.Errorf("Pixel(0,0,255) R = 0, want positive")
	}

	// Maximal everything overshoots R and B.
	r, _, b = d.Pixel(255, 255, 255)
	if r != 255 || b != 255 {
		t.Errorf("Pixel(255,255,255) R,B = %d,%d, want 255,255", r, b)
	}
}

// =============================================================================
// Encode
// =============================================================================

func TestEncodeReferenceColors(t *testing.T) {
	e := NewEncode(bt601Kr, bt601Kb, false)
	tests := []struct {
		name    string
		r, g, b float32
		y, u, v byte
	}{
		{"black", 0, 0, 0, 16, 128, 128},
		{"white", 255, 255, 255, 235, 128, 128},
		{"red", 255, 0, 0, 81, 90, 240},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Luma(tt.r, tt.g, tt.b); got != tt.y {
				t.Errorf("Luma = %d, want %d", got, tt.y)
			}
			u, v := e.Chroma(tt.r, tt.g, tt.b)
			if u != tt.u || v != tt.v {
				t.Errorf("Chroma = (%d,%d), want (%d,%d)", u, v, tt.u, tt.v)
			}
		})
	}
}

func TestEncodeFullRangeGreyIsIdentity(t *testing.T) {
	e := NewEncode(bt601Kr, bt601Kb, true)
	d := NewDecode(bt601Kr, bt601Kb, true)
	for i := 0; i < 256; i++ {
		c := float32(i)
		y := e.Luma(c, c, c)
		u, v := e.Chroma(c, c, c)
		if int(y) != i || u != ChromaZero || v != ChromaZero {
			t.Fatalf("encode grey %d = (%d,%d,%d)", i, y, u, v)
		}
		r, g, b := d.Pixel(y, u, v)
		if int(r) != i || int(g) != i || int(b) != i {
			t.Fatalf("decode grey %d = (%d,%d,%d)", i, r, g, b)
		}
	}
}

func TestEncodeDecodeInverse(t *testing.T) {
	for _, full := range []bool{true, false} {
		for _, m := range [][2]float64{{bt601Kr, bt601Kb}, {bt709Kr, bt709Kb}} {
			e := NewEncode(m[0], m[1], full)
			d := NewDecode(m[0], m[1], full)
			for r := 0; r < 256; r += 17 {
				for g := 0; g < 256; g += 17 {
					for b := 0; b < 256; b += 17 {
						fr, fg, fb := float32(r), float32(g), float32(b)
						y := e.Luma(fr, fg, fb)
						u, v := e.Chroma(fr, fg, fb)
						gr, gg, gb := d.Pixel(y, u, v)
						if absDiff(gr, byte(r)) > 2 || absDiff(gg, byte(g)) > 2 || absDiff(gb, byte(b)) > 2 {
							t.Fatalf("full=%v kr=%v: (%d,%d,%d) -> (%d,%d,%d) -> (%d,%d,%d)",
								full, m[0], r, g, b, y, u, v, gr, gg, gb)
						}
					}
				}
			}
		}
	}
}

// =============================================================================
// Row kernels
// =============================================================================

func TestNV12ToRGBRowsKeepsPadding(t *testing.T) {
	const w, h, pitch = 4, 2, 16
	d := NewDecode(bt601Kr, bt601Kb, true)

	inY := make([]byte, h*pitch)
	inUV := make([]byte, pitch)
	for i := range inY {
		inY[i] = 200
	}
	for i := range inUV {
		inUV[i] = ChromaZero
	}
	out := make([]byte, h*pitch)
	for i := range out {
		out[i] = 0xAB
	}

	NV12ToRGBRows(&d, inY, inUV, out, w, pitch, 0, h)

	for y := 0; y < h; y++ {
		for x := 0; x < pitch; x++ {
			got := out[y*pitch+x]
			if x < w*3 && got != 200 {
				t.Errorf("out[%d,%d] = %d, want 200", y, x, got)
			}
			if x >= w*3 && got != 0xAB {
				t.Errorf("padding out[%d,%d] = %#x, want 0xab", y, x, got)
			}
		}
	}
}

func TestNV12ToRGBRowsNearestChroma(t *testing.T) {
	const w, h, pitch = 4, 4, 12
	d := NewDecode(bt601Kr, bt601Kb, true)

	inY := make([]byte, h*pitch)
	for i := range inY {
		inY[i] = 128
	}
	inUV := make([]byte, (h/2)*pitch)
	for i := range inUV {
		inUV[i] = ChromaZero
	}
	// Strong red chroma for the bottom-right block only.
	inUV[1*pitch+2] = ChromaZero
	inUV[1*pitch+3] = 255

	out := make([]byte, h*pitch)
	NV12ToRGBRows(&d, inY, inUV, out, w, pitch, 0, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := out[y*pitch+x*3]
			inBlock := y >= 2 && x >= 2
			if inBlock && r != 255 {
				t.Errorf("R(%d,%d) = %d, want 255 inside tinted block", x, y, r)
			}
			if !inBlock && r != 128 {
				t.Errorf("R(%d,%d) = %d, want 128 outside tinted block", x, y, r)
			}
		}
	}
}

func TestRGBToNV12RowsUniformBlock(t *testing.T) {
	const w, h, pitch = 2, 2, 8
	e := NewEncode(bt601Kr, bt601Kb, false)

	in := make([]byte, h*pitch)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			in[y*pitch+x*3] = 255
		}
	}
	outY := make([]byte, h*pitch)
	outUV := make([]byte, pitch)
	for i := range outUV {
		outUV[i] = 0xCD
	}

	RGBToNV12Rows(&e, in, outY, outUV, w, pitch, 0, 1)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if got := outY[y*pitch+x]; got != 81 {
				t.Errorf("Y(%d,%d) = %d, want 81", x, y, got)
			}
		}
	}
	if outUV[0] != 90 || outUV[1] != 240 {
		t.Errorf("UV = (%d,%d), want (90,240)", outUV[0], outUV[1])
	}
	for i := w; i < pitch; i++ {
		if outUV[i] != 0xCD {
			t.Errorf("chroma padding[%d] = %#x, want 0xcd", i, outUV[i])
		}
	}
}

func TestRGBToNV12RowsAveragesChroma(t *testing.T) {
	const w, h, pitch = 2, 2, 6
	e := NewEncode(bt601Kr, bt601Kb, true)

	// Two black and two white pixels average to mid grey: neutral chroma.
	in := []byte{
		0, 0, 0, 255, 255, 255,
		255, 255, 255, 0, 0, 0,
	}
	outY := make([]byte, h*pitch)
	outUV := make([]byte, pitch)

	RGBToNV12Rows(&e, in, outY, outUV, w, pitch, 0, 1)

	if outUV[0] != ChromaZero || outUV[1] != ChromaZero {
		t.Errorf("UV = (%d,%d), want neutral", outUV[0], outUV[1])
	}
	if outY[0] != 0 || outY[1] != 255 || outY[pitch] != 255 || outY[pitch+1] != 0 {
		t.Errorf("Y = %v, want checkerboard 0/255", []byte{outY[0], outY[1], outY[pitch], outY[pitch+1]})
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

// NV12ToRGBRows converts luma rows [y0, y1) of an NV12 frame to packed RGB.
//
// Each output pixel depends only on its own luma sample and the chroma pair
// of its 2x2 block (nearest-neighbor upsampling), so disjoint row ranges may
// run concurrently. Geometry must already be validated: width even, pitch at
// least 3*width and all slices long enough for the rows touched.
func NV12ToRGBRows(d *Decode, inY, inUV, outRGB []byte, width, pitch, y0, y1 int) {
	for y := y0; y < y1; y++ {
		yRow := inY[y*pitch : y*pitch+width]
		cOff := (y / 2) * pitch
		uvRow := inUV[cOff : cOff+width]
		out := outRGB[y*pitch : y*pitch+width*3]

		for x := 0; x < width; x += 2 {
			u, v := uvRow[x], uvRow[x+1]
			i := x * 3

			out[i], out[i+1], out[i+2] = d.Pixel(yRow[x], u, v)
			out[i+3], out[i+4], out[i+5] = d.Pixel(yRow[x+1], u, v)
		}
	}
}

// RGBToNV12Rows converts chroma rows [cy0, cy1) of a packed RGB frame, that
// is luma rows [2*cy0, 2*cy1), to NV12.
//
// Every 2x2 block writes its four luma samples and exactly one (U, V) pair,
// the chroma of the block's mean color.
func RGBToNV12Rows(e *Encode, inRGB, outY, outUV []byte, width, pitch, cy0, cy1 int) {
	for cy := cy0; cy < cy1; cy++ {
		y := cy * 2
		top := inRGB[y*pitch : y*pitch+width*3]
		bot := inRGB[(y+1)*pitch : (y+1)*pitch+width*3]
		yTop := outY[y*pitch : y*pitch+width]
		yBot := outY[(y+1)*pitch : (y+1)*pitch+width]
		uv := outUV[cy*pitch : cy*pitch+width]

		for x := 0; x < width; x += 2 {
			i := x * 3

			r0, g0, b0 := float32(top[i]), float32(top[i+1]), float32(top[i+2])
			r1, g1, b1 := float32(top[i+3]), float32(top[i+4]), float32(top[i+5])
			r2, g2, b2 := float32(bot[i]), float32(bot[i+1]), float32(bot[i+2])
			r3, g3, b3 := float32(bot[i+3]), float32(bot[i+4]), float32(bot[i+5])

			yTop[x] = e.Luma(r0, g0, b0)
			yTop[x+1] = e.Luma(r1, g1, b1)
			yBot[x] = e.Luma(r2, g2, b2)
			yBot[x+1] = e.Luma(r3, g3, b3)

			uv[x], uv[x+1] = e.Chroma(
				(r0+r1+r2+r3)*0.25,
				(g0+g1+g2+g3)*0.25,
				(b0+b1+b2+b3)*0.25,
			)
		}
	}
}

package gpucore

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/cvtcolor/internal/kernel"
)

// ParamsSize is the size in bytes of the uniform block.
const ParamsSize = 80

// Params mirrors the WGSL uniform struct used by all conversion kernels:
//
//	struct Params {
//	    width: u32, height: u32, pitch: u32, groups_x: u32,
//	    words: u32, _pad0: u32, _pad1: u32, _pad2: u32,
//	    k0: vec4<f32>, k1: vec4<f32>, k2: vec4<f32>,
//	}
//
// The meaning of K depends on the kernel, see DecodeParams and EncodeParams.
type Params struct {
	Width   uint32
	Height  uint32
	Pitch   uint32
	GroupsX uint32
	Words   uint32
	K       [12]float32
}

// DecodeParams builds the NV12 -> RGB uniform block.
// k0 = (yScale, yOffset, crR, cbG), k1 = (crG, cbB, 0, 0).
func DecodeParams(width, height, pitch int, lc LaunchConfig, d kernel.Decode) Params {
	return Params{
		Width:   uint32(width),
		Height:  uint32(height),
		Pitch:   uint32(pitch),
		GroupsX: lc.GroupsX,
		Words:   lc.Words,
		K: [12]float32{
			d.YScale, d.YOffset, d.CrR, d.CbG,
			d.CrG, d.CbB, 0, 0,
		},
	}
}

// EncodeParams builds the RGB -> NV12 uniform block shared by the luma and
// chroma kernels.
// k0 = (yR, yG, yB, yOffset), k1 = (uR, uG, uB, 0), k2 = (vR, vG, vB, 0).
func EncodeParams(width, height, pitch int, lc LaunchConfig, e kernel.Encode) Params {
	return Params{
		Width:   uint32(width),
		Height:  uint32(height),
		Pitch:   uint32(pitch),
		GroupsX: lc.GroupsX,
		Words:   lc.Words,
		K: [12]float32{
			e.YR, e.YG, e.YB, e.YOffset,
			e.UR, e.UG, e.UB, 0,
			e.VR, e.VG, e.VB, 0,
		},
	}
}

// WithLaunch returns a copy of p dispatched with lc.
func (p Params) WithLaunch(lc LaunchConfig) Params {
	p.GroupsX = lc.GroupsX
	p.Words = lc.Words
	return p
}

// Bytes serializes p in the little-endian std140 layout expected by WGSL.
func (p Params) Bytes() []byte {
	buf := make([]byte, 0, ParamsSize)
	buf = binary.LittleEndian.AppendUint32(buf, p.Width)
	buf = binary.LittleEndian.AppendUint32(buf, p.Height)
	buf = binary.LittleEndian.AppendUint32(buf, p.Pitch)
	buf = binary.LittleEndian.AppendUint32(buf, p.GroupsX)
	buf = binary.LittleEndian.AppendUint32(buf, p.Words)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	for _, k := range p.K {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(k))
	}
	return buf
}

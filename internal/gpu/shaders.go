// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

// Embedded WGSL shader sources.

//go:embed shaders/nv12_to_rgb.wgsl
var nv12ToRGBShaderSource string

//go:embed shaders/rgb_to_luma.wgsl
var rgbToLumaShaderSource string

//go:embed shaders/rgb_to_chroma.wgsl
var rgbToChromaShaderSource string

// kernelSource describes one compute kernel: its WGSL source and how many
// read-only storage planes it binds before the output plane.
type kernelSource struct {
	label  string
	source string
	inputs int
}

var (
	nv12ToRGBKernel   = kernelSource{label: "nv12_to_rgb", source: nv12ToRGBShaderSource, inputs: 2}
	rgbToLumaKernel   = kernelSource{label: "rgb_to_luma", source: rgbToLumaShaderSource, inputs: 1}
	rgbToChromaKernel = kernelSource{label: "rgb_to_chroma", source: rgbToChromaShaderSource, inputs: 1}
)

// allKernels lists every kernel the accelerator builds.
func allKernels() []kernelSource {
	return []kernelSource{nv12ToRGBKernel, rgbToLumaKernel, rgbToChromaKernel}
}

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// compileSPIRV compiles WGSL source to SPIR-V words with naga.
func compileSPIRV(label, source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", label, err)
	}
	if len(spirvBytes) < 4 || len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile %s: invalid SPIR-V length %d", label, len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	if code[0] != spirvMagic {
		return nil, fmt.Errorf("compile %s: bad SPIR-V magic %#08x", label, code[0])
	}
	return code, nil
}

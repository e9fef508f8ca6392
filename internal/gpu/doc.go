//go:build !nogpu

// Package gpu runs NV12 <-> packed RGB conversion as WebGPU compute kernels.
//
// This is an internal package registered by github.com/gogpu/cvtcolor/gpu.
// It drives the gogpu/wgpu HAL directly (Vulkan backend, zero CGO) and
// compiles its WGSL kernels to SPIR-V with gogpu/naga.
//
// # Kernels
//
//   - nv12_to_rgb: luma + chroma planes -> packed RGB plane
//   - rgb_to_luma: packed RGB plane -> luma plane
//   - rgb_to_chroma: packed RGB plane -> interleaved chroma plane
//
// Planes are bound as array<u32> storage buffers. Every invocation owns one
// 32-bit word of the output plane, so invocations never write the same
// memory. Output planes are preloaded with the caller's bytes and each
// kernel writes padding bytes back unchanged.
//
// Kernels contain no loops: naga's SPIR-V backend runs only the first loop
// iteration in some versions, so per-word work is unrolled.
//
// # Per-call flow
//
//	upload planes + Params -> one encoder (compute passes, copy to staging)
//	-> submit -> poll completion (5s) -> map staging -> copy to caller
//
// Failures before submission map to cvtcolor.StatusLaunchFailure, later ones
// to cvtcolor.StatusExecutionFailure. The caller's output is only written
// after the readback succeeded.
package gpu

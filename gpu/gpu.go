//go:build !nogpu

// Package gpu registers the WebGPU conversion accelerator.
//
// Import this package to run NV12 <-> RGB conversions as wgpu/hal compute
// kernels. If GPU initialization fails (no Vulkan available), the
// accelerator declines every call and conversions run on the CPU grid.
//
// Usage:
//
//	import _ "github.com/gogpu/cvtcolor/gpu" // enable GPU conversion
package gpu

import (
	"github.com/gogpu/cvtcolor"
	gpuimpl "github.com/gogpu/cvtcolor/internal/gpu"
	"github.com/gogpu/gpucontext"
)

func init() {
	if err := cvtcolor.RegisterAccelerator(&gpuimpl.Accelerator{}); err != nil {
		cvtcolor.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU accelerator to use a shared GPU device
// from a host application (e.g., a gogpu window) instead of its own.
//
// The provider's Device must be a *wgpu.Device, or the provider must also
// expose HalDevice() any and HalQueue() any.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return cvtcolor.SetAcceleratorDeviceProvider(provider)
}

// Enabled reports whether conversions currently run on the GPU.
func Enabled() bool {
	a, ok := cvtcolor.Accelerator().(*gpuimpl.Accelerator)
	return ok && a.Ready()
}

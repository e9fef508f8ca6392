package cvtcolor

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the GPU accelerator cannot handle this call.
// The converter transparently runs the CPU grid instead.
var ErrFallbackToCPU = errors.New("cvtcolor: falling back to CPU conversion")

// NV12Job is one NV12 -> packed RGB conversion handed to an accelerator.
// Geometry, plane lengths and Spec are already validated.
type NV12Job struct {
	Y        []byte
	UV       []byte
	RGB      []byte
	Geometry Geometry
	Spec     ColorSpec
}

// RGBJob is one packed RGB -> NV12 conversion handed to an accelerator.
// Geometry, plane lengths and Spec are already validated.
type RGBJob struct {
	RGB      []byte
	Y        []byte
	UV       []byte
	Geometry Geometry
	Spec     ColorSpec
}

// GPUAccelerator is an optional GPU conversion provider.
//
// When registered via RegisterAccelerator, a Converter tries the accelerator
// first. ErrFallbackToCPU makes the converter run the CPU grid; any other
// error is returned to the caller unchanged. Accelerators should return
// *Error values so callers can classify them with StatusOf.
//
// Users opt in via blank import:
//
//	import _ "github.com/gogpu/cvtcolor/gpu"
type GPUAccelerator interface {
	// Name returns the accelerator name (e.g., "wgpu").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// NV12ToRGB converts a whole frame. Either every output byte is written
	// or, on error, none is.
	NV12ToRGB(job NV12Job) error

	// RGBToNV12 converts a whole frame with the same all-or-nothing output.
	RGBToNV12(job RGBJob) error
}

// DeviceProviderAware is an optional interface for accelerators that can share
// a GPU device with an external provider (e.g., a gogpu window).
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   GPUAccelerator
)

// RegisterAccelerator registers a GPU accelerator.
//
// Only one accelerator can be registered. Subsequent calls replace and close
// the previous one. The current logger is handed to the accelerator before
// Init is called; if Init fails the accelerator is not registered and the
// error is returned.
func RegisterAccelerator(a GPUAccelerator) error {
	if a == nil {
		return errors.New("cvtcolor: accelerator must not be nil")
	}
	propagateLogger(a, Logger())
	if err := a.Init(); err != nil {
		return err
	}

	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		Logger().Warn("cvtcolor: accelerator replaced", "old", old.Name(), "new", a.Name())
		old.Close()
	}
	return nil
}

// Accelerator returns the currently registered GPU accelerator, or nil if none.
func Accelerator() GPUAccelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator, enabling GPU device sharing. If no accelerator is registered
// or it doesn't support device sharing, this is a no-op.
func SetAcceleratorDeviceProvider(provider any) error {
	a := Accelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/cvtcolor"
	"github.com/gogpu/cvtcolor/internal/gpucore"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Accelerator runs NV12 <-> RGB conversions as wgpu/hal compute kernels.
// It implements the cvtcolor.GPUAccelerator interface.
//
// Dispatches are serialized by mu. Each call uploads its planes, runs the
// kernels, waits for the submission and reads the result back before
// touching the caller's output, so a failed call leaves output unchanged.
type Accelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	limits   gpucore.Limits

	kernels *kernelSet

	// timeout bounds each submission; zero means submitTimeout.
	timeout time.Duration

	gpuReady       bool
	externalDevice bool // true when using shared device (don't destroy on Close)
	stalled        bool // a submission timed out and may still be running
}

var (
	_ cvtcolor.GPUAccelerator      = (*Accelerator)(nil)
	_ cvtcolor.DeviceProviderAware = (*Accelerator)(nil)
)

// Name returns "wgpu".
func (a *Accelerator) Name() string { return "wgpu" }

// Init opens a GPU device and builds the kernels. A missing GPU is not an
// error: the accelerator stays registered and declines every call with
// cvtcolor.ErrFallbackToCPU.
func (a *Accelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.initGPU(); err != nil {
		slogger().Warn("cvtcolor/gpu: GPU init failed, using CPU fallback", "err", err)
	}
	return nil
}

// Ready reports whether conversions run on the GPU.
func (a *Accelerator) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gpuReady
}

// SetLogger implements the logger propagation hook of cvtcolor.SetLogger.
func (a *Accelerator) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// Close releases GPU resources. The device is kept when it was provided
// externally.
func (a *Accelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseLocked()
}

func (a *Accelerator) releaseLocked() {
	if a.device != nil && (a.stalled || !a.externalDevice) {
		if err := a.device.WaitIdle(); err != nil {
			slogger().Warn("cvtcolor/gpu: wait idle failed", "err", err)
		}
	}
	a.kernels.destroy(a.device)
	a.kernels = nil
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device = nil
	a.queue = nil
	a.instance = nil
	a.gpuReady = false
	a.externalDevice = false
	a.stalled = false
}

// halProvider is implemented by device providers that expose HAL objects
// directly.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// wgpuDevice is implemented by *wgpu.Device as returned from
// gpucontext.DeviceProvider.Device.
type wgpuDevice interface {
	HalDevice() hal.Device
	HalQueue() hal.Queue
}

// limitsReporter is implemented by *wgpu.Device and by providers that know
// the limits their device was opened with.
type limitsReporter interface {
	Limits() gputypes.Limits
}

// deviceLimits returns the launch limits reported by v, or the WebGPU
// defaults when v reports none.
func deviceLimits(v any) gpucore.Limits {
	if lr, ok := v.(limitsReporter); ok {
		if l := gpucore.LimitsFrom(lr.Limits()); l.MaxWorkgroupsPerDimension != 0 {
			return l
		}
	}
	return gpucore.DefaultLimits()
}

// SetDeviceProvider switches the accelerator to a shared GPU device.
//
// provider is either a value exposing HalDevice() any and HalQueue() any, or
// a gpucontext.DeviceProvider whose Device() is a *wgpu.Device.
func (a *Accelerator) SetDeviceProvider(provider any) error {
	device, queue, limits, err := halFromProvider(provider)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.releaseLocked()
	if err := a.useDeviceLocked(device, queue, limits, true); err != nil {
		return fmt.Errorf("cvtcolor/gpu: create kernels with shared device: %w", err)
	}
	slogger().Info("cvtcolor/gpu: switched to shared GPU device",
		"maxWorkgroups", limits.MaxWorkgroupsPerDimension, "maxStorageBinding", limits.MaxStorageBufferBindingSize)
	return nil
}

// halFromProvider extracts the HAL device and queue of provider together
// with the limits the device was opened with.
func halFromProvider(provider any) (hal.Device, hal.Queue, gpucore.Limits, error) {
	if hp, ok := provider.(halProvider); ok {
		device, ok := hp.HalDevice().(hal.Device)
		if !ok || device == nil {
			return nil, nil, gpucore.Limits{}, errors.New("cvtcolor/gpu: provider HalDevice is not hal.Device")
		}
		queue, ok := hp.HalQueue().(hal.Queue)
		if !ok || queue == nil {
			return nil, nil, gpucore.Limits{}, errors.New("cvtcolor/gpu: provider HalQueue is not hal.Queue")
		}
		return device, queue, deviceLimits(provider), nil
	}
	if dp, ok := provider.(gpucontext.DeviceProvider); ok {
		dev := dp.Device()
		if wd, ok := dev.(wgpuDevice); ok {
			device, queue := wd.HalDevice(), wd.HalQueue()
			if device != nil && queue != nil {
				return device, queue, deviceLimits(dev), nil
			}
		}
		return nil, nil, gpucore.Limits{}, errors.New("cvtcolor/gpu: device provider does not expose a HAL device")
	}
	return nil, nil, gpucore.Limits{}, fmt.Errorf("cvtcolor/gpu: unsupported device provider %T", provider)
}

// useDeviceLocked installs device and queue and builds the kernels.
// limits must be the limits the device was opened with.
func (a *Accelerator) useDeviceLocked(device hal.Device, queue hal.Queue, limits gpucore.Limits, external bool) error {
	a.device = device
	a.queue = queue
	a.externalDevice = external
	a.limits = limits

	ks, err := createKernels(device)
	if err != nil {
		a.gpuReady = false
		return err
	}
	a.kernels = ks
	a.gpuReady = true
	return nil
}

func (a *Accelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return errors.New("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return errors.New("no GPU adapters found")
	}
	selected := selectAdapter(adapters)

	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	if err := a.useDeviceLocked(openDev.Device, openDev.Queue, gpucore.LimitsFrom(limits), false); err != nil {
		openDev.Device.Destroy()
		a.device = nil
		a.queue = nil
		return fmt.Errorf("create kernels: %w", err)
	}
	slogger().Info("cvtcolor/gpu: GPU accelerator initialized",
		"adapter", selected.Info.Name, "type", selected.Info.DeviceType)
	return nil
}

// selectAdapter prefers a discrete GPU, then an integrated one, then the
// first adapter listed.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for _, want := range []gputypes.DeviceType{gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU} {
		for i := range adapters {
			if adapters[i].Info.DeviceType == want {
				return &adapters[i]
			}
		}
	}
	return &adapters[0]
}

// NV12ToRGB implements cvtcolor.GPUAccelerator.
func (a *Accelerator) NV12ToRGB(job cvtcolor.NV12Job) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return cvtcolor.ErrFallbackToCPU
	}
	return a.runNV12ToRGB(job)
}

// RGBToNV12 implements cvtcolor.GPUAccelerator.
func (a *Accelerator) RGBToNV12(job cvtcolor.RGBJob) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return cvtcolor.ErrFallbackToCPU
	}
	return a.runRGBToNV12(job)
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/gogpu/cvtcolor"
	"github.com/gogpu/cvtcolor/internal/gpucore"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// submitTimeout bounds the wait for one conversion to finish on the GPU.
const submitTimeout = 5 * time.Second

// errSubmitTimeout is returned when a submission does not complete in time.
// The GPU may still be executing it, so its resources must not be freed.
var errSubmitTimeout = errors.New("submission not completed")

// pollInterval is the sleep between submission completion checks.
const pollInterval = 50 * time.Microsecond

// Buffer usages. HAL-level WriteBuffer needs host-visible (MapWrite) memory.
const (
	usageUniform = gputypes.BufferUsageUniform | gputypes.BufferUsageMapWrite
	usageInput   = gputypes.BufferUsageStorage | gputypes.BufferUsageMapWrite
	usageOutput  = gputypes.BufferUsageStorage | gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc
	usageStaging = gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst
)

// stage distinguishes failures before submission (launch) from failures
// while waiting or reading back (execution).
type stage int

const (
	stageLaunch stage = iota
	stageExecute
)

type stageError struct {
	stage stage
	err   error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func launchErr(format string, args ...any) error {
	return &stageError{stage: stageLaunch, err: fmt.Errorf(format, args...)}
}

func executeErr(format string, args ...any) error {
	return &stageError{stage: stageExecute, err: fmt.Errorf(format, args...)}
}

// convError wraps err into a *cvtcolor.Error with the status of its stage.
func convError(op string, err error) error {
	status := cvtcolor.StatusLaunchFailure
	if se, ok := err.(*stageError); ok && se.stage == stageExecute {
		status = cvtcolor.StatusExecutionFailure
	}
	return &cvtcolor.Error{Op: op, Status: status, Err: err}
}

// binding is one buffer bound to a kernel slot.
type binding struct {
	buf  hal.Buffer
	size uint64
}

// pass is one kernel dispatch: inputs are bound after the uniform, output
// last.
type pass struct {
	kernel *kernel
	params gpucore.Params
	lc     gpucore.LaunchConfig
	inputs []binding
	output binding
}

// frame tracks the per-call GPU resources of one conversion.
type frame struct {
	device  hal.Device
	queue   hal.Queue
	timeout time.Duration
	bufs    []hal.Buffer
	groups  []hal.BindGroup

	// abandoned is set when a submission timed out. The resources stay
	// allocated because pending GPU work may still reference them.
	abandoned bool
}

func (f *frame) release() {
	if f.abandoned {
		return
	}
	for _, bg := range f.groups {
		f.device.DestroyBindGroup(bg)
	}
	for _, b := range f.bufs {
		f.device.DestroyBuffer(b)
	}
}

// buffer creates a buffer of at least size bytes rounded up to whole words.
func (f *frame) buffer(label string, size int, usage gputypes.BufferUsage) (binding, error) {
	n := uint64(gpucore.WordAlign(size))
	b, err := f.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: n, Usage: usage})
	if err != nil {
		return binding{}, launchErr("create %s buffer: %w", label, err)
	}
	f.bufs = append(f.bufs, b)
	return binding{buf: b, size: n}, nil
}

// upload creates a buffer and fills it with data, zero-padded to a word.
func (f *frame) upload(label string, data []byte, usage gputypes.BufferUsage) (binding, error) {
	bb, err := f.buffer(label, len(data), usage)
	if err != nil {
		return binding{}, err
	}
	padded := data
	if uint64(len(data)) != bb.size {
		padded = make([]byte, bb.size)
		copy(padded, data)
	}
	if err := f.queue.WriteBuffer(bb.buf, 0, padded); err != nil {
		return binding{}, launchErr("write %s buffer: %w", label, err)
	}
	return bb, nil
}

// bind creates the uniform buffer and bind group of p.
func (f *frame) bind(p *pass) (hal.BindGroup, error) {
	ub, err := f.upload(p.kernel.label+"_params", p.params.Bytes(), usageUniform)
	if err != nil {
		return nil, err
	}
	entries := make([]gputypes.BindGroupEntry, 0, len(p.inputs)+2)
	entries = append(entries, gputypes.BindGroupEntry{
		Binding: 0, Resource: gputypes.BufferBinding{Buffer: ub.buf.NativeHandle(), Offset: 0, Size: ub.size},
	})
	for i, in := range p.inputs {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding: uint32(i + 1), Resource: gputypes.BufferBinding{Buffer: in.buf.NativeHandle(), Offset: 0, Size: in.size},
		})
	}
	entries = append(entries, gputypes.BindGroupEntry{
		Binding:  uint32(len(p.inputs) + 1),
		Resource: gputypes.BufferBinding{Buffer: p.output.buf.NativeHandle(), Offset: 0, Size: p.output.size},
	})

	bg, err := f.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: p.kernel.label + "_bind", Layout: p.kernel.bindLayout, Entries: entries,
	})
	if err != nil {
		return nil, launchErr("create %s bind group: %w", p.kernel.label, err)
	}
	f.groups = append(f.groups, bg)
	return bg, nil
}

// execute records every pass, copies each output into staging at
// consecutive offsets, submits and waits. It returns the mapped staging
// contents copied into a Go slice.
func (f *frame) execute(label string, passes []*pass) ([]byte, error) {
	groups := make([]hal.BindGroup, len(passes))
	var stagingSize int
	for i, p := range passes {
		bg, err := f.bind(p)
		if err != nil {
			return nil, err
		}
		groups[i] = bg
		stagingSize += int(p.output.size)
	}
	staging, err := f.buffer(label+"_staging", stagingSize, usageStaging)
	if err != nil {
		return nil, err
	}

	encoder, err := f.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return nil, launchErr("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, launchErr("begin encoding: %w", err)
	}
	for i, p := range passes {
		cp := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: p.kernel.label})
		cp.SetPipeline(p.kernel.pipeline)
		cp.SetBindGroup(0, groups[i], nil)
		cp.Dispatch(p.lc.GroupsX, p.lc.GroupsY, 1)
		cp.End()
	}
	var offset uint64
	for _, p := range passes {
		encoder.CopyBufferToBuffer(p.output.buf, staging.buf, []hal.BufferCopy{
			{SrcOffset: 0, DstOffset: offset, Size: p.output.size},
		})
		offset += p.output.size
	}
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, launchErr("end encoding: %w", err)
	}
	defer func() {
		if !f.abandoned {
			f.device.FreeCommandBuffer(cmdBuf)
		}
	}()

	subIdx, err := f.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return nil, launchErr("submit: %w", err)
	}
	if err := f.wait(subIdx); err != nil {
		f.abandoned = true
		return nil, err
	}

	mapping, err := f.device.MapBuffer(staging.buf, 0, staging.size)
	if err != nil {
		return nil, executeErr("map staging buffer: %w", err)
	}
	out := make([]byte, staging.size)
	copy(out, unsafe.Slice((*byte)(mapping.Ptr), staging.size)) //nolint:gosec // mapped range is staging.size bytes
	if err := f.device.UnmapBuffer(staging.buf); err != nil {
		return nil, executeErr("unmap staging buffer: %w", err)
	}
	return out, nil
}

// wait polls until submission idx completes or the frame timeout elapses.
func (f *frame) wait(idx uint64) error {
	deadline := time.Now().Add(f.timeout)
	for f.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return executeErr("wait for GPU: %w: index %d after %v", errSubmitTimeout, idx, f.timeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

func (a *Accelerator) newFrame() *frame {
	timeout := a.timeout
	if timeout <= 0 {
		timeout = submitTimeout
	}
	return &frame{device: a.device, queue: a.queue, timeout: timeout}
}

// fail logs err and converts it for the caller. After a timed out
// submission the accelerator declines conversions until the device is
// replaced or the accelerator is closed.
func (a *Accelerator) fail(op string, g cvtcolor.Geometry, err error) error {
	if errors.Is(err, errSubmitTimeout) {
		a.gpuReady = false
		a.stalled = true
		slogger().Warn("cvtcolor/gpu: GPU stalled, using CPU fallback", "op", op, "geometry", g, "err", err)
	} else {
		slogger().Debug("cvtcolor/gpu: dispatch failed", "op", op, "geometry", g, "err", err)
	}
	return convError(op, err)
}

// launch computes the dispatch for a plane of size bytes.
func (a *Accelerator) launch(plane string, size int) (gpucore.LaunchConfig, error) {
	lc, err := gpucore.NewLaunchConfig(size, a.limits)
	if err != nil {
		return lc, launchErr("%s plane: %w", plane, err)
	}
	return lc, nil
}

func (a *Accelerator) runNV12ToRGB(job cvtcolor.NV12Job) error {
	g := job.Geometry
	lumaSize, chromaSize, rgbSize := g.LumaSize(), g.ChromaSize(), g.RGBSize()

	err := func() error {
		// Inputs must fit a storage binding as well.
		if _, err := a.launch("luma", lumaSize); err != nil {
			return err
		}
		if _, err := a.launch("chroma", chromaSize); err != nil {
			return err
		}
		lc, err := a.launch("rgb", rgbSize)
		if err != nil {
			return err
		}

		f := a.newFrame()
		defer f.release()

		luma, err := f.upload("luma", job.Y[:lumaSize], usageInput)
		if err != nil {
			return err
		}
		chroma, err := f.upload("chroma", job.UV[:chromaSize], usageInput)
		if err != nil {
			return err
		}
		// Preload the output so padding bytes survive the word-wide writes.
		rgb, err := f.upload("rgb", job.RGB[:rgbSize], usageOutput)
		if err != nil {
			return err
		}

		p := &pass{
			kernel: a.kernels.nv12ToRGB,
			params: gpucore.DecodeParams(g.Width, g.Height, g.Pitch, lc, job.Spec.Decode()),
			lc:     lc,
			inputs: []binding{luma, chroma},
			output: rgb,
		}
		out, err := f.execute("nv12_to_rgb", []*pass{p})
		if err != nil {
			return err
		}
		copy(job.RGB[:rgbSize], out)
		return nil
	}()
	if err != nil {
		return a.fail(cvtcolor.OpNV12ToRGB, g, err)
	}
	return nil
}

func (a *Accelerator) runRGBToNV12(job cvtcolor.RGBJob) error {
	g := job.Geometry
	lumaSize, chromaSize, rgbSize := g.LumaSize(), g.ChromaSize(), g.RGBSize()

	err := func() error {
		if _, err := a.launch("rgb", rgbSize); err != nil {
			return err
		}
		lumaLC, err := a.launch("luma", lumaSize)
		if err != nil {
			return err
		}
		chromaLC, err := a.launch("chroma", chromaSize)
		if err != nil {
			return err
		}

		f := a.newFrame()
		defer f.release()

		rgb, err := f.upload("rgb", job.RGB[:rgbSize], usageInput)
		if err != nil {
			return err
		}
		luma, err := f.upload("luma", job.Y[:lumaSize], usageOutput)
		if err != nil {
			return err
		}
		chroma, err := f.upload("chroma", job.UV[:chromaSize], usageOutput)
		if err != nil {
			return err
		}

		params := gpucore.EncodeParams(g.Width, g.Height, g.Pitch, lumaLC, job.Spec.Encode())
		passes := []*pass{
			{kernel: a.kernels.rgbToLuma, params: params, lc: lumaLC, inputs: []binding{rgb}, output: luma},
			{kernel: a.kernels.rgbToChroma, params: params.WithLaunch(chromaLC), lc: chromaLC, inputs: []binding{rgb}, output: chroma},
		}
		out, err := f.execute("rgb_to_nv12", passes)
		if err != nil {
			return err
		}
		copy(job.Y[:lumaSize], out[:lumaSize])
		copy(job.UV[:chromaSize], out[luma.size:luma.size+uint64(chromaSize)])
		return nil
	}()
	if err != nil {
		return a.fail(cvtcolor.OpRGBToNV12, g, err)
	}
	return nil
}

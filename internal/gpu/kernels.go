// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// kernel is a compiled compute pipeline with its layouts.
//
// Binding layout: 0 = Params uniform, 1..inputs = read-only planes,
// inputs+1 = output plane (read-write, preloaded so padding survives).
type kernel struct {
	label      string
	inputs     int
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

// kernelSet holds the pipelines of both conversion directions.
type kernelSet struct {
	nv12ToRGB   *kernel
	rgbToLuma   *kernel
	rgbToChroma *kernel
}

// createKernels builds every pipeline on device. On error, pipelines
// created so far are destroyed.
func createKernels(device hal.Device) (*kernelSet, error) {
	ks := &kernelSet{}
	var err error
	if ks.nv12ToRGB, err = createKernel(device, nv12ToRGBKernel); err != nil {
		return nil, err
	}
	if ks.rgbToLuma, err = createKernel(device, rgbToLumaKernel); err != nil {
		ks.destroy(device)
		return nil, err
	}
	if ks.rgbToChroma, err = createKernel(device, rgbToChromaKernel); err != nil {
		ks.destroy(device)
		return nil, err
	}
	return ks, nil
}

func createKernel(device hal.Device, src kernelSource) (*kernel, error) {
	code, err := compileSPIRV(src.label, src.source)
	if err != nil {
		return nil, err
	}

	k := &kernel{label: src.label, inputs: src.inputs}
	k.shader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  src.label,
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s shader module: %w", src.label, err)
	}

	entries := make([]gputypes.BindGroupLayoutEntry, 0, src.inputs+2)
	entries = append(entries, gputypes.BindGroupLayoutEntry{
		Binding: 0, Visibility: gputypes.ShaderStageCompute,
		Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	})
	for i := 1; i <= src.inputs; i++ {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding: uint32(i), Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		})
	}
	entries = append(entries, gputypes.BindGroupLayoutEntry{
		Binding: uint32(src.inputs + 1), Visibility: gputypes.ShaderStageCompute,
		Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
	})

	k.bindLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: src.label + "_bind_layout", Entries: entries,
	})
	if err != nil {
		k.destroy(device)
		return nil, fmt.Errorf("create %s bind group layout: %w", src.label, err)
	}

	k.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: src.label + "_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{k.bindLayout},
	})
	if err != nil {
		k.destroy(device)
		return nil, fmt.Errorf("create %s pipeline layout: %w", src.label, err)
	}

	k.pipeline, err = device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: src.label + "_pipeline", Layout: k.pipeLayout,
		Compute: hal.ComputeState{Module: k.shader, EntryPoint: "main"},
	})
	if err != nil {
		k.destroy(device)
		return nil, fmt.Errorf("create %s compute pipeline: %w", src.label, err)
	}
	return k, nil
}

func (k *kernel) destroy(device hal.Device) {
	if k == nil || device == nil {
		return
	}
	if k.pipeline != nil {
		device.DestroyComputePipeline(k.pipeline)
	}
	if k.pipeLayout != nil {
		device.DestroyPipelineLayout(k.pipeLayout)
	}
	if k.bindLayout != nil {
		device.DestroyBindGroupLayout(k.bindLayout)
	}
	if k.shader != nil {
		device.DestroyShaderModule(k.shader)
	}
}

func (ks *kernelSet) destroy(device hal.Device) {
	if ks == nil {
		return
	}
	ks.nv12ToRGB.destroy(device)
	ks.rgbToLuma.destroy(device)
	ks.rgbToChroma.destroy(device)
}

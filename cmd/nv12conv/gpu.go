//go:build !nogpu

package main

import "github.com/gogpu/cvtcolor/gpu"

// gpuEnabled reports whether the registered GPU accelerator is ready.
func gpuEnabled() bool { return gpu.Enabled() }

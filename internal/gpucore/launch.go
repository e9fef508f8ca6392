// Package gpucore holds the backend-independent parts of the GPU conversion
// path: launch geometry and the uniform parameter block shared by the
// compute kernels.
package gpucore

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// WorkgroupSize is the number of invocations per workgroup in every kernel.
// It must match @workgroup_size in the WGSL sources.
const WorkgroupSize = 64

// ErrLaunchConfig is returned when a plane cannot be mapped onto a dispatch
// within the device limits.
var ErrLaunchConfig = errors.New("gpucore: launch configuration exceeds device limits")

// Limits is the subset of device limits that constrains a conversion launch.
type Limits struct {
	// MaxWorkgroupsPerDimension is the maximum workgroups per dispatch dimension.
	MaxWorkgroupsPerDimension uint32

	// MaxStorageBufferBindingSize is the maximum storage buffer binding size.
	MaxStorageBufferBindingSize uint64
}

// LimitsFrom extracts launch limits from device limits.
func LimitsFrom(l gputypes.Limits) Limits {
	return Limits{
		MaxWorkgroupsPerDimension:   l.MaxComputeWorkgroupsPerDimension,
		MaxStorageBufferBindingSize: l.MaxStorageBufferBindingSize,
	}
}

// DefaultLimits returns the WebGPU default launch limits.
func DefaultLimits() Limits {
	return LimitsFrom(gputypes.DefaultLimits())
}

// LaunchConfig describes the dispatch for one output plane: one invocation
// per 32-bit output word, folded into a 2D grid of workgroups.
type LaunchConfig struct {
	// Words is the number of 32-bit words in the plane.
	Words uint32

	// GroupsX and GroupsY are the dispatch dimensions.
	GroupsX uint32
	GroupsY uint32
}

// NewLaunchConfig computes the launch for a plane of size bytes.
func NewLaunchConfig(size int, lim Limits) (LaunchConfig, error) {
	if size <= 0 {
		return LaunchConfig{}, fmt.Errorf("%w: plane size %d", ErrLaunchConfig, size)
	}
	padded := uint64(WordAlign(size))
	if lim.MaxStorageBufferBindingSize != 0 && padded > lim.MaxStorageBufferBindingSize {
		return LaunchConfig{}, fmt.Errorf("%w: plane of %d bytes exceeds binding size %d",
			ErrLaunchConfig, padded, lim.MaxStorageBufferBindingSize)
	}
	maxDim := uint64(lim.MaxWorkgroupsPerDimension)
	if maxDim == 0 {
		return LaunchConfig{}, fmt.Errorf("%w: device reports no compute workgroups", ErrLaunchConfig)
	}

	words := padded / 4
	if words > uint64(^uint32(0)) {
		return LaunchConfig{}, fmt.Errorf("%w: %d words", ErrLaunchConfig, words)
	}
	groups := (words + WorkgroupSize - 1) / WorkgroupSize

	lc := LaunchConfig{Words: uint32(words), GroupsX: uint32(groups), GroupsY: 1}
	if groups > maxDim {
		y := (groups + maxDim - 1) / maxDim
		if y > maxDim {
			return LaunchConfig{}, fmt.Errorf("%w: %d workgroups", ErrLaunchConfig, groups)
		}
		lc.GroupsX = uint32(maxDim)
		lc.GroupsY = uint32(y)
	}
	return lc, nil
}

// Invocations returns the total number of invocations dispatched.
// It is at least Words; the kernels discard the surplus.
func (lc LaunchConfig) Invocations() uint64 {
	return uint64(lc.GroupsX) * uint64(lc.GroupsY) * WorkgroupSize
}

// WordAlign rounds n up to a multiple of 4.
func WordAlign(n int) int {
	return (n + 3) &^ 3
}

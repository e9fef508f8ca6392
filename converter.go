package cvtcolor

import (
	"errors"
	"runtime"
	"sync"

	"github.com/gogpu/cvtcolor/internal/kernel"
	"github.com/gogpu/cvtcolor/internal/parallel"
)

// Operation names used in *Error.Op.
const (
	OpNV12ToRGB = "NV12ToRGB"
	OpRGBToNV12 = "RGBToNV12"
)

// Converter converts frames between NV12 and packed RGB.
//
// A Converter owns a CPU worker pool, created on first use. It is safe for
// concurrent use; concurrent calls share the pool. Callers must not let
// other writers touch the planes of a call until it returns.
type Converter struct {
	opts options

	mu     sync.RWMutex // held for reading by calls, for writing by Close
	closed bool

	poolOnce sync.Once
	pool     *parallel.WorkerPool
}

// NewConverter creates a Converter with the given options.
func NewConverter(opts ...Option) *Converter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Converter{opts: o}
}

// NV12ToRGB converts an NV12 frame (luma plane inY, interleaved chroma plane
// inUV) to packed RGB in outRGB, interpreting the samples in range r.
//
// Each output pixel uses its own luma sample and the chroma pair of its 2x2
// block. Results are clamped to [0, 255] and rounded to nearest. Row padding
// in outRGB is left untouched. On a precondition failure nothing is written.
func (c *Converter) NV12ToRGB(inY, inUV, outRGB []byte, g Geometry, r Range) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return invalid(OpNV12ToRGB, ErrClosed)
	}
	if err := checkPlanes(g, nv12ToRGBPlanes(inY, inUV, outRGB)); err != nil {
		return invalid(OpNV12ToRGB, err)
	}
	spec := ColorSpec{Matrix: c.opts.matrix, Range: r}
	if err := spec.Validate(); err != nil {
		return invalid(OpNV12ToRGB, err)
	}

	if a := c.accelerator(); a != nil {
		err := a.NV12ToRGB(NV12Job{Y: inY, UV: inUV, RGB: outRGB, Geometry: g, Spec: spec})
		if !errors.Is(err, ErrFallbackToCPU) {
			return err
		}
		Logger().Debug("cvtcolor: accelerator declined", "op", OpNV12ToRGB, "accelerator", a.Name())
	}

	d := spec.Decode()
	return c.run(OpNV12ToRGB, g, func(b parallel.Band) {
		kernel.NV12ToRGBRows(&d, inY, inUV, outRGB, g.Width, g.Pitch, b.Start*2, b.End*2)
	})
}

// RGBToNV12 converts a packed RGB frame to NV12, writing luma to outY and
// interleaved chroma to outUV.
//
// Output uses the converter's matrix and encode range (limited range BT.601
// by default). Every 2x2 block gets exactly one chroma pair: the average of
// the block's four chroma values. Row padding is left untouched. On a
// precondition failure nothing is written.
func (c *Converter) RGBToNV12(inRGB, outY, outUV []byte, g Geometry) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return invalid(OpRGBToNV12, ErrClosed)
	}
	if err := checkPlanes(g, rgbToNV12Planes(inRGB, outY, outUV)); err != nil {
		return invalid(OpRGBToNV12, err)
	}
	spec := c.EncodeSpec()
	if err := spec.Validate(); err != nil {
		return invalid(OpRGBToNV12, err)
	}

	if a := c.accelerator(); a != nil {
		err := a.RGBToNV12(RGBJob{RGB: inRGB, Y: outY, UV: outUV, Geometry: g, Spec: spec})
		if !errors.Is(err, ErrFallbackToCPU) {
			return err
		}
		Logger().Debug("cvtcolor: accelerator declined", "op", OpRGBToNV12, "accelerator", a.Name())
	}

	e := spec.Encode()
	return c.run(OpRGBToNV12, g, func(b parallel.Band) {
		kernel.RGBToNV12Rows(&e, inRGB, outY, outUV, g.Width, g.Pitch, b.Start, b.End)
	})
}

// EncodeSpec returns the color spec RGBToNV12 produces.
func (c *Converter) EncodeSpec() ColorSpec {
	return ColorSpec{Matrix: c.opts.matrix, Range: c.opts.encodeRange}
}

// Workers returns the number of CPU workers the converter uses.
func (c *Converter) Workers() int {
	if c.opts.workers > 0 {
		return c.opts.workers
	}
	return runtime.GOMAXPROCS(0)
}

// Close releases the worker pool. Calls after Close fail with ErrClosed.
// Close is idempotent and waits for in-flight calls to finish.
func (c *Converter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.pool != nil {
		c.pool.Close()
	}
	return nil
}

// accelerator returns the registered accelerator unless disabled.
func (c *Converter) accelerator() GPUAccelerator {
	if c.opts.noAccel {
		return nil
	}
	return Accelerator()
}

// grid returns the worker pool, creating it on first use.
func (c *Converter) grid() *parallel.WorkerPool {
	c.poolOnce.Do(func() {
		c.pool = parallel.NewWorkerPool(c.opts.workers)
	})
	return c.pool
}

// run executes fn over the chroma rows of g on the CPU grid. Bands are whole
// chroma rows, so both directions split the frame the same way.
func (c *Converter) run(op string, g Geometry, fn func(parallel.Band)) error {
	pool := c.grid()
	bands := parallel.Plan(g.ChromaHeight(), pool.Workers())
	if err := pool.Dispatch(bands, fn); err != nil {
		return &Error{Op: op, Status: StatusExecutionFailure, Err: err}
	}
	return nil
}

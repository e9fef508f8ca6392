package cvtcolor

// Option configures a Converter during creation.
//
// Example:
//
//	// HD content, full-range output, CPU only
//	conv := cvtcolor.NewConverter(
//	    cvtcolor.WithMatrix(cvtcolor.MatrixBT709),
//	    cvtcolor.WithEncodeRange(cvtcolor.RangeFull),
//	    cvtcolor.WithoutAccelerator(),
//	)
type Option func(*options)

// options holds optional configuration for Converter creation.
type options struct {
	workers     int
	matrix      Matrix
	encodeRange Range
	noAccel     bool
}

// defaultOptions returns the default converter options: GOMAXPROCS workers,
// BT.601, limited range output, registered accelerator enabled.
func defaultOptions() options {
	return options{
		workers:     0, // GOMAXPROCS
		matrix:      MatrixBT601,
		encodeRange: RangeLimited,
	}
}

// WithWorkers sets the number of CPU workers. n <= 0 selects GOMAXPROCS.
// The worker count never changes the output bytes.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMatrix selects the matrix used in both directions.
func WithMatrix(m Matrix) Option {
	return func(o *options) {
		o.matrix = m
	}
}

// WithEncodeRange selects the range RGBToNV12 produces.
// The default is RangeLimited.
func WithEncodeRange(r Range) Option {
	return func(o *options) {
		o.encodeRange = r
	}
}

// WithoutAccelerator makes the Converter ignore any registered GPU
// accelerator and always use the CPU grid.
func WithoutAccelerator() Option {
	return func(o *options) {
		o.noAccel = true
	}
}

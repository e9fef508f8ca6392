// Command nv12conv converts between image files and raw NV12 frames.
//
// Usage:
//
//	nv12conv [flags] <input.png|jpg|bmp|tiff> <output.nv12>
//	nv12conv -width W -height H [flags] <input.nv12> <output.png|jpg|bmp|tiff>
//
// The direction follows the input extension: .nv12 and .yuv files are
// decoded, everything else is encoded. Raw frames are tightly packed, the Y
// plane followed by the interleaved UV plane.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gogpu/cvtcolor"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// config holds the parsed command line.
type config struct {
	input, output string
	width, height int
	pitch         int
	full          bool
	matrix        cvtcolor.Matrix
	workers       int
	cpu           bool
	verbose       bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("nv12conv: ")

	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cfg, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	fs := flag.NewFlagSet("nv12conv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage:
  nv12conv [flags] <input image> <output.nv12>
  nv12conv -width W -height H [flags] <input.nv12> <output image>

Flags:
`)
		fs.PrintDefaults()
	}

	cfg := &config{}
	fs.IntVar(&cfg.width, "width", 0, "frame width of a raw NV12 input")
	fs.IntVar(&cfg.height, "height", 0, "frame height of a raw NV12 input")
	fs.IntVar(&cfg.pitch, "pitch", 0, "in-memory row stride in bytes (default 3*width)")
	fs.BoolVar(&cfg.full, "full", false, "full range YUV instead of limited (studio) range")
	matrix := fs.String("matrix", "bt601", "YUV matrix: bt601 or bt709")
	fs.IntVar(&cfg.workers, "workers", 0, "CPU workers (default GOMAXPROCS)")
	fs.BoolVar(&cfg.cpu, "cpu", false, "never use the GPU")
	fs.BoolVar(&cfg.verbose, "v", false, "verbose (debug) logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return nil, fmt.Errorf("expected input and output paths, got %d arguments", fs.NArg())
	}
	cfg.input, cfg.output = fs.Arg(0), fs.Arg(1)

	m, err := cvtcolor.ParseMatrix(*matrix)
	if err != nil {
		return nil, err
	}
	cfg.matrix = m

	if isRawNV12(cfg.input) && (cfg.width <= 0 || cfg.height <= 0) {
		return nil, errors.New("decoding a raw NV12 frame needs -width and -height")
	}
	return cfg, nil
}

func run(cfg *config, stdout io.Writer) error {
	if cfg.verbose {
		cvtcolor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	opts := []cvtcolor.Option{
		cvtcolor.WithMatrix(cfg.matrix),
		cvtcolor.WithEncodeRange(cvtcolor.RangeOf(cfg.full)),
		cvtcolor.WithWorkers(cfg.workers),
	}
	if cfg.cpu {
		opts = append(opts, cvtcolor.WithoutAccelerator())
	}
	conv := cvtcolor.NewConverter(opts...)
	defer func() { _ = conv.Close() }()

	p := newPrinter()
	if isRawNV12(cfg.input) {
		return decode(conv, cfg, p, stdout)
	}
	return encode(conv, cfg, p, stdout)
}

func encode(conv *cvtcolor.Converter, cfg *config, p *message.Printer, stdout io.Writer) error {
	img, err := loadImage(cfg.input)
	if err != nil {
		return err
	}
	g := evenGeometry(img, cfg.pitch)
	if err := g.Validate(); err != nil {
		return fmt.Errorf("%s: %w", cfg.input, err)
	}

	rgb := packRGB(img, g)
	y := make([]byte, g.Height*g.Pitch)
	uv := make([]byte, g.ChromaHeight()*g.Pitch)

	start := time.Now()
	if err := conv.RGBToNV12(rgb, y, uv, g); err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := writeNV12(cfg.output, y, uv, g); err != nil {
		return err
	}
	p.Fprintf(stdout, "encoded %s (%dx%d, %d RGB bytes) -> %s (%d bytes, %v) in %v on %s\n",
		cfg.input, g.Width, g.Height, 3*g.Width*g.Height,
		cfg.output, rawSize(g), conv.EncodeSpec(), elapsed.Round(time.Microsecond), engine(cfg))
	return nil
}

func decode(conv *cvtcolor.Converter, cfg *config, p *message.Printer, stdout io.Writer) error {
	pitch := cfg.pitch
	if pitch <= 0 {
		pitch = 3 * cfg.width
	}
	g := cvtcolor.Geometry{Width: cfg.width, Height: cfg.height, Pitch: pitch}
	if err := g.Validate(); err != nil {
		return err
	}

	y, uv, err := readNV12(cfg.input, g)
	if err != nil {
		return err
	}
	rgb := make([]byte, g.Height*g.Pitch)

	r := cvtcolor.RangeOf(cfg.full)
	start := time.Now()
	if err := conv.NV12ToRGB(y, uv, rgb, g, r); err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := saveImage(cfg.output, unpackRGB(rgb, g)); err != nil {
		return err
	}
	p.Fprintf(stdout, "decoded %s (%d bytes, %v/%v) -> %s (%dx%d) in %v on %s\n",
		cfg.input, rawSize(g), cfg.matrix, r,
		cfg.output, g.Width, g.Height, elapsed.Round(time.Microsecond), engine(cfg))
	return nil
}

// engine names where conversions run.
func engine(cfg *config) string {
	if !cfg.cpu && gpuEnabled() {
		return "gpu"
	}
	return "cpu"
}

// newPrinter returns a printer for the locale in LANG, English otherwise.
func newPrinter() *message.Printer {
	return message.NewPrinter(localeTag(os.Getenv("LANG")))
}

// localeTag parses a POSIX locale such as "de_DE.UTF-8".
func localeTag(posix string) language.Tag {
	s, _, _ := strings.Cut(posix, ".")
	s, _, _ = strings.Cut(s, "@")
	if s == "" || s == "C" || s == "POSIX" {
		return language.English
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.English
	}
	return tag
}

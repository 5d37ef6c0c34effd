package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/df07/go-mesh-pathtracer/pkg/debug"
	"github.com/df07/go-mesh-pathtracer/pkg/renderer"
	"github.com/df07/go-mesh-pathtracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	scene      string
	configPath string
	outPath    string
	debugObj   string
	debugRays  int
	workers    int
	samples    int
	bounces    int
	dumpConfig bool
	list       bool
	scenesDir  string
	verbose    bool
	help       bool

	set map[string]bool // flags given explicitly
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.scene, "scene", "cornell", "Scene: 'cornell', 'triangle' or a path to an .obj file")
	fs.StringVar(&opts.configPath, "config", "", "TOML render configuration (see -help)")
	fs.StringVar(&opts.outPath, "out", "", "Output PNG (default output/<scene>/render_<timestamp>.png)")
	fs.StringVar(&opts.debugObj, "debug-obj", "", "Write traced rays and the scene to this OBJ file")
	fs.IntVar(&opts.debugRays, "debug-rays", 10000, "Maximum number of rays recorded by -debug-obj (0 = all)")
	fs.IntVar(&opts.workers, "workers", 1, "Parallel column workers (1 = sequential reference order)")
	fs.IntVar(&opts.samples, "samples", 0, "Override samples per pixel")
	fs.IntVar(&opts.bounces, "bounces", 0, "Override maximum bounces")
	fs.BoolVar(&opts.dumpConfig, "dump-config", false, "Print the effective configuration as TOML and exit")
	fs.BoolVar(&opts.list, "list", false, "List built-in scenes and the OBJ scenes in -scenes-dir, then exit")
	fs.StringVar(&opts.scenesDir, "scenes-dir", "scenes", "Directory scanned by -list")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if opts.help {
		fmt.Fprintln(output, "Mesh Path Tracer")
		fmt.Fprintln(output, "Usage: pathtracer [options]")
		fmt.Fprintln(output)
		fmt.Fprintln(output, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(output)
		fmt.Fprintln(output, "Available scenes:")
		for _, info := range scene.BuiltinScenes() {
			fmt.Fprintf(output, "  %-8s - %s\n", info.ID, info.Description)
		}
		fmt.Fprintf(output, "  %-8s - %s\n", "<file>", "Triangulated Wavefront OBJ with vertex normals and MTL materials")
		fmt.Fprint(output, renderer.ConfigHelp)
	}
	return opts, nil
}

// listScenes prints every scene -scene accepts
func listScenes(dir string, out io.Writer) error {
	scenes, err := scene.ListAllScenes(dir)
	if err != nil {
		return err
	}
	for _, info := range scenes {
		line := fmt.Sprintf("%-10s %-8s %s", info.ID, info.Type, info.Name)
		if info.Description != "" {
			line += " - " + info.Description
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

// buildConfig layers defaults, the built-in scene's view, the TOML file and
// explicit flags, in that order
func buildConfig(opts options) (renderer.Config, error) {
	config := renderer.DefaultConfig()
	if _, view, ok := scene.Builtin(opts.scene); ok {
		config.ApplyViewpoint(view)
	}

	if opts.configPath != "" {
		var err error
		config, err = renderer.OverlayConfig(config, opts.configPath)
		if err != nil {
			return renderer.Config{}, err
		}
	}

	if opts.set["workers"] {
		config.Workers = opts.workers
	}
	if opts.set["samples"] {
		config.SamplesPerPixel = opts.samples
	}
	if opts.set["bounces"] {
		config.MaxBounces = opts.bounces
	}
	return config, config.Validate()
}

// sceneName is used for the default output directory
func sceneName(sceneArg string) string {
	base := filepath.Base(sceneArg)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func outputPath(opts options, now time.Time) string {
	if opts.outPath != "" {
		return opts.outPath
	}
	timestamp := now.Format("20060102_150405")
	return filepath.Join("output", sceneName(opts.scene), fmt.Sprintf("render_%s.png", timestamp))
}

// zapLogger adapts a sugared zap logger to core.Logger
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (l zapLogger) Printf(format string, args ...interface{}) {
	l.sugar.Infof(strings.TrimSuffix(format, "\n"), args...)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.DisableStacktrace = true
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.Development = true
	}
	return config.Build()
}

// run renders one image as described by opts
func run(ctx context.Context, opts options, log *zap.Logger, stdout io.Writer) error {
	if opts.list {
		return listScenes(opts.scenesDir, stdout)
	}

	config, err := buildConfig(opts)
	if err != nil {
		return err
	}
	if opts.dumpConfig {
		return config.Encode(stdout)
	}

	sugar := log.Sugar()
	r, err := renderer.New(config, zapLogger{sugar: sugar})
	if err != nil {
		return err
	}

	if s, _, ok := scene.Builtin(opts.scene); ok {
		sugar.Infow("Using built-in scene", "scene", opts.scene)
		if err := r.SetScene(s); err != nil {
			return err
		}
	} else if err := r.LoadScene(opts.scene); err != nil {
		return err
	}

	var objWriter *debug.ObjWriter
	if opts.debugObj != "" {
		objWriter = debug.NewObjWriter(config.UnitScale)
		objWriter.SetRayLimit(opts.debugRays)
		r.SetDebugLogger(objWriter)
	}

	sugar.Debugw("Render configuration",
		"width", config.Width(),
		"height", config.Height(),
		"samples", config.SamplesPerPixel,
		"bounces", config.MaxBounces,
		"workers", config.Workers,
		"bounceOrigin", config.PathTracingConfig().BounceOrigin)

	buffer, stats, err := r.RenderContext(ctx)
	if err != nil {
		return err
	}

	filename := outputPath(opts, time.Now())
	if err := writePNG(filename, buffer); err != nil {
		return err
	}
	sugar.Infow("Render saved", "file", filename, "elapsed", stats.Elapsed, "rays", stats.RaysTraced)

	if objWriter != nil {
		objWriter.AddScene(r.Scene(), true)
		if err := objWriter.WriteFile(opts.debugObj); err != nil {
			return err
		}
		vertices, lines, faces := objWriter.Counts()
		sugar.Infow("Debug geometry saved", "file", opts.debugObj, "vertices", vertices, "lines", lines, "faces", faces)
	}
	return nil
}

func writePNG(filename string, buffer *renderer.PixelBuffer) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	if err := multierr.Append(png.Encode(file, buffer.ToRGBA()), file.Close()); err != nil {
		return fmt.Errorf("error saving PNG: %w", err)
	}
	return nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.help {
		return
	}

	log, err := newLogger(opts.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, log, os.Stdout); err != nil {
		log.Error("Render failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

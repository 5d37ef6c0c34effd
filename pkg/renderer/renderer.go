package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
	"github.com/df07/go-mesh-pathtracer/pkg/geometry"
	"github.com/df07/go-mesh-pathtracer/pkg/integrator"
	"github.com/df07/go-mesh-pathtracer/pkg/loaders"
	"github.com/df07/go-mesh-pathtracer/pkg/scene"
)

// ErrNoScene is returned when rendering before a scene was loaded
var ErrNoScene = errors.New("no scene loaded")

// Renderer casts one ray family per pixel through a fixed viewport and
// averages the path-traced samples into a PixelBuffer.
type Renderer struct {
	config     Config
	scene      *scene.Scene
	integrator *integrator.PathTracingIntegrator
	logger     core.Logger
}

// New validates the configuration
func New(config Config, logger core.Logger) (*Renderer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if _, err := core.NewSampler(config.Seed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	return &Renderer{
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(config.PathTracingConfig(), geometry.NewIntersector(config.Epsilon)),
		logger:     logger,
	}, nil
}

// Config returns the renderer's configuration
func (r *Renderer) Config() Config {
	return r.config
}

// Scene returns the current scene, or nil
func (r *Renderer) Scene() *scene.Scene {
	return r.scene
}

// LoadScene loads an OBJ scene. On failure the previous scene is dropped.
func (r *Renderer) LoadScene(path string) error {
	r.scene = nil
	start := time.Now()
	s, err := loaders.LoadOBJ(path, loaders.LoadOptions{UnitScale: r.config.UnitScale, Logger: r.logger})
	if err != nil {
		return err
	}
	r.scene = s
	r.logger.Printf("Loaded %s: %d meshes, %d triangles, %d materials in %v\n",
		path, s.MeshCount(), len(s.Triangles), len(s.Materials), time.Since(start))
	return nil
}

// SetScene installs an already built scene after validating it
func (r *Renderer) SetScene(s *scene.Scene) error {
	if s == nil {
		return ErrNoScene
	}
	if err := s.Validate(); err != nil {
		return err
	}
	r.scene = s
	return nil
}

// SetDebugLogger receives every traced ray segment (nil disables).
// With Workers > 1 the logger must be safe for concurrent use.
func (r *Renderer) SetDebugLogger(observer integrator.PathObserver) {
	r.integrator.SetObserver(observer)
}

// Render renders the scene into a new buffer. Without a scene the buffer is black.
func (r *Renderer) Render() *PixelBuffer {
	buffer, _, err := r.RenderContext(context.Background())
	if err != nil {
		r.logger.Printf("Render failed: %v\n", err)
		return NewPixelBuffer(r.config.Width(), r.config.Height())
	}
	return buffer
}

// RenderContext renders the scene, checking ctx between pixels. Every call
// reseeds from Config.Seed, so repeated renders give identical images.
func (r *Renderer) RenderContext(ctx context.Context) (*PixelBuffer, RenderStats, error) {
	if r.scene == nil {
		return nil, RenderStats{}, ErrNoScene
	}
	sampler, err := core.NewSampler(r.config.Seed)
	if err != nil {
		return nil, RenderStats{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	width, height := r.config.Width(), r.config.Height()
	buffer := NewPixelBuffer(width, height)
	start := time.Now()

	r.logger.Printf("Rendering %dx%d, %d samples per pixel, %d bounces, %d triangles\n",
		width, height, r.config.SamplesPerPixel, r.config.MaxBounces, len(r.scene.Triangles))

	var stats RenderStats
	if r.config.Workers > 1 {
		stats, err = r.renderParallel(ctx, buffer, sampler)
	} else {
		stats, err = r.renderSequential(ctx, buffer, sampler)
	}
	if err != nil {
		return nil, RenderStats{}, err
	}

	stats.Elapsed = time.Since(start)
	r.logger.Printf("Render completed: %s\n", stats)
	return buffer, stats, nil
}

// renderSequential visits column i outer and row j inner with the renderer's
// single running sampler. This order defines the reference sample stream.
func (r *Renderer) renderSequential(ctx context.Context, buffer *PixelBuffer, sampler *core.Sampler) (RenderStats, error) {
	var stats RenderStats
	for i := 0; i < buffer.Width; i++ {
		column, err := r.renderColumn(ctx, buffer, i, sampler)
		if err != nil {
			return RenderStats{}, err
		}
		stats.Add(column)
	}
	return stats, nil
}

// renderColumn renders every row of column i
func (r *Renderer) renderColumn(ctx context.Context, buffer *PixelBuffer, i int, sampler *core.Sampler) (RenderStats, error) {
	var stats RenderStats
	for j := 0; j < buffer.Height; j++ {
		if err := ctx.Err(); err != nil {
			return RenderStats{}, err
		}
		color, path := r.renderPixel(i, j, sampler)
		buffer.Set(i, j, color)
		stats.addPixel(r.config.SamplesPerPixel, path)
	}
	return stats, nil
}

// renderPixel averages SamplesPerPixel radiance samples along the pixel's ray
func (r *Renderer) renderPixel(i, j int, sampler *core.Sampler) (core.Vec3, integrator.PathStats) {
	ray := r.PrimaryRay(i, j)

	var sum core.Vec3
	var stats integrator.PathStats
	for s := 0; s < r.config.SamplesPerPixel; s++ {
		color, path := r.integrator.RayColor(ray, r.scene, sampler)
		sum = sum.Add(color)
		stats.Add(path)
	}
	return sum.Divide(float64(r.config.SamplesPerPixel)), stats
}

// PrimaryRay returns the ray for pixel (i, j): it starts on the viewport at
// upper_left + (i, 0, -j) and points away from the camera.
func (r *Renderer) PrimaryRay(i, j int) core.Ray {
	origin := arrayToVec(r.config.ViewportUpperLeft).Add(core.NewVec3(float64(i), 0, -float64(j)))
	direction := origin.Subtract(arrayToVec(r.config.CameraPosition))
	return core.NewRay(origin, direction)
}

// Inspect returns the nearest hit along the primary ray of pixel (i, j)
func (r *Renderer) Inspect(i, j int) (core.Ray, geometry.Hit, bool, error) {
	if r.scene == nil {
		return core.Ray{}, geometry.Hit{}, false, ErrNoScene
	}
	ray := r.PrimaryRay(i, j)
	hit, ok := geometry.NewIntersector(r.config.Epsilon).Nearest(r.scene, ray, r.config.AcneThreshold)
	return ray, hit, ok, nil
}

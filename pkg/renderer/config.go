package renderer

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
	"github.com/df07/go-mesh-pathtracer/pkg/geometry"
	"github.com/df07/go-mesh-pathtracer/pkg/integrator"
	"github.com/df07/go-mesh-pathtracer/pkg/loaders"
	"github.com/df07/go-mesh-pathtracer/pkg/scene"
)

// ErrInvalidConfig is wrapped by every Validate failure
var ErrInvalidConfig = errors.New("invalid render config")

// ConfigHelp documents the TOML configuration file
const ConfigHelp = `
The configuration file is TOML. Every key is optional and overrides the
built-in default. Float values must be written with a decimal point.

  camera_position      = [0.0, 0.0, 0.0]   eye position
  viewport_upper_left  = [-80.0, 100.0, 45.0]
                                           pixel (i, j) sits at upper_left + (i, 0, -j)
  viewport_width       = 160               image width in pixels
  aspect_ratio         = [16, 9]           width:height, height = width*h/w
  acne_threshold       = 0.0001            minimum accepted hit distance
  max_bounces          = 4                 surface interactions per path
  samples_per_pixel    = 16                averaged samples per pixel
  seed                 = [1, 2]            sampler seed, not both zero
  epsilon              = 2.2e-16           parallel-ray determinant cutoff
  exposure             = 256.0             radiance to display scale
  unit_scale           = 100.0             OBJ units to pixels
  legacy_bounce_origin = false             start bounces on the primary ray,
                                           matching legacy renders bit for bit
  workers              = 1                 >1 renders columns in parallel
`

// Config contains rendering configuration
type Config struct {
	CameraPosition    [3]float64 `toml:"camera_position"`
	ViewportUpperLeft [3]float64 `toml:"viewport_upper_left"`
	ViewportWidth     int        `toml:"viewport_width"`
	AspectRatio       [2]int     `toml:"aspect_ratio"`
	AcneThreshold     float64    `toml:"acne_threshold"`
	MaxBounces        int        `toml:"max_bounces"`
	SamplesPerPixel   int        `toml:"samples_per_pixel"`
	Seed              [2]uint64  `toml:"seed"`
	Epsilon           float64    `toml:"epsilon"`
	Exposure          float64    `toml:"exposure"`
	UnitScale         float64    `toml:"unit_scale"`
	// LegacyBounceOrigin starts every bounce from the primary ray. The default
	// bounces from each hit point, so its images are not bit-compatible with
	// renders made by the legacy tracer; set it for parity.
	LegacyBounceOrigin bool `toml:"legacy_bounce_origin"`
	Workers            int  `toml:"workers"` // 0 or 1 = sequential reference order
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	pt := integrator.DefaultPathTracingConfig()
	return Config{
		CameraPosition:    [3]float64{0, 0, 0},
		ViewportUpperLeft: [3]float64{-80, 100, 45},
		ViewportWidth:     160,
		AspectRatio:       [2]int{16, 9},
		AcneThreshold:     pt.AcneThreshold,
		MaxBounces:        pt.MaxBounces,
		SamplesPerPixel:   16,
		Seed:              [2]uint64{0x2545f4914f6cdd1d, 0x1b03738712fad5c9},
		Epsilon:           geometry.DefaultEpsilon,
		Exposure:          pt.Exposure,
		UnitScale:         loaders.DefaultUnitScale,
		Workers:           1,
	}
}

// LoadConfig reads a TOML file over DefaultConfig
func LoadConfig(path string) (Config, error) {
	return OverlayConfig(DefaultConfig(), path)
}

// OverlayConfig reads a TOML file over base. Keys missing from the file keep
// their base value; unknown keys are an error.
func OverlayConfig(base Config, path string) (Config, error) {
	config := base
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Encode writes the configuration as TOML
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks that the configuration can drive a render
func (c Config) Validate() error {
	switch {
	case c.ViewportWidth <= 0:
		return fmt.Errorf("%w: viewport_width must be positive, got %d", ErrInvalidConfig, c.ViewportWidth)
	case c.AspectRatio[0] <= 0 || c.AspectRatio[1] <= 0:
		return fmt.Errorf("%w: aspect_ratio must be positive, got %v", ErrInvalidConfig, c.AspectRatio)
	case c.Height() <= 0:
		return fmt.Errorf("%w: viewport height rounds to zero for width %d and aspect %v", ErrInvalidConfig, c.ViewportWidth, c.AspectRatio)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples_per_pixel must be positive, got %d", ErrInvalidConfig, c.SamplesPerPixel)
	case c.MaxBounces < 0:
		return fmt.Errorf("%w: max_bounces must not be negative, got %d", ErrInvalidConfig, c.MaxBounces)
	case c.AcneThreshold < 0:
		return fmt.Errorf("%w: acne_threshold must not be negative, got %g", ErrInvalidConfig, c.AcneThreshold)
	case c.Epsilon < 0:
		return fmt.Errorf("%w: epsilon must not be negative, got %g", ErrInvalidConfig, c.Epsilon)
	case c.UnitScale <= 0:
		return fmt.Errorf("%w: unit_scale must be positive, got %g", ErrInvalidConfig, c.UnitScale)
	case c.Seed[0] == 0 && c.Seed[1] == 0:
		return fmt.Errorf("%w: %v", ErrInvalidConfig, core.ErrZeroSeed)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Width returns the image width in pixels
func (c Config) Width() int {
	return c.ViewportWidth
}

// Height derives the image height from the width and aspect ratio
func (c Config) Height() int {
	if c.AspectRatio[0] == 0 {
		return 0
	}
	return c.ViewportWidth * c.AspectRatio[1] / c.AspectRatio[0]
}

// ApplyViewpoint replaces the camera settings with a scene's recommended view
func (c *Config) ApplyViewpoint(v scene.Viewpoint) {
	c.CameraPosition = vecToArray(v.CameraPosition)
	c.ViewportUpperLeft = vecToArray(v.ViewportUpperLeft)
	c.ViewportWidth = v.ViewportWidth
	c.AspectRatio = v.AspectRatio
}

// ResizeViewport changes the image width and moves the upper-left corner so
// the view stays centered where it was
func (c *Config) ResizeViewport(width int) {
	centerX := c.ViewportUpperLeft[0] + float64(c.ViewportWidth)/2
	centerZ := c.ViewportUpperLeft[2] - float64(c.Height())/2
	c.ViewportWidth = width
	c.ViewportUpperLeft[0] = centerX - float64(width)/2
	c.ViewportUpperLeft[2] = centerZ + float64(c.Height())/2
}

// PathTracingConfig extracts the per-path parameters
func (c Config) PathTracingConfig() integrator.PathTracingConfig {
	origin := integrator.BounceFromHit
	if c.LegacyBounceOrigin {
		origin = integrator.BounceFromPrimary
	}
	return integrator.PathTracingConfig{
		AcneThreshold: c.AcneThreshold,
		MaxBounces:    c.MaxBounces,
		Exposure:      c.Exposure,
		BounceOrigin:  origin,
	}
}

func arrayToVec(a [3]float64) core.Vec3 {
	return core.NewVec3(a[0], a[1], a[2])
}

func vecToArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

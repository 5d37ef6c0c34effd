package renderer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-mesh-pathtracer/pkg/integrator"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "render.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if config.Width() != 160 || config.Height() != 90 {
		t.Errorf("Expected 160x90, got %dx%d", config.Width(), config.Height())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"zero width", func(c *Config) { c.ViewportWidth = 0 }},
		{"negative aspect", func(c *Config) { c.AspectRatio = [2]int{16, -9} }},
		{"height rounds to zero", func(c *Config) { c.ViewportWidth = 1; c.AspectRatio = [2]int{16, 9} }},
		{"zero samples", func(c *Config) { c.SamplesPerPixel = 0 }},
		{"negative bounces", func(c *Config) { c.MaxBounces = -1 }},
		{"negative acne threshold", func(c *Config) { c.AcneThreshold = -1e-4 }},
		{"negative epsilon", func(c *Config) { c.Epsilon = -1 }},
		{"zero unit scale", func(c *Config) { c.UnitScale = 0 }},
		{"zero seed", func(c *Config) { c.Seed = [2]uint64{0, 0} }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)
			if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
			if _, err := New(config, nil); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New should reject the config, got %v", err)
			}
		})
	}

	config := DefaultConfig()
	config.MaxBounces = 0
	if err := config.Validate(); err != nil {
		t.Errorf("Zero bounces is a valid configuration: %v", err)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfigFile(t, `
viewport_width = 320
aspect_ratio = [4, 3]
max_bounces = 8
seed = [11, 13]
camera_position = [0.0, -50.0, 0.0]
legacy_bounce_origin = true
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	defaults := DefaultConfig()
	if config.Width() != 320 || config.Height() != 240 {
		t.Errorf("Expected 320x240, got %dx%d", config.Width(), config.Height())
	}
	if config.MaxBounces != 8 {
		t.Errorf("Expected 8 bounces, got %d", config.MaxBounces)
	}
	if config.Seed != [2]uint64{11, 13} {
		t.Errorf("Expected seed [11 13], got %v", config.Seed)
	}
	if config.CameraPosition != [3]float64{0, -50, 0} {
		t.Errorf("Expected camera (0,-50,0), got %v", config.CameraPosition)
	}
	if config.SamplesPerPixel != defaults.SamplesPerPixel || config.Exposure != defaults.Exposure {
		t.Errorf("Unset keys should keep their defaults, got %+v", config)
	}
	if got := config.PathTracingConfig().BounceOrigin; got != integrator.BounceFromPrimary {
		t.Errorf("Expected legacy bounce origin, got %v", got)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{"unknown key", "samples = 4\n", true},
		{"invalid value", "samples_per_pixel = 0\n", true},
		{"malformed", "viewport_width = [\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, tt.content))
			if err == nil {
				t.Fatal("Expected an error")
			}
			if tt.invalid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestConfigEncodeReloads(t *testing.T) {
	config := DefaultConfig()
	config.Workers = 4
	config.AcneThreshold = 0.5

	var buf bytes.Buffer
	if err := config.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), "samples_per_pixel") {
		t.Errorf("Encoded config should use TOML key names:\n%s", buf.String())
	}

	loaded, err := LoadConfig(writeConfigFile(t, buf.String()))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded != config {
		t.Errorf("Reloaded config differs:\n got %+v\nwant %+v", loaded, config)
	}
}

func TestOverlayConfigKeepsBase(t *testing.T) {
	base := DefaultConfig()
	base.ViewportWidth = 200
	base.AspectRatio = [2]int{1, 1}

	config, err := OverlayConfig(base, writeConfigFile(t, "max_bounces = 2\n"))
	if err != nil {
		t.Fatalf("OverlayConfig: %v", err)
	}
	if config.ViewportWidth != 200 || config.AspectRatio != [2]int{1, 1} {
		t.Errorf("Base values should survive, got width %d aspect %v", config.ViewportWidth, config.AspectRatio)
	}
	if config.MaxBounces != 2 {
		t.Errorf("Expected 2 bounces from the file, got %d", config.MaxBounces)
	}
}

func TestResizeViewportKeepsCenter(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		upperLeft [3]float64
	}{
		{"shrink", 2, [3]float64{-1, 100, 0.5}},
		{"same", 160, [3]float64{-80, 100, 45}},
		{"grow", 320, [3]float64{-160, 100, 90}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.ResizeViewport(tt.width)
			if config.Width() != tt.width {
				t.Errorf("Expected width %d, got %d", tt.width, config.Width())
			}
			if config.ViewportUpperLeft != tt.upperLeft {
				t.Errorf("Expected upper left %v, got %v", tt.upperLeft, config.ViewportUpperLeft)
			}
		})
	}
}

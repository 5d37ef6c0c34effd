package renderer

import (
	"image/color"
	"testing"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
)

func TestPixelBufferLayout(t *testing.T) {
	pb := NewPixelBuffer(3, 2)
	pb.Set(2, 1, core.NewVec3(1, 2, 3))

	if got := pb.Pixels[2+1*3]; got != core.NewVec3(1, 2, 3) {
		t.Errorf("Pixel (2,1) should be stored at index 5, got %v", got)
	}
	if got := pb.At(2, 1); got != core.NewVec3(1, 2, 3) {
		t.Errorf("At(2,1) = %v", got)
	}
	if !pb.At(0, 0).IsZero() {
		t.Errorf("New buffer should be black, got %v", pb.At(0, 0))
	}
}

func TestPixelBufferClamping(t *testing.T) {
	pb := NewPixelBuffer(2, 2)
	pb.Set(0, 0, core.NewVec3(300, -5, 12.7))
	pb.Set(1, 0, core.NewVec3(255, 0.99, 128))
	pb.Set(0, 1, core.NewVec3(0, 0, 0))
	pb.Set(1, 1, core.NewVec3(-1000, 1000, 255.5))

	tests := []struct {
		i, j     int
		expected color.RGBA
	}{
		{0, 0, color.RGBA{R: 255, G: 0, B: 12, A: 255}},
		{1, 0, color.RGBA{R: 255, G: 0, B: 128, A: 255}},
		{0, 1, color.RGBA{R: 0, G: 0, B: 0, A: 255}},
		{1, 1, color.RGBA{R: 0, G: 255, B: 255, A: 255}},
	}

	img := pb.ToRGBA()
	colors := pb.Colors()
	for _, tt := range tests {
		if got := img.RGBAAt(tt.i, tt.j); got != tt.expected {
			t.Errorf("RGBA (%d,%d): expected %v, got %v", tt.i, tt.j, tt.expected, got)
		}
		c := colors[tt.i+tt.j*pb.Width]
		if c.R != tt.expected.R || c.G != tt.expected.G || c.B != tt.expected.B {
			t.Errorf("Color (%d,%d): expected %v, got %v", tt.i, tt.j, tt.expected, c)
		}
	}
}

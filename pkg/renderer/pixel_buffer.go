package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
)

// PixelBuffer holds un-clamped averaged radiance, column i and row j at
// index i + j*Width. Row 0 is the top of the image.
type PixelBuffer struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewPixelBuffer creates a black buffer
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// At returns the radiance of pixel (i, j)
func (pb *PixelBuffer) At(i, j int) core.Vec3 {
	return pb.Pixels[i+j*pb.Width]
}

// Set stores the radiance of pixel (i, j)
func (pb *PixelBuffer) Set(i, j int, v core.Vec3) {
	pb.Pixels[i+j*pb.Width] = v
}

// Colors clamps every pixel to 0-255, in buffer order
func (pb *PixelBuffer) Colors() []core.Color {
	colors := make([]core.Color, len(pb.Pixels))
	for k, v := range pb.Pixels {
		colors[k] = core.ColorFromVec3(v)
	}
	return colors
}

// ToRGBA converts the buffer to an opaque image for encoding
func (pb *PixelBuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, pb.Width, pb.Height))
	for j := 0; j < pb.Height; j++ {
		for i := 0; i < pb.Width; i++ {
			c := core.ColorFromVec3(pb.At(i, j))
			img.SetRGBA(i, j, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return img
}

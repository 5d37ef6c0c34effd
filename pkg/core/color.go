package core

import "math"

// Color is an 8-bit-per-channel pixel color
type Color struct {
	R, G, B uint8
}

// NewColor creates a new Color
func NewColor(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromVec3 clamps each radiance component to [0, 255] and truncates it
func ColorFromVec3(v Vec3) Color {
	return Color{
		R: clampToByte(v.X),
		G: clampToByte(v.Y),
		B: clampToByte(v.Z),
	}
}

// Add returns the saturating sum of two colors
func (c Color) Add(other Color) Color {
	return Color{
		R: saturatingAdd(c.R, other.R),
		G: saturatingAdd(c.G, other.G),
		B: saturatingAdd(c.B, other.B),
	}
}

// Multiply scales every channel, clamping to [0, 255]
func (c Color) Multiply(scalar float64) Color {
	return Color{
		R: clampToByte(float64(c.R) * scalar),
		G: clampToByte(float64(c.G) * scalar),
		B: clampToByte(float64(c.B) * scalar),
	}
}

// Index returns channel i (0 = R, 1 = G, 2 = B)
func (c Color) Index(i int) uint8 {
	switch i {
	case 0:
		return c.R
	case 1:
		return c.G
	case 2:
		return c.B
	}
	panic("Color index out of range")
}

func saturatingAdd(a, b uint8) uint8 {
	sum := uint16(a) + uint16(b)
	if sum > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(sum)
}

// clampToByte maps NaN to 0
func clampToByte(x float64) uint8 {
	if !(x > 0) {
		return 0
	}
	if x >= math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(x)
}

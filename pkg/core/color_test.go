package core

import (
	"math"
	"testing"
)

func TestColorFromVec3(t *testing.T) {
	tests := []struct {
		name     string
		input    Vec3
		expected Color
	}{
		{"in range truncates", NewVec3(12.9, 0.5, 254.99), NewColor(12, 0, 254)},
		{"clamps high", NewVec3(256, 1000, 255), NewColor(255, 255, 255)},
		{"clamps negative", NewVec3(-1, -0.5, 3), NewColor(0, 0, 3)},
		{"NaN is black", NewVec3(math.NaN(), 1, 1), NewColor(0, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ColorFromVec3(tt.input); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestColor_AddAndMultiply(t *testing.T) {
	c := NewColor(200, 10, 0)

	if got := c.Add(NewColor(100, 10, 5)); got != NewColor(255, 20, 5) {
		t.Errorf("Expected saturating add, got %v", got)
	}
	if got := c.Multiply(0.5); got != NewColor(100, 5, 0) {
		t.Errorf("Expected (100, 5, 0), got %v", got)
	}
	if got := c.Multiply(2); got != NewColor(255, 20, 0) {
		t.Errorf("Expected (255, 20, 0), got %v", got)
	}
	if c.Index(0) != 200 || c.Index(1) != 10 || c.Index(2) != 0 {
		t.Errorf("Unexpected channel values for %v", c)
	}
}

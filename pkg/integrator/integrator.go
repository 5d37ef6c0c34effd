package integrator

import (
	"github.com/df07/go-mesh-pathtracer/pkg/core"
	"github.com/df07/go-mesh-pathtracer/pkg/scene"
)

// PathStats counts the work done while tracing one sample
type PathStats struct {
	Rays int // Rays intersected against the scene
	Hits int // Rays that hit a triangle
}

// Add accumulates another sample's counters
func (ps *PathStats) Add(other PathStats) {
	ps.Rays += other.Rays
	ps.Hits += other.Hits
}

// PathObserver receives every ray an integrator traces.
// t is the hit parameter, or 0 when the ray escaped the scene.
type PathObserver interface {
	ObserveRay(ray core.Ray, t float64, hit bool, bounce int)
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the radiance carried back along a primary ray
	RayColor(ray core.Ray, scene *scene.Scene, sampler *core.Sampler) (core.Vec3, PathStats)
}

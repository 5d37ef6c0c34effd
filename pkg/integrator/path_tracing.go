package integrator

import (
	"github.com/df07/go-mesh-pathtracer/pkg/core"
	"github.com/df07/go-mesh-pathtracer/pkg/geometry"
	"github.com/df07/go-mesh-pathtracer/pkg/scene"
)

// DefaultExposure scales accumulated light into display units
const DefaultExposure = 256.0

// BounceOrigin selects where a scattered ray starts
type BounceOrigin int

const (
	// BounceFromHit starts each bounce at the hit point of the ray that produced it
	BounceFromHit BounceOrigin = iota
	// BounceFromPrimary evaluates the primary ray at each hit's t instead.
	// Bounced rays then do not start on their own surfaces; kept only to
	// reproduce reference renders bit for bit.
	BounceFromPrimary
)

// String implements fmt.Stringer
func (b BounceOrigin) String() string {
	switch b {
	case BounceFromHit:
		return "hit"
	case BounceFromPrimary:
		return "primary"
	}
	return "unknown"
}

// PathTracingConfig contains the per-path parameters
type PathTracingConfig struct {
	AcneThreshold float64      // Minimum accepted hit distance
	MaxBounces    int          // Maximum number of surface interactions per path
	Exposure      float64      // Scale applied to the accumulated light
	BounceOrigin  BounceOrigin // Where scattered rays start
}

// DefaultPathTracingConfig returns the reference parameters
func DefaultPathTracingConfig() PathTracingConfig {
	return PathTracingConfig{
		AcneThreshold: 1e-4,
		MaxBounces:    4,
		Exposure:      DefaultExposure,
		BounceOrigin:  BounceFromHit,
	}
}

// PathTracingIntegrator traces diffuse paths: each hit adds its emission
// weighted by the throughput, multiplies the throughput by its diffuse
// reflectance and scatters around the face normal.
type PathTracingIntegrator struct {
	config      PathTracingConfig
	intersector geometry.Intersector
	observer    PathObserver
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config PathTracingConfig, intersector geometry.Intersector) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config:      config,
		intersector: intersector,
	}
}

// SetObserver installs an observer notified of every traced ray (nil disables)
func (pt *PathTracingIntegrator) SetObserver(observer PathObserver) {
	pt.observer = observer
}

// pathState is the Alive state of a path; a path is Terminated once
// advance returns false.
type pathState struct {
	ray         core.Ray
	throughput  core.Vec3
	accumulated core.Vec3
	bounce      int
}

// RayColor traces one sample along the primary ray and returns its
// exposure-scaled radiance. Clamping to a pixel range is left to the sink.
func (pt *PathTracingIntegrator) RayColor(primary core.Ray, s *scene.Scene, sampler *core.Sampler) (core.Vec3, PathStats) {
	state := pathState{
		ray:        primary,
		throughput: core.NewVec3(1, 1, 1),
	}
	var stats PathStats

	for state.bounce < pt.config.MaxBounces {
		if !pt.advance(&state, primary, s, sampler, &stats) {
			break
		}
	}

	return state.accumulated.Multiply(pt.config.Exposure), stats
}

// advance intersects the current ray and applies one transition.
// It returns false when the ray escaped the scene.
func (pt *PathTracingIntegrator) advance(state *pathState, primary core.Ray, s *scene.Scene, sampler *core.Sampler, stats *PathStats) bool {
	stats.Rays++
	hit, isHit := pt.intersector.Nearest(s, state.ray, pt.config.AcneThreshold)
	if pt.observer != nil {
		pt.observer.ObserveRay(state.ray, hit.T, isHit, state.bounce)
	}
	if !isHit {
		return false
	}
	stats.Hits++

	mat := s.TriangleMaterial(hit.Triangle)
	state.accumulated = state.accumulated.Add(mat.Emission.MultiplyVec(state.throughput))
	state.throughput = state.throughput.MultiplyVec(mat.Diffuse)

	origin := state.ray.At(hit.T)
	if pt.config.BounceOrigin == BounceFromPrimary {
		origin = primary.At(hit.T)
	}
	direction := s.FaceNormal(hit.Triangle).Add(sampler.GaussianVec3())

	state.ray = core.NewRay(origin, direction)
	state.bounce++
	return true
}

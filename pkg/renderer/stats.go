package renderer

import (
	"fmt"
	"time"

	"github.com/df07/go-mesh-pathtracer/pkg/integrator"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels  int           // Total number of pixels rendered
	TotalSamples int           // Total number of samples taken
	RaysTraced   int           // Rays intersected against the scene, all bounces
	RayHits      int           // Traced rays that hit a triangle
	Elapsed      time.Duration // Wall time of the render
}

// Add merges the counters of a partial render
func (rs *RenderStats) Add(other RenderStats) {
	rs.TotalPixels += other.TotalPixels
	rs.TotalSamples += other.TotalSamples
	rs.RaysTraced += other.RaysTraced
	rs.RayHits += other.RayHits
}

// addPixel records one finished pixel
func (rs *RenderStats) addPixel(samples int, path integrator.PathStats) {
	rs.TotalPixels++
	rs.TotalSamples += samples
	rs.RaysTraced += path.Rays
	rs.RayHits += path.Hits
}

// AverageRaysPerSample returns the mean path length in traced rays
func (rs RenderStats) AverageRaysPerSample() float64 {
	if rs.TotalSamples == 0 {
		return 0
	}
	return float64(rs.RaysTraced) / float64(rs.TotalSamples)
}

// String implements fmt.Stringer
func (rs RenderStats) String() string {
	return fmt.Sprintf("%d pixels, %d samples, %d rays (%d hits, %.2f rays/sample) in %v",
		rs.TotalPixels, rs.TotalSamples, rs.RaysTraced, rs.RayHits, rs.AverageRaysPerSample(), rs.Elapsed)
}

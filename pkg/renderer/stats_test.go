package renderer

import (
	"strings"
	"testing"

	"github.com/df07/go-mesh-pathtracer/pkg/integrator"
)

func TestRenderStatsAccumulate(t *testing.T) {
	var column RenderStats
	column.addPixel(4, integrator.PathStats{Rays: 10, Hits: 7})
	column.addPixel(4, integrator.PathStats{Rays: 6, Hits: 2})

	var total RenderStats
	total.Add(column)
	total.Add(column)

	if total.TotalPixels != 4 || total.TotalSamples != 16 {
		t.Errorf("Expected 4 pixels and 16 samples, got %+v", total)
	}
	if total.RaysTraced != 32 || total.RayHits != 18 {
		t.Errorf("Expected 32 rays and 18 hits, got %+v", total)
	}
	if got := total.AverageRaysPerSample(); got != 2 {
		t.Errorf("Expected 2 rays per sample, got %f", got)
	}
	if !strings.Contains(total.String(), "4 pixels") {
		t.Errorf("Unexpected summary %q", total.String())
	}
}

func TestRenderStatsEmpty(t *testing.T) {
	var stats RenderStats
	if got := stats.AverageRaysPerSample(); got != 0 {
		t.Errorf("Expected 0 for no samples, got %f", got)
	}
}

package geometry

import (
	"github.com/df07/go-mesh-pathtracer/pkg/core"
	"github.com/df07/go-mesh-pathtracer/pkg/scene"
)

// Hit is the nearest accepted intersection of a ray with a scene
type Hit struct {
	T        float64 // Ray parameter of the hit point
	Triangle int     // Index into Scene.Triangles
	U, V     float64 // Barycentric coordinates on that triangle
}

// Intersector resolves nearest hits with a linear scan over every triangle.
// It holds no mutable state and may be shared between goroutines.
type Intersector struct {
	Epsilon float64 // Determinant cutoff for parallel rays
}

// NewIntersector creates an intersector with the given determinant cutoff
func NewIntersector(epsilon float64) Intersector {
	return Intersector{Epsilon: epsilon}
}

// Nearest returns the closest hit with t > acneThreshold over all meshes.
// Meshes and triangles are visited in storage order and a later hit only
// replaces the current one when strictly closer, so ties keep the first.
func (in Intersector) Nearest(s *scene.Scene, ray core.Ray, acneThreshold float64) (Hit, bool) {
	var best Hit
	found := false

	for mesh := 0; mesh < s.MeshCount(); mesh++ {
		if hit, ok := in.nearestInMesh(s, mesh, ray, acneThreshold); ok {
			if !found || hit.T < best.T {
				best = hit
				found = true
			}
		}
	}

	return best, found
}

// nearestInMesh scans one mesh's triangle range
func (in Intersector) nearestInMesh(s *scene.Scene, mesh int, ray core.Ray, acneThreshold float64) (Hit, bool) {
	var best Hit
	found := false

	lo, hi := s.MeshRange(mesh)
	for triangle := lo; triangle < hi; triangle++ {
		th, ok := HitTriangle(ray,
			s.TriangleVertex(triangle, 0),
			s.TriangleVertex(triangle, 1),
			s.TriangleVertex(triangle, 2),
			in.Epsilon, acneThreshold)
		if !ok {
			continue
		}
		if !found || th.T < best.T {
			best = Hit{T: th.T, Triangle: triangle, U: th.U, V: th.V}
			found = true
		}
	}

	return best, found
}

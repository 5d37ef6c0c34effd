package geometry

import (
	"math"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
)

// DefaultEpsilon is the determinant cutoff below which a ray is treated as
// parallel to a triangle: the float64 machine epsilon.
const DefaultEpsilon = 2.220446049250313e-16

// TriangleHit is an accepted ray-triangle intersection
type TriangleHit struct {
	T    float64 // Ray parameter of the hit point
	U, V float64 // Barycentric coordinates relative to v1 and v2
}

// HitTriangle tests a ray against the triangle v0, v1, v2 using the
// Möller-Trumbore algorithm. Hits at t <= acneThreshold are rejected so a
// ray leaving a surface does not immediately hit that surface again.
func HitTriangle(ray core.Ray, v0, v1, v2 core.Vec3, epsilon, acneThreshold float64) (TriangleHit, bool) {
	// Triangle edges from vertex 0
	e0 := v1.Subtract(v0)
	e1 := v2.Subtract(v0)

	rayCrossE1 := ray.Direction.Cross(e1)
	determinant := rayCrossE1.Dot(e0)

	// Ray parallel to the triangle plane, or degenerate triangle
	if math.Abs(determinant) < epsilon {
		return TriangleHit{}, false
	}

	invDet := 1.0 / determinant
	a := ray.Origin.Subtract(v0)
	u := invDet * a.Dot(rayCrossE1)
	if u < 0.0 || u > 1.0 {
		return TriangleHit{}, false
	}

	aCrossE0 := a.Cross(e0)
	v := invDet * ray.Direction.Dot(aCrossE0)
	if v < 0.0 || u+v > 1.0 {
		return TriangleHit{}, false
	}

	t := invDet * e1.Dot(aCrossE0)
	if !(t > acneThreshold) {
		return TriangleHit{}, false
	}

	return TriangleHit{T: t, U: u, V: v}, true
}

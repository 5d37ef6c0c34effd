package scene

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
)

// ErrInvalidScene is wrapped by every Validate failure
var ErrInvalidScene = errors.New("invalid scene")

// faceNormalTolerance bounds how far a stored face normal may drift from unit length
const faceNormalTolerance = 1e-9

// Triangle references scene arrays by index; it holds no geometry itself
type Triangle struct {
	Vertices     [3]int // Indices into Scene.Vertices
	PointNormals [3]int // Indices into Scene.PointNormals
	FaceNormal   int    // Index into Scene.FaceNormals
	Material     int    // Index into Scene.Materials
}

// Material is a purely diffuse surface that may also emit light
type Material struct {
	Diffuse  core.Vec3 // Reflectance per channel
	Emission core.Vec3 // Emitted radiance per channel
}

// Scene stores all geometry in flat arrays.
// A scene is built once and must not be mutated while a render is running.
type Scene struct {
	Vertices     []core.Vec3
	PointNormals []core.Vec3
	FaceNormals  []core.Vec3
	Triangles    []Triangle
	Materials    []Material
	MeshOffsets  []int // Ascending start index into Triangles, one per mesh
}

// MeshCount returns the number of meshes (objects) in the scene
func (s *Scene) MeshCount() int {
	return len(s.MeshOffsets)
}

// MeshRange returns the half-open triangle range [lo, hi) of a mesh.
// The last mesh extends to the end of Triangles.
func (s *Scene) MeshRange(mesh int) (lo, hi int) {
	lo = s.MeshOffsets[mesh]
	if mesh == len(s.MeshOffsets)-1 {
		return lo, len(s.Triangles)
	}
	return lo, s.MeshOffsets[mesh+1]
}

// MeshOf returns the mesh containing a triangle
func (s *Scene) MeshOf(triangle int) int {
	return sort.SearchInts(s.MeshOffsets, triangle+1) - 1
}

// TriangleVertex returns vertex v (0, 1 or 2) of a triangle
func (s *Scene) TriangleVertex(triangle, v int) core.Vec3 {
	return s.Vertices[s.Triangles[triangle].Vertices[v]]
}

// TriangleMaterial returns the material of a triangle
func (s *Scene) TriangleMaterial(triangle int) Material {
	return s.Materials[s.Triangles[triangle].Material]
}

// FaceNormal returns the precomputed face normal of a triangle
func (s *Scene) FaceNormal(triangle int) core.Vec3 {
	return s.FaceNormals[s.Triangles[triangle].FaceNormal]
}

// Validate checks the index and ordering invariants of the scene
func (s *Scene) Validate() error {
	for i, t := range s.Triangles {
		for k := 0; k < 3; k++ {
			if t.Vertices[k] < 0 || t.Vertices[k] >= len(s.Vertices) {
				return fmt.Errorf("%w: triangle %d vertex index %d out of range", ErrInvalidScene, i, t.Vertices[k])
			}
			if t.PointNormals[k] < 0 || t.PointNormals[k] >= len(s.PointNormals) {
				return fmt.Errorf("%w: triangle %d normal index %d out of range", ErrInvalidScene, i, t.PointNormals[k])
			}
		}
		if t.FaceNormal < 0 || t.FaceNormal >= len(s.FaceNormals) {
			return fmt.Errorf("%w: triangle %d face normal index %d out of range", ErrInvalidScene, i, t.FaceNormal)
		}
		if t.Material < 0 || t.Material >= len(s.Materials) {
			return fmt.Errorf("%w: triangle %d material index %d out of range", ErrInvalidScene, i, t.Material)
		}
	}

	for i, n := range s.FaceNormals {
		if !(math.Abs(n.Length()-1) <= faceNormalTolerance) {
			return fmt.Errorf("%w: face normal %d is not unit length (%v)", ErrInvalidScene, i, n)
		}
	}

	if len(s.Triangles) > 0 && len(s.MeshOffsets) == 0 {
		return fmt.Errorf("%w: %d triangles belong to no mesh", ErrInvalidScene, len(s.Triangles))
	}
	for i, offset := range s.MeshOffsets {
		if offset < 0 || offset >= len(s.Triangles) {
			return fmt.Errorf("%w: mesh %d offset %d out of range", ErrInvalidScene, i, offset)
		}
		if i > 0 && offset <= s.MeshOffsets[i-1] {
			return fmt.Errorf("%w: mesh offsets not strictly increasing at mesh %d", ErrInvalidScene, i)
		}
	}

	return nil
}

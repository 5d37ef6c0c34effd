package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
)

// ErrDegenerateTriangle is returned for a triangle whose face normal cannot be computed
var ErrDegenerateTriangle = errors.New("degenerate triangle")

// Builder assembles a Scene incrementally. Loaders and the built-in scenes
// both go through it so that face normals and mesh offsets are computed the
// same way everywhere.
type Builder struct {
	scene       Scene
	pendingMesh bool // BeginMesh was called and no triangle followed yet
}

// NewBuilder creates an empty scene builder
func NewBuilder() *Builder {
	return &Builder{}
}

// AddVertex appends a vertex and returns its index
func (b *Builder) AddVertex(v core.Vec3) int {
	b.scene.Vertices = append(b.scene.Vertices, v)
	return len(b.scene.Vertices) - 1
}

// AddPointNormal appends a per-vertex normal and returns its index
func (b *Builder) AddPointNormal(n core.Vec3) int {
	b.scene.PointNormals = append(b.scene.PointNormals, n)
	return len(b.scene.PointNormals) - 1
}

// AddMaterial appends a material and returns its index
func (b *Builder) AddMaterial(m Material) int {
	b.scene.Materials = append(b.scene.Materials, m)
	return len(b.scene.Materials) - 1
}

// VertexCount returns the number of vertices added so far
func (b *Builder) VertexCount() int {
	return len(b.scene.Vertices)
}

// PointNormalCount returns the number of point normals added so far
func (b *Builder) PointNormalCount() int {
	return len(b.scene.PointNormals)
}

// MaterialCount returns the number of materials added so far
func (b *Builder) MaterialCount() int {
	return len(b.scene.Materials)
}

// BeginMesh starts a new object. The mesh offset is recorded when its first
// triangle arrives, so objects without triangles are dropped.
func (b *Builder) BeginMesh() {
	b.pendingMesh = true
}

// AddTriangle appends a triangle and its face normal.
// Triangles added before any BeginMesh form the first mesh.
func (b *Builder) AddTriangle(vertices, pointNormals [3]int, material int) (int, error) {
	for _, vi := range vertices {
		if vi < 0 || vi >= len(b.scene.Vertices) {
			return 0, fmt.Errorf("vertex index %d out of range (have %d)", vi, len(b.scene.Vertices))
		}
	}

	normal, err := ComputeFaceNormal(
		b.scene.Vertices[vertices[0]],
		b.scene.Vertices[vertices[1]],
		b.scene.Vertices[vertices[2]],
	)
	if err != nil {
		return 0, err
	}

	if b.pendingMesh || len(b.scene.MeshOffsets) == 0 {
		b.scene.MeshOffsets = append(b.scene.MeshOffsets, len(b.scene.Triangles))
		b.pendingMesh = false
	}

	b.scene.FaceNormals = append(b.scene.FaceNormals, normal)
	b.scene.Triangles = append(b.scene.Triangles, Triangle{
		Vertices:     vertices,
		PointNormals: pointNormals,
		FaceNormal:   len(b.scene.FaceNormals) - 1,
		Material:     material,
	})
	return len(b.scene.Triangles) - 1, nil
}

// AddQuad adds the parallelogram corner, corner+u, corner+u+v, corner+v as
// two triangles sharing one point normal. The face normal points along v×u.
func (b *Builder) AddQuad(corner, u, v core.Vec3, material int) error {
	n, err := v.Cross(u).TryNormalize()
	if err != nil {
		return fmt.Errorf("%w: quad edges are parallel", ErrDegenerateTriangle)
	}
	ni := b.AddPointNormal(n)
	normals := [3]int{ni, ni, ni}

	p0 := b.AddVertex(corner)
	p1 := b.AddVertex(corner.Add(u))
	p2 := b.AddVertex(corner.Add(u).Add(v))
	p3 := b.AddVertex(corner.Add(v))

	if _, err := b.AddTriangle([3]int{p0, p1, p2}, normals, material); err != nil {
		return err
	}
	_, err = b.AddTriangle([3]int{p0, p2, p3}, normals, material)
	return err
}

// Build finalizes the scene. A scene without materials gets a single black
// material so that default material references stay in bounds.
func (b *Builder) Build() (*Scene, error) {
	s := b.scene
	if len(s.Materials) == 0 {
		s.Materials = append(s.Materials, Material{})
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ComputeFaceNormal returns normalize(e1 × e0) with e0 = v1-v0 and e1 = v2-v0
func ComputeFaceNormal(v0, v1, v2 core.Vec3) (core.Vec3, error) {
	e0 := v1.Subtract(v0)
	e1 := v2.Subtract(v0)

	n, err := e1.Cross(e0).TryNormalize()
	if err != nil {
		return core.Vec3{}, fmt.Errorf("%w: %v %v %v", ErrDegenerateTriangle, v0, v1, v2)
	}
	return n, nil
}

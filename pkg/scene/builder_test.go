package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
)

func TestBuilder_EmptyMeshesCollapse(t *testing.T) {
	b := NewBuilder()
	n := b.AddPointNormal(core.NewVec3(0, 0, 1))
	v0 := b.AddVertex(core.NewVec3(0, 0, 0))
	v1 := b.AddVertex(core.NewVec3(1, 0, 0))
	v2 := b.AddVertex(core.NewVec3(0, 1, 0))

	b.BeginMesh()
	b.BeginMesh()
	b.AddTriangle([3]int{v0, v1, v2}, [3]int{n, n, n}, 0)
	b.BeginMesh()
	b.BeginMesh()
	b.AddTriangle([3]int{v0, v1, v2}, [3]int{n, n, n}, 0)
	b.BeginMesh()

	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(s.MeshOffsets) != 2 || s.MeshOffsets[0] != 0 || s.MeshOffsets[1] != 1 {
		t.Errorf("Expected offsets [0 1], got %v", s.MeshOffsets)
	}
}

func TestBuilder_TrailingEmptyMesh(t *testing.T) {
	b := NewBuilder()
	n := b.AddPointNormal(core.NewVec3(0, 0, 1))
	v0 := b.AddVertex(core.NewVec3(0, 0, 0))
	v1 := b.AddVertex(core.NewVec3(1, 0, 0))
	v2 := b.AddVertex(core.NewVec3(0, 1, 0))

	if _, err := b.AddTriangle([3]int{v0, v1, v2}, [3]int{n, n, n}, 0); err != nil {
		t.Fatalf("AddTriangle: %v", err)
	}
	b.BeginMesh()

	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(s.MeshOffsets) != 1 || s.MeshOffsets[0] != 0 {
		t.Errorf("Expected offsets [0], got %v", s.MeshOffsets)
	}
}

func TestBuilder_RejectsBadTriangles(t *testing.T) {
	b := NewBuilder()
	v0 := b.AddVertex(core.NewVec3(0, 0, 0))
	v1 := b.AddVertex(core.NewVec3(1, 1, 1))
	v2 := b.AddVertex(core.NewVec3(2, 2, 2))

	if _, err := b.AddTriangle([3]int{v0, v1, v2}, [3]int{}, 0); !errors.Is(err, ErrDegenerateTriangle) {
		t.Errorf("Expected ErrDegenerateTriangle for collinear vertices, got %v", err)
	}
	if _, err := b.AddTriangle([3]int{v0, v1, 7}, [3]int{}, 0); err == nil {
		t.Error("Expected error for out of range vertex")
	}
	if len(b.scene.Triangles) != 0 || len(b.scene.FaceNormals) != 0 {
		t.Error("Rejected triangles must not be stored")
	}
}

func TestBuilder_AddQuadNormal(t *testing.T) {
	b := NewBuilder()
	u := core.NewVec3(2, 0, 0)
	v := core.NewVec3(0, 3, 0)
	if err := b.AddQuad(core.NewVec3(1, 1, 1), u, v, 0); err != nil {
		t.Fatalf("AddQuad: %v", err)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(s.Triangles) != 2 {
		t.Fatalf("Expected 2 triangles, got %d", len(s.Triangles))
	}
	want := core.NewVec3(0, 0, -1) // v x u
	for i := range s.Triangles {
		if s.FaceNormal(i) != want {
			t.Errorf("Triangle %d: expected face normal %v, got %v", i, want, s.FaceNormal(i))
		}
	}
	if s.PointNormals[0] != want {
		t.Errorf("Expected point normal %v, got %v", want, s.PointNormals[0])
	}
}

func TestComputeFaceNormal_UnitLength(t *testing.T) {
	n, err := ComputeFaceNormal(core.NewVec3(0, 0, 0), core.NewVec3(3, 1, 0), core.NewVec3(-1, 4, 2))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(n.Length()-1) > 1e-12 {
		t.Errorf("Expected unit normal, got length %f", n.Length())
	}
}

func TestBuiltinScenesAreValid(t *testing.T) {
	cornell, view := NewCornellScene()
	if err := cornell.Validate(); err != nil {
		t.Errorf("Cornell scene invalid: %v", err)
	}
	if cornell.MeshCount() != 8 {
		t.Errorf("Expected 8 meshes in Cornell scene, got %d", cornell.MeshCount())
	}
	if view.ViewportWidth <= 0 {
		t.Errorf("Expected positive viewport width, got %d", view.ViewportWidth)
	}

	tri, _ := NewTriangleScene(core.NewVec3(1, 1, 1))
	if err := tri.Validate(); err != nil {
		t.Errorf("Triangle scene invalid: %v", err)
	}
	if n := tri.FaceNormal(0); n != core.NewVec3(0, -1, 0) {
		t.Errorf("Expected triangle to face the camera, got normal %v", n)
	}
}

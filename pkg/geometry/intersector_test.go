package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
	"github.com/df07/go-mesh-pathtracer/pkg/scene"
)

// layer describes a unit right triangle in the plane z = Z
type layer struct {
	Z       float64
	newMesh bool
}

// buildLayers stacks triangles covering (0.25, 0.25) at the given depths
func buildLayers(t *testing.T, layers []layer) *scene.Scene {
	t.Helper()
	b := scene.NewBuilder()
	m := b.AddMaterial(scene.Material{Diffuse: core.NewVec3(1, 1, 1)})
	n := b.AddPointNormal(core.NewVec3(0, 0, 1))

	for _, l := range layers {
		if l.newMesh {
			b.BeginMesh()
		}
		v0 := b.AddVertex(core.NewVec3(0, 0, l.Z))
		v1 := b.AddVertex(core.NewVec3(1, 0, l.Z))
		v2 := b.AddVertex(core.NewVec3(0, 1, l.Z))
		if _, err := b.AddTriangle([3]int{v0, v1, v2}, [3]int{n, n, n}, m); err != nil {
			t.Fatalf("AddTriangle: %v", err)
		}
	}

	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

func TestIntersector_Nearest(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0.25, 0.25, 0), core.NewVec3(0, 0, 1))

	tests := []struct {
		name             string
		layers           []layer
		acneThreshold    float64
		shouldHit        bool
		expectedT        float64
		expectedTriangle int
	}{
		{
			name:             "Nearest in one mesh, near first",
			layers:           []layer{{Z: 1}, {Z: 2}},
			acneThreshold:    0.001,
			shouldHit:        true,
			expectedT:        1,
			expectedTriangle: 0,
		},
		{
			name:             "Nearest in one mesh, far first",
			layers:           []layer{{Z: 2}, {Z: 1}},
			acneThreshold:    0.001,
			shouldHit:        true,
			expectedT:        1,
			expectedTriangle: 1,
		},
		{
			name:             "Nearest across meshes",
			layers:           []layer{{Z: 3, newMesh: true}, {Z: 5}, {Z: 2, newMesh: true}},
			acneThreshold:    0.001,
			shouldHit:        true,
			expectedT:        2,
			expectedTriangle: 2,
		},
		{
			name:             "Triangles behind the ray are ignored",
			layers:           []layer{{Z: -1}, {Z: 4}},
			acneThreshold:    0.001,
			shouldHit:        true,
			expectedT:        4,
			expectedTriangle: 1,
		},
		{
			name:             "Acne threshold skips the surface at the origin",
			layers:           []layer{{Z: 0.0001}, {Z: 2}},
			acneThreshold:    0.001,
			shouldHit:        true,
			expectedT:        2,
			expectedTriangle: 1,
		},
		{
			name:             "Tie in one mesh keeps first",
			layers:           []layer{{Z: 1}, {Z: 1}},
			acneThreshold:    0.001,
			shouldHit:        true,
			expectedT:        1,
			expectedTriangle: 0,
		},
		{
			name:             "Tie across meshes keeps first",
			layers:           []layer{{Z: 1, newMesh: true}, {Z: 1, newMesh: true}},
			acneThreshold:    0.001,
			shouldHit:        true,
			expectedT:        1,
			expectedTriangle: 0,
		},
		{
			name:          "Everything behind",
			layers:        []layer{{Z: -1}, {Z: -2, newMesh: true}},
			acneThreshold: 0.001,
			shouldHit:     false,
		},
	}

	in := NewIntersector(DefaultEpsilon)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := buildLayers(t, tt.layers)
			hit, ok := in.Nearest(s, ray, tt.acneThreshold)

			if ok != tt.shouldHit {
				t.Fatalf("Expected hit=%v, got hit=%v (%+v)", tt.shouldHit, ok, hit)
			}
			if !ok {
				return
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got %f", tt.expectedT, hit.T)
			}
			if hit.Triangle != tt.expectedTriangle {
				t.Errorf("Expected triangle %d, got %d", tt.expectedTriangle, hit.Triangle)
			}
		})
	}
}

func TestIntersector_EmptyScene(t *testing.T) {
	s, err := scene.NewBuilder().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	if _, ok := NewIntersector(DefaultEpsilon).Nearest(s, ray, 0.001); ok {
		t.Error("Expected no hit in empty scene")
	}
}

func TestIntersector_EpsilonIsConfigurable(t *testing.T) {
	s := buildLayers(t, []layer{{Z: 1}})
	// Short direction vector: |determinant| = 1e-9
	ray := core.NewRay(core.NewVec3(0.25, 0.25, 0), core.NewVec3(0, 0, 1e-9))

	hit, ok := NewIntersector(DefaultEpsilon).Nearest(s, ray, 0.001)
	if !ok {
		t.Fatal("Expected hit with machine epsilon cutoff")
	}
	if math.Abs(hit.T-1e9) > 1 {
		t.Errorf("Expected t=1e9, got %f", hit.T)
	}
	if _, ok := NewIntersector(1e-3).Nearest(s, ray, 0.001); ok {
		t.Error("Expected a large epsilon to reject the ray")
	}
}

package scene

import "github.com/df07/go-mesh-pathtracer/pkg/core"

// Viewpoint is a recommended camera setup for a built-in scene
type Viewpoint struct {
	CameraPosition    core.Vec3
	ViewportUpperLeft core.Vec3
	ViewportWidth     int
	AspectRatio       [2]int
}

// NewCornellScene creates a Cornell box built from triangles with an emissive
// ceiling panel. The viewport looks along +Y; +Z is up.
func NewCornellScene() (*Scene, Viewpoint) {
	b := NewBuilder()

	white := b.AddMaterial(Material{Diffuse: core.NewVec3(0.73, 0.73, 0.73)})
	red := b.AddMaterial(Material{Diffuse: core.NewVec3(0.65, 0.05, 0.05)})
	green := b.AddMaterial(Material{Diffuse: core.NewVec3(0.12, 0.45, 0.15)})
	light := b.AddMaterial(Material{Emission: core.NewVec3(4, 4, 4)})

	const (
		boxSize   = 555.0
		half      = boxSize / 2
		near      = 560.0
		lightSize = 130.0
	)
	far := near + boxSize

	x := core.NewVec3(boxSize, 0, 0)
	y := core.NewVec3(0, boxSize, 0)
	z := core.NewVec3(0, 0, boxSize)

	// Every wall faces the inside of the box
	walls := []struct {
		corner, u, v core.Vec3
		material     int
	}{
		{core.NewVec3(-half, near, -half), y, x, white}, // floor, normal +Z
		{core.NewVec3(-half, near, half), x, y, white},  // ceiling, normal -Z
		{core.NewVec3(-half, far, -half), z, x, white},  // back wall, normal -Y
		{core.NewVec3(-half, near, -half), z, y, red},   // left wall, normal +X
		{core.NewVec3(half, near, -half), y, z, green},  // right wall, normal -X
	}
	for _, w := range walls {
		b.BeginMesh()
		if err := b.AddQuad(w.corner, w.u, w.v, w.material); err != nil {
			panic(err)
		}
	}

	b.BeginMesh()
	lightCorner := core.NewVec3(-lightSize/2, near+half-lightSize/2, half-1)
	if err := b.AddQuad(lightCorner, core.NewVec3(lightSize, 0, 0), core.NewVec3(0, lightSize, 0), light); err != nil {
		panic(err)
	}

	b.BeginMesh()
	addBlock(b, core.NewVec3(-150, near+150, -half), core.NewVec3(165, 165, 330), white)
	b.BeginMesh()
	addBlock(b, core.NewVec3(20, near+80, -half), core.NewVec3(165, 165, 165), white)

	s, err := b.Build()
	if err != nil {
		panic(err)
	}

	return s, Viewpoint{
		CameraPosition:    core.NewVec3(0, 0, 0),
		ViewportUpperLeft: core.NewVec3(-100, 200, 100),
		ViewportWidth:     200,
		AspectRatio:       [2]int{1, 1},
	}
}

// NewTriangleScene creates a single emissive triangle in front of a 160x90
// viewport, the smallest scene that produces a visible image.
func NewTriangleScene(emission core.Vec3) (*Scene, Viewpoint) {
	b := NewBuilder()
	m := b.AddMaterial(Material{Emission: emission})

	v0 := b.AddVertex(core.NewVec3(-100, 200, -60))
	v1 := b.AddVertex(core.NewVec3(0, 200, 80))
	v2 := b.AddVertex(core.NewVec3(100, 200, -60))
	n := b.AddPointNormal(core.NewVec3(0, -1, 0))

	if _, err := b.AddTriangle([3]int{v0, v1, v2}, [3]int{n, n, n}, m); err != nil {
		panic(err)
	}

	s, err := b.Build()
	if err != nil {
		panic(err)
	}

	return s, Viewpoint{
		CameraPosition:    core.NewVec3(0, 0, 0),
		ViewportUpperLeft: core.NewVec3(-80, 100, 45),
		ViewportWidth:     160,
		AspectRatio:       [2]int{16, 9},
	}
}

// addBlock adds an axis-aligned box with outward facing sides and no bottom
func addBlock(b *Builder, lo, size core.Vec3, material int) {
	x := core.NewVec3(size.X, 0, 0)
	y := core.NewVec3(0, size.Y, 0)
	z := core.NewVec3(0, 0, size.Z)
	hi := lo.Add(size)

	sides := []struct{ corner, u, v core.Vec3 }{
		{core.NewVec3(lo.X, lo.Y, hi.Z), y, x}, // top, normal +Z
		{lo, z, x},                             // front, normal -Y
		{core.NewVec3(lo.X, hi.Y, lo.Z), x, z}, // back, normal +Y
		{lo, y, z},                             // left, normal -X
		{core.NewVec3(hi.X, lo.Y, lo.Z), z, y}, // right, normal +X
	}
	for _, s := range sides {
		if err := b.AddQuad(s.corner, s.u, s.v, material); err != nil {
			panic(err)
		}
	}
}

// Package debug dumps traced rays and scene geometry as Wavefront OBJ so a
// render can be inspected in any 3D viewer.
package debug

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"go.uber.org/multierr"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
	"github.com/df07/go-mesh-pathtracer/pkg/scene"
)

type face struct {
	vertices [3]int
	normals  [3]int
}

// ObjWriter collects line segments and triangles and writes them as OBJ.
// Positions are divided by the unit scale to return to OBJ units.
// It is safe for concurrent use.
type ObjWriter struct {
	mu        sync.Mutex
	unitScale float64
	rayLimit  int
	rays      int

	vertices []core.Vec3
	normals  []core.Vec3
	lines    [][2]int
	faces    []face
}

// NewObjWriter creates an empty writer. A unitScale of 0 means 1.
func NewObjWriter(unitScale float64) *ObjWriter {
	if unitScale == 0 {
		unitScale = 1
	}
	return &ObjWriter{unitScale: unitScale}
}

// SetRayLimit caps the number of rays ObserveRay records (0 = unlimited)
func (w *ObjWriter) SetRayLimit(limit int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rayLimit = limit
}

// ObserveRay records a traced ray. Escaped rays are drawn one OBJ unit long.
func (w *ObjWriter) ObserveRay(ray core.Ray, t float64, hit bool, bounce int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rayLimit > 0 && w.rays >= w.rayLimit {
		return
	}
	w.rays++

	end := ray.At(t)
	if !hit {
		length := ray.Direction.Length()
		if length == 0 {
			return
		}
		end = ray.At(w.unitScale / length)
	}
	w.addSegment(ray.Origin, end)
}

// AddRay records the segment from the ray origin to ray.At(t)
func (w *ObjWriter) AddRay(ray core.Ray, t float64) {
	w.AddSegment(ray.Origin, ray.At(t))
}

// AddSegment records a line between two scene points
func (w *ObjWriter) AddSegment(a, b core.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.addSegment(a, b)
}

func (w *ObjWriter) addSegment(a, b core.Vec3) {
	first := w.addVertex(a)
	second := w.addVertex(b)
	w.lines = append(w.lines, [2]int{first, second})
}

func (w *ObjWriter) addVertex(v core.Vec3) int {
	w.vertices = append(w.vertices, v.Divide(w.unitScale))
	return len(w.vertices) - 1
}

// AddScene records every triangle of the scene. With withFaceNormals each
// face normal is also drawn as a one unit segment from the triangle centroid.
func (w *ObjWriter) AddScene(s *scene.Scene, withFaceNormals bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	vertexBase := len(w.vertices)
	normalBase := len(w.normals)
	for _, v := range s.Vertices {
		w.addVertex(v)
	}
	w.normals = append(w.normals, s.PointNormals...)

	for _, t := range s.Triangles {
		f := face{}
		for k := 0; k < 3; k++ {
			f.vertices[k] = vertexBase + t.Vertices[k]
			f.normals[k] = normalBase + t.PointNormals[k]
		}
		w.faces = append(w.faces, f)
	}

	if !withFaceNormals {
		return
	}
	for i := range s.Triangles {
		centroid := s.TriangleVertex(i, 0).
			Add(s.TriangleVertex(i, 1)).
			Add(s.TriangleVertex(i, 2)).
			Divide(3)
		w.addSegment(centroid, centroid.Add(s.FaceNormal(i).Multiply(w.unitScale)))
	}
}

// Counts returns the number of vertices, lines and faces recorded so far
func (w *ObjWriter) Counts() (vertices, lines, faces int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.vertices), len(w.lines), len(w.faces)
}

// Write emits v, vn, l and f statements in that order with 1-based indices
func (w *ObjWriter) Write(out io.Writer) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	bw := bufio.NewWriter(out)
	for _, v := range w.vertices {
		fmt.Fprintf(bw, "v %s\n", formatVec3(v))
	}
	for _, n := range w.normals {
		fmt.Fprintf(bw, "vn %s\n", formatVec3(n))
	}
	for _, l := range w.lines {
		fmt.Fprintf(bw, "l %d %d\n", l[0]+1, l[1]+1)
	}
	for _, f := range w.faces {
		fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n",
			f.vertices[0]+1, f.normals[0]+1,
			f.vertices[1]+1, f.normals[1]+1,
			f.vertices[2]+1, f.normals[2]+1)
	}
	return bw.Flush()
}

// WriteFile writes the OBJ to path, replacing any existing file
func (w *ObjWriter) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create debug OBJ: %w", err)
	}
	if err := multierr.Append(w.Write(file), file.Close()); err != nil {
		return fmt.Errorf("failed to write debug OBJ: %w", err)
	}
	return nil
}

func formatVec3(v core.Vec3) string {
	return strconv.FormatFloat(v.X, 'g', -1, 64) + " " +
		strconv.FormatFloat(v.Y, 'g', -1, 64) + " " +
		strconv.FormatFloat(v.Z, 'g', -1, 64)
}

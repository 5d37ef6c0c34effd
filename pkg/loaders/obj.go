package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
	"github.com/df07/go-mesh-pathtracer/pkg/scene"
)

// DefaultUnitScale converts OBJ meters into scene units (pixels)
const DefaultUnitScale = 100.0

// ErrLoad is wrapped by every scene loading failure
var ErrLoad = errors.New("scene load failed")

// LoadOptions controls how OBJ coordinates are interpreted
type LoadOptions struct {
	UnitScale float64     // Multiplier for vertex positions, 0 means DefaultUnitScale
	Logger    core.Logger // Receives warnings, nil discards them
}

// objParser accumulates one OBJ file into a scene builder
type objParser struct {
	path      string
	options   LoadOptions
	builder   *scene.Builder
	materials map[string]int
	material  int
	line      int

	warnedTextures bool
}

// LoadOBJ loads a triangulated Wavefront OBJ file and the MTL libraries it
// references. Every face must be a triangle with vertex normals.
func LoadOBJ(path string, options LoadOptions) (*scene.Scene, error) {
	if options.UnitScale == 0 {
		options.UnitScale = DefaultUnitScale
	}
	if options.Logger == nil {
		options.Logger = core.NopLogger{}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer file.Close()

	p := &objParser{
		path:      path,
		options:   options,
		builder:   scene.NewBuilder(),
		materials: make(map[string]int),
	}
	if err := p.parse(file); err != nil {
		return nil, err
	}

	s, err := p.builder.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	return s, nil
}

func (p *objParser) parse(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		p.line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := p.processLine(fields); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoad, p.path, err)
	}
	return nil
}

func (p *objParser) processLine(fields []string) error {
	switch fields[0] {
	case "v":
		v, err := parseVec3(fields)
		if err != nil {
			return p.errorf("vertex: %v", err)
		}
		p.builder.AddVertex(v.Multiply(p.options.UnitScale))
	case "vn":
		n, err := parseVec3(fields)
		if err != nil {
			return p.errorf("normal: %v", err)
		}
		n, err = n.TryNormalize()
		if err != nil {
			return p.errorf("normal: %v", err)
		}
		p.builder.AddPointNormal(n)
	case "o":
		p.builder.BeginMesh()
	case "f":
		return p.processFace(fields[1:])
	case "mtllib":
		if len(fields) < 2 {
			return p.errorf("mtllib without a file name")
		}
		for _, name := range fields[1:] {
			if err := p.loadMaterials(filepath.Join(filepath.Dir(p.path), name)); err != nil {
				return err
			}
		}
	case "usemtl":
		if len(fields) != 2 {
			return p.errorf("usemtl expects one material name")
		}
		index, ok := p.materials[fields[1]]
		if !ok {
			return p.errorf("unknown material %q", fields[1])
		}
		p.material = index
	}
	// vt, g, s, l and other directives carry nothing the renderer uses
	return nil
}

func (p *objParser) processFace(elements []string) error {
	if len(elements) != 3 {
		return p.errorf("face has %d vertices, only triangles are supported", len(elements))
	}

	var vertices, normals [3]int
	for k, element := range elements {
		refs := strings.Split(element, "/")
		if len(refs) != 3 || refs[2] == "" {
			return p.errorf("face element %q has no vertex normal", element)
		}

		var err error
		if vertices[k], err = resolveIndex(refs[0], p.builder.VertexCount()); err != nil {
			return p.errorf("face vertex %q: %v", element, err)
		}
		if normals[k], err = resolveIndex(refs[2], p.builder.PointNormalCount()); err != nil {
			return p.errorf("face normal %q: %v", element, err)
		}
		if refs[1] != "" && !p.warnedTextures {
			p.options.Logger.Printf("%s:%d: texture coordinates are not supported, ignoring\n", p.path, p.line)
			p.warnedTextures = true
		}
	}

	if _, err := p.builder.AddTriangle(vertices, normals, p.material); err != nil {
		return fmt.Errorf("%w: %s:%d: %w", ErrLoad, p.path, p.line, err)
	}
	return nil
}

// loadMaterials appends an MTL library. Names defined again later win.
func (p *objParser) loadMaterials(path string) error {
	materials, err := LoadMTL(path)
	if err != nil {
		return err
	}
	for _, m := range materials {
		p.materials[m.Name] = p.builder.AddMaterial(m.Material)
	}
	return nil
}

func (p *objParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s:%d: %s", ErrLoad, p.path, p.line, fmt.Sprintf(format, args...))
}

// resolveIndex converts a 1-based or negative relative OBJ index to a 0-based one
func resolveIndex(ref string, count int) (int, error) {
	index, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", ref)
	}
	switch {
	case index > 0 && index <= count:
		return index - 1, nil
	case index < 0 && -index <= count:
		return count + index, nil
	}
	return 0, fmt.Errorf("index %d out of range (have %d)", index, count)
}

// parseVec3 reads the three components after the keyword. A fourth
// component (the OBJ w weight) is ignored.
func parseVec3(fields []string) (core.Vec3, error) {
	if len(fields) < 4 {
		return core.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(fields)-1)
	}
	var c [3]float64
	for k := range c {
		f, err := strconv.ParseFloat(fields[k+1], 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid number %q", fields[k+1])
		}
		c[k] = f
	}
	return core.NewVec3(c[0], c[1], c[2]), nil
}

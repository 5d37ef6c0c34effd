package loaders

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/df07/go-mesh-pathtracer/pkg/scene"
)

// NamedMaterial is one newmtl block of an MTL library
type NamedMaterial struct {
	Name     string
	Material scene.Material
}

// LoadMTL reads the diffuse (Kd) and emission (Ke) colors of every material
// in file order. Other statements are ignored.
func LoadMTL(path string) ([]NamedMaterial, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer file.Close()

	var materials []NamedMaterial
	line := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: %s:%d: newmtl expects one name", ErrLoad, path, line)
			}
			materials = append(materials, NamedMaterial{Name: fields[1]})
		case "Kd", "Ke":
			if len(materials) == 0 {
				return nil, fmt.Errorf("%w: %s:%d: %s before newmtl", ErrLoad, path, line, fields[0])
			}
			color, err := parseVec3(fields)
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d: %s: %v", ErrLoad, path, line, fields[0], err)
			}
			current := &materials[len(materials)-1].Material
			if fields[0] == "Kd" {
				current.Diffuse = color
			} else {
				current.Emission = color
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	return materials, nil
}

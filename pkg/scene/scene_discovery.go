package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
)

// SceneInfo describes a scene that can be passed to the -scene flag
type SceneInfo struct {
	ID          string // Value for -scene
	Name        string // Display name
	Description string // Optional description
	Type        string // "builtin" or "obj"
	FilePath    string // Path to the OBJ file (obj type only)
}

type builtinScene struct {
	info   SceneInfo
	create func() (*Scene, Viewpoint)
}

var builtinScenes = []builtinScene{
	{
		info: SceneInfo{
			ID:          "cornell",
			Name:        "Cornell Box",
			Description: "Cornell box built from triangles with a ceiling light",
			Type:        "builtin",
		},
		create: NewCornellScene,
	},
	{
		info: SceneInfo{
			ID:          "triangle",
			Name:        "Triangle",
			Description: "A single warm emissive triangle",
			Type:        "builtin",
		},
		create: func() (*Scene, Viewpoint) {
			return NewTriangleScene(core.NewVec3(1, 0.85, 0.6))
		},
	},
}

// Builtin creates the built-in scene with the given ID and its recommended view
func Builtin(id string) (*Scene, Viewpoint, bool) {
	for _, b := range builtinScenes {
		if b.info.ID == id {
			s, view := b.create()
			return s, view, true
		}
	}
	return nil, Viewpoint{}, false
}

// BuiltinScenes lists the built-in scenes in a fixed order
func BuiltinScenes() []SceneInfo {
	infos := make([]SceneInfo, len(builtinScenes))
	for i, b := range builtinScenes {
		infos[i] = b.info
	}
	return infos
}

// ListOBJScenes scans dir for .obj files. A missing directory yields no scenes.
func ListOBJScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.obj"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		info, err := ParseOBJMetadata(filePath)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ParseOBJMetadata reads "# Scene:" and "# Description:" from the leading
// comment block of an OBJ file. The name falls back to the file name.
func ParseOBJMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := SceneInfo{
		ID:       filePath,
		Name:     titleCase(nameWithoutExt),
		Type:     "obj",
		FilePath: filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, fmt.Errorf("failed to read scene metadata: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		switch {
		case strings.HasPrefix(content, "Scene:"):
			info.Name = strings.TrimSpace(strings.TrimPrefix(content, "Scene:"))
		case strings.HasPrefix(content, "Description:"):
			info.Description = strings.TrimSpace(strings.TrimPrefix(content, "Description:"))
		}
	}

	return info, scanner.Err()
}

// ListAllScenes returns the built-in scenes followed by the OBJ scenes in dir
func ListAllScenes(dir string) ([]SceneInfo, error) {
	objScenes, err := ListOBJScenes(dir)
	if err != nil {
		return nil, err
	}
	return append(BuiltinScenes(), objScenes...), nil
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}

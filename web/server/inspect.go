package server

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
	"github.com/df07/go-mesh-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for pixel inspection
type InspectResponse struct {
	Hit       bool         `json:"hit"`
	Origin    [3]float64   `json:"origin"`    // Primary ray origin on the viewport
	Direction [3]float64   `json:"direction"` // Primary ray direction, not normalized
	Distance  float64      `json:"distance"`  // Ray parameter t of the hit
	Point     [3]float64   `json:"point"`
	Normal    [3]float64   `json:"normal"` // Face normal
	Triangle  int          `json:"triangle"`
	Mesh      int          `json:"mesh"`
	Material  MaterialInfo `json:"material"`
}

// MaterialInfo describes the material of an inspected triangle
type MaterialInfo struct {
	Index    int        `json:"index"`
	Diffuse  [3]float64 `json:"diffuse"`
	Emission [3]float64 `json:"emission"`
	Color    string     `json:"color"` // Diffuse reflectance as #rrggbb
}

// handleInspect casts the primary ray of pixel (x, y) and reports what it hits
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	req, err := parseRenderRequest(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	rt, err := s.newRenderer(req, nil)
	if err != nil {
		s.logger.Warn("Inspect setup failed", zap.String("scene", req.Scene), zap.Error(err))
		writeError(w, statusFor(err), err.Error())
		return
	}

	config := rt.Config()
	x, err := parseIntParam(values, "x", -1, 0, config.Width()-1)
	if err == nil && x < 0 {
		err = fmt.Errorf("x is required")
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	y, err := parseIntParam(values, "y", -1, 0, config.Height()-1)
	if err == nil && y < 0 {
		err = fmt.Errorf("y is required")
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ray, hit, ok, err := rt.Inspect(x, y)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := InspectResponse{
		Hit:       ok,
		Origin:    toArray(ray.Origin),
		Direction: toArray(ray.Direction),
	}
	if ok {
		sc := rt.Scene()
		tri := sc.Triangles[hit.Triangle]
		response.Distance = hit.T
		response.Point = toArray(ray.At(hit.T))
		response.Normal = toArray(sc.FaceNormal(hit.Triangle))
		response.Triangle = hit.Triangle
		response.Mesh = sc.MeshOf(hit.Triangle)
		response.Material = materialInfo(tri.Material, sc.Materials[tri.Material])
	}
	writeJSON(w, http.StatusOK, response)
}

func materialInfo(index int, mat scene.Material) MaterialInfo {
	c := core.ColorFromVec3(mat.Diffuse.Multiply(255))
	return MaterialInfo{
		Index:    index,
		Diffuse:  toArray(mat.Diffuse),
		Emission: toArray(mat.Emission),
		Color:    fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B),
	}
}

func toArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

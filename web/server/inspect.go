package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lindskogen/progressive-pathtracer/pkg/geometry"
	"github.com/lindskogen/progressive-pathtracer/pkg/loaders"
	"github.com/lindskogen/progressive-pathtracer/pkg/material"
	"github.com/lindskogen/progressive-pathtracer/pkg/renderer"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	ObjectIndex  int                    `json:"objectIndex"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float32             `json:"point"`
	Normal       [3]float32             `json:"normal"`
	Distance     float32                `json:"distance"`
	Properties   map[string]interface{} `json:"properties"`
}

func vec3Array(v mgl32.Vec3) [3]float32 {
	return [3]float32{v.X(), v.Y(), v.Z()}
}

func hexColor(c mgl32.Vec3) string {
	c = mgl32.Vec3{mgl32.Clamp(c.X(), 0, 1), mgl32.Clamp(c.Y(), 0, 1), mgl32.Clamp(c.Z(), 0, 1)}
	return fmt.Sprintf("#%02x%02x%02x", int(c.X()*255), int(c.Y()*255), int(c.Z()*255))
}

// extractMaterialInfo classifies a material and lists its parameters
func (s *Server) extractMaterialInfo(mat *material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	properties["albedo"] = vec3Array(mat.Albedo)
	properties["color"] = hexColor(mat.Albedo)
	properties["roughness"] = mat.Roughness
	properties["metallic"] = mat.Metallic

	switch {
	case mat.IsEmissive():
		properties["emission"] = vec3Array(mat.Emission())
		properties["emissionPower"] = mat.EmissionPower
		properties["color"] = hexColor(mat.EmissionColor)
		return "emissive", properties
	case mat.Metallic > 0:
		return "metal", properties
	default:
		return "diffuse", properties
	}
}

// extractGeometryInfo lists the parameters of a sphere
func (s *Server) extractGeometryInfo(sphere geometry.Sphere) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	properties["center"] = vec3Array(sphere.Center)
	properties["radius"] = sphere.Radius
	return "sphere", properties
}

// handleInspect casts the primary ray behind one pixel and reports what it hit
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	inspectReq := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= inspectReq.Width || pixelY < 0 || pixelY >= inspectReq.Height {
		writeJSONError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	sceneObj, err := loaders.Resolve(inspectReq.Scene)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Unknown scene: "+inspectReq.Scene)
		return
	}

	camera := renderer.NewCamera(renderer.DefaultCameraConfig())
	camera.Resize(inspectReq.Width, inspectReq.Height)
	tracer := renderer.NewRenderer(renderer.DefaultConfig(), nil)

	payload, hit := tracer.Inspect(sceneObj, camera, pixelX, pixelY)
	if !hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	sphere := sceneObj.Spheres[payload.ObjectIndex]
	materialType, materialProps := s.extractMaterialInfo(sphere.Material)
	geometryType, geometryProps := s.extractGeometryInfo(sphere)

	response := InspectResponse{
		Hit:          true,
		ObjectIndex:  payload.ObjectIndex,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vec3Array(payload.WorldPosition),
		Normal:       vec3Array(payload.WorldNormal),
		Distance:     payload.HitDistance,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	}

	writeJSON(w, http.StatusOK, response)
}

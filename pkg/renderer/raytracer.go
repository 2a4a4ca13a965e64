package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lindskogen/progressive-pathtracer/pkg/core"
	"github.com/lindskogen/progressive-pathtracer/pkg/scene"
)

// HitPayload describes the nearest intersection of a ray with the scene
type HitPayload struct {
	HitDistance   float32 // Negative on a miss
	WorldPosition mgl32.Vec3
	WorldNormal   mgl32.Vec3
	ObjectIndex   int
}

// perPixel traces one path from the camera through pixel (x, y) and returns
// its radiance with alpha 1.
func (r *Renderer) perPixel(frame *frameContext, x, y int, sampler core.Sampler) mgl32.Vec4 {
	sc := frame.scene
	ray := core.NewRay(frame.origin, frame.directions[x+y*frame.width])

	light := mgl32.Vec3{}
	contribution := mgl32.Vec3{1, 1, 1}

	for bounce := 0; bounce < r.config.Bounces; bounce++ {
		payload := r.traceRay(sc, ray)
		if payload.HitDistance <= 0 {
			light = light.Add(core.MulElem(sc.BackgroundRadiance(ray), contribution))
			break
		}

		mat := sc.Spheres[payload.ObjectIndex].Material
		contribution = core.MulElem(contribution, mat.Albedo)
		// Emission is added unweighted by the path contribution
		light = light.Add(mat.Emission())

		ray.Origin = payload.WorldPosition.Add(payload.WorldNormal.Mul(r.config.NormalOffset))
		ray.Direction = payload.WorldNormal.Add(core.RandomInUnitSphere(sampler)).Normalize()
	}

	return light.Vec4(1)
}

// traceRay finds the nearest sphere in front of the ray origin by brute force.
// Only the near root of each sphere counts, and the first sphere wins ties.
func (r *Renderer) traceRay(sc *scene.Scene, ray core.Ray) HitPayload {
	closestIndex := -1
	hitDistance := float32(math.MaxFloat32)

	for i, sphere := range sc.Spheres {
		t, ok := sphere.Intersect(ray)
		if !ok {
			continue
		}
		if t > 0 && t < hitDistance {
			hitDistance = t
			closestIndex = i
		}
	}

	if closestIndex < 0 {
		return r.miss()
	}
	return r.closestHit(sc, ray, hitDistance, closestIndex)
}

// closestHit fills in the payload for a confirmed hit. The normal is the unit
// offset from the center with the center added back on, which is not a unit
// vector for spheres away from the origin; rendered images depend on it.
func (r *Renderer) closestHit(sc *scene.Scene, ray core.Ray, hitDistance float32, objectIndex int) HitPayload {
	sphere := sc.Spheres[objectIndex]

	origin := ray.Origin.Sub(sphere.Center)
	localPosition := origin.Add(ray.Direction.Mul(hitDistance))

	return HitPayload{
		HitDistance:   hitDistance,
		WorldPosition: ray.At(hitDistance),
		WorldNormal:   localPosition.Normalize().Add(sphere.Center),
		ObjectIndex:   objectIndex,
	}
}

func (r *Renderer) miss() HitPayload {
	return HitPayload{HitDistance: -1}
}

// Inspect traces the primary ray behind image pixel (x, y), with y counted
// from the top of the output image. It reports false for a miss or a pixel
// outside the camera viewport.
func (r *Renderer) Inspect(sc *scene.Scene, camera *Camera, x, y int) (HitPayload, bool) {
	width, height := camera.ViewportWidth(), camera.ViewportHeight()
	if x < 0 || y < 0 || x >= width || y >= height {
		return r.miss(), false
	}

	// Output rows are flipped relative to the ray field
	fieldY := height - y - 1
	ray := core.NewRay(camera.Position(), camera.RayDirections()[x+fieldY*width])

	payload := r.traceRay(sc, ray)
	return payload, payload.HitDistance > 0
}

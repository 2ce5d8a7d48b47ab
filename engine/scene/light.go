package scene

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/lumen/engine/math"
)

// Near plane of the shadow map projections.
const ShadowNearPlane float32 = 0.1

/** @brief Uniform light reaching every surface. */
type AmbientLight struct {
	Radiance math.RGB
}

/**
 * @brief A light infinitely far away, shining along the +Z axis of its node.
 * Shadow maps cover an orthographic volume of the given size.
 */
type DirectionalLight struct {
	Component

	Irradiance math.RGB
	ShadowMap  bool

	ShadowWidth  float32
	ShadowHeight float32
	ShadowFar    float32
}

func NewDirectionalLight(irradiance math.RGB) DirectionalLight {
	return DirectionalLight{
		Irradiance:   irradiance,
		ShadowWidth:  20,
		ShadowHeight: 20,
		ShadowFar:    100,
	}
}

// Direction returns the normalized world space direction of the light.
func (l *DirectionalLight) Direction(world *World) math.Vec3 {
	return math.NewVec3Forward().TransformNormal(world.ObjectToWorld(l.owner)).Normalized()
}

// CameraToProjection returns the orthographic projection of the shadow map volume.
func (l *DirectionalLight) CameraToProjection(convention math.DepthConvention) math.Mat4 {
	return math.NewMat4OrthographicLH(l.ShadowWidth, l.ShadowHeight, ShadowNearPlane, l.ShadowFar, convention)
}

func (l *DirectionalLight) WorldToProjection(world *World, convention math.DepthConvention) math.Mat4 {
	return world.WorldToObject(l.owner).Mul(l.CameraToProjection(convention))
}

/**
 * @brief A point light with a limited range. The bounding volumes are in
 * light space and follow the range.
 */
type OmniLight struct {
	Component

	Intensity math.RGB
	ShadowMap bool

	rangeValue float32
	aabb       math.AABB
	sphere     math.BoundingSphere
}

func NewOmniLight(intensity math.RGB, lightRange float32) OmniLight {
	l := OmniLight{Intensity: intensity}
	l.SetRange(lightRange)
	return l
}

func (l *OmniLight) Range() float32 {
	return l.rangeValue
}

func (l *OmniLight) SetRange(lightRange float32) {
	l.rangeValue = lightRange
	l.sphere = math.NewBoundingSphere(math.NewVec3Zero(), lightRange)
	l.aabb = math.NewAABBFromSphere(l.sphere)
}

func (l *OmniLight) AABB() math.AABB {
	return l.aabb
}

func (l *OmniLight) BoundingSphere() math.BoundingSphere {
	return l.sphere
}

func (l *OmniLight) Position(world *World) math.Vec3 {
	return world.ObjectToWorld(l.owner).Translation()
}

// Cube face look directions and up vectors, in +X, -X, +Y, -Y, +Z, -Z order.
var cubeFaces = [6][2]math.Vec3{
	{{X: 1}, {Y: 1}},
	{{X: -1}, {Y: 1}},
	{{Y: 1}, {Z: -1}},
	{{Y: -1}, {Z: 1}},
	{{Z: 1}, {Y: 1}},
	{{Z: -1}, {Y: 1}},
}

// CameraToProjection returns the 90 degree projection of one cube face.
func (l *OmniLight) CameraToProjection(convention math.DepthConvention) math.Mat4 {
	return math.NewMat4PerspectiveLH(math.K_HALF_PI, 1.0, ShadowNearPlane, l.rangeValue, convention)
}

// FaceWorldToCamera returns the view transform of cube face i.
func (l *OmniLight) FaceWorldToCamera(world *World, face int) math.Mat4 {
	return math.NewMat4LookToLH(l.Position(world), cubeFaces[face][0], cubeFaces[face][1])
}

// FaceWorldToProjection returns the world-to-projection of cube face i.
func (l *OmniLight) FaceWorldToProjection(world *World, face int, convention math.DepthConvention) math.Mat4 {
	return l.FaceWorldToCamera(world, face).Mul(l.CameraToProjection(convention))
}

/**
 * @brief A cone light shining along the +Z axis of its node. Umbra and
 * penumbra are half angles in radians, penumbra <= umbra.
 */
type SpotLight struct {
	Component

	Intensity math.RGB
	ShadowMap bool

	rangeValue float32
	umbra      float32
	penumbra   float32
	aabb       math.AABB
	sphere     math.BoundingSphere
}

func NewSpotLight(intensity math.RGB, lightRange, umbra, penumbra float32) SpotLight {
	l := SpotLight{Intensity: intensity}
	l.rangeValue = lightRange
	l.umbra = umbra
	l.penumbra = penumbra
	l.updateBoundingVolumes()
	return l
}

func (l *SpotLight) Range() float32 {
	return l.rangeValue
}

func (l *SpotLight) SetRange(lightRange float32) {
	l.rangeValue = lightRange
	l.updateBoundingVolumes()
}

func (l *SpotLight) Umbra() float32 {
	return l.umbra
}

func (l *SpotLight) Penumbra() float32 {
	return l.penumbra
}

func (l *SpotLight) SetAngles(umbra, penumbra float32) {
	l.umbra = umbra
	l.penumbra = math32.Min(penumbra, umbra)
	l.updateBoundingVolumes()
}

func (l *SpotLight) AABB() math.AABB {
	return l.aabb
}

func (l *SpotLight) BoundingSphere() math.BoundingSphere {
	return l.sphere
}

func (l *SpotLight) CosUmbra() float32 {
	return math32.Cos(l.umbra)
}

func (l *SpotLight) CosPenumbra() float32 {
	return math32.Cos(l.penumbra)
}

func (l *SpotLight) Position(world *World) math.Vec3 {
	return world.ObjectToWorld(l.owner).Translation()
}

func (l *SpotLight) Direction(world *World) math.Vec3 {
	return math.NewVec3Forward().TransformNormal(world.ObjectToWorld(l.owner)).Normalized()
}

func (l *SpotLight) CameraToProjection(convention math.DepthConvention) math.Mat4 {
	return math.NewMat4PerspectiveLH(2.0*l.umbra, 1.0, ShadowNearPlane, l.rangeValue, convention)
}

func (l *SpotLight) WorldToProjection(world *World, convention math.DepthConvention) math.Mat4 {
	return world.WorldToObject(l.owner).Mul(l.CameraToProjection(convention))
}

func (l *SpotLight) updateBoundingVolumes() {
	a := l.rangeValue * math32.Tan(l.umbra)
	l.aabb = math.NewAABB(math.NewVec3(-a, -a, 0), math.NewVec3(a, a, l.rangeValue))
	l.sphere = math.NewBoundingSphereFromAABB(l.aabb)
}

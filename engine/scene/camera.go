package scene

import (
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type ProjectionType uint8

const (
	ProjectionPerspective ProjectionType = iota
	ProjectionOrthographic
)

/**
 * @brief The lens of a camera. A lens with a positive radius has a finite
 * aperture and enables depth of field.
 */
type Lens struct {
	Radius       float32
	FocalLength  float32
	MaxCoCRadius float32
}

func (l Lens) HasFiniteAperture() bool {
	return l.Radius > 0
}

/** @brief Voxel cone tracing settings of a camera. */
type VoxelizationSettings struct {
	Enabled         bool
	ConeStep        float32
	MaxConeDistance float32
}

func (v VoxelizationSettings) UsesVCT() bool {
	return v.Enabled
}

type CameraSettings struct {
	RenderMode   metadata.RenderMode
	BRDF         metadata.BRDF
	ToneMapping  metadata.ToneMapping
	RenderLayers metadata.RenderLayer
	Voxelization VoxelizationSettings
	// The sky cube texture, InvalidHandle for none.
	Sky metadata.Handle
}

func DefaultCameraSettings() CameraSettings {
	return CameraSettings{
		RenderMode:  metadata.RenderModeForward,
		BRDF:        metadata.BRDFCookTorrance,
		ToneMapping: metadata.ToneMappingACESFilmic,
		Voxelization: VoxelizationSettings{
			ConeStep:        0.1,
			MaxConeDistance: 1.0,
		},
	}
}

func (s CameraSettings) ContainsRenderLayer(layer metadata.RenderLayer) bool {
	return s.RenderLayers.Contains(layer)
}

/** @brief A region of the display in normalized [0,1] coordinates. */
type ViewportRegion struct {
	X, Y, Width, Height float32
}

func FullViewport() ViewportRegion {
	return ViewportRegion{Width: 1, Height: 1}
}

/**
 * @brief Represents a camera that renders the world into its viewport. The
 * view is defined by the transform of the owning node; the camera looks down
 * the node's +Z axis.
 */
type Camera struct {
	Component

	Projection ProjectionType
	// Vertical field of view in radians, perspective cameras only.
	FOVY float32
	// Size of the view volume, orthographic cameras only.
	Width  float32
	Height float32
	Near   float32
	Far    float32

	Lens     Lens
	Settings CameraSettings
	Viewport ViewportRegion
}

func NewPerspectiveCamera(fovY, near, far float32) Camera {
	return Camera{
		Projection: ProjectionPerspective,
		FOVY:       fovY,
		Near:       near,
		Far:        far,
		Settings:   DefaultCameraSettings(),
		Viewport:   FullViewport(),
	}
}

func NewOrthographicCamera(width, height, near, far float32) Camera {
	return Camera{
		Projection: ProjectionOrthographic,
		Width:      width,
		Height:     height,
		Near:       near,
		Far:        far,
		Settings:   DefaultCameraSettings(),
		Viewport:   FullViewport(),
	}
}

// PixelViewport maps the normalized viewport onto the display.
func (c *Camera) PixelViewport(display *metadata.DisplayConfiguration) metadata.Viewport {
	w, h := display.DisplayResolution()
	return metadata.Viewport{
		TopLeftX: c.Viewport.X * float32(w),
		TopLeftY: c.Viewport.Y * float32(h),
		Width:    c.Viewport.Width * float32(w),
		Height:   c.Viewport.Height * float32(h),
		MaxDepth: 1.0,
	}
}

// AspectRatio returns the width over height of the camera's viewport.
func (c *Camera) AspectRatio(display *metadata.DisplayConfiguration) float32 {
	v := c.PixelViewport(display)
	if v.Height == 0 {
		return 1.0
	}
	return v.Width / v.Height
}

func (c *Camera) CameraToProjection(aspectRatio float32, convention math.DepthConvention) math.Mat4 {
	if c.Projection == ProjectionOrthographic {
		return math.NewMat4OrthographicLH(c.Width, c.Height, c.Near, c.Far, convention)
	}
	return math.NewMat4PerspectiveLH(c.FOVY, aspectRatio, c.Near, c.Far, convention)
}

/**
 * @brief Returns the world-to-projection transform of the camera, the
 * transform its view frustum is extracted from.
 */
func (c *Camera) WorldToProjection(world *World, display *metadata.DisplayConfiguration, convention math.DepthConvention) math.Mat4 {
	worldToCamera := world.WorldToObject(c.owner)
	return worldToCamera.Mul(c.CameraToProjection(c.AspectRatio(display), convention))
}

// Buffer fills the GPU camera data.
func (c *Camera) Buffer(world *World, display *metadata.DisplayConfiguration, convention math.DepthConvention) metadata.CameraBuffer {
	cameraToProjection := c.CameraToProjection(c.AspectRatio(display), convention)
	viewport := c.PixelViewport(display)
	ssViewport := viewport.Scaled(display.AntiAliasing)

	return metadata.CameraBuffer{
		WorldToCamera:      world.WorldToObject(c.owner),
		CameraToProjection: cameraToProjection,
		ProjectionToCamera: cameraToProjection.Inverse(),
		CameraToWorld:      world.ObjectToWorld(c.owner),

		ViewportTopLeft:         math.NewVec2(viewport.TopLeftX, viewport.TopLeftY),
		ViewportResolution:      math.NewVec2(viewport.Width, viewport.Height),
		SSViewportTopLeft:       math.NewVec2(ssViewport.TopLeftX, ssViewport.TopLeftY),
		SSViewportResolution:    math.NewVec2(ssViewport.Width, ssViewport.Height),
		ViewportInvResolution:   inverse(viewport.Width, viewport.Height),
		SSViewportInvResolution: inverse(ssViewport.Width, ssViewport.Height),

		LensRadius:      c.Lens.Radius,
		FocalLength:     c.Lens.FocalLength,
		MaxCoCRadius:    c.Lens.MaxCoCRadius,
		ConeStep:        c.Settings.Voxelization.ConeStep,
		MaxConeDistance: c.Settings.Voxelization.MaxConeDistance,
	}
}

func inverse(x, y float32) math.Vec2 {
	var out math.Vec2
	if x != 0 {
		out.X = 1.0 / x
	}
	if y != 0 {
		out.Y = 1.0 / y
	}
	return out
}

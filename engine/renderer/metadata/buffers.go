package metadata

import "github.com/spaghettifunk/lumen/engine/math"

// GPU buffer layouts. Every constant buffer layout is a multiple of 16 bytes
// and fields never straddle a 16 byte boundary.

/** @brief Per-frame data shared by every pass. */
type WorldBuffer struct {
	DisplayResolution      math.Vec2
	DisplayInvResolution   math.Vec2
	SSDisplayResolution    math.Vec2
	SSDisplayInvResolution math.Vec2

	VoxelGridCenter         math.Vec3
	VoxelTextureMaxMipLevel uint32
	VoxelGridResolution     uint32
	VoxelGridInvResolution  float32
	VoxelSize               float32
	VoxelInvSize            float32

	Time     float32
	InvGamma float32
	Padding  [2]uint32
}

/** @brief Per-camera data, bound once per active camera. */
type CameraBuffer struct {
	WorldToCamera      math.Mat4
	CameraToProjection math.Mat4
	ProjectionToCamera math.Mat4
	CameraToWorld      math.Mat4

	ViewportTopLeft         math.Vec2
	ViewportResolution      math.Vec2
	SSViewportTopLeft       math.Vec2
	SSViewportResolution    math.Vec2
	ViewportInvResolution   math.Vec2
	SSViewportInvResolution math.Vec2

	LensRadius      float32
	FocalLength     float32
	MaxCoCRadius    float32
	ConeStep        float32
	MaxConeDistance float32
	Padding         [3]uint32
}

/** @brief Per-draw model data. */
type ModelBuffer struct {
	ObjectToWorld    math.Mat4
	NormalToWorld    math.Mat4
	TextureTransform math.Mat4
	BaseColor        math.Vec4
	Roughness        float32
	Metalness        float32
	Padding          [2]uint32
}

type ColourBuffer struct {
	Colour math.Vec4
}

/** @brief Light counts and the ambient term produced by the LBuffer pass. */
type LightingBuffer struct {
	AmbientIrradiance                math.Vec3
	NumDirectionalLights             uint32
	NumOmniLights                    uint32
	NumSpotLights                    uint32
	NumShadowMappedDirectionalLights uint32
	NumShadowMappedOmniLights        uint32
	NumShadowMappedSpotLights        uint32
	Padding                          [3]uint32
}

type DirectionalLightBuffer struct {
	NegDirection math.Vec3
	Padding0     uint32
	Irradiance   math.Vec3
	Padding1     uint32
}

type ShadowMappedDirectionalLightBuffer struct {
	Light             DirectionalLightBuffer
	WorldToProjection math.Mat4
}

type OmniLightBuffer struct {
	Position    math.Vec3
	InvSqrRange float32
	Intensity   math.Vec3
	Padding     uint32
}

type ShadowMappedOmniLightBuffer struct {
	Light        OmniLightBuffer
	WorldToLight math.Mat4
	// The z-row entries of the cube face projection.
	ProjectionValues math.Vec2
	Padding          [2]uint32
}

type SpotLightBuffer struct {
	Position     math.Vec3
	InvSqrRange  float32
	Intensity    math.Vec3
	CosUmbra     float32
	NegDirection math.Vec3
	CosInvRange  float32
}

type ShadowMappedSpotLightBuffer struct {
	Light             SpotLightBuffer
	WorldToProjection math.Mat4
}

/** @brief A corner of a sprite quad. Position is in normalized device coordinates. */
type SpriteVertex struct {
	Position math.Vec3
	Texcoord math.Vec2
	Colour   math.Vec4
}

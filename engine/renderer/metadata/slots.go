package metadata

// Constant buffer slots.
const (
	SLOT_CBUFFER_WORLD            uint32 = 0
	SLOT_CBUFFER_PRIMARY_CAMERA   uint32 = 1
	SLOT_CBUFFER_SECONDARY_CAMERA uint32 = 2
	SLOT_CBUFFER_LIGHTING         uint32 = 3
	SLOT_CBUFFER_MODEL            uint32 = 4
	SLOT_CBUFFER_COLOUR           uint32 = 5
)

// Shader resource view slots.
const (
	SLOT_SRV_BASE_COLOR    uint32 = 0
	SLOT_SRV_MATERIAL      uint32 = 1
	SLOT_SRV_NORMAL        uint32 = 2
	SLOT_SRV_DEPTH         uint32 = 3
	SLOT_SRV_IMAGE         uint32 = 4
	SLOT_SRV_SKY           uint32 = 5
	SLOT_SRV_VOXEL_TEXTURE uint32 = 6
	SLOT_SRV_SPRITE        uint32 = 7

	SLOT_SRV_DIRECTIONAL_LIGHTS      uint32 = 8
	SLOT_SRV_OMNI_LIGHTS             uint32 = 9
	SLOT_SRV_SPOT_LIGHTS             uint32 = 10
	SLOT_SRV_DIRECTIONAL_SHADOW_MAPS uint32 = 11
	SLOT_SRV_OMNI_SHADOW_MAPS        uint32 = 12
	SLOT_SRV_SPOT_SHADOW_MAPS        uint32 = 13

	SLOT_SRV_BASE_COLOR_TEXTURE uint32 = 16
	SLOT_SRV_MATERIAL_TEXTURE   uint32 = 17
	SLOT_SRV_NORMAL_TEXTURE     uint32 = 18
)

// Unordered access view slots.
const (
	SLOT_UAV_IMAGE         uint32 = 0
	SLOT_UAV_NORMAL        uint32 = 1
	SLOT_UAV_DEPTH         uint32 = 2
	SLOT_UAV_VOXEL_BUFFER  uint32 = 3
	SLOT_UAV_VOXEL_TEXTURE uint32 = 4
)

// Sampler slots.
const (
	SLOT_SAMPLER_POINT_WRAP  uint32 = 0
	SLOT_SAMPLER_LINEAR_WRAP uint32 = 1
	SLOT_SAMPLER_ANISOTROPIC uint32 = 2
	SLOT_SAMPLER_PCF         uint32 = 3
	SLOT_SAMPLER_COUNT       uint32 = 4
)

// Thread group sizes of the compute shaders.
const (
	GROUP_SIZE_2D_DEFAULT uint32 = 16
	GROUP_SIZE_3D_DEFAULT uint32 = 4
)

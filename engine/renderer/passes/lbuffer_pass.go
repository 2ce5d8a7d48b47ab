package passes

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/pipeline"
	"github.com/spaghettifunk/lumen/engine/scene"
)

// Number of shadow maps available per light kind. Shadow mapped lights
// beyond these are shaded without shadows.
const (
	MaxShadowMappedDirectionalLights = 4
	MaxShadowMappedOmniLights        = 2
	MaxShadowMappedSpotLights        = 4
)

const cubeFaceCount = 6

// shadowMaps is an array of depth textures with one render view per slice.
type shadowMaps struct {
	texture metadata.Handle
	slices  []metadata.Handle
}

func newShadowMaps(device metadata.Device, name string, resolution, count uint32) (shadowMaps, error) {
	var maps shadowMaps
	texture, err := device.CreateTexture(metadata.TextureDescriptor{
		Name:      name,
		Width:     resolution,
		Height:    resolution,
		Depth:     count,
		MipLevels: 1,
		Format:    metadata.FormatD32Float,
		Bind:      metadata.BindDepthStencil | metadata.BindShaderResource,
	})
	if err != nil {
		return maps, core.NewConstructionError("lbuffer pass", name, err)
	}
	maps.texture = texture
	for i := uint32(0); i < count; i++ {
		sliceName := fmt.Sprintf("%s[%d]", name, i)
		slice, err := device.CreateSliceView(sliceName, texture, i)
		if err != nil {
			return maps, core.NewConstructionError("lbuffer pass", sliceName, err)
		}
		maps.slices = append(maps.slices, slice)
	}
	return maps, nil
}

func (m *shadowMaps) release(device metadata.Device) {
	for _, slice := range m.slices {
		device.Release(slice)
	}
	if m.texture != metadata.InvalidHandle {
		device.Release(m.texture)
	}
	m.slices, m.texture = nil, metadata.InvalidHandle
}

/**
 * @brief Collects the lights affecting a camera, renders their shadow maps
 * and binds the light data for the shading passes. Omni and spot lights
 * whose volume lies outside the camera frustum are skipped.
 */
type LBufferPass struct {
	ctx        Context
	depth      *DepthPass
	resolution uint32

	lighting    *pipeline.ConstantBuffer[metadata.LightingBuffer]
	lightCamera *pipeline.ConstantBuffer[metadata.CameraBuffer]

	directional   *pipeline.DynamicBuffer[metadata.DirectionalLightBuffer]
	omni          *pipeline.DynamicBuffer[metadata.OmniLightBuffer]
	spot          *pipeline.DynamicBuffer[metadata.SpotLightBuffer]
	smDirectional *pipeline.DynamicBuffer[metadata.ShadowMappedDirectionalLightBuffer]
	smOmni        *pipeline.DynamicBuffer[metadata.ShadowMappedOmniLightBuffer]
	smSpot        *pipeline.DynamicBuffer[metadata.ShadowMappedSpotLightBuffer]

	directionalMaps shadowMaps
	omniMaps        shadowMaps
	spotMaps        shadowMaps

	// per frame scratch
	directionalData   []metadata.DirectionalLightBuffer
	omniData          []metadata.OmniLightBuffer
	spotData          []metadata.SpotLightBuffer
	smDirectionalData []metadata.ShadowMappedDirectionalLightBuffer
	smOmniData        []metadata.ShadowMappedOmniLightBuffer
	smSpotData        []metadata.ShadowMappedSpotLightBuffer
}

func NewLBufferPass(ctx Context, depth *DepthPass, shadowMapResolution uint32) (*LBufferPass, error) {
	p := &LBufferPass{ctx: ctx, depth: depth, resolution: shadowMapResolution}
	if err := p.initialize(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *LBufferPass) initialize() error {
	device, resolution := p.ctx.Device, p.resolution

	var err error
	if p.lighting, err = pipeline.NewConstantBuffer[metadata.LightingBuffer](device, "lighting"); err != nil {
		return err
	}
	if p.lightCamera, err = pipeline.NewConstantBuffer[metadata.CameraBuffer](device, "light_camera"); err != nil {
		return err
	}
	if p.directional, err = pipeline.NewStructuredBuffer[metadata.DirectionalLightBuffer](device, "directional_lights", 4); err != nil {
		return err
	}
	if p.omni, err = pipeline.NewStructuredBuffer[metadata.OmniLightBuffer](device, "omni_lights", 64); err != nil {
		return err
	}
	if p.spot, err = pipeline.NewStructuredBuffer[metadata.SpotLightBuffer](device, "spot_lights", 64); err != nil {
		return err
	}
	if p.smDirectional, err = pipeline.NewStructuredBuffer[metadata.ShadowMappedDirectionalLightBuffer](device, "sm_directional_lights", MaxShadowMappedDirectionalLights); err != nil {
		return err
	}
	if p.smOmni, err = pipeline.NewStructuredBuffer[metadata.ShadowMappedOmniLightBuffer](device, "sm_omni_lights", MaxShadowMappedOmniLights); err != nil {
		return err
	}
	if p.smSpot, err = pipeline.NewStructuredBuffer[metadata.ShadowMappedSpotLightBuffer](device, "sm_spot_lights", MaxShadowMappedSpotLights); err != nil {
		return err
	}

	if p.directionalMaps, err = newShadowMaps(device, "directional_shadow_maps", resolution, MaxShadowMappedDirectionalLights); err != nil {
		return err
	}
	if p.omniMaps, err = newShadowMaps(device, "omni_shadow_maps", resolution, MaxShadowMappedOmniLights*cubeFaceCount); err != nil {
		return err
	}
	if p.spotMaps, err = newShadowMaps(device, "spot_shadow_maps", resolution, MaxShadowMappedSpotLights); err != nil {
		return err
	}
	return nil
}

// Render prepares the light data of the camera with the given world-to-projection transform.
func (p *LBufferPass) Render(world *scene.World, worldToProjection math.Mat4) {
	p.ctx.Device.SetMarker("LBufferPass.Render")

	p.directionalData = p.directionalData[:0]
	p.omniData = p.omniData[:0]
	p.spotData = p.spotData[:0]
	p.smDirectionalData = p.smDirectionalData[:0]
	p.smOmniData = p.smOmniData[:0]
	p.smSpotData = p.smSpotData[:0]

	p.processDirectionalLights(world)
	p.processOmniLights(world, worldToProjection)
	p.processSpotLights(world, worldToProjection)

	p.lighting.UpdateData(&metadata.LightingBuffer{
		AmbientIrradiance:                world.AmbientLight().Radiance.Vec3(),
		NumDirectionalLights:             uint32(len(p.directionalData)),
		NumOmniLights:                    uint32(len(p.omniData)),
		NumSpotLights:                    uint32(len(p.spotData)),
		NumShadowMappedDirectionalLights: uint32(len(p.smDirectionalData)),
		NumShadowMappedOmniLights:        uint32(len(p.smOmniData)),
		NumShadowMappedSpotLights:        uint32(len(p.smSpotData)),
	})
	p.directional.UpdateData(p.directionalData)
	p.omni.UpdateData(p.omniData)
	p.spot.UpdateData(p.spotData)
	p.smDirectional.UpdateData(p.smDirectionalData)
	p.smOmni.UpdateData(p.smOmniData)
	p.smSpot.UpdateData(p.smSpotData)

	p.bind()
}

func (p *LBufferPass) bind() {
	// the last shadow map render left a depth view bound
	p.ctx.Device.BindRenderTargets(nil, metadata.InvalidHandle)

	for _, stage := range []metadata.ShaderStage{metadata.ShaderStagePixel, metadata.ShaderStageCompute} {
		p.lighting.Bind(stage, metadata.SLOT_CBUFFER_LIGHTING)
		p.directional.BindShaderResource(stage, metadata.SLOT_SRV_DIRECTIONAL_LIGHTS)
		p.omni.BindShaderResource(stage, metadata.SLOT_SRV_OMNI_LIGHTS)
		p.spot.BindShaderResource(stage, metadata.SLOT_SRV_SPOT_LIGHTS)
		p.ctx.Device.BindShaderResource(stage, metadata.SLOT_SRV_DIRECTIONAL_SHADOW_MAPS, p.directionalMaps.texture)
		p.ctx.Device.BindShaderResource(stage, metadata.SLOT_SRV_OMNI_SHADOW_MAPS, p.omniMaps.texture)
		p.ctx.Device.BindShaderResource(stage, metadata.SLOT_SRV_SPOT_SHADOW_MAPS, p.spotMaps.texture)
	}
}

func (p *LBufferPass) processDirectionalLights(world *scene.World) {
	world.ForEachActiveDirectionalLight(func(_ scene.DirectionalLightPtr, light *scene.DirectionalLight) {
		data := metadata.DirectionalLightBuffer{
			NegDirection: light.Direction(world).Neg(),
			Irradiance:   light.Irradiance.Vec3(),
		}
		if !light.ShadowMap || len(p.smDirectionalData) == MaxShadowMappedDirectionalLights {
			p.directionalData = append(p.directionalData, data)
			return
		}

		worldToCamera := world.WorldToObject(light.Owner())
		cameraToProjection := light.CameraToProjection(p.ctx.Convention())
		worldToProjection := worldToCamera.Mul(cameraToProjection)
		p.renderShadowMap(world, p.directionalMaps.slices[len(p.smDirectionalData)], worldToCamera, cameraToProjection)

		p.smDirectionalData = append(p.smDirectionalData, metadata.ShadowMappedDirectionalLightBuffer{
			Light:             data,
			WorldToProjection: worldToProjection,
		})
	})
}

func (p *LBufferPass) processOmniLights(world *scene.World, worldToProjection math.Mat4) {
	world.ForEachActiveOmniLight(func(_ scene.OmniLightPtr, light *scene.OmniLight) {
		objectToWorld := world.ObjectToWorld(light.Owner())
		if cullAABB(objectToWorld.Mul(worldToProjection), light.AABB(), p.ctx.Convention()) {
			return
		}

		data := metadata.OmniLightBuffer{
			Position:    objectToWorld.Translation(),
			InvSqrRange: invSquare(light.Range()),
			Intensity:   light.Intensity.Vec3(),
		}
		if !light.ShadowMap || len(p.smOmniData) == MaxShadowMappedOmniLights {
			p.omniData = append(p.omniData, data)
			return
		}

		cameraToProjection := light.CameraToProjection(p.ctx.Convention())
		first := len(p.smOmniData) * cubeFaceCount
		for face := 0; face < cubeFaceCount; face++ {
			p.renderShadowMap(world, p.omniMaps.slices[first+face], light.FaceWorldToCamera(world, face), cameraToProjection)
		}

		p.smOmniData = append(p.smOmniData, metadata.ShadowMappedOmniLightBuffer{
			Light:            data,
			WorldToLight:     math.NewMat4Translation(data.Position.Neg()),
			ProjectionValues: math.NewVec2(cameraToProjection.Data[10], cameraToProjection.Data[14]),
		})
	})
}

func (p *LBufferPass) processSpotLights(world *scene.World, worldToProjection math.Mat4) {
	world.ForEachActiveSpotLight(func(_ scene.SpotLightPtr, light *scene.SpotLight) {
		objectToWorld := world.ObjectToWorld(light.Owner())
		if cullAABB(objectToWorld.Mul(worldToProjection), light.AABB(), p.ctx.Convention()) {
			return
		}

		cosUmbra := light.CosUmbra()
		data := metadata.SpotLightBuffer{
			Position:     objectToWorld.Translation(),
			InvSqrRange:  invSquare(light.Range()),
			Intensity:    light.Intensity.Vec3(),
			CosUmbra:     cosUmbra,
			NegDirection: light.Direction(world).Neg(),
			CosInvRange:  invDifference(light.CosPenumbra(), cosUmbra),
		}
		if !light.ShadowMap || len(p.smSpotData) == MaxShadowMappedSpotLights {
			p.spotData = append(p.spotData, data)
			return
		}

		worldToCamera := world.WorldToObject(light.Owner())
		cameraToProjection := light.CameraToProjection(p.ctx.Convention())
		p.renderShadowMap(world, p.spotMaps.slices[len(p.smSpotData)], worldToCamera, cameraToProjection)

		p.smSpotData = append(p.smSpotData, metadata.ShadowMappedSpotLightBuffer{
			Light:             data,
			WorldToProjection: worldToCamera.Mul(cameraToProjection),
		})
	})
}

func (p *LBufferPass) renderShadowMap(world *scene.World, target metadata.Handle, worldToCamera, cameraToProjection math.Mat4) {
	device := p.ctx.Device
	device.ClearDepthStencil(target, p.ctx.States.ClearDepth())
	device.BindRenderTargets(nil, target)
	device.SetViewport(metadata.NewViewport(p.resolution, p.resolution))

	p.lightCamera.UpdateData(&metadata.CameraBuffer{
		WorldToCamera:      worldToCamera,
		CameraToProjection: cameraToProjection,
		ProjectionToCamera: cameraToProjection.Inverse(),
		CameraToWorld:      worldToCamera.Inverse(),
	})
	p.lightCamera.Bind(metadata.ShaderStageVertex, metadata.SLOT_CBUFFER_SECONDARY_CAMERA)

	p.depth.RenderOccluders(world, worldToCamera.Mul(cameraToProjection))
}

func (p *LBufferPass) Release() {
	p.lighting.Release()
	p.lightCamera.Release()
	p.directional.Release()
	p.omni.Release()
	p.spot.Release()
	p.smDirectional.Release()
	p.smOmni.Release()
	p.smSpot.Release()
	p.directionalMaps.release(p.ctx.Device)
	p.omniMaps.release(p.ctx.Device)
	p.spotMaps.release(p.ctx.Device)
}

func invSquare(f float32) float32 {
	if f == 0 {
		return 0
	}
	return 1.0 / (f * f)
}

func invDifference(a, b float32) float32 {
	if a == b {
		return 0
	}
	return 1.0 / (a - b)
}

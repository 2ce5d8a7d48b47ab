package passes

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/scene"
)

/**
 * @brief Voxelizes the models inside the voxel grid for voxel cone
 * tracing. Models are rasterized into a buffer of packed radiance, which
 * is then resolved into a mipmapped volume texture.
 */
type VoxelizationPass struct {
	ctx    Context
	grid   metadata.VoxelGrid
	models *modelRenderer

	vs, gs, ps metadata.Handle
	resolve    metadata.Handle

	buffer  metadata.Handle
	texture metadata.Handle
}

func NewVoxelizationPass(ctx Context, grid metadata.VoxelGrid) (*VoxelizationPass, error) {
	p := &VoxelizationPass{ctx: ctx, grid: grid}

	shaders := newShaderLoader(ctx, "voxelization pass")
	p.vs = shaders.load(metadata.ShaderStageVertex, "voxelization")
	p.gs = shaders.load(metadata.ShaderStageGeometry, "voxelization")
	p.ps = shaders.load(metadata.ShaderStagePixel, "voxelization")
	p.resolve = shaders.load(metadata.ShaderStageCompute, "voxelization_resolve")
	if shaders.err != nil {
		return nil, shaders.err
	}

	var err error
	if p.models, err = newModelRenderer(ctx, "voxelization_pass"); err != nil {
		return nil, err
	}

	r := grid.Resolution
	p.buffer, err = ctx.Device.CreateBuffer(metadata.BufferDescriptor{
		Name:   "voxel_buffer",
		Size:   r * r * r * 4,
		Stride: 4,
		Bind:   metadata.BindUnorderedAccess | metadata.BindShaderResource,
	})
	if err != nil {
		p.Release()
		return nil, core.NewConstructionError("voxelization pass", "voxel_buffer", err)
	}
	p.texture, err = ctx.Device.CreateTexture(metadata.TextureDescriptor{
		Name:      "voxel_texture",
		Width:     r,
		Height:    r,
		Depth:     r,
		Volume:    true,
		MipLevels: grid.MaxMipLevel() + 1,
		Format:    metadata.FormatR16G16B16A16Float,
		Bind:      metadata.BindUnorderedAccess | metadata.BindShaderResource,
	})
	if err != nil {
		p.Release()
		return nil, core.NewConstructionError("voxelization pass", "voxel_texture", err)
	}
	return p, nil
}

func (p *VoxelizationPass) Grid() metadata.VoxelGrid {
	return p.grid
}

func (p *VoxelizationPass) Texture() metadata.Handle {
	return p.texture
}

// Render voxelizes the world and binds the voxel texture for the shading passes.
func (p *VoxelizationPass) Render(world *scene.World) {
	device := p.ctx.Device
	device.SetMarker("VoxelizationPass.Render")

	device.BindShaderResource(metadata.ShaderStagePixel, metadata.SLOT_SRV_VOXEL_TEXTURE, metadata.InvalidHandle)
	device.BindShaderResource(metadata.ShaderStageCompute, metadata.SLOT_SRV_VOXEL_TEXTURE, metadata.InvalidHandle)
	device.ClearUnorderedAccess(p.buffer)
	device.BindRenderTargets(nil, metadata.InvalidHandle)
	device.BindUnorderedAccess(metadata.SLOT_UAV_VOXEL_BUFFER, p.buffer)
	device.SetViewport(metadata.NewViewport(p.grid.Resolution, p.grid.Resolution))

	device.BindShader(metadata.ShaderStageVertex, p.vs)
	device.BindShader(metadata.ShaderStageGeometry, p.gs)
	device.BindShader(metadata.ShaderStagePixel, p.ps)
	p.ctx.States.BindOpaqueBlendState()
	p.ctx.States.BindDepthNoneState()
	p.ctx.States.BindCullNoneRasterizerState()

	// the voxel volume uses the standard depth range whatever the convention
	worldToVoxel := p.grid.WorldToVoxel()
	world.ForEachActiveModel(func(_ scene.ModelPtr, model *scene.Model) {
		objectToWorld, ok := visibleModel(world, model, worldToVoxel, math.DepthStandard)
		if !ok {
			return
		}
		p.models.draw(world, model, objectToWorld, true)
	})
	device.BindShader(metadata.ShaderStageGeometry, metadata.InvalidHandle)

	device.SetMarker("VoxelizationPass.Resolve")
	device.BindShader(metadata.ShaderStageCompute, p.resolve)
	device.BindUnorderedAccess(metadata.SLOT_UAV_VOXEL_TEXTURE, p.texture)
	groups := math.DivideCeil(p.grid.Resolution, metadata.GROUP_SIZE_3D_DEFAULT)
	device.Dispatch(groups, groups, groups)
	device.BindUnorderedAccess(metadata.SLOT_UAV_VOXEL_BUFFER, metadata.InvalidHandle)
	device.BindUnorderedAccess(metadata.SLOT_UAV_VOXEL_TEXTURE, metadata.InvalidHandle)
	device.GenerateMips(p.texture)

	device.BindShaderResource(metadata.ShaderStagePixel, metadata.SLOT_SRV_VOXEL_TEXTURE, p.texture)
	device.BindShaderResource(metadata.ShaderStageCompute, metadata.SLOT_SRV_VOXEL_TEXTURE, p.texture)
}

func (p *VoxelizationPass) Release() {
	if p.models != nil {
		p.models.release()
	}
	releaseHandles(p.ctx.Device, p.buffer, p.texture)
}

/**
 * @brief Visualizes the voxel texture: every voxel is a point expanded into
 * a cube by the geometry shader.
 */
type VoxelGridPass struct {
	ctx        Context
	vs, gs, ps metadata.Handle
}

func NewVoxelGridPass(ctx Context) (*VoxelGridPass, error) {
	shaders := newShaderLoader(ctx, "voxel grid pass")
	p := &VoxelGridPass{
		ctx: ctx,
		vs:  shaders.load(metadata.ShaderStageVertex, "voxel_grid"),
		gs:  shaders.load(metadata.ShaderStageGeometry, "voxel_grid"),
		ps:  shaders.load(metadata.ShaderStagePixel, "voxel_grid"),
	}
	if shaders.err != nil {
		return nil, shaders.err
	}
	return p, nil
}

func (p *VoxelGridPass) Render(grid metadata.VoxelGrid) {
	device := p.ctx.Device
	device.SetMarker("VoxelGridPass.Render")
	device.BindShader(metadata.ShaderStageVertex, p.vs)
	device.BindShader(metadata.ShaderStageGeometry, p.gs)
	device.BindShader(metadata.ShaderStagePixel, p.ps)
	p.ctx.States.BindOpaqueBlendState()
	p.ctx.States.BindDepthReadWriteState()
	p.ctx.States.BindCullCounterClockwiseRasterizerState()

	device.BindPrimitiveTopology(metadata.PrimitiveTopologyPointList)
	device.Draw(grid.Resolution*grid.Resolution*grid.Resolution, 0)
	device.BindShader(metadata.ShaderStageGeometry, metadata.InvalidHandle)
}

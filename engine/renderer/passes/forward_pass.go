package passes

import (
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/pipeline"
	"github.com/spaghettifunk/lumen/engine/scene"
)

// Colour of the wireframe overlay.
var wireframeColour = math.NewVec4(0, 0, 1, 1)

/**
 * @brief Draws models into the bound render targets: the lit forward
 * variants, the G-buffer fill, and the unlit debug variants.
 */
type ForwardPass struct {
	ctx    Context
	models *modelRenderer
	colour *pipeline.ConstantBuffer[metadata.ColourBuffer]

	vs             metadata.Handle
	opaque         [metadata.BRDFCount]metadata.Handle
	opaqueVCT      [metadata.BRDFCount]metadata.Handle
	transparent    [metadata.BRDFCount]metadata.Handle
	transparentVCT [metadata.BRDFCount]metadata.Handle
	falseColor     [metadata.FalseColorCount]metadata.Handle
	gbuffer        metadata.Handle
	emissive       metadata.Handle
	solid          metadata.Handle
	constantColour metadata.Handle
}

func NewForwardPass(ctx Context) (*ForwardPass, error) {
	p := &ForwardPass{ctx: ctx}

	shaders := newShaderLoader(ctx, "forward pass")
	p.vs = shaders.load(metadata.ShaderStageVertex, "transform")
	for brdf := metadata.BRDF(0); brdf < metadata.BRDFCount; brdf++ {
		p.opaque[brdf] = shaders.load(metadata.ShaderStagePixel, "forward_"+brdf.String())
		p.opaqueVCT[brdf] = shaders.load(metadata.ShaderStagePixel, "forward_vct_"+brdf.String())
		p.transparent[brdf] = shaders.load(metadata.ShaderStagePixel, "forward_transparent_"+brdf.String())
		p.transparentVCT[brdf] = shaders.load(metadata.ShaderStagePixel, "forward_transparent_vct_"+brdf.String())
	}
	for fc := metadata.FalseColor(0); fc < metadata.FalseColorCount; fc++ {
		p.falseColor[fc] = shaders.load(metadata.ShaderStagePixel, "false_color_"+fc.String())
	}
	p.gbuffer = shaders.load(metadata.ShaderStagePixel, "gbuffer")
	p.emissive = shaders.load(metadata.ShaderStagePixel, "emissive")
	p.solid = shaders.load(metadata.ShaderStagePixel, "solid")
	p.constantColour = shaders.load(metadata.ShaderStagePixel, "constant_colour")
	if shaders.err != nil {
		return nil, shaders.err
	}

	var err error
	if p.models, err = newModelRenderer(ctx, "forward_pass"); err != nil {
		return nil, err
	}
	if p.colour, err = pipeline.NewConstantBuffer[metadata.ColourBuffer](ctx.Device, "forward_pass_colour"); err != nil {
		p.models.release()
		return nil, err
	}
	return p, nil
}

func (p *ForwardPass) renderModels(world *scene.World, worldToProjection math.Mat4, textures bool, include func(*scene.Model) bool) {
	world.ForEachActiveModel(func(_ scene.ModelPtr, model *scene.Model) {
		if !include(model) {
			return
		}
		objectToWorld, ok := visibleModel(world, model, worldToProjection, p.ctx.Convention())
		if !ok {
			return
		}
		p.models.draw(world, model, objectToWorld, textures)
	})
}

func opaque(model *scene.Model) bool {
	return model.Material.IsOpaque()
}

func transparent(model *scene.Model) bool {
	return model.Material.IsTransparent() && !model.Material.Emissive
}

func emissive(model *scene.Model) bool {
	return model.Material.Emissive
}

func anyModel(*scene.Model) bool {
	return true
}

/**
 * @brief Shades the visible opaque models. When voxel cone tracing is
 * enabled the depth pre-pass already filled the depth buffer.
 */
func (p *ForwardPass) Render(world *scene.World, worldToProjection math.Mat4, settings *scene.CameraSettings) {
	p.ctx.Device.SetMarker("ForwardPass.Render")
	ps := p.opaque[settings.BRDF]
	if settings.Voxelization.UsesVCT() {
		ps = p.opaqueVCT[settings.BRDF]
	}
	bindShaders(p.ctx.Device, p.vs, ps)
	p.ctx.States.BindOpaqueBlendState()
	if settings.Voxelization.UsesVCT() {
		p.ctx.States.BindDepthReadState()
	} else {
		p.ctx.States.BindDepthReadWriteState()
	}
	p.ctx.States.BindCullCounterClockwiseRasterizerState()

	p.renderModels(world, worldToProjection, true, opaque)
}

// RenderTransparent blends the visible transparent models over the lit image.
func (p *ForwardPass) RenderTransparent(world *scene.World, worldToProjection math.Mat4, settings *scene.CameraSettings) {
	p.ctx.Device.SetMarker("ForwardPass.RenderTransparent")
	ps := p.transparent[settings.BRDF]
	if settings.Voxelization.UsesVCT() {
		ps = p.transparentVCT[settings.BRDF]
	}
	bindShaders(p.ctx.Device, p.vs, ps)
	p.ctx.States.BindAlphaBlendState()
	p.ctx.States.BindDepthReadState()
	p.ctx.States.BindCullNoneRasterizerState()

	p.renderModels(world, worldToProjection, true, transparent)
}

func (p *ForwardPass) RenderEmissive(world *scene.World, worldToProjection math.Mat4) {
	p.ctx.Device.SetMarker("ForwardPass.RenderEmissive")
	bindShaders(p.ctx.Device, p.vs, p.emissive)
	p.ctx.States.BindOpaqueBlendState()
	p.ctx.States.BindDepthReadWriteState()
	p.ctx.States.BindCullCounterClockwiseRasterizerState()

	p.renderModels(world, worldToProjection, true, emissive)
}

func (p *ForwardPass) RenderSolid(world *scene.World, worldToProjection math.Mat4) {
	p.ctx.Device.SetMarker("ForwardPass.RenderSolid")
	bindShaders(p.ctx.Device, p.vs, p.solid)
	p.ctx.States.BindOpaqueBlendState()
	p.ctx.States.BindDepthReadWriteState()
	p.ctx.States.BindCullCounterClockwiseRasterizerState()

	p.renderModels(world, worldToProjection, false, anyModel)
}

func (p *ForwardPass) RenderFalseColor(world *scene.World, worldToProjection math.Mat4, falseColor metadata.FalseColor) {
	p.ctx.Device.SetMarker("ForwardPass.RenderFalseColor")
	bindShaders(p.ctx.Device, p.vs, p.falseColor[falseColor])
	p.ctx.States.BindOpaqueBlendState()
	p.ctx.States.BindDepthReadWriteState()
	p.ctx.States.BindCullCounterClockwiseRasterizerState()

	p.renderModels(world, worldToProjection, true, anyModel)
}

// RenderWireframe overlays the edges of every visible model.
func (p *ForwardPass) RenderWireframe(world *scene.World, worldToProjection math.Mat4) {
	p.ctx.Device.SetMarker("ForwardPass.RenderWireframe")
	bindShaders(p.ctx.Device, p.vs, p.constantColour)
	p.ctx.States.BindOpaqueBlendState()
	p.ctx.States.BindDepthReadState()
	p.ctx.States.BindWireframeRasterizerState()

	p.colour.UpdateData(&metadata.ColourBuffer{Colour: wireframeColour})
	p.colour.Bind(metadata.ShaderStagePixel, metadata.SLOT_CBUFFER_COLOUR)

	p.renderModels(world, worldToProjection, false, anyModel)
}

// RenderGBuffer writes the surface data of the visible opaque models.
func (p *ForwardPass) RenderGBuffer(world *scene.World, worldToProjection math.Mat4) {
	p.ctx.Device.SetMarker("ForwardPass.RenderGBuffer")
	bindShaders(p.ctx.Device, p.vs, p.gbuffer)
	p.ctx.States.BindOpaqueBlendState()
	p.ctx.States.BindDepthReadWriteState()
	p.ctx.States.BindCullCounterClockwiseRasterizerState()

	p.renderModels(world, worldToProjection, true, opaque)
}

func (p *ForwardPass) Release() {
	p.models.release()
	p.colour.Release()
}

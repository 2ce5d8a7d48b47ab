package passes

import (
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/scene"
)

// Transparent models more transparent than this do not cast shadows.
const ShadowTransparencyThreshold float32 = 0.9

/**
 * @brief Renders the depth of the models, as a pre-pass of the camera or
 * into the shadow maps of lights. Transparent models take part only while
 * nearly opaque, and are alpha tested against their base color.
 */
type DepthPass struct {
	ctx Context
	vs  metadata.Handle
	// Read the light camera at the secondary camera slot.
	shadowVS            metadata.Handle
	transparentVS       metadata.Handle
	shadowTransparentVS metadata.Handle
	transparentPS       metadata.Handle
	models              *modelRenderer
}

func NewDepthPass(ctx Context) (*DepthPass, error) {
	p := &DepthPass{ctx: ctx}

	shaders := newShaderLoader(ctx, "depth pass")
	p.vs = shaders.load(metadata.ShaderStageVertex, "depth")
	p.shadowVS = shaders.load(metadata.ShaderStageVertex, "shadow_depth")
	p.transparentVS = shaders.load(metadata.ShaderStageVertex, "depth_transparent")
	p.shadowTransparentVS = shaders.load(metadata.ShaderStageVertex, "shadow_depth_transparent")
	p.transparentPS = shaders.load(metadata.ShaderStagePixel, "depth_transparent")
	if shaders.err != nil {
		return nil, shaders.err
	}

	var err error
	if p.models, err = newModelRenderer(ctx, "depth_pass"); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *DepthPass) bindFixedState() {
	p.ctx.States.BindOpaqueBlendState()
	p.ctx.States.BindDepthReadWriteState()
}

// castsDepth reports whether a transparent model is opaque enough to write depth.
func castsDepth(model *scene.Model) bool {
	return model.Material.BaseColor.W >= ShadowTransparencyThreshold
}

func (p *DepthPass) renderModels(world *scene.World, worldToProjection math.Mat4, textures bool, include func(*scene.Model) bool) {
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

// Render writes the depth of the visible models into the camera depth buffer.
func (p *DepthPass) Render(world *scene.World, worldToProjection math.Mat4) {
	p.ctx.Device.SetMarker("DepthPass.Render")
	p.bindFixedState()
	p.ctx.States.BindCullCounterClockwiseRasterizerState()

	bindShaders(p.ctx.Device, p.vs, metadata.InvalidHandle)
	p.renderModels(world, worldToProjection, false, func(model *scene.Model) bool {
		return !model.Material.IsTransparent()
	})

	bindShaders(p.ctx.Device, p.transparentVS, p.transparentPS)
	p.renderModels(world, worldToProjection, true, func(model *scene.Model) bool {
		return model.Material.IsTransparent() && castsDepth(model)
	})
}

// RenderOccluders writes the depth of every visible model that occludes light.
func (p *DepthPass) RenderOccluders(world *scene.World, worldToProjection math.Mat4) {
	p.ctx.Device.SetMarker("DepthPass.RenderOccluders")
	p.bindFixedState()
	p.ctx.States.BindCullNoneRasterizerState()

	bindShaders(p.ctx.Device, p.shadowVS, metadata.InvalidHandle)
	p.renderModels(world, worldToProjection, false, func(model *scene.Model) bool {
		return model.LightOcclusion && !model.Material.IsTransparent()
	})

	bindShaders(p.ctx.Device, p.shadowTransparentVS, p.transparentPS)
	p.renderModels(world, worldToProjection, true, func(model *scene.Model) bool {
		return model.LightOcclusion && model.Material.IsTransparent() && castsDepth(model)
	})
}

func (p *DepthPass) Release() {
	p.models.release()
}

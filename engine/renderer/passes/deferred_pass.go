package passes

import (
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/scene"
)

/**
 * @brief Shades the G-buffer. Multisampled targets need per-sample access
 * and are shaded by a full screen pixel shader, every other target by a
 * compute shader.
 */
type DeferredPass struct {
	ctx Context

	vs      metadata.Handle
	msaa    [metadata.BRDFCount]metadata.Handle
	msaaVCT [metadata.BRDFCount]metadata.Handle
	cs      [metadata.BRDFCount]metadata.Handle
	csVCT   [metadata.BRDFCount]metadata.Handle
}

func NewDeferredPass(ctx Context) (*DeferredPass, error) {
	p := &DeferredPass{ctx: ctx}

	shaders := newShaderLoader(ctx, "deferred pass")
	p.vs = shaders.load(metadata.ShaderStageVertex, "fullscreen_triangle")
	for brdf := metadata.BRDF(0); brdf < metadata.BRDFCount; brdf++ {
		p.msaa[brdf] = shaders.load(metadata.ShaderStagePixel, "deferred_msaa_"+brdf.String())
		p.msaaVCT[brdf] = shaders.load(metadata.ShaderStagePixel, "deferred_msaa_vct_"+brdf.String())
		p.cs[brdf] = shaders.load(metadata.ShaderStageCompute, "deferred_"+brdf.String())
		p.csVCT[brdf] = shaders.load(metadata.ShaderStageCompute, "deferred_vct_"+brdf.String())
	}
	if shaders.err != nil {
		return nil, shaders.err
	}
	return p, nil
}

// Render shades the multisampled G-buffer into the bound HDR render target.
func (p *DeferredPass) Render(settings *scene.CameraSettings) {
	p.ctx.Device.SetMarker("DeferredPass.Render")
	ps := p.msaa[settings.BRDF]
	if settings.Voxelization.UsesVCT() {
		ps = p.msaaVCT[settings.BRDF]
	}
	bindShaders(p.ctx.Device, p.vs, ps)
	p.ctx.States.BindOpaqueBlendState()
	p.ctx.States.BindDepthNoneState()
	p.ctx.States.BindCullNoneRasterizerState()

	p.ctx.Device.BindPrimitiveTopology(metadata.PrimitiveTopologyTriangleList)
	p.ctx.Device.Draw(3, 0)
}

// Dispatch shades the G-buffer into the bound HDR image, one thread per pixel of the viewport.
func (p *DeferredPass) Dispatch(viewport metadata.Viewport, settings *scene.CameraSettings) {
	p.ctx.Device.SetMarker("DeferredPass.Dispatch")
	cs := p.cs[settings.BRDF]
	if settings.Voxelization.UsesVCT() {
		cs = p.csVCT[settings.BRDF]
	}
	p.ctx.Device.BindShader(metadata.ShaderStageCompute, cs)
	dispatch2D(p.ctx.Device, viewport)
}

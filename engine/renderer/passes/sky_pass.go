package passes

import (
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/scene"
)

// SkyPass draws the camera's sky texture behind the opaque geometry.
type SkyPass struct {
	ctx    Context
	vs, ps metadata.Handle
}

func NewSkyPass(ctx Context) (*SkyPass, error) {
	shaders := newShaderLoader(ctx, "sky pass")
	p := &SkyPass{
		ctx: ctx,
		vs:  shaders.load(metadata.ShaderStageVertex, "sky"),
		ps:  shaders.load(metadata.ShaderStagePixel, "sky"),
	}
	if shaders.err != nil {
		return nil, shaders.err
	}
	return p, nil
}

// Render does nothing for cameras without a sky.
func (p *SkyPass) Render(settings *scene.CameraSettings) {
	if settings.Sky == metadata.InvalidHandle {
		return
	}
	device := p.ctx.Device
	device.SetMarker("SkyPass.Render")
	bindShaders(device, p.vs, p.ps)
	device.BindShaderResource(metadata.ShaderStagePixel, metadata.SLOT_SRV_SKY, settings.Sky)
	p.ctx.States.BindOpaqueBlendState()
	p.ctx.States.BindDepthReadState()
	p.ctx.States.BindCullNoneRasterizerState()

	device.BindPrimitiveTopology(metadata.PrimitiveTopologyTriangleList)
	device.Draw(3, 0)
}

// BackBufferPass copies the final LDR image onto the swap chain.
type BackBufferPass struct {
	ctx    Context
	vs, ps metadata.Handle
}

func NewBackBufferPass(ctx Context) (*BackBufferPass, error) {
	shaders := newShaderLoader(ctx, "back buffer pass")
	p := &BackBufferPass{
		ctx: ctx,
		vs:  shaders.load(metadata.ShaderStageVertex, "fullscreen_triangle"),
		ps:  shaders.load(metadata.ShaderStagePixel, "back_buffer"),
	}
	if shaders.err != nil {
		return nil, shaders.err
	}
	return p, nil
}

func (p *BackBufferPass) Render() {
	device := p.ctx.Device
	device.SetMarker("BackBufferPass.Render")
	device.BindRenderTargets([]metadata.Handle{device.BackBuffer()}, metadata.InvalidHandle)
	bindShaders(device, p.vs, p.ps)
	p.ctx.States.BindOpaqueBlendState()
	p.ctx.States.BindDepthNoneState()
	p.ctx.States.BindCullNoneRasterizerState()

	device.BindPrimitiveTopology(metadata.PrimitiveTopologyTriangleList)
	device.Draw(3, 0)
}

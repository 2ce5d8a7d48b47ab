package passes

import (
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// dispatch2D runs the bound compute shader once per pixel of the viewport.
func dispatch2D(device metadata.Device, viewport metadata.Viewport) {
	width, height := viewport.Size()
	device.Dispatch(
		math.DivideCeil(width, metadata.GROUP_SIZE_2D_DEFAULT),
		math.DivideCeil(height, metadata.GROUP_SIZE_2D_DEFAULT),
		1)
}

/**
 * @brief Resolves the antialiasing of the display configuration. FXAA runs
 * in two stages: a preprocess storing luminance and the filter itself.
 */
type AAPass struct {
	ctx        Context
	preprocess metadata.Handle
	fxaa       metadata.Handle
	msaa       metadata.Handle
	ssaa       metadata.Handle
}

func NewAAPass(ctx Context) (*AAPass, error) {
	shaders := newShaderLoader(ctx, "aa pass")
	p := &AAPass{
		ctx:        ctx,
		preprocess: shaders.load(metadata.ShaderStageCompute, "aa_preprocess"),
		fxaa:       shaders.load(metadata.ShaderStageCompute, "fxaa"),
		msaa:       shaders.load(metadata.ShaderStageCompute, "msaa_resolve"),
		ssaa:       shaders.load(metadata.ShaderStageCompute, "ssaa_resolve"),
	}
	if shaders.err != nil {
		return nil, shaders.err
	}
	return p, nil
}

func (p *AAPass) DispatchPreprocess(viewport metadata.Viewport) {
	p.ctx.Device.SetMarker("AAPass.DispatchPreprocess")
	p.ctx.Device.BindShader(metadata.ShaderStageCompute, p.preprocess)
	dispatch2D(p.ctx.Device, viewport)
}

// Dispatch runs the resolve of aa. AntiAliasingNone does nothing.
func (p *AAPass) Dispatch(viewport metadata.Viewport, aa metadata.AntiAliasing) {
	var cs metadata.Handle
	switch {
	case aa == metadata.AntiAliasingFXAA:
		cs = p.fxaa
	case aa.UsesMSAA():
		cs = p.msaa
	case aa.UsesSSAA():
		cs = p.ssaa
	default:
		return
	}
	p.ctx.Device.SetMarker("AAPass.Dispatch")
	p.ctx.Device.BindShader(metadata.ShaderStageCompute, cs)
	dispatch2D(p.ctx.Device, viewport)
}

/**
 * @brief Runs the post-processing compute shaders: depth of field and the
 * final tone mapping into the LDR image.
 */
type PostProcessPass struct {
	ctx         Context
	dof         metadata.Handle
	toneMapping [metadata.ToneMappingCount]metadata.Handle
}

func NewPostProcessPass(ctx Context) (*PostProcessPass, error) {
	shaders := newShaderLoader(ctx, "post-process pass")
	p := &PostProcessPass{ctx: ctx}
	p.dof = shaders.load(metadata.ShaderStageCompute, "depth_of_field")
	for tm := metadata.ToneMapping(0); tm < metadata.ToneMappingCount; tm++ {
		p.toneMapping[tm] = shaders.load(metadata.ShaderStageCompute, "tone_mapping_"+tm.String())
	}
	if shaders.err != nil {
		return nil, shaders.err
	}
	return p, nil
}

func (p *PostProcessPass) DispatchDOF(viewport metadata.Viewport) {
	p.ctx.Device.SetMarker("PostProcessPass.DispatchDOF")
	p.ctx.Device.BindShader(metadata.ShaderStageCompute, p.dof)
	dispatch2D(p.ctx.Device, viewport)
}

func (p *PostProcessPass) DispatchLDR(viewport metadata.Viewport, toneMapping metadata.ToneMapping) {
	p.ctx.Device.SetMarker("PostProcessPass.DispatchLDR")
	p.ctx.Device.BindShader(metadata.ShaderStageCompute, p.toneMapping[toneMapping])
	dispatch2D(p.ctx.Device, viewport)
}

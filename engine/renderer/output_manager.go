package renderer

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/pipeline"
)

// The render targets owned by the output manager.
type Target uint8

const (
	TargetHDR Target = iota
	TargetBaseColor
	TargetMaterial
	TargetNormal
	TargetDepth
	TargetPostProcessingHDR0
	TargetPostProcessingHDR1
	TargetPostProcessingNormal
	TargetPostProcessingDepth
	TargetLDR
	TargetCount
)

var targetNames = [TargetCount]string{
	"hdr",
	"gbuffer_base_color",
	"gbuffer_material",
	"gbuffer_normal",
	"depth",
	"pp_hdr0",
	"pp_hdr1",
	"pp_normal",
	"pp_depth",
	"ldr",
}

func (t Target) String() string {
	if t < TargetCount {
		return targetNames[t]
	}
	return "unknown"
}

var clearColour = math.NewVec4(0, 0, 0, 0)

/**
 * @brief OutputManager owns every intermediate render target and moves the
 * pipeline between the phases of a frame by rebinding them. Scene targets
 * are rendered at the supersampled resolution and carry the MSAA sample
 * count; post-processing targets have the display resolution.
 */
type OutputManager struct {
	device     metadata.Device
	display    metadata.DisplayConfiguration
	clearDepth float32

	targets [TargetCount]metadata.Handle

	// per camera state
	resolved      bool
	hdr0ToHdr1    bool
	pingPongCount int
}

func NewOutputManager(device metadata.Device, display metadata.DisplayConfiguration, convention math.DepthConvention) (*OutputManager, error) {
	om := &OutputManager{
		device:     device,
		display:    display,
		clearDepth: pipeline.ClearDepth(convention),
	}
	if err := om.createTargets(); err != nil {
		om.releaseTargets()
		return nil, err
	}
	return om, nil
}

func (om *OutputManager) createTargets() error {
	ssWidth, ssHeight := om.display.SSDisplayResolution()
	width, height := om.display.DisplayResolution()
	samples := om.display.AntiAliasing.SampleCount()

	// multisampled textures cannot be written by compute shaders
	sceneBind := metadata.BindRenderTarget | metadata.BindShaderResource
	if !om.display.UsesMSAA() {
		sceneBind |= metadata.BindUnorderedAccess
	}
	ppBind := metadata.BindShaderResource | metadata.BindUnorderedAccess

	descs := [TargetCount]metadata.TextureDescriptor{
		TargetHDR:                  {Width: ssWidth, Height: ssHeight, SampleCount: samples, Format: metadata.FormatR16G16B16A16Float, Bind: sceneBind},
		TargetBaseColor:            {Width: ssWidth, Height: ssHeight, SampleCount: samples, Format: metadata.FormatR8G8B8A8UnormSRGB, Bind: metadata.BindRenderTarget | metadata.BindShaderResource},
		TargetMaterial:             {Width: ssWidth, Height: ssHeight, SampleCount: samples, Format: metadata.FormatR8G8B8A8Unorm, Bind: metadata.BindRenderTarget | metadata.BindShaderResource},
		TargetNormal:               {Width: ssWidth, Height: ssHeight, SampleCount: samples, Format: metadata.FormatR11G11B10Float, Bind: metadata.BindRenderTarget | metadata.BindShaderResource},
		TargetDepth:                {Width: ssWidth, Height: ssHeight, SampleCount: samples, Format: metadata.FormatD32Float, Bind: metadata.BindDepthStencil | metadata.BindShaderResource},
		TargetPostProcessingHDR0:   {Width: width, Height: height, Format: metadata.FormatR16G16B16A16Float, Bind: ppBind},
		TargetPostProcessingHDR1:   {Width: width, Height: height, Format: metadata.FormatR16G16B16A16Float, Bind: ppBind},
		TargetPostProcessingNormal: {Width: width, Height: height, Format: metadata.FormatR11G11B10Float, Bind: ppBind},
		TargetPostProcessingDepth:  {Width: width, Height: height, Format: metadata.FormatR32Float, Bind: ppBind},
		TargetLDR:                  {Width: width, Height: height, Format: metadata.FormatR8G8B8A8Unorm, Bind: ppBind | metadata.BindRenderTarget},
	}
	for t := Target(0); t < TargetCount; t++ {
		desc := descs[t]
		desc.Name = t.String()
		desc.MipLevels = 1
		if desc.SampleCount == 0 {
			desc.SampleCount = 1
		}
		h, err := om.device.CreateTexture(desc)
		if err != nil {
			return core.NewConstructionError("output manager", desc.Name, err)
		}
		om.targets[t] = h
	}
	return nil
}

func (om *OutputManager) releaseTargets() {
	for t, h := range om.targets {
		if h != metadata.InvalidHandle {
			om.device.Release(h)
			om.targets[t] = metadata.InvalidHandle
		}
	}
}

// Handle returns the device texture of target t.
func (om *OutputManager) Handle(t Target) metadata.Handle {
	return om.targets[t]
}

func (om *OutputManager) Display() metadata.DisplayConfiguration {
	return om.display
}

/**
 * @brief Recreates every target for the new display resolution. On failure
 * the manager holds no targets and must not be used for rendering.
 */
func (om *OutputManager) OnResize(width, height uint32) error {
	om.releaseTargets()
	om.display.Width = width
	om.display.Height = height
	if err := om.createTargets(); err != nil {
		om.releaseTargets()
		return err
	}
	return nil
}

func (om *OutputManager) Release() {
	om.releaseTargets()
}

// BindBegin clears every target at the start of a frame.
func (om *OutputManager) BindBegin() {
	om.device.SetMarker("BindBegin")
	for _, t := range []Target{TargetHDR, TargetBaseColor, TargetMaterial, TargetNormal, TargetLDR} {
		om.device.ClearRenderTarget(om.targets[t], clearColour)
	}
	om.device.ClearDepthStencil(om.targets[TargetDepth], om.clearDepth)
}

// BindBeginViewport resets the per camera post-processing state.
func (om *OutputManager) BindBeginViewport() {
	om.device.SetMarker("BindBeginViewport")
	om.resolved = false
	om.hdr0ToHdr1 = true
	om.pingPongCount = 0
}

func (om *OutputManager) BindBeginGBuffer() {
	om.device.SetMarker("BindBeginGBuffer")
	om.device.BindRenderTargets([]metadata.Handle{
		om.targets[TargetBaseColor],
		om.targets[TargetMaterial],
		om.targets[TargetNormal],
	}, om.targets[TargetDepth])
}

// BindEndGBuffer exposes the G-buffer to the pixel and compute stages.
func (om *OutputManager) BindEndGBuffer() {
	om.device.SetMarker("BindEndGBuffer")
	om.device.BindRenderTargets(nil, metadata.InvalidHandle)
	for _, stage := range []metadata.ShaderStage{metadata.ShaderStagePixel, metadata.ShaderStageCompute} {
		om.device.BindShaderResource(stage, metadata.SLOT_SRV_BASE_COLOR, om.targets[TargetBaseColor])
		om.device.BindShaderResource(stage, metadata.SLOT_SRV_MATERIAL, om.targets[TargetMaterial])
		om.device.BindShaderResource(stage, metadata.SLOT_SRV_NORMAL, om.targets[TargetNormal])
		om.device.BindShaderResource(stage, metadata.SLOT_SRV_DEPTH, om.targets[TargetDepth])
	}
}

/**
 * @brief Binds the HDR target as output of the deferred shading: a render
 * target for the multisampled pixel shader path, an unordered access view
 * for the compute path.
 */
func (om *OutputManager) BindBeginDeferred() {
	om.device.SetMarker("BindBeginDeferred")
	if om.display.UsesMSAA() {
		om.device.BindRenderTargets([]metadata.Handle{om.targets[TargetHDR]}, metadata.InvalidHandle)
	} else {
		om.device.BindUnorderedAccess(metadata.SLOT_UAV_IMAGE, om.targets[TargetHDR])
	}
}

func (om *OutputManager) BindEndDeferred() {
	om.device.SetMarker("BindEndDeferred")
	if om.display.UsesMSAA() {
		om.device.BindRenderTargets(nil, metadata.InvalidHandle)
	} else {
		om.device.BindUnorderedAccess(metadata.SLOT_UAV_IMAGE, metadata.InvalidHandle)
	}
	om.unbindGBuffer()
}

func (om *OutputManager) unbindGBuffer() {
	for _, stage := range []metadata.ShaderStage{metadata.ShaderStagePixel, metadata.ShaderStageCompute} {
		for _, slot := range []uint32{metadata.SLOT_SRV_BASE_COLOR, metadata.SLOT_SRV_MATERIAL, metadata.SLOT_SRV_NORMAL, metadata.SLOT_SRV_DEPTH} {
			om.device.BindShaderResource(stage, slot, metadata.InvalidHandle)
		}
	}
}

func (om *OutputManager) BindBeginForward() {
	om.device.SetMarker("BindBeginForward")
	om.device.BindRenderTargets([]metadata.Handle{
		om.targets[TargetHDR],
		om.targets[TargetNormal],
	}, om.targets[TargetDepth])
}

func (om *OutputManager) BindEndForward() {
	om.device.SetMarker("BindEndForward")
	om.device.BindRenderTargets(nil, metadata.InvalidHandle)
}

/**
 * @brief Binds the scene targets as input and the first post-processing
 * buffers as output of the anti-aliasing resolve.
 */
func (om *OutputManager) BindBeginResolve() {
	om.device.SetMarker("BindBeginResolve")
	om.device.BindShaderResource(metadata.ShaderStageCompute, metadata.SLOT_SRV_IMAGE, om.targets[TargetHDR])
	om.device.BindShaderResource(metadata.ShaderStageCompute, metadata.SLOT_SRV_NORMAL, om.targets[TargetNormal])
	om.device.BindShaderResource(metadata.ShaderStageCompute, metadata.SLOT_SRV_DEPTH, om.targets[TargetDepth])
	om.device.BindUnorderedAccess(metadata.SLOT_UAV_IMAGE, om.targets[TargetPostProcessingHDR0])
	om.device.BindUnorderedAccess(metadata.SLOT_UAV_NORMAL, om.targets[TargetPostProcessingNormal])
	om.device.BindUnorderedAccess(metadata.SLOT_UAV_DEPTH, om.targets[TargetPostProcessingDepth])
	om.hdr0ToHdr1 = true
	om.resolved = true
}

func (om *OutputManager) BindEndResolve() {
	om.device.SetMarker("BindEndResolve")
	om.unbindCompute()
}

func (om *OutputManager) unbindCompute() {
	for _, slot := range []uint32{metadata.SLOT_SRV_IMAGE, metadata.SLOT_SRV_NORMAL, metadata.SLOT_SRV_DEPTH} {
		om.device.BindShaderResource(metadata.ShaderStageCompute, slot, metadata.InvalidHandle)
	}
	for _, slot := range []uint32{metadata.SLOT_UAV_IMAGE, metadata.SLOT_UAV_NORMAL, metadata.SLOT_UAV_DEPTH} {
		om.device.BindUnorderedAccess(slot, metadata.InvalidHandle)
	}
}

/**
 * @brief Prepares the post-processing buffers. Without a resolve the scene
 * targets are copied into them.
 */
func (om *OutputManager) BindBeginPostProcessing() {
	om.device.SetMarker("BindBeginPostProcessing")
	if !om.resolved {
		om.device.CopyResource(om.targets[TargetPostProcessingHDR0], om.targets[TargetHDR])
		om.device.CopyResource(om.targets[TargetPostProcessingNormal], om.targets[TargetNormal])
		om.device.CopyResource(om.targets[TargetPostProcessingDepth], om.targets[TargetDepth])
		om.hdr0ToHdr1 = true
		om.resolved = true
	}
	om.device.BindShaderResource(metadata.ShaderStageCompute, metadata.SLOT_SRV_NORMAL, om.targets[TargetPostProcessingNormal])
	om.device.BindShaderResource(metadata.ShaderStageCompute, metadata.SLOT_SRV_DEPTH, om.targets[TargetPostProcessingDepth])
}

/**
 * @brief Binds the current output as input and the other post-processing
 * buffer as output of the next stage, then swaps them.
 */
func (om *OutputManager) BindPingPong() {
	om.device.SetMarker("BindPingPong")
	src, dst := om.targets[TargetPostProcessingHDR0], om.targets[TargetPostProcessingHDR1]
	if !om.hdr0ToHdr1 {
		src, dst = dst, src
	}
	om.device.BindUnorderedAccess(metadata.SLOT_UAV_IMAGE, metadata.InvalidHandle)
	om.device.BindShaderResource(metadata.ShaderStageCompute, metadata.SLOT_SRV_IMAGE, src)
	om.device.BindUnorderedAccess(metadata.SLOT_UAV_IMAGE, dst)
	om.hdr0ToHdr1 = !om.hdr0ToHdr1
	om.pingPongCount++
}

// CurrentOutput returns the post-processing buffer holding the latest image.
func (om *OutputManager) CurrentOutput() Target {
	if om.hdr0ToHdr1 {
		return TargetPostProcessingHDR0
	}
	return TargetPostProcessingHDR1
}

// PingPongCount returns the number of swaps since the camera's viewport began.
func (om *OutputManager) PingPongCount() int {
	return om.pingPongCount
}

// BindEndPostProcessing binds the current output and the LDR target for the tone mapping.
func (om *OutputManager) BindEndPostProcessing() {
	om.device.SetMarker("BindEndPostProcessing")
	om.device.BindUnorderedAccess(metadata.SLOT_UAV_IMAGE, metadata.InvalidHandle)
	om.device.BindShaderResource(metadata.ShaderStageCompute, metadata.SLOT_SRV_IMAGE, om.targets[om.CurrentOutput()])
	om.device.BindUnorderedAccess(metadata.SLOT_UAV_IMAGE, om.targets[TargetLDR])
}

func (om *OutputManager) BindEndViewport() {
	om.device.SetMarker("BindEndViewport")
}

// BindGUI unbinds the compute resources and binds the LDR target for the sprites.
func (om *OutputManager) BindGUI() {
	om.device.SetMarker("BindGUI")
	om.unbindCompute()
	om.device.BindRenderTargets([]metadata.Handle{om.targets[TargetLDR]}, metadata.InvalidHandle)
}

// BindEnd exposes the LDR image to the back buffer pass.
func (om *OutputManager) BindEnd() {
	om.device.SetMarker("BindEnd")
	om.device.BindRenderTargets(nil, metadata.InvalidHandle)
	om.device.BindShaderResource(metadata.ShaderStagePixel, metadata.SLOT_SRV_IMAGE, om.targets[TargetLDR])
}

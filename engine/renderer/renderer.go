package renderer

import (
	"errors"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/passes"
	"github.com/spaghettifunk/lumen/engine/renderer/pipeline"
	"github.com/spaghettifunk/lumen/engine/scene"
)

type Config struct {
	Convention          math.DepthConvention
	Gamma               float32
	ShadowMapResolution uint32
	VoxelGrid           metadata.VoxelGrid
}

func DefaultConfig() Config {
	return Config{
		Convention:          math.DefaultDepthConvention,
		Gamma:               2.2,
		ShadowMapResolution: 512,
		VoxelGrid:           metadata.VoxelGrid{Resolution: 128, VoxelSize: 0.1},
	}
}

/**
 * @brief Renderer records the frame of a world on the device: for every
 * active camera the passes of its render mode, the anti-aliasing resolve
 * and the post-processing, then the sprites and the final copy to the back
 * buffer. Every pass is created up front; a failure to create any of them
 * fails the construction.
 */
type Renderer struct {
	device  metadata.Device
	config  Config
	display metadata.DisplayConfiguration

	states        *pipeline.StateManager
	outputManager *OutputManager
	worldBuffer   *pipeline.ConstantBuffer[metadata.WorldBuffer]
	cameraBuffer  *pipeline.ConstantBuffer[metadata.CameraBuffer]

	depthPass          *passes.DepthPass
	forwardPass        *passes.ForwardPass
	deferredPass       *passes.DeferredPass
	lbufferPass        *passes.LBufferPass
	voxelizationPass   *passes.VoxelizationPass
	voxelGridPass      *passes.VoxelGridPass
	aaPass             *passes.AAPass
	postProcessPass    *passes.PostProcessPass
	skyPass            *passes.SkyPass
	spritePass         *passes.SpritePass
	backBufferPass     *passes.BackBufferPass
	boundingVolumePass *passes.BoundingVolumePass
}

func NewRenderer(device metadata.Device, display metadata.DisplayConfiguration, shaders metadata.ShaderLibrary, config Config) (*Renderer, error) {
	if err := display.Validate(); err != nil {
		return nil, core.NewConstructionError("renderer", "display configuration", err)
	}
	if config.Gamma <= 0 {
		return nil, core.NewConstructionError("renderer", "world buffer", errors.New("gamma must be positive"))
	}

	r := &Renderer{device: device, config: config, display: display}
	if err := r.initialize(shaders); err != nil {
		r.Release()
		return nil, err
	}
	core.LogInfo("renderer: %dx%d, antialiasing %s, %s depth", display.Width, display.Height, display.AntiAliasing, config.Convention)
	return r, nil
}

func (r *Renderer) initialize(shaders metadata.ShaderLibrary) error {
	var err error
	if r.states, err = pipeline.NewStateManager(r.device, r.config.Convention, r.display.UsesMSAA()); err != nil {
		return err
	}
	if r.outputManager, err = NewOutputManager(r.device, r.display, r.config.Convention); err != nil {
		return err
	}
	if r.worldBuffer, err = pipeline.NewConstantBuffer[metadata.WorldBuffer](r.device, "world"); err != nil {
		return err
	}
	if r.cameraBuffer, err = pipeline.NewConstantBuffer[metadata.CameraBuffer](r.device, "camera"); err != nil {
		return err
	}

	ctx := passes.Context{Device: r.device, Shaders: shaders, States: r.states}
	if r.depthPass, err = passes.NewDepthPass(ctx); err != nil {
		return err
	}
	if r.forwardPass, err = passes.NewForwardPass(ctx); err != nil {
		return err
	}
	if r.deferredPass, err = passes.NewDeferredPass(ctx); err != nil {
		return err
	}
	if r.lbufferPass, err = passes.NewLBufferPass(ctx, r.depthPass, r.config.ShadowMapResolution); err != nil {
		return err
	}
	if r.voxelizationPass, err = passes.NewVoxelizationPass(ctx, r.config.VoxelGrid); err != nil {
		return err
	}
	if r.voxelGridPass, err = passes.NewVoxelGridPass(ctx); err != nil {
		return err
	}
	if r.aaPass, err = passes.NewAAPass(ctx); err != nil {
		return err
	}
	if r.postProcessPass, err = passes.NewPostProcessPass(ctx); err != nil {
		return err
	}
	if r.skyPass, err = passes.NewSkyPass(ctx); err != nil {
		return err
	}
	if r.spritePass, err = passes.NewSpritePass(ctx); err != nil {
		return err
	}
	if r.backBufferPass, err = passes.NewBackBufferPass(ctx); err != nil {
		return err
	}
	if r.boundingVolumePass, err = passes.NewBoundingVolumePass(ctx); err != nil {
		return err
	}
	return nil
}

func (r *Renderer) OutputManager() *OutputManager {
	return r.outputManager
}

func (r *Renderer) Display() metadata.DisplayConfiguration {
	return r.display
}

// BindPersistentState binds the state that stays bound for the whole session.
func (r *Renderer) BindPersistentState() {
	r.states.BindPersistentState()
}

/**
 * @brief Recreates the size dependent targets. A failure leaves the
 * renderer unusable and is reported as a construction error.
 */
func (r *Renderer) OnResize(width, height uint32) error {
	if width == 0 || height == 0 {
		// minimized, keep the current targets
		return nil
	}
	r.display.Width = width
	r.display.Height = height
	return r.outputManager.OnResize(width, height)
}

// Render records one frame of world. Presenting the back buffer is up to the caller.
func (r *Renderer) Render(world *scene.World, time core.GameTime) {
	r.updateWorldBuffer(time)
	r.worldBuffer.BindToPipeline(metadata.SLOT_CBUFFER_WORLD)

	r.outputManager.BindBegin()

	world.ForEachActiveCamera(func(_ scene.CameraPtr, camera *scene.Camera) {
		r.renderCamera(world, camera)
	})

	r.outputManager.BindGUI()
	width, height := r.display.DisplayResolution()
	r.device.SetViewport(metadata.NewViewport(width, height))
	r.spritePass.Render(world, width, height)
	r.outputManager.BindEnd()
	r.backBufferPass.Render()
}

func (r *Renderer) updateWorldBuffer(time core.GameTime) {
	width, height := r.display.DisplayResolution()
	ssWidth, ssHeight := r.display.SSDisplayResolution()
	grid := r.config.VoxelGrid

	buffer := metadata.WorldBuffer{
		DisplayResolution:       math.NewVec2(float32(width), float32(height)),
		DisplayInvResolution:    math.NewVec2(1.0/float32(width), 1.0/float32(height)),
		SSDisplayResolution:     math.NewVec2(float32(ssWidth), float32(ssHeight)),
		SSDisplayInvResolution:  math.NewVec2(1.0/float32(ssWidth), 1.0/float32(ssHeight)),
		VoxelGridCenter:         grid.Center,
		VoxelTextureMaxMipLevel: grid.MaxMipLevel(),
		VoxelGridResolution:     grid.Resolution,
		VoxelSize:               grid.VoxelSize,
		Time:                    float32(time.Total),
		InvGamma:                1.0 / r.config.Gamma,
	}
	if grid.Resolution > 0 {
		buffer.VoxelGridInvResolution = 1.0 / float32(grid.Resolution)
	}
	if grid.VoxelSize > 0 {
		buffer.VoxelInvSize = 1.0 / grid.VoxelSize
	}
	r.worldBuffer.UpdateData(&buffer)
}

func (r *Renderer) renderCamera(world *scene.World, camera *scene.Camera) {
	convention := r.config.Convention
	data := camera.Buffer(world, &r.display, convention)
	r.cameraBuffer.UpdateData(&data)
	r.cameraBuffer.BindToPipeline(metadata.SLOT_CBUFFER_PRIMARY_CAMERA)

	worldToProjection := camera.WorldToProjection(world, &r.display, convention)
	settings := &camera.Settings
	viewport := camera.PixelViewport(&r.display)
	ssViewport := viewport.Scaled(r.display.AntiAliasing)

	r.outputManager.BindBeginViewport()

	switch mode := settings.RenderMode; {
	case mode == metadata.RenderModeForward:
		r.renderForward(world, worldToProjection, settings, ssViewport)
	case mode == metadata.RenderModeDeferred:
		r.renderDeferred(world, worldToProjection, settings, ssViewport)
	case mode == metadata.RenderModeSolid:
		r.lbufferPass.Render(world, worldToProjection)
		r.device.SetViewport(ssViewport)
		r.outputManager.BindBeginForward()
		r.forwardPass.RenderSolid(world, worldToProjection)
	case mode == metadata.RenderModeVoxelGrid:
		r.lbufferPass.Render(world, worldToProjection)
		r.voxelizationPass.Render(world)
		r.device.SetViewport(ssViewport)
		r.outputManager.BindBeginForward()
		r.voxelGridPass.Render(r.voxelizationPass.Grid())
	default:
		if falseColor, ok := mode.FalseColor(); ok {
			r.device.SetViewport(ssViewport)
			r.outputManager.BindBeginForward()
			r.forwardPass.RenderFalseColor(world, worldToProjection, falseColor)
		} else {
			r.device.SetViewport(ssViewport)
			r.outputManager.BindBeginForward()
		}
	}

	if settings.ContainsRenderLayer(metadata.RenderLayerWireframe) {
		r.forwardPass.RenderWireframe(world, worldToProjection)
	}
	if settings.ContainsRenderLayer(metadata.RenderLayerAABB) {
		r.boundingVolumePass.Render(world, worldToProjection)
	}
	r.outputManager.BindEndForward()

	r.renderAA(viewport)
	r.renderPostProcessing(camera, viewport)
}

func (r *Renderer) renderForward(world *scene.World, worldToProjection math.Mat4, settings *scene.CameraSettings, viewport metadata.Viewport) {
	r.lbufferPass.Render(world, worldToProjection)
	if settings.Voxelization.UsesVCT() {
		r.voxelizationPass.Render(world)
	}
	r.device.SetViewport(viewport)
	r.outputManager.BindBeginForward()
	if settings.Voxelization.UsesVCT() {
		r.depthPass.Render(world, worldToProjection)
	}
	r.forwardPass.Render(world, worldToProjection, settings)
	r.forwardPass.RenderEmissive(world, worldToProjection)
	r.skyPass.Render(settings)
	r.forwardPass.RenderTransparent(world, worldToProjection, settings)
}

func (r *Renderer) renderDeferred(world *scene.World, worldToProjection math.Mat4, settings *scene.CameraSettings, viewport metadata.Viewport) {
	r.lbufferPass.Render(world, worldToProjection)
	if settings.Voxelization.UsesVCT() {
		r.voxelizationPass.Render(world)
	}
	r.device.SetViewport(viewport)

	r.outputManager.BindBeginGBuffer()
	r.forwardPass.RenderGBuffer(world, worldToProjection)
	r.outputManager.BindEndGBuffer()

	r.outputManager.BindBeginDeferred()
	if r.display.UsesMSAA() {
		r.deferredPass.Render(settings)
	} else {
		r.deferredPass.Dispatch(viewport, settings)
	}
	r.outputManager.BindEndDeferred()

	r.outputManager.BindBeginForward()
	r.forwardPass.RenderEmissive(world, worldToProjection)
	r.skyPass.Render(settings)
	r.forwardPass.RenderTransparent(world, worldToProjection, settings)
}

func (r *Renderer) renderAA(viewport metadata.Viewport) {
	aa := r.display.AntiAliasing
	switch {
	case aa == metadata.AntiAliasingFXAA:
		r.outputManager.BindBeginResolve()
		r.aaPass.DispatchPreprocess(viewport)
		r.outputManager.BindEndResolve()
		r.outputManager.BindPingPong()
		r.aaPass.Dispatch(viewport, aa)
	case aa.UsesMSAA() || aa.UsesSSAA():
		r.outputManager.BindBeginResolve()
		r.aaPass.Dispatch(viewport, aa)
		r.outputManager.BindEndResolve()
	}
}

func (r *Renderer) renderPostProcessing(camera *scene.Camera, viewport metadata.Viewport) {
	r.outputManager.BindBeginPostProcessing()
	if camera.Lens.HasFiniteAperture() {
		r.outputManager.BindPingPong()
		r.postProcessPass.DispatchDOF(viewport)
	}
	r.outputManager.BindEndPostProcessing()
	r.outputManager.BindEndViewport()
	r.postProcessPass.DispatchLDR(viewport, camera.Settings.ToneMapping)
}

// Release frees the device resources of the renderer.
func (r *Renderer) Release() {
	if r.outputManager != nil {
		r.outputManager.Release()
	}
	if r.worldBuffer != nil {
		r.worldBuffer.Release()
	}
	if r.cameraBuffer != nil {
		r.cameraBuffer.Release()
	}
	if r.depthPass != nil {
		r.depthPass.Release()
	}
	if r.forwardPass != nil {
		r.forwardPass.Release()
	}
	if r.lbufferPass != nil {
		r.lbufferPass.Release()
	}
	if r.voxelizationPass != nil {
		r.voxelizationPass.Release()
	}
	if r.spritePass != nil {
		r.spritePass.Release()
	}
	if r.boundingVolumePass != nil {
		r.boundingVolumePass.Release()
	}
}

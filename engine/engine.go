package engine

import (
	"errors"
	"runtime"
	"time"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/config"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/platform"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/scene"
	"github.com/spaghettifunk/lumen/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Size of the job queue of the asset loading workers.
const jobQueueSize = 64

// Sleep between polls while the window is minimized.
const suspendedPollInterval = 10 * time.Millisecond

// Recording devices drop the commands of a presented frame.
type frameResetter interface {
	Reset()
}

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *config.Config
	isRunning    bool
	isSuspended  bool
	// Set when the frame loop cannot go on.
	failure      error
	width        uint32
	height       uint32

	device       metadata.Device
	platform     *platform.Platform
	events       *core.EventSystem
	input        *core.InputState
	clock        *core.Clock
	metrics      *core.Metrics
	time         core.GameTime
	jobs         *systems.JobSystem
	assetManager *assets.AssetManager
	resources    *assets.ResourceManager
	renderer     *renderer.Renderer
	world        *scene.World
}

// New creates an engine rendering g on device.
func New(g *Game, device metadata.Device) (*Engine, error) {
	if g.ApplicationConfig == nil || g.ApplicationConfig.Config == nil {
		return nil, core.NewConstructionError("engine", "application", errors.New("missing configuration"))
	}
	cfg := g.ApplicationConfig.Config
	if err := cfg.Validate(); err != nil {
		return nil, core.NewConstructionError("engine", "application", err)
	}

	events := core.NewEventSystem()
	input := core.NewInputState(events)

	jobs, err := systems.NewJobSystem(runtime.NumCPU(), jobQueueSize)
	if err != nil {
		return nil, core.NewConstructionError("engine", "job system", err)
	}

	// Without watching, changes still update the index but nothing reloads.
	var assetEvents *core.EventSystem
	if cfg.Assets.Watch {
		assetEvents = events
	}
	am, err := assets.NewAssetManager(assetEvents)
	if err != nil {
		_ = jobs.Shutdown()
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       cfg,
		width:        cfg.Display.Width,
		height:       cfg.Display.Height,
		device:       device,
		events:       events,
		input:        input,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		jobs:         jobs,
		assetManager: am,
		world:        scene.NewWorld(),
	}
	if !cfg.Application.Headless {
		e.platform = platform.New(input, events)
	}
	return e, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.events.Register(core.EVENT_CODE_SET_RENDER_MODE, e, e.onSetRenderMode)

	if e.platform != nil {
		app := e.config.Application
		if err := e.platform.Startup(app.Name, app.StartPosX, app.StartPosY, e.width, e.height); err != nil {
			return err
		}
	}

	if err := e.assetManager.Initialize(e.config.Assets.Root); err != nil {
		return core.NewConstructionError("engine", "asset manager", err)
	}
	e.resources = assets.NewResourceManager(e.device, e.assetManager, e.jobs, assets.ResourceManagerConfig{
		ShaderDir: e.config.Assets.Shaders,
	})
	e.events.Register(core.EVENT_CODE_ASSET_CHANGED, e.resources, e.resources.OnAssetChanged)

	display, err := e.config.DisplayConfiguration()
	if err != nil {
		return err
	}
	convention, err := e.config.DepthConvention()
	if err != nil {
		return err
	}
	shaders := e.gameInstance.Shaders
	if shaders == nil {
		shaders = e.resources
	}
	e.renderer, err = renderer.NewRenderer(e.device, display, shaders, renderer.Config{
		Convention:          convention,
		Gamma:               e.config.Renderer.Gamma,
		ShadowMapResolution: e.config.Renderer.ShadowMapResolution,
		VoxelGrid:           e.config.VoxelGrid(),
	})
	if err != nil {
		return err
	}
	e.renderer.BindPersistentState()

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e.context()); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) context() *Context {
	return &Context{
		World:     e.world,
		Assets:    e.assetManager,
		Resources: e.resources,
		Events:    e.events,
		Input:     e.input,
		Metrics:   e.metrics,
	}
}

// Run drives the frame loop until the application quits or the configured frame count is reached.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return core.NewConstructionError("engine", "frame loop", errors.New("engine not initialized"))
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.time = core.GameTime{}

	ctx := e.context()
	maxFrames := e.config.Application.MaxFrames

	for e.isRunning {
		if e.platform != nil && !e.platform.PumpMessages() {
			e.isRunning = false
			break
		}
		e.events.Dispatch()
		e.jobs.Update()
		if !e.isRunning {
			break
		}

		if e.isSuspended {
			time.Sleep(suspendedPollInterval)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		e.time = e.time.Advance(e.clock.Elapsed())
		frameStart := time.Now()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(ctx, e.time); err != nil {
				core.LogError("game update failed, shutting down: %s", err.Error())
				e.isRunning = false
				return err
			}
		}

		e.renderer.Render(e.world, e.time)
		e.device.Present(e.config.Display.VSync)
		if r, ok := e.device.(frameResetter); ok {
			r.Reset()
		}

		e.metrics.Update(time.Since(frameStart).Seconds())
		if e.time.Frame%120 == 0 {
			fps, ms := e.metrics.Frame()
			core.LogDebug("frame %d: %.1f fps, %.3f ms", e.time.Frame, fps, ms)
		}

		// Input state is copied last so this frame's changes stay visible until now.
		e.input.Update()

		if maxFrames > 0 && e.time.Frame >= maxFrames {
			e.isRunning = false
		}
	}
	return e.failure
}

// Shutdown stops the subsystems in the reverse order of their creation.
func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	if err := e.jobs.Shutdown(); err != nil && !errors.Is(err, core.ErrAlreadyClosed) {
		errs = append(errs, err)
	}
	if e.resources != nil {
		e.resources.Close()
	}
	if e.renderer != nil {
		e.renderer.Release()
	}
	if err := e.assetManager.Close(); err != nil && !errors.Is(err, core.ErrAlreadyClosed) {
		errs = append(errs, err)
	}
	e.events.Shutdown()
	if e.platform != nil && e.platform.Window != nil {
		errs = append(errs, e.platform.Shutdown())
	}
	e.currentStage = EngineStageUninitialized
	return errors.Join(errs...)
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) Time() core.GameTime {
	return e.time
}

func (e *Engine) World() *scene.World {
	return e.world
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

func (e *Engine) Events() *core.EventSystem {
	return e.events
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT, Sender: e})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onSetRenderMode(context core.EventContext) bool {
	mode, ok := context.Data.(metadata.RenderMode)
	if !ok || mode >= metadata.RenderModeCount {
		core.LogError("invalid render mode %v", context.Data)
		return false
	}
	e.world.ForEachActiveCamera(func(_ scene.CameraPtr, camera *scene.Camera) {
		camera.Settings.RenderMode = mode
	})
	core.LogInfo("render mode: %s", mode)
	return true
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.ResizeEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	width := se.Width
	height := se.Height
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError("game resize failed: %s", err.Error())
		}
	}
	if e.renderer != nil {
		if err := e.renderer.OnResize(width, height); err != nil {
			// The output targets are gone; nothing can be rendered anymore.
			core.LogError("resize failed: %s", err.Error())
			e.failure = err
			e.isRunning = false
		}
	}
	return false
}

package testbed

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/scene"
	"github.com/spaghettifunk/lumen/engine/systems"
)

// Spacing of the loaded models along X.
const modelSpacing = 4.0

type TestGame struct {
	*engine.Game
}

type gameState struct {
	width  uint32
	height uint32

	camera     scene.CameraPtr
	cameraNode scene.NodePtr
	controller *systems.CameraController
	stats      scene.SpriteTextPtr
	renderMode metadata.RenderMode

	models []*assets.ModelResource
	ctx    *engine.Context
}

func NewTestGame(app *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: app,
			State: &gameState{
				renderMode: metadata.RenderModeForward,
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Initialize(ctx *engine.Context) error {
	core.LogDebug("TestGame Initialize fn....")

	state := g.State.(*gameState)
	state.ctx = ctx
	world := ctx.World

	state.cameraNode = world.CreateNode("camera")
	state.cameraNode.Get().Transform().SetPosition(math.NewVec3(0, 2, -10))
	state.camera = world.AddCamera(state.cameraNode, scene.NewPerspectiveCamera(math.DegToRad(60), 0.1, 1000))
	state.controller = systems.NewCameraController(state.cameraNode, ctx.Input)

	sun := world.CreateNode("sun")
	sun.Get().Transform().SetRotation(math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), math.DegToRad(45), true))
	world.AddDirectionalLight(sun, scene.NewDirectionalLight(math.NewRGB(3, 3, 3)))
	world.AmbientLight().Radiance = math.NewRGB(0.1, 0.1, 0.1)

	font, err := ctx.Resources.DefaultFont()
	if err != nil {
		return err
	}
	state.stats = world.AddSpriteText(world.CreateNode("stats"), scene.NewSpriteText("", font, scene.NewSpriteTransform(math.NewVec2(10, 10))))

	for i, info := range ctx.Assets.Assets(assets.AssetTypeMesh) {
		offset := float32(i) * modelSpacing
		path := info.Path
		if err := ctx.Resources.ModelAsync(path, func(model *assets.ModelResource, err error) {
			if err != nil {
				core.LogWarn("failed to load %s: %s", path, err.Error())
				return
			}
			g.addModel(model, offset)
		}); err != nil {
			return err
		}
	}

	ctx.Events.Register(core.EVENT_CODE_KEY_PRESSED, g, g.gameOnKey)
	return nil
}

func (g *TestGame) addModel(model *assets.ModelResource, offset float32) {
	state := g.State.(*gameState)
	world := state.ctx.World

	root := world.CreateNode(model.Path)
	root.Get().Transform().SetPosition(math.NewVec3(offset, 0, 0))
	for i, m := range model.Models(scene.DefaultMaterial()) {
		part := world.CreateNode(fmt.Sprintf("%s#%d", model.Path, i))
		world.AddChild(root, part)
		world.AddModel(part, m)
	}
	state.models = append(state.models, model)
	core.LogInfo("placed %s with %d parts", model.Path, len(model.Parts))
}

func (g *TestGame) Update(ctx *engine.Context, time core.GameTime) error {
	state := g.State.(*gameState)

	state.controller.Update(time.Delta)

	if time.Frame%30 == 0 {
		fps, ms := ctx.Metrics.Frame()
		pos := state.cameraNode.Get().Transform().Position()
		rot := state.controller.EulerRotation()
		state.stats.Get().Text = fmt.Sprintf("%s\n%.0f fps %.2f ms\ncamera [%.2f, %.2f, %.2f] pitch %.0f yaw %.0f",
			state.renderMode, fps, ms, pos.X, pos.Y, pos.Z, math.RadToDeg(rot.X), math.RadToDeg(rot.Y))
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	for _, model := range state.models {
		state.ctx.Resources.ReleaseModel(model.Path)
	}
	state.models = nil
	return nil
}

func (g *TestGame) gameOnKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		return false
	}
	state := g.State.(*gameState)

	mode := state.renderMode
	switch ke.KeyCode {
	case core.KEY_F1:
		mode = metadata.RenderModeForward
	case core.KEY_F1 + 1:
		mode = metadata.RenderModeDeferred
	case core.KEY_F1 + 2:
		mode = metadata.RenderModeSolid
	case core.KEY_F1 + 3:
		mode = metadata.RenderModeVoxelGrid
	case core.KEY_M:
		// Cycle through every mode but none.
		mode = mode%(metadata.RenderModeCount-1) + 1
	default:
		return false
	}
	state.renderMode = mode
	if err := state.ctx.Events.Post(core.EventContext{
		Type:   core.EVENT_CODE_SET_RENDER_MODE,
		Sender: g,
		Data:   mode,
	}); err != nil {
		core.LogWarn("render mode change dropped: %s", err.Error())
	}
	return true
}

package engine

import (
	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/scene"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	// Compiled shaders. Nil loads them through the resource manager.
	Shaders      metadata.ShaderLibrary
	FnInitialize Initialize
	FnUpdate     Update
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

// Context is what the engine hands the game callbacks.
type Context struct {
	World     *scene.World
	Assets    *assets.AssetManager
	Resources *assets.ResourceManager
	Events    *core.EventSystem
	Input     *core.InputState
	Metrics   *core.Metrics
}

type Initialize func(ctx *Context) error
type Update func(ctx *Context, time core.GameTime) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error

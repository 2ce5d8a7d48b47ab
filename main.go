/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/headless"
	"github.com/spaghettifunk/lumen/testbed"
)

func main() {
	configPath := flag.String("config", "lumen.toml", "path of the engine configuration")
	flag.Parse()

	app, err := engine.NewApplicationConfig(*configPath)
	if err != nil {
		core.LogFatal("invalid configuration: %s", err.Error())
	}

	// The GPU backend lives outside this module; frames are recorded.
	device := headless.NewRecorder()
	tb := testbed.NewTestGame(app)
	tb.Shaders = headless.NewShaderLibrary(device)

	e, err := engine.New(tb.Game, device)
	if err != nil {
		core.LogFatal(err.Error())
	}
	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal(err.Error())
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// quit through the event queue so the frame loop stops between frames
	go func() {
		<-sigCh
		_ = e.Events().Post(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}()

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err.Error())
	}
	if runErr != nil {
		core.LogFatal(runErr.Error())
	}
}

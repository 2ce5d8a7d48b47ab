package systems

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/scene"
)

func newTestController() (*CameraController, *core.InputState, scene.NodePtr) {
	world := scene.NewWorld()
	node := world.CreateNode("camera")
	input := core.NewInputState(core.NewEventSystem())
	return NewCameraController(node, input), input, node
}

func TestCameraControllerMoves(t *testing.T) {
	c, input, node := newTestController()

	assert.False(t, c.Update(1))

	input.ProcessKey(core.KEY_W, true)
	assert.True(t, c.Update(0.5))
	assert.True(t, node.Get().Transform().Position().Compare(math.NewVec3(0, 0, 2.5), 1e-5))

	input.ProcessKey(core.KEY_D, true)
	c.Update(1)
	// Diagonal moves are normalized.
	step := float32(5) / math32.Sqrt(2)
	assert.True(t, node.Get().Transform().Position().Compare(math.NewVec3(step, 0, 2.5+step), 1e-4))

	input.ProcessKey(core.KEY_W, false)
	input.ProcessKey(core.KEY_D, false)
	input.ProcessKey(core.KEY_E, true)
	c.Update(0.2)
	assert.InDelta(t, 1.0, node.Get().Transform().Position().Y, 1e-5)
}

func TestCameraControllerTurns(t *testing.T) {
	c, input, _ := newTestController()

	assert.True(t, c.Forward().Compare(math.NewVec3(0, 0, 1), 1e-5))

	c.Yaw(math.K_HALF_PI)
	forward := c.Forward()
	assert.InDelta(t, 1.0, math32.Abs(forward.X), 1e-5)
	assert.InDelta(t, 0.0, forward.Z, 1e-5)

	c.Pitch(10)
	assert.Equal(t, pitchLimit, c.EulerRotation().X)
	c.Pitch(-20)
	assert.Equal(t, -pitchLimit, c.EulerRotation().X)

	input.ProcessKey(core.KEY_RIGHT, true)
	assert.True(t, c.Update(1))
	assert.InDelta(t, math.K_HALF_PI+1.5, c.EulerRotation().Y, 1e-5)
}

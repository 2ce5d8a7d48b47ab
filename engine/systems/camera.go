package systems

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/scene"
)

// 89 degrees, or equivalent to deg_to_rad(89.0f)
const pitchLimit = float32(1.55334306)

/**
 * @brief CameraController flies the node of a camera from the keyboard:
 * WASD moves in the view plane, Q and E move down and up, the arrow keys
 * turn. The node's rotation is owned by the controller.
 */
type CameraController struct {
	node  scene.NodePtr
	input *core.InputState

	// Units per second.
	MoveSpeed float32
	// Radians per second.
	TurnSpeed float32

	yaw   float32
	pitch float32
}

func NewCameraController(node scene.NodePtr, input *core.InputState) *CameraController {
	return &CameraController{
		node:      node,
		input:     input,
		MoveSpeed: 5,
		TurnSpeed: 1.5,
	}
}

func (c *CameraController) Yaw(amount float32) {
	c.yaw += amount
	c.updateRotation()
}

func (c *CameraController) Pitch(amount float32) {
	// Clamp to avoid Gimbal lock.
	c.pitch = math.Clamp(c.pitch+amount, -pitchLimit, pitchLimit)
	c.updateRotation()
}

// EulerRotation returns the pitch and yaw in radians.
func (c *CameraController) EulerRotation() math.Vec3 {
	return math.NewVec3(c.pitch, c.yaw, 0)
}

func (c *CameraController) rotation() math.Quaternion {
	yaw := math.NewQuatFromAxisAngle(math.NewVec3(0, 1, 0), c.yaw, true)
	pitch := math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), c.pitch, true)
	return yaw.Mul(pitch)
}

func (c *CameraController) updateRotation() {
	c.node.Get().Transform().SetRotation(c.rotation())
}

// Forward returns the direction the camera looks at.
func (c *CameraController) Forward() math.Vec3 {
	return math.NewVec3Forward().TransformNormal(c.rotation().ToMat4())
}

func (c *CameraController) Right() math.Vec3 {
	return math.NewVec3Right().TransformNormal(c.rotation().ToMat4())
}

// Update applies the input of a frame lasting delta seconds and reports whether the camera moved.
func (c *CameraController) Update(delta float64) bool {
	dt := float32(delta)

	turn := math.Vec2{}
	if c.input.IsKeyDown(core.KEY_LEFT) {
		turn.X -= 1
	}
	if c.input.IsKeyDown(core.KEY_RIGHT) {
		turn.X += 1
	}
	if c.input.IsKeyDown(core.KEY_UP) {
		turn.Y -= 1
	}
	if c.input.IsKeyDown(core.KEY_DOWN) {
		turn.Y += 1
	}
	if turn.X != 0 {
		c.Yaw(turn.X * c.TurnSpeed * dt)
	}
	if turn.Y != 0 {
		c.Pitch(turn.Y * c.TurnSpeed * dt)
	}

	var move math.Vec3
	forward, right := c.Forward(), c.Right()
	if c.input.IsKeyDown(core.KEY_W) {
		move = move.Add(forward)
	}
	if c.input.IsKeyDown(core.KEY_S) {
		move = move.Sub(forward)
	}
	if c.input.IsKeyDown(core.KEY_D) {
		move = move.Add(right)
	}
	if c.input.IsKeyDown(core.KEY_A) {
		move = move.Sub(right)
	}
	if c.input.IsKeyDown(core.KEY_E) {
		move = move.Add(math.NewVec3Up())
	}
	if c.input.IsKeyDown(core.KEY_Q) {
		move = move.Sub(math.NewVec3Up())
	}
	if move.LengthSquared() > 0 {
		c.node.Get().Transform().Translate(move.Normalized().MulScalar(c.MoveSpeed * dt))
		return true
	}
	return turn.X != 0 || turn.Y != 0
}

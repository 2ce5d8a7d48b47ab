package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func TestCameraCullsOutsideTheFrustum(t *testing.T) {
	w := NewWorld()
	node := w.CreateNode("camera")
	camera := w.AddCamera(node, NewPerspectiveCamera(math.K_HALF_PI, 0.1, 100))
	display := &metadata.DisplayConfiguration{Width: 100, Height: 100}

	for _, convention := range []math.DepthConvention{math.DepthStandard, math.DepthInverted} {
		worldToProjection := camera.Get().WorldToProjection(w, display, convention)

		visible := math.NewAABB(math.NewVec3(-1, -1, 49), math.NewVec3(1, 1, 51))
		culled := math.NewAABB(math.NewVec3(999, -1, 49), math.NewVec3(1001, 1, 51))
		assert.False(t, math.CullAABB(worldToProjection, visible), convention.String())
		assert.True(t, math.CullAABB(worldToProjection, culled), convention.String())
	}
}

func TestCameraViewportAndBuffer(t *testing.T) {
	w := NewWorld()
	node := w.CreateNode("camera")
	node.Get().Transform().SetPosition(math.NewVec3(0, 0, -5))
	c := NewPerspectiveCamera(math.K_HALF_PI, 0.1, 100)
	c.Viewport = ViewportRegion{X: 0.5, Y: 0, Width: 0.5, Height: 1}
	camera := w.AddCamera(node, c)

	display := &metadata.DisplayConfiguration{Width: 800, Height: 600, AntiAliasing: metadata.AntiAliasingSSAA2x}
	v := camera.Get().PixelViewport(display)
	assert.Equal(t, metadata.Viewport{TopLeftX: 400, Width: 400, Height: 600, MaxDepth: 1}, v)

	buffer := camera.Get().Buffer(w, display, math.DepthStandard)
	assert.Equal(t, math.NewVec2(800, 1200), buffer.SSViewportResolution)
	assert.Equal(t, math.NewVec2(800, 0), buffer.SSViewportTopLeft)
	assert.Equal(t, math.NewVec3(0, 0, -5), buffer.CameraToWorld.Translation())
	assert.InDelta(t, 1.0/400.0, buffer.ViewportInvResolution.X, 1e-9)
}

func TestLensAperture(t *testing.T) {
	assert.False(t, Lens{}.HasFiniteAperture())
	assert.True(t, Lens{Radius: 0.1}.HasFiniteAperture())
}

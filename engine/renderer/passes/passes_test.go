package passes

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/headless"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/pipeline"
	"github.com/spaghettifunk/lumen/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (Context, *headless.Recorder) {
	t.Helper()
	device := headless.NewRecorder()
	states, err := pipeline.NewStateManager(device, math.DepthStandard, false)
	require.NoError(t, err)
	return Context{Device: device, Shaders: headless.NewShaderLibrary(device), States: states}, device
}

// A camera at the origin looking down +Z.
func testWorldToProjection() math.Mat4 {
	return math.NewMat4PerspectiveLH(math.K_HALF_PI, 1, 0.1, 100, math.DepthStandard)
}

func addCube(world *scene.World, position math.Vec3, material scene.Material) scene.ModelPtr {
	mesh := &scene.Mesh{
		Name:       "cube",
		IndexCount: 36,
		AABB:       math.NewAABB(math.NewVec3(-1, -1, -1), math.NewVec3(1, 1, 1)),
	}
	node := world.CreateNode("cube")
	node.Get().Transform().SetPosition(position)
	return world.AddModel(node, scene.NewModel(mesh, material))
}

func drawCalls(device *headless.Recorder) [][3]uint32 {
	var out [][3]uint32
	for _, cmd := range device.Commands() {
		if cmd.Op == headless.OpDrawIndexed {
			out = append(out, cmd.Counts)
		}
	}
	return out
}

func resourceData[T any](t *testing.T, device *headless.Recorder, name string, n int) []T {
	t.Helper()
	h, ok := device.Lookup(name)
	require.True(t, ok, name)
	res, _ := device.Resource(h)
	out := make([]T, n)
	require.NoError(t, binary.Read(bytes.NewReader(res.Data), binary.LittleEndian, out))
	return out
}

func TestSpritePassBatchesByTexture(t *testing.T) {
	ctx, device := newTestContext(t)
	pass, err := NewSpritePass(ctx)
	require.NoError(t, err)

	world := scene.NewWorld()
	a, b := metadata.Handle(100), metadata.Handle(200)
	for _, s := range []struct {
		texture metadata.Handle
		depth   float32
	}{{a, 0.1}, {b, 0.5}, {a, 0.9}, {a, 0.5}} {
		transform := scene.NewSpriteTransform(math.NewVec2(10, 10))
		transform.Depth = s.depth
		world.AddSpriteImage(world.CreateNode("sprite"), scene.NewSpriteImage(s.texture, 16, 16, transform))
	}

	device.Reset()
	pass.Render(world, 100, 100)

	// back to front: a(0.9), b(0.5), a(0.5), a(0.1)
	assert.Equal(t, [][3]uint32{{6, 0}, {6, 6}, {12, 12}}, drawCalls(device))

	var textures []metadata.Handle
	for _, cmd := range device.Commands() {
		if cmd.Op == headless.OpBindShaderResource && cmd.Slot == metadata.SLOT_SRV_SPRITE {
			textures = append(textures, cmd.Handles[0])
		}
	}
	assert.Equal(t, []metadata.Handle{a, b, a}, textures)
}

func TestSpritePassVertices(t *testing.T) {
	ctx, device := newTestContext(t)
	pass, err := NewSpritePass(ctx)
	require.NoError(t, err)

	world := scene.NewWorld()
	image := scene.NewSpriteImage(metadata.Handle(7), 40, 40, scene.NewSpriteTransform(math.NewVec2(50, 50)))
	image.Region = scene.Rect{X: 20, Y: 0, Width: 10, Height: 20}
	world.AddSpriteImage(world.CreateNode("sprite"), image)

	pass.Render(world, 100, 100)

	vertices := resourceData[metadata.SpriteVertex](t, device, "sprite_vertices", 4)
	assert.Equal(t, math.NewVec3(0, 0, 0), vertices[0].Position)
	assert.InDelta(t, 0.2, vertices[3].Position.X, 1e-6)
	assert.InDelta(t, -0.4, vertices[3].Position.Y, 1e-6)
	assert.Equal(t, math.NewVec2(0.5, 0), vertices[0].Texcoord)
	assert.Equal(t, math.NewVec2(0.75, 0.5), vertices[3].Texcoord)
	assert.Equal(t, math.NewVec4(1, 1, 1, 1), vertices[1].Colour)
}

func TestSpritePassText(t *testing.T) {
	ctx, device := newTestContext(t)
	pass, err := NewSpritePass(ctx)
	require.NoError(t, err)

	font := &scene.SpriteFont{
		Texture:       metadata.Handle(3),
		TextureWidth:  64,
		TextureHeight: 64,
		LineHeight:    12,
		Glyphs: map[rune]scene.Glyph{
			'a': {Region: scene.Rect{Width: 8, Height: 10}, XAdvance: 8},
			'b': {Region: scene.Rect{X: 8, Width: 8, Height: 10}, XAdvance: 8},
			' ': {XAdvance: 4},
		},
		Kernings:         map[[2]rune]int32{{'a', 'b'}: -2},
		DefaultCharacter: ' ',
	}
	world := scene.NewWorld()
	world.AddSpriteText(world.CreateNode("text"), scene.NewSpriteText("ab\n?b", font, scene.NewSpriteTransform(math.Vec2{})))

	pass.Render(world, 100, 100)

	// the space fallback for '?' advances without a quad
	assert.Equal(t, [][3]uint32{{18, 0}}, drawCalls(device))
	vertices := resourceData[metadata.SpriteVertex](t, device, "sprite_vertices", 12)
	assert.InDelta(t, -0.88, vertices[4].Position.X, 1e-6)
	assert.InDelta(t, -0.92, vertices[8].Position.X, 1e-6)
	assert.InDelta(t, 0.76, vertices[8].Position.Y, 1e-6)
}

func TestSpritePassGrowsIndices(t *testing.T) {
	ctx, device := newTestContext(t)
	pass, err := NewSpritePass(ctx)
	require.NoError(t, err)
	old, _ := device.Lookup("sprite_indices")

	world := scene.NewWorld()
	for i := 0; i < initialSpriteCapacity+1; i++ {
		world.AddSpriteImage(world.CreateNode("sprite"), scene.NewSpriteImage(metadata.Handle(9), 1, 1, scene.NewSpriteTransform(math.Vec2{})))
	}
	pass.Render(world, 10, 10)

	h, ok := device.Lookup("sprite_indices")
	require.True(t, ok)
	assert.NotEqual(t, old, h)
	res, _ := device.Resource(h)
	assert.Equal(t, uint32(2*initialSpriteCapacity*6*4), res.Buffer.Size)
	assert.Equal(t, [][3]uint32{{6 * (initialSpriteCapacity + 1), 0}}, drawCalls(device))
}

func TestSpritePassWithoutSprites(t *testing.T) {
	ctx, device := newTestContext(t)
	pass, err := NewSpritePass(ctx)
	require.NoError(t, err)

	device.Reset()
	pass.Render(scene.NewWorld(), 10, 10)
	assert.Equal(t, []string{"SpritePass.Render"}, device.Markers())
	assert.Len(t, device.Commands(), 1)
}

func TestBoundingVolumePass(t *testing.T) {
	ctx, device := newTestContext(t)
	pass, err := NewBoundingVolumePass(ctx)
	require.NoError(t, err)

	world := scene.NewWorld()
	light := world.CreateNode("light")
	light.Get().Transform().SetPosition(math.NewVec3(0, 0, 10))
	world.AddOmniLight(light, scene.NewOmniLight(math.NewRGB(1, 1, 1), 2))
	addCube(world, math.NewVec3(0, 0, 20), scene.DefaultMaterial())
	addCube(world, math.NewVec3(1000, 0, 20), scene.DefaultMaterial())

	device.Reset()
	pass.Render(world, testWorldToProjection())

	assert.Equal(t, [][3]uint32{{24, 0}, {24, 0}}, drawCalls(device))

	colour := resourceData[metadata.ColourBuffer](t, device, "bounding_volume_colour", 1)
	assert.Equal(t, modelVolumeColour, colour[0].Colour)
	model := resourceData[metadata.ModelBuffer](t, device, "bounding_volume_model", 1)
	assert.Equal(t, math.NewVec3(0, 0, 20), model[0].ObjectToWorld.Translation())
}

func TestDepthPassOccluders(t *testing.T) {
	ctx, device := newTestContext(t)
	pass, err := NewDepthPass(ctx)
	require.NoError(t, err)

	world := scene.NewWorld()
	addCube(world, math.NewVec3(0, 0, 20), scene.DefaultMaterial())
	hidden := addCube(world, math.NewVec3(0, 0, 20), scene.DefaultMaterial())
	hidden.Get().LightOcclusion = false

	glass := scene.DefaultMaterial()
	glass.BaseColor.W = 0.5
	addCube(world, math.NewVec3(0, 0, 20), glass)

	tinted := scene.DefaultMaterial()
	tinted.BaseColor.W = 0.95
	addCube(world, math.NewVec3(0, 0, 20), tinted)

	device.Reset()
	pass.RenderOccluders(world, testWorldToProjection())
	assert.Len(t, drawCalls(device), 2)
	assert.Equal(t, []string{"shadow_depth", "shadow_depth_transparent"}, boundShaders(device, metadata.ShaderStageVertex))

	// the camera pre-pass ignores light occlusion but keeps the threshold
	device.Reset()
	pass.Render(world, testWorldToProjection())
	assert.Len(t, drawCalls(device), 3)
	assert.Equal(t, []string{"depth", "depth_transparent"}, boundShaders(device, metadata.ShaderStageVertex))
	assert.Equal(t, []string{"", "depth_transparent"}, boundShaders(device, metadata.ShaderStagePixel))
}

func TestDepthPassAlphaTestsTransparentModels(t *testing.T) {
	ctx, device := newTestContext(t)
	pass, err := NewDepthPass(ctx)
	require.NoError(t, err)

	world := scene.NewWorld()
	tinted := scene.DefaultMaterial()
	tinted.BaseColor.W = ShadowTransparencyThreshold
	tinted.BaseColorTexture = metadata.Handle(42)
	addCube(world, math.NewVec3(0, 0, 20), tinted)

	device.Reset()
	pass.Render(world, testWorldToProjection())
	require.Len(t, drawCalls(device), 1)
	assert.True(t, hasBinding(device, metadata.SLOT_SRV_BASE_COLOR_TEXTURE, metadata.Handle(42)))

	world.ForEachActiveModel(func(_ scene.ModelPtr, model *scene.Model) {
		model.Material.BaseColor.W = ShadowTransparencyThreshold - 0.01
	})
	device.Reset()
	pass.Render(world, testWorldToProjection())
	assert.Empty(t, drawCalls(device))
}

// boundShaders lists the names of the shaders bound to stage, in order.
func boundShaders(device *headless.Recorder, stage metadata.ShaderStage) []string {
	var out []string
	for _, cmd := range device.Commands() {
		if cmd.Op == headless.OpBindShader && cmd.Stage == stage {
			out = append(out, cmd.Name)
		}
	}
	return out
}

func hasBinding(device *headless.Recorder, slot uint32, h metadata.Handle) bool {
	for _, cmd := range device.Commands() {
		if cmd.Op == headless.OpBindShaderResource && cmd.Slot == slot && len(cmd.Handles) == 1 && cmd.Handles[0] == h {
			return true
		}
	}
	return false
}

func newTestLBufferPass(t *testing.T) (*LBufferPass, *headless.Recorder) {
	t.Helper()
	ctx, device := newTestContext(t)
	depth, err := NewDepthPass(ctx)
	require.NoError(t, err)
	pass, err := NewLBufferPass(ctx, depth, 32)
	require.NoError(t, err)
	device.Reset()
	return pass, device
}

func lightCounts(t *testing.T, device *headless.Recorder) []uint32 {
	t.Helper()
	h, ok := device.Lookup("lighting")
	require.True(t, ok)
	res, _ := device.Resource(h)
	require.Len(t, res.Data, 48)
	counts := make([]uint32, 6)
	for i := range counts {
		counts[i] = binary.LittleEndian.Uint32(res.Data[12+4*i:])
	}
	return counts
}

func TestLBufferPassShadowMaps(t *testing.T) {
	pass, device := newTestLBufferPass(t)

	world := scene.NewWorld()
	addCube(world, math.NewVec3(0, 0, 20), scene.DefaultMaterial())

	directional := scene.NewDirectionalLight(math.NewRGB(1, 1, 1))
	directional.ShadowMap = true
	world.AddDirectionalLight(world.CreateNode("sun"), directional)

	omniNode := world.CreateNode("omni")
	omniNode.Get().Transform().SetPosition(math.NewVec3(0, 0, 15))
	omni := scene.NewOmniLight(math.NewRGB(1, 1, 1), 10)
	omni.ShadowMap = true
	world.AddOmniLight(omniNode, omni)

	spotNode := world.CreateNode("spot")
	spotNode.Get().Transform().SetPosition(math.NewVec3(1000, 0, 15))
	spot := scene.NewSpotLight(math.NewRGB(1, 1, 1), 5, 0.5, 0.4)
	spot.ShadowMap = true
	world.AddSpotLight(spotNode, spot)

	pass.Render(world, testWorldToProjection())

	markers := device.Markers()
	require.NotEmpty(t, markers)
	assert.Equal(t, "LBufferPass.Render", markers[0])
	assert.Len(t, markers, 1+1+6)

	var cleared []string
	for _, cmd := range device.Commands() {
		if cmd.Op == headless.OpClearDepthStencil {
			res, _ := device.Resource(cmd.Handles[0])
			cleared = append(cleared, res.Name)
			assert.Equal(t, float32(1), cmd.Value)
		}
	}
	assert.Equal(t, []string{
		"directional_shadow_maps[0]",
		"omni_shadow_maps[0]",
		"omni_shadow_maps[1]",
		"omni_shadow_maps[2]",
		"omni_shadow_maps[3]",
		"omni_shadow_maps[4]",
		"omni_shadow_maps[5]",
	}, cleared)

	// the cube occludes the sun and the faces of the omni light looking at it
	assert.NotEmpty(t, drawCalls(device))

	// directional, omni, spot, then their shadow mapped counterparts
	assert.Equal(t, []uint32{0, 0, 0, 1, 1, 0}, lightCounts(t, device))

	omniMaps, _ := device.Lookup("omni_shadow_maps")
	found := false
	for _, cmd := range device.Commands() {
		if cmd.Op == headless.OpBindShaderResource && cmd.Slot == metadata.SLOT_SRV_OMNI_SHADOW_MAPS && cmd.Stage == metadata.ShaderStagePixel {
			found = cmd.Handles[0] == omniMaps
		}
	}
	assert.True(t, found)
}

func TestLBufferPassShadowMapLimit(t *testing.T) {
	pass, device := newTestLBufferPass(t)

	world := scene.NewWorld()
	for i := 0; i < MaxShadowMappedDirectionalLights+1; i++ {
		light := scene.NewDirectionalLight(math.NewRGB(1, 1, 1))
		light.ShadowMap = true
		world.AddDirectionalLight(world.CreateNode("sun"), light)
	}
	world.AddOmniLight(world.CreateNode("omni"), scene.NewOmniLight(math.NewRGB(1, 1, 1), 3))

	pass.Render(world, testWorldToProjection())
	assert.Equal(t, []uint32{1, 1, 0, MaxShadowMappedDirectionalLights, 0, 0}, lightCounts(t, device))
	assert.Equal(t, MaxShadowMappedDirectionalLights, device.Count(headless.OpClearDepthStencil))
}

func TestForwardPassShaderSelection(t *testing.T) {
	ctx, device := newTestContext(t)
	pass, err := NewForwardPass(ctx)
	require.NoError(t, err)

	pixelShader := func() string {
		name := ""
		for _, cmd := range device.Commands() {
			if cmd.Op == headless.OpBindShader && cmd.Stage == metadata.ShaderStagePixel {
				name = cmd.Name
			}
		}
		return name
	}

	world := scene.NewWorld()
	settings := scene.DefaultCameraSettings()
	settings.BRDF = metadata.BRDFFrostbite

	device.Reset()
	pass.Render(world, testWorldToProjection(), &settings)
	assert.Equal(t, "forward_frostbite", pixelShader())

	settings.Voxelization.Enabled = true
	device.Reset()
	pass.RenderTransparent(world, testWorldToProjection(), &settings)
	assert.Equal(t, "forward_transparent_vct_frostbite", pixelShader())

	device.Reset()
	pass.RenderFalseColor(world, testWorldToProjection(), metadata.FalseColorUV)
	assert.Equal(t, "false_color_uv", pixelShader())
}

func TestForwardPassFiltersMaterials(t *testing.T) {
	ctx, device := newTestContext(t)
	pass, err := NewForwardPass(ctx)
	require.NoError(t, err)

	world := scene.NewWorld()
	addCube(world, math.NewVec3(0, 0, 20), scene.DefaultMaterial())
	glow := scene.DefaultMaterial()
	glow.Emissive = true
	addCube(world, math.NewVec3(0, 0, 20), glow)
	glass := scene.DefaultMaterial()
	glass.Transparent = true
	addCube(world, math.NewVec3(0, 0, 20), glass)

	settings := scene.DefaultCameraSettings()
	w2p := testWorldToProjection()
	for _, tt := range []struct {
		render func()
		draws  int
	}{
		{func() { pass.Render(world, w2p, &settings) }, 1},
		{func() { pass.RenderTransparent(world, w2p, &settings) }, 1},
		{func() { pass.RenderEmissive(world, w2p) }, 1},
		{func() { pass.RenderGBuffer(world, w2p) }, 1},
		{func() { pass.RenderSolid(world, w2p) }, 3},
		{func() { pass.RenderWireframe(world, w2p) }, 3},
	} {
		device.Reset()
		tt.render()
		assert.Len(t, drawCalls(device), tt.draws)
	}
}

func TestComputePassGroups(t *testing.T) {
	ctx, device := newTestContext(t)
	aa, err := NewAAPass(ctx)
	require.NoError(t, err)

	device.Reset()
	aa.Dispatch(metadata.NewViewport(33, 16), metadata.AntiAliasingNone)
	assert.Empty(t, device.Commands())

	aa.Dispatch(metadata.NewViewport(33, 16), metadata.AntiAliasingSSAA2x)
	cmds := device.Commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, "ssaa_resolve", cmds[1].Name)
	assert.Equal(t, [3]uint32{3, 1, 1}, cmds[2].Counts)
}

func TestDeferredPassPaths(t *testing.T) {
	ctx, device := newTestContext(t)
	pass, err := NewDeferredPass(ctx)
	require.NoError(t, err)
	settings := scene.DefaultCameraSettings()

	device.Reset()
	pass.Render(&settings)
	cmds := device.Commands()
	assert.Equal(t, headless.OpDraw, cmds[len(cmds)-1].Op)
	assert.Equal(t, uint32(3), cmds[len(cmds)-1].Counts[0])

	settings.Voxelization.Enabled = true
	device.Reset()
	pass.Dispatch(metadata.NewViewport(17, 17), &settings)
	cmds = device.Commands()
	assert.Equal(t, [3]uint32{2, 2, 1}, cmds[len(cmds)-1].Counts)
	shader := ""
	for _, cmd := range cmds {
		if cmd.Op == headless.OpBindShader && cmd.Stage == metadata.ShaderStageCompute {
			shader = cmd.Name
		}
	}
	assert.Equal(t, "deferred_vct_cook_torrance", shader)
}

func TestPassConstructionErrors(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Shaders.(*headless.ShaderLibrary).Remove("fxaa")

	_, err := NewAAPass(ctx)
	assert.EqualError(t, err, "aa pass: failed to create cs/fxaa: shader cs/fxaa: resource not found")
}

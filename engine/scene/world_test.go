package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/containers"
	"github.com/spaghettifunk/lumen/engine/math"
)

func TestObjectToWorldFollowsAncestors(t *testing.T) {
	w := NewWorld()
	root := w.CreateNode("root")
	child := w.CreateNode("child")
	require.True(t, w.AddChild(root, child))

	root.Get().Transform().SetPosition(math.NewVec3(1, 0, 0))
	child.Get().Transform().SetPosition(math.NewVec3(0, 2, 0))

	p := math.NewVec3Zero().Transform(w.ObjectToWorld(child))
	assert.True(t, p.Compare(math.NewVec3(1, 2, 0), 1e-6), "got %v", p)

	// Moving the ancestor invalidates the cached child matrix.
	root.Get().Transform().Translate(math.NewVec3(0, 0, 5))
	p = math.NewVec3Zero().Transform(w.ObjectToWorld(child))
	assert.True(t, p.Compare(math.NewVec3(1, 2, 5), 1e-6), "got %v", p)

	back := p.Transform(w.WorldToObject(child))
	assert.True(t, back.Compare(math.NewVec3Zero(), 1e-5), "got %v", back)
}

func TestObjectToWorldAfterReparenting(t *testing.T) {
	w := NewWorld()
	a := w.CreateNode("a")
	b := w.CreateNode("b")
	child := w.CreateNode("child")
	a.Get().Transform().SetPosition(math.NewVec3(1, 0, 0))
	b.Get().Transform().SetPosition(math.NewVec3(0, 1, 0))

	w.AddChild(a, child)
	assert.Equal(t, math.NewVec3(1, 0, 0), w.ObjectToWorld(child).Translation())

	w.AddChild(b, child)
	assert.Equal(t, math.NewVec3(0, 1, 0), w.ObjectToWorld(child).Translation())
	assert.Empty(t, a.Get().Children())

	w.Detach(child)
	assert.Equal(t, math.NewVec3Zero(), w.ObjectToWorld(child).Translation())
}

func TestAddChildRejectsCycles(t *testing.T) {
	w := NewWorld()
	a := w.CreateNode("a")
	b := w.CreateNode("b")
	require.True(t, w.AddChild(a, b))
	assert.False(t, w.AddChild(b, a))
	assert.False(t, w.AddChild(a, a))
}

func TestRemoveNodeTerminatesSubtreeAndComponents(t *testing.T) {
	w := NewWorld()
	root := w.CreateNode("root")
	child := w.CreateNode("child")
	w.AddChild(root, child)
	camera := w.AddCamera(root, NewPerspectiveCamera(1, 0.1, 100))
	model := w.AddModel(child, NewModel(&Mesh{IndexCount: 3}, DefaultMaterial()))

	other := w.CreateNode("other")
	otherModel := w.AddModel(other, NewModel(&Mesh{IndexCount: 6}, DefaultMaterial()))

	w.RemoveNode(root)
	assert.Equal(t, containers.Terminated, root.State())
	assert.Equal(t, containers.Terminated, child.State())
	assert.Equal(t, containers.Terminated, camera.State())
	assert.Equal(t, containers.Terminated, model.State())
	assert.Equal(t, containers.Active, otherModel.State())

	// Freed slots are reused before the pools grow.
	reused := w.CreateNode("reused")
	assert.Equal(t, root.Index(), reused.Index())
}

func TestComponentsNeedLiveOwner(t *testing.T) {
	w := NewWorld()
	removed := w.CreateNode("removed")
	w.RemoveNode(removed)

	for _, owner := range []NodePtr{{}, removed} {
		assert.False(t, w.AddModel(owner, NewModel(&Mesh{IndexCount: 3}, DefaultMaterial())).Valid())
		assert.False(t, w.AddCamera(owner, NewPerspectiveCamera(1, 0.1, 100)).Valid())
		assert.False(t, w.AddOmniLight(owner, NewOmniLight(math.NewRGB(1, 1, 1), 10)).Valid())
	}

	models := 0
	w.ForEachActiveModel(func(ModelPtr, *Model) { models++ })
	assert.Zero(t, models)

	node := w.CreateNode("node")
	assert.True(t, w.AddModel(node, NewModel(&Mesh{IndexCount: 3}, DefaultMaterial())).Valid())
}

func TestSetStatePropagates(t *testing.T) {
	w := NewWorld()
	root := w.CreateNode("root")
	child := w.CreateNode("child")
	w.AddChild(root, child)
	light := w.AddOmniLight(child, NewOmniLight(math.NewRGB(1, 1, 1), 5))

	w.SetState(root, containers.Passive)
	assert.Equal(t, containers.Passive, child.State())
	assert.Equal(t, containers.Passive, light.State())

	visited := 0
	w.ForEachOmniLight(func(ptr containers.ProxyPtr[OmniLight], l *OmniLight) {
		visited++
		assert.Equal(t, child, l.Owner())
	})
	assert.Equal(t, 1, visited, "passive components are still iterated")
}

func TestLightBoundingVolumes(t *testing.T) {
	omni := NewOmniLight(math.NewRGB(1, 1, 1), 4)
	assert.Equal(t, math.NewVec3(-4, -4, -4), omni.AABB().Min)
	omni.SetRange(2)
	assert.Equal(t, math.NewVec3(2, 2, 2), omni.AABB().Max)

	spot := NewSpotLight(math.NewRGB(1, 1, 1), 10, math.K_PI/4, math.K_PI/8)
	box := spot.AABB()
	assert.InDelta(t, 10, box.Max.X, 1e-4)
	assert.Equal(t, float32(10), box.Max.Z)
	assert.Equal(t, float32(0), box.Min.Z)
	assert.True(t, spot.BoundingSphere().EnclosesAABB(box))

	spot.SetAngles(math.K_PI/8, math.K_PI/4)
	assert.Equal(t, spot.Umbra(), spot.Penumbra(), "penumbra is clamped to the umbra")
}

func TestSpriteFontMeasure(t *testing.T) {
	font := &SpriteFont{
		LineHeight: 10,
		Glyphs: map[rune]Glyph{
			'a': {XAdvance: 5},
			'b': {XAdvance: 7},
			'?': {XAdvance: 4},
		},
		Kernings:         map[[2]rune]int32{{'a', 'b'}: -1},
		DefaultCharacter: '?',
	}
	assert.Equal(t, math.NewVec2(11, 10), font.MeasureString("ab"))
	// 'z' falls back to the default character.
	assert.Equal(t, math.NewVec2(8, 20), font.MeasureString("a\nz?"))
}

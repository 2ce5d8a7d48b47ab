package scene

import (
	"github.com/spaghettifunk/lumen/engine/containers"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

const defaultPoolCapacity = 16

/**
 * @brief World owns the scene graph and every component in pools. Handles
 * into the pools stay valid while the pools grow. Not safe for concurrent
 * use: the world is mutated and rendered from the frame thread.
 */
type World struct {
	nodes             *containers.ProxyPool[Node]
	cameras           *containers.ProxyPool[Camera]
	models            *containers.ProxyPool[Model]
	directionalLights *containers.ProxyPool[DirectionalLight]
	omniLights        *containers.ProxyPool[OmniLight]
	spotLights        *containers.ProxyPool[SpotLight]
	spriteImages      *containers.ProxyPool[SpriteImage]
	spriteTexts       *containers.ProxyPool[SpriteText]
	ambientLight      AmbientLight
}

func NewWorld() *World {
	return &World{
		nodes:             containers.NewProxyPool[Node](defaultPoolCapacity),
		cameras:           containers.NewProxyPool[Camera](1),
		models:            containers.NewProxyPool[Model](defaultPoolCapacity),
		directionalLights: containers.NewProxyPool[DirectionalLight](1),
		omniLights:        containers.NewProxyPool[OmniLight](defaultPoolCapacity),
		spotLights:        containers.NewProxyPool[SpotLight](defaultPoolCapacity),
		spriteImages:      containers.NewProxyPool[SpriteImage](defaultPoolCapacity),
		spriteTexts:       containers.NewProxyPool[SpriteText](defaultPoolCapacity),
	}
}

func (w *World) CreateNode(name string) NodePtr {
	return w.nodes.Add(newNode(name))
}

/**
 * @brief Attaches child to parent, detaching it from its current parent
 * first. Attaching a node below itself or one of its descendants is rejected.
 */
func (w *World) AddChild(parent, child NodePtr) bool {
	for p := parent; p.Valid(); p = p.Get().parent {
		if p == child {
			core.LogWarn("scene: cannot attach node '%s' below itself", child.Get().Name)
			return false
		}
	}
	w.Detach(child)
	c := child.Get()
	c.parent = parent
	c.cached = false
	p := parent.Get()
	p.children = append(p.children, child)
	return true
}

// Detach makes node a root node.
func (w *World) Detach(node NodePtr) {
	n := node.Get()
	if !n.parent.Valid() {
		return
	}
	p := n.parent.Get()
	for i, c := range p.children {
		if c == node {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = NodePtr{}
	n.cached = false
}

/**
 * @brief Terminates node, its descendants and every component they own. The
 * slots are reused by later additions.
 */
func (w *World) RemoveNode(node NodePtr) {
	w.Detach(node)
	w.removeSubtree(node)
}

func (w *World) removeSubtree(node NodePtr) {
	for _, child := range node.Get().children {
		w.removeSubtree(child)
	}
	w.forEachOwned(node, func(state containers.State) containers.State {
		return containers.Terminated
	})
	node.Remove()
}

/**
 * @brief Sets the state of node, its descendants and the components they
 * own. Terminated nodes are left alone.
 */
func (w *World) SetState(node NodePtr, state containers.State) {
	if state == containers.Terminated {
		w.RemoveNode(node)
		return
	}
	if node.State() == containers.Terminated {
		return
	}
	node.SetState(state)
	w.forEachOwned(node, func(containers.State) containers.State { return state })
	for _, child := range node.Get().children {
		w.SetState(child, state)
	}
}

func (w *World) forEachOwned(node NodePtr, next func(containers.State) containers.State) {
	setOwnedState(w.cameras, node, func(c *Camera) *Component { return &c.Component }, next)
	setOwnedState(w.models, node, func(m *Model) *Component { return &m.Component }, next)
	setOwnedState(w.directionalLights, node, func(l *DirectionalLight) *Component { return &l.Component }, next)
	setOwnedState(w.omniLights, node, func(l *OmniLight) *Component { return &l.Component }, next)
	setOwnedState(w.spotLights, node, func(l *SpotLight) *Component { return &l.Component }, next)
	setOwnedState(w.spriteImages, node, func(s *SpriteImage) *Component { return &s.Component }, next)
	setOwnedState(w.spriteTexts, node, func(s *SpriteText) *Component { return &s.Component }, next)
}

func setOwnedState[T any](pool *containers.ProxyPool[T], owner NodePtr, component func(*T) *Component, next func(containers.State) containers.State) {
	pool.ForEach(func(ptr containers.ProxyPtr[T], value *T) {
		if component(value).owner != owner {
			return
		}
		state := next(ptr.State())
		if state == containers.Terminated {
			ptr.Remove()
			return
		}
		ptr.SetState(state)
	})
}

/**
 * @brief Returns the object-to-world matrix of node, rebuilding the cached
 * matrix of the node and its ancestors when needed.
 */
func (w *World) ObjectToWorld(node NodePtr) math.Mat4 {
	w.refresh(node)
	return node.Get().objectToWorld
}

// WorldToObject returns the inverse of ObjectToWorld.
func (w *World) WorldToObject(node NodePtr) math.Mat4 {
	w.refresh(node)
	return node.Get().worldToObject
}

func (w *World) refresh(node NodePtr) uint64 {
	parentObjectToWorld := math.NewMat4Identity()
	parentWorldToObject := math.NewMat4Identity()
	var parentVersion uint64

	n := node.Get()
	if n.parent.Valid() {
		parentVersion = w.refresh(n.parent)
		p := n.parent.Get()
		parentObjectToWorld = p.objectToWorld
		parentWorldToObject = p.worldToObject
	}

	if n.cached && n.localVersion == n.transform.Version() && n.parentVersion == parentVersion {
		return n.worldVersion
	}

	n.objectToWorld = n.transform.ObjectToParentMatrix().Mul(parentObjectToWorld)
	n.worldToObject = parentWorldToObject.Mul(n.transform.ParentToObjectMatrix())
	n.localVersion = n.transform.Version()
	n.parentVersion = parentVersion
	n.cached = true
	n.worldVersion++
	return n.worldVersion
}

// acceptsOwner reports whether a component can be attached to owner.
func acceptsOwner(owner NodePtr, kind string) bool {
	if !owner.Valid() || owner.State() == containers.Terminated {
		core.LogWarn("scene: %s needs a live owner node", kind)
		return false
	}
	return true
}

func (w *World) AddCamera(owner NodePtr, camera Camera) containers.ProxyPtr[Camera] {
	if !acceptsOwner(owner, "camera") {
		return containers.ProxyPtr[Camera]{}
	}
	camera.owner = owner
	return w.cameras.Add(camera)
}

func (w *World) AddModel(owner NodePtr, model Model) containers.ProxyPtr[Model] {
	if !acceptsOwner(owner, "model") {
		return containers.ProxyPtr[Model]{}
	}
	model.owner = owner
	return w.models.Add(model)
}

func (w *World) AddDirectionalLight(owner NodePtr, light DirectionalLight) containers.ProxyPtr[DirectionalLight] {
	if !acceptsOwner(owner, "directional light") {
		return containers.ProxyPtr[DirectionalLight]{}
	}
	light.owner = owner
	return w.directionalLights.Add(light)
}

func (w *World) AddOmniLight(owner NodePtr, light OmniLight) containers.ProxyPtr[OmniLight] {
	if !acceptsOwner(owner, "omni light") {
		return containers.ProxyPtr[OmniLight]{}
	}
	light.owner = owner
	return w.omniLights.Add(light)
}

func (w *World) AddSpotLight(owner NodePtr, light SpotLight) containers.ProxyPtr[SpotLight] {
	if !acceptsOwner(owner, "spot light") {
		return containers.ProxyPtr[SpotLight]{}
	}
	light.owner = owner
	return w.spotLights.Add(light)
}

func (w *World) AddSpriteImage(owner NodePtr, sprite SpriteImage) containers.ProxyPtr[SpriteImage] {
	if !acceptsOwner(owner, "sprite image") {
		return containers.ProxyPtr[SpriteImage]{}
	}
	sprite.owner = owner
	return w.spriteImages.Add(sprite)
}

func (w *World) AddSpriteText(owner NodePtr, sprite SpriteText) containers.ProxyPtr[SpriteText] {
	if !acceptsOwner(owner, "sprite text") {
		return containers.ProxyPtr[SpriteText]{}
	}
	sprite.owner = owner
	return w.spriteTexts.Add(sprite)
}

func (w *World) AmbientLight() *AmbientLight {
	return &w.ambientLight
}

func (w *World) ForEachNode(fn func(containers.ProxyPtr[Node], *Node)) {
	w.nodes.ForEach(fn)
}

func (w *World) ForEachCamera(fn func(containers.ProxyPtr[Camera], *Camera)) {
	w.cameras.ForEach(fn)
}

func (w *World) ForEachModel(fn func(containers.ProxyPtr[Model], *Model)) {
	w.models.ForEach(fn)
}

func (w *World) ForEachDirectionalLight(fn func(containers.ProxyPtr[DirectionalLight], *DirectionalLight)) {
	w.directionalLights.ForEach(fn)
}

func (w *World) ForEachOmniLight(fn func(containers.ProxyPtr[OmniLight], *OmniLight)) {
	w.omniLights.ForEach(fn)
}

func (w *World) ForEachSpotLight(fn func(containers.ProxyPtr[SpotLight], *SpotLight)) {
	w.spotLights.ForEach(fn)
}

func (w *World) ForEachSpriteImage(fn func(containers.ProxyPtr[SpriteImage], *SpriteImage)) {
	w.spriteImages.ForEach(fn)
}

func (w *World) ForEachSpriteText(fn func(containers.ProxyPtr[SpriteText], *SpriteText)) {
	w.spriteTexts.ForEach(fn)
}

// Clear terminates every node and component.
func (w *World) Clear() {
	w.nodes.Clear()
	w.cameras.Clear()
	w.models.Clear()
	w.directionalLights.Clear()
	w.omniLights.Clear()
	w.spotLights.Clear()
	w.spriteImages.Clear()
	w.spriteTexts.Clear()
	w.ambientLight = AmbientLight{}
}

// ForEachActiveCamera visits the cameras that take part in rendering.
func (w *World) ForEachActiveCamera(fn func(containers.ProxyPtr[Camera], *Camera)) {
	w.cameras.ForEachActive(fn)
}

func (w *World) ForEachActiveModel(fn func(containers.ProxyPtr[Model], *Model)) {
	w.models.ForEachActive(fn)
}

func (w *World) ForEachActiveDirectionalLight(fn func(containers.ProxyPtr[DirectionalLight], *DirectionalLight)) {
	w.directionalLights.ForEachActive(fn)
}

func (w *World) ForEachActiveOmniLight(fn func(containers.ProxyPtr[OmniLight], *OmniLight)) {
	w.omniLights.ForEachActive(fn)
}

func (w *World) ForEachActiveSpotLight(fn func(containers.ProxyPtr[SpotLight], *SpotLight)) {
	w.spotLights.ForEachActive(fn)
}

func (w *World) ForEachActiveSpriteImage(fn func(containers.ProxyPtr[SpriteImage], *SpriteImage)) {
	w.spriteImages.ForEachActive(fn)
}

func (w *World) ForEachActiveSpriteText(fn func(containers.ProxyPtr[SpriteText], *SpriteText)) {
	w.spriteTexts.ForEachActive(fn)
}

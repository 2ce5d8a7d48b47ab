package scene

import (
	"github.com/spaghettifunk/lumen/engine/containers"
	"github.com/spaghettifunk/lumen/engine/math"
)

type NodePtr = containers.ProxyPtr[Node]

// Handles of the pooled components.
type (
	CameraPtr           = containers.ProxyPtr[Camera]
	ModelPtr            = containers.ProxyPtr[Model]
	DirectionalLightPtr = containers.ProxyPtr[DirectionalLight]
	OmniLightPtr        = containers.ProxyPtr[OmniLight]
	SpotLightPtr        = containers.ProxyPtr[SpotLight]
	SpriteImagePtr      = containers.ProxyPtr[SpriteImage]
	SpriteTextPtr       = containers.ProxyPtr[SpriteText]
)

/**
 * @brief A node of the scene graph. The parent and children are handles into
 * the world's node pool. The object-to-world matrices are cached and rebuilt
 * when the node's own transform or the transform of any ancestor changed.
 */
type Node struct {
	Name      string
	transform *math.Transform
	parent    containers.ProxyPtr[Node]
	children  []containers.ProxyPtr[Node]

	objectToWorld math.Mat4
	worldToObject math.Mat4
	cached        bool
	// transform version the cache was built from
	localVersion uint64
	// parent cache version the cache was built from
	parentVersion uint64
	// bumped every time the cache is rebuilt
	worldVersion uint64
}

func newNode(name string) Node {
	return Node{
		Name:          name,
		transform:     math.TransformCreate(),
		objectToWorld: math.NewMat4Identity(),
		worldToObject: math.NewMat4Identity(),
	}
}

/**
 * @brief Returns the local transform of this node, relative to its parent.
 * Modifying it invalidates the cached world matrices of the node and all of
 * its descendants.
 */
func (n *Node) Transform() *math.Transform {
	return n.transform
}

func (n *Node) Parent() NodePtr {
	return n.parent
}

func (n *Node) HasParent() bool {
	return n.parent.Valid()
}

func (n *Node) Children() []NodePtr {
	return n.children
}

/** @brief Component is embedded by everything a node can own. */
type Component struct {
	owner NodePtr
}

func (c *Component) Owner() NodePtr {
	return c.owner
}

func (c *Component) HasOwner() bool {
	return c.owner.Valid()
}

package scene

import (
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/**
 * @brief A mesh uploaded to the device. Models reference a range of its
 * indices.
 */
type Mesh struct {
	Name         string
	VertexBuffer metadata.Handle
	IndexBuffer  metadata.Handle
	Stride       uint32
	VertexCount  uint32
	IndexCount   uint32
	Topology     metadata.PrimitiveTopology
	AABB         math.AABB
}

type Material struct {
	Name string
	// Linear base color, alpha is the opacity.
	BaseColor        math.RGBA
	BaseColorTexture metadata.Handle
	Roughness        float32
	Metalness        float32
	// Roughness in the red and metalness in the green channel.
	MaterialTexture metadata.Handle
	NormalTexture   metadata.Handle
	// Rendered without lighting in the emissive forward pass.
	Emissive bool
	// Forces alpha blending regardless of the base color alpha.
	Transparent bool
}

func DefaultMaterial() Material {
	return Material{
		Name:      "default",
		BaseColor: math.NewRGBA(1, 1, 1, 1),
		Roughness: 0.5,
		Metalness: 0.0,
	}
}

func (m *Material) IsTransparent() bool {
	return m.Transparent || m.BaseColor.W < 1.0
}

// IsOpaque reports whether the material is drawn in the lit opaque passes.
func (m *Material) IsOpaque() bool {
	return !m.IsTransparent() && !m.Emissive
}

/**
 * @brief A renderable range of a mesh with a material. The bounding volumes
 * are in object space.
 */
type Model struct {
	Component

	Mesh       *Mesh
	StartIndex uint32
	IndexCount uint32
	Material   Material

	AABB   math.AABB
	Sphere math.BoundingSphere

	TextureTransform math.Mat4
	// Whether the model casts shadows.
	LightOcclusion bool
}

// NewModel creates a model drawing the whole mesh.
func NewModel(mesh *Mesh, material Material) Model {
	return NewModelRange(mesh, 0, mesh.IndexCount, mesh.AABB, material)
}

func NewModelRange(mesh *Mesh, startIndex, indexCount uint32, aabb math.AABB, material Material) Model {
	return Model{
		Mesh:             mesh,
		StartIndex:       startIndex,
		IndexCount:       indexCount,
		Material:         material,
		AABB:             aabb,
		Sphere:           math.NewBoundingSphereFromAABB(aabb),
		TextureTransform: math.NewMat4Identity(),
		LightOcclusion:   true,
	}
}

// Buffer fills the GPU model data for the given object-to-world transform.
func (m *Model) Buffer(objectToWorld, worldToObject math.Mat4) metadata.ModelBuffer {
	return metadata.ModelBuffer{
		ObjectToWorld:    objectToWorld,
		NormalToWorld:    worldToObject.Transposed(),
		TextureTransform: m.TextureTransform,
		BaseColor:        m.Material.BaseColor.Vec4(),
		Roughness:        m.Material.Roughness,
		Metalness:        m.Material.Metalness,
	}
}

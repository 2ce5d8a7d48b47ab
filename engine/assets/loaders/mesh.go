package loaders

import (
	"github.com/spaghettifunk/lumen/engine/math"
)

/**
 * @brief Geometry read from a model file, not yet uploaded to the device.
 * Indices form a triangle list.
 */
type MeshData struct {
	Name     string
	Vertices []math.Vertex3D
	Indices  []uint32
	// Index ranges drawn as separate models. A file without groups yields a
	// single group covering every index.
	Groups []MeshGroup
}

type MeshGroup struct {
	Name       string
	Material   string
	StartIndex uint32
	IndexCount uint32
	AABB       math.AABB
}

// AABB returns the object space box around every vertex.
func (m *MeshData) AABB() math.AABB {
	return math.GeometryComputeAABB(m.Vertices)
}

// finalize drops empty groups and computes the bounds of the rest.
func (m *MeshData) finalize() {
	if len(m.Groups) == 0 && len(m.Indices) > 0 {
		m.Groups = []MeshGroup{{Name: m.Name, IndexCount: uint32(len(m.Indices))}}
	}
	groups := m.Groups[:0]
	for _, g := range m.Groups {
		if g.IndexCount == 0 {
			continue
		}
		box := math.NewAABBEmpty()
		for _, idx := range m.Indices[g.StartIndex : g.StartIndex+g.IndexCount] {
			box = box.UnionPoint(m.Vertices[idx].Position)
		}
		g.AABB = box
		groups = append(groups, g)
	}
	m.Groups = groups
}

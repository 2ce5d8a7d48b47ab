package loaders

import (
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

func writeTestGLB(t *testing.T) string {
	t.Helper()

	doc := gltf.NewDocument()
	triangle := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	positions := modeler.WritePosition(doc, triangle)
	normals := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	indices := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	shifted := modeler.WritePosition(doc, [][3]float32{{5, 5, 5}, {6, 5, 5}, {5, 6, 5}})

	doc.Materials = []*gltf.Material{{Name: "brass"}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "props",
		Primitives: []*gltf.Primitive{
			{
				Indices:    gltf.Index(indices),
				Attributes: map[string]int{"POSITION": positions, "NORMAL": normals},
				Material:   gltf.Index(0),
			},
			{
				Mode:       gltf.PrimitivePoints,
				Attributes: map[string]int{"POSITION": positions},
			},
			{
				Attributes: map[string]int{"POSITION": shifted},
			},
		},
	}}
	doc.Nodes = []*gltf.Node{{Name: "props", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}

	path := filepath.Join(t.TempDir(), "props.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func TestLoadGLTF(t *testing.T) {
	mesh, err := LoadGLTF(writeTestGLB(t))
	require.NoError(t, err)

	assert.Equal(t, "props", mesh.Name)
	assert.Len(t, mesh.Vertices, 6)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, mesh.Indices)

	require.Len(t, mesh.Groups, 2)
	assert.Equal(t, "props_p0", mesh.Groups[0].Name)
	assert.Equal(t, "brass", mesh.Groups[0].Material)
	assert.Equal(t, math.NewAABB(math.NewVec3(0, 0, 0), math.NewVec3(1, 1, 0)), mesh.Groups[0].AABB)

	assert.Equal(t, "props_p2", mesh.Groups[1].Name)
	assert.Equal(t, uint32(3), mesh.Groups[1].StartIndex)
	assert.Equal(t, math.NewAABB(math.NewVec3(5, 5, 5), math.NewVec3(6, 6, 5)), mesh.Groups[1].AABB)
	// Generated for the primitive without normals.
	assert.InDelta(t, 1.0, mesh.Vertices[3].Normal.Length(), 1e-5)

	assert.Equal(t, math.NewAABB(math.NewVec3(0, 0, 0), math.NewVec3(6, 6, 5)), mesh.AABB())
}

func TestLoadGLTFMissingFile(t *testing.T) {
	_, err := LoadGLTF(filepath.Join(t.TempDir(), "missing.glb"))

	var loadErr *core.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Path, "missing.glb")
}

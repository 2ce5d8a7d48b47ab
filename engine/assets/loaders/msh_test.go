package loaders

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

func triangleMesh() *MeshData {
	return &MeshData{
		Name: "triangle",
		Vertices: []math.Vertex3D{
			{Position: math.NewVec3(0, 0, 0), Normal: math.NewVec3(0, 0, -1), Texcoord: math.NewVec2(0, 1)},
			{Position: math.NewVec3(0, 2, 0), Normal: math.NewVec3(0, 0, -1), Texcoord: math.NewVec2(0, 0)},
			{Position: math.NewVec3(3, 0, 1), Normal: math.NewVec3(0, 0, -1), Texcoord: math.NewVec2(1, 1)},
		},
		Indices: []uint32{0, 1, 2},
	}
}

func encodeMSH(t *testing.T, mesh *MeshData) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteMSH(&buf, mesh))
	return buf.Bytes()
}

func TestMSHLayout(t *testing.T) {
	data := encodeMSH(t, triangleMesh())

	require.Len(t, data, 3+4+4+3*44+3*4)
	assert.Equal(t, "MSH", string(data[:3]))
	assert.Equal(t, uint32(3), binary.BigEndian.Uint32(data[3:]))
	assert.Equal(t, uint32(3), binary.BigEndian.Uint32(data[7:]))
	// Second vertex, position Y.
	assert.Equal(t, []byte{0x40, 0x00, 0x00, 0x00}, data[11+44+4:11+44+8])
}

func TestReadMSH(t *testing.T) {
	src := triangleMesh()
	mesh := &MeshData{Name: "triangle"}
	require.NoError(t, ReadMSH(encodeMSH(t, src), "triangle.msh", mesh))

	assert.Equal(t, src.Vertices, mesh.Vertices)
	assert.Equal(t, src.Indices, mesh.Indices)
	require.Len(t, mesh.Groups, 1)
	assert.Equal(t, uint32(3), mesh.Groups[0].IndexCount)
	assert.Equal(t, math.NewAABB(math.NewVec3(0, 0, 0), math.NewVec3(3, 2, 1)), mesh.Groups[0].AABB)
}

func TestReadMSHErrors(t *testing.T) {
	valid := encodeMSH(t, triangleMesh())

	badIndex := bytes.Clone(valid)
	binary.BigEndian.PutUint32(badIndex[len(badIndex)-4:], 3)

	tests := []struct {
		name string
		data []byte
		mesh *MeshData
		err  error
	}{
		{"bad magic", append([]byte("MDL"), valid[3:]...), &MeshData{}, ErrInvalidHeader},
		{"short header", valid[:8], &MeshData{}, ErrInvalidHeader},
		{"truncated", valid[:len(valid)-1], &MeshData{}, ErrUnexpectedEnd},
		{"trailing", append(bytes.Clone(valid), 0), &MeshData{}, ErrTrailingData},
		{"index out of range", badIndex, &MeshData{}, ErrIndexOutOfRange},
		{"non empty output", valid, &MeshData{Indices: []uint32{0}}, ErrNonEmptyOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ReadMSH(tt.data, "bad.msh", tt.mesh)
			require.ErrorIs(t, err, tt.err)

			var loadErr *core.LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, "bad.msh", loadErr.Path)
		})
	}
}

func TestReadMSHHugeCounts(t *testing.T) {
	data := []byte("MSH\xff\xff\xff\xff\xff\xff\xff\xff")
	err := ReadMSH(data, "huge.msh", &MeshData{})
	assert.ErrorIs(t, err, ErrUnexpectedEnd)
}

func TestLoadMSH(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triangle.msh")
	require.NoError(t, os.WriteFile(path, encodeMSH(t, triangleMesh()), 0o644))

	mesh, err := LoadMSH(path)
	require.NoError(t, err)
	assert.Equal(t, "triangle", mesh.Name)
	assert.Len(t, mesh.Vertices, 3)
}

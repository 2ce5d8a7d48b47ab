package loaders

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

const quadOBJ = `# a unit quad
mtllib quad.mtl
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl stone
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestReadOBJQuad(t *testing.T) {
	mesh, err := ReadOBJ(strings.NewReader(quadOBJ), "quad.obj", "quad", OBJOptions{})
	require.NoError(t, err)

	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices)
	require.Len(t, mesh.Groups, 1)
	assert.Equal(t, MeshGroup{
		Name:       "quad",
		Material:   "stone",
		StartIndex: 0,
		IndexCount: 6,
		AABB:       math.NewAABB(math.NewVec3(0, 0, 0), math.NewVec3(1, 1, 0)),
	}, mesh.Groups[0])
	assert.Equal(t, math.NewVec2(1, 1), mesh.Vertices[2].Texcoord)
	assert.Equal(t, math.NewVec3(0, 0, 1), mesh.Vertices[2].Normal)
}

func TestReadOBJInvertHandedness(t *testing.T) {
	mesh, err := ReadOBJ(strings.NewReader(quadOBJ), "quad.obj", "quad", DefaultOBJOptions())
	require.NoError(t, err)

	assert.Equal(t, []uint32{0, 2, 1, 0, 3, 2}, mesh.Indices)
	assert.Equal(t, math.NewVec3(0, 0, -1), mesh.Vertices[0].Normal)
	assert.Equal(t, math.NewVec2(1, 0), mesh.Vertices[2].Texcoord)
}

func TestReadOBJSharesVerticesAndSplitsGroups(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
g first
f 1 2 3
g second
usemtl metal
f -3 -1 -2
f 2 4 3
`
	mesh, err := ReadOBJ(strings.NewReader(src), "two.obj", "two", OBJOptions{})
	require.NoError(t, err)

	assert.Len(t, mesh.Vertices, 4)
	require.Len(t, mesh.Groups, 2)
	assert.Equal(t, "first", mesh.Groups[0].Name)
	assert.Equal(t, uint32(3), mesh.Groups[0].IndexCount)
	assert.Equal(t, "second", mesh.Groups[1].Name)
	assert.Equal(t, "metal", mesh.Groups[1].Material)
	assert.Equal(t, uint32(3), mesh.Groups[1].StartIndex)
	assert.Equal(t, uint32(6), mesh.Groups[1].IndexCount)
	assert.Equal(t, []uint32{1, 3, 2}, mesh.Indices[3:6])

	// No normals in the file: face normals are generated.
	assert.InDelta(t, 1.0, mesh.Vertices[0].Normal.Length(), 1e-5)
}

func TestReadOBJSkipsUnknownKeywords(t *testing.T) {
	var logs bytes.Buffer
	core.SetLogOutput(&logs)
	t.Cleanup(func() { core.SetLogOutput(os.Stderr) })

	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\ncurv 0 1 1 2\nf 1 2 3\n"
	mesh, err := ReadOBJ(strings.NewReader(src), "curve.obj", "curve", OBJOptions{})
	require.NoError(t, err)

	assert.Len(t, mesh.Indices, 3)
	assert.Contains(t, logs.String(), "curve.obj:4")
	assert.Contains(t, logs.String(), "curv")
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		line  int
		token string
		err   error
	}{
		{"bad float", "v 0 x 0\n", 1, "x", ErrInvalidValue},
		{"short vertex", "v 0 0\n", 1, "v", ErrMissingArguments},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\n\nf 1 2 4\n", 5, "4", ErrIndexOutOfRange},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", 4, "0", ErrIndexOutOfRange},
		{"bad index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 a\n", 4, "a", ErrInvalidValue},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n", 3, "f", ErrDegenerateFace},
		{"missing texcoord", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n", 4, "1/1", ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(tt.src), "bad.obj", "bad", OBJOptions{})
			require.ErrorIs(t, err, tt.err)

			var loadErr *core.LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, "bad.obj", loadErr.Path)
			assert.Equal(t, tt.line, loadErr.Line)
			assert.Equal(t, tt.token, loadErr.Token)
		})
	}
}

func TestLoadOBJFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))

	mesh, err := LoadOBJ(path, DefaultOBJOptions())
	require.NoError(t, err)
	assert.Equal(t, "quad", mesh.Name)
	assert.Len(t, mesh.Indices, 6)

	_, err = LoadOBJ(filepath.Join(t.TempDir(), "missing.obj"), DefaultOBJOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

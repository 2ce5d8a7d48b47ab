package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

// LoadGLTF reads every triangle primitive of a .gltf or .glb file into one
// mesh, one group per primitive. Node transforms are not applied.
func LoadGLTF(path string) (*MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &core.LoadError{Path: path, Err: err}
	}

	mesh := &MeshData{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				core.LogWarn("%s: mesh %d primitive %d: unsupported primitive mode %v, skipping", path, mi, pi, prim.Mode)
				continue
			}
			if err := readGLTFPrimitive(doc, mesh, gm.Name, pi, prim); err != nil {
				return nil, &core.LoadError{Path: path, Token: gm.Name, Err: err}
			}
		}
	}
	mesh.finalize()
	return mesh, nil
}

func readGLTFPrimitive(doc *gltf.Document, mesh *MeshData, meshName string, primIdx int, prim *gltf.Primitive) error {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("primitive %d: no POSITION attribute", primIdx)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("primitive %d: positions: %w", primIdx, err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("primitive %d: normals: %w", primIdx, err)
		}
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("primitive %d: texcoords: %w", primIdx, err)
		}
	}

	base := uint32(len(mesh.Vertices))
	for i, p := range positions {
		v := math.Vertex3D{Position: math.NewVec3(p[0], p[1], p[2])}
		if i < len(normals) {
			v.Normal = math.NewVec3(normals[i][0], normals[i][1], normals[i][2])
		}
		if i < len(uvs) {
			v.Texcoord = math.NewVec2(uvs[i][0], uvs[i][1])
		}
		mesh.Vertices = append(mesh.Vertices, v)
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return fmt.Errorf("primitive %d: indices: %w", primIdx, err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	start := uint32(len(mesh.Indices))
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return fmt.Errorf("primitive %d: %w: %d", primIdx, ErrIndexOutOfRange, idx)
		}
		mesh.Indices = append(mesh.Indices, base+idx)
	}

	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}
	var material string
	if prim.Material != nil && *prim.Material < len(doc.Materials) {
		material = doc.Materials[*prim.Material].Name
	}
	mesh.Groups = append(mesh.Groups, MeshGroup{
		Name:       name,
		Material:   material,
		StartIndex: start,
		IndexCount: uint32(len(indices)),
	})

	if len(normals) == 0 {
		math.GeometryGenerateNormals(mesh.Vertices, mesh.Indices[start:])
	}
	if len(uvs) > 0 {
		math.GeometryGenerateTangents(mesh.Vertices, mesh.Indices[start:])
	}
	return nil
}

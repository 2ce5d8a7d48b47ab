package math

import "github.com/spaghettifunk/lumen/engine/core"

// GeometryGenerateNormals assigns face normals to every triangle.
func GeometryGenerateNormals(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
		normal := edge1.Cross(edge2).Normalized()
		vertices[i0].Normal = normal
		vertices[i1].Normal = normal
		vertices[i2].Normal = normal
	}
}

// GeometryGenerateTangents derives per-triangle tangents from the texture coordinates.
func GeometryGenerateTangents(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		deltaU1 := vertices[i1].Texcoord.X - vertices[i0].Texcoord.X
		deltaV1 := vertices[i1].Texcoord.Y - vertices[i0].Texcoord.Y
		deltaU2 := vertices[i2].Texcoord.X - vertices[i0].Texcoord.X
		deltaV2 := vertices[i2].Texcoord.Y - vertices[i0].Texcoord.Y

		dividend := deltaU1*deltaV2 - deltaU2*deltaV1
		if dividend == 0 {
			continue
		}
		fc := 1.0 / dividend

		tangent := Vec3{
			fc * (deltaV2*edge1.X - deltaV1*edge2.X),
			fc * (deltaV2*edge1.Y - deltaV1*edge2.Y),
			fc * (deltaV2*edge1.Z - deltaV1*edge2.Z),
		}.Normalized()

		vertices[i0].Tangent = tangent
		vertices[i1].Tangent = tangent
		vertices[i2].Tangent = tangent
	}
}

// GeometryDeduplicateVertices merges identical vertices and rewrites the indices in place.
func GeometryDeduplicateVertices(vertices []Vertex3D, indices []uint32) []Vertex3D {
	unique := make([]Vertex3D, 0, len(vertices))
	remap := make(map[Vertex3D]uint32, len(vertices))
	lookup := make([]uint32, len(vertices))

	for v, vertex := range vertices {
		if idx, ok := remap[vertex]; ok {
			lookup[v] = idx
			continue
		}
		idx := uint32(len(unique))
		remap[vertex] = idx
		lookup[v] = idx
		unique = append(unique, vertex)
	}
	for i, idx := range indices {
		indices[i] = lookup[idx]
	}

	core.LogDebug("geometry deduplicate vertices: removed %d vertices, orig/now %d/%d.", len(vertices)-len(unique), len(vertices), len(unique))
	return unique
}

// GeometryComputeAABB returns the tightest box around the vertex positions.
func GeometryComputeAABB(vertices []Vertex3D) AABB {
	box := NewAABBEmpty()
	for _, v := range vertices {
		box = box.UnionPoint(v.Position)
	}
	return box
}

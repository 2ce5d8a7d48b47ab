package metadata

import (
	"math/bits"

	"github.com/spaghettifunk/lumen/engine/math"
)

/**
 * @brief The axis-aligned cube of world space that voxel cone tracing
 * voxelizes. Resolution is the number of voxels along each axis.
 */
type VoxelGrid struct {
	Center     math.Vec3
	Resolution uint32
	VoxelSize  float32
}

// Extent returns the world space length of one side of the grid.
func (g VoxelGrid) Extent() float32 {
	return float32(g.Resolution) * g.VoxelSize
}

// MaxMipLevel returns the last mip level of the voxel texture.
func (g VoxelGrid) MaxMipLevel() uint32 {
	if g.Resolution == 0 {
		return 0
	}
	return uint32(bits.Len32(g.Resolution)) - 1
}

/**
 * @brief Returns the transform from world space to the voxel grid's clip
 * space: x and y in [-1,1], z in [0,1].
 */
func (g VoxelGrid) WorldToVoxel() math.Mat4 {
	extent := g.Extent()
	toCenter := math.NewMat4Translation(g.Center.Neg())
	projection := math.NewMat4OrthographicLH(extent, extent, -0.5*extent, 0.5*extent, math.DepthStandard)
	return toCenter.Mul(projection)
}

// Bounds returns the world space box covered by the grid.
func (g VoxelGrid) Bounds() math.AABB {
	half := math.NewVec3Scalar(0.5 * g.Extent())
	return math.NewAABB(g.Center.Sub(half), g.Center.Add(half))
}

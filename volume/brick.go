package volume

import "github.com/voxgrid/vxcore/voxel"

// Brick is a leaf node: a packed contiguous array of 4096 voxels at fixed
// 16×16×16 extent.
type Brick struct {
	Voxels [BrickVoxelCount]voxel.Voxel
}

// Get reads the voxel at a brick-local coordinate.
func (b *Brick) Get(local [3]uint32) voxel.Voxel {
	return b.Voxels[LocalIndex16(local[0], local[1], local[2])]
}

// Set writes the voxel at a brick-local coordinate.
func (b *Brick) Set(local [3]uint32, v voxel.Voxel) {
	b.Voxels[LocalIndex16(local[0], local[1], local[2])] = v
}

// IsEmpty reports whether every contained voxel is empty (its whole 32-bit
// word is zero, see voxel.Voxel.IsEmpty); a voxel with zero opacity but
// other bits set keeps the brick non-empty.
func (b *Brick) IsEmpty() bool {
	for _, v := range b.Voxels {
		if !v.IsEmpty() {
			return false
		}
	}
	return true
}

// Reset clears every voxel back to empty, for brick reuse after a free
// stack pop.
func (b *Brick) Reset() {
	for i := range b.Voxels {
		b.Voxels[i] = voxel.Empty()
	}
}

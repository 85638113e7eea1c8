// Package volume implements the three-level sparse brickmap: a dense 64³
// root map of LayerNode indices, LayerNodes holding 16³ brick indices, and
// leaf Bricks holding 16³ packed voxels.
package volume

const (
	// BrickSize is the edge length of a leaf brick, in voxels.
	BrickSize = 16
	// BrickVoxelCount is the number of voxels in a brick.
	BrickVoxelCount = BrickSize * BrickSize * BrickSize

	// LayerSize is the edge length of a LayerNode, in bricks.
	LayerSize = 16
	// LayerSlotCount is the number of brick slots in a LayerNode.
	LayerSlotCount = LayerSize * LayerSize * LayerSize

	// RootSize is the edge length of the root map, in LayerNodes.
	RootSize = 64
	// RootSlotCount is the number of LayerNode slots in the root map.
	RootSlotCount = RootSize * RootSize * RootSize

	// RegionSize is the world-space edge length (in voxels) a single root
	// cell covers: RootSize's layer is LayerSize*BrickSize voxels wide.
	RegionSize = LayerSize * BrickSize
)

// LocalIndex16 flattens a 3D coordinate within a 16³ node (brick or layer)
// using the x + 16·y + 256·z addressing spec.md mandates for both.
func LocalIndex16(x, y, z uint32) uint32 {
	return x + LayerSize*y + LayerSize*LayerSize*z
}

// RootIndex flattens a 3D coordinate within the 64³ root map.
func RootIndex(x, y, z uint32) uint32 {
	return x + RootSize*y + RootSize*RootSize*z
}

// Coords is a world voxel position split into the three addressing levels.
type Coords struct {
	Root  [3]uint32 // p / 256
	Layer [3]uint32 // (p / 16) mod 16
	Brick [3]uint32 // p mod 16
}

// Split decomposes a world position into root-cell, layer-local, and
// brick-local coordinates per spec.md §3.
func Split(p [3]uint32) Coords {
	var c Coords
	for i := 0; i < 3; i++ {
		c.Root[i] = p[i] / RegionSize
		c.Layer[i] = (p[i] / BrickSize) % LayerSize
		c.Brick[i] = p[i] % BrickSize
	}
	return c
}

// RootSlot flattens the root-cell coordinate into an index into RootMap.Slots.
func (c Coords) RootSlot() uint32 { return RootIndex(c.Root[0], c.Root[1], c.Root[2]) }

// LayerSlot flattens the layer-local coordinate into an index into
// LayerNode.BrickIndices.
func (c Coords) LayerSlot() uint32 { return LocalIndex16(c.Layer[0], c.Layer[1], c.Layer[2]) }

// BrickSlot flattens the brick-local coordinate into an index into
// Brick.Voxels.
func (c Coords) BrickSlot() uint32 { return LocalIndex16(c.Brick[0], c.Brick[1], c.Brick[2]) }

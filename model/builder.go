package model

import "github.com/voxgrid/vxcore/voxel"

// DefaultBrickSize is a leaf extent for callers to pass to Build; Build
// itself always takes the brick size as an argument. It matches the
// reference container format's worked example.
const DefaultBrickSize = 8

// VoxelEntry is one input to Build: a position (in the model's own local
// voxel space) and the voxel stored there.
type VoxelEntry struct {
	Pos   [3]uint32
	Voxel voxel.Voxel
}

// Build constructs a Container from a set of (pos, voxel) pairs: it
// deduplicates voxel words into a palette (index 0 reserved for empty) and
// groups entries by pos/brickSize into bricks, per spec §4.5.
func Build(brickSize uint16, entries []VoxelEntry) *Container {
	c := &Container{
		VersionMajor: ContainerVersionMajor,
		VersionMinor: ContainerVersionMinor,
		BrickSize:    brickSize,
		Palette:      []voxel.Voxel{voxel.Empty()},
	}

	paletteIndex := map[voxel.Voxel]uint32{voxel.Empty(): 0}
	bricks := make(map[[3]uint16]*ContainerBrick)
	bs := uint32(brickSize)
	brickVoxels := int(brickSize) * int(brickSize) * int(brickSize)

	for _, e := range entries {
		if e.Voxel.IsEmpty() {
			continue
		}
		idx, ok := paletteIndex[e.Voxel]
		if !ok {
			idx = uint32(len(c.Palette))
			c.Palette = append(c.Palette, e.Voxel)
			paletteIndex[e.Voxel] = idx
		}

		bx, by, bz := e.Pos[0]/bs, e.Pos[1]/bs, e.Pos[2]/bs
		key := [3]uint16{uint16(bx), uint16(by), uint16(bz)}
		b, ok := bricks[key]
		if !ok {
			b = &ContainerBrick{
				X:       key[0],
				Y:       key[1],
				Z:       key[2],
				Indices: make([]uint32, brickVoxels),
			}
			bricks[key] = b
		}

		lx, ly, lz := e.Pos[0]%bs, e.Pos[1]%bs, e.Pos[2]%bs
		local := lx + bs*ly + bs*bs*lz
		b.Indices[local] = idx
	}

	for _, b := range bricks {
		c.Bricks = append(c.Bricks, *b)
	}
	return c
}

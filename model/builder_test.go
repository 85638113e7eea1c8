package model

import (
	"testing"

	"github.com/voxgrid/vxcore/voxel"
)

func TestBuildDeduplicatesPalette(t *testing.T) {
	v := voxel.New([3]uint8{10, 20, 30}, 0, 0, false, 100)
	c := Build(8, []VoxelEntry{
		{Pos: [3]uint32{0, 0, 0}, Voxel: v},
		{Pos: [3]uint32{1, 0, 0}, Voxel: v},
	})
	if len(c.Palette) != 2 { // index 0 reserved for empty + the one distinct color
		t.Fatalf("len(Palette) = %d, want 2", len(c.Palette))
	}
}

func TestBuildGroupsByBrick(t *testing.T) {
	v := voxel.New([3]uint8{1, 1, 1}, 0, 0, false, 255)
	c := Build(8, []VoxelEntry{
		{Pos: [3]uint32{0, 0, 0}, Voxel: v},  // brick (0,0,0)
		{Pos: [3]uint32{8, 0, 0}, Voxel: v},  // brick (1,0,0)
		{Pos: [3]uint32{15, 7, 7}, Voxel: v}, // brick (1,0,0), different local cell
	})
	if len(c.Bricks) != 2 {
		t.Fatalf("len(Bricks) = %d, want 2", len(c.Bricks))
	}
}

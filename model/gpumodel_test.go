package model

import (
	"testing"

	"github.com/voxgrid/vxcore/voxel"
)

func TestFromVoxelsAppliesWorldOffset(t *testing.T) {
	v := voxel.New([3]uint8{255, 254, 1}, 0, 0, false, 255)
	m := FromVoxels("test", []VoxelEntry{{Pos: [3]uint32{1, 2, 3}, Voxel: v}})
	if m.VoxelCount() != 1 {
		t.Fatalf("VoxelCount() = %d, want 1", m.VoxelCount())
	}
	want := [3]uint32{1 + WorldOffset, 2 + WorldOffset, 3 + WorldOffset}
	if m.Voxels[0].Pos != want {
		t.Errorf("Pos = %v, want %v", m.Voxels[0].Pos, want)
	}
	if m.Voxels[0].Word != v.Raw() {
		t.Errorf("Word = %08x, want %08x", m.Voxels[0].Word, v.Raw())
	}
}

func TestFromVoxelsSkipsEmpty(t *testing.T) {
	m := FromVoxels("test", []VoxelEntry{
		{Pos: [3]uint32{0, 0, 0}, Voxel: voxel.Empty()},
		{Pos: [3]uint32{1, 1, 1}, Voxel: voxel.New([3]uint8{1, 1, 1}, 0, 0, false, 255)},
	})
	if m.VoxelCount() != 1 {
		t.Fatalf("VoxelCount() = %d, want 1", m.VoxelCount())
	}
}

func TestFromModelRoundTripsThroughContainer(t *testing.T) {
	v := voxel.New([3]uint8{1, 2, 3}, 0, 0, false, 200)
	c := Build(8, []VoxelEntry{{Pos: [3]uint32{1, 2, 3}, Voxel: v}})
	m := FromModel("test", c)
	if m.VoxelCount() != 1 {
		t.Fatalf("VoxelCount() = %d, want 1", m.VoxelCount())
	}
	want := [3]uint32{1 + WorldOffset, 2 + WorldOffset, 3 + WorldOffset}
	if m.Voxels[0].Pos != want {
		t.Errorf("Pos = %v, want %v", m.Voxels[0].Pos, want)
	}
}

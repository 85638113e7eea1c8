package model

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/voxgrid/vxcore/voxel"
)

func TestBoundsOfEmptyModel(t *testing.T) {
	m := FromVoxels("empty", nil)
	assert.Equal(t, Bounds{}, m.Bounds())
}

func TestBoundsSpansVoxels(t *testing.T) {
	v := voxel.New([3]uint8{255, 255, 255}, 0, 0, false, 127)
	m := FromVoxels("box", []VoxelEntry{
		{Pos: [3]uint32{1, 2, 3}, Voxel: v},
		{Pos: [3]uint32{4, 2, 5}, Voxel: v},
	})

	b := m.Bounds()
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, b.Min)
	assert.Equal(t, mgl32.Vec3{5, 3, 6}, b.Max)
	assert.Equal(t, mgl32.Vec3{4, 1, 3}, b.Size())
}

func TestWorldAnchorConvertsCoordinates(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{1024, 0, 2048}, WorldAnchor([3]uint32{1024, 0, 2048}))
}

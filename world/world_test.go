package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxgrid/vxcore"
	"github.com/voxgrid/vxcore/cpu"
	"github.com/voxgrid/vxcore/model"
	"github.com/voxgrid/vxcore/volume"
	"github.com/voxgrid/vxcore/voxel"
	"github.com/voxgrid/vxcore/world"
)

func newTestWorld(t *testing.T, layerPoolSize, brickPoolSize uint32, opts ...vxcore.Option) (*world.World, *volume.BrickMap) {
	t.Helper()
	m := volume.NewBrickMap(layerPoolSize, brickPoolSize)
	backend := cpu.NewBackend(m, vxcore.NopLogger{})
	w := world.New(backend, vxcore.NewOptions(opts...))
	return w, m
}

// E1: with pool size 2 layers and 2 bricks, the third write (a third
// distinct root cell) is dropped and layer0s_free reaches 0. A queue size of
// 1 puts each write in its own chunk, so the writes are processed in order.
func TestE1PoolExhaustionAcrossRootCells(t *testing.T) {
	w, m := newTestWorld(t, 2, 2, vxcore.WithVoxelQueueSize(1))
	v := voxel.New([3]uint8{255, 0, 0}, 0, 0, false, 255)

	w.SetVoxel(v, [3]uint32{0, 0, 0})
	w.SetVoxel(v, [3]uint32{4096, 0, 0})
	w.SetVoxel(v, [3]uint32{8192, 0, 0})
	w.Process()

	require.Equal(t, uint32(0), w.Counters().Layer0sFree)

	brick, _ := m.Resolve([3]uint32{8192, 0, 0})
	assert.Nil(t, brick, "third write (pool exhausted) should have been dropped")

	root0 := m.Root.Get(volume.Split([3]uint32{0, 0, 0}).Root)
	root1 := m.Root.Get(volume.Split([3]uint32{4096, 0, 0}).Root)
	assert.NotZero(t, root0)
	assert.NotZero(t, root1)
	assert.NotEqual(t, root0, root1)
}

// E2: a model voxel at local (1,2,3) placed at world (1024,1024,1024)
// resolves to the exact packed word at root-cell (4,4,4), layer-local
// (0,0,0), brick-local (1,2,3).
func TestE2ModelPlacementOffset(t *testing.T) {
	w, m := newTestWorld(t, 8, 8)
	v := voxel.FromRaw(0x01FE01FF)

	gm := model.FromVoxels("test", []model.VoxelEntry{
		{Pos: [3]uint32{1, 2, 3}, Voxel: v},
	})
	w.RegisterModel(gm)
	w.UpdateModel(gm, [3]uint32{1024, 1024, 1024}, [3]uint32{1024, 1024, 1024}, false)
	w.Process()

	brick, local := m.Resolve([3]uint32{1025, 1026, 1027})
	require.NotNil(t, brick)
	assert.Equal(t, [3]uint32{1, 2, 3}, local)
	assert.Equal(t, uint32(0x01FE01FF), brick.Get(local).Raw())
}

// E3 (container header bytes) is covered in the model package; E2's
// placement above exercises the same offset arithmetic end to end.

// E4: a batch of VOXEL_QUEUE_SIZE+1 writes must land entirely, regardless
// of how many chunk boundaries process() has to cross.
func TestE4ChunkedDispatchLandsEverything(t *testing.T) {
	const queueSize = 4
	w, m := newTestWorld(t, 64, 64, vxcore.WithVoxelQueueSize(queueSize))

	n := queueSize + 1
	for i := 0; i < n; i++ {
		w.SetVoxel(voxel.New([3]uint8{1, 1, 1}, 0, 0, false, 255), [3]uint32{uint32(i) * 16, 0, 0})
	}
	w.Process()

	for i := 0; i < n; i++ {
		brick, local := m.Resolve([3]uint32{uint32(i) * 16, 0, 0})
		require.NotNilf(t, brick, "write %d should have landed", i)
		assert.NotZero(t, brick.Get(local).Opacity())
	}
}

// E5: two writes to the same cell in the same chunk leave exactly one
// winner and no other cell affected.
func TestE5ConcurrentSameCellWrite(t *testing.T) {
	w, m := newTestWorld(t, 8, 8)
	v1 := voxel.New([3]uint8{255, 0, 0}, 0, 0, false, 255)
	v2 := voxel.New([3]uint8{0, 255, 0}, 0, 0, false, 128)

	w.SetVoxel(v1, [3]uint32{5, 5, 5})
	w.SetVoxel(v2, [3]uint32{5, 5, 5})
	w.Process()

	brick, local := m.Resolve([3]uint32{5, 5, 5})
	require.NotNil(t, brick)
	got := brick.Get(local)
	assert.True(t, got == v1 || got == v2)

	// (6,5,5) lies in the same brick as (5,5,5); its cell must stay empty.
	other, otherLocal := m.Resolve([3]uint32{6, 5, 5})
	require.NotNil(t, other)
	assert.True(t, other.Get(otherLocal).IsEmpty())
}

// E6: allocating a brick, emptying every one of its cells, and running
// process twice returns exactly one brick to the free stack.
func TestE6DeallocReturnsExactlyOneBrick(t *testing.T) {
	w, m := newTestWorld(t, 8, 8)
	before := w.Counters().BricksFree

	pos := [3]uint32{1, 1, 1}
	w.SetVoxel(voxel.New([3]uint8{1, 1, 1}, 0, 0, false, 255), pos)
	w.Process()
	require.Equal(t, before-1, w.Counters().BricksFree)

	brick, _ := m.Resolve(pos)
	require.NotNil(t, brick)
	brick.Reset()

	w.Process()
	w.Process()

	assert.Equal(t, before, w.Counters().BricksFree)
}

// Property 4: writing empty() to an already-empty position changes nothing.
func TestIdempotentEmptyWrite(t *testing.T) {
	w, m := newTestWorld(t, 8, 8)
	before := w.Counters()

	w.SetVoxel(voxel.Empty(), [3]uint32{10, 10, 10})
	w.Process()

	assert.Equal(t, before, w.Counters())
	brick, _ := m.Resolve([3]uint32{10, 10, 10})
	assert.Nil(t, brick)
}

// Property 6 (second half): remove-then-add of the same model at two
// different positions restores the world for cells exclusively owned by it.
func TestModelPlacementSymmetryMoveAndRevert(t *testing.T) {
	w, m := newTestWorld(t, 16, 16)
	v := voxel.New([3]uint8{9, 9, 9}, 0, 0, false, 200)
	gm := model.FromVoxels("mover", []model.VoxelEntry{{Pos: [3]uint32{0, 0, 0}, Voxel: v}})

	p := [3]uint32{2000, 2000, 2000}
	q := [3]uint32{3000, 3000, 3000}

	w.UpdateModel(gm, p, p, false)
	w.Process()
	brick, local := m.Resolve(p)
	require.NotNil(t, brick)
	assert.Equal(t, v, brick.Get(local))

	w.UpdateModel(gm, p, q, false)
	w.Process()
	brick, local = m.Resolve(q)
	require.NotNil(t, brick)
	assert.Equal(t, v, brick.Get(local))

	w.UpdateModel(gm, q, q, true)
	w.Process()

	brickAtP, _ := m.Resolve(p)
	if brickAtP != nil {
		_, localP := m.Resolve(p)
		assert.True(t, brickAtP.Get(localP).IsEmpty())
	}
	brickAtQ, localQ := m.Resolve(q)
	if brickAtQ != nil {
		assert.True(t, brickAtQ.Get(localQ).IsEmpty())
	}
}

func TestRegisterAndLookupModel(t *testing.T) {
	w, _ := newTestWorld(t, 4, 4)
	gm := model.FromVoxels("named", nil)
	w.RegisterModel(gm)

	got, ok := w.Model(gm.ID)
	require.True(t, ok)
	assert.Same(t, gm, got)

	_, ok = w.Model(model.NewID())
	assert.False(t, ok)
}

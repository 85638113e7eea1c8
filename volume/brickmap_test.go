package volume

import (
	"testing"

	"github.com/voxgrid/vxcore/voxel"
)

func TestCoordsSplitRegionBoundary(t *testing.T) {
	c := Split([3]uint32{256, 16, 1})
	if c.Root != [3]uint32{1, 0, 0} {
		t.Errorf("Root = %v, want [1 0 0]", c.Root)
	}
	if c.Layer != [3]uint32{0, 1, 0} {
		t.Errorf("Layer = %v, want [0 1 0]", c.Layer)
	}
	if c.Brick != [3]uint32{0, 0, 1} {
		t.Errorf("Brick = %v, want [0 0 1]", c.Brick)
	}
}

func TestBrickMapResolveAbsent(t *testing.T) {
	m := NewBrickMap(4, 4)
	b, _ := m.Resolve([3]uint32{10, 10, 10})
	if b != nil {
		t.Error("expected no brick in an empty brickmap")
	}
}

func TestBrickMapManualAllocateAndResolve(t *testing.T) {
	m := NewBrickMap(4, 4)
	c := Split([3]uint32{5, 5, 5})

	layerSlot, ok := m.LayerPool.Alloc()
	if !ok {
		t.Fatal("layer alloc failed")
	}
	if !m.Root.CompareAndSwap(c.Root, 0, layerSlot) {
		t.Fatal("root CAS failed on an empty slot")
	}

	brickSlot, ok := m.BrickPool.Alloc()
	if !ok {
		t.Fatal("brick alloc failed")
	}
	layer := m.Layer(layerSlot)
	if !layer.CompareAndSwap(c.Layer, 0, brickSlot) {
		t.Fatal("layer CAS failed on an empty slot")
	}

	brick := m.Brick(brickSlot)
	brick.Set(c.Brick, voxel.New([3]uint8{255, 0, 0}, 0, 0, false, 255))

	got, localCoord := m.Resolve([3]uint32{5, 5, 5})
	if got == nil {
		t.Fatal("expected a resolvable brick")
	}
	if got.Get(localCoord).Opacity() == 0 {
		t.Error("resolved voxel should carry the written opacity")
	}
	if m.BricksInUse() != 1 {
		t.Errorf("BricksInUse() = %d, want 1", m.BricksInUse())
	}
}

func TestBrickIsEmpty(t *testing.T) {
	b := &Brick{}
	if !b.IsEmpty() {
		t.Error("a fresh brick should be empty")
	}
	b.Set([3]uint32{1, 2, 3}, voxel.New([3]uint8{0, 0, 0}, 0, 0, false, 255))
	if b.IsEmpty() {
		t.Error("a brick with one opaque voxel should not be empty")
	}
	b.Set([3]uint32{1, 2, 3}, voxel.Empty())
	if !b.IsEmpty() {
		t.Error("clearing the only voxel should make the brick empty again")
	}
}

func TestLayerNodeIsEmpty(t *testing.T) {
	l := &LayerNode{}
	if !l.IsEmpty() {
		t.Error("a fresh layer node should be empty")
	}
	l.CompareAndSwap([3]uint32{2, 2, 2}, 0, 7)
	if l.IsEmpty() {
		t.Error("a layer node with one occupied slot should not be empty")
	}
	l.Clear([3]uint32{2, 2, 2})
	if !l.IsEmpty() {
		t.Error("clearing the only slot should make the layer node empty again")
	}
}

package volume

import "sync/atomic"

// RootMap is the dense 64×64×64 top of the tree: each slot is 0 or
// 1+pool_index into the layer pool.
type RootMap struct {
	Slots [RootSlotCount]atomic.Uint32
}

// Get reads the layer slot at a root-cell coordinate.
func (r *RootMap) Get(cell [3]uint32) uint32 {
	return r.Slots[RootIndex(cell[0], cell[1], cell[2])].Load()
}

// CompareAndSwap publishes a newly allocated LayerNode index into a root
// slot, failing if another invocation already published one.
func (r *RootMap) CompareAndSwap(cell [3]uint32, old, new uint32) bool {
	return r.Slots[RootIndex(cell[0], cell[1], cell[2])].CompareAndSwap(old, new)
}

// Clear atomically resets a root slot back to 0 (absent).
func (r *RootMap) Clear(cell [3]uint32) {
	r.Slots[RootIndex(cell[0], cell[1], cell[2])].Store(0)
}

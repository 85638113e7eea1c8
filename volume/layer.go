package volume

import "sync/atomic"

// LayerNode is an interior node: an array of 4096 32-bit unsigned brick
// indices, each slot either 0 (no brick) or 1+pool_index into the brick
// pool. Slots are atomic so concurrent compute-kernel invocations can
// compare-and-swap a freshly allocated child index in (spec.md §4.3).
type LayerNode struct {
	BrickIndices [LayerSlotCount]atomic.Uint32
}

// Get reads the brick slot at a layer-local coordinate.
func (l *LayerNode) Get(local [3]uint32) uint32 {
	return l.BrickIndices[LocalIndex16(local[0], local[1], local[2])].Load()
}

// CompareAndSwap publishes a newly allocated brick index into a layer-local
// slot, failing if another invocation already published one.
func (l *LayerNode) CompareAndSwap(local [3]uint32, old, new uint32) bool {
	return l.BrickIndices[LocalIndex16(local[0], local[1], local[2])].CompareAndSwap(old, new)
}

// Clear atomically resets a layer-local slot back to 0 (absent).
func (l *LayerNode) Clear(local [3]uint32) {
	l.BrickIndices[LocalIndex16(local[0], local[1], local[2])].Store(0)
}

// IsEmpty reports whether every brick slot in this node is 0, making the
// node itself eligible for the optional LayerNode reclamation path
// (spec.md §9).
func (l *LayerNode) IsEmpty() bool {
	for i := range l.BrickIndices {
		if l.BrickIndices[i].Load() != 0 {
			return false
		}
	}
	return true
}

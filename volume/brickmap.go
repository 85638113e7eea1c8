package volume

// BrickMap is the full three-level sparse tree plus its backing pools: the
// dense root map, the layer pool, and the brick pool. It holds no queueing
// or dispatch logic of its own — that lives in the world/gpu/cpu packages —
// only the storage layout and pool bookkeeping spec.md §3 and §4.3
// describe.
type BrickMap struct {
	Root *RootMap

	LayerPool *Pool
	Layers    []LayerNode

	BrickPool *Pool
	Bricks    []Brick
	Usage     []UsageFlags // host shadow debug state, indexed the same as Bricks
}

// NewBrickMap allocates a brickmap with the given layer and brick pool
// capacities (reference values: 8192 layers, 32768 bricks).
func NewBrickMap(layerPoolSize, brickPoolSize uint32) *BrickMap {
	return &BrickMap{
		Root:      &RootMap{},
		LayerPool: NewPool(layerPoolSize),
		Layers:    make([]LayerNode, layerPoolSize),
		BrickPool: NewPool(brickPoolSize),
		Bricks:    make([]Brick, brickPoolSize),
		Usage:     make([]UsageFlags, brickPoolSize),
	}
}

// Layer resolves a 1-based layer slot value to its LayerNode, or nil if the
// slot is 0 (absent).
func (m *BrickMap) Layer(slot uint32) *LayerNode {
	if slot == 0 {
		return nil
	}
	return &m.Layers[slot-1]
}

// Brick resolves a 1-based brick slot value to its Brick, or nil if the
// slot is 0 (absent).
func (m *BrickMap) Brick(slot uint32) *Brick {
	if slot == 0 {
		return nil
	}
	return &m.Bricks[slot-1]
}

// Resolve walks root -> layer -> brick for a world position, returning the
// brick (or nil if any level is absent) along with the brick-local
// coordinate to index into it.
func (m *BrickMap) Resolve(p [3]uint32) (*Brick, [3]uint32) {
	c := Split(p)
	layerSlot := m.Root.Get(c.Root)
	layer := m.Layer(layerSlot)
	if layer == nil {
		return nil, c.Brick
	}
	brickSlot := layer.Get(c.Layer)
	return m.Brick(brickSlot), c.Brick
}

// BricksInUse counts root-reachable bricks by scanning every root and
// layer slot. It is O(pool size) and meant for tests and diagnostics, not
// the hot path.
func (m *BrickMap) BricksInUse() int {
	inUse := 0
	for i := range m.Root.Slots {
		layerSlot := m.Root.Slots[i].Load()
		if layerSlot == 0 {
			continue
		}
		layer := m.Layer(layerSlot)
		for j := range layer.BrickIndices {
			if layer.BrickIndices[j].Load() != 0 {
				inUse++
			}
		}
	}
	return inUse
}

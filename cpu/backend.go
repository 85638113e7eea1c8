// Package cpu implements world.Backend as goroutine-dispatched kernels over
// a volume.BrickMap, using sync/atomic for pool bookkeeping and CAS-publish
// exactly as the device-side contract specifies. It requires no GPU adapter,
// so it is what World.Process runs against in tests and in any headless
// build.
package cpu

import (
	"sync"

	"github.com/voxgrid/vxcore"
	"github.com/voxgrid/vxcore/model"
	"github.com/voxgrid/vxcore/voxel"
	"github.com/voxgrid/vxcore/volume"
	"github.com/voxgrid/vxcore/world"
)

type ownerInfo struct {
	layerSlot uint32
	local     [3]uint32
}

type layerOwnerInfo struct {
	root [3]uint32
}

// Backend is a world.Backend that dispatches each kernel as one goroutine
// per staging entry, mirroring the "massively parallel, no intra-chunk
// ordering guarantee" contract with real concurrency rather than simulating
// it serially.
type Backend struct {
	Map    *volume.BrickMap
	logger vxcore.Logger

	// owners/layerOwners are host-side side tables letting the dealloc pass
	// find a brick's (or LayerNode's) owning slot in O(1) instead of
	// scanning the whole tree. They are written only by the CAS winner that
	// allocated the slot, so no synchronization beyond the WaitGroup-bounded
	// visibility each kernel call already provides is needed.
	owners      []ownerInfo
	layerOwners []layerOwnerInfo

	deallocMu     sync.Mutex
	deallocCursor uint32

	modelsMu sync.Mutex
	models   map[model.ID][]model.GPUVoxel
}

// NewBackend wraps a brickmap for CPU-dispatched kernel execution. A nil
// logger falls back to vxcore.NopLogger, the same default Options.Logger
// uses.
func NewBackend(m *volume.BrickMap, logger vxcore.Logger) *Backend {
	if logger == nil {
		logger = vxcore.NopLogger{}
	}
	return &Backend{
		Map:         m,
		logger:      logger,
		owners:      make([]ownerInfo, m.BrickPool.Capacity()),
		layerOwners: make([]layerOwnerInfo, m.LayerPool.Capacity()),
		models:      make(map[model.ID][]model.GPUVoxel),
	}
}

// AllocLayers implements the alloc-layers kernel (spec §4.4 Phase B.2). A
// LayerNode is allocated lazily only for non-empty writes, mirroring brick
// lifecycle (spec §3 "Lifecycles"): an empty write to an untouched region
// must leave pool counters untouched (testable property 4), so this checks
// e.Voxel.IsEmpty() even though the kernel is otherwise identical to the
// literal per-entry description in §4.4.
func (b *Backend) AllocLayers(chunk []world.StagingEntry) {
	var wg sync.WaitGroup
	for i := range chunk {
		wg.Add(1)
		go func(e world.StagingEntry) {
			defer wg.Done()
			if e.Voxel.IsEmpty() {
				return
			}
			c := volume.Split(e.Pos)
			if b.Map.Root.Get(c.Root) != 0 {
				return
			}
			slot, ok := b.Map.LayerPool.Alloc()
			if !ok {
				b.logger.Warnf("layer pool exhausted, dropping alloc for root cell %v", c.Root)
				return
			}
			if !b.Map.Root.CompareAndSwap(c.Root, 0, slot) {
				b.Map.LayerPool.Release(slot)
				return
			}
			b.layerOwners[slot-1] = layerOwnerInfo{root: c.Root}
		}(chunk[i])
	}
	wg.Wait()
}

// AllocBricks implements the alloc-bricks kernel (spec §4.4 Phase B.3).
func (b *Backend) AllocBricks(chunk []world.StagingEntry) {
	var wg sync.WaitGroup
	for i := range chunk {
		wg.Add(1)
		go func(e world.StagingEntry) {
			defer wg.Done()
			c := volume.Split(e.Pos)
			layerSlot := b.Map.Root.Get(c.Root)
			layer := b.Map.Layer(layerSlot)
			if layer == nil {
				return
			}
			if layer.Get(c.Layer) != 0 {
				return
			}
			if e.Voxel.IsEmpty() {
				return
			}
			slot, ok := b.Map.BrickPool.Alloc()
			if !ok {
				b.logger.Warnf("brick pool exhausted, dropping alloc for layer-local cell %v in layer slot %d", c.Layer, layerSlot)
				return
			}
			if !layer.CompareAndSwap(c.Layer, 0, slot) {
				b.Map.BrickPool.Release(slot)
				return
			}
			b.owners[slot-1] = ownerInfo{layerSlot: layerSlot, local: c.Layer}
			b.Map.Usage[slot-1].SetInUse(true)
		}(chunk[i])
	}
	wg.Wait()
}

// WriteVoxels implements the write-voxels kernel (spec §4.4 Phase B.4):
// entries whose root/layer/brick chain fails to resolve are silently
// dropped.
func (b *Backend) WriteVoxels(chunk []world.StagingEntry) {
	var wg sync.WaitGroup
	for i := range chunk {
		wg.Add(1)
		go func(e world.StagingEntry) {
			defer wg.Done()
			slot, local, ok := b.resolveBrickSlot(e.Pos)
			if !ok {
				return
			}
			b.Map.Brick(slot).Set(local, e.Voxel)
			b.Map.Usage[slot-1].SetDirty(true)
		}(chunk[i])
	}
	wg.Wait()
}

func (b *Backend) resolveBrickSlot(pos [3]uint32) (slot uint32, local [3]uint32, ok bool) {
	c := volume.Split(pos)
	layer := b.Map.Layer(b.Map.Root.Get(c.Root))
	if layer == nil {
		return 0, c.Brick, false
	}
	slot = layer.Get(c.Layer)
	if slot == 0 {
		return 0, c.Brick, false
	}
	return slot, c.Brick, true
}

// Fence is a no-op here: each kernel call above already blocks on its
// WaitGroup, so the happens-before edge the dispatch pipeline needs between
// phases is already established by the time a kernel method returns.
func (b *Backend) Fence() {}

// DeallocBricks implements the dealloc-bricks kernel (spec §4.4 Phase C),
// scanning at most limit pool slots starting from a rotating cursor so
// repeated calls eventually cover the whole pool. It runs single-threaded:
// spec §5 guarantees exactly one host task drains per process() call, so
// there is no contention to resolve with CAS here, only the free-stack
// discipline itself.
func (b *Backend) DeallocBricks(limit int) {
	capacity := int(b.Map.BrickPool.Capacity())
	if limit <= 0 || capacity == 0 {
		return
	}
	if limit > capacity {
		limit = capacity
	}

	b.deallocMu.Lock()
	start := b.deallocCursor
	b.deallocMu.Unlock()

	for i := 0; i < limit; i++ {
		slot := uint32((int(start)+i)%capacity) + 1
		owner := b.owners[slot-1]
		layer := b.Map.Layer(owner.layerSlot)
		if layer == nil || layer.Get(owner.local) != slot {
			continue
		}
		if !b.Map.Brick(slot).IsEmpty() {
			continue
		}

		layer.Clear(owner.local)
		b.Map.Usage[slot-1].SetInUse(false)
		b.Map.Usage[slot-1].SetDirty(false)
		b.Map.BrickPool.Release(slot)

		b.reclaimLayerIfEmpty(owner.layerSlot, layer)
	}

	b.deallocMu.Lock()
	b.deallocCursor = uint32((int(start) + limit) % capacity)
	b.deallocMu.Unlock()
}

// reclaimLayerIfEmpty implements the optional LayerNode reclamation path
// (spec §9, SPEC_FULL §5.2): once every brick slot in a LayerNode is 0, its
// owning root slot is cleared and its index returned to the layer free
// stack, mirroring brick dealloc exactly.
func (b *Backend) reclaimLayerIfEmpty(layerSlot uint32, layer *volume.LayerNode) {
	if !layer.IsEmpty() {
		return
	}
	owner := b.layerOwners[layerSlot-1]
	if !b.Map.Root.CompareAndSwap(owner.root, layerSlot, 0) {
		return
	}
	b.Map.LayerPool.Release(layerSlot)
}

// Counters reports the pool-side observability fields; World fills in the
// queue-depth fields itself.
func (b *Backend) Counters() world.Counters {
	return world.Counters{
		BricksFree:  uint32(b.Map.BrickPool.FreeCount()),
		Layer0sFree: uint32(b.Map.LayerPool.FreeCount()),
	}
}

// Bind/Unbind are no-ops: there is no device buffer to publish to a
// consumer when the tree lives in host memory. Kept to satisfy
// world.Backend so World's orchestration code is identical across backends.
func (b *Backend) Bind()   {}
func (b *Backend) Unbind() {}

// UploadModel keeps the model's voxel buffer in a plain map: there is no
// device to publish it to here, but the lookup still happens by id so this
// backend's PlaceModel takes the same (id, offset, count) shape gpu.Manager
// does, and World's call sites never need to branch on which backend they
// hold.
func (b *Backend) UploadModel(id model.ID, voxels []model.GPUVoxel) {
	b.modelsMu.Lock()
	b.models[id] = voxels
	b.modelsMu.Unlock()
}

// PlaceModel implements the place-model kernel (spec §4.4 Phase A) as one
// goroutine per voxel, mirroring AllocLayers/AllocBricks: each invocation
// reads the uploaded model's (offset+i)-th voxel, undoes model.WorldOffset
// and adds placePos, and emits either the model's own word or (for
// zeroPass, the clearing pass over the old placement) an empty one.
func (b *Backend) PlaceModel(id model.ID, offset, count int, zeroPass bool, placePos [3]uint32) []world.StagingEntry {
	b.modelsMu.Lock()
	voxels := b.models[id]
	b.modelsMu.Unlock()

	if offset >= len(voxels) {
		return nil
	}
	if offset+count > len(voxels) {
		count = len(voxels) - offset
	}
	if count <= 0 {
		return nil
	}

	out := make([]world.StagingEntry, count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			gv := voxels[offset+i]
			word := gv.Word
			if zeroPass {
				word = 0
			}
			out[i] = world.StagingEntry{
				Pos: [3]uint32{
					gv.Pos[0] - model.WorldOffset + placePos[0],
					gv.Pos[1] - model.WorldOffset + placePos[1],
					gv.Pos[2] - model.WorldOffset + placePos[2],
				},
				Voxel: voxel.FromRaw(word),
			}
		}(i)
	}
	wg.Wait()
	return out
}

// Package world implements the facade the scene graph and renderer talk to:
// the CPU voxel and model queues, the dispatch pipeline that drains them each
// process() call, and the counters producers poll for pool-exhaustion
// backpressure.
package world

import (
	"github.com/voxgrid/vxcore/model"
	"github.com/voxgrid/vxcore/voxel"
)

// Bind slots the three world buffers are published at for consumers.
const (
	BindSlotBrickPool = 0
	BindSlotLayerPool = 1
	BindSlotRootMap   = 2
)

// StagingEntry is one voxel write as it crosses from a CPU queue (or a
// model's device buffer during placement) into the staging buffer a chunk of
// the dispatch pipeline operates on.
type StagingEntry struct {
	Pos   [3]uint32
	Voxel voxel.Voxel
}

// Counters are the engine's observability surface (spec §6): producers poll
// these to detect pool exhaustion and back off.
type Counters struct {
	VoxelsQueued int
	ModelsQueued int
	BricksFree   uint32
	Layer0sFree  uint32
}

// Backend is the compute-kernel contract behind World.process. It is
// implemented both by a real GPU-backed manager and by a goroutine-dispatched
// CPU backend; World only orchestrates phase ordering and knows nothing about
// which one it holds.
//
// Every method corresponds to one phase of the dispatch pipeline and is
// called once per chunk, with Fence delimiting the execution barrier the
// pipeline requires between kernel stages.
type Backend interface {
	// AllocLayers runs the alloc-layers kernel over chunk: for each entry
	// whose root slot is absent, attempt a LayerNode allocation and
	// CAS-publish it into the root map.
	AllocLayers(chunk []StagingEntry)

	// AllocBricks runs the alloc-bricks kernel: for each entry whose layer
	// slot is absent and whose voxel is non-empty, attempt a brick
	// allocation and CAS-publish it into the owning LayerNode.
	AllocBricks(chunk []StagingEntry)

	// WriteVoxels runs the write-voxels kernel: resolve root -> layer ->
	// brick for each entry and write its voxel, silently dropping entries
	// that fail to resolve.
	WriteVoxels(chunk []StagingEntry)

	// Fence is the execution barrier between kernel stages: writes issued
	// by any kernel called before Fence must be visible to kernels called
	// after it returns.
	Fence()

	// DeallocBricks runs the dealloc-bricks kernel, inspecting at most
	// limit pool slots per call and returning any wholly empty, owned
	// brick to the free stack.
	DeallocBricks(limit int)

	// Counters reports the current observability snapshot.
	Counters() Counters

	// Bind is the hook for publishing the three world buffers at
	// BindSlotBrickPool, BindSlotLayerPool, BindSlotRootMap for a consumer
	// (the renderer). cpu.Backend and gpu.Manager both implement it as a
	// no-op.
	Bind()

	// Unbind is the Bind counterpart (also a no-op in both backends).
	Unbind()

	// UploadModel publishes a registered model's voxel buffer to the
	// backend, keyed by id, ahead of any PlaceModel call referencing it —
	// spec.md §2's "GPU model: device-resident voxel position/value
	// buffer". gpu.Manager allocates a real device buffer; cpu.Backend
	// just keeps the slice.
	UploadModel(id model.ID, voxels []model.GPUVoxel)

	// PlaceModel runs the place-model kernel over the uploaded model's
	// voxels[offset:offset+count]: each invocation resolves a world
	// position by subtracting model.WorldOffset from the stored local
	// position and adding placePos, then emits that position with the
	// model's voxel word (or with an empty word, for the zeroPass clearing
	// pass over the old placement). Returns the produced staging chunk for
	// the caller to run through the normal write pipeline.
	PlaceModel(id model.ID, offset, count int, zeroPass bool, placePos [3]uint32) []StagingEntry
}

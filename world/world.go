package world

import (
	"sync"

	"github.com/voxgrid/vxcore"
	"github.com/voxgrid/vxcore/model"
	"github.com/voxgrid/vxcore/voxel"
)

// ModelPlacement is one queued model transition (spec §4.2's
// update_model(m, old_pos, new_pos, remove_only)).
type ModelPlacement struct {
	Model      *model.GPUModel
	OldPos     [3]uint32
	NewPos     [3]uint32
	RemoveOnly bool

	// skipRemovePass is set by UpdateModel when old_pos == new_pos and
	// remove_only is false: per SPEC_FULL §6 (the dirty-position
	// optimization recovered from the original model-placement code), a
	// model moving to the position it already occupies only needs the add
	// pass, not a pointless remove-then-add.
	skipRemovePass bool
}

// World is the facade producers and the renderer interact with: CPU-side
// queues, a registry of immutable GPU models, and a Backend that implements
// the dispatch pipeline's kernels.
type World struct {
	opts    vxcore.Options
	backend Backend

	voxelQueue fifoQueue[StagingEntry]
	modelQueue fifoQueue[ModelPlacement]

	registryMu sync.Mutex
	registry   map[model.ID]*model.GPUModel
}

// New builds a World over the given Backend.
func New(backend Backend, opts vxcore.Options) *World {
	return &World{
		opts:     opts,
		backend:  backend,
		registry: make(map[model.ID]*model.GPUModel),
	}
}

// SetVoxel appends a write to the CPU voxel queue (spec §4.2). Non-blocking
// beyond the brief queue-lock hold.
func (w *World) SetVoxel(v voxel.Voxel, p [3]uint32) {
	w.voxelQueue.push(StagingEntry{Pos: p, Voxel: v})
}

// UpdateModel appends a model transition record (spec §4.2). When
// remove_only is true, every cell m occupies at old_pos is cleared; when
// false, old_pos is cleared and m is written at new_pos, old pass first.
func (w *World) UpdateModel(m *model.GPUModel, oldPos, newPos [3]uint32, removeOnly bool) {
	w.modelQueue.push(ModelPlacement{
		Model:          m,
		OldPos:         oldPos,
		NewPos:         newPos,
		RemoveOnly:     removeOnly,
		skipRemovePass: !removeOnly && oldPos == newPos,
	})
}

// RegisterModel publishes a loaded GPU model into the grow-only registry and
// uploads its voxel buffer to the backend, so later UpdateModel calls can
// place it without re-uploading.
func (w *World) RegisterModel(m *model.GPUModel) {
	w.registryMu.Lock()
	w.registry[m.ID] = m
	w.registryMu.Unlock()
	w.backend.UploadModel(m.ID, m.Voxels)
	w.opts.Logger.Infof("model registered: %s (%q), %d voxels", m.ID, m.Name, m.VoxelCount())
}

// Model looks up a registered GPU model by ID.
func (w *World) Model(id model.ID) (*model.GPUModel, bool) {
	w.registryMu.Lock()
	defer w.registryMu.Unlock()
	m, ok := w.registry[id]
	return m, ok
}

// Bind forwards to the backend's Bind. Both backends in this module
// (cpu.Backend and gpu.Manager) implement it as a no-op, so no buffer is
// bound at the well-known slots by this call.
func (w *World) Bind() { w.backend.Bind() }

// Unbind forwards to the backend's Unbind (a no-op in both backends).
func (w *World) Unbind() { w.backend.Unbind() }

// Counters reports the observability surface (spec §6).
func (w *World) Counters() Counters {
	c := w.backend.Counters()
	c.VoxelsQueued = w.voxelQueue.len()
	c.ModelsQueued = w.modelQueue.len()
	return c
}

// Process drains the model queue, then the voxel queue, then runs a dealloc
// pass, per the dispatch pipeline in spec §4.4.
func (w *World) Process() {
	w.processModelQueue()
	w.processVoxelQueue()

	before := w.backend.Counters().BricksFree
	w.backend.DeallocBricks(w.opts.DeallocQueueSize)
	after := w.backend.Counters().BricksFree
	if after != before {
		w.opts.Logger.Debugf("dealloc pass: bricks_free %d -> %d", before, after)
	}
}

func (w *World) processModelQueue() {
	for _, p := range w.modelQueue.drain() {
		switch {
		case p.RemoveOnly:
			w.placeModelPass(p.Model, p.OldPos, true)
		case p.skipRemovePass:
			w.placeModelPass(p.Model, p.NewPos, false)
		default:
			w.placeModelPass(p.Model, p.OldPos, true)
			w.placeModelPass(p.Model, p.NewPos, false)
		}
	}
}

// placeModelPass runs the place-model kernel (via Backend.PlaceModel, chunk
// by chunk) for one pass of one placement: for pass 0 (zero=true) the
// kernel writes an empty word at every cell the model occupies relative to
// offset; for pass 1 (zero=false) it writes the model's actual voxel words.
// A model that was never registered is uploaded here, on every pass.
// Each chunk then runs the normal write pipeline (spec §4.4 Phase A:
// "execute the normal write pipeline on that chunk").
func (w *World) placeModelPass(m *model.GPUModel, offset [3]uint32, zero bool) {
	if _, ok := w.Model(m.ID); !ok {
		w.backend.UploadModel(m.ID, m.Voxels)
	}
	size := w.opts.VoxelQueueSize
	for start := 0; start < len(m.Voxels); start += size {
		end := min(start+size, len(m.Voxels))
		chunk := w.backend.PlaceModel(m.ID, start, end-start, zero, offset)
		w.runWritePipeline(chunk)
	}
}

func (w *World) processVoxelQueue() {
	queue := w.voxelQueue.drain()
	size := w.opts.VoxelQueueSize
	for start := 0; start < len(queue); start += size {
		end := min(start+size, len(queue))
		w.runWritePipeline(queue[start:end])
	}
}

// runWritePipeline is Phase B steps 2-4: alloc-layers, alloc-bricks,
// write-voxels, each separated by a fence.
func (w *World) runWritePipeline(chunk []StagingEntry) {
	if len(chunk) == 0 {
		return
	}
	w.backend.AllocLayers(chunk)
	w.backend.Fence()
	w.backend.AllocBricks(chunk)
	w.backend.Fence()
	w.backend.WriteVoxels(chunk)
	w.backend.Fence()
}

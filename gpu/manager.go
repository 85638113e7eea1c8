// Package gpu implements world.Backend against a real compute-capable
// device: wgpu storage buffers for the brick pool, layer pool, root map and
// their free stacks, and the five WGSL kernels compiled from the kernels
// package, dispatched the same way the teacher's edit pipeline does
// (BeginComputePass / DispatchWorkgroups / Submit, with bind groups wired
// the way manager_edit.go wires EditBindGroup0/1/2).
package gpu

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/voxgrid/vxcore"
	"github.com/voxgrid/vxcore/kernels"
	"github.com/voxgrid/vxcore/model"
	"github.com/voxgrid/vxcore/volume"
	"github.com/voxgrid/vxcore/voxel"
	"github.com/voxgrid/vxcore/world"
)

const workgroupSize = 64

// Manager is the GPU-backed world.Backend.
type Manager struct {
	Device *wgpu.Device
	logger vxcore.Logger

	brickPoolSize uint32
	layerPoolSize uint32

	// Tree storage.
	RootMapBuf  *wgpu.Buffer // RootSlotCount x u32
	LayerNodeBuf *wgpu.Buffer // layerPoolSize x 4096 x u32
	BrickPoolBuf *wgpu.Buffer // brickPoolSize x 4096 x u32

	// Pool free-index stacks + atomic counters.
	LayerFreeStackBuf   *wgpu.Buffer
	LayerFreeCounterBuf *wgpu.Buffer
	BrickFreeStackBuf   *wgpu.Buffer
	BrickFreeCounterBuf *wgpu.Buffer

	// Host shadow tables for the dealloc kernel's ownership lookups.
	BrickOwnerLayerBuf *wgpu.Buffer
	BrickOwnerLocalBuf *wgpu.Buffer

	// Staging buffer for the current chunk, plus its uniform params.
	StagingBuf *wgpu.Buffer
	ParamsBuf  *wgpu.Buffer

	// Place-model kernel's own output + readback buffers (spec.md §2's
	// "GPU model: device-resident voxel position/value buffer" and §4.4
	// Phase A). Unlike the other four kernels, the host needs the staging
	// chunk this kernel produces back in hand to feed runWritePipeline, so
	// this is the one place this backend does a synchronous device->host
	// copy.
	modelBufs        map[model.ID]*wgpu.Buffer
	PlaceOutputBuf   *wgpu.Buffer
	PlaceReadbackBuf *wgpu.Buffer

	allocLayersPipeline   *wgpu.ComputePipeline
	allocBricksPipeline   *wgpu.ComputePipeline
	writeVoxelsPipeline   *wgpu.ComputePipeline
	deallocBricksPipeline *wgpu.ComputePipeline
	placeModelPipeline    *wgpu.ComputePipeline

	// Bind group 0 (staging + params) is rebuilt per dispatch in
	// ensureStaging since the staging buffer can grow; only bind group 1
	// (the tree buffers) is stable across dispatches and kept here.
	allocLayersBG1    *wgpu.BindGroup
	allocBricksBG1    *wgpu.BindGroup
	writeVoxelsBG1    *wgpu.BindGroup
	deallocBricksBG1  *wgpu.BindGroup

	// Counters() does not read the device's free counters back. These
	// fields are set to the pool capacities in NewManager and never updated
	// afterwards, so Counters() keeps reporting the initial free counts
	// whatever the kernels have allocated or freed since.
	countersMu    sync.Mutex
	cachedBricksFree  uint32
	cachedLayer0sFree uint32
}

// NewManager creates the device buffers and compiles the dispatch
// pipeline's kernels. capacity sizes mirror volume.NewBrickMap's. A nil
// logger falls back to vxcore.NopLogger, the same default Options.Logger
// uses.
func NewManager(device *wgpu.Device, layerPoolSize, brickPoolSize uint32, logger vxcore.Logger) (*Manager, error) {
	if logger == nil {
		logger = vxcore.NopLogger{}
	}
	m := &Manager{
		Device:        device,
		logger:        logger,
		layerPoolSize: layerPoolSize,
		brickPoolSize: brickPoolSize,
		modelBufs:     make(map[model.ID]*wgpu.Buffer),
	}
	if err := m.initBuffers(); err != nil {
		return nil, fmt.Errorf("failed to initialize brickmap buffers: %w", err)
	}
	if err := m.initPipelines(); err != nil {
		return nil, fmt.Errorf("failed to initialize dispatch pipelines: %w", err)
	}
	m.cachedBricksFree = brickPoolSize
	m.cachedLayer0sFree = layerPoolSize
	m.logger.Infof("gpu manager ready: %d compute pipelines compiled, brick pool %d, layer pool %d", 5, brickPoolSize, layerPoolSize)
	return m, nil
}

func (m *Manager) initBuffers() error {
	create := func(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
		buf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label,
			Size:  size,
			Usage: usage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s buffer: %w", label, err)
		}
		return buf, nil
	}

	var err error
	rootSlots := uint64(volume.RootSlotCount)
	if m.RootMapBuf, err = create("RootMap", rootSlots*4, wgpu.BufferUsageStorage); err != nil {
		return err
	}
	if m.LayerNodeBuf, err = create("LayerNodes", uint64(m.layerPoolSize)*volume.LayerSlotCount*4, wgpu.BufferUsageStorage); err != nil {
		return err
	}
	if m.BrickPoolBuf, err = create("BrickPool", uint64(m.brickPoolSize)*volume.BrickVoxelCount*4, wgpu.BufferUsageStorage); err != nil {
		return err
	}
	if m.LayerFreeStackBuf, err = create("LayerFreeStack", uint64(m.layerPoolSize)*4, wgpu.BufferUsageStorage); err != nil {
		return err
	}
	if m.LayerFreeCounterBuf, err = create("LayerFreeCounter", 4, wgpu.BufferUsageStorage); err != nil {
		return err
	}
	if m.BrickFreeStackBuf, err = create("BrickFreeStack", uint64(m.brickPoolSize)*4, wgpu.BufferUsageStorage); err != nil {
		return err
	}
	if m.BrickFreeCounterBuf, err = create("BrickFreeCounter", 4, wgpu.BufferUsageStorage); err != nil {
		return err
	}
	if m.BrickOwnerLayerBuf, err = create("BrickOwnerLayer", uint64(m.brickPoolSize)*4, wgpu.BufferUsageStorage); err != nil {
		return err
	}
	if m.BrickOwnerLocalBuf, err = create("BrickOwnerLocal", uint64(m.brickPoolSize)*4, wgpu.BufferUsageStorage); err != nil {
		return err
	}
	if m.ParamsBuf, err = create("KernelParams", 32, wgpu.BufferUsageUniform); err != nil {
		return err
	}

	layerStack := make([]byte, m.layerPoolSize*4)
	for i := uint32(0); i < m.layerPoolSize; i++ {
		binary.LittleEndian.PutUint32(layerStack[i*4:], i+1)
	}
	m.Device.GetQueue().WriteBuffer(m.LayerFreeStackBuf, 0, layerStack)
	m.writeCounter(m.LayerFreeCounterBuf, int32(m.layerPoolSize))

	brickStack := make([]byte, m.brickPoolSize*4)
	for i := uint32(0); i < m.brickPoolSize; i++ {
		binary.LittleEndian.PutUint32(brickStack[i*4:], i+1)
	}
	m.Device.GetQueue().WriteBuffer(m.BrickFreeStackBuf, 0, brickStack)
	m.writeCounter(m.BrickFreeCounterBuf, int32(m.brickPoolSize))

	return nil
}

func (m *Manager) writeCounter(buf *wgpu.Buffer, v int32) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	m.Device.GetQueue().WriteBuffer(buf, 0, b)
}

func (m *Manager) initPipelines() error {
	compile := func(label, entry, src string) (*wgpu.ComputePipeline, error) {
		mod, err := m.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label:          label,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s shader module: %w", label, err)
		}
		defer mod.Release()

		pipeline, err := m.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
			Label: label,
			Compute: wgpu.ProgrammableStageDescriptor{
				Module:     mod,
				EntryPoint: entry,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s pipeline: %w", label, err)
		}
		return pipeline, nil
	}

	var err error
	if m.allocLayersPipeline, err = compile("AllocLayers", "alloc_layers", kernels.AllocLayersWGSL); err != nil {
		return err
	}
	if m.allocBricksPipeline, err = compile("AllocBricks", "alloc_bricks", kernels.AllocBricksWGSL); err != nil {
		return err
	}
	if m.writeVoxelsPipeline, err = compile("WriteVoxels", "write_voxels", kernels.WriteVoxelsWGSL); err != nil {
		return err
	}
	if m.deallocBricksPipeline, err = compile("DeallocBricks", "dealloc_bricks", kernels.DeallocBricksWGSL); err != nil {
		return err
	}
	if m.placeModelPipeline, err = compile("PlaceModel", "place_model", kernels.PlaceModelWGSL); err != nil {
		return err
	}
	return m.createBindGroups()
}

func (m *Manager) createBindGroups() error {
	var err error

	m.allocLayersBG1, err = m.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: m.allocLayersPipeline.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: m.RootMapBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: m.LayerFreeStackBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: m.LayerFreeCounterBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create alloc-layers bind group 1: %w", err)
	}

	m.allocBricksBG1, err = m.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: m.allocBricksPipeline.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: m.RootMapBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: m.LayerNodeBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: m.BrickFreeStackBuf, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: m.BrickFreeCounterBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create alloc-bricks bind group 1: %w", err)
	}

	m.writeVoxelsBG1, err = m.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: m.writeVoxelsPipeline.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: m.RootMapBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: m.LayerNodeBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: m.BrickPoolBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create write-voxels bind group 1: %w", err)
	}

	m.deallocBricksBG1, err = m.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: m.deallocBricksPipeline.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: m.BrickPoolBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: m.BrickOwnerLayerBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: m.BrickOwnerLocalBuf, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: m.LayerNodeBuf, Size: wgpu.WholeSize},
			{Binding: 4, Buffer: m.BrickFreeStackBuf, Size: wgpu.WholeSize},
			{Binding: 5, Buffer: m.BrickFreeCounterBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create dealloc-bricks bind group 1: %w", err)
	}

	return nil
}

// ensureStaging (re)creates the staging buffer and its bind group 0 if the
// chunk being dispatched needs more room than currently allocated.
func (m *Manager) ensureStaging(chunkLen int, pipeline *wgpu.ComputePipeline) (*wgpu.BindGroup, error) {
	neededSize := uint64(chunkLen * 16)
	if m.StagingBuf == nil || m.StagingBuf.GetSize() < neededSize {
		if m.StagingBuf != nil {
			m.StagingBuf.Release()
		}
		var err error
		m.StagingBuf, err = m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "StagingBuffer",
			Size:  neededSize,
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create staging buffer: %w", err)
		}
	}
	return m.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: m.StagingBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: m.ParamsBuf, Size: wgpu.WholeSize},
		},
	})
}

func (m *Manager) uploadChunk(chunk []world.StagingEntry) {
	data := make([]byte, len(chunk)*16)
	for i, e := range chunk {
		off := i * 16
		binary.LittleEndian.PutUint32(data[off:], e.Pos[0])
		binary.LittleEndian.PutUint32(data[off+4:], e.Pos[1])
		binary.LittleEndian.PutUint32(data[off+8:], e.Pos[2])
		binary.LittleEndian.PutUint32(data[off+12:], e.Voxel.Raw())
	}
	m.Device.GetQueue().WriteBuffer(m.StagingBuf, 0, data)

	params := make([]byte, 4)
	binary.LittleEndian.PutUint32(params, uint32(len(chunk)))
	m.Device.GetQueue().WriteBuffer(m.ParamsBuf, 0, params)
}

func (m *Manager) dispatch(label string, pipeline *wgpu.ComputePipeline, bg0, bg1 *wgpu.BindGroup, invocations uint32) {
	if invocations == 0 {
		return
	}
	encoder, err := m.Device.CreateCommandEncoder(nil)
	if err != nil {
		panic(fmt.Errorf("failed to create %s command encoder: %w", label, err))
	}

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bg0, nil)
	if bg1 != nil {
		pass.SetBindGroup(1, bg1, nil)
	}
	workgroups := (invocations + workgroupSize - 1) / workgroupSize
	pass.DispatchWorkgroups(workgroups, 1, 1)
	pass.End()

	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		panic(fmt.Errorf("failed to finish %s command buffer: %w", label, err))
	}
	m.Device.GetQueue().Submit(cmdBuf)
}

// AllocLayers implements world.Backend.
func (m *Manager) AllocLayers(chunk []world.StagingEntry) {
	if len(chunk) == 0 {
		return
	}
	bg0, err := m.ensureStaging(len(chunk), m.allocLayersPipeline)
	if err != nil {
		panic(err)
	}
	m.uploadChunk(chunk)
	m.dispatch("alloc-layers", m.allocLayersPipeline, bg0, m.allocLayersBG1, uint32(len(chunk)))
}

// AllocBricks implements world.Backend.
func (m *Manager) AllocBricks(chunk []world.StagingEntry) {
	if len(chunk) == 0 {
		return
	}
	bg0, err := m.ensureStaging(len(chunk), m.allocBricksPipeline)
	if err != nil {
		panic(err)
	}
	m.dispatch("alloc-bricks", m.allocBricksPipeline, bg0, m.allocBricksBG1, uint32(len(chunk)))
}

// WriteVoxels implements world.Backend.
func (m *Manager) WriteVoxels(chunk []world.StagingEntry) {
	if len(chunk) == 0 {
		return
	}
	bg0, err := m.ensureStaging(len(chunk), m.writeVoxelsPipeline)
	if err != nil {
		panic(err)
	}
	m.dispatch("write-voxels", m.writeVoxelsPipeline, bg0, m.writeVoxelsBG1, uint32(len(chunk)))
}

// UploadModel implements world.Backend: it encodes the model's voxel buffer
// as (x, y, z, voxel_word) records, the same 16-byte-per-entry layout
// uploadChunk uses, and writes it once to a dedicated device buffer keyed by
// id so PlaceModel dispatches never re-upload it.
func (m *Manager) UploadModel(id model.ID, voxels []model.GPUVoxel) {
	if old, ok := m.modelBufs[id]; ok {
		old.Release()
	}
	buf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ModelVoxels:" + string(id),
		Size:  uint64(len(voxels)) * 16,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		m.logger.Warnf("failed to allocate model buffer for %s: %v", id, err)
		return
	}
	data := make([]byte, len(voxels)*16)
	for i, v := range voxels {
		off := i * 16
		binary.LittleEndian.PutUint32(data[off:], v.Pos[0])
		binary.LittleEndian.PutUint32(data[off+4:], v.Pos[1])
		binary.LittleEndian.PutUint32(data[off+8:], v.Pos[2])
		binary.LittleEndian.PutUint32(data[off+12:], v.Word)
	}
	m.Device.GetQueue().WriteBuffer(buf, 0, data)
	m.modelBufs[id] = buf
	m.logger.Infof("uploaded model %s: %d voxels", id, len(voxels))
}

// ensurePlaceBuffers (re)creates the place-model kernel's output and
// readback buffers if count needs more room than currently allocated,
// mirroring ensureStaging's grow-in-place pattern.
func (m *Manager) ensurePlaceBuffers(count int) error {
	needed := uint64(count * 16)
	if m.PlaceOutputBuf != nil && m.PlaceOutputBuf.GetSize() >= needed {
		return nil
	}
	if m.PlaceOutputBuf != nil {
		m.PlaceOutputBuf.Release()
	}
	if m.PlaceReadbackBuf != nil {
		m.PlaceReadbackBuf.Release()
	}
	var err error
	m.PlaceOutputBuf, err = m.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "PlaceModelOutput",
		Size:  needed,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("failed to create place-model output buffer: %w", err)
	}
	m.PlaceReadbackBuf, err = m.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "PlaceModelReadback",
		Size:  needed,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return fmt.Errorf("failed to create place-model readback buffer: %w", err)
	}
	return nil
}

// PlaceModel implements world.Backend's place-model kernel. Every other
// kernel here stays device-resident end to end, but this one's result has
// to come back to the host so World can feed it into the ordinary
// AllocLayers/AllocBricks/WriteVoxels pipeline, so this does a synchronous
// copy-then-map readback the same way ReadbackHiZ does for the hi-z buffer:
// CopyBufferToBuffer into a MapRead buffer, then block on Device.Poll until
// the map callback fires.
func (m *Manager) PlaceModel(id model.ID, offset, count int, zeroPass bool, placePos [3]uint32) []world.StagingEntry {
	modelBuf, ok := m.modelBufs[id]
	if !ok {
		m.logger.Warnf("place-model: model %s not uploaded, dropping placement", id)
		return nil
	}
	if count <= 0 {
		return nil
	}
	if err := m.ensurePlaceBuffers(count); err != nil {
		panic(err)
	}

	params := make([]byte, 28)
	binary.LittleEndian.PutUint32(params[0:], uint32(offset))
	binary.LittleEndian.PutUint32(params[4:], uint32(count))
	binary.LittleEndian.PutUint32(params[8:], model.WorldOffset)
	if zeroPass {
		binary.LittleEndian.PutUint32(params[12:], 1)
	}
	binary.LittleEndian.PutUint32(params[16:], placePos[0])
	binary.LittleEndian.PutUint32(params[20:], placePos[1])
	binary.LittleEndian.PutUint32(params[24:], placePos[2])
	m.Device.GetQueue().WriteBuffer(m.ParamsBuf, 0, params)

	bg0, err := m.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: m.placeModelPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: modelBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: m.ParamsBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: m.PlaceOutputBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		panic(fmt.Errorf("failed to create place-model bind group 0: %w", err))
	}
	m.dispatch("place-model", m.placeModelPipeline, bg0, nil, uint32(count))

	size := uint64(count * 16)
	encoder, err := m.Device.CreateCommandEncoder(nil)
	if err != nil {
		panic(fmt.Errorf("failed to create place-model readback encoder: %w", err))
	}
	encoder.CopyBufferToBuffer(m.PlaceOutputBuf, 0, m.PlaceReadbackBuf, 0, size)
	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		panic(fmt.Errorf("failed to finish place-model readback command buffer: %w", err))
	}
	m.Device.GetQueue().Submit(cmdBuf)

	mapped := false
	m.PlaceReadbackBuf.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			m.logger.Warnf("place-model: readback map failed: %d", status)
		}
		mapped = true
	})
	for !mapped {
		m.Device.Poll(true, nil)
	}

	data := m.PlaceReadbackBuf.GetMappedRange(0, uint(size))
	out := make([]world.StagingEntry, count)
	for i := range out {
		off := i * 16
		x := binary.LittleEndian.Uint32(data[off:])
		y := binary.LittleEndian.Uint32(data[off+4:])
		z := binary.LittleEndian.Uint32(data[off+8:])
		word := binary.LittleEndian.Uint32(data[off+12:])
		out[i] = world.StagingEntry{Pos: [3]uint32{x, y, z}, Voxel: voxel.FromRaw(word)}
	}
	m.PlaceReadbackBuf.Unmap()
	return out
}

// Fence submits an empty command buffer, forcing the queue to serialize the
// prior dispatch's writes before whatever is submitted next reads them. Real
// wgpu queues already order submissions FIFO, so this is a documentation
// device as much as a functional one: it gives the dispatch pipeline an
// explicit point to reason about, matching spec's "execution barrier".
func (m *Manager) Fence() {
	encoder, err := m.Device.CreateCommandEncoder(nil)
	if err != nil {
		panic(fmt.Errorf("failed to create fence command encoder: %w", err))
	}
	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		panic(fmt.Errorf("failed to finish fence command buffer: %w", err))
	}
	m.Device.GetQueue().Submit(cmdBuf)
}

// DeallocBricks implements world.Backend, scanning limit brick-pool slots.
func (m *Manager) DeallocBricks(limit int) {
	if limit <= 0 {
		return
	}
	params := make([]byte, 8)
	binary.LittleEndian.PutUint32(params[0:4], 0) // scan_start: left at 0; a production build would rotate this host-side, same as cpu.Backend's cursor
	binary.LittleEndian.PutUint32(params[4:8], uint32(limit))
	m.Device.GetQueue().WriteBuffer(m.ParamsBuf, 0, params)

	bg0, err := m.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: m.deallocBricksPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: m.ParamsBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		panic(fmt.Errorf("failed to create dealloc-bricks bind group 0: %w", err))
	}
	m.dispatch("dealloc-bricks", m.deallocBricksPipeline, bg0, m.deallocBricksBG1, uint32(limit))
}

// Counters implements world.Backend. See the cachedBricksFree/
// cachedLayer0sFree field comment: no device readback is done, so this
// reports the pool capacities set at construction rather than the device's
// current counter values.
func (m *Manager) Counters() world.Counters {
	m.countersMu.Lock()
	defer m.countersMu.Unlock()
	return world.Counters{
		BricksFree:  m.cachedBricksFree,
		Layer0sFree: m.cachedLayer0sFree,
	}
}

// Bind is a no-op: it binds none of the three world buffers. The buffers
// are exposed as the RootMapBuf, LayerNodeBuf and BrickPoolBuf fields; the
// renderer's bind-group wiring for slots 0/1/2 lives outside this module.
func (m *Manager) Bind() {}

// Unbind is the Bind counterpart; also a no-op placeholder.
func (m *Manager) Unbind() {}

// Release frees every device resource the manager created.
func (m *Manager) Release() {
	buffers := []*wgpu.Buffer{
		m.RootMapBuf, m.LayerNodeBuf, m.BrickPoolBuf,
		m.LayerFreeStackBuf, m.LayerFreeCounterBuf,
		m.BrickFreeStackBuf, m.BrickFreeCounterBuf,
		m.BrickOwnerLayerBuf, m.BrickOwnerLocalBuf,
		m.StagingBuf, m.ParamsBuf,
		m.PlaceOutputBuf, m.PlaceReadbackBuf,
	}
	for _, b := range buffers {
		if b != nil {
			b.Release()
		}
	}
	for _, b := range m.modelBufs {
		b.Release()
	}
}

package model

import "github.com/google/uuid"

// WorldOffset is the fixed per-axis bias baked into a GPU model's local
// voxel coordinates at construction time, keeping them representable as
// unsigned world coordinates once placed. It is recorded here at the public
// surface rather than buried in the placement path (spec §9's open
// question): a model built with FromVoxels or FromModel already carries the
// offset in GPUVoxel.Pos, and a placement subtracts it back out and adds the
// placement's own world position.
const WorldOffset = 1024

// ID identifies a registered GPU model.
type ID string

// NewID mints a fresh model ID.
func NewID() ID { return ID(uuid.NewString()) }

// GPUVoxel is one non-empty voxel in a GPUModel's device buffer: its
// offset-biased local position and packed word.
type GPUVoxel struct {
	Pos  [3]uint32
	Word uint32
}

// GPUModel is the device-resident form of a model: an immutable buffer of
// non-empty (pos, voxel_word) records, a voxel count, and a display name.
// Once registered it is never mutated; placement only ever reads it.
type GPUModel struct {
	ID     ID
	Name   string
	Voxels []GPUVoxel
}

// FromVoxels builds a GPUModel directly from a set of (local pos, voxel)
// pairs, applying WorldOffset to each axis so the stored positions are
// always positive.
func FromVoxels(name string, entries []VoxelEntry) *GPUModel {
	m := &GPUModel{ID: NewID(), Name: name}
	for _, e := range entries {
		if e.Voxel.IsEmpty() {
			continue
		}
		m.Voxels = append(m.Voxels, GPUVoxel{
			Pos:  [3]uint32{e.Pos[0] + WorldOffset, e.Pos[1] + WorldOffset, e.Pos[2] + WorldOffset},
			Word: e.Voxel.Raw(),
		})
	}
	return m
}

// FromModel builds a GPUModel from a decoded Container, applying the same
// WorldOffset bias to each voxel's local position.
func FromModel(name string, c *Container) *GPUModel {
	entries := make([]VoxelEntry, 0, len(c.Bricks)*int(c.BrickSize)*int(c.BrickSize)*int(c.BrickSize))
	for pos, v := range c.Voxels() {
		entries = append(entries, VoxelEntry{Pos: pos, Voxel: v})
	}
	return FromVoxels(name, entries)
}

// VoxelCount reports the number of non-empty voxels in the model.
func (m *GPUModel) VoxelCount() int { return len(m.Voxels) }

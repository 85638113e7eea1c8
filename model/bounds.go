package model

import "github.com/go-gl/mathgl/mgl32"

// Bounds is an axis-aligned box in local model space (before WorldOffset is
// applied), expressed the way the teacher's transform code carries
// positions: mgl32.Vec3.
type Bounds struct {
	Min, Max mgl32.Vec3
}

// Size returns Max - Min.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Bounds computes the model's local-space bounding box by scanning its
// voxel positions and undoing WorldOffset. An empty model reports a
// zero-sized box at the origin.
func (m *GPUModel) Bounds() Bounds {
	if len(m.Voxels) == 0 {
		return Bounds{}
	}
	min := mgl32.Vec3{
		float32(m.Voxels[0].Pos[0] - WorldOffset),
		float32(m.Voxels[0].Pos[1] - WorldOffset),
		float32(m.Voxels[0].Pos[2] - WorldOffset),
	}
	max := min
	for _, v := range m.Voxels[1:] {
		p := mgl32.Vec3{
			float32(v.Pos[0] - WorldOffset),
			float32(v.Pos[1] - WorldOffset),
			float32(v.Pos[2] - WorldOffset),
		}
		for axis := 0; axis < 3; axis++ {
			if p[axis] < min[axis] {
				min[axis] = p[axis]
			}
			if p[axis] > max[axis] {
				max[axis] = p[axis]
			}
		}
	}
	// Each voxel occupies a unit cube; max corner is the far side of the
	// last cell, matching the teacher's Transform.Scale convention of
	// sizing by extent rather than by cell count minus one.
	return Bounds{Min: min, Max: max.Add(mgl32.Vec3{1, 1, 1})}
}

// WorldAnchor converts a placement position into the mgl32.Vec3 form the
// teacher's scene transforms expect, for callers that bridge a placement
// into a renderable Transform.Position.
func WorldAnchor(pos [3]uint32) mgl32.Vec3 {
	return mgl32.Vec3{float32(pos[0]), float32(pos[1]), float32(pos[2])}
}

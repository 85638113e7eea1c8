// Package kernels embeds the WGSL source for the five compute kernels the
// dispatch pipeline sequences, mirroring the teacher's shaders package
// go:embed pattern.
package kernels

import _ "embed"

//go:embed alloc_layers.wgsl
var AllocLayersWGSL string

//go:embed alloc_bricks.wgsl
var AllocBricksWGSL string

//go:embed write_voxels.wgsl
var WriteVoxelsWGSL string

//go:embed dealloc_bricks.wgsl
var DeallocBricksWGSL string

//go:embed place_model.wgsl
var PlaceModelWGSL string

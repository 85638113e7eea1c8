// Package voxel implements the 32-bit packed voxel record shared by the
// brickmap, the GPU staging buffer, and the model container format.
package voxel

// Voxel is a packed 32-bit record:
//
//	bits  0–15: RGB565 color (5/6/5)
//	bits 16–19: roughness (4-bit)
//	bits 20–23: emissive (4-bit)
//	bit     24: metallic flag
//	bits 25–31: opacity (7-bit)
type Voxel uint32

const (
	redShift   = 0
	greenShift = 5
	blueShift  = 11

	roughnessShift = 16
	emissiveShift  = 20
	metallicShift  = 24
	opacityShift   = 24

	roughnessMask = 0xF
	emissiveMask  = 0xF
	metallicMask  = 0x1
	opacityMask   = 0xFE // bits 1-7 of the byte at opacityShift; bit 0 is the metallic flag
)

// New packs a voxel from 8-bit RGB, 8-bit roughness/emissive (quantised down
// to 4 bits each), a metallic flag, and an 8-bit opacity (quantised to its
// top 7 bits). The quantisation matches the accessors exactly: New then the
// accessors round-trips to the same quantised values, never the raw inputs.
func New(rgb [3]uint8, roughness uint8, emissive uint8, metallic bool, opacity uint8) Voxel {
	r := uint32(rgb[0]>>3) << redShift
	g := uint32(rgb[1]>>2) << greenShift
	b := uint32(rgb[2]>>3) << blueShift

	rough := uint32(roughness>>4) << roughnessShift
	emis := uint32(emissive>>4) << emissiveShift

	var m uint32
	if metallic {
		m = 1
	}
	opacityMetallic := (uint32(opacity) &^ 1) | m

	return Voxel(r | g | b | rough | emis | opacityMetallic<<opacityShift)
}

// Empty returns the all-zero voxel.
func Empty() Voxel { return Voxel(0) }

// FromRaw wraps an already-packed 32-bit word, as read off a GPU buffer or
// decoded from a model container.
func FromRaw(word uint32) Voxel { return Voxel(word) }

// Raw returns the packed 32-bit word.
func (v Voxel) Raw() uint32 { return uint32(v) }

// IsEmpty reports whether the raw word is entirely zero. Note that opacity
// alone being zero does not imply emptiness — roughness or emissive bits
// can still be set.
func (v Voxel) IsEmpty() bool { return v == 0 }

// RGB reconstructs the 8-bit color channels from their quantised storage.
func (v Voxel) RGB() [3]uint8 {
	word := uint32(v)
	r := uint8(word>>redShift) & 0x1F
	g := uint8(word>>greenShift) & 0x3F
	b := uint8(word>>blueShift) & 0x1F
	return [3]uint8{r << 3, g << 2, b << 3}
}

// Roughness reconstructs the quantised 4-bit roughness, left-shifted back
// into an 8-bit range.
func (v Voxel) Roughness() uint8 {
	return uint8(uint32(v)>>roughnessShift&roughnessMask) << 4
}

// Emissive reconstructs the quantised 4-bit emissive value.
func (v Voxel) Emissive() uint8 {
	return uint8(uint32(v)>>emissiveShift&emissiveMask) << 4
}

// Metallic reports the metallic flag.
func (v Voxel) Metallic() bool {
	return uint32(v)>>metallicShift&metallicMask != 0
}

// Opacity reconstructs the quantised 7-bit opacity, stored in the top 7
// bits of its byte (bit 0 of that byte is the metallic flag, always masked
// off here).
func (v Voxel) Opacity() uint8 {
	return uint8(uint32(v)>>opacityShift) & opacityMask
}

// Package model implements the on-disk binary container format for a rigid
// voxel model, and its device-resident counterpart (GPUModel) used for
// placement into the world.
package model

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/voxgrid/vxcore/voxel"
)

// ContainerVersionMajor/Minor are written into every encoded container.
const (
	ContainerVersionMajor uint16 = 0
	ContainerVersionMinor uint16 = 1
)

const headerSize = 16

// ErrUnexpectedEOF and ErrUnknownParse are the typed decode failures callers
// see, matching the two parse-error kinds the engine surfaces.
var (
	ErrUnexpectedEOF = fmt.Errorf("unexpected end of file")
	ErrUnknownParse  = fmt.Errorf("unknown parsing error")
)

// ContainerBrick is one brick record: its model-local brick coordinate (in
// brick units, not voxel units) plus a palette-index array of length
// brick_size^3, 0 meaning empty.
type ContainerBrick struct {
	X, Y, Z uint16
	Indices []uint32
}

// Container is the decoded form of the on-disk model format (spec §4.5).
type Container struct {
	VersionMajor uint16
	VersionMinor uint16
	BrickSize    uint16
	Palette      []voxel.Voxel // index 0 is always voxel.Empty()
	Bricks       []ContainerBrick
}

// Encode serializes the container to its binary wire format.
func (c *Container) Encode() []byte {
	var buf bytes.Buffer

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint16(header[0:2], c.VersionMajor)
	binary.LittleEndian.PutUint16(header[2:4], c.VersionMinor)
	binary.LittleEndian.PutUint16(header[4:6], c.BrickSize)
	binary.LittleEndian.PutUint64(header[6:14], uint64(len(c.Palette)))
	buf.Write(header)

	for _, v := range c.Palette {
		var word [4]byte
		binary.LittleEndian.PutUint32(word[:], v.Raw())
		buf.Write(word[:])
	}

	brickVoxels := int(c.BrickSize) * int(c.BrickSize) * int(c.BrickSize)
	for _, b := range c.Bricks {
		rec := make([]byte, 8+4*brickVoxels)
		binary.LittleEndian.PutUint16(rec[0:2], b.X)
		binary.LittleEndian.PutUint16(rec[2:4], b.Y)
		binary.LittleEndian.PutUint16(rec[4:6], b.Z)
		for i, idx := range b.Indices {
			binary.LittleEndian.PutUint32(rec[8+4*i:], idx)
		}
		buf.Write(rec)
	}

	return buf.Bytes()
}

// Decode parses the binary wire format into a Container.
func Decode(data []byte) (*Container, error) {
	r := bytes.NewReader(data)

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: %v", ErrUnknownParse, err)
	}

	c := &Container{
		VersionMajor: binary.LittleEndian.Uint16(header[0:2]),
		VersionMinor: binary.LittleEndian.Uint16(header[2:4]),
		BrickSize:    binary.LittleEndian.Uint16(header[4:6]),
	}
	voxelCount := binary.LittleEndian.Uint64(header[6:14])

	c.Palette = make([]voxel.Voxel, voxelCount)
	wordBuf := make([]byte, 4)
	for i := uint64(0); i < voxelCount; i++ {
		if _, err := io.ReadFull(r, wordBuf); err != nil {
			if err == io.ErrUnexpectedEOF || err == io.EOF {
				return nil, ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("%w: %v", ErrUnknownParse, err)
		}
		c.Palette[i] = voxel.FromRaw(binary.LittleEndian.Uint32(wordBuf))
	}

	brickVoxels := int(c.BrickSize) * int(c.BrickSize) * int(c.BrickSize)
	recSize := 8 + 4*brickVoxels
	rec := make([]byte, recSize)
	for {
		_, err := io.ReadFull(r, rec)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return nil, ErrUnexpectedEOF
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnknownParse, err)
		}

		b := ContainerBrick{
			X:       binary.LittleEndian.Uint16(rec[0:2]),
			Y:       binary.LittleEndian.Uint16(rec[2:4]),
			Z:       binary.LittleEndian.Uint16(rec[4:6]),
			Indices: make([]uint32, brickVoxels),
		}
		for i := range b.Indices {
			b.Indices[i] = binary.LittleEndian.Uint32(rec[8+4*i:])
		}
		c.Bricks = append(c.Bricks, b)
	}

	return c, nil
}

// Voxels decodes the container's logical (pos, voxel) set, in brick-local
// voxel units relative to the container's own origin.
func (c *Container) Voxels() map[[3]uint32]voxel.Voxel {
	out := make(map[[3]uint32]voxel.Voxel)
	bs := uint32(c.BrickSize)
	for _, b := range c.Bricks {
		for i, idx := range b.Indices {
			if idx == 0 {
				continue
			}
			lx := uint32(i) % bs
			ly := (uint32(i) / bs) % bs
			lz := uint32(i) / (bs * bs)
			pos := [3]uint32{
				uint32(b.X)*bs + lx,
				uint32(b.Y)*bs + ly,
				uint32(b.Z)*bs + lz,
			}
			out[pos] = c.Palette[idx]
		}
	}
	return out
}

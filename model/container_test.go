package model

import (
	"bytes"
	"testing"

	"github.com/voxgrid/vxcore/voxel"
)

func TestEmptyContainerHeaderBytes(t *testing.T) {
	c := Build(8, nil)
	got := c.Encode()[:16]
	want := []byte{0x00, 0x00, 0x01, 0x00, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("header = % x, want % x", got, want)
	}
}

func TestContainerRoundTrip(t *testing.T) {
	entries := []VoxelEntry{
		{Pos: [3]uint32{1, 2, 3}, Voxel: voxel.New([3]uint8{255, 0, 0}, 0, 0, false, 255)},
		{Pos: [3]uint32{9, 1, 1}, Voxel: voxel.New([3]uint8{0, 255, 0}, 0, 0, false, 128)},
		{Pos: [3]uint32{1, 2, 3}, Voxel: voxel.New([3]uint8{255, 0, 0}, 0, 0, false, 255)}, // same position and word as the first entry; dropped below
	}
	// de-duplicate positions as the spec requires unique positions per set
	entries = entries[:2]

	c := Build(8, entries)
	decoded, err := Decode(c.Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	got := decoded.Voxels()
	if len(got) != len(entries) {
		t.Fatalf("decoded %d voxels, want %d", len(got), len(entries))
	}
	for _, e := range entries {
		v, ok := got[e.Pos]
		if !ok {
			t.Fatalf("missing position %v after round-trip", e.Pos)
		}
		if v != e.Voxel {
			t.Errorf("pos %v: got %08x, want %08x", e.Pos, v.Raw(), e.Voxel.Raw())
		}
	}
}

func TestDecodeTruncatedHeaderIsUnexpectedEOF(t *testing.T) {
	_, err := Decode([]byte{0, 0, 1, 0})
	if err != ErrUnexpectedEOF {
		t.Fatalf("err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestDecodeTruncatedPaletteIsUnexpectedEOF(t *testing.T) {
	c := Build(8, []VoxelEntry{{Pos: [3]uint32{0, 0, 0}, Voxel: voxel.New([3]uint8{1, 1, 1}, 0, 0, false, 255)}})
	data := c.Encode()
	// Header (16 bytes) plus 2 of the palette's 4 bytes: truncated mid-palette.
	_, err := Decode(data[:16+2])
	if err != ErrUnexpectedEOF {
		t.Fatalf("err = %v, want ErrUnexpectedEOF", err)
	}
}

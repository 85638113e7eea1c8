package voxel

import "testing"

func TestEmptyIsZero(t *testing.T) {
	if !Empty().IsEmpty() {
		t.Error("Empty() should be empty")
	}
	if Empty().Raw() != 0 {
		t.Error("Empty() should be the zero word")
	}
}

func TestOpacityZeroDoesNotImplyEmpty(t *testing.T) {
	v := New([3]uint8{0, 0, 0}, 0x80, 0x80, false, 0)
	if v.IsEmpty() {
		t.Error("a voxel with non-zero roughness/emissive and opacity=0 must not be empty")
	}
}

func TestRoundTripQuantisation(t *testing.T) {
	cases := []struct {
		rgb                 [3]uint8
		roughness, emissive uint8
		metallic            bool
		opacity             uint8
	}{
		{[3]uint8{255, 255, 255}, 255, 255, true, 255},
		{[3]uint8{0, 0, 0}, 0, 0, false, 0},
		{[3]uint8{255, 0, 128}, 0x4F, 0xA0, true, 0x81},
		{[3]uint8{8, 4, 8}, 0x10, 0x20, false, 0x02},
	}

	for _, c := range cases {
		v := New(c.rgb, c.roughness, c.emissive, c.metallic, c.opacity)

		wantR := (c.rgb[0] >> 3) << 3
		wantG := (c.rgb[1] >> 2) << 2
		wantB := (c.rgb[2] >> 3) << 3
		if rgb := v.RGB(); rgb != [3]uint8{wantR, wantG, wantB} {
			t.Errorf("RGB() = %v, want %v", rgb, [3]uint8{wantR, wantG, wantB})
		}

		wantRough := (c.roughness >> 4) << 4
		if got := v.Roughness(); got != wantRough {
			t.Errorf("Roughness() = %d, want %d", got, wantRough)
		}

		wantEmis := (c.emissive >> 4) << 4
		if got := v.Emissive(); got != wantEmis {
			t.Errorf("Emissive() = %d, want %d", got, wantEmis)
		}

		if got := v.Metallic(); got != c.metallic {
			t.Errorf("Metallic() = %v, want %v", got, c.metallic)
		}

		wantOpacity := c.opacity &^ 1
		if got := v.Opacity(); got != wantOpacity {
			t.Errorf("Opacity() = %d, want %d", got, wantOpacity)
		}

		// Re-encoding the already-quantised accessor outputs must be a fixed point.
		v2 := New(v.RGB(), v.Roughness(), v.Emissive(), v.Metallic(), v.Opacity())
		if v2 != v {
			t.Errorf("re-encoding quantised values changed the voxel: %#x != %#x", uint32(v2), uint32(v))
		}
	}
}

func TestMetallicDoesNotLeakIntoOpacity(t *testing.T) {
	withMetallic := New([3]uint8{1, 1, 1}, 0, 0, true, 0xFE)
	withoutMetallic := New([3]uint8{1, 1, 1}, 0, 0, false, 0xFE)
	if withMetallic.Opacity() != withoutMetallic.Opacity() {
		t.Error("the metallic flag must not change the reconstructed opacity")
	}
	if !withMetallic.Metallic() || withoutMetallic.Metallic() {
		t.Error("metallic flag accessor mismatch")
	}
}

func TestFromRawRaw(t *testing.T) {
	v := FromRaw(0x01FE01FF)
	if v.Raw() != 0x01FE01FF {
		t.Errorf("Raw() = %#x, want %#x", v.Raw(), 0x01FE01FF)
	}
}

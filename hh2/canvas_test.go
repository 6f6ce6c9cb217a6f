package hh2

import "testing"

func TestPackRGB565(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    RGB565
	}{
		{255, 0, 0, 0xF800},
		{0, 255, 0, 0x07E0},
		{0, 0, 255, 0x001F},
		{255, 255, 255, 0xFFFF},
	}

	for _, tt := range tests {
		if got := PackRGB565(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("PackRGB565(%d,%d,%d) = %#04x, want %#04x", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestBlendExact(t *testing.T) {
	got := blendRGB565(0x07E0, 0xF800, 16)
	want := RGB565(0x7FE0)
	if got != want {
		t.Errorf("blend(0x07E0, 0xF800, 16) = %#04x, want %#04x", got, want)
	}
}

// TestBlendMonotonic checks that as inv_alpha increases from 1 to 31, the
// blended result moves monotonically toward dst, per extracted lane.
func TestBlendMonotonic(t *testing.T) {
	src := RGB565(0x07E0)
	dst := RGB565(0xF800)

	prevG := -1
	prevRB := -1
	for invAlpha := uint8(1); invAlpha <= 31; invAlpha++ {
		out := blendRGB565(src, dst, invAlpha)
		g := int(out & 0x07e0)
		rb := int(out & 0xf81f)

		if prevG >= 0 && g < prevG {
			t.Errorf("green lane not monotonic at inv_alpha=%d: %d < %d", invAlpha, g, prevG)
		}
		if prevRB >= 0 && rb < prevRB {
			t.Errorf("rb lane not monotonic at inv_alpha=%d: %d < %d", invAlpha, rb, prevRB)
		}
		prevG, prevRB = g, rb
	}
}

func TestCanvasPitch(t *testing.T) {
	tests := []struct {
		width     int
		wantPitch int
	}{
		{0, 0},
		{1, 4},
		{3, 4},
		{4, 4},
		{5, 8},
		{256, 256},
	}

	for _, tt := range tests {
		c := NewCanvas(tt.width, 1)
		if c.Pitch() != tt.wantPitch {
			t.Errorf("NewCanvas(%d, 1).Pitch() = %d, want %d", tt.width, c.Pitch(), tt.wantPitch)
		}
	}
}

func TestCanvasClearAndAt(t *testing.T) {
	c := NewCanvas(5, 3)
	c.Clear(RGB565(0x1234))

	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			if got := c.At(x, y); got != 0x1234 {
				t.Fatalf("At(%d,%d) = %#04x, want 0x1234", x, y, got)
			}
		}
	}

	c.Set(2, 1, 0xABCD)
	if got := c.At(2, 1); got != 0xABCD {
		t.Errorf("Set/At round trip failed: got %#04x", got)
	}
}

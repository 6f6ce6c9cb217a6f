package hh2

import "testing"

// solidSource returns a PixelSource of width x height, every pixel the same
// color and alpha.
func solidSource(width, height int, r, g, b, a uint8) *PixelSource {
	ps := NewPixelSource(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			ps.Set(x, y, RGBA8888(r, g, b, a))
		}
	}
	return ps
}

func TestRealAlphaCoarsening(t *testing.T) {
	tests := []struct {
		a    uint8
		want uint8
	}{
		{0, 0},
		{1, 0},
		{3, 0},
		{4, 1},
		{251, 31},
		{252, 32},
		{255, 32},
	}
	for _, tt := range tests {
		if got := realAlpha(tt.a); got != tt.want {
			t.Errorf("realAlpha(%d) = %d, want %d", tt.a, got, tt.want)
		}
	}
}

// TestRowInvariants checks that every row's run lengths sum to the image
// width, and that ChangedPixels equals the sum of every non-SKIP run's
// length.
func TestRowInvariants(t *testing.T) {
	width, height := 37, 5
	source := NewPixelSource(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Stripe alpha so runs of every class (skip/compose/blit)
			// appear in the same row.
			switch x % 3 {
			case 0:
				source.Set(x, y, RGBA8888(10, 20, 30, 0))
			case 1:
				source.Set(x, y, RGBA8888(10, 20, 30, 128))
			case 2:
				source.Set(x, y, RGBA8888(10, 20, 30, 255))
			}
		}
	}

	img, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	wantPixelsUsed := 0
	for y := 0; y < height; y++ {
		sum := 0
		nonSkip := 0
		words := img.rows[y]
		for len(words) > 0 {
			op := rleOpOf(words[0])
			length := int(rleLength(words[0]))
			sum += length
			words = words[1:]
			if op != rleSkip {
				nonSkip += length
				words = words[length:]
			}
		}
		if sum != width {
			t.Errorf("row %d: run lengths sum to %d, want %d", y, sum, width)
		}
		wantPixelsUsed += nonSkip
	}

	if img.ChangedPixels() != wantPixelsUsed {
		t.Errorf("ChangedPixels() = %d, want %d", img.ChangedPixels(), wantPixelsUsed)
	}
}

func TestCompileFullyTransparentRowIsOneSkip(t *testing.T) {
	source := solidSource(10, 1, 1, 2, 3, 0)
	img, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(img.rows[0]) != 1 {
		t.Fatalf("fully transparent row should compile to one SKIP word, got %d words", len(img.rows[0]))
	}
	if rleOpOf(img.rows[0][0]) != rleSkip {
		t.Fatalf("expected SKIP op")
	}
	if img.ChangedPixels() != 0 {
		t.Errorf("ChangedPixels() = %d, want 0", img.ChangedPixels())
	}
}

func TestCompileOpaqueRowIsOneBlit(t *testing.T) {
	source := solidSource(10, 1, 255, 0, 0, 255)
	img, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if rleOpOf(img.rows[0][0]) != rleBlit {
		t.Fatalf("expected BLIT op")
	}
	if img.ChangedPixels() != 10 {
		t.Errorf("ChangedPixels() = %d, want 10", img.ChangedPixels())
	}
}

// TestBlitUnblitRoundTrip draws an opaque sprite onto a cleared canvas,
// then restores it, and checks the canvas matches bit for bit.
func TestBlitUnblitRoundTrip(t *testing.T) {
	canvas := NewCanvas(8, 1)
	canvas.Clear(0x0000)

	source := solidSource(4, 1, 255, 0, 0, 255)
	img, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	bg := make([]RGB565, img.ChangedPixels())
	Blit(img, canvas, 2, 0, bg)

	want := []RGB565{0x0000, 0x0000, 0xF800, 0xF800, 0xF800, 0xF800, 0x0000, 0x0000}
	for x, w := range want {
		if got := canvas.At(x, 0); got != w {
			t.Errorf("after Blit, At(%d,0) = %#04x, want %#04x", x, got, w)
		}
	}

	Unblit(img, canvas, 2, 0, bg)
	for x := 0; x < 8; x++ {
		if got := canvas.At(x, 0); got != 0x0000 {
			t.Errorf("after Unblit, At(%d,0) = %#04x, want 0x0000", x, got)
		}
	}
}

// TestClipping places a 4x4 image at (-2,-2) on a 2x2 canvas, which should
// clip to the image's bottom-right 2x2 quadrant, and round trip exactly.
func TestClipping(t *testing.T) {
	canvas := NewCanvas(2, 2)
	canvas.Clear(0x1234)

	source := NewPixelSource(4, 4)
	colors := [4][4]uint8{}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			colors[y][x] = uint8(y*4 + x)
			source.Set(x, y, RGBA8888(colors[y][x], 0, 0, 255))
		}
	}

	img, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	newX0, newY0, w, h, ok := clip(img, canvas, -2, -2)
	if !ok || newX0 != 0 || newY0 != 0 || w != 2 || h != 2 {
		t.Fatalf("clip() = (%d,%d,%d,%d,%v), want (0,0,2,2,true)", newX0, newY0, w, h, ok)
	}

	bg := make([]RGB565, img.ChangedPixels())
	Blit(img, canvas, -2, -2, bg)

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			want := PackRGB565(colors[y+2][x+2], 0, 0)
			if got := canvas.At(x, y); got != want {
				t.Errorf("At(%d,%d) = %#04x, want %#04x", x, y, got, want)
			}
		}
	}

	Unblit(img, canvas, -2, -2, bg)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := canvas.At(x, y); got != 0x1234 {
				t.Errorf("after Unblit, At(%d,%d) = %#04x, want 0x1234", x, y, got)
			}
		}
	}
}

func TestClipFullyOffCanvasIsNoop(t *testing.T) {
	canvas := NewCanvas(4, 4)
	canvas.Clear(0x5555)

	source := solidSource(2, 2, 255, 255, 255, 255)
	img, _ := Compile(source)

	bg := make([]RGB565, img.ChangedPixels())
	got := Blit(img, canvas, 100, 100, bg)
	if len(got) != len(bg) {
		t.Errorf("Blit off-canvas should not consume bg, got len %d want %d", len(got), len(bg))
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if canvas.At(x, y) != 0x5555 {
				t.Fatalf("off-canvas blit touched the canvas at (%d,%d)", x, y)
			}
		}
	}
}

// TestClipExactlyAtLeftEdgeIsNoop covers the case where the image's right
// edge lands exactly on the canvas's left edge (zero overlap): it must be
// rejected as disjoint before any row's RLE cursor is touched, not treated
// as a zero-width intersection.
func TestClipExactlyAtLeftEdgeIsNoop(t *testing.T) {
	canvas := NewCanvas(8, 1)
	canvas.Clear(0x5555)

	source := solidSource(4, 1, 255, 0, 0, 255)
	img, _ := Compile(source)

	bg := make([]RGB565, img.ChangedPixels())
	got := Blit(img, canvas, -4, 0, bg)
	if len(got) != len(bg) {
		t.Errorf("Blit at exact left edge should not consume bg, got len %d want %d", len(got), len(bg))
	}
	for x := 0; x < 8; x++ {
		if canvas.At(x, 0) != 0x5555 {
			t.Fatalf("edge-touching blit touched the canvas at (%d,0)", x)
		}
	}

	Unblit(img, canvas, -4, 0, bg)
	Stamp(img, canvas, -4, 0)
}

// TestClipExactlyAtTopEdgeIsNoop is TestClipExactlyAtLeftEdgeIsNoop's
// vertical counterpart.
func TestClipExactlyAtTopEdgeIsNoop(t *testing.T) {
	canvas := NewCanvas(1, 8)
	canvas.Clear(0x5555)

	source := solidSource(1, 4, 255, 0, 0, 255)
	img, _ := Compile(source)

	bg := make([]RGB565, img.ChangedPixels())
	got := Blit(img, canvas, 0, -4, bg)
	if len(got) != len(bg) {
		t.Errorf("Blit at exact top edge should not consume bg, got len %d want %d", len(got), len(bg))
	}
	for y := 0; y < 8; y++ {
		if canvas.At(0, y) != 0x5555 {
			t.Fatalf("edge-touching blit touched the canvas at (0,%d)", y)
		}
	}

	Unblit(img, canvas, 0, -4, bg)
	Stamp(img, canvas, 0, -4)
}

func TestStampDoesNotSaveBackground(t *testing.T) {
	canvas := NewCanvas(4, 1)
	canvas.Clear(0x0000)

	source := solidSource(4, 1, 0, 255, 0, 255)
	img, _ := Compile(source)

	Stamp(img, canvas, 0, 0)
	for x := 0; x < 4; x++ {
		if canvas.At(x, 0) != 0x07E0 {
			t.Fatalf("Stamp did not draw at (%d,0)", x)
		}
	}
}

func TestComposeBlendsOverDestination(t *testing.T) {
	canvas := NewCanvas(1, 1)
	canvas.Clear(0xF800) // red

	// Half-alpha green: realAlpha(128) = (128+4)/8 = 16, inv_alpha = 16.
	source := solidSource(1, 1, 0, 255, 0, 128)
	img, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if rleOpOf(img.rows[0][0]) != rleCompose {
		t.Fatalf("expected COMPOSE op for alpha=128")
	}

	bg := make([]RGB565, img.ChangedPixels())
	Blit(img, canvas, 0, 0, bg)

	// premultiplied src: g' = 255*128/255 = 128, packed -> 0x0400;
	// just assert it changed and isn't pure src or pure dst (a real blend
	// happened), then verify unblit restores exactly.
	mixed := canvas.At(0, 0)
	if mixed == 0xF800 || mixed == 0x07E0 {
		t.Errorf("compose output %#04x looks unblended", mixed)
	}

	Unblit(img, canvas, 0, 0, bg)
	if canvas.At(0, 0) != 0xF800 {
		t.Errorf("Unblit after compose = %#04x, want 0xF800", canvas.At(0, 0))
	}
}

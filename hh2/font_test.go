package hh2

import (
	"strings"
	"testing"
)

const testBDF = `STARTFONT 2.1
FONT -test-
SIZE 8 75 75
FONTBOUNDINGBOX 8 8 0 0
STARTPROPERTIES 1
DEFAULT_CHAR 65
ENDPROPERTIES
CHARS 1
STARTCHAR A
ENCODING 65
SWIDTH 500 0
DWIDTH 8 0
BBX 8 8 0 0
BITMAP
FF
81
81
81
FF
81
81
81
ENDCHAR
ENDFONT
`

func newTestFont(t *testing.T) *Font {
	t.Helper()
	f, err := ReadFont(strings.NewReader(testBDF))
	if err != nil {
		t.Fatalf("ReadFont: %v", err)
	}
	return f
}

func TestReadFontParsesGlyph(t *testing.T) {
	f := newTestFont(t)

	g, ok := f.glyphs['A']
	if !ok {
		t.Fatalf("glyph 'A' (encoding 65) was not parsed")
	}
	if g.bbw != 8 || g.bbh != 8 {
		t.Fatalf("glyph bbox = %dx%d, want 8x8", g.bbw, g.bbh)
	}
	// First bitmap row is 0xFF: every bit set.
	for x := 0; x < 8; x++ {
		if !g.bit(x, 0) {
			t.Errorf("bit(%d,0) = false, want true (row 0xFF)", x)
		}
	}
	// Second row is 0x81: only the two end bits set.
	for x := 1; x < 7; x++ {
		if g.bit(x, 1) {
			t.Errorf("bit(%d,1) = true, want false (row 0x81)", x)
		}
	}
	if !g.bit(0, 1) || !g.bit(7, 1) {
		t.Errorf("row 0x81 should have its end bits set")
	}
}

func TestFontBoundsAndRender(t *testing.T) {
	f := newTestFont(t)

	x0, y0, w, h := f.Bounds("A")
	if w != 8 || h != 8 {
		t.Fatalf("Bounds(\"A\") = (%d,%d,%d,%d), want width=8 height=8", x0, y0, w, h)
	}

	ps := f.Render("A", RGBA8888(0, 0, 0, 255), RGBA8888(255, 255, 255, 255))
	if ps == nil {
		t.Fatal("Render returned nil for non-empty text")
	}
	if ps.Width() != 8 || ps.Height() != 8 {
		t.Fatalf("rendered size = %dx%d, want 8x8", ps.Width(), ps.Height())
	}
}

func TestFontRenderEmptyTextReturnsNil(t *testing.T) {
	f := &Font{glyphs: make(map[rune]*glyph)}
	if got := f.Render("", 0, 0xFF); got != nil {
		t.Errorf("Render(\"\") = %v, want nil", got)
	}
}

func TestGlyphFilterDrops(t *testing.T) {
	dropAll := func(encoding, nonStandard int) int { return -1 }
	f, err := ReadFontWithFilter(strings.NewReader(testBDF), dropAll)
	if err != nil {
		t.Fatalf("ReadFontWithFilter: %v", err)
	}
	if len(f.glyphs) != 0 {
		t.Errorf("filter returning -1 should drop every glyph, got %d", len(f.glyphs))
	}
}

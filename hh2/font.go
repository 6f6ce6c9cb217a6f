package hh2

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// glyph is one character's bitmap, parsed from a BDF STARTCHAR/ENDCHAR
// block: a bbw x bbh bitmap offset by (bbxoff, bbyoff) from the pen
// position, advancing the pen by dwx afterwards.
type glyph struct {
	bbw, bbh       int
	bbxoff, bbyoff int
	dwx, dwy       int
	bitmap         []byte // bbh rows, each (bbw+7)/8 bytes, MSB first
}

func (g *glyph) bit(x, y int) bool {
	rowBytes := (g.bbw + 7) / 8
	row := g.bitmap[y*rowBytes : (y+1)*rowBytes]
	return row[x/8]&(0x80>>uint(x%8)) != 0
}

// GlyphFilter decides which code point a glyph is stored under. encoding is
// the BDF ENCODING field's standard value, or -1 if the font declares none;
// nonStandardEncoding is the font-specific second value present in that
// case. Returning a negative value drops the glyph.
type GlyphFilter func(encoding, nonStandardEncoding int) int

// PassAllGlyphs keeps every glyph a font declares, falling back to its
// non-standard encoding when it has no standard one. This is the default a
// plain ReadFont uses.
func PassAllGlyphs(encoding, nonStandardEncoding int) int {
	if encoding != -1 {
		return encoding
	}
	return nonStandardEncoding
}

// Font is a parsed BDF bitmap font: a fixed bounding box and a sparse map
// of code point to glyph.
type Font struct {
	boundingBoxW, boundingBoxH int
	boundingBoxX, boundingBoxY int
	glyphs                     map[rune]*glyph
}

// ReadFont parses a BDF font from r, keeping every glyph it declares.
func ReadFont(r io.Reader) (*Font, error) {
	return ReadFontWithFilter(r, PassAllGlyphs)
}

// ReadFontWithFilter parses a BDF font from r, using filter to decide which
// code point (if any) each glyph is stored under.
func ReadFontWithFilter(r io.Reader, filter GlyphFilter) (*Font, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	font := &Font{glyphs: make(map[rune]*glyph)}

	for sc.Scan() {
		line := sc.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "FONTBOUNDINGBOX":
			if len(fields) < 5 {
				return nil, newDecodeError("bdf", errMalformedBDF("FONTBOUNDINGBOX"))
			}
			font.boundingBoxW = atoiOr0(fields[1])
			font.boundingBoxH = atoiOr0(fields[2])
			font.boundingBoxX = atoiOr0(fields[3])
			font.boundingBoxY = atoiOr0(fields[4])

		case "STARTCHAR":
			g, code, err := readGlyph(sc, filter)
			if err != nil {
				return nil, err
			}
			if code >= 0 {
				font.glyphs[rune(code)] = g
			}

		case "ENDFONT":
			if err := sc.Err(); err != nil {
				return nil, newDecodeError("bdf", err)
			}
			return font, nil
		}
	}

	if err := sc.Err(); err != nil {
		return nil, newDecodeError("bdf", err)
	}

	return font, nil
}

func readGlyph(sc *bufio.Scanner, filter GlyphFilter) (*glyph, int, error) {
	g := &glyph{}
	encoding := -1
	nonStandard := -1

	for sc.Scan() {
		line := sc.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "ENCODING":
			if len(fields) < 2 {
				return nil, 0, newDecodeError("bdf", errMalformedBDF("ENCODING"))
			}
			encoding = atoiOr0(fields[1])
			if len(fields) >= 3 {
				nonStandard = atoiOr0(fields[2])
			}

		case "DWIDTH":
			if len(fields) < 3 {
				return nil, 0, newDecodeError("bdf", errMalformedBDF("DWIDTH"))
			}
			g.dwx = atoiOr0(fields[1])
			g.dwy = atoiOr0(fields[2])

		case "BBX":
			if len(fields) < 5 {
				return nil, 0, newDecodeError("bdf", errMalformedBDF("BBX"))
			}
			g.bbw = atoiOr0(fields[1])
			g.bbh = atoiOr0(fields[2])
			g.bbxoff = atoiOr0(fields[3])
			g.bbyoff = atoiOr0(fields[4])

		case "BITMAP":
			rowBytes := (g.bbw + 7) / 8
			g.bitmap = make([]byte, rowBytes*g.bbh)

			for row := 0; row < g.bbh; row++ {
				if !sc.Scan() {
					return nil, 0, newDecodeError("bdf", errMalformedBDF("unexpected end of BITMAP"))
				}
				hexRow := strings.TrimSpace(sc.Text())
				copy(g.bitmap[row*rowBytes:(row+1)*rowBytes], decodeHexRow(hexRow))
			}

		case "ENDCHAR":
			code := filter(encoding, nonStandard)
			return g, code, nil
		}
	}

	return nil, 0, newDecodeError("bdf", errMalformedBDF("unterminated STARTCHAR"))
}

func decodeHexRow(s string) []byte {
	out := make([]byte, (len(s)+1)/2)
	for i := 0; i+1 < len(s)+1 && i/2 < len(out); i += 2 {
		end := i + 2
		if end > len(s) {
			end = len(s)
		}
		v, err := strconv.ParseUint(s[i:end], 16, 8)
		if err != nil {
			continue
		}
		if end-i == 1 {
			v <<= 4
		}
		out[i/2] = byte(v)
	}
	return out
}

func atoiOr0(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

type bdfError string

func errMalformedBDF(what string) error { return bdfError(what) }
func (e bdfError) Error() string        { return "malformed bdf font: " + string(e) }

// Bounds returns the pen origin (x0, y0) and pixel size (width, height)
// rendering text would occupy, without rendering it. Lines are split on
// '\n'; each advances the pen by the font's bounding box height.
func (f *Font) Bounds(text string) (x0, y0, width, height int) {
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		lineWidth := 0
		for _, r := range line {
			g, ok := f.glyphs[r]
			if !ok {
				continue
			}
			lineWidth += g.dwx
		}
		if lineWidth > width {
			width = lineWidth
		}
	}

	height = f.boundingBoxH * len(lines)
	return f.boundingBoxX, f.boundingBoxY, width, height
}

// Render draws text into a new PixelSource sized to Bounds(text), filled
// with bgColor and with each glyph's foreground pixels set to fgColor.
// Returns nil if text measures to zero size.
func (f *Font) Render(text string, bgColor, fgColor ARGB8888) *PixelSource {
	x0, y0, width, height := f.Bounds(text)
	if width == 0 || height == 0 {
		return nil
	}

	source := NewPixelSource(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			source.Set(x, y, bgColor)
		}
	}

	lines := strings.Split(text, "\n")
	for l, line := range lines {
		penX := 0
		baseY := l*f.boundingBoxH - y0

		for _, r := range line {
			g, ok := f.glyphs[r]
			if !ok {
				continue
			}

			originX := penX + g.bbxoff - x0
			originY := baseY + f.boundingBoxH - g.bbh - g.bbyoff

			for gy := 0; gy < g.bbh; gy++ {
				py := originY + gy
				if py < 0 || py >= height {
					continue
				}
				for gx := 0; gx < g.bbw; gx++ {
					if !g.bit(gx, gy) {
						continue
					}
					px := originX + gx
					if px < 0 || px >= width {
						continue
					}
					source.Set(px, py, fgColor)
				}
			}

			penX += g.dwx
		}
	}

	return source
}

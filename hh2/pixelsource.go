package hh2

import (
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
)

// ARGB8888 is one packed source pixel. On little-endian storage the byte
// layout is 0xAABBGGRR: byte 0 is R, byte 1 is G, byte 2 is B, byte 3 is A.
type ARGB8888 uint32

// RGBA8888 packs r, g, b, a into an ARGB8888 value.
func RGBA8888(r, g, b, a uint8) ARGB8888 {
	return ARGB8888(r) | ARGB8888(g)<<8 | ARGB8888(b)<<16 | ARGB8888(a)<<24
}

// R returns the red channel.
func (p ARGB8888) R() uint8 { return uint8(p) }

// G returns the green channel.
func (p ARGB8888) G() uint8 { return uint8(p >> 8) }

// B returns the blue channel.
func (p ARGB8888) B() uint8 { return uint8(p >> 16) }

// A returns the alpha channel.
func (p ARGB8888) A() uint8 { return uint8(p >> 24) }

// PixelSource is a rectangular buffer of ARGB8888 pixels, either owning its
// storage or viewing a sub-rectangle of a parent PixelSource. A child's
// lifetime must not exceed its parent's: it shares the same backing slice.
type PixelSource struct {
	width  int
	height int
	pitch  int // in pixels
	pixels []ARGB8888
	parent *PixelSource
}

// NewPixelSource allocates an owning width x height pixel source, cleared
// to fully transparent black.
func NewPixelSource(width, height int) *PixelSource {
	return &PixelSource{
		width:  width,
		height: height,
		pitch:  width,
		pixels: make([]ARGB8888, width*height),
	}
}

// SubPixelSource returns a view over the rectangle [x, x+w) x [y, y+h) of
// parent, sharing its pixel storage. Panics if the rectangle is not fully
// contained in parent's bounds.
func SubPixelSource(parent *PixelSource, x, y, w, h int) *PixelSource {
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > parent.width || y+h > parent.height {
		panic("hh2: sub pixel source rectangle out of bounds")
	}

	return &PixelSource{
		width:  w,
		height: h,
		pitch:  parent.pitch,
		pixels: parent.pixels[y*parent.pitch+x:],
		parent: parent,
	}
}

// Width returns the pixel source's width.
func (p *PixelSource) Width() int { return p.width }

// Height returns the pixel source's height.
func (p *PixelSource) Height() int { return p.height }

// Parent returns the pixel source this one is a view over, or nil.
func (p *PixelSource) Parent() *PixelSource { return p.parent }

// At returns the pixel at (x, y).
func (p *PixelSource) At(x, y int) ARGB8888 {
	return p.pixels[y*p.pitch+x]
}

// Set writes the pixel at (x, y).
func (p *PixelSource) Set(x, y int, c ARGB8888) {
	p.pixels[y*p.pitch+x] = c
}

// fromImage normalizes any decoded image.Image into an owning PixelSource
// holding straight (non-premultiplied) alpha: gray is expanded to RGB,
// paletted images are resolved through their palette (picking up
// tRNS-derived alpha), and any source missing an alpha channel defaults to
// fully opaque. image/draw does the color-model conversion.
func fromImage(img image.Image) *PixelSource {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)

	ps := NewPixelSource(w, h)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+4]
			ps.Set(x, y, RGBA8888(px[0], px[1], px[2], px[3]))
		}
	}

	return ps
}

// DecodePNG decodes an 8 or 16-bit PNG (palette/gray/RGB/RGBA) into a
// PixelSource using the standard library decoder as a black box.
func DecodePNG(r io.Reader) (*PixelSource, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, newDecodeError("png", err)
	}
	return fromImage(img), nil
}

// DecodeJPEG decodes a baseline JPEG into a PixelSource, filling alpha with
// 0xFF (JPEG carries no alpha channel).
func DecodeJPEG(r io.Reader) (*PixelSource, error) {
	img, err := jpeg.Decode(r)
	if err != nil {
		return nil, newDecodeError("jpeg", err)
	}
	return fromImage(img), nil
}

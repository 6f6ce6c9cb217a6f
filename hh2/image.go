package hh2

import "github.com/flga/hh2/hh2/hh2log"

// rleOp is the operation packed into the low 2 bits of an rle word.
type rleOp uint16

const (
	// rleCompose carries 6 bits of inverse alpha, 8 bits of length-1, then
	// length colors.
	rleCompose rleOp = 0
	// rleSkip carries 14 bits of length-1 and no colors.
	rleSkip rleOp = 1
	// rleBlit carries 14 bits of length-1, then length colors.
	rleBlit rleOp = 2
)

// rle packs one run-length op word: 2 bits op, 14 bits length-1 (compose
// only uses the low 8 of those), and for compose 6 bits of inverse alpha in
// the top bits.
func packRLE(op rleOp, length uint16, invAlpha uint8) uint16 {
	return uint16(op) | (length-1)<<2 | uint16(invAlpha)<<10
}

func rleOpOf(word uint16) rleOp {
	return rleOp(word & 3)
}

func rleLength(word uint16) uint16 {
	if rleOpOf(word) == rleCompose {
		return (word>>2)&0xff + 1
	}
	return (word >> 2) + 1
}

func rleInvAlpha(word uint16) uint8 {
	return uint8(word >> 10)
}

// realAlpha coarsens an 8-bit alpha channel down to the 6-bit (0-32) level
// the run-length encoder groups runs by. 0 means fully transparent (SKIP),
// 32 means fully opaque (BLIT), anything in between is a COMPOSE run.
func realAlpha(a uint8) uint8 {
	return uint8((uint16(a) + 4) / 8)
}

// Image is a pre-compiled, run-length-encoded sprite or background frame,
// ready to be blitted onto a Canvas. Once built it is immutable.
type Image struct {
	width      int
	height     int
	pixelsUsed int
	rows       [][]uint16
}

// Compile run-length-encodes source into an Image. The source's straight
// alpha is coarsened to 6 bits (0..32); runs of equal coarsened alpha become
// a single SKIP, BLIT, or COMPOSE op, matching the original encoder bit for
// bit.
func Compile(source *PixelSource) (*Image, error) {
	return CompileWithAllocator(source, nil)
}

// CompileWithAllocator is Compile with an explicit Allocator override. The
// allocator is consulted once per row for the row's RLE backing size (in
// bytes); a nil or undersized result is treated as out-of-memory, mirroring
// rl2_createImage's single rl2_alloc call failing.
func CompileWithAllocator(source *PixelSource, a Allocator) (*Image, error) {
	alloc := allocOrDefault(a)
	height := source.Height()
	width := source.Width()

	rows := make([][]uint16, height)
	totalPixelsUsed := 0

	for y := 0; y < height; y++ {
		wordsUsed, pixelsUsed := rleRowDryRun(source, y)

		if buf := alloc.Alloc(wordsUsed * 2); len(buf) < wordsUsed*2 {
			logger.Logf(hh2log.Warn, "IMG", "out of memory compiling row %d (%d words)", y, wordsUsed)
			return nil, ErrOutOfMemory
		}

		rows[y] = make([]uint16, wordsUsed)
		rleRow(rows[y], source, y)
		totalPixelsUsed += pixelsUsed
	}

	return &Image{
		width:      width,
		height:     height,
		pixelsUsed: totalPixelsUsed,
		rows:       rows,
	}, nil
}

func rleRowDryRun(source *PixelSource, y int) (wordsUsed, pixelsUsed int) {
	width := source.Width()

	for x := 0; x < width; {
		alpha := source.At(x, y).A()
		alphaLevel := realAlpha(alpha)

		xx := x + 1
		for ; xx < width; xx++ {
			if realAlpha(source.At(xx, y).A()) != alphaLevel {
				break
			}
		}

		length := xx - x

		switch {
		case alphaLevel == 0:
			wordsUsed += (length + 16383) / 16384
		case alphaLevel == 32:
			wordsUsed += (length + 16383) / 16384
			wordsUsed += length
			pixelsUsed += length
		default:
			wordsUsed += (length + 255) / 256
			wordsUsed += length
			pixelsUsed += length
		}

		x = xx
	}

	return wordsUsed, pixelsUsed
}

func rleRow(rle []uint16, source *PixelSource, y int) {
	width := source.Width()

	for x := 0; x < width; {
		pixel := source.At(x, y)
		alpha := pixel.A()
		alphaLevel := realAlpha(alpha)

		xx := x + 1
		for ; xx < width; xx++ {
			if realAlpha(source.At(xx, y).A()) != alphaLevel {
				break
			}
		}

		length := xx - x

		switch {
		case alphaLevel == 0:
			for length != 0 {
				count := length
				if count > 16384 {
					count = 16384
				}
				rle[0] = packRLE(rleSkip, uint16(count), 0)
				rle = rle[1:]
				length -= count
			}

		case alphaLevel == 32:
			for length != 0 {
				count := length
				if count > 16384 {
					count = 16384
				}
				rle[0] = packRLE(rleBlit, uint16(count), 0)
				rle = rle[1:]

				for i := 0; i < count; i++ {
					p := source.At(x+i, y)
					rle[i] = uint16(PackRGB565(p.R(), p.G(), p.B()))
				}
				rle = rle[count:]

				length -= count
			}

		default:
			invAlpha := uint8(32 - alphaLevel)

			for length != 0 {
				count := length
				if count > 256 {
					count = 256
				}
				rle[0] = packRLE(rleCompose, uint16(count), invAlpha)
				rle = rle[1:]

				for i := 0; i < count; i++ {
					p := source.At(x+i, y)
					r := uint8(uint16(p.R()) * uint16(alpha) / 255)
					g := uint8(uint16(p.G()) * uint16(alpha) / 255)
					b := uint8(uint16(p.B()) * uint16(alpha) / 255)
					rle[i] = uint16(PackRGB565(r, g, b))
				}
				rle = rle[count:]

				length -= count
			}
		}

		x = xx
	}
}

// Width returns the image width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *Image) Height() int { return img.height }

// ChangedPixels returns the number of canvas pixels one blit of this image
// overwrites (the SKIP runs never touch the canvas at all). Sprites size
// their background-save buffer from this.
func (img *Image) ChangedPixels() int { return img.pixelsUsed }

// clip intersects the image, placed at (x0, y0), with the canvas, returning
// the visible sub-rectangle's origin (clamped canvas-side) and size. ok is
// false if the image is entirely off-canvas.
func clip(img *Image, canvas *Canvas, x0, y0 int) (newX0, newY0, width, height int, ok bool) {
	imageWidth, imageHeight := img.width, img.height
	canvasWidth, canvasHeight := canvas.Width(), canvas.Height()

	if x0 < 0 {
		if -x0 >= imageWidth {
			return 0, 0, 0, 0, false
		}
	} else if x0 >= canvasWidth {
		return 0, 0, 0, 0, false
	}

	if y0 < 0 {
		if -y0 >= imageHeight {
			return 0, 0, 0, 0, false
		}
	} else if y0 >= canvasHeight {
		return 0, 0, 0, 0, false
	}

	width = imageWidth
	height = imageHeight
	newX0 = x0
	newY0 = y0

	if newX0 < 0 {
		width += newX0
		newX0 = 0
	}
	if newX0+width > canvasWidth {
		width = canvasWidth - newX0
	}

	if newY0 < 0 {
		height += newY0
		newY0 = 0
	}
	if newY0+height > canvasHeight {
		height = canvasHeight - newY0
	}

	return newX0, newY0, width, height, true
}

// rleCursor walks one row's rle words, tracking the current op/length/color
// pointer. It mirrors the inline cursor the original blitter keeps in
// registers.
type rleCursor struct {
	words    []uint16
	op       rleOp
	length   uint16
	invAlpha uint8
}

func newRLECursor(words []uint16) *rleCursor {
	c := &rleCursor{words: words}
	c.fetch()
	return c
}

// fetch loads the next op word. Past the row's last run there is no next
// word; the cursor is then left exhausted with a zero length.
func (c *rleCursor) fetch() {
	if len(c.words) == 0 {
		c.length = 0
		return
	}
	w := c.words[0]
	c.op = rleOpOf(w)
	c.length = rleLength(w)
	c.invAlpha = rleInvAlpha(w)
	c.words = c.words[1:]
}

// colors returns the n colors following the current op's header word and
// advances past them. Only valid for BLIT/COMPOSE ops.
func (c *rleCursor) colors(n int) []uint16 {
	colors := c.words[:n]
	c.words = c.words[n:]
	return colors
}

// Blit composes img onto canvas at (x0, y0), saving every canvas pixel it
// overwrites into bg (which must be at least img.ChangedPixels() long) so a
// later Unblit can restore them. Returns the bg slice advanced past what it
// wrote, the way the original chains successive sprites' saves into one
// shared buffer.
func Blit(img *Image, canvas *Canvas, x0, y0 int, bg []RGB565) []RGB565 {
	newX0, newY0, width, height, ok := clip(img, canvas, x0, y0)
	if !ok {
		return bg
	}

	for y := 0; y < height; y++ {
		row := canvas.row(newY0 + y)
		cur := newRLECursor(img.rows[newY0-y0+y])

		skip := newX0 - x0
		for skip != 0 {
			count := int(cur.length)
			if count > skip {
				count = skip
			}
			if cur.op != rleSkip {
				cur.colors(count)
			}
			cur.length -= uint16(count)
			skip -= count
			if cur.length == 0 {
				cur.fetch()
			}
		}

		pixel := row[newX0:]
		remaining := width
		for remaining != 0 {
			count := int(cur.length)
			if count > remaining {
				count = remaining
			}

			switch cur.op {
			case rleBlit:
				copy(bg, pixel[:count])
				bg = bg[count:]

				colors := cur.colors(count)
				for i := 0; i < count; i++ {
					pixel[i] = RGB565(colors[i])
				}

			case rleCompose:
				copy(bg, pixel[:count])
				bg = bg[count:]

				colors := cur.colors(count)
				for i := 0; i < count; i++ {
					pixel[i] = blendRGB565(RGB565(colors[i]), pixel[i], cur.invAlpha)
				}
			}

			cur.length -= uint16(count)
			remaining -= count
			pixel = pixel[count:]

			if cur.length == 0 {
				cur.fetch()
			}
		}
	}

	return bg
}

// Unblit restores the canvas pixels a prior Blit of img at (x0, y0) saved
// into bg. bg must be the exact slice that Blit filled (same image, same
// position).
func Unblit(img *Image, canvas *Canvas, x0, y0 int, bg []RGB565) {
	newX0, newY0, width, height, ok := clip(img, canvas, x0, y0)
	if !ok {
		return
	}

	for y := 0; y < height; y++ {
		row := canvas.row(newY0 + y)
		cur := newRLECursor(img.rows[newY0-y0+y])

		skip := newX0 - x0
		for skip != 0 {
			count := int(cur.length)
			if count > skip {
				count = skip
			}
			if cur.op != rleSkip {
				cur.colors(count)
			}
			cur.length -= uint16(count)
			skip -= count
			if cur.length == 0 {
				cur.fetch()
			}
		}

		pixel := row[newX0:]
		remaining := width
		for remaining != 0 {
			count := int(cur.length)
			if count > remaining {
				count = remaining
			}

			if cur.op != rleSkip {
				copy(pixel[:count], bg[:count])
				bg = bg[count:]
				cur.colors(count)
			}

			cur.length -= uint16(count)
			remaining -= count
			pixel = pixel[count:]

			if cur.length == 0 {
				cur.fetch()
			}
		}
	}
}

// Stamp composes img onto canvas at (x0, y0) like Blit, but without saving
// the pixels it overwrites. Used for backgrounds and anything else that
// never needs to be un-drawn.
func Stamp(img *Image, canvas *Canvas, x0, y0 int) {
	newX0, newY0, width, height, ok := clip(img, canvas, x0, y0)
	if !ok {
		return
	}

	for y := 0; y < height; y++ {
		row := canvas.row(newY0 + y)
		cur := newRLECursor(img.rows[newY0-y0+y])

		skip := newX0 - x0
		for skip != 0 {
			count := int(cur.length)
			if count > skip {
				count = skip
			}
			if cur.op != rleSkip {
				cur.colors(count)
			}
			cur.length -= uint16(count)
			skip -= count
			if cur.length == 0 {
				cur.fetch()
			}
		}

		pixel := row[newX0:]
		remaining := width
		for remaining != 0 {
			count := int(cur.length)
			if count > remaining {
				count = remaining
			}

			switch cur.op {
			case rleBlit:
				colors := cur.colors(count)
				for i := 0; i < count; i++ {
					pixel[i] = RGB565(colors[i])
				}

			case rleCompose:
				colors := cur.colors(count)
				for i := 0; i < count; i++ {
					pixel[i] = blendRGB565(RGB565(colors[i]), pixel[i], cur.invAlpha)
				}
			}

			cur.length -= uint16(count)
			remaining -= count
			pixel = pixel[count:]

			if cur.length == 0 {
				cur.fetch()
			}
		}
	}
}

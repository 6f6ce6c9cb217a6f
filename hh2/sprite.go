package hh2

import (
	"sort"
	"time"

	"github.com/flga/hh2/hh2/hh2log"
	"github.com/flga/hh2/hh2/internal/meter"
)

const (
	spriteInvisible uint16 = 0x4000
	spriteDestroy   uint16 = 0x8000
	spriteFlags     uint16 = spriteInvisible | spriteDestroy
	spriteLayer     uint16 = ^spriteFlags
)

// minSprites is the manager's initial backing-array capacity, doubled every
// time it fills, matching the original's geometric growth.
const minSprites = 64

// Sprite is one entry in a SpriteManager: a position, a layer, a visibility
// flag, and the compiled Image it draws. A Sprite with a nil image is
// skipped by Blit/Unblit, same as the original engine's "no image assigned
// yet" state.
type Sprite struct {
	image *Image
	bg    []RGB565

	x, y int

	flags uint16
}

// SetPosition moves the sprite's top-left corner to (x, y). Takes effect on
// the next Blit.
func (s *Sprite) SetPosition(x, y int) {
	s.x, s.y = x, y
}

// Position returns the sprite's current top-left corner.
func (s *Sprite) Position() (x, y int) {
	return s.x, s.y
}

// SetLayer sets the sprite's draw order. Lower layers blit first (and so
// end up underneath higher layers); ties break by manager insertion order.
// Only the low 14 bits are significant.
func (s *Sprite) SetLayer(layer uint16) {
	s.flags = (s.flags & spriteFlags) | (layer & spriteLayer)
}

// Layer returns the sprite's current layer.
func (s *Sprite) Layer() uint16 {
	return s.flags & spriteLayer
}

// SetVisible shows or hides the sprite without destroying it.
func (s *Sprite) SetVisible(visible bool) {
	if visible {
		s.flags &^= spriteInvisible
	} else {
		s.flags |= spriteInvisible
	}
}

// Visible reports whether the sprite is currently shown.
func (s *Sprite) Visible() bool {
	return s.flags&spriteInvisible == 0
}

// SetImage assigns the image the sprite draws. Passing nil blanks the
// sprite (it is skipped by Blit until given a new image). Re-sizes the
// background-save buffer to the new image's ChangedPixels.
func (s *Sprite) SetImage(image *Image) error {
	return s.SetImageWithAllocator(image, nil)
}

// SetImageWithAllocator is SetImage with an explicit Allocator override for
// the background-save buffer.
func (s *Sprite) SetImageWithAllocator(image *Image, a Allocator) error {
	if image == s.image {
		return nil
	}

	var bg []RGB565
	if image != nil {
		alloc := allocOrDefault(a)
		count := image.ChangedPixels()

		if buf := alloc.Alloc(count * 2); len(buf) < count*2 {
			logger.Logf(hh2log.Warn, "SPT", "out of memory resizing background buffer to %d pixels", count)
			return ErrOutOfMemory
		}

		bg = make([]RGB565, count)
	}

	s.image = image
	s.bg = bg
	return nil
}

// Image returns the sprite's currently assigned image, or nil.
func (s *Sprite) Image() *Image {
	return s.image
}

func (s *Sprite) sortKey() uint16 {
	f := s.flags
	if s.image == nil {
		f |= spriteInvisible
	}
	return f
}

// SpriteManager owns a set of sprites and blits them onto a Canvas in layer
// order every frame, growing its backing storage geometrically the way the
// original engine's global sprite table does.
type SpriteManager struct {
	sprites      []*Sprite
	visibleCount int
	meter        *meter.Meter
}

// NewSpriteManager creates an empty sprite manager.
func NewSpriteManager() *SpriteManager {
	return &SpriteManager{
		sprites: make([]*Sprite, 0, minSprites),
		meter:   meter.New(meter.DefaultBufferLen),
	}
}

// Stats reports a rolling average of recent Blit durations, for host-side
// frame-pacing diagnostics: how many Blit calls of that average duration fit
// in one second, and the average duration in milliseconds.
func (m *SpriteManager) Stats() (rate int, ms float64) {
	return m.meter.Rate(), m.meter.Ms()
}

// Create allocates a new sprite, invisible and imageless until configured,
// and adds it to the manager.
func (m *SpriteManager) Create() *Sprite {
	s := &Sprite{flags: spriteInvisible}
	m.sprites = append(m.sprites, s)
	return s
}

// Destroy marks sprite for removal. It stays visible (if it was) through the
// current frame's Unblit, and is dropped from the manager on the next Blit
// pass.
func (m *SpriteManager) Destroy(sprite *Sprite) {
	sprite.flags |= spriteDestroy
}

// Blit sorts sprites by (destroy, invisible, layer) and draws every visible,
// non-destroyed one onto canvas in that order, front sprites (higher layer)
// overwriting back ones. Sprites marked for destruction are then dropped
// from the manager. Must be paired with a later Unblit before the next
// Blit, to restore what this pass overwrote.
func (m *SpriteManager) Blit(canvas *Canvas) {
	start := time.Now()
	defer func() { m.meter.Record(time.Since(start)) }()

	if len(m.sprites) == 0 {
		m.visibleCount = 0
		return
	}

	sort.SliceStable(m.sprites, func(i, j int) bool {
		return m.sprites[i].sortKey() < m.sprites[j].sortKey()
	})

	i := 0
	for i < len(m.sprites) {
		s := m.sprites[i]
		if s.sortKey()&spriteFlags != 0 {
			break
		}
		Blit(s.image, canvas, s.x, s.y, s.bg)
		i++
	}
	m.visibleCount = i

	for i < len(m.sprites) {
		s := m.sprites[i]
		if s.sortKey()&spriteDestroy != 0 {
			break
		}
		i++
	}

	m.sprites = m.sprites[:i]
}

// Unblit restores every pixel the last Blit pass overwrote, in reverse
// draw order (back to front undone front to back), leaving the canvas as it
// was before that Blit.
func (m *SpriteManager) Unblit(canvas *Canvas) {
	for i := m.visibleCount - 1; i >= 0; i-- {
		s := m.sprites[i]
		Unblit(s.image, canvas, s.x, s.y, s.bg)
	}
}

// VisibleCount returns how many sprites the last Blit pass drew.
func (m *SpriteManager) VisibleCount() int {
	return m.visibleCount
}

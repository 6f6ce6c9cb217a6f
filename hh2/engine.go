package hh2

// Engine bundles the four core components into one process context: the
// canvas, sprite manager, audio mixer, and the filesystem assets are loaded
// from. Nothing stops a caller from using the components directly; Engine
// exists for the common case of wanting all four wired together with one
// allocator and one logger.
type Engine struct {
	Canvas     *Canvas
	Sprites    *SpriteManager
	Mixer      *Mixer
	Filesystem *Filesystem
	Allocator  Allocator
	PRNG       *Rand
}

// Option configures an Engine at construction time.
type Option func(*engineConfig)

type engineConfig struct {
	canvasWidth, canvasHeight int
	allocator                 Allocator
	archive                   *Archive
	seed                      uint64
}

// WithCanvasSize sets the render target's dimensions. Defaults to 256x224.
func WithCanvasSize(width, height int) Option {
	return func(c *engineConfig) {
		c.canvasWidth, c.canvasHeight = width, height
	}
}

// WithAllocator sets Engine.Allocator. Defaults to DefaultAllocator.
// NewEngine itself allocates nothing through it; it is there to be passed to
// CompileWithAllocator and Sprite.SetImageWithAllocator.
func WithAllocator(a Allocator) Option {
	return func(c *engineConfig) {
		c.allocator = a
	}
}

// WithArchive attaches a parsed asset Archive, making Engine.Filesystem
// non-nil.
func WithArchive(archive *Archive) Option {
	return func(c *engineConfig) {
		c.archive = archive
	}
}

// WithSeed sets the initial PRNG seed. Defaults to 1.
func WithSeed(seed uint64) Option {
	return func(c *engineConfig) {
		c.seed = seed
	}
}

// NewEngine builds an Engine from the given options.
func NewEngine(opts ...Option) *Engine {
	cfg := engineConfig{
		canvasWidth:  256,
		canvasHeight: 224,
		seed:         1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	cfg.allocator = allocOrDefault(cfg.allocator)

	e := &Engine{
		Canvas:    NewCanvas(cfg.canvasWidth, cfg.canvasHeight),
		Sprites:   NewSpriteManager(),
		Mixer:     NewMixer(),
		Allocator: cfg.allocator,
		PRNG:      NewRand(cfg.seed),
	}

	if cfg.archive != nil {
		e.Filesystem = NewFilesystem(cfg.archive)
	}

	return e
}

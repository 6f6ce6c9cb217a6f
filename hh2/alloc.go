package hh2

// Allocator is the Go-idiomatic narrowing of a process-wide
// alloc/realloc/free hook. Go's garbage collector removes the
// need for explicit realloc/free, so the hook collapses to the allocation
// point: anything that wants to account for, pool, or fail the engine's
// large allocations (archive index, image RLE blobs, sprite backgrounds)
// can install one. A nil Allocator is equivalent to DefaultAllocator.
type Allocator interface {
	// Alloc returns a zeroed byte slice of length size, or nil if the
	// allocation could not be satisfied.
	Alloc(size int) []byte
}

// DefaultAllocator satisfies Allocator with a plain make([]byte, n).
type DefaultAllocator struct{}

// Alloc implements Allocator.
func (DefaultAllocator) Alloc(size int) []byte {
	return make([]byte, size)
}

func allocOrDefault(a Allocator) Allocator {
	if a == nil {
		return DefaultAllocator{}
	}
	return a
}

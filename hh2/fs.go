package hh2

import "io"

// Filesystem is a read-only view over an Archive, exposing a
// file-exists/file-size/open-file contract plus an idiomatic
// io.ReadSeekCloser for the files it opens.
type Filesystem struct {
	archive *Archive
}

// NewFilesystem builds a Filesystem from a parsed Archive.
func NewFilesystem(archive *Archive) *Filesystem {
	return &Filesystem{archive: archive}
}

// FileExists reports whether path is present in the filesystem.
func (f *Filesystem) FileExists(path string) bool {
	return f.archive.find(path) != nil
}

// FileSize returns the size in bytes of path, or -1 if it does not exist.
func (f *Filesystem) FileSize(path string) int {
	e := f.archive.find(path)
	if e == nil {
		return -1
	}
	return e.size
}

// Entries lists every path the filesystem holds.
func (f *Filesystem) Entries() []string {
	return f.archive.Entries()
}

// Open opens path for reading. Returns a NotFoundError if path does not
// exist in the archive.
func (f *Filesystem) Open(path string) (*File, error) {
	e := f.archive.find(path)
	if e == nil {
		return nil, &NotFoundError{Path: path}
	}

	return &File{
		data: f.archive.data[e.offset+tarRecordSize : e.offset+tarRecordSize+e.size],
		pos:  0,
	}, nil
}

// File is a handle to one opened archive entry. It implements
// io.ReadSeekCloser over the entry's bytes directly, with no copying.
type File struct {
	data []byte
	pos  int
}

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) {
	if f.pos >= len(f.data) {
		return 0, io.EOF
	}

	n := copy(p, f.data[f.pos:])
	f.pos += n
	return n, nil
}

// Seek implements io.Seeker.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	var pos int64

	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(f.pos) + offset
	case io.SeekEnd:
		pos = int64(len(f.data)) - offset
	default:
		return 0, ErrInvalidArgument
	}

	if pos < 0 || pos > int64(len(f.data)) {
		return 0, &SeekError{Pos: pos}
	}

	f.pos = int(pos)
	return pos, nil
}

// Tell returns the current read position, matching the original engine's
// named accessor alongside the io.Seeker it's otherwise redundant with.
func (f *File) Tell() int64 {
	return int64(f.pos)
}

// Close implements io.Closer. The file holds no resources beyond a slice
// into the archive's backing buffer, so this is a no-op.
func (f *File) Close() error {
	return nil
}

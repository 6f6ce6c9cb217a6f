package hh2

import (
	"fmt"
	"io"
	"sort"
	"strconv"
)

// tarRecordSize is the fixed block size of a tar v7 header/data record.
const tarRecordSize = 512

// tar v7 header field offsets and widths, see POSIX ustar's predecessor
// format: a 100-byte NUL-terminated name followed by fixed-width octal
// ASCII metadata fields. The archive builder only relies on name and size.
const (
	tarNameOffset = 0
	tarNameSize   = 100
	tarSizeOffset = 124
	tarSizeSize   = 12
)

// entry indexes one file inside an archive: its tar header/data offset, its
// size, and the djb2 hash of its path used to binary-search entries.
type entry struct {
	path   string
	offset int // byte offset of the 512-byte header record in the archive
	size   int
	hash   Hash
}

// Archive is a parsed, read-only tar-v7-layout blob: a flat run of 512-byte
// header+data records terminated by an all-zero name, with no trailing
// garbage after that. Entries are sorted by (hash, path) to support binary
// search the same way the original file system does.
type Archive struct {
	data    []byte
	entries []entry
}

// ParseArchive parses a buffer previously produced by the archive builder
// into an Archive. The buffer's length must be a multiple of 512 bytes; a
// trailing sentinel record (all-zero name) must be present, and everything
// after it must be zero.
func ParseArchive(data []byte) (*Archive, error) {
	if len(data)%tarRecordSize != 0 {
		return nil, newArchiveError("archive size %d is not a multiple of %d", len(data), tarRecordSize)
	}

	var entries []entry
	offset := 0

	for offset < len(data) && data[offset] != 0 {
		header := data[offset : offset+tarRecordSize]

		nameField := header[tarNameOffset : tarNameOffset+tarNameSize]
		if nameField[tarNameSize-1] != 0 {
			return nil, newArchiveError("entry name at offset %d is not nul-terminated", offset)
		}
		name := cString(nameField)

		sizeField := header[tarSizeOffset : tarSizeOffset+tarSizeSize]
		size, err := parseOctalSize(sizeField)
		if err != nil {
			return nil, newArchiveError("invalid size for entry %q: %v", name, err)
		}

		entries = append(entries, entry{
			path:   name,
			offset: offset,
			size:   size,
			hash:   djb2(name),
		})

		offset += tarRecordSize + (size+tarRecordSize-1)/tarRecordSize*tarRecordSize
	}

	if offset >= len(data) {
		return nil, newArchiveError("archive does not end with an empty entry")
	}

	for i := offset; i < len(data); i++ {
		if data[i] != 0 {
			return nil, newArchiveError("non-empty data found at end of archive (offset %d)", i)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].hash != entries[j].hash {
			return entries[i].hash < entries[j].hash
		}
		return entries[i].path < entries[j].path
	})

	return &Archive{data: data, entries: entries}, nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func parseOctalSize(field []byte) (int, error) {
	s := cString(field)
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.ParseInt(s, 8, 64)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return int(n), nil
}

// find returns the entry for path, or nil if it is not present. Mirrors the
// hash-then-path comparison the archive was sorted with, so a binary search
// can be used.
func (a *Archive) find(path string) *entry {
	hash := djb2(path)

	i := sort.Search(len(a.entries), func(i int) bool {
		e := a.entries[i]
		if e.hash != hash {
			return e.hash >= hash
		}
		return e.path >= path
	})

	if i >= len(a.entries) || a.entries[i].hash != hash || a.entries[i].path != path {
		return nil
	}
	return &a.entries[i]
}

// WriteArchive writes files (keyed by archive path) to w in the tar
// v7-style layout ParseArchive reads: one 512-byte header plus
// size-rounded-up-to-512 data record per file, sorted by path for
// reproducible builds, terminated by a single all-zero sentinel record.
// This is the packing half of the archive format; the engine itself never
// writes archives, only the asset pipeline that builds them (cmd/hh2pack).
func WriteArchive(w io.Writer, files map[string][]byte) error {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		data := files[path]
		if len(path) >= tarNameSize {
			return fmt.Errorf("hh2: archive path %q is too long (max %d bytes)", path, tarNameSize-1)
		}

		var header [tarRecordSize]byte
		copy(header[tarNameOffset:tarNameOffset+tarNameSize], path)

		size := fmt.Sprintf("%011o", len(data))
		copy(header[tarSizeOffset:tarSizeOffset+tarSizeSize], size)

		if _, err := w.Write(header[:]); err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}

		pad := (tarRecordSize - len(data)%tarRecordSize) % tarRecordSize
		if pad > 0 {
			if _, err := w.Write(make([]byte, pad)); err != nil {
				return err
			}
		}
	}

	var sentinel [tarRecordSize]byte
	_, err := w.Write(sentinel[:])
	return err
}

// Entries returns every path stored in the archive, in no particular order.
func (a *Archive) Entries() []string {
	paths := make([]string, len(a.entries))
	for i, e := range a.entries {
		paths[i] = e.path
	}
	return paths
}

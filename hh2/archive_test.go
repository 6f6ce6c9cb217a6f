package hh2

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTestArchive(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, files))
	return buf.Bytes()
}

// TestFilesystemRoundTrip packs two files, parses the result, and checks
// lookups and reads against both.
func TestFilesystemRoundTrip(t *testing.T) {
	data := buildTestArchive(t, map[string][]byte{
		"a.bin": {0x01, 0x02, 0x03, 0x04},
		"b.bin": {},
	})

	archive, err := ParseArchive(data)
	require.NoError(t, err)

	fs := NewFilesystem(archive)
	require.Equal(t, 4, fs.FileSize("a.bin"))
	require.Equal(t, 0, fs.FileSize("b.bin"))
	require.Equal(t, -1, fs.FileSize("missing"))

	f, err := fs.Open("a.bin")
	require.NoError(t, err)
	got := make([]byte, 4)
	n, err := f.Read(got)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, got)

	_, err = fs.Open("missing")
	require.Error(t, err)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "missing", nf.Path)
}

// TestSeekTell checks that open/seek(SET,n)/tell() == n for every valid n.
func TestSeekTell(t *testing.T) {
	data := buildTestArchive(t, map[string][]byte{"f.bin": bytes.Repeat([]byte{0xAB}, 20)})
	archive, err := ParseArchive(data)
	require.NoError(t, err)
	fs := NewFilesystem(archive)

	f, err := fs.Open("f.bin")
	require.NoError(t, err)

	for n := int64(0); n <= 20; n++ {
		pos, err := f.Seek(n, io.SeekStart)
		require.NoError(t, err)
		require.Equal(t, n, pos)
		require.Equal(t, n, f.Tell())
	}
}

func TestSeekEndSubtracts(t *testing.T) {
	// SEEK_END lands relative to size-offset, not size+offset.
	data := buildTestArchive(t, map[string][]byte{"f.bin": bytes.Repeat([]byte{1}, 10)})
	archive, err := ParseArchive(data)
	require.NoError(t, err)
	fs := NewFilesystem(archive)
	f, err := fs.Open("f.bin")
	require.NoError(t, err)

	pos, err := f.Seek(4, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(6), pos) // 10 - 4
}

func TestSeekOutOfBoundsIsInvalidSeek(t *testing.T) {
	data := buildTestArchive(t, map[string][]byte{"f.bin": {1, 2, 3}})
	archive, _ := ParseArchive(data)
	fs := NewFilesystem(archive)
	f, _ := fs.Open("f.bin")

	_, err := f.Seek(-1, io.SeekStart)
	require.Error(t, err)
	var se *SeekError
	require.ErrorAs(t, err, &se)

	_, err = f.Seek(100, io.SeekStart)
	require.Error(t, err)
	require.ErrorAs(t, err, &se)
}

func TestSeekInvalidWhence(t *testing.T) {
	data := buildTestArchive(t, map[string][]byte{"f.bin": {1}})
	archive, _ := ParseArchive(data)
	fs := NewFilesystem(archive)
	f, _ := fs.Open("f.bin")

	_, err := f.Seek(0, 99)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestArchiveSortedByHashThenPath(t *testing.T) {
	data := buildTestArchive(t, map[string][]byte{
		"z": {1},
		"a": {2},
		"m": {3},
	})
	archive, err := ParseArchive(data)
	require.NoError(t, err)

	for i := 1; i < len(archive.entries); i++ {
		prev, cur := archive.entries[i-1], archive.entries[i]
		if prev.hash == cur.hash {
			require.LessOrEqual(t, prev.path, cur.path)
		} else {
			require.Less(t, prev.hash, cur.hash)
		}
	}
}

func TestParseArchiveRejectsBadSize(t *testing.T) {
	_, err := ParseArchive([]byte{1, 2, 3})
	require.Error(t, err)
	var ae *ArchiveError
	require.ErrorAs(t, err, &ae)
}

func TestParseArchiveRejectsTrailingGarbage(t *testing.T) {
	data := buildTestArchive(t, map[string][]byte{"f": {1}})
	data = append(data, make([]byte, tarRecordSize)...)
	data[len(data)-1] = 0xFF

	_, err := ParseArchive(data)
	require.Error(t, err)
}

func TestParseArchiveRejectsMissingSentinel(t *testing.T) {
	data := buildTestArchive(t, map[string][]byte{"f": {1}})
	// Drop the trailing sentinel record.
	data = data[:len(data)-tarRecordSize]

	_, err := ParseArchive(data)
	require.Error(t, err)
}

func TestArchiveEntriesListsEverything(t *testing.T) {
	data := buildTestArchive(t, map[string][]byte{"a": {1}, "b": {2}, "c": {}})
	archive, err := ParseArchive(data)
	require.NoError(t, err)

	entries := archive.Entries()
	require.ElementsMatch(t, []string{"a", "b", "c"}, entries)
}

package hh2

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeArchiveRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, map[string][]byte{
		"sprites/hero.png": bytes.Repeat([]byte{0x42}, 37),
		"audio/jump.wav":   {},
	}))
	original := buf.Bytes()

	encoded, err := EncodeArchive(original)
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	decoded, err := DecodeEmbeddedArchive(encoded)
	require.NoError(t, err)
	require.Equal(t, original, decoded)

	archive, err := ParseArchive(decoded)
	require.NoError(t, err)
	fs := NewFilesystem(archive)
	require.Equal(t, 37, fs.FileSize("sprites/hero.png"))
	require.Equal(t, 0, fs.FileSize("audio/jump.wav"))
}

func TestDecodeEmbeddedArchiveRejectsGarbage(t *testing.T) {
	_, err := DecodeEmbeddedArchive("not valid base64 gzip data !!")
	require.Error(t, err)
}

package hh2

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"io"
)

// EncodeArchive gzip-compresses and base64-encodes an already-built archive
// blob (see WriteArchive) for embedding as a Go string literal by cmd/hh2pack,
// the same round-trip github.com/flga/nes's asset generator used per-file;
// here it runs once over the whole packed archive instead.
func EncodeArchive(archive []byte) (string, error) {
	buf := &bytes.Buffer{}
	enc := base64.NewEncoder(base64.StdEncoding, buf)

	gz := gzip.NewWriter(enc)
	if _, err := gz.Write(archive); err != nil {
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// DecodeEmbeddedArchive reverses EncodeArchive, producing the raw bytes
// ParseArchive expects. The game binary calls this once at startup on the
// string literal cmd/hh2pack generated.
func DecodeEmbeddedArchive(encoded string) ([]byte, error) {
	dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader([]byte(encoded)))
	gz, err := gzip.NewReader(dec)
	if err != nil {
		return nil, newDecodeError("archive", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, newDecodeError("archive", err)
	}
	return data, nil
}

package hh2

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/flga/hh2/hh2/hh2log"
)

// ErrOutOfMemory is returned by any constructor whose Allocator hook
// returned a nil/undersized buffer.
var ErrOutOfMemory = errors.New("hh2: out of memory")

// ErrInvalidArgument is returned for malformed call arguments, such as an
// unsupported seek whence.
var ErrInvalidArgument = errors.New("hh2: invalid argument")

// ArchiveError reports why an archive blob failed to parse.
type ArchiveError struct {
	Reason string
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("hh2: invalid archive: %s", e.Reason)
}

func newArchiveError(format string, args ...interface{}) error {
	reason := fmt.Sprintf(format, args...)
	logger.Logf(hh2log.Warn, "FST", "rejecting archive: %s", reason)
	return errors.WithStack(&ArchiveError{Reason: reason})
}

// NotFoundError reports a path that does not exist in a Filesystem.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("hh2: not found: %q", e.Path)
}

// SeekError reports a seek that would land outside the file's bounds.
type SeekError struct {
	Pos int64
}

func (e *SeekError) Error() string {
	return fmt.Sprintf("hh2: invalid seek position: %d", e.Pos)
}

// UnsupportedChannelsError reports a WAV source with more channels than the
// mixer understands.
type UnsupportedChannelsError struct {
	Found int
}

func (e *UnsupportedChannelsError) Error() string {
	return fmt.Sprintf("hh2: unsupported channel count: %d", e.Found)
}

// DecodeError wraps a failure from one of the external black-box decoders
// (PNG, JPEG, WAV, Vorbis, BDF).
type DecodeError struct {
	Format string
	Detail string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("hh2: %s decode error: %s", e.Format, e.Detail)
}

func newDecodeError(format string, err error) error {
	logger.Logf(hh2log.Warn, "DEC", "%s decode failed: %s", format, err)
	return errors.WithStack(&DecodeError{Format: format, Detail: err.Error()})
}

// ResamplerError wraps a failure from the sample-rate converter.
type ResamplerError struct {
	Detail string
}

func (e *ResamplerError) Error() string {
	return fmt.Sprintf("hh2: resampler error: %s", e.Detail)
}

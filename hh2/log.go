package hh2

import "github.com/flga/hh2/hh2/hh2log"

var logger = hh2log.Discard()

// SetLogger installs the process-wide logger hook. Passing nil reverts to
// the discarding default, approximating the compile-time-gated logging of
// the original engine (a release build pays only a level check).
func SetLogger(l *hh2log.Logger) {
	if l == nil {
		l = hh2log.Discard()
	}
	logger = l
}

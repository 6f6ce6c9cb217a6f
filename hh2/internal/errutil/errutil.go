// Package errutil joins multiple non-fatal errors encountered while closing
// or tearing down several resources in a row.
package errutil

import "strings"

// List is a slice of errors that itself implements error.
type List []error

// NewList builds a List from errs, skipping any nil entries.
func NewList(errs ...error) List {
	return List(nil).Add(errs...)
}

// Add appends the non-nil errors in errs to the list.
func (l List) Add(errs ...error) List {
	for _, err := range errs {
		if err == nil {
			continue
		}
		l = append(l, err)
	}
	return l
}

// Err returns l as an error, or nil if l is empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l List) Error() string {
	parts := make([]string, len(l))
	for i, err := range l {
		parts[i] = err.Error()
	}
	return strings.Join(parts, ", ")
}

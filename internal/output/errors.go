package output

import (
	"errors"
	"fmt"
)

// ErrIO indicates a file in the output directory could not be written.
var ErrIO = errors.New("output I/O error")

// IOError reports a failed write of one output file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

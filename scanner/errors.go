package scanner

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownStyle      = errors.New("unknown comment style")
	ErrNestedSpan        = errors.New("license text starts again before the previous one ended")
	ErrUnterminatedSpan  = errors.New("end of license text not found")
	ErrDuplicateTag      = errors.New("duplicate SPDX-License-Identifier line")
	ErrUnknownIdentifier = errors.New("unknown SPDX license identifier")
)

// FileError ties a scan failure to the file and line it was found on.
// Line is 0 when the failure concerns the whole file.
type FileError struct {
	Path string
	Line int
	Err  error
}

func (e *FileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

func fileError(path string, line int, err error) *FileError {
	return &FileError{Path: path, Line: line, Err: err}
}

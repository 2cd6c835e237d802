package rufs

import (
	"fmt"
	"syscall"
)

// DriverError is a wrapper around a POSIX errno code, with an optional
// descriptive message. It implements the standard error interface plus
// chaining helpers so callers can attach context without losing the
// underlying errno, matching spec.md §7's error taxonomy.
type DriverError struct {
	Errno   syscall.Errno
	message string
	wrapped error
}

// NewDriverError creates a DriverError with a default message derived from
// the errno code.
func NewDriverError(errno syscall.Errno) *DriverError {
	return &DriverError{Errno: errno, message: errno.Error()}
}

// NewDriverErrorWithMessage creates a DriverError from an errno code with a
// custom message.
func NewDriverErrorWithMessage(errno syscall.Errno, message string) *DriverError {
	return &DriverError{Errno: errno, message: fmt.Sprintf("%s: %s", errno.Error(), message)}
}

func (e *DriverError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.Errno.Error()
}

// WithMessage returns a new DriverError carrying the same errno with an
// additional message appended.
func (e *DriverError) WithMessage(message string) *DriverError {
	return &DriverError{
		Errno:   e.Errno,
		message: fmt.Sprintf("%s: %s", e.Error(), message),
		wrapped: e,
	}
}

// WrapError returns a new DriverError carrying the same errno whose message
// also records the wrapped error's text.
func (e *DriverError) WrapError(err error) *DriverError {
	return &DriverError{
		Errno:   e.Errno,
		message: fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		wrapped: err,
	}
}

func (e *DriverError) Unwrap() error {
	return e.wrapped
}

// The errno codes named by spec.md §7's taxonomy.
var (
	// ErrNotFound (NOENT): a path component does not exist.
	ErrNotFound = NewDriverError(syscall.ENOENT)
	// ErrExists (EXISTS): a dirent name collision in dir_add.
	ErrExists = NewDriverError(syscall.EEXIST)
	// ErrNoSpace (NOSPC): inodes or data blocks exhausted, or a directory is
	// full at 16 blocks.
	ErrNoSpace = NewDriverError(syscall.ENOSPC)
	// ErrFileTooBig (FBIG): a read or write addresses beyond direct-pointer
	// reach.
	ErrFileTooBig = NewDriverError(syscall.EFBIG)
	// ErrIO (IO): a block device read or write failed.
	ErrIO = NewDriverError(syscall.EIO)
	// ErrInvalid (INVAL): a malformed path or argument.
	ErrInvalid = NewDriverError(syscall.EINVAL)
)

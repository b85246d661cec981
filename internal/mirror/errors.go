package mirror

import (
	"errors"
	"fmt"

	"github.com/stacklok/crate-sync/internal/git"
)

// Error is returned when a mirror can't be cloned or brought up to date.
// The previous mirror content, if any, is still usable.
type Error struct {
	URL  string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to update mirror of %s at %s: %v", e.URL, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IOError is returned when a mirror can't be copied into a destination
type IOError struct {
	Src string
	Dst string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to copy mirror %s to %s: %v", e.Src, e.Dst, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err was caused by a remote repository that does not exist
func IsNotFound(err error) bool {
	var mirrorErr *Error
	return errors.As(err, &mirrorErr) && errors.Is(mirrorErr.Err, git.ErrNotFound)
}

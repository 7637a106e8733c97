package lotus

import (
	"errors"
	"fmt"

	"github.com/sehnryr/lotus-lib/compression"
)

// NotFoundError reports a missing TOC or cache file, or an archive entry
// that does not exist.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.What)
}

// FormatError reports malformed archive or asset-header data.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return e.Msg }

// PathError reports a path the tree cannot resolve: a relative path, or one
// that walks past the root.
type PathError struct {
	Path string
	Msg  string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsBadFormat(err error) bool {
	var e *FormatError
	return errors.As(err, &e)
}

func IsBadPath(err error) bool {
	var e *PathError
	return errors.As(err, &e)
}

// IsBadCompression reports whether err originates from the block
// decompressor.
func IsBadCompression(err error) bool {
	var e *compression.Error
	return errors.As(err, &e)
}

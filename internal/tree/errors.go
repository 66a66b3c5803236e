package tree

import "errors"

var (
	// ErrRootNotFound indicates the source root does not exist or is not a directory.
	ErrRootNotFound = errors.New("source root not found")

	// ErrReadDir indicates a directory inside the source tree could not be listed.
	ErrReadDir = errors.New("source directory read failed")

	// ErrUnsupportedEntry indicates an entry that is neither a regular file nor a directory.
	ErrUnsupportedEntry = errors.New("unsupported filesystem entry")

	// ErrURICollision indicates two source entries map to the same uri.
	ErrURICollision = errors.New("uri collision detected")

	// ErrInvalidDepth indicates a negative max depth.
	ErrInvalidDepth = errors.New("max depth must not be negative")
)

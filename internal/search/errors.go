package search

import "errors"

var (
	// ErrEncoding indicates a source could not be decoded as UTF-8 text.
	ErrEncoding = errors.New("content is not valid UTF-8 text")

	// ErrContentRead indicates a source could not be read for indexing.
	ErrContentRead = errors.New("content read failed")

	// ErrIndexFormat indicates a serialized index could not be decoded.
	ErrIndexFormat = errors.New("invalid serialized index")
)

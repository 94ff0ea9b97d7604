package picstash

import "errors"

// Sentinel errors for the domain. Callers match them with errors.Is; the
// HTTP layer maps each to a stable user-visible message and status code.
// Internal diagnostic detail is attached by wrapping and is never exposed
// to API clients.
var (
	ErrInvalidIdentifier    = errors.New("invalid identifier")
	ErrInvalidName          = errors.New("invalid name")
	ErrInvalidQuery         = errors.New("invalid query")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidArchiveName   = errors.New("invalid archive name")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrEmptyRequest         = errors.New("empty request")
	ErrDuplicateCollection  = errors.New("collection already exists")
	ErrCollectionNotFound   = errors.New("collection not found")
	ErrImageNotFound        = errors.New("image not found")
	ErrThumbnailNotFound    = errors.New("thumbnail not found")
	ErrStoreCorrupted       = errors.New("metadata store corrupted")
)

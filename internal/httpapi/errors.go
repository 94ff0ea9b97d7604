package httpapi

import (
	"errors"
	"net/http"

	"picstash/internal/picstash"
)

// errorMapping pairs a domain sentinel with its HTTP status and the
// stable user-visible message. The order matters only for readability;
// sentinels are disjoint.
var errorMappings = []struct {
	err     error
	status  int
	message string
}{
	{picstash.ErrInvalidIdentifier, http.StatusBadRequest, "Invalid identifier"},
	{picstash.ErrInvalidName, http.StatusBadRequest, "Invalid collection name"},
	{picstash.ErrInvalidQuery, http.StatusBadRequest, "Invalid query parameters"},
	{picstash.ErrInvalidStatus, http.StatusBadRequest, "Invalid status"},
	{picstash.ErrInvalidArchiveName, http.StatusBadRequest, "Invalid archive name"},
	{picstash.ErrEmptyRequest, http.StatusBadRequest, "No images requested"},
	{picstash.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "Unsupported media type"},
	{picstash.ErrDuplicateCollection, http.StatusConflict, "Collection already exists"},
	{picstash.ErrCollectionNotFound, http.StatusNotFound, "Collection not found"},
	{picstash.ErrImageNotFound, http.StatusNotFound, "Image not found"},
	{picstash.ErrThumbnailNotFound, http.StatusNotFound, "Thumbnail not found"},
}

// internalErrorMessage is the only text ever exposed for unexpected or
// store-corruption failures; diagnostic detail stays in the logs.
const internalErrorMessage = "Internal error"

// mapError resolves a domain error to its HTTP status and stable message.
func mapError(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, internalErrorMessage
}

// errorMessage returns just the stable message for a domain error, for
// embedding in batch results.
func errorMessage(err error) string {
	_, msg := mapError(err)
	return msg
}

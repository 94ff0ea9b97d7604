package picstash

import "io"

// ThumbnailMIME is the MIME type of every stored thumbnail. Thumbnails
// normalize to one output format regardless of the original's format.
const ThumbnailMIME = "image/jpeg"

// BlobStore manages the original and thumbnail bytes for one collection,
// keyed by image id. All reads and writes stream so large originals are
// never held in memory by the store.
type BlobStore interface {
	// PutOriginal stores the original bytes for an image. size is the
	// number of bytes that will be read from r.
	PutOriginal(id string, r io.Reader, size int64) error

	// PutThumbnail stores the derived thumbnail for an image.
	PutThumbnail(id string, data []byte) error

	// OpenOriginal returns a stream over the original bytes and its size,
	// or fails with ErrImageNotFound.
	OpenOriginal(id string) (io.ReadCloser, int64, error)

	// OpenThumbnail returns a stream over the thumbnail and its size, or
	// fails with ErrThumbnailNotFound. A missing thumbnail is a valid
	// state distinct from a missing image.
	OpenThumbnail(id string) (io.ReadCloser, int64, error)

	// Remove deletes the original and thumbnail for an image. A missing
	// thumbnail is not an error.
	Remove(id string) error

	// RemoveAll deletes every blob held by the store.
	RemoveAll() error

	// Close releases any resources held by the store.
	Close() error
}

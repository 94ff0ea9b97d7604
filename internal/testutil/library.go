package testutil

import (
	"testing"

	"picstash/internal/blob"
	"picstash/internal/metadata"
	"picstash/internal/picstash"
	"picstash/internal/thumbnail"
)

// LibraryOptions returns a library root under t.TempDir and wired Options:
// SQLite metadata stores, in-memory blob stores, real thumbnails, a fixed
// clock and deterministic ids. Tests that need fault injection can wrap
// the openers before constructing the Library.
func LibraryOptions(t *testing.T) (string, picstash.Options) {
	t.Helper()
	return t.TempDir(), picstash.Options{
		OpenMetadata: func(collectionID, dir string) (picstash.MetadataStore, error) {
			return metadata.Open(collectionID, dir)
		},
		OpenBlobs: func(collectionID, dir string) (picstash.BlobStore, error) {
			return blob.NewMemoryStore(), nil
		},
		Thumbnailer: thumbnail.NewGenerator(),
		Logger:      picstash.NewNopLogger(),
		Clock:       FixedClock(),
		IDGenerator: NewStubIDGenerator(),
	}
}

// NewTestLibrary creates a fully wired Library rooted in a temp dir,
// closed automatically when the test ends.
func NewTestLibrary(t *testing.T) *picstash.Library {
	t.Helper()
	root, opts := LibraryOptions(t)
	lib, err := picstash.NewLibrary(root, opts)
	if err != nil {
		t.Fatalf("creating test library: %v", err)
	}
	t.Cleanup(func() { lib.Close() })
	return lib
}

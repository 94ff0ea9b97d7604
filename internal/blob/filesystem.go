package blob

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"picstash/internal/picstash"
)

// FileSystemStore keeps a collection's blobs in two subdirectories of the
// collection directory, addressed by image id:
//
//	<dir>/
//	  originals/
//	    <imageID>    (original bytes, as uploaded)
//	  thumbs/
//	    <imageID>    (derived JPEG thumbnail, when generation succeeded)
type FileSystemStore struct {
	originalsDir string
	thumbsDir    string
}

// NewFileSystemStore creates a filesystem blob store inside the given
// collection directory.
func NewFileSystemStore(dir string) (*FileSystemStore, error) {
	originalsDir := filepath.Join(dir, "originals")
	thumbsDir := filepath.Join(dir, "thumbs")

	if err := os.MkdirAll(originalsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create originals directory: %w", err)
	}
	if err := os.MkdirAll(thumbsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create thumbs directory: %w", err)
	}

	return &FileSystemStore{
		originalsDir: originalsDir,
		thumbsDir:    thumbsDir,
	}, nil
}

// PutOriginal stores the original bytes for an image.
func (s *FileSystemStore) PutOriginal(id string, r io.Reader, size int64) error {
	return writeFile(filepath.Join(s.originalsDir, id), r, size)
}

// PutThumbnail stores the derived thumbnail for an image.
func (s *FileSystemStore) PutThumbnail(id string, data []byte) error {
	return writeFile(filepath.Join(s.thumbsDir, id), bytes.NewReader(data), int64(len(data)))
}

// OpenOriginal returns a stream over the original bytes and its size.
func (s *FileSystemStore) OpenOriginal(id string) (io.ReadCloser, int64, error) {
	return openFile(filepath.Join(s.originalsDir, id), picstash.ErrImageNotFound, id)
}

// OpenThumbnail returns a stream over the thumbnail and its size.
func (s *FileSystemStore) OpenThumbnail(id string) (io.ReadCloser, int64, error) {
	return openFile(filepath.Join(s.thumbsDir, id), picstash.ErrThumbnailNotFound, id)
}

// Remove deletes the original and thumbnail for an image. Missing files
// are not an error, so Remove is idempotent.
func (s *FileSystemStore) Remove(id string) error {
	for _, path := range []string{filepath.Join(s.originalsDir, id), filepath.Join(s.thumbsDir, id)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing blob: %w", err)
		}
	}
	return nil
}

// RemoveAll deletes every blob held by the store.
func (s *FileSystemStore) RemoveAll() error {
	for _, dir := range []string{s.originalsDir, s.thumbsDir} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing blob directory: %w", err)
		}
	}
	return nil
}

// Close is a no-op for the filesystem store.
func (s *FileSystemStore) Close() error { return nil }

// writeFile writes data from r to the given path using an atomic write
// (temp file + rename) and verifies the expected size.
func writeFile(destPath string, r io.Reader, expectedSize int64) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// openFile opens the file at path, mapping absence to the given sentinel.
func openFile(path string, notFound error, id string) (io.ReadCloser, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("%w: %s", notFound, id)
		}
		return nil, 0, fmt.Errorf("failed to open blob: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("failed to stat blob: %w", err)
	}
	return f, info.Size(), nil
}

// Compile-time check that FileSystemStore implements picstash.BlobStore
var _ picstash.BlobStore = (*FileSystemStore)(nil)

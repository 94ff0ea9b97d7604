package blob

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"picstash/internal/picstash"
)

// MemoryStore is an in-memory implementation of the BlobStore interface,
// useful for testing. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	originals map[string][]byte
	thumbs    map[string][]byte
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		originals: make(map[string][]byte),
		thumbs:    make(map[string][]byte),
	}
}

// PutOriginal stores the original bytes for an image.
func (s *MemoryStore) PutOriginal(id string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read original: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.originals[id] = data
	return nil
}

// PutThumbnail stores the derived thumbnail for an image.
func (s *MemoryStore) PutThumbnail(id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thumbs[id] = append([]byte(nil), data...)
	return nil
}

// OpenOriginal returns a stream over the original bytes and its size.
func (s *MemoryStore) OpenOriginal(id string) (io.ReadCloser, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.originals[id]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", picstash.ErrImageNotFound, id)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

// OpenThumbnail returns a stream over the thumbnail and its size.
func (s *MemoryStore) OpenThumbnail(id string) (io.ReadCloser, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.thumbs[id]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", picstash.ErrThumbnailNotFound, id)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

// Remove deletes the original and thumbnail for an image.
func (s *MemoryStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.originals, id)
	delete(s.thumbs, id)
	return nil
}

// RemoveAll deletes every blob held by the store.
func (s *MemoryStore) RemoveAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.originals = make(map[string][]byte)
	s.thumbs = make(map[string][]byte)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// Compile-time check that MemoryStore implements picstash.BlobStore
var _ picstash.BlobStore = (*MemoryStore)(nil)

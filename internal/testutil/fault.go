package testutil

import (
	"errors"
	"io"
	"sync"

	"picstash/internal/picstash"
)

// ErrInjected is the failure returned by the fault decorators.
var ErrInjected = errors.New("injected fault")

// FaultStore wraps a MetadataStore and fails selected operations on
// selected ids. Zero value passes everything through.
type FaultStore struct {
	picstash.MetadataStore

	mu      sync.Mutex
	failPut map[string]bool
	failGet map[string]bool
}

// NewFaultStore wraps the given store with no faults armed.
func NewFaultStore(inner picstash.MetadataStore) *FaultStore {
	return &FaultStore{
		MetadataStore: inner,
		failPut:       make(map[string]bool),
		failGet:       make(map[string]bool),
	}
}

// FailPut arms a fault for Put calls on the given id.
func (s *FaultStore) FailPut(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPut[id] = true
}

// FailGet arms a fault for Get calls on the given id.
func (s *FaultStore) FailGet(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet[id] = true
}

func (s *FaultStore) Put(img *picstash.Image) error {
	s.mu.Lock()
	fail := s.failPut[img.ID]
	s.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return s.MetadataStore.Put(img)
}

func (s *FaultStore) Get(id string) (*picstash.Image, error) {
	s.mu.Lock()
	fail := s.failGet[id]
	s.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return s.MetadataStore.Get(id)
}

// FailingThumbnailer rejects every Generate call with ErrInjected. It
// stands in for originals the real generator cannot process.
type FailingThumbnailer struct{}

func (FailingThumbnailer) Generate(original []byte) ([]byte, error) {
	return nil, ErrInjected
}

var _ picstash.Thumbnailer = FailingThumbnailer{}

// FaultBlobStore wraps a BlobStore and fails writes on demand.
type FaultBlobStore struct {
	picstash.BlobStore

	mu            sync.Mutex
	failOriginals bool
}

// NewFaultBlobStore wraps the given store with no faults armed.
func NewFaultBlobStore(inner picstash.BlobStore) *FaultBlobStore {
	return &FaultBlobStore{BlobStore: inner}
}

// FailOriginals arms a fault for every PutOriginal call.
func (s *FaultBlobStore) FailOriginals() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOriginals = true
}

func (s *FaultBlobStore) PutOriginal(id string, r io.Reader, size int64) error {
	s.mu.Lock()
	fail := s.failOriginals
	s.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return s.BlobStore.PutOriginal(id, r, size)
}

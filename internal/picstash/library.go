package picstash

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	// Decoders for the supported original formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// MetadataOpener creates the metadata store backing a collection directory.
type MetadataOpener func(collectionID, dir string) (MetadataStore, error)

// BlobOpener creates the blob store for a collection directory.
type BlobOpener func(collectionID, dir string) (BlobStore, error)

// Options configures a Library. OpenMetadata, OpenBlobs and Thumbnailer
// are required; the rest default to production implementations.
type Options struct {
	OpenMetadata MetadataOpener
	OpenBlobs    BlobOpener
	Thumbnailer  Thumbnailer
	Logger       Logger
	Clock        Clock
	IDGenerator  IDGenerator
}

// Library owns collection lifecycle and composes the per-collection
// metadata and blob stores. Each collection is a subtree of the root
// directory; collection existence is directory existence. Library is safe
// for concurrent use, and operations on different collections do not
// serialize against each other once their handles are open.
type Library struct {
	root        string
	openMeta    MetadataOpener
	openBlobs   BlobOpener
	thumbnailer Thumbnailer
	logger      Logger
	clock       Clock
	idgen       IDGenerator

	mu      sync.Mutex
	handles map[string]*Collection
}

// Collection is a handle bound to one collection's stores.
type Collection struct {
	ID string

	meta  MetadataStore
	blobs BlobStore
}

// NewLibrary creates a Library rooted at the given directory, creating it
// if necessary.
func NewLibrary(root string, opts Options) (*Library, error) {
	if opts.OpenMetadata == nil || opts.OpenBlobs == nil {
		return nil, fmt.Errorf("library requires metadata and blob store openers")
	}
	if opts.Thumbnailer == nil {
		return nil, fmt.Errorf("library requires a thumbnailer")
	}
	if opts.Logger == nil {
		opts.Logger = NewNopLogger()
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = UUIDGenerator{}
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating library root: %w", err)
	}
	return &Library{
		root:        root,
		openMeta:    opts.OpenMetadata,
		openBlobs:   opts.OpenBlobs,
		thumbnailer: opts.Thumbnailer,
		logger:      opts.Logger,
		clock:       opts.Clock,
		idgen:       opts.IDGenerator,
		handles:     make(map[string]*Collection),
	}, nil
}

// CreateCollection validates the identifier, creates the backing subtree
// and an empty metadata store, and returns the new collection's handle.
// Fails with ErrDuplicateCollection if the subtree already exists.
func (l *Library) CreateCollection(id string) (*Collection, error) {
	if err := ValidateCollectionID(id); err != nil {
		return nil, err
	}
	if err := ValidateCollectionName(id); err != nil {
		return nil, err
	}

	// Mkdir is the existence check: concurrent creates of the same id race
	// on the directory, and exactly one wins.
	dir := filepath.Join(l.root, id)
	if err := os.Mkdir(dir, 0755); err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCollection, id)
		}
		return nil, fmt.Errorf("%w: creating collection dir: %v", ErrStoreCorrupted, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	h, err := l.open(id, dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	l.handles[id] = h

	l.logger.Info("collection created", "collection", id)
	return h, nil
}

// Collections returns all known collection ids in lexicographic order.
func (l *Library) Collections() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("%w: reading library root: %v", ErrStoreCorrupted, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Collection returns the handle for an existing collection, opening its
// stores lazily. Fails with ErrCollectionNotFound if the subtree does not
// exist.
func (l *Library) Collection(id string) (*Collection, error) {
	if err := ValidateCollectionID(id); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.handles[id]; ok {
		return h, nil
	}

	dir := filepath.Join(l.root, id)
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stat collection dir: %v", ErrStoreCorrupted, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, id)
	}

	h, err := l.open(id, dir)
	if err != nil {
		return nil, err
	}
	l.handles[id] = h
	return h, nil
}

// DeleteCollection removes the collection and everything it contains.
// Irreversible. Blobs are removed through the store first so that remote
// backends do not leak objects, then the whole subtree goes; the metadata
// store dies with it, so no dangling image record can survive.
func (l *Library) DeleteCollection(id string) error {
	h, err := l.Collection(id)
	if err != nil {
		return err
	}

	l.mu.Lock()
	delete(l.handles, id)
	l.mu.Unlock()

	if err := h.blobs.RemoveAll(); err != nil {
		l.logger.Warn("removing collection blobs", "collection", id, "error", err)
	}
	h.close()

	if err := os.RemoveAll(filepath.Join(l.root, id)); err != nil {
		return fmt.Errorf("%w: removing collection dir: %v", ErrStoreCorrupted, err)
	}

	l.logger.Info("collection deleted", "collection", id)
	return nil
}

// AddImage accepts original image bytes into a collection. Metadata is
// computed from the bytes (hash, size, mime, dimensions), a fresh id is
// assigned and the status starts at INBOX. Non-image or corrupted content
// fails with ErrUnsupportedMediaType before anything is persisted.
// Thumbnail generation is best effort: the image exists without one.
func (l *Library) AddImage(collectionID string, data []byte, filename string) (*Image, error) {
	h, err := l.Collection(collectionID)
	if err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
	}

	name, ext := SplitFilename(filename)
	if ext == "" {
		ext = format
	}
	now := l.clock.Now().UTC()
	img := &Image{
		ID:         l.idgen.New(),
		Collection: h.ID,
		Name:       name,
		Extension:  ext,
		MIME:       mimeForFormat(format),
		Size:       int64(len(data)),
		Hash:       ContentHash(data),
		Width:      cfg.Width,
		Height:     cfg.Height,
		Status:     StatusInbox,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.blobs.PutOriginal(img.ID, bytes.NewReader(data), img.Size); err != nil {
		return nil, fmt.Errorf("storing original: %w", err)
	}
	if err := h.meta.Put(img); err != nil {
		// Don't leave orphaned bytes behind a failed record write.
		if rmErr := h.blobs.Remove(img.ID); rmErr != nil {
			l.logger.Warn("removing orphaned original", "image", img.ID, "error", rmErr)
		}
		return nil, fmt.Errorf("storing metadata: %w", err)
	}

	if thumb, err := l.thumbnailer.Generate(data); err != nil {
		l.logger.Warn("thumbnail generation failed", "collection", h.ID, "image", img.ID, "error", err)
	} else if err := h.blobs.PutThumbnail(img.ID, thumb); err != nil {
		l.logger.Warn("storing thumbnail failed", "collection", h.ID, "image", img.ID, "error", err)
	}

	l.logger.Info("image added", "collection", h.ID, "image", img.ID, "size", img.Size)
	return img, nil
}

// ListImages returns the collection's metadata records filtered and
// paginated per opts. Options are validated before the collection lookup
// so invalid queries never touch storage.
func (l *Library) ListImages(collectionID string, opts ListOptions) ([]*Image, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	h, err := l.Collection(collectionID)
	if err != nil {
		return nil, err
	}
	return h.meta.List(opts)
}

// GetImage returns a single metadata record. Reading never bumps the
// updated timestamp.
func (l *Library) GetImage(collectionID, imageID string) (*Image, error) {
	if err := ValidateImageID(imageID); err != nil {
		return nil, err
	}
	h, err := l.Collection(collectionID)
	if err != nil {
		return nil, err
	}
	return h.meta.Get(imageID)
}

// CountImages returns the number of image records in a collection.
func (l *Library) CountImages(collectionID string) (int, error) {
	h, err := l.Collection(collectionID)
	if err != nil {
		return 0, err
	}
	return h.meta.Count()
}

// DeleteImage removes the metadata record and both byte artifacts.
// After a successful delete every read for the id fails with
// ErrImageNotFound.
func (l *Library) DeleteImage(collectionID, imageID string) error {
	if err := ValidateImageID(imageID); err != nil {
		return err
	}
	h, err := l.Collection(collectionID)
	if err != nil {
		return err
	}
	if err := h.meta.Delete(imageID); err != nil {
		return err
	}
	if err := h.blobs.Remove(imageID); err != nil {
		l.logger.Warn("removing image blobs", "collection", h.ID, "image", imageID, "error", err)
	}
	l.logger.Info("image deleted", "collection", h.ID, "image", imageID)
	return nil
}

// OpenOriginal returns the original byte stream together with the image's
// metadata for serving.
func (l *Library) OpenOriginal(collectionID, imageID string) (*Image, io.ReadCloser, error) {
	img, h, err := l.resolveImage(collectionID, imageID)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := h.blobs.OpenOriginal(imageID)
	if err != nil {
		return nil, nil, err
	}
	return img, rc, nil
}

// OpenThumbnail returns the thumbnail byte stream and its size. A missing
// thumbnail fails with ErrThumbnailNotFound, distinct from a missing
// image, which fails with ErrImageNotFound.
func (l *Library) OpenThumbnail(collectionID, imageID string) (io.ReadCloser, int64, error) {
	_, h, err := l.resolveImage(collectionID, imageID)
	if err != nil {
		return nil, 0, err
	}
	return h.blobs.OpenThumbnail(imageID)
}

// ResetAll closes every handle and removes all collection subtrees.
// Test-only: the explicit replacement for process-wide registry state.
func (l *Library) ResetAll() error {
	l.mu.Lock()
	for id, h := range l.handles {
		h.close()
		delete(l.handles, id)
	}
	l.mu.Unlock()

	entries, err := os.ReadDir(l.root)
	if err != nil {
		return fmt.Errorf("reading library root: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(l.root, e.Name())); err != nil {
			return fmt.Errorf("removing %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Close releases all open collection handles.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var firstErr error
	for id, h := range l.handles {
		if err := h.close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(l.handles, id)
	}
	return firstErr
}

// resolveImage looks up the image id within the collection, validating
// both along the way.
func (l *Library) resolveImage(collectionID, imageID string) (*Image, *Collection, error) {
	if err := ValidateImageID(imageID); err != nil {
		return nil, nil, err
	}
	h, err := l.Collection(collectionID)
	if err != nil {
		return nil, nil, err
	}
	img, err := h.meta.Get(imageID)
	if err != nil {
		return nil, nil, err
	}
	return img, h, nil
}

func (l *Library) open(id, dir string) (*Collection, error) {
	meta, err := l.openMeta(id, dir)
	if err != nil {
		return nil, fmt.Errorf("opening metadata store: %w", err)
	}
	blobs, err := l.openBlobs(id, dir)
	if err != nil {
		meta.Close()
		return nil, fmt.Errorf("opening blob store: %w", err)
	}
	return &Collection{ID: id, meta: meta, blobs: blobs}, nil
}

func (c *Collection) close() error {
	err := c.meta.Close()
	if berr := c.blobs.Close(); err == nil {
		err = berr
	}
	return err
}

// mimeForFormat maps a decoded image format name to its MIME type.
func mimeForFormat(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

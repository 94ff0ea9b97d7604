package picstash

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"sort"
)

// Export is a built archive ready for streaming. Size is the exact byte
// length of the ZIP stream so callers can set a Content-Length header.
// Closing the reader releases the backing spool file.
type Export struct {
	Filename string
	Size     int64

	rc io.ReadCloser
}

func (e *Export) Read(p []byte) (int, error) { return e.rc.Read(p) }
func (e *Export) Close() error               { return e.rc.Close() }

// ExportArchive builds a ZIP archive from the requested image ids.
// Repeated ids are included once (first occurrence wins); an empty
// resulting set fails with ErrEmptyRequest and any unresolvable id fails
// the whole export with ErrImageNotFound. All validation and resolution
// happens before a single archive byte is written.
//
// Entries are named <name>.<extension>. When two or more requested images
// share a filename, every colliding entry, the oldest included, gets a
// zero-padded suffix assigned in ascending order of creation time.
//
// The archive is spooled to a temp file rather than buffered in memory;
// image payloads are stored uncompressed since they are already
// compressed formats.
func (l *Library) ExportArchive(collectionID string, imageIDs []string, name string) (*Export, error) {
	if err := ValidateArchiveName(name); err != nil {
		return nil, err
	}
	h, err := l.Collection(collectionID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(imageIDs))
	ids := make([]string, 0, len(imageIDs))
	for _, id := range imageIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no images requested", ErrEmptyRequest)
	}

	images := make([]*Image, 0, len(ids))
	for _, id := range ids {
		if err := ValidateImageID(id); err != nil {
			return nil, err
		}
		img, err := h.meta.Get(id)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	entryNames := resolveEntryNames(images)

	spool, err := os.CreateTemp("", "picstash-export-*.zip")
	if err != nil {
		return nil, fmt.Errorf("creating export spool: %w", err)
	}
	if err := l.writeArchive(spool, h, images, entryNames); err != nil {
		spool.Close()
		os.Remove(spool.Name())
		return nil, err
	}

	size, err := spool.Seek(0, io.SeekCurrent)
	if err == nil {
		_, err = spool.Seek(0, io.SeekStart)
	}
	if err != nil {
		spool.Close()
		os.Remove(spool.Name())
		return nil, fmt.Errorf("rewinding export spool: %w", err)
	}

	l.logger.Info("archive exported", "collection", h.ID, "entries", len(images), "size", size)
	return &Export{
		Filename: name + ".zip",
		Size:     size,
		rc:       &spoolReader{f: spool},
	}, nil
}

func (l *Library) writeArchive(w io.Writer, h *Collection, images []*Image, entryNames []string) error {
	zw := zip.NewWriter(w)
	for i, img := range images {
		hdr := &zip.FileHeader{
			Name:     entryNames[i],
			Method:   zip.Store,
			Modified: img.CreatedAt,
		}
		entry, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("creating archive entry %s: %w", hdr.Name, err)
		}
		rc, _, err := h.blobs.OpenOriginal(img.ID)
		if err != nil {
			return err
		}
		_, err = io.Copy(entry, rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("writing archive entry %s: %w", hdr.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

// resolveEntryNames assigns an archive entry name per image. Images with a
// unique <name>.<extension> keep it as is; within a colliding group every
// member gets an _NNN suffix, numbered from _001 by ascending creation
// time with the image id as tie-break.
func resolveEntryNames(images []*Image) []string {
	groups := make(map[string][]int)
	for i, img := range images {
		groups[img.Filename()] = append(groups[img.Filename()], i)
	}

	names := make([]string, len(images))
	for _, idxs := range groups {
		if len(idxs) == 1 {
			names[idxs[0]] = images[idxs[0]].Filename()
			continue
		}
		sort.SliceStable(idxs, func(a, b int) bool {
			ia, ib := images[idxs[a]], images[idxs[b]]
			if !ia.CreatedAt.Equal(ib.CreatedAt) {
				return ia.CreatedAt.Before(ib.CreatedAt)
			}
			return ia.ID < ib.ID
		})
		for n, i := range idxs {
			img := images[i]
			if img.Extension == "" {
				names[i] = fmt.Sprintf("%s_%03d", img.Name, n+1)
			} else {
				names[i] = fmt.Sprintf("%s_%03d.%s", img.Name, n+1, img.Extension)
			}
		}
	}
	return names
}

// spoolReader serves a temp file and deletes it on close.
type spoolReader struct {
	f *os.File
}

func (r *spoolReader) Read(p []byte) (int, error) { return r.f.Read(p) }

func (r *spoolReader) Close() error {
	err := r.f.Close()
	os.Remove(r.f.Name())
	return err
}

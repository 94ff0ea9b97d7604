package picstash

import "fmt"

// StatusUpdate is the per-image outcome of a batch status change.
// Exactly one of Image and Err is set.
type StatusUpdate struct {
	ImageID string
	Image   *Image
	Err     error
}

// BatchResult collects the per-id outcomes of a batch status change in the
// order the ids were supplied.
type BatchResult struct {
	Updates []StatusUpdate
}

// Succeeded returns the number of successful updates.
func (r *BatchResult) Succeeded() int {
	n := 0
	for _, u := range r.Updates {
		if u.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of failed updates.
func (r *BatchResult) Failed() int {
	return len(r.Updates) - r.Succeeded()
}

// UpdateStatus applies a status change to a single image and returns the
// full updated record. The status change always bumps the updated
// timestamp; reads never do.
func (l *Library) UpdateStatus(collectionID, imageID, rawStatus string) (*Image, error) {
	if err := ValidateImageID(imageID); err != nil {
		return nil, err
	}
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	h, err := l.Collection(collectionID)
	if err != nil {
		return nil, err
	}
	return l.updateStatus(h, imageID, status)
}

// BatchUpdateStatus applies a status change per image. Each failure is
// independent: a failing id does not roll back or abort its siblings.
// Ids are processed in the order supplied and the result preserves that
// order so callers can report "N of M succeeded" deterministically.
func (l *Library) BatchUpdateStatus(collectionID string, imageIDs []string, rawStatus string) (*BatchResult, error) {
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	h, err := l.Collection(collectionID)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Updates: make([]StatusUpdate, 0, len(imageIDs))}
	for _, id := range imageIDs {
		update := StatusUpdate{ImageID: id}
		if err := ValidateImageID(id); err != nil {
			update.Err = err
		} else if img, err := l.updateStatus(h, id, status); err != nil {
			update.Err = err
		} else {
			update.Image = img
		}
		if update.Err != nil {
			l.logger.Debug("batch status update failed for image", "collection", h.ID, "image", id, "error", update.Err)
		}
		result.Updates = append(result.Updates, update)
	}

	l.logger.Info("batch status update", "collection", h.ID,
		"status", string(status), "succeeded", result.Succeeded(), "failed", result.Failed())
	return result, nil
}

// updateStatus is the shared read-modify-write for a single record.
// Concurrent writers to the same record are last-writer-wins; the store's
// record-level atomicity keeps the metadata consistent either way.
func (l *Library) updateStatus(h *Collection, imageID string, status Status) (*Image, error) {
	img, err := h.meta.Get(imageID)
	if err != nil {
		return nil, err
	}
	img.Status = status
	img.UpdatedAt = l.clock.Now().UTC()
	if err := h.meta.Put(img); err != nil {
		return nil, fmt.Errorf("updating status: %w", err)
	}
	return img, nil
}

package picstash

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of an image within a collection.
// Every transition inside the enum is legal; curation rules such as
// "inbox images can only be kept or discarded" belong to the UI, not here.
type Status string

const (
	StatusInbox      Status = "INBOX"
	StatusCollection Status = "COLLECTION"
	StatusArchive    Status = "ARCHIVE"
)

// ParseStatus validates a raw value against the three-member enum.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusInbox, StatusCollection, StatusArchive:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// Image is the metadata record for a single image in a collection.
type Image struct {
	ID         string // UUID, unique within the collection
	Collection string // owning collection id (back-reference, not ownership)
	Name       string // original filename stem
	Extension  string // original filename extension, without the dot
	MIME       string
	Size       int64
	Hash       string // SHA-256 hex of the original bytes
	Width      int
	Height     int
	Status     Status
	CreatedAt  time.Time // immutable once set
	UpdatedAt  time.Time // bumped on metadata-affecting mutation only
}

// Aspect returns the width/height ratio, or 0 for degenerate dimensions.
func (im *Image) Aspect() float64 {
	if im.Height == 0 {
		return 0
	}
	return float64(im.Width) / float64(im.Height)
}

// Filename returns the suggested download filename, <name>.<extension>.
func (im *Image) Filename() string {
	if im.Extension == "" {
		return im.Name
	}
	return im.Name + "." + im.Extension
}

// SplitFilename splits an uploaded filename into stem and extension.
// The extension is returned lowercased and without the dot.
func SplitFilename(filename string) (name, ext string) {
	dot := strings.LastIndex(filename, ".")
	if dot <= 0 {
		return filename, ""
	}
	return filename[:dot], strings.ToLower(filename[dot+1:])
}

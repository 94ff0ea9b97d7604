package picstash

import "fmt"

// Ordering fields and directions accepted by List.
const (
	OrderByCreated = "created"
	OrderByUpdated = "updated"

	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// MaxListLimit bounds a single List page.
const MaxListLimit = 1000

// ListOptions controls filtering, ordering and pagination for List.
// Zero values select the defaults: no status filter, order by created
// ascending, limit 1000, offset 0.
type ListOptions struct {
	Status         string
	OrderBy        string
	OrderDirection string
	Limit          int
	Offset         int
}

// Normalize applies defaults and validates the options. It must be called
// before any store I/O so that invalid queries never touch storage.
func (o ListOptions) Normalize() (ListOptions, error) {
	if o.Status != "" {
		if _, err := ParseStatus(o.Status); err != nil {
			return o, fmt.Errorf("%w: status %q", ErrInvalidQuery, o.Status)
		}
	}
	switch o.OrderBy {
	case "":
		o.OrderBy = OrderByCreated
	case OrderByCreated, OrderByUpdated:
	default:
		return o, fmt.Errorf("%w: orderBy %q", ErrInvalidQuery, o.OrderBy)
	}
	switch o.OrderDirection {
	case "":
		o.OrderDirection = OrderAsc
	case OrderAsc, OrderDesc:
	default:
		return o, fmt.Errorf("%w: orderDirection %q", ErrInvalidQuery, o.OrderDirection)
	}
	switch {
	case o.Limit == 0:
		o.Limit = MaxListLimit
	case o.Limit < 1 || o.Limit > MaxListLimit:
		return o, fmt.Errorf("%w: limit %d out of range [1,%d]", ErrInvalidQuery, o.Limit, MaxListLimit)
	}
	if o.Offset < 0 {
		return o, fmt.Errorf("%w: negative offset %d", ErrInvalidQuery, o.Offset)
	}
	return o, nil
}

// MetadataStore is the per-collection durable record of image metadata.
// Implementations must make Put and Delete all-or-nothing at the record
// level and surface I/O failures by wrapping ErrStoreCorrupted.
type MetadataStore interface {
	// Put inserts or replaces a record. CreatedAt is never overwritten
	// for an existing record.
	Put(img *Image) error

	// Get returns the record or fails with ErrImageNotFound.
	Get(id string) (*Image, error)

	// List returns records matching opts, ordered deterministically.
	// Invalid options fail with ErrInvalidQuery before any I/O.
	List(opts ListOptions) ([]*Image, error)

	// Delete removes the record or fails with ErrImageNotFound.
	Delete(id string) error

	// Count returns the number of records in the collection.
	Count() (int, error)

	// Close releases the underlying store.
	Close() error
}

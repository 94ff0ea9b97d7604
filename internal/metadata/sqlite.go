package metadata

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"picstash/internal/metadata/migrations"
	"picstash/internal/picstash"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DBFileName is the metadata database file inside a collection directory.
const DBFileName = "metadata.db"

const imageColumns = "id, name, extension, mime, size, hash, width, height, status, created_at, updated_at"

// Store implements picstash.MetadataStore on a per-collection SQLite
// database. One database file per collection keeps collections fully
// independent: operations on different collections never contend on a
// shared connection or lock.
type Store struct {
	db         *sql.DB
	collection string
}

// Open opens (creating if necessary) the metadata database inside the
// given collection directory and applies any pending migrations.
func Open(collectionID, dir string) (*Store, error) {
	db, err := OpenConnection(filepath.Join(dir, DBFileName))
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: applying migrations: %v", picstash.ErrStoreCorrupted, err)
	}
	return &Store{db: db, collection: collectionID}, nil
}

// OpenConnection opens and configures a SQLite connection with the
// appropriate PRAGMAs. path can be a file path or ":memory:".
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Wait for locks instead of failing immediately when two requests
	// hit the same collection.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Put inserts or replaces a record as a single statement, so the write is
// all-or-nothing at the record level. created_at is never overwritten for
// an existing record.
func (s *Store) Put(img *picstash.Image) error {
	_, err := s.db.Exec(`
		INSERT INTO images (`+imageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			extension = excluded.extension,
			mime = excluded.mime,
			size = excluded.size,
			hash = excluded.hash,
			width = excluded.width,
			height = excluded.height,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		img.ID, img.Name, img.Extension, img.MIME, img.Size, img.Hash,
		img.Width, img.Height, string(img.Status), img.CreatedAt, img.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: writing image record: %v", picstash.ErrStoreCorrupted, err)
	}
	return nil
}

// Get returns the record or fails with ErrImageNotFound.
func (s *Store) Get(id string) (*picstash.Image, error) {
	row := s.db.QueryRow(`SELECT `+imageColumns+` FROM images WHERE id = ?`, id)
	img, err := s.scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", picstash.ErrImageNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading image record: %v", picstash.ErrStoreCorrupted, err)
	}
	return img, nil
}

// List returns records matching opts. Ordering is deterministic: the
// requested column plus the id as tie-break.
func (s *Store) List(opts picstash.ListOptions) ([]*picstash.Image, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	col := "created_at"
	if opts.OrderBy == picstash.OrderByUpdated {
		col = "updated_at"
	}

	query := `SELECT ` + imageColumns + ` FROM images`
	var args []any
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, opts.Status)
	}
	query += fmt.Sprintf(` ORDER BY %s %s, id %s LIMIT ? OFFSET ?`, col, opts.OrderDirection, opts.OrderDirection)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing image records: %v", picstash.ErrStoreCorrupted, err)
	}
	defer rows.Close()

	var images []*picstash.Image
	for rows.Next() {
		img, err := s.scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning image record: %v", picstash.ErrStoreCorrupted, err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing image records: %v", picstash.ErrStoreCorrupted, err)
	}
	return images, nil
}

// Delete removes the record or fails with ErrImageNotFound.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting image record: %v", picstash.ErrStoreCorrupted, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: deleting image record: %v", picstash.ErrStoreCorrupted, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", picstash.ErrImageNotFound, id)
	}
	return nil
}

// Count returns the number of records in the collection.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM images`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting image records: %v", picstash.ErrStoreCorrupted, err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanImage(row rowScanner) (*picstash.Image, error) {
	var img picstash.Image
	var status string
	err := row.Scan(&img.ID, &img.Name, &img.Extension, &img.MIME, &img.Size,
		&img.Hash, &img.Width, &img.Height, &status, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		return nil, err
	}
	img.Status = picstash.Status(status)
	img.Collection = s.collection
	img.CreatedAt = img.CreatedAt.UTC()
	img.UpdatedAt = img.UpdatedAt.UTC()
	return &img, nil
}

// Compile-time check that Store implements picstash.MetadataStore
var _ picstash.MetadataStore = (*Store)(nil)

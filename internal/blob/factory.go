package blob

import (
	"context"
	"fmt"
	"path"

	"picstash/internal/config"
	"picstash/internal/picstash"
)

// OpenerFromConfig returns a BlobOpener for the configured backend.
// Filesystem stores live inside each collection's directory; memory
// stores are per collection; the s3 backend shares one client and binds
// each collection to its own key prefix.
func OpenerFromConfig(cfg config.BlobConfig) (picstash.BlobOpener, error) {
	switch cfg.Type {
	case "", "filesystem":
		return func(collectionID, dir string) (picstash.BlobStore, error) {
			return NewFileSystemStore(dir)
		}, nil
	case "memory":
		return func(collectionID, dir string) (picstash.BlobStore, error) {
			return NewMemoryStore(), nil
		}, nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 blob backend requires s3_bucket to be set")
		}
		client, err := NewS3Client(context.Background(), S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("creating s3 client: %w", err)
		}
		return func(collectionID, dir string) (picstash.BlobStore, error) {
			return NewS3Store(client, cfg.S3Bucket, path.Join(cfg.S3Prefix, collectionID)), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown blob backend type: %s", cfg.Type)
	}
}

package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"picstash/internal/picstash"
)

// S3Options configures the S3 blob backend. When AccessKeyID is empty the
// default AWS credential chain is used. Endpoint supports S3-compatible
// services (MinIO, R2).
type S3Options struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Store keeps a collection's blobs in an S3 bucket under
// <prefix>/originals/<imageID> and <prefix>/thumbs/<imageID>.
// The client is shared across collections; each store binds a prefix.
type S3Store struct {
	client *s3.Client
	upload *manager.Uploader
	bucket string
	prefix string
}

// NewS3Client builds the shared S3 client for a library's blob stores.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Store creates a blob store bound to one collection's key prefix.
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		upload: manager.NewUploader(client),
		bucket: bucket,
		prefix: prefix,
	}
}

// PutOriginal uploads the original bytes. The upload manager handles
// multipart uploads for large originals.
func (s *S3Store) PutOriginal(id string, r io.Reader, size int64) error {
	_, err := s.upload.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key("originals", id)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading original: %w", err)
	}
	return nil
}

// PutThumbnail uploads the derived thumbnail.
func (s *S3Store) PutThumbnail(id string, data []byte) error {
	_, err := s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key("thumbs", id)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(picstash.ThumbnailMIME),
	})
	if err != nil {
		return fmt.Errorf("uploading thumbnail: %w", err)
	}
	return nil
}

// OpenOriginal returns a stream over the original bytes and its size.
func (s *S3Store) OpenOriginal(id string) (io.ReadCloser, int64, error) {
	return s.open(s.key("originals", id), picstash.ErrImageNotFound, id)
}

// OpenThumbnail returns a stream over the thumbnail and its size.
func (s *S3Store) OpenThumbnail(id string) (io.ReadCloser, int64, error) {
	return s.open(s.key("thumbs", id), picstash.ErrThumbnailNotFound, id)
}

// Remove deletes the original and thumbnail objects. S3 deletes are
// idempotent, so missing objects are not an error.
func (s *S3Store) Remove(id string) error {
	for _, key := range []string{s.key("originals", id), s.key("thumbs", id)} {
		_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("deleting object %s: %w", key, err)
		}
	}
	return nil
}

// RemoveAll deletes every object under the store's prefix.
func (s *S3Store) RemoveAll() error {
	ctx := context.Background()
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix + "/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("listing objects: %w", err)
		}
		for _, obj := range page.Contents {
			_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				return fmt.Errorf("deleting object %s: %w", aws.ToString(obj.Key), err)
			}
		}
	}
	return nil
}

// Close is a no-op; the shared client is owned by the library wiring.
func (s *S3Store) Close() error { return nil }

func (s *S3Store) key(area, id string) string {
	return path.Join(s.prefix, area, id)
}

func (s *S3Store) open(key string, notFound error, id string) (io.ReadCloser, int64, error) {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, 0, fmt.Errorf("%w: %s", notFound, id)
		}
		return nil, 0, fmt.Errorf("getting object %s: %w", key, err)
	}
	return out.Body, aws.ToInt64(out.ContentLength), nil
}

// Compile-time check that S3Store implements picstash.BlobStore
var _ picstash.BlobStore = (*S3Store)(nil)

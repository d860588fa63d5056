// Where: internal/store/s3.go
// What: S3-backed blob store adapter.
// Why: Blob seeding follows the same lifecycle contract as documents; records
// land as JSON objects under the batch partition prefix.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/seedbox-dev/seedbox/internal/ensure"
	"github.com/seedbox-dev/seedbox/internal/importer"
	"github.com/seedbox-dev/seedbox/internal/record"
	"github.com/seedbox-dev/seedbox/internal/resolver"
)

// S3BlobStore implements ensure.BlobStore and importer.ItemWriter against an
// S3-compatible endpoint.
type S3BlobStore struct {
	client *s3.Client
}

var (
	_ ensure.BlobStore    = (*S3BlobStore)(nil)
	_ importer.ItemWriter = (*S3BlobStore)(nil)
)

// NewS3BlobStore builds the adapter for one resolved target. Emulator
// targets use path-style addressing; virtual-host addressing needs DNS the
// local endpoints do not have.
func NewS3BlobStore(target resolver.ConnectionTarget) *S3BlobStore {
	client := s3.NewFromConfig(target.Config, func(options *s3.Options) {
		if target.Endpoint != "" {
			options.BaseEndpoint = aws.String(target.Endpoint)
			options.UsePathStyle = true
		}
	})
	return &S3BlobStore{client: client}
}

// ListBuckets returns the names of existing buckets.
func (s *S3BlobStore) ListBuckets(ctx context.Context) ([]string, error) {
	resp, err := s.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Buckets))
	for _, bucket := range resp.Buckets {
		if bucket.Name == nil {
			continue
		}
		names = append(names, *bucket.Name)
	}
	return names, nil
}

// CreateBucket creates a bucket, tolerating creations that lost a race.
func (s *S3BlobStore) CreateBucket(ctx context.Context, name string) error {
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(name)})
	if err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		var exists *s3types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return fmt.Errorf("bucket %s: %w", name, ensure.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// WriteItem stores the record as one JSON object.
func (s *S3BlobStore) WriteItem(ctx context.Context, ns ensure.NamespaceHandle, rec record.DomainRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(ns.Container),
		Key:         aws.String(blobObjectKey(rec.PartitionKey, rec.ID)),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	return err
}

// blobObjectKey prefixes the object with the batch partition key so one
// seeding run stays grouped under a single prefix.
func blobObjectKey(partitionKey, id string) string {
	prefix := strings.Trim(strings.TrimSpace(partitionKey), "/")
	if prefix == "" {
		return id + ".json"
	}
	return prefix + "/" + id + ".json"
}

// Package objectstore implements the Object Store Gateway port over
// gocloud.dev/blob, grounded on
// withObsrvr-obsrvr-bronze-copier/internal/storage/s3.go's bucket-URL
// construction and NewWriter/Exists usage.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"

	domain "github.com/mohammadpnp/resumebatch/internal/domain/batch"
)

// BlobGateway implements domain.ObjectStore over a gocloud.dev
// blob.Bucket, keyed by batches/{batchID}/{itemID}/{filename}.
type BlobGateway struct {
	bucket *blob.Bucket
}

// NewBlobGateway opens a bucket for bucketName against an S3-
// compatible endpoint, following the teacher-adjacent S3Store's URL
// construction (region/endpoint/forcePathStyle passed as query
// parameters on an s3:// URL so the same code targets AWS S3, MinIO,
// or R2).
func NewBlobGateway(ctx context.Context, bucketName, endpoint, region string) (*BlobGateway, error) {
	u := "s3://" + bucketName + "?region=" + url.QueryEscape(region)
	if endpoint != "" {
		u += "&endpoint=" + url.QueryEscape(endpoint) + "&s3ForcePathStyle=true"
	}
	bucket, err := blob.OpenBucket(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketName, err)
	}
	return &BlobGateway{bucket: bucket}, nil
}

// NewBlobGatewayFromBucket wraps an already-opened bucket, primarily
// so tests can inject memblob.OpenBucket's in-memory implementation.
func NewBlobGatewayFromBucket(bucket *blob.Bucket) *BlobGateway {
	return &BlobGateway{bucket: bucket}
}

func keyFor(batchID, itemID, filename string) string {
	return fmt.Sprintf("batches/%s/%s/%s", batchID, itemID, filename)
}

// Put stores data under the derived key, refusing to overwrite an
// existing object at the same (batchID, itemID) path per spec.md
// §4.2.
func (g *BlobGateway) Put(ctx context.Context, batchID, itemID, filename string, data []byte) (string, error) {
	key := keyFor(batchID, itemID, filename)

	exists, err := g.bucket.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check existence of %s: %w", key, err)
	}
	if exists {
		return "", domain.ErrDuplicateFileRef
	}

	w, err := g.bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return "", fmt.Errorf("open writer for %s: %w", key, err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close writer for %s: %w", key, err)
	}
	return key, nil
}

// Get fetches the bytes for a fileRef previously returned by Put,
// used by the Analyzer Adapter to read item content.
func (g *BlobGateway) Get(ctx context.Context, fileRef string) ([]byte, error) {
	r, err := g.bucket.NewReader(ctx, fileRef, nil)
	if err != nil {
		return nil, fmt.Errorf("open reader for %s: %w", fileRef, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileRef, err)
	}
	return data, nil
}

// DeleteAll removes every object under batches/{batchID}/, tolerating
// a missing prefix, per spec.md §4.2.
func (g *BlobGateway) DeleteAll(ctx context.Context, batchID string) error {
	prefix := fmt.Sprintf("batches/%s/", batchID)
	iter := g.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("list prefix %s: %w", prefix, err)
		}
		if err := g.bucket.Delete(ctx, obj.Key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
			return fmt.Errorf("delete %s: %w", obj.Key, err)
		}
	}
	return nil
}

// Close releases the underlying bucket handle.
func (g *BlobGateway) Close() error {
	return g.bucket.Close()
}

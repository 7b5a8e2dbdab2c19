package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"

	"github.com/Lllllllleong/pdfsplitflow/internal/gcp"
	"github.com/Lllllllleong/pdfsplitflow/internal/models"
)

// objectInfo is the listing data Sweep needs.
type objectInfo struct {
	Name    string
	Created time.Time
}

// objectAPI is the part of a bucket the store uses. Missing objects are
// reported as storage.ErrObjectNotExist.
type objectAPI interface {
	Create(ctx context.Context, name string, payload []byte) error
	Read(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, prefix string) ([]objectInfo, error)
}

// bucketObjects implements objectAPI on a Cloud Storage bucket.
type bucketObjects struct {
	bucket *storage.BucketHandle
}

func (b bucketObjects) Create(ctx context.Context, name string, payload []byte) error {
	return gcp.SaveToGCSAtomically(ctx, b.bucket, name, string(payload))
}

func (b bucketObjects) Read(ctx context.Context, name string) ([]byte, error) {
	reader, err := b.bucket.Object(name).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func (b bucketObjects) Delete(ctx context.Context, name string) error {
	return b.bucket.Object(name).Delete(ctx)
}

func (b bucketObjects) List(ctx context.Context, prefix string) ([]objectInfo, error) {
	it := b.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	var out []objectInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, objectInfo{Name: attrs.Name, Created: attrs.Created})
	}
}

// GCSStore keeps handoff payloads as JSON objects under a prefix in a bucket.
type GCSStore struct {
	objects objectAPI
	prefix  string
	backoff time.Duration
}

// NewGCSStore returns a store writing to bucket under prefix.
func NewGCSStore(client *storage.Client, bucket, prefix string) *GCSStore {
	return newObjectStore(bucketObjects{bucket: client.Bucket(bucket)}, prefix)
}

func newObjectStore(objects objectAPI, prefix string) *GCSStore {
	return &GCSStore{objects: objects, prefix: prefix, backoff: 500 * time.Millisecond}
}

func (s *GCSStore) objectName(token string) string {
	return fmt.Sprintf("%s%s.json", s.prefix, token)
}

func (s *GCSStore) Put(ctx context.Context, token string, result models.SplitResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal handoff payload: %w", err)
	}
	objectName := s.objectName(token)

	const maxRetries = 4
	backoff := s.backoff
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		writeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		lastErr = s.objects.Create(writeCtx, objectName, payload)
		cancel()
		if lastErr == nil {
			return nil
		}
		slog.Warn(
			"Handoff upload failed, will retry.",
			"gcsObject", objectName,
			"attempt", i+1,
			"maxRetries", maxRetries,
			"backoff", backoff.String(),
			"error", lastErr,
		)
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("handoff upload for %s failed after all retries: %w", objectName, lastErr)
}

func (s *GCSStore) Take(ctx context.Context, token string) (*models.SplitResult, error) {
	objectName := s.objectName(token)
	payload, err := s.objects.Read(ctx, objectName)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read handoff object %s: %w", objectName, err)
	}

	var result models.SplitResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to parse handoff object %s: %w", objectName, err)
	}

	// Read-once: a concurrent Take that loses the delete race reports not found.
	if err := s.objects.Delete(ctx, objectName); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		slog.Warn("Failed to delete consumed handoff object; the sweeper will remove it.", "gcsObject", objectName, "error", err)
	}
	return &result, nil
}

// Sweep deletes expired payloads concurrently.
func (s *GCSStore) Sweep(ctx context.Context, olderThan time.Time) (int, error) {
	listed, err := s.objects.List(ctx, s.prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list handoff objects: %w", err)
	}
	expired := expiredObjects(listed, olderThan)

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(10)
	for _, name := range expired {
		eg.Go(func() error {
			err := s.objects.Delete(gctx, name)
			if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, fmt.Errorf("one or more handoff objects failed to delete: %w", err)
	}
	return len(expired), nil
}

func expiredObjects(objects []objectInfo, olderThan time.Time) []string {
	var expired []string
	for _, o := range objects {
		if o.Created.Before(olderThan) {
			expired = append(expired, o.Name)
		}
	}
	return expired
}

package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// MinIOStore adapts minio.Client to the Gateway interface.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore constructs an adapter bound to bucket.
func NewMinIOStore(client *minio.Client, bucket string) *MinIOStore {
	return &MinIOStore{
		client: client,
		bucket: bucket,
	}
}

func (s *MinIOStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *MinIOStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateMinIOError(err)
	}
	// GetObject is lazy; Stat surfaces a missing key before any byte is read.
	if _, err := object.Stat(); err != nil {
		object.Close()
		return nil, translateMinIOError(err)
	}
	return object, nil
}

func (s *MinIOStore) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *MinIOStore) DeleteMany(ctx context.Context, keys []string) ([]KeyError, error) {
	objects := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objects <- minio.ObjectInfo{Key: key}
	}
	close(objects)

	var failed []KeyError
	for removeErr := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		failed = append(failed, KeyError{Key: removeErr.ObjectName, Err: removeErr.Err})
	}
	return failed, nil
}

// List reads one page from the client's context-aware listing. The token is
// the last key of the previous page, sent as StartAfter.
func (s *MinIOStore) List(ctx context.Context, prefix, continuationToken string, maxKeys int) (Page, error) {
	if maxKeys <= 0 || maxKeys > MaxPageKeys {
		maxKeys = MaxPageKeys
	}

	listCtx, cancel := context.WithCancel(ctx)
	objects := s.client.ListObjects(listCtx, s.bucket, minio.ListObjectsOptions{
		Prefix:     prefix,
		StartAfter: continuationToken,
		MaxKeys:    maxKeys,
		Recursive:  true,
	})
	// The client pages in the background until cancelled and reports the
	// cancellation on the channel, so it must be drained.
	defer func() {
		cancel()
		for range objects {
		}
	}()

	page := Page{Keys: make([]string, 0, maxKeys)}
	for object := range objects {
		if object.Err != nil {
			return Page{}, object.Err
		}
		if len(page.Keys) == maxKeys {
			page.NextToken = page.Keys[len(page.Keys)-1]
			break
		}
		page.Keys = append(page.Keys, object.Key)
	}
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	return page, nil
}

func (s *MinIOStore) Copy(ctx context.Context, srcKey, dstKey string) error {
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: s.bucket, Object: srcKey},
	)
	return translateMinIOError(err)
}

func (s *MinIOStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *MinIOStore) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

func translateMinIOError(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || (resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket") {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Gateway used for local runs and tests. Its list
// pages are capped like a real store so pagination paths are exercised.
type Memory struct {
	mu      sync.RWMutex
	bucket  string
	pageCap int
	objects map[string]memoryObject
	now     func() time.Time
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemory returns an empty store whose list pages hold at most pageCap keys.
func NewMemory(bucket string, pageCap int) *Memory {
	if pageCap <= 0 || pageCap > MaxPageKeys {
		pageCap = MaxPageKeys
	}
	return &Memory{
		bucket:  bucket,
		pageCap: pageCap,
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

func (m *Memory) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("size mismatch: declared %d, read %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(obj.data))), nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) DeleteMany(ctx context.Context, keys []string) ([]KeyError, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.objects, key)
	}
	return nil, nil
}

func (m *Memory) List(ctx context.Context, prefix, continuationToken string, maxKeys int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if maxKeys <= 0 || maxKeys > m.pageCap {
		maxKeys = m.pageCap
	}

	m.mu.RLock()
	matched := make([]string, 0)
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) && key > continuationToken {
			matched = append(matched, key)
		}
	}
	m.mu.RUnlock()

	sort.Strings(matched)
	if len(matched) <= maxKeys {
		return Page{Keys: matched}, nil
	}
	page := matched[:maxKeys]
	return Page{Keys: page, NextToken: page[len(page)-1]}, nil
}

func (m *Memory) Copy(ctx context.Context, srcKey, dstKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[srcKey]
	if !ok {
		return ErrNotFound
	}
	m.objects[dstKey] = memoryObject{data: bytes.Clone(obj.data), contentType: obj.contentType}
	return nil
}

func (m *Memory) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ttl <= 0 {
		return "", fmt.Errorf("presign %q: non-positive ttl %s", key, ttl)
	}
	u := url.URL{
		Scheme:   "memory",
		Host:     m.bucket,
		Path:     "/" + key,
		RawQuery: url.Values{"expires": {strconv.FormatInt(m.now().Add(ttl).Unix(), 10)}}.Encode(),
	}
	return u.String(), nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

// ContentType reports the content type an object was stored with.
func (m *Memory) ContentType(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.contentType, ok
}

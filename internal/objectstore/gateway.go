// Package objectstore is a thin client to an S3-compatible object store.
// It exposes put/get/delete/list/copy/presign primitives against a single
// bucket and carries no naming or business rules.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// MaxPageKeys is the S3 cap on keys returned by a single list call.
const MaxPageKeys = 1000

// ErrNotFound is returned by Get and Copy when the key does not exist.
var ErrNotFound = errors.New("objectstore: no such key")

// Gateway is the object store contract consumed by the document services.
// Implementations hold no per-call state and are safe for concurrent use.
type Gateway interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete is idempotent: removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// DeleteMany removes keys in as few round trips as the backend allows.
	// Keys that could not be removed are returned; err reports a failure of
	// the call as a whole.
	DeleteMany(ctx context.Context, keys []string) ([]KeyError, error)
	// List returns one page of keys under prefix, starting after the
	// continuation token. An empty NextToken means the listing is exhausted.
	List(ctx context.Context, prefix, continuationToken string, maxKeys int) (Page, error)
	Copy(ctx context.Context, srcKey, dstKey string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Ping(ctx context.Context) error
}

// Page is a single ListObjectsV2 response.
type Page struct {
	Keys      []string
	NextToken string
}

// KeyError reports a key a batch operation failed on.
type KeyError struct {
	Key string
	Err error
}

func (e KeyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e KeyError) Unwrap() error {
	return e.Err
}

// Pager walks a prefix page by page, following continuation tokens until
// the store stops returning one. A pager can be resumed from Token().
type Pager struct {
	gateway Gateway
	prefix  string
	maxKeys int
	token   string
	done    bool
}

// NewPager starts a listing of prefix.
func NewPager(gateway Gateway, prefix string, maxKeys int) *Pager {
	if maxKeys <= 0 || maxKeys > MaxPageKeys {
		maxKeys = MaxPageKeys
	}
	return &Pager{gateway: gateway, prefix: prefix, maxKeys: maxKeys}
}

// ResumePager continues a listing from a token previously returned by Token.
func ResumePager(gateway Gateway, prefix, token string, maxKeys int) *Pager {
	p := NewPager(gateway, prefix, maxKeys)
	p.token = token
	return p
}

// HasMorePages reports whether NextPage may return further keys.
func (p *Pager) HasMorePages() bool {
	return !p.done
}

// Token is the continuation token of the next page to fetch.
func (p *Pager) Token() string {
	return p.token
}

// NextPage fetches the next page of keys.
func (p *Pager) NextPage(ctx context.Context) ([]string, error) {
	if p.done {
		return nil, nil
	}
	page, err := p.gateway.List(ctx, p.prefix, p.token, p.maxKeys)
	if err != nil {
		return nil, err
	}
	if page.NextToken != "" && page.NextToken == p.token {
		return nil, fmt.Errorf("list %q: continuation token did not advance", p.prefix)
	}
	p.token = page.NextToken
	p.done = page.NextToken == ""
	return page.Keys, nil
}

// Keys lists every key under prefix across all pages.
func Keys(ctx context.Context, gateway Gateway, prefix string, maxKeys int) ([]string, error) {
	var keys []string
	pager := NewPager(gateway, prefix, maxKeys)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return keys, err
		}
		keys = append(keys, page...)
	}
	return keys, nil
}

package metrics

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/abduss/docstore/internal/objectstore"
)

const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// InstrumentGateway wraps gw so every call is counted and timed.
func InstrumentGateway(gw objectstore.Gateway) objectstore.Gateway {
	return &instrumentedGateway{next: gw}
}

type instrumentedGateway struct {
	next objectstore.Gateway
}

func observe(operation string, start time.Time, err error) {
	outcome := outcomeOK
	switch {
	case errors.Is(err, objectstore.ErrNotFound):
		outcome = outcomeNotFound
	case err != nil:
		outcome = outcomeError
	}
	objectOps.WithLabelValues(operation, outcome).Inc()
	objectDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (g *instrumentedGateway) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	start := time.Now()
	err := g.next.Put(ctx, key, body, size, contentType)
	observe("put", start, err)
	return err
}

func (g *instrumentedGateway) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	start := time.Now()
	rc, err := g.next.Get(ctx, key)
	observe("get", start, err)
	return rc, err
}

func (g *instrumentedGateway) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := g.next.Delete(ctx, key)
	observe("delete", start, err)
	return err
}

// DeleteMany counts a call with rejected keys as an error.
func (g *instrumentedGateway) DeleteMany(ctx context.Context, keys []string) ([]objectstore.KeyError, error) {
	start := time.Now()
	failed, err := g.next.DeleteMany(ctx, keys)
	observed := err
	if observed == nil && len(failed) > 0 {
		observed = failed[0]
	}
	observe("delete_many", start, observed)
	return failed, err
}

func (g *instrumentedGateway) List(ctx context.Context, prefix, continuationToken string, maxKeys int) (objectstore.Page, error) {
	start := time.Now()
	page, err := g.next.List(ctx, prefix, continuationToken, maxKeys)
	observe("list", start, err)
	return page, err
}

func (g *instrumentedGateway) Copy(ctx context.Context, srcKey, dstKey string) error {
	start := time.Now()
	err := g.next.Copy(ctx, srcKey, dstKey)
	observe("copy", start, err)
	return err
}

func (g *instrumentedGateway) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	start := time.Now()
	url, err := g.next.PresignGet(ctx, key, ttl)
	observe("presign", start, err)
	return url, err
}

func (g *instrumentedGateway) Ping(ctx context.Context) error {
	start := time.Now()
	err := g.next.Ping(ctx)
	observe("ping", start, err)
	return err
}

package storage

import (
	"context"
	"fmt"

	"github.com/abduss/docstore/internal/config"
	"github.com/abduss/docstore/internal/objectstore"
)

// OpenGateway connects the configured object store driver. Clients are built
// once here and shared by every request.
func OpenGateway(ctx context.Context, cfg config.ObjectStoreConfig) (objectstore.Gateway, error) {
	switch cfg.Driver {
	case config.DriverMinIO:
		client, err := NewMinIOClient(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.CreateBucket {
			if err := EnsureBucket(ctx, client, cfg.Bucket, cfg.Region); err != nil {
				return nil, err
			}
		}
		return objectstore.NewMinIOStore(client, cfg.Bucket), nil
	case config.DriverS3:
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return objectstore.NewS3Store(client, cfg.Bucket), nil
	case config.DriverMemory:
		return objectstore.NewMemory(cfg.Bucket, objectstore.MaxPageKeys), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

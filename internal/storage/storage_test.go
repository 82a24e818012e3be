package storage

import (
	"context"
	"testing"

	"github.com/abduss/docstore/internal/config"
	"github.com/abduss/docstore/internal/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenGatewaySelectsDriver(t *testing.T) {
	ctx := context.Background()

	gw, err := OpenGateway(ctx, config.ObjectStoreConfig{Driver: config.DriverMemory, Bucket: "docs"})
	require.NoError(t, err)
	assert.IsType(t, &objectstore.Memory{}, gw)

	gw, err = OpenGateway(ctx, config.ObjectStoreConfig{
		Driver:   config.DriverMinIO,
		Endpoint: "localhost",
		Bucket:   "docs",
		Region:   "us-east-1",
	})
	require.NoError(t, err)
	assert.IsType(t, &objectstore.MinIOStore{}, gw)

	gw, err = OpenGateway(ctx, config.ObjectStoreConfig{
		Driver:          config.DriverS3,
		Endpoint:        "localhost:9000",
		AccessKeyID:     "access",
		SecretAccessKey: "secret",
		Bucket:          "docs",
		Region:          "us-east-1",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	assert.IsType(t, &objectstore.S3Store{}, gw)

	_, err = OpenGateway(ctx, config.ObjectStoreConfig{Driver: "ftp"})
	assert.Error(t, err)
}

func TestBaseEndpoint(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", baseEndpoint(config.ObjectStoreConfig{Endpoint: "localhost:9000"}))
	assert.Equal(t, "https://s3.example.com", baseEndpoint(config.ObjectStoreConfig{Endpoint: "s3.example.com", UseSSL: true}))
	assert.Equal(t, "https://minio.internal", baseEndpoint(config.ObjectStoreConfig{Endpoint: "https://minio.internal"}))
	assert.Equal(t, "", baseEndpoint(config.ObjectStoreConfig{}))
}

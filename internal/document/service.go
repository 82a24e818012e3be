package document

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/abduss/docstore/internal/config"
	"github.com/abduss/docstore/internal/keyspace"
	"github.com/abduss/docstore/internal/objectstore"
	"github.com/abduss/docstore/internal/storeerr"
	"go.uber.org/zap"
)

const (
	defaultMimeType   = "application/octet-stream"
	defaultPresignTTL = time.Hour
	// SigV4 rejects presigned URLs valid for longer than a week.
	maxPresignTTL = 7 * 24 * time.Hour
	// Presigned expiry is expressed in whole seconds.
	minPresignTTL = time.Second
)

// Store is the document contract offered to record-owning services.
type Store interface {
	Upload(ctx context.Context, content []byte, fileName, mimeType, ownerID string) (StoredDocument, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type objectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Service stores single documents under <category>/<owner_id>/<file_name>.
type Service struct {
	store         objectStore
	category      string
	displayURL    string
	presignTTL    time.Duration
	objectTimeout time.Duration
	logger        *zap.Logger
	nowFunc       func() time.Time
}

var _ Store = (*Service)(nil)

// NewService constructs a document service.
func NewService(store objectStore, cfg config.DocumentsConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	return &Service{
		store:         store,
		category:      cfg.Category,
		displayURL:    cfg.DisplayURLTemplate,
		presignTTL:    ttl,
		objectTimeout: cfg.ObjectTimeout,
		logger:        logger.Named("document"),
		nowFunc:       time.Now,
	}
}

// KeyFor returns the key a document of ownerID named fileName is stored under.
func (s *Service) KeyFor(ownerID, fileName string) (string, error) {
	if err := keyspace.ValidateSegment("owner id", ownerID); err != nil {
		return "", err
	}
	if err := keyspace.ValidateSegment("file name", fileName); err != nil {
		return "", err
	}
	return keyspace.DocumentKey(s.category, ownerID, fileName), nil
}

// Upload writes content to the owner's folder. An existing object with the
// same name is overwritten.
func (s *Service) Upload(ctx context.Context, content []byte, fileName, mimeType, ownerID string) (StoredDocument, error) {
	key, err := s.KeyFor(ownerID, fileName)
	if err != nil {
		return StoredDocument{}, err
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = defaultMimeType
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	if err := s.store.Put(ctx, key, bytes.NewReader(content), int64(len(content)), mimeType); err != nil {
		s.logger.Error("upload document", zap.String("key", key), zap.Error(err))
		return StoredDocument{}, storeerr.New(storeerr.ErrUpload, key, err)
	}

	s.logger.Debug("document uploaded", zap.String("key", key), zap.Int("size", len(content)))
	return StoredDocument{
		Key:        key,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  int64(len(content)),
		UploadedAt: s.nowFunc().UTC(),
		DisplayURL: s.buildDisplayURL(ownerID, fileName),
	}, nil
}

// Download returns the stored bytes unchanged.
func (s *Service) Download(ctx context.Context, key string) ([]byte, error) {
	if err := keyspace.ValidateKey(key); err != nil {
		return nil, err
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	body, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, s.readError(key, err)
	}
	defer body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, s.readError(key, err)
	}
	return buf.Bytes(), nil
}

// Presign issues a read URL for key valid for ttl; ttl <= 0 selects the
// configured default. Issued URLs cannot be revoked.
func (s *Service) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := keyspace.ValidateKey(key); err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = s.presignTTL
	}
	if ttl > maxPresignTTL {
		return "", storeerr.Invalid("ttl %s exceeds %s", ttl, maxPresignTTL)
	}
	if ttl < minPresignTTL {
		return "", storeerr.Invalid("ttl %s is below %s", ttl, minPresignTTL)
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	u, err := s.store.PresignGet(ctx, key, ttl)
	if err != nil {
		s.logger.Error("presign document", zap.String("key", key), zap.Error(err))
		return "", storeerr.New(storeerr.ErrPresign, key, err)
	}
	return u, nil
}

// Delete removes exactly one object. Deleting an absent key succeeds.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := keyspace.ValidateKey(key); err != nil {
		return err
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Error("delete document", zap.String("key", key), zap.Error(err))
		return storeerr.New(storeerr.ErrDelete, key, err)
	}
	return nil
}

func (s *Service) readError(key string, err error) error {
	if errors.Is(err, objectstore.ErrNotFound) {
		return storeerr.New(storeerr.ErrNotFound, key, err)
	}
	s.logger.Error("download document", zap.String("key", key), zap.Error(err))
	return storeerr.New(storeerr.ErrDownload, key, err)
}

func (s *Service) buildDisplayURL(ownerID, fileName string) string {
	return strings.NewReplacer(
		"{owner_id}", url.PathEscape(ownerID),
		"{file_name}", url.PathEscape(fileName),
	).Replace(s.displayURL)
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.objectTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.objectTimeout)
}

// Package folder runs prefix-scoped workflows over an owner record's
// documents: copying the folder to a timestamped backup and deleting it.
//
// Both workflows are best effort. They stop at the first failing key and
// leave completed work in place; the returned result lists what was done.
// Nothing here records whether an owner was backed up, so callers must run
// BackupFolder to completion before DeleteFolder (see BackupThenDelete).
package folder

import (
	"context"
	"errors"
	"time"

	"github.com/abduss/docstore/internal/config"
	"github.com/abduss/docstore/internal/keyspace"
	"github.com/abduss/docstore/internal/objectstore"
	"github.com/abduss/docstore/internal/storeerr"
	"go.uber.org/zap"
)

// Lifecycle is the folder contract offered to record-deletion workflows.
type Lifecycle interface {
	BackupFolder(ctx context.Context, ownerID string) (Backup, error)
	DeleteFolder(ctx context.Context, ownerID string) (Purge, error)
}

// Backup is the outcome of a folder backup. It is not persisted.
type Backup struct {
	SourcePrefix string   `json:"source_prefix"`
	DestPrefix   string   `json:"dest_prefix"`
	CopiedKeys   []string `json:"copied_keys"`
}

// Purge is the outcome of a folder deletion.
type Purge struct {
	Prefix      string   `json:"prefix"`
	DeletedKeys []string `json:"deleted_keys"`
}

// Service implements Lifecycle over an object store gateway.
type Service struct {
	store         objectstore.Gateway
	category      string
	pageSize      int
	batchSize     int
	objectTimeout time.Duration
	logger        *zap.Logger
	nowFunc       func() time.Time
}

var _ Lifecycle = (*Service)(nil)

// NewService constructs a folder service.
func NewService(store objectstore.Gateway, cfg config.DocumentsConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	batch := cfg.DeleteBatchSize
	if batch <= 0 {
		batch = 1
	}
	return &Service{
		store:         store,
		category:      cfg.Category,
		pageSize:      cfg.ListPageSize,
		batchSize:     batch,
		objectTimeout: cfg.ObjectTimeout,
		logger:        logger.Named("folder"),
		nowFunc:       time.Now,
	}
}

// SourcePrefix is the folder holding ownerID's live documents.
func (s *Service) SourcePrefix(ownerID string) string {
	return keyspace.OwnerPrefix(s.category, ownerID)
}

// BackupFolder copies every object under the owner's folder to
// backups/<category>/<timestamp>/<owner_id>/ in listing order. An owner
// without documents is not an error. On failure the returned Backup holds
// the keys copied before the failing one; they are not rolled back.
func (s *Service) BackupFolder(ctx context.Context, ownerID string) (Backup, error) {
	if err := keyspace.ValidateSegment("owner id", ownerID); err != nil {
		return Backup{}, err
	}

	backup := Backup{
		SourcePrefix: s.SourcePrefix(ownerID),
		DestPrefix:   keyspace.BackupPrefix(s.category, ownerID, s.nowFunc()),
		CopiedKeys:   []string{},
	}
	log := s.logger.With(zap.String("source", backup.SourcePrefix), zap.String("dest", backup.DestPrefix))

	keys, err := s.listAll(ctx, backup.SourcePrefix)
	if err != nil {
		log.Error("list folder for backup", zap.Error(err))
		return backup, err
	}
	if len(keys) == 0 {
		log.Info("folder empty, nothing to back up")
		return backup, nil
	}

	for _, key := range keys {
		dest := keyspace.Rebase(key, backup.SourcePrefix, backup.DestPrefix)
		if err := s.copy(ctx, key, dest); err != nil {
			log.Error("backup aborted",
				zap.String("key", key),
				zap.Int("copied", len(backup.CopiedKeys)),
				zap.Int("total", len(keys)),
				zap.Error(err))
			return backup, storeerr.New(storeerr.ErrCopy, key, err)
		}
		backup.CopiedKeys = append(backup.CopiedKeys, key)
	}

	log.Info("folder backed up", zap.Int("objects", len(backup.CopiedKeys)))
	return backup, nil
}

// DeleteFolder removes every object under the owner's folder. An empty
// folder is a no-op. On failure objects deleted before the failing batch
// stay deleted and are listed in the returned Purge.
func (s *Service) DeleteFolder(ctx context.Context, ownerID string) (Purge, error) {
	if err := keyspace.ValidateSegment("owner id", ownerID); err != nil {
		return Purge{}, err
	}

	purge := Purge{Prefix: s.SourcePrefix(ownerID), DeletedKeys: []string{}}
	log := s.logger.With(zap.String("prefix", purge.Prefix))

	keys, err := s.listAll(ctx, purge.Prefix)
	if err != nil {
		log.Error("list folder for delete", zap.Error(err))
		return purge, err
	}
	if len(keys) == 0 {
		log.Info("folder empty, nothing to delete")
		return purge, nil
	}

	for start := 0; start < len(keys); start += s.batchSize {
		end := min(start+s.batchSize, len(keys))
		deleted, err := s.deleteBatch(ctx, keys[start:end])
		purge.DeletedKeys = append(purge.DeletedKeys, deleted...)
		if err != nil {
			log.Error("folder delete aborted",
				zap.String("key", storeerr.FailedKey(err)),
				zap.Int("deleted", len(purge.DeletedKeys)),
				zap.Int("total", len(keys)),
				zap.Error(err))
			return purge, err
		}
	}

	log.Info("folder deleted", zap.Int("objects", len(purge.DeletedKeys)))
	return purge, nil
}

// listAll enumerates prefix following continuation tokens until exhausted.
func (s *Service) listAll(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	pager := objectstore.NewPager(s.store, prefix, s.pageSize)
	for pager.HasMorePages() {
		callCtx, cancel := s.callContext(ctx)
		page, err := pager.NextPage(callCtx)
		cancel()
		if err != nil {
			return nil, storeerr.New(storeerr.ErrList, prefix, err)
		}
		keys = append(keys, page...)
	}
	return keys, nil
}

func (s *Service) copy(ctx context.Context, src, dst string) error {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.store.Copy(ctx, src, dst)
}

// deleteBatch returns the keys of batch that are confirmed gone.
func (s *Service) deleteBatch(ctx context.Context, batch []string) ([]string, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	if len(batch) == 1 {
		if err := s.store.Delete(ctx, batch[0]); err != nil {
			return nil, storeerr.New(storeerr.ErrDelete, batch[0], err)
		}
		return batch, nil
	}

	failed, err := s.store.DeleteMany(ctx, batch)
	if err != nil {
		return nil, storeerr.New(storeerr.ErrDelete, batch[0], err)
	}
	if len(failed) == 0 {
		return batch, nil
	}

	rejected := make(map[string]struct{}, len(failed))
	for _, f := range failed {
		rejected[f.Key] = struct{}{}
	}
	deleted := make([]string, 0, len(batch)-len(failed))
	for _, key := range batch {
		if _, ok := rejected[key]; !ok {
			deleted = append(deleted, key)
		}
	}
	first := failed[0]
	return deleted, storeerr.New(storeerr.ErrDelete, first.Key, first.Err)
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.objectTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.objectTimeout)
}

// ErrBackupIncomplete is returned by BackupThenDelete when the folder was not
// deleted because its backup did not finish.
var ErrBackupIncomplete = errors.New("backup not confirmed complete, folder left in place")

// BackupThenDelete is the record-deletion sequence: the folder is deleted
// only after a backup of it has completed without error.
func BackupThenDelete(ctx context.Context, lifecycle Lifecycle, ownerID string) (Backup, Purge, error) {
	backup, err := lifecycle.BackupFolder(ctx, ownerID)
	if err != nil {
		if errors.Is(err, storeerr.ErrInvalidInput) {
			return backup, Purge{}, err
		}
		return backup, Purge{}, errors.Join(ErrBackupIncomplete, err)
	}
	purge, err := lifecycle.DeleteFolder(ctx, ownerID)
	return backup, purge, err
}

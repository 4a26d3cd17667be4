package minio

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/cfg"
	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/infrastructure"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/jitter"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
)

const (
	snapshotContentType     = "application/json"
	defaultSnapshotChunk    = 500
	defaultUploadLimit      = 4
	cleanupAttempts         = 3
	cleanupTimeout          = 30 * time.Second
	snapshotKeyPrefixFormat = "raw/%s/%s/"
)

// SnapshotInfrastructure архивирует сырые ответы поставщика в MinIO.
// Ответ режется на части по chunkSize товаров, части загружаются параллельно.
type SnapshotInfrastructure struct {
	repo        usecase.SnapshotRepository
	bucket      string
	chunkSize   int
	uploadLimit int
	clock       usecase.Clock
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
}

func NewSnapshotInfrastructure(repo usecase.SnapshotRepository, cfg *cfg.MinIOCfg, clock usecase.Clock, logger logger.Logger, shutdownCtx context.Context) *SnapshotInfrastructure {
	chunkSize := cfg.SnapshotChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultSnapshotChunk
	}
	uploadLimit := cfg.UploadLimit
	if uploadLimit <= 0 {
		uploadLimit = defaultUploadLimit
	}

	return &SnapshotInfrastructure{
		repo:        repo,
		bucket:      cfg.BucketName,
		chunkSize:   chunkSize,
		uploadLimit: uploadLimit,
		clock:       clock,
		logger:      logger,
		shutdownCtx: shutdownCtx,
	}
}

// ArchiveRawItems сохраняет товары запуска runID и возвращает общий префикс ключей.
// При ошибке любой части уже загруженные части удаляются в фоне.
func (s *SnapshotInfrastructure) ArchiveRawItems(ctx context.Context, runID string, items []usecase.RawItem) (string, error) {
	const op = "SnapshotInfrastructure.ArchiveRawItems"

	ext, err := infrastructure.GetExtensionFromContentType(snapshotContentType)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	prefix := fmt.Sprintf(snapshotKeyPrefixFormat, s.clock.Now().Format("2006-01-02"), runID)
	chunks := chunk(items, s.chunkSize)

	// Отмена остальных загрузок при первой ошибке
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keyCh := make(chan string, len(chunks))
	errCh := make(chan error, len(chunks))
	sem := make(chan struct{}, s.uploadLimit)

	var uploadWg sync.WaitGroup
	for idx, part := range chunks {
		uploadWg.Add(1)
		go func() {
			defer uploadWg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			data, err := json.Marshal(part)
			if err != nil {
				errCh <- fmt.Errorf("marshal part %d: %w", idx, err)
				return
			}

			objKey := fmt.Sprintf("%spart-%04d.%s", prefix, idx, ext)
			key, err := s.repo.Upload(ctx, domain.NewSnapshot(s.bucket, objKey, data, snapshotContentType))
			if err != nil {
				errCh <- fmt.Errorf("upload part %d failed: %w", idx, err)
				return
			}

			keyCh <- key
		}()
	}

	go func() {
		uploadWg.Wait()
		close(errCh)
		close(keyCh)
	}()

	keys := make([]string, 0, len(chunks))
	ok := false
	defer func() {
		if ok {
			return
		}

		// части, которые успеют загрузиться после отмены, тоже нужно удалить
		s.wg.Add(1)
		go func() {
			uploadWg.Wait()
			for key := range keyCh {
				keys = append(keys, key)
			}
			if len(keys) == 0 {
				s.wg.Done()
				return
			}
			s.cleanupUploadedKeys(keys)
		}()
	}()

	for completed := 0; completed < len(chunks); {
		select {
		case key, open := <-keyCh:
			if open {
				keys = append(keys, key)
				completed++
			}
		case err, open := <-errCh:
			if open {
				cancel()
				return "", e.Wrap(op, err)
			}
		case <-ctx.Done():
			cancel()
			return "", e.Wrap(op, ctx.Err())
		}
	}

	ok = true
	s.logger.Debugf("Archived %d raw items of run %s into %d parts", len(items), runID, len(keys))
	return prefix, nil
}

// CleanupSnapshots запускает фоновое удаление указанных объектов.
func (s *SnapshotInfrastructure) CleanupSnapshots(keys []string) {
	if len(keys) == 0 {
		return
	}
	s.wg.Add(1)
	go s.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет объекты с экспоненциальной задержкой между попытками.
func (s *SnapshotInfrastructure) cleanupUploadedKeys(keys []string) {
	defer s.wg.Done()
	const op = "SnapshotInfrastructure.cleanupUploadedKeys"
	s.logger.Infof("%s: Cleaning up %d uploaded snapshot parts", op, len(keys))

	ctx, cancel := context.WithTimeout(s.shutdownCtx, cleanupTimeout)
	defer cancel()

	backoff := jitter.Backoff{Base: time.Second, Max: 8 * time.Second, Factor: jitter.DefaultJitter}
	for _, key := range keys {
		for attempt := 0; attempt < cleanupAttempts; attempt++ {
			err := s.repo.Delete(ctx, key)
			if err == nil {
				break
			}

			if ctx.Err() != nil {
				s.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
				return
			}

			if attempt == cleanupAttempts-1 {
				s.logger.Warnf("failed to delete snapshot part %s: %v", key, err)
				break
			}

			if err := s.clock.Sleep(ctx, backoff.Delay(attempt)); err != nil {
				s.logger.Warnf("cleanup interrupted by shutdown during backoff, key=%v", key)
				return
			}
		}
	}
}

// WaitForCleanup ожидает завершения фоновых удалений с учётом таймаута завершения приложения.
func (s *SnapshotInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("snapshot cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}

func chunk(items []usecase.RawItem, size int) [][]usecase.RawItem {
	if len(items) == 0 {
		return [][]usecase.RawItem{{}}
	}

	parts := make([][]usecase.RawItem, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		parts = append(parts, items[start:end])
	}

	return parts
}

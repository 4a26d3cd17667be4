package minio

import (
	"bytes"
	"context"

	"github.com/DRSN-tech/dropship-sync/internal/cfg"
	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// SnapshotRepo хранит сырые выгрузки поставщика в MinIO.
type SnapshotRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewSnapshotRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *SnapshotRepo {
	return &SnapshotRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает часть выгрузки и возвращает ключ объекта.
// Если бакет в снимке не задан, используется бакет из конфигурации.
func (s *SnapshotRepo) Upload(ctx context.Context, snapshot *domain.Snapshot) (string, error) {
	bucket := snapshot.Bucket
	if bucket == "" {
		bucket = s.cfg.BucketName
	}

	info, err := s.mc.PutObject(ctx, bucket, snapshot.ObjectKey, bytes.NewReader(snapshot.Data), snapshot.Size(), minio.PutObjectOptions{
		ContentType: snapshot.ContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Delete удаляет объект из бакета выгрузок.
func (s *SnapshotRepo) Delete(ctx context.Context, key string) error {
	if err := s.mc.RemoveObject(ctx, s.cfg.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

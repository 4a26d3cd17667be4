package minio

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/cfg"
	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type stubClock struct{}

func (stubClock) Now() time.Time { return testNow }
func (stubClock) Today() time.Time { return testNow.Truncate(24 * time.Hour) }
func (stubClock) AddDays(n int) time.Time { return testNow.AddDate(0, 0, n) }
func (stubClock) AddHours(n int) time.Time { return testNow.Add(time.Duration(n) * time.Hour) }
func (stubClock) IsExpired(at time.Time, buffer time.Duration) bool { return !testNow.Add(buffer).Before(at) }
func (stubClock) Sleep(context.Context, time.Duration) error { return nil }

type memSnapshots struct {
	mu       sync.Mutex
	uploaded map[string]*domain.Snapshot
	deleted  []string
	failOn   string
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{uploaded: map[string]*domain.Snapshot{}}
}

func (m *memSnapshots) Upload(_ context.Context, s *domain.Snapshot) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && strings.HasSuffix(s.ObjectKey, m.failOn) {
		return "", errors.New("bucket unavailable")
	}
	m.uploaded[s.ObjectKey] = s
	return s.ObjectKey, nil
}

func (m *memSnapshots) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memSnapshots) uploadedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.uploaded))
	for k := range m.uploaded {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func rawItems(n int) []usecase.RawItem {
	items := make([]usecase.RawItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, usecase.RawItem{ID: string(rune('a' + i)), Title: "item"})
	}
	return items
}

func newInfra(repo usecase.SnapshotRepository) *SnapshotInfrastructure {
	return NewSnapshotInfrastructure(repo, &cfg.MinIOCfg{
		BucketName:        "snapshots",
		UploadLimit:       2,
		SnapshotChunkSize: 2,
	}, stubClock{}, logger.Nop(), context.Background())
}

func TestSnapshotInfrastructure_ArchiveRawItems(t *testing.T) {
	repo := newMemSnapshots()
	infra := newInfra(repo)

	prefix, err := infra.ArchiveRawItems(context.Background(), "run-1", rawItems(5))

	require.NoError(t, err)
	assert.Equal(t, "raw/2025-03-01/run-1/", prefix)
	assert.Equal(t, []string{
		"raw/2025-03-01/run-1/part-0000.json",
		"raw/2025-03-01/run-1/part-0001.json",
		"raw/2025-03-01/run-1/part-0002.json",
	}, repo.uploadedKeys())

	last := repo.uploaded["raw/2025-03-01/run-1/part-0002.json"]
	assert.Equal(t, "snapshots", last.Bucket)
	assert.Equal(t, snapshotContentType, last.ContentType)
	assert.JSONEq(t, `[{"id":"e","title":"item","brand":"","price":{"original":0},"options":null,"images":null,"category":"","supplier_id":"","fetched_at":"0001-01-01T00:00:00Z"}]`, string(last.Data))
}

func TestSnapshotInfrastructure_CleansUpOnFailure(t *testing.T) {
	repo := newMemSnapshots()
	repo.failOn = "part-0001.json"
	infra := newInfra(repo)

	_, err := infra.ArchiveRawItems(context.Background(), "run-2", rawItems(6))
	require.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForCleanup(ctx))

	deleted := append([]string(nil), repo.deleted...)
	sort.Strings(deleted)
	assert.Equal(t, repo.uploadedKeys(), deleted)
}

func TestChunk(t *testing.T) {
	assert.Len(t, chunk(rawItems(5), 2), 3)
	assert.Len(t, chunk(rawItems(4), 2), 2)
	assert.Len(t, chunk(nil, 2), 1)
}
